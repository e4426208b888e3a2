// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nivremi/recipe-web-app/internal/api"
	"github.com/nivremi/recipe-web-app/internal/auth"
	"github.com/nivremi/recipe-web-app/internal/cache"
	"github.com/nivremi/recipe-web-app/internal/catalog"
	"github.com/nivremi/recipe-web-app/internal/config"
	"github.com/nivremi/recipe-web-app/internal/favourites"
	"github.com/nivremi/recipe-web-app/internal/history"
	"github.com/nivremi/recipe-web-app/internal/logging"
	"github.com/nivremi/recipe-web-app/internal/mealdb"
	"github.com/nivremi/recipe-web-app/internal/store"
	"github.com/nivremi/recipe-web-app/internal/supervisor"
	"github.com/nivremi/recipe-web-app/internal/supervisor/services"
)

const (
	recipeCacheEntries  = 2000
	listingCacheEntries = 500

	cacheJanitorInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("mealdb_url", cfg.MealDB.BaseURL).
		Bool("in_memory_store", cfg.Storage.InMemory).
		Msg("Starting recipe web app with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	users, err := store.Open(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer func() {
		if err := users.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing user store")
		}
	}()
	logging.Info().Str("path", cfg.Storage.Path).Msg("User store opened")

	upstream := mealdb.NewCircuitBreakerClient(&cfg.MealDB)

	var recipeCache, listingCache *cache.Cache
	var sweepable []services.Sweeper
	if cfg.MealDB.CacheTTL > 0 {
		recipeCache = cache.New("recipes", cfg.MealDB.CacheTTL, recipeCacheEntries)
		listingCache = cache.New("listings", cfg.MealDB.CacheTTL, listingCacheEntries)
		sweepable = append(sweepable, recipeCache, listingCache)
	} else {
		logging.Info().Msg("Catalog caching disabled (MEALDB_CACHE_TTL=0)")
	}
	recipes := catalog.NewService(upstream, recipeCache, listingCache)

	tokens, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize JWT manager: %w", err)
	}

	handler := api.NewHandler(api.Deps{
		Catalog:    recipes,
		Favourites: favourites.NewManager(users),
		Users:      users,
		Upstream:   upstream,
		Tokens:     tokens,
		Hasher:     auth.NewPasswordHasher(cfg.Security.BcryptCost),
		Policy:     auth.DefaultPasswordPolicy(),
		History:    history.NewJar(cfg.History.CookieName, cfg.History.TTL),
	})

	authMiddleware := auth.NewMiddleware(tokens, api.RespondUnauthorized)
	chiMiddleware := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	router := api.NewRouter(handler, authMiddleware, chiMiddleware)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if !cfg.Storage.InMemory {
		tree.AddDataService(services.NewStoreGCService(users, cfg.Storage.GCInterval))
	}
	if len(sweepable) > 0 {
		tree.AddCacheService(services.NewCacheJanitorService(cacheJanitorInterval, sweepable...))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return serveErr
	}
	return nil
}
