// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nivremi/recipe-web-app/internal/auth"
	"github.com/nivremi/recipe-web-app/internal/middleware"
)

// Router sets up HTTP routes using the Chi router.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil chiMiddleware uses
// DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		middleware:    authMiddleware,
		chiMiddleware: chiMiddleware,
	}
}

// SetupChi builds the route tree.
//
// Global middleware runs in order: request ID, real IP, panic recovery, CORS,
// security headers, Prometheus instrumentation. Route groups add their own
// rate limits; listing endpoints are gzip compressed and the favourites group
// requires authentication.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(APISecurityHeaders())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	h := router.handler

	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.With(router.chiMiddleware.RateLimitHealth()).Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Get("/recipe", h.Recipe)
		r.Get("/history", h.History)
		r.Post("/history/clear", h.ClearHistory)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compression)
			r.Get("/ingredients", h.Ingredients)
			r.Get("/meals", h.MealsByIngredient)
			r.Get("/area", h.Areas)
			r.Get("/cuisine", h.MealsByArea)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.middleware.Authenticate)
			r.Get("/favourites", h.ListFavourites)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/favourites", h.ToggleFavourite)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(router.chiMiddleware.RateLimitAuth()).Post("/signup", h.Signup)
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/token", h.Login)
		r.With(router.chiMiddleware.RateLimitAuth()).Post("/logout", h.Logout)
	})

	return r
}
