// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nivremi/recipe-web-app/internal/auth"
	"github.com/nivremi/recipe-web-app/internal/favourites"
	"github.com/nivremi/recipe-web-app/internal/history"
	"github.com/nivremi/recipe-web-app/internal/recipe"
	"github.com/nivremi/recipe-web-app/internal/store"
)

// Catalog serves recipes and listings. Implemented by catalog.Service.
type Catalog interface {
	Recipe(ctx context.Context, id int) (recipe.Recipe, error)
	RandomRecipe(ctx context.Context) (recipe.Recipe, error)
	Ingredients(ctx context.Context) ([]string, error)
	Areas(ctx context.Context) ([]string, error)
	MealsByIngredient(ctx context.Context, ingredient string) ([]recipe.MealSummary, error)
	MealsByArea(ctx context.Context, area string) ([]recipe.MealSummary, error)
}

// Favourites toggles and lists a user's favourite meals. Implemented by
// favourites.Manager.
type Favourites interface {
	Toggle(ctx context.Context, username string, rawMealID any) (favourites.Result, error)
	List(ctx context.Context, username string) ([]int, error)
}

// Users is the account side of the user store. Implemented by store.Store.
type Users interface {
	CreateUser(ctx context.Context, u *store.User) error
	GetUser(ctx context.Context, username string) (*store.User, error)
	Ping(ctx context.Context) error
}

// UpstreamStatus reports the recipe source circuit state for readiness.
// Implemented by mealdb.CircuitBreakerClient.
type UpstreamStatus interface {
	State() string
	Available() bool
}

// Deps collects the collaborators of Handler.
type Deps struct {
	Catalog    Catalog
	Favourites Favourites
	Users      Users
	Upstream   UpstreamStatus
	Tokens     *auth.JWTManager
	Hasher     *auth.PasswordHasher
	Policy     auth.PasswordPolicy
	History    history.Jar
}

// Handler implements the HTTP endpoints.
type Handler struct {
	catalog    Catalog
	favourites Favourites
	users      Users
	upstream   UpstreamStatus
	tokens     *auth.JWTManager
	hasher     *auth.PasswordHasher
	policy     auth.PasswordPolicy
	jar        history.Jar

	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a Handler from deps. A zero History jar or Policy falls
// back to the defaults.
func NewHandler(deps Deps) *Handler {
	jar := deps.History
	if jar.Name == "" || jar.TTL <= 0 {
		jar = history.NewJar(jar.Name, jar.TTL)
	}
	policy := deps.Policy
	if policy == (auth.PasswordPolicy{}) {
		policy = auth.DefaultPasswordPolicy()
	}
	return &Handler{
		catalog:    deps.Catalog,
		favourites: deps.Favourites,
		users:      deps.Users,
		upstream:   deps.Upstream,
		tokens:     deps.Tokens,
		hasher:     deps.Hasher,
		policy:     policy,
		jar:        jar,
		startTime:  time.Now(),
		now:        time.Now,
	}
}

// isSecureRequest reports whether cookies for r should carry Secure.
func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
