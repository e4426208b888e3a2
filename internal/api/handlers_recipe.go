// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/nivremi/recipe-web-app/internal/favourites"
	"github.com/nivremi/recipe-web-app/internal/history"
	"github.com/nivremi/recipe-web-app/internal/logging"
	"github.com/nivremi/recipe-web-app/internal/metrics"
	"github.com/nivremi/recipe-web-app/internal/recipe"
)

// Recipe handles GET /api/recipe?meal={id}.
//
// Without a meal id a random recipe is served. Every served recipe is
// recorded in the history cookie.
func (h *Handler) Recipe(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()

	var (
		rec recipe.Recipe
		err error
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("meal")); raw != "" {
		id, perr := favourites.ParseMealID(raw)
		if perr != nil {
			rw.InvalidMealID("meal must be an integer meal id")
			return
		}
		rec, err = h.catalog.Recipe(ctx, id)
	} else {
		rec, err = h.catalog.RandomRecipe(ctx)
	}
	if err != nil {
		respondCatalogError(rw, err)
		return
	}

	h.recordView(w, r, rec.ID)
	rw.Success(rec)
}

// recordView sets the updated history cookie for a served recipe.
func (h *Handler) recordView(w http.ResponseWriter, r *http.Request, recipeID string) {
	mealID, err := strconv.Atoi(recipeID)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Str("recipe_id", recipeID).Msg("Recipe id is not numeric, history not updated")
		return
	}

	token, _ := history.Record(h.jar.FromRequest(r), mealID, h.now())
	http.SetCookie(w, h.jar.Cookie(token, isSecureRequest(r)))
	metrics.RecordHistoryView()
}

// Ingredients handles GET /api/ingredients.
func (h *Handler) Ingredients(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	names, err := h.catalog.Ingredients(r.Context())
	if err != nil {
		respondCatalogError(rw, err)
		return
	}
	rw.Success(names)
}

// Areas handles GET /api/area.
func (h *Handler) Areas(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	names, err := h.catalog.Areas(r.Context())
	if err != nil {
		respondCatalogError(rw, err)
		return
	}
	rw.Success(names)
}

// MealsByIngredient handles GET /api/meals?ingredient={name}.
func (h *Handler) MealsByIngredient(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ingredient, ok := requiredQuery(rw, r, "ingredient", "searchterm")
	if !ok {
		return
	}
	meals, err := h.catalog.MealsByIngredient(r.Context(), ingredient)
	if err != nil {
		respondCatalogError(rw, err)
		return
	}
	rw.Success(meals)
}

// MealsByArea handles GET /api/cuisine?area={name}.
func (h *Handler) MealsByArea(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	area, ok := requiredQuery(rw, r, "area", "searchterm")
	if !ok {
		return
	}
	meals, err := h.catalog.MealsByArea(r.Context(), area)
	if err != nil {
		respondCatalogError(rw, err)
		return
	}
	rw.Success(meals)
}
