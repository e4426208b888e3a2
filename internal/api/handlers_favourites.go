// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package api

import (
	"net/http"

	"github.com/nivremi/recipe-web-app/internal/auth"
	"github.com/nivremi/recipe-web-app/internal/logging"
	"github.com/nivremi/recipe-web-app/internal/metrics"
)

// ListFavourites handles GET /api/favourites.
func (h *Handler) ListFavourites(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		rw.Unauthorized("Authentication required")
		return
	}

	ids, err := h.favourites.List(r.Context(), username)
	if err != nil {
		respondFavouritesError(rw, err)
		return
	}
	rw.Success(ids)
}

// ToggleFavourite handles POST /api/favourites.
func (h *Handler) ToggleFavourite(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		rw.Unauthorized("Authentication required")
		return
	}

	var req ToggleFavouriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}

	result, err := h.favourites.Toggle(r.Context(), username, req.IDMeal)
	if err != nil {
		respondFavouritesError(rw, err)
		return
	}

	metrics.RecordFavouriteToggle(result.Favourited)
	logging.Ctx(r.Context()).Debug().
		Int("meal_id", result.MealID).
		Bool("favourited", result.Favourited).
		Msg("Favourite toggled")

	rw.Success(ToggleFavouriteResponse{
		Msg:        "Success",
		MealID:     result.MealID,
		Favourited: result.Favourited,
		Favourites: result.Favourites,
	})
}
