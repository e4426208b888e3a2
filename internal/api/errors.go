// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/nivremi/recipe-web-app/internal/auth"
	"github.com/nivremi/recipe-web-app/internal/favourites"
	"github.com/nivremi/recipe-web-app/internal/mealdb"
	"github.com/nivremi/recipe-web-app/internal/recipe"
	"github.com/nivremi/recipe-web-app/internal/store"
)

// upstreamService names TheMealDB in error responses and logs.
const upstreamService = "TheMealDB"

// statusClientClosedRequest is logged when the client went away mid-request.
const statusClientClosedRequest = 499

// respondCatalogError maps recipe source failures onto the envelope.
func respondCatalogError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, mealdb.ErrMealNotFound):
		rw.NotFound("Meal not found")
	case errors.Is(err, recipe.ErrMalformedSourceData):
		rw.MalformedSourceData(upstreamService, err)
	case errors.Is(err, context.Canceled):
		rw.Error(statusClientClosedRequest, ErrCodeBadRequest, "Request canceled")
	default:
		// ErrSourceUnavailable and anything unexpected from the upstream path.
		rw.ExternalServiceError(upstreamService, err)
	}
}

// respondFavouritesError maps favourites and store failures onto the envelope.
func respondFavouritesError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, favourites.ErrInvalidMealID):
		rw.InvalidMealID("idMeal must be an integer meal id")
	case errors.Is(err, favourites.ErrUnauthenticated),
		errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, store.ErrUserNotFound):
		// A valid token for a deleted account is treated like no token.
		rw.Unauthorized("Authentication required")
	default:
		rw.DatabaseError(err)
	}
}

// RespondUnauthorized is the auth.UnauthorizedFunc used by the router.
func RespondUnauthorized(w http.ResponseWriter, r *http.Request, _ error) {
	NewResponseWriter(w, r).Unauthorized("Authentication required")
}
