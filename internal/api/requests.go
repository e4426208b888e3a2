// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/nivremi/recipe-web-app/internal/validation"
)

// maxRequestBodySize bounds JSON request bodies.
const maxRequestBodySize = 64 * 1024

var errEmptyBody = errors.New("request body is empty")

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=64,username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /auth/token.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// ToggleFavouriteRequest is the body of POST /api/favourites.
// IDMeal stays untyped so favourites.ParseMealID can accept a number or a
// numeric string.
type ToggleFavouriteRequest struct {
	IDMeal any `json:"idMeal"`
}

// TokenResponse is returned by POST /auth/token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// SignupResponse is returned by POST /auth/signup.
type SignupResponse struct {
	Msg      string `json:"msg"`
	Username string `json:"username"`
}

// MessageResponse carries a short confirmation.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// ToggleFavouriteResponse is returned by POST /api/favourites.
type ToggleFavouriteResponse struct {
	Msg        string `json:"msg"`
	MealID     int    `json:"idMeal"`
	Favourited bool   `json:"favourited"`
	Favourites []int  `json:"favourites"`
}

// decodeJSON reads a bounded JSON body into dst. Numbers decode as
// json.Number when dst holds untyped fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// decodeAndValidate decodes the body into dst and runs struct validation.
// It writes the error response itself and reports whether the handler may
// continue.
func decodeAndValidate(rw *ResponseWriter, w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		rw.BadRequest("Invalid request body")
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// requiredQuery returns a trimmed query parameter validated against tag.
// It writes the error response itself and reports whether the handler may
// continue.
func requiredQuery(rw *ResponseWriter, r *http.Request, name, tag string) (string, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		rw.BadRequest(fmt.Sprintf("Missing required query parameter: %s", name))
		return "", false
	}
	if verr := validation.ValidateVar(name, value, tag); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return "", false
	}
	return value, true
}
