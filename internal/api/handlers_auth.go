// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/nivremi/recipe-web-app/internal/auth"
	"github.com/nivremi/recipe-web-app/internal/logging"
	"github.com/nivremi/recipe-web-app/internal/metrics"
	"github.com/nivremi/recipe-web-app/internal/store"
)

// Signup handles POST /auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SignupRequest
	if !decodeAndValidate(rw, w, r, &req) {
		metrics.RecordAuthAttempt("signup", "invalid")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if issues := h.policy.Check(req.Password, req.Username); len(issues) > 0 {
		metrics.RecordAuthAttempt("signup", "invalid")
		rw.ValidationError("Password does not meet requirements", map[string]interface{}{
			"field":  "password",
			"issues": issues,
		})
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		rw.InternalError("Failed to process password")
		return
	}

	err = h.users.CreateUser(r.Context(), &store.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    h.now().UTC(),
	})
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		metrics.RecordAuthAttempt("signup", "conflict")
		rw.Conflict("Username already taken")
		return
	case errors.Is(err, store.ErrEmailTaken):
		metrics.RecordAuthAttempt("signup", "conflict")
		rw.Conflict("Email already registered")
		return
	case err != nil:
		metrics.RecordAuthAttempt("signup", "failure")
		rw.DatabaseError(err)
		return
	}

	metrics.RecordAuthAttempt("signup", "success")
	logging.Ctx(r.Context()).Info().Str("username", req.Username).Msg("User signed up")
	rw.Created(SignupResponse{Msg: "User created", Username: req.Username})
}

// Login handles POST /auth/token.
//
// Unknown users and wrong passwords get the same 401 after a comparable
// amount of bcrypt work.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req LoginRequest
	if !decodeAndValidate(rw, w, r, &req) {
		metrics.RecordAuthAttempt("login", "invalid")
		return
	}

	user, err := h.users.GetUser(r.Context(), req.Username)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		_ = h.hasher.CompareDummy(req.Password)
		h.rejectLogin(rw, r, req.Username)
		return
	case err != nil:
		metrics.RecordAuthAttempt("login", "failure")
		rw.DatabaseError(err)
		return
	}

	if err := h.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		h.rejectLogin(rw, r, req.Username)
		return
	}

	token, expiresAt, err := h.tokens.GenerateToken(user.Username)
	if err != nil {
		metrics.RecordAuthAttempt("login", "failure")
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue token")
		rw.InternalError("Failed to issue token")
		return
	}

	http.SetCookie(w, auth.TokenCookie(token, expiresAt, isSecureRequest(r)))
	metrics.RecordAuthAttempt("login", "success")
	rw.Success(TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Unix(),
	})
}

func (h *Handler) rejectLogin(rw *ResponseWriter, r *http.Request, username string) {
	metrics.RecordAuthAttempt("login", "failure")
	logging.Ctx(r.Context()).Info().Str("username", username).Msg("Login rejected")
	rw.Unauthorized(auth.ErrInvalidCredentials.Error())
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearTokenCookie(isSecureRequest(r)))
	NewResponseWriter(w, r).Success(MessageResponse{Msg: "Logged out"})
}
