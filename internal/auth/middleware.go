// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nivremi/recipe-web-app/internal/logging"
	"github.com/nivremi/recipe-web-app/internal/metrics"
)

// TokenCookieName is the cookie carrying the session token for browsers.
const TokenCookieName = "token"

var (
	// ErrUnauthenticated is the umbrella error for a request without a usable
	// session token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrMissingToken means neither an Authorization header nor a token
	// cookie was sent.
	ErrMissingToken = fmt.Errorf("%w: missing token", ErrUnauthenticated)

	// ErrInvalidToken means a token was sent but failed validation.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
)

type contextKey string

// ClaimsContextKey holds the validated *Claims on an authenticated request.
const ClaimsContextKey contextKey = "claims"

// UnauthorizedFunc writes the response for a rejected request.
type UnauthorizedFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware enforces authentication on protected routes.
type Middleware struct {
	jwtManager     *JWTManager
	onUnauthorized UnauthorizedFunc
}

// NewMiddleware creates the authentication middleware. onUnauthorized may be
// nil, in which case a plain 401 is written.
func NewMiddleware(jwtManager *JWTManager, onUnauthorized UnauthorizedFunc) *Middleware {
	if onUnauthorized == nil {
		onUnauthorized = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
	}
	return &Middleware{
		jwtManager:     jwtManager,
		onUnauthorized: onUnauthorized,
	}
}

// Authenticate rejects requests without a valid token and stores the claims
// on the context of the rest.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			metrics.RecordAuthAttempt("token", "missing")
			m.onUnauthorized(w, r, err)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			metrics.RecordAuthAttempt("token", "rejected")
			logging.Ctx(r.Context()).Debug().Err(err).Msg("token validation failed")
			m.onUnauthorized(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// extractToken reads a Bearer token from the Authorization header, falling
// back to the token cookie.
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie(TokenCookieName)
		if err != nil || cookie.Value == "" {
			return "", ErrMissingToken
		}
		return cookie.Value, nil
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: malformed authorization header", ErrInvalidToken)
	}
	return strings.TrimSpace(token), nil
}

// ContextWithClaims stores claims on ctx. The username is also attached for
// logging.Ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, ClaimsContextKey, claims)
	return logging.ContextWithUsername(ctx, claims.Username)
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// UsernameFromContext returns the authenticated username, or "" and false.
func UsernameFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.Username == "" {
		return "", false
	}
	return claims.Username, true
}

// TokenCookie builds the session cookie for token.
func TokenCookie(token string, expiresAt time.Time, secure bool) *http.Cookie {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	return &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearTokenCookie builds a cookie that unsets the session cookie.
func ClearTokenCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
