// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package auth is the identity provider: password hashing, signed session
// tokens and the middleware that turns a token into a username on the request
// context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nivremi/recipe-web-app/internal/config"
)

// Issuer is the iss claim of every token this service signs.
const Issuer = "recipe-web-app"

// DefaultSessionTimeout applies when the configuration leaves it unset.
const DefaultSessionTimeout = 24 * time.Hour

// Claims are the JWT claims of a session token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates session tokens with HMAC-SHA256.
type JWTManager struct {
	secret  []byte
	timeout time.Duration
	now     func() time.Time
}

// NewJWTManager creates a token manager from the security configuration.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required but was empty")
	}
	timeout := cfg.SessionTimeout
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &JWTManager{
		secret:  []byte(cfg.JWTSecret),
		timeout: timeout,
		now:     time.Now,
	}, nil
}

// Timeout returns how long issued tokens stay valid.
func (m *JWTManager) Timeout() time.Duration {
	return m.timeout
}

// GenerateToken signs a token for username and returns it with its expiry.
func (m *JWTManager) GenerateToken(username string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.timeout)

	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies signature, algorithm, issuer and time claims, and
// returns the claims of a valid token.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}
	return claims, nil
}
