// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the production bcrypt cost factor.
const DefaultBcryptCost = 12

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
// The two cases are deliberately indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid username or password")

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int

	// dummyHash is compared against for unknown users.
	dummyHash []byte
}

// NewPasswordHasher creates a hasher. Costs outside bcrypt's range fall back
// to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("recipe-web-app-timing-equalizer"), cost)
	if err != nil {
		// Only possible for an out-of-range cost, excluded above.
		panic(fmt.Sprintf("bcrypt dummy hash: %v", err))
	}
	return &PasswordHasher{cost: cost, dummyHash: dummy}
}

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare checks password against hash and returns ErrInvalidCredentials on
// mismatch.
func (h *PasswordHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
}

// CompareDummy spends the same time as a real comparison and always fails.
// Call it when the user does not exist.
func (h *PasswordHasher) CompareDummy(password string) error {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
	return ErrInvalidCredentials
}
