// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package favourites manages each user's set of favourite meals.
//
// The set is held as a Set everywhere inside the process. It is only turned
// into the comma-delimited token at the Store boundary, inside the closure
// passed to Store.UpdateFavourites, so the read-modify-write happens within
// whatever isolation the store provides.
package favourites

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrInvalidMealID indicates a meal id that is missing or not an integer.
	ErrInvalidMealID = errors.New("invalid meal id")

	// ErrUnauthenticated indicates an operation without an authenticated user.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Store persists favourites tokens per user.
type Store interface {
	GetFavourites(ctx context.Context, username string) (string, error)
	SetFavourites(ctx context.Context, username, token string) error
	// UpdateFavourites runs fn on the current token and stores its result
	// atomically with respect to other updates for the same user.
	UpdateFavourites(ctx context.Context, username string, fn func(token string) (string, error)) error
}

// Result describes the state after a toggle.
type Result struct {
	MealID     int   `json:"idMeal"`
	Favourited bool  `json:"favourited"`
	Favourites []int `json:"favourites"`
}

// Manager toggles and lists favourites.
type Manager struct {
	store Store
}

// NewManager creates a Manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Toggle flips membership of the meal identified by rawMealID.
//
// rawMealID is the decoded request value: a JSON number, a numeric string or
// nil. Anything that is not an integer fails with ErrInvalidMealID before the
// store is touched.
func (m *Manager) Toggle(ctx context.Context, username string, rawMealID any) (Result, error) {
	if username == "" {
		return Result{}, ErrUnauthenticated
	}
	mealID, err := ParseMealID(rawMealID)
	if err != nil {
		return Result{}, err
	}

	var result Result
	err = m.store.UpdateFavourites(ctx, username, func(token string) (string, error) {
		set, err := ParseToken(token)
		if err != nil {
			return "", err
		}
		favourited := set.Toggle(mealID)
		// fn may run more than once on conflict; result reflects the final run.
		result = Result{MealID: mealID, Favourited: favourited, Favourites: set.IDs()}
		return FormatToken(set), nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("toggle favourite %d: %w", mealID, err)
	}
	return result, nil
}

// List returns the user's favourite meal ids in insertion order.
func (m *Manager) List(ctx context.Context, username string) ([]int, error) {
	if username == "" {
		return nil, ErrUnauthenticated
	}
	token, err := m.store.GetFavourites(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}
	set, err := ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}
	return set.IDs(), nil
}

// ParseMealID converts a decoded request value into a meal id.
func ParseMealID(v any) (int, error) {
	switch id := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: missing", ErrInvalidMealID)
	case int:
		return id, nil
	case int64:
		return int(id), nil
	case float64:
		if id != math.Trunc(id) || math.IsInf(id, 0) || math.IsNaN(id) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidMealID, id)
		}
		return int(id), nil
	case json.Number:
		return parseMealIDString(string(id))
	case string:
		return parseMealIDString(id)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidMealID, v)
	}
}

func parseMealIDString(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: blank", ErrInvalidMealID)
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMealID, s)
	}
	return id, nil
}
