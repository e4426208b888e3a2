// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package recipe defines the canonical recipe shape served to clients and the
// normalizer that builds it from raw TheMealDB meal records.
//
// Raw records are loosely structured: twenty numbered ingredient and measure
// slots, free-form instruction text, and optional category, area and thumbnail
// fields that are frequently null. Normalize is the single place where those
// keys are read; everything downstream works with Recipe.
package recipe

import "errors"

// ErrMalformedSourceData indicates a record from the recipe source is missing
// a required field (meal id or title).
var ErrMalformedSourceData = errors.New("malformed source data")

// MaxIngredientSlots is the number of numbered ingredient/measure slots in a
// TheMealDB record.
const MaxIngredientSlots = 20

// Raw record keys.
const (
	KeyID           = "idMeal"
	KeyTitle        = "strMeal"
	KeyCategory     = "strCategory"
	KeyArea         = "strArea"
	KeyThumbnail    = "strMealThumb"
	KeyInstructions = "strInstructions"
	KeyIngredient   = "strIngredient"
	keyMeasure      = "strMeasure"
)

// RawMeal is an unvalidated meal record as returned by the recipe source.
// Values are pointers because the upstream API emits null for empty slots.
type RawMeal map[string]*string

// Get returns the value stored under key and whether it was present and non-null.
func (m RawMeal) Get(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Recipe is the normalized recipe served to clients.
// All seven fields are always present in JSON; Image is null when the source
// has no thumbnail.
type Recipe struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Region      string   `json:"region"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Image       *string  `json:"image"`
}

// MealSummary is a lightweight meal reference used by listing endpoints.
type MealSummary struct {
	Name  string  `json:"name"`
	ID    string  `json:"id"`
	Image *string `json:"image,omitempty"`
}
