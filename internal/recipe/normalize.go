// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package recipe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ordinalPrefix matches leading step numbering such as "1. " or "  12.".
var ordinalPrefix = regexp.MustCompile(`^\s*\d+\.\s*`)

// Normalize converts a raw meal record into a Recipe.
//
// Rules:
//   - idMeal and strMeal must be present and non-blank, otherwise the error
//     wraps ErrMalformedSourceData
//   - ingredients come from slots 1..20 in order; a slot contributes
//     "<measure> <ingredient>" only when the trimmed ingredient is non-empty
//   - steps are the non-blank instruction lines with any ordinal prefix removed
//   - description and region default to the empty string, image to nil
//
// Normalize has no side effects.
func Normalize(raw RawMeal) (Recipe, error) {
	id, err := requiredField(raw, KeyID)
	if err != nil {
		return Recipe{}, err
	}
	title, err := requiredField(raw, KeyTitle)
	if err != nil {
		return Recipe{}, err
	}

	description, _ := raw.Get(KeyCategory)
	region, _ := raw.Get(KeyArea)
	instructions, _ := raw.Get(KeyInstructions)

	return Recipe{
		ID:          id,
		Title:       title,
		Description: description,
		Region:      region,
		Ingredients: ExtractIngredients(raw),
		Steps:       ExtractSteps(instructions),
		Image:       optionalField(raw, KeyThumbnail),
	}, nil
}

// ExtractIngredients builds the ordered ingredient lines of a raw record.
// The result is never nil.
func ExtractIngredients(raw RawMeal) []string {
	ingredients := make([]string, 0, MaxIngredientSlots)
	for i := 1; i <= MaxIngredientSlots; i++ {
		slot := strconv.Itoa(i)

		ingredient, ok := raw.Get(KeyIngredient + slot)
		if !ok {
			continue
		}
		ingredient = strings.TrimSpace(ingredient)
		if ingredient == "" {
			continue
		}

		measure, _ := raw.Get(keyMeasure + slot)
		ingredients = append(ingredients, strings.TrimSpace(measure)+" "+ingredient)
	}
	return ingredients
}

// ExtractSteps splits free-form instructions into cleaned steps.
// The result is never nil.
func ExtractSteps(instructions string) []string {
	instructions = strings.ReplaceAll(instructions, "\r\n", "\n")

	steps := make([]string, 0)
	for _, line := range strings.Split(instructions, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// A line that is only a number ("3.") is dropped here.
		line = strings.TrimSpace(ordinalPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		steps = append(steps, line)
	}
	return steps
}

// SummaryFromRaw builds a MealSummary from a listing record.
func SummaryFromRaw(raw RawMeal) (MealSummary, error) {
	id, err := requiredField(raw, KeyID)
	if err != nil {
		return MealSummary{}, err
	}
	name, err := requiredField(raw, KeyTitle)
	if err != nil {
		return MealSummary{}, err
	}
	return MealSummary{
		Name:  name,
		ID:    id,
		Image: optionalField(raw, KeyThumbnail),
	}, nil
}

func requiredField(raw RawMeal, key string) (string, error) {
	v, ok := raw.Get(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: missing %s", ErrMalformedSourceData, key)
	}
	return strings.TrimSpace(v), nil
}

func optionalField(raw RawMeal, key string) *string {
	v, ok := raw.Get(key)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// ListingNames collects the trimmed, non-blank values of key from listing
// records such as the ingredient and area catalogues. Records without the key
// are skipped. The result is never nil.
func ListingNames(raws []RawMeal, key string) []string {
	names := make([]string, 0, len(raws))
	for _, raw := range raws {
		v, ok := raw.Get(key)
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			names = append(names, v)
		}
	}
	return names
}
