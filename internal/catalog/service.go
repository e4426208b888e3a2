// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package catalog serves normalized recipes and listings. It sits between the
// HTTP handlers and the recipe source, normalizing raw records and caching
// results for a short TTL.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nivremi/recipe-web-app/internal/cache"
	"github.com/nivremi/recipe-web-app/internal/logging"
	"github.com/nivremi/recipe-web-app/internal/recipe"
)

// Source is the upstream recipe provider. mealdb.CircuitBreakerClient
// implements it.
type Source interface {
	LookupMeal(ctx context.Context, id int) (recipe.RawMeal, error)
	RandomMeal(ctx context.Context) (recipe.RawMeal, error)
	ListIngredients(ctx context.Context) ([]string, error)
	ListAreas(ctx context.Context) ([]string, error)
	FilterByIngredient(ctx context.Context, ingredient string) ([]recipe.RawMeal, error)
	FilterByArea(ctx context.Context, area string) ([]recipe.RawMeal, error)
}

// Service fetches, normalizes and caches recipes. A nil cache disables
// caching for that kind of result.
type Service struct {
	source   Source
	recipes  *cache.Cache
	listings *cache.Cache
}

// NewService creates a catalog service.
func NewService(source Source, recipes, listings *cache.Cache) *Service {
	return &Service{
		source:   source,
		recipes:  recipes,
		listings: listings,
	}
}

func recipeKey(id string) string {
	return "recipe:" + id
}

// Recipe returns the normalized recipe with the given meal id.
func (s *Service) Recipe(ctx context.Context, id int) (recipe.Recipe, error) {
	key := recipeKey(strconv.Itoa(id))
	if cached, ok := lookup[recipe.Recipe](s.recipes, key); ok {
		return cached, nil
	}

	raw, err := s.source.LookupMeal(ctx, id)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("lookup meal %d: %w", id, err)
	}
	r, err := recipe.Normalize(raw)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("normalize meal %d: %w", id, err)
	}

	store(s.recipes, key, r)
	return r, nil
}

// RandomRecipe returns a random normalized recipe. The result is cached under
// its id so that a follow-up lookup is served locally.
func (s *Service) RandomRecipe(ctx context.Context) (recipe.Recipe, error) {
	raw, err := s.source.RandomMeal(ctx)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("random meal: %w", err)
	}
	r, err := recipe.Normalize(raw)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("normalize random meal: %w", err)
	}

	store(s.recipes, recipeKey(r.ID), r)
	return r, nil
}

// Ingredients lists every ingredient name.
func (s *Service) Ingredients(ctx context.Context) ([]string, error) {
	return cachedNames(s.listings, "ingredients", func() ([]string, error) {
		return s.source.ListIngredients(ctx)
	})
}

// Areas lists every area (cuisine) name.
func (s *Service) Areas(ctx context.Context) ([]string, error) {
	return cachedNames(s.listings, "areas", func() ([]string, error) {
		return s.source.ListAreas(ctx)
	})
}

// MealsByIngredient lists the meals that use ingredient.
func (s *Service) MealsByIngredient(ctx context.Context, ingredient string) ([]recipe.MealSummary, error) {
	return s.summaries(ctx, "ingredient", ingredient, s.source.FilterByIngredient)
}

// MealsByArea lists the meals of an area.
func (s *Service) MealsByArea(ctx context.Context, area string) ([]recipe.MealSummary, error) {
	return s.summaries(ctx, "area", area, s.source.FilterByArea)
}

func (s *Service) summaries(
	ctx context.Context,
	kind, value string,
	fetch func(context.Context, string) ([]recipe.RawMeal, error),
) ([]recipe.MealSummary, error) {
	value = strings.TrimSpace(value)
	key := cache.GenerateKey("filter", map[string]string{kind: strings.ToLower(value)})
	if cached, ok := lookup[[]recipe.MealSummary](s.listings, key); ok {
		return cached, nil
	}

	raws, err := fetch(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("filter by %s %q: %w", kind, value, err)
	}

	out := make([]recipe.MealSummary, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		summary, err := recipe.SummaryFromRaw(raw)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, summary)
	}
	if skipped > 0 {
		logging.Ctx(ctx).Warn().
			Str("filter", kind).
			Str("value", value).
			Int("skipped", skipped).
			Msg("dropped malformed meal references from listing")
	}

	store(s.listings, key, out)
	return out, nil
}

func cachedNames(c *cache.Cache, key string, fetch func() ([]string, error)) ([]string, error) {
	if cached, ok := lookup[[]string](c, key); ok {
		return cached, nil
	}
	names, err := fetch()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}
	if names == nil {
		names = []string{}
	}
	store(c, key, names)
	return names, nil
}

func lookup[T any](c *cache.Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

func store(c *cache.Cache, key string, v any) {
	if c != nil {
		c.Set(key, v)
	}
}
