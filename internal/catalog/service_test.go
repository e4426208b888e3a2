// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package catalog

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/nivremi/recipe-web-app/internal/cache"
	"github.com/nivremi/recipe-web-app/internal/mealdb"
	"github.com/nivremi/recipe-web-app/internal/recipe"
)

func strPtr(s string) *string { return &s }

// fakeSource serves canned records and counts calls per method.
type fakeSource struct {
	mu      sync.Mutex
	meals   map[int]recipe.RawMeal
	random  recipe.RawMeal
	filters map[string][]recipe.RawMeal
	err     error
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		meals: map[int]recipe.RawMeal{
			52772: {
				recipe.KeyID:           strPtr("52772"),
				recipe.KeyTitle:        strPtr("Teriyaki Chicken Casserole"),
				recipe.KeyArea:         strPtr("Japanese"),
				recipe.KeyInstructions: strPtr("1. Mix.\n2. Bake."),
			},
			99: {recipe.KeyTitle: strPtr("No id")},
		},
		random: recipe.RawMeal{
			recipe.KeyID:    strPtr("52959"),
			recipe.KeyTitle: strPtr("Baked salmon"),
		},
		filters: map[string][]recipe.RawMeal{
			"i:Chicken": {
				{recipe.KeyID: strPtr("1"), recipe.KeyTitle: strPtr("Chicken Pie")},
				{recipe.KeyID: strPtr("2")},
				{recipe.KeyID: strPtr("3"), recipe.KeyTitle: strPtr("Chicken Curry"), recipe.KeyThumbnail: strPtr("https://example.test/c.jpg")},
			},
			"a:British": {},
		},
		calls: make(map[string]int),
	}
}

func (f *fakeSource) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakeSource) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSource) LookupMeal(_ context.Context, id int) (recipe.RawMeal, error) {
	if err := f.record("lookup"); err != nil {
		return nil, err
	}
	raw, ok := f.meals[id]
	if !ok {
		return nil, fmt.Errorf("meal %d: %w", id, mealdb.ErrMealNotFound)
	}
	return raw, nil
}

func (f *fakeSource) RandomMeal(context.Context) (recipe.RawMeal, error) {
	if err := f.record("random"); err != nil {
		return nil, err
	}
	return f.random, nil
}

func (f *fakeSource) ListIngredients(context.Context) ([]string, error) {
	if err := f.record("ingredients"); err != nil {
		return nil, err
	}
	return []string{"Chicken", "Salmon"}, nil
}

func (f *fakeSource) ListAreas(context.Context) ([]string, error) {
	if err := f.record("areas"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeSource) FilterByIngredient(_ context.Context, ingredient string) ([]recipe.RawMeal, error) {
	if err := f.record("filter"); err != nil {
		return nil, err
	}
	return f.filters["i:"+ingredient], nil
}

func (f *fakeSource) FilterByArea(_ context.Context, area string) ([]recipe.RawMeal, error) {
	if err := f.record("filter"); err != nil {
		return nil, err
	}
	return f.filters["a:"+area], nil
}

func newTestService(src Source) *Service {
	return NewService(src, cache.New("recipe", time.Minute, 10), cache.New("listing", time.Minute, 10))
}

func TestService_Recipe(t *testing.T) {
	src := newFakeSource()
	svc := newTestService(src)
	ctx := context.Background()

	got, err := svc.Recipe(ctx, 52772)
	if err != nil {
		t.Fatalf("Recipe() error = %v", err)
	}
	if got.Title != "Teriyaki Chicken Casserole" || !reflect.DeepEqual(got.Steps, []string{"Mix.", "Bake."}) {
		t.Errorf("Recipe() = %+v", got)
	}

	if _, err := svc.Recipe(ctx, 52772); err != nil {
		t.Fatalf("second Recipe() error = %v", err)
	}
	if n := src.count("lookup"); n != 1 {
		t.Errorf("source lookups = %d, want 1 (second served from cache)", n)
	}
}

func TestService_RecipeErrors(t *testing.T) {
	src := newFakeSource()
	svc := newTestService(src)
	ctx := context.Background()

	if _, err := svc.Recipe(ctx, 1); !errors.Is(err, mealdb.ErrMealNotFound) {
		t.Errorf("unknown id: error = %v, want ErrMealNotFound", err)
	}
	if _, err := svc.Recipe(ctx, 99); !errors.Is(err, recipe.ErrMalformedSourceData) {
		t.Errorf("record without id: error = %v, want ErrMalformedSourceData", err)
	}

	src.err = fmt.Errorf("%w: down", mealdb.ErrSourceUnavailable)
	if _, err := svc.Recipe(ctx, 52772); !errors.Is(err, mealdb.ErrSourceUnavailable) {
		t.Errorf("source down: error = %v, want ErrSourceUnavailable", err)
	}
}

func TestService_RandomRecipeCachesByID(t *testing.T) {
	src := newFakeSource()
	svc := newTestService(src)
	ctx := context.Background()

	got, err := svc.RandomRecipe(ctx)
	if err != nil {
		t.Fatalf("RandomRecipe() error = %v", err)
	}
	if got.ID != "52959" {
		t.Errorf("ID = %q", got.ID)
	}

	again, err := svc.Recipe(ctx, 52959)
	if err != nil {
		t.Fatalf("Recipe() error = %v", err)
	}
	if again.Title != "Baked salmon" || src.count("lookup") != 0 {
		t.Errorf("lookup after random should hit cache: %+v, lookups=%d", again, src.count("lookup"))
	}
}

func TestService_Listings(t *testing.T) {
	src := newFakeSource()
	svc := newTestService(src)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ingredients, err := svc.Ingredients(ctx)
		if err != nil || !reflect.DeepEqual(ingredients, []string{"Chicken", "Salmon"}) {
			t.Fatalf("Ingredients() = %q, %v", ingredients, err)
		}
	}
	if n := src.count("ingredients"); n != 1 {
		t.Errorf("source ingredient calls = %d, want 1", n)
	}

	areas, err := svc.Areas(ctx)
	if err != nil {
		t.Fatalf("Areas() error = %v", err)
	}
	if areas == nil || len(areas) != 0 {
		t.Errorf("Areas() = %#v, want empty non-nil slice", areas)
	}
}

func TestService_MealsByIngredientSkipsMalformed(t *testing.T) {
	src := newFakeSource()
	svc := newTestService(src)

	got, err := svc.MealsByIngredient(context.Background(), " Chicken ")
	if err != nil {
		t.Fatalf("MealsByIngredient() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d summaries, want 2: %+v", len(got), got)
	}
	if got[0].Name != "Chicken Pie" || got[1].ID != "3" || got[1].Image == nil {
		t.Errorf("summaries = %+v", got)
	}

	if _, err := svc.MealsByIngredient(context.Background(), "chicken"); err != nil {
		t.Fatal(err)
	}
	if n := src.count("filter"); n != 1 {
		t.Errorf("filter calls = %d, want 1 (key is case-insensitive)", n)
	}
}

func TestService_MealsByAreaEmpty(t *testing.T) {
	svc := newTestService(newFakeSource())

	got, err := svc.MealsByArea(context.Background(), "British")
	if err != nil {
		t.Fatalf("MealsByArea() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("MealsByArea() = %#v, want empty non-nil slice", got)
	}
}

func TestService_ListingErrorNotCached(t *testing.T) {
	src := newFakeSource()
	svc := newTestService(src)
	ctx := context.Background()

	src.err = fmt.Errorf("%w: timeout", mealdb.ErrSourceUnavailable)
	if _, err := svc.Ingredients(ctx); !errors.Is(err, mealdb.ErrSourceUnavailable) {
		t.Fatalf("error = %v, want ErrSourceUnavailable", err)
	}

	src.err = nil
	if _, err := svc.Ingredients(ctx); err != nil {
		t.Fatalf("after recovery: %v", err)
	}
	if n := src.count("ingredients"); n != 2 {
		t.Errorf("source calls = %d, want 2", n)
	}
}

func TestService_NilCaches(t *testing.T) {
	src := newFakeSource()
	svc := NewService(src, nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Recipe(ctx, 52772); err != nil {
			t.Fatal(err)
		}
	}
	if n := src.count("lookup"); n != 2 {
		t.Errorf("lookups = %d, want 2 without cache", n)
	}
}
