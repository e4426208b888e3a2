// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/nivremi/recipe-web-app/internal/auth"
	"github.com/nivremi/recipe-web-app/internal/config"
	"github.com/nivremi/recipe-web-app/internal/favourites"
	"github.com/nivremi/recipe-web-app/internal/mealdb"
	"github.com/nivremi/recipe-web-app/internal/recipe"
	"github.com/nivremi/recipe-web-app/internal/store"
)

const testJWTSecret = "test-secret-key-for-api-handlers-0123456789"

func strPtr(s string) *string { return &s }

// fakeCatalog serves fixed recipes keyed by meal id.
type fakeCatalog struct {
	mu          sync.Mutex
	recipes     map[int]recipe.Recipe
	random      recipe.Recipe
	ingredients []string
	areas       []string
	meals       []recipe.MealSummary
	err         error
	lastQuery   string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		recipes: map[int]recipe.Recipe{
			52772: testRecipe("52772", "Teriyaki Chicken Casserole"),
			52959: testRecipe("52959", "Baked salmon with fennel"),
		},
		random:      testRecipe("53049", "Apam balik"),
		ingredients: []string{"Chicken", "Salmon", "Beef"},
		areas:       []string{"British", "Japanese"},
		meals: []recipe.MealSummary{
			{Name: "Teriyaki Chicken Casserole", ID: "52772", Image: strPtr("https://example.test/1.jpg")},
		},
	}
}

func testRecipe(id, title string) recipe.Recipe {
	return recipe.Recipe{
		ID:          id,
		Title:       title,
		Description: "Chicken",
		Region:      "Japanese",
		Ingredients: []string{"3/4 cup soy sauce"},
		Steps:       []string{"Preheat oven to 350 F."},
		Image:       strPtr("https://example.test/" + id + ".jpg"),
	}
}

func (f *fakeCatalog) Recipe(_ context.Context, id int) (recipe.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return recipe.Recipe{}, f.err
	}
	rec, ok := f.recipes[id]
	if !ok {
		return recipe.Recipe{}, mealdb.ErrMealNotFound
	}
	return rec, nil
}

func (f *fakeCatalog) RandomRecipe(context.Context) (recipe.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return recipe.Recipe{}, f.err
	}
	return f.random, nil
}

func (f *fakeCatalog) Ingredients(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ingredients, f.err
}

func (f *fakeCatalog) Areas(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.areas, f.err
}

func (f *fakeCatalog) MealsByIngredient(_ context.Context, ingredient string) ([]recipe.MealSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = ingredient
	return f.meals, f.err
}

func (f *fakeCatalog) MealsByArea(_ context.Context, area string) ([]recipe.MealSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = area
	return f.meals, f.err
}

func (f *fakeCatalog) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeUpstream struct {
	state string
}

func (u *fakeUpstream) State() string   { return u.state }
func (u *fakeUpstream) Available() bool { return u.state != "open" }

type testEnv struct {
	server   http.Handler
	handler  *Handler
	catalog  *fakeCatalog
	store    *store.Store
	tokens   *auth.JWTManager
	upstream *fakeUpstream
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(&config.StorageConfig{InMemory: true})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := auth.NewJWTManager(&config.SecurityConfig{
		JWTSecret:      testJWTSecret,
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	env := &testEnv{
		catalog:  newFakeCatalog(),
		store:    st,
		tokens:   tokens,
		upstream: &fakeUpstream{state: "closed"},
	}
	env.handler = NewHandler(Deps{
		Catalog:    env.catalog,
		Favourites: favourites.NewManager(st),
		Users:      st,
		Upstream:   env.upstream,
		Tokens:     tokens,
		Hasher:     auth.NewPasswordHasher(bcrypt.MinCost),
	})

	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	router := NewRouter(env.handler, auth.NewMiddleware(tokens, RespondUnauthorized), NewChiMiddleware(cfg))
	env.server = router.SetupChi()
	return env
}

// createUser stores a user directly and returns a bearer token for it.
func (env *testEnv) createUser(t *testing.T, username string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3r-Secret-Pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	err = env.store.CreateUser(context.Background(), &store.User{
		Username:     username,
		Email:        username + "@example.test",
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, _, err := env.tokens.GenerateToken(username)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("response not successful: %s", rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
