// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const testSecret = "k9vJ2mQ4xT7rW1pL8sN3bZ6cF0hD5gYa"

// clearEnv removes every variable so the host environment cannot leak into
// LoadWithKoanf.
func clearEnv(t *testing.T) {
	t.Helper()
	saved := os.Environ()
	os.Clearenv()
	t.Cleanup(func() {
		os.Clearenv()
		for _, kv := range saved {
			if k, v, ok := strings.Cut(kv, "="); ok {
				os.Setenv(k, v)
			}
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Server.Environment = %q, want development", cfg.Server.Environment)
	}
	if cfg.MealDB.BaseURL != DefaultMealDBBaseURL {
		t.Errorf("MealDB.BaseURL = %q", cfg.MealDB.BaseURL)
	}
	if cfg.MealDB.Timeout != 10*time.Second {
		t.Errorf("MealDB.Timeout = %v, want 10s", cfg.MealDB.Timeout)
	}
	if cfg.MealDB.CacheTTL != 10*time.Minute {
		t.Errorf("MealDB.CacheTTL = %v, want 10m", cfg.MealDB.CacheTTL)
	}
	if cfg.Security.BcryptCost != 12 {
		t.Errorf("Security.BcryptCost = %d, want 12", cfg.Security.BcryptCost)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"http://localhost:3001"}) {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.History.CookieName != "history" || cfg.History.TTL != time.Hour {
		t.Errorf("History = %+v, want history/1h", cfg.History)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	// Defaults are deliberately incomplete: JWT_SECRET has no default.
	if err := cfg.Validate(); err == nil {
		t.Error("defaultConfig().Validate() = nil, want JWT_SECRET error")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"HTTP_PORT", "server.port"},
		{"ENVIRONMENT", "server.environment"},
		{"MEALDB_BASE_URL", "mealdb.base_url"},
		{"MEALDB_CACHE_TTL", "mealdb.cache_ttl"},
		{"STORAGE_IN_MEMORY", "storage.in_memory"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"HISTORY_TTL", "history.ttl"},
		{"LOG_LEVEL", "logging.level"},
		{"log_format", "logging.format"},
		{"PATH", ""},
		{"HOME", ""},
		{"UNKNOWN_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		path := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(path, []byte("server: {}\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		defer os.Remove(path)

		if got := findConfigFile(); got != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", got)
		}
	})

	t.Run("CONFIG_PATH takes precedence", func(t *testing.T) {
		custom := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(custom, []byte("server: {}\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		t.Setenv(ConfigPathEnvVar, custom)

		if got := findConfigFile(); got != custom {
			t.Errorf("findConfigFile() = %q, want %q", got, custom)
		}
	})

	t.Run("CONFIG_PATH missing falls back", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/does/not/exist.yaml")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	os.Setenv("JWT_SECRET", testSecret)
	os.Setenv("HTTP_PORT", "9000")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("MEALDB_CACHE_TTL", "90s")
	os.Setenv("STORAGE_IN_MEMORY", "true")
	os.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.MealDB.CacheTTL != 90*time.Second {
		t.Errorf("MealDB.CacheTTL = %v, want 90s", cfg.MealDB.CacheTTL)
	}
	if !cfg.Storage.InMemory {
		t.Error("Storage.InMemory = false, want true")
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	yamlContent := `
server:
  port: 8080
  environment: staging
mealdb:
  base_url: http://mealdb.internal/api/json/v1/1
  burst: 3
security:
  jwt_secret: ` + testSecret + `
  cors_origins:
    - http://file.test
history:
  cookie_name: recent
`
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	os.Setenv(ConfigPathEnvVar, path)
	os.Setenv("HTTP_PORT", "7070")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Server.Environment != "staging" {
		t.Errorf("Server.Environment = %q, want staging from file", cfg.Server.Environment)
	}
	if cfg.MealDB.BaseURL != "http://mealdb.internal/api/json/v1/1" {
		t.Errorf("MealDB.BaseURL = %q", cfg.MealDB.BaseURL)
	}
	if cfg.MealDB.Burst != 3 {
		t.Errorf("MealDB.Burst = %d, want 3", cfg.MealDB.Burst)
	}
	if cfg.MealDB.MaxRetries != 3 {
		t.Errorf("MealDB.MaxRetries = %d, want default 3", cfg.MealDB.MaxRetries)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"http://file.test"}) {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.History.CookieName != "recent" {
		t.Errorf("History.CookieName = %q, want recent", cfg.History.CookieName)
	}
}

func TestLoadWithKoanfValidationFailure(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	os.Setenv("JWT_SECRET", testSecret)
	os.Setenv("HTTP_PORT", "70000")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("LoadWithKoanf() error = nil, want port validation error")
	}
	if !strings.Contains(err.Error(), "HTTP_PORT") {
		t.Errorf("error = %v, want mention of HTTP_PORT", err)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}
