// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults with secret", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 65536 }, "HTTP_PORT"},
		{"server timeout", func(c *Config) { c.Server.Timeout = 0 }, "HTTP_TIMEOUT"},
		{"mealdb ftp url", func(c *Config) { c.MealDB.BaseURL = "ftp://themealdb.com" }, "MEALDB_BASE_URL"},
		{"mealdb no host", func(c *Config) { c.MealDB.BaseURL = "https:///api" }, "MEALDB_BASE_URL"},
		{"mealdb query", func(c *Config) { c.MealDB.BaseURL = "https://x.test/api?k=1" }, "MEALDB_BASE_URL"},
		{"mealdb path allowed", func(c *Config) { c.MealDB.BaseURL = "http://localhost:8080/api/json/v1/1" }, ""},
		{"mealdb rps", func(c *Config) { c.MealDB.RequestsPerSecond = 0 }, "MEALDB_REQUESTS_PER_SECOND"},
		{"mealdb burst", func(c *Config) { c.MealDB.Burst = 0 }, "MEALDB_BURST"},
		{"mealdb retries", func(c *Config) { c.MealDB.MaxRetries = 11 }, "MEALDB_MAX_RETRIES"},
		{"cache ttl negative", func(c *Config) { c.MealDB.CacheTTL = -time.Second }, "MEALDB_CACHE_TTL"},
		{"cache ttl zero allowed", func(c *Config) { c.MealDB.CacheTTL = 0 }, ""},
		{"storage path", func(c *Config) { c.Storage.Path = " " }, "STORAGE_PATH"},
		{"storage in memory without path", func(c *Config) { c.Storage.Path = ""; c.Storage.InMemory = true }, ""},
		{"gc interval", func(c *Config) { c.Storage.GCInterval = time.Second }, "STORAGE_GC_INTERVAL"},
		{"missing secret", func(c *Config) { c.Security.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.Security.JWTSecret = "short" }, "at least 32"},
		{"placeholder secret", func(c *Config) { c.Security.JWTSecret = "changeme-changeme-changeme-changeme" }, "placeholder"},
		{"session timeout", func(c *Config) { c.Security.SessionTimeout = 0 }, "SESSION_TIMEOUT"},
		{"rate limit reqs", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit window", func(c *Config) { c.Security.RateLimitWindow = 2 * time.Hour }, "RATE_LIMIT_WINDOW"},
		{"rate limit disabled skips bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"bcrypt cost", func(c *Config) { c.Security.BcryptCost = 40 }, "BCRYPT_COST"},
		{"wildcard cors in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"*"}
		}, "CORS_ORIGINS"},
		{"wildcard cors in development", func(c *Config) { c.Security.CORSOrigins = []string{"*"} }, ""},
		{"history cookie name", func(c *Config) { c.History.CookieName = "" }, "HISTORY_COOKIE_NAME"},
		{"history ttl", func(c *Config) { c.History.TTL = 0 }, "HISTORY_TTL"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	tests := []struct {
		env        string
		production bool
		dev        bool
	}{
		{"", false, true},
		{"development", false, true},
		{"dev", false, true},
		{"staging", false, false},
		{"production", true, false},
		{"PROD", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Environment: tt.env}}
			if cfg.IsProduction() != tt.production {
				t.Errorf("IsProduction() = %v, want %v", cfg.IsProduction(), tt.production)
			}
			if cfg.IsDevelopment() != tt.dev {
				t.Errorf("IsDevelopment() = %v, want %v", cfg.IsDevelopment(), tt.dev)
			}
		})
	}
}
