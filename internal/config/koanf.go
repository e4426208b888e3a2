// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recipe-web-app/config.yaml",
	"/etc/recipe-web-app/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultMealDBBaseURL is the free v1 API endpoint.
const DefaultMealDBBaseURL = "https://www.themealdb.com/api/json/v1/1"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		MealDB: MealDBConfig{
			BaseURL:           DefaultMealDBBaseURL,
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
			Burst:             10,
			MaxRetries:        3,
			RetryBaseDelay:    500 * time.Millisecond,
			BreakerTimeout:    30 * time.Second,
			CacheTTL:          10 * time.Minute,
		},
		Storage: StorageConfig{
			Path:       "/data/users",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			SessionTimeout:    24 * time.Hour,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"http://localhost:3001"},
			BcryptCost:        12,
		},
		History: HistoryConfig{
			CookieName: "history",
			TTL:        time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads defaults, then the config file if any, then the
// environment, and validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths arrive as comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// TheMealDB
	"mealdb_base_url":            "mealdb.base_url",
	"mealdb_timeout":             "mealdb.timeout",
	"mealdb_requests_per_second": "mealdb.requests_per_second",
	"mealdb_burst":               "mealdb.burst",
	"mealdb_max_retries":         "mealdb.max_retries",
	"mealdb_retry_base_delay":    "mealdb.retry_base_delay",
	"mealdb_breaker_timeout":     "mealdb.breaker_timeout",
	"mealdb_cache_ttl":           "mealdb.cache_ttl",

	// Storage
	"storage_path":        "storage.path",
	"storage_in_memory":   "storage.in_memory",
	"storage_gc_interval": "storage.gc_interval",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"bcrypt_cost":         "security.bcrypt_cost",

	// History
	"history_cookie_name": "history.cookie_name",
	"history_ttl":         "history.ttl",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unknown variables map to "" and are ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
