// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package config loads and validates application configuration.
//
// Configuration is layered with Koanf v2:
//  1. Defaults from defaultConfig()
//  2. An optional YAML file (CONFIG_PATH, config.yaml, /etc/recipe-web-app/config.yaml)
//  3. Environment variables, mapped explicitly in envTransformFunc
//
// Later layers override earlier ones. Validate runs after unmarshalling and
// reports problems using the environment variable names operators set.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	MealDB   MealDBConfig   `koanf:"mealdb"`
	Storage  StorageConfig  `koanf:"storage"`
	Security SecurityConfig `koanf:"security"`
	History  HistoryConfig  `koanf:"history"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging or production
}

// MealDBConfig configures the TheMealDB client.
type MealDBConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`

	// Client side limiter in front of the public API.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// 429 handling.
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// Circuit breaker open state duration.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`

	// Lifetime of cached lookups and listings. Zero disables caching.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// StorageConfig configures the BadgerDB user store.
type StorageConfig struct {
	Path string `koanf:"path"`

	// InMemory keeps the store in RAM; data is lost on restart.
	InMemory bool `koanf:"in_memory"`

	// GCInterval is how often value log garbage collection runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// SecurityConfig holds authentication and request limiting settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
}

// HistoryConfig controls the view history cookie.
type HistoryConfig struct {
	CookieName string        `koanf:"cookie_name"`
	TTL        time.Duration `koanf:"ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load is shorthand for LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
