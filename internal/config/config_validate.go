// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Validate checks that the configuration can be used to start the server.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateMealDB(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateMealDB() error {
	if err := validateBaseURL(c.MealDB.BaseURL, "MEALDB_BASE_URL"); err != nil {
		return err
	}
	if c.MealDB.Timeout <= 0 {
		return fmt.Errorf("MEALDB_TIMEOUT must be positive")
	}
	if c.MealDB.RequestsPerSecond <= 0 {
		return fmt.Errorf("MEALDB_REQUESTS_PER_SECOND must be positive")
	}
	if c.MealDB.Burst < 1 {
		return fmt.Errorf("MEALDB_BURST must be at least 1")
	}
	if c.MealDB.MaxRetries < 0 || c.MealDB.MaxRetries > 10 {
		return fmt.Errorf("MEALDB_MAX_RETRIES must be between 0 and 10")
	}
	if c.MealDB.CacheTTL < 0 {
		return fmt.Errorf("MEALDB_CACHE_TTL cannot be negative")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("STORAGE_PATH is required unless STORAGE_IN_MEMORY=true")
	}
	if c.Storage.GCInterval < time.Minute {
		return fmt.Errorf("STORAGE_GC_INTERVAL must be at least 1m")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
	minJWTSecretLength   = 32
)

func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate one with: openssl rand -base64 32")
	}
	return nil
}

// validateCORS rejects a wildcard origin in production: the auth and history
// cookies are sent with credentials.
func (c *Config) validateCORS() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed in production because credentials are enabled; " +
			"list the frontend origins explicitly")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if strings.TrimSpace(c.History.CookieName) == "" {
		return fmt.Errorf("HISTORY_COOKIE_NAME cannot be empty")
	}
	if c.History.TTL < time.Second {
		return fmt.Errorf("HISTORY_TTL must be at least 1s")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment reports whether ENVIRONMENT is development or unset.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// validateBaseURL accepts an http(s) URL with an optional path prefix and no
// query string.
func validateBaseURL(rawURL, fieldName string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", fieldName, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsed.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsed.RawQuery)
	}
	return nil
}

// placeholderPatterns catch secrets copied verbatim from example files.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
