// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package mealdb is the HTTP client for TheMealDB, the upstream recipe source.
//
// Every call passes through a client-side rate limiter, retries HTTP 429 with
// exponential backoff (honouring Retry-After), and reports to Prometheus.
// CircuitBreakerClient wraps Client so that a failing upstream is shed quickly.
//
// Transport failures, unexpected statuses and exhausted retries are reported
// as ErrSourceUnavailable. Undecodable bodies are reported as
// recipe.ErrMalformedSourceData. A lookup that yields no meal is ErrMealNotFound.
package mealdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/nivremi/recipe-web-app/internal/config"
	"github.com/nivremi/recipe-web-app/internal/logging"
	"github.com/nivremi/recipe-web-app/internal/metrics"
	"github.com/nivremi/recipe-web-app/internal/recipe"
)

var (
	// ErrSourceUnavailable means TheMealDB could not be reached or answered
	// with an error.
	ErrSourceUnavailable = errors.New("recipe source unavailable")

	// ErrMealNotFound means TheMealDB has no meal with the requested id.
	ErrMealNotFound = errors.New("meal not found")
)

const (
	// maxErrorBodySize caps how much of an error response is read for logging.
	maxErrorBodySize = 64 * 1024

	// maxResponseSize caps successful response bodies.
	maxResponseSize = 4 * 1024 * 1024

	// maxRetryDelay caps a single backoff wait, including Retry-After.
	maxRetryDelay = 30 * time.Second
)

// Upstream endpoint labels used in metrics and logs.
const (
	endpointLookup = "lookup"
	endpointRandom = "random"
	endpointList   = "list"
	endpointFilter = "filter"
)

// mealsEnvelope is the shape of every TheMealDB response. Meals is null when
// nothing matched.
type mealsEnvelope struct {
	Meals []recipe.RawMeal `json:"meals"`
}

// Client talks to TheMealDB's JSON API.
type Client struct {
	baseURL        string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a client from configuration. A non-positive
// RequestsPerSecond disables the client-side limiter.
func NewClient(cfg *config.MealDBConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		limiter:        rate.NewLimiter(limit, burst),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// LookupMeal fetches the full record of one meal.
func (c *Client) LookupMeal(ctx context.Context, id int) (recipe.RawMeal, error) {
	meals, err := c.get(ctx, endpointLookup, "lookup.php", url.Values{"i": {strconv.Itoa(id)}})
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 || meals[0] == nil {
		return nil, fmt.Errorf("meal %d: %w", id, ErrMealNotFound)
	}
	return meals[0], nil
}

// RandomMeal fetches the full record of a random meal.
func (c *Client) RandomMeal(ctx context.Context) (recipe.RawMeal, error) {
	meals, err := c.get(ctx, endpointRandom, "random.php", nil)
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 || meals[0] == nil {
		return nil, fmt.Errorf("random meal: %w: empty response", recipe.ErrMalformedSourceData)
	}
	return meals[0], nil
}

// ListIngredients returns every ingredient name TheMealDB knows.
func (c *Client) ListIngredients(ctx context.Context) ([]string, error) {
	meals, err := c.get(ctx, endpointList, "list.php", url.Values{"i": {"list"}})
	if err != nil {
		return nil, err
	}
	return recipe.ListingNames(meals, recipe.KeyIngredient), nil
}

// ListAreas returns every area (cuisine) name TheMealDB knows.
func (c *Client) ListAreas(ctx context.Context) ([]string, error) {
	meals, err := c.get(ctx, endpointList, "list.php", url.Values{"a": {"list"}})
	if err != nil {
		return nil, err
	}
	return recipe.ListingNames(meals, recipe.KeyArea), nil
}

// FilterByIngredient returns the meal references that use ingredient.
// No match yields an empty slice.
func (c *Client) FilterByIngredient(ctx context.Context, ingredient string) ([]recipe.RawMeal, error) {
	return c.filter(ctx, "i", ingredient)
}

// FilterByArea returns the meal references of an area (cuisine).
// No match yields an empty slice.
func (c *Client) FilterByArea(ctx context.Context, area string) ([]recipe.RawMeal, error) {
	return c.filter(ctx, "a", area)
}

func (c *Client) filter(ctx context.Context, param, value string) ([]recipe.RawMeal, error) {
	meals, err := c.get(ctx, endpointFilter, "filter.php", url.Values{param: {value}})
	if err != nil {
		return nil, err
	}
	if meals == nil {
		meals = []recipe.RawMeal{}
	}
	return meals, nil
}

// get performs one logical call: limiter, request with 429 retries, status
// check and decode.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) ([]recipe.RawMeal, error) {
	start := time.Now()
	meals, err := c.doGet(ctx, endpoint, path, query)
	metrics.RecordUpstreamRequest(endpoint, outcomeLabel(err), time.Since(start))
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("endpoint", endpoint).Msg("recipe source call failed")
	}
	return meals, err
}

func (c *Client) doGet(ctx context.Context, endpoint, path string, query url.Values) ([]recipe.RawMeal, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrSourceUnavailable, err)
	}

	reqURL := c.baseURL + "/" + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	resp, err := c.doRequestWithRateLimit(ctx, endpoint, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("%w: %s returned status %d: %s", ErrSourceUnavailable, path, resp.StatusCode, string(body))
	}

	var envelope mealsEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", recipe.ErrMalformedSourceData, path, err)
	}
	return envelope.Meals, nil
}

// doRequestWithRateLimit performs a GET, retrying HTTP 429 with exponential
// backoff. The context cancels backoff waits.
func (c *Client) doRequestWithRateLimit(ctx context.Context, endpoint, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%w: rate limit exceeded after %d retries (HTTP 429)", ErrSourceUnavailable, c.maxRetries)
		}

		delay := retryDelay(c.retryBaseDelay, attempt, resp.Header.Get("Retry-After"))
		metrics.RecordUpstreamRetry(endpoint)
		logging.Ctx(ctx).Debug().
			Str("endpoint", endpoint).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("recipe source rate limited, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, ctx.Err())
		}
	}
}

// retryDelay returns base*2^attempt, or the Retry-After value when the server
// sent one in seconds. The result never exceeds maxRetryDelay.
func retryDelay(base time.Duration, attempt int, retryAfter string) time.Duration {
	delay := base * time.Duration(1<<uint(attempt))
	if retryAfter != "" {
		if seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && seconds >= 0 {
			delay = time.Duration(seconds) * time.Second
		}
	}
	if delay > maxRetryDelay || delay < 0 {
		delay = maxRetryDelay
	}
	return delay
}

// readBodyForError reads at most maxErrorBodySize bytes of an error body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, recipe.ErrMalformedSourceData):
		return "malformed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
