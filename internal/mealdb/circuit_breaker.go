// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package mealdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/nivremi/recipe-web-app/internal/config"
	"github.com/nivremi/recipe-web-app/internal/logging"
	"github.com/nivremi/recipe-web-app/internal/metrics"
	"github.com/nivremi/recipe-web-app/internal/recipe"
)

// BreakerName labels the TheMealDB circuit breaker in metrics.
const BreakerName = "mealdb-api"

// CircuitBreakerClient wraps Client with a circuit breaker.
//
// The breaker opens when at least 60% of at least 10 requests in a one minute
// window failed, then rejects calls for the configured timeout before letting
// up to 3 probe requests through. Not-found lookups, malformed records and
// caller cancellations do not count as failures.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// NewCircuitBreakerClient creates a TheMealDB client behind a circuit breaker.
func NewCircuitBreakerClient(cfg *config.MealDBConfig) *CircuitBreakerClient {
	return newCircuitBreakerClient(NewClient(cfg), cfg.BreakerTimeout)
}

func newCircuitBreakerClient(client *Client, timeout time.Duration) *CircuitBreakerClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(BreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		IsSuccessful: isBreakerSuccess,
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   BreakerName,
	}
}

// isBreakerSuccess reports whether err says nothing about upstream health.
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, ErrMealNotFound) ||
		errors.Is(err, recipe.ErrMalformedSourceData) ||
		errors.Is(err, context.Canceled)
}

// execute runs fn through the breaker. Rejections are reported as
// ErrSourceUnavailable.
func (cbc *CircuitBreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		if isBreakerSuccess(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// State returns the breaker state: "closed", "half-open" or "open".
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

// Available reports whether calls are currently let through.
func (cbc *CircuitBreakerClient) Available() bool {
	return cbc.cb.State() != gobreaker.StateOpen
}

// LookupMeal fetches one meal record with circuit breaker protection.
func (cbc *CircuitBreakerClient) LookupMeal(ctx context.Context, id int) (recipe.RawMeal, error) {
	return castResult[recipe.RawMeal](cbc.execute(func() (any, error) {
		return cbc.client.LookupMeal(ctx, id)
	}))
}

// RandomMeal fetches a random meal record with circuit breaker protection.
func (cbc *CircuitBreakerClient) RandomMeal(ctx context.Context) (recipe.RawMeal, error) {
	return castResult[recipe.RawMeal](cbc.execute(func() (any, error) {
		return cbc.client.RandomMeal(ctx)
	}))
}

// ListIngredients lists ingredient names with circuit breaker protection.
func (cbc *CircuitBreakerClient) ListIngredients(ctx context.Context) ([]string, error) {
	return castResult[[]string](cbc.execute(func() (any, error) {
		return cbc.client.ListIngredients(ctx)
	}))
}

// ListAreas lists area names with circuit breaker protection.
func (cbc *CircuitBreakerClient) ListAreas(ctx context.Context) ([]string, error) {
	return castResult[[]string](cbc.execute(func() (any, error) {
		return cbc.client.ListAreas(ctx)
	}))
}

// FilterByIngredient lists meals using an ingredient with circuit breaker protection.
func (cbc *CircuitBreakerClient) FilterByIngredient(ctx context.Context, ingredient string) ([]recipe.RawMeal, error) {
	return castResult[[]recipe.RawMeal](cbc.execute(func() (any, error) {
		return cbc.client.FilterByIngredient(ctx, ingredient)
	}))
}

// FilterByArea lists meals of an area with circuit breaker protection.
func (cbc *CircuitBreakerClient) FilterByArea(ctx context.Context, area string) ([]recipe.RawMeal, error) {
	return castResult[[]recipe.RawMeal](cbc.execute(func() (any, error) {
		return cbc.client.FilterByArea(ctx, area)
	}))
}
