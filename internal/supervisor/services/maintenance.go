// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package services

import (
	"context"
	"time"

	"github.com/nivremi/recipe-web-app/internal/logging"
)

// GarbageCollector is satisfied by *store.Store.
type GarbageCollector interface {
	RunGC(ctx context.Context) (int, error)
}

// Sweeper is satisfied by *cache.Cache.
type Sweeper interface {
	Name() string
	Cleanup() int
}

// NewStoreGCService runs value log garbage collection on the user store.
func NewStoreGCService(store GarbageCollector, interval time.Duration) *PeriodicService {
	return NewPeriodicService("store-gc", interval, func(ctx context.Context) error {
		rewritten, err := store.RunGC(ctx)
		if err != nil {
			return err
		}
		if rewritten > 0 {
			logging.Debug().Int("files_rewritten", rewritten).Msg("user store value log GC")
		}
		return nil
	})
}

// NewCacheJanitorService drops expired entries from every cache.
func NewCacheJanitorService(interval time.Duration, caches ...Sweeper) *PeriodicService {
	return NewPeriodicService("cache-janitor", interval, func(context.Context) error {
		for _, c := range caches {
			if removed := c.Cleanup(); removed > 0 {
				logging.Debug().Str("cache", c.Name()).Int("removed", removed).Msg("expired cache entries swept")
			}
		}
		return nil
	})
}
