// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nivremi/recipe-web-app/internal/logging"
)

// maxConsecutiveTaskFailures is how many failed runs in a row a
// PeriodicService tolerates before returning an error to its supervisor.
const maxConsecutiveTaskFailures = 3

// PeriodicTask is one run of a maintenance job.
type PeriodicTask func(ctx context.Context) error

// PeriodicService runs a task on a fixed interval until its context is
// canceled. Isolated failures are logged; repeated ones are returned so the
// supervisor restarts the service with backoff.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     PeriodicTask
}

// NewPeriodicService creates a service running task every interval.
func NewPeriodicService(name string, interval time.Duration, task PeriodicTask) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{name: name, interval: interval, task: task}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := s.task(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			logging.Warn().Err(err).
				Str("service", s.name).
				Int("consecutive_failures", failures).
				Msg("periodic task failed")
			if failures >= maxConsecutiveTaskFailures {
				return fmt.Errorf("%s: %d consecutive failures: %w", s.name, failures, err)
			}
			continue
		}
		failures = 0
	}
}

// String implements fmt.Stringer.
func (s *PeriodicService) String() string {
	return s.name
}
