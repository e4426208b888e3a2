// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package api

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds the store ping done by HealthReady.
const readinessTimeout = 2 * time.Second

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 only when the user store answers and the recipe source circuit
// is not open; 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	storeReady := h.users != nil && h.users.Ping(ctx) == nil

	upstreamReady := true
	circuit := "unknown"
	if h.upstream != nil {
		upstreamReady = h.upstream.Available()
		circuit = h.upstream.State()
	}

	status := map[string]interface{}{
		"ready":           storeReady && upstreamReady,
		"store":           storeReady,
		"upstream":        upstreamReady,
		"circuit_breaker": circuit,
	}

	if !storeReady || !upstreamReady {
		rw.ServiceUnavailable("Service not ready", status)
		return
	}
	rw.Success(status)
}
