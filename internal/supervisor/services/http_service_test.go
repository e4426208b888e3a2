// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockHTTPServer is a test double for HTTPServer.
type mockHTTPServer struct {
	listenAndServeErr    error
	listenAndServeBlock  bool
	shutdownErr          error
	shutdownCount        atomic.Int32
	listenAndServeCalled chan struct{}
	stopCh               chan struct{}
	stopOnce             sync.Once
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		listenAndServeCalled: make(chan struct{}, 1),
		stopCh:               make(chan struct{}),
	}
}

func (m *mockHTTPServer) ListenAndServe() error {
	select {
	case m.listenAndServeCalled <- struct{}{}:
	default:
	}

	if m.listenAndServeErr != nil {
		return m.listenAndServeErr
	}
	if m.listenAndServeBlock {
		<-m.stopCh
		return http.ErrServerClosed
	}
	return nil
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdownCount.Add(1)
	m.stopOnce.Do(func() { close(m.stopCh) })
	return m.shutdownErr
}

func TestHTTPServerService_Interface(t *testing.T) {
	var _ suture.Service = (*HTTPServerService)(nil)
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	svc := NewHTTPServerService(newMockHTTPServer(), 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %v, want 10s", svc.shutdownTimeout)
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	server := newMockHTTPServer()
	server.listenAndServeBlock = true
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-server.listenAndServeCalled:
	case <-time.After(time.Second):
		t.Fatal("ListenAndServe not called")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if server.shutdownCount.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", server.shutdownCount.Load())
	}
}

func TestHTTPServerService_ListenFailure(t *testing.T) {
	server := newMockHTTPServer()
	server.listenAndServeErr = errors.New("address already in use")
	svc := NewHTTPServerService(server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenAndServeErr) {
		t.Errorf("Serve() = %v, want wrapped listen error", err)
	}
}

func TestHTTPServerService_ShutdownFailure(t *testing.T) {
	server := newMockHTTPServer()
	server.listenAndServeBlock = true
	server.shutdownErr = errors.New("connections still open")
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	<-server.listenAndServeCalled
	cancel()

	if err := <-done; !errors.Is(err, server.shutdownErr) {
		t.Errorf("Serve() = %v, want wrapped shutdown error", err)
	}
}
