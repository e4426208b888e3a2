// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_WritesThroughZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.Warn("service restarted",
		"service", "http-server",
		"attempt", 3,
		"backoff", 15*time.Second,
		"healthy", false,
		"err", errors.New("listener closed"),
	)

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"message":"service restarted"`,
		`"service":"http-server"`,
		`"attempt":3`,
		`"healthy":false`,
		`"err":"listener closed"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandler_AttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf))).
		WithGroup("supervisor").
		WithGroup("child").
		With("tree", "root")

	logger.Info("event", "name", "cache-janitor")

	out := buf.String()
	if !strings.Contains(out, `"supervisor.child.tree":"root"`) {
		t.Errorf("grouped With attr missing: %s", out)
	}
	if !strings.Contains(out, `"supervisor.child.name":"cache-janitor"`) {
		t.Errorf("grouped attr missing: %s", out)
	}
}

func TestSlogHandler_NestedGroupValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))
	logger.Info("x", slog.Group("req", slog.String("path", "/api/recipe")))

	if !strings.Contains(buf.String(), `"req.path":"/api/recipe"`) {
		t.Errorf("group value not flattened: %s", buf.String())
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled on warn logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error disabled on warn logger")
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler()
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the receiver")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewSlogLogger(t *testing.T) {
	if NewSlogLogger() == nil {
		t.Fatal("NewSlogLogger() = nil")
	}
}
