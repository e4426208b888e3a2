// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Caller {
		t.Error("Caller = true, want false")
	}
	if !cfg.Timestamp {
		t.Error("Timestamp = false, want true")
	}
}

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("meal", "52772").Msg("recipe served")

	out := buf.String()
	if !strings.Contains(out, `"message":"recipe served"`) {
		t.Errorf("missing message: %s", out)
	}
	if !strings.Contains(out, `"level":"info"`) {
		t.Errorf("missing level: %s", out)
	}
	if !strings.Contains(out, `"meal":"52772"`) {
		t.Errorf("missing field: %s", out)
	}
}

func TestInit_Console(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("console line")

	out := buf.String()
	if strings.Contains(out, `"level"`) {
		t.Errorf("console output looks like JSON: %s", out)
	}
	if !strings.Contains(out, "console line") {
		t.Errorf("missing message: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	original := GetLevel()
	SetLevel(zerolog.TraceLevel)
	defer SetLevel(original)

	tests := []struct {
		name  string
		emit  func()
		level string
	}{
		{"trace", func() { Trace().Msg("t") }, "trace"},
		{"debug", func() { Debug().Msg("d") }, "debug"},
		{"info", func() { Info().Msg("i") }, "info"},
		{"warn", func() { Warn().Msg("w") }, "warn"},
		{"error", func() { Error().Msg("e") }, "error"},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.emit()
		if !strings.Contains(buf.String(), `"level":"`+tt.level+`"`) {
			t.Errorf("%s: output %s", tt.name, buf.String())
		}
	}
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	Err(errors.New("store unavailable")).Msg("toggle failed")

	if !strings.Contains(buf.String(), "store unavailable") {
		t.Errorf("error not logged: %s", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	l := WithComponent("mealdb")
	l.Info().Msg("lookup")

	if !strings.Contains(buf.String(), `"component":"mealdb"`) {
		t.Errorf("component missing: %s", buf.String())
	}
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewTestLogger(&buf)
	l.Info().Str("key", "value").Msg("hello")

	if !strings.Contains(buf.String(), `"key":"value"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
