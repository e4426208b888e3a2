// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package history tracks recently viewed meals in a client-held token.
//
// The token is the only storage: it travels as a cookie, the server decodes it
// on each request and issues a new one after every view. All functions in this
// file are pure; cookie.go adapts them to net/http.
//
// Token format: a JSON array of {"id": int, "timestamp": unix seconds},
// newest first, base64url encoded without padding.
package history

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	// MaxEntries is the maximum number of entries kept in a history token.
	MaxEntries = 9

	// TTL is the lifetime of the history cookie.
	TTL = time.Hour

	// CookieName is the default cookie carrying the token.
	CookieName = "history"

	// CookiePath scopes the cookie to the whole site.
	CookiePath = "/"
)

// ErrMalformedToken indicates a history token that could not be decoded.
// It is a soft error: callers treat the history as empty.
var ErrMalformedToken = errors.New("malformed history token")

// Entry is a single recently viewed meal.
type Entry struct {
	ID        int   `json:"id"`
	Timestamp int64 `json:"timestamp"`
}

// Token is an encoded history as carried by the client.
type Token string

// Status distinguishes the outcomes of reading a token.
type Status string

const (
	StatusNoHistory Status = "no_history"
	StatusMalformed Status = "malformed"
	StatusOK        Status = "ok"
)

// ReadResult is the outcome of Read. Entries is never nil.
type ReadResult struct {
	Status  Status  `json:"status"`
	Entries []Entry `json:"entries"`
}

// wireEntry uses pointers so missing fields can be told apart from zero values.
type wireEntry struct {
	ID        *int   `json:"id"`
	Timestamp *int64 `json:"timestamp"`
}

// Decode parses a token into its entries.
// Every failure (bad base64, JSON that is not an array of complete entries)
// wraps ErrMalformedToken.
func Decode(token Token) ([]Entry, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(string(token), "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: not a JSON array", ErrMalformedToken)
	}

	var wire []wireEntry
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	entries := make([]Entry, 0, len(wire))
	for i, w := range wire {
		if w.ID == nil || w.Timestamp == nil {
			return nil, fmt.Errorf("%w: entry %d incomplete", ErrMalformedToken, i)
		}
		entries = append(entries, Entry{ID: *w.ID, Timestamp: *w.Timestamp})
	}
	return entries, nil
}

// Encode serializes entries into a token. A nil or empty slice encodes "[]".
func Encode(entries []Entry) Token {
	if entries == nil {
		entries = []Entry{}
	}
	// Marshalling a slice of plain structs cannot fail.
	data, _ := json.Marshal(entries)
	return Token(base64.RawURLEncoding.EncodeToString(data))
}

// Read classifies a token. A nil token means the client sent none.
func Read(token *Token) ReadResult {
	if token == nil {
		return ReadResult{Status: StatusNoHistory, Entries: []Entry{}}
	}
	entries, err := Decode(*token)
	if err != nil {
		return ReadResult{Status: StatusMalformed, Entries: []Entry{}}
	}
	return ReadResult{Status: StatusOK, Entries: entries}
}

// Record adds a view of mealID at now to the existing history and returns the
// new token with its entries.
//
// A missing or malformed existing token starts a fresh history. Any previous
// entry for the same meal is dropped, the new entry goes first, and the list is
// cut to MaxEntries by position.
func Record(existing *Token, mealID int, now time.Time) (Token, []Entry) {
	var prior []Entry
	if existing != nil {
		if decoded, err := Decode(*existing); err == nil {
			prior = decoded
		}
	}

	entries := make([]Entry, 0, MaxEntries)
	entries = append(entries, Entry{ID: mealID, Timestamp: now.Unix()})
	for _, e := range prior {
		if len(entries) == MaxEntries {
			break
		}
		if e.ID == mealID {
			continue
		}
		entries = append(entries, e)
	}

	return Encode(entries), entries
}

// ClearInstruction tells the transport to remove the token from the client.
type ClearInstruction struct {
	Path string
}

// Clear returns the instruction that erases the history.
func Clear() ClearInstruction {
	return ClearInstruction{Path: CookiePath}
}
