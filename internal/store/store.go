// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

// Package store is the user store: accounts, credentials and each user's
// favourites token, persisted in BadgerDB.
//
// Key layout:
//
//	user:<username>        JSON-encoded User
//	email:<lower(email)>   username owning the address
//
// The favourites token is opaque here. The favourites package owns its format.
package store

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/nivremi/recipe-web-app/internal/config"
	"github.com/nivremi/recipe-web-app/internal/logging"
	"github.com/nivremi/recipe-web-app/internal/metrics"
)

var (
	// ErrUserNotFound is returned when no account has the given username.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned by CreateUser for an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned by CreateUser for an e-mail already in use.
	ErrEmailTaken = errors.New("email already registered")
)

const (
	userKeyPrefix  = "user:"
	emailKeyPrefix = "email:"

	// maxConflictAttempts bounds retries of a read-modify-write transaction
	// that lost an optimistic concurrency race.
	maxConflictAttempts = 3

	// lockStripes is the number of per-user mutex stripes.
	lockStripes = 64

	gcDiscardRatio = 0.5
)

// User is a stored account.
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Favourites   string    `json:"favourites"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is a BadgerDB-backed user store. Safe for concurrent use.
type Store struct {
	db       *badger.DB
	inMemory bool

	// Favourites updates for one user are serialized in-process; Badger's
	// conflict detection covers the remaining writers.
	stripes [lockStripes]sync.Mutex
}

// Open opens (or creates) the store described by cfg.
func Open(cfg *config.StorageConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	// User records are small.
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = !cfg.InMemory

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("user store opened")

	return &Store{db: db, inMemory: cfg.InMemory}, nil
}

// New wraps an already open database.
func New(db *badger.DB) *Store {
	return &Store{db: db, inMemory: db.Opts().InMemory}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the store can serve reads.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("user store is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

func userKey(username string) []byte {
	return []byte(userKeyPrefix + username)
}

func emailKey(email string) []byte {
	return []byte(emailKeyPrefix + normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new account. Username and e-mail must both be unused.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = strings.TrimSpace(u.Email)

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userKey(u.Username)); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check username: %w", err)
		}

		if _, err := txn.Get(emailKey(u.Email)); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email: %w", err)
		}

		if err := txn.Set(userKey(u.Username), data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		if err := txn.Set(emailKey(u.Email), []byte(u.Username)); err != nil {
			return fmt.Errorf("set email index: %w", err)
		}
		return nil
	})
	if errors.Is(err, badger.ErrConflict) {
		// A concurrent signup touched the same keys; report it as taken.
		metrics.RecordStoreConflict()
		return ErrUsernameTaken
	}
	return err
}

// GetUser returns the account with the given username.
func (s *Store) GetUser(ctx context.Context, username string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var u User
	err := s.db.View(func(txn *badger.Txn) error {
		return readUser(txn, username, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetFavourites returns the stored favourites token of username.
func (s *Store) GetFavourites(ctx context.Context, username string) (string, error) {
	u, err := s.GetUser(ctx, username)
	if err != nil {
		return "", err
	}
	return u.Favourites, nil
}

// SetFavourites replaces the favourites token of username.
func (s *Store) SetFavourites(ctx context.Context, username, token string) error {
	return s.UpdateFavourites(ctx, username, func(string) (string, error) {
		return token, nil
	})
}

// UpdateFavourites applies fn to the stored favourites token of username
// inside a single transaction. fn may run more than once if the transaction
// conflicts; an error from fn aborts the update and is returned as is.
func (s *Store) UpdateFavourites(ctx context.Context, username string, fn func(current string) (string, error)) error {
	mu := s.lockFor(username)
	mu.Lock()
	defer mu.Unlock()

	var err error
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = s.db.Update(func(txn *badger.Txn) error {
			var u User
			if err := readUser(txn, username, &u); err != nil {
				return err
			}
			next, err := fn(u.Favourites)
			if err != nil {
				return err
			}
			if next == u.Favourites {
				return nil
			}
			u.Favourites = next
			data, err := json.Marshal(&u)
			if err != nil {
				return fmt.Errorf("marshal user: %w", err)
			}
			return txn.Set(userKey(username), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}

		metrics.RecordStoreConflict()
		logging.Ctx(ctx).Debug().
			Str("username", username).
			Int("attempt", attempt).
			Msg("favourites update conflicted, retrying")
	}
	return fmt.Errorf("update favourites for %s: %w", username, err)
}

func (s *Store) lockFor(username string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return &s.stripes[h.Sum32()%lockStripes]
}

func readUser(txn *badger.Txn, username string, u *User) error {
	item, err := txn.Get(userKey(username))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, u); err != nil {
			return fmt.Errorf("decode user %s: %w", username, err)
		}
		return nil
	})
}

// RunGC reclaims value log space until Badger reports nothing left to
// rewrite. It returns the number of files rewritten. In-memory stores have no
// value log and return immediately.
func (s *Store) RunGC(ctx context.Context) (int, error) {
	if s.inMemory {
		return 0, nil
	}

	rewritten := 0
	for {
		if err := ctx.Err(); err != nil {
			return rewritten, err
		}
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return rewritten, nil
		}
		if err != nil {
			return rewritten, fmt.Errorf("run value log GC: %w", err)
		}
		rewritten++
	}
}
