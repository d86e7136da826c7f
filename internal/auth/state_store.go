// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// StateData is the per-flow state persisted between the authorization
// redirect and the provider callback.
type StateData struct {
	// Provider is the OAuth provider name the flow was started with.
	Provider string `json:"provider"`

	// CallbackURL is where the user should land after sign-in completes.
	CallbackURL string `json:"callback_url"`

	// CreatedAt is when the flow was started.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt bounds how long the flow may take.
	ExpiresAt time.Time `json:"expires_at"`
}

// StateStore persists OAuth flow state across the redirect round-trip.
type StateStore interface {
	// Store saves state data under the given key.
	Store(ctx context.Context, key string, state *StateData) error

	// Consume retrieves and deletes state data. Returns ErrStateNotFound
	// for unknown keys and ErrStateExpired for stale flows.
	Consume(ctx context.Context, key string) (*StateData, error)

	// Close releases the underlying storage.
	Close() error
}

// stateKeyPrefix namespaces OAuth state keys in BadgerDB.
const stateKeyPrefix = "oauth_state:"

// BadgerStateStore implements StateStore on BadgerDB. State survives
// server restarts, so an in-flight sign-in is not broken by a deploy.
type BadgerStateStore struct {
	db *badger.DB
}

// NewBadgerStateStore opens a BadgerDB-backed state store at path.
func NewBadgerStateStore(path string) (*BadgerStateStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB internal logs
	// State entries are tiny; a small value log avoids wasting disk.
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for oauth state: %w", err)
	}
	return &BadgerStateStore{db: db}, nil
}

// Store saves state data with a TTL derived from ExpiresAt.
func (s *BadgerStateStore) Store(ctx context.Context, key string, state *StateData) error {
	if key == "" {
		return errors.New("state key cannot be empty")
	}
	if state == nil {
		return errors.New("state data cannot be nil")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(stateKeyPrefix+key), data)
		if ttl := time.Until(state.ExpiresAt); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Consume retrieves and deletes state data in one transaction, so a
// state parameter can be redeemed at most once.
func (s *BadgerStateStore) Consume(ctx context.Context, key string) (*StateData, error) {
	if key == "" {
		return nil, ErrStateNotFound
	}

	var state StateData
	err := s.db.Update(func(txn *badger.Txn) error {
		stateKey := []byte(stateKeyPrefix + key)
		item, err := txn.Get(stateKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrStateNotFound
		}
		if err != nil {
			return fmt.Errorf("get state: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		}); err != nil {
			return fmt.Errorf("unmarshal state: %w", err)
		}
		return txn.Delete(stateKey)
	})
	if err != nil {
		return nil, err
	}

	if time.Now().After(state.ExpiresAt) {
		return nil, ErrStateExpired
	}
	return &state, nil
}

// Close closes the underlying BadgerDB.
func (s *BadgerStateStore) Close() error {
	return s.db.Close()
}

// GenerateState returns a cryptographically random state parameter.
func GenerateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
