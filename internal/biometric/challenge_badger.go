// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package biometric

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const badgerChallengePrefix = "challenge:"

// BadgerChallengeStore keeps challenges in BadgerDB with native TTLs, so
// issued challenges survive a restart and expire without a sweeper.
type BadgerChallengeStore struct {
	db *badger.DB
}

// OpenBadgerChallengeStore opens a BadgerDB at path, or in memory when inMemory is set.
func OpenBadgerChallengeStore(path string, inMemory bool) (*BadgerChallengeStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger challenge store: %w", err)
	}
	return &BadgerChallengeStore{db: db}, nil
}

// NewBadgerChallengeStore wraps an already open BadgerDB.
func NewBadgerChallengeStore(db *badger.DB) *BadgerChallengeStore {
	return &BadgerChallengeStore{db: db}
}

// Save implements ChallengeStore.
func (s *BadgerChallengeStore) Save(_ context.Context, key string, data []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(badgerChallengePrefix+key), data).WithTTL(ttl)
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set challenge: %w", err)
		}
		return nil
	})
}

// Consume implements ChallengeStore. Two concurrent consumers of the same key
// conflict at commit; only one of them gets the data.
func (s *BadgerChallengeStore) Consume(_ context.Context, key string) ([]byte, error) {
	var data []byte
	k := []byte(badgerChallengePrefix + key)

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrChallengeNotFound
		}
		if err != nil {
			return fmt.Errorf("get challenge: %w", err)
		}
		data, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read challenge: %w", err)
		}
		return txn.Delete(k)
	})
	if errors.Is(err, badger.ErrConflict) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// RunGC reclaims value log space. ErrNoRewrite just means nothing to collect.
func (s *BadgerChallengeStore) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
		return nil
	}
	return err
}

// Close closes the underlying database.
func (s *BadgerChallengeStore) Close() error {
	return s.db.Close()
}
