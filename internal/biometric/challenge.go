// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package biometric

import (
	"context"
	"sync"
	"time"
)

// ChallengeStore keeps issued WebAuthn ceremony state until it is answered.
// Consume is get-and-delete: a challenge can be answered at most once.
type ChallengeStore interface {
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Consume(ctx context.Context, key string) ([]byte, error)
}

// Key prefixes keep login and registration ceremonies apart.
const (
	loginChallengePrefix        = "login:"
	registrationChallengePrefix = "register:"
)

func challengeBackend(store ChallengeStore) string {
	switch store.(type) {
	case *BadgerChallengeStore:
		return "badger"
	case *RedisChallengeStore:
		return "redis"
	case *MemoryChallengeStore:
		return "memory"
	default:
		return "custom"
	}
}

// MemoryChallengeStore is an in-process ChallengeStore for tests and single-node dev setups.
type MemoryChallengeStore struct {
	mu      sync.Mutex
	entries map[string]memoryChallenge
	now     func() time.Time
}

type memoryChallenge struct {
	data    []byte
	expires time.Time
}

// NewMemoryChallengeStore creates an empty in-memory store.
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{entries: make(map[string]memoryChallenge), now: time.Now}
}

// Save implements ChallengeStore.
func (m *MemoryChallengeStore) Save(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = memoryChallenge{data: append([]byte(nil), data...), expires: now.Add(ttl)}
	return nil
}

// Consume implements ChallengeStore.
func (m *MemoryChallengeStore) Consume(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	delete(m.entries, key)
	if m.now().After(e.expires) {
		return nil, ErrChallengeNotFound
	}
	return e.data, nil
}
