// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package memdb keeps values in process memory. Nothing survives a restart,
// it backs tests and the mem:// demo mode.
package memdb

import (
	"context"
	"slices"
	"sync"

	"github.com/quixsi/wedding/internal/db"
)

func NewStore() *Store {
	return &Store{values: make(map[string][]byte)}
}

type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	// FailPut, when set, is returned by every Put.
	FailPut error
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, db.ErrNotFound
	}
	return slices.Clone(v), nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPut != nil {
		return s.FailPut
	}
	s.values[key] = slices.Clone(value)
	return nil
}

func (s *Store) Keys(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *Store) Close() error { return nil }
