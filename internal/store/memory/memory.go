// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package memory is an in-process cache backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/store"
)

// Store keeps entries in a map. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*store.Entry
	now     func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		entries: make(map[string]*store.Entry),
		now:     time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (*store.Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.Expired(s.now()) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return copyEntry(e), true, nil
}

func (s *Store) Set(_ context.Context, key string, d data.Data, expire time.Time, tags []string) error {
	e := store.NewEntry(key, d.Clone(), expire, tags)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

func (s *Store) InvalidateTags(_ context.Context, tags ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.entries {
		if e.HasAnyTag(tags...) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Keys returns the stored keys, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func copyEntry(e *store.Entry) *store.Entry {
	c := *e
	c.Data = e.Data.Clone()
	c.Tags = append([]string(nil), e.Tags...)
	return &c
}
