// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/tags"
)

// Permanent marks an entry that never expires on its own. It is only removed
// by Delete or by invalidating one of its tags.
var Permanent = time.Time{}

// Entry is a single cached item.
type Entry struct {
	Key     string    `json:"key"`
	Data    data.Data `json:"data"`
	Created time.Time `json:"created"`
	// Expire is the zero time for permanent entries.
	Expire time.Time `json:"expire,omitempty"`
	Tags   []string  `json:"tags,omitempty"`
}

// Permanent reports whether the entry never expires.
func (e *Entry) Permanent() bool {
	return e.Expire.IsZero()
}

// Expired reports whether the entry has passed its expiry at now.
func (e *Entry) Expired(now time.Time) bool {
	return !e.Expire.IsZero() && !now.Before(e.Expire)
}

// HasAnyTag reports whether the entry carries any of the given tags.
func (e *Entry) HasAnyTag(candidates ...string) bool {
	return tags.Intersects(e.Tags, candidates...)
}

// Store is a persistent cache backend.
type Store interface {
	// Get returns the entry for key. A missing or expired entry is reported
	// as (nil, false, nil).
	Get(ctx context.Context, key string) (*Entry, bool, error)
	// Set writes d under key. Use Permanent for entries that never expire.
	Set(ctx context.Context, key string, d data.Data, expire time.Time, tags []string) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// InvalidateTags removes every entry carrying any of the given tags and
	// returns how many were removed.
	InvalidateTags(ctx context.Context, tags ...string) (int, error)
}

// NewEntry builds the Entry that a backend persists for a Set call.
func NewEntry(key string, d data.Data, expire time.Time, entryTags []string) *Entry {
	return &Entry{
		Key:     key,
		Data:    d,
		Created: time.Now().UTC(),
		Expire:  expire,
		Tags:    tags.Merge(entryTags),
	}
}
