// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cached

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/apex/log"

	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/store"
	"github.com/staranto/blazygo/internal/tags"
)

// ErrEmptyKey is returned when Get is called without a key.
var ErrEmptyKey = errors.New("cache key must not be empty")

// Alterer dispatches a named alteration hook over d.
type Alterer interface {
	Alter(ctx context.Context, hook string, d data.Data, actx map[string]any) error
}

// Cacher resolves data by key through Memo, Store and Alterer.
type Cacher struct {
	Store   store.Store
	Alterer Alterer
	Memo    *Memo
}

// New returns a Cacher. A nil memo gets a fresh one; a nil alterer means
// misses are persisted from the seed alone.
func New(s store.Store, a Alterer, m *Memo) *Cacher {
	if m == nil {
		m = NewMemo()
	}
	return &Cacher{Store: s, Alterer: a, Memo: m}
}

type options struct {
	reset    bool
	hook     string
	actx     map[string]any
	shape    data.Shape
	keepZero bool
	tags     []string
}

// Option customizes a Get call.
type Option func(*options)

// WithReset bypasses the memo and consults the store again.
func WithReset() Option {
	return func(o *options) { o.reset = true }
}

// WithHook names the alteration hook. Defaults to the cache key.
func WithHook(hook string) Option {
	return func(o *options) { o.hook = hook }
}

// WithContext passes auxiliary values to the alteration callbacks.
func WithContext(actx map[string]any) Option {
	return func(o *options) { o.actx = actx }
}

// WithShape declares the seed's shape. List data is de-duplicated before it
// is persisted.
func WithShape(shape data.Shape) Option {
	return func(o *options) { o.shape = shape }
}

// WithKeepZero keeps numeric zero values in the returned data.
func WithKeepZero() Option {
	return func(o *options) { o.keepZero = true }
}

// WithTags adds invalidation tags to the persisted entry, next to the count
// tag.
func WithTags(extra ...string) Option {
	return func(o *options) { o.tags = append(o.tags, extra...) }
}

// Get returns the data for key with falsy values removed.
//
// The memo is consulted first unless WithReset is given. On a memo miss the
// store is consulted; a non-empty stored entry is memoized as is. Otherwise
// the alteration hook runs over a copy of seed (even an empty one), and a
// non-empty result is normalized and persisted permanently with a
// "<key>:count:<n>" tag. The result is memoized whether or not it was
// persisted.
//
// Concurrent misses for the same key on one Memo share a single resolution.
func (c *Cacher) Get(ctx context.Context, key string, seed data.Data, opts ...Option) (data.Data, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.hook == "" {
		o.hook = key
	}

	if !o.reset {
		if d, ok := c.Memo.Lookup(key); ok {
			log.Debugf("memo hit: %s", key)
			return d.Filter(o.keepZero), nil
		}
	}

	v, err, shared := c.Memo.group.Do(key, func() (any, error) {
		return c.resolve(ctx, key, seed, o)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debugf("shared resolution: %s", key)
	}

	return v.(data.Data).Filter(o.keepZero), nil
}

func (c *Cacher) resolve(ctx context.Context, key string, seed data.Data, o options) (data.Data, error) {
	entry, ok, err := c.Store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	if ok && len(entry.Data) > 0 {
		log.Debugf("store hit: %s", key)
		c.Memo.Put(key, entry.Data)
		return entry.Data, nil
	}

	d := seed.Clone()
	if c.Alterer != nil {
		if err := c.Alterer.Alter(ctx, o.hook, d, o.actx); err != nil {
			return nil, err
		}
	}

	if len(d) > 0 {
		d = d.Normalize(o.shape)
		entryTags := tags.Merge(tags.Build(key, "count:"+strconv.Itoa(len(d))), o.tags)
		if err := c.Store.Set(ctx, key, d, store.Permanent, entryTags); err != nil {
			return nil, fmt.Errorf("failed to write cache entry %s: %w", key, err)
		}
		log.Debugf("persisted %s: %d entries", key, len(d))
	}

	c.Memo.Put(key, d)
	return d, nil
}
