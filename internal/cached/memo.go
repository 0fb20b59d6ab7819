// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cached

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/staranto/blazygo/internal/data"
)

// Memo holds data already resolved during one request or process. It is
// never persisted. Give unrelated call sites their own Memo so colliding
// keys cannot leak between them.
type Memo struct {
	mu    sync.Mutex
	items map[string]data.Data
	group singleflight.Group
}

// NewMemo returns an empty Memo.
func NewMemo() *Memo {
	return &Memo{items: make(map[string]data.Data)}
}

// Lookup returns a copy of the data memoized under key. An empty result
// that was memoized is still reported as present.
func (m *Memo) Lookup(key string) (data.Data, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[key]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Put memoizes d under key.
func (m *Memo) Put(key string, d data.Data) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]data.Data)
	}
	m.items[key] = d.Clone()
}

// Forget drops key from the memo.
func (m *Memo) Forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// Reset empties the memo.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]data.Data)
}

// Len returns the number of memoized keys.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
