// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package alter provides named extension points where callbacks may mutate
// data before it is finalized.
package alter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/apex/log"

	"github.com/staranto/blazygo/internal/data"
)

// Func mutates d in place. actx carries optional auxiliary values from the
// caller and may be nil.
type Func func(ctx context.Context, d data.Data, actx map[string]any) error

// Registry maps hook names to ordered lists of callbacks. The zero value is
// ready to use.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string][]Func
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register appends fn to the callbacks for hook.
func (r *Registry) Register(hook string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hooks == nil {
		r.hooks = make(map[string][]Func)
	}
	r.hooks[hook] = append(r.hooks[hook], fn)
}

// Hooks returns the names of hooks with at least one callback, sorted.
func (r *Registry) Hooks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Alter runs every callback registered for hook, in registration order, over
// d. The first error stops the chain and is returned.
func (r *Registry) Alter(ctx context.Context, hook string, d data.Data, actx map[string]any) error {
	r.mu.RLock()
	fns := append([]Func(nil), r.hooks[hook]...)
	r.mu.RUnlock()

	log.Debugf("alter %s: %d callbacks", hook, len(fns))

	for i, fn := range fns {
		if err := fn(ctx, d, actx); err != nil {
			return fmt.Errorf("alter %s callback %d: %w", hook, i, err)
		}
	}
	return nil
}
