// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package blazy

import (
	"context"

	"github.com/staranto/blazygo/internal/cached"
	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/grid"
)

// Base is the former name of Manager.
//
// Deprecated: use Manager.
type Base = Manager

// StyleOptions is the former name of the grid settings.
//
// Deprecated: use grid.Settings.
type StyleOptions = grid.Settings

// GetCachedData is the former name of CachedData. It takes the original
// positional arguments; an empty alter means the key.
//
// Deprecated: use CachedData with cached options.
func (m *Manager) GetCachedData(ctx context.Context, key string, seed data.Data, reset bool, alter string, actx map[string]any) (data.Data, error) {
	opts := []cached.Option{cached.WithHook(alter), cached.WithContext(actx)}
	if reset {
		opts = append(opts, cached.WithReset())
	}
	return m.CachedData(ctx, key, seed, opts...)
}
