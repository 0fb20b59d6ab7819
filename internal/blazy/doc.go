// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package blazy is the facade over the configuration, entity, cache,
// alteration and extension services. Most operations delegate to one
// collaborator; CachedData runs the memoized alter-then-persist cache.
package blazy
