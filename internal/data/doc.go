// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package data defines the associative mapping that flows through the cache
// layer, along with the normalizations applied to it before it is persisted
// and the falsy filtering applied before it is returned.
package data
