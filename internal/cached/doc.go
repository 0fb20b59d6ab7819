// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cached resolves data through three layers: a caller owned memo, a
// persistent store, and alteration hooks that build the data on a miss.
//
//	memo hit      -> return
//	store hit     -> memoize, return
//	miss          -> alter seed, persist when non-empty, memoize, return
//
// Returned data never carries falsy values.
package cached
