// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package entity provides typed content records, per-type storage, property
// queries and UUID lookups.
package entity
