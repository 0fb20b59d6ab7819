// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package backend opens the cache store (memory, file or s3) named by the
// cache.backend config key.
package backend
