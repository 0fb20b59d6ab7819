// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package store defines the persistent key/value cache contract shared by
// the memory, file and s3 backends.
package store
