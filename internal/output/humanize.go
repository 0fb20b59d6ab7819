// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Age renders t relative to now, e.g. "3 hours ago". The zero time renders
// as never.
func Age(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// Expiry renders an expiry time. The zero time is a permanent entry.
func Expiry(t time.Time) string {
	if t.IsZero() {
		return "permanent"
	}
	return humanize.Time(t)
}

// Size renders n bytes in SI units, e.g. "1.2 kB".
func Size(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Count renders n with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}
