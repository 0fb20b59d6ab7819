// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package tags builds and merges cache invalidation tag sets.
package tags

import "sort"

// Build returns one "prefix:suffix" tag per suffix.
func Build(prefix string, suffixes ...string) []string {
	result := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		result = append(result, prefix+":"+s)
	}
	return result
}

// Merge returns the sorted union of the given tag sets. Empty tags are dropped.
func Merge(sets ...[]string) []string {
	seen := make(map[string]struct{})
	result := []string{}
	for _, set := range sets {
		for _, t := range set {
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			result = append(result, t)
		}
	}
	sort.Strings(result)
	return result
}

// Has reports whether set contains tag.
func Has(set []string, tag string) bool {
	for _, t := range set {
		if t == tag {
			return true
		}
	}
	return false
}

// Intersects reports whether any tag in candidates appears in set.
func Intersects(set []string, candidates ...string) bool {
	for _, c := range candidates {
		if Has(set, c) {
			return true
		}
	}
	return false
}
