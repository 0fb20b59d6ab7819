// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	assert.Equal(t, []string{"blazy.ratio:count:3"}, Build("blazy.ratio", "count:3"))
	assert.Equal(t, []string{"k:a", "k:b"}, Build("k", "a", "b"))
	assert.Empty(t, Build("k"))
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		sets [][]string
		want []string
	}{
		{
			name: "nothing",
			want: []string{},
		},
		{
			name: "union is sorted and unique",
			sets: [][]string{{"node:2", "node:1"}, {"node:1", "config:blazy.settings"}},
			want: []string{"config:blazy.settings", "node:1", "node:2"},
		},
		{
			name: "empty tags dropped",
			sets: [][]string{{"", "a"}},
			want: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.sets...))
		})
	}
}

func TestHasIntersects(t *testing.T) {
	set := []string{"a", "b"}
	assert.True(t, Has(set, "a"))
	assert.False(t, Has(set, "c"))
	assert.True(t, Intersects(set, "c", "b"))
	assert.False(t, Intersects(set, "c", "d"))
	assert.False(t, Intersects(set))
}
