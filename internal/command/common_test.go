// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/blazygo/internal/data"
)

func TestParseSeed(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    data.Data
	}{
		{
			name:    "empty",
			entries: nil,
			want:    data.Data{},
		},
		{
			name:    "typed scalars",
			entries: []string{"offset=0", "enforced=false", "ratio=1.5", "label=Hero"},
			want:    data.Data{"offset": 0, "enforced": false, "ratio": 1.5, "label": "Hero"},
		},
		{
			name:    "list items",
			entries: []string{"1:1", "4:3"},
			want:    data.Data{"0": "1:1", "1": "4:3"},
		},
		{
			name:    "mapping stays a string",
			entries: []string{"style=a: b"},
			want:    data.Data{"style": "a: b"},
		},
		{
			name:    "key is trimmed",
			entries: []string{" delay =100"},
			want:    data.Data{"delay": 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeed(tt.entries)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSeedInvalid(t *testing.T) {
	_, err := ParseSeed([]string{"k=[unterminated"})
	assert.Error(t, err)
}

func TestParseWhere(t *testing.T) {
	got, err := parseWhere([]string{"filemime=image/png", "filemime=image/webp", "uri=public://a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"filemime": []any{"image/png", "image/webp"},
		"uri":      []any{"public://a=b"},
	}, got)

	for _, bad := range []string{"filemime", "=image/png"} {
		_, err := parseWhere([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator func(any) error
		value     any
		wantErr   bool
	}{
		{"output text", OutputValidator, "text", false},
		{"output yaml", OutputValidator, "yaml", false},
		{"output xml", OutputValidator, "xml", true},
		{"jammed", JammedFlagValidator, "--sort", true},
		{"not jammed", JammedFlagValidator, "name", false},
		{"positive", PositiveValidator, 1, false},
		{"zero", PositiveValidator, 0, true},
		{"conjunction", ConjunctionValidator, "OR", false},
		{"bad conjunction", ConjunctionValidator, "XOR", true},
		{"operator", OperatorValidator, "STARTS_WITH", false},
		{"empty operator", OperatorValidator, "", false},
		{"bad operator", OperatorValidator, "LIKE", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDiffData(t *testing.T) {
	left := data.Data{"0": "1:1", "1": "4:3"}

	text, modified, err := diffData(left, data.Data{"1": "4:3", "0": "1:1"}, false)
	require.NoError(t, err)
	assert.False(t, modified)
	assert.Empty(t, text)

	text, modified, err = diffData(left, data.Data{"0": "1:1", "1": "16:9"}, false)
	require.NoError(t, err)
	assert.True(t, modified)
	assert.Contains(t, text, `"4:3"`)
	assert.Contains(t, text, `"16:9"`)
}
