// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package grid wraps a list of rendered items into a responsive grid build.
package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Styles supported by Build.
var Styles = []string{"column", "grid", "flex", "nativegrid"}

// Settings are the grid related display settings.
type Settings struct {
	Style      string `json:"style" yaml:"style"`
	Grid       int    `json:"grid" yaml:"grid"`
	GridMedium int    `json:"grid_medium" yaml:"grid_medium"`
	GridSmall  int    `json:"grid_small" yaml:"grid_small"`
	GridHeader string `json:"grid_header,omitempty" yaml:"grid_header"`
}

// Item is one grid cell.
type Item struct {
	Content any      `json:"content"`
	Classes []string `json:"classes,omitempty"`
}

// Result is the grid build. Unwrapped results carry the items as given.
type Result struct {
	Wrapped bool     `json:"wrapped"`
	Header  string   `json:"header,omitempty"`
	Classes []string `json:"classes,omitempty"`
	Items   []Item   `json:"items"`
}

// SettingsFromMap reads grid settings from a generic settings map. Column
// counts may be numbers or numeric strings.
func SettingsFromMap(m map[string]any) (Settings, error) {
	var s Settings
	var err error

	s.Style, _ = m["style"].(string)
	s.GridHeader, _ = m["grid_header"].(string)
	if s.Grid, err = toInt(m, "grid"); err != nil {
		return s, err
	}
	if s.GridMedium, err = toInt(m, "grid_medium"); err != nil {
		return s, err
	}
	if s.GridSmall, err = toInt(m, "grid_small"); err != nil {
		return s, err
	}
	return s, nil
}

// Build wraps items per settings. An empty style or zero large columns
// returns the items unwrapped.
func Build(items []any, s Settings) (Result, error) {
	result := Result{Items: make([]Item, 0, len(items))}

	if s.Style == "" || s.Grid <= 0 {
		for _, item := range items {
			result.Items = append(result.Items, Item{Content: item})
		}
		return result, nil
	}

	if !validStyle(s.Style) {
		return result, fmt.Errorf("unsupported grid style: %s", s.Style)
	}

	result.Wrapped = true
	result.Header = s.GridHeader
	result.Classes = []string{
		"blazy--grid",
		"block-" + s.Style,
		"block-count-" + strconv.Itoa(len(items)),
	}
	for _, size := range []struct {
		name    string
		columns int
	}{
		{"small", s.GridSmall},
		{"medium", s.GridMedium},
		{"large", s.Grid},
	} {
		if size.columns > 0 {
			result.Classes = append(result.Classes, fmt.Sprintf("%s-block-%s-%d", size.name, s.Style, size.columns))
		}
	}

	for delta, item := range items {
		result.Items = append(result.Items, Item{
			Content: item,
			Classes: []string{"grid", "grid--" + strconv.Itoa(delta)},
		})
	}

	return result, nil
}

func validStyle(style string) bool {
	for _, s := range Styles {
		if s == style {
			return true
		}
	}
	return false
}

func toInt(m map[string]any, key string) (int, error) {
	switch v := m[key].(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %q", key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid %s: %v", key, v)
	}
}
