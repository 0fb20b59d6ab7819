// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package blazy

import (
	"strconv"

	"github.com/staranto/blazygo/internal/tags"
)

// PermanentMaxAge marks a render build that never expires.
const PermanentMaxAge = -1

// CacheMetadata is the render cache metadata of a build.
type CacheMetadata struct {
	Keys     []string `json:"keys" yaml:"keys"`
	Tags     []string `json:"tags" yaml:"tags"`
	Contexts []string `json:"contexts" yaml:"contexts"`
	MaxAge   int      `json:"max_age" yaml:"max_age"`
}

// CacheMetadata derives the cache metadata of build. Settings are read from
// build["settings"], or from build itself when it has none:
//
//	namespace       key and tag prefix, default "blazy"
//	id              build id, default the namespace
//	count           item count, default len(build["items"])
//	cache           max age in seconds, default permanent
//	cache_tags      extra tags
//	cache_metadata  {keys: [...], contexts: [...]} extra keys and contexts
func (m *Manager) CacheMetadata(build map[string]any) CacheMetadata {
	settings, ok := build["settings"].(map[string]any)
	if !ok {
		settings = build
	}

	namespace := stringSetting(settings, "namespace", "blazy")
	id := stringSetting(settings, "id", namespace)

	count, ok := intSetting(settings, "count")
	if !ok {
		if items, isList := build["items"].([]any); isList {
			count = len(items)
		}
	}

	maxAge, ok := intSetting(settings, "cache")
	if !ok || maxAge == 0 {
		maxAge = PermanentMaxAge
	}

	extra, _ := settings["cache_metadata"].(map[string]any)

	return CacheMetadata{
		Keys:     tags.Merge([]string{namespace, id}, toStrings(extra["keys"])),
		Tags:     tags.Merge(tags.Build(id, "count:"+strconv.Itoa(count)), toStrings(settings["cache_tags"])),
		Contexts: tags.Merge([]string{"languages"}, toStrings(extra["contexts"])),
		MaxAge:   maxAge,
	}
}

func stringSetting(settings map[string]any, key, fallback string) string {
	if s, ok := settings[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func intSetting(settings map[string]any, key string) (int, bool) {
	switch v := settings[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func toStrings(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
