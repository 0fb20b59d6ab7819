// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package blazy

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/blazygo/internal/alter"
	"github.com/staranto/blazygo/internal/cached"
	"github.com/staranto/blazygo/internal/config"
	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/entity"
	"github.com/staranto/blazygo/internal/entity/yamlstore"
	"github.com/staranto/blazygo/internal/extension"
	"github.com/staranto/blazygo/internal/store/memory"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()

	cfg, err := config.Parse(filepath.Join("testdata", "blazy.yaml"))
	require.NoError(t, err)

	section, err := cfg.GetMap("entities")
	require.NoError(t, err)
	entities, err := yamlstore.FromMap(section)
	require.NoError(t, err)

	exts, err := cfg.GetMap("extensions")
	require.NoError(t, err)
	list, err := extension.FromConfig(t.TempDir(), exts)
	require.NoError(t, err)

	base := []Option{WithConfig(cfg), WithEntities(entities, entities), WithExtensions(list)}
	return New("/var/www/html", append(base, opts...)...)
}

func TestNewDefaults(t *testing.T) {
	m := New("/srv")
	assert.Equal(t, "/srv", m.Root())
	assert.NotNil(t, m.Cache())
	assert.NotNil(t, m.Memo())
	assert.NotNil(t, m.ModuleHandler())
	assert.NotNil(t, m.Extensions())
	assert.Nil(t, m.EntityTypeManager())
	assert.Nil(t, m.EntityRepository())
	assert.NotNil(t, m.ConfigSource().Data)

	_, err := m.Storage("")
	assert.ErrorIs(t, err, ErrNoEntities)
	_, err = m.LoadByUUID(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrNoEntities)
}

func TestConfig(t *testing.T) {
	m := newTestManager(t)

	all, ok := m.Config("", "").(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, all, "_core")
	assert.Equal(t, true, all["admin_css"])

	assert.Equal(t, true, m.Config("admin_css", ""))
	assert.Equal(t, 100, m.Config("blazy.offset", DefaultGroup))
	assert.Equal(t, "enabled", m.Config("fluid", "blazy.ratios"))
	assert.Nil(t, m.Config("missing", ""))

	empty, ok := m.Config("", "nope.settings").(map[string]interface{})
	require.True(t, ok)
	assert.Empty(t, empty)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	got, err := m.Load(ctx, "thumbnail", "")
	require.NoError(t, err)
	e, ok := got.(*entity.Entity)
	require.True(t, ok)
	assert.Equal(t, "image_style", e.Type)

	got, err = m.Load(ctx, "admin_css", "blazy.settings")
	require.NoError(t, err)
	assert.Equal(t, true, got)

	_, err = m.Load(ctx, "99", "file")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	storage, err := m.Storage("")
	require.NoError(t, err)
	media, err := storage.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Hero banner", media.Label)
}

func TestLoadMultiple(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	all, err := m.LoadMultiple(ctx, "file", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	styles, err := m.LoadMultiple(ctx, "", []string{"thumbnail", "large"})
	require.NoError(t, err)
	require.Len(t, styles, 1)
	assert.Equal(t, "thumbnail", styles[0].ID)
}

func TestLoadByProperties(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	tests := []struct {
		name   string
		values map[string]any
		opts   []PropertyOption
		want   []string
	}{
		{"scalar cast to list", map[string]any{"filemime": "image/png"}, nil, []string{"1"}},
		{"access disabled", map[string]any{"filemime": "image/png"}, []PropertyOption{WithAccess(false)}, []string{"1", "3"}},
		{"list value", map[string]any{"filemime": []string{"image/png", "video/mp4"}}, nil, []string{"1", "2"}},
		{"and", map[string]any{"filemime": "image/png", "uri": "public://intro.mp4"}, nil, nil},
		{"or", map[string]any{"filemime": "image/png", "uri": "public://intro.mp4"}, []PropertyOption{WithConjunction("OR")}, []string{"1", "2"}},
		{"condition", map[string]any{"uri": "public://"}, []PropertyOption{WithCondition(entity.OpStartsWith)}, []string{"1", "2"}},
		{"other type", map[string]any{"bundle": "image"}, []PropertyOption{WithType("media")}, []string{"7"}},
		{"no match", map[string]any{"filemime": "text/plain"}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.LoadByProperties(ctx, tt.values, tt.opts...)
			require.NoError(t, err)
			require.NotNil(t, got)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			if tt.want == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err := m.LoadByProperties(ctx, map[string]any{"uri": []string{"a", "b"}}, WithCondition(entity.OpEqual))
	assert.Error(t, err)
}

func TestLoadByUUID(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	e, err := m.LoadByUUID(ctx, yamlstore.DeriveUUID("file", "2"), "")
	require.NoError(t, err)
	assert.Equal(t, "intro.mp4", e.Label)

	_, err = m.LoadByUUID(ctx, yamlstore.DeriveUUID("file", "2"), "media")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestEntityQuery(t *testing.T) {
	m := newTestManager(t)

	q, err := m.EntityQuery("file", "")
	require.NoError(t, err)
	ids, err := q.Condition("filemime", "video/mp4", "").Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids)

	_, err = m.EntityQuery("node", "")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestCachedData(t *testing.T) {
	ctx := context.Background()
	registry := alter.New()
	calls := 0
	registry.Register("blazy_ratios", func(_ context.Context, d data.Data, _ map[string]any) error {
		calls++
		d["0"] = "1:1"
		d["1"] = "4:3"
		d["2"] = "1:1"
		return nil
	})
	s := memory.New()
	m := newTestManager(t, WithRegistry(registry), WithStore(s))

	got, err := m.CachedData(ctx, "blazy:ratios", data.Data{}, cached.WithHook("blazy_ratios"), cached.WithShape(data.List))
	require.NoError(t, err)
	assert.Equal(t, data.Data{"0": "1:1", "1": "4:3"}, got)

	again, err := m.GetCachedData(ctx, "blazy:ratios", data.Data{}, false, "blazy_ratios", nil)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, calls)

	e, ok, err := s.Get(ctx, "blazy:ratios")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"blazy:ratios:count:2"}, e.Tags)

	_, err = m.GetCachedData(ctx, "blazy:ratios", data.Data{}, true, "blazy_ratios", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "a forced refresh hits the store first")
}

func TestExtensions(t *testing.T) {
	m := newTestManager(t)

	assert.True(t, m.ModuleExists("blazy"))
	assert.False(t, m.ModuleExists("olivero"))

	p, ok := m.Path("module", "blazy", false)
	assert.True(t, ok)
	assert.Equal(t, "modules/contrib/blazy", p)

	p, ok = m.Path("theme", "olivero", true)
	assert.True(t, ok)
	assert.Equal(t, "/core/themes/olivero", p)

	_, ok = m.LibrariesPath("blazy", false)
	assert.False(t, ok)
}

func TestToGrid(t *testing.T) {
	m := newTestManager(t)

	r, err := m.ToGrid([]any{"a", "b"}, map[string]any{"style": "grid", "grid": 2, "grid_small": "1"})
	require.NoError(t, err)
	assert.True(t, r.Wrapped)
	assert.Equal(t, []string{"blazy--grid", "block-grid", "block-count-2", "small-block-grid-1", "large-block-grid-2"}, r.Classes)

	r, err = m.ToGrid([]any{"a"}, map[string]any{})
	require.NoError(t, err)
	assert.False(t, r.Wrapped)

	_, err = m.ToGrid([]any{"a"}, map[string]any{"grid": "many"})
	assert.Error(t, err)
}

func TestCacheMetadata(t *testing.T) {
	m := New("")

	got := m.CacheMetadata(map[string]any{
		"items": []any{"a", "b", "c"},
		"settings": map[string]any{
			"namespace":  "slick",
			"id":         "slick-home",
			"cache":      3600,
			"cache_tags": []any{"node:1"},
			"cache_metadata": map[string]any{
				"keys":     []any{"home"},
				"contexts": []any{"url.path"},
			},
		},
	})
	assert.Equal(t, CacheMetadata{
		Keys:     []string{"home", "slick", "slick-home"},
		Tags:     []string{"node:1", "slick-home:count:3"},
		Contexts: []string{"languages", "url.path"},
		MaxAge:   3600,
	}, got)

	got = m.CacheMetadata(map[string]any{"count": "2"})
	assert.Equal(t, CacheMetadata{
		Keys:     []string{"blazy"},
		Tags:     []string{"blazy:count:2"},
		Contexts: []string{"languages"},
		MaxAge:   PermanentMaxAge,
	}, got)
}

func TestPlaceholder(t *testing.T) {
	assert.Contains(t, Placeholder, "data:image/gif;base64,")
}
