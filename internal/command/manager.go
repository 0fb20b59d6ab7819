// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/alter"
	"github.com/staranto/blazygo/internal/backend"
	"github.com/staranto/blazygo/internal/blazy"
	"github.com/staranto/blazygo/internal/config"
	"github.com/staranto/blazygo/internal/entity/yamlstore"
	"github.com/staranto/blazygo/internal/extension"
)

// NewManager assembles a blazy.Manager from the config carried in the
// command's meta: the cache backend, the alter rules, the entities and the
// installed extensions.
func NewManager(ctx context.Context, cmd *cli.Command) (*blazy.Manager, error) {
	m := GetMeta(cmd)
	cfg := m.Config
	if cfg.Data == nil {
		cfg = config.FromMap(map[string]interface{}{})
	}

	root := cmd.String("root")
	if root == "" {
		root = m.RootDir
	}
	log.WithField("root", root).WithField("config", cfg.Source).Debug("assembling manager")

	cache, err := backend.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := alter.New()
	section, err := cfg.GetMap("alter")
	if err != nil {
		return nil, fmt.Errorf("alter: %w", err)
	}
	if err := registry.RegisterRules(section); err != nil {
		return nil, err
	}

	section, err = cfg.GetMap("extensions")
	if err != nil {
		return nil, fmt.Errorf("extensions: %w", err)
	}
	exts, err := extension.FromConfig(root, section)
	if err != nil {
		return nil, err
	}

	opts := []blazy.Option{
		blazy.WithConfig(cfg),
		blazy.WithRegistry(registry),
		blazy.WithExtensions(exts),
		blazy.WithStore(cache),
	}

	entities, err := loadEntities(cfg)
	if err != nil {
		return nil, err
	}
	if entities != nil {
		opts = append(opts, blazy.WithEntities(entities, entities))
	}

	return blazy.New(root, opts...), nil
}

// loadEntities reads the entities config key. It is either an inline mapping
// of type to entities or the path of a YAML file holding one, relative to
// the config file.
func loadEntities(cfg config.Type) (*yamlstore.Store, error) {
	raw, err := cfg.Get("entities")
	if err != nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case map[string]interface{}:
		return yamlstore.FromMap(v)
	case string:
		path := v
		if !filepath.IsAbs(path) && cfg.Source != "" && cfg.Source != "memory" {
			path = filepath.Join(filepath.Dir(cfg.Source), path)
		}
		return yamlstore.Load(path)
	}
	return nil, fmt.Errorf("entities must be a mapping or a file path, got %T", raw)
}
