// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/backend"
	"github.com/staranto/blazygo/internal/meta"
	"github.com/staranto/blazygo/internal/output"
	"github.com/staranto/blazygo/internal/store"
)

var cacheExamples = [][2]string{
	{"blazy cache get blazy:ratios", "show a persisted entry"},
	{"blazy cache list --attrs '!bytes' --sort -bytes", "list the entries of the file backend, largest first"},
	{"blazy cache invalidate blazy:ratios:count:2", "drop every entry carrying a tag"},
	{"blazy cache purge --hours 24", "remove file entries older than a day"},
}

// lister is implemented by backends that can enumerate their entries.
type lister interface {
	Entries() ([]*store.Entry, error)
}

// purger is implemented by backends that can drop entries by age.
type purger interface {
	Purge(hours int) error
}

// entryRow is the printable form of a store entry.
func entryRow(e *store.Entry) map[string]any {
	size := 0
	if b, err := json.Marshal(e.Data); err == nil {
		size = len(b)
	}
	return map[string]any{
		"key":     e.Key,
		"created": e.Created.Format(time.RFC3339),
		"age":     output.Age(e.Created),
		"expires": output.Expiry(e.Expire),
		"count":   len(e.Data),
		"bytes":   size,
		"size":    output.Size(size),
		"tags":    e.Tags,
		"data":    e.Data,
	}
}

func openStore(ctx context.Context, cmd *cli.Command) (store.Store, error) {
	return backend.New(ctx, GetMeta(cmd).Config)
}

// CacheGetCommandAction prints the entries persisted under the given keys.
// Missing keys print nothing.
func CacheGetCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "cache-get",
		DefaultAttrs: []string{"key", "count", "size", "age", "expires", "tags"},
		Examples:     cacheExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
			keys := cmd.Args().Slice()
			if len(keys) == 0 {
				return nil, errors.New("at least one cache key is required")
			}
			s, err := openStore(ctx, cmd)
			if err != nil {
				return nil, err
			}

			rows := []map[string]any{}
			for _, key := range keys {
				e, ok, err := s.Get(ctx, key)
				if err != nil {
					return nil, err
				}
				if !ok {
					log.Debugf("cache miss: %s", key)
					continue
				}
				rows = append(rows, entryRow(e))
			}
			return rows, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// CacheListCommandAction prints every entry of a backend that can list them.
func CacheListCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "cache-list",
		DefaultAttrs: []string{"key", "count", "size", "age", "expires"},
		Examples:     cacheExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
			s, err := openStore(ctx, cmd)
			if err != nil {
				return nil, err
			}
			l, ok := s.(lister)
			if !ok {
				return nil, fmt.Errorf("the %s backend cannot list entries", backend.Type(GetMeta(cmd).Config))
			}
			entries, err := l.Entries()
			if err != nil {
				return nil, err
			}
			rows := make([]map[string]any, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, entryRow(e))
			}
			return rows, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// CacheDeleteCommandAction removes the given keys.
func CacheDeleteCommandAction(ctx context.Context, cmd *cli.Command) error {
	keys := cmd.Args().Slice()
	if len(keys) == 0 {
		return errors.New("at least one cache key is required")
	}
	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	if err := s.Delete(ctx, keys...); err != nil {
		return err
	}
	fmt.Fprintf(writer(cmd), "keys deleted: %s\n", output.Count(len(keys)))
	return nil
}

// CacheInvalidateCommandAction removes every entry carrying any of the given
// tags.
func CacheInvalidateCommandAction(ctx context.Context, cmd *cli.Command) error {
	tags := cmd.Args().Slice()
	if len(tags) == 0 {
		return errors.New("at least one tag is required")
	}
	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	n, err := s.InvalidateTags(ctx, tags...)
	if err != nil {
		return err
	}
	fmt.Fprintf(writer(cmd), "entries invalidated: %s\n", output.Count(n))
	return nil
}

// CachePurgeCommandAction drops entries older than --hours from backends that
// support it.
func CachePurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	p, ok := s.(purger)
	if !ok {
		return fmt.Errorf("the %s backend cannot purge entries", backend.Type(GetMeta(cmd).Config))
	}
	return p.Purge(cmd.Int("hours"))
}

// CacheCommandBuilder constructs the "cache" command and its subcommands,
// which work on the configured store directly and bypass the memo.
func CacheCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	get := (&QueryCommandBuilder{
		Name:      "get",
		Usage:     "show persisted entries",
		UsageText: `blazy cache get KEY... [options]`,
		Namespace: "cache",
		Action:    CacheGetCommandAction,
		Meta:      meta,
	}).Build()

	list := (&QueryCommandBuilder{
		Name:      "list",
		Usage:     "list persisted entries",
		UsageText: `blazy cache list [options]`,
		Namespace: "cache",
		Action:    CacheListCommandAction,
		Meta:      meta,
	}).Build()

	md := map[string]any{"meta": meta}

	return &cli.Command{
		Name:  "cache",
		Usage: "inspect and maintain the cache store",
		Commands: []*cli.Command{
			get,
			list,
			{
				Name:      "delete",
				Usage:     "delete entries by key",
				UsageText: `blazy cache delete KEY...`,
				Metadata:  md,
				Action:    CacheDeleteCommandAction,
			},
			{
				Name:      "invalidate",
				Usage:     "delete entries by tag",
				UsageText: `blazy cache invalidate TAG...`,
				Metadata:  md,
				Action:    CacheInvalidateCommandAction,
			},
			{
				Name:      "purge",
				Usage:     "delete file entries by age",
				UsageText: `blazy cache purge [--hours N]`,
				Metadata:  md,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "hours",
						Usage: "maximum entry age in hours",
						Value: 24,
						Sources: cli.NewValueSourceChain(
							cli.EnvVar("BLAZY_CACHE_CLEAN"),
						),
						Validator: func(value int) error {
							return FlagValidators(value, PositiveValidator)
						},
					},
				},
				Action: CachePurgeCommandAction,
			},
		},
	}
}
