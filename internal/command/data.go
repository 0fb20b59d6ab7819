// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/blazygo/internal/blazy"
	"github.com/staranto/blazygo/internal/cached"
	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/meta"
)

var dataExamples = [][2]string{
	{"blazy data get blazy:ratios --list --seed 1:1 --seed 4:3", "resolve a list, altered by the blazy:ratios hook"},
	{"blazy data get blazy:ratios --reset", "consult the store again"},
	{"blazy data get blazy:ratios --keep-zero --seed offset=0", "keep numeric zeros"},
	{"blazy data diff blazy:ratios --list --seed 1:1", "compare the stored entry with a fresh alteration"},
}

// dataRows flattens d into key/value rows in natural key order.
func dataRows(d data.Data) []map[string]any {
	rows := make([]map[string]any, 0, len(d))
	for _, k := range d.Keys() {
		rows = append(rows, map[string]any{"key": k, "value": d[k]})
	}
	return rows
}

func seedOptions(cmd *cli.Command) (data.Data, []cached.Option, error) {
	seed, err := ParseSeed(cmd.StringSlice("seed"))
	if err != nil {
		return nil, nil, err
	}

	var opts []cached.Option
	if hook := cmd.String("hook"); hook != "" {
		opts = append(opts, cached.WithHook(hook))
	}
	if cmd.Bool("list") {
		opts = append(opts, cached.WithShape(data.List))
	}
	return seed, opts, nil
}

// DataGetCommandAction resolves a cached data set through the memo, the
// store and the alteration hooks.
func DataGetCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "data-get",
		DefaultAttrs: []string{"key", "value"},
		Examples:     dataExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
			key := cmd.Args().First()
			if key == "" {
				return nil, errors.New("a cache key is required")
			}

			seed, opts, err := seedOptions(cmd)
			if err != nil {
				return nil, err
			}
			if cmd.Bool("reset") {
				opts = append(opts, cached.WithReset())
			}
			if cmd.Bool("keep-zero") {
				opts = append(opts, cached.WithKeepZero())
			}
			if tags := cmd.StringSlice("tag"); len(tags) > 0 {
				opts = append(opts, cached.WithTags(tags...))
			}

			m, err := NewManager(ctx, cmd)
			if err != nil {
				return nil, err
			}
			d, err := m.CachedData(ctx, key, seed, opts...)
			if err != nil {
				return nil, err
			}
			return dataRows(d), nil
		},
	}
	return runner.Run(ctx, cmd)
}

// DataDiffCommandAction compares the entry persisted under a key with what
// the alteration hooks produce from the seed right now. Nothing is written.
func DataDiffCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "data-diff") || ShortCircuitExamples(cmd, dataExamples) {
		return nil
	}

	key := cmd.Args().First()
	if key == "" {
		return errors.New("a cache key is required")
	}

	seed, opts, err := seedOptions(cmd)
	if err != nil {
		return err
	}
	m, err := NewManager(ctx, cmd)
	if err != nil {
		return err
	}

	stored := data.Data{}
	entry, ok, err := m.Cache().Get(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		stored = entry.Data
	}

	fresh, err := freshData(ctx, m, key, seed, opts)
	if err != nil {
		return err
	}

	text, modified, err := diffData(stored, fresh, cmd.Bool("color"))
	if err != nil {
		return err
	}
	log.WithField("key", key).WithField("modified", modified).Debug("diff")

	w := writer(cmd)
	if !modified {
		fmt.Fprintln(w, "no differences")
		return nil
	}
	fmt.Fprint(w, text)
	return nil
}

// freshData runs the resolution of a store miss against an empty, private
// store and memo, so the real cache is left untouched. The result is the
// entry as it would be persisted.
func freshData(ctx context.Context, m *blazy.Manager, key string, seed data.Data, opts []cached.Option) (data.Data, error) {
	scratch := blazy.New(m.Root(), blazy.WithRegistry(m.ModuleHandler()))
	if _, err := scratch.CachedData(ctx, key, seed, opts...); err != nil {
		return nil, err
	}

	entry, ok, err := scratch.Cache().Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return data.Data{}, nil
	}
	return entry.Data, nil
}

// diffData renders the changes from left to right as an ASCII delta.
func diffData(left, right data.Data, color bool) (string, bool, error) {
	lb, err := json.Marshal(left)
	if err != nil {
		return "", false, err
	}
	rb, err := json.Marshal(right)
	if err != nil {
		return "", false, err
	}

	diff, err := gojsondiff.New().Compare(lb, rb)
	if err != nil {
		return "", false, fmt.Errorf("failed to compare data: %w", err)
	}
	if !diff.Modified() {
		return "", false, nil
	}

	var leftObject map[string]interface{}
	if err := json.Unmarshal(lb, &leftObject); err != nil {
		return "", false, err
	}
	f := formatter.NewAsciiFormatter(leftObject, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	text, err := f.Format(diff)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// DataCommandBuilder constructs the "data" command and its get and diff
// subcommands.
func DataCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	get := (&QueryCommandBuilder{
		Name:      "get",
		Usage:     "resolve a cached data set",
		UsageText: `blazy data get KEY [--seed k=v ...] [--list] [--reset] [--hook NAME] [options]`,
		Namespace: "data",
		Flags: append(NewSeedFlags(),
			&cli.BoolFlag{
				Name:        "reset",
				Usage:       "skip the memo and consult the store again",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "keep-zero",
				Usage:       "keep numeric zero values",
				HideDefault: true,
			},
			&cli.StringSliceFlag{
				Name:  "tag",
				Usage: "extra invalidation tag for a newly persisted entry",
			},
		),
		Action: DataGetCommandAction,
		Meta:   meta,
	}).Build()

	diff := &cli.Command{
		Name:      "diff",
		Usage:     "compare the stored entry with a fresh alteration",
		UsageText: `blazy data diff KEY [--seed k=v ...] [--list] [--hook NAME]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(NewSeedFlags(),
			newTLDRFlag(),
			newExamplesFlag(),
			&cli.BoolWithInverseFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "color the delta",
			},
		),
		Action: DataDiffCommandAction,
	}

	return &cli.Command{
		Name:     "data",
		Usage:    "cached, alterable data sets",
		Commands: []*cli.Command{get, diff},
	}
}
