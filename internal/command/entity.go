// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/attrs"
	"github.com/staranto/blazygo/internal/blazy"
	"github.com/staranto/blazygo/internal/entity"
	"github.com/staranto/blazygo/internal/meta"
)

var entityExamples = [][2]string{
	{"blazy entity load file 1 2", "load files by id"},
	{"blazy entity query file --where filemime=image/png --where filemime=image/webp", "query files by mime type"},
	{"blazy entity query file --where uri=public:// --operator STARTS_WITH --all", "include unpublished files"},
	{"blazy entity uuid file 0b9e...", "load a file by uuid"},
}

var entityDefaultAttrs = []string{".id", ".bundle", ".label", ".published"}

func entityArgs(cmd *cli.Command, min int) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) < min {
		return nil, fmt.Errorf("expected at least %d arguments, got %d", min, len(args))
	}
	return args, nil
}

// EntityLoadCommandAction loads entities of a type by id. With no id every
// entity of the type is loaded.
func EntityLoadCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "entity-load",
		Prefix:       attrs.DefaultPrefix,
		DefaultAttrs: entityDefaultAttrs,
		Examples:     entityExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
			args, err := entityArgs(cmd, 1)
			if err != nil {
				return nil, err
			}
			m, err := NewManager(ctx, cmd)
			if err != nil {
				return nil, err
			}

			var ids []string
			if len(args) > 1 {
				ids = args[1:]
			}
			return m.LoadMultiple(ctx, args[0], ids)
		},
	}
	return runner.Run(ctx, cmd)
}

// parseWhere groups --where field=value entries by field. Repeating a field
// adds values to it.
func parseWhere(entries []string) (map[string]any, error) {
	values := map[string]any{}
	for _, entry := range entries {
		field, value, ok := strings.Cut(entry, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --where %q, expected field=value", entry)
		}
		list, _ := values[field].([]any)
		values[field] = append(list, value)
	}
	return values, nil
}

// EntityQueryCommandAction loads the entities whose fields match every
// --where condition, or any with --conjunction OR.
func EntityQueryCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "entity-query",
		Prefix:       attrs.DefaultPrefix,
		DefaultAttrs: entityDefaultAttrs,
		Examples:     entityExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
			args, err := entityArgs(cmd, 1)
			if err != nil {
				return nil, err
			}
			values, err := parseWhere(cmd.StringSlice("where"))
			if err != nil {
				return nil, err
			}
			if len(values) == 0 {
				return nil, errors.New("at least one --where condition is required")
			}

			m, err := NewManager(ctx, cmd)
			if err != nil {
				return nil, err
			}

			opts := []blazy.PropertyOption{
				blazy.WithType(args[0]),
				blazy.WithAccess(!cmd.Bool("all")),
				blazy.WithConjunction(cmd.String("conjunction")),
			}
			if op := cmd.String("operator"); op != "" {
				opts = append(opts, blazy.WithCondition(strings.ToUpper(op)))
			}
			return m.LoadByProperties(ctx, values, opts...)
		},
	}
	return runner.Run(ctx, cmd)
}

// EntityUUIDCommandAction loads one entity by uuid.
func EntityUUIDCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "entity-uuid",
		Prefix:       attrs.DefaultPrefix,
		DefaultAttrs: append([]string{".uuid"}, entityDefaultAttrs...),
		Examples:     entityExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
			args, err := entityArgs(cmd, 2)
			if err != nil {
				return nil, err
			}
			m, err := NewManager(ctx, cmd)
			if err != nil {
				return nil, err
			}
			e, err := m.LoadByUUID(ctx, args[1], args[0])
			if err != nil {
				return nil, err
			}
			return []*entity.Entity{e}, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// EntityCommandBuilder constructs the "entity" command and its subcommands.
func EntityCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	load := (&QueryCommandBuilder{
		Name:      "load",
		Usage:     "load entities by id",
		UsageText: `blazy entity load TYPE [ID...] [options]`,
		Namespace: "entity",
		Action:    EntityLoadCommandAction,
		Meta:      meta,
	}).Build()

	query := (&QueryCommandBuilder{
		Name:      "query",
		Usage:     "load entities by field values",
		UsageText: `blazy entity query TYPE --where field=value... [options]`,
		Namespace: "entity",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "where",
				Aliases: []string{"w"},
				Usage:   "field=value condition. Repeat a field to match any of its values",
			},
			&cli.StringFlag{
				Name:  "conjunction",
				Usage: "join conditions with AND or OR",
				Value: entity.And,
				Validator: func(value string) error {
					return FlagValidators(value, ConjunctionValidator)
				},
			},
			&cli.StringFlag{
				Name:  "operator",
				Usage: "operator of every condition. Defaults to IN",
				Validator: func(value string) error {
					return FlagValidators(value, OperatorValidator)
				},
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "include unpublished entities",
				HideDefault: true,
			},
		},
		Action: EntityQueryCommandAction,
		Meta:   meta,
	}).Build()

	byUUID := (&QueryCommandBuilder{
		Name:      "uuid",
		Usage:     "load an entity by uuid",
		UsageText: `blazy entity uuid TYPE UUID [options]`,
		Namespace: "entity",
		Action:    EntityUUIDCommandAction,
		Meta:      meta,
	}).Build()

	return &cli.Command{
		Name:     "entity",
		Usage:    "load and query entities",
		Commands: []*cli.Command{load, query, byUUID},
	}
}
