// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/extension"
	"github.com/staranto/blazygo/internal/meta"
)

var pathExamples = [][2]string{
	{"blazy path module blazy", "path of a module relative to the site root"},
	{"blazy path theme olivero --absolute", "path of a theme from the web root"},
	{"blazy library slick --base", "path of a front-end library"},
}

// PathCommandAction prints the path of an installed extension.
func PathCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "path",
		DefaultAttrs: []string{"path"},
		Examples:     pathExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
			args := cmd.Args().Slice()
			if len(args) != 2 {
				return nil, fmt.Errorf("expected TYPE and NAME, got %d arguments", len(args))
			}
			typ, name := args[0], args[1]
			if typ != extension.Module && typ != extension.Theme && typ != extension.Profile {
				return nil, fmt.Errorf("unknown extension type: %s", typ)
			}

			m, err := NewManager(ctx, cmd)
			if err != nil {
				return nil, err
			}
			p, ok := m.Path(typ, name, cmd.Bool("absolute"))
			if !ok {
				return nil, fmt.Errorf("%s %s is not installed", typ, name)
			}
			return []map[string]any{{"type": typ, "name": name, "path": p}}, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// LibraryCommandAction prints the path of a front-end library found under
// the site's libraries directory.
func LibraryCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "library",
		DefaultAttrs: []string{"path"},
		Examples:     pathExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
			name := cmd.Args().First()
			if name == "" {
				return nil, fmt.Errorf("a library name is required")
			}

			m, err := NewManager(ctx, cmd)
			if err != nil {
				return nil, err
			}
			p, ok := m.LibrariesPath(name, cmd.Bool("base"))
			if !ok {
				return nil, fmt.Errorf("library %s not found under %s", name, m.Root())
			}
			return []map[string]any{{"name": name, "path": p}}, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// PathCommandBuilder constructs the "path" command.
func PathCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "path",
		Usage:     "show the path of a module, theme or profile",
		UsageText: `blazy path TYPE NAME [--absolute] [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "absolute",
				Usage:       "prefix the path with the web root",
				HideDefault: true,
			},
		},
		Action: PathCommandAction,
		Meta:   meta,
	}).Build()
}

// LibraryCommandBuilder constructs the "library" command.
func LibraryCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "library",
		Usage:     "show the path of a front-end library",
		UsageText: `blazy library NAME [--base] [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "base",
				Usage:       "prefix the path with the web root",
				HideDefault: true,
			},
		},
		Action: LibraryCommandAction,
		Meta:   meta,
	}).Build()
}
