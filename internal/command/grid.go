// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/blazy"
	"github.com/staranto/blazygo/internal/meta"
)

var gridExamples = [][2]string{
	{"blazy grid --style grid --columns 3 a b c", "wrap three items into a three column grid"},
	{"blazy grid --style column --columns 4 --small 1 --medium 2 a b", "responsive column counts"},
}

// GridCommandAction wraps the arguments into a grid and prints one row per
// item.
func GridCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "grid",
		DefaultAttrs: []string{"delta", "content", "classes", "container"},
		Examples:     gridExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
			args := cmd.Args().Slice()
			items := make([]any, 0, len(args))
			for _, a := range args {
				items = append(items, a)
			}

			m := blazy.New(GetMeta(cmd).RootDir)
			r, err := m.ToGrid(items, map[string]any{
				"style":       cmd.String("style"),
				"grid":        cmd.Int("columns"),
				"grid_medium": cmd.Int("medium"),
				"grid_small":  cmd.Int("small"),
				"grid_header": cmd.String("header"),
			})
			if err != nil {
				return nil, err
			}

			container := strings.Join(r.Classes, " ")
			rows := make([]map[string]any, 0, len(r.Items))
			for i, item := range r.Items {
				rows = append(rows, map[string]any{
					"delta":     i,
					"content":   item.Content,
					"classes":   strings.Join(item.Classes, " "),
					"container": container,
					"header":    r.Header,
					"wrapped":   r.Wrapped,
				})
			}
			return rows, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// GridCommandBuilder constructs the "grid" command.
func GridCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "grid",
		Usage:     "wrap items into a grid",
		UsageText: `blazy grid --style STYLE --columns N [--medium N] [--small N] ITEM... [options]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "style",
				Usage: "grid style: column, grid, flex or nativegrid",
			},
			&cli.IntFlag{
				Name:  "columns",
				Usage: "columns at the large breakpoint. Zero leaves the items unwrapped",
			},
			&cli.IntFlag{
				Name:  "medium",
				Usage: "columns at the medium breakpoint",
			},
			&cli.IntFlag{
				Name:  "small",
				Usage: "columns at the small breakpoint",
			},
			&cli.StringFlag{
				Name:  "header",
				Usage: "grid header text",
			},
		},
		Action: GridCommandAction,
		Meta:   meta,
	}).Build()
}
