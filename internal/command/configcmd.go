// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/blazy"
	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/meta"
)

var configExamples = [][2]string{
	{"blazy config get", "show blazy.settings without _core"},
	{"blazy config get blazy.offset", "show one nested setting"},
	{"blazy config get --group blazy.ratios", "show another group"},
}

// ConfigGetCommandAction prints a key of a config group, or the whole group
// when no key is given.
func ConfigGetCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "config-get",
		DefaultAttrs: []string{"key", "value"},
		Examples:     configExamples,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
			key := cmd.Args().First()
			m := blazy.New(GetMeta(cmd).RootDir, blazy.WithConfig(GetMeta(cmd).Config))

			v := m.Config(key, cmd.String("group"))
			if key != "" {
				if v == nil {
					return []map[string]any{}, nil
				}
				return []map[string]any{{"key": key, "value": v}}, nil
			}

			group, _ := v.(map[string]interface{})
			keys := make([]string, 0, len(group))
			for k := range group {
				keys = append(keys, k)
			}
			data.SortKeys(keys)

			rows := make([]map[string]any, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, map[string]any{"key": k, "value": group[k]})
			}
			return rows, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// ConfigCommandBuilder constructs the "config" command.
func ConfigCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	get := (&QueryCommandBuilder{
		Name:      "get",
		Usage:     "show configuration",
		UsageText: `blazy config get [KEY] [--group GROUP] [options]`,
		Namespace: "config",
		Flags: []cli.Flag{
			NameSpacedValueChainFlagFromConfigFile("config", meta.Config.Source, &cli.StringFlag{
				Name:    "group",
				Aliases: []string{"g"},
				Usage:   "config group",
				Value:   blazy.DefaultGroup,
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("BLAZY_GROUP"),
				),
			}),
		},
		Action: ConfigGetCommandAction,
		Meta:   meta,
	}).Build()

	return &cli.Command{
		Name:     "config",
		Usage:    "read configuration groups",
		Commands: []*cli.Command{get},
	}
}
