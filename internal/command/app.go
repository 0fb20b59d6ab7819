// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/config"
	"github.com/staranto/blazygo/internal/meta"
)

// InitApp loads the config and builds the command tree.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the blazy
	// command and also represents the namespace key to be used when retrieving
	// config values. arg[1] could be -h/--help, so ignore it if it appears to
	// be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// A missing config file is fine. Every command has usable defaults.
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Debug("running without a config file")
		cfg = config.FromMap(map[string]interface{}{})
		cfg.Source = ""
	}
	cfg.Namespace = ns
	config.Config = cfg

	root, _ := cfg.GetString("root", sd)
	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		RootDir:     root,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "blazy",
		Usage: "Blazy cache, entity and display helpers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "blazy version info",
				HideDefault: true,
			},
			NewRootFlag(cfg.Source),
		},
	}

	app.Commands = append(app.Commands,
		CacheCommandBuilder(app, meta),
		ConfigCommandBuilder(app, meta),
		DataCommandBuilder(app, meta),
		EntityCommandBuilder(app, meta),
		GridCommandBuilder(app, meta),
		LibraryCommandBuilder(app, meta),
		MaxlengthCommandBuilder(app, meta),
		PathCommandBuilder(app, meta),
		CompletionCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	sortFlags(app.Commands)

	return app, nil
}

func sortFlags(cmds []*cli.Command) {
	for _, cmd := range cmds {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
		sortFlags(cmd.Commands)
	}
}
