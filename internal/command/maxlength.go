// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/maxlength"
	"github.com/staranto/blazygo/internal/meta"
)

var maxlengthExamples = [][2]string{
	{"blazy maxlength count --html '<b>Lorem</b> ipsum'", "count visible characters"},
	{"blazy maxlength truncate --limit 200 --html - < body.html", "enforce a hard limit on stdin"},
}

// maxlengthText returns the TEXT argument, reading the command's input when
// it is - or missing.
func maxlengthText(cmd *cli.Command) (string, error) {
	text := cmd.Args().First()
	if cmd.NArg() > 0 && text != "-" {
		return text, nil
	}

	r := cmd.Root().Reader
	if r == nil {
		r = os.Stdin
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func maxlengthAction(enforce bool) func(context.Context, *cli.Command) error {
	name := "maxlength-count"
	if enforce {
		name = "maxlength-truncate"
	}

	return func(ctx context.Context, cmd *cli.Command) error {
		runner := &QueryActionRunner{
			CommandName:  name,
			DefaultAttrs: []string{"count", "remaining", "truncated", "value"},
			Examples:     maxlengthExamples,
			FetchFn: func(ctx context.Context, cmd *cli.Command) (any, error) {
				text, err := maxlengthText(cmd)
				if err != nil {
					return nil, err
				}
				settings := maxlength.Settings{
					Limit:   cmd.Int("limit"),
					Label:   cmd.String("label"),
					Enforce: enforce,
					HTML:    cmd.Bool("html"),
				}
				r, err := settings.Apply(text)
				if err != nil {
					return nil, err
				}
				return []maxlength.Result{r}, nil
			},
		}
		return runner.Run(ctx, cmd)
	}
}

func maxlengthFlags(source string) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "character limit",
			Value: 200,
			Sources: cli.NewValueSourceChain(
				yaml.YAML("maxlength.limit", altsrc.StringSourcer(source)),
			),
			Validator: func(value int) error {
				return FlagValidators(value, PositiveValidator)
			},
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "counter label with @limit, @remaining and @count placeholders",
			Value: maxlength.DefaultLabel,
			Sources: cli.NewValueSourceChain(
				yaml.YAML("maxlength.label", altsrc.StringSourcer(source)),
			),
		},
		&cli.BoolFlag{
			Name:        "html",
			Usage:       "treat the text as HTML and count only visible characters",
			HideDefault: true,
		},
	}
}

// MaxlengthCommandBuilder constructs the "maxlength" command and its count
// and truncate subcommands.
func MaxlengthCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	count := (&QueryCommandBuilder{
		Name:      "count",
		Usage:     "count characters against a limit",
		UsageText: `blazy maxlength count [TEXT|-] [--limit N] [--html] [options]`,
		Namespace: "maxlength",
		Flags:     maxlengthFlags(meta.Config.Source),
		Action:    maxlengthAction(false),
		Meta:      meta,
	}).Build()

	truncate := (&QueryCommandBuilder{
		Name:      "truncate",
		Usage:     "truncate text to a limit, keeping markup balanced",
		UsageText: `blazy maxlength truncate [TEXT|-] --limit N [--html] [options]`,
		Namespace: "maxlength",
		Flags:     maxlengthFlags(meta.Config.Source),
		Action:    maxlengthAction(true),
		Meta:      meta,
	}).Build()

	return &cli.Command{
		Name:     "maxlength",
		Usage:    "character limits for plain and HTML text",
		Commands: []*cli.Command{count, truncate},
	}
}
