// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/staranto/blazygo/internal/attrs"
	"github.com/staranto/blazygo/internal/data"
	"github.com/staranto/blazygo/internal/meta"
	"github.com/staranto/blazygo/internal/output"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr blazy-<subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "blazy-"+subcmd)
			c.Stdout = writer(cmd)
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// ShortCircuitExamples prints the examples when --examples is set and
// returns true if it handled the request.
func ShortCircuitExamples(cmd *cli.Command, examples [][2]string) bool {
	if cmd.Bool("examples") {
		output.DumpExamples(writer(cmd), examples)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec. Bare keys are resolved
// under prefix.
func BuildAttrs(cmd *cli.Command, prefix string, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Parse(d, prefix)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Parse(extras, prefix)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// EmitRows marshals results as JSON and passes them to the common output
// routine.
func EmitRows(results any, al attrs.AttrList, cmd *cli.Command) error {
	var raw bytes.Buffer
	if err := json.NewEncoder(&raw).Encode(results); err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return output.SliceDiceSpit(raw, al, cmd, "", writer(cmd))
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// writer is where commands print. Tests point the root command's Writer at
// a buffer.
func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// ParseSeed turns --seed entries into a data set. key=value entries are
// keyed, bare entries are appended as list items keyed from 0. Values are
// read as YAML scalars, so 0, false and 1.5 keep their types.
func ParseSeed(entries []string) (data.Data, error) {
	var list []any
	d := data.Data{}
	for _, entry := range entries {
		k, v, keyed := strings.Cut(entry, "=")
		if !keyed {
			v = entry
		}
		var value any
		if err := yaml.Unmarshal([]byte(v), &value); err != nil {
			return nil, fmt.Errorf("invalid seed value %q: %w", v, err)
		}
		switch value.(type) {
		case map[string]any, []any:
			// Only scalars are typed. "a: b" stays a string.
			value = v
		}
		if keyed {
			d[strings.TrimSpace(k)] = value
			continue
		}
		list = append(list, value)
	}
	for k, v := range data.FromList(list...) {
		d[k] = v
	}
	return d, nil
}

// QueryCommandBuilder is a helper that constructs a cli.Command for leaf
// subcommands using a consistent pattern. The builder automatically wires
// metadata, adds the tldr and examples flags, applies global flags, and sets
// up validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	// Namespace is the config key the global flags are looked up under.
	// Defaults to Name.
	Namespace string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	ns := qcb.Namespace
	if ns == "" {
		ns = qcb.Name
	}
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			newTLDRFlag(),
			newExamplesFlag(),
		}, NewGlobalFlags(qcb.Meta.Config.Source, ns)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner encapsulates the common action pattern of the leaf
// subcommands: short-circuit checks, attrs, fetch and emit. FetchFn returns
// the rows to print.
type QueryActionRunner struct {
	CommandName string
	// Prefix is where bare --attrs keys resolve within each row.
	Prefix       string
	DefaultAttrs []string
	Examples     [][2]string
	FetchFn      func(context.Context, *cli.Command) (any, error)
}

// Run executes the action with the provided context and command.
func (qar *QueryActionRunner) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	m := GetMeta(cmd)
	if len(m.Args) > 1 {
		log.Debugf("Executing action for %v", m.Args[1:])
	}

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}
	if ShortCircuitExamples(cmd, qar.Examples) {
		return nil
	}

	attrs := BuildAttrs(cmd, qar.Prefix, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs.String())

	results, err := qar.FetchFn(ctx, cmd)
	if err != nil {
		return err
	}

	return EmitRows(results, attrs, cmd)
}
