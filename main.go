// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/command"
	"github.com/staranto/blazygo/internal/config"
	mylog "github.com/staranto/blazygo/internal/log"
	"github.com/staranto/blazygo/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	args = mangleArguments(app, args)

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands an @set argument into the flags listed under
// <command>.<set> in the config file. Without an @set, <command>.defaults is
// used. The flags are inserted right after the leaf command name.
func mangleArguments(app *cli.Command, args []string) []string {
	if len(args) < 2 {
		return args
	}

	// Short-circuit for --help/-h. If help is requested, just keep the command
	// path and add --help flag.
	idx, name := leafIndex(app, args)
	for _, a := range args {
		if a == "--help" || a == "-h" {
			preamble := []string{}
			for _, p := range args[:idx] {
				if p != "--help" && p != "-h" {
					preamble = append(preamble, p)
				}
			}
			return append(preamble, "--help")
		}
	}

	// See if there is a @set specified. If so, the @set entry is removed from
	// args and its flags take its place.
	set := "defaults"
	working := make([]string, 0, len(args))
	working = append(working, args[:idx]...)
	for _, a := range args[idx:] {
		if strings.HasPrefix(a, "@") && len(a) > 1 && set == "defaults" {
			set = a[1:]
			continue
		}
		working = append(working, a)
	}

	if name == "" {
		return working
	}
	setArgs, _ := config.GetStringSlice(name + "." + set)
	var parts []string
	for _, arg := range setArgs {
		parts = append(parts, strings.Fields(arg)...)
	}

	result := append(append(append([]string{}, working[:idx]...), parts...), working[idx:]...)
	log.Debugf("idx=%d, set=%s, args=%v", idx, set, result)
	return result
}

// leafIndex returns the index just past the deepest command named in args
// and the name of the top level command. Root flags such as --root DIR may
// precede the command.
func leafIndex(app *cli.Command, args []string) (int, string) {
	cmd := app
	name := ""
	idx := 1
	for idx < len(args) {
		a := args[idx]
		if strings.HasPrefix(a, "-") {
			if cmd != app {
				break
			}
			// A root flag. Skip its value too unless it was given as --flag=value.
			idx++
			if !strings.Contains(a, "=") && idx < len(args) {
				idx++
			}
			continue
		}
		sub := cmd.Command(a)
		if sub == nil {
			break
		}
		if cmd == app {
			name = sub.Name
		}
		cmd = sub
		idx++
	}
	return idx, name
}
