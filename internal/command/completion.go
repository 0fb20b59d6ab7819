// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/blazygo/internal/meta"
)

const bashCompletionScript = `# bash completion for blazy
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_blazy()
{
    local cur prev cmd sub
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "cache config data entity grid library maxlength path completion --root --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    sub=${COMP_WORDS[2]}
    local common="--attrs -a --color -c --filter -f --local -l --output -o --sort -s --titles -t --tldr --examples"

    if [[ ${COMP_CWORD} -eq 2 ]]; then
        case "$cmd" in
            cache)     COMPREPLY=( $(compgen -W "get list delete invalidate purge" -- "$cur") ); return 0 ;;
            config)    COMPREPLY=( $(compgen -W "get" -- "$cur") ); return 0 ;;
            data)      COMPREPLY=( $(compgen -W "get diff" -- "$cur") ); return 0 ;;
            entity)    COMPREPLY=( $(compgen -W "load query uuid" -- "$cur") ); return 0 ;;
            maxlength) COMPREPLY=( $(compgen -W "count truncate" -- "$cur") ); return 0 ;;
            path)      COMPREPLY=( $(compgen -W "module theme profile" -- "$cur") ); return 0 ;;
            completion) COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") ); return 0 ;;
        esac
    fi

    local opts="$common"
    case "$cmd $sub" in
        "data get")        opts="$common --seed --list --hook --reset --keep-zero --tag" ;;
        "data diff")       opts="--seed --list --hook --color -c" ;;
        "cache purge")     opts="--hours" ;;
        "cache delete"|"cache invalidate") opts="" ;;
        "config get")      opts="$common --group -g" ;;
        "entity query")    opts="$common --where -w --conjunction --operator --all" ;;
        "maxlength "*)     opts="$common --limit --label --html" ;;
        "path "*)          opts="$common --absolute" ;;
        "library "*)       opts="$common --base" ;;
        "grid "*)          opts="$common --style --columns --medium --small --header" ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi
    if [[ "$prev" == "--style" ]]; then
        COMPREPLY=( $(compgen -W "column grid flex nativegrid" -- "$cur") )
        return 0
    fi
    if [[ "$prev" == "--conjunction" ]]; then
        COMPREPLY=( $(compgen -W "AND OR" -- "$cur") )
        return 0
    fi
    if [[ "$prev" == "--root" || "$prev" == "-r" ]]; then
        COMPREPLY=( $(compgen -o dirnames -- "$cur") )
        return 0
    fi

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    fi
    return 0
}

complete -F _blazy blazy
`

const zshCompletionScript = `#compdef blazy

_blazy() {
  local -a cmds
  cmds=(
    'cache:inspect and maintain the cache store'
    'config:read configuration groups'
    'data:cached, alterable data sets'
    'entity:load and query entities'
    'grid:wrap items into a grid'
    'library:show the path of a front-end library'
    'maxlength:character limits for plain and HTML text'
    'path:show the path of a module, theme or profile'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  '--examples[show usage examples]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'blazy commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    cache)
      _arguments -C '1: :((get list delete invalidate purge))' $common '--hours[maximum age in hours]:hours' '*:key'
      ;;
    config)
      _arguments -C '1: :((get))' $common '(-g --group)'{-g,--group}'[config group]:group' '::key'
      ;;
    data)
      _arguments -C \
        '1: :((get diff))' \
        $common \
        '*--seed[seed entry]:entry' \
        '--list[list shaped seed]' \
        '--hook[alteration hook]:hook' \
        '--reset[consult the store again]' \
        '--keep-zero[keep numeric zeros]' \
        '*--tag[extra tag]:tag' \
        '::key'
      ;;
    entity)
      _arguments -C \
        '1: :((load query uuid))' \
        $common \
        '*'{-w,--where}'[field=value condition]:condition' \
        '--conjunction[AND or OR]:conjunction:(AND OR)' \
        '--operator[condition operator]:operator' \
        '--all[include unpublished]' \
        '*:id'
      ;;
    grid)
      _arguments -C \
        $common \
        '--style[grid style]:style:(column grid flex nativegrid)' \
        '--columns[large columns]:n' \
        '--medium[medium columns]:n' \
        '--small[small columns]:n' \
        '--header[grid header]:header' \
        '*:item'
      ;;
    maxlength)
      _arguments -C '1: :((count truncate))' $common '--limit[character limit]:n' '--label[counter label]:label' '--html[html text]' '::text'
      ;;
    path)
      _arguments -C '1: :((module theme profile))' $common '--absolute[prefix the web root]' '::name'
      ;;
    library)
      _arguments -C $common '--base[prefix the web root]' '::name'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _blazy blazy
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := writer(cmd)
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			shell = "zsh"
		} else if strings.HasSuffix(sh, "bash") {
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("usage: blazy completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "blazy completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
