// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kraklabs/graphload/internal/errors"
)

// bashCompletionTemplate is the bash completion script for graphload.
const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for graphload
# Installation:
#   source <(graphload completion bash)
#   Or add to ~/.bashrc:
#   echo 'source <(graphload completion bash)' >> ~/.bashrc

_graphload_completion() {
    local cur prev commands
    commands="init import status query wipe completion"

    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Global flags
    if [[ ${cur} == -* ]] ; then
        COMPREPLY=( $(compgen -W "--version --config --json -q --no-color" -- ${cur}) )
        return 0
    fi

    # First argument: complete commands
    if [ $COMP_CWORD -eq 1 ]; then
        COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        return 0
    fi

    # Command-specific flag completion
    local cmd="${COMP_WORDS[1]}"
    case "${cmd}" in
        import)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--clear --batch-size --failure-tolerance --debug --metrics-addr" -- ${cur}) )
            else
                COMPREPLY=( $(compgen -f -X '!*.json' -- ${cur}) )
            fi
            ;;
        status)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--json --timeout" -- ${cur}) )
            fi
            ;;
        query)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--json --timeout --limit" -- ${cur}) )
            fi
            ;;
        wipe)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--yes --timeout" -- ${cur}) )
            fi
            ;;
        completion)
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            fi
            ;;
    esac
}

complete -F _graphload_completion graphload
`

// zshCompletionTemplate is the zsh completion script for graphload.
const zshCompletionTemplate = `#compdef graphload

# Zsh completion script for graphload
# Installation:
#   1. Ensure compinit is loaded (add to ~/.zshrc if not present):
#      autoload -U compinit; compinit
#   2. Save this script to a directory in your fpath:
#      graphload completion zsh > "${fpath[1]}/_graphload"
#   3. Reload completions:
#      rm -f ~/.zcompdump; compinit

_graphload() {
    local -a commands
    commands=(
        'init:Create .graphload/project.yaml configuration'
        'import:Import a report file into the graph'
        'status:Show graph counts and last import summary'
        'query:Execute a read-only Cypher query'
        'wipe:Delete the whole graph'
        'completion:Generate shell completion script'
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        '--config[Path to .graphload/project.yaml]:config file:_files -g "*.yaml"' \
        '--json[Output as JSON]' \
        '-q[Suppress progress and info output]' \
        '--no-color[Disable colored output]' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                import)
                    _arguments \
                        '--clear[Wipe the whole graph before importing]' \
                        '--batch-size[Records per transaction]:size:' \
                        '--failure-tolerance[Failed batches tolerated]:count:' \
                        '--debug[Enable debug logging]' \
                        '--metrics-addr[Prometheus metrics address]:address:' \
                        '1:report file:_files -g "*.json"'
                    ;;
                status)
                    _arguments \
                        '--json[Output as JSON]'
                    ;;
                query)
                    _arguments \
                        '--json[Output as JSON]' \
                        '--limit[Append LIMIT to the query]:limit:' \
                        '1:cypher query:'
                    ;;
                wipe)
                    _arguments \
                        '--yes[Confirm the wipe]'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_graphload
`

// fishCompletionTemplate is the fish completion script for graphload.
const fishCompletionTemplate = `# Fish completion script for graphload
# Installation:
#   1. Load completions for current session:
#      graphload completion fish | source
#   2. Install permanently:
#      graphload completion fish > ~/.config/fish/completions/graphload.fish

# Commands
complete -c graphload -f -n "__fish_use_subcommand" -a "init" -d "Create .graphload/project.yaml configuration"
complete -c graphload -f -n "__fish_use_subcommand" -a "import" -d "Import a report file into the graph"
complete -c graphload -f -n "__fish_use_subcommand" -a "status" -d "Show graph counts and last import summary"
complete -c graphload -f -n "__fish_use_subcommand" -a "query" -d "Execute a read-only Cypher query"
complete -c graphload -f -n "__fish_use_subcommand" -a "wipe" -d "Delete the whole graph (destructive!)"
complete -c graphload -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

# Global flags
complete -c graphload -l version -d "Show version and exit"
complete -c graphload -l config -d "Path to .graphload/project.yaml" -r
complete -c graphload -l json -d "Output as JSON"
complete -c graphload -s q -d "Suppress progress and info output"
complete -c graphload -l no-color -d "Disable colored output"

# import command flags
complete -c graphload -n "__fish_seen_subcommand_from import" -l clear -d "Wipe the whole graph before importing"
complete -c graphload -n "__fish_seen_subcommand_from import" -l batch-size -d "Records per transaction" -r
complete -c graphload -n "__fish_seen_subcommand_from import" -l failure-tolerance -d "Failed batches tolerated" -r
complete -c graphload -n "__fish_seen_subcommand_from import" -l debug -d "Enable debug logging"
complete -c graphload -n "__fish_seen_subcommand_from import" -l metrics-addr -d "Prometheus metrics address" -r

# status command flags
complete -c graphload -n "__fish_seen_subcommand_from status" -l json -d "Output as JSON"

# query command flags
complete -c graphload -n "__fish_seen_subcommand_from query" -l json -d "Output as JSON"
complete -c graphload -n "__fish_seen_subcommand_from query" -l limit -d "Append LIMIT to the query" -r

# wipe command flags
complete -c graphload -n "__fish_seen_subcommand_from wipe" -l yes -d "Confirm the wipe"

# completion command arguments
complete -c graphload -n "__fish_seen_subcommand_from completion" -f -a "bash" -d "Generate bash completion script"
complete -c graphload -n "__fish_seen_subcommand_from completion" -f -a "zsh" -d "Generate zsh completion script"
complete -c graphload -n "__fish_seen_subcommand_from completion" -f -a "fish" -d "Generate fish completion script"
`

// runCompletion executes the 'completion' CLI command, generating
// shell-specific completion scripts for bash, zsh, or fish.
//
// Examples:
//
//	graphload completion bash                          Output bash completion script
//	source <(graphload completion bash)                Load bash completions in current shell
//	graphload completion zsh > "${fpath[1]}/_graphload"
//	graphload completion fish | source
func runCompletion(args []string) {
	fs := flag.NewFlagSet("completion", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: graphload completion <shell>

Generate shell completion scripts for bash, zsh, or fish.

Arguments:
  shell    Shell type: bash, zsh, or fish (required)

Examples:
  source <(graphload completion bash)
  graphload completion fish > ~/.config/fish/completions/graphload.fish
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: shell argument required (bash, zsh, or fish)\n")
		fs.Usage()
		os.Exit(errors.ExitInput)
	}

	switch fs.Arg(0) {
	case "bash":
		fmt.Print(bashCompletionTemplate)
	case "zsh":
		fmt.Print(zshCompletionTemplate)
	case "fish":
		fmt.Print(fishCompletionTemplate)
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported shell %q (use bash, zsh, or fish)\n", fs.Arg(0))
		os.Exit(errors.ExitInput)
	}
}
