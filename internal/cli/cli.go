// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for parley.

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdKeys
	CmdSessions
	CmdProviders
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet    bool
	JSON     bool   // Output in JSON format where supported
	Provider string // Override default provider
	Model    string // Override default model

	// Streaming override. StreamSet distinguishes "not given" from
	// an explicit --stream / --no-stream.
	Stream    bool
	StreamSet bool

	// Command-specific
	Query      string // ask: the question
	System     string // ask/chat: system prompt override
	Subcommand string // keys/sessions/config: first positional
	SessionID  string // sessions: id or 1-based index
	Format     string // sessions export: md or json
	Confirm    bool   // sessions rm: required confirmation
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `parley - terminal chat for hosted LLM providers

Parley is a terminal client for chatting with hosted language models.

It provides:
  - A full-screen TUI with streaming replies and markdown rendering
  - One-shot and line-mode REPL chat for scripting and quick questions
  - Five providers out of the box: Google, OpenAI, Anthropic, Groq, OpenRouter
  - Local conversation history in SQLite

Usage:
  parley                       Start TUI (default)
  parley ask "question"        Ask a single question
  parley chat                  Interactive chat (line mode)
  parley providers             List providers, models, and key status
  parley keys [list|set|rm]    Manage API keys
  parley sessions [subcommand] Saved conversation management
  parley config [show|get|set] Configuration
  parley version               Show version information
  parley help                  Show this help

Ask Command:
  parley ask "What is Go?"               One-shot question
  parley ask -p Anthropic "question"     Pick a provider
  parley ask -m gemini-3-flash "..."     Pick a model
  parley ask --system "Be terse" "..."   Override the system prompt
  parley ask --stream "question"         Print tokens as they arrive

Chat Commands (inside the REPL):
  /provider [name]   Show providers or switch
  /model [name]      Show models or switch
  /stream [on|off]   Show or toggle streaming
  /system [prompt]   Show or set the system prompt
  /clear             Clear the conversation
  /history [query]   List saved conversations
  /status            Show session status
  /help              Show commands
  /quit              Exit

Keys Commands:
  parley keys                      List providers and key status
  parley keys set anthropic        Prompt for a key (input is hidden)
  parley keys set GROQ_API_KEY     Set by environment key name
  parley keys rm openai            Remove a stored key

Sessions Commands:
  parley sessions                       List saved conversations
  parley sessions list deploy           List conversations matching "deploy"
  parley sessions show 1                Show a conversation transcript
  parley sessions export 1 --format md  Export a transcript (md|json)
  parley sessions rm 1 --confirm        Delete a conversation

Config Commands:
  parley config show                    Show current configuration
  parley config get ui.theme            Read one value
  parley config set chat.stream false   Write one value
  parley config path                    Print the config file location

Global Flags:
  -p, --provider NAME  Override the default provider (case-insensitive)
  -m, --model NAME     Override the default model
  --stream             Force streaming output on
  --no-stream          Force streaming output off
  -q, --quiet          Suppress status lines, print only the reply
  --json               Machine-readable output where supported

Environment:
  PARLEY_CONFIG_DIR    Override the config directory (default ~/.parley)
  PARLEY_PROVIDER, PARLEY_MODEL, PARLEY_SYSTEM_PROMPT, PARLEY_NO_STREAM,
  PARLEY_THEME         Per-invocation config overrides
  GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, GROQ_API_KEY,
  OPENROUTER_API_KEY   Provider credentials; values stored with
                       "parley keys set" take precedence

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("parley version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	// No remaining args: default to the TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "keys", "key":
		parseKeysArgs(&parsedArgs, remaining)
		return CmdKeys, parsedArgs

	case "sessions", "session":
		parseSessionsArgs(&parsedArgs, remaining)
		return CmdSessions, parsedArgs

	case "providers", "provider", "models":
		return CmdProviders, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: restore it and fall back to the TUI, same
		// as running with no arguments.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdTUI, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--json":
			parsedArgs.JSON = true
		case "--stream":
			parsedArgs.Stream = true
			parsedArgs.StreamSet = true
		case "--no-stream":
			parsedArgs.Stream = false
			parsedArgs.StreamSet = true
		case "-p", "--provider":
			if i+1 < len(args) {
				i++
				parsedArgs.Provider = args[i]
			}
		case "-m", "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--provider=") {
				parsedArgs.Provider = strings.TrimPrefix(arg, "--provider=")
			} else if strings.HasPrefix(arg, "--model=") {
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
// Everything that is not a known flag joins the query.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "--system":
			if i+1 < len(remaining) {
				i++
				args.System = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--system=") {
				args.System = strings.TrimPrefix(arg, "--system=")
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "--system":
			if i+1 < len(remaining) {
				i++
				args.System = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--system=") {
				args.System = strings.TrimPrefix(arg, "--system=")
			}
		}
	}
}

// parseKeysArgs parses keys command specific arguments.
// Shape: keys [list|set|rm] [provider-or-key]
func parseKeysArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.Subcommand = parser.Subcommand()
	args.ConfigKey = parser.Positional(1)
}

// parseSessionsArgs parses sessions command specific arguments.
// Shape: sessions [list|show|export|rm] [id] [--format md|json] [--confirm]
func parseSessionsArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.Subcommand = parser.Subcommand()
	args.SessionID = parser.Positional(1)
	// "sessions list release planning" searches on the whole tail.
	args.Query = JoinPositionalArgs(parser, 1)
	args.Format = parser.FlagOrDefault("format", "md")
	args.Confirm = parser.BoolFlag("confirm")
	if parser.BoolFlag("json") {
		args.JSON = true
	}
}

// parseConfigArgs parses config command specific arguments.
// Shape: config [show|get|set|path] [key] [value]
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
	}
	if len(remaining) > 1 {
		args.ConfigKey = remaining[1]
	}
	if len(remaining) > 2 {
		args.ConfigVal = strings.Join(remaining[2:], " ")
	}
}

// =============================================================================
// VERSION AND HELP HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) error {
	if args.JSON {
		return outputJSON(map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
		})
	}
	PrintVersion()
	return nil
}

// HandleHelp handles the "help" command.
func HandleHelp() error {
	PrintUsage()
	return nil
}
