// Package cli holds the command dispatch and process plumbing shared by
// the reflectsonar binary.
package cli

import (
	"strings"
)

// Command is a top-level CLI command.
type Command string

const (
	CommandReport  Command = "report"
	CommandDetect  Command = "detect"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

// Commands lists the commands in help order.
func Commands() []Command {
	return []Command{CommandReport, CommandDetect, CommandVersion, CommandHelp}
}

// Description returns the one-line help text of c.
func (c Command) Description() string {
	switch c {
	case CommandReport:
		return "Fetch analysis results and write the PDF report (default)"
	case CommandDetect:
		return "Print the detected severity mode and per-category counts"
	case CommandVersion:
		return "Print the version"
	case CommandHelp:
		return "Show usage"
	}
	return ""
}

// Parse splits args (without the program name) into a command and its
// arguments. No arguments, or a first argument that is a flag, select
// CommandReport. ok is false for an unrecognized command name.
func Parse(args []string) (cmd Command, rest []string, ok bool) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		switch {
		case len(args) == 1 && (args[0] == "-version" || args[0] == "--version"):
			return CommandVersion, nil, true
		case len(args) == 1 && (args[0] == "-h" || args[0] == "--help" || args[0] == "-help"):
			return CommandHelp, nil, true
		}
		return CommandReport, args, true
	}
	name := Command(strings.ToLower(args[0]))
	for _, c := range Commands() {
		if c == name {
			return c, args[1:], true
		}
	}
	return "", args, false
}
