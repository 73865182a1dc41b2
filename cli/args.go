package cli

import (
	"strings"
)

const chdirFlagPrefix = "-chdir="

// ArgsInfo describes the terraform invocation hidden inside the raw
// argument list forwarded to the wrapper.
type ArgsInfo struct {
	// Command is the first positional argument, e.g. "apply". Empty when the
	// user only passed flags (or nothing at all).
	Command string

	// ChdirDir is the value of a -chdir= global flag, if present.
	ChdirDir string

	// VersionQuery is true when the invocation asks for the tool version,
	// either via the "version" command or a -version/--version flag.
	VersionQuery bool
}

// ParseArgs inspects the raw CLI arguments the same way terraform itself
// does: global flags come before the first positional argument, and
// everything after the command belongs to the command.
func ParseArgs(args []string) ArgsInfo {
	info := ArgsInfo{}

	for _, arg := range args {
		if strings.HasPrefix(arg, chdirFlagPrefix) {
			info.ChdirDir = strings.TrimPrefix(arg, chdirFlagPrefix)
			continue
		}

		if arg == "-version" || arg == "--version" {
			info.VersionQuery = true
			continue
		}

		if strings.HasPrefix(arg, "-") {
			continue
		}

		info.Command = arg
		break
	}

	if info.Command == "version" {
		info.VersionQuery = true
	}

	return info
}
