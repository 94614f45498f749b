// Package compose wraps the multi-container orchestration command
// (docker compose, docker-compose, podman compose, or podman-compose)
// behind a single Runner type.
//
// Which concrete command is used is decided once at startup by
// internal/runtime.ResolveCompose and never changes for the rest of the
// run. The Runner shells out for every operation — compose has no stable
// programmatic API across the four supported invocation styles, so the
// CLI is the contract.
package compose

import "strings"

// Command describes how to invoke the resolved orchestration command.
//
// For the plugin style ("docker compose", "podman compose") Bin is the
// engine binary and Prefix carries the "compose" subcommand. For the
// legacy standalone binaries ("docker-compose", "podman-compose") Prefix
// is empty.
type Command struct {
	// Bin is the executable to run.
	Bin string

	// Prefix holds arguments inserted before every compose subcommand.
	Prefix []string
}

// PluginCommand returns the plugin-style invocation for an engine binary,
// e.g. PluginCommand("docker") renders as "docker compose ...".
func PluginCommand(bin string) Command {
	return Command{Bin: bin, Prefix: []string{"compose"}}
}

// StandaloneCommand returns the legacy standalone-binary invocation,
// e.g. StandaloneCommand("docker-compose").
func StandaloneCommand(bin string) Command {
	return Command{Bin: bin}
}

// IsZero reports whether the command is unresolved.
func (c Command) IsZero() bool {
	return c.Bin == ""
}

// Args builds the full argument list for one compose invocation.
func (c Command) Args(extra ...string) []string {
	args := make([]string, 0, len(c.Prefix)+len(extra))
	args = append(args, c.Prefix...)
	args = append(args, extra...)
	return args
}

// String renders the command the way an operator would type it,
// e.g. "docker compose" or "podman-compose".
func (c Command) String() string {
	if len(c.Prefix) == 0 {
		return c.Bin
	}
	return c.Bin + " " + strings.Join(c.Prefix, " ")
}
