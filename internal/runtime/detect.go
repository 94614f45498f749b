// Package runtime detects which container engines are installed and
// resolves the orchestration command for the selected engine.
//
// Detection is a pure PATH probe: it answers "which of docker/podman is
// installed", not "is the daemon healthy" — daemon health is checked
// later by internal/engine.Ping. Compose resolution additionally runs
// "<engine> compose version" because the compose plugin is a separate
// install that a PATH probe alone cannot see.
package runtime

import (
	"context"
	"os/exec"

	"github.com/mmr-tortoise/laraup/internal/compose"
	"github.com/mmr-tortoise/laraup/internal/model"
)

// DefaultRuntime is the engine chosen when both are installed and the
// operator gives an invalid answer to the selection prompt.
const DefaultRuntime = model.RuntimeDocker

// Probes abstracts the two external checks detection relies on, so the
// selection rules can be tested without docker or podman installed.
type Probes struct {
	// LookPath reports whether a binary is on PATH (exec.LookPath).
	LookPath func(name string) (string, error)

	// RunVersion runs "<bin> <args...>" and reports whether it exits
	// zero. Used to probe the compose plugin subcommand.
	RunVersion func(ctx context.Context, bin string, args ...string) error
}

// DefaultProbes returns Probes backed by the real PATH and real child
// processes.
func DefaultProbes() Probes {
	return Probes{
		LookPath: exec.LookPath,
		RunVersion: func(ctx context.Context, bin string, args ...string) error {
			// #nosec G204 — bin and args are fixed engine names, not user input.
			return exec.CommandContext(ctx, bin, args...).Run()
		},
	}
}

// Detection is the outcome of probing for installed engines.
type Detection struct {
	// Available lists the installed engines in menu order:
	// podman first, docker second.
	Available []model.RuntimeKind
}

// Detect probes PATH for the supported engines.
//
// The order of Available matches the interactive menu the operator sees
// when both engines are installed (1: podman, 2: docker).
func Detect(p Probes) Detection {
	var d Detection
	for _, kind := range []model.RuntimeKind{model.RuntimePodman, model.RuntimeDocker} {
		if _, err := p.LookPath(kind.String()); err == nil {
			d.Available = append(d.Available, kind)
		}
	}
	return d
}

// None reports that no supported engine is installed. This is the one
// unconditionally fatal detection outcome.
func (d Detection) None() bool {
	return len(d.Available) == 0
}

// Single returns the engine and true when exactly one engine is
// installed, in which case no prompt is needed.
func (d Detection) Single() (model.RuntimeKind, bool) {
	if len(d.Available) == 1 {
		return d.Available[0], true
	}
	return "", false
}

// Has reports whether the given engine was detected.
func (d Detection) Has(kind model.RuntimeKind) bool {
	for _, k := range d.Available {
		if k == kind {
			return true
		}
	}
	return false
}

// ResolveCompose determines the orchestration command for the selected
// engine.
//
// The native plugin subcommand ("<engine> compose") is probed first;
// the legacy standalone binary ("<engine>-compose") is the fallback.
// If neither resolves the run cannot continue: a CLIError with
// ExitGeneralError is returned and the caller terminates.
func ResolveCompose(ctx context.Context, p Probes, kind model.RuntimeKind) (compose.Command, error) {
	// Plugin style: shipped as a subcommand of the engine binary, so the
	// only reliable probe is running it.
	if err := p.RunVersion(ctx, kind.String(), "compose", "version"); err == nil {
		return compose.PluginCommand(kind.String()), nil
	}

	// Legacy standalone binary (docker-compose v1, podman-compose).
	legacy := kind.String() + "-compose"
	if _, err := p.LookPath(legacy); err == nil {
		if err := p.RunVersion(ctx, legacy, "version"); err == nil {
			return compose.StandaloneCommand(legacy), nil
		}
	}

	return compose.Command{}, model.NewCLIError(
		model.ExitGeneralError,
		"no compose command found for "+kind.String()+
			" (tried '"+kind.String()+" compose' and '"+legacy+"')",
	)
}
