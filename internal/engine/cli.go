package engine

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/laraup/internal/model"
)

// cliEngine inspects containers by shelling out to the engine binary.
// It serves Podman, and Docker installs where no daemon socket was found.
type cliEngine struct {
	kind model.RuntimeKind

	// run executes the engine binary and returns its combined output.
	// Swappable in tests so state parsing can be exercised without an
	// installed engine.
	run func(ctx context.Context, args ...string) (string, error)
}

// newCLIEngine creates a CLI-backed engine for the given runtime.
func newCLIEngine(kind model.RuntimeKind) Engine {
	e := &cliEngine{kind: kind}
	e.run = func(ctx context.Context, args ...string) (string, error) {
		// #nosec G204 — the binary name is one of the two fixed engines.
		out, err := exec.CommandContext(ctx, kind.String(), args...).CombinedOutput()
		return string(out), err
	}
	return e
}

// Kind returns the engine this instance is bound to.
func (e *cliEngine) Kind() model.RuntimeKind {
	return e.kind
}

// Ping runs "<engine> info", which fails when the daemon (Docker) or the
// podman machine/service is not available.
func (e *cliEngine) Ping(ctx context.Context) error {
	if out, err := e.run(ctx, "info", "--format", "{{.ID}}"); err != nil {
		return model.WrapCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("%s is not responding: %s", e.kind, strings.TrimSpace(out)),
			err,
		)
	}
	return nil
}

// ContainerState inspects the named container's state.
//
// "inspect --format {{.State.Status}}" works identically for docker and
// podman. A non-zero exit is treated as "no such container": both
// engines use it for absence, and a daemon-level failure will already
// have surfaced through Ping before any poll starts.
func (e *cliEngine) ContainerState(ctx context.Context, name string) (model.ContainerState, error) {
	out, err := e.run(ctx, "inspect", "--format", "{{.State.Status}}", name)
	if err != nil {
		return model.StateAbsent, nil
	}

	state := strings.TrimSpace(out)
	if state == "" {
		return model.StateAbsent, nil
	}
	return model.ContainerState(state), nil
}

// Close is a no-op; the CLI engine holds no resources between calls.
func (e *cliEngine) Close() error {
	return nil
}
