// Package engine provides container status inspection for the two
// supported container engines.
//
// Two implementations exist behind the Engine interface:
//
//   - sdkEngine talks to the Docker daemon through the Docker Engine SDK,
//     with automatic socket detection. Used when the selected runtime is
//     Docker and a daemon socket is reachable.
//   - cliEngine shells out to the engine binary. Used for Podman, and as
//     the fallback for Docker installs without a reachable socket
//     (e.g. remote contexts the SDK detection does not cover).
//
// The interface is deliberately narrow: the provisioning pipeline only
// ever asks "is this named container running yet". Everything that
// mutates containers goes through internal/compose instead.
package engine

import (
	"context"

	"github.com/mmr-tortoise/laraup/internal/model"
)

// Engine inspects container state for one container runtime.
type Engine interface {
	// Kind returns the engine this instance is bound to.
	Kind() model.RuntimeKind

	// Ping verifies the engine is reachable and responsive.
	Ping(ctx context.Context) error

	// ContainerState returns the state of the container with the given
	// exact name. A missing container is reported as model.StateAbsent,
	// not as an error; errors are reserved for the engine itself being
	// unreachable or misbehaving.
	ContainerState(ctx context.Context, name string) (model.ContainerState, error)

	// Close releases any resources held by the engine client.
	Close() error
}

// New returns the best available Engine for the selected runtime.
//
// For Docker the SDK client is preferred and the CLI is the fallback;
// for Podman the CLI is used directly. Podman's Docker-compatible API
// socket is not assumed to be enabled, and the CLI behaves identically
// for the status queries laraup needs.
func New(kind model.RuntimeKind) Engine {
	if kind == model.RuntimeDocker {
		if sdk, err := newSDKEngine(); err == nil {
			return sdk
		}
	}
	return newCLIEngine(kind)
}
