package engine

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/laraup/internal/model"
)

// defaultPingTimeout bounds how long a Ping waits for the Docker daemon.
// 5 seconds covers Docker Desktop on macOS, which responds slower than
// native Linux Docker.
const defaultPingTimeout = 5 * time.Second

// sdkEngine inspects containers through the Docker Engine SDK.
type sdkEngine struct {
	inner *client.Client
}

// newSDKEngine creates a Docker SDK client with automatic socket
// detection.
//
// The detection strategy, in priority order:
//  1. DOCKER_HOST environment variable (used as-is if set)
//  2. Platform-specific default socket paths:
//     - Linux: /var/run/docker.sock
//     - macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//     - Windows: npipe:////./pipe/docker_engine
func newSDKEngine() (Engine, error) {
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		return newSDKEngineWithHost(host)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, err
	}
	return newSDKEngineWithHost(host)
}

// newSDKEngineWithHost creates a Docker SDK client for a known host
// connection string. API version negotiation keeps the client compatible
// across daemon versions without pinning an API version.
func newSDKEngineWithHost(host string) (Engine, error) {
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client for host %q: %w", host, err)
	}
	return &sdkEngine{inner: c}, nil
}

// detectDockerHost determines the Docker socket path for the current
// platform. Socket existence is checked rather than attempting a
// connection; Ping handles connectivity verification later.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
		})

	case "darwin":
		// Docker Desktop creates a symlink at the standard path; newer
		// versions place the socket under ~/.docker/run instead.
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return detectUnixSocket([]string{
				"/var/run/docker.sock",
			})
		}
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
			homeDir + "/.docker/run/docker.sock",
		})

	case "windows":
		// Named pipes cannot be probed with os.Stat; a brief dial is the
		// only existence check.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err == nil {
			conn.Close()
			return "npipe://" + pipePath, nil
		}
		return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the Docker host URI for the first socket path
// that exists, checked in the given order.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v", paths)
}

// Kind returns model.RuntimeDocker; the SDK engine only exists for Docker.
func (e *sdkEngine) Kind() model.RuntimeKind {
	return model.RuntimeDocker
}

// Ping verifies the Docker daemon is reachable within defaultPingTimeout.
func (e *sdkEngine) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := e.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(
			model.ExitGeneralError,
			"Docker daemon is not responding — is Docker running?",
			err,
		)
	}
	return nil
}

// ContainerState looks up a container by exact name and returns its state.
//
// The Docker API name filter matches substrings, so the listing is
// re-checked against the exact name. Container names from the API carry
// a leading "/" that is an artifact of the API, not part of the name.
func (e *sdkEngine) ContainerState(ctx context.Context, name string) (model.ContainerState, error) {
	containers, err := e.inner.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("name", name),
		),
	})
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitGeneralError,
			"failed to list Docker containers",
			err,
		)
	}

	for _, c := range containers {
		for _, n := range c.Names {
			if strings.TrimPrefix(n, "/") == name {
				return model.ContainerState(c.State), nil
			}
		}
	}
	return model.StateAbsent, nil
}

// Close releases the SDK client's resources. Safe to call multiple times.
func (e *sdkEngine) Close() error {
	if e.inner != nil {
		return e.inner.Close()
	}
	return nil
}
