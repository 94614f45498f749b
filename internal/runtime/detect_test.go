package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/laraup/internal/model"
)

// fakeProbes builds Probes where only the named binaries exist on PATH
// and only the listed invocations succeed.
func fakeProbes(onPath []string, versionOK map[string]bool) Probes {
	return Probes{
		LookPath: func(name string) (string, error) {
			for _, p := range onPath {
				if p == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("executable file not found in $PATH")
		},
		RunVersion: func(ctx context.Context, bin string, args ...string) error {
			key := bin
			for _, a := range args {
				key += " " + a
			}
			if versionOK[key] {
				return nil
			}
			return errors.New("exit status 1")
		},
	}
}

// TestDetect verifies PATH probing for every install combination, and
// that Available preserves the menu order (podman first).
func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		onPath   []string
		expected []model.RuntimeKind
	}{
		{"both installed", []string{"docker", "podman"}, []model.RuntimeKind{model.RuntimePodman, model.RuntimeDocker}},
		{"docker only", []string{"docker"}, []model.RuntimeKind{model.RuntimeDocker}},
		{"podman only", []string{"podman"}, []model.RuntimeKind{model.RuntimePodman}},
		{"none", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Detect(fakeProbes(tt.onPath, nil))
			assert.Equal(t, tt.expected, d.Available)
		})
	}
}

// TestDetection_Single verifies that Single only answers when exactly
// one engine is installed.
func TestDetection_Single(t *testing.T) {
	one := Detect(fakeProbes([]string{"podman"}, nil))
	kind, ok := one.Single()
	assert.True(t, ok)
	assert.Equal(t, model.RuntimePodman, kind)

	both := Detect(fakeProbes([]string{"docker", "podman"}, nil))
	_, ok = both.Single()
	assert.False(t, ok)

	none := Detect(fakeProbes(nil, nil))
	_, ok = none.Single()
	assert.False(t, ok)
	assert.True(t, none.None())
}

// TestResolveCompose verifies the plugin-first, standalone-fallback
// resolution order.
func TestResolveCompose(t *testing.T) {
	ctx := context.Background()

	t.Run("plugin preferred", func(t *testing.T) {
		p := fakeProbes(
			[]string{"docker", "docker-compose"},
			map[string]bool{"docker compose version": true, "docker-compose version": true},
		)
		cmd, err := ResolveCompose(ctx, p, model.RuntimeDocker)
		require.NoError(t, err)
		assert.Equal(t, "docker compose", cmd.String())
	})

	t.Run("standalone fallback", func(t *testing.T) {
		p := fakeProbes(
			[]string{"podman", "podman-compose"},
			map[string]bool{"podman-compose version": true},
		)
		cmd, err := ResolveCompose(ctx, p, model.RuntimePodman)
		require.NoError(t, err)
		assert.Equal(t, "podman-compose", cmd.String())
	})

	t.Run("neither available", func(t *testing.T) {
		p := fakeProbes([]string{"docker"}, nil)
		_, err := ResolveCompose(ctx, p, model.RuntimeDocker)
		require.Error(t, err)

		var cliErr *model.CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, model.ExitGeneralError, cliErr.Code)
		assert.Contains(t, cliErr.Message, "no compose command found")
	})
}
