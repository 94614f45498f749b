package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies that a directory without a config file
// yields the documented defaults.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, cfg.Runtime)
	assert.Empty(t, cfg.Laravel)
	assert.Equal(t, "codesrc", cfg.AppDir)
	assert.Equal(t, "stack", cfg.StackDir)
	assert.Equal(t, "docker-compose.yml", cfg.ComposeFile)
	assert.Equal(t, "laraup", cfg.Project)
	assert.Equal(t, "app", cfg.Services.App)
	assert.Equal(t, "db", cfg.Services.DB)
	assert.Equal(t, 30, cfg.Poll.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 5*time.Second, cfg.Stabilize)
	assert.Equal(t, 5, cfg.Key.Attempts)
	assert.Equal(t, 3*time.Second, cfg.Key.Delay)
}

// TestLoad_ConfigFile verifies that laraup.yaml overrides the defaults
// without clobbering the unmentioned keys.
func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `runtime: podman
app_dir: src
poll:
  attempts: 10
  interval: 1s
services:
  db: mariadb
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "laraup.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "podman", cfg.Runtime)
	assert.Equal(t, "src", cfg.AppDir)
	assert.Equal(t, 10, cfg.Poll.Attempts)
	assert.Equal(t, 1*time.Second, cfg.Poll.Interval)
	assert.Equal(t, "mariadb", cfg.Services.DB)

	// Untouched keys keep their defaults.
	assert.Equal(t, "app", cfg.Services.App)
	assert.Equal(t, "stack", cfg.StackDir)
}

// TestLoad_MalformedFile verifies that a broken laraup.yaml is a real
// error, not silently ignored like a missing file.
func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "laraup.yaml"), []byte("poll: [broken\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

// TestLoad_Validation rejects configurations that would disable the
// polling and retry bounds.
func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero poll attempts", "poll:\n  attempts: 0\n"},
		{"negative poll interval", "poll:\n  interval: -1s\n"},
		{"zero key attempts", "key:\n  attempts: 0\n"},
		{"negative stabilize", "stabilize: -5s\n"},
		{"empty app service", "services:\n  app: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "laraup.yaml"), []byte(tt.content), 0o644))
			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

// TestPollConfig_Budget verifies the worst-case duration arithmetic
// reported in timeout messages.
func TestPollConfig_Budget(t *testing.T) {
	p := PollConfig{Attempts: 30, Interval: 2 * time.Second}
	assert.Equal(t, 60*time.Second, p.Budget())
}
