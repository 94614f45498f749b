package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/laraup/internal/composefile"
	"github.com/mmr-tortoise/laraup/internal/config"
	"github.com/mmr-tortoise/laraup/internal/laravel"
)

// sampleStack builds a parsed stack matching the default templates:
// app publishing 8000, db publishing 3306.
func sampleStack() *composefile.Stack {
	return &composefile.Stack{Services: map[string]composefile.Service{
		"app": {ContainerName: "laraup-app", Ports: []string{"8000:8000"}},
		"db":  {Image: "mariadb:11", Ports: []string{"3306:3306"}},
	}}
}

// TestResolveAppURL verifies the URL resolution order: seeded .env
// first, published app port second, hardcoded default last.
func TestResolveAppURL(t *testing.T) {
	cfg := &config.Config{
		AppDir:   t.TempDir(),
		Services: config.ServicesConfig{App: "app", DB: "db"},
	}

	t.Run("from env file", func(t *testing.T) {
		envPath := filepath.Join(cfg.AppDir, ".env")
		require.NoError(t, os.WriteFile(envPath, []byte("APP_URL=http://laravel.test\n"), 0o600))
		defer func() { _ = os.Remove(envPath) }()

		assert.Equal(t, "http://laravel.test", resolveAppURL(cfg, sampleStack()))
	})

	t.Run("from published port", func(t *testing.T) {
		stack := sampleStack()
		svc := stack.Services["app"]
		svc.Ports = []string{"8080:8000"}
		stack.Services["app"] = svc

		assert.Equal(t, "http://localhost:8080", resolveAppURL(cfg, stack))
	})

	t.Run("fallback", func(t *testing.T) {
		assert.Equal(t, "http://localhost:8000", resolveAppURL(cfg, nil))
	})
}

// TestResolveDBAddr verifies the database address comes from the db
// service's published port and is omitted when there is none.
func TestResolveDBAddr(t *testing.T) {
	cfg := &config.Config{Services: config.ServicesConfig{App: "app", DB: "db"}}

	assert.Equal(t, "localhost:3306", resolveDBAddr(cfg, sampleStack()))
	assert.Empty(t, resolveDBAddr(cfg, nil))

	stack := sampleStack()
	svc := stack.Services["db"]
	svc.Ports = nil
	stack.Services["db"] = svc
	assert.Empty(t, resolveDBAddr(cfg, stack))
}

// TestSelectVersion_NoPrompt covers the non-interactive resolutions: a
// pinned constraint wins, an existing source tree or --yes takes the
// default without asking.
func TestSelectVersion_NoPrompt(t *testing.T) {
	ctx := context.Background()

	t.Run("pinned constraint", func(t *testing.T) {
		cfg := &config.Config{Laravel: "^10.0", AppDir: t.TempDir()}
		version, err := selectVersion(ctx, cfg, false)
		require.NoError(t, err)
		assert.Equal(t, "^10.0", version.Constraint)
	})

	t.Run("installed tree skips menu", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, laravel.MarkerFile), []byte("#!/usr/bin/env php\n"), 0o755))

		cfg := &config.Config{AppDir: dir}
		version, err := selectVersion(ctx, cfg, false)
		require.NoError(t, err)
		assert.Equal(t, laravel.DefaultVersion, version)
	})

	t.Run("accept defaults", func(t *testing.T) {
		cfg := &config.Config{AppDir: t.TempDir()}
		version, err := selectVersion(ctx, cfg, true)
		require.NoError(t, err)
		assert.Equal(t, laravel.DefaultVersion, version)
	})
}
