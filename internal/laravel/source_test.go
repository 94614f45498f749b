package laravel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/laraup/internal/model"
)

// TestInstalled verifies that the artisan marker file decides whether a
// directory counts as an existing Laravel application.
func TestInstalled(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Installed(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, MarkerFile), []byte("#!/usr/bin/env php\n"), 0o755))
	assert.True(t, Installed(dir))
}

// TestInstaller_Install verifies the engine invocation built for the
// throwaway composer container: one-shot (--rm), the source directory
// bind-mounted as the working directory, and the constraint passed to
// create-project.
func TestInstaller_Install(t *testing.T) {
	dir := t.TempDir()
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)

	var captured []string
	installer := NewInstaller(model.RuntimePodman)
	installer.run = func(ctx context.Context, args ...string) (string, error) {
		captured = args
		return "", nil
	}

	require.NoError(t, installer.Install(context.Background(), dir, "^12.0"))

	assert.Equal(t, "podman", installer.Bin)
	assert.Equal(t, []string{
		"run", "--rm",
		"-v", abs + ":/app",
		"-w", "/app",
		"composer:lts",
		"composer", "create-project", "--prefer-dist",
		"laravel/laravel", ".", "^12.0",
	}, captured)
}

// TestInstaller_Install_CommandFailure verifies that a failed composer
// run surfaces the container output in the error.
func TestInstaller_Install_CommandFailure(t *testing.T) {
	installer := NewInstaller(model.RuntimeDocker)
	installer.run = func(ctx context.Context, args ...string) (string, error) {
		return "Could not find package laravel/laravel\n", errors.New("exit status 1")
	}

	err := installer.Install(context.Background(), t.TempDir(), "^99.0")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "Could not find package")
}

// TestFrameworkConstraint reads the laravel/framework requirement back
// from composer.json, including files with trailing commas that strict
// JSON would reject.
func TestFrameworkConstraint(t *testing.T) {
	dir := t.TempDir()
	manifest := `{
	"name": "laravel/laravel",
	"require": {
		"php": "^8.2",
		"laravel/framework": "^11.0",
	},
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.json"), []byte(manifest), 0o644))

	constraint, err := FrameworkConstraint(dir)
	require.NoError(t, err)
	assert.Equal(t, "^11.0", constraint)
}

// TestFrameworkConstraint_Missing covers the two failure modes: no
// composer.json at all, and one without a laravel/framework entry.
func TestFrameworkConstraint_Missing(t *testing.T) {
	_, err := FrameworkConstraint(t.TempDir())
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.json"), []byte(`{"require": {}}`), 0o644))
	_, err = FrameworkConstraint(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "laravel/framework")
}
