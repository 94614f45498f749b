package laravel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/laraup/internal/model"
)

// MarkerFile is the file whose presence marks an already-materialized
// Laravel application. artisan sits at the root of every Laravel
// project, so its existence makes the install step idempotent: a second
// run skips reinstallation entirely.
const MarkerFile = "artisan"

// composerImage is the throwaway container image used to run composer.
// The lts tag tracks the current composer 2 LTS line.
const composerImage = "composer:lts"

// Installed reports whether dir already contains a materialized
// application.
func Installed(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, MarkerFile))
	return err == nil
}

// Installer materializes a Laravel source tree by running composer
// create-project inside a throwaway container.
type Installer struct {
	// Bin is the engine binary ("docker" or "podman").
	Bin string

	// run executes the engine binary; swappable in tests.
	run func(ctx context.Context, args ...string) (string, error)
}

// NewInstaller creates an Installer for the selected engine.
func NewInstaller(kind model.RuntimeKind) *Installer {
	inst := &Installer{Bin: kind.String()}
	inst.run = func(ctx context.Context, args ...string) (string, error) {
		// #nosec G204 — the binary is one of the two fixed engines and
		// the arguments are built below from validated inputs.
		out, err := exec.CommandContext(ctx, inst.Bin, args...).CombinedOutput()
		return string(out), err
	}
	return inst
}

// Install runs "composer create-project laravel/laravel . <constraint>"
// inside a one-shot container, bind-mounting dir as the project
// directory. The container is removed afterwards (--rm); only the files
// it wrote into the mount survive.
func (i *Installer) Install(ctx context.Context, dir, constraint string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve source directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}

	args := []string{
		"run", "--rm",
		"-v", abs + ":/app",
		"-w", "/app",
		composerImage,
		"composer", "create-project", "--prefer-dist",
		"laravel/laravel", ".", constraint,
	}

	if out, err := i.run(ctx, args...); err != nil {
		return model.WrapCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("composer create-project failed: %s", strings.TrimSpace(out)),
			err,
		)
	}
	return nil
}

// composerManifest is the subset of composer.json laraup reads back.
type composerManifest struct {
	Require map[string]string `json:"require"`
}

// FrameworkConstraint reads the laravel/framework constraint from the
// composer.json in dir. Used to tell the operator which version an
// existing tree was installed with when the install step is skipped.
//
// composer.json is parsed through jsonc so trailing commas or comments
// left by hand edits do not break the read.
func FrameworkConstraint(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "composer.json"))
	if err != nil {
		return "", fmt.Errorf("failed to read composer.json: %w", err)
	}

	var manifest composerManifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &manifest); err != nil {
		return "", fmt.Errorf("failed to parse composer.json: %w", err)
	}

	constraint, ok := manifest.Require["laravel/framework"]
	if !ok {
		return "", fmt.Errorf("composer.json does not require laravel/framework")
	}
	return constraint, nil
}
