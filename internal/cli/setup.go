// setup.go holds the plumbing every subcommand shares: loading the
// configuration and resolving the container runtime and compose command.
package cli

import (
	"context"

	"github.com/mmr-tortoise/laraup/internal/compose"
	"github.com/mmr-tortoise/laraup/internal/config"
	"github.com/mmr-tortoise/laraup/internal/model"
	"github.com/mmr-tortoise/laraup/internal/prompt"
	"github.com/mmr-tortoise/laraup/internal/runtime"
)

// selectRuntime resolves the container engine for a run.
//
// A pinned runtime (config file, LARAUP_RUNTIME, or --runtime) wins.
// Otherwise the installed engines decide: none is fatal, exactly one is
// auto-selected, and both either prompts (interactive commands) or
// falls back to the default engine (non-interactive commands like
// status, where a menu would be noise).
func selectRuntime(ctx context.Context, cfg *config.Config, interactive bool) (model.RuntimeKind, error) {
	if cfg.Runtime != "" {
		return model.ParseRuntimeKind(cfg.Runtime)
	}

	det := runtime.Detect(runtime.DefaultProbes())
	if det.None() {
		return "", model.NewCLIError(model.ExitGeneralError,
			"no container runtime found: install docker or podman first")
	}
	if kind, ok := det.Single(); ok {
		logger.Debug("container runtime detected", "runtime", kind)
		return kind, nil
	}

	if !interactive {
		logger.Debug("both runtimes installed, using default", "runtime", runtime.DefaultRuntime)
		return runtime.DefaultRuntime, nil
	}

	kind, fellBack, err := prompt.New().SelectRuntime(ctx)
	if err != nil {
		return "", err
	}
	if fellBack {
		logger.Warn("invalid choice, using default runtime", "runtime", kind)
	}
	return kind, nil
}

// resolveCompose resolves the orchestration command for the selected
// engine and builds the stack's compose Runner.
func resolveCompose(ctx context.Context, cfg *config.Config, kind model.RuntimeKind) (*compose.Runner, error) {
	cmd, err := runtime.ResolveCompose(ctx, runtime.DefaultProbes(), kind)
	if err != nil {
		return nil, err
	}
	logger.Debug("compose command resolved", "command", cmd.String())

	return compose.NewRunner(cmd, cfg.StackDir, cfg.ComposeFile, cfg.Project), nil
}

// loadConfig loads the run configuration from the working directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}
	return cfg, nil
}
