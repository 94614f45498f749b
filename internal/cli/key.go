// key.go implements "laraup key", which runs the application key
// generation step on its own. Useful after an "up" run that finished
// with the key-generation warning.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/laraup/internal/engine"
	"github.com/mmr-tortoise/laraup/internal/laravel"
	"github.com/mmr-tortoise/laraup/internal/model"
	"github.com/mmr-tortoise/laraup/internal/provision"
)

// NewKeyCommand creates the "key" cobra command.
func NewKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "key",
		Short: "Generate the Laravel application key",
		Long: `Run "php artisan key:generate" inside the application container,
with the same bounded retry policy the up command uses.

Exhausting the retries prints a manual-recovery hint and exits 0, the
same as during provisioning: the stack itself is still usable.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runKey(cmd.Context())
		},
	}
}

// runKey resolves the stack and runs the bounded key-generation retry.
func runKey(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	kind, err := selectRuntime(ctx, cfg, false)
	if err != nil {
		return err
	}

	runner, err := resolveCompose(ctx, cfg, kind)
	if err != nil {
		return err
	}

	eng := engine.New(kind)
	defer func() { _ = eng.Close() }()

	orch := provision.New(cfg, logger, eng, runner, laravel.NewInstaller(kind),
		laravel.DefaultVersion, isTerminalOutput() && !jsonOutput)

	err = orch.GenerateKey(ctx)

	// Exhausted retries keep the recoverable contract: hint, exit 0.
	var stageErr *model.StageError
	if errors.As(err, &stageErr) && !stageErr.Fatal() {
		logger.Warn(stageErr.Err.Error())
		if stageErr.Hint != "" {
			fmt.Println(stageErr.Hint)
		}
		return nil
	}
	return err
}
