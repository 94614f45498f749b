// stop.go implements "laraup stop", which stops the stack's containers
// without removing them.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStopCommand creates the "stop" cobra command.
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the stack's containers without removing them",
		Long: `Stop the stack's containers while keeping them around.

Unlike "laraup down" the containers, networks, and volumes survive, so a
later "laraup up" is a plain restart instead of a rebuild.

Examples:
  laraup stop`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd.Context())
		},
	}
}

// runStop resolves the compose command and stops the stack.
func runStop(ctx context.Context) error {
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

	if err := runner.Stop(ctx); err != nil {
		return err
	}

	fmt.Println("Stack stopped. Run 'laraup up' to start it again.")
	return nil
}
