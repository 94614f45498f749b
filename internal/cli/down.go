// down.go implements "laraup down", which stops and removes the stack.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// downFlags holds the flag values for the down command.
type downFlags struct {
	volumes bool // --volumes: also remove named and anonymous volumes
}

// NewDownCommand creates the "down" cobra command.
func NewDownCommand() *cobra.Command {
	flags := &downFlags{}

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop and remove the stack's containers",
		Long: `Stop and remove the stack's containers and networks.

The Laravel source tree and the stack files are left untouched, so a
later "laraup up" recreates the same environment. With --volumes the
database volume is removed as well, discarding all data.

Examples:
  laraup down
  laraup down --volumes`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDown(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.volumes, "volumes", false, "Also remove volumes (discards database data)")

	return cmd
}

// runDown resolves the compose command and tears the stack down.
func runDown(ctx context.Context, flags *downFlags) error {
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

	if err := runner.Down(ctx, flags.volumes); err != nil {
		return err
	}

	if flags.volumes {
		fmt.Println("Stack removed, including volumes.")
	} else {
		fmt.Println("Stack removed. Volumes were kept; use --volumes to discard them.")
	}
	return nil
}
