// logs.go implements "laraup logs", a thin wrapper over the resolved
// compose command's log retrieval.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// logsFlags holds the flag values for the logs command.
type logsFlags struct {
	tail int // --tail: number of trailing lines per container
}

// NewLogsCommand creates the "logs" cobra command.
func NewLogsCommand() *cobra.Command {
	flags := &logsFlags{}

	cmd := &cobra.Command{
		Use:   "logs [service]",
		Short: "Show recent log output from the stack",
		Long: `Show recent log output, either for the whole stack or one service.

Examples:
  laraup logs
  laraup logs app
  laraup logs db --tail 100`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			service := ""
			if len(args) == 1 {
				service = args[0]
			}
			return runLogs(cmd.Context(), service, flags)
		},
	}

	cmd.Flags().IntVar(&flags.tail, "tail", 50, "Number of trailing log lines per container")

	return cmd
}

// runLogs resolves the compose command and prints the requested tail.
func runLogs(ctx context.Context, service string, flags *logsFlags) error {
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

	out, err := runner.Logs(ctx, service, flags.tail)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
