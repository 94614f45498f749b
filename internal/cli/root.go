// Package cli implements the cobra commands of the laraup binary.
//
// Each subcommand (up, status, logs, key, stop, down) lives in its own
// file.
// This file defines the root command, the global flags, and the error
// handling that translates domain errors into process exit codes.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/laraup/internal/model"
	"github.com/mmr-tortoise/laraup/internal/prompt"
)

// Global flag variables bound to cobra persistent flags on the root
// command, inherited by every subcommand.
var (
	// jsonOutput switches command output to structured JSON.
	jsonOutput bool

	// verbose lowers the log level to debug.
	verbose bool
)

// version, commit, and date are injected from the main package, which
// receives them from GoReleaser ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// logger is the shared stderr logger. Commands log progress here;
// stdout is reserved for command output.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
})

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "laraup",
		Short: "Provision a local Laravel environment in containers",
		Long: `laraup stands up a local Laravel development environment inside
Docker or Podman containers: a FrankenPHP application container and a
MariaDB database container, declared by a compose file laraup scaffolds
for you.

The typical first run is just:

  laraup up`,

		// Errors are formatted by Execute; cobra's automatic usage and
		// error printing would duplicate that.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewUpCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewLogsCommand())
	rootCmd.AddCommand(NewKeyCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewDownCommand())

	return rootCmd
}

// Execute runs the root command and translates errors into exit codes.
// CLIErrors carry their own code; a cancelled prompt exits 130; any
// other error exits 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			printError("cancelled", nil)
			os.Exit(int(model.ExitUserCancelled))
		}

		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error in the format selected by --json.
// Errors go to stderr in both modes; stdout stays machine-consumable.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			errObj["error"].(map[string]interface{})["detail"] = underlying.Error()
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
