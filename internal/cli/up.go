// up.go implements "laraup up", the provisioning command.
//
// The command drives the full pipeline:
//  1. Resolve the container runtime (detect, prompt if ambiguous)
//  2. Resolve the compose command (plugin, then legacy binary)
//  3. Resolve the Laravel version (flag/config, menu otherwise)
//  4. Run the provisioning stages (scaffold, install, env, ports,
//     start, readiness polls, key generation)
//  5. Print the access summary
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/laraup/internal/composefile"
	"github.com/mmr-tortoise/laraup/internal/config"
	"github.com/mmr-tortoise/laraup/internal/engine"
	"github.com/mmr-tortoise/laraup/internal/laravel"
	"github.com/mmr-tortoise/laraup/internal/model"
	"github.com/mmr-tortoise/laraup/internal/prompt"
	"github.com/mmr-tortoise/laraup/internal/provision"
)

// upFlags holds the flag values for the up command.
type upFlags struct {
	runtime string // --runtime: pin docker or podman
	laravel string // --laravel: pin the composer version constraint
	dir     string // --dir: Laravel source directory
	yes     bool   // --yes: accept defaults, never prompt
}

// NewUpCommand creates the "up" cobra command.
func NewUpCommand() *cobra.Command {
	flags := &upFlags{}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision and start the Laravel environment",
		Long: `Provision a complete local Laravel environment.

The command scaffolds the stack files if they are missing, installs
Laravel through a throwaway composer container (skipped when the source
tree already exists), seeds the .env file, starts the containers, waits
for the database and application containers to come up, and generates
the application key.

Examples:
  laraup up
  laraup up --runtime podman
  laraup up --laravel ^11.0 --yes
  laraup up --dir src`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.runtime, "runtime", "", "Container runtime: docker or podman (default: detect)")
	cmd.Flags().StringVar(&flags.laravel, "laravel", "", "Laravel version constraint, e.g. ^12.0 (default: ask)")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "Laravel source directory (default: codesrc)")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Accept all defaults, never prompt")

	return cmd
}

// runUp is the orchestration function for the up command.
func runUp(ctx context.Context, flags *upFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flags override config file and environment.
	if flags.runtime != "" {
		cfg.Runtime = flags.runtime
	}
	if flags.laravel != "" {
		cfg.Laravel = flags.laravel
	}
	if flags.dir != "" {
		cfg.AppDir = flags.dir
	}

	// The prompter itself degrades to plain stdin prompts off a TTY, so
	// "interactive" here only means "prompting is allowed at all".
	kind, err := selectRuntime(ctx, cfg, !flags.yes)
	if err != nil {
		return err
	}
	logger.Info("using container runtime", "runtime", kind)

	runner, err := resolveCompose(ctx, cfg, kind)
	if err != nil {
		return err
	}
	logger.Info("using compose command", "command", runner.Command().String())

	version, err := selectVersion(ctx, cfg, flags.yes)
	if err != nil {
		return err
	}

	eng := engine.New(kind)
	defer func() { _ = eng.Close() }()

	if err := eng.Ping(ctx); err != nil {
		return err
	}

	inst := laravel.NewInstaller(kind)
	spin := isTerminalOutput() && !jsonOutput

	orch := provision.New(cfg, logger, eng, runner, inst, version, spin)
	warnings, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	printUpSummary(cfg, orch.Stack(), warnings)
	return nil
}

// selectVersion resolves the Laravel version to install.
//
// A pinned constraint wins. When the source tree already exists the
// install stage will skip anyway, so the menu is skipped too rather
// than asking a question whose answer would be ignored.
func selectVersion(ctx context.Context, cfg *config.Config, acceptDefaults bool) (laravel.Version, error) {
	if cfg.Laravel != "" {
		return laravel.VersionByConstraint(cfg.Laravel), nil
	}
	if laravel.Installed(cfg.AppDir) || acceptDefaults {
		return laravel.DefaultVersion, nil
	}

	version, fellBack, err := prompt.New().SelectVersion(ctx)
	if err != nil {
		return laravel.Version{}, err
	}
	if fellBack {
		logger.Warn("invalid choice, using default version", "version", version.Label)
	}
	return version, nil
}

// isTerminalOutput reports whether stderr is a terminal, which decides
// whether spinners are worth drawing.
func isTerminalOutput() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printUpSummary outputs the closing summary in text or JSON format.
func printUpSummary(cfg *config.Config, stack *composefile.Stack, warnings []*model.StageError) {
	appURL := resolveAppURL(cfg, stack)
	dbAddr := resolveDBAddr(cfg, stack)

	if IsJSONOutput() {
		printUpSummaryJSON(appURL, dbAddr, warnings)
		return
	}

	fmt.Println()
	fmt.Println("Setup complete!")
	fmt.Println()
	fmt.Printf("  Application: %s\n", appURL)
	if dbAddr != "" {
		fmt.Printf("  Database:    %s\n", dbAddr)
	}
	fmt.Println()
	fmt.Println("Useful commands:")
	fmt.Println("  laraup status    show container states")
	fmt.Println("  laraup logs      tail stack logs")
	fmt.Println("  laraup down      stop and remove the stack")

	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("Completed with %d warning(s); see messages above.\n", len(warnings))
	}
}

// printUpSummaryJSON outputs the closing summary as structured JSON.
func printUpSummaryJSON(appURL, dbAddr string, warnings []*model.StageError) {
	type warningJSON struct {
		Stage   string `json:"stage"`
		Message string `json:"message"`
		Hint    string `json:"hint,omitempty"`
	}
	type summaryJSON struct {
		AppURL   string        `json:"appUrl"`
		Database string        `json:"database,omitempty"`
		Warnings []warningJSON `json:"warnings"`
	}

	summary := summaryJSON{
		AppURL:   appURL,
		Database: dbAddr,
		Warnings: make([]warningJSON, 0, len(warnings)),
	}
	for _, w := range warnings {
		summary.Warnings = append(summary.Warnings, warningJSON{
			Stage:   w.Stage,
			Message: w.Err.Error(),
			Hint:    w.Hint,
		})
	}

	data, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(data))
}

// resolveAppURL derives the application URL from the seeded .env,
// falling back to the first published port of the app service.
func resolveAppURL(cfg *config.Config, stack *composefile.Stack) string {
	if env, err := laravel.ReadEnv(filepath.Join(cfg.AppDir, ".env")); err == nil {
		return laravel.AppURL(env)
	}
	if stack != nil {
		if ports := stack.HostPorts(cfg.Services.App); len(ports) > 0 {
			return fmt.Sprintf("http://localhost:%d", ports[0])
		}
	}
	return "http://localhost:8000"
}

// resolveDBAddr derives the host-side database address from the
// published ports of the db service. Empty when the database publishes
// no host port.
func resolveDBAddr(cfg *config.Config, stack *composefile.Stack) string {
	if stack == nil {
		return ""
	}
	ports := stack.HostPorts(cfg.Services.DB)
	if len(ports) == 0 {
		return ""
	}
	return fmt.Sprintf("localhost:%d", ports[0])
}
