// status.go implements "laraup status", which reports the state of the
// stack's containers.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/laraup/internal/composefile"
	"github.com/mmr-tortoise/laraup/internal/engine"
	"github.com/mmr-tortoise/laraup/internal/model"
)

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show container states for the stack",
		Long: `Show the state of every container declared in the stack's compose file.

Examples:
  laraup status
  laraup status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

// runStatus queries the engine for each declared service's container.
func runStatus(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stack, err := composefile.Load(filepath.Join(cfg.StackDir, cfg.ComposeFile))
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			"no stack found — run 'laraup up' first", err)
	}

	kind, err := selectRuntime(ctx, cfg, false)
	if err != nil {
		return err
	}

	eng := engine.New(kind)
	defer func() { _ = eng.Close() }()

	if err := eng.Ping(ctx); err != nil {
		return err
	}

	var infos []model.ContainerInfo
	for _, service := range stack.ServiceNames() {
		name := stack.ContainerName(cfg.Project, service)
		state, err := eng.ContainerState(ctx, name)
		if err != nil {
			return err
		}
		infos = append(infos, model.ContainerInfo{
			Service: service,
			Name:    name,
			State:   state,
		})
	}

	printStatus(infos)
	return nil
}

// printStatus outputs the container table in text or JSON format.
func printStatus(infos []model.ContainerInfo) {
	if IsJSONOutput() {
		type resultJSON struct {
			Containers []model.ContainerInfo `json:"containers"`
		}
		data, _ := json.MarshalIndent(resultJSON{Containers: infos}, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("%-12s %-24s %s\n", "SERVICE", "CONTAINER", "STATE")
	for _, info := range infos {
		fmt.Printf("%-12s %-24s %s\n", info.Service, info.Name, info.State)
	}
}
