// Package provision implements the provisioning pipeline behind
// "laraup up".
//
// The pipeline is an explicit ordered list of fallible stages. Every
// stage returns an error; a *model.StageError with recoverable severity
// is reported as a warning and the pipeline continues, anything else
// aborts the run. This replaces the ad hoc branching of the shell
// script laraup descends from, where a failed "compose up" and a
// database readiness timeout were silently ignored — here both are
// explicit (the former fatal, the latter a loud warning).
package provision

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mmr-tortoise/laraup/internal/compose"
	"github.com/mmr-tortoise/laraup/internal/composefile"
	"github.com/mmr-tortoise/laraup/internal/config"
	"github.com/mmr-tortoise/laraup/internal/laravel"
	"github.com/mmr-tortoise/laraup/internal/model"
	"github.com/mmr-tortoise/laraup/internal/port"
	"github.com/mmr-tortoise/laraup/internal/scaffold"
)

// logTailLines is how many log lines are dumped when the application
// container never reaches "running".
const logTailLines = 50

// composeClient is the slice of compose.Runner the pipeline needs.
type composeClient interface {
	Up(ctx context.Context) error
	Logs(ctx context.Context, service string, tail int) (string, error)
	Exec(ctx context.Context, service string, cmdArgs ...string) (string, error)
	Command() compose.Command
}

// stateProber is the slice of engine.Engine the pipeline needs.
type stateProber interface {
	ContainerState(ctx context.Context, name string) (model.ContainerState, error)
}

// installer materializes the Laravel source tree.
type installer interface {
	Install(ctx context.Context, dir, constraint string) error
}

// Stage is one step of the pipeline.
type Stage struct {
	// Name identifies the stage in logs and StageErrors.
	Name string

	// Run executes the stage.
	Run func(ctx context.Context) error
}

// Orchestrator drives the provisioning pipeline for one run.
type Orchestrator struct {
	cfg       *config.Config
	logger    *log.Logger
	engine    stateProber
	comp      composeClient
	installer installer
	version   laravel.Version

	// spin enables the terminal spinner during waits.
	spin bool

	// sleep pauses for d or until ctx is cancelled. Swappable in tests
	// so retry/poll bounds can be verified without real delays.
	sleep func(ctx context.Context, d time.Duration) error

	// stack is populated by the scaffold stage and consumed by the
	// later ones for container names and published ports.
	stack *composefile.Stack
}

// New creates an Orchestrator.
func New(cfg *config.Config, logger *log.Logger, eng stateProber, comp composeClient, inst installer, version laravel.Version, spin bool) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		logger:    logger,
		engine:    eng,
		comp:      comp,
		installer: inst,
		version:   version,
		spin:      spin,
		sleep:     sleepCtx,
	}
}

// Stack returns the parsed compose file, available after Run.
func (o *Orchestrator) Stack() *composefile.Stack {
	return o.stack
}

// Stages returns the pipeline in execution order.
func (o *Orchestrator) Stages() []Stage {
	return []Stage{
		{Name: "scaffold", Run: o.runScaffold},
		{Name: "install", Run: o.runInstall},
		{Name: "env", Run: o.runSeedEnv},
		{Name: "ports", Run: o.runPortPreflight},
		{Name: "start", Run: o.runComposeUp},
		{Name: "db-ready", Run: o.runWaitDB},
		{Name: "app-ready", Run: o.runWaitApp},
		{Name: "app-key", Run: o.GenerateKey},
	}
}

// Run executes the pipeline. Recoverable stage failures are logged and
// collected; the first fatal failure aborts and is returned. The
// returned warnings let the caller repeat the manual-recovery hints in
// the closing summary.
func (o *Orchestrator) Run(ctx context.Context) ([]*model.StageError, error) {
	var warnings []*model.StageError

	for _, stage := range o.Stages() {
		o.logger.Debug("running stage", "stage", stage.Name)

		err := stage.Run(ctx)
		if err == nil {
			continue
		}

		var stageErr *model.StageError
		if errors.As(err, &stageErr) && !stageErr.Fatal() {
			o.logger.Warn(stageErr.Err.Error(), "stage", stageErr.Stage)
			if stageErr.Hint != "" {
				o.logger.Warn(stageErr.Hint)
			}
			warnings = append(warnings, stageErr)
			continue
		}
		return warnings, err
	}
	return warnings, nil
}

// runScaffold materializes missing stack files and parses the compose
// file for container names and ports.
func (o *Orchestrator) runScaffold(ctx context.Context) error {
	written, err := scaffold.Materialize(o.cfg.StackDir, scaffold.Data{
		AppMount: appMountPath(o.cfg.StackDir, o.cfg.AppDir),
	})
	if err != nil {
		return model.FatalStage("scaffold", err)
	}
	for _, name := range written {
		o.logger.Info("created stack file", "file", filepath.Join(o.cfg.StackDir, name))
	}

	stack, err := composefile.Load(filepath.Join(o.cfg.StackDir, o.cfg.ComposeFile))
	if err != nil {
		return model.FatalStage("scaffold", err)
	}
	for _, svc := range []string{o.cfg.Services.App, o.cfg.Services.DB} {
		if !stack.HasService(svc) {
			return model.FatalStage("scaffold", fmt.Errorf(
				"compose file does not declare service %q; adjust services.* in %s.yaml",
				svc, config.ConfigFileName))
		}
	}
	o.stack = stack

	// A pre-existing compose file keeps whatever mount it declares; when
	// that disagrees with app_dir the container would serve a different
	// tree than the one being installed into.
	if mount, ok := stack.BindSource(o.cfg.Services.App, "/app"); ok {
		if !samePath(resolveMount(o.cfg.StackDir, mount), o.cfg.AppDir) {
			return model.RecoverableStage("scaffold",
				fmt.Errorf("compose file mounts %q into the application container, but the source tree is %q",
					mount, o.cfg.AppDir),
				fmt.Sprintf("align the %s volume in %s with app_dir, or set app_dir to match",
					o.cfg.Services.App, filepath.Join(o.cfg.StackDir, o.cfg.ComposeFile)))
		}
	}
	return nil
}

// appMountPath renders the source tree path the way the compose file
// mounts it: relative to the stack directory when possible, absolute
// otherwise.
func appMountPath(stackDir, appDir string) string {
	absStack, err := filepath.Abs(stackDir)
	if err != nil {
		return filepath.ToSlash(appDir)
	}
	absApp, err := filepath.Abs(appDir)
	if err != nil {
		return filepath.ToSlash(appDir)
	}
	if rel, err := filepath.Rel(absStack, absApp); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(absApp)
}

// resolveMount resolves a compose bind-mount host path the way compose
// does: relative paths are taken against the compose file's directory.
func resolveMount(stackDir, mount string) string {
	if filepath.IsAbs(mount) {
		return mount
	}
	return filepath.Join(stackDir, mount)
}

// samePath reports whether two paths name the same location once both
// are made absolute and cleaned.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// runInstall materializes the Laravel sources unless the marker file
// (artisan) shows a previous run already did.
func (o *Orchestrator) runInstall(ctx context.Context) error {
	if laravel.Installed(o.cfg.AppDir) {
		if constraint, err := laravel.FrameworkConstraint(o.cfg.AppDir); err == nil {
			o.logger.Info("Laravel already installed, skipping",
				"dir", o.cfg.AppDir, "framework", constraint)
		} else {
			o.logger.Info("Laravel already installed, skipping", "dir", o.cfg.AppDir)
		}
		return nil
	}

	o.logger.Info("installing Laravel", "constraint", o.version.Constraint, "dir", o.cfg.AppDir)
	if err := o.installer.Install(ctx, o.cfg.AppDir, o.version.Constraint); err != nil {
		return model.FatalStage("install", err)
	}
	return nil
}

// runSeedEnv copies a .env into the source tree from the first existing
// template. A missing template is recoverable: the stack still starts,
// the operator just has to create .env by hand.
func (o *Orchestrator) runSeedEnv(ctx context.Context) error {
	envPath := filepath.Join(o.cfg.AppDir, ".env")
	seededFrom, err := laravel.SeedEnv(envPath,
		filepath.Join(o.cfg.AppDir, ".env.example"),
		filepath.Join(o.cfg.StackDir, ".env.example"),
	)
	switch {
	case errors.Is(err, laravel.ErrNoTemplate):
		return model.RecoverableStage("env", err,
			fmt.Sprintf("create %s manually before using the application", envPath))
	case err != nil:
		return model.FatalStage("env", err)
	case seededFrom != "":
		o.logger.Info("seeded environment file", "from", seededFrom, "to", envPath)
	}
	return nil
}

// runPortPreflight warns about published host ports that are already
// bound. Recoverable: the operator may know the conflicting process is
// about to exit, and compose will fail loudly if not.
func (o *Orchestrator) runPortPreflight(ctx context.Context) error {
	busy := port.NewScanner().Busy(o.stack.AllHostPorts())
	if len(busy) == 0 {
		return nil
	}
	return model.RecoverableStage("ports",
		fmt.Errorf("host port(s) already in use: %s", joinInts(busy)),
		"stop the conflicting processes or change the published ports in the compose file")
}

// runComposeUp builds and starts the stack. Unlike the shell script
// this tool replaces, a failure here is fatal rather than silently
// ignored — polling a stack that never started only hides the cause.
func (o *Orchestrator) runComposeUp(ctx context.Context) error {
	o.logger.Info("building and starting containers (this may take a while on first run)")
	if err := o.comp.Up(ctx); err != nil {
		return model.FatalStage("start", err)
	}
	return nil
}

// runWaitDB polls the database container. A timeout is recoverable —
// migrations and seeding are not part of this pipeline, so a slow
// database does not block the remaining steps — but it is reported
// loudly instead of being swallowed.
func (o *Orchestrator) runWaitDB(ctx context.Context) error {
	name := o.stack.ContainerName(o.cfg.Project, o.cfg.Services.DB)
	if err := o.waitRunning(ctx, name); err != nil {
		return model.RecoverableStage("db-ready", err,
			fmt.Sprintf("check the database logs: see 'laraup logs %s'", o.cfg.Services.DB))
	}
	o.logger.Info("database container is running", "container", name)
	return o.stabilize(ctx)
}

// runWaitApp polls the application container. A timeout here is fatal:
// without the application container there is nothing to hand over to
// the operator. The recent log tail is attached to the error.
func (o *Orchestrator) runWaitApp(ctx context.Context) error {
	name := o.stack.ContainerName(o.cfg.Project, o.cfg.Services.App)
	if err := o.waitRunning(ctx, name); err != nil {
		msg := fmt.Sprintf("application container %q did not reach running state", name)
		if tail, logErr := o.comp.Logs(ctx, o.cfg.Services.App, logTailLines); logErr == nil && tail != "" {
			msg += "\n\nRecent logs:\n" + strings.TrimRight(tail, "\n")
		}
		return model.FatalStage("app-ready",
			model.WrapCLIError(model.ExitGeneralError, msg, err))
	}
	o.logger.Info("application container is running", "container", name)
	return o.stabilize(ctx)
}

// GenerateKey runs "php artisan key:generate" inside the application
// container, retrying a bounded number of times. Exhausting the budget
// is recoverable: the stack is up, the operator can generate the key by
// hand.
func (o *Orchestrator) GenerateKey(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= o.cfg.Key.Attempts; attempt++ {
		_, err := o.comp.Exec(ctx, o.cfg.Services.App, "php", "artisan", "key:generate", "--force")
		if err == nil {
			o.logger.Info("application key generated")
			return nil
		}
		lastErr = err
		o.logger.Debug("key generation failed", "attempt", attempt, "of", o.cfg.Key.Attempts, "err", err)

		if attempt < o.cfg.Key.Attempts {
			if sleepErr := o.sleep(ctx, o.cfg.Key.Delay); sleepErr != nil {
				return model.FatalStage("app-key", sleepErr)
			}
		}
	}

	// The hint must reproduce the Runner's real invocation: without the
	// project name compose would derive one from the directory and find
	// no containers.
	return model.RecoverableStage("app-key",
		fmt.Errorf("key generation failed after %d attempts: %w", o.cfg.Key.Attempts, lastErr),
		fmt.Sprintf("run it manually: cd %s && COMPOSE_PROJECT_NAME=%s %s -f %s exec %s php artisan key:generate",
			o.cfg.StackDir, o.cfg.Project, o.comp.Command(), o.cfg.ComposeFile, o.cfg.Services.App))
}

// stabilize pauses for the configured fixed delay after a container is
// confirmed running. The running state only says the process started,
// not that it is serving; the pause papers over that gap the same way
// the original setup flow did.
func (o *Orchestrator) stabilize(ctx context.Context) error {
	if o.cfg.Stabilize <= 0 {
		return nil
	}
	o.logger.Debug("stabilization pause", "duration", o.cfg.Stabilize)
	return o.sleep(ctx, o.cfg.Stabilize)
}

// joinInts renders a port list for error messages.
func joinInts(ports []int) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}
