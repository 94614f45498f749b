package compose

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/laraup/internal/model"
)

// Runner executes compose operations for one stack. It is bound to a
// compose file, a working directory, and a compose project name at
// construction time so individual operations only name what varies.
type Runner struct {
	cmd     Command
	dir     string
	file    string
	project string
}

// NewRunner creates a Runner for the given resolved command and stack.
//
// dir is the working directory for every invocation; compose resolves
// relative paths inside the YAML against it. file is the compose file
// path (relative to dir or absolute). project becomes
// COMPOSE_PROJECT_NAME, which both compose implementations use to
// namespace container, network, and volume names.
func NewRunner(cmd Command, dir, file, project string) *Runner {
	return &Runner{cmd: cmd, dir: dir, file: file, project: project}
}

// Command returns the resolved orchestration command, for display.
func (r *Runner) Command() Command {
	return r.cmd
}

// Up builds and starts all declared containers in detached mode
// ("compose up -d --build").
func (r *Runner) Up(ctx context.Context) error {
	_, err := r.run(ctx, "up", "-d", "--build")
	return err
}

// Stop stops the stack's containers without removing them.
func (r *Runner) Stop(ctx context.Context) error {
	_, err := r.run(ctx, "stop")
	return err
}

// Down stops and removes the stack's containers and networks.
// When removeVolumes is true the declared and anonymous volumes are
// removed as well, leaving no data behind.
func (r *Runner) Down(ctx context.Context, removeVolumes bool) error {
	args := []string{"down"}
	if removeVolumes {
		args = append(args, "-v")
	}
	_, err := r.run(ctx, args...)
	return err
}

// Logs returns the last tail lines of log output. With an empty service
// the logs of all services are returned.
func (r *Runner) Logs(ctx context.Context, service string, tail int) (string, error) {
	args := []string{"logs", "--tail", strconv.Itoa(tail)}
	if service != "" {
		args = append(args, service)
	}
	return r.run(ctx, args...)
}

// Exec runs a command inside a running service container.
// The -T flag disables TTY allocation; laraup only runs non-interactive
// commands (artisan) and must work when stdin is not a terminal.
func (r *Runner) Exec(ctx context.Context, service string, cmdArgs ...string) (string, error) {
	args := make([]string, 0, len(cmdArgs)+3)
	args = append(args, "exec", "-T", service)
	args = append(args, cmdArgs...)
	return r.run(ctx, args...)
}

// run executes one compose invocation as a child process and returns its
// combined output. The compose file and project name are injected into
// every call so operations cannot drift apart.
func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	full := r.cmd.Args(append([]string{"-f", r.file}, args...)...)

	// #nosec G204 — the binary and arguments are constructed internally,
	// never from untrusted input.
	cmd := exec.CommandContext(ctx, r.cmd.Bin, full...)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(), "COMPOSE_PROJECT_NAME="+r.project)

	// Combined output: compose interleaves progress on stderr and data on
	// stdout; for error reporting the interleaved form is what the
	// operator needs to see.
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), model.WrapCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("%s %s failed: %s", r.cmd, strings.Join(args, " "),
				strings.TrimSpace(string(output))),
			err,
		)
	}
	return string(output), nil
}
