// Package prompt implements the interactive choice points of a run:
// the container runtime menu (shown only when both engines are
// installed) and the Laravel version menu.
//
// Two frontends share the same resolution rules. On a terminal the
// menus are huh select forms, where an invalid answer cannot be typed.
// Off a terminal (pipes, CI) the menus degrade to plain numbered
// prompts read from stdin, preserving the documented fallback rules:
// empty input accepts the default, anything out of range falls back to
// the default with a warning.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/mmr-tortoise/laraup/internal/laravel"
	"github.com/mmr-tortoise/laraup/internal/model"
)

// ErrCancelled is returned when the operator aborts an interactive menu.
var ErrCancelled = errors.New("cancelled by user")

// DefaultRuntimeChoice is the engine substituted for empty or invalid
// answers to the runtime menu.
const DefaultRuntimeChoice = model.RuntimeDocker

// Prompter asks the operator the run's two questions.
type Prompter struct {
	// In is the input stream for the non-TTY frontend.
	In io.Reader

	// Out receives the menus of the non-TTY frontend.
	Out io.Writer

	// TTY selects the huh frontend when true.
	TTY bool

	// reader buffers In across questions. bufio reads ahead of the
	// consumed line, so a fresh reader per question would swallow the
	// answers to later menus on a piped stdin.
	reader *bufio.Reader
}

var (
	defaultOnce     sync.Once
	defaultPrompter *Prompter
)

// New returns the process-wide Prompter bound to stdin/stdout, choosing
// the frontend by whether stdin is a terminal. Every menu of a run must
// go through the same instance: stdin can only be buffered once, and a
// second Prompter would start reading after whatever the first one
// buffered ahead.
func New() *Prompter {
	defaultOnce.Do(func() {
		fd := os.Stdin.Fd()
		defaultPrompter = &Prompter{
			In:  os.Stdin,
			Out: os.Stdout,
			TTY: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		}
	})
	return defaultPrompter
}

// ResolveRuntimeChoice maps raw runtime-menu input to an engine.
//
// The menu is fixed: 1 is podman, 2 is docker. An empty answer accepts
// the default (docker) silently; anything else out of range falls back
// to the default, and the returned bool tells the caller to warn.
func ResolveRuntimeChoice(input string) (model.RuntimeKind, bool) {
	switch strings.TrimSpace(input) {
	case "1":
		return model.RuntimePodman, false
	case "2":
		return model.RuntimeDocker, false
	case "":
		return DefaultRuntimeChoice, false
	default:
		return DefaultRuntimeChoice, true
	}
}

// SelectRuntime asks which engine to use when both are installed.
// The returned bool reports whether an invalid answer was replaced by
// the default.
func (p *Prompter) SelectRuntime(ctx context.Context) (model.RuntimeKind, bool, error) {
	if p.TTY {
		kind, err := p.selectRuntimeForm(ctx)
		return kind, false, err
	}

	fmt.Fprintln(p.Out, "Both Podman and Docker are installed. Which runtime should be used?")
	fmt.Fprintln(p.Out, "  1) podman")
	fmt.Fprintln(p.Out, "  2) docker")
	fmt.Fprintf(p.Out, "Choice [2]: ")

	line, err := p.readLine()
	if err != nil {
		return "", false, err
	}
	kind, fellBack := ResolveRuntimeChoice(line)
	return kind, fellBack, nil
}

// selectRuntimeForm is the huh frontend of the runtime menu.
func (p *Prompter) selectRuntimeForm(ctx context.Context) (model.RuntimeKind, error) {
	choice := DefaultRuntimeChoice

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.RuntimeKind]().
				Title("Container runtime").
				Description("Both Podman and Docker are installed.").
				Options(
					huh.NewOption("podman", model.RuntimePodman),
					huh.NewOption("docker", model.RuntimeDocker),
				).
				Value(&choice),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", err
	}
	return choice, nil
}

// SelectVersion asks which Laravel version to install.
// The returned bool reports whether an invalid answer was replaced by
// the default.
func (p *Prompter) SelectVersion(ctx context.Context) (laravel.Version, bool, error) {
	if p.TTY {
		v, err := p.selectVersionForm(ctx)
		return v, false, err
	}

	fmt.Fprintln(p.Out, "Which Laravel version should be installed?")
	for _, v := range laravel.Versions {
		fmt.Fprintf(p.Out, "  %d) %s (%s)\n", v.Choice, v.Label, v.Constraint)
	}
	fmt.Fprintf(p.Out, "Choice [%d]: ", laravel.DefaultVersion.Choice)

	line, err := p.readLine()
	if err != nil {
		return laravel.Version{}, false, err
	}
	version, fellBack := laravel.ResolveChoice(line)
	return version, fellBack, nil
}

// selectVersionForm is the huh frontend of the version menu.
func (p *Prompter) selectVersionForm(ctx context.Context) (laravel.Version, error) {
	constraint := laravel.DefaultVersion.Constraint

	options := make([]huh.Option[string], 0, len(laravel.Versions))
	for _, v := range laravel.Versions {
		options = append(options, huh.NewOption(
			fmt.Sprintf("%s (%s)", v.Label, v.Constraint), v.Constraint))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Laravel version").
				Options(options...).
				Value(&constraint),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return laravel.Version{}, ErrCancelled
		}
		return laravel.Version{}, err
	}
	return laravel.VersionByConstraint(constraint), nil
}

// readLine reads one answer from the input stream. EOF with no input
// counts as an empty answer so piped invocations can accept defaults.
func (p *Prompter) readLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
