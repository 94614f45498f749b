// Package model defines the domain types shared across the laraup CLI.
//
// The tool owns no persistent state of its own: everything it touches lives
// either on the local filesystem (the Laravel source tree, the stack files)
// or inside the container engine (containers, volumes). The types here are
// therefore small, process-local value types describing one provisioning run.
package model

import (
	"fmt"
	"strings"
)

// RuntimeKind identifies the container engine used for a run.
// Exactly one kind is selected at startup and never changes afterwards.
type RuntimeKind string

const (
	// RuntimeDocker is the Docker engine, driven through the Docker CLI
	// and, where a daemon socket is reachable, the Docker Engine API.
	RuntimeDocker RuntimeKind = "docker"

	// RuntimePodman is the Podman engine, driven through the Podman CLI.
	RuntimePodman RuntimeKind = "podman"
)

// String returns the engine binary name, which doubles as the display name.
func (k RuntimeKind) String() string {
	return string(k)
}

// IsValid reports whether the RuntimeKind is one of the supported engines.
func (k RuntimeKind) IsValid() bool {
	switch k {
	case RuntimeDocker, RuntimePodman:
		return true
	default:
		return false
	}
}

// ParseRuntimeKind converts a string to a RuntimeKind.
// Returns an error if the string does not name a supported engine.
func ParseRuntimeKind(s string) (RuntimeKind, error) {
	kind := RuntimeKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.IsValid() {
		return "", fmt.Errorf("unsupported container runtime %q (valid: docker, podman)", s)
	}
	return kind, nil
}

// ContainerState is the coarse container status reported by the engine.
// Only StateRunning matters to the readiness polls; the remaining values
// are carried through for display in the status command.
type ContainerState string

const (
	// StateRunning is the target state of every readiness poll.
	StateRunning ContainerState = "running"

	// StateExited marks a container whose main process has stopped.
	StateExited ContainerState = "exited"

	// StateCreated marks a container that was created but never started.
	StateCreated ContainerState = "created"

	// StateRestarting marks a container in a restart loop.
	StateRestarting ContainerState = "restarting"

	// StateAbsent is laraup's own marker for "no container with that
	// name exists". The engines report absence as an error or an empty
	// listing; it is normalized to a state so callers can treat it
	// uniformly with "exists but not running".
	StateAbsent ContainerState = "absent"
)

// String returns the string representation of the ContainerState.
func (s ContainerState) String() string {
	return string(s)
}

// Running reports whether the state is the readiness target.
func (s ContainerState) Running() bool {
	return s == StateRunning
}

// ContainerInfo holds runtime information about one container in the stack.
// It is fetched from the engine on demand and never persisted.
type ContainerInfo struct {
	// Service is the compose service the container belongs to.
	Service string `json:"service"`

	// Name is the engine-level container name.
	Name string `json:"name"`

	// State is the engine-reported container state.
	State ContainerState `json:"state"`
}

// ExitCode defines the process exit codes of the laraup binary.
//
// The contract is deliberately coarse: every fatal condition (no runtime,
// no compose command, failed build, application container never reaching
// "running") exits 1, while the recoverable conditions (missing env
// template, database readiness timeout, key generation exhaustion) leave
// the exit code at 0. Scripts can therefore treat laraup as a plain
// succeeded/failed step.
type ExitCode int

const (
	// ExitSuccess indicates the run completed, possibly with warnings.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates a fatal stage failure.
	ExitGeneralError ExitCode = 1

	// ExitUserCancelled indicates an interactive prompt was aborted
	// (Ctrl-C in a menu). 130 matches the shell convention for SIGINT.
	ExitUserCancelled ExitCode = 130
)

// CLIError is an error that carries a process exit code. The CLI layer
// translates it into os.Exit without inspecting the message.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
