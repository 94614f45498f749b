package model

import "fmt"

// Severity classifies a stage failure. The shell script this tool replaces
// mixed the two behaviors ad hoc (some failures aborted, some were silently
// ignored); here every stage failure is explicit about which kind it is.
type Severity int

const (
	// SeverityFatal aborts the pipeline. The run exits non-zero.
	SeverityFatal Severity = iota

	// SeverityRecoverable is reported as a warning and the pipeline
	// continues. The run can still exit 0.
	SeverityRecoverable
)

// String returns a short label for the severity, used in log output.
func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityRecoverable:
		return "recoverable"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// StageError is the failure result of one provisioning stage.
// It pairs the underlying error with a severity and an optional hint
// giving the operator a manual recovery path.
type StageError struct {
	// Stage is the name of the stage that failed.
	Stage string

	// Severity decides whether the pipeline aborts or continues.
	Severity Severity

	// Hint is an optional manual-recovery instruction shown to the
	// operator when the failure is recoverable.
	Hint string

	// Err is the underlying failure.
	Err error
}

// Error satisfies the error interface.
func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("stage %s failed", e.Stage)
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error must abort the pipeline.
func (e *StageError) Fatal() bool {
	return e.Severity == SeverityFatal
}

// FatalStage wraps err as a fatal StageError.
func FatalStage(stage string, err error) *StageError {
	return &StageError{Stage: stage, Severity: SeverityFatal, Err: err}
}

// RecoverableStage wraps err as a recoverable StageError with a manual
// recovery hint.
func RecoverableStage(stage string, err error, hint string) *StageError {
	return &StageError{Stage: stage, Severity: SeverityRecoverable, Hint: hint, Err: err}
}
