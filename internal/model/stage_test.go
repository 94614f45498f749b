package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSeverity_String verifies the log labels for both severities and
// for an out-of-range value.
func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "fatal", SeverityFatal.String())
	assert.Equal(t, "recoverable", SeverityRecoverable.String())
	assert.Equal(t, "severity(7)", Severity(7).String())
}

// TestStageError_Fatal checks that the constructors set the severity
// that Fatal reports.
func TestStageError_Fatal(t *testing.T) {
	fatal := FatalStage("start", errors.New("compose up failed"))
	assert.True(t, fatal.Fatal())
	assert.Equal(t, "start", fatal.Stage)
	assert.Empty(t, fatal.Hint)

	recoverable := RecoverableStage("db-ready", errors.New("timeout"), "check the db logs")
	assert.False(t, recoverable.Fatal())
	assert.Equal(t, "check the db logs", recoverable.Hint)
}

// TestStageError_Error verifies message formatting with and without an
// underlying error.
func TestStageError_Error(t *testing.T) {
	withErr := FatalStage("start", errors.New("exit status 1"))
	assert.Equal(t, "stage start: exit status 1", withErr.Error())

	bare := &StageError{Stage: "env"}
	assert.Equal(t, "stage env failed", bare.Error())
}

// TestStageError_Unwrap verifies that errors.As extracts a StageError
// from a wrapped chain, which is how the pipeline classifies failures.
func TestStageError_Unwrap(t *testing.T) {
	underlying := errors.New("no template")
	stageErr := RecoverableStage("env", underlying, "copy .env.example yourself")

	assert.True(t, errors.Is(stageErr, underlying))

	var extracted *StageError
	require.True(t, errors.As(error(stageErr), &extracted))
	assert.Equal(t, SeverityRecoverable, extracted.Severity)
}
