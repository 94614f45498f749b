package provision

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// waitRunning polls the engine until the named container reports
// "running", up to cfg.Poll.Attempts checks spaced cfg.Poll.Interval
// apart. The interval is fixed, not a backoff: container startup does
// not get cheaper to check over time, and the bounded budget already
// caps the total wait.
func (o *Orchestrator) waitRunning(ctx context.Context, name string) error {
	stop := o.startSpinner(fmt.Sprintf(" waiting for container %s...", name))
	defer stop()

	for attempt := 1; attempt <= o.cfg.Poll.Attempts; attempt++ {
		// An errored check counts as "not running yet" and consumes one
		// attempt: the poll is best-effort and a transient engine hiccup
		// should not abort a wait the budget would have survived.
		state, err := o.engine.ContainerState(ctx, name)
		switch {
		case err != nil:
			o.logger.Debug("container state check failed",
				"container", name, "attempt", attempt, "of", o.cfg.Poll.Attempts, "err", err)
		case state.Running():
			return nil
		default:
			o.logger.Debug("container not running yet",
				"container", name, "state", state, "attempt", attempt, "of", o.cfg.Poll.Attempts)
		}

		// No pause after the final check; the budget is attempts checks,
		// not attempts sleeps.
		if attempt < o.cfg.Poll.Attempts {
			if err := o.sleep(ctx, o.cfg.Poll.Interval); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("container %q not running after %d checks over %s",
		name, o.cfg.Poll.Attempts, o.cfg.Poll.Budget())
}

// startSpinner shows a terminal spinner with the given suffix while a
// wait is in progress. Returns a stop function; on non-TTY runs both
// are no-ops and the debug log carries the progress instead.
func (o *Orchestrator) startSpinner(suffix string) func() {
	if !o.spin {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

// sleepCtx pauses for d, returning early with the context's error if it
// is cancelled first. There is no rollback on cancellation — partially
// started containers are left for the operator, matching the tool's
// no-cleanup contract — but blocking in a sleep past Ctrl-C would just
// be rude.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
