package gwatchdog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gordian-engine/gmwdg/gwdg"
)

// IsTermination reports whether ctx was canceled by a [Supervisor],
// either because nodes expired, because a check failed,
// or through [*Supervisor.Terminate].
func IsTermination(ctx context.Context) bool {
	e := context.Cause(ctx)
	if e == nil {
		return false
	}

	var ee ExpiredError
	if errors.As(e, &ee) {
		return true
	}

	var ce CheckError
	if errors.As(e, &ce) {
		return true
	}

	var ft ForcedTerminationError
	return errors.As(e, &ft)
}

// ExpiredError is the cancellation cause
// when a check finds expired nodes
// and [SupervisorConfig.TerminateOnExpiry] is set.
type ExpiredError struct {
	Supervisor string
	IDs        []gwdg.ID
}

func (e ExpiredError) Error() string {
	return fmt.Sprintf("%s: watchdog nodes expired: %v", e.Supervisor, e.IDs)
}

// CheckError is the cancellation cause
// when the registry itself fails a check, for instance with [gwdg.ErrCorruptList],
// and [SupervisorConfig.TerminateOnExpiry] is set.
type CheckError struct {
	Supervisor string
	Err        error
}

func (e CheckError) Error() string {
	return e.Supervisor + ": watchdog check failed: " + e.Err.Error()
}

func (e CheckError) Unwrap() error {
	return e.Err
}

// ForcedTerminationError indicates that [*Supervisor.Terminate] was called.
type ForcedTerminationError struct {
	Reason string
}

func (e ForcedTerminationError) Error() string {
	return "Watchdog forced termination: " + e.Reason
}
