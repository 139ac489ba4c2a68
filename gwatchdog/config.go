package gwatchdog

import (
	"errors"
	"math/rand/v2"
	"time"
)

// SupervisorConfig configures [NewSupervisor].
type SupervisorConfig struct {
	// Name of the supervisor, for logs and errors.
	Name string

	// The registry is checked every Interval + [-Jitter, +Jitter).
	// The jitter range is uniformly distributed; zero disables it.
	Interval, Jitter time.Duration

	// Kicked after every healthy check.
	// Never kicked while any node is expired.
	Kicker Kicker

	// Cancel the supervisor context on the first check
	// that reports expired nodes or fails outright.
	TerminateOnExpiry bool

	// Called from the supervisor goroutine with every report,
	// including those produced by [*Supervisor.CheckNow].
	// It must not block for long, and it must not call CheckNow.
	OnReport func(Report)
}

func (c SupervisorConfig) validate() error {
	var err error
	if c.Name == "" {
		err = errors.Join(err, errors.New("SupervisorConfig.Name must not be empty"))
	}

	if c.Interval <= 0 {
		err = errors.Join(err, errors.New("SupervisorConfig.Interval must be positive"))
	}

	if c.Jitter < 0 {
		err = errors.Join(err, errors.New("SupervisorConfig.Jitter must not be negative"))
	}

	if c.Jitter >= c.Interval && c.Interval > 0 {
		err = errors.Join(err, errors.New("SupervisorConfig.Jitter must be less than SupervisorConfig.Interval"))
	}

	return err
}

// delay returns the wait before the next scheduled check.
func (c SupervisorConfig) delay(rng *rand.Rand) time.Duration {
	if c.Jitter <= 0 {
		return c.Interval
	}

	j := rng.Int64N(int64(2*c.Jitter)) - int64(c.Jitter)
	return c.Interval + time.Duration(j)
}

// Kicker is notified after each healthy check.
type Kicker interface {
	Kick()
}

// KickerFunc adapts a plain function to [Kicker].
type KickerFunc func()

func (f KickerFunc) Kick() { f() }
