// Package gwdgtest contains helpers for testing code that uses package gwdg.
package gwdgtest

import (
	"sync/atomic"

	"github.com/gordian-engine/gmwdg/gwdg"
)

// ManualClock is a [gwdg.Clock] that only moves when told to.
// It is safe for concurrent use.
type ManualClock struct {
	now atomic.Uint32
}

// NewManualClock returns a clock reading start.
func NewManualClock(start gwdg.Timestamp) *ManualClock {
	c := new(ManualClock)
	c.now.Store(uint32(start))
	return c
}

func (c *ManualClock) Now() gwdg.Timestamp {
	return gwdg.Timestamp(c.now.Load())
}

// Set moves the clock to t, which may be behind the current reading
// to simulate a counter wraparound.
func (c *ManualClock) Set(t gwdg.Timestamp) {
	c.now.Store(uint32(t))
}

// Advance moves the clock forward by d units, wrapping past 2^32-1,
// and returns the new reading.
func (c *ManualClock) Advance(d uint32) gwdg.Timestamp {
	return gwdg.Timestamp(c.now.Add(d))
}
