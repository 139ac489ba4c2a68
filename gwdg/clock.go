package gwdg

import "time"

// Timestamp is a reading from a [Clock].
// It counts milliseconds (or whatever unit the clock uses)
// and wraps to zero after 2^32-1.
type Timestamp uint32

// Since reports how many clock units passed between earlier and t.
//
// The subtraction is modulo 2^32, so a counter that wrapped once
// between the two readings still produces the true distance.
// The result is only meaningful if that distance is below 2^32 units.
func (t Timestamp) Since(earlier Timestamp) uint32 {
	return uint32(t - earlier)
}

// Clock is the registry's time source.
// Implementations must be safe for concurrent use,
// since feeding goroutines read the clock without holding the critical section.
type Clock interface {
	Now() Timestamp
}

// ClockFunc adapts a plain function to the [Clock] interface.
type ClockFunc func() Timestamp

func (f ClockFunc) Now() Timestamp {
	return f()
}

// MonotonicClock reports the milliseconds elapsed since it was created,
// truncated to 32 bits. It wraps roughly every 49.7 days.
type MonotonicClock struct {
	origin time.Time
}

// NewMonotonicClock returns a clock reading zero now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{origin: time.Now()}
}

func (c *MonotonicClock) Now() Timestamp {
	// The conversion keeps the low 32 bits, which is the intended wrap.
	return Timestamp(uint32(time.Since(c.origin).Milliseconds()))
}
