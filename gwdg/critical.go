package gwdg

// CriticalSection adapts a pair of enter and exit hooks into a [sync.Locker],
// for callers whose mutual exclusion primitive is not a Go mutex
// (e.g. masking interrupts, or an RTOS scheduler lock reached through cgo).
//
// The registry always releases what it acquires on every return path,
// but it does not guard against recursive entry;
// whether Enter may nest is up to the hooks.
type CriticalSection struct {
	Enter func()
	Exit  func()
}

func (cs CriticalSection) Lock() {
	cs.Enter()
}

func (cs CriticalSection) Unlock() {
	cs.Exit()
}
