package gwdg

import "sync/atomic"

var defaultRegistry atomic.Pointer[Registry]

// Init installs a fresh process-wide default registry
// with a [MonotonicClock] and a [sync.Mutex] critical section.
// It must be called before any other package-level function,
// and it must not run concurrently with them.
//
// Calling Init again detaches every node from the previous default registry.
func Init() {
	InitWith(RegistryConfig{})
}

// InitWith is like [Init] but uses cfg for the new default registry,
// e.g. to supply an external time source or critical section.
func InitWith(cfg RegistryConfig) {
	if old := defaultRegistry.Swap(NewRegistry(cfg)); old != nil {
		old.Init()
	}
}

// Default returns the default registry, or nil before [Init].
// A nil *Registry reports [ErrNotInitialized] from every method.
func Default() *Registry {
	return defaultRegistry.Load()
}

// Add calls [*Registry.Add] on the default registry.
func Add(n *Node, timeoutMs uint32) error {
	return Default().Add(n, timeoutMs)
}

// Remove calls [*Registry.Remove] on the default registry.
func Remove(n *Node) error {
	return Default().Remove(n)
}

// AssignID calls [*Registry.AssignID] on the default registry.
func AssignID(n *Node, id ID) error {
	return Default().AssignID(n, id)
}

// Feed calls [*Registry.Feed] on the default registry.
func Feed(n *Node) error {
	return Default().Feed(n)
}

// Check calls [*Registry.Check] on the default registry.
func Check() (Status, error) {
	return Default().Check()
}

// NextExpired calls [*Registry.NextExpired] on the default registry.
func NextExpired(c *Cursor) (ID, bool) {
	return Default().NextExpired(c)
}
