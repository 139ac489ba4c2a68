package gwdg

import "errors"

var (
	// ErrNotInitialized is returned by every operation on a registry
	// that was neither created with [NewRegistry] nor passed through [*Registry.Init],
	// and by the package-level functions before [Init] is called.
	ErrNotInitialized = errors.New("watchdog registry is not initialized")

	ErrNilNode = errors.New("watchdog node is nil")

	// ErrInvalidTimeout is returned when adding a node with a zero timeout.
	ErrInvalidTimeout = errors.New("watchdog timeout must be positive")

	// ErrAlreadyRegistered is returned when adding a node
	// that is already linked into this or another registry.
	// The registry is left untouched.
	ErrAlreadyRegistered = errors.New("watchdog node is already registered")

	// ErrNotRegistered is returned when feeding or removing a node
	// that is not linked into the registry.
	ErrNotRegistered = errors.New("watchdog node is not registered with this registry")

	// ErrCorruptList indicates the registry's list no longer matches its node count,
	// or contains a node that belongs elsewhere.
	// The operation that detected it stopped walking the list at that point.
	ErrCorruptList = errors.New("watchdog registry list is corrupt")
)
