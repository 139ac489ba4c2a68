package gwdg

import "sync/atomic"

// ID identifies a node when reporting expirations.
// The library never interprets it.
type ID uint32

// UnassignedID is the ID of a node that never had [*Registry.AssignID] called on it.
const UnassignedID ID = 0

// Node is a single watchdog, owned by the task whose liveness it tracks.
//
// The zero value is ready to be registered.
// A Node must stay at a fixed address while it is registered,
// and it must not be copied after first use.
//
// Fields that are read outside the registry's critical section
// are atomic words, so a concurrent feed is never observed half-written.
type Node struct {
	timeout  atomic.Uint32
	lastFeed atomic.Uint32
	id       atomic.Uint32
	expired  atomic.Bool

	// The registry this node is linked into, or nil.
	reg atomic.Pointer[Registry]

	// Incremented by every successful add.
	gen atomic.Uint64

	// Guarded by the critical section of reg.
	next *Node
}

// ID returns the node's identifier, or [UnassignedID].
func (n *Node) ID() ID {
	return ID(n.id.Load())
}

// Timeout returns the timeout set by the most recent [*Registry.Add].
func (n *Node) Timeout() uint32 {
	return n.timeout.Load()
}

// LastFeed returns the timestamp of the most recent feed or registration.
func (n *Node) LastFeed() Timestamp {
	return Timestamp(n.lastFeed.Load())
}

// Expired reports whether the most recent check flagged n
// and n has not been fed since.
func (n *Node) Expired() bool {
	return n.expired.Load()
}

// Registered reports whether n is currently linked into any registry.
func (n *Node) Registered() bool {
	return n.reg.Load() != nil
}

// touch records a feed at now.
// The timestamp is stored before the flag is cleared,
// so a check that sees the cleared flag also sees the new timestamp.
func (n *Node) touch(now Timestamp) {
	n.lastFeed.Store(uint32(now))
	n.expired.Store(false)
}

// NodeState is a point-in-time copy of a registered node, for reporting.
type NodeState struct {
	ID       ID
	Timeout  uint32
	LastFeed Timestamp

	// Clock units since LastFeed, as of when the state was captured.
	Elapsed uint32

	Expired bool
}
