package gwdg

import "iter"

type cursorState uint8

const (
	cursorBeforeStart cursorState = iota
	cursorInProgress
	cursorExhausted
)

// Cursor tracks a position for [*Registry.NextExpired].
// The zero value is positioned before the first node.
type Cursor struct {
	state cursorState

	// Last node reported, while in progress,
	// and its registration generation at that time.
	node *Node
	gen  uint64

	// Registry epoch at the start of iteration.
	epoch uint64
}

// Reset positions c before the first node again.
func (c *Cursor) Reset() {
	*c = Cursor{}
}

// Exhausted reports whether c has reached the end of the list.
func (c *Cursor) Exhausted() bool {
	return c.state == cursorExhausted
}

func (c *Cursor) finish() {
	c.state = cursorExhausted
	c.node = nil
}

// NextExpired advances c to the next node currently flagged as expired
// and returns that node's ID.
//
// A zero cursor starts at the head of the list;
// otherwise the scan resumes after the node c last reported.
// Nodes that are not flagged are skipped within the same call.
// When the end of the list is reached, NextExpired returns false
// and c stays exhausted until [*Cursor.Reset].
//
// Each call enters the critical section on its own,
// so the list may change between calls.
// Nodes added after iteration began are not visited.
// If the node c points at was removed (even if it was added again since),
// or r was re-initialized,
// the cursor is exhausted instead of following a stale link.
//
// NextExpired is meant to be called after [*Registry.Check] reports [StatusExpired].
// It reads live flags, so a node fed after the check is no longer reported;
// use [*Registry.Expired] to enumerate exactly what the check saw.
func (r *Registry) NextExpired(c *Cursor) (ID, bool) {
	if c == nil || r.ready() != nil {
		return UnassignedID, false
	}
	if c.state == cursorExhausted {
		return UnassignedID, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n *Node
	switch c.state {
	case cursorBeforeStart:
		c.epoch = r.epoch
		n = r.head
	case cursorInProgress:
		if c.epoch != r.epoch || c.node.reg.Load() != r || c.node.gen.Load() != c.gen {
			c.finish()
			return UnassignedID, false
		}
		n = c.node.next
	}

	for steps := 0; n != nil && steps < r.count; steps++ {
		if n.reg.Load() != r {
			break
		}
		if n.Expired() {
			c.state = cursorInProgress
			c.node = n
			c.gen = n.gen.Load()
			return n.ID(), true
		}
		n = n.next
	}

	c.finish()
	return UnassignedID, false
}

// Expired returns the IDs of the nodes flagged by the most recent [*Registry.Check],
// in list order.
//
// The sequence reads a snapshot taken when Expired is called,
// so it never touches the registry and is safe to abandon midway.
// It is not restartable: ranging over it again resumes after the last ID yielded,
// and a fully consumed sequence yields nothing more.
func (r *Registry) Expired() iter.Seq[ID] {
	res, _ := r.LastCheck()
	ids := res.ExpiredIDs
	next := 0

	return func(yield func(ID) bool) {
		for next < len(ids) {
			id := ids[next]
			next++
			if !yield(id) {
				return
			}
		}
	}
}
