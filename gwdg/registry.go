package gwdg

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordian-engine/gmwdg/gassert"
)

// RegistryConfig is the configuration for [NewRegistry].
// Every field is optional.
type RegistryConfig struct {
	// Time source for feeds and checks.
	// Defaults to a [MonotonicClock] created by NewRegistry.
	Clock Clock

	// Mutual exclusion around structural changes and checks.
	// Defaults to a new [sync.Mutex].
	// Use [CriticalSection] to supply raw enter/exit hooks.
	CriticalSection sync.Locker

	// By default, Feed only stores atomic words in the fed node
	// and never enters the critical section.
	// SerializeFeed makes Feed enter the critical section as well,
	// so a feed can never interleave with a check's evaluation of that node.
	SerializeFeed bool

	// Assertion environment; only consulted in debug builds.
	AssertEnv gassert.Env
}

// Registry is a set of watchdog nodes threaded into an intrusive,
// singly linked list, newest first.
//
// Create a Registry with [NewRegistry],
// or declare a zero Registry and call [*Registry.Init] once
// before sharing it between goroutines.
// All methods are safe for concurrent use after that.
type Registry struct {
	initialized atomic.Bool

	// Set once before initialized is stored, read-only afterwards.
	clock         Clock
	mu            sync.Locker
	serializeFeed bool
	assertEnv     gassert.Env

	// Everything below is guarded by mu.

	head  *Node
	count int

	// Incremented by every Init, to invalidate cursors.
	epoch uint64

	last    CheckResult
	hasLast bool
}

// NewRegistry returns an empty, initialized registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	r := new(Registry)
	r.configure(cfg)
	r.initialized.Store(true)
	return r
}

func (r *Registry) configure(cfg RegistryConfig) {
	r.clock = cfg.Clock
	if r.clock == nil {
		r.clock = NewMonotonicClock()
	}

	r.mu = cfg.CriticalSection
	if r.mu == nil {
		r.mu = new(sync.Mutex)
	}

	r.serializeFeed = cfg.SerializeFeed
	r.assertEnv = cfg.AssertEnv
}

// ready reports ErrNotInitialized for a nil or never-initialized registry.
func (r *Registry) ready() error {
	if r == nil || !r.initialized.Load() {
		return ErrNotInitialized
	}
	return nil
}

// Init resets r to an empty registry.
//
// On a zero Registry, Init applies the default configuration
// and must complete before any other goroutine uses r.
//
// On an initialized Registry, Init detaches every registered node,
// so those nodes report not registered and may be added again,
// and any in-progress [Cursor] becomes exhausted.
// Init is not a no-op; callers must not treat it as idempotent.
// Init on a nil Registry does nothing.
func (r *Registry) Init() {
	if r == nil {
		return
	}
	if !r.initialized.Load() {
		r.configure(RegistryConfig{})
		r.initialized.Store(true)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Detach with a bounded walk so a corrupt list cannot hang Init.
	n := r.head
	for i := 0; n != nil && i < r.count; i++ {
		next := n.next
		n.next = nil
		n.reg.CompareAndSwap(r, nil)
		n = next
	}

	r.head = nil
	r.count = 0
	r.epoch++
	r.last = CheckResult{}
	r.hasLast = false
}

// Add registers n with the given timeout, in clock units.
//
// n is inserted at the head of the list in constant time,
// its last feed is set to the current time, and its expired flag is cleared.
// Its ID is not changed.
//
// Adding a node that is already linked into any registry
// returns [ErrAlreadyRegistered] and leaves everything unchanged.
func (r *Registry) Add(n *Node, timeout uint32) error {
	if err := r.ready(); err != nil {
		return err
	}
	if n == nil {
		return ErrNilNode
	}
	if timeout == 0 {
		return ErrInvalidTimeout
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !n.reg.CompareAndSwap(nil, r) {
		return ErrAlreadyRegistered
	}

	n.gen.Add(1)
	n.timeout.Store(timeout)
	n.touch(r.clock.Now())

	n.next = r.head
	r.head = n
	r.count++

	r.assertList()
	return nil
}

// Remove unlinks n from r.
// Afterwards n is not registered anywhere and may be added again.
func (r *Registry) Remove(n *Node) error {
	if err := r.ready(); err != nil {
		return err
	}
	if n == nil {
		return ErrNilNode
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n.reg.Load() != r {
		return ErrNotRegistered
	}

	var prev *Node
	cur := r.head
	for i := 0; cur != nil && i < r.count; i++ {
		if cur == n {
			if prev == nil {
				r.head = cur.next
			} else {
				prev.next = cur.next
			}
			n.next = nil
			n.reg.Store(nil)
			r.count--

			r.assertList()
			return nil
		}

		prev = cur
		cur = cur.next
	}

	// n claims to belong to r but is not reachable.
	return fmt.Errorf("%w: registered node not found in list", ErrCorruptList)
}

// AssignID sets the identifier reported for n by [*Registry.NextExpired].
// It may be called before or after n is added,
// and it does not enter the critical section.
func (r *Registry) AssignID(n *Node, id ID) error {
	if err := r.ready(); err != nil {
		return err
	}
	if n == nil {
		return ErrNilNode
	}

	n.id.Store(uint32(id))
	return nil
}

// Feed records that n's owner is alive:
// n's last feed becomes the current time and its expired flag is cleared.
//
// Only the owning task should feed a node.
// Unless [RegistryConfig.SerializeFeed] is set, Feed does not enter the critical section.
// A feed racing with a check may or may not be seen by that check.
func (r *Registry) Feed(n *Node) error {
	if err := r.ready(); err != nil {
		return err
	}
	if n == nil {
		return ErrNilNode
	}

	if r.serializeFeed {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	if n.reg.Load() != r {
		return ErrNotRegistered
	}

	n.touch(r.clock.Now())
	return nil
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	if r.ready() != nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Nodes returns the state of every registered node, in list order.
func (r *Registry) Nodes() ([]NodeState, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	out := make([]NodeState, 0, r.count)
	err := r.walk(func(n *Node) bool {
		last := n.LastFeed()
		out = append(out, NodeState{
			ID:       n.ID(),
			Timeout:  n.Timeout(),
			LastFeed: last,
			Elapsed:  now.Since(last),
			Expired:  n.Expired(),
		})
		return true
	})
	return out, err
}

// Verify walks the entire list and reports [ErrCorruptList]
// if it is cyclic, if any node belongs to another registry,
// or if the number of reachable nodes differs from [*Registry.Len].
func (r *Registry) Verify() error {
	if err := r.ready(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.verify()
}

// verify is Verify without locking.
func (r *Registry) verify() error {
	seen := make(map[*Node]struct{}, r.count)
	for n := r.head; n != nil; n = n.next {
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%w: cycle after %d nodes", ErrCorruptList, len(seen))
		}
		if n.reg.Load() != r {
			return fmt.Errorf("%w: node %d belongs to another registry", ErrCorruptList, n.ID())
		}
		seen[n] = struct{}{}
	}

	if len(seen) != r.count {
		return fmt.Errorf("%w: reached %d nodes, expected %d", ErrCorruptList, len(seen), r.count)
	}
	return nil
}

// walk calls fn on each node in list order until fn returns false.
// It never visits more than r.count nodes,
// and it stops with ErrCorruptList rather than follow a link
// into a node owned by another registry.
//
// The caller must hold the critical section.
func (r *Registry) walk(fn func(*Node) bool) error {
	seen := 0
	for n := r.head; n != nil; n = n.next {
		if seen == r.count {
			return fmt.Errorf("%w: more than %d nodes linked", ErrCorruptList, r.count)
		}
		if n.reg.Load() != r {
			return fmt.Errorf("%w: foreign node at position %d", ErrCorruptList, seen)
		}

		seen++
		if !fn(n) {
			return nil
		}
	}

	if seen != r.count {
		return fmt.Errorf("%w: reached %d nodes, expected %d", ErrCorruptList, seen, r.count)
	}
	return nil
}
