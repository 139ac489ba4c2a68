package gwdg

import "slices"

//go:generate go run golang.org/x/tools/cmd/stringer -type Status -trimprefix Status

// Status is the aggregate result of [*Registry.Check].
// Its integer values are stable: 0 is healthy, anything else is not.
type Status int

const (
	StatusHealthy Status = iota
	StatusExpired
)

// MarshalText renders s by name, so JSON reports read "Healthy" or "Expired".
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult records the outcome of a single [*Registry.Check].
type CheckResult struct {
	// Clock reading used for every node in the check.
	At Timestamp

	Status Status

	// Number of registered nodes at the time of the check.
	Nodes int

	// Identifiers of the nodes flagged as expired, in list order.
	ExpiredIDs []ID
}

// Check evaluates every registered node against its timeout.
//
// Inside the critical section, Check reads the clock once and walks the list once.
// A node whose elapsed time since its last feed exceeds its timeout
// is flagged as expired.
// Check never clears a flag; only feeding does.
//
// Check returns [StatusHealthy] if no node is flagged after the walk,
// and [StatusExpired] otherwise.
// On error (an uninitialized registry or [ErrCorruptList])
// it returns StatusExpired, so a caller that only inspects the status
// still refuses to report health.
func (r *Registry) Check() (Status, error) {
	if err := r.ready(); err != nil {
		return StatusExpired, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()

	var expired []ID
	err := r.walk(func(n *Node) bool {
		if now.Since(n.LastFeed()) > n.Timeout() {
			n.expired.Store(true)
		}
		if n.Expired() {
			expired = append(expired, n.ID())
		}
		return true
	})

	status := StatusHealthy
	if err != nil || len(expired) > 0 {
		status = StatusExpired
	}

	r.last = CheckResult{
		At:         now,
		Status:     status,
		Nodes:      r.count,
		ExpiredIDs: expired,
	}
	r.hasLast = true

	r.assertList()

	return status, err
}

// LastCheck returns the result of the most recent Check,
// and false if there has been no check since the registry was initialized.
func (r *Registry) LastCheck() (CheckResult, bool) {
	if r.ready() != nil {
		return CheckResult{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.last
	res.ExpiredIDs = slices.Clone(res.ExpiredIDs)
	return res, r.hasLast
}
