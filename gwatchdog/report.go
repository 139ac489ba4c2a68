package gwatchdog

import (
	"time"

	"github.com/gordian-engine/gmwdg/gwdg"
)

// Report is the outcome of one supervised check.
type Report struct {
	Supervisor string `json:"supervisor"`

	// Increments with every check, scheduled or requested.
	Seq uint64 `json:"seq"`

	// Wall-clock start of the check and how long it took,
	// including the expired-ID enumeration.
	Time     time.Time     `json:"time"`
	Duration time.Duration `json:"duration_ns"`

	// Clock reading the registry used for the check.
	At gwdg.Timestamp `json:"at"`

	Status gwdg.Status `json:"status"`

	// Registered node count.
	Nodes int `json:"nodes"`

	// IDs enumerated with [*gwdg.Registry.NextExpired] after the check.
	ExpiredIDs []gwdg.ID `json:"expired_ids"`

	// Set if the check failed; Status is then [gwdg.StatusExpired].
	Err error `json:"-"`

	// Err rendered for JSON.
	Error string `json:"error,omitempty"`

	// Whether the configured Kicker was kicked after this check.
	Kicked bool `json:"kicked"`
}

// Healthy reports whether r is a successful check with no expired nodes.
func (r Report) Healthy() bool {
	return r.Err == nil && r.Status == gwdg.StatusHealthy
}
