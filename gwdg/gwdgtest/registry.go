package gwdgtest

import (
	"github.com/gordian-engine/gmwdg/gassert/gasserttest"
	"github.com/gordian-engine/gmwdg/gwdg"
)

// NewRegistry returns a registry driven by a new [ManualClock] reading start,
// with every assertion enabled when built with the debug tag.
func NewRegistry(start gwdg.Timestamp) (*gwdg.Registry, *ManualClock) {
	clock := NewManualClock(start)
	reg := gwdg.NewRegistry(gwdg.RegistryConfig{
		Clock:     clock,
		AssertEnv: gasserttest.DefaultEnv(),
	})
	return reg, clock
}
