package gwdg_test

import (
	"math"
	"testing"

	"github.com/gordian-engine/gmwdg/gwdg"
	"github.com/gordian-engine/gmwdg/gwdg/gwdgtest"
	"github.com/stretchr/testify/require"
)

func TestCheck_emptyRegistryIsHealthy(t *testing.T) {
	t.Parallel()

	reg, _ := gwdgtest.NewRegistry(0)

	status, err := reg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusHealthy, status)

	res, ok := reg.LastCheck()
	require.True(t, ok)
	require.Zero(t, res.Nodes)
	require.Empty(t, res.ExpiredIDs)
}

func TestCheck_healthyImmediatelyAfterAdd(t *testing.T) {
	t.Parallel()

	for _, timeout := range []uint32{1, 2, 100, math.MaxUint32} {
		reg, _ := gwdgtest.NewRegistry(12345)

		var n gwdg.Node
		require.NoError(t, reg.Add(&n, timeout))

		status, err := reg.Check()
		require.NoError(t, err)
		require.Equalf(t, gwdg.StatusHealthy, status, "timeout=%d", timeout)
	}
}

func TestCheck_timeoutBoundary(t *testing.T) {
	t.Parallel()

	const timeout = 200

	for _, tc := range []struct {
		after  uint32
		status gwdg.Status
	}{
		{after: timeout - 1, status: gwdg.StatusHealthy},
		{after: timeout, status: gwdg.StatusHealthy},
		{after: timeout + 1, status: gwdg.StatusExpired},
	} {
		reg, clock := gwdgtest.NewRegistry(0)

		var n gwdg.Node
		require.NoError(t, reg.AssignID(&n, 9))
		require.NoError(t, reg.Add(&n, timeout))

		clock.Advance(50)
		require.NoError(t, reg.Feed(&n))

		clock.Advance(tc.after)
		status, err := reg.Check()
		require.NoError(t, err)
		require.Equalf(t, tc.status, status, "checked %d units after feed", tc.after)
		require.Equal(t, tc.status == gwdg.StatusExpired, n.Expired())

		var c gwdg.Cursor
		var got []gwdg.ID
		for {
			id, ok := reg.NextExpired(&c)
			if !ok {
				break
			}
			got = append(got, id)
		}

		if tc.status == gwdg.StatusExpired {
			require.Equal(t, []gwdg.ID{9}, got)
		} else {
			require.Empty(t, got)
		}
	}
}

func TestCheck_feedResetsExpiryClock(t *testing.T) {
	t.Parallel()

	const timeout = 100

	reg, clock := gwdgtest.NewRegistry(5000)

	var n gwdg.Node
	require.NoError(t, reg.Add(&n, timeout))

	clock.Advance(timeout / 2)
	require.NoError(t, reg.Feed(&n))

	// T-1 after the first feed; without the second feed
	// this would be the same as the boundary test.
	clock.Advance(timeout/2 - 1)
	status, err := reg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusHealthy, status)

	// T+1 after the first feed, still within T of the second feed.
	clock.Advance(2)
	status, err = reg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusHealthy, status)

	// And finally past T of the second feed.
	clock.Advance(timeout)
	status, err = reg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusExpired, status)
}

func TestCheck_wraparound(t *testing.T) {
	t.Parallel()

	reg, clock := gwdgtest.NewRegistry(math.MaxUint32 - 1)

	var n gwdg.Node
	require.NoError(t, reg.Add(&n, 5))
	require.Equal(t, gwdg.Timestamp(math.MaxUint32-1), n.LastFeed())

	clock.Set(2)
	require.Equal(t, uint32(4), clock.Now().Since(n.LastFeed()))

	status, err := reg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusHealthy, status)

	states, err := reg.Nodes()
	require.NoError(t, err)
	require.Equal(t, uint32(4), states[0].Elapsed)

	// Two more units is still fine, the third is past the timeout.
	clock.Set(3)
	status, err = reg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusHealthy, status)

	clock.Set(4)
	status, err = reg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusExpired, status)
}

func TestCheck_multipleNodes(t *testing.T) {
	t.Parallel()

	reg, clock := gwdgtest.NewRegistry(0)

	var a, b gwdg.Node
	require.NoError(t, reg.AssignID(&a, 0xA))
	require.NoError(t, reg.AssignID(&b, 0xB))
	require.NoError(t, reg.Add(&a, 100))
	require.NoError(t, reg.Add(&b, 100))

	clock.Advance(60)
	require.NoError(t, reg.Feed(&a))
	clock.Advance(60)

	status, err := reg.Check()
	require.NoError(t, err)
	require.NotEqual(t, gwdg.StatusHealthy, status)
	require.False(t, a.Expired())
	require.True(t, b.Expired())

	var c gwdg.Cursor
	id, ok := reg.NextExpired(&c)
	require.True(t, ok)
	require.Equal(t, gwdg.ID(0xB), id)

	_, ok = reg.NextExpired(&c)
	require.False(t, ok)
	require.True(t, c.Exhausted())
}

func TestCheck_doesNotClearFlag(t *testing.T) {
	t.Parallel()

	reg, clock := gwdgtest.NewRegistry(0)

	var n gwdg.Node
	require.NoError(t, reg.Add(&n, 10))

	clock.Advance(11)
	status, err := reg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusExpired, status)

	// Wrapping all the way around to the same elapsed value as a fresh feed
	// would look healthy by arithmetic alone,
	// but the flag stays set until the owner feeds.
	clock.Set(n.LastFeed())
	status, err = reg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusExpired, status)
	require.True(t, n.Expired())

	require.NoError(t, reg.Feed(&n))
	status, err = reg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusHealthy, status)
}

func TestCheck_LastCheck(t *testing.T) {
	t.Parallel()

	reg, clock := gwdgtest.NewRegistry(0)

	_, ok := reg.LastCheck()
	require.False(t, ok)

	var a, b, c gwdg.Node
	for i, n := range []*gwdg.Node{&a, &b, &c} {
		require.NoError(t, reg.AssignID(n, gwdg.ID(i+1)))
		require.NoError(t, reg.Add(n, 10))
	}

	clock.Advance(20)
	require.NoError(t, reg.Feed(&b))

	_, err := reg.Check()
	require.NoError(t, err)

	res, ok := reg.LastCheck()
	require.True(t, ok)
	require.Equal(t, gwdg.CheckResult{
		At:     20,
		Status: gwdg.StatusExpired,
		Nodes:  3,

		// List order is newest first.
		ExpiredIDs: []gwdg.ID{3, 1},
	}, res)

	// The returned slice is a copy.
	res.ExpiredIDs[0] = 99
	again, _ := reg.LastCheck()
	require.Equal(t, gwdg.ID(3), again.ExpiredIDs[0])
}

func TestStatus(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, int(gwdg.StatusHealthy))
	require.Equal(t, 1, int(gwdg.StatusExpired))

	require.Equal(t, "Healthy", gwdg.StatusHealthy.String())
	require.Equal(t, "Expired", gwdg.StatusExpired.String())
	require.Equal(t, "Status(7)", gwdg.Status(7).String())

	b, err := gwdg.StatusExpired.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "Expired", string(b))
}
