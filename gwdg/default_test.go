package gwdg_test

import (
	"testing"

	"github.com/gordian-engine/gmwdg/gwdg"
	"github.com/gordian-engine/gmwdg/gwdg/gwdgtest"
	"github.com/stretchr/testify/require"
)

// The default registry is process-wide state,
// so this test must not run in parallel with anything else that touches it.
func TestDefault_lifecycle(t *testing.T) {
	var n gwdg.Node

	// Nothing works before Init.
	require.Nil(t, gwdg.Default())
	require.ErrorIs(t, gwdg.Add(&n, 100), gwdg.ErrNotInitialized)
	require.ErrorIs(t, gwdg.Feed(&n), gwdg.ErrNotInitialized)
	require.ErrorIs(t, gwdg.AssignID(&n, 1), gwdg.ErrNotInitialized)
	require.ErrorIs(t, gwdg.Remove(&n), gwdg.ErrNotInitialized)
	status, err := gwdg.Check()
	require.ErrorIs(t, err, gwdg.ErrNotInitialized)
	require.Equal(t, gwdg.StatusExpired, status)
	var c gwdg.Cursor
	_, ok := gwdg.NextExpired(&c)
	require.False(t, ok)

	clock := gwdgtest.NewManualClock(0)
	gwdg.InitWith(gwdg.RegistryConfig{Clock: clock})
	first := gwdg.Default()
	require.NotNil(t, first)

	require.NoError(t, gwdg.AssignID(&n, 5))
	require.NoError(t, gwdg.Add(&n, 100))
	require.NoError(t, gwdg.Feed(&n))

	status, err = gwdg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusHealthy, status)

	clock.Advance(101)
	status, err = gwdg.Check()
	require.NoError(t, err)
	require.Equal(t, gwdg.StatusExpired, status)

	c.Reset()
	id, ok := gwdg.NextExpired(&c)
	require.True(t, ok)
	require.Equal(t, gwdg.ID(5), id)
	_, ok = gwdg.NextExpired(&c)
	require.False(t, ok)

	// Re-initializing replaces the registry and releases the node.
	gwdg.Init()
	require.NotSame(t, first, gwdg.Default())
	require.False(t, n.Registered())
	require.Zero(t, first.Len())

	require.NoError(t, gwdg.Add(&n, 100))
	require.NoError(t, gwdg.Remove(&n))
	require.Zero(t, gwdg.Default().Len())
}
