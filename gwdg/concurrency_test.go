package gwdg_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gordian-engine/gmwdg/gwdg"
	"github.com/gordian-engine/gmwdg/gwdg/gwdgtest"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRegistry_concurrentAddFeedCheck(t *testing.T) {
	t.Parallel()

	for _, serialize := range []bool{false, true} {
		const nTasks = 64
		const nFeeds = 200

		clock := gwdgtest.NewManualClock(0)
		reg := gwdg.NewRegistry(gwdg.RegistryConfig{
			Clock:         clock,
			SerializeFeed: serialize,
		})

		nodes := make([]gwdg.Node, nTasks)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// One checker runs until every task is done.
		var checks atomic.Int64
		var checkerWG sync.WaitGroup
		checkerWG.Add(1)
		go func() {
			defer checkerWG.Done()
			for ctx.Err() == nil {
				_, err := reg.Check()
				if err != nil {
					t.Errorf("check failed: %v", err)
					return
				}

				var c gwdg.Cursor
				for {
					if _, ok := reg.NextExpired(&c); !ok {
						break
					}
				}
				checks.Add(1)
			}
		}()

		var eg errgroup.Group
		for i := range nodes {
			n := &nodes[i]
			eg.Go(func() error {
				if err := reg.AssignID(n, gwdg.ID(i+1)); err != nil {
					return err
				}
				if err := reg.Add(n, 1_000); err != nil {
					return err
				}
				for range nFeeds {
					clock.Advance(1)
					if err := reg.Feed(n); err != nil {
						return err
					}
				}
				return nil
			})
		}

		require.NoError(t, eg.Wait())
		cancel()
		checkerWG.Wait()

		require.Equal(t, nTasks, reg.Len())
		require.NoError(t, reg.Verify())

		states, err := reg.Nodes()
		require.NoError(t, err)
		require.Len(t, states, nTasks)

		seen := make(map[gwdg.ID]bool, nTasks)
		for _, s := range states {
			require.False(t, seen[s.ID], "duplicate id %d", s.ID)
			seen[s.ID] = true
		}
		require.Len(t, seen, nTasks)
	}
}
