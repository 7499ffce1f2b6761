package cacheinfra

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestDo_NilCoalescerCallsFetch(t *testing.T) {
	var calls int
	v, shared, err := Do(context.Background(), nil, "k", func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	})

	require.NoError(t, err)
	require.False(t, shared)
	require.Equal(t, 7, v)
	require.Equal(t, 1, calls)
}

func TestDo_CollapsesConcurrentCalls(t *testing.T) {
	c := NewCoalescer()
	release := make(chan struct{})
	var calls atomic.Int32
	var started sync.WaitGroup

	g, ctx := errgroup.WithContext(context.Background())
	results := make([]string, 5)
	for i := range results {
		started.Add(1)
		g.Go(func() error {
			started.Done()
			v, _, err := Do(ctx, c, "same", func(ctx context.Context) (string, error) {
				calls.Add(1)
				<-release
				return "value", nil
			})
			results[i] = v
			return err
		})
	}

	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		require.Equal(t, "value", v)
	}
}

func TestDo_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := Do(context.Background(), NewCoalescer(), "k", func(ctx context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestDo_NilInterfaceResult(t *testing.T) {
	type iface interface{ Name() string }

	v, _, err := Do(context.Background(), NewCoalescer(), "k", func(ctx context.Context) (iface, error) {
		return nil, nil
	})
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestDo_WaiterHonoursOwnContext(t *testing.T) {
	c := NewCoalescer()
	release := make(chan struct{})
	defer close(release)

	go Do(context.Background(), c, "slow", func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := Do(ctx, c, "slow", func(ctx context.Context) (int, error) {
		return 2, nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_LeaderCancelDoesNotFailWaiters(t *testing.T) {
	c := NewCoalescer()
	release := make(chan struct{})
	entered := make(chan struct{})

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, _, err := Do(leaderCtx, c, "k", func(ctx context.Context) (int, error) {
			close(entered)
			select {
			case <-release:
				return 42, nil
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		})
		leaderErr <- err
	}()
	<-entered

	var g errgroup.Group
	var got int
	g.Go(func() error {
		v, _, err := Do(context.Background(), c, "k", func(ctx context.Context) (int, error) {
			return -1, nil
		})
		got = v
		return err
	})
	time.Sleep(10 * time.Millisecond)

	cancelLeader()
	require.ErrorIs(t, <-leaderErr, context.Canceled)
	close(release)

	require.NoError(t, g.Wait())
	require.Equal(t, 42, got)
}

func TestCounters(t *testing.T) {
	c := NewCounters()
	c.Hit(2)
	c.Miss(1)
	c.Hit(0)
	c.Miss(-1)

	hits, misses := c.Snapshot()
	require.Equal(t, int64(2), hits)
	require.Equal(t, int64(1), misses)

	c.Reset()
	hits, misses = c.Snapshot()
	require.Zero(t, hits)
	require.Zero(t, misses)
}
