package cacheinfra

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// FetchFn is the function signature the coalescer runs against the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Coalescer collapses concurrent fetches that share a key into one call.
// A nil *Coalescer runs every fetch directly.
type Coalescer struct {
	group singleflight.Group
}

// NewCoalescer creates an empty Coalescer.
func NewCoalescer() *Coalescer {
	return &Coalescer{}
}

// Do runs fetch unless a fetch for key is already in flight, in which case
// it waits for that result. fetch gets the first caller's ctx values but
// not its cancellation, so one caller giving up does not fail the others.
// Every caller stops waiting when its own ctx is done.
//
// shared reports whether the result was delivered to more than one caller.
func Do[T any](ctx context.Context, c *Coalescer, key string, fetch FetchFn[T]) (value T, shared bool, err error) {
	if c == nil {
		value, err = fetch(ctx)
		return value, false, err
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fetch(detached)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Shared, res.Err
		}
		// a nil interface result would fail a plain assertion
		v, _ := res.Val.(T)
		return v, res.Shared, nil
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}
