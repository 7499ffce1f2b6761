package cacheinfra

import "github.com/puzpuzpuz/xsync/v3"

// Counters tracks cache hits and misses with striped counters so hot read
// paths do not contend on one cache line.
type Counters struct {
	hits   *xsync.Counter
	misses *xsync.Counter
}

// NewCounters creates zeroed Counters.
func NewCounters() *Counters {
	return &Counters{
		hits:   xsync.NewCounter(),
		misses: xsync.NewCounter(),
	}
}

// Hit records n cache hits.
func (c *Counters) Hit(n int) {
	if n > 0 {
		c.hits.Add(int64(n))
	}
}

// Miss records n cache misses.
func (c *Counters) Miss(n int) {
	if n > 0 {
		c.misses.Add(int64(n))
	}
}

// Snapshot returns the current hit and miss totals.
func (c *Counters) Snapshot() (hits, misses int64) {
	return c.hits.Value(), c.misses.Value()
}

// Reset zeroes both counters.
func (c *Counters) Reset() {
	c.hits.Reset()
	c.misses.Reset()
}
