package repositorycache

import (
	"context"
	"strconv"

	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/internal/cacheinfra"
	"github.com/goliatone/go-data-repository/repository"
	"github.com/rs/zerolog"
)

var _ repository.Reader[int, any] = (*CachedReader[int, any])(nil)

// Stats holds cache hit and miss totals of a reader.
type Stats struct {
	Hits   int64
	Misses int64
}

// CachedReader decorates a repository.Reader with a read-through cache.
type CachedReader[K comparable, E any] struct {
	base       repository.Reader[K, E]
	index      cache.Index[K, E]
	serializer cache.KeySerializer
	logger     zerolog.Logger
	flights    *cacheinfra.Coalescer
	counters   *cacheinfra.Counters
}

// NewReader creates a CachedReader serving lookups from index and falling
// back to base on a miss.
func NewReader[K comparable, E any](base repository.Reader[K, E], index cache.Index[K, E], opts ...Option) *CachedReader[K, E] {
	o := buildOptions(opts)
	r := &CachedReader[K, E]{
		base:       base,
		index:      index,
		serializer: o.serializer,
		logger:     o.componentLogger("cached_reader"),
		counters:   cacheinfra.NewCounters(),
	}
	if o.config.CoalesceMisses {
		r.flights = cacheinfra.NewCoalescer()
	}
	return r
}

// rebind returns a reader over base that shares index and counters with r.
// Bound readers never coalesce: two repository contexts must not share an
// in-flight result.
func (r *CachedReader[K, E]) rebind(base repository.Reader[K, E]) *CachedReader[K, E] {
	bound := *r
	bound.base = base
	bound.flights = nil
	return &bound
}

// Get returns the cached entity for key, or fetches it from the underlying
// repository and caches it. Not found results are never cached.
func (r *CachedReader[K, E]) Get(ctx context.Context, key K) (E, error) {
	if cacheBypassed(ctx) {
		return r.base.Get(ctx, key)
	}

	if entity, ok := r.cached(ctx, key); ok {
		return entity, nil
	}

	r.counters.Miss(1)
	r.trace("cache miss", "Get", key)

	gen := r.index.Generation()
	entity, _, err := cacheinfra.Do(ctx, r.flights, r.flightKey(gen, key), func(ctx context.Context) (E, error) {
		entity, err := r.base.Get(ctx, key)
		if err != nil {
			return entity, err
		}
		r.populate(gen, entity)
		return entity, nil
	})
	return entity, err
}

// GetRange returns cached entities for the keys it knows and fetches the rest
// with a single underlying GetRange call. Cached entities come first in the
// result. Duplicate keys are looked up once.
func (r *CachedReader[K, E]) GetRange(ctx context.Context, keys []K) ([]E, error) {
	if cacheBypassed(ctx) {
		return r.base.GetRange(ctx, keys)
	}

	result := make([]E, 0, len(keys))
	var missing []K
	seen := make(map[K]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if entity, ok := r.index.Lookup(key); ok {
			result = append(result, entity)
			continue
		}
		missing = append(missing, key)
	}

	r.counters.Hit(len(result))
	r.counters.Miss(len(missing))
	if len(missing) == 0 {
		return result, nil
	}
	r.trace("cache range miss", "GetRange", missing)

	gen := r.index.Generation()
	fetched, err := r.base.GetRange(ctx, missing)
	if err != nil {
		return nil, err
	}
	r.populate(gen, fetched...)

	return append(result, fetched...), nil
}

// GetAll always reads from the underlying repository and caches every
// returned entity.
func (r *CachedReader[K, E]) GetAll(ctx context.Context) ([]E, error) {
	gen := r.index.Generation()
	entities, err := r.base.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if !cacheBypassed(ctx) {
		r.populate(gen, entities...)
	}
	return entities, nil
}

// GetAllKeys always reads from the underlying repository. Keys alone carry
// no entity to cache.
func (r *CachedReader[K, E]) GetAllKeys(ctx context.Context) ([]K, error) {
	return r.base.GetAllKeys(ctx)
}

// UseTransactionScope forwards the underlying repository's setting.
func (r *CachedReader[K, E]) UseTransactionScope() bool {
	return repository.UsesTransactionScope(r.base)
}

// Stats returns the hit and miss totals since creation or the last ResetStats.
func (r *CachedReader[K, E]) Stats() Stats {
	hits, misses := r.counters.Snapshot()
	return Stats{Hits: hits, Misses: misses}
}

// ResetStats zeroes the hit and miss totals.
func (r *CachedReader[K, E]) ResetStats() {
	r.counters.Reset()
}

// cached serves key from the index alone and counts a hit when it can.
func (r *CachedReader[K, E]) cached(ctx context.Context, key K) (E, bool) {
	if cacheBypassed(ctx) {
		var zero E
		return zero, false
	}
	entity, ok := r.index.Lookup(key)
	if ok {
		r.counters.Hit(1)
		r.trace("cache hit", "Get", key)
	}
	return entity, ok
}

func (r *CachedReader[K, E]) populate(gen uint64, entities ...E) {
	if len(entities) == 0 {
		return
	}
	if !r.index.Populate(gen, entities...) {
		r.logger.Debug().Int("entities", len(entities)).Msg("cache population skipped after concurrent invalidation")
	}
}

// flightKey includes the cache generation so a read that starts after an
// invalidation never joins a fetch that began before it.
func (r *CachedReader[K, E]) flightKey(gen uint64, key K) string {
	if r.flights == nil {
		return ""
	}
	return r.serializer.SerializeKey("Get", key) + "#" + strconv.FormatUint(gen, 10)
}

func (r *CachedReader[K, E]) trace(msg, method string, args ...any) {
	if ev := r.logger.Debug(); ev.Enabled() {
		ev.Str("key", r.serializer.SerializeKey(method, args...)).Msg(msg)
	}
}
