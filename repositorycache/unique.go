package repositorycache

import (
	"context"

	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/repository"
)

var _ repository.UniqueReader[int, string, any] = (*CachedUniqueReader[int, string, any])(nil)

// CachedUniqueReader caches a repository.UniqueReader. Lookups by either key
// share one store, so an entity fetched by its unique key is served from the
// cache when later requested by its primary key and the other way round.
type CachedUniqueReader[PK comparable, UK comparable, E any] struct {
	base      repository.UniqueReader[PK, UK, E]
	byPrimary *CachedReader[PK, E]
	byUnique  *CachedReader[UK, E]
}

// NewUniqueReader creates a CachedUniqueReader over store, which must have
// been created with cache.NewUniqueStore.
func NewUniqueReader[PK comparable, UK comparable, E any](
	base repository.UniqueReader[PK, UK, E],
	store *cache.Store[PK, UK, E],
	opts ...Option,
) *CachedUniqueReader[PK, UK, E] {
	return &CachedUniqueReader[PK, UK, E]{
		base:      base,
		byPrimary: NewReader(repository.PrimaryKeyReader(base), store.ByPrimaryKey(), opts...),
		byUnique:  NewReader(repository.UniqueKeyReader(base), store.ByUniqueKey(), opts...),
	}
}

func (r *CachedUniqueReader[PK, UK, E]) rebind(base repository.UniqueReader[PK, UK, E]) *CachedUniqueReader[PK, UK, E] {
	return &CachedUniqueReader[PK, UK, E]{
		base:      base,
		byPrimary: r.byPrimary.rebind(repository.PrimaryKeyReader(base)),
		byUnique:  r.byUnique.rebind(repository.UniqueKeyReader(base)),
	}
}

func (r *CachedUniqueReader[PK, UK, E]) GetByPrimaryKey(ctx context.Context, key PK) (E, error) {
	return r.byPrimary.Get(ctx, key)
}

func (r *CachedUniqueReader[PK, UK, E]) GetByUniqueKey(ctx context.Context, key UK) (E, error) {
	return r.byUnique.Get(ctx, key)
}

func (r *CachedUniqueReader[PK, UK, E]) GetRangeByPrimaryKey(ctx context.Context, keys []PK) ([]E, error) {
	return r.byPrimary.GetRange(ctx, keys)
}

func (r *CachedUniqueReader[PK, UK, E]) GetRangeByUniqueKey(ctx context.Context, keys []UK) ([]E, error) {
	return r.byUnique.GetRange(ctx, keys)
}

// GetAll reads every entity from the underlying repository and caches them
// under both keys.
func (r *CachedUniqueReader[PK, UK, E]) GetAll(ctx context.Context) ([]E, error) {
	return r.byPrimary.GetAll(ctx)
}

func (r *CachedUniqueReader[PK, UK, E]) GetAllPrimaryKeys(ctx context.Context) ([]PK, error) {
	return r.base.GetAllPrimaryKeys(ctx)
}

func (r *CachedUniqueReader[PK, UK, E]) GetAllUniqueKeys(ctx context.Context) ([]UK, error) {
	return r.base.GetAllUniqueKeys(ctx)
}

// UseTransactionScope forwards the underlying repository's setting.
func (r *CachedUniqueReader[PK, UK, E]) UseTransactionScope() bool {
	return repository.UsesTransactionScope(r.base)
}

// Stats sums the hit and miss totals of both key lookups.
func (r *CachedUniqueReader[PK, UK, E]) Stats() Stats {
	p, u := r.byPrimary.Stats(), r.byUnique.Stats()
	return Stats{Hits: p.Hits + u.Hits, Misses: p.Misses + u.Misses}
}

// ResetStats zeroes the hit and miss totals.
func (r *CachedUniqueReader[PK, UK, E]) ResetStats() {
	r.byPrimary.ResetStats()
	r.byUnique.ResetStats()
}
