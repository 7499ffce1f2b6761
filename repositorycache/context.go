package repositorycache

import (
	"context"

	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/repository"
)

var (
	_ repository.ContextReader[string, int, any]               = (*CachedContextReader[string, int, any])(nil)
	_ repository.ContextWriter[string, any]                    = (*CachedContextWriter[string, any])(nil)
	_ repository.ContextItemizedWriter[string, any]            = (*CachedContextWriter[string, any])(nil)
	_ repository.ContextUniqueReader[string, int, string, any] = (*CachedContextUniqueReader[string, int, string, any])(nil)
)

// CachedContextReader caches a repository.ContextReader. The repository
// context reaches the underlying call unchanged; it plays no part in cache
// keys, so one store serves every repository context.
type CachedContextReader[RC any, K comparable, E any] struct {
	base   repository.ContextReader[RC, K, E]
	reader *CachedReader[K, E]
}

// NewContextReader creates a CachedContextReader serving lookups from index.
// Misses are not coalesced across calls, whatever the configuration says.
func NewContextReader[RC any, K comparable, E any](base repository.ContextReader[RC, K, E], index cache.Index[K, E], opts ...Option) *CachedContextReader[RC, K, E] {
	return &CachedContextReader[RC, K, E]{
		base:   base,
		reader: NewReader[K, E](nil, index, opts...),
	}
}

func (r *CachedContextReader[RC, K, E]) bind(rc RC) *CachedReader[K, E] {
	return r.reader.rebind(repository.BindReader(r.base, rc))
}

func (r *CachedContextReader[RC, K, E]) Get(ctx context.Context, rc RC, key K) (E, error) {
	return r.bind(rc).Get(ctx, key)
}

func (r *CachedContextReader[RC, K, E]) GetRange(ctx context.Context, rc RC, keys []K) ([]E, error) {
	return r.bind(rc).GetRange(ctx, keys)
}

func (r *CachedContextReader[RC, K, E]) GetAll(ctx context.Context, rc RC) ([]E, error) {
	return r.bind(rc).GetAll(ctx)
}

func (r *CachedContextReader[RC, K, E]) GetAllKeys(ctx context.Context, rc RC) ([]K, error) {
	return r.base.GetAllKeys(ctx, rc)
}

func (r *CachedContextReader[RC, K, E]) UseTransactionScope() bool {
	return repository.UsesTransactionScope(r.base)
}

func (r *CachedContextReader[RC, K, E]) Stats() Stats {
	return r.reader.Stats()
}

// CachedContextWriter caches a repository.ContextWriter.
type CachedContextWriter[RC any, E any] struct {
	base   repository.ContextWriter[RC, E]
	writer *CachedWriter[E]
}

// NewContextWriter creates a CachedContextWriter invalidating through
// invalidator.
func NewContextWriter[RC any, E any](base repository.ContextWriter[RC, E], invalidator cache.Invalidator[E], opts ...Option) *CachedContextWriter[RC, E] {
	o := buildOptions(opts)
	return &CachedContextWriter[RC, E]{
		base: base,
		writer: &CachedWriter[E]{
			invalidator: invalidator,
			config:      o.config,
			logger:      o.componentLogger("cached_context_writer"),
		},
	}
}

func (w *CachedContextWriter[RC, E]) bind(rc RC) *CachedWriter[E] {
	return w.writer.rebind(repository.BindWriter(w.base, rc))
}

func (w *CachedContextWriter[RC, E]) Insert(ctx context.Context, rc RC, entity E) (int, error) {
	return w.bind(rc).Insert(ctx, entity)
}

func (w *CachedContextWriter[RC, E]) InsertRange(ctx context.Context, rc RC, entities []E) (int, error) {
	return w.bind(rc).InsertRange(ctx, entities)
}

func (w *CachedContextWriter[RC, E]) Update(ctx context.Context, rc RC, entity E) (int, error) {
	return w.bind(rc).Update(ctx, entity)
}

func (w *CachedContextWriter[RC, E]) UpdateRange(ctx context.Context, rc RC, entities []E) (int, error) {
	return w.bind(rc).UpdateRange(ctx, entities)
}

func (w *CachedContextWriter[RC, E]) Delete(ctx context.Context, rc RC, entity E) (int, error) {
	return w.bind(rc).Delete(ctx, entity)
}

func (w *CachedContextWriter[RC, E]) DeleteRange(ctx context.Context, rc RC, entities []E) (int, error) {
	return w.bind(rc).DeleteRange(ctx, entities)
}

func (w *CachedContextWriter[RC, E]) InsertEach(ctx context.Context, rc RC, entities []E) ([]int, error) {
	return w.bind(rc).InsertEach(ctx, entities)
}

func (w *CachedContextWriter[RC, E]) UpdateEach(ctx context.Context, rc RC, entities []E) ([]int, error) {
	return w.bind(rc).UpdateEach(ctx, entities)
}

func (w *CachedContextWriter[RC, E]) DeleteEach(ctx context.Context, rc RC, entities []E) ([]int, error) {
	return w.bind(rc).DeleteEach(ctx, entities)
}

func (w *CachedContextWriter[RC, E]) UseTransactionScope() bool {
	return repository.UsesTransactionScope(w.base)
}

// CachedContextUniqueReader caches a repository.ContextUniqueReader.
type CachedContextUniqueReader[RC any, PK comparable, UK comparable, E any] struct {
	base   repository.ContextUniqueReader[RC, PK, UK, E]
	reader *CachedUniqueReader[PK, UK, E]
}

// NewContextUniqueReader creates a CachedContextUniqueReader over store,
// which must have been created with cache.NewUniqueStore.
func NewContextUniqueReader[RC any, PK comparable, UK comparable, E any](
	base repository.ContextUniqueReader[RC, PK, UK, E],
	store *cache.Store[PK, UK, E],
	opts ...Option,
) *CachedContextUniqueReader[RC, PK, UK, E] {
	return &CachedContextUniqueReader[RC, PK, UK, E]{
		base: base,
		reader: &CachedUniqueReader[PK, UK, E]{
			byPrimary: NewReader[PK, E](nil, store.ByPrimaryKey(), opts...),
			byUnique:  NewReader[UK, E](nil, store.ByUniqueKey(), opts...),
		},
	}
}

func (r *CachedContextUniqueReader[RC, PK, UK, E]) bind(rc RC) *CachedUniqueReader[PK, UK, E] {
	return r.reader.rebind(repository.BindUniqueReader(r.base, rc))
}

func (r *CachedContextUniqueReader[RC, PK, UK, E]) GetByPrimaryKey(ctx context.Context, rc RC, key PK) (E, error) {
	return r.bind(rc).GetByPrimaryKey(ctx, key)
}

func (r *CachedContextUniqueReader[RC, PK, UK, E]) GetByUniqueKey(ctx context.Context, rc RC, key UK) (E, error) {
	return r.bind(rc).GetByUniqueKey(ctx, key)
}

func (r *CachedContextUniqueReader[RC, PK, UK, E]) GetRangeByPrimaryKey(ctx context.Context, rc RC, keys []PK) ([]E, error) {
	return r.bind(rc).GetRangeByPrimaryKey(ctx, keys)
}

func (r *CachedContextUniqueReader[RC, PK, UK, E]) GetRangeByUniqueKey(ctx context.Context, rc RC, keys []UK) ([]E, error) {
	return r.bind(rc).GetRangeByUniqueKey(ctx, keys)
}

func (r *CachedContextUniqueReader[RC, PK, UK, E]) GetAll(ctx context.Context, rc RC) ([]E, error) {
	return r.bind(rc).GetAll(ctx)
}

func (r *CachedContextUniqueReader[RC, PK, UK, E]) GetAllPrimaryKeys(ctx context.Context, rc RC) ([]PK, error) {
	return r.base.GetAllPrimaryKeys(ctx, rc)
}

func (r *CachedContextUniqueReader[RC, PK, UK, E]) GetAllUniqueKeys(ctx context.Context, rc RC) ([]UK, error) {
	return r.base.GetAllUniqueKeys(ctx, rc)
}

func (r *CachedContextUniqueReader[RC, PK, UK, E]) UseTransactionScope() bool {
	return repository.UsesTransactionScope(r.base)
}

func (r *CachedContextUniqueReader[RC, PK, UK, E]) Stats() Stats {
	return r.reader.Stats()
}
