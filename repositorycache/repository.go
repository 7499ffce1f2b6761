package repositorycache

import (
	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/repository"
)

var _ repository.ReadWriter[int, any] = (*CachedRepository[int, any])(nil)

// CachedRepository pairs a CachedReader and a CachedWriter over one store.
type CachedRepository[K comparable, E any] struct {
	*CachedReader[K, E]
	*CachedWriter[E]
	store *cache.Store[K, cache.NoUniqueKey, E]
}

// New decorates base with a read-through cache keyed by primaryKey.
func New[K comparable, E any](base repository.ReadWriter[K, E], primaryKey func(E) K, opts ...Option) *CachedRepository[K, E] {
	store := cache.NewStore(primaryKey)
	return &CachedRepository[K, E]{
		CachedReader: NewReader[K, E](base, store.ByPrimaryKey(), opts...),
		CachedWriter: NewWriter[E](base, store, opts...),
		store:        store,
	}
}

// UseTransactionScope forwards the underlying repository's setting.
func (r *CachedRepository[K, E]) UseTransactionScope() bool {
	return r.CachedReader.UseTransactionScope()
}

// Store returns the store shared by the reader and the writer.
func (r *CachedRepository[K, E]) Store() *cache.Store[K, cache.NoUniqueKey, E] {
	return r.store
}

// UniqueReadWriter is a repository readable by primary and unique key.
type UniqueReadWriter[PK comparable, UK comparable, E any] interface {
	repository.UniqueReader[PK, UK, E]
	repository.Writer[E]
}

// CachedUniqueRepository pairs a CachedUniqueReader and a CachedWriter over
// one store.
type CachedUniqueRepository[PK comparable, UK comparable, E any] struct {
	*CachedUniqueReader[PK, UK, E]
	*CachedWriter[E]
	store *cache.Store[PK, UK, E]
}

// NewUnique decorates base with a read-through cache indexed by both keys.
func NewUnique[PK comparable, UK comparable, E any](
	base UniqueReadWriter[PK, UK, E],
	primaryKey func(E) PK,
	uniqueKey func(E) UK,
	opts ...Option,
) *CachedUniqueRepository[PK, UK, E] {
	store := cache.NewUniqueStore(primaryKey, uniqueKey)
	return &CachedUniqueRepository[PK, UK, E]{
		CachedUniqueReader: NewUniqueReader[PK, UK, E](base, store, opts...),
		CachedWriter:       NewWriter[E](base, store, opts...),
		store:              store,
	}
}

// UseTransactionScope forwards the underlying repository's setting.
func (r *CachedUniqueRepository[PK, UK, E]) UseTransactionScope() bool {
	return r.CachedUniqueReader.UseTransactionScope()
}

// Store returns the store shared by the reader and the writer.
func (r *CachedUniqueRepository[PK, UK, E]) Store() *cache.Store[PK, UK, E] {
	return r.store
}
