package repositorycache

import (
	"context"

	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/repository"
)

// The asynchronous decorators run the synchronous ones on goroutines: the
// underlying async repository is awaited inside the goroutine that serves the
// call. Single entity cache hits return an already resolved Future and start
// no goroutine.

// NewAsyncReader caches an AsyncReader.
func NewAsyncReader[K comparable, E any](base repository.AsyncReader[K, E], index cache.Index[K, E], opts ...Option) repository.AsyncReader[K, E] {
	reader := NewReader(repository.AwaitReader(base), index, opts...)
	return &asyncCachedReader[K, E]{
		AsyncReader: repository.NewAsyncReader[K, E](reader),
		reader:      reader,
	}
}

// NewAsyncWriter caches an AsyncWriter. The result implements
// repository.AsyncItemizedWriter.
func NewAsyncWriter[E any](base repository.AsyncWriter[E], invalidator cache.Invalidator[E], opts ...Option) repository.AsyncWriter[E] {
	return repository.NewAsyncWriter[E](NewWriter(repository.AwaitWriter(base), invalidator, opts...))
}

// NewAsyncUniqueReader caches an AsyncUniqueReader.
func NewAsyncUniqueReader[PK comparable, UK comparable, E any](
	base repository.AsyncUniqueReader[PK, UK, E],
	store *cache.Store[PK, UK, E],
	opts ...Option,
) repository.AsyncUniqueReader[PK, UK, E] {
	reader := NewUniqueReader(repository.AwaitUniqueReader(base), store, opts...)
	return &asyncCachedUniqueReader[PK, UK, E]{
		AsyncUniqueReader: repository.NewAsyncUniqueReader[PK, UK, E](reader),
		reader:            reader,
	}
}

// NewAsyncContextReader caches an AsyncContextReader.
func NewAsyncContextReader[RC any, K comparable, E any](
	base repository.AsyncContextReader[RC, K, E],
	index cache.Index[K, E],
	opts ...Option,
) repository.AsyncContextReader[RC, K, E] {
	reader := NewContextReader(repository.AwaitContextReader(base), index, opts...)
	return &asyncCachedContextReader[RC, K, E]{
		AsyncContextReader: repository.NewAsyncContextReader[RC, K, E](reader),
		reader:             reader,
	}
}

// NewAsyncContextWriter caches an AsyncContextWriter.
func NewAsyncContextWriter[RC any, E any](
	base repository.AsyncContextWriter[RC, E],
	invalidator cache.Invalidator[E],
	opts ...Option,
) repository.AsyncContextWriter[RC, E] {
	return repository.NewAsyncContextWriter[RC, E](NewContextWriter(repository.AwaitContextWriter(base), invalidator, opts...))
}

// NewAsyncContextUniqueReader caches an AsyncContextUniqueReader.
func NewAsyncContextUniqueReader[RC any, PK comparable, UK comparable, E any](
	base repository.AsyncContextUniqueReader[RC, PK, UK, E],
	store *cache.Store[PK, UK, E],
	opts ...Option,
) repository.AsyncContextUniqueReader[RC, PK, UK, E] {
	reader := NewContextUniqueReader(repository.AwaitContextUniqueReader(base), store, opts...)
	return &asyncCachedContextUniqueReader[RC, PK, UK, E]{
		AsyncContextUniqueReader: repository.NewAsyncContextUniqueReader[RC, PK, UK, E](reader),
		reader:                   reader,
	}
}

type asyncCachedReader[K comparable, E any] struct {
	repository.AsyncReader[K, E]
	reader *CachedReader[K, E]
}

func (r *asyncCachedReader[K, E]) Get(ctx context.Context, key K) *repository.Future[E] {
	if entity, ok := r.reader.cached(ctx, key); ok {
		return repository.Resolved(entity, nil)
	}
	return r.AsyncReader.Get(ctx, key)
}

type asyncCachedUniqueReader[PK comparable, UK comparable, E any] struct {
	repository.AsyncUniqueReader[PK, UK, E]
	reader *CachedUniqueReader[PK, UK, E]
}

func (r *asyncCachedUniqueReader[PK, UK, E]) GetByPrimaryKey(ctx context.Context, key PK) *repository.Future[E] {
	if entity, ok := r.reader.byPrimary.cached(ctx, key); ok {
		return repository.Resolved(entity, nil)
	}
	return r.AsyncUniqueReader.GetByPrimaryKey(ctx, key)
}

func (r *asyncCachedUniqueReader[PK, UK, E]) GetByUniqueKey(ctx context.Context, key UK) *repository.Future[E] {
	if entity, ok := r.reader.byUnique.cached(ctx, key); ok {
		return repository.Resolved(entity, nil)
	}
	return r.AsyncUniqueReader.GetByUniqueKey(ctx, key)
}

type asyncCachedContextReader[RC any, K comparable, E any] struct {
	repository.AsyncContextReader[RC, K, E]
	reader *CachedContextReader[RC, K, E]
}

func (r *asyncCachedContextReader[RC, K, E]) Get(ctx context.Context, rc RC, key K) *repository.Future[E] {
	if entity, ok := r.reader.reader.cached(ctx, key); ok {
		return repository.Resolved(entity, nil)
	}
	return r.AsyncContextReader.Get(ctx, rc, key)
}

type asyncCachedContextUniqueReader[RC any, PK comparable, UK comparable, E any] struct {
	repository.AsyncContextUniqueReader[RC, PK, UK, E]
	reader *CachedContextUniqueReader[RC, PK, UK, E]
}

func (r *asyncCachedContextUniqueReader[RC, PK, UK, E]) GetByPrimaryKey(ctx context.Context, rc RC, key PK) *repository.Future[E] {
	if entity, ok := r.reader.reader.byPrimary.cached(ctx, key); ok {
		return repository.Resolved(entity, nil)
	}
	return r.AsyncContextUniqueReader.GetByPrimaryKey(ctx, rc, key)
}

func (r *asyncCachedContextUniqueReader[RC, PK, UK, E]) GetByUniqueKey(ctx context.Context, rc RC, key UK) *repository.Future[E] {
	if entity, ok := r.reader.reader.byUnique.cached(ctx, key); ok {
		return repository.Resolved(entity, nil)
	}
	return r.AsyncContextUniqueReader.GetByUniqueKey(ctx, rc, key)
}
