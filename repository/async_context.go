package repository

import (
	"context"
	"iter"
)

// AsyncContextReader is the asynchronous twin of ContextReader.
type AsyncContextReader[RC any, K comparable, E any] interface {
	Get(ctx context.Context, rc RC, key K) *Future[E]
	GetRange(ctx context.Context, rc RC, keys []K) iter.Seq2[E, error]
	GetAll(ctx context.Context, rc RC) iter.Seq2[E, error]
	GetAllKeys(ctx context.Context, rc RC) iter.Seq2[K, error]
}

// AsyncContextWriter is the asynchronous twin of ContextWriter.
type AsyncContextWriter[RC any, E any] interface {
	Insert(ctx context.Context, rc RC, entity E) *Future[int]
	InsertRange(ctx context.Context, rc RC, entities []E) *Future[int]
	Update(ctx context.Context, rc RC, entity E) *Future[int]
	UpdateRange(ctx context.Context, rc RC, entities []E) *Future[int]
	Delete(ctx context.Context, rc RC, entity E) *Future[int]
	DeleteRange(ctx context.Context, rc RC, entities []E) *Future[int]
}

// AsyncContextUniqueReader is the asynchronous twin of ContextUniqueReader.
type AsyncContextUniqueReader[RC any, PK comparable, UK comparable, E any] interface {
	GetByPrimaryKey(ctx context.Context, rc RC, key PK) *Future[E]
	GetByUniqueKey(ctx context.Context, rc RC, key UK) *Future[E]
	GetRangeByPrimaryKey(ctx context.Context, rc RC, keys []PK) iter.Seq2[E, error]
	GetRangeByUniqueKey(ctx context.Context, rc RC, keys []UK) iter.Seq2[E, error]
	GetAll(ctx context.Context, rc RC) iter.Seq2[E, error]
	GetAllPrimaryKeys(ctx context.Context, rc RC) iter.Seq2[PK, error]
	GetAllUniqueKeys(ctx context.Context, rc RC) iter.Seq2[UK, error]
}

// NewAsyncContextReader runs every call of r on its own goroutine.
func NewAsyncContextReader[RC any, K comparable, E any](r ContextReader[RC, K, E]) AsyncContextReader[RC, K, E] {
	return &asyncContextReader[RC, K, E]{base: r}
}

// AwaitContextReader turns an AsyncContextReader into a blocking ContextReader.
func AwaitContextReader[RC any, K comparable, E any](r AsyncContextReader[RC, K, E]) ContextReader[RC, K, E] {
	return &awaitContextReader[RC, K, E]{base: r}
}

// NewAsyncContextWriter runs every call of w on its own goroutine.
func NewAsyncContextWriter[RC any, E any](w ContextWriter[RC, E]) AsyncContextWriter[RC, E] {
	return &asyncContextWriter[RC, E]{base: w}
}

// AwaitContextWriter turns an AsyncContextWriter into a blocking
// ContextWriter. Each call waits for the write's own outcome.
func AwaitContextWriter[RC any, E any](w AsyncContextWriter[RC, E]) ContextWriter[RC, E] {
	return &awaitContextWriter[RC, E]{base: w}
}

// NewAsyncContextUniqueReader runs every call of r on its own goroutine.
func NewAsyncContextUniqueReader[RC any, PK comparable, UK comparable, E any](r ContextUniqueReader[RC, PK, UK, E]) AsyncContextUniqueReader[RC, PK, UK, E] {
	return &asyncContextUniqueReader[RC, PK, UK, E]{base: r}
}

// AwaitContextUniqueReader turns an AsyncContextUniqueReader into a blocking ContextUniqueReader.
func AwaitContextUniqueReader[RC any, PK comparable, UK comparable, E any](r AsyncContextUniqueReader[RC, PK, UK, E]) ContextUniqueReader[RC, PK, UK, E] {
	return &awaitContextUniqueReader[RC, PK, UK, E]{base: r}
}

type asyncContextReader[RC any, K comparable, E any] struct {
	base ContextReader[RC, K, E]
}

func (r *asyncContextReader[RC, K, E]) Get(ctx context.Context, rc RC, key K) *Future[E] {
	return Go(ctx, func(ctx context.Context) (E, error) { return r.base.Get(ctx, rc, key) })
}

func (r *asyncContextReader[RC, K, E]) GetRange(ctx context.Context, rc RC, keys []K) iter.Seq2[E, error] {
	return Sequence(func() ([]E, error) { return r.base.GetRange(ctx, rc, keys) })
}

func (r *asyncContextReader[RC, K, E]) GetAll(ctx context.Context, rc RC) iter.Seq2[E, error] {
	return Sequence(func() ([]E, error) { return r.base.GetAll(ctx, rc) })
}

func (r *asyncContextReader[RC, K, E]) GetAllKeys(ctx context.Context, rc RC) iter.Seq2[K, error] {
	return Sequence(func() ([]K, error) { return r.base.GetAllKeys(ctx, rc) })
}

func (r *asyncContextReader[RC, K, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}

type awaitContextReader[RC any, K comparable, E any] struct {
	base AsyncContextReader[RC, K, E]
}

func (r *awaitContextReader[RC, K, E]) Get(ctx context.Context, rc RC, key K) (E, error) {
	return r.base.Get(ctx, rc, key).Await(ctx)
}

func (r *awaitContextReader[RC, K, E]) GetRange(ctx context.Context, rc RC, keys []K) ([]E, error) {
	return Collect(r.base.GetRange(ctx, rc, keys))
}

func (r *awaitContextReader[RC, K, E]) GetAll(ctx context.Context, rc RC) ([]E, error) {
	return Collect(r.base.GetAll(ctx, rc))
}

func (r *awaitContextReader[RC, K, E]) GetAllKeys(ctx context.Context, rc RC) ([]K, error) {
	return Collect(r.base.GetAllKeys(ctx, rc))
}

func (r *awaitContextReader[RC, K, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}

type asyncContextWriter[RC any, E any] struct {
	base ContextWriter[RC, E]
}

func (w *asyncContextWriter[RC, E]) Insert(ctx context.Context, rc RC, entity E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.Insert(ctx, rc, entity) })
}

func (w *asyncContextWriter[RC, E]) InsertRange(ctx context.Context, rc RC, entities []E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.InsertRange(ctx, rc, entities) })
}

func (w *asyncContextWriter[RC, E]) Update(ctx context.Context, rc RC, entity E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.Update(ctx, rc, entity) })
}

func (w *asyncContextWriter[RC, E]) UpdateRange(ctx context.Context, rc RC, entities []E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.UpdateRange(ctx, rc, entities) })
}

func (w *asyncContextWriter[RC, E]) Delete(ctx context.Context, rc RC, entity E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.Delete(ctx, rc, entity) })
}

func (w *asyncContextWriter[RC, E]) DeleteRange(ctx context.Context, rc RC, entities []E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.DeleteRange(ctx, rc, entities) })
}

func (w *asyncContextWriter[RC, E]) UseTransactionScope() bool {
	return UsesTransactionScope(w.base)
}

type awaitContextWriter[RC any, E any] struct {
	base AsyncContextWriter[RC, E]
}

func (w *awaitContextWriter[RC, E]) Insert(ctx context.Context, rc RC, entity E) (int, error) {
	return w.base.Insert(ctx, rc, entity).Wait()
}

func (w *awaitContextWriter[RC, E]) InsertRange(ctx context.Context, rc RC, entities []E) (int, error) {
	return w.base.InsertRange(ctx, rc, entities).Wait()
}

func (w *awaitContextWriter[RC, E]) Update(ctx context.Context, rc RC, entity E) (int, error) {
	return w.base.Update(ctx, rc, entity).Wait()
}

func (w *awaitContextWriter[RC, E]) UpdateRange(ctx context.Context, rc RC, entities []E) (int, error) {
	return w.base.UpdateRange(ctx, rc, entities).Wait()
}

func (w *awaitContextWriter[RC, E]) Delete(ctx context.Context, rc RC, entity E) (int, error) {
	return w.base.Delete(ctx, rc, entity).Wait()
}

func (w *awaitContextWriter[RC, E]) DeleteRange(ctx context.Context, rc RC, entities []E) (int, error) {
	return w.base.DeleteRange(ctx, rc, entities).Wait()
}

func (w *awaitContextWriter[RC, E]) UseTransactionScope() bool {
	return UsesTransactionScope(w.base)
}

type asyncContextUniqueReader[RC any, PK comparable, UK comparable, E any] struct {
	base ContextUniqueReader[RC, PK, UK, E]
}

func (r *asyncContextUniqueReader[RC, PK, UK, E]) GetByPrimaryKey(ctx context.Context, rc RC, key PK) *Future[E] {
	return Go(ctx, func(ctx context.Context) (E, error) { return r.base.GetByPrimaryKey(ctx, rc, key) })
}

func (r *asyncContextUniqueReader[RC, PK, UK, E]) GetByUniqueKey(ctx context.Context, rc RC, key UK) *Future[E] {
	return Go(ctx, func(ctx context.Context) (E, error) { return r.base.GetByUniqueKey(ctx, rc, key) })
}

func (r *asyncContextUniqueReader[RC, PK, UK, E]) GetRangeByPrimaryKey(ctx context.Context, rc RC, keys []PK) iter.Seq2[E, error] {
	return Sequence(func() ([]E, error) { return r.base.GetRangeByPrimaryKey(ctx, rc, keys) })
}

func (r *asyncContextUniqueReader[RC, PK, UK, E]) GetRangeByUniqueKey(ctx context.Context, rc RC, keys []UK) iter.Seq2[E, error] {
	return Sequence(func() ([]E, error) { return r.base.GetRangeByUniqueKey(ctx, rc, keys) })
}

func (r *asyncContextUniqueReader[RC, PK, UK, E]) GetAll(ctx context.Context, rc RC) iter.Seq2[E, error] {
	return Sequence(func() ([]E, error) { return r.base.GetAll(ctx, rc) })
}

func (r *asyncContextUniqueReader[RC, PK, UK, E]) GetAllPrimaryKeys(ctx context.Context, rc RC) iter.Seq2[PK, error] {
	return Sequence(func() ([]PK, error) { return r.base.GetAllPrimaryKeys(ctx, rc) })
}

func (r *asyncContextUniqueReader[RC, PK, UK, E]) GetAllUniqueKeys(ctx context.Context, rc RC) iter.Seq2[UK, error] {
	return Sequence(func() ([]UK, error) { return r.base.GetAllUniqueKeys(ctx, rc) })
}

func (r *asyncContextUniqueReader[RC, PK, UK, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}

type awaitContextUniqueReader[RC any, PK comparable, UK comparable, E any] struct {
	base AsyncContextUniqueReader[RC, PK, UK, E]
}

func (r *awaitContextUniqueReader[RC, PK, UK, E]) GetByPrimaryKey(ctx context.Context, rc RC, key PK) (E, error) {
	return r.base.GetByPrimaryKey(ctx, rc, key).Await(ctx)
}

func (r *awaitContextUniqueReader[RC, PK, UK, E]) GetByUniqueKey(ctx context.Context, rc RC, key UK) (E, error) {
	return r.base.GetByUniqueKey(ctx, rc, key).Await(ctx)
}

func (r *awaitContextUniqueReader[RC, PK, UK, E]) GetRangeByPrimaryKey(ctx context.Context, rc RC, keys []PK) ([]E, error) {
	return Collect(r.base.GetRangeByPrimaryKey(ctx, rc, keys))
}

func (r *awaitContextUniqueReader[RC, PK, UK, E]) GetRangeByUniqueKey(ctx context.Context, rc RC, keys []UK) ([]E, error) {
	return Collect(r.base.GetRangeByUniqueKey(ctx, rc, keys))
}

func (r *awaitContextUniqueReader[RC, PK, UK, E]) GetAll(ctx context.Context, rc RC) ([]E, error) {
	return Collect(r.base.GetAll(ctx, rc))
}

func (r *awaitContextUniqueReader[RC, PK, UK, E]) GetAllPrimaryKeys(ctx context.Context, rc RC) ([]PK, error) {
	return Collect(r.base.GetAllPrimaryKeys(ctx, rc))
}

func (r *awaitContextUniqueReader[RC, PK, UK, E]) GetAllUniqueKeys(ctx context.Context, rc RC) ([]UK, error) {
	return Collect(r.base.GetAllUniqueKeys(ctx, rc))
}

func (r *awaitContextUniqueReader[RC, PK, UK, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}
