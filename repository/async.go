package repository

import (
	"context"
	"iter"
)

// AsyncReader is the asynchronous twin of Reader. Single results are
// Futures, multi-entity results are lazy sequences.
type AsyncReader[K comparable, E any] interface {
	Get(ctx context.Context, key K) *Future[E]
	GetRange(ctx context.Context, keys []K) iter.Seq2[E, error]
	GetAll(ctx context.Context) iter.Seq2[E, error]
	GetAllKeys(ctx context.Context) iter.Seq2[K, error]
}

// AsyncWriter is the asynchronous twin of Writer.
type AsyncWriter[E any] interface {
	Insert(ctx context.Context, entity E) *Future[int]
	InsertRange(ctx context.Context, entities []E) *Future[int]
	Update(ctx context.Context, entity E) *Future[int]
	UpdateRange(ctx context.Context, entities []E) *Future[int]
	Delete(ctx context.Context, entity E) *Future[int]
	DeleteRange(ctx context.Context, entities []E) *Future[int]
}

// AsyncItemizedWriter is the asynchronous twin of ItemizedWriter.
type AsyncItemizedWriter[E any] interface {
	InsertEach(ctx context.Context, entities []E) *Future[[]int]
	UpdateEach(ctx context.Context, entities []E) *Future[[]int]
	DeleteEach(ctx context.Context, entities []E) *Future[[]int]
}

// AsyncUniqueReader is the asynchronous twin of UniqueReader.
type AsyncUniqueReader[PK comparable, UK comparable, E any] interface {
	GetByPrimaryKey(ctx context.Context, key PK) *Future[E]
	GetByUniqueKey(ctx context.Context, key UK) *Future[E]
	GetRangeByPrimaryKey(ctx context.Context, keys []PK) iter.Seq2[E, error]
	GetRangeByUniqueKey(ctx context.Context, keys []UK) iter.Seq2[E, error]
	GetAll(ctx context.Context) iter.Seq2[E, error]
	GetAllPrimaryKeys(ctx context.Context) iter.Seq2[PK, error]
	GetAllUniqueKeys(ctx context.Context) iter.Seq2[UK, error]
}

// NewAsyncReader runs every call of r on its own goroutine.
func NewAsyncReader[K comparable, E any](r Reader[K, E]) AsyncReader[K, E] {
	return &asyncReader[K, E]{base: r}
}

// AwaitReader turns an AsyncReader into a blocking Reader.
func AwaitReader[K comparable, E any](r AsyncReader[K, E]) Reader[K, E] {
	return &awaitReader[K, E]{base: r}
}

// NewAsyncWriter runs every call of w on its own goroutine. The result also
// implements AsyncItemizedWriter when w implements ItemizedWriter.
func NewAsyncWriter[E any](w Writer[E]) AsyncWriter[E] {
	a := &asyncWriter[E]{base: w}
	if itemized, ok := w.(ItemizedWriter[E]); ok {
		return &asyncItemizedWriter[E]{asyncWriter: a, itemized: itemized}
	}
	return a
}

// AwaitWriter turns an AsyncWriter into a blocking Writer. Each call waits
// for the write's own outcome rather than returning early on cancellation.
// The result also implements ItemizedWriter when w implements
// AsyncItemizedWriter.
func AwaitWriter[E any](w AsyncWriter[E]) Writer[E] {
	a := &awaitWriter[E]{base: w}
	if itemized, ok := w.(AsyncItemizedWriter[E]); ok {
		return &awaitItemizedWriter[E]{awaitWriter: a, itemized: itemized}
	}
	return a
}

// NewAsyncUniqueReader runs every call of r on its own goroutine.
func NewAsyncUniqueReader[PK comparable, UK comparable, E any](r UniqueReader[PK, UK, E]) AsyncUniqueReader[PK, UK, E] {
	return &asyncUniqueReader[PK, UK, E]{base: r}
}

// AwaitUniqueReader turns an AsyncUniqueReader into a blocking UniqueReader.
func AwaitUniqueReader[PK comparable, UK comparable, E any](r AsyncUniqueReader[PK, UK, E]) UniqueReader[PK, UK, E] {
	return &awaitUniqueReader[PK, UK, E]{base: r}
}

type asyncReader[K comparable, E any] struct {
	base Reader[K, E]
}

func (r *asyncReader[K, E]) Get(ctx context.Context, key K) *Future[E] {
	return Go(ctx, func(ctx context.Context) (E, error) {
		return r.base.Get(ctx, key)
	})
}

func (r *asyncReader[K, E]) GetRange(ctx context.Context, keys []K) iter.Seq2[E, error] {
	return Sequence(func() ([]E, error) { return r.base.GetRange(ctx, keys) })
}

func (r *asyncReader[K, E]) GetAll(ctx context.Context) iter.Seq2[E, error] {
	return Sequence(func() ([]E, error) { return r.base.GetAll(ctx) })
}

func (r *asyncReader[K, E]) GetAllKeys(ctx context.Context) iter.Seq2[K, error] {
	return Sequence(func() ([]K, error) { return r.base.GetAllKeys(ctx) })
}

func (r *asyncReader[K, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}

type awaitReader[K comparable, E any] struct {
	base AsyncReader[K, E]
}

func (r *awaitReader[K, E]) Get(ctx context.Context, key K) (E, error) {
	return r.base.Get(ctx, key).Await(ctx)
}

func (r *awaitReader[K, E]) GetRange(ctx context.Context, keys []K) ([]E, error) {
	return Collect(r.base.GetRange(ctx, keys))
}

func (r *awaitReader[K, E]) GetAll(ctx context.Context) ([]E, error) {
	return Collect(r.base.GetAll(ctx))
}

func (r *awaitReader[K, E]) GetAllKeys(ctx context.Context) ([]K, error) {
	return Collect(r.base.GetAllKeys(ctx))
}

func (r *awaitReader[K, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}

type asyncWriter[E any] struct {
	base Writer[E]
}

func (w *asyncWriter[E]) Insert(ctx context.Context, entity E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.Insert(ctx, entity) })
}

func (w *asyncWriter[E]) InsertRange(ctx context.Context, entities []E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.InsertRange(ctx, entities) })
}

func (w *asyncWriter[E]) Update(ctx context.Context, entity E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.Update(ctx, entity) })
}

func (w *asyncWriter[E]) UpdateRange(ctx context.Context, entities []E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.UpdateRange(ctx, entities) })
}

func (w *asyncWriter[E]) Delete(ctx context.Context, entity E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.Delete(ctx, entity) })
}

func (w *asyncWriter[E]) DeleteRange(ctx context.Context, entities []E) *Future[int] {
	return Go(ctx, func(ctx context.Context) (int, error) { return w.base.DeleteRange(ctx, entities) })
}

func (w *asyncWriter[E]) UseTransactionScope() bool {
	return UsesTransactionScope(w.base)
}

type asyncItemizedWriter[E any] struct {
	*asyncWriter[E]
	itemized ItemizedWriter[E]
}

func (w *asyncItemizedWriter[E]) InsertEach(ctx context.Context, entities []E) *Future[[]int] {
	return Go(ctx, func(ctx context.Context) ([]int, error) { return w.itemized.InsertEach(ctx, entities) })
}

func (w *asyncItemizedWriter[E]) UpdateEach(ctx context.Context, entities []E) *Future[[]int] {
	return Go(ctx, func(ctx context.Context) ([]int, error) { return w.itemized.UpdateEach(ctx, entities) })
}

func (w *asyncItemizedWriter[E]) DeleteEach(ctx context.Context, entities []E) *Future[[]int] {
	return Go(ctx, func(ctx context.Context) ([]int, error) { return w.itemized.DeleteEach(ctx, entities) })
}

// awaitWriter waits for the write to finish even when ctx is canceled
// first, so callers always see whether it was applied. Cancellation still
// reaches the underlying writer through ctx.
type awaitWriter[E any] struct {
	base AsyncWriter[E]
}

func (w *awaitWriter[E]) Insert(ctx context.Context, entity E) (int, error) {
	return w.base.Insert(ctx, entity).Wait()
}

func (w *awaitWriter[E]) InsertRange(ctx context.Context, entities []E) (int, error) {
	return w.base.InsertRange(ctx, entities).Wait()
}

func (w *awaitWriter[E]) Update(ctx context.Context, entity E) (int, error) {
	return w.base.Update(ctx, entity).Wait()
}

func (w *awaitWriter[E]) UpdateRange(ctx context.Context, entities []E) (int, error) {
	return w.base.UpdateRange(ctx, entities).Wait()
}

func (w *awaitWriter[E]) Delete(ctx context.Context, entity E) (int, error) {
	return w.base.Delete(ctx, entity).Wait()
}

func (w *awaitWriter[E]) DeleteRange(ctx context.Context, entities []E) (int, error) {
	return w.base.DeleteRange(ctx, entities).Wait()
}

func (w *awaitWriter[E]) UseTransactionScope() bool {
	return UsesTransactionScope(w.base)
}

type awaitItemizedWriter[E any] struct {
	*awaitWriter[E]
	itemized AsyncItemizedWriter[E]
}

func (w *awaitItemizedWriter[E]) InsertEach(ctx context.Context, entities []E) ([]int, error) {
	return w.itemized.InsertEach(ctx, entities).Wait()
}

func (w *awaitItemizedWriter[E]) UpdateEach(ctx context.Context, entities []E) ([]int, error) {
	return w.itemized.UpdateEach(ctx, entities).Wait()
}

func (w *awaitItemizedWriter[E]) DeleteEach(ctx context.Context, entities []E) ([]int, error) {
	return w.itemized.DeleteEach(ctx, entities).Wait()
}

type asyncUniqueReader[PK comparable, UK comparable, E any] struct {
	base UniqueReader[PK, UK, E]
}

func (r *asyncUniqueReader[PK, UK, E]) GetByPrimaryKey(ctx context.Context, key PK) *Future[E] {
	return Go(ctx, func(ctx context.Context) (E, error) { return r.base.GetByPrimaryKey(ctx, key) })
}

func (r *asyncUniqueReader[PK, UK, E]) GetByUniqueKey(ctx context.Context, key UK) *Future[E] {
	return Go(ctx, func(ctx context.Context) (E, error) { return r.base.GetByUniqueKey(ctx, key) })
}

func (r *asyncUniqueReader[PK, UK, E]) GetRangeByPrimaryKey(ctx context.Context, keys []PK) iter.Seq2[E, error] {
	return Sequence(func() ([]E, error) { return r.base.GetRangeByPrimaryKey(ctx, keys) })
}

func (r *asyncUniqueReader[PK, UK, E]) GetRangeByUniqueKey(ctx context.Context, keys []UK) iter.Seq2[E, error] {
	return Sequence(func() ([]E, error) { return r.base.GetRangeByUniqueKey(ctx, keys) })
}

func (r *asyncUniqueReader[PK, UK, E]) GetAll(ctx context.Context) iter.Seq2[E, error] {
	return Sequence(func() ([]E, error) { return r.base.GetAll(ctx) })
}

func (r *asyncUniqueReader[PK, UK, E]) GetAllPrimaryKeys(ctx context.Context) iter.Seq2[PK, error] {
	return Sequence(func() ([]PK, error) { return r.base.GetAllPrimaryKeys(ctx) })
}

func (r *asyncUniqueReader[PK, UK, E]) GetAllUniqueKeys(ctx context.Context) iter.Seq2[UK, error] {
	return Sequence(func() ([]UK, error) { return r.base.GetAllUniqueKeys(ctx) })
}

func (r *asyncUniqueReader[PK, UK, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}

type awaitUniqueReader[PK comparable, UK comparable, E any] struct {
	base AsyncUniqueReader[PK, UK, E]
}

func (r *awaitUniqueReader[PK, UK, E]) GetByPrimaryKey(ctx context.Context, key PK) (E, error) {
	return r.base.GetByPrimaryKey(ctx, key).Await(ctx)
}

func (r *awaitUniqueReader[PK, UK, E]) GetByUniqueKey(ctx context.Context, key UK) (E, error) {
	return r.base.GetByUniqueKey(ctx, key).Await(ctx)
}

func (r *awaitUniqueReader[PK, UK, E]) GetRangeByPrimaryKey(ctx context.Context, keys []PK) ([]E, error) {
	return Collect(r.base.GetRangeByPrimaryKey(ctx, keys))
}

func (r *awaitUniqueReader[PK, UK, E]) GetRangeByUniqueKey(ctx context.Context, keys []UK) ([]E, error) {
	return Collect(r.base.GetRangeByUniqueKey(ctx, keys))
}

func (r *awaitUniqueReader[PK, UK, E]) GetAll(ctx context.Context) ([]E, error) {
	return Collect(r.base.GetAll(ctx))
}

func (r *awaitUniqueReader[PK, UK, E]) GetAllPrimaryKeys(ctx context.Context) ([]PK, error) {
	return Collect(r.base.GetAllPrimaryKeys(ctx))
}

func (r *awaitUniqueReader[PK, UK, E]) GetAllUniqueKeys(ctx context.Context) ([]UK, error) {
	return Collect(r.base.GetAllUniqueKeys(ctx))
}

func (r *awaitUniqueReader[PK, UK, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}
