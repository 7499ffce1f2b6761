package repository

import "context"

// BindReader fixes the repository context of a ContextReader, producing a
// plain Reader that passes rc on every call.
func BindReader[RC any, K comparable, E any](base ContextReader[RC, K, E], rc RC) Reader[K, E] {
	return &boundReader[RC, K, E]{base: base, rc: rc}
}

// BindUniqueReader fixes the repository context of a ContextUniqueReader.
func BindUniqueReader[RC any, PK comparable, UK comparable, E any](base ContextUniqueReader[RC, PK, UK, E], rc RC) UniqueReader[PK, UK, E] {
	return &boundUniqueReader[RC, PK, UK, E]{base: base, rc: rc}
}

// BindWriter fixes the repository context of a ContextWriter. The returned
// Writer also implements ItemizedWriter when base implements ContextItemizedWriter.
func BindWriter[RC any, E any](base ContextWriter[RC, E], rc RC) Writer[E] {
	w := &boundWriter[RC, E]{base: base, rc: rc}
	if itemized, ok := base.(ContextItemizedWriter[RC, E]); ok {
		return &boundItemizedWriter[RC, E]{boundWriter: w, itemized: itemized}
	}
	return w
}

type boundReader[RC any, K comparable, E any] struct {
	base ContextReader[RC, K, E]
	rc   RC
}

func (r *boundReader[RC, K, E]) Get(ctx context.Context, key K) (E, error) {
	return r.base.Get(ctx, r.rc, key)
}

func (r *boundReader[RC, K, E]) GetRange(ctx context.Context, keys []K) ([]E, error) {
	return r.base.GetRange(ctx, r.rc, keys)
}

func (r *boundReader[RC, K, E]) GetAll(ctx context.Context) ([]E, error) {
	return r.base.GetAll(ctx, r.rc)
}

func (r *boundReader[RC, K, E]) GetAllKeys(ctx context.Context) ([]K, error) {
	return r.base.GetAllKeys(ctx, r.rc)
}

func (r *boundReader[RC, K, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}

type boundUniqueReader[RC any, PK comparable, UK comparable, E any] struct {
	base ContextUniqueReader[RC, PK, UK, E]
	rc   RC
}

func (r *boundUniqueReader[RC, PK, UK, E]) GetByPrimaryKey(ctx context.Context, key PK) (E, error) {
	return r.base.GetByPrimaryKey(ctx, r.rc, key)
}

func (r *boundUniqueReader[RC, PK, UK, E]) GetByUniqueKey(ctx context.Context, key UK) (E, error) {
	return r.base.GetByUniqueKey(ctx, r.rc, key)
}

func (r *boundUniqueReader[RC, PK, UK, E]) GetRangeByPrimaryKey(ctx context.Context, keys []PK) ([]E, error) {
	return r.base.GetRangeByPrimaryKey(ctx, r.rc, keys)
}

func (r *boundUniqueReader[RC, PK, UK, E]) GetRangeByUniqueKey(ctx context.Context, keys []UK) ([]E, error) {
	return r.base.GetRangeByUniqueKey(ctx, r.rc, keys)
}

func (r *boundUniqueReader[RC, PK, UK, E]) GetAll(ctx context.Context) ([]E, error) {
	return r.base.GetAll(ctx, r.rc)
}

func (r *boundUniqueReader[RC, PK, UK, E]) GetAllPrimaryKeys(ctx context.Context) ([]PK, error) {
	return r.base.GetAllPrimaryKeys(ctx, r.rc)
}

func (r *boundUniqueReader[RC, PK, UK, E]) GetAllUniqueKeys(ctx context.Context) ([]UK, error) {
	return r.base.GetAllUniqueKeys(ctx, r.rc)
}

func (r *boundUniqueReader[RC, PK, UK, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}

type boundWriter[RC any, E any] struct {
	base ContextWriter[RC, E]
	rc   RC
}

func (w *boundWriter[RC, E]) Insert(ctx context.Context, entity E) (int, error) {
	return w.base.Insert(ctx, w.rc, entity)
}

func (w *boundWriter[RC, E]) InsertRange(ctx context.Context, entities []E) (int, error) {
	return w.base.InsertRange(ctx, w.rc, entities)
}

func (w *boundWriter[RC, E]) Update(ctx context.Context, entity E) (int, error) {
	return w.base.Update(ctx, w.rc, entity)
}

func (w *boundWriter[RC, E]) UpdateRange(ctx context.Context, entities []E) (int, error) {
	return w.base.UpdateRange(ctx, w.rc, entities)
}

func (w *boundWriter[RC, E]) Delete(ctx context.Context, entity E) (int, error) {
	return w.base.Delete(ctx, w.rc, entity)
}

func (w *boundWriter[RC, E]) DeleteRange(ctx context.Context, entities []E) (int, error) {
	return w.base.DeleteRange(ctx, w.rc, entities)
}

func (w *boundWriter[RC, E]) UseTransactionScope() bool {
	return UsesTransactionScope(w.base)
}

type boundItemizedWriter[RC any, E any] struct {
	*boundWriter[RC, E]
	itemized ContextItemizedWriter[RC, E]
}

func (w *boundItemizedWriter[RC, E]) InsertEach(ctx context.Context, entities []E) ([]int, error) {
	return w.itemized.InsertEach(ctx, w.rc, entities)
}

func (w *boundItemizedWriter[RC, E]) UpdateEach(ctx context.Context, entities []E) ([]int, error) {
	return w.itemized.UpdateEach(ctx, w.rc, entities)
}

func (w *boundItemizedWriter[RC, E]) DeleteEach(ctx context.Context, entities []E) ([]int, error) {
	return w.itemized.DeleteEach(ctx, w.rc, entities)
}

// IgnoreContextReader lifts a Reader into a ContextReader that discards the
// repository context.
func IgnoreContextReader[RC any, K comparable, E any](base Reader[K, E]) ContextReader[RC, K, E] {
	return &contextFreeReader[RC, K, E]{base: base}
}

// IgnoreContextWriter lifts a Writer into a ContextWriter that discards the
// repository context. ItemizedWriter support is kept.
func IgnoreContextWriter[RC any, E any](base Writer[E]) ContextWriter[RC, E] {
	w := &contextFreeWriter[RC, E]{base: base}
	if itemized, ok := base.(ItemizedWriter[E]); ok {
		return &contextFreeItemizedWriter[RC, E]{contextFreeWriter: w, itemized: itemized}
	}
	return w
}

type contextFreeReader[RC any, K comparable, E any] struct {
	base Reader[K, E]
}

func (r *contextFreeReader[RC, K, E]) Get(ctx context.Context, _ RC, key K) (E, error) {
	return r.base.Get(ctx, key)
}

func (r *contextFreeReader[RC, K, E]) GetRange(ctx context.Context, _ RC, keys []K) ([]E, error) {
	return r.base.GetRange(ctx, keys)
}

func (r *contextFreeReader[RC, K, E]) GetAll(ctx context.Context, _ RC) ([]E, error) {
	return r.base.GetAll(ctx)
}

func (r *contextFreeReader[RC, K, E]) GetAllKeys(ctx context.Context, _ RC) ([]K, error) {
	return r.base.GetAllKeys(ctx)
}

func (r *contextFreeReader[RC, K, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}

type contextFreeWriter[RC any, E any] struct {
	base Writer[E]
}

func (w *contextFreeWriter[RC, E]) Insert(ctx context.Context, _ RC, entity E) (int, error) {
	return w.base.Insert(ctx, entity)
}

func (w *contextFreeWriter[RC, E]) InsertRange(ctx context.Context, _ RC, entities []E) (int, error) {
	return w.base.InsertRange(ctx, entities)
}

func (w *contextFreeWriter[RC, E]) Update(ctx context.Context, _ RC, entity E) (int, error) {
	return w.base.Update(ctx, entity)
}

func (w *contextFreeWriter[RC, E]) UpdateRange(ctx context.Context, _ RC, entities []E) (int, error) {
	return w.base.UpdateRange(ctx, entities)
}

func (w *contextFreeWriter[RC, E]) Delete(ctx context.Context, _ RC, entity E) (int, error) {
	return w.base.Delete(ctx, entity)
}

func (w *contextFreeWriter[RC, E]) DeleteRange(ctx context.Context, _ RC, entities []E) (int, error) {
	return w.base.DeleteRange(ctx, entities)
}

func (w *contextFreeWriter[RC, E]) UseTransactionScope() bool {
	return UsesTransactionScope(w.base)
}

type contextFreeItemizedWriter[RC any, E any] struct {
	*contextFreeWriter[RC, E]
	itemized ItemizedWriter[E]
}

func (w *contextFreeItemizedWriter[RC, E]) InsertEach(ctx context.Context, _ RC, entities []E) ([]int, error) {
	return w.itemized.InsertEach(ctx, entities)
}

func (w *contextFreeItemizedWriter[RC, E]) UpdateEach(ctx context.Context, _ RC, entities []E) ([]int, error) {
	return w.itemized.UpdateEach(ctx, entities)
}

func (w *contextFreeItemizedWriter[RC, E]) DeleteEach(ctx context.Context, _ RC, entities []E) ([]int, error) {
	return w.itemized.DeleteEach(ctx, entities)
}
