package repositorycache

import (
	"context"

	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/repository"
	"github.com/rs/zerolog"
)

var (
	_ repository.Writer[any]         = (*CachedWriter[any])(nil)
	_ repository.ItemizedWriter[any] = (*CachedWriter[any])(nil)
)

// CachedWriter decorates a repository.Writer so every successful write
// invalidates the entities it touched. The underlying write always runs
// first. A failed single write leaves the cache alone; a failed batch
// invalidates whatever part of it may have been applied.
type CachedWriter[E any] struct {
	base        repository.Writer[E]
	itemized    repository.ItemizedWriter[E]
	invalidator cache.Invalidator[E]
	config      cache.Config
	logger      zerolog.Logger
}

// NewWriter creates a CachedWriter invalidating through invalidator. When
// base also implements repository.ItemizedWriter, batch writes invalidate
// only the entities the store reports as affected.
func NewWriter[E any](base repository.Writer[E], invalidator cache.Invalidator[E], opts ...Option) *CachedWriter[E] {
	o := buildOptions(opts)
	w := &CachedWriter[E]{
		base:        base,
		invalidator: invalidator,
		config:      o.config,
		logger:      o.componentLogger("cached_writer"),
	}
	w.itemized, _ = base.(repository.ItemizedWriter[E])
	return w
}

func (w *CachedWriter[E]) rebind(base repository.Writer[E]) *CachedWriter[E] {
	bound := *w
	bound.base = base
	bound.itemized, _ = base.(repository.ItemizedWriter[E])
	return &bound
}

// Insert inserts entity and applies the configured insert policy.
func (w *CachedWriter[E]) Insert(ctx context.Context, entity E) (int, error) {
	affected, err := w.base.Insert(ctx, entity)
	if err != nil {
		return affected, err
	}
	w.afterInsert(affected, entity)
	return affected, nil
}

// InsertRange inserts entities and applies the configured insert policy.
func (w *CachedWriter[E]) InsertRange(ctx context.Context, entities []E) (int, error) {
	if w.useItemized() {
		counts, err := w.itemized.InsertEach(ctx, entities)
		if err != nil {
			w.invalidateApplied("InsertRange", entities, counts)
			return sum(counts), err
		}
		return w.applyCounts("InsertRange", entities, counts, w.afterInsert), nil
	}

	affected, err := w.base.InsertRange(ctx, entities)
	if err != nil {
		w.invalidateBatch("InsertRange", entities, err)
		return affected, err
	}
	w.afterInsert(affected, entities...)
	return affected, nil
}

// Update updates entity and invalidates it.
func (w *CachedWriter[E]) Update(ctx context.Context, entity E) (int, error) {
	affected, err := w.base.Update(ctx, entity)
	if err != nil {
		return affected, err
	}
	w.invalidate(entity)
	return affected, nil
}

// UpdateRange updates entities and invalidates them.
func (w *CachedWriter[E]) UpdateRange(ctx context.Context, entities []E) (int, error) {
	if w.useItemized() {
		counts, err := w.itemized.UpdateEach(ctx, entities)
		if err != nil {
			w.invalidateApplied("UpdateRange", entities, counts)
			return sum(counts), err
		}
		return w.applyCounts("UpdateRange", entities, counts, w.invalidateAffected), nil
	}

	affected, err := w.base.UpdateRange(ctx, entities)
	if err != nil {
		w.invalidateBatch("UpdateRange", entities, err)
		return affected, err
	}
	w.invalidate(entities...)
	return affected, nil
}

// Delete deletes entity and invalidates it.
func (w *CachedWriter[E]) Delete(ctx context.Context, entity E) (int, error) {
	affected, err := w.base.Delete(ctx, entity)
	if err != nil {
		return affected, err
	}
	w.invalidate(entity)
	return affected, nil
}

// DeleteRange deletes entities and invalidates them.
func (w *CachedWriter[E]) DeleteRange(ctx context.Context, entities []E) (int, error) {
	if w.useItemized() {
		counts, err := w.itemized.DeleteEach(ctx, entities)
		if err != nil {
			w.invalidateApplied("DeleteRange", entities, counts)
			return sum(counts), err
		}
		return w.applyCounts("DeleteRange", entities, counts, w.invalidateAffected), nil
	}

	affected, err := w.base.DeleteRange(ctx, entities)
	if err != nil {
		w.invalidateBatch("DeleteRange", entities, err)
		return affected, err
	}
	w.invalidate(entities...)
	return affected, nil
}

// InsertEach forwards to the underlying ItemizedWriter, or falls back to one
// Insert per entity.
func (w *CachedWriter[E]) InsertEach(ctx context.Context, entities []E) ([]int, error) {
	return w.each(ctx, "InsertEach", entities, w.itemizedInsert(), w.Insert, w.afterInsert)
}

// UpdateEach forwards to the underlying ItemizedWriter, or falls back to one
// Update per entity.
func (w *CachedWriter[E]) UpdateEach(ctx context.Context, entities []E) ([]int, error) {
	return w.each(ctx, "UpdateEach", entities, w.itemizedUpdate(), w.Update, w.invalidateAffected)
}

// DeleteEach forwards to the underlying ItemizedWriter, or falls back to one
// Delete per entity.
func (w *CachedWriter[E]) DeleteEach(ctx context.Context, entities []E) ([]int, error) {
	return w.each(ctx, "DeleteEach", entities, w.itemizedDelete(), w.Delete, w.invalidateAffected)
}

// UseTransactionScope forwards the underlying repository's setting.
func (w *CachedWriter[E]) UseTransactionScope() bool {
	return repository.UsesTransactionScope(w.base)
}

type batchFn[E any] func(ctx context.Context, entities []E) ([]int, error)

func (w *CachedWriter[E]) itemizedInsert() batchFn[E] {
	if w.itemized == nil {
		return nil
	}
	return w.itemized.InsertEach
}

func (w *CachedWriter[E]) itemizedUpdate() batchFn[E] {
	if w.itemized == nil {
		return nil
	}
	return w.itemized.UpdateEach
}

func (w *CachedWriter[E]) itemizedDelete() batchFn[E] {
	if w.itemized == nil {
		return nil
	}
	return w.itemized.DeleteEach
}

func (w *CachedWriter[E]) each(
	ctx context.Context,
	method string,
	entities []E,
	batch batchFn[E],
	single func(context.Context, E) (int, error),
	after func(int, ...E),
) ([]int, error) {
	if batch != nil {
		counts, err := batch(ctx, entities)
		if err != nil {
			w.invalidateApplied(method, entities, counts)
			return counts, err
		}
		w.applyCounts(method, entities, counts, after)
		return counts, nil
	}

	counts := make([]int, 0, len(entities))
	for _, entity := range entities {
		n, err := single(ctx, entity)
		if err != nil {
			return counts, err
		}
		counts = append(counts, n)
	}
	return counts, nil
}

func (w *CachedWriter[E]) useItemized() bool {
	return w.itemized != nil && w.config.BatchInvalidation == cache.InvalidateAffected
}

// applyCounts runs after for every entity with its own affected count and
// returns the total. A count slice that does not line up with the batch
// invalidates the whole batch.
func (w *CachedWriter[E]) applyCounts(method string, entities []E, counts []int, after func(int, ...E)) int {
	if len(counts) != len(entities) {
		w.logger.Warn().
			Str("method", method).
			Int("entities", len(entities)).
			Int("counts", len(counts)).
			Msg("itemized write returned mismatched counts, invalidating whole batch")
		w.invalidate(entities...)
		return sum(counts)
	}
	for i, entity := range entities {
		after(counts[i], entity)
	}
	return sum(counts)
}

// afterInsert caches the entities under InsertPopulate only when the store
// reports every one of them as inserted. Anything else invalidates.
func (w *CachedWriter[E]) afterInsert(affected int, entities ...E) {
	if w.config.InsertPolicy == cache.InsertPopulate && len(entities) > 0 && affected == len(entities) {
		w.invalidator.Set(entities...)
		return
	}
	w.invalidate(entities...)
}

// invalidateApplied drops the entities a failed itemized batch reports as
// affected. counts may be shorter than the batch.
func (w *CachedWriter[E]) invalidateApplied(method string, entities []E, counts []int) {
	applied := make([]E, 0, len(counts))
	for i, n := range counts {
		if i < len(entities) && n > 0 {
			applied = append(applied, entities[i])
		}
	}
	if len(applied) == 0 {
		return
	}
	w.logger.Debug().
		Str("method", method).
		Int("applied", len(applied)).
		Msg("itemized write failed part way, invalidating applied entities")
	w.invalidate(applied...)
}

// invalidateBatch drops a whole batch after a failed write that cannot tell
// which entities it applied.
func (w *CachedWriter[E]) invalidateBatch(method string, entities []E, err error) {
	w.logger.Debug().
		Err(err).
		Str("method", method).
		Int("entities", len(entities)).
		Msg("batch write failed, invalidating whole batch")
	w.invalidate(entities...)
}

func (w *CachedWriter[E]) invalidateAffected(affected int, entities ...E) {
	if affected > 0 {
		w.invalidate(entities...)
	}
}

func (w *CachedWriter[E]) invalidate(entities ...E) {
	if len(entities) == 0 {
		return
	}
	w.invalidator.Invalidate(entities...)
	w.logger.Debug().Int("entities", len(entities)).Msg("cache invalidated")
}

func sum(counts []int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
