package repositorycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/pkg/memstore"
	"github.com/goliatone/go-data-repository/pkg/testsupport"
	"github.com/goliatone/go-data-repository/repository"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type Entity = testsupport.Entity

func newBase(t *testing.T, seed ...Entity) *memstore.UniqueStore[int64, string, Entity] {
	t.Helper()
	base := memstore.NewUnique(testsupport.EntityID, testsupport.EntityCode)
	require.NoError(t, base.Seed(seed...))
	return base
}

func TestCachedReader_GetReadsThrough(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.SampleEntities(3)...)
	repo := New[int64, Entity](base, testsupport.EntityID)

	for i := 0; i < 3; i++ {
		got, err := repo.Get(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, testsupport.NewEntity(2), got)
	}

	require.Equal(t, int64(1), base.Calls("Get"))
	require.Equal(t, Stats{Hits: 2, Misses: 1}, repo.Stats())
}

func TestCachedReader_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	base := newBase(t)
	repo := New[int64, Entity](base, testsupport.EntityID)

	for i := 0; i < 2; i++ {
		_, err := repo.Get(ctx, 1)
		require.True(t, repository.IsNotFound(err))
	}
	require.Equal(t, int64(2), base.Calls("Get"))
	require.Zero(t, repo.Store().Len())
}

func TestCachedReader_ErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.NewEntity(1))
	repo := New[int64, Entity](base, testsupport.EntityID)
	boom := errors.New("connection reset")

	base.FailNext("Get", boom)
	_, err := repo.Get(ctx, 1)
	require.ErrorIs(t, err, boom)

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "entity1", got.Name)
}

func TestCachedReader_GetRangeFetchesOnlyMissing(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.SampleEntities(5)...)
	repo := New[int64, Entity](base, testsupport.EntityID)

	_, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	_, err = repo.Get(ctx, 4)
	require.NoError(t, err)

	var requested [][]int64
	spy := &rangeSpy{Reader: base, onRange: func(keys []int64) { requested = append(requested, keys) }}
	reader := NewReader[int64, Entity](spy, repo.Store().ByPrimaryKey())

	got, err := reader.GetRange(ctx, []int64{1, 2, 3, 4, 2, 9})
	require.NoError(t, err)
	require.Equal(t, [][]int64{{1, 3, 9}}, requested)
	require.Equal(t, []Entity{
		testsupport.NewEntity(2),
		testsupport.NewEntity(4),
		testsupport.NewEntity(1),
		testsupport.NewEntity(3),
	}, got)

	// everything is cached now, no further call
	got, err = reader.GetRange(ctx, []int64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Len(t, requested, 1)

	got, err = reader.GetRange(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Len(t, requested, 1)
}

func TestCachedReader_GetAllAlwaysDelegates(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.SampleEntities(3)...)
	repo := New[int64, Entity](base, testsupport.EntityID)

	first, err := repo.GetAll(ctx)
	require.NoError(t, err)
	second, err := repo.GetAll(ctx)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, int64(2), base.Calls("GetAll"))
	require.Equal(t, 3, repo.Store().Len())

	_, err = repo.Get(ctx, 3)
	require.NoError(t, err)
	require.Zero(t, base.Calls("Get"))

	keys, err := repo.GetAllKeys(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, keys)
	require.Equal(t, int64(1), base.Calls("GetAllKeys"))
}

func TestCachedRepository_ReferenceScenario(t *testing.T) {
	ctx := context.Background()
	base := newBase(t)
	repo := NewUnique[int64, string, Entity](base, testsupport.EntityID, testsupport.EntityCode)

	n, err := repo.Insert(ctx, Entity{ID: 1, Code: "001", Name: "entity1"})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	byID, err := repo.GetByPrimaryKey(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "entity1", byID.Name)

	byCode, err := repo.GetByUniqueKey(ctx, "001")
	require.NoError(t, err)
	require.Equal(t, byID, byCode)
	require.Zero(t, base.Calls("GetByUniqueKey"), "unique lookup must be served from the shared store")

	n, err = repo.Update(ctx, Entity{ID: 1, Code: "001", Name: "entity-1"})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	byCode, err = repo.GetByUniqueKey(ctx, "001")
	require.NoError(t, err)
	require.Equal(t, "entity-1", byCode.Name)

	byID, err = repo.GetByPrimaryKey(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "entity-1", byID.Name)

	n, err = repo.Delete(ctx, byID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = repo.GetByPrimaryKey(ctx, 1)
	require.True(t, repository.IsNotFound(err))
	_, err = repo.GetByUniqueKey(ctx, "001")
	require.True(t, repository.IsNotFound(err))

	require.NoError(t, repo.Store().Verify())
}

func TestCachedRepository_UpdateWithChangedUniqueKey(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.NewEntity(1))
	repo := NewUnique[int64, string, Entity](base, testsupport.EntityID, testsupport.EntityCode)

	_, err := repo.GetByUniqueKey(ctx, "001")
	require.NoError(t, err)

	_, err = repo.Update(ctx, Entity{ID: 1, Code: "101", Name: "renamed"})
	require.NoError(t, err)

	_, err = repo.GetByUniqueKey(ctx, "001")
	require.True(t, repository.IsNotFound(err), "old unique key must not resolve from the cache")

	got, err := repo.GetByUniqueKey(ctx, "101")
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Name)
	require.NoError(t, repo.Store().Verify())
}

func TestCachedWriter_FailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.NewEntity(1))
	repo := New[int64, Entity](base, testsupport.EntityID)

	_, err := repo.Get(ctx, 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	base.FailNext("Update", boom)
	_, err = repo.Update(ctx, Entity{ID: 1, Code: "001", Name: "never"})
	require.ErrorIs(t, err, boom)

	_, ok := repo.Store().Get(1)
	require.True(t, ok)
}

func TestCachedWriter_InsertPolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidate", func(t *testing.T) {
		base := newBase(t)
		repo := New[int64, Entity](base, testsupport.EntityID)

		_, err := repo.Insert(ctx, testsupport.NewEntity(1))
		require.NoError(t, err)
		require.Zero(t, repo.Store().Len())
	})

	t.Run("populate", func(t *testing.T) {
		base := newBase(t)
		repo := New[int64, Entity](base, testsupport.EntityID,
			WithConfig(cache.Config{InsertPolicy: cache.InsertPopulate}))

		_, err := repo.InsertRange(ctx, testsupport.SampleEntities(2))
		require.NoError(t, err)
		require.Equal(t, 2, repo.Store().Len())

		_, err = repo.Get(ctx, 2)
		require.NoError(t, err)
		require.Zero(t, base.Calls("Get"))
	})
}

func TestCachedWriter_RangeInvalidatesAffectedOnly(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.SampleEntities(2)...)
	repo := New[int64, Entity](base, testsupport.EntityID)

	_, err := repo.GetAll(ctx)
	require.NoError(t, err)

	// entity 3 is cached but absent from the base, so the update misses it
	repo.Store().Set(testsupport.NewEntity(3))

	n, err := repo.UpdateRange(ctx, []Entity{
		{ID: 1, Code: "001", Name: "one"},
		{ID: 3, Code: "003", Name: "three"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int64(1), base.Calls("UpdateEach"))
	require.Zero(t, base.Calls("UpdateRange"))

	require.ElementsMatch(t, []int64{2, 3}, repo.Store().PrimaryKeys())
}

func TestCachedWriter_RangeInvalidatesRequested(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.SampleEntities(2)...)
	repo := New[int64, Entity](base, testsupport.EntityID,
		WithConfig(cache.Config{BatchInvalidation: cache.InvalidateRequested}))

	_, err := repo.GetAll(ctx)
	require.NoError(t, err)
	repo.Store().Set(testsupport.NewEntity(3))

	n, err := repo.DeleteRange(ctx, []Entity{testsupport.NewEntity(1), testsupport.NewEntity(3)})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int64(1), base.Calls("DeleteRange"))

	require.Equal(t, []int64{2}, repo.Store().PrimaryKeys())
}

func TestCachedWriter_MismatchedCountsInvalidateBatch(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStore(testsupport.EntityID)
	store.Set(testsupport.SampleEntities(2)...)

	writer := NewWriter[Entity](shortCounts{}, store)
	n, err := writer.DeleteRange(ctx, testsupport.SampleEntities(2))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Zero(t, store.Len())
}

func TestCachedWriter_EachFallsBackToSingleCalls(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.NewEntity(1))
	store := cache.NewStore(testsupport.EntityID)
	store.Set(testsupport.NewEntity(1))

	writer := NewWriter[Entity](writerOnly{base.Store}, store)
	counts, err := writer.DeleteEach(ctx, []Entity{testsupport.NewEntity(1), testsupport.NewEntity(2)})
	require.NoError(t, err)
	require.Equal(t, []int{1, 0}, counts)
	require.Equal(t, int64(2), base.Calls("Delete"))
	require.Zero(t, store.Len())
}

func TestCachedReader_StalePopulationIsDropped(t *testing.T) {
	ctx := context.Background()
	fetched := make(chan struct{})
	release := make(chan struct{})

	base := memstore.New(testsupport.EntityID, memstore.WithHook(func(ctx context.Context, method string) error {
		if method == "Get" {
			close(fetched)
			<-release
		}
		return nil
	}))
	require.NoError(t, base.Seed(testsupport.NewEntity(1)))
	repo := New[int64, Entity](base, testsupport.EntityID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := repo.Get(gctx, 1)
		return err
	})

	<-fetched
	_, err := repo.Update(ctx, Entity{ID: 1, Code: "001", Name: "updated"})
	require.NoError(t, err)
	close(release)
	require.NoError(t, g.Wait())

	_, ok := repo.Store().Get(1)
	require.False(t, ok, "a read that raced a write must not re-cache the old entity")
}

func TestCachedReader_CoalescesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	var inflight atomic.Int32

	base := memstore.New(testsupport.EntityID, memstore.WithHook(func(ctx context.Context, method string) error {
		if method == "Get" {
			inflight.Add(1)
			<-release
		}
		return nil
	}))
	require.NoError(t, base.Seed(testsupport.NewEntity(1)))
	repo := New[int64, Entity](base, testsupport.EntityID,
		WithConfig(cache.Config{CoalesceMisses: true}))

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Get(ctx, 1)
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return inflight.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), base.Calls("Get"))
}

func TestCachedReader_CoalescedReadAfterWriteSeesWrite(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.NewEntity(1))
	stalled := &stallFirstGet{Reader: base.Store, fetched: make(chan struct{}), release: make(chan struct{})}

	store := cache.NewStore(testsupport.EntityID)
	reader := NewReader[int64, Entity](stalled, store.ByPrimaryKey(),
		WithConfig(cache.Config{CoalesceMisses: true}))
	writer := NewWriter[Entity](base, store)

	var g errgroup.Group
	g.Go(func() error {
		_, err := reader.Get(ctx, 1)
		return err
	})
	<-stalled.fetched

	_, err := writer.Update(ctx, Entity{ID: 1, Code: "001", Name: "updated"})
	require.NoError(t, err)

	got, err := reader.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "updated", got.Name)

	close(stalled.release)
	require.NoError(t, g.Wait())

	cached, ok := store.Get(1)
	require.True(t, ok)
	require.Equal(t, "updated", cached.Name)
}

func TestCachedWriter_FailedBatchInvalidatesApplied(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("itemized", func(t *testing.T) {
		store := cache.NewStore(testsupport.EntityID)
		store.Set(testsupport.SampleEntities(3)...)

		writer := NewWriter[Entity](partialFailure{counts: []int{1, 0}, err: boom}, store)
		n, err := writer.UpdateRange(ctx, testsupport.SampleEntities(3))
		require.ErrorIs(t, err, boom)
		require.Equal(t, 1, n)
		require.ElementsMatch(t, []int64{2, 3}, store.PrimaryKeys())
	})

	t.Run("itemized each", func(t *testing.T) {
		store := cache.NewStore(testsupport.EntityID)
		store.Set(testsupport.SampleEntities(2)...)

		writer := NewWriter[Entity](partialFailure{counts: []int{0, 1}, err: boom}, store)
		counts, err := writer.DeleteEach(ctx, testsupport.SampleEntities(2))
		require.ErrorIs(t, err, boom)
		require.Equal(t, []int{0, 1}, counts)
		require.Equal(t, []int64{1}, store.PrimaryKeys())
	})

	t.Run("whole batch", func(t *testing.T) {
		store := cache.NewStore(testsupport.EntityID)
		store.Set(testsupport.SampleEntities(3)...)

		writer := NewWriter[Entity](partialFailure{counts: []int{1}, err: boom}, store,
			WithConfig(cache.Config{BatchInvalidation: cache.InvalidateRequested}))
		_, err := writer.DeleteRange(ctx, testsupport.SampleEntities(2))
		require.ErrorIs(t, err, boom)
		require.Equal(t, []int64{3}, store.PrimaryKeys())
	})

	t.Run("rejected batch is not applied", func(t *testing.T) {
		base := newBase(t, testsupport.SampleEntities(3)...)
		repo := NewUnique[int64, string, Entity](base, testsupport.EntityID, testsupport.EntityCode)
		_, err := repo.GetRangeByPrimaryKey(ctx, []int64{1, 2})
		require.NoError(t, err)

		_, err = repo.UpdateRange(ctx, []Entity{
			{ID: 1, Code: "001", Name: "entity-1"},
			{ID: 2, Code: "003", Name: "entity-2"},
		})
		require.True(t, repository.IsAlreadyExists(err))

		stored, err := base.Get(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, "entity1", stored.Name)

		got, err := repo.GetByPrimaryKey(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, stored, got)
		require.NoError(t, repo.Store().Verify())
	})
}

func TestCachedWriter_InsertPopulateNeedsEveryEntity(t *testing.T) {
	ctx := context.Background()
	populate := WithConfig(cache.Config{
		InsertPolicy:      cache.InsertPopulate,
		BatchInvalidation: cache.InvalidateRequested,
	})

	t.Run("partial range", func(t *testing.T) {
		store := cache.NewStore(testsupport.EntityID)
		writer := NewWriter[Entity](partialFailure{counts: []int{1, 0}}, store, populate)

		n, err := writer.InsertRange(ctx, testsupport.SampleEntities(2))
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Zero(t, store.Len())
	})

	t.Run("nothing inserted", func(t *testing.T) {
		store := cache.NewStore(testsupport.EntityID)
		store.Set(testsupport.NewEntity(1))
		writer := NewWriter[Entity](partialFailure{counts: []int{0}}, store, populate)

		n, err := writer.Insert(ctx, Entity{ID: 1, Code: "001", Name: "ignored"})
		require.NoError(t, err)
		require.Zero(t, n)
		require.Zero(t, store.Len())
	})

	t.Run("itemized", func(t *testing.T) {
		store := cache.NewStore(testsupport.EntityID)
		writer := NewWriter[Entity](partialFailure{counts: []int{1, 0}}, store,
			WithConfig(cache.Config{InsertPolicy: cache.InsertPopulate}))

		n, err := writer.InsertRange(ctx, testsupport.SampleEntities(2))
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Equal(t, []int64{1}, store.PrimaryKeys())
	})
}

func TestCachedReader_Bypass(t *testing.T) {
	ctx := context.Background()
	base := newBase(t, testsupport.NewEntity(1))
	repo := New[int64, Entity](base, testsupport.EntityID)

	_, err := repo.Get(ctx, 1)
	require.NoError(t, err)

	bypass := WithCacheBypass(ctx)
	_, err = repo.Get(bypass, 1)
	require.NoError(t, err)
	_, err = repo.GetAll(bypass)
	require.NoError(t, err)

	require.Equal(t, int64(2), base.Calls("Get"))
	require.Equal(t, Stats{Misses: 1}, repo.Stats())
}

func TestCachedRepository_ForwardsTransactionScope(t *testing.T) {
	base := memstore.New(testsupport.EntityID, memstore.WithTransactionScope(true))
	repo := New[int64, Entity](base, testsupport.EntityID)
	require.True(t, repo.UseTransactionScope())

	plain := New[int64, Entity](newBase(t), testsupport.EntityID)
	require.False(t, plain.UseTransactionScope())
}

type rangeSpy struct {
	repository.Reader[int64, Entity]
	onRange func([]int64)
}

func (s *rangeSpy) GetRange(ctx context.Context, keys []int64) ([]Entity, error) {
	s.onRange(append([]int64(nil), keys...))
	return s.Reader.GetRange(ctx, keys)
}

// writerOnly hides the ItemizedWriter methods of the wrapped store.
type writerOnly struct {
	w repository.Writer[Entity]
}

func (o writerOnly) Insert(ctx context.Context, e Entity) (int, error) { return o.w.Insert(ctx, e) }

func (o writerOnly) InsertRange(ctx context.Context, es []Entity) (int, error) {
	return o.w.InsertRange(ctx, es)
}

func (o writerOnly) Update(ctx context.Context, e Entity) (int, error) { return o.w.Update(ctx, e) }

func (o writerOnly) UpdateRange(ctx context.Context, es []Entity) (int, error) {
	return o.w.UpdateRange(ctx, es)
}

func (o writerOnly) Delete(ctx context.Context, e Entity) (int, error) { return o.w.Delete(ctx, e) }

func (o writerOnly) DeleteRange(ctx context.Context, es []Entity) (int, error) {
	return o.w.DeleteRange(ctx, es)
}

// shortCounts reports one affected entity for any batch.
type shortCounts struct{ writerOnly }

func (shortCounts) InsertEach(context.Context, []Entity) ([]int, error) { return []int{1}, nil }

func (shortCounts) UpdateEach(context.Context, []Entity) ([]int, error) { return []int{1}, nil }

func (shortCounts) DeleteEach(context.Context, []Entity) ([]int, error) { return []int{1}, nil }

// stallFirstGet holds its first Get after reading from the wrapped reader
// until release is closed.
type stallFirstGet struct {
	repository.Reader[int64, Entity]
	once    sync.Once
	fetched chan struct{}
	release chan struct{}
}

func (s *stallFirstGet) Get(ctx context.Context, key int64) (Entity, error) {
	entity, err := s.Reader.Get(ctx, key)
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.fetched)
		<-s.release
	}
	return entity, err
}

// partialFailure reports the same counts and error for every write, as a
// store that applies batches one entity at a time would after failing part
// way.
type partialFailure struct {
	counts []int
	err    error
}

func (p partialFailure) total() (int, error) { return sum(p.counts), p.err }

func (p partialFailure) Insert(context.Context, Entity) (int, error) { return p.total() }

func (p partialFailure) InsertRange(context.Context, []Entity) (int, error) { return p.total() }

func (p partialFailure) Update(context.Context, Entity) (int, error) { return p.total() }

func (p partialFailure) UpdateRange(context.Context, []Entity) (int, error) { return p.total() }

func (p partialFailure) Delete(context.Context, Entity) (int, error) { return p.total() }

func (p partialFailure) DeleteRange(context.Context, []Entity) (int, error) { return p.total() }

func (p partialFailure) InsertEach(context.Context, []Entity) ([]int, error) { return p.counts, p.err }

func (p partialFailure) UpdateEach(context.Context, []Entity) ([]int, error) { return p.counts, p.err }

func (p partialFailure) DeleteEach(context.Context, []Entity) ([]int, error) { return p.counts, p.err }
