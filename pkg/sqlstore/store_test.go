package sqlstore

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/pkg/testsupport"
	"github.com/goliatone/go-data-repository/repository"
	"github.com/goliatone/go-data-repository/repositorycache"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type Entity = testsupport.Entity

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := Open(Config{
		Driver: DriverSQLite,
		DSN:    "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newUniqueStore(t *testing.T, opts ...Option) *UniqueStore[int64, string, Entity] {
	t.Helper()
	s := NewUnique(openTestDB(t), "id", testsupport.EntityID, "code", testsupport.EntityCode, opts...)
	require.NoError(t, s.CreateSchema(context.Background()))
	return s
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, Config{Driver: DriverPostgres, DSN: "postgres://localhost/db"}.Validate())

	err := Config{Driver: "mysql", DSN: "x"}.Validate()
	var cfgErr *cache.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "Driver", cfgErr.Field)

	err = Config{Driver: DriverSQLite}.Validate()
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "DSN", cfgErr.Field)

	_, err = Open(Config{Driver: DriverSQLite, DSN: ":memory:", MaxOpenConns: -1})
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "MaxOpenConns", cfgErr.Field)
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newUniqueStore(t)

	n, err := s.InsertRange(ctx, testsupport.SampleEntities(3))
	require.NoError(t, err)
	require.Equal(t, 3, n)

	got, err := s.Get(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, testsupport.NewEntity(2), got)

	_, err = s.Get(ctx, 42)
	require.True(t, repository.IsNotFound(err))

	_, err = s.Insert(ctx, testsupport.NewEntity(1))
	require.True(t, repository.IsAlreadyExists(err))

	n, err = s.Update(ctx, Entity{ID: 2, Code: "002", Name: "two"})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = s.Update(ctx, testsupport.NewEntity(9))
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = s.DeleteRange(ctx, []Entity{testsupport.NewEntity(1), testsupport.NewEntity(9)})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []Entity{{ID: 2, Code: "002", Name: "two"}, testsupport.NewEntity(3)}, all)

	keys, err := s.GetAllKeys(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3}, keys)
}

func TestStore_RangeFollowsKeyOrder(t *testing.T) {
	ctx := context.Background()
	s := newUniqueStore(t)
	_, err := s.InsertRange(ctx, testsupport.SampleEntities(4))
	require.NoError(t, err)

	got, err := s.GetRange(ctx, []int64{4, 8, 2})
	require.NoError(t, err)
	require.Equal(t, []Entity{testsupport.NewEntity(4), testsupport.NewEntity(2)}, got)

	byCode, err := s.GetRangeByUniqueKey(ctx, []string{"003", "001", "404"})
	require.NoError(t, err)
	require.Equal(t, []Entity{testsupport.NewEntity(3), testsupport.NewEntity(1)}, byCode)

	empty, err := s.GetRange(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestStore_UniqueKeyLookups(t *testing.T) {
	ctx := context.Background()
	s := newUniqueStore(t)
	_, err := s.InsertRange(ctx, testsupport.SampleEntities(2))
	require.NoError(t, err)

	got, err := s.GetByUniqueKey(ctx, "002")
	require.NoError(t, err)
	require.Equal(t, int64(2), got.ID)

	_, err = s.GetByUniqueKey(ctx, "999")
	require.True(t, repository.IsNotFound(err))

	codes, err := s.GetAllUniqueKeys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"001", "002"}, codes)

	_, err = s.Update(ctx, Entity{ID: 2, Code: "001"})
	require.True(t, repository.IsAlreadyExists(err))
}

func TestStore_EachRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newUniqueStore(t)
	_, err := s.Insert(ctx, testsupport.NewEntity(2))
	require.NoError(t, err)

	_, err = s.InsertEach(ctx, testsupport.SampleEntities(3))
	require.True(t, repository.IsAlreadyExists(err))

	keys, err := s.GetAllKeys(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, keys, "entity 1 must be rolled back")

	counts, err := s.DeleteEach(ctx, []Entity{testsupport.NewEntity(5), testsupport.NewEntity(2)})
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, counts)
}

func TestContextStore_TransactionVisibility(t *testing.T) {
	ctx := context.Background()
	s := newUniqueStore(t)
	cs := s.WithContext()

	tx, err := s.DB().BeginTx(ctx, nil)
	require.NoError(t, err)

	_, err = cs.Insert(ctx, tx, testsupport.NewEntity(1))
	require.NoError(t, err)

	got, err := cs.GetByUniqueKey(ctx, tx, "001")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ID)

	require.NoError(t, tx.Rollback())

	_, err = s.Get(ctx, 1)
	require.True(t, repository.IsNotFound(err))
}

func TestContextStore_BehindCachedDecorators(t *testing.T) {
	ctx := context.Background()
	s := newUniqueStore(t, WithTransactionScope(true))
	_, err := s.InsertRange(ctx, testsupport.SampleEntities(2))
	require.NoError(t, err)

	store := cache.NewUniqueStore(testsupport.EntityID, testsupport.EntityCode)
	reader := repositorycache.NewContextUniqueReader[bun.IDB](s.WithContext(), store)
	writer := repositorycache.NewContextWriter[bun.IDB, Entity](s.WithContext(), store)
	require.True(t, reader.UseTransactionScope())

	got, err := reader.GetByUniqueKey(ctx, s.DB(), "001")
	require.NoError(t, err)
	require.Equal(t, "entity1", got.Name)

	err = s.DB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := writer.Update(ctx, tx, Entity{ID: 1, Code: "001", Name: "renamed"})
		return err
	})
	require.NoError(t, err)

	got, err = reader.GetByPrimaryKey(ctx, s.DB(), 1)
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Name)
	require.NoError(t, store.Verify())
}
