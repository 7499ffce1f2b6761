package sqlstore

import (
	"context"

	"github.com/goliatone/go-data-repository/repository"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

var (
	_ repository.ReadWriter[int, any]           = (*Store[int, any])(nil)
	_ repository.ItemizedWriter[any]            = (*Store[int, any])(nil)
	_ repository.UniqueReader[int, string, any] = (*UniqueStore[int, string, any])(nil)
)

// Option configures a Store.
type Option func(*settings)

type settings struct {
	scoped bool
	logger zerolog.Logger
}

// WithTransactionScope sets the value reported by UseTransactionScope.
func WithTransactionScope(enabled bool) Option {
	return func(s *settings) { s.scoped = enabled }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// Store is a repository over one table of db. E is the bun model struct,
// keyColumn the column matched by primary key lookups.
type Store[K comparable, E any] struct {
	db   *bun.DB
	core *ContextStore[K, E]
}

// New creates a Store reading and writing E through db.
func New[K comparable, E any](db *bun.DB, keyColumn string, primaryKey func(E) K, opts ...Option) *Store[K, E] {
	set := settings{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&set)
	}
	return &Store[K, E]{
		db: db,
		core: &ContextStore[K, E]{
			keyColumn:  keyColumn,
			primaryKey: primaryKey,
			scoped:     set.scoped,
			logger:     set.logger.With().Str("component", "sqlstore").Str("column", keyColumn).Logger(),
		},
	}
}

// WithContext returns the variant of s taking the bun.IDB, such as a
// transaction, on every call.
func (s *Store[K, E]) WithContext() *ContextStore[K, E] {
	return s.core
}

// DB returns the database s was created with.
func (s *Store[K, E]) DB() *bun.DB {
	return s.db
}

// CreateSchema creates the table of E when it does not exist.
func (s *Store[K, E]) CreateSchema(ctx context.Context) error {
	return s.core.CreateSchema(ctx, s.db)
}

func (s *Store[K, E]) Get(ctx context.Context, key K) (E, error) {
	return s.core.Get(ctx, s.db, key)
}

func (s *Store[K, E]) GetRange(ctx context.Context, keys []K) ([]E, error) {
	return s.core.GetRange(ctx, s.db, keys)
}

func (s *Store[K, E]) GetAll(ctx context.Context) ([]E, error) {
	return s.core.GetAll(ctx, s.db)
}

func (s *Store[K, E]) GetAllKeys(ctx context.Context) ([]K, error) {
	return s.core.GetAllKeys(ctx, s.db)
}

func (s *Store[K, E]) Insert(ctx context.Context, entity E) (int, error) {
	return s.core.Insert(ctx, s.db, entity)
}

func (s *Store[K, E]) InsertRange(ctx context.Context, entities []E) (int, error) {
	return s.core.InsertRange(ctx, s.db, entities)
}

func (s *Store[K, E]) Update(ctx context.Context, entity E) (int, error) {
	return s.core.Update(ctx, s.db, entity)
}

func (s *Store[K, E]) UpdateRange(ctx context.Context, entities []E) (int, error) {
	return s.core.UpdateRange(ctx, s.db, entities)
}

func (s *Store[K, E]) Delete(ctx context.Context, entity E) (int, error) {
	return s.core.Delete(ctx, s.db, entity)
}

func (s *Store[K, E]) DeleteRange(ctx context.Context, entities []E) (int, error) {
	return s.core.DeleteRange(ctx, s.db, entities)
}

func (s *Store[K, E]) InsertEach(ctx context.Context, entities []E) ([]int, error) {
	return s.core.InsertEach(ctx, s.db, entities)
}

func (s *Store[K, E]) UpdateEach(ctx context.Context, entities []E) ([]int, error) {
	return s.core.UpdateEach(ctx, s.db, entities)
}

func (s *Store[K, E]) DeleteEach(ctx context.Context, entities []E) ([]int, error) {
	return s.core.DeleteEach(ctx, s.db, entities)
}

func (s *Store[K, E]) UseTransactionScope() bool {
	return s.core.UseTransactionScope()
}

// UniqueStore is a Store that also reads by a unique column.
type UniqueStore[PK comparable, UK comparable, E any] struct {
	*Store[PK, E]
	unique *ContextUniqueStore[PK, UK, E]
}

// NewUnique creates a UniqueStore. uniqueColumn holds the value returned by
// uniqueKey.
func NewUnique[PK comparable, UK comparable, E any](
	db *bun.DB,
	keyColumn string,
	primaryKey func(E) PK,
	uniqueColumn string,
	uniqueKey func(E) UK,
	opts ...Option,
) *UniqueStore[PK, UK, E] {
	base := New(db, keyColumn, primaryKey, opts...)
	return &UniqueStore[PK, UK, E]{
		Store: base,
		unique: &ContextUniqueStore[PK, UK, E]{
			ContextStore: base.core,
			uniqueColumn: uniqueColumn,
			uniqueKey:    uniqueKey,
		},
	}
}

// WithContext returns the variant of s taking the bun.IDB on every call.
func (s *UniqueStore[PK, UK, E]) WithContext() *ContextUniqueStore[PK, UK, E] {
	return s.unique
}

func (s *UniqueStore[PK, UK, E]) GetByPrimaryKey(ctx context.Context, key PK) (E, error) {
	return s.unique.GetByPrimaryKey(ctx, s.db, key)
}

func (s *UniqueStore[PK, UK, E]) GetByUniqueKey(ctx context.Context, key UK) (E, error) {
	return s.unique.GetByUniqueKey(ctx, s.db, key)
}

func (s *UniqueStore[PK, UK, E]) GetRangeByPrimaryKey(ctx context.Context, keys []PK) ([]E, error) {
	return s.unique.GetRangeByPrimaryKey(ctx, s.db, keys)
}

func (s *UniqueStore[PK, UK, E]) GetRangeByUniqueKey(ctx context.Context, keys []UK) ([]E, error) {
	return s.unique.GetRangeByUniqueKey(ctx, s.db, keys)
}

func (s *UniqueStore[PK, UK, E]) GetAllPrimaryKeys(ctx context.Context) ([]PK, error) {
	return s.unique.GetAllPrimaryKeys(ctx, s.db)
}

func (s *UniqueStore[PK, UK, E]) GetAllUniqueKeys(ctx context.Context) ([]UK, error) {
	return s.unique.GetAllUniqueKeys(ctx, s.db)
}
