package bunrepo

import (
	"context"

	"github.com/goliatone/go-data-repository/repository"
	"github.com/uptrace/bun"
)

var (
	_ repository.ReadWriter[string, any]                           = (*Adapter[any])(nil)
	_ repository.UniqueReader[string, string, any]                 = (*UniqueAdapter[any])(nil)
	_ repository.ContextReader[bun.IDB, string, any]               = (*ContextAdapter[any])(nil)
	_ repository.ContextWriter[bun.IDB, any]                       = (*ContextAdapter[any])(nil)
	_ repository.ContextUniqueReader[bun.IDB, string, string, any] = (*ContextUniqueAdapter[any])(nil)
)

// Adapter exposes a go-repository-bun repository as a ReadWriter keyed by
// the record ID.
type Adapter[T any] struct {
	core *core[T]
	ctx  *ContextAdapter[T]
}

// New wraps src. idOf returns the ID GetByID looks records up by.
func New[T any](src Source[T], idOf func(T) string, opts ...Option) *Adapter[T] {
	c := &core[T]{src: src, keyOf: idOf, settings: buildSettings(opts)}
	return &Adapter[T]{core: c, ctx: &ContextAdapter[T]{core: c}}
}

// WithContext returns the variant of a taking a bun.IDB on every call.
// Calls with a nil bun.IDB run outside any transaction.
func (a *Adapter[T]) WithContext() *ContextAdapter[T] {
	return a.ctx
}

func (a *Adapter[T]) Get(ctx context.Context, key string) (T, error) {
	return a.core.get(ctx, nil, key)
}

func (a *Adapter[T]) GetRange(ctx context.Context, keys []string) ([]T, error) {
	return a.ctx.GetRange(ctx, nil, keys)
}

func (a *Adapter[T]) GetAll(ctx context.Context) ([]T, error) {
	return a.core.list(ctx, nil)
}

func (a *Adapter[T]) GetAllKeys(ctx context.Context) ([]string, error) {
	return a.core.keys(ctx, nil, a.core.keyOf)
}

func (a *Adapter[T]) Insert(ctx context.Context, record T) (int, error) {
	return a.core.create(ctx, nil, record)
}

func (a *Adapter[T]) InsertRange(ctx context.Context, records []T) (int, error) {
	return a.core.createMany(ctx, nil, records)
}

func (a *Adapter[T]) Update(ctx context.Context, record T) (int, error) {
	return a.core.update(ctx, nil, record)
}

func (a *Adapter[T]) UpdateRange(ctx context.Context, records []T) (int, error) {
	return a.core.updateMany(ctx, nil, records)
}

func (a *Adapter[T]) Delete(ctx context.Context, record T) (int, error) {
	return a.core.delete(ctx, nil, record)
}

func (a *Adapter[T]) DeleteRange(ctx context.Context, records []T) (int, error) {
	return a.core.deleteMany(ctx, nil, records)
}

func (a *Adapter[T]) UseTransactionScope() bool {
	return a.core.settings.scoped
}

// ContextAdapter runs every operation through the *Tx methods of the
// source with the bun.IDB of the call.
type ContextAdapter[T any] struct {
	core *core[T]
}

func (a *ContextAdapter[T]) Get(ctx context.Context, tx bun.IDB, key string) (T, error) {
	return a.core.get(ctx, tx, key)
}

// GetRange looks keys up concurrently and returns the found records in key
// order.
func (a *ContextAdapter[T]) GetRange(ctx context.Context, tx bun.IDB, keys []string) ([]T, error) {
	return a.core.getRange(ctx, keys, func(ctx context.Context, key string) (T, error) {
		return a.core.get(ctx, tx, key)
	})
}

func (a *ContextAdapter[T]) GetAll(ctx context.Context, tx bun.IDB) ([]T, error) {
	return a.core.list(ctx, tx)
}

func (a *ContextAdapter[T]) GetAllKeys(ctx context.Context, tx bun.IDB) ([]string, error) {
	return a.core.keys(ctx, tx, a.core.keyOf)
}

func (a *ContextAdapter[T]) Insert(ctx context.Context, tx bun.IDB, record T) (int, error) {
	return a.core.create(ctx, tx, record)
}

func (a *ContextAdapter[T]) InsertRange(ctx context.Context, tx bun.IDB, records []T) (int, error) {
	return a.core.createMany(ctx, tx, records)
}

func (a *ContextAdapter[T]) Update(ctx context.Context, tx bun.IDB, record T) (int, error) {
	return a.core.update(ctx, tx, record)
}

func (a *ContextAdapter[T]) UpdateRange(ctx context.Context, tx bun.IDB, records []T) (int, error) {
	return a.core.updateMany(ctx, tx, records)
}

func (a *ContextAdapter[T]) Delete(ctx context.Context, tx bun.IDB, record T) (int, error) {
	return a.core.delete(ctx, tx, record)
}

func (a *ContextAdapter[T]) DeleteRange(ctx context.Context, tx bun.IDB, records []T) (int, error) {
	return a.core.deleteMany(ctx, tx, records)
}

func (a *ContextAdapter[T]) UseTransactionScope() bool {
	return a.core.settings.scoped
}

// UniqueAdapter adds lookups by the identifier of go-repository-bun
// (GetByIdentifier) as the unique key.
type UniqueAdapter[T any] struct {
	*Adapter[T]
	unique *ContextUniqueAdapter[T]
}

// NewUnique wraps src. identifierOf returns the value GetByIdentifier
// matches.
func NewUnique[T any](src Source[T], idOf, identifierOf func(T) string, opts ...Option) *UniqueAdapter[T] {
	base := New(src, idOf, opts...)
	return &UniqueAdapter[T]{
		Adapter: base,
		unique:  &ContextUniqueAdapter[T]{ContextAdapter: base.ctx, identifierOf: identifierOf},
	}
}

func (a *UniqueAdapter[T]) WithContext() *ContextUniqueAdapter[T] {
	return a.unique
}

func (a *UniqueAdapter[T]) GetByPrimaryKey(ctx context.Context, key string) (T, error) {
	return a.unique.GetByPrimaryKey(ctx, nil, key)
}

func (a *UniqueAdapter[T]) GetByUniqueKey(ctx context.Context, key string) (T, error) {
	return a.unique.GetByUniqueKey(ctx, nil, key)
}

func (a *UniqueAdapter[T]) GetRangeByPrimaryKey(ctx context.Context, keys []string) ([]T, error) {
	return a.unique.GetRangeByPrimaryKey(ctx, nil, keys)
}

func (a *UniqueAdapter[T]) GetRangeByUniqueKey(ctx context.Context, keys []string) ([]T, error) {
	return a.unique.GetRangeByUniqueKey(ctx, nil, keys)
}

func (a *UniqueAdapter[T]) GetAllPrimaryKeys(ctx context.Context) ([]string, error) {
	return a.unique.GetAllPrimaryKeys(ctx, nil)
}

func (a *UniqueAdapter[T]) GetAllUniqueKeys(ctx context.Context) ([]string, error) {
	return a.unique.GetAllUniqueKeys(ctx, nil)
}

type ContextUniqueAdapter[T any] struct {
	*ContextAdapter[T]
	identifierOf func(T) string
}

func (a *ContextUniqueAdapter[T]) GetByPrimaryKey(ctx context.Context, tx bun.IDB, key string) (T, error) {
	return a.core.get(ctx, tx, key)
}

func (a *ContextUniqueAdapter[T]) GetByUniqueKey(ctx context.Context, tx bun.IDB, key string) (T, error) {
	return a.core.getByIdentifier(ctx, tx, key)
}

func (a *ContextUniqueAdapter[T]) GetRangeByPrimaryKey(ctx context.Context, tx bun.IDB, keys []string) ([]T, error) {
	return a.GetRange(ctx, tx, keys)
}

func (a *ContextUniqueAdapter[T]) GetRangeByUniqueKey(ctx context.Context, tx bun.IDB, keys []string) ([]T, error) {
	return a.core.getRange(ctx, keys, func(ctx context.Context, key string) (T, error) {
		return a.core.getByIdentifier(ctx, tx, key)
	})
}

func (a *ContextUniqueAdapter[T]) GetAllPrimaryKeys(ctx context.Context, tx bun.IDB) ([]string, error) {
	return a.core.keys(ctx, tx, a.core.keyOf)
}

func (a *ContextUniqueAdapter[T]) GetAllUniqueKeys(ctx context.Context, tx bun.IDB) ([]string, error) {
	return a.core.keys(ctx, tx, a.identifierOf)
}
