package repository

import "context"

// PrimaryKeyReader exposes the primary key side of a UniqueReader as a plain Reader.
func PrimaryKeyReader[PK comparable, UK comparable, E any](base UniqueReader[PK, UK, E]) Reader[PK, E] {
	return &primaryKeyReader[PK, UK, E]{base: base}
}

// UniqueKeyReader exposes the unique key side of a UniqueReader as a plain Reader.
func UniqueKeyReader[PK comparable, UK comparable, E any](base UniqueReader[PK, UK, E]) Reader[UK, E] {
	return &uniqueKeyReader[PK, UK, E]{base: base}
}

type primaryKeyReader[PK comparable, UK comparable, E any] struct {
	base UniqueReader[PK, UK, E]
}

var _ Reader[int, any] = (*primaryKeyReader[int, string, any])(nil)

func (r *primaryKeyReader[PK, UK, E]) Get(ctx context.Context, key PK) (E, error) {
	return r.base.GetByPrimaryKey(ctx, key)
}

func (r *primaryKeyReader[PK, UK, E]) GetRange(ctx context.Context, keys []PK) ([]E, error) {
	return r.base.GetRangeByPrimaryKey(ctx, keys)
}

func (r *primaryKeyReader[PK, UK, E]) GetAll(ctx context.Context) ([]E, error) {
	return r.base.GetAll(ctx)
}

func (r *primaryKeyReader[PK, UK, E]) GetAllKeys(ctx context.Context) ([]PK, error) {
	return r.base.GetAllPrimaryKeys(ctx)
}

func (r *primaryKeyReader[PK, UK, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}

type uniqueKeyReader[PK comparable, UK comparable, E any] struct {
	base UniqueReader[PK, UK, E]
}

var _ Reader[string, any] = (*uniqueKeyReader[int, string, any])(nil)

func (r *uniqueKeyReader[PK, UK, E]) Get(ctx context.Context, key UK) (E, error) {
	return r.base.GetByUniqueKey(ctx, key)
}

func (r *uniqueKeyReader[PK, UK, E]) GetRange(ctx context.Context, keys []UK) ([]E, error) {
	return r.base.GetRangeByUniqueKey(ctx, keys)
}

func (r *uniqueKeyReader[PK, UK, E]) GetAll(ctx context.Context) ([]E, error) {
	return r.base.GetAll(ctx)
}

func (r *uniqueKeyReader[PK, UK, E]) GetAllKeys(ctx context.Context) ([]UK, error) {
	return r.base.GetAllUniqueKeys(ctx)
}

func (r *uniqueKeyReader[PK, UK, E]) UseTransactionScope() bool {
	return UsesTransactionScope(r.base)
}
