package repository

import "context"

// Reader is the read side of a repository keyed by a single key type.
// Get returns ErrNotFound when no entity exists for key. GetRange and GetAll
// omit missing entities instead of failing.
type Reader[K comparable, E any] interface {
	Get(ctx context.Context, key K) (E, error)
	GetRange(ctx context.Context, keys []K) ([]E, error)
	GetAll(ctx context.Context) ([]E, error)
	GetAllKeys(ctx context.Context) ([]K, error)
}

// Writer is the write side of a repository. Every operation returns the
// number of entities the backing store reports as affected.
type Writer[E any] interface {
	Insert(ctx context.Context, entity E) (int, error)
	InsertRange(ctx context.Context, entities []E) (int, error)
	Update(ctx context.Context, entity E) (int, error)
	UpdateRange(ctx context.Context, entities []E) (int, error)
	Delete(ctx context.Context, entity E) (int, error)
	DeleteRange(ctx context.Context, entities []E) (int, error)
}

// ItemizedWriter is implemented by writers that can report the affected
// count of every entity in a batch. The returned slice is index aligned
// with the input.
type ItemizedWriter[E any] interface {
	InsertEach(ctx context.Context, entities []E) ([]int, error)
	UpdateEach(ctx context.Context, entities []E) ([]int, error)
	DeleteEach(ctx context.Context, entities []E) ([]int, error)
}

// ReadWriter groups Reader and Writer.
type ReadWriter[K comparable, E any] interface {
	Reader[K, E]
	Writer[E]
}

// UniqueReader reads entities that carry a primary key and an additional,
// independently unique key.
type UniqueReader[PK comparable, UK comparable, E any] interface {
	GetByPrimaryKey(ctx context.Context, key PK) (E, error)
	GetByUniqueKey(ctx context.Context, key UK) (E, error)
	GetRangeByPrimaryKey(ctx context.Context, keys []PK) ([]E, error)
	GetRangeByUniqueKey(ctx context.Context, keys []UK) ([]E, error)
	GetAll(ctx context.Context) ([]E, error)
	GetAllPrimaryKeys(ctx context.Context) ([]PK, error)
	GetAllUniqueKeys(ctx context.Context) ([]UK, error)
}

// ContextReader is Reader with a caller supplied repository context, e.g. a
// connection or transaction handle, threaded through every call.
type ContextReader[RC any, K comparable, E any] interface {
	Get(ctx context.Context, rc RC, key K) (E, error)
	GetRange(ctx context.Context, rc RC, keys []K) ([]E, error)
	GetAll(ctx context.Context, rc RC) ([]E, error)
	GetAllKeys(ctx context.Context, rc RC) ([]K, error)
}

// ContextWriter is Writer with a repository context.
type ContextWriter[RC any, E any] interface {
	Insert(ctx context.Context, rc RC, entity E) (int, error)
	InsertRange(ctx context.Context, rc RC, entities []E) (int, error)
	Update(ctx context.Context, rc RC, entity E) (int, error)
	UpdateRange(ctx context.Context, rc RC, entities []E) (int, error)
	Delete(ctx context.Context, rc RC, entity E) (int, error)
	DeleteRange(ctx context.Context, rc RC, entities []E) (int, error)
}

// ContextItemizedWriter is ItemizedWriter with a repository context.
type ContextItemizedWriter[RC any, E any] interface {
	InsertEach(ctx context.Context, rc RC, entities []E) ([]int, error)
	UpdateEach(ctx context.Context, rc RC, entities []E) ([]int, error)
	DeleteEach(ctx context.Context, rc RC, entities []E) ([]int, error)
}

// ContextUniqueReader is UniqueReader with a repository context.
type ContextUniqueReader[RC any, PK comparable, UK comparable, E any] interface {
	GetByPrimaryKey(ctx context.Context, rc RC, key PK) (E, error)
	GetByUniqueKey(ctx context.Context, rc RC, key UK) (E, error)
	GetRangeByPrimaryKey(ctx context.Context, rc RC, keys []PK) ([]E, error)
	GetRangeByUniqueKey(ctx context.Context, rc RC, keys []UK) ([]E, error)
	GetAll(ctx context.Context, rc RC) ([]E, error)
	GetAllPrimaryKeys(ctx context.Context, rc RC) ([]PK, error)
	GetAllUniqueKeys(ctx context.Context, rc RC) ([]UK, error)
}

// TransactionScoper reports whether callers should wrap repository calls in
// an ambient transaction.
type TransactionScoper interface {
	UseTransactionScope() bool
}

// UsesTransactionScope returns v.UseTransactionScope() when v implements
// TransactionScoper and false otherwise.
func UsesTransactionScope(v any) bool {
	if s, ok := v.(TransactionScoper); ok {
		return s.UseTransactionScope()
	}
	return false
}
