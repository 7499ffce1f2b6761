package memstore

import (
	"context"

	"github.com/goliatone/go-data-repository/repository"
	"github.com/pkg/errors"
)

// UniqueStore is a Store that also indexes entities by a unique key.
// Inserts and updates that would give two entities the same unique key fail
// with repository.ErrAlreadyExists.
type UniqueStore[PK comparable, UK comparable, E any] struct {
	*Store[PK, E]
}

// NewUnique creates an empty UniqueStore.
func NewUnique[PK comparable, UK comparable, E any](primaryKey func(E) PK, uniqueKey func(E) UK, opts ...Option) *UniqueStore[PK, UK, E] {
	s := New(primaryKey, opts...)
	s.uniqueOf = func(e E) any { return uniqueKey(e) }
	s.uniqueByKey = make(map[PK]any)
	s.keyByUnique = make(map[any]PK)
	return &UniqueStore[PK, UK, E]{Store: s}
}

func (s *UniqueStore[PK, UK, E]) GetByPrimaryKey(ctx context.Context, key PK) (E, error) {
	return s.Get(ctx, key)
}

func (s *UniqueStore[PK, UK, E]) GetByUniqueKey(ctx context.Context, key UK) (E, error) {
	var zero E
	if err := s.enter(ctx, "GetByUniqueKey"); err != nil {
		return zero, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	pk, ok := s.keyByUnique[key]
	if !ok {
		return zero, errors.Wrapf(repository.ErrNotFound, "memstore: unique key %v", key)
	}
	return decode[E](s.rows[pk])
}

func (s *UniqueStore[PK, UK, E]) GetRangeByPrimaryKey(ctx context.Context, keys []PK) ([]E, error) {
	return s.GetRange(ctx, keys)
}

func (s *UniqueStore[PK, UK, E]) GetRangeByUniqueKey(ctx context.Context, keys []UK) ([]E, error) {
	if err := s.enter(ctx, "GetRangeByUniqueKey"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]E, 0, len(keys))
	for _, key := range keys {
		pk, ok := s.keyByUnique[key]
		if !ok {
			continue
		}
		e, err := decode[E](s.rows[pk])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *UniqueStore[PK, UK, E]) GetAllPrimaryKeys(ctx context.Context) ([]PK, error) {
	return s.GetAllKeys(ctx)
}

func (s *UniqueStore[PK, UK, E]) GetAllUniqueKeys(ctx context.Context) ([]UK, error) {
	if err := s.enter(ctx, "GetAllUniqueKeys"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]UK, 0, len(s.order))
	for _, pk := range s.order {
		out = append(out, s.uniqueByKey[pk].(UK))
	}
	return out, nil
}
