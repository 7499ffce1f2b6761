package sqlstore

import (
	"context"

	"github.com/goliatone/go-data-repository/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

var (
	_ repository.ContextReader[bun.IDB, int, any]               = (*ContextStore[int, any])(nil)
	_ repository.ContextWriter[bun.IDB, any]                    = (*ContextStore[int, any])(nil)
	_ repository.ContextItemizedWriter[bun.IDB, any]            = (*ContextStore[int, any])(nil)
	_ repository.ContextUniqueReader[bun.IDB, int, string, any] = (*ContextUniqueStore[int, string, any])(nil)
)

// ContextStore runs every operation against the bun.IDB handed in by the
// caller, so the same store serves plain connections and transactions. E
// must be a struct type mapped with bun tags.
type ContextStore[K comparable, E any] struct {
	keyColumn  string
	primaryKey func(E) K
	scoped     bool
	logger     zerolog.Logger
}

func (s *ContextStore[K, E]) Get(ctx context.Context, db bun.IDB, key K) (E, error) {
	var e E
	err := db.NewSelect().
		Model(&e).
		Where("? = ?", bun.Ident(s.keyColumn), key).
		Limit(1).
		Scan(ctx)
	return e, translate(err, "get", key)
}

// GetRange returns the stored entities for keys in key order. Missing keys
// are skipped.
func (s *ContextStore[K, E]) GetRange(ctx context.Context, db bun.IDB, keys []K) ([]E, error) {
	if len(keys) == 0 {
		return []E{}, nil
	}

	var found []E
	err := db.NewSelect().
		Model(&found).
		Where("? IN (?)", bun.Ident(s.keyColumn), bun.In(keys)).
		Scan(ctx)
	if err != nil {
		return nil, translate(err, "get range", len(keys))
	}
	return orderByKeys(found, keys, s.primaryKey), nil
}

func (s *ContextStore[K, E]) GetAll(ctx context.Context, db bun.IDB) ([]E, error) {
	var all []E
	err := db.NewSelect().
		Model(&all).
		OrderExpr("? ASC", bun.Ident(s.keyColumn)).
		Scan(ctx)
	if err != nil {
		return nil, translate(err, "get all", "")
	}
	return all, nil
}

func (s *ContextStore[K, E]) GetAllKeys(ctx context.Context, db bun.IDB) ([]K, error) {
	var keys []K
	err := db.NewSelect().
		Model((*E)(nil)).
		Column(s.keyColumn).
		OrderExpr("? ASC", bun.Ident(s.keyColumn)).
		Scan(ctx, &keys)
	if err != nil {
		return nil, translate(err, "get all keys", "")
	}
	return keys, nil
}

func (s *ContextStore[K, E]) Insert(ctx context.Context, db bun.IDB, entity E) (int, error) {
	res, err := db.NewInsert().Model(&entity).Exec(ctx)
	if err != nil {
		return 0, translate(err, "insert", s.primaryKey(entity))
	}
	return affected(res)
}

// InsertRange inserts entities with one statement, so either all or none of
// them are stored.
func (s *ContextStore[K, E]) InsertRange(ctx context.Context, db bun.IDB, entities []E) (int, error) {
	if len(entities) == 0 {
		return 0, nil
	}
	res, err := db.NewInsert().Model(&entities).Exec(ctx)
	if err != nil {
		return 0, translate(err, "insert range", len(entities))
	}
	return affected(res)
}

func (s *ContextStore[K, E]) Update(ctx context.Context, db bun.IDB, entity E) (int, error) {
	res, err := db.NewUpdate().Model(&entity).WherePK().Exec(ctx)
	if err != nil {
		return 0, translate(err, "update", s.primaryKey(entity))
	}
	return affected(res)
}

func (s *ContextStore[K, E]) UpdateRange(ctx context.Context, db bun.IDB, entities []E) (int, error) {
	counts, err := s.UpdateEach(ctx, db, entities)
	return sum(counts), err
}

func (s *ContextStore[K, E]) Delete(ctx context.Context, db bun.IDB, entity E) (int, error) {
	res, err := db.NewDelete().Model(&entity).WherePK().Exec(ctx)
	if err != nil {
		return 0, translate(err, "delete", s.primaryKey(entity))
	}
	return affected(res)
}

func (s *ContextStore[K, E]) DeleteRange(ctx context.Context, db bun.IDB, entities []E) (int, error) {
	if len(entities) == 0 {
		return 0, nil
	}
	res, err := db.NewDelete().Model(&entities).WherePK().Exec(ctx)
	if err != nil {
		return 0, translate(err, "delete range", len(entities))
	}
	return affected(res)
}

// InsertEach inserts entities one by one inside a transaction.
func (s *ContextStore[K, E]) InsertEach(ctx context.Context, db bun.IDB, entities []E) ([]int, error) {
	return s.each(ctx, db, entities, s.Insert)
}

// UpdateEach updates entities one by one inside a transaction.
func (s *ContextStore[K, E]) UpdateEach(ctx context.Context, db bun.IDB, entities []E) ([]int, error) {
	return s.each(ctx, db, entities, s.Update)
}

// DeleteEach deletes entities one by one inside a transaction.
func (s *ContextStore[K, E]) DeleteEach(ctx context.Context, db bun.IDB, entities []E) ([]int, error) {
	return s.each(ctx, db, entities, s.Delete)
}

func (s *ContextStore[K, E]) UseTransactionScope() bool {
	return s.scoped
}

// CreateSchema creates the table of E when it does not exist.
func (s *ContextStore[K, E]) CreateSchema(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*E)(nil)).IfNotExists().Exec(ctx)
	return errors.Wrap(err, "sqlstore: create schema")
}

func (s *ContextStore[K, E]) each(
	ctx context.Context,
	db bun.IDB,
	entities []E,
	op func(context.Context, bun.IDB, E) (int, error),
) ([]int, error) {
	if len(entities) == 0 {
		return []int{}, nil
	}

	counts := make([]int, len(entities))
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i, e := range entities {
			n, err := op(ctx, tx, e)
			if err != nil {
				return err
			}
			counts[i] = n
		}
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Int("entities", len(entities)).Msg("batch rolled back")
		return nil, err
	}
	return counts, nil
}

// ContextUniqueStore is a ContextStore that also reads by a unique column.
type ContextUniqueStore[PK comparable, UK comparable, E any] struct {
	*ContextStore[PK, E]
	uniqueColumn string
	uniqueKey    func(E) UK
}

func (s *ContextUniqueStore[PK, UK, E]) GetByPrimaryKey(ctx context.Context, db bun.IDB, key PK) (E, error) {
	return s.Get(ctx, db, key)
}

func (s *ContextUniqueStore[PK, UK, E]) GetByUniqueKey(ctx context.Context, db bun.IDB, key UK) (E, error) {
	var e E
	err := db.NewSelect().
		Model(&e).
		Where("? = ?", bun.Ident(s.uniqueColumn), key).
		Limit(1).
		Scan(ctx)
	return e, translate(err, "get by unique key", key)
}

func (s *ContextUniqueStore[PK, UK, E]) GetRangeByPrimaryKey(ctx context.Context, db bun.IDB, keys []PK) ([]E, error) {
	return s.GetRange(ctx, db, keys)
}

func (s *ContextUniqueStore[PK, UK, E]) GetRangeByUniqueKey(ctx context.Context, db bun.IDB, keys []UK) ([]E, error) {
	if len(keys) == 0 {
		return []E{}, nil
	}

	var found []E
	err := db.NewSelect().
		Model(&found).
		Where("? IN (?)", bun.Ident(s.uniqueColumn), bun.In(keys)).
		Scan(ctx)
	if err != nil {
		return nil, translate(err, "get range by unique key", len(keys))
	}
	return orderByKeys(found, keys, s.uniqueKey), nil
}

func (s *ContextUniqueStore[PK, UK, E]) GetAllPrimaryKeys(ctx context.Context, db bun.IDB) ([]PK, error) {
	return s.GetAllKeys(ctx, db)
}

func (s *ContextUniqueStore[PK, UK, E]) GetAllUniqueKeys(ctx context.Context, db bun.IDB) ([]UK, error) {
	var keys []UK
	err := db.NewSelect().
		Model((*E)(nil)).
		Column(s.uniqueColumn).
		OrderExpr("? ASC", bun.Ident(s.keyColumn)).
		Scan(ctx, &keys)
	if err != nil {
		return nil, translate(err, "get all unique keys", "")
	}
	return keys, nil
}

func orderByKeys[K comparable, E any](found []E, keys []K, keyOf func(E) K) []E {
	byKey := make(map[K]E, len(found))
	for _, e := range found {
		byKey[keyOf(e)] = e
	}
	out := make([]E, 0, len(found))
	for _, key := range keys {
		if e, ok := byKey[key]; ok {
			out = append(out, e)
			delete(byKey, key)
		}
	}
	return out
}

func affected(res interface{ RowsAffected() (int64, error) }) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "sqlstore: rows affected")
	}
	return int(n), nil
}

func sum(counts []int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
