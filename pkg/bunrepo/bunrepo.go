package bunrepo

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-data-repository/repository"
	bunrepository "github.com/goliatone/go-repository-bun"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// Source is the part of a go-repository-bun repository the adapters use.
type Source[T any] interface {
	GetByID(ctx context.Context, id string, criteria ...bunrepository.SelectCriteria) (T, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...bunrepository.SelectCriteria) (T, error)
	GetByIdentifier(ctx context.Context, identifier string, criteria ...bunrepository.SelectCriteria) (T, error)
	GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...bunrepository.SelectCriteria) (T, error)
	List(ctx context.Context, criteria ...bunrepository.SelectCriteria) ([]T, int, error)
	ListTx(ctx context.Context, tx bun.IDB, criteria ...bunrepository.SelectCriteria) ([]T, int, error)

	Create(ctx context.Context, record T, criteria ...bunrepository.InsertCriteria) (T, error)
	CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...bunrepository.InsertCriteria) (T, error)
	CreateMany(ctx context.Context, records []T, criteria ...bunrepository.InsertCriteria) ([]T, error)
	CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...bunrepository.InsertCriteria) ([]T, error)
	Update(ctx context.Context, record T, criteria ...bunrepository.UpdateCriteria) (T, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...bunrepository.UpdateCriteria) (T, error)
	UpdateMany(ctx context.Context, records []T, criteria ...bunrepository.UpdateCriteria) ([]T, error)
	UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...bunrepository.UpdateCriteria) ([]T, error)
	Delete(ctx context.Context, record T) error
	DeleteTx(ctx context.Context, tx bun.IDB, record T) error
}

var _ Source[struct{}] = bunrepository.Repository[struct{}](nil)

// Option configures an adapter.
type Option func(*settings)

type settings struct {
	isNotFound  func(error) bool
	concurrency int
	scoped      bool
}

// WithNotFound sets the predicate recognising not found errors of the
// source. The default matches sql.ErrNoRows.
func WithNotFound(fn func(error) bool) Option {
	return func(s *settings) {
		if fn != nil {
			s.isNotFound = fn
		}
	}
}

// WithConcurrency bounds the parallel lookups of range reads.
func WithConcurrency(n int) Option {
	return func(s *settings) { s.concurrency = n }
}

// WithTransactionScope sets the value reported by UseTransactionScope.
func WithTransactionScope(enabled bool) Option {
	return func(s *settings) { s.scoped = enabled }
}

func buildSettings(opts []Option) settings {
	s := settings{
		isNotFound:  func(err error) bool { return errors.Is(err, sql.ErrNoRows) },
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// core runs every operation either plainly (tx == nil) or through the
// matching *Tx method of the source.
type core[T any] struct {
	src      Source[T]
	keyOf    func(T) string
	settings settings
}

func (c *core[T]) get(ctx context.Context, tx bun.IDB, id string) (T, error) {
	var (
		record T
		err    error
	)
	if tx == nil {
		record, err = c.src.GetByID(ctx, id)
	} else {
		record, err = c.src.GetByIDTx(ctx, tx, id)
	}
	return record, c.translate(err, id)
}

func (c *core[T]) getByIdentifier(ctx context.Context, tx bun.IDB, identifier string) (T, error) {
	var (
		record T
		err    error
	)
	if tx == nil {
		record, err = c.src.GetByIdentifier(ctx, identifier)
	} else {
		record, err = c.src.GetByIdentifierTx(ctx, tx, identifier)
	}
	return record, c.translate(err, identifier)
}

// getRange looks keys up concurrently, skipping the ones not found.
func (c *core[T]) getRange(ctx context.Context, keys []string, lookup func(context.Context, string) (T, error)) ([]T, error) {
	found := make([]*T, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	if c.settings.concurrency > 0 {
		g.SetLimit(c.settings.concurrency)
	}
	for i, key := range keys {
		g.Go(func() error {
			record, err := lookup(gctx, key)
			if repository.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = &record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(keys))
	for _, record := range found {
		if record != nil {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (c *core[T]) list(ctx context.Context, tx bun.IDB) ([]T, error) {
	var (
		records []T
		err     error
	)
	if tx == nil {
		records, _, err = c.src.List(ctx)
	} else {
		records, _, err = c.src.ListTx(ctx, tx)
	}
	if err != nil {
		return nil, errors.Wrap(err, "bunrepo: list")
	}
	return records, nil
}

func (c *core[T]) keys(ctx context.Context, tx bun.IDB, keyOf func(T) string) ([]string, error) {
	records, err := c.list(ctx, tx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(records))
	for i, record := range records {
		keys[i] = keyOf(record)
	}
	return keys, nil
}

func (c *core[T]) create(ctx context.Context, tx bun.IDB, record T) (int, error) {
	var err error
	if tx == nil {
		_, err = c.src.Create(ctx, record)
	} else {
		_, err = c.src.CreateTx(ctx, tx, record)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "bunrepo: create %s", c.keyOf(record))
	}
	return 1, nil
}

func (c *core[T]) createMany(ctx context.Context, tx bun.IDB, records []T) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	var (
		created []T
		err     error
	)
	if tx == nil {
		created, err = c.src.CreateMany(ctx, records)
	} else {
		created, err = c.src.CreateManyTx(ctx, tx, records)
	}
	if err != nil {
		return 0, errors.Wrap(err, "bunrepo: create many")
	}
	return len(created), nil
}

// update reports zero affected entities when the source says the record
// does not exist.
func (c *core[T]) update(ctx context.Context, tx bun.IDB, record T) (int, error) {
	var err error
	if tx == nil {
		_, err = c.src.Update(ctx, record)
	} else {
		_, err = c.src.UpdateTx(ctx, tx, record)
	}
	return c.affected(err, "update", c.keyOf(record))
}

func (c *core[T]) updateMany(ctx context.Context, tx bun.IDB, records []T) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	var (
		updated []T
		err     error
	)
	if tx == nil {
		updated, err = c.src.UpdateMany(ctx, records)
	} else {
		updated, err = c.src.UpdateManyTx(ctx, tx, records)
	}
	if err != nil {
		return 0, errors.Wrap(err, "bunrepo: update many")
	}
	return len(updated), nil
}

func (c *core[T]) delete(ctx context.Context, tx bun.IDB, record T) (int, error) {
	var err error
	if tx == nil {
		err = c.src.Delete(ctx, record)
	} else {
		err = c.src.DeleteTx(ctx, tx, record)
	}
	return c.affected(err, "delete", c.keyOf(record))
}

func (c *core[T]) deleteMany(ctx context.Context, tx bun.IDB, records []T) (int, error) {
	total := 0
	for _, record := range records {
		n, err := c.delete(ctx, tx, record)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *core[T]) affected(err error, op, key string) (int, error) {
	switch {
	case err == nil:
		return 1, nil
	case c.settings.isNotFound(err):
		return 0, nil
	default:
		return 0, errors.Wrapf(err, "bunrepo: %s %s", op, key)
	}
}

func (c *core[T]) translate(err error, key string) error {
	switch {
	case err == nil:
		return nil
	case c.settings.isNotFound(err):
		return errors.Wrapf(repository.ErrNotFound, "bunrepo: key %s: %v", key, err)
	default:
		return errors.Wrapf(err, "bunrepo: get %s", key)
	}
}
