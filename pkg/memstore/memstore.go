package memstore

import (
	"context"
	"sync"

	"github.com/goliatone/go-data-repository/repository"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	_ repository.ReadWriter[int, any]           = (*Store[int, any])(nil)
	_ repository.ItemizedWriter[any]            = (*Store[int, any])(nil)
	_ repository.TransactionScoper              = (*Store[int, any])(nil)
	_ repository.UniqueReader[int, string, any] = (*UniqueStore[int, string, any])(nil)
)

// Hook runs before every repository call. A non nil error aborts the call.
type Hook func(ctx context.Context, method string) error

// Option configures a Store.
type Option func(*config)

type config struct {
	hook             Hook
	transactionScope bool
}

// WithHook installs fn to run before every call.
func WithHook(fn Hook) Option {
	return func(c *config) {
		c.hook = fn
	}
}

// WithTransactionScope sets the value reported by UseTransactionScope.
func WithTransactionScope(enabled bool) Option {
	return func(c *config) {
		c.transactionScope = enabled
	}
}

// Store is an in-memory repository. Entities are held msgpack encoded, so
// callers never share memory with the store. Every call is counted per
// method name.
type Store[K comparable, E any] struct {
	mu         sync.RWMutex
	primaryKey func(E) K
	rows       map[K][]byte
	order      []K

	// set by NewUnique
	uniqueOf    func(E) any
	uniqueByKey map[K]any
	keyByUnique map[any]K

	cfg      config
	calls    *xsync.MapOf[string, *xsync.Counter]
	failures *xsync.MapOf[string, error]
}

// New creates an empty Store keyed by primaryKey.
func New[K comparable, E any](primaryKey func(E) K, opts ...Option) *Store[K, E] {
	s := &Store[K, E]{
		primaryKey: primaryKey,
		rows:       make(map[K][]byte),
		calls:      xsync.NewMapOf[string, *xsync.Counter](),
		failures:   xsync.NewMapOf[string, error](),
	}
	for _, opt := range opts {
		opt(&s.cfg)
	}
	return s
}

// Seed stores entities without counting calls, replacing existing ones.
func (s *Store[K, E]) Seed(entities ...E) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entities {
		if err := s.put(e); err != nil {
			return err
		}
	}
	return nil
}

// Calls returns how many times method was called.
func (s *Store[K, E]) Calls(method string) int64 {
	if c, ok := s.calls.Load(method); ok {
		return c.Value()
	}
	return 0
}

// ResetCalls zeroes every call counter.
func (s *Store[K, E]) ResetCalls() {
	s.calls.Range(func(_ string, c *xsync.Counter) bool {
		c.Reset()
		return true
	})
}

// FailNext makes the next call of method return err without touching data.
func (s *Store[K, E]) FailNext(method string, err error) {
	s.failures.Store(method, err)
}

// Len returns the number of stored entities.
func (s *Store[K, E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *Store[K, E]) UseTransactionScope() bool {
	return s.cfg.transactionScope
}

func (s *Store[K, E]) Get(ctx context.Context, key K) (E, error) {
	var zero E
	if err := s.enter(ctx, "Get"); err != nil {
		return zero, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.rows[key]
	if !ok {
		return zero, errors.Wrapf(repository.ErrNotFound, "memstore: key %v", key)
	}
	return decode[E](raw)
}

func (s *Store[K, E]) GetRange(ctx context.Context, keys []K) ([]E, error) {
	if err := s.enter(ctx, "GetRange"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]E, 0, len(keys))
	for _, key := range keys {
		raw, ok := s.rows[key]
		if !ok {
			continue
		}
		e, err := decode[E](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store[K, E]) GetAll(ctx context.Context) ([]E, error) {
	if err := s.enter(ctx, "GetAll"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.all()
}

func (s *Store[K, E]) GetAllKeys(ctx context.Context) ([]K, error) {
	if err := s.enter(ctx, "GetAllKeys"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]K(nil), s.order...), nil
}

// Insert fails with repository.ErrAlreadyExists when the key is taken.
func (s *Store[K, E]) Insert(ctx context.Context, entity E) (int, error) {
	counts, err := s.insert(ctx, "Insert", []E{entity})
	return sum(counts), err
}

// InsertRange inserts all entities or none of them.
func (s *Store[K, E]) InsertRange(ctx context.Context, entities []E) (int, error) {
	counts, err := s.insert(ctx, "InsertRange", entities)
	return sum(counts), err
}

func (s *Store[K, E]) InsertEach(ctx context.Context, entities []E) ([]int, error) {
	return s.insert(ctx, "InsertEach", entities)
}

// Update replaces a stored entity. Missing entities affect nothing.
func (s *Store[K, E]) Update(ctx context.Context, entity E) (int, error) {
	counts, err := s.update(ctx, "Update", []E{entity})
	return sum(counts), err
}

func (s *Store[K, E]) UpdateRange(ctx context.Context, entities []E) (int, error) {
	counts, err := s.update(ctx, "UpdateRange", entities)
	return sum(counts), err
}

func (s *Store[K, E]) UpdateEach(ctx context.Context, entities []E) ([]int, error) {
	return s.update(ctx, "UpdateEach", entities)
}

// Delete removes a stored entity. Missing entities affect nothing.
func (s *Store[K, E]) Delete(ctx context.Context, entity E) (int, error) {
	counts, err := s.delete(ctx, "Delete", []E{entity})
	return sum(counts), err
}

func (s *Store[K, E]) DeleteRange(ctx context.Context, entities []E) (int, error) {
	counts, err := s.delete(ctx, "DeleteRange", entities)
	return sum(counts), err
}

func (s *Store[K, E]) DeleteEach(ctx context.Context, entities []E) ([]int, error) {
	return s.delete(ctx, "DeleteEach", entities)
}

func (s *Store[K, E]) insert(ctx context.Context, method string, entities []E) ([]int, error) {
	if err := s.enter(ctx, method); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[K]struct{}, len(entities))
	for _, e := range entities {
		key := s.primaryKey(e)
		_, dup := seen[key]
		if _, exists := s.rows[key]; exists || dup {
			return nil, errors.Wrapf(repository.ErrAlreadyExists, "memstore: key %v", key)
		}
		if err := s.checkUnique(key, e); err != nil {
			return nil, err
		}
		seen[key] = struct{}{}
	}

	counts := make([]int, len(entities))
	for i, e := range entities {
		if err := s.put(e); err != nil {
			return nil, err
		}
		counts[i] = 1
	}
	return counts, nil
}

func (s *Store[K, E]) update(ctx context.Context, method string, entities []E) ([]int, error) {
	if err := s.enter(ctx, method); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// validate the whole batch before the first put
	counts := make([]int, len(entities))
	claimed := make(map[any]K)
	for i, e := range entities {
		key := s.primaryKey(e)
		if _, exists := s.rows[key]; !exists {
			continue
		}
		if err := s.checkUnique(key, e); err != nil {
			return nil, err
		}
		if s.uniqueOf != nil {
			u := s.uniqueOf(e)
			if holder, ok := claimed[u]; ok && holder != key {
				return nil, errors.Wrapf(repository.ErrAlreadyExists, "memstore: unique key %v", u)
			}
			claimed[u] = key
		}
		counts[i] = 1
	}

	for i, e := range entities {
		if counts[i] == 0 {
			continue
		}
		if err := s.put(e); err != nil {
			return nil, err
		}
	}
	return counts, nil
}

func (s *Store[K, E]) delete(ctx context.Context, method string, entities []E) ([]int, error) {
	if err := s.enter(ctx, method); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make([]int, len(entities))
	for i, e := range entities {
		key := s.primaryKey(e)
		if _, exists := s.rows[key]; !exists {
			continue
		}
		s.remove(key)
		counts[i] = 1
	}
	return counts, nil
}

// enter counts the call, runs the hook and consumes a pending failure.
func (s *Store[K, E]) enter(ctx context.Context, method string) error {
	counter, _ := s.calls.LoadOrCompute(method, xsync.NewCounter)
	counter.Inc()

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.hook != nil {
		if err := s.cfg.hook(ctx, method); err != nil {
			return err
		}
	}
	if err, ok := s.failures.LoadAndDelete(method); ok {
		return err
	}
	return nil
}

// put must run with mu held for writing.
func (s *Store[K, E]) put(e E) error {
	raw, err := msgpack.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "memstore: encode entity")
	}
	key := s.primaryKey(e)
	if _, exists := s.rows[key]; !exists {
		s.order = append(s.order, key)
	}
	s.rows[key] = raw

	if s.uniqueOf != nil {
		if old, ok := s.uniqueByKey[key]; ok {
			delete(s.keyByUnique, old)
		}
		u := s.uniqueOf(e)
		s.uniqueByKey[key] = u
		s.keyByUnique[u] = key
	}
	return nil
}

// remove must run with mu held for writing.
func (s *Store[K, E]) remove(key K) {
	delete(s.rows, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.uniqueOf != nil {
		if u, ok := s.uniqueByKey[key]; ok {
			delete(s.keyByUnique, u)
			delete(s.uniqueByKey, key)
		}
	}
}

// checkUnique reports a conflict when another entity holds the unique key of e.
func (s *Store[K, E]) checkUnique(key K, e E) error {
	if s.uniqueOf == nil {
		return nil
	}
	u := s.uniqueOf(e)
	if holder, ok := s.keyByUnique[u]; ok && holder != key {
		return errors.Wrapf(repository.ErrAlreadyExists, "memstore: unique key %v", u)
	}
	return nil
}

// all must run with mu held.
func (s *Store[K, E]) all() ([]E, error) {
	out := make([]E, 0, len(s.order))
	for _, key := range s.order {
		e, err := decode[E](s.rows[key])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decode[E any](raw []byte) (E, error) {
	var e E
	if err := msgpack.Unmarshal(raw, &e); err != nil {
		return e, errors.Wrap(err, "memstore: decode entity")
	}
	return e, nil
}

func sum(counts []int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
