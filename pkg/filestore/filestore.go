package filestore

import (
	"context"
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tmthrgd/go-hex"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
)

const fileExt = ".msgpack"

var (
	_ repository.ReadWriter[int, any] = (*Store[int, any])(nil)
	_ repository.ItemizedWriter[any]  = (*Store[int, any])(nil)
)

// Options configures a Store.
type Options struct {
	// Dir overrides the entity sub-directory, which defaults to the snake_case
	// name of the entity type.
	Dir string
	// Serializer renders keys before hashing them into file names.
	Serializer cache.KeySerializer
	Logger     zerolog.Logger
	// ReadConcurrency bounds the parallel file reads of GetRange.
	ReadConcurrency int
}

// Option mutates Options.
type Option func(*Options)

func WithDir(dir string) Option {
	return func(o *Options) { o.Dir = dir }
}

func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(o *Options) { o.Serializer = serializer }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func WithReadConcurrency(n int) Option {
	return func(o *Options) { o.ReadConcurrency = n }
}

// Store keeps one msgpack file per entity. File names are the hex encoded
// xxhash of the serialized primary key.
type Store[K comparable, E any] struct {
	dir        string
	primaryKey func(E) K
	serializer cache.KeySerializer
	logger     zerolog.Logger
	readLimit  int

	// serializes writers; readers rely on atomic renames
	mu sync.Mutex
}

// New creates the entity directory under root if needed and returns a Store.
func New[K comparable, E any](root string, primaryKey func(E) K, opts ...Option) (*Store[K, E], error) {
	o := Options{
		Serializer:      cache.NewDefaultKeySerializer(),
		Logger:          zerolog.Nop(),
		ReadConcurrency: 8,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Dir == "" {
		o.Dir = entityDir[E]()
	}

	dir := filepath.Join(root, o.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "filestore: create %s", dir)
	}

	return &Store[K, E]{
		dir:        dir,
		primaryKey: primaryKey,
		serializer: o.Serializer,
		logger:     o.Logger.With().Str("component", "filestore").Str("dir", dir).Logger(),
		readLimit:  o.ReadConcurrency,
	}, nil
}

// Dir returns the directory holding the entity files.
func (s *Store[K, E]) Dir() string {
	return s.dir
}

func (s *Store[K, E]) Get(ctx context.Context, key K) (E, error) {
	var zero E
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	e, err := s.read(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return zero, errors.Wrapf(repository.ErrNotFound, "filestore: key %v", key)
	}
	return e, err
}

// GetRange reads the files of keys concurrently. Missing keys are skipped;
// the result follows the order of keys.
func (s *Store[K, E]) GetRange(ctx context.Context, keys []K) ([]E, error) {
	found := make([]*E, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	if s.readLimit > 0 {
		g.SetLimit(s.readLimit)
	}
	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := s.read(s.path(key))
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = &e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]E, 0, len(keys))
	for _, e := range found {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out, nil
}

// GetAll returns every stored entity in file name order.
func (s *Store[K, E]) GetAll(ctx context.Context) ([]E, error) {
	paths, err := s.files()
	if err != nil {
		return nil, err
	}

	out := make([]E, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := s.read(path)
		if errors.Is(err, fs.ErrNotExist) {
			// deleted since the directory was listed
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store[K, E]) GetAllKeys(ctx context.Context) ([]K, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]K, len(all))
	for i, e := range all {
		keys[i] = s.primaryKey(e)
	}
	return keys, nil
}

func (s *Store[K, E]) Insert(ctx context.Context, entity E) (int, error) {
	counts, err := s.InsertEach(ctx, []E{entity})
	return sum(counts), err
}

// InsertRange writes all entities or, when one of them exists, none.
func (s *Store[K, E]) InsertRange(ctx context.Context, entities []E) (int, error) {
	counts, err := s.InsertEach(ctx, entities)
	return sum(counts), err
}

func (s *Store[K, E]) InsertEach(ctx context.Context, entities []E) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		path := s.path(s.primaryKey(e))
		_, dup := seen[path]
		if dup || exists(path) {
			return nil, errors.Wrapf(repository.ErrAlreadyExists, "filestore: key %v", s.primaryKey(e))
		}
		seen[path] = struct{}{}
	}

	counts := make([]int, len(entities))
	for i, e := range entities {
		if err := s.write(e); err != nil {
			return counts, err
		}
		counts[i] = 1
	}
	return counts, nil
}

func (s *Store[K, E]) Update(ctx context.Context, entity E) (int, error) {
	counts, err := s.UpdateEach(ctx, []E{entity})
	return sum(counts), err
}

func (s *Store[K, E]) UpdateRange(ctx context.Context, entities []E) (int, error) {
	counts, err := s.UpdateEach(ctx, entities)
	return sum(counts), err
}

// UpdateEach rewrites the files of existing entities. Missing entities are
// reported with a zero count.
func (s *Store[K, E]) UpdateEach(ctx context.Context, entities []E) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make([]int, len(entities))
	for i, e := range entities {
		if !exists(s.path(s.primaryKey(e))) {
			continue
		}
		if err := s.write(e); err != nil {
			return counts, err
		}
		counts[i] = 1
	}
	return counts, nil
}

func (s *Store[K, E]) Delete(ctx context.Context, entity E) (int, error) {
	counts, err := s.DeleteEach(ctx, []E{entity})
	return sum(counts), err
}

func (s *Store[K, E]) DeleteRange(ctx context.Context, entities []E) (int, error) {
	counts, err := s.DeleteEach(ctx, entities)
	return sum(counts), err
}

func (s *Store[K, E]) DeleteEach(ctx context.Context, entities []E) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make([]int, len(entities))
	for i, e := range entities {
		err := os.Remove(s.path(s.primaryKey(e)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return counts, errors.Wrap(err, "filestore: delete")
		}
		counts[i] = 1
	}
	return counts, nil
}

// FileName returns the file name used for key.
func (s *Store[K, E]) FileName(key K) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], xxhash.Sum64String(s.serializer.SerializeKey("entity", key)))
	return hex.EncodeToString(buf[:]) + fileExt
}

func (s *Store[K, E]) path(key K) string {
	return filepath.Join(s.dir, s.FileName(key))
}

func (s *Store[K, E]) files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "filestore: list %s", s.dir)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, entry.Name()))
	}
	return paths, nil
}

func (s *Store[K, E]) read(path string) (E, error) {
	var e E
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return e, err
		}
		return e, errors.Wrapf(err, "filestore: read %s", filepath.Base(path))
	}
	if err := msgpack.Unmarshal(raw, &e); err != nil {
		return e, errors.Wrapf(err, "filestore: decode %s", filepath.Base(path))
	}
	return e, nil
}

// write must run with mu held.
func (s *Store[K, E]) write(e E) error {
	raw, err := msgpack.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "filestore: encode")
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "filestore: create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, "filestore: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "filestore: close temp file")
	}

	path := s.path(s.primaryKey(e))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "filestore: replace %s", filepath.Base(path))
	}
	s.logger.Debug().Str("file", filepath.Base(path)).Msg("entity written")
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func sum(counts []int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
