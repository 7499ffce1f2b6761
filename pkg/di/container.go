package di

import (
	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/repository"
	"github.com/goliatone/go-data-repository/repositorycache"
	"github.com/rs/zerolog"
)

// Container provides dependency injection for cache related components.
// It holds the validated cache configuration, the logger and the key
// serializer shared by every cached repository it builds.
type Container struct {
	config        cache.Config
	logger        zerolog.Logger
	keySerializer cache.KeySerializer
}

// ContainerOption configures a Container.
type ContainerOption func(*Container)

// WithLogger sets the logger handed to every decorator built by the
// container.
func WithLogger(logger zerolog.Logger) ContainerOption {
	return func(c *Container) { c.logger = logger }
}

// WithKeySerializer replaces the default key serializer.
func WithKeySerializer(serializer cache.KeySerializer) ContainerOption {
	return func(c *Container) {
		if serializer != nil {
			c.keySerializer = serializer
		}
	}
}

// NewContainer creates a new DI container with the provided cache
// configuration. The configuration is validated up front so decorators never
// see an invalid one.
func NewContainer(config cache.Config, opts ...ContainerOption) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		config:        config,
		logger:        zerolog.Nop(),
		keySerializer: cache.NewDefaultKeySerializer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewContainerWithDefaults creates a new DI container using default configuration.
func NewContainerWithDefaults(opts ...ContainerOption) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

func (c *Container) Logger() zerolog.Logger {
	return c.logger
}

// options returns the decorator options of the container followed by extra,
// so callers can override them per repository.
func (c *Container) options(extra []repositorycache.Option) []repositorycache.Option {
	opts := []repositorycache.Option{
		repositorycache.WithConfig(c.config),
		repositorycache.WithLogger(c.logger),
		repositorycache.WithKeySerializer(c.keySerializer),
	}
	return append(opts, extra...)
}

// NewCachedRepository wraps base with a read-through cache keyed by
// primaryKey.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewCachedRepository(container, userRepository, User.Key)
func NewCachedRepository[K comparable, E any](
	container *Container,
	base repository.ReadWriter[K, E],
	primaryKey func(E) K,
	opts ...repositorycache.Option,
) *repositorycache.CachedRepository[K, E] {
	return repositorycache.New(base, primaryKey, container.options(opts)...)
}

// NewCachedUniqueRepository wraps base with a cache indexed by primary and
// unique key.
func NewCachedUniqueRepository[PK comparable, UK comparable, E any](
	container *Container,
	base repositorycache.UniqueReadWriter[PK, UK, E],
	primaryKey func(E) PK,
	uniqueKey func(E) UK,
	opts ...repositorycache.Option,
) *repositorycache.CachedUniqueRepository[PK, UK, E] {
	return repositorycache.NewUnique(base, primaryKey, uniqueKey, container.options(opts)...)
}

// ContextReadWriter is a repository taking a repository context on every call.
type ContextReadWriter[RC any, K comparable, E any] interface {
	repository.ContextReader[RC, K, E]
	repository.ContextWriter[RC, E]
}

// ContextRepository is a cached reader and writer over one store.
type ContextRepository[RC any, K comparable, E any] struct {
	Reader *repositorycache.CachedContextReader[RC, K, E]
	Writer *repositorycache.CachedContextWriter[RC, E]
	Store  *cache.Store[K, cache.NoUniqueKey, E]
}

// NewCachedContextRepository wraps a context taking repository. The reader
// and writer share one store so writes invalidate what reads cached.
func NewCachedContextRepository[RC any, K comparable, E any](
	container *Container,
	base ContextReadWriter[RC, K, E],
	primaryKey func(E) K,
	opts ...repositorycache.Option,
) *ContextRepository[RC, K, E] {
	store := cache.NewStore(primaryKey)
	all := container.options(opts)
	return &ContextRepository[RC, K, E]{
		Reader: repositorycache.NewContextReader[RC, K, E](base, store.ByPrimaryKey(), all...),
		Writer: repositorycache.NewContextWriter[RC, E](base, store, all...),
		Store:  store,
	}
}

// ContextUniqueReadWriter is a context taking repository readable by
// primary and unique key.
type ContextUniqueReadWriter[RC any, PK comparable, UK comparable, E any] interface {
	repository.ContextUniqueReader[RC, PK, UK, E]
	repository.ContextWriter[RC, E]
}

// ContextUniqueRepository is a cached unique reader and writer over one
// store.
type ContextUniqueRepository[RC any, PK comparable, UK comparable, E any] struct {
	Reader *repositorycache.CachedContextUniqueReader[RC, PK, UK, E]
	Writer *repositorycache.CachedContextWriter[RC, E]
	Store  *cache.Store[PK, UK, E]
}

// NewCachedContextUniqueRepository is NewCachedContextRepository for
// repositories with a unique key.
func NewCachedContextUniqueRepository[RC any, PK comparable, UK comparable, E any](
	container *Container,
	base ContextUniqueReadWriter[RC, PK, UK, E],
	primaryKey func(E) PK,
	uniqueKey func(E) UK,
	opts ...repositorycache.Option,
) *ContextUniqueRepository[RC, PK, UK, E] {
	store := cache.NewUniqueStore(primaryKey, uniqueKey)
	all := container.options(opts)
	return &ContextUniqueRepository[RC, PK, UK, E]{
		Reader: repositorycache.NewContextUniqueReader[RC, PK, UK, E](base, store, all...),
		Writer: repositorycache.NewContextWriter[RC, E](base, store, all...),
		Store:  store,
	}
}
