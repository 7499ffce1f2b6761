package repositorycache

import (
	"github.com/goliatone/go-data-repository/cache"
	"github.com/rs/zerolog"
)

// Option configures a cached repository decorator.
type Option func(*options)

type options struct {
	config     cache.Config
	logger     zerolog.Logger
	serializer cache.KeySerializer
	name       string
}

func defaultOptions() options {
	return options{
		config:     cache.DefaultConfig(),
		logger:     zerolog.Nop(),
		serializer: cache.NewDefaultKeySerializer(),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithConfig sets the cache behaviour. Unset fields fall back to the defaults.
func WithConfig(cfg cache.Config) Option {
	return func(o *options) {
		def := cache.DefaultConfig()
		if cfg.InsertPolicy == "" {
			cfg.InsertPolicy = def.InsertPolicy
		}
		if cfg.BatchInvalidation == "" {
			cfg.BatchInvalidation = def.BatchInvalidation
		}
		o.config = cfg
	}
}

// WithLogger sets the logger used for cache events. By default nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithKeySerializer sets the serializer used for log fields and coalescing keys.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(o *options) {
		if serializer != nil {
			o.serializer = serializer
		}
	}
}

// WithName names the decorated repository in log events.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func (o options) componentLogger(component string) zerolog.Logger {
	ctx := o.logger.With().Str("component", component)
	if o.name != "" {
		ctx = ctx.Str("repository", o.name)
	}
	return ctx.Logger()
}
