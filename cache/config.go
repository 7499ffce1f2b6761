package cache

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// InsertPolicy selects what the write decorator does with the cache after a
// successful insert.
type InsertPolicy string

const (
	// InsertInvalidate drops any cached entry for the inserted key; the next
	// read fetches and caches it.
	InsertInvalidate InsertPolicy = "invalidate"
	// InsertPopulate caches the inserted entity when the store reports it
	// as affected.
	InsertPopulate InsertPolicy = "populate"
)

// BatchInvalidation selects which entities of a batch write are invalidated.
type BatchInvalidation string

const (
	// InvalidateAffected invalidates only the entities the underlying
	// writer reports as affected. It needs a repository.ItemizedWriter and
	// falls back to InvalidateRequested otherwise.
	InvalidateAffected BatchInvalidation = "affected"
	// InvalidateRequested invalidates every entity of the batch.
	InvalidateRequested BatchInvalidation = "requested"
)

// Config exposes cache behaviour options for the repository decorators.
type Config struct {
	InsertPolicy      InsertPolicy
	BatchInvalidation BatchInvalidation

	// CoalesceMisses makes concurrent misses for the same key share one
	// underlying fetch.
	CoalesceMisses bool
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		InsertPolicy:      InsertInvalidate,
		BatchInvalidation: InvalidateAffected,
		CoalesceMisses:    false,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.InsertPolicy, validation.Required, validation.In(InsertInvalidate, InsertPopulate)),
		validation.Field(&c.BatchInvalidation, validation.Required, validation.In(InvalidateAffected, InvalidateRequested)),
	)
	return AsConfigError(err)
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// AsConfigError reports the first failing field, in field name order, of an
// ozzo validation result as a *ConfigError.
func AsConfigError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	first := fields[0]
	return &ConfigError{Field: first, Message: fieldErrs[first].Error()}
}
