package sqlstore

import (
	"database/sql"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-data-repository/cache"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config describes the database a Store talks to.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.MaxOpenConns, validation.Min(0)),
	)
	return cache.AsConfigError(err)
}

// Open validates cfg and returns a bun database with the matching dialect.
func Open(cfg Config) (*bun.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlstore: open %s", cfg.Driver)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == DriverSQLite && maxOpen == 0 {
		// every connection to an in-memory sqlite database sees its own data
		maxOpen = 1
	}
	sqldb.SetMaxOpenConns(maxOpen)

	switch cfg.Driver {
	case DriverPostgres:
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}
