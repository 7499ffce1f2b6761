package sqlstore

import (
	"database/sql"

	"github.com/goliatone/go-data-repository/repository"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const pqUniqueViolation = "23505"

// translate maps driver errors onto the repository error values and wraps
// everything else with the failing operation.
func translate(err error, op string, key any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return errors.Wrapf(repository.ErrNotFound, "sqlstore: %s %v", op, key)
	case isDuplicate(err):
		return errors.Wrapf(repository.ErrAlreadyExists, "sqlstore: %s %v: %v", op, key, err)
	default:
		return errors.Wrapf(err, "sqlstore: %s", op)
	}
}

func isDuplicate(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint &&
			(liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
