package repository

import "errors"

var (
	// ErrNotFound is returned by Get style lookups when no entity exists for the key.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned by inserts when the key is already taken.
	ErrAlreadyExists = errors.New("entity already exists")
)

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is, or wraps, ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
