package errorz

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConstraintViolated = errors.New("constraint violated")
	ErrUnavailable        = errors.New("unavailable")
)

// MapDBErr maps database errors to appropriate errorz errors.
// If err is nil, MapDBErr returns nil.
//
// Errors that are not a missing row or a constraint violation are
// wrapped with ErrUnavailable, the original error is kept in the chain.
func MapDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	if isConstraintErr(err) {
		return fmt.Errorf("%w: %w", ErrConstraintViolated, err)
	}

	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// isConstraintErr reports whether err is a constraint error reported
// by either of the supported SQLite drivers.
func isConstraintErr(err error) bool {
	cgoErr := sqlite3.Error{}
	if errors.As(err, &cgoErr) {
		return cgoErr.Code == sqlite3.ErrConstraint
	}

	var pureErr *sqlite.Error
	if errors.As(err, &pureErr) {
		// Code can hold an extended result code, the primary
		// code is found in the lower 8 bits.
		return pureErr.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT
	}

	return false
}
