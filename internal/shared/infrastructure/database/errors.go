package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNoRows is returned when a single-row query matches nothing.
var ErrNoRows = errors.New("no rows in result set")

// IsNoRows reports whether err means an empty result, regardless of
// which driver produced it.
func IsNoRows(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, ErrNoRows)
}

// uniqueViolationCheckers are installed by the driver packages, which
// know their backend's error codes.
var uniqueViolationCheckers []func(error) bool

// RegisterUniqueViolationChecker installs a driver-specific check used
// by IsUniqueViolation.
func RegisterUniqueViolationChecker(fn func(error) bool) {
	uniqueViolationCheckers = append(uniqueViolationCheckers, fn)
}

// IsUniqueViolation reports whether err is a unique constraint failure,
// regardless of which driver produced it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	for _, check := range uniqueViolationCheckers {
		if check(err) {
			return true
		}
	}
	return false
}
