package services

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrValidation covers bad input shape or range (negative price, empty
	// image upload, missing fields).
	ErrValidation = errors.New("invalid input")

	// ErrConflict is returned when a registration collides with an existing
	// username or email.
	ErrConflict = errors.New("username or email already taken")

	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated means the operation needs a logged-in user.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotFound deliberately collapses "does not exist" and "not yours"
	// into one signal so ownership checks never reveal whether a record
	// exists.
	ErrNotFound = errors.New("not found or no permission")

	ErrAlreadyRated = errors.New("product already rated")
)

const mysqlDuplicateEntry = 1062

// isDuplicateEntry reports whether err is a MySQL unique-constraint
// violation. The constraint, not any pre-check, is what enforces
// uniqueness under concurrent requests.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
