package repo

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// queryTimeout bounds every single repository call.
const queryTimeout = 3 * time.Second

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrCanvasNotFound        = errors.New("canvas not found")
	ErrDuplicatedValueUnique = errors.New("duplicated value for unique field")
)

// UniqueViolationError names the field whose unique constraint rejected a
// write. It matches ErrDuplicatedValueUnique with errors.Is.
type UniqueViolationError struct {
	Field string
}

func (e *UniqueViolationError) Error() string {
	return "unique constraint violation: " + e.Field + " already exists"
}

func (e *UniqueViolationError) Unwrap() error {
	return ErrDuplicatedValueUnique
}

const pgUniqueViolation = "23505"

// uniqueViolation converts a Postgres unique violation on the users table
// into a UniqueViolationError. Other errors are returned unchanged.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	field := "username"
	if strings.Contains(pgErr.ConstraintName, "email") {
		field = "email"
	}
	return &UniqueViolationError{Field: field}
}
