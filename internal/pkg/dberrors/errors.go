package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation         = "23505"
	foreignKeyViolation     = "23503"
	serializationFailure    = "40001"
	deadlockDetectedFailure = "40P01"
)

func pgCode(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsDuplicateConstraintError reports a unique violation on the named constraint.
// An empty constraint name matches any unique violation.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	pgErr, ok := pgCode(err)
	if !ok || pgErr.Code != uniqueViolation {
		return false
	}
	return constraintName == "" || pgErr.ConstraintName == constraintName
}

// IsForeignKeyViolation reports a foreign key violation (missing referenced row)
func IsForeignKeyViolation(err error) bool {
	pgErr, ok := pgCode(err)
	return ok && pgErr.Code == foreignKeyViolation
}

// IsSerializationFailure reports transactions aborted by SERIALIZABLE conflict detection
func IsSerializationFailure(err error) bool {
	pgErr, ok := pgCode(err)
	return ok && (pgErr.Code == serializationFailure || pgErr.Code == deadlockDetectedFailure)
}
