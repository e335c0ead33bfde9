package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "agents_pkey"})
	fk := &pgconn.PgError{Code: "23503"}
	serial := &pgconn.PgError{Code: "40001"}

	assert.True(t, IsDuplicateConstraintError(unique, "agents_pkey"))
	assert.True(t, IsDuplicateConstraintError(unique, ""))
	assert.False(t, IsDuplicateConstraintError(unique, "students_pkey"))
	assert.False(t, IsDuplicateConstraintError(fk, ""))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(unique))

	assert.True(t, IsSerializationFailure(serial))
	assert.False(t, IsSerializationFailure(errors.New("boom")))
}
