package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/db"
	"github.com/edvios/backend/internal/pkg/apperrors"
	"github.com/edvios/backend/internal/pkg/dberrors"
	"github.com/edvios/backend/internal/pkg/logger"
)

// store is embedded by every repository
type store struct {
	pool *pgxpool.Pool
	sb   squirrel.StatementBuilderType
}

func newStore(pool *pgxpool.Pool) store {
	return store{
		pool: pool,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (s store) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, s.pool)
}

// selectMany runs a built SELECT and collects rows into T by column name
func selectMany[T any](ctx context.Context, s store, query squirrel.Sqlizer, what string) ([]T, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error building SQL")
		return nil, fmt.Errorf("failed to build %s query: %w", what, err)
	}

	rows, err := s.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error executing query")
		return nil, fmt.Errorf("error querying %s: %w", what, err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error scanning rows")
		return nil, fmt.Errorf("error scanning %s: %w", what, err)
	}
	return items, nil
}

// selectOne runs a built SELECT expecting a single row; no rows maps to NotFound
func selectOne[T any](ctx context.Context, s store, query squirrel.Sqlizer, what string) (*T, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error building SQL")
		return nil, fmt.Errorf("failed to build %s query: %w", what, err)
	}

	rows, err := s.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error executing query")
		return nil, fmt.Errorf("error querying %s: %w", what, err)
	}

	item, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(what + " not found")
		}
		logger.Error().Err(err).Str("query", what).Msg("Error scanning row")
		return nil, fmt.Errorf("error scanning %s: %w", what, err)
	}
	return item, nil
}

// count runs a built COUNT(*) query
func count(ctx context.Context, s store, query squirrel.Sqlizer, what string) (int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s count query: %w", what, err)
	}

	var total int64
	if err := s.conn(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error counting rows")
		return 0, fmt.Errorf("error counting %s: %w", what, err)
	}
	return total, nil
}

// exec runs a built statement; zero affected rows maps to NotFound when mustAffect is set
func exec(ctx context.Context, s store, query squirrel.Sqlizer, what string, mustAffect bool) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s statement: %w", what, err)
	}

	tag, err := s.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return translateWriteError(err, what)
	}
	if mustAffect && tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(what + " not found")
	}
	return nil
}

// translateWriteError maps constraint violations onto the error taxonomy
func translateWriteError(err error, what string) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, ""):
		return apperrors.NewConflictError(what + " already exists")
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.NewBadRequestError(what + " references a missing record")
	case dberrors.IsSerializationFailure(err):
		return apperrors.NewConflictError("concurrent update of " + what + ", retry the request")
	}
	logger.Error().Err(err).Str("statement", what).Msg("Error executing statement")
	return fmt.Errorf("error writing %s: %w", what, err)
}

// containsPattern builds an ILIKE pattern matching search anywhere, with wildcards escaped
func containsPattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(search)) + "%"
}

// searchAny is a case-insensitive substring match over columns
func searchAny(search string, columns ...string) squirrel.Or {
	pattern := containsPattern(search)
	or := squirrel.Or{}
	for _, column := range columns {
		or = append(or, squirrel.ILike{column: pattern})
	}
	return or
}

func rolesToStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func paginate(query squirrel.SelectBuilder, page repositories.Page) squirrel.SelectBuilder {
	offset, limit := page.OffsetLimit()
	return query.Limit(uint64(limit)).Offset(offset)
}

// New builds every Postgres repository on pool
func New(pool *pgxpool.Pool) *repositories.Repositories {
	return &repositories.Repositories{
		Transactor:         db.NewTransactor(pool),
		Users:              NewUserRepository(pool),
		VerificationTokens: NewVerificationTokenRepository(pool),
		Agents:             NewAgentRepository(pool),
		Settings:           NewSettingsRepository(pool),
		Students:           NewStudentRepository(pool),
		Assignments:        NewAssignmentRepository(pool),
		Applications:       NewApplicationRepository(pool),
		Institutions:       NewInstitutionRepository(pool),
		Programs:           NewProgramRepository(pool),
		Intakes:            NewIntakeRepository(pool),
		Subjects:           NewSubjectRepository(pool),
		Chats:              NewChatRepository(pool),
		Documents:          NewDocumentRepository(pool),
		Notifications:      NewNotificationRepository(pool),
	}
}
