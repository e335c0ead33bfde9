package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
)

var userColumns = []string{
	"id", "email", "first_name", "last_name", "phone", "role", "email_verified", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	store
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{store: newStore(pool)}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	query := r.sb.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Email, user.FirstName, user.LastName, user.Phone, user.Role,
			user.EmailVerified, user.CreatedAt, user.UpdatedAt)
	return exec(ctx, r.store, query, "user", false)
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id})
	return selectOne[models.User](ctx, r.store, query, "user")
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.sb.Select(userColumns...).From("users").
		Where(squirrel.Expr("lower(email) = lower(?)", email))
	return selectOne[models.User](ctx, r.store, query, "user")
}

// UpdateRole sets the user's role
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.RoleType) error {
	query := r.sb.Update("users").
		Set("role", role).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id})
	return exec(ctx, r.store, query, "user", true)
}

// SetEmailVerified marks the user's email as verified
func (r *UserRepository) SetEmailVerified(ctx context.Context, id string) error {
	query := r.sb.Update("users").
		Set("email_verified", true).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id})
	return exec(ctx, r.store, query, "user", true)
}

// Delete removes the user; profiles, ledger rows and chats cascade
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.store, r.sb.Delete("users").Where(squirrel.Eq{"id": id}), "user", true)
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.store, r.sb.Select("COUNT(*)").From("users"), "users")
}

// CountCreatedSince returns the number of users created at or after since
func (r *UserRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	query := r.sb.Select("COUNT(*)").From("users").Where(squirrel.GtOrEq{"created_at": since})
	return count(ctx, r.store, query, "users")
}

// CountByRoles returns the number of users holding any of roles
func (r *UserRepository) CountByRoles(ctx context.Context, roles ...models.RoleType) (int64, error) {
	query := r.sb.Select("COUNT(*)").From("users").Where(squirrel.Eq{"role": rolesToStrings(roles)})
	return count(ctx, r.store, query, "users")
}

func (r *UserRepository) agentsWhere(query squirrel.SelectBuilder, filter repositories.AgentFilter) squirrel.SelectBuilder {
	query = query.Where(squirrel.Eq{"u.role": rolesToStrings(filter.Role.Roles())})
	if filter.Search != "" {
		query = query.Where(searchAny(filter.Search, "u.first_name", "u.last_name", "u.email", "a.agent_name", "a.legal_name"))
	}
	return query
}

// ListAgents lists agent-track users with their optional profile, newest first
func (r *UserRepository) ListAgents(ctx context.Context, filter repositories.AgentFilter) ([]models.AgentListItem, error) {
	columns := make([]string, len(userColumns))
	for i, c := range userColumns {
		columns[i] = "u." + c
	}

	query := r.sb.Select(columns...).
		From("users u").
		LeftJoin("agents a ON a.id = u.id").
		OrderBy("u.created_at DESC", "u.id")
	query = paginate(r.agentsWhere(query, filter), filter.Page)

	users, err := selectMany[models.User](ctx, r.store, query, "agents")
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []models.AgentListItem{}, nil
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	profiles, err := selectMany[models.Agent](ctx, r.store,
		r.sb.Select(agentColumns...).From("agents").Where(squirrel.Eq{"id": ids}), "agent profiles")
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Agent, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}

	items := make([]models.AgentListItem, len(users))
	for i, u := range users {
		items[i] = models.AgentListItem{User: u, Agent: byID[u.ID]}
	}
	return items, nil
}

// CountAgents counts agent-track users matching filter
func (r *UserRepository) CountAgents(ctx context.Context, filter repositories.AgentFilter) (int64, error) {
	query := r.sb.Select("COUNT(*)").From("users u").LeftJoin("agents a ON a.id = u.id")
	return count(ctx, r.store, r.agentsWhere(query, filter), "agents")
}

// VerificationTokenRepository handles email verification tokens
type VerificationTokenRepository struct {
	store
}

// NewVerificationTokenRepository creates a new VerificationTokenRepository
func NewVerificationTokenRepository(pool *pgxpool.Pool) *VerificationTokenRepository {
	return &VerificationTokenRepository{store: newStore(pool)}
}

// Create stores a token
func (r *VerificationTokenRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	query := r.sb.Insert("email_verification_tokens").
		Columns("token", "user_id", "expires_at").
		Values(token.Token, token.UserID, token.ExpiresAt)
	return exec(ctx, r.store, query, "verification token", false)
}

// Get looks a token up
func (r *VerificationTokenRepository) Get(ctx context.Context, token string) (*models.VerificationToken, error) {
	query := r.sb.Select("token", "user_id", "expires_at").
		From("email_verification_tokens").
		Where(squirrel.Eq{"token": token})
	return selectOne[models.VerificationToken](ctx, r.store, query, "verification token")
}

// DeleteByUser removes every token of the user
func (r *VerificationTokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := r.sb.Delete("email_verification_tokens").Where(squirrel.Eq{"user_id": userID})
	return exec(ctx, r.store, query, "verification token", false)
}
