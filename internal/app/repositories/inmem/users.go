package inmem

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok {
		return apperrors.NewConflictError("user already exists")
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperrors.NewConflictError("user already exists")
		}
	}
	if user.Role == models.RoleSelectedAgent && r.selectedHolderLocked() != "" {
		return apperrors.NewConflictError("selected agent already exists")
	}

	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("user not found")
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("user not found")
}

// selectedHolderLocked mirrors the partial unique index on SELECTED_AGENT
func (r *UserRepository) selectedHolderLocked() string {
	for id, u := range r.s.users {
		if u.Role == models.RoleSelectedAgent {
			return id
		}
	}
	return ""
}

func (r *UserRepository) UpdateRole(_ context.Context, id string, role models.RoleType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	if role == models.RoleSelectedAgent {
		if holder := r.selectedHolderLocked(); holder != "" && holder != id {
			return apperrors.NewConflictError("selected agent already exists")
		}
	}
	u.Role = role
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) SetEmailVerified(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	u.EmailVerified = true
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

// Delete removes the user and everything that cascades from it in the schema
func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	delete(r.s.users, id)
	delete(r.s.agents, id)
	r.s.deleteStudentLocked(id)
	for token, t := range r.s.tokens {
		if t.UserID == id {
			delete(r.s.tokens, token)
		}
	}
	for aid, a := range r.s.assignments {
		if a.AgentID == id {
			delete(r.s.assignments, aid)
		}
	}
	for cid, c := range r.s.chats {
		if c.HasParticipant(id) {
			r.s.deleteChatLocked(cid)
		}
	}
	if r.s.settings.SelectedAgentID != nil && *r.s.settings.SelectedAgentID == id {
		r.s.settings.SelectedAgentID = nil
	}
	return nil
}

func (s *Store) deleteStudentLocked(id string) {
	delete(s.students, id)
	for aid, a := range s.assignments {
		if a.StudentID == id {
			delete(s.assignments, aid)
		}
	}
	for appID, a := range s.applications {
		if a.StudentID == id {
			delete(s.applications, appID)
		}
	}
	for docID, d := range s.documents {
		if d.StudentID == id {
			delete(s.documents, docID)
		}
	}
}

func (s *Store) deleteChatLocked(id string) {
	delete(s.chats, id)
	for mid, m := range s.messages {
		if m.ChatID == id {
			delete(s.messages, mid)
		}
	}
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

func (r *UserRepository) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, u := range r.s.users {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) CountByRoles(_ context.Context, roles ...models.RoleType) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, u := range r.s.users {
		if slices.Contains(roles, u.Role) {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) agentsLocked(filter repositories.AgentFilter) []models.AgentListItem {
	roles := filter.Role.Roles()
	items := []models.AgentListItem{}
	for _, u := range r.s.users {
		if !slices.Contains(roles, u.Role) {
			continue
		}
		item := models.AgentListItem{User: u}
		var agentName, legalName string
		if a, ok := r.s.agents[u.ID]; ok {
			item.Agent = &a
			agentName, legalName = a.AgentName, a.LegalName
		}
		if !matches(filter.Search, u.FirstName, u.LastName, u.Email, agentName, legalName) {
			continue
		}
		items = append(items, item)
	}
	newestFirst(items,
		func(i models.AgentListItem) time.Time { return i.CreatedAt },
		func(i models.AgentListItem) string { return i.ID })
	return items
}

func (r *UserRepository) ListAgents(_ context.Context, filter repositories.AgentFilter) ([]models.AgentListItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.agentsLocked(filter), filter.Page), nil
}

func (r *UserRepository) CountAgents(_ context.Context, filter repositories.AgentFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.agentsLocked(filter))), nil
}

type VerificationTokenRepository struct{ s *Store }

func (r *VerificationTokenRepository) Create(_ context.Context, token *models.VerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[token.UserID]; !ok {
		return apperrors.NewBadRequestError("verification token references a missing record")
	}
	r.s.tokens[token.Token] = *token
	return nil
}

func (r *VerificationTokenRepository) Get(_ context.Context, token string) (*models.VerificationToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[token]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("verification token not found")
	}
	return &t, nil
}

func (r *VerificationTokenRepository) DeleteByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for token, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, token)
		}
	}
	return nil
}
