package inmem

import (
	"context"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

type AgentRepository struct{ s *Store }

func (r *AgentRepository) Create(_ context.Context, agent *models.Agent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[agent.ID]; !ok {
		return apperrors.NewBadRequestError("agent profile references a missing record")
	}
	if _, ok := r.s.agents[agent.ID]; ok {
		return apperrors.NewConflictError("agent profile already exists")
	}
	now := r.s.now()
	agent.CreatedAt, agent.UpdatedAt = now, now
	r.s.agents[agent.ID] = *agent
	return nil
}

func (r *AgentRepository) GetByID(_ context.Context, id string) (*models.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.agents[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("agent not found")
	}
	return &a, nil
}

func (r *AgentRepository) Update(_ context.Context, agent *models.Agent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.agents[agent.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("agent not found")
	}
	agent.CreatedAt = current.CreatedAt
	agent.UpdatedAt = r.s.now()
	stored := *agent
	stored.User = nil
	r.s.agents[agent.ID] = stored
	return nil
}

func (r *AgentRepository) LeastLoaded(_ context.Context) (*models.AgentLoad, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	chats := map[string]int64{}
	for _, c := range r.s.chats {
		chats[c.AgentID]++
	}

	var best *models.AgentLoad
	var bestUser models.User
	for id := range r.s.agents {
		u, ok := r.s.users[id]
		if !ok || !u.Role.IsApprovedAgent() {
			continue
		}
		candidate := models.AgentLoad{AgentID: id, Role: u.Role, ChatsCount: chats[id]}
		if best == nil || less(candidate, u, *best, bestUser) {
			best, bestUser = &candidate, u
		}
	}
	if best == nil {
		return nil, apperrors.NewResourceNotFoundError("available agent not found")
	}
	return best, nil
}

func less(a models.AgentLoad, au models.User, b models.AgentLoad, bu models.User) bool {
	if a.ChatsCount != b.ChatsCount {
		return a.ChatsCount < b.ChatsCount
	}
	if !au.CreatedAt.Equal(bu.CreatedAt) {
		return au.CreatedAt.Before(bu.CreatedAt)
	}
	return a.AgentID < b.AgentID
}

type SettingsRepository struct{ s *Store }

func (r *SettingsRepository) Get(_ context.Context) (*models.AppSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	settings := r.s.settings
	return &settings, nil
}

// GetForUpdate relies on the Transactor serializing transactions
func (r *SettingsRepository) GetForUpdate(ctx context.Context) (*models.AppSettings, error) {
	return r.Get(ctx)
}

func (r *SettingsRepository) SetSelectedAgent(_ context.Context, agentID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if agentID != nil {
		if _, ok := r.s.users[*agentID]; !ok {
			return apperrors.NewBadRequestError("settings references a missing record")
		}
		id := *agentID
		agentID = &id
	}
	r.s.settings.SelectedAgentID = agentID
	r.s.settings.UpdatedAt = r.s.now()
	return nil
}
