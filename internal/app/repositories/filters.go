package repositories

import (
	"strings"
	"time"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/pkg/helpers"
)

// Page is a 1-based page request
type Page struct {
	Page int
	Size int
}

// OffsetLimit converts the page into SQL offset and limit
func (p Page) OffsetLimit() (uint64, int) {
	return helpers.CalculateOffsetLimit(p.Page, p.Size)
}

// AgentRoleFilter is the closed set of role filters accepted by agent listings
type AgentRoleFilter string

const (
	AgentFilterAll     AgentRoleFilter = "ALL"
	AgentFilterAgent   AgentRoleFilter = "AGENT"
	AgentFilterPending AgentRoleFilter = "PENDING_AGENT"
)

// ParseAgentRoleFilter accepts the filter case-insensitively; empty means ALL
func ParseAgentRoleFilter(raw string) (AgentRoleFilter, bool) {
	switch AgentRoleFilter(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", AgentFilterAll:
		return AgentFilterAll, true
	case AgentFilterAgent, AgentRoleFilter(models.RoleSelectedAgent):
		return AgentFilterAgent, true
	case AgentFilterPending:
		return AgentFilterPending, true
	}
	return "", false
}

// Roles expands the filter. SELECTED_AGENT counts as AGENT.
func (f AgentRoleFilter) Roles() []models.RoleType {
	switch f {
	case AgentFilterAgent:
		return []models.RoleType{models.RoleAgent, models.RoleSelectedAgent}
	case AgentFilterPending:
		return []models.RoleType{models.RolePendingAgent}
	default:
		return []models.RoleType{models.RolePendingAgent, models.RoleAgent, models.RoleSelectedAgent}
	}
}

// AgentFilter selects agent-track users
type AgentFilter struct {
	Page
	Role   AgentRoleFilter
	Search string
}

// AssignmentFilter selects ledger rows
type AssignmentFilter struct {
	Page
	// AgentRole restricts by the assigned agent's role; empty means any
	AgentRole AgentRoleFilter
	AgentID   *string
	Search    string
}

// StudentFilter selects student profiles
type StudentFilter struct {
	Page
	Search string
	// AgentID limits to students assigned to that agent
	AgentID *string
}

// ApplicationFilter selects applications
type ApplicationFilter struct {
	Page
	StudentID *string
	// AgentID limits to applications of students assigned to that agent
	AgentID *string
	Status  *models.ApplicationStatus
	Search  string
}

// InstitutionFilter selects institutions
type InstitutionFilter struct {
	Page
	Country string
	Name    string
	Status  *models.InstituteStatus
	Type    *models.InstituteType
}

// ProgramFilter selects programs
type ProgramFilter struct {
	Page
	Search               string
	InstitutionID        *string
	Country              string
	Level                string
	IntakeID             *string
	SubjectID            *string
	ScholarshipAvailable *bool
	EnglishWaiver        *bool
}

// MessageFilter pages backwards through a chat
type MessageFilter struct {
	ChatID string
	Before *time.Time
	Page
}
