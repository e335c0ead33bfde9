package models

import "time"

// AgentAssignment is the ledger row mapping one student to its current agent.
// Reassignment repoints AgentID on the same row.
type AgentAssignment struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"studentId" db:"student_id"`
	AgentID   string    `json:"agentId" db:"agent_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// AssignmentParty is the name block of either side of an assignment
type AssignmentParty struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Role      RoleType `json:"role"`
}

// AssignmentView is an assignment joined with both parties
type AssignmentView struct {
	AgentAssignment
	Student AssignmentParty `json:"student"`
	Agent   AssignmentParty `json:"agent"`
}

// AppSettings is the single process-wide settings row
type AppSettings struct {
	SelectedAgentID *string   `json:"selectedAgentId" db:"selected_agent_id"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
