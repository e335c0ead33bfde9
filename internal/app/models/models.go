package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent       RoleType = "STUDENT"
	RolePendingAgent  RoleType = "PENDING_AGENT"
	RoleAgent         RoleType = "AGENT"
	RoleSelectedAgent RoleType = "SELECTED_AGENT"
	RoleAdmin         RoleType = "ADMIN"
)

// AllRoles lists every role in workflow order
var AllRoles = []RoleType{RoleStudent, RolePendingAgent, RoleAgent, RoleSelectedAgent, RoleAdmin}

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Normalized folds SELECTED_AGENT onto AGENT. Authorization compares normalized roles.
func (r RoleType) Normalized() RoleType {
	if r == RoleSelectedAgent {
		return RoleAgent
	}
	return r
}

// IsAgentTrack reports roles backed by an agent profile
func (r RoleType) IsAgentTrack() bool {
	return r == RolePendingAgent || r == RoleAgent || r == RoleSelectedAgent
}

// IsApprovedAgent reports roles that may serve students
func (r RoleType) IsApprovedAgent() bool {
	return r.Normalized() == RoleAgent
}
