package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%ada%", containsPattern("  ada "))
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_off"))
}

func TestAgentFilterSQL(t *testing.T) {
	r := NewUserRepository(nil)

	tests := []struct {
		name     string
		filter   repositories.AgentFilter
		contains []string
		args     []any
	}{
		{
			name:     "all roles",
			filter:   repositories.AgentFilter{Role: repositories.AgentFilterAll},
			contains: []string{"u.role IN ($1,$2,$3)"},
			args:     []any{"PENDING_AGENT", "AGENT", "SELECTED_AGENT"},
		},
		{
			name:     "approved agents include the selected one",
			filter:   repositories.AgentFilter{Role: repositories.AgentFilterAgent, Search: "acme"},
			contains: []string{"u.role IN ($1,$2)", "u.first_name ILIKE $3", "a.agent_name ILIKE"},
			args:     []any{"AGENT", "SELECTED_AGENT", "%acme%", "%acme%", "%acme%", "%acme%", "%acme%"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query := r.agentsWhere(r.sb.Select("COUNT(*)").From("users u").LeftJoin("agents a ON a.id = u.id"), tc.filter)
			sql, args, err := query.ToSql()
			require.NoError(t, err)
			for _, fragment := range tc.contains {
				assert.Contains(t, sql, fragment)
			}
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestStudentFilterJoinsLedgerOnlyWhenScoped(t *testing.T) {
	r := NewStudentRepository(nil)
	agentID := "agent-1"

	sql, _, err := r.where(r.sb.Select("COUNT(*)").From("students s"), repositories.StudentFilter{}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "agent_assignments")

	sql, args, err := r.where(r.sb.Select("COUNT(*)").From("students s"), repositories.StudentFilter{AgentID: &agentID}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "JOIN agent_assignments aa ON aa.student_id = s.id")
	assert.Equal(t, []any{"agent-1"}, args)
}

func TestAssignmentFilterByAgentRole(t *testing.T) {
	r := NewAssignmentRepository(nil)

	sql, args, err := r.where(r.sb.Select("COUNT(*)").From("agent_assignments aa"),
		repositories.AssignmentFilter{AgentRole: repositories.AgentFilterPending}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "au.role IN ($1)")
	assert.Equal(t, []any{string(models.RolePendingAgent)}, args)
}

func TestStudentDeleteRemovesOwnedRowsFirst(t *testing.T) {
	r := NewStudentRepository(nil)

	statements := r.deleteStatements("student-1")
	require.Len(t, statements, 4)

	wantTables := []string{"documents", "applications", "agent_assignments", "students"}
	for i, statement := range statements {
		sql, args, err := statement.ToSql()
		require.NoError(t, err)
		assert.Contains(t, sql, "DELETE FROM "+wantTables[i]+" WHERE")
		assert.Equal(t, []any{"student-1"}, args)
	}
}

func TestApplicationStatusUpdateComparesPreviousStatus(t *testing.T) {
	r := NewApplicationRepository(nil)

	sql, args, err := r.updateStatusQuery("app-1", models.ApplicationUnderReview, models.ApplicationAccepted).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE id = $3 AND status = $4")
	assert.Equal(t, models.ApplicationAccepted, args[0])
	assert.Equal(t, "app-1", args[2])
	assert.Equal(t, models.ApplicationUnderReview, args[3])
}
