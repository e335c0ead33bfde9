package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/auth"
	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/app/repositories/inmem"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

func studentRequest(email string) *dto.CreateStudentRequest {
	return &dto.CreateStudentRequest{
		DateOfBirth:           "2001-04-12",
		Nationality:           "NG",
		PassportNumber:        "A1234567",
		PassportExpiryDate:    "2031-04-12",
		CountryOfResidence:    "NG",
		Email:                 email,
		Phone:                 "+234 800 000 0000",
		EmergencyContact:      "Parent +234 800 000 0001",
		HighestQualification:  "WAEC",
		InstitutionName:       "Lagos High School",
		PreferredFieldOfStudy: "Computer Science",
	}
}

type studentFixture struct {
	repos    *repositories.Repositories
	students *StudentService
	users    UserService
}

func newStudentFixture() studentFixture {
	repos, _ := inmem.New()
	authz := auth.NewAuthorizationService(repos.Assignments, zerolog.Nop())
	return studentFixture{
		repos:    repos,
		students: NewStudentService(repos, authz, zerolog.Nop()),
		users:    NewUserService(repos, newFakeProvider(), zerolog.Nop()),
	}
}

func TestCreateStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("without selected agent nothing is stored", func(t *testing.T) {
		f := newStudentFixture()
		user := createUser(t, f.repos, models.RoleStudent)

		_, err := f.students.CreateStudent(ctx, user.ID, studentRequest(user.Email))
		assert.ErrorIs(t, err, apperrors.ErrConflict)

		_, err = f.repos.Students.GetByID(ctx, user.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("assigns the selected agent", func(t *testing.T) {
		f := newStudentFixture()
		agent := createAgent(t, f.repos, models.RoleAgent)
		_, err := f.users.ChangeUserRole(ctx, agent.ID, models.RoleSelectedAgent)
		require.NoError(t, err)
		user := createUser(t, f.repos, models.RoleStudent)

		student, err := f.students.CreateStudent(ctx, user.ID, studentRequest(user.Email))
		require.NoError(t, err)
		require.NotNil(t, student.Assignment)
		assert.Equal(t, agent.ID, student.Assignment.AgentID)

		assignment, err := f.repos.Assignments.GetByStudentID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, agent.ID, assignment.AgentID)

		_, err = f.students.CreateStudent(ctx, user.ID, studentRequest(user.Email))
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("bad dates are rejected", func(t *testing.T) {
		f := newStudentFixture()
		user := createUser(t, f.repos, models.RoleStudent)
		req := studentRequest(user.Email)
		req.DateOfBirth = "12/04/2001"

		_, err := f.students.CreateStudent(ctx, user.ID, req)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func TestGetStudentsScopesAgents(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture()
	agent := createAgent(t, f.repos, models.RoleAgent)
	other := createAgent(t, f.repos, models.RoleAgent)
	mine := createStudent(t, f.repos)
	theirs := createStudent(t, f.repos)
	_, err := f.repos.Assignments.Upsert(ctx, mine.ID, agent.ID)
	require.NoError(t, err)
	_, err = f.repos.Assignments.Upsert(ctx, theirs.ID, other.ID)
	require.NoError(t, err)

	filter := repositories.StudentFilter{Page: repositories.Page{Page: 1, Size: 10}}

	all, err := f.students.GetStudents(ctx, auth.Actor{UserID: "admin", Role: models.RoleAdmin}, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	scoped, err := f.students.GetStudents(ctx, auth.Actor{UserID: agent.ID, Role: models.RoleAgent}, filter)
	require.NoError(t, err)
	require.Len(t, scoped.Items, 1)
	assert.Equal(t, mine.ID, scoped.Items[0].ID)

	_, err = f.students.GetStudents(ctx, auth.Actor{UserID: mine.ID, Role: models.RoleStudent}, filter)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	got, err := f.students.GetStudentByID(ctx, auth.Actor{UserID: agent.ID, Role: models.RoleAgent}, mine.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Assignment)
	assert.Equal(t, agent.ID, got.Assignment.AgentID)

	_, err = f.students.GetStudentByID(ctx, auth.Actor{UserID: agent.ID, Role: models.RoleAgent}, theirs.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestDeleteStudentRemovesOwnedRows(t *testing.T) {
	ctx := context.Background()
	f := newStudentFixture()
	agent := createAgent(t, f.repos, models.RoleAgent)
	student := createStudent(t, f.repos)
	_, err := f.repos.Assignments.Upsert(ctx, student.ID, agent.ID)
	require.NoError(t, err)
	require.NoError(t, f.repos.Documents.Create(ctx, &models.Document{
		ID: "doc-1", StudentID: student.ID, Name: "passport.pdf", Type: "PASSPORT", URL: "https://files.example.com/passport.pdf",
	}))

	require.NoError(t, f.students.DeleteStudent(ctx, student.ID))

	_, err = f.repos.Students.GetByID(ctx, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	_, err = f.repos.Assignments.GetByStudentID(ctx, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	docs, err := f.repos.Documents.ListByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	err = f.students.DeleteStudent(ctx, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestChangeAgentAssignment(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	svc := NewAssignmentService(repos, zerolog.Nop())

	from := createAgent(t, repos, models.RoleAgent)
	to := createAgent(t, repos, models.RoleAgent)
	pending := createAgent(t, repos, models.RolePendingAgent)
	noProfile := createUser(t, repos, models.RoleAgent)
	student := createStudent(t, repos)
	bystander := createStudent(t, repos)

	assignment, err := svc.AssignAgentToStudent(ctx, student.ID, from.ID)
	require.NoError(t, err)
	other, err := svc.AssignAgentToStudent(ctx, bystander.ID, from.ID)
	require.NoError(t, err)
	again, err := svc.AssignAgentToStudent(ctx, student.ID, from.ID)
	require.NoError(t, err)
	assert.Equal(t, assignment.ID, again.ID)

	tests := []struct {
		name         string
		assignmentID string
		agentID      string
		wantErr      error
	}{
		{"unknown assignment", "missing", to.ID, apperrors.ErrResourceNotFound},
		{"unknown agent", assignment.ID, "missing", apperrors.ErrResourceNotFound},
		{"pending agent", assignment.ID, pending.ID, apperrors.ErrBadRequest},
		{"student as agent", assignment.ID, student.ID, apperrors.ErrBadRequest},
		{"agent without profile", assignment.ID, noProfile.ID, apperrors.ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ChangeAgentAssignment(ctx, tt.assignmentID, tt.agentID)
			assert.ErrorIs(t, err, tt.wantErr)

			current, err := repos.Assignments.GetByStudentID(ctx, student.ID)
			require.NoError(t, err)
			assert.Equal(t, from.ID, current.AgentID)
		})
	}

	t.Run("repoints the same row", func(t *testing.T) {
		updated, err := svc.ChangeAgentAssignment(ctx, assignment.ID, to.ID)
		require.NoError(t, err)
		assert.Equal(t, assignment.ID, updated.ID)
		assert.Equal(t, to.ID, updated.AgentID)

		untouched, err := repos.Assignments.GetByStudentID(ctx, bystander.ID)
		require.NoError(t, err)
		assert.Equal(t, other.ID, untouched.ID)
		assert.Equal(t, from.ID, untouched.AgentID)

		views, err := svc.GetAgentAssignments(ctx, repositories.AssignmentFilter{Page: repositories.Page{Page: 1, Size: 10}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), views.Total)
	})
}

func TestGetAgentAssignmentsFilters(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	svc := NewAssignmentService(repos, zerolog.Nop())

	agent := createAgent(t, repos, models.RoleAgent)
	selected := createAgent(t, repos, models.RoleSelectedAgent)
	pending := createAgent(t, repos, models.RolePendingAgent)

	named := models.User{ID: "student-named", Email: "amara@example.com", FirstName: "Amara", LastName: "Okafor", Role: models.RoleStudent}
	require.NoError(t, repos.Users.Create(ctx, &named))
	require.NoError(t, repos.Students.Create(ctx, &models.Student{ID: named.ID, Email: named.Email}))
	for studentID, agentID := range map[string]string{
		named.ID:                   agent.ID,
		createStudent(t, repos).ID: selected.ID,
		createStudent(t, repos).ID: pending.ID,
	} {
		_, err := repos.Assignments.Upsert(ctx, studentID, agentID)
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		filter    repositories.AssignmentFilter
		wantTotal int64
		wantAgent []string
	}{
		{"all", repositories.AssignmentFilter{}, 3, []string{agent.ID, selected.ID, pending.ID}},
		{"approved agents include selected", repositories.AssignmentFilter{AgentRole: repositories.AgentFilterAgent}, 2, []string{agent.ID, selected.ID}},
		{"pending only", repositories.AssignmentFilter{AgentRole: repositories.AgentFilterPending}, 1, []string{pending.ID}},
		{"search ignores case", repositories.AssignmentFilter{Search: "oKaFoR"}, 1, []string{agent.ID}},
		{"search by email", repositories.AssignmentFilter{Search: "AMARA@"}, 1, []string{agent.ID}},
		{"search and role", repositories.AssignmentFilter{Search: "amara", AgentRole: repositories.AgentFilterPending}, 0, nil},
		{"by agent", repositories.AssignmentFilter{AgentID: &selected.ID}, 1, []string{selected.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Page = repositories.Page{Page: 1, Size: 10}
			views, err := svc.GetAgentAssignments(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, views.Total)

			var agents []string
			for _, v := range views.Items {
				agents = append(agents, v.Agent.ID)
			}
			assert.ElementsMatch(t, tt.wantAgent, agents)
		})
	}
}
