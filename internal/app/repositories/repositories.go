package repositories

import (
	"context"
	"time"

	"github.com/edvios/backend/internal/app/models"
)

// Transactor runs fn inside one database transaction. Repository calls made with the
// ctx handed to fn join that transaction; returning an error rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// WithinSerializableTransaction is WithinTransaction at SERIALIZABLE isolation
	WithinSerializableTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository is the user and role store. The role stored here is authoritative.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.RoleType) error
	SetEmailVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountByRoles(ctx context.Context, roles ...models.RoleType) (int64, error)
	ListAgents(ctx context.Context, filter AgentFilter) ([]models.AgentListItem, error)
	CountAgents(ctx context.Context, filter AgentFilter) (int64, error)
}

// VerificationTokenRepository stores email verification tokens
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *models.VerificationToken) error
	Get(ctx context.Context, token string) (*models.VerificationToken, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// AgentRepository stores agent business profiles
type AgentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	GetByID(ctx context.Context, id string) (*models.Agent, error)
	Update(ctx context.Context, agent *models.Agent) error
	// LeastLoaded returns the approved agent with the fewest chats, oldest first on ties
	LeastLoaded(ctx context.Context) (*models.AgentLoad, error)
}

// SettingsRepository owns the single app_settings row
type SettingsRepository interface {
	Get(ctx context.Context) (*models.AppSettings, error)
	// GetForUpdate reads the row and locks it until the surrounding transaction ends
	GetForUpdate(ctx context.Context) (*models.AppSettings, error)
	SetSelectedAgent(ctx context.Context, agentID *string) error
}

// StudentRepository stores student profiles
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	Count(ctx context.Context, filter StudentFilter) (int64, error)
}

// AssignmentRepository is the agent assignment ledger
type AssignmentRepository interface {
	// Upsert points the student's ledger row at agentID, creating the row if missing
	Upsert(ctx context.Context, studentID, agentID string) (*models.AgentAssignment, error)
	GetByID(ctx context.Context, id string) (*models.AgentAssignment, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.AgentAssignment, error)
	UpdateAgent(ctx context.Context, id, agentID string) (*models.AgentAssignment, error)
	Exists(ctx context.Context, studentID, agentID string) (bool, error)
	List(ctx context.Context, filter AssignmentFilter) ([]models.AssignmentView, error)
	Count(ctx context.Context, filter AssignmentFilter) (int64, error)
}

// ApplicationRepository stores program applications
type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	// UpdateStatus moves the application from one status to another; a status other than from is a Conflict
	UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) error
	List(ctx context.Context, filter ApplicationFilter) ([]models.Application, error)
	Count(ctx context.Context, filter ApplicationFilter) (int64, error)
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error)
}

// InstitutionRepository stores institutions
type InstitutionRepository interface {
	Create(ctx context.Context, institution *models.Institution) error
	GetByID(ctx context.Context, id string) (*models.Institution, error)
	Update(ctx context.Context, institution *models.Institution) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter InstitutionFilter) ([]models.Institution, error)
	Count(ctx context.Context, filter InstitutionFilter) (int64, error)
}

// ProgramRepository stores programs
type ProgramRepository interface {
	Create(ctx context.Context, program *models.Program) error
	GetByID(ctx context.Context, id string) (*models.Program, error)
	Update(ctx context.Context, program *models.Program) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProgramFilter) ([]models.Program, error)
	Count(ctx context.Context, filter ProgramFilter) (int64, error)
}

// IntakeRepository stores intakes
type IntakeRepository interface {
	Create(ctx context.Context, intake *models.Intake) error
	GetByID(ctx context.Context, id string) (*models.Intake, error)
	List(ctx context.Context) ([]models.Intake, error)
	Delete(ctx context.Context, id string) error
}

// SubjectRepository stores subjects
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id string) (*models.Subject, error)
	List(ctx context.Context) ([]models.Subject, error)
	Delete(ctx context.Context, id string) error
}

// ChatRepository stores chats and their messages
type ChatRepository interface {
	// Upsert returns the chat for the pair, creating it when absent
	Upsert(ctx context.Context, studentID, agentID string) (*models.Chat, error)
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]models.ChatSummary, error)
	Touch(ctx context.Context, chatID string, at time.Time) error
	Count(ctx context.Context) (int64, error)

	CreateMessage(ctx context.Context, message *models.ChatMessage) error
	// ListMessages returns one page walking back from the newest message, oldest first
	// within the page, and whether older messages remain
	ListMessages(ctx context.Context, filter MessageFilter) ([]models.ChatMessage, bool, error)
	// AdvanceMessageStatus moves the listed messages forward to status. Only messages
	// in chats where userID participates, not sent by userID, and currently at a lower
	// status are touched. The updated messages are returned.
	AdvanceMessageStatus(ctx context.Context, userID string, messageIDs []string, status models.MessageStatus) ([]models.ChatMessage, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// DocumentRepository stores student documents
type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Document, error)
	Delete(ctx context.Context, id string) error
}

// NotificationRepository stores broadcast notifications
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, audience models.NotificationAudience) ([]models.Notification, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Transactor         Transactor
	Users              UserRepository
	VerificationTokens VerificationTokenRepository
	Agents             AgentRepository
	Settings           SettingsRepository
	Students           StudentRepository
	Assignments        AssignmentRepository
	Applications       ApplicationRepository
	Institutions       InstitutionRepository
	Programs           ProgramRepository
	Intakes            IntakeRepository
	Subjects           SubjectRepository
	Chats              ChatRepository
	Documents          DocumentRepository
	Notifications      NotificationRepository
}
