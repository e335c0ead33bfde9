package services

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/filestorage"
	"github.com/edvios/backend/internal/pkg/identity"
)

var errProviderDown = errors.New("identity provider unavailable")

type fakeProvider struct {
	mu        sync.Mutex
	roles     map[string]string
	deleted   []string
	roleErr   error
	deleteErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{roles: map[string]string{}}
}

func session(userID, email string) *identity.Session {
	s := &identity.Session{AccessToken: "access", RefreshToken: "refresh", TokenType: "bearer", ExpiresIn: 3600}
	s.User.ID, s.User.Email = userID, email
	return s
}

func (p *fakeProvider) SignUp(_ context.Context, email, _ string, _ map[string]any) (*identity.Session, error) {
	return session(uuid.NewString(), email), nil
}

func (p *fakeProvider) SignIn(_ context.Context, email, _ string) (*identity.Session, error) {
	return session("signed-in", email), nil
}

func (p *fakeProvider) Refresh(_ context.Context, _ string) (*identity.Session, error) {
	return &identity.Session{AccessToken: "refreshed"}, nil
}

func (p *fakeProvider) UpdateUserRole(_ context.Context, userID, role string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.roleErr != nil {
		return p.roleErr
	}
	p.roles[userID] = role
	return nil
}

func (p *fakeProvider) DeleteUser(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deleted = append(p.deleted, userID)
	return nil
}

func (p *fakeProvider) role(userID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roles[userID]
}

type fakeMailer struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (m *fakeMailer) SendVerificationEmail(toEmail, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.tokens == nil {
		m.tokens = map[string]string{}
	}
	m.tokens[toEmail] = token
	return nil
}

type fakeStorage struct {
	saved   map[string]bool
	deleted []string
}

func (s *fakeStorage) SaveFileWithPath(fh *multipart.FileHeader, subPath string) (*filestorage.StoredFile, error) {
	key := subPath + "/" + uuid.NewString() + "-" + fh.Filename
	if s.saved == nil {
		s.saved = map[string]bool{}
	}
	s.saved[key] = true
	return &filestorage.StoredFile{
		Key:      key,
		URL:      "https://files.example.com/" + key,
		Filename: fh.Filename,
		FileSize: fh.Size,
		MimeType: "application/pdf",
	}, nil
}

func (s *fakeStorage) DeleteFile(key string) error {
	delete(s.saved, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type publishedEvent struct {
	ChatID string
	Type   string
	Data   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(chatID, eventType string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{ChatID: chatID, Type: eventType, Data: data})
}

func createUser(t *testing.T, repos *repositories.Repositories, role models.RoleType) models.User {
	t.Helper()
	id := uuid.NewString()
	u := models.User{ID: id, Email: id + "@example.com", FirstName: "Test", LastName: string(role), Role: role}
	require.NoError(t, repos.Users.Create(context.Background(), &u))
	return u
}

// createAgent stores a user with an agent profile
func createAgent(t *testing.T, repos *repositories.Repositories, role models.RoleType) models.User {
	t.Helper()
	u := createUser(t, repos, role)
	require.NoError(t, repos.Agents.Create(context.Background(), &models.Agent{ID: u.ID, AgentName: "Agency " + u.ID[:8]}))
	return u
}

// createStudent stores a user with a student profile
func createStudent(t *testing.T, repos *repositories.Repositories) models.User {
	t.Helper()
	u := createUser(t, repos, models.RoleStudent)
	require.NoError(t, repos.Students.Create(context.Background(), &models.Student{ID: u.ID, Email: u.Email}))
	return u
}
