// Package inmem implements the repositories in process memory. It backs the service
// service and middleware tests, and mirrors the constraints of the SQL schema.
package inmem

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
)

type txKey struct{}

// Store holds every table
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	last time.Time

	users         map[string]models.User
	tokens        map[string]models.VerificationToken
	agents        map[string]models.Agent
	settings      models.AppSettings
	students      map[string]models.Student
	assignments   map[string]models.AgentAssignment
	applications  map[string]models.Application
	institutions  map[string]models.Institution
	programs      map[string]models.Program
	intakes       map[string]models.Intake
	subjects      map[string]models.Subject
	chats         map[string]models.Chat
	messages      map[string]models.ChatMessage
	documents     map[string]models.Document
	notifications map[string]models.Notification
}

// NewStore creates an empty store with its settings row
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.users = map[string]models.User{}
	s.tokens = map[string]models.VerificationToken{}
	s.agents = map[string]models.Agent{}
	s.settings = models.AppSettings{UpdatedAt: time.Now().UTC()}
	s.students = map[string]models.Student{}
	s.assignments = map[string]models.AgentAssignment{}
	s.applications = map[string]models.Application{}
	s.institutions = map[string]models.Institution{}
	s.programs = map[string]models.Program{}
	s.intakes = map[string]models.Intake{}
	s.subjects = map[string]models.Subject{}
	s.chats = map[string]models.Chat{}
	s.messages = map[string]models.ChatMessage{}
	s.documents = map[string]models.Document{}
	s.notifications = map[string]models.Notification{}
}

// now returns a strictly increasing timestamp so ordering by time is deterministic. Callers hold mu.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *Store) snapshot() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Store{
		users:         maps.Clone(s.users),
		tokens:        maps.Clone(s.tokens),
		agents:        maps.Clone(s.agents),
		settings:      s.settings,
		students:      maps.Clone(s.students),
		assignments:   maps.Clone(s.assignments),
		applications:  maps.Clone(s.applications),
		institutions:  maps.Clone(s.institutions),
		programs:      maps.Clone(s.programs),
		intakes:       maps.Clone(s.intakes),
		subjects:      maps.Clone(s.subjects),
		chats:         maps.Clone(s.chats),
		messages:      maps.Clone(s.messages),
		documents:     maps.Clone(s.documents),
		notifications: maps.Clone(s.notifications),
	}
}

func (s *Store) restore(snap *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.tokens = snap.tokens
	s.agents = snap.agents
	s.settings = snap.settings
	s.students = snap.students
	s.assignments = snap.assignments
	s.applications = snap.applications
	s.institutions = snap.institutions
	s.programs = snap.programs
	s.intakes = snap.intakes
	s.subjects = snap.subjects
	s.chats = snap.chats
	s.messages = snap.messages
	s.documents = snap.documents
	s.notifications = snap.notifications
}

// Transactor serializes transactions and restores the pre-transaction state on error
type Transactor struct {
	store *Store
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	snap := t.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

func (t *Transactor) WithinSerializableTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.WithinTransaction(ctx, fn)
}

// New builds every repository over one fresh store
func New() (*repositories.Repositories, *Store) {
	s := NewStore()
	return &repositories.Repositories{
		Transactor:         &Transactor{store: s},
		Users:              &UserRepository{s},
		VerificationTokens: &VerificationTokenRepository{s},
		Agents:             &AgentRepository{s},
		Settings:           &SettingsRepository{s},
		Students:           &StudentRepository{s},
		Assignments:        &AssignmentRepository{s},
		Applications:       &ApplicationRepository{s},
		Institutions:       &InstitutionRepository{s},
		Programs:           &ProgramRepository{s},
		Intakes:            &IntakeRepository{s},
		Subjects:           &SubjectRepository{s},
		Chats:              &ChatRepository{s},
		Documents:          &DocumentRepository{s},
		Notifications:      &NotificationRepository{s},
	}, s
}

func page[T any](items []T, p repositories.Page) []T {
	offset, limit := p.OffsetLimit()
	if offset >= uint64(len(items)) {
		return []T{}
	}
	end := min(int(offset)+limit, len(items))
	return items[offset:end]
}

func matches(search string, fields ...string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// newestFirst sorts by created time descending, id ascending on ties
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) string) {
	slices.SortFunc(items, func(a, b T) int {
		if c := created(b).Compare(created(a)); c != 0 {
			return c
		}
		return strings.Compare(id(a), id(b))
	})
}
