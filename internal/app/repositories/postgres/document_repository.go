package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvios/backend/internal/app/models"
)

var documentColumns = []string{"id", "student_id", "name", "type", "url", "storage_key", "created_at"}

// DocumentRepository handles student document database operations
type DocumentRepository struct {
	store
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{store: newStore(pool)}
}

// Create inserts a document
func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	d.CreatedAt = time.Now().UTC()
	query := r.sb.Insert("documents").Columns(documentColumns...).
		Values(d.ID, d.StudentID, d.Name, d.Type, d.URL, d.StorageKey, d.CreatedAt)
	return exec(ctx, r.store, query, "document", false)
}

// GetByID retrieves a document
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := r.sb.Select(documentColumns...).From("documents").Where(squirrel.Eq{"id": id})
	return selectOne[models.Document](ctx, r.store, query, "document")
}

// ListByStudent lists a student's documents, newest first
func (r *DocumentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Document, error) {
	query := r.sb.Select(documentColumns...).From("documents").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("created_at DESC", "id")
	return selectMany[models.Document](ctx, r.store, query, "documents")
}

// Delete removes a document row
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.store, r.sb.Delete("documents").Where(squirrel.Eq{"id": id}), "document", true)
}

// NotificationRepository handles broadcast notifications
type NotificationRepository struct {
	store
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{store: newStore(pool)}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now().UTC()
	query := r.sb.Insert("notifications").Columns("id", "audience", "title", "message", "created_at").
		Values(n.ID, n.Audience, n.Title, n.Message, n.CreatedAt)
	return exec(ctx, r.store, query, "notification", false)
}

// List returns the audience's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, audience models.NotificationAudience) ([]models.Notification, error) {
	query := r.sb.Select("id", "audience", "title", "message", "created_at").From("notifications").
		Where(squirrel.Eq{"audience": audience}).
		OrderBy("created_at DESC", "id")
	return selectMany[models.Notification](ctx, r.store, query, "notifications")
}
