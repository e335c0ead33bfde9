package inmem

import (
	"context"
	"slices"
	"time"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

type DocumentRepository struct{ s *Store }

func (r *DocumentRepository) Create(_ context.Context, d *models.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.students[d.StudentID]; !ok {
		return apperrors.NewBadRequestError("document references a missing record")
	}
	d.CreatedAt = r.s.now()
	r.s.documents[d.ID] = *d
	return nil
}

func (r *DocumentRepository) GetByID(_ context.Context, id string) (*models.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.documents[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("document not found")
	}
	return &d, nil
}

func (r *DocumentRepository) ListByStudent(_ context.Context, studentID string) ([]models.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Document{}
	for _, d := range r.s.documents {
		if d.StudentID == studentID {
			out = append(out, d)
		}
	}
	newestFirst(out,
		func(d models.Document) time.Time { return d.CreatedAt },
		func(d models.Document) string { return d.ID })
	return out, nil
}

func (r *DocumentRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.documents[id]; !ok {
		return apperrors.NewResourceNotFoundError("document not found")
	}
	delete(r.s.documents, id)
	return nil
}

type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n.CreatedAt = r.s.now()
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepository) List(_ context.Context, audience models.NotificationAudience) ([]models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Notification{}
	for _, n := range r.s.notifications {
		if n.Audience == audience {
			out = append(out, n)
		}
	}
	newestFirst(out,
		func(n models.Notification) time.Time { return n.CreatedAt },
		func(n models.Notification) string { return n.ID })
	return slices.Clip(out), nil
}
