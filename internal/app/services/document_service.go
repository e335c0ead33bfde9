package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/auth"
	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
	"github.com/edvios/backend/internal/pkg/filestorage"
)

const documentsPath = "documents"

// DocumentService handles student documents and their stored objects
type DocumentService struct {
	documentRepo repositories.DocumentRepository
	studentRepo  repositories.StudentRepository
	storage      filestorage.FileStorage
	authz        *auth.AuthorizationService
	logger       zerolog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(repos *repositories.Repositories, storage filestorage.FileStorage, authz *auth.AuthorizationService, logger zerolog.Logger) *DocumentService {
	return &DocumentService{
		documentRepo: repos.Documents,
		studentRepo:  repos.Students,
		storage:      storage,
		authz:        authz,
		logger:       logger,
	}
}

func (s *DocumentService) requireStudent(ctx context.Context, studentID string) error {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewBadRequestError("Complete your student profile before adding documents")
		}
		return fmt.Errorf("error getting student: %w", err)
	}
	return nil
}

// Create registers a document hosted elsewhere
func (s *DocumentService) Create(ctx context.Context, studentID string, req *dto.CreateDocumentRequest) (*models.Document, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}

	document := &models.Document{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Name:      req.Name,
		Type:      req.Type,
		URL:       req.URL,
	}
	if err := s.documentRepo.Create(ctx, document); err != nil {
		s.logger.Error().Err(err).Str("studentID", studentID).Msg("Failed to create document")
		return nil, fmt.Errorf("error creating document: %w", err)
	}
	return document, nil
}

// Upload stores the file and records it. The stored object is removed again when the
// record cannot be written.
func (s *DocumentService) Upload(ctx context.Context, studentID, docType string, file *multipart.FileHeader) (*models.Document, error) {
	if file == nil {
		return nil, apperrors.NewBadRequestError("File is required")
	}
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}

	stored, err := s.storage.SaveFileWithPath(file, path.Join(documentsPath, studentID))
	if err != nil {
		s.logger.Error().Err(err).Str("studentID", studentID).Str("filename", file.Filename).Msg("Failed to store document")
		return nil, apperrors.NewExternalServiceError("Failed to store document", err)
	}

	if strings.TrimSpace(docType) == "" {
		docType = stored.MimeType
	}
	document := &models.Document{
		ID:         uuid.NewString(),
		StudentID:  studentID,
		Name:       stored.Filename,
		Type:       docType,
		URL:        stored.URL,
		StorageKey: &stored.Key,
	}
	if err := s.documentRepo.Create(ctx, document); err != nil {
		if delErr := s.storage.DeleteFile(stored.Key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", stored.Key).Msg("Failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("error creating document: %w", err)
	}

	s.logger.Info().
		Str("documentID", document.ID).
		Str("studentID", studentID).
		Int64("size", stored.FileSize).
		Msg("Document uploaded")
	return document, nil
}

// ListMine lists the caller's documents
func (s *DocumentService) ListMine(ctx context.Context, studentID string) ([]models.Document, error) {
	return s.documentRepo.ListByStudent(ctx, studentID)
}

// ListForStudent lists a student's documents for an admin or the assigned agent
func (s *DocumentService) ListForStudent(ctx context.Context, actor auth.Actor, studentID string) ([]models.Document, error) {
	if err := s.authz.ValidateStudentAccess(ctx, actor, studentID); err != nil {
		return nil, err
	}
	return s.documentRepo.ListByStudent(ctx, studentID)
}

// Delete removes the caller's document; its stored object goes best-effort
func (s *DocumentService) Delete(ctx context.Context, studentID, documentID string) error {
	document, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return notFound(err, "Document not found", "getting document")
	}
	if document.StudentID != studentID {
		return apperrors.NewForbiddenError("You can only delete your own documents")
	}

	if err := s.documentRepo.Delete(ctx, documentID); err != nil {
		return notFound(err, "Document not found", "deleting document")
	}

	if document.StorageKey != nil {
		if err := s.storage.DeleteFile(*document.StorageKey); err != nil {
			s.logger.Warn().Err(err).Str("documentID", documentID).Msg("Failed to delete stored document")
		}
	}
	return nil
}
