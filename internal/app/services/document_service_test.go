package services

import (
	"context"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/auth"
	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories/inmem"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	storage := &fakeStorage{}
	authz := auth.NewAuthorizationService(repos.Assignments, zerolog.Nop())
	svc := NewDocumentService(repos, storage, authz, zerolog.Nop())

	agent := createAgent(t, repos, models.RoleAgent)
	student := createStudent(t, repos)
	other := createStudent(t, repos)
	_, err := repos.Assignments.Upsert(ctx, student.ID, agent.ID)
	require.NoError(t, err)

	linked, err := svc.Create(ctx, student.ID, &dto.CreateDocumentRequest{Name: "Transcript", Type: "TRANSCRIPT", URL: "https://drive.example.com/t.pdf"})
	require.NoError(t, err)
	assert.Nil(t, linked.StorageKey)

	uploaded, err := svc.Upload(ctx, student.ID, "", &multipart.FileHeader{Filename: "passport.pdf", Size: 1024})
	require.NoError(t, err)
	require.NotNil(t, uploaded.StorageKey)
	assert.True(t, strings.HasPrefix(*uploaded.StorageKey, "documents/"+student.ID+"/"))
	assert.Equal(t, "application/pdf", uploaded.Type)

	_, err = svc.Upload(ctx, agent.ID, "PASSPORT", &multipart.FileHeader{Filename: "x.pdf"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	mine, err := svc.ListMine(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	forAgent, err := svc.ListForStudent(ctx, auth.Actor{UserID: agent.ID, Role: models.RoleAgent}, student.ID)
	require.NoError(t, err)
	assert.Len(t, forAgent, 2)
	_, err = svc.ListForStudent(ctx, auth.Actor{UserID: other.ID, Role: models.RoleStudent}, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	assert.ErrorIs(t, svc.Delete(ctx, other.ID, uploaded.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, student.ID, uploaded.ID))
	assert.Equal(t, []string{*uploaded.StorageKey}, storage.deleted)
	assert.ErrorIs(t, svc.Delete(ctx, student.ID, uploaded.ID), apperrors.ErrResourceNotFound)
}

func TestNotificationsByAudience(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	svc := NewNotificationService(repos, zerolog.Nop())

	_, err := svc.Create(ctx, &dto.CreateNotificationRequest{Title: "Intake open", Message: "September intake is open", Audience: models.AudienceStudents})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &dto.CreateNotificationRequest{Title: "Commission", Message: "New rates", Audience: models.AudienceAgents})
	require.NoError(t, err)

	forStudents, err := svc.ListForAudience(ctx, models.AudienceStudents)
	require.NoError(t, err)
	require.Len(t, forStudents, 1)
	assert.Equal(t, "Intake open", forStudents[0].Title)
}
