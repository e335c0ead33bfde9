package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/app/repositories/inmem"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

// seedProgram stores an institution with one program and returns the program
func seedProgram(t *testing.T, catalog CatalogService) *models.Program {
	t.Helper()
	ctx := context.Background()

	institution := &models.Institution{
		Name:    "University of Leeds",
		Type:    models.InstituteTypeUniversity,
		Country: "United Kingdom",
		City:    "Leeds",
		Status:  models.InstituteStatusActive,
	}
	require.NoError(t, catalog.CreateInstitution(ctx, institution))

	program := &models.Program{
		Title:         "MSc Data Science",
		Level:         "POSTGRADUATE",
		InstitutionID: institution.ID,
		TuitionFee:    decimal.NewFromInt(28500),
	}
	require.NoError(t, catalog.CreateProgram(ctx, program))
	return program
}

func TestCatalogPrograms(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	catalog := NewCatalogService(repos, zerolog.Nop())

	intake, err := catalog.CreateIntake(ctx, "September 2026")
	require.NoError(t, err)
	_, err = catalog.CreateIntake(ctx, "september 2026")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	program := seedProgram(t, catalog)
	program.IntakeID = &intake.ID
	require.NoError(t, catalog.UpdateProgram(ctx, program))

	got, err := catalog.GetProgramByID(ctx, program.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Institution)
	assert.Equal(t, "University of Leeds", got.Institution.Name)
	require.NotNil(t, got.Intake)
	assert.Equal(t, intake.ID, got.Intake.ID)

	t.Run("references are checked", func(t *testing.T) {
		missing := "missing"
		tests := []struct {
			name    string
			program models.Program
			wantErr error
		}{
			{"unknown institution", models.Program{Title: "BSc", InstitutionID: "missing"}, apperrors.ErrResourceNotFound},
			{"unknown intake", models.Program{Title: "BSc", InstitutionID: program.InstitutionID, IntakeID: &missing}, apperrors.ErrResourceNotFound},
			{"empty title", models.Program{InstitutionID: program.InstitutionID}, apperrors.ErrValidationFailed},
			{"negative fee", models.Program{Title: "BSc", InstitutionID: program.InstitutionID, TuitionFee: decimal.NewFromInt(-1)}, apperrors.ErrValidationFailed},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := tt.program
				assert.ErrorIs(t, catalog.CreateProgram(ctx, &p), tt.wantErr)
			})
		}
	})

	t.Run("deleting the intake keeps the program", func(t *testing.T) {
		require.NoError(t, catalog.DeleteIntake(ctx, intake.ID))
		got, err := catalog.GetProgramByID(ctx, program.ID)
		require.NoError(t, err)
		assert.Nil(t, got.IntakeID)
	})

	listed, err := catalog.GetPrograms(ctx, repositories.ProgramFilter{Page: repositories.Page{Page: 1, Size: 10}, Search: "data"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), listed.Total)

	institutions, err := catalog.GetInstitutions(ctx, repositories.InstitutionFilter{Page: repositories.Page{Page: 1, Size: 10}, Country: "united kingdom"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), institutions.Total)

	require.NoError(t, catalog.DeleteInstitution(ctx, program.InstitutionID))
	_, err = catalog.GetProgramByID(ctx, program.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
