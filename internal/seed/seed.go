package seed

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appModels "github.com/edvios/backend/internal/app/models"
	appRepos "github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

var (
	defaultIntakes = []string{"January", "May", "September"}

	defaultSubjects = []string{
		"Business & Management",
		"Computer Science",
		"Engineering",
		"Law",
		"Medicine & Health",
		"Arts & Humanities",
	}
)

// CreateDefaultData creates the default intakes and subjects if they don't exist.
// The settings row is created by the migrations.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Intakes/Subjects)...")
	var finalErr error // To collect potential errors without stopping the process

	for _, name := range defaultIntakes {
		err := repos.Intakes.Create(ctx, &appModels.Intake{ID: uuid.NewString(), Name: name})
		if err != nil && !errors.Is(err, apperrors.ErrConflict) {
			lgr.Error().Err(err).Str("intake", name).Msg("Error creating default intake")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, name := range defaultSubjects {
		err := repos.Subjects.Create(ctx, &appModels.Subject{ID: uuid.NewString(), Name: name})
		if err != nil && !errors.Is(err, apperrors.ErrConflict) {
			lgr.Error().Err(err).Str("subject", name).Msg("Error creating default subject")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if _, err := repos.Settings.Get(ctx); err != nil {
		lgr.Error().Err(err).Msg("Settings row is missing")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr // Return collected errors, if any
}
