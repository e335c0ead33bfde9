package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/repositories/inmem"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()

	require.NoError(t, CreateDefaultData(ctx, repos, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, repos, zerolog.Nop()))

	intakes, err := repos.Intakes.List(ctx)
	require.NoError(t, err)
	assert.Len(t, intakes, len(defaultIntakes))

	subjects, err := repos.Subjects.List(ctx)
	require.NoError(t, err)
	assert.Len(t, subjects, len(defaultSubjects))
}
