package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationVersion(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"plain", "0001_init.sql", "0001"},
		{"with directory", "migrations/0002_add_chats.sql", "0002"},
		{"multiple underscores", "0003_add_index_on_users.sql", "0003"},
		{"no underscore", "0004.sql", "0004.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MigrationVersion(tt.filename))
		})
	}
}

func TestPendingFilesSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "0001_a.sql", "README.md", "0010_c.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0003_dir.sql"), 0o755))

	files, err := PendingFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.sql", "0002_b.sql", "0010_c.sql"}, files)
}

func TestPendingFilesMissingDirectory(t *testing.T) {
	_, err := PendingFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
