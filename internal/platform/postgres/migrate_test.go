package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesEmbedded(t *testing.T) {
	t.Parallel()

	files, err := MigrationFiles()
	require.NoError(t, err)
	require.Len(t, files, 4)

	joined := strings.Join(files, ",")
	for _, table := range []string{"books", "profiles", "listings", "requests"} {
		assert.Contains(t, joined, "create_"+table)
	}
}

func TestListingsMigrationCascadesImages(t *testing.T) {
	t.Parallel()

	content, err := migrationsFS.ReadFile("migrations/20250101000003_create_listings.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "REFERENCES listings(id) ON DELETE CASCADE")
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	t.Parallel()
	db, _ := newMockDB(t)
	err := Migrate(context.Background(), db, "sideways", nil)
	assert.ErrorContains(t, err, "unknown migration command")
}
