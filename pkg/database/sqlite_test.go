package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrateSQLiteSeedsCatalog(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "survey.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, MigrateSQLite(ctx, db))
	// Second run must be a no-op.
	require.NoError(t, MigrateSQLite(ctx, db))

	var questions, options int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&questions))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM answer_options`).Scan(&options))
	assert.Equal(t, 3, questions)
	assert.Equal(t, 12, options)
}

func TestUniqueViolationDetection(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "survey.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, MigrateSQLite(ctx, db))

	_, err = db.ExecContext(ctx, `INSERT INTO users (email) VALUES ('a@example.com')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO users (email) VALUES ('a@example.com')`)
	require.Error(t, err)
	assert.True(t, IsSQLiteUniqueViolation(err))
	assert.False(t, IsPgUniqueViolation(err))
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n  CREATE INDEX i ON a(x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a(x)"}, got)
}
