package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestOpen_InMemory_CreatesSettingsTable(t *testing.T) {
	db, err := Open(context.Background(), InMemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.True(t, tableExists(t, db, "settings"))
}

func TestOpen_File_CreatesDirectoriesAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "settings.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO settings(key, value) VALUES ('serverUrl', 'https://x')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var v string
	require.NoError(t, db.QueryRow(`SELECT value FROM settings WHERE key='serverUrl'`).Scan(&v))
	require.Equal(t, "https://x", v)
}

func TestRunMigrations_ErrorWrapped(t *testing.T) {
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	_, err := Open(context.Background(), InMemoryDSN)
	require.ErrorContains(t, err, "run migrations: boom")
}
