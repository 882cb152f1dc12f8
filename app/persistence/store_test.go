package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/umputun/jobdao/app/cache"
)

// prepStore makes migrated store in temp dir with a real file cache
func prepStore(t *testing.T) (*Store, *cache.Files) {
	t.Helper()
	tmpDir := t.TempDir()
	db, err := OpenDB(DBParams{Path: filepath.Join(tmpDir, "test.db"), MaxConns: 4, Timeout: 5 * time.Second})
	require.NoError(t, err)
	require.NoError(t, Migrate(db, MigrateOpts{}))

	fc, err := cache.New(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	s := New(db, fc)
	t.Cleanup(func() { _ = s.Close() })
	return s, fc
}

// prepMockDB makes DB on top of sqlmock
func prepMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewDB(sqlx.NewDb(mockDB, "sqlite"), 1, time.Second), mock
}

func countRows(t *testing.T, s *Store, query string, args ...any) int {
	t.Helper()
	var count int
	require.NoError(t, s.db.db.Get(&count, query, args...))
	return count
}
