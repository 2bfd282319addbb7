// Package testutil provides a throwaway SQLite-backed store.Store for
// package tests that need real persistence semantics (unique-constraint
// races, transactions, optimistic concurrency) rather than a mocked
// connection.
package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/vocabadapt/internal/store"
)

// NewSQLiteStore opens an in-memory SQLite database, migrates it, and
// registers cleanup to close it when t finishes.
func NewSQLiteStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := store.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(MigrationsDir()))
	return db
}

// MigrationsDir locates the repository's migrations directory relative to
// this source file, so tests work regardless of the package under test.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
