// Package store is the persistence boundary: a single sqlx connection pool
// shared by internal/catalog, internal/progress, internal/placement and
// internal/activity, generalizing the teacher's internal/database package
// to the dual Postgres/SQLite driver switch it already used.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Store wraps the shared connection pool. All repositories in the sibling
// packages (catalog, progress, placement, activity) take a *Store.
type Store struct {
	DB     *sqlx.DB
	driver string
}

// Connect opens the pool for the given driver ("sqlite3" or "postgres") and
// DSN. SQLite connections are capped at one writer, per the teacher's
// connection.go: the engine does not support concurrent writers.
func Connect(driver, dsn string) (*Store, error) {
	if driver == "sqlite3" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(err, "create database directory")
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s database", driver)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, errors.Wrap(err, "enable foreign keys")
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	return &Store{DB: db, driver: driver}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Driver reports the underlying driver name ("sqlite3" or "postgres").
func (s *Store) Driver() string {
	return s.driver
}

// Rebind converts a query written with "?" placeholders to the driver's
// native placeholder style. Every repository builds queries with "?" and
// calls Rebind before executing, so one query string serves both drivers
// (the teacher's strings.Replace-per-callsite approach, centralized here).
func (s *Store) Rebind(query string) string {
	return s.DB.Rebind(query)
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic. Repositories that must read-then-write under one
// lock (progress updates, placement session answers) use this instead of
// issuing bare statements, so concurrent callers serialize correctly.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		// SQLite has no isolation levels; fall back to its default.
		tx, err = s.DB.BeginTxx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "begin transaction")
		}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rollback also failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// Migrate applies every pending migration found under migrationsDir.
func (s *Store) Migrate(migrationsDir string) error {
	var driver database.Driver
	var err error

	switch s.driver {
	case "postgres":
		driver, err = postgres.WithInstance(s.DB.DB, &postgres.Config{})
	default:
		driver, err = sqlite3.WithInstance(s.DB.DB, &sqlite3.Config{})
	}
	if err != nil {
		return errors.Wrap(err, "create migration driver")
	}

	source := "file://" + strings.TrimPrefix(migrationsDir, "./")
	m, err := migrate.NewWithDatabaseInstance(source, s.driver, driver)
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

// NotFoundToNil turns sql.ErrNoRows into (false, nil) instead of an error,
// the shape every GetX-or-absent repository method in this package returns.
func NotFoundToNil(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, err
}
