// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package sqlite

import (
	"database/sql"
	"errors"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/tidemark-dev/tidemark/internal/store"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// Compile-time interface checks.
var (
	_ store.MetadataStore  = (*MetadataStore)(nil)
	_ store.NamespaceStore = (*namespaceStore)(nil)
	_ store.JobStore       = (*jobStore)(nil)
	_ store.DatasetStore   = (*datasetStore)(nil)
)

// defaultListLimit applies when ListOpts.Limit is unset.
const defaultListLimit = 100

// MetadataStore implements store.MetadataStore backed by a single SQLite
// database.
type MetadataStore struct {
	db         *sql.DB
	namespaces *namespaceStore
	jobs       *jobStore
	datasets   *datasetStore
}

// NewMetadataStore opens (or creates) a SQLite database at dbPath and
// initialises the namespaces, jobs, and datasets tables.
func NewMetadataStore(dbPath string) (*MetadataStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, dbError(err, "opening metadata db")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, dbError(err, "pinging metadata db")
	}

	if err := migrateMetadata(db); err != nil {
		_ = db.Close()
		return nil, dbError(err, "migrating metadata db")
	}

	return &MetadataStore{
		db:         db,
		namespaces: &namespaceStore{db: db},
		jobs:       &jobStore{db: db},
		datasets:   &datasetStore{db: db},
	}, nil
}

func migrateMetadata(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS namespaces (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	owner       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	namespace_id TEXT NOT NULL,
	name         TEXT NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	FOREIGN KEY (namespace_id) REFERENCES namespaces(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_namespace_name
	ON jobs(namespace_id, name);

CREATE TABLE IF NOT EXISTS datasets (
	id           TEXT PRIMARY KEY,
	namespace_id TEXT NOT NULL,
	name         TEXT NOT NULL,
	urn          TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	FOREIGN KEY (namespace_id) REFERENCES namespaces(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_datasets_namespace_name
	ON datasets(namespace_id, name);
`
	_, err := db.Exec(ddl)
	return err
}

// Namespaces returns the NamespaceStore sub-store.
func (m *MetadataStore) Namespaces() store.NamespaceStore { return m.namespaces }

// Jobs returns the JobStore sub-store.
func (m *MetadataStore) Jobs() store.JobStore { return m.jobs }

// Datasets returns the DatasetStore sub-store.
func (m *MetadataStore) Datasets() store.DatasetStore { return m.datasets }

// Close closes the underlying database connection.
func (m *MetadataStore) Close() error { return m.db.Close() }

// insertError classifies a failed INSERT. Unique violations become
// conflicts, foreign key violations invalid input.
func insertError(err error, entity, id string) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return tmerr.Errorf(tmerr.CodeStoreConflict, "%s %s already exists: %w", entity, id, store.ErrConflict)
		case sqlite3.ErrConstraintForeignKey:
			return tmerr.Errorf(tmerr.CodeStoreInvalidInput, "%s %s references an unknown namespace: %w", entity, id, store.ErrInvalidInput)
		}
	}
	return dbError(err, "inserting %s %s", entity, id)
}

// dbError codes an unexpected database failure. The result matches
// store.ErrDatabase and the driver error.
func dbError(err error, format string, args ...any) error {
	return tmerr.Errorf(tmerr.CodeStoreDatabaseFailure, format+": %w: %w", append(args, store.ErrDatabase, err)...)
}

func notFound(entity, key string) error {
	return tmerr.Errorf(tmerr.CodeStoreEntityNotFound, "%s %s: %w", entity, key, store.ErrNotFound)
}

func limitOf(opts store.ListOpts) int {
	if opts.Limit <= 0 {
		return defaultListLimit
	}
	return opts.Limit
}

// formatTime serialises a time.Time to RFC3339 with nanosecond precision.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserialises a time string stored in the database.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
