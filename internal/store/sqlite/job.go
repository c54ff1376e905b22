// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tidemark-dev/tidemark/internal/store"
)

type jobStore struct {
	db *sql.DB
}

const jobColumns = `id, namespace_id, name, location, description, created_at, updated_at`

func (s *jobStore) Create(ctx context.Context, job *store.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = job.CreatedAt
	}

	const q = `INSERT INTO jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		job.ID, job.NamespaceID, job.Name, job.Location, job.Description,
		formatTime(job.CreatedAt), formatTime(job.UpdatedAt),
	)
	if err != nil {
		return insertError(err, "job", job.Name)
	}
	return nil
}

func (s *jobStore) Get(ctx context.Context, id string) (*store.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`
	job, err := scanJob(s.db.QueryRowContext(ctx, q, id))
	return oneJob(job, err, id)
}

func (s *jobStore) GetByName(ctx context.Context, namespaceID, name string) (*store.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE namespace_id = ? AND name = ?`
	job, err := scanJob(s.db.QueryRowContext(ctx, q, namespaceID, name))
	return oneJob(job, err, name)
}

func oneJob(job *store.Job, err error, key string) (*store.Job, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("job", key)
	}
	if err != nil {
		return nil, dbError(err, "getting job %s", key)
	}
	return job, nil
}

func (s *jobStore) List(ctx context.Context, namespaceID string, opts store.ListOpts) ([]*store.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE namespace_id = ? ORDER BY name ASC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, q, namespaceID, limitOf(opts), opts.Offset)
	if err != nil {
		return nil, dbError(err, "listing jobs for namespace %s", namespaceID)
	}
	defer rows.Close()

	var out []*store.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, dbError(err, "scanning job row")
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func scanJob(r rowScanner) (*store.Job, error) {
	var job store.Job
	var createdAt, updatedAt string
	if err := r.Scan(&job.ID, &job.NamespaceID, &job.Name, &job.Location, &job.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	return &job, nil
}
