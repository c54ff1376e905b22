// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tidemark-dev/tidemark/internal/store"
)

type datasetStore struct {
	db *sql.DB
}

const datasetColumns = `id, namespace_id, name, urn, description, created_at, updated_at`

func (s *datasetStore) Create(ctx context.Context, ds *store.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	if ds.UpdatedAt.IsZero() {
		ds.UpdatedAt = ds.CreatedAt
	}

	const q = `INSERT INTO datasets (` + datasetColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		ds.ID, ds.NamespaceID, ds.Name, ds.URN, ds.Description,
		formatTime(ds.CreatedAt), formatTime(ds.UpdatedAt),
	)
	if err != nil {
		return insertError(err, "dataset", ds.Name)
	}
	return nil
}

func (s *datasetStore) Get(ctx context.Context, id string) (*store.Dataset, error) {
	const q = `SELECT ` + datasetColumns + ` FROM datasets WHERE id = ?`
	ds, err := scanDataset(s.db.QueryRowContext(ctx, q, id))
	return oneDataset(ds, err, id)
}

func (s *datasetStore) GetByName(ctx context.Context, namespaceID, name string) (*store.Dataset, error) {
	const q = `SELECT ` + datasetColumns + ` FROM datasets WHERE namespace_id = ? AND name = ?`
	ds, err := scanDataset(s.db.QueryRowContext(ctx, q, namespaceID, name))
	return oneDataset(ds, err, name)
}

func oneDataset(ds *store.Dataset, err error, key string) (*store.Dataset, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("dataset", key)
	}
	if err != nil {
		return nil, dbError(err, "getting dataset %s", key)
	}
	return ds, nil
}

func (s *datasetStore) List(ctx context.Context, namespaceID string, opts store.ListOpts) ([]*store.Dataset, error) {
	const q = `SELECT ` + datasetColumns + ` FROM datasets WHERE namespace_id = ? ORDER BY name ASC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, q, namespaceID, limitOf(opts), opts.Offset)
	if err != nil {
		return nil, dbError(err, "listing datasets for namespace %s", namespaceID)
	}
	defer rows.Close()

	var out []*store.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, dbError(err, "scanning dataset row")
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

func (s *datasetStore) Count(ctx context.Context, namespaceID string) (int64, error) {
	const q = `SELECT COUNT(*) FROM datasets WHERE namespace_id = ?`
	var n int64
	if err := s.db.QueryRowContext(ctx, q, namespaceID).Scan(&n); err != nil {
		return 0, dbError(err, "counting datasets for namespace %s", namespaceID)
	}
	return n, nil
}

func scanDataset(r rowScanner) (*store.Dataset, error) {
	var ds store.Dataset
	var createdAt, updatedAt string
	if err := r.Scan(&ds.ID, &ds.NamespaceID, &ds.Name, &ds.URN, &ds.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	ds.CreatedAt = parseTime(createdAt)
	ds.UpdatedAt = parseTime(updatedAt)
	return &ds, nil
}
