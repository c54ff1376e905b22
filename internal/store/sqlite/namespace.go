// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tidemark-dev/tidemark/internal/store"
)

type namespaceStore struct {
	db *sql.DB
}

const namespaceColumns = `id, name, owner, description, created_at, updated_at`

func (s *namespaceStore) Create(ctx context.Context, ns *store.Namespace) error {
	if err := ns.Validate(); err != nil {
		return err
	}
	if ns.UpdatedAt.IsZero() {
		ns.UpdatedAt = ns.CreatedAt
	}

	const q = `INSERT INTO namespaces (` + namespaceColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		ns.ID, ns.Name, ns.Owner, ns.Description,
		formatTime(ns.CreatedAt), formatTime(ns.UpdatedAt),
	)
	if err != nil {
		return insertError(err, "namespace", ns.Name)
	}
	return nil
}

func (s *namespaceStore) Get(ctx context.Context, id string) (*store.Namespace, error) {
	const q = `SELECT ` + namespaceColumns + ` FROM namespaces WHERE id = ?`
	return s.getOne(ctx, q, id)
}

func (s *namespaceStore) GetByName(ctx context.Context, name string) (*store.Namespace, error) {
	const q = `SELECT ` + namespaceColumns + ` FROM namespaces WHERE name = ?`
	return s.getOne(ctx, q, name)
}

func (s *namespaceStore) getOne(ctx context.Context, q, key string) (*store.Namespace, error) {
	ns, err := scanNamespace(s.db.QueryRowContext(ctx, q, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("namespace", key)
	}
	if err != nil {
		return nil, dbError(err, "getting namespace %s", key)
	}
	return ns, nil
}

func (s *namespaceStore) List(ctx context.Context, opts store.ListOpts) ([]*store.Namespace, error) {
	const q = `SELECT ` + namespaceColumns + ` FROM namespaces ORDER BY name ASC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, q, limitOf(opts), opts.Offset)
	if err != nil {
		return nil, dbError(err, "listing namespaces")
	}
	defer rows.Close()

	var out []*store.Namespace
	for rows.Next() {
		ns, err := scanNamespace(rows)
		if err != nil {
			return nil, dbError(err, "scanning namespace row")
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNamespace(r rowScanner) (*store.Namespace, error) {
	var ns store.Namespace
	var createdAt, updatedAt string
	if err := r.Scan(&ns.ID, &ns.Name, &ns.Owner, &ns.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	ns.CreatedAt = parseTime(createdAt)
	ns.UpdatedAt = parseTime(updatedAt)
	return &ns, nil
}
