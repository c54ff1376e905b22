// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package store

import "time"

// Namespace groups jobs and datasets owned by one team or system.
type Namespace struct {
	ID          string
	Name        string
	Owner       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Job is a process that reads and writes datasets.
type Job struct {
	ID          string
	NamespaceID string
	Name        string
	Location    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Dataset is a table, file, or stream that jobs produce or consume.
type Dataset struct {
	ID          string
	NamespaceID string
	Name        string
	URN         string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListOpts provides pagination parameters for list operations.
type ListOpts struct {
	Limit  int
	Offset int
}
