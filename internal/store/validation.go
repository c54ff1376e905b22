// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package store

import (
	"strings"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// nodeKeySeparator is reserved by the graph node key codec, which embeds
// namespace names in node keys.
const nodeKeySeparator = "␟"

// Validate checks that the Namespace has all required fields set correctly.
func (n Namespace) Validate() error {
	if n.ID == "" {
		return tmerr.New(tmerr.CodeStoreInvalidInput, "namespace: ID is required")
	}
	if err := validName("namespace", n.Name); err != nil {
		return err
	}
	if strings.Contains(n.Name, nodeKeySeparator) {
		return tmerr.Errorf(tmerr.CodeStoreInvalidInput, "namespace: Name must not contain %q", nodeKeySeparator)
	}
	if n.CreatedAt.IsZero() {
		return tmerr.New(tmerr.CodeStoreInvalidInput, "namespace: CreatedAt is required")
	}
	return nil
}

// Validate checks that the Job has all required fields set correctly.
func (j Job) Validate() error {
	if j.ID == "" {
		return tmerr.New(tmerr.CodeStoreInvalidInput, "job: ID is required")
	}
	if j.NamespaceID == "" {
		return tmerr.New(tmerr.CodeStoreInvalidInput, "job: NamespaceID is required")
	}
	if err := validName("job", j.Name); err != nil {
		return err
	}
	if j.CreatedAt.IsZero() {
		return tmerr.New(tmerr.CodeStoreInvalidInput, "job: CreatedAt is required")
	}
	return nil
}

// Validate checks that the Dataset has all required fields set correctly.
func (d Dataset) Validate() error {
	if d.ID == "" {
		return tmerr.New(tmerr.CodeStoreInvalidInput, "dataset: ID is required")
	}
	if d.NamespaceID == "" {
		return tmerr.New(tmerr.CodeStoreInvalidInput, "dataset: NamespaceID is required")
	}
	if err := validName("dataset", d.Name); err != nil {
		return err
	}
	if d.CreatedAt.IsZero() {
		return tmerr.New(tmerr.CodeStoreInvalidInput, "dataset: CreatedAt is required")
	}
	return nil
}

func validName(entity, name string) error {
	if strings.TrimSpace(name) == "" {
		return tmerr.Errorf(tmerr.CodeStoreInvalidInput, "%s: Name is required", entity)
	}
	return nil
}
