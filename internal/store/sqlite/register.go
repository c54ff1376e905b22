// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package sqlite

import (
	"github.com/tidemark-dev/tidemark/internal/store"
)

func init() {
	store.RegisterBackend("sqlite", func(path string) (store.MetadataStore, error) {
		s, err := NewMetadataStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
