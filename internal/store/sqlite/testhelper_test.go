// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tidemark-dev/tidemark/internal/store/sqlite"
)

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name+".db")
}

// openStore opens a fresh metadata store that is closed at test end.
func openStore(t *testing.T, name string) *sqlite.MetadataStore {
	t.Helper()
	ms, err := sqlite.NewMetadataStore(testDBPath(t, name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ms.Close() })
	return ms
}
