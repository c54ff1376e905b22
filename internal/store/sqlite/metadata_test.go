// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark-dev/tidemark/internal/store"
	"github.com/tidemark-dev/tidemark/internal/store/sqlite"
	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

func seedNamespace(t *testing.T, ms *sqlite.MetadataStore, id, name string) *store.Namespace {
	t.Helper()
	ns := &store.Namespace{ID: id, Name: name, Owner: "data-eng", CreatedAt: time.Now().Truncate(time.Millisecond)}
	require.NoError(t, ms.Namespaces().Create(context.Background(), ns))
	return ns
}

func TestNamespaceStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	ms := openStore(t, "ns-create")

	now := time.Now().Truncate(time.Millisecond)
	ns := &store.Namespace{ID: "ns-1", Name: "food_delivery", Owner: "analytics", Description: "orders", CreatedAt: now}
	require.NoError(t, ms.Namespaces().Create(ctx, ns))

	got, err := ms.Namespaces().Get(ctx, "ns-1")
	require.NoError(t, err)
	assert.Equal(t, "food_delivery", got.Name)
	assert.Equal(t, "analytics", got.Owner)
	assert.Equal(t, "orders", got.Description)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.True(t, now.Equal(got.UpdatedAt), "UpdatedAt defaults to CreatedAt")

	byName, err := ms.Namespaces().GetByName(ctx, "food_delivery")
	require.NoError(t, err)
	assert.Equal(t, "ns-1", byName.ID)
}

func TestNamespaceStore_NotFound(t *testing.T) {
	ms := openStore(t, "ns-notfound")

	_, err := ms.Namespaces().Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, tmerr.IsNotFound(err))
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestNamespaceStore_DuplicateNameConflicts(t *testing.T) {
	ms := openStore(t, "ns-dup")
	seedNamespace(t, ms, "ns-1", "shared")

	err := ms.Namespaces().Create(context.Background(), &store.Namespace{ID: "ns-2", Name: "shared", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.True(t, tmerr.IsConflict(err))
	assert.True(t, errors.Is(err, store.ErrConflict))
}

func TestNamespaceStore_RejectsInvalid(t *testing.T) {
	ms := openStore(t, "ns-invalid")

	tests := []struct {
		name string
		ns   store.Namespace
	}{
		{name: "no id", ns: store.Namespace{Name: "a", CreatedAt: time.Now()}},
		{name: "no name", ns: store.Namespace{ID: "x", CreatedAt: time.Now()}},
		{name: "separator", ns: store.Namespace{ID: "x", Name: "a␟b", CreatedAt: time.Now()}},
		{name: "no created_at", ns: store.Namespace{ID: "x", Name: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ms.Namespaces().Create(context.Background(), &tt.ns)
			require.Error(t, err)
			assert.True(t, tmerr.IsInvalidInput(err))
		})
	}
}

func TestNamespaceStore_List(t *testing.T) {
	ctx := context.Background()
	ms := openStore(t, "ns-list")
	for i, name := range []string{"charlie", "alpha", "bravo"} {
		seedNamespace(t, ms, fmt.Sprintf("ns-%d", i), name)
	}

	all, err := ms.Namespaces().List(ctx, store.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "charlie", all[2].Name)

	page, err := ms.Namespaces().List(ctx, store.ListOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bravo", page[0].Name)
}

func TestJobStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	ms := openStore(t, "job-create")
	seedNamespace(t, ms, "ns-1", "ns1")

	job := &store.Job{ID: "job-1", NamespaceID: "ns-1", Name: "etl_orders", Location: "git://etl", CreatedAt: time.Now()}
	require.NoError(t, ms.Jobs().Create(ctx, job))

	got, err := ms.Jobs().Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "etl_orders", got.Name)
	assert.Equal(t, "git://etl", got.Location)

	byName, err := ms.Jobs().GetByName(ctx, "ns-1", "etl_orders")
	require.NoError(t, err)
	assert.Equal(t, "job-1", byName.ID)

	_, err = ms.Jobs().GetByName(ctx, "ns-2", "etl_orders")
	assert.True(t, tmerr.IsNotFound(err))

	jobs, err := ms.Jobs().List(ctx, "ns-1", store.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestJobStore_UnknownNamespace(t *testing.T) {
	ms := openStore(t, "job-fk")

	err := ms.Jobs().Create(context.Background(), &store.Job{ID: "job-1", NamespaceID: "nope", Name: "x", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.True(t, tmerr.IsInvalidInput(err))
}

func TestJobStore_DuplicateNameConflicts(t *testing.T) {
	ctx := context.Background()
	ms := openStore(t, "job-dup")
	seedNamespace(t, ms, "ns-1", "ns1")

	require.NoError(t, ms.Jobs().Create(ctx, &store.Job{ID: "job-1", NamespaceID: "ns-1", Name: "x", CreatedAt: time.Now()}))
	err := ms.Jobs().Create(ctx, &store.Job{ID: "job-2", NamespaceID: "ns-1", Name: "x", CreatedAt: time.Now()})
	assert.True(t, tmerr.IsConflict(err))
}

func TestDatasetStore_CreateGetCount(t *testing.T) {
	ctx := context.Background()
	ms := openStore(t, "ds-create")
	seedNamespace(t, ms, "ns-1", "ns1")

	for i := 0; i < 3; i++ {
		ds := &store.Dataset{
			ID:          fmt.Sprintf("ds-%d", i),
			NamespaceID: "ns-1",
			Name:        fmt.Sprintf("public.orders_%d", i),
			URN:         fmt.Sprintf("urn:dataset:pg:public.orders_%d", i),
			CreatedAt:   time.Now(),
		}
		require.NoError(t, ms.Datasets().Create(ctx, ds))
	}

	got, err := ms.Datasets().Get(ctx, "ds-1")
	require.NoError(t, err)
	assert.Equal(t, "public.orders_1", got.Name)
	assert.Equal(t, "urn:dataset:pg:public.orders_1", got.URN)

	byName, err := ms.Datasets().GetByName(ctx, "ns-1", "public.orders_2")
	require.NoError(t, err)
	assert.Equal(t, "ds-2", byName.ID)

	n, err := ms.Datasets().Count(ctx, "ns-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	list, err := ms.Datasets().List(ctx, "ns-1", store.ListOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = ms.Datasets().Get(ctx, "missing")
	assert.True(t, tmerr.IsNotFound(err))
}

func TestMetadataStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t, "reopen")

	ms, err := sqlite.NewMetadataStore(path)
	require.NoError(t, err)
	require.NoError(t, ms.Namespaces().Create(ctx, &store.Namespace{ID: "ns-1", Name: "ns1", CreatedAt: time.Now()}))
	require.NoError(t, ms.Close())

	ms, err = sqlite.NewMetadataStore(path)
	require.NoError(t, err)
	defer func() { _ = ms.Close() }()

	got, err := ms.Namespaces().Get(ctx, "ns-1")
	require.NoError(t, err)
	assert.Equal(t, "ns1", got.Name)
}

func TestNewMetadataStore_BadPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "is-a-dir.db")
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err := sqlite.NewMetadataStore(path)
	require.Error(t, err)
	assert.True(t, tmerr.HasCode(err, tmerr.CodeStoreDatabaseFailure))
}

func TestRegisteredBackend(t *testing.T) {
	ms, err := store.NewMetadataStore(&store.StorageConfig{Backend: "sqlite", Path: testDBPath(t, "factory")})
	require.NoError(t, err)
	assert.NoError(t, ms.Close())

	_, err = store.NewMetadataStore(&store.StorageConfig{Backend: "postgres", Path: "x"})
	require.Error(t, err)
	assert.True(t, tmerr.HasCode(err, tmerr.CodeStoreBackendUnsupported))

	_, err = store.NewMetadataStore(&store.StorageConfig{})
	require.Error(t, err)
	assert.True(t, tmerr.IsInvalidInput(err))
}

func TestMetadataStore_DatabaseFailure(t *testing.T) {
	ms, err := sqlite.NewMetadataStore(testDBPath(t, "closed"))
	require.NoError(t, err)
	require.NoError(t, ms.Close())
	ctx := context.Background()

	err = ms.Namespaces().Create(ctx, &store.Namespace{ID: "ns-1", Name: "late", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.True(t, tmerr.HasCode(err, tmerr.CodeStoreDatabaseFailure), "got %v", err)
	assert.True(t, errors.Is(err, store.ErrDatabase))
	assert.False(t, errors.Is(err, store.ErrConflict))

	_, err = ms.Namespaces().Get(ctx, "ns-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrDatabase))
	assert.Equal(t, 500, tmerr.HTTPStatus(err))
}
