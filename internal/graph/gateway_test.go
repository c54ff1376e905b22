// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark-dev/tidemark/internal/graph"
	"github.com/tidemark-dev/tidemark/internal/graph/memgraph"
)

var (
	j1 = graph.Entity{Namespace: "ns1", ID: "J1", Name: "J1"}
	d1 = graph.Entity{Namespace: "ns1", ID: "D1", Name: "D1"}

	j1d1 = graph.EdgeRecord{
		Subject:          "J1",
		SubjectType:      "job",
		SubjectNamespace: "ns1",
		Predicate:        "to",
		Object:           "D1",
		ObjectType:       "dataset",
		ObjectNamespace:  "ns1",
	}
)

// failOn returns a write hook that fails the given call numbers with a
// transport error.
func failOn(calls ...int) memgraph.WriteHook {
	return func(call int, _ []graph.Triple) error {
		for _, c := range calls {
			if c == call {
				return graph.TransportError(errors.New("connection reset by peer"), "write triples")
			}
		}
		return nil
	}
}

func distinct(records []graph.EdgeRecord) []graph.EdgeRecord {
	seen := map[graph.EdgeRecord]bool{}
	var out []graph.EdgeRecord
	for _, r := range records {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func TestGateway_LinkThenQuery(t *testing.T) {
	ctx := context.Background()
	store := memgraph.New()
	gw := graph.NewGateway(store, graph.Config{})

	require.NoError(t, gw.LinkJobToDataset(ctx, j1, d1))

	fromDataset, err := gw.QueryDatasetSubgraph(ctx, "ns1", "D1")
	require.NoError(t, err)
	assert.Contains(t, fromDataset, j1d1)

	fromJob, err := gw.QueryJobSubgraph(ctx, "ns1", "J1")
	require.NoError(t, err)
	assert.Contains(t, fromJob, j1d1)
}

func TestGateway_DatasetToJobMirror(t *testing.T) {
	ctx := context.Background()
	gw := graph.NewGateway(memgraph.New(), graph.Config{})

	require.NoError(t, gw.LinkDatasetToJob(ctx, d1, j1))

	records, err := gw.QueryJobSubgraph(ctx, "ns1", "J1")
	require.NoError(t, err)
	assert.Contains(t, records, graph.EdgeRecord{
		Subject:          "D1",
		SubjectType:      "dataset",
		SubjectNamespace: "ns1",
		Predicate:        "to",
		Object:           "J1",
		ObjectType:       "job",
		ObjectNamespace:  "ns1",
	})
}

func TestGateway_DepthOneEdgesRepeat(t *testing.T) {
	ctx := context.Background()
	gw := graph.NewGateway(memgraph.New(), graph.Config{})
	require.NoError(t, gw.LinkJobToDataset(ctx, j1, d1))

	records, err := gw.QueryDatasetSubgraph(ctx, "ns1", "D1")
	require.NoError(t, err)
	assert.Equal(t, []graph.EdgeRecord{j1d1, j1d1}, records)
	assert.Equal(t, []graph.EdgeRecord{j1d1}, distinct(records))
}

func TestGateway_QueryUnknownNodeIsEmpty(t *testing.T) {
	gw := graph.NewGateway(memgraph.New(), graph.Config{})

	records, err := gw.QueryDatasetSubgraph(context.Background(), "ns1", "missing")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestGateway_DepthBound(t *testing.T) {
	ctx := context.Background()
	gw := graph.NewGateway(memgraph.New(), graph.Config{MaxDepth: 3})
	require.Equal(t, 3, gw.MaxDepth())

	// job0 -> ds0 -> job1 -> ds1 -> job2 -> ds2
	jobs := make([]graph.Entity, 3)
	datasets := make([]graph.Entity, 3)
	for i := range jobs {
		n := strconv.Itoa(i)
		jobs[i] = graph.Entity{Namespace: "chain", ID: "job" + n, Name: "job" + n}
		datasets[i] = graph.Entity{Namespace: "chain", ID: "ds" + n, Name: "ds" + n}
	}
	for i := range jobs {
		require.NoError(t, gw.LinkJobToDataset(ctx, jobs[i], datasets[i]))
		if i+1 < len(jobs) {
			require.NoError(t, gw.LinkDatasetToJob(ctx, datasets[i], jobs[i+1]))
		}
	}

	records, err := gw.QueryJobSubgraph(ctx, "chain", "job0")
	require.NoError(t, err)

	edges := map[string]bool{}
	for _, r := range distinct(records) {
		edges[r.Subject+"->"+r.Object] = true
	}
	assert.Equal(t, map[string]bool{
		"job0->ds0": true,
		"ds0->job1": true,
		"job1->ds1": true,
	}, edges)
}

func TestGateway_CyclicGraphTerminates(t *testing.T) {
	ctx := context.Background()
	gw := graph.NewGateway(memgraph.New(), graph.Config{})

	require.NoError(t, gw.LinkJobToDataset(ctx, j1, d1))
	require.NoError(t, gw.LinkDatasetToJob(ctx, d1, j1))

	records, err := gw.QueryJobSubgraph(ctx, "ns1", "J1")
	require.NoError(t, err)
	assert.Len(t, distinct(records), 2)
}

func TestGateway_LinkIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memgraph.New()
	gw := graph.NewGateway(store, graph.Config{})

	require.NoError(t, gw.LinkJobToDataset(ctx, j1, d1))
	once := store.Triples()

	require.NoError(t, gw.LinkJobToDataset(ctx, j1, d1))
	assert.Equal(t, 14, store.WriteCalls())
	assert.Equal(t, once, store.Triples())
	assert.Len(t, store.Triples(), 7)
}

func TestGateway_PartialWriteThenRetry(t *testing.T) {
	ctx := context.Background()
	store := memgraph.New(memgraph.WithWriteHook(failOn(4)))
	gw := graph.NewGateway(store, graph.Config{})

	err := gw.LinkJobToDataset(ctx, j1, d1)
	require.Error(t, err)
	assert.Equal(t, graph.KindPartialWrite, graph.KindOf(err))
	assert.True(t, graph.Retryable(err))

	var pw *graph.PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Equal(t, 3, pw.Written)
	assert.Equal(t, 7, pw.Total)
	assert.Len(t, store.Triples(), 3)

	require.NoError(t, gw.LinkJobToDataset(ctx, j1, d1))

	want, err := graph.LinkTriples(graph.LinkRequest{Job: j1, Dataset: d1, Direction: graph.JobToDataset})
	require.NoError(t, err)
	assert.ElementsMatch(t, want, store.Triples())
}

func TestGateway_FirstWriteFailureIsNotPartial(t *testing.T) {
	store := memgraph.New(memgraph.WithWriteHook(failOn(1)))
	gw := graph.NewGateway(store, graph.Config{})

	err := gw.LinkJobToDataset(context.Background(), j1, d1)
	require.Error(t, err)
	assert.Equal(t, graph.KindTransport, graph.KindOf(err))
	assert.Empty(t, store.Triples())
}

func TestGateway_LinkRetriesToConvergence(t *testing.T) {
	store := memgraph.New(memgraph.WithWriteHook(failOn(4)))
	gw := graph.NewGateway(store, graph.Config{Writer: graph.WriterConfig{MaxAttempts: 3}})

	require.NoError(t, gw.LinkJobToDataset(context.Background(), j1, d1))
	assert.Equal(t, 4+7, store.WriteCalls())
	assert.Len(t, store.Triples(), 7)
}

func TestGateway_LinkRetriesExhausted(t *testing.T) {
	store := memgraph.New(memgraph.WithWriteHook(failOn(2, 9)))
	gw := graph.NewGateway(store, graph.Config{Writer: graph.WriterConfig{MaxAttempts: 2, RetryBackoff: time.Millisecond}})

	err := gw.LinkJobToDataset(context.Background(), j1, d1)
	require.Error(t, err)

	var pw *graph.PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Equal(t, 6, pw.Written, "second attempt is the one reported")
}

func TestGateway_BatchWrites(t *testing.T) {
	var batches [][]graph.Triple
	store := memgraph.New(memgraph.WithWriteHook(func(_ int, triples []graph.Triple) error {
		batches = append(batches, triples)
		return nil
	}))
	gw := graph.NewGateway(store, graph.Config{Writer: graph.WriterConfig{BatchWrites: true}})

	require.NoError(t, gw.LinkJobToDataset(context.Background(), j1, d1))
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 7)
}

func TestGateway_BatchFailureIsNotPartial(t *testing.T) {
	store := memgraph.New(memgraph.WithWriteHook(failOn(1)))
	gw := graph.NewGateway(store, graph.Config{Writer: graph.WriterConfig{BatchWrites: true}})

	err := gw.LinkJobToDataset(context.Background(), j1, d1)
	require.Error(t, err)
	assert.Equal(t, graph.KindTransport, graph.KindOf(err))
}

func TestGateway_PreconditionSkipsStore(t *testing.T) {
	store := memgraph.New()
	gw := graph.NewGateway(store, graph.Config{Writer: graph.WriterConfig{MaxAttempts: 5}})

	err := gw.LinkJobToDataset(context.Background(), graph.Entity{Namespace: "ns1", Name: "J1"}, d1)
	require.Error(t, err)
	assert.Equal(t, graph.KindEncodingPrecondition, graph.KindOf(err))
	assert.Zero(t, store.WriteCalls())

	_, err = gw.QueryDatasetSubgraph(context.Background(), "", "D1")
	require.Error(t, err)
	assert.Equal(t, graph.KindEncodingPrecondition, graph.KindOf(err))
}

func TestGateway_MissingAttributeIsDecodeFailure(t *testing.T) {
	ctx := context.Background()
	store := memgraph.New()
	gw := graph.NewGateway(store, graph.Config{})

	jk, err := graph.EncodeNodeKey("ns1", "J1", graph.KindJob)
	require.NoError(t, err)
	dk, err := graph.EncodeNodeKey("ns1", "D1", graph.KindDataset)
	require.NoError(t, err)
	require.NoError(t, store.WriteTriples(ctx, []graph.Triple{{Subject: string(jk), Predicate: graph.PredicateTo, Object: string(dk)}}))

	_, err = gw.QueryNodeSubgraph(ctx, dk)
	require.Error(t, err)
	assert.Equal(t, graph.KindDecode, graph.KindOf(err))
}

func TestGateway_DeadlineIsTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	gw := graph.NewGateway(memgraph.New(), graph.Config{})
	_, err := gw.QueryJobSubgraph(ctx, "ns1", "J1")
	require.Error(t, err)
	assert.Equal(t, graph.KindTimeout, graph.KindOf(err))
}

type recordingObserver struct {
	mu      sync.Mutex
	writes  int
	links   []error
	queries []string
}

func (r *recordingObserver) ObserveWrite(int, error) {
	r.mu.Lock()
	r.writes++
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveLink(err error) {
	r.mu.Lock()
	r.links = append(r.links, err)
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveQuery(kind string, _ time.Duration, _ error) {
	r.mu.Lock()
	r.queries = append(r.queries, kind)
	r.mu.Unlock()
}

func TestGateway_Observers(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	gw := graph.NewGateway(memgraph.New(), graph.Config{}, obs)

	require.NoError(t, gw.LinkJobToDataset(ctx, j1, d1))
	_, err := gw.QueryDatasetSubgraph(ctx, "ns1", "D1")
	require.NoError(t, err)
	_, err = gw.QueryJobSubgraph(ctx, "ns1", "J1")
	require.NoError(t, err)

	assert.Equal(t, 7, obs.writes)
	assert.Equal(t, []error{nil}, obs.links)
	assert.Equal(t, []string{"dataset", "job"}, obs.queries)
}

func TestGateway_Health(t *testing.T) {
	ctx := context.Background()
	store := memgraph.New(memgraph.WithWriteHook(failOn(1)))
	gw := graph.NewGateway(store, graph.Config{})

	assert.True(t, gw.Health().Available)

	require.Error(t, gw.LinkJobToDataset(ctx, j1, d1))
	h := gw.Health()
	assert.False(t, h.Available)
	assert.Equal(t, int64(1), h.FailureCount)
	require.NotNil(t, h.LastFailureAt)
	require.NotNil(t, h.CooldownUntil)
	assert.Equal(t, h.LastFailureAt.Add(graph.DefaultHealthCooldown), *h.CooldownUntil)

	require.NoError(t, gw.LinkJobToDataset(ctx, j1, d1))
	assert.True(t, gw.Health().Available)
}

func TestNewStore_Registry(t *testing.T) {
	s, err := graph.NewStore(graph.BackendConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &memgraph.Store{}, s)

	_, err = graph.NewStore(graph.BackendConfig{Backend: "neo4j"})
	require.Error(t, err)
}
