package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrecall/chatrecall/pkg/types"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	// Use in-memory database for testing
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func makeRecords(sessionID, project string, ts time.Time, contents ...string) []Record {
	records := make([]Record, 0, len(contents))
	for i, content := range contents {
		records = append(records, Record{
			Segment: types.Segment{
				SessionID:  sessionID,
				Project:    project,
				Content:    content,
				Timestamp:  ts,
				ChunkIndex: i,
			},
			Embedding: []float32{float32(i), 1, 0},
		})
	}
	return records
}

func TestOpen(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	assert.NotNil(t, s.db)
	assert.NotNil(t, s.checkpoints)
}

func TestClose(t *testing.T) {
	s := setupTestStore(t)
	err := s.Close()
	assert.NoError(t, err)

	// Operations after close report ErrNotInitialized
	_, err = s.Status(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)

	err = s.PersistCheckpoints(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestReplaceSessionSegments(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	err := s.ReplaceSessionSegments(ctx, "sess-1", makeRecords("sess-1", "/home/dev/api", ts, "first", "second"))
	require.NoError(t, err)

	stored, err := s.SessionSegments(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "first", stored[0].Segment.Content)
	assert.Equal(t, "second", stored[1].Segment.Content)
	assert.Equal(t, 0, stored[0].Segment.ChunkIndex)
	assert.Equal(t, 1, stored[1].Segment.ChunkIndex)
}

func TestReplaceSessionSegments_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	records := makeRecords("sess-1", "/home/dev/api", ts, "alpha", "beta", "gamma")

	err := s.ReplaceSessionSegments(ctx, "sess-1", records)
	require.NoError(t, err)
	err = s.ReplaceSessionSegments(ctx, "sess-1", records)
	require.NoError(t, err)

	// Applying twice leaves the same set as applying once
	stored, err := s.SessionSegments(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestReplaceSessionSegments_ShrinksSet(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	err := s.ReplaceSessionSegments(ctx, "sess-1", makeRecords("sess-1", "/home/dev/api", ts, "a", "b", "c"))
	require.NoError(t, err)

	// Replacing with a smaller set removes the stale tail
	err = s.ReplaceSessionSegments(ctx, "sess-1", makeRecords("sess-1", "/home/dev/api", ts, "a"))
	require.NoError(t, err)

	stored, err := s.SessionSegments(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestReplaceSessionSegments_LeavesOtherSessions(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	err := s.ReplaceSessionSegments(ctx, "sess-1", makeRecords("sess-1", "/home/dev/api", ts, "one"))
	require.NoError(t, err)
	err = s.ReplaceSessionSegments(ctx, "sess-2", makeRecords("sess-2", "/home/dev/web", ts, "two"))
	require.NoError(t, err)

	stored, err := s.SessionSegments(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Equal(t, "one", stored[0].Segment.Content)
}

func TestReplaceSessionSegments_EmptySessionID(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	err := s.ReplaceSessionSegments(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestStatus_Empty(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	status, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRecords)
	assert.Equal(t, 0, status.DistinctProjects)
	assert.True(t, status.LastUpdated.IsZero())
}

func TestStatus(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	older := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	err := s.ReplaceSessionSegments(ctx, "sess-1", makeRecords("sess-1", "/home/dev/api", older, "a", "b"))
	require.NoError(t, err)
	err = s.ReplaceSessionSegments(ctx, "sess-2", makeRecords("sess-2", "/home/dev/web", newer, "c"))
	require.NoError(t, err)

	status, err := s.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRecords)
	assert.Equal(t, 2, status.DistinctProjects)
	assert.True(t, status.LastUpdated.Equal(newer))
}

func TestCheckpoints_InMemory(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	_, ok := s.Checkpoint("/logs/a.jsonl")
	assert.False(t, ok)

	mtime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetCheckpoint("/logs/a.jsonl", mtime)

	got, ok := s.Checkpoint("/logs/a.jsonl")
	assert.True(t, ok)
	assert.True(t, got.Equal(mtime))
	assert.Equal(t, 1, s.CheckpointCount())
}

func TestPersistCheckpoints_RoundTrip(t *testing.T) {
	dbPath := t.TempDir() + "/index.db"

	s, err := Open(dbPath)
	require.NoError(t, err)

	mtimeA := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mtimeB := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
	s.SetCheckpoint("/logs/a.jsonl", mtimeA)
	s.SetCheckpoint("/logs/b.jsonl", mtimeB)

	err = s.PersistCheckpoints(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopen and verify the map survives
	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.CheckpointCount())
	got, ok := reopened.Checkpoint("/logs/a.jsonl")
	assert.True(t, ok)
	assert.True(t, got.Equal(mtimeA))
	got, ok = reopened.Checkpoint("/logs/b.jsonl")
	assert.True(t, ok)
	assert.True(t, got.Equal(mtimeB))
}

func TestPersistCheckpoints_Overwrites(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	s.SetCheckpoint("/logs/a.jsonl", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.PersistCheckpoints(ctx))

	// Advance and persist again; table reflects the latest map
	newer := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	s.SetCheckpoint("/logs/a.jsonl", newer)
	require.NoError(t, s.PersistCheckpoints(ctx))

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM checkpoints").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestQuery_RanksBySimilarity(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	records := []Record{
		{
			Segment:   types.Segment{SessionID: "sess-1", Project: "/p", Content: "aligned", Timestamp: ts, ChunkIndex: 0},
			Embedding: []float32{1, 0, 0},
		},
		{
			Segment:   types.Segment{SessionID: "sess-1", Project: "/p", Content: "orthogonal", Timestamp: ts, ChunkIndex: 1},
			Embedding: []float32{0, 1, 0},
		},
		{
			Segment:   types.Segment{SessionID: "sess-1", Project: "/p", Content: "diagonal", Timestamp: ts, ChunkIndex: 2},
			Embedding: []float32{1, 1, 0},
		},
	}
	require.NoError(t, s.ReplaceSessionSegments(ctx, "sess-1", records))

	results, err := s.Query(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "aligned", results[0].Segment.Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Greater(t, results[1].Score, results[2].Score+1e-9, "diagonal should outrank orthogonal")
	assert.Equal(t, "diagonal", results[1].Segment.Content)
}

func TestQuery_RespectsLimit(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.ReplaceSessionSegments(ctx, "sess-1",
		makeRecords("sess-1", "/p", ts, "a", "b", "c", "d")))

	results, err := s.Query(ctx, []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestQuery_SkipsDimensionMismatch(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.ReplaceSessionSegments(ctx, "sess-1",
		makeRecords("sess-1", "/p", ts, "three-dim")))

	// Query with a different dimension finds nothing
	results, err := s.Query(ctx, []float32{1, 0, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
