package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrecall/chatrecall/internal/embedder"
	"github.com/chatrecall/chatrecall/internal/store"
	"github.com/chatrecall/chatrecall/pkg/types"
)

func setupSearcher(t *testing.T) (*Searcher, *store.SQLiteStore, embedder.Embedder) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	return New(st, emb), st, emb
}

// seedSegment stores one segment embedded with the same provider the
// searcher uses, so a query with identical text scores 1.0 against it.
func seedSegment(t *testing.T, st *store.SQLiteStore, emb embedder.Embedder,
	sessionID, project, content string, ts time.Time) {
	e, err := emb.GenerateEmbedding(context.Background(), embedder.EmbeddingRequest{Text: content})
	require.NoError(t, err)

	err = st.ReplaceSessionSegments(context.Background(), sessionID, []store.Record{{
		Segment: types.Segment{
			SessionID: sessionID,
			Project:   project,
			Content:   content,
			Timestamp: ts,
		},
		Embedding: e.Vector,
	}})
	require.NoError(t, err)
}

func TestSearch_RanksExactMatchFirst(t *testing.T) {
	s, st, emb := setupSearcher(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	seedSegment(t, st, emb, "sess-1", "/home/dev/api", "User: how do I rotate the signing keys", ts)
	seedSegment(t, st, emb, "sess-2", "/home/dev/api", "User: unrelated chatter about lunch options today", ts)

	resp, err := s.Search(context.Background(), SearchRequest{
		Query: "User: how do I rotate the signing keys",
		Limit: 5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "sess-1", resp.Results[0].SessionID)
	assert.InDelta(t, 1.0, resp.Results[0].Score, 1e-6)
}

func TestSearch_EmptyQuery(t *testing.T) {
	s, _, _ := setupSearcher(t)

	_, err := s.Search(context.Background(), SearchRequest{Query: "   "})
	assert.Error(t, err)
}

func TestSearch_DefaultLimit(t *testing.T) {
	s, st, emb := setupSearcher(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, content := range []string{
		"segment one with enough words", "segment two with enough words",
		"segment three with enough words", "segment four with enough words",
		"segment five with enough words", "segment six with enough words",
		"segment seven with enough words",
	} {
		seedSegment(t, st, emb, "sess-"+string(rune('a'+i)), "/p", content, ts)
	}

	resp, err := s.Search(context.Background(), SearchRequest{Query: "segment"})
	require.NoError(t, err)
	assert.Len(t, resp.Results, DefaultLimit)
}

func TestSearch_ProjectSubstringFilter(t *testing.T) {
	s, st, emb := setupSearcher(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	seedSegment(t, st, emb, "sess-1", "/home/dev/webapp", "talking about the deploy pipeline", ts)
	seedSegment(t, st, emb, "sess-2", "/home/dev/api", "talking about the deploy pipeline too", ts)

	resp, err := s.Search(context.Background(), SearchRequest{
		Query:   "deploy pipeline",
		Project: "webapp",
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "/home/dev/webapp", resp.Results[0].Project)

	// Substring match, not exact: "dev" matches both projects
	resp, err = s.Search(context.Background(), SearchRequest{
		Query:   "deploy pipeline",
		Project: "dev",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
}

func TestSearch_DateRangeToday(t *testing.T) {
	s, st, emb := setupSearcher(t)
	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	seedSegment(t, st, emb, "sess-recent", "/p", "conversation from this morning", now.Add(-2*time.Hour))
	seedSegment(t, st, emb, "sess-old", "/p", "conversation from long ago", now.AddDate(0, 0, -10))

	resp, err := s.Search(context.Background(), SearchRequest{
		Query:     "conversation",
		DateRange: "today",
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "sess-recent", resp.Results[0].SessionID)
}

func TestSearch_UnrecognizedDateRange(t *testing.T) {
	s, st, emb := setupSearcher(t)
	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	seedSegment(t, st, emb, "sess-1", "/p", "some indexed conversation text", now.AddDate(0, 0, -100))

	// Garbage token means no filter, not an error
	resp, err := s.Search(context.Background(), SearchRequest{
		Query:     "conversation",
		DateRange: "fortnight",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestSearch_RecencySortOverridesSimilarity(t *testing.T) {
	s, st, emb := setupSearcher(t)
	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	// The exact-text match is the oldest record
	seedSegment(t, st, emb, "sess-best-old", "/p", "how do I rotate the signing keys", now.AddDate(0, 0, -30))
	seedSegment(t, st, emb, "sess-worse-new", "/p", "rotating keys came up again in passing", now)

	resp, err := s.Search(context.Background(), SearchRequest{
		Query:  "how do I rotate the signing keys",
		SortBy: SortRecency,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "sess-worse-new", resp.Results[0].SessionID)
	assert.Equal(t, "sess-best-old", resp.Results[1].SessionID)

	// Relevance sort puts the exact match back on top
	resp, err = s.Search(context.Background(), SearchRequest{
		Query:  "how do I rotate the signing keys",
		SortBy: SortRelevance,
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-best-old", resp.Results[0].SessionID)
}

func TestSearch_EmptyStore(t *testing.T) {
	s, _, _ := setupSearcher(t)

	resp, err := s.Search(context.Background(), SearchRequest{Query: "anything at all"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearch_CacheHit(t *testing.T) {
	s, st, emb := setupSearcher(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seedSegment(t, st, emb, "sess-1", "/p", "cached conversation content", ts)

	req := SearchRequest{Query: "cached conversation content", UseCache: true}

	first, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, len(first.Results), len(second.Results))
}

func TestSearch_CacheKeyDistinguishesFilters(t *testing.T) {
	s, st, emb := setupSearcher(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seedSegment(t, st, emb, "sess-1", "/home/dev/webapp", "filter sensitive content here", ts)

	first, err := s.Search(context.Background(), SearchRequest{Query: "filter sensitive", UseCache: true})
	require.NoError(t, err)
	require.Len(t, first.Results, 1)

	// Different project filter must not reuse the unfiltered entry
	second, err := s.Search(context.Background(), SearchRequest{Query: "filter sensitive", Project: "nomatch", UseCache: true})
	require.NoError(t, err)
	assert.False(t, second.CacheHit)
	assert.Empty(t, second.Results)
}
