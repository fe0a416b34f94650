package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrecall/chatrecall/internal/searcher"
)

func setupSearchPipeline(t *testing.T) (*pipeline, *searcher.Searcher) {
	p := setupPipeline(t)
	return p, searcher.New(p.store, NewMockEmbedder(128))
}

func TestSearch_EndToEnd(t *testing.T) {
	p, s := setupSearchPipeline(t)
	ctx := context.Background()

	writeClaudeTranscript(t, p.claudeRoot, "-home-dev-frontend", "sess-pool", 2)
	writeCodexTranscript(t, p.codexRoot, "sess-migration")

	_, err := p.orch.Run(ctx, false)
	require.NoError(t, err)

	resp, err := s.Search(ctx, searcher.SearchRequest{
		Query: "migration timing out on the orders table",
		Limit: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	// Every result carries the full derived shape
	for _, r := range resp.Results {
		assert.NotEmpty(t, r.Content)
		assert.NotEmpty(t, r.Project)
		assert.NotEmpty(t, r.SessionID)
		assert.False(t, r.Timestamp.IsZero())
	}
}

func TestSearch_ProjectFilterEndToEnd(t *testing.T) {
	p, s := setupSearchPipeline(t)
	ctx := context.Background()

	writeClaudeTranscript(t, p.claudeRoot, "-home-dev-frontend", "sess-front", 2)
	writeCodexTranscript(t, p.codexRoot, "sess-back")

	_, err := p.orch.Run(ctx, false)
	require.NoError(t, err)

	resp, err := s.Search(ctx, searcher.SearchRequest{
		Query:   "connection pool sizing",
		Limit:   10,
		Project: "frontend",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	for _, r := range resp.Results {
		assert.Equal(t, "/home/dev/frontend", r.Project)
	}
}

func TestSearch_OverFetchSurvivesFiltering(t *testing.T) {
	p, s := setupSearchPipeline(t)
	ctx := context.Background()

	// Many sessions across two projects; a tight limit plus a project
	// filter must still fill up from the over-fetched candidate set
	for i := 0; i < 6; i++ {
		writeClaudeTranscript(t, p.claudeRoot, "-home-dev-frontend", fmt.Sprintf("front-%d", i), 1)
		writeClaudeTranscript(t, p.claudeRoot, "-home-dev-backend", fmt.Sprintf("back-%d", i), 1)
	}

	_, err := p.orch.Run(ctx, false)
	require.NoError(t, err)

	resp, err := s.Search(ctx, searcher.SearchRequest{
		Query:   "database connection pool sizing",
		Limit:   3,
		Project: "backend",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
	for _, r := range resp.Results {
		assert.Equal(t, "/home/dev/backend", r.Project)
	}
}

func TestSearch_AfterIncrementalReindex(t *testing.T) {
	p, s := setupSearchPipeline(t)
	ctx := context.Background()

	writeClaudeTranscript(t, p.claudeRoot, "-home-dev-frontend", "sess-live", 1)
	_, err := p.orch.Run(ctx, false)
	require.NoError(t, err)

	// New content arrives and gets picked up by a single-file trigger,
	// the same entry point the watcher uses
	dir := filepath.Join(p.claudeRoot, "-home-dev-frontend")
	extra := `{"type":"user","timestamp":"2025-03-01T11:00:00Z","message":{"role":"user","content":"completely new topic about websocket reconnect storms"}}` + "\n"
	f, err := os.OpenFile(filepath.Join(dir, "sess-live.jsonl"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(extra)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := p.orch.IndexFile(ctx, filepath.Join(dir, "sess-live.jsonl"))
	require.NoError(t, err)
	require.False(t, res.Skipped)

	resp, err := s.Search(ctx, searcher.SearchRequest{
		Query: "websocket reconnect storms",
		Limit: 5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	found := false
	for _, r := range resp.Results {
		if r.SessionID == "sess-live" {
			found = true
		}
	}
	assert.True(t, found, "freshly appended content should be searchable")
}
