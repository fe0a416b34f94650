package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chatrecall/chatrecall/internal/embedder"
	"github.com/chatrecall/chatrecall/internal/store"
	"github.com/chatrecall/chatrecall/pkg/types"
)

// SortMode controls result ordering
type SortMode string

const (
	// SortRelevance preserves similarity order from the vector query
	SortRelevance SortMode = "relevance"
	// SortRecency reorders filtered results by timestamp descending
	SortRecency SortMode = "recency"
)

const (
	// DefaultLimit is the result count when the caller doesn't specify one
	DefaultLimit = 5
	// MaxLimit caps the result count
	MaxLimit = 50

	// overFetchFactor over-provisions the candidate set so that
	// project/date filtering still leaves enough rows to fill the limit
	overFetchFactor = 4

	// cacheTTL bounds how long a cached response is served. Date tokens
	// resolve against the current moment, so entries must go stale fast.
	cacheTTL = time.Minute
)

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Query     string
	Limit     int
	Project   string // optional substring filter on the project field
	DateRange string // optional token, see ParseDateRange
	SortBy    SortMode
	UseCache  bool
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Results    []types.SearchResult
	Candidates int // raw rows fetched before filtering
	Duration   time.Duration
	CacheHit   bool
}

type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher embeds queries and post-processes nearest-neighbor rows
// with project/date filters and optional recency re-sort.
type Searcher struct {
	store    store.Store
	embedder embedder.Embedder
	cache    *lru.Cache[[32]byte, *cacheEntry]
	cacheMu  sync.RWMutex
	now      func() time.Time // injectable for date-range tests
}

// New creates a Searcher over the given store and embedder
func New(st store.Store, emb embedder.Embedder) *Searcher {
	cache, err := lru.New[[32]byte, *cacheEntry](256)
	if err != nil {
		// Only possible with a non-positive size
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		store:    st,
		embedder: emb,
		cache:    cache,
		now:      time.Now,
	}
}

// Search runs the full query path: embed the query, over-fetch
// candidates, filter, optionally re-sort by recency, truncate.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	start := time.Now()

	if s.embedder == nil {
		return nil, fmt.Errorf("embedder not initialized")
	}
	if err := s.normalizeRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	if req.UseCache {
		if cached := s.checkCache(req); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(start)
			return cached, nil
		}
	}

	emb, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: req.Query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := s.store.Query(ctx, emb.Vector, req.Limit*overFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	filtered := s.filter(candidates, req)

	if req.SortBy == SortRecency {
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Segment.Timestamp.After(filtered[j].Segment.Timestamp)
		})
	}

	if len(filtered) > req.Limit {
		filtered = filtered[:req.Limit]
	}

	results := make([]types.SearchResult, len(filtered))
	for i, qr := range filtered {
		results[i] = types.SearchResult{
			Content:   qr.Segment.Content,
			Project:   qr.Segment.Project,
			SessionID: qr.Segment.SessionID,
			Timestamp: qr.Segment.Timestamp,
			Score:     qr.Score,
		}
	}

	resp := &SearchResponse{
		Results:    results,
		Candidates: len(candidates),
		Duration:   time.Since(start),
	}

	if req.UseCache {
		s.storeCache(req, resp)
	}
	return resp, nil
}

// filter applies the project substring filter and, when the token is
// recognized, the date-range filter. An unrecognized token matches
// everything rather than erroring.
func (s *Searcher) filter(candidates []store.QueryResult, req SearchRequest) []store.QueryResult {
	dateRange, hasDate := ParseDateRange(req.DateRange, s.now())

	filtered := make([]store.QueryResult, 0, len(candidates))
	for _, qr := range candidates {
		if req.Project != "" && !strings.Contains(qr.Segment.Project, req.Project) {
			continue
		}
		if hasDate && !dateRange.Contains(qr.Segment.Timestamp) {
			continue
		}
		filtered = append(filtered, qr)
	}
	return filtered
}

// normalizeRequest validates the query and applies limit defaults
func (s *Searcher) normalizeRequest(req *SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	if req.SortBy == "" {
		req.SortBy = SortRelevance
	}
	return nil
}

// cacheKey derives a fixed-size key from every request field that
// affects the result set
func cacheKey(req SearchRequest) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s|%s|%s",
		req.Query, req.Limit, req.Project, req.DateRange, req.SortBy)))
}

func (s *Searcher) checkCache(req SearchRequest) *SearchResponse {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	entry, ok := s.cache.Get(cacheKey(req))
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}

	// Shallow copy so the caller's Duration/CacheHit writes don't
	// mutate the cached entry
	resp := *entry.response
	return &resp
}

func (s *Searcher) storeCache(req SearchRequest, resp *SearchResponse) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	stored := *resp
	s.cache.Add(cacheKey(req), &cacheEntry{
		response:  &stored,
		expiresAt: time.Now().Add(cacheTTL),
	})
}
