// Package searcher implements the query path over the vector index.
//
// A search embeds the free-text query, over-fetches a candidate set
// from the store (a fixed multiple of the requested limit, leaving
// headroom for filtering), applies the optional project substring and
// date-range filters, optionally re-sorts by recency, and truncates to
// the limit.
//
// # Basic Usage
//
//	s := searcher.New(st, emb)
//	resp, err := s.Search(ctx, searcher.SearchRequest{
//	    Query:     "why did the login page flash",
//	    Limit:     5,
//	    Project:   "webapp",
//	    DateRange: "last week",
//	    SortBy:    searcher.SortRecency,
//	})
//
// # Date-Range Tokens
//
// ParseDateRange recognizes "today", "yesterday", "week"/"last week",
// "month"/"last month", and "last N days", case-insensitively. An
// unrecognized token disables the filter instead of failing the
// search, so a typo degrades to broader results rather than an error.
//
// # Caching
//
// Responses can be cached in a small LRU keyed on the full request.
// Entries expire after a minute because date tokens resolve against the
// current moment.
package searcher
