package types

import "time"

// SearchResult is a single search hit with its similarity score.
// Results are derived from stored records at query time, never persisted.
type SearchResult struct {
	Content   string    `json:"content"`
	Project   string    `json:"project"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.SessionID == "" {
		return ErrMissingSession
	}
	if sr.Content == "" {
		return ErrEmptyContent
	}
	if sr.Score < 0 || sr.Score > 1 {
		return ErrInvalidScore
	}
	return nil
}
