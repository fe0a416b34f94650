package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/chatrecall/chatrecall/internal/indexer"
	"github.com/chatrecall/chatrecall/internal/searcher"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32001 // Another indexing run is already active
	ErrorCodeEmptyQuery         = -32002 // Query parameter is empty
)

// handleSearchConversations handles the search_conversations tool invocation
func (s *Server) handleSearchConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams,
			fmt.Sprintf("limit must be between 1 and %d", searcher.MaxLimit), map[string]interface{}{
				"param": "limit",
				"value": limit,
			})
	}

	sortBy := getStringDefault(args, "sort_by", string(searcher.SortRelevance))
	if sortBy != string(searcher.SortRelevance) && sortBy != string(searcher.SortRecency) {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid sort_by", map[string]interface{}{
			"param":   "sort_by",
			"value":   sortBy,
			"allowed": []string{string(searcher.SortRelevance), string(searcher.SortRecency)},
		})
	}

	resp, err := s.searcher.Search(ctx, searcher.SearchRequest{
		Query:     query,
		Limit:     limit,
		Project:   getStringDefault(args, "project", ""),
		DateRange: getStringDefault(args, "date_range", ""),
		SortBy:    searcher.SortMode(sortBy),
		UseCache:  true,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = map[string]interface{}{
			"content":    r.Content,
			"project":    r.Project,
			"session_id": r.SessionID,
			"timestamp":  r.Timestamp.Format(time.RFC3339),
			"score":      r.Score,
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"results":     results,
		"count":       len(results),
		"duration_ms": resp.Duration.Milliseconds(),
	})), nil
}

// handleReindex handles the reindex tool invocation
func (s *Server) handleReindex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	force := false
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		force = getBoolDefault(args, "force", false)
	}

	stats, err := s.indexer.Run(ctx, force)
	if errors.Is(err, indexer.ErrIndexingInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "an indexing run is already active", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "reindex failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Failed files were still processed; only skipped ones were not
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"processed":     stats.FilesIndexed + stats.FilesFailed,
		"added":         stats.SegmentsAdded,
		"files_scanned": stats.FilesScanned,
		"files_skipped": stats.FilesSkipped,
		"files_failed":  stats.FilesFailed,
		"duration_ms":   stats.Duration.Milliseconds(),
		"force":         force,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.store.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"total_records":     status.TotalRecords,
		"distinct_projects": status.DistinctProjects,
		"embedding": map[string]interface{}{
			"provider":  s.embedder.Provider(),
			"model":     s.embedder.Model(),
			"dimension": s.embedder.Dimension(),
		},
	}
	if status.LastUpdated.IsZero() {
		response["last_updated"] = nil
	} else {
		response["last_updated"] = status.LastUpdated.Format(time.RFC3339)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
