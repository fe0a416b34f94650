package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchConversationsTool returns the tool definition for search_conversations
func searchConversationsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_conversations",
		Description: "Semantic search over indexed coding-assistant conversation history",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language description of the conversation you're looking for",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return",
					"default":     5,
					"minimum":     1,
					"maximum":     50,
				},
				"project": map[string]interface{}{
					"type":        "string",
					"description": "Only return results whose project path contains this substring",
				},
				"date_range": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results by age: today, yesterday, week, month, or 'last N days'",
				},
				"sort_by": map[string]interface{}{
					"type":        "string",
					"description": "Result ordering: relevance (similarity) or recency (newest first)",
					"enum":        []string{"relevance", "recency"},
					"default":     "relevance",
				},
			},
			Required: []string{"query"},
		},
	}
}

// reindexTool returns the tool definition for reindex
func reindexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reindex",
		Description: "Scan both transcript roots and index new or changed conversation logs",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-embed every file ignoring checkpoints (full rebuild)",
					"default":     false,
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report index statistics: record count, distinct projects, last update time",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
