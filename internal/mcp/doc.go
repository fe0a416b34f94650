// Package mcp exposes the conversation index over the Model Context
// Protocol on stdio.
//
// The server wires the whole pipeline together (store, embedder,
// orchestrator, searcher) and registers three tools:
//
//   - search_conversations: semantic search over indexed transcript
//     segments, with optional project substring filter, date-range
//     token, and relevance/recency ordering
//   - reindex: full scan of both transcript roots, honoring per-file
//     checkpoints unless force is set
//   - get_status: index statistics (record count, distinct projects,
//     last update time, embedding provider)
//
// # Configuration
//
// NewServer resolves its paths from Config fields first, then the
// environment, then the conventional home-directory locations:
//
//	CHATRECALL_DB_PATH      index database (default ~/.chatrecall/index.db)
//	CHATRECALL_CLAUDE_ROOT  Claude Code logs (default ~/.claude/projects)
//	CHATRECALL_CODEX_ROOT   Codex logs      (default ~/.codex/sessions)
//
// The embedding provider is selected by the embedder package's own
// environment handling; see embedder.NewFromEnv.
//
// # Protocol Discipline
//
// Stdout belongs to the MCP transport. All logging anywhere in the
// server goes to stderr; a stray print to stdout corrupts the protocol
// stream.
//
// # Error Mapping
//
// Tool failures are returned as MCPError values with JSON-RPC style
// codes: invalid parameters (-32602), internal failures (-32603), a
// busy index lock (-32001), and an empty query (-32002).
package mcp
