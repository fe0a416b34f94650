// Package types provides shared type definitions for the chatrecall pipeline.
//
// This package defines the domain types used across the indexing components:
// messages, conversations, segments, and search results.
//
// # Core Types
//
// Message represents one normalized turn extracted from a transcript log:
//
//	msg := types.Message{
//	    Role:      types.RoleUser,
//	    Content:   "how do I rotate these credentials?",
//	    Timestamp: ts,
//	}
//
// Conversation groups the qualifying messages of a single source log file
// together with its session and project identity:
//
//	conv := &types.Conversation{
//	    SessionID:  "7f3a2b1c",
//	    Project:    "/Users/dev/myproject",
//	    Messages:   msgs,
//	    SourcePath: "/Users/dev/.claude/projects/-Users-dev-myproject/7f3a2b1c.jsonl",
//	}
//
// Segment is the unit of embedding and storage, produced by the chunker:
//
//	seg := types.Segment{
//	    SessionID:  conv.SessionID,
//	    Project:    conv.Project,
//	    Content:    renderedText,
//	    ChunkIndex: 0,
//	}
//	id := seg.ID() // "7f3a2b1c-0"
//
// # Lifecycle
//
// Conversations and Segments are ephemeral: they are recomputed from the
// source files on every (re)index. Only the persisted records derived from
// Segments (and the per-file checkpoints) survive across runs. A session's
// segment set is destroyed and rebuilt wholesale whenever that session is
// reindexed.
//
// # Validation
//
// All domain types implement validation methods:
//
//	if err := seg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package types
