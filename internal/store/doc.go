// Package store provides the SQLite-backed index store gateway.
//
// The gateway owns two tables and is their sole writer:
//   - records: indexed conversation segments with embedding vectors
//   - checkpoints: per-file last-indexed modification times
//
// # Basic Usage
//
//	s, err := store.Open("~/.chatrecall/index.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	// Replace a session's segment set wholesale
//	err = s.ReplaceSessionSegments(ctx, conv.SessionID, records)
//
//	// Nearest-neighbor query
//	results, err := s.Query(ctx, queryVector, 20)
//
// # Session Replacement
//
// ReplaceSessionSegments runs delete-then-insert in a single
// transaction, so a session's stored segments move atomically from the
// old set to the new set. Re-running the same replacement is a no-op in
// effect, which is what makes overlapping reindex triggers harmless.
//
// # Checkpoints
//
// The checkpoint map is loaded once at Open (an absent table yields an
// empty map) and mutated only through SetCheckpoint. PersistCheckpoints
// rewrites the whole table from the map; the orchestrator calls it
// after each file's segments are durably written, never before, so a
// crash mid-run costs at most redundant re-work on the next run.
//
// # Vector Search
//
// Embeddings are stored as little-endian float32 blobs. Under the
// sqlite_vec build tag similarity is computed in SQL via the sqlite-vec
// extension (github.com/mattn/go-sqlite3); the default pure Go build
// (modernc.org/sqlite) scans candidates and computes cosine similarity
// in Go, which is plenty for a personal index.
package store
