// Package indexer orchestrates the transcript indexing pipeline.
//
// A run enumerates transcript files from both source roots, then
// processes them strictly one at a time: parse into a normalized
// conversation, chunk into segments, embed each segment, and replace
// the session's stored segment set. The per-file checkpoint is
// advanced and persisted only after the segments are durably written.
//
// # Basic Usage
//
//	orch := indexer.New(st, emb, claudeRoot, codexRoot, logger)
//
//	// Full run, honoring checkpoints
//	stats, err := orch.Run(ctx, false)
//
//	// Single file, used by the change watcher
//	res, err := orch.IndexFile(ctx, "/path/to/session.jsonl")
//
// # Concurrency
//
// Run and IndexFile share a non-blocking lock; whichever trigger
// arrives second gets ErrIndexingInProgress rather than queueing. The
// store's whole-set session replacement makes a retried or overlapping
// trigger harmless.
//
// # Failure Handling
//
// Run never aborts on a bad file. Parse errors, embedding failures, and
// write failures are logged, counted in Stats.FilesFailed, and leave
// the file's checkpoint untouched so the next run retries it.
package indexer
