// Package chunker divides normalized conversations into bounded-size
// text segments for embedding and search.
//
// Segments are aligned to message boundaries: a message is never split
// across two segments, so every segment reads as a sequence of complete
// turns.
//
// # Basic Usage
//
//	c := chunker.New()
//	segments := c.Chunk(conv)
//
//	for _, seg := range segments {
//	    fmt.Printf("Segment %s: %d chars\n", seg.ID(), len(seg.Content))
//	}
//
// # Sizing
//
// The default threshold is 2000 characters. The chunker accumulates
// rendered messages ("User: ..." / "Assistant: ..." separated by blank
// lines) and flushes the buffer when the next message would push it past
// the threshold. A single oversized message still becomes one segment;
// the threshold bounds accumulation, not individual messages.
//
// Each segment carries the timestamp of its first message, and segment
// indices are dense 0-based counters per session.
//
// # Determinism
//
// Chunking is a pure function of the conversation: re-chunking the same
// conversation always yields an identical segment set, which is what
// makes wholesale session replacement during reindexing idempotent.
package chunker
