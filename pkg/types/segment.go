package types

import (
	"fmt"
	"time"
)

// Segment is a bounded-size, message-aligned slice of a conversation's
// rendered text. Segments are the unit of embedding and storage.
// All segments of a session are owned jointly by that session: they are
// replaced as a complete set on reindex, never patched individually.
type Segment struct {
	SessionID  string
	Project    string
	Content    string
	Timestamp  time.Time // timestamp of the first message in the segment
	ChunkIndex int       // dense, 0-based, per session
}

// ID returns the stable segment identifier, sessionID + "-" + chunkIndex
func (s *Segment) ID() string {
	return fmt.Sprintf("%s-%d", s.SessionID, s.ChunkIndex)
}

// Validate checks that the segment is well-formed
func (s *Segment) Validate() error {
	if s.SessionID == "" {
		return fmt.Errorf("segment session ID cannot be empty")
	}
	if s.Content == "" {
		return ErrEmptyContent
	}
	if s.ChunkIndex < 0 {
		return fmt.Errorf("chunk index must be >= 0, got %d", s.ChunkIndex)
	}
	return nil
}
