package chunker

import (
	"strings"
	"time"

	"github.com/chatrecall/chatrecall/pkg/types"
)

// DefaultMaxChars is the default maximum segment size in characters
const DefaultMaxChars = 2000

// Chunker splits a normalized conversation into bounded-size,
// message-aligned segments
type Chunker struct {
	maxChars int
}

// New creates a Chunker with the default size threshold
func New() *Chunker {
	return &Chunker{maxChars: DefaultMaxChars}
}

// NewWithMaxChars creates a Chunker with a custom size threshold
func NewWithMaxChars(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Chunker{maxChars: maxChars}
}

// Chunk renders the conversation's messages into segments. Messages are
// accumulated into a buffer rendered as "<Label>: <content>" with blank
// lines between turns; when appending a message would push a non-empty
// buffer past the threshold, the buffer is flushed as a segment stamped
// with the timestamp of its first message. A message is never split
// across two segments, and ChunkIndex is a dense 0-based counter.
func (c *Chunker) Chunk(conv *types.Conversation) []types.Segment {
	if conv == nil || len(conv.Messages) == 0 {
		return nil
	}

	var segments []types.Segment
	var buf strings.Builder
	var segmentStart time.Time
	chunkIndex := 0

	flush := func() {
		content := strings.TrimRight(buf.String(), " \t\n")
		if content == "" {
			return
		}
		segments = append(segments, types.Segment{
			SessionID:  conv.SessionID,
			Project:    conv.Project,
			Content:    content,
			Timestamp:  segmentStart,
			ChunkIndex: chunkIndex,
		})
		chunkIndex++
		buf.Reset()
	}

	for i := range conv.Messages {
		msg := &conv.Messages[i]
		rendered := msg.Label() + ": " + msg.Content + "\n\n"

		if buf.Len() > 0 && buf.Len()+len(rendered) > c.maxChars {
			flush()
		}
		if buf.Len() == 0 {
			segmentStart = msg.Timestamp
		}
		buf.WriteString(rendered)
	}
	flush()

	return segments
}
