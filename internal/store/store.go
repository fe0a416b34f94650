package store

import (
	"context"
	"time"

	"github.com/chatrecall/chatrecall/pkg/types"
)

// Store defines the index store gateway: it owns the persisted
// file-checkpoint metadata and mediates all reads and writes to the
// record table on behalf of the pipeline.
type Store interface {
	// Record operations. A session's segments are jointly owned by that
	// session and always replaced as a complete set.
	ReplaceSessionSegments(ctx context.Context, sessionID string, records []Record) error

	// Query runs an approximate nearest-neighbor search over the record
	// table and returns up to fetchLimit rows with similarity scores.
	Query(ctx context.Context, vector []float32, fetchLimit int) ([]QueryResult, error)

	// Checkpoint operations. The in-memory map is loaded once at open
	// and mutated only through these methods.
	Checkpoint(filePath string) (time.Time, bool)
	SetCheckpoint(filePath string, lastModified time.Time)
	PersistCheckpoints(ctx context.Context) error

	// Status returns aggregate statistics over the record table.
	Status(ctx context.Context) (*Status, error)

	Close() error
}

// Record is the persisted unit: a segment plus its embedding vector
type Record struct {
	Segment   types.Segment
	Embedding []float32
}

// QueryResult is one raw nearest-neighbor row before filtering
type QueryResult struct {
	Segment types.Segment
	Score   float64
}

// Status contains aggregate statistics about the index
type Status struct {
	TotalRecords     int
	DistinctProjects int
	LastUpdated      time.Time // zero when the index is empty
}
