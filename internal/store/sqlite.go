package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned when an operation is invoked on a
	// store that has not been opened or has been closed
	ErrNotInitialized = errors.New("store not initialized")
)

// SQLiteStore implements the Store interface using SQLite.
// It is the sole writer of both the record table and the checkpoint
// table; all mutations are issued from a single control flow, so the
// checkpoint map needs no locking.
type SQLiteStore struct {
	db          *sql.DB
	checkpoints map[string]time.Time
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// Open creates a SQLite store, applies migrations, and loads the
// checkpoint map. An absent checkpoint table yields an empty map.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	s := &SQLiteStore{
		db:          db,
		checkpoints: make(map[string]time.Time),
	}

	if err := s.loadCheckpoints(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load checkpoints: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// ready reports whether the store can serve calls
func (s *SQLiteStore) ready() error {
	if s == nil || s.db == nil {
		return ErrNotInitialized
	}
	return nil
}

// ReplaceSessionSegments deletes every record belonging to the session
// and inserts the new set in one transaction. Idempotent: applying the
// same input twice leaves the stored set identical to applying it once.
func (s *SQLiteStore) ReplaceSessionSegments(ctx context.Context, sessionID string, records []Record) error {
	if err := s.ready(); err != nil {
		return err
	}
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("delete session records: %w", err)
	}

	insert := `
		INSERT INTO records (id, session_id, project, content, timestamp, chunk_index, embedding, dimension)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i := range records {
		r := &records[i]
		if _, err := tx.ExecContext(ctx, insert,
			r.Segment.ID(), r.Segment.SessionID, r.Segment.Project, r.Segment.Content,
			r.Segment.Timestamp, r.Segment.ChunkIndex,
			serializeVector(r.Embedding), len(r.Embedding)); err != nil {
			return fmt.Errorf("insert record %s: %w", r.Segment.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session replace: %w", err)
	}
	return nil
}

// SessionSegments returns the stored segments for a session ordered by
// chunk index. Used by tests and diagnostics.
func (s *SQLiteStore) SessionSegments(ctx context.Context, sessionID string) ([]Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, project, content, timestamp, chunk_index, embedding
		FROM records
		WHERE session_id = ?
		ORDER BY chunk_index
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		var ts sql.NullTime
		var blob []byte
		if err := rows.Scan(&r.Segment.SessionID, &r.Segment.Project, &r.Segment.Content,
			&ts, &r.Segment.ChunkIndex, &blob); err != nil {
			return nil, err
		}
		if ts.Valid {
			r.Segment.Timestamp = ts.Time
		}
		r.Embedding = deserializeVector(blob)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Query delegates to the nearest-neighbor search over the record table
func (s *SQLiteStore) Query(ctx context.Context, vector []float32, fetchLimit int) ([]QueryResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return searchVector(ctx, s.db, vector, fetchLimit)
}

// Status returns aggregate statistics over the record table.
// An empty index yields zero counts and a zero LastUpdated.
func (s *SQLiteStore) Status(ctx context.Context) (*Status, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	status := &Status{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT project)
		FROM records
	`).Scan(&status.TotalRecords, &status.DistinctProjects)
	if err != nil {
		return nil, fmt.Errorf("query status: %w", err)
	}

	// Selecting the column directly keeps its declared type, which the
	// driver needs to hand back a time.Time; MAX(timestamp) would not.
	var lastUpdated time.Time
	err = s.db.QueryRowContext(ctx, `
		SELECT timestamp FROM records ORDER BY timestamp DESC LIMIT 1
	`).Scan(&lastUpdated)
	switch {
	case err == sql.ErrNoRows:
		// empty index, LastUpdated stays zero
	case err != nil:
		return nil, fmt.Errorf("query last update: %w", err)
	default:
		status.LastUpdated = lastUpdated
	}

	return status, nil
}

// Checkpoint operations

// loadCheckpoints reads the checkpoint table into the in-memory map
func (s *SQLiteStore) loadCheckpoints(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT file_path, last_modified FROM checkpoints")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var path string
		var lastModified time.Time
		if err := rows.Scan(&path, &lastModified); err != nil {
			return err
		}
		s.checkpoints[path] = lastModified
	}
	return rows.Err()
}

// Checkpoint returns the last-modified time at which the file was last
// successfully indexed
func (s *SQLiteStore) Checkpoint(filePath string) (time.Time, bool) {
	t, ok := s.checkpoints[filePath]
	return t, ok
}

// SetCheckpoint records the file's indexed modification time in memory.
// The caller must persist afterwards; the split keeps the durable write
// strictly after the file's segments are written.
func (s *SQLiteStore) SetCheckpoint(filePath string, lastModified time.Time) {
	s.checkpoints[filePath] = lastModified
}

// CheckpointCount returns the number of tracked files
func (s *SQLiteStore) CheckpointCount() int {
	return len(s.checkpoints)
}

// PersistCheckpoints rewrites the checkpoint table from the in-memory
// map in one clear-then-write transaction. Called after every
// successful per-file indexing step, so a crash loses at most the file
// currently in flight.
func (s *SQLiteStore) PersistCheckpoints(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM checkpoints"); err != nil {
		return fmt.Errorf("clear checkpoints: %w", err)
	}

	for path, lastModified := range s.checkpoints {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO checkpoints (file_path, last_modified) VALUES (?, ?)",
			path, lastModified); err != nil {
			return fmt.Errorf("insert checkpoint %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkpoints: %w", err)
	}
	return nil
}
