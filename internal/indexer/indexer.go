package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chatrecall/chatrecall/internal/adapter"
	"github.com/chatrecall/chatrecall/internal/chunker"
	"github.com/chatrecall/chatrecall/internal/embedder"
	"github.com/chatrecall/chatrecall/internal/store"
	"github.com/chatrecall/chatrecall/pkg/types"
)

// ErrIndexingInProgress is returned when a run is requested while
// another run holds the index lock.
var ErrIndexingInProgress = errors.New("indexing already in progress")

// Orchestrator drives the indexing pipeline: enumerate -> parse ->
// chunk -> embed -> store. Files are processed strictly one at a time;
// throughput is bounded by the embedding provider, so concurrency here
// would buy complexity without speed.
type Orchestrator struct {
	router   *adapter.Router
	chunker  *chunker.Chunker
	embedder embedder.Embedder
	store    store.Store

	claudeRoot string
	codexRoot  string

	lock   IndexLock
	logger *log.Logger
}

// Stats summarizes one indexing run
type Stats struct {
	FilesScanned  int
	FilesIndexed  int
	FilesSkipped  int
	FilesFailed   int
	SegmentsAdded int
	Duration      time.Duration
}

// FileResult summarizes indexing of a single file
type FileResult struct {
	SegmentsAdded int
	Skipped       bool
}

// New creates an orchestrator over the two transcript roots.
// Either root may be absent on disk; enumeration just yields nothing
// for it.
func New(st store.Store, emb embedder.Embedder, claudeRoot, codexRoot string, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Orchestrator{
		router:     adapter.NewRouter(claudeRoot, codexRoot),
		chunker:    chunker.New(),
		embedder:   emb,
		store:      st,
		claudeRoot: claudeRoot,
		codexRoot:  codexRoot,
		logger:     logger,
	}
}

// Run scans both roots and indexes every transcript file whose
// modification time is newer than its checkpoint. With force set,
// checkpoints are ignored and everything is re-embedded. Only one run
// may be active at a time; a concurrent call returns
// ErrIndexingInProgress.
//
// Per-file failures are logged and skipped; a bad file never aborts
// the run, and its checkpoint is not advanced so the next run retries
// it.
func (o *Orchestrator) Run(ctx context.Context, force bool) (*Stats, error) {
	if !o.lock.TryAcquire() {
		return nil, ErrIndexingInProgress
	}
	defer o.lock.Release()

	start := time.Now()
	stats := &Stats{}

	files, err := o.enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerate transcript files: %w", err)
	}
	stats.FilesScanned = len(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		res, err := o.indexOne(ctx, path, force)
		switch {
		case err != nil:
			stats.FilesFailed++
			o.logger.Printf("index %s: %v", path, err)
		case res.Skipped:
			stats.FilesSkipped++
		default:
			stats.FilesIndexed++
			stats.SegmentsAdded += res.SegmentsAdded
		}
	}

	stats.Duration = time.Since(start)
	o.logger.Printf("indexing run complete: %d indexed, %d skipped, %d failed, %d segments in %s",
		stats.FilesIndexed, stats.FilesSkipped, stats.FilesFailed, stats.SegmentsAdded, stats.Duration)
	return stats, nil
}

// IndexFile indexes a single transcript file, honoring its checkpoint.
// Used by the watcher after a debounced change event. Shares the run
// lock so a watcher trigger and a full run never interleave.
func (o *Orchestrator) IndexFile(ctx context.Context, path string) (*FileResult, error) {
	if !o.lock.TryAcquire() {
		return nil, ErrIndexingInProgress
	}
	defer o.lock.Release()

	return o.indexOne(ctx, path, false)
}

// indexOne runs the full pipeline for one file. The checkpoint is
// advanced and persisted only after the file's segments are durably
// written, so a crash in between costs re-work, never lost data.
func (o *Orchestrator) indexOne(ctx context.Context, path string, force bool) (*FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	if !force {
		if cp, ok := o.store.Checkpoint(path); ok && !info.ModTime().After(cp) {
			return &FileResult{Skipped: true}, nil
		}
	}

	conv, err := o.router.Parse(path, info)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if conv == nil || len(conv.Messages) == 0 {
		// Nothing qualifying in the file; remember we looked so it
		// isn't rescanned every run.
		o.store.SetCheckpoint(path, info.ModTime())
		if err := o.store.PersistCheckpoints(ctx); err != nil {
			return nil, fmt.Errorf("persist checkpoints: %w", err)
		}
		return &FileResult{}, nil
	}

	segments := o.chunker.Chunk(conv)
	records, err := o.embedSegments(ctx, segments)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	if err := o.store.ReplaceSessionSegments(ctx, conv.SessionID, records); err != nil {
		return nil, fmt.Errorf("store segments: %w", err)
	}

	o.store.SetCheckpoint(path, info.ModTime())
	if err := o.store.PersistCheckpoints(ctx); err != nil {
		return nil, fmt.Errorf("persist checkpoints: %w", err)
	}

	return &FileResult{SegmentsAdded: len(records)}, nil
}

// embedSegments generates embeddings for all of a file's segments in
// one batch request. Providers window oversized batches internally, so
// long sessions need no special casing here.
func (o *Orchestrator) embedSegments(ctx context.Context, segments []types.Segment) ([]store.Record, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Content
	}

	resp, err := o.embedder.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(segments) {
		return nil, fmt.Errorf("embedding count mismatch: %d segments, %d embeddings",
			len(segments), len(resp.Embeddings))
	}

	records := make([]store.Record, len(segments))
	for i, seg := range segments {
		records[i] = store.Record{
			Segment:   seg,
			Embedding: resp.Embeddings[i].Vector,
		}
	}
	return records, nil
}

// enumerate collects transcript file paths from both roots in a
// deterministic order. Duplicate paths (possible when the roots
// overlap) are collapsed.
func (o *Orchestrator) enumerate() ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	if err := enumerateClaude(o.claudeRoot, add); err != nil {
		return nil, err
	}
	if err := enumerateCodex(o.codexRoot, add); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// enumerateClaude walks the Claude projects root exactly one level
// deep: each child directory is a project, each .jsonl inside it a
// session transcript.
func enumerateClaude(root string, add func(string)) error {
	if root == "" {
		return nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", root, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		projectDir := filepath.Join(root, entry.Name())
		sessions, err := os.ReadDir(projectDir)
		if err != nil {
			// Directory vanished mid-scan; just move on
			continue
		}
		for _, sess := range sessions {
			if sess.IsDir() || !isTranscript(sess.Name()) {
				continue
			}
			add(filepath.Join(projectDir, sess.Name()))
		}
	}
	return nil
}

// enumerateCodex walks the Codex sessions root recursively; sessions
// are nested in year/month/day subdirectories.
func enumerateCodex(root string, add func(string)) error {
	if root == "" {
		return nil
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isTranscript(d.Name()) {
			add(path)
		}
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// isTranscript reports whether the file name looks like a transcript log
func isTranscript(name string) bool {
	return !isHidden(name) && strings.EqualFold(filepath.Ext(name), ".jsonl")
}

// isHidden reports whether the base name is a dotfile
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
