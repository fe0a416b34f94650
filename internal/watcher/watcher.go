package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chatrecall/chatrecall/internal/indexer"
)

// DefaultDebounce is the quiet period after a file's last change
// before it is reindexed. Transcript files are appended to many times
// per minute while a session is active; five seconds collapses a burst
// of writes into one indexing pass.
const DefaultDebounce = 5 * time.Second

// Indexer is the single-file entry point the watcher feeds into
type Indexer interface {
	IndexFile(ctx context.Context, path string) (*indexer.FileResult, error)
}

// Watcher monitors both transcript roots and triggers a debounced
// single-file reindex for each changed log file. Each pending path has
// its own timer; a new event for the same path re-arms it.
type Watcher struct {
	indexer  Indexer
	fsw      *fsnotify.Watcher
	roots    []string
	debounce time.Duration
	logger   *log.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over the given transcript roots
func New(idx Indexer, roots []string, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Watcher{
		indexer:  idx,
		fsw:      fsw,
		roots:    roots,
		debounce: DefaultDebounce,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Start registers watches on every root and its existing
// subdirectories, then begins dispatching events. Roots that don't
// exist yet are skipped; they gain a watch if created later under a
// watched parent, or on restart.
func (w *Watcher) Start(ctx context.Context) error {
	watched := 0
	for _, root := range w.roots {
		n, err := w.watchTree(root)
		if err != nil {
			if !os.IsNotExist(err) {
				w.logger.Printf("watcher: cannot watch %s: %v", root, err)
			}
			continue
		}
		watched += n
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Printf("watcher started: %d directories", watched)
	return nil
}

// Stop cancels the event loop, all pending debounce timers, and the
// underlying notification subscription
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	_ = w.fsw.Close()

	w.mu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
}

// watchTree adds watches for root and every directory below it,
// returning the number of directories watched
func (w *Watcher) watchTree(root string) (int, error) {
	watched := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Printf("watcher: cannot watch %s: %v", path, err)
			return nil
		}
		watched++
		return nil
	})
	return watched, err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	path := event.Name

	// New directory under a watched parent (a new project dir, or a
	// new Codex date dir) starts being watched immediately
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(path), ".") {
				_ = w.fsw.Add(path)
			}
			return
		}
	}

	if !isTranscript(path) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	w.schedule(ctx, path)
}

// schedule arms (or re-arms) the debounce timer for a path. Re-arming
// stops the old timer first, so a file being written continuously
// never fires until it goes quiet.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.fire(ctx, path)
	})
}

// fire runs the single-file reindex for a quiesced path. When an
// indexing run already holds the lock, the path is rescheduled instead
// of dropped.
func (w *Watcher) fire(ctx context.Context, path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	res, err := w.indexer.IndexFile(ctx, path)
	switch {
	case errors.Is(err, indexer.ErrIndexingInProgress):
		w.schedule(ctx, path)
	case err != nil:
		w.logger.Printf("watcher: reindex %s: %v", path, err)
	case !res.Skipped:
		w.logger.Printf("watcher: reindexed %s: %d segments", path, res.SegmentsAdded)
	}
}

// isTranscript reports whether the path names a visible .jsonl file
func isTranscript(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), ".jsonl")
}
