// Package watcher keeps the index current as transcript files change.
//
// It subscribes to filesystem notifications on both transcript roots
// (and every directory below them, picking up new project and date
// directories as they appear) and debounces change events per file
// path: each write re-arms that path's timer, and the single-file
// reindex fires only after the file has been quiet for the debounce
// interval. A session being actively appended to therefore costs one
// indexing pass when it pauses, not one per write.
//
//	w, err := watcher.New(orch, []string{claudeRoot, codexRoot}, logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop()
//
// Reindex failures are logged and dropped; the next change to the file
// produces a fresh trigger, and a full run will retry it regardless.
package watcher
