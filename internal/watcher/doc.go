// Package watcher reports changes to base-template files.
//
// A DirWatcher watches a flat list of template directories with fsnotify.
// Events are filtered by file extension and coalesced by a Debouncer so
// that an editor's write-rename-chmod burst surfaces as one change.
//
// Usage:
//
//	w, err := watcher.NewDirWatcher(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go w.Start(ctx, "/opt/daq/fcl", "./fcl")
//
//	for batch := range w.Events() {
//	    for _, ev := range batch {
//	        cache.Remove(filepath.Base(ev.Path))
//	    }
//	}
package watcher
