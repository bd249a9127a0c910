// Package notify provides cross-process change notification between
// qualgraph-mcp and qualgraph-web by watching the shared graph file.
package notify

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of filesystem events a single atomic
// save produces into one callback.
const debounceWindow = 100 * time.Millisecond

// GraphWatcher watches the graph JSON file and invokes a callback when
// another process rewrites it.
type GraphWatcher struct {
	path     string
	callback func()
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewGraphWatcher creates a watcher for the graph file at path.
func NewGraphWatcher(path string, callback func()) *GraphWatcher {
	return &GraphWatcher{
		path:     path,
		callback: callback,
		done:     make(chan struct{}),
	}
}

// Start begins watching. The parent directory is watched rather than the
// file itself because saves land via temp-file rename, which would orphan a
// direct file watch. Call Stop() to clean up.
func (gw *GraphWatcher) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(gw.path)); err != nil {
		_ = w.Close()
		return err
	}
	gw.watcher = w

	go gw.loop()
	log.Printf("notify: watching %s for graph changes", gw.path)
	return nil
}

// Stop shuts down the watcher and waits for the event loop to exit.
func (gw *GraphWatcher) Stop() {
	if gw.watcher != nil {
		_ = gw.watcher.Close()
	}
	<-gw.done
}

func (gw *GraphWatcher) loop() {
	defer close(gw.done)

	base := filepath.Base(gw.path)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case evt, ok := <-gw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(evt.Name) != base {
				continue
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.AfterFunc(debounceWindow, gw.fire)
			} else {
				debounce.Reset(debounceWindow)
			}
		case err, ok := <-gw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("notify: watcher error: %v", err)
		}
	}
}

func (gw *GraphWatcher) fire() {
	if gw.callback != nil {
		gw.callback()
	}
}
