// Package watcher implements file system watching for re-planning on change.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/carve-build/carve/internal/core/ports"
)

var _ ports.Watcher = (*Watcher)(nil)

// shouldSkipDirectories are directories that should not be watched.
// node_modules is watched: vendored dependencies are part of the module
// graph and changing them must trigger a re-plan.
var shouldSkipDirectories = map[string]bool{
	".git": true,
	".jj":  true,
}

const eventChannelBuffer = 100

// Watcher implements file system watching using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	events    chan ports.WatchEvent
}

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}, nil
}

// Watch begins watching the given root directory recursively. The returned
// channel is closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, root string) (<-chan ports.WatchEvent, error) {
	for dir := range w.watchRecursively(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, err
		}
	}

	go w.processEvents(ctx, root)

	return w.events, nil
}

// Close stops the watcher and releases all resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// watchRecursively walks the directory tree and yields all directories.
func (w *Watcher) watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Continue walking even if there's an error accessing a directory.
				return nil //nolint:nilerr // skip problematic directories
			}
			if d.IsDir() {
				if shouldSkipDirectories[d.Name()] {
					return fs.SkipDir
				}
				if !yield(path) {
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}

// processEvents converts raw fsnotify events into root-relative WatchEvents.
func (w *Watcher) processEvents(ctx context.Context, root string) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			rel, err := filepath.Rel(root, event.Name)
			if err != nil {
				rel = event.Name
			}

			select {
			case w.events <- ports.WatchEvent{Path: filepath.ToSlash(rel)}:
			case <-ctx.Done():
				return
			}

			// Newly created directories must be watched too.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !shouldSkipDirectories[info.Name()] {
					for dir := range w.watchRecursively(event.Name) {
						_ = w.fsWatcher.Add(dir)
					}
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher: file system error: %v\n", err)
		}
	}
}
