package ports

import "context"

// WatchEvent is a single filesystem change under the watched root.
type WatchEvent struct {
	// Path is the changed file, relative to the watched root.
	Path string
}

// Watcher observes a directory tree and reports file changes.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Watch starts watching the given root recursively. The returned channel
	// is closed when ctx is cancelled or the watcher is closed.
	Watch(ctx context.Context, root string) (<-chan WatchEvent, error)

	// Close releases watcher resources.
	Close() error
}
