package driven

import "context"

// FileWatcher reports changes to a single file.
type FileWatcher interface {
	// Watch emits the path each time the file is created or written,
	// until ctx is cancelled. Both channels are closed when watching stops.
	Watch(ctx context.Context, path string) (<-chan string, <-chan error, error)
}
