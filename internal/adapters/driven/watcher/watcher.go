package watcher

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// Watcher is an fsnotify implementation of driven.FileWatcher.
type Watcher struct{}

// New creates a new file watcher.
func New() *Watcher {
	return &Watcher{}
}

// Watch emits path whenever the file is created, written or renamed into
// place. Both channels are closed when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, path string) (<-chan string, <-chan error, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(absPath)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	logger.Debug("Watching directory %s for %s", dir, filepath.Base(absPath))

	changes := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(changes)
		defer fw.Close()
		processEvents(ctx, fw, absPath, path, changes, errs)
	}()
	return changes, errs, nil
}

// processEvents forwards matching fsnotify events until ctx is done.
func processEvents(ctx context.Context, fw *fsnotify.Watcher, absPath, path string, changes chan<- string, errs chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !isChange(event, absPath) {
				continue
			}
			select {
			case changes <- path:
			case <-ctx.Done():
				return
			default:
				// A change is already pending.
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			select {
			case errs <- err:
			case <-ctx.Done():
				return
			default:
				logger.Warn("Dropping watcher error: %v", err)
			}
		}
	}
}

// isChange reports whether event leaves new content at absPath.
func isChange(event fsnotify.Event, absPath string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != absPath {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write)
}
