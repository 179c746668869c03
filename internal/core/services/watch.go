package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driving"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// DefaultWatchInterval is the minimum time between two imports of a watched timeline.
// The timeline application writes its archive in several steps.
const DefaultWatchInterval = 2 * time.Second

// WatchService imports a timeline each time it is saved.
type WatchService struct {
	sync    driving.SyncService
	watcher driven.FileWatcher
	limiter *rate.Limiter
}

// NewWatchService creates a watch service allowing at most one import per interval.
func NewWatchService(sync driving.SyncService, watcher driven.FileWatcher, interval time.Duration) *WatchService {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return &WatchService{
		sync:    sync,
		watcher: watcher,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Watch blocks until ctx is cancelled. Changes arriving while an import
// is throttled are coalesced into the next import.
func (w *WatchService) Watch(ctx context.Context, timelinePath string, report func(*domain.SyncResult, error)) error {
	plan, err := w.sync.Plan(timelinePath)
	if err != nil {
		return err
	}
	if plan.Direction == domain.DirectionExport {
		return fmt.Errorf("%w: watch needs a timeline, got %s", domain.ErrUnsupportedFile, timelinePath)
	}

	changes, errs, err := w.watcher.Watch(ctx, timelinePath)
	if err != nil {
		return fmt.Errorf("watch %s: %w", timelinePath, err)
	}
	logger.Info("Watching %s", timelinePath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case werr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Watcher error: %v", werr)
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := w.limiter.Wait(ctx); err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			drain(changes)
			result, err := w.sync.Synchronize(ctx, timelinePath)
			if report != nil {
				report(result, err)
			}
		}
	}
}

// drain discards changes that queued up while waiting.
func drain(changes <-chan string) {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
