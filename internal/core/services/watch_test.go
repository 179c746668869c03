package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

// fakeWatcher hands out channels the test writes to.
type fakeWatcher struct {
	changes chan string
	errs    chan error
	err     error
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{changes: make(chan string, 8), errs: make(chan error, 1)}
}

func (w *fakeWatcher) Watch(_ context.Context, _ string) (<-chan string, <-chan error, error) {
	if w.err != nil {
		return nil, nil, w.err
	}
	return w.changes, w.errs, nil
}

// countingSync records Synchronize calls and plans by extension.
type countingSync struct {
	mu    sync.Mutex
	calls int
	plans *SyncService
}

func (s *countingSync) Plan(sourcePath string) (*domain.SyncPlan, error) {
	return s.plans.Plan(sourcePath)
}

func (s *countingSync) Synchronize(_ context.Context, sourcePath string) (*domain.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &domain.SyncResult{Plan: domain.SyncPlan{SourcePath: sourcePath}, Written: true}, nil
}

func (s *countingSync) AddMoonPhase(context.Context, string) (*domain.SyncResult, error) {
	return nil, errors.New("not implemented")
}

func (s *countingSync) Info(context.Context, string) (*domain.FileComparison, error) {
	return nil, errors.New("not implemented")
}

func newCountingSync() *countingSync {
	return &countingSync{plans: NewSyncService(nil, nil, nil, nil, nil)}
}

func TestWatchService_SyncsOnChange(t *testing.T) {
	watcher := newFakeWatcher()
	syncer := newCountingSync()
	service := NewWatchService(syncer, watcher, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports := make(chan *domain.SyncResult, 4)
	done := make(chan error, 1)
	go func() {
		done <- service.Watch(ctx, "/novels/demo.aeonzip", func(r *domain.SyncResult, err error) {
			assert.NoError(t, err)
			reports <- r
		})
	}()

	watcher.changes <- "/novels/demo.aeonzip"
	select {
	case r := <-reports:
		assert.Equal(t, "/novels/demo.aeonzip", r.Plan.SourcePath)
	case <-time.After(5 * time.Second):
		t.Fatal("no sync after change")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatchService_CoalescesBurst(t *testing.T) {
	watcher := newFakeWatcher()
	syncer := newCountingSync()
	service := NewWatchService(syncer, watcher, time.Hour)

	// The first change consumes the only token; the rest queue up.
	for i := 0; i < 4; i++ {
		watcher.changes <- "/novels/demo.aeonzip"
	}

	ctx, cancel := context.WithCancel(context.Background())
	reported := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- service.Watch(ctx, "/novels/demo.aeonzip", func(*domain.SyncResult, error) {
			reported <- struct{}{}
		})
	}()

	select {
	case <-reported:
	case <-time.After(5 * time.Second):
		t.Fatal("no sync after change")
	}
	cancel()
	require.NoError(t, <-done)

	syncer.mu.Lock()
	defer syncer.mu.Unlock()
	assert.Equal(t, 1, syncer.calls)
}

func TestWatchService_StopsWhenChannelCloses(t *testing.T) {
	watcher := newFakeWatcher()
	close(watcher.changes)
	service := NewWatchService(newCountingSync(), watcher, 0)

	err := service.Watch(context.Background(), "/novels/demo.aeonzip", nil)
	assert.NoError(t, err)
}

func TestWatchService_RejectsNovel(t *testing.T) {
	service := NewWatchService(newCountingSync(), newFakeWatcher(), 0)

	err := service.Watch(context.Background(), "/novels/demo.novx", nil)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFile))

	err = service.Watch(context.Background(), "/novels/demo.txt", nil)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFile))
}

func TestWatchService_WatcherFailure(t *testing.T) {
	watcher := newFakeWatcher()
	watcher.err = errors.New("too many open files")
	service := NewWatchService(newCountingSync(), watcher, 0)

	err := service.Watch(context.Background(), "/novels/demo.aeonzip", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many open files")
}
