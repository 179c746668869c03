package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driving"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// SyncService coordinates the synchronisation of a timeline with its
// novel project. Both sides are merged in memory and the target is
// written once, after every step succeeded.
type SyncService struct {
	timelines driven.TimelineStore
	novels    driven.NovelStore
	locker    driven.ProjectLocker
	journal   driven.JournalStore
	settings  driving.SettingsService
	now       func() time.Time

	// Projects currently being synchronised, keyed by novel path.
	mu      sync.Mutex
	running map[string]bool
}

// NewSyncService creates a new sync service.
// The locker and journal are optional; nil disables locking and journaling.
func NewSyncService(
	timelines driven.TimelineStore,
	novels driven.NovelStore,
	locker driven.ProjectLocker,
	journal driven.JournalStore,
	settings driving.SettingsService,
) *SyncService {
	return &SyncService{
		timelines: timelines,
		novels:    novels,
		locker:    locker,
		journal:   journal,
		settings:  settings,
		now:       time.Now,
		running:   make(map[string]bool),
	}
}

// SetClock replaces the clock used for reference dates and the journal.
func (s *SyncService) SetClock(now func() time.Time) {
	s.now = now
}

// ProjectSeed returns the seed of the stable guids of a project: the base
// name of its files without extension.
func ProjectSeed(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Plan determines direction and files from the source path's extension.
func (s *SyncService) Plan(sourcePath string) (*domain.SyncPlan, error) {
	switch strings.ToLower(filepath.Ext(sourcePath)) {
	case domain.TimelineExtension:
		novelPath := replaceExt(sourcePath, domain.NovelExtension)
		direction := domain.DirectionImport
		if !fileExists(novelPath) {
			direction = domain.DirectionCreate
		}
		return &domain.SyncPlan{
			Direction:    direction,
			SourcePath:   sourcePath,
			TargetPath:   novelPath,
			TimelinePath: sourcePath,
			NovelPath:    novelPath,
		}, nil
	case domain.NovelExtension:
		timelinePath := replaceExt(sourcePath, domain.TimelineExtension)
		return &domain.SyncPlan{
			Direction:    domain.DirectionExport,
			SourcePath:   sourcePath,
			TargetPath:   timelinePath,
			TimelinePath: timelinePath,
			NovelPath:    sourcePath,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFile, sourcePath)
	}
}

// Synchronize runs the sync selected by the source path's extension.
func (s *SyncService) Synchronize(ctx context.Context, sourcePath string) (*domain.SyncResult, error) {
	// 1. Determine direction
	plan, err := s.Plan(sourcePath)
	if err != nil {
		return nil, err
	}
	if !fileExists(plan.SourcePath) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, plan.SourcePath)
	}

	// 2. Resolve settings next to the source
	names, err := s.settings.Resolve(filepath.Dir(plan.SourcePath))
	if err != nil {
		return nil, fmt.Errorf("resolve settings: %w", err)
	}

	return s.run(ctx, plan, func(ctx context.Context) (*domain.SyncResult, error) {
		merger := NewMerger(*names, ProjectSeed(plan.TimelinePath), s.now)
		if plan.Direction == domain.DirectionExport {
			return s.export(ctx, plan, merger, names)
		}
		return s.importTimeline(ctx, plan, merger)
	})
}

// AddMoonPhase rewrites the project's timeline with a moon phase value on
// every event that has a section.
func (s *SyncService) AddMoonPhase(ctx context.Context, novelPath string) (*domain.SyncResult, error) {
	timelinePath := replaceExt(novelPath, domain.TimelineExtension)
	if !fileExists(timelinePath) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, timelinePath)
	}
	names, err := s.settings.Resolve(filepath.Dir(timelinePath))
	if err != nil {
		return nil, fmt.Errorf("resolve settings: %w", err)
	}
	names.AddMoonPhase = true

	plan := &domain.SyncPlan{
		Direction:    domain.DirectionMoonPhase,
		SourcePath:   timelinePath,
		TargetPath:   timelinePath,
		TimelinePath: timelinePath,
		NovelPath:    novelPath,
	}
	return s.run(ctx, plan, func(ctx context.Context) (*domain.SyncResult, error) {
		doc, err := s.timelines.Load(ctx, timelinePath)
		if err != nil {
			return nil, fmt.Errorf("load timeline: %w", err)
		}
		merger := NewMerger(*names, ProjectSeed(timelinePath), s.now)
		shadow := s.novels.New()
		read, err := merger.Read(doc, shadow)
		if err != nil {
			return nil, fmt.Errorf("read timeline: %w", err)
		}
		if _, err := merger.Write(shadow, shadow, doc, read.Context); err != nil {
			return nil, fmt.Errorf("update timeline: %w", err)
		}
		if err := s.timelines.Save(ctx, doc, timelinePath); err != nil {
			return nil, fmt.Errorf("save timeline: %w", err)
		}
		return &domain.SyncResult{Plan: *plan, Written: true, SchemaHealed: read.SchemaHealed}, nil
	})
}

// Info compares the modification times of a project and its timeline.
func (s *SyncService) Info(_ context.Context, novelPath string) (*domain.FileComparison, error) {
	novelInfo, err := os.Stat(novelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, novelPath)
	}
	cmp := &domain.FileComparison{
		TimelinePath: replaceExt(novelPath, domain.TimelineExtension),
		NovelPath:    novelPath,
	}
	timelineInfo, err := os.Stat(cmp.TimelinePath)
	if errors.Is(err, os.ErrNotExist) {
		return cmp, nil
	}
	if err != nil {
		return nil, &domain.DocumentIOError{Op: "stat", Path: cmp.TimelinePath, Err: err}
	}
	cmp.TimelineExists = true
	cmp.TimelineModified = timelineInfo.ModTime()
	cmp.TimelineNewer = timelineInfo.ModTime().After(novelInfo.ModTime())
	return cmp, nil
}

// run executes fn for plan, refusing a second concurrent run for the same
// project, and records the outcome in the journal.
func (s *SyncService) run(
	ctx context.Context,
	plan *domain.SyncPlan,
	fn func(context.Context) (*domain.SyncResult, error),
) (*domain.SyncResult, error) {
	key := filepath.Clean(plan.NovelPath)
	s.mu.Lock()
	if s.running[key] {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrSyncInProgress, plan.NovelPath)
	}
	s.running[key] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.running, key)
		s.mu.Unlock()
	}()

	logger.Info("Starting %s of %s", plan.Direction, plan.SourcePath)
	started := s.now()
	result, err := fn(ctx)
	s.record(ctx, plan, started, result, err)
	if err != nil {
		return nil, err
	}
	logger.Info("Finished %s: %s", plan.Direction, result.Message())
	return result, nil
}

func (s *SyncService) importTimeline(ctx context.Context, plan *domain.SyncPlan, merger *Merger) (*domain.SyncResult, error) {
	// 1. Check the target
	if plan.Direction == domain.DirectionCreate {
		if fileExists(plan.NovelPath) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileExists, plan.NovelPath)
		}
	} else if s.locker != nil && s.locker.IsLocked(plan.NovelPath) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProjectLocked, plan.NovelPath)
	}

	// 2. Load both sides
	doc, err := s.timelines.Load(ctx, plan.TimelinePath)
	if err != nil {
		return nil, fmt.Errorf("load timeline: %w", err)
	}
	var novel driven.NovelModel
	if plan.Direction == domain.DirectionCreate {
		novel = s.novels.New()
		novel.SetTitle(ProjectSeed(plan.NovelPath))
	} else {
		novel, err = s.novels.Load(ctx, plan.NovelPath)
		if err != nil {
			return nil, fmt.Errorf("load project: %w", err)
		}
	}

	// 3. Merge in memory
	read, err := merger.Read(doc, novel)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	result := &domain.SyncResult{
		Plan:            *plan,
		SchemaHealed:    read.SchemaHealed,
		SectionsCreated: read.Created,
		SectionsUpdated: read.Updated,
		SectionsDemoted: read.Demoted,
	}
	if !read.NarrativeFound {
		result.NarrativeMissing = true
		return result, nil
	}

	// 4. Commit once
	if err := s.novels.Save(ctx, novel, plan.NovelPath); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	result.Written = true
	return result, nil
}

func (s *SyncService) export(
	ctx context.Context,
	plan *domain.SyncPlan,
	merger *Merger,
	names *domain.SyncSettings,
) (*domain.SyncResult, error) {
	// 1. The timeline must exist; it carries the template
	if !fileExists(plan.TimelinePath) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, plan.TimelinePath)
	}

	// 2. Load both sides
	source, err := s.novels.Load(ctx, plan.NovelPath)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	doc, err := s.timelines.Load(ctx, plan.TimelinePath)
	if err != nil {
		return nil, fmt.Errorf("load timeline: %w", err)
	}

	// 3. Build the timeline's view of the novel, then merge the source into it
	shadow := s.novels.New()
	read, err := merger.Read(doc, shadow)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	write, err := merger.Write(source, shadow, doc, read.Context)
	if err != nil {
		return nil, fmt.Errorf("merge project: %w", err)
	}

	// 4. Commit once
	if err := s.timelines.Save(ctx, doc, plan.TimelinePath); err != nil {
		return nil, fmt.Errorf("save timeline: %w", err)
	}

	// 5. Lock the project so edits go to the timeline
	if names.LockOnExport && s.locker != nil {
		if err := s.locker.Lock(plan.NovelPath); err != nil {
			logger.Warn("Failed to lock %s: %v", plan.NovelPath, err)
		}
	}

	return &domain.SyncResult{
		Plan:            *plan,
		Written:         true,
		SchemaHealed:    read.SchemaHealed,
		SectionsUpdated: write.Updated,
		SectionsDemoted: write.Demoted,
		EventsCreated:   write.Created,
		EventsDeleted:   write.Deleted,
		EntitiesCreated: write.EntitiesCreated,
	}, nil
}

// record stores the run in the journal. Journal failures never fail a sync.
func (s *SyncService) record(ctx context.Context, plan *domain.SyncPlan, started time.Time, result *domain.SyncResult, runErr error) {
	if s.journal == nil {
		return
	}
	run := domain.SyncRun{
		Direction:  plan.Direction,
		SourcePath: plan.SourcePath,
		TargetPath: plan.TargetPath,
		StartedAt:  started,
		Duration:   s.now().Sub(started),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if result != nil {
		run.Written = result.Written
		run.Created = result.SectionsCreated + result.EventsCreated
		run.Updated = result.SectionsUpdated
		run.Deleted = result.EventsDeleted
	}
	if _, err := s.journal.Record(ctx, run); err != nil {
		logger.Warn("Failed to record sync run: %v", err)
	}
}
