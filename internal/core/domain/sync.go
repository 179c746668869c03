package domain

import "time"

// File extensions that select a sync direction.
const (
	TimelineExtension = ".aeonzip"
	NovelExtension    = ".novx"
)

// Direction is the flow of a synchronisation.
type Direction string

const (
	// DirectionCreate builds a new novel project from a timeline.
	DirectionCreate Direction = "create"

	// DirectionImport updates an existing novel project from its timeline.
	DirectionImport Direction = "import"

	// DirectionExport updates a timeline from its novel project.
	DirectionExport Direction = "export"

	// DirectionMoonPhase rewrites a timeline with moon phase values.
	DirectionMoonPhase Direction = "moonphase"
)

// SyncPlan is what a synchronisation of a source file would do.
type SyncPlan struct {
	Direction    Direction
	SourcePath   string
	TargetPath   string
	TimelinePath string
	NovelPath    string
}

// SyncResult summarises one synchronisation.
type SyncResult struct {
	Plan SyncPlan

	// Written is false when nothing was committed.
	Written bool

	// NarrativeMissing is set when an import found no narrative arc.
	NarrativeMissing bool

	// SchemaHealed is set when the template gained definitions.
	SchemaHealed bool

	SectionsCreated int
	SectionsUpdated int
	SectionsDemoted int
	EventsCreated   int
	EventsDeleted   int
	EntitiesCreated int
}

// Message returns the human-readable status line for the result.
func (r *SyncResult) Message() string {
	switch {
	case r.NarrativeMissing:
		return "No narrative arc found in the timeline; nothing imported."
	case r.Written:
		return "File written: \"" + r.Plan.TargetPath + "\"."
	default:
		return "Nothing written."
	}
}

// SyncRun is a journal entry for one synchronisation attempt.
type SyncRun struct {
	ID         int64
	Direction  Direction
	SourcePath string
	TargetPath string
	StartedAt  time.Time
	Duration   time.Duration
	Written    bool
	Created    int
	Updated    int
	Deleted    int
	Error      string
}

// Succeeded reports whether the run finished without error.
func (r *SyncRun) Succeeded() bool {
	return r.Error == ""
}

// FileComparison reports the age of a timeline relative to its project.
type FileComparison struct {
	TimelinePath string
	NovelPath    string

	// TimelineExists is false when the project has no timeline.
	TimelineExists bool

	// TimelineNewer is true when the timeline was saved after the project.
	TimelineNewer bool

	TimelineModified time.Time
}
