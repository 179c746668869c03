package services

import (
	"strings"
	"time"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

// Merger synchronises the sections of a novel with the events of a timeline.
// A Merger is used for one run; its converter carries state from Read to Write.
type Merger struct {
	names    domain.SyncSettings
	seed     string
	schema   *SchemaReconciler
	resolver *EntityResolver
	now      func() time.Time
}

// NewMerger creates a merger for the project identified by seed.
// now supplies the reference date when a novel has none.
func NewMerger(names domain.SyncSettings, seed string, now func() time.Time) *Merger {
	if now == nil {
		now = time.Now
	}
	return &Merger{
		names:    names,
		seed:     seed,
		schema:   NewSchemaReconciler(names, seed),
		resolver: NewEntityResolver(names.NarrativeArc, seed),
		now:      now,
	}
}

// eventTitle is the title events are matched by.
func eventTitle(ev *domain.EventRecord) string {
	return strings.TrimSpace(ev.Title)
}

// isNarrative reports whether ev is related to the narrative arc.
func isNarrative(ev *domain.EventRecord, rc *ResolutionContext) bool {
	if rc.NarrativeGUID == "" {
		return false
	}
	return ev.HasRelationship(rc.NarrativeGUID, rc.Schema.RoleArc)
}
