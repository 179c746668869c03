package services

import (
	"slices"
	"strconv"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// WriteResult reports what a write changed in the timeline.
type WriteResult struct {
	// Sections of the target created or updated from source sections.
	Created int
	Updated int

	// Demoted counts target sections removed from the narrative.
	Demoted int

	// Deleted counts events removed from the timeline.
	Deleted int

	EntitiesCreated int
}

// SourceSectionTitles returns the titles of all sections in chapters not
// in the trash. A title used twice is an AmbiguousTitleError.
func SourceSectionTitles(source driven.NovelModel) (map[string]bool, error) {
	titles := make(map[string]bool)
	for _, id := range exportedSectionIDs(source) {
		sc, _ := source.Sections().Get(id)
		title := sectionTitle(sc)
		if titles[title] {
			return nil, &domain.AmbiguousTitleError{Side: domain.SideNovel, Kind: kindSection, Title: title}
		}
		titles[title] = true
	}
	return titles, nil
}

// PlanDeletions returns the target sections whose events must be removed:
// those whose titles vanished from the source. Unused sections were never
// part of the exported narrative and are kept.
func PlanDeletions(target driven.NovelModel, sourceTitles map[string]bool) map[string]bool {
	deletions := make(map[string]bool)
	for _, id := range target.Sections().IDs() {
		sc, _ := target.Sections().Get(id)
		if sourceTitles[sectionTitle(sc)] || sc.Type == domain.SectionUnused {
			continue
		}
		deletions[id] = true
	}
	return deletions
}

// Write updates doc from source. target must hold what a preceding Read
// of doc produced, with rc the context of that Read. Only doc is meant to
// be persisted; target is a scratch copy.
func (m *Merger) Write(source, target driven.NovelModel, doc *domain.Document, rc *ResolutionContext) (*WriteResult, error) {
	result := &WriteResult{}
	conv := NewTemporalConverter(ReferenceDate(source.ReferenceDate(), m.now()))
	conv.Seed(rc.MaxTimestamp)

	rel := collectRelated(source)
	if err := m.resolver.CheckRelated(source, rel); err != nil {
		return nil, err
	}
	sourceTitles, err := SourceSectionTitles(source)
	if err != nil {
		return nil, err
	}
	deletions := PlanDeletions(target, sourceTitles)

	sections, err := indexTitles(target.Sections(), sectionTitle, domain.SideTimeline, kindEvent, false)
	if err != nil {
		return nil, err
	}

	remap, created, err := m.resolver.ResolveWrite(source, target, doc, rc, rel)
	if err != nil {
		return nil, err
	}
	result.EntitiesCreated = created

	m.writeSections(source, target, doc, sections, remap, rc, conv, result)

	if rc.NarrativeGUID == "" {
		rc.NarrativeGUID = StableID(m.seed, fragNarrative)
		doc.Entities = append(doc.Entities,
			newEntity(rc.NarrativeGUID, rc.Schema.TypeArc, m.names.NarrativeArc, "book", "orange", rc.ArcCount))
		rc.ArcCount++
		result.EntitiesCreated++
	}

	m.writeEvents(target, doc, sections, rc, conv)

	kept := doc.Events[:0]
	for _, ev := range doc.Events {
		if id, ok := sections[eventTitle(ev)]; ok && deletions[id] {
			logger.Debug("Deleting event %q", ev.Title)
			result.Deleted++
			continue
		}
		kept = append(kept, ev)
	}
	doc.Events = kept
	return result, nil
}

// writeSections upserts the target sections from the source sections.
// Normal sections are created or overwritten; other sections only demote
// the target section of the same title.
func (m *Merger) writeSections(
	source, target driven.NovelModel,
	doc *domain.Document,
	sections map[string]string,
	remap *idRemap,
	rc *ResolutionContext,
	conv *TemporalConverter,
	result *WriteResult,
) {
	events := make(map[string]bool, len(doc.Events))
	for _, ev := range doc.Events {
		events[eventTitle(ev)] = true
	}
	for _, srcID := range exportedSectionIDs(source) {
		src, _ := source.Sections().Get(srcID)
		title := sectionTitle(src)
		if src.Type != domain.SectionNormal {
			if id, ok := sections[title]; ok {
				sc, _ := target.Sections().Get(id)
				if sc.Type != domain.SectionUnused {
					sc.Type = domain.SectionUnused
					result.Demoted++
				}
			}
			continue
		}

		id, ok := sections[title]
		if ok {
			result.Updated++
		} else {
			id = target.Sections().Create(&domain.Section{Title: title, Type: src.Type})
			sections[title] = id
			result.Created++
			// An event outside the narrative with this title joins it.
			if !events[title] {
				doc.Events = append(doc.Events, m.newEvent(title, doc, rc))
				events[title] = true
			}
		}
		sc, _ := target.Sections().Get(id)

		sc.Status = src.Status
		sc.Type = src.Type
		sc.Tags = slices.Clone(src.Tags)
		sc.Desc = src.Desc
		sc.Notes = src.Notes
		sc.Characters = remapIDs(src.Characters, remap.characters)
		sc.Locations = remapIDs(src.Locations, remap.locations)
		sc.Items = remapIDs(src.Items, remap.items)
		sc.PlotLines = remapIDs(src.PlotLines, remap.plotLines)
		sc.Time = src.Time
		sc.Date = conv.SectionDate(src)
		sc.Day = nil
		sc.LastsDays = src.LastsDays
		sc.LastsHours = src.LastsHours
		sc.LastsMinutes = src.LastsMinutes
	}
}

func remapIDs(ids []string, remap map[string]string) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if mapped, ok := remap[id]; ok {
			result = append(result, mapped)
		}
	}
	return result
}

// newEvent creates the event of a new narrative section. Its timestamp is
// the unset sentinel, so writeEvents assigns the section's date.
func (m *Merger) newEvent(title string, doc *domain.Document, rc *ResolutionContext) *domain.EventRecord {
	rc.MaxDisplayID++
	color := doc.Template.ColorGUID(m.names.ColorSection)
	if color == "" {
		logger.Warn("Colour %q is not defined in the timeline", m.names.ColorSection)
	}
	return &domain.EventRecord{
		GUID:      StableID(m.seed, fragSectionPrefix+title),
		Title:     title,
		DisplayID: domain.DisplayID(formatDisplayID(rc.MaxDisplayID)),
		Tags:      []string{},
		Color:     color,
		Values: []*domain.PropertyValue{
			{Property: rc.Schema.PropertyNotes},
			{Property: rc.Schema.PropertyDesc},
		},
		RangeValues: []*domain.RangeValue{{
			RangeProperty: rc.Schema.DateProperty,
			MinimumZoom:   domain.IntPtr(-1),
			Position:      domain.Position{Precision: "minute"},
		}},
		Relationships: []*domain.Relationship{},
		Extra:         domain.NewEventExtra(),
	}
}

func formatDisplayID(n float64) string {
	return strconv.FormatInt(int64(n), 10)
}

// writeEvents copies the target sections onto their events.
func (m *Merger) writeEvents(
	target driven.NovelModel,
	doc *domain.Document,
	sections map[string]string,
	rc *ResolutionContext,
	conv *TemporalConverter,
) {
	for _, ev := range doc.Events {
		id, ok := sections[eventTitle(ev)]
		if !ok {
			continue
		}
		sc, _ := target.Sections().Get(id)

		// Events before year 1 keep their position; the novel cannot express it.
		if rv := ev.RangeValueFor(rc.Schema.DateProperty); rv != nil && rv.Position.Timestamp >= 0 {
			rv.Span = DurationToSpan(sc)
			rv.Position.Timestamp = conv.DateToTimestamp(sc)
		}

		if rc.Schema.PropertyMoonPhase != "" {
			setValue(ev, rc.Schema.PropertyMoonPhase, MoonPhase(sc.Date), true)
		}
		setValue(ev, rc.Schema.PropertyDesc, sc.Desc, false)
		setValue(ev, rc.Schema.PropertyNotes, sc.Notes, false)

		ev.Tags = slices.Clone(sc.Tags)
		if ev.Tags == nil {
			ev.Tags = []string{}
		}

		ev.Relationships = m.rebuildRelationships(ev, sc, rc)
	}
}

// setValue sets the event's value for property, adding the value when the
// event has none. Unless overwrite is set, an empty value leaves an
// existing one alone.
func setValue(ev *domain.EventRecord, property, value string, overwrite bool) {
	if v, ok := ev.Value(property); ok {
		if value != "" || overwrite {
			v.Value = value
		}
		return
	}
	ev.Values = append(ev.Values, &domain.PropertyValue{Property: property, Value: value})
}

// rebuildRelationships replaces the relationships the novel owns and keeps
// all others.
func (m *Merger) rebuildRelationships(ev *domain.EventRecord, sc *domain.Section, rc *ResolutionContext) []*domain.Relationship {
	owned := map[string]bool{
		rc.Schema.RoleCharacter: true,
		rc.Schema.RoleLocation:  true,
		rc.Schema.RoleItem:      true,
		rc.Schema.RoleArc:       true,
		rc.Schema.RolePlotLine:  true,
	}
	rels := make([]*domain.Relationship, 0, len(ev.Relationships))
	for _, rel := range ev.Relationships {
		if !owned[rel.Role] {
			rels = append(rels, rel)
		}
	}

	add := func(ids []string, guids map[string]string, role string) {
		for _, id := range ids {
			guid, ok := guids[id]
			if !ok {
				logger.Warn("Section %q refers to unknown element %s", sc.Title, id)
				continue
			}
			rels = append(rels, &domain.Relationship{Entity: guid, Role: role, PercentAllocated: 1})
		}
	}
	add(sc.Characters, rc.CharacterGUIDs, rc.Schema.RoleCharacter)
	add(sc.Locations, rc.LocationGUIDs, rc.Schema.RoleLocation)
	add(sc.Items, rc.ItemGUIDs, rc.Schema.RoleItem)
	if sc.Type == domain.SectionNormal {
		rels = append(rels, &domain.Relationship{Entity: rc.NarrativeGUID, Role: rc.Schema.RoleArc, PercentAllocated: 1})
		add(sc.PlotLines, rc.PlotLineGUIDs, rc.Schema.RolePlotLine)
	}
	return rels
}
