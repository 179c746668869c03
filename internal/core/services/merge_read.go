package services

import (
	"slices"
	"sort"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// ReadResult reports what a read changed in the novel.
type ReadResult struct {
	// NarrativeFound is false when the timeline has no narrative arc.
	// The novel is then left without sections from the timeline.
	NarrativeFound bool

	// SchemaHealed is set when the template gained definitions.
	SchemaHealed bool

	Created int
	Updated int
	Demoted int

	// Context holds the lookup tables a following Write needs.
	Context *ResolutionContext
}

// Read updates novel from doc. Sections are matched to events by title;
// events related to the narrative arc create the sections they lack.
// Nothing is read from the events when the narrative arc is missing.
func (m *Merger) Read(doc *domain.Document, novel driven.NovelModel) (*ReadResult, error) {
	schema, healed, err := m.schema.Reconcile(&doc.Template)
	if err != nil {
		return nil, err
	}
	rc := NewResolutionContext(schema)
	result := &ReadResult{SchemaHealed: healed, Context: rc}
	conv := NewTemporalConverter(ReferenceDate(novel.ReferenceDate(), m.now()))

	for _, ev := range doc.Events {
		if n := ev.DisplayID.Number(); n > rc.MaxDisplayID {
			rc.MaxDisplayID = n
		}
	}

	if err := m.resolver.CheckEntities(doc, schema); err != nil {
		return nil, err
	}
	sections, err := indexTitles(novel.Sections(), sectionTitle, domain.SideNovel, kindSection, true)
	if err != nil {
		return nil, err
	}
	if err := m.resolver.ResolveRead(doc, novel, rc); err != nil {
		return nil, err
	}
	defer func() {
		if rc.MaxTimestamp == 0 {
			rc.MaxTimestamp = TimeToTimestamp(conv.Reference())
		}
	}()

	if rc.NarrativeGUID == "" {
		logger.Info("No %q arc in the timeline", m.names.NarrativeArc)
		return result, nil
	}
	result.NarrativeFound = true

	touched, buckets, err := m.readEvents(doc, novel, sections, rc, conv, result)
	if err != nil {
		return nil, err
	}

	for _, id := range novel.Sections().IDs() {
		sc, _ := novel.Sections().Get(id)
		if !touched[id] && sc.Type == domain.SectionNormal {
			sc.Type = domain.SectionUnused
			result.Demoted++
		}
	}
	placeOrphans(novel, buckets)
	return result, nil
}

// timestampBuckets groups section ids by the timestamp of their event,
// keeping encounter order within a bucket.
type timestampBuckets map[domain.Timestamp][]string

func (m *Merger) readEvents(
	doc *domain.Document,
	novel driven.NovelModel,
	sections map[string]string,
	rc *ResolutionContext,
	conv *TemporalConverter,
	result *ReadResult,
) (map[string]bool, timestampBuckets, error) {
	touched := make(map[string]bool)
	buckets := make(timestampBuckets)
	titles := make(map[string]bool)

	for _, ev := range doc.Events {
		narrative := isNarrative(ev, rc)
		title := eventTitle(ev)
		if titles[title] {
			return nil, nil, &domain.AmbiguousTitleError{Side: domain.SideTimeline, Kind: kindEvent, Title: title}
		}
		titles[title] = true

		id, ok := sections[title]
		switch {
		case ok:
			result.Updated++
		case narrative:
			id = novel.Sections().Create(&domain.Section{
				Title:  title,
				Status: domain.StatusOutline,
				Type:   domain.SectionNormal,
			})
			result.Created++
		default:
			continue
		}
		touched[id] = true
		sc, _ := novel.Sections().Get(id)

		m.readValues(ev, sc, rc)
		if len(ev.Tags) > 0 {
			sc.Tags = slices.Clone(ev.Tags)
		}

		var ts domain.Timestamp
		if rv := ev.RangeValueFor(rc.Schema.DateProperty); rv != nil {
			ts = rv.Position.Timestamp
			conv.ApplyTimestamp(ts, rv.Span, sc)
		}
		buckets[ts] = append(buckets[ts], id)

		m.readRelationships(ev, id, sc, novel, rc, ts)
	}
	return touched, buckets, nil
}

// readValues copies description and notes. Events lacking either value
// get an empty one, so a later write can fill it in.
func (m *Merger) readValues(ev *domain.EventRecord, sc *domain.Section, rc *ResolutionContext) {
	hasDesc, hasNotes := false, false
	for _, v := range ev.Values {
		switch v.Property {
		case rc.Schema.PropertyDesc:
			hasDesc = true
			if v.Value != "" {
				sc.Desc = v.Value
			}
		case rc.Schema.PropertyNotes:
			hasNotes = true
			if v.Value != "" {
				sc.Notes = v.Value
			}
		}
	}
	if !hasDesc {
		ev.Values = append(ev.Values, &domain.PropertyValue{Property: rc.Schema.PropertyDesc})
	}
	if !hasNotes {
		ev.Values = append(ev.Values, &domain.PropertyValue{Property: rc.Schema.PropertyNotes})
	}
}

// readRelationships derives the section type from the narrative relationship
// and attaches characters, locations, items and plot lines.
func (m *Merger) readRelationships(
	ev *domain.EventRecord,
	id string,
	sc *domain.Section,
	novel driven.NovelModel,
	rc *ResolutionContext,
	ts domain.Timestamp,
) {
	sc.Type = domain.SectionUnused
	var characters, locations, items []string
	for _, rel := range ev.Relationships {
		switch rel.Role {
		case rc.Schema.RoleArc:
			if rel.Entity == rc.NarrativeGUID {
				sc.Type = domain.SectionNormal
				if ts > rc.MaxTimestamp {
					rc.MaxTimestamp = ts
				}
			}
		case rc.Schema.RoleCharacter:
			if crID, ok := lookupEntity(rc.Characters, rel, ev); ok {
				characters = append(characters, crID)
			}
		case rc.Schema.RoleLocation:
			if lcID, ok := lookupEntity(rc.Locations, rel, ev); ok {
				locations = append(locations, lcID)
			}
		case rc.Schema.RoleItem:
			if itID, ok := lookupEntity(rc.Items, rel, ev); ok {
				items = append(items, itID)
			}
		case rc.Schema.RolePlotLine:
			plID, ok := lookupEntity(rc.PlotLines, rel, ev)
			if !ok {
				continue
			}
			if !slices.Contains(sc.PlotLines, plID) {
				sc.PlotLines = append(sc.PlotLines, plID)
			}
			if pl, ok := novel.PlotLines().Get(plID); ok && !slices.Contains(pl.Sections, id) {
				pl.Sections = append(pl.Sections, id)
			}
		}
	}
	if len(characters) > 0 {
		sc.Characters = characters
	}
	if len(locations) > 0 {
		sc.Locations = locations
	}
	if len(items) > 0 {
		sc.Items = items
	}
}

func lookupEntity(ids map[string]string, rel *domain.Relationship, ev *domain.EventRecord) (string, bool) {
	id, ok := ids[rel.Entity]
	if !ok {
		logger.Warn("Event %q refers to unknown entity %s", ev.Title, rel.Entity)
	}
	return id, ok
}

// placeOrphans appends sections that belong to no chapter to a new chapter,
// in ascending timestamp order. The chapter is only created when needed.
func placeOrphans(novel driven.NovelModel, buckets timestampBuckets) {
	placed := make(map[string]bool)
	for _, chID := range novel.Tree().Children(domain.ChapterRoot) {
		for _, scID := range novel.Tree().Children(chID) {
			placed[scID] = true
		}
	}

	timestamps := make([]domain.Timestamp, 0, len(buckets))
	for ts := range buckets {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	chapterID := ""
	for _, ts := range timestamps {
		for _, scID := range buckets[ts] {
			if placed[scID] {
				continue
			}
			if chapterID == "" {
				chapterID = novel.Chapters().Create(&domain.Chapter{Title: domain.NewSectionsChapterTitle})
				novel.Tree().Append(domain.ChapterRoot, chapterID)
			}
			novel.Tree().Append(chapterID, scID)
			placed[scID] = true
		}
	}
}
