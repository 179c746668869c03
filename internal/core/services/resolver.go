package services

import (
	"strings"
	"time"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// ResolutionContext holds the lookup tables of one synchronisation pass.
// It is rebuilt from scratch for every run and never persisted.
type ResolutionContext struct {
	Schema SchemaGUIDs

	// NarrativeGUID is the guid of the narrative arc entity, or "".
	NarrativeGUID string

	// Entity guid to novel id, used when reading.
	Characters map[string]string
	Locations  map[string]string
	Items      map[string]string
	PlotLines  map[string]string

	// Novel id to entity guid, used when writing.
	CharacterGUIDs map[string]string
	LocationGUIDs  map[string]string
	ItemGUIDs      map[string]string
	PlotLineGUIDs  map[string]string

	// ArcCount is the number of arc entities, used as the sort order of new arcs.
	ArcCount int

	// MaxDisplayID is the highest display id in the document.
	MaxDisplayID float64

	// MaxTimestamp seeds the counter for exported sections without a date.
	MaxTimestamp domain.Timestamp
}

// NewResolutionContext creates an empty context for the given schema.
func NewResolutionContext(schema SchemaGUIDs) *ResolutionContext {
	return &ResolutionContext{
		Schema:         schema,
		Characters:     make(map[string]string),
		Locations:      make(map[string]string),
		Items:          make(map[string]string),
		PlotLines:      make(map[string]string),
		CharacterGUIDs: make(map[string]string),
		LocationGUIDs:  make(map[string]string),
		ItemGUIDs:      make(map[string]string),
		PlotLineGUIDs:  make(map[string]string),
	}
}

func (rc *ResolutionContext) bindCharacter(guid, id string) {
	rc.Characters[guid] = id
	rc.CharacterGUIDs[id] = guid
}

func (rc *ResolutionContext) bindLocation(guid, id string) {
	rc.Locations[guid] = id
	rc.LocationGUIDs[id] = guid
}

func (rc *ResolutionContext) bindItem(guid, id string) {
	rc.Items[guid] = id
	rc.ItemGUIDs[id] = guid
}

func (rc *ResolutionContext) bindPlotLine(guid, id string) {
	rc.PlotLines[guid] = id
	rc.PlotLineGUIDs[id] = guid
}

// Element kinds named in ambiguity errors.
const (
	kindCharacter = "character"
	kindLocation  = "location"
	kindItem      = "item"
	kindArc       = "arc"
	kindPlotLine  = "plot line"
	kindSection   = "section"
	kindEvent     = "event"
)

// sectionTitle is the title sections are matched by, trimmed like eventTitle.
func sectionTitle(s *domain.Section) string { return strings.TrimSpace(s.Title) }

func characterTitle(c *domain.Character) string { return c.Title }
func locationTitle(l *domain.Location) string { return l.Title }
func itemTitle(i *domain.Item) string { return i.Title }
func plotLineTitle(p *domain.PlotLine) string { return p.Title }

// indexTitles maps the titles of a collection to ids. Two elements with
// the same title are an AmbiguousTitleError. Untitled elements are left
// out when skipEmpty is set.
func indexTitles[T any](c driven.Collection[T], title func(T) string, side, kind string, skipEmpty bool) (map[string]string, error) {
	index := make(map[string]string, c.Len())
	for _, id := range c.IDs() {
		v, _ := c.Get(id)
		t := title(v)
		if t == "" && skipEmpty {
			continue
		}
		if _, dup := index[t]; dup {
			return nil, &domain.AmbiguousTitleError{Side: side, Kind: kind, Title: t}
		}
		index[t] = id
	}
	return index, nil
}

// checkRelatedTitles rejects duplicate titles among the elements in related.
func checkRelatedTitles[T any](c driven.Collection[T], title func(T) string, related map[string]bool, kind string) error {
	seen := make(map[string]bool)
	for _, id := range c.IDs() {
		if !related[id] {
			continue
		}
		v, _ := c.Get(id)
		t := title(v)
		if seen[t] {
			return &domain.AmbiguousTitleError{Side: domain.SideNovel, Kind: kind, Title: t}
		}
		seen[t] = true
	}
	return nil
}

// EntityResolver maps timeline entities to novel elements by title.
type EntityResolver struct {
	narrative string
	seed      string
}

// NewEntityResolver creates a resolver. narrative is the name of the
// narrative arc entity; seed identifies the project for new guids.
func NewEntityResolver(narrative, seed string) *EntityResolver {
	return &EntityResolver{narrative: narrative, seed: seed}
}

// CheckEntities rejects documents where two entities of one class share a name.
func (r *EntityResolver) CheckEntities(doc *domain.Document, schema SchemaGUIDs) error {
	classes := []struct {
		typeGUID string
		kind     string
	}{
		{schema.TypeCharacter, kindCharacter},
		{schema.TypeLocation, kindLocation},
		{schema.TypeItem, kindItem},
		{schema.TypeArc, kindArc},
	}
	for _, class := range classes {
		seen := make(map[string]bool)
		for _, e := range doc.Entities {
			if e.EntityType != class.typeGUID {
				continue
			}
			if seen[e.Name] {
				return &domain.AmbiguousTitleError{Side: domain.SideTimeline, Kind: class.kind, Title: e.Name}
			}
			seen[e.Name] = true
		}
	}
	return nil
}

// ResolveRead binds every entity to a novel element, creating the
// elements the novel lacks. The narrative arc is recorded in rc and
// never becomes a plot line.
func (r *EntityResolver) ResolveRead(doc *domain.Document, novel driven.NovelModel, rc *ResolutionContext) error {
	characters, err := indexTitles(novel.Characters(), characterTitle, domain.SideNovel, kindCharacter, true)
	if err != nil {
		return err
	}
	items, err := indexTitles(novel.Items(), itemTitle, domain.SideNovel, kindItem, true)
	if err != nil {
		return err
	}
	locations, err := indexTitles(novel.Locations(), locationTitle, domain.SideNovel, kindLocation, true)
	if err != nil {
		return err
	}
	plotLines, err := indexTitles(novel.PlotLines(), plotLineTitle, domain.SideNovel, kindPlotLine, true)
	if err != nil {
		return err
	}

	for _, e := range doc.Entities {
		switch e.EntityType {
		case rc.Schema.TypeCharacter:
			rc.bindCharacter(e.GUID, r.readCharacter(e, novel, characters))
		case rc.Schema.TypeLocation:
			id, ok := locations[e.Name]
			if !ok {
				id = novel.Locations().Create(&domain.Location{Title: e.Name})
				novel.Tree().Append(domain.LocationRoot, id)
			}
			rc.bindLocation(e.GUID, id)
		case rc.Schema.TypeItem:
			id, ok := items[e.Name]
			if !ok {
				id = novel.Items().Create(&domain.Item{Title: e.Name})
				novel.Tree().Append(domain.ItemRoot, id)
			}
			rc.bindItem(e.GUID, id)
		case rc.Schema.TypeArc:
			if e.Name == r.narrative {
				rc.NarrativeGUID = e.GUID
				continue
			}
			id, ok := plotLines[e.Name]
			if !ok {
				id = novel.PlotLines().Create(&domain.PlotLine{Title: e.Name, ShortName: e.Name})
				novel.Tree().Append(domain.PlotLineRoot, id)
			}
			rc.bindPlotLine(e.GUID, id)
			rc.ArcCount++
		}
	}
	return nil
}

func (r *EntityResolver) readCharacter(e *domain.Entity, novel driven.NovelModel, index map[string]string) string {
	id, ok := index[e.Name]
	if !ok {
		id = novel.Characters().Create(&domain.Character{Title: e.Name})
		novel.Tree().Append(domain.CharacterRoot, id)
	}
	c, _ := novel.Characters().Get(id)
	if e.Notes != "" {
		c.Notes = e.Notes
	}
	if p := e.CreateRangePosition; p != nil && p.Timestamp >= 0 {
		c.BirthDate = TimestampToTime(p.Timestamp).Format(isoDate)
	}
	if p := e.DestroyRangePosition; p != nil && p.Timestamp >= 0 {
		c.DeathDate = TimestampToTime(p.Timestamp).Format(isoDate)
	}
	return id
}

// relatedElements are the source elements referenced by at least one
// section of a chapter that is not in the trash.
type relatedElements struct {
	characters map[string]bool
	locations  map[string]bool
	items      map[string]bool
	plotLines  map[string]bool
}

func collectRelated(source driven.NovelModel) relatedElements {
	rel := relatedElements{
		characters: make(map[string]bool),
		locations:  make(map[string]bool),
		items:      make(map[string]bool),
		plotLines:  make(map[string]bool),
	}
	for _, scID := range exportedSectionIDs(source) {
		sc, _ := source.Sections().Get(scID)
		for _, id := range sc.Characters {
			rel.characters[id] = true
		}
		for _, id := range sc.Locations {
			rel.locations[id] = true
		}
		for _, id := range sc.Items {
			rel.items[id] = true
		}
		for _, id := range sc.PlotLines {
			rel.plotLines[id] = true
		}
	}
	return rel
}

// exportedSectionIDs lists the sections of all chapters not in the trash, in tree order.
func exportedSectionIDs(novel driven.NovelModel) []string {
	var ids []string
	for _, chID := range novel.Chapters().IDs() {
		ch, _ := novel.Chapters().Get(chID)
		if ch.IsTrash {
			continue
		}
		for _, scID := range novel.Tree().Children(chID) {
			if _, ok := novel.Sections().Get(scID); ok {
				ids = append(ids, scID)
			}
		}
	}
	return ids
}

// CheckRelated rejects a source where two related elements of one class share a title.
// Unrelated elements are never exported, so their titles do not matter.
func (r *EntityResolver) CheckRelated(source driven.NovelModel, rel relatedElements) error {
	if err := checkRelatedTitles(source.Characters(), characterTitle, rel.characters, kindCharacter); err != nil {
		return err
	}
	if err := checkRelatedTitles(source.Locations(), locationTitle, rel.locations, kindLocation); err != nil {
		return err
	}
	if err := checkRelatedTitles(source.Items(), itemTitle, rel.items, kindItem); err != nil {
		return err
	}
	return checkRelatedTitles(source.PlotLines(), plotLineTitle, rel.plotLines, kindPlotLine)
}

// idRemap maps source element ids to target element ids.
type idRemap struct {
	characters map[string]string
	locations  map[string]string
	items      map[string]string
	plotLines  map[string]string
}

// upsertElements maps every source element to the target element with the
// same title. Related source elements without a match are copied into the
// target and passed to created.
func upsertElements[T any](
	src, dst driven.Collection[T],
	tree driven.Tree,
	root string,
	index map[string]string,
	related map[string]bool,
	title func(T) string,
	clone func(T) T,
	created func(id string, v T),
) map[string]string {
	remap := make(map[string]string)
	for _, srcID := range src.IDs() {
		v, _ := src.Get(srcID)
		if id, ok := index[title(v)]; ok {
			remap[srcID] = id
			continue
		}
		if !related[srcID] {
			continue
		}
		c := clone(v)
		id := dst.Create(c)
		tree.Append(root, id)
		remap[srcID] = id
		created(id, c)
	}
	return remap
}

// ResolveWrite maps the source elements to the target, appending an entity
// for every element the timeline lacks. It returns the id mapping and the
// number of entities created.
func (r *EntityResolver) ResolveWrite(
	source, target driven.NovelModel,
	doc *domain.Document,
	rc *ResolutionContext,
	rel relatedElements,
) (*idRemap, int, error) {
	characters, err := indexTitles(target.Characters(), characterTitle, domain.SideTimeline, kindCharacter, false)
	if err != nil {
		return nil, 0, err
	}
	locations, err := indexTitles(target.Locations(), locationTitle, domain.SideTimeline, kindLocation, false)
	if err != nil {
		return nil, 0, err
	}
	items, err := indexTitles(target.Items(), itemTitle, domain.SideTimeline, kindItem, false)
	if err != nil {
		return nil, 0, err
	}
	plotLines, err := indexTitles(target.PlotLines(), plotLineTitle, domain.SideTimeline, kindArc, false)
	if err != nil {
		return nil, 0, err
	}

	created := 0
	remap := &idRemap{}

	sortOrder := target.Characters().Len()
	remap.characters = upsertElements(source.Characters(), target.Characters(), target.Tree(),
		domain.CharacterRoot, characters, rel.characters, characterTitle,
		func(c *domain.Character) *domain.Character { v := *c; return &v },
		func(id string, c *domain.Character) {
			guid := StableID(r.seed, id+c.Title)
			rc.bindCharacter(guid, id)
			entity := &domain.Entity{
				GUID:        guid,
				EntityType:  rc.Schema.TypeCharacter,
				Name:        c.Title,
				Notes:       c.Notes,
				Icon:        "person",
				SortOrder:   sortOrder,
				SwatchColor: "darkPink",
			}
			entity.CreateRangePosition = r.lifePosition(c.BirthDate, rc)
			entity.DestroyRangePosition = r.lifePosition(c.DeathDate, rc)
			doc.Entities = append(doc.Entities, entity)
			sortOrder++
			created++
		})
	r.refreshLifeDates(source, doc, rc, characters, remap.characters)

	sortOrder = target.Locations().Len()
	remap.locations = upsertElements(source.Locations(), target.Locations(), target.Tree(),
		domain.LocationRoot, locations, rel.locations, locationTitle,
		func(l *domain.Location) *domain.Location { v := *l; return &v },
		func(id string, l *domain.Location) {
			guid := StableID(r.seed, id+l.Title)
			rc.bindLocation(guid, id)
			doc.Entities = append(doc.Entities, newEntity(guid, rc.Schema.TypeLocation, l.Title, "map", "orange", sortOrder))
			sortOrder++
			created++
		})

	sortOrder = target.Items().Len()
	remap.items = upsertElements(source.Items(), target.Items(), target.Tree(),
		domain.ItemRoot, items, rel.items, itemTitle,
		func(i *domain.Item) *domain.Item { v := *i; return &v },
		func(id string, i *domain.Item) {
			guid := StableID(r.seed, id+i.Title)
			rc.bindItem(guid, id)
			doc.Entities = append(doc.Entities, newEntity(guid, rc.Schema.TypeItem, i.Title, "cube", "denim", sortOrder))
			sortOrder++
			created++
		})

	remap.plotLines = upsertElements(source.PlotLines(), target.PlotLines(), target.Tree(),
		domain.PlotLineRoot, plotLines, rel.plotLines, plotLineTitle,
		func(p *domain.PlotLine) *domain.PlotLine { return &domain.PlotLine{Title: p.Title, ShortName: p.ShortName} },
		func(id string, p *domain.PlotLine) {
			guid := StableID(r.seed, id+p.Title)
			rc.bindPlotLine(guid, id)
			doc.Entities = append(doc.Entities, newEntity(guid, rc.Schema.TypeArc, p.Title, "book", "orange", rc.ArcCount))
			rc.ArcCount++
			created++
		})

	return remap, created, nil
}

// refreshLifeDates rewrites the birth and death positions of character
// entities that already existed from their source characters.
func (r *EntityResolver) refreshLifeDates(
	source driven.NovelModel,
	doc *domain.Document,
	rc *ResolutionContext,
	targetByTitle map[string]string,
	remap map[string]string,
) {
	sourceByTarget := make(map[string]string, len(remap))
	for srcID, id := range remap {
		sourceByTarget[id] = srcID
	}
	for _, e := range doc.Entities {
		if e.EntityType != rc.Schema.TypeCharacter {
			continue
		}
		id, ok := targetByTitle[e.Name]
		if !ok {
			continue
		}
		srcID, ok := sourceByTarget[id]
		if !ok {
			continue
		}
		src, _ := source.Characters().Get(srcID)
		e.CreateRangePosition = r.refreshPosition(e.CreateRangePosition, src.BirthDate, rc)
		e.DestroyRangePosition = r.refreshPosition(e.DestroyRangePosition, src.DeathDate, rc)
	}
}

func (r *EntityResolver) refreshPosition(current *domain.RangePosition, date string, rc *ResolutionContext) *domain.RangePosition {
	if date == "" {
		return nil
	}
	if p := r.lifePosition(date, rc); p != nil {
		return p
	}
	return current
}

func (r *EntityResolver) lifePosition(date string, rc *ResolutionContext) *domain.RangePosition {
	if date == "" {
		return nil
	}
	t, err := time.Parse(isoDate, date)
	if err != nil {
		logger.Warn("Ignoring malformed character date %q", date)
		return nil
	}
	return &domain.RangePosition{
		Precision:         "day",
		RangePropertyGUID: rc.Schema.DateProperty,
		Timestamp:         TimeToTimestamp(t),
	}
}

func newEntity(guid, entityType, name, icon, swatch string, sortOrder int) *domain.Entity {
	return &domain.Entity{
		GUID:        guid,
		EntityType:  entityType,
		Name:        name,
		Icon:        icon,
		SortOrder:   sortOrder,
		SwatchColor: swatch,
	}
}
