package novx

import (
	"encoding/xml"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/aeonsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// Ensure Project implements the interface.
var _ driven.NovelModel = (*Project)(nil)

// FormatVersion is written to new projects.
const FormatVersion = "1.4"

// Element names of the novx format.
const (
	tagRoot       = "novx"
	tagProject    = "PROJECT"
	tagChapters   = "CHAPTERS"
	tagChapter    = "CHAPTER"
	tagSection    = "SECTION"
	tagCharacters = "CHARACTERS"
	tagCharacter  = "CHARACTER"
	tagLocations  = "LOCATIONS"
	tagLocation   = "LOCATION"
	tagItems      = "ITEMS"
	tagItem       = "ITEM"
	tagArcs       = "ARCS"
	tagArc        = "ARC"
)

// Child orders used when an element gains a child it did not have.
var (
	rootOrder      = []string{tagProject, tagChapters, tagCharacters, tagLocations, tagItems, tagArcs}
	projectOrder   = []string{"Title", "Desc", "Author", "ReferenceDate"}
	chapterOrder   = []string{"Title", "Desc", "Notes", tagSection}
	sectionOrder   = []string{"Title", "Desc", "Notes", "Tags", "Date", "Time", "Day", "LastsDays", "LastsHours", "LastsMinutes", "Characters", "Locations", "Items", "Content"}
	characterOrder = []string{"Title", "FullName", "Desc", "Notes", "BirthDate", "DeathDate"}
	worldOrder     = []string{"Title", "Desc"}
	arcOrder       = []string{"Title", "ShortName", "Desc", "Sections"}
)

// Project is a novel model backed by a novx document. Saving a project
// that was loaded from a file rewrites only the decoded elements.
type Project struct {
	*memory.Novel

	root *element

	// elements maps element ids to their XML, for ids read from the file.
	elements map[string]*element
}

// NewProject returns an empty project.
func NewProject() *Project {
	return &Project{
		Novel:    memory.NewNovel(),
		elements: make(map[string]*element),
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func splitTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ";") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// decodeProject builds the novel model from a parsed document.
func decodeProject(root *element) *Project {
	p := NewProject()
	p.root = root

	if project := root.child(tagProject); project != nil {
		p.SetTitle(project.child("Title").text())
		p.SetReferenceDate(project.child("ReferenceDate").text())
	}

	if chapters := root.child(tagChapters); chapters != nil {
		for _, chEl := range chapters.elements(tagChapter) {
			chID := chEl.attr("id")
			if chID == "" {
				logger.Warn("Skipping chapter without id")
				continue
			}
			p.Chapters().Put(chID, &domain.Chapter{
				Title:   chEl.child("Title").text(),
				Type:    atoi(chEl.attr("type")),
				IsTrash: chEl.attr("isTrash") == "1",
			})
			p.Tree().Append(domain.ChapterRoot, chID)
			p.elements[chID] = chEl

			for _, scEl := range chEl.elements(tagSection) {
				scID := scEl.attr("id")
				if scID == "" {
					logger.Warn("Skipping section without id in chapter %s", chID)
					continue
				}
				p.Sections().Put(scID, decodeSection(scEl))
				p.Tree().Append(chID, scID)
				p.elements[scID] = scEl
			}
		}
	}

	decodeWorld(p, root, tagCharacters, tagCharacter, domain.CharacterRoot, func(id string, el *element) {
		p.Characters().Put(id, &domain.Character{
			Title:     el.child("Title").text(),
			FullName:  el.child("FullName").text(),
			Notes:     el.child("Notes").text(),
			BirthDate: el.child("BirthDate").text(),
			DeathDate: el.child("DeathDate").text(),
		})
	})
	decodeWorld(p, root, tagLocations, tagLocation, domain.LocationRoot, func(id string, el *element) {
		p.Locations().Put(id, &domain.Location{Title: el.child("Title").text(), Desc: el.child("Desc").text()})
	})
	decodeWorld(p, root, tagItems, tagItem, domain.ItemRoot, func(id string, el *element) {
		p.Items().Put(id, &domain.Item{Title: el.child("Title").text(), Desc: el.child("Desc").text()})
	})
	decodeWorld(p, root, tagArcs, tagArc, domain.PlotLineRoot, func(id string, el *element) {
		pl := &domain.PlotLine{
			Title:     el.child("Title").text(),
			ShortName: el.child("ShortName").text(),
		}
		for _, scID := range el.ids("Sections") {
			sc, ok := p.Sections().Get(scID)
			if !ok {
				continue
			}
			pl.Sections = append(pl.Sections, scID)
			sc.PlotLines = append(sc.PlotLines, id)
		}
		p.PlotLines().Put(id, pl)
	})
	return p
}

func decodeSection(el *element) *domain.Section {
	sc := &domain.Section{
		Title:        el.child("Title").text(),
		Desc:         el.child("Desc").text(),
		Notes:        el.child("Notes").text(),
		Tags:         splitTags(el.child("Tags").text()),
		Date:         strings.TrimSpace(el.child("Date").text()),
		Time:         strings.TrimSpace(el.child("Time").text()),
		LastsDays:    atoi(el.child("LastsDays").text()),
		LastsHours:   atoi(el.child("LastsHours").text()),
		LastsMinutes: atoi(el.child("LastsMinutes").text()),
		Characters:   el.ids("Characters"),
		Locations:    el.ids("Locations"),
		Items:        el.ids("Items"),
		Type:         domain.SectionType(atoi(el.attr("type"))),
		Status:       atoi(el.attr("status")),
	}
	if day := strings.TrimSpace(el.child("Day").text()); day != "" {
		if n, err := strconv.Atoi(day); err == nil {
			sc.Day = &n
		}
	}
	return sc
}

// decodeWorld reads the elements of one world building class.
func decodeWorld(p *Project, root *element, group, tag, treeRoot string, put func(id string, el *element)) {
	parent := root.child(group)
	if parent == nil {
		return
	}
	for _, el := range parent.elements(tag) {
		id := el.attr("id")
		if id == "" {
			logger.Warn("Skipping %s without id", strings.ToLower(tag))
			continue
		}
		put(id, el)
		p.Tree().Append(treeRoot, id)
		p.elements[id] = el
	}
}

// newRoot returns the skeleton of an empty novx document.
func newRoot() *element {
	root := newElement(tagRoot,
		xml.Attr{Name: xml.Name{Local: "version"}, Value: FormatVersion},
		xml.Attr{Name: xml.Name{Space: "xml", Local: "lang"}, Value: "en"},
	)
	for _, name := range rootOrder {
		root.children = append(root.children, newElement(name))
	}
	return root
}

// encodeProject writes the model into root, reusing the elements of
// known ids so that undecoded markup survives.
func encodeProject(novel driven.NovelModel, root *element, known map[string]*element) {
	lookup := func(tag, id string) *element {
		if el, ok := known[id]; ok && el.name == tag {
			return el
		}
		return newElement(tag, xml.Attr{Name: xml.Name{Local: "id"}, Value: id})
	}

	project := root.ensure(tagProject, rootOrder)
	project.setText("Title", novel.Title(), projectOrder)
	project.setText("ReferenceDate", novel.ReferenceDate(), projectOrder)

	// Chapters and sections follow the tree; chapters outside it go last.
	chapters := root.ensure(tagChapters, rootOrder)
	chapters.children = nil
	chapterIDs := novel.Tree().Children(domain.ChapterRoot)
	for _, id := range novel.Chapters().IDs() {
		if !slices.Contains(chapterIDs, id) {
			chapterIDs = append(chapterIDs, id)
		}
	}
	var narrativeOrder []string
	for _, chID := range chapterIDs {
		ch, ok := novel.Chapters().Get(chID)
		if !ok {
			continue
		}
		chEl := lookup(tagChapter, chID)
		encodeChapter(chEl, ch)

		kept := chEl.children[:0]
		for _, c := range chEl.children {
			if el, ok := c.(*element); ok && el.name == tagSection {
				continue
			}
			kept = append(kept, c)
		}
		chEl.children = kept
		for _, scID := range novel.Tree().Children(chID) {
			sc, ok := novel.Sections().Get(scID)
			if !ok {
				continue
			}
			scEl := lookup(tagSection, scID)
			encodeSection(scEl, sc)
			chEl.children = append(chEl.children, scEl)
			narrativeOrder = append(narrativeOrder, scID)
		}
		chapters.children = append(chapters.children, chEl)
	}
	for _, scID := range novel.Sections().IDs() {
		if !slices.Contains(narrativeOrder, scID) {
			logger.Warn("Section %s is not in a chapter and is not saved", scID)
		}
	}

	characters := root.ensure(tagCharacters, rootOrder)
	characters.children = nil
	for _, id := range novel.Characters().IDs() {
		cr, _ := novel.Characters().Get(id)
		el := lookup(tagCharacter, id)
		el.setText("Title", cr.Title, characterOrder)
		el.setText("FullName", cr.FullName, characterOrder)
		el.setParagraphs("Notes", cr.Notes, characterOrder)
		el.setText("BirthDate", cr.BirthDate, characterOrder)
		el.setText("DeathDate", cr.DeathDate, characterOrder)
		characters.children = append(characters.children, el)
	}

	locations := root.ensure(tagLocations, rootOrder)
	locations.children = nil
	for _, id := range novel.Locations().IDs() {
		lc, _ := novel.Locations().Get(id)
		el := lookup(tagLocation, id)
		el.setText("Title", lc.Title, worldOrder)
		el.setParagraphs("Desc", lc.Desc, worldOrder)
		locations.children = append(locations.children, el)
	}

	items := root.ensure(tagItems, rootOrder)
	items.children = nil
	for _, id := range novel.Items().IDs() {
		it, _ := novel.Items().Get(id)
		el := lookup(tagItem, id)
		el.setText("Title", it.Title, worldOrder)
		el.setParagraphs("Desc", it.Desc, worldOrder)
		items.children = append(items.children, el)
	}

	arcs := root.ensure(tagArcs, rootOrder)
	arcs.children = nil
	for _, id := range novel.PlotLines().IDs() {
		pl, _ := novel.PlotLines().Get(id)
		el := lookup(tagArc, id)
		el.setText("Title", pl.Title, arcOrder)
		el.setText("ShortName", pl.ShortName, arcOrder)
		el.setIDs("Sections", plotLineSections(novel, id, pl, narrativeOrder), arcOrder)
		arcs.children = append(arcs.children, el)
	}
}

func encodeChapter(el *element, ch *domain.Chapter) {
	el.setText("Title", ch.Title, chapterOrder)
	if ch.Type != 0 {
		el.setAttr("type", strconv.Itoa(ch.Type))
	} else {
		el.setAttr("type", "")
	}
	if ch.IsTrash {
		el.setAttr("isTrash", "1")
	} else {
		el.setAttr("isTrash", "")
	}
}

func encodeSection(el *element, sc *domain.Section) {
	if sc.Type != domain.SectionNormal {
		el.setAttr("type", strconv.Itoa(int(sc.Type)))
	} else {
		el.setAttr("type", "")
	}
	if sc.Status != 0 {
		el.setAttr("status", strconv.Itoa(sc.Status))
	} else {
		el.setAttr("status", "")
	}

	el.setText("Title", sc.Title, sectionOrder)
	el.setParagraphs("Desc", sc.Desc, sectionOrder)
	el.setParagraphs("Notes", sc.Notes, sectionOrder)
	el.setText("Tags", strings.Join(sc.Tags, ";"), sectionOrder)
	el.setText("Date", sc.Date, sectionOrder)
	el.setText("Time", sc.Time, sectionOrder)
	day := ""
	if sc.Day != nil {
		day = strconv.Itoa(*sc.Day)
	}
	el.setText("Day", day, sectionOrder)
	el.setText("LastsDays", positive(sc.LastsDays), sectionOrder)
	el.setText("LastsHours", positive(sc.LastsHours), sectionOrder)
	el.setText("LastsMinutes", positive(sc.LastsMinutes), sectionOrder)
	el.setIDs("Characters", sc.Characters, sectionOrder)
	el.setIDs("Locations", sc.Locations, sectionOrder)
	el.setIDs("Items", sc.Items, sectionOrder)
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// plotLineSections returns the sections of a plot line in narrative
// order. Membership is recorded on both the plot line and its sections.
func plotLineSections(novel driven.NovelModel, id string, pl *domain.PlotLine, narrativeOrder []string) []string {
	var out []string
	for _, scID := range narrativeOrder {
		sc, _ := novel.Sections().Get(scID)
		if slices.Contains(pl.Sections, scID) || slices.Contains(sc.PlotLines, id) {
			out = append(out, scID)
		}
	}
	return out
}
