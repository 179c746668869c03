package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aeonsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

const (
	testSeed     = "demo"
	testDateGUID = "3a1f7c4e-date"
	testRedGUID  = "c0l0r-red"
)

func fixedNow() time.Time {
	return time.Date(2026, time.October, 18, 15, 30, 0, 0, time.UTC)
}

// newTemplate returns a template with only a calendar and colours, as a
// timeline created from an empty template has.
func newTemplate() domain.Template {
	return domain.Template{
		Colors: []*domain.TemplateColor{
			{GUID: testRedGUID, Name: "Red"},
			{GUID: "c0l0r-yellow", Name: "Yellow"},
		},
		RangeProperties: []*domain.RangeProperty{{
			GUID: testDateGUID,
			Type: "date",
			Calendar: &domain.Calendar{Eras: []*domain.Era{
				{Name: "BC"},
				{Name: "AD"},
			}},
		}},
	}
}

func newDocument() *domain.Document {
	return &domain.Document{Template: newTemplate()}
}

// healedDocument returns a document whose template has every definition
// a sync needs, with the guids of those definitions.
func healedDocument(t *testing.T) (*domain.Document, SchemaGUIDs) {
	t.Helper()
	doc := newDocument()
	ids, _, err := NewSchemaReconciler(domain.DefaultSyncSettings(), testSeed).Reconcile(&doc.Template)
	require.NoError(t, err)
	return doc, ids
}

func addEntity(doc *domain.Document, guid, entityType, name string) *domain.Entity {
	e := &domain.Entity{GUID: guid, EntityType: entityType, Name: name}
	doc.Entities = append(doc.Entities, e)
	return e
}

func rel(entity, role string) *domain.Relationship {
	return &domain.Relationship{Entity: entity, Role: role, PercentAllocated: 1}
}

func addEvent(doc *domain.Document, title string, ts domain.Timestamp, span domain.Span, rels ...*domain.Relationship) *domain.EventRecord {
	ev := &domain.EventRecord{
		GUID:      "ev-" + title,
		Title:     title,
		DisplayID: domain.DisplayID("1"),
		RangeValues: []*domain.RangeValue{{
			RangeProperty: testDateGUID,
			Position:      domain.Position{Precision: "minute", Timestamp: ts},
			Span:          span,
		}},
		Relationships: rels,
	}
	doc.Events = append(doc.Events, ev)
	return ev
}

func at(year int, month time.Month, day, hour, minute int) domain.Timestamp {
	return TimeToTimestamp(time.Date(year, month, day, hour, minute, 0, 0, time.UTC))
}

func newMerger() *Merger {
	return NewMerger(domain.DefaultSyncSettings(), testSeed, fixedNow)
}

// novelFixture is a small novel: two chapters with three narrative
// sections, one unused section and a trashed chapter.
type novelFixture struct {
	novel *memory.Novel

	alice, bob, harbour, lamp, mystery string
	arrival, storm, departure, draft   string
	trashed                            string
}

func newNovelFixture() *novelFixture {
	n := memory.NewNovel()
	f := &novelFixture{novel: n}
	n.SetTitle("Demo")

	f.alice = n.Characters().Create(&domain.Character{Title: "Alice", Notes: "Captain", BirthDate: "1990-05-17"})
	f.bob = n.Characters().Create(&domain.Character{Title: "Bob"})
	n.Characters().Create(&domain.Character{Title: "Unused"})
	n.Characters().Create(&domain.Character{Title: "Unused"})
	f.harbour = n.Locations().Create(&domain.Location{Title: "Harbour"})
	f.lamp = n.Items().Create(&domain.Item{Title: "Lamp"})
	f.mystery = n.PlotLines().Create(&domain.PlotLine{Title: "Mystery", ShortName: "M"})

	f.arrival = n.Sections().Create(&domain.Section{
		Title:        "Arrival",
		Desc:         "The ship docks.",
		Notes:        "Rain.",
		Tags:         []string{"sea", "rain"},
		Date:         "2024-03-01",
		Time:         "08:15:00",
		LastsHours:   2,
		LastsMinutes: 30,
		Characters:   []string{f.alice, f.bob},
		Locations:    []string{f.harbour},
		PlotLines:    []string{f.mystery},
		Status:       2,
	})
	f.storm = n.Sections().Create(&domain.Section{
		Title:      "Storm",
		Desc:       "Thunder.",
		Date:       "2024-03-02",
		Time:       "22:00:00",
		LastsDays:  1,
		Characters: []string{f.alice},
		Items:      []string{f.lamp},
		Status:     1,
	})
	f.departure = n.Sections().Create(&domain.Section{
		Title:      "Departure",
		Characters: []string{f.bob},
		Status:     1,
	})
	f.draft = n.Sections().Create(&domain.Section{Title: "Draft", Type: domain.SectionUnused})
	f.trashed = n.Sections().Create(&domain.Section{Title: "Cut scene", Characters: []string{f.bob}})

	one := n.Chapters().Create(&domain.Chapter{Title: "One"})
	two := n.Chapters().Create(&domain.Chapter{Title: "Two"})
	trash := n.Chapters().Create(&domain.Chapter{Title: "Trash", IsTrash: true})
	for _, ch := range []string{one, two, trash} {
		n.Tree().Append(domain.ChapterRoot, ch)
	}
	n.Tree().Append(one, f.arrival)
	n.Tree().Append(one, f.storm)
	n.Tree().Append(two, f.departure)
	n.Tree().Append(two, f.draft)
	n.Tree().Append(trash, f.trashed)
	return f
}

// export merges source into doc the way an export does.
func export(t *testing.T, m *Merger, source *memory.Novel, doc *domain.Document) *WriteResult {
	t.Helper()
	shadow := memory.NewNovel()
	read, err := m.Read(doc, shadow)
	require.NoError(t, err)
	result, err := m.Write(source, shadow, doc, read.Context)
	require.NoError(t, err)
	return result
}

func sectionByTitle(t *testing.T, n *memory.Novel, title string) (string, *domain.Section) {
	t.Helper()
	for _, id := range n.Sections().IDs() {
		sc, _ := n.Sections().Get(id)
		if sc.Title == title {
			return id, sc
		}
	}
	t.Fatalf("no section %q", title)
	return "", nil
}

func eventByTitle(t *testing.T, doc *domain.Document, title string) *domain.EventRecord {
	t.Helper()
	for _, ev := range doc.Events {
		if ev.Title == title {
			return ev
		}
	}
	t.Fatalf("no event %q", title)
	return nil
}
