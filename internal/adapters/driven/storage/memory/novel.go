package memory

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
)

// Ensure Novel implements the interface.
var _ driven.NovelModel = (*Novel)(nil)

// Collection is an ordered, id-keyed element set.
type Collection[T any] struct {
	prefix string
	order  []string
	items  map[string]T
}

// NewCollection creates an empty collection whose generated ids use prefix.
func NewCollection[T any](prefix string) *Collection[T] {
	return &Collection[T]{
		prefix: prefix,
		items:  make(map[string]T),
	}
}

// IDs returns element ids in insertion order.
func (c *Collection[T]) IDs() []string {
	return slices.Clone(c.order)
}

// Get retrieves an element by id.
func (c *Collection[T]) Get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

// Put stores an element under id.
func (c *Collection[T]) Put(id string, v T) {
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

// Create stores v under the smallest free id and returns it.
func (c *Collection[T]) Create(v T) string {
	for n := 1; ; n++ {
		id := fmt.Sprintf("%s%d", c.prefix, n)
		if _, ok := c.items[id]; !ok {
			c.Put(id, v)
			return id
		}
	}
}

// Len returns the number of elements.
func (c *Collection[T]) Len() int {
	return len(c.order)
}

// Tree is an ordered parent to children mapping.
type Tree struct {
	children map[string][]string
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{children: make(map[string][]string)}
}

// Append adds child as the last child of parent. Appending an existing
// child again is a no-op.
func (t *Tree) Append(parentID, childID string) {
	if slices.Contains(t.children[parentID], childID) {
		return
	}
	t.children[parentID] = append(t.children[parentID], childID)
}

// Children returns the children of parent in order.
func (t *Tree) Children(parentID string) []string {
	return slices.Clone(t.children[parentID])
}

// Novel is an in-memory driven.NovelModel. It is not safe for concurrent
// use; a synchronisation owns its novel for the duration of the run.
type Novel struct {
	title         string
	referenceDate string

	chapters   *Collection[*domain.Chapter]
	sections   *Collection[*domain.Section]
	characters *Collection[*domain.Character]
	locations  *Collection[*domain.Location]
	items      *Collection[*domain.Item]
	plotLines  *Collection[*domain.PlotLine]
	tree       *Tree
}

// NewNovel creates an empty novel.
func NewNovel() *Novel {
	return &Novel{
		chapters:   NewCollection[*domain.Chapter](domain.ChapterPrefix),
		sections:   NewCollection[*domain.Section](domain.SectionPrefix),
		characters: NewCollection[*domain.Character](domain.CharacterPrefix),
		locations:  NewCollection[*domain.Location](domain.LocationPrefix),
		items:      NewCollection[*domain.Item](domain.ItemPrefix),
		plotLines:  NewCollection[*domain.PlotLine](domain.PlotLinePrefix),
		tree:       NewTree(),
	}
}

// Title returns the novel title.
func (n *Novel) Title() string { return n.title }

// SetTitle sets the novel title.
func (n *Novel) SetTitle(title string) { n.title = title }

// ReferenceDate returns the ISO date day offsets are relative to.
func (n *Novel) ReferenceDate() string { return n.referenceDate }

// SetReferenceDate sets the reference date.
func (n *Novel) SetReferenceDate(date string) { n.referenceDate = date }

// Chapters returns the chapter collection.
func (n *Novel) Chapters() driven.Collection[*domain.Chapter] { return n.chapters }

// Sections returns the section collection.
func (n *Novel) Sections() driven.Collection[*domain.Section] { return n.sections }

// Characters returns the character collection.
func (n *Novel) Characters() driven.Collection[*domain.Character] { return n.characters }

// Locations returns the location collection.
func (n *Novel) Locations() driven.Collection[*domain.Location] { return n.locations }

// Items returns the item collection.
func (n *Novel) Items() driven.Collection[*domain.Item] { return n.items }

// PlotLines returns the plot line collection.
func (n *Novel) PlotLines() driven.Collection[*domain.PlotLine] { return n.plotLines }

// Tree returns the containment tree.
func (n *Novel) Tree() driven.Tree { return n.tree }

func cloneCollection[T any](c *Collection[T], clone func(T) T) *Collection[T] {
	out := NewCollection[T](c.prefix)
	for _, id := range c.order {
		out.Put(id, clone(c.items[id]))
	}
	return out
}

// Clone returns a deep copy of the novel.
func (n *Novel) Clone() *Novel {
	tree := NewTree()
	for parent, children := range n.tree.children {
		tree.children[parent] = slices.Clone(children)
	}
	return &Novel{
		title:         n.title,
		referenceDate: n.referenceDate,
		chapters: cloneCollection(n.chapters, func(c *domain.Chapter) *domain.Chapter {
			v := *c
			return &v
		}),
		sections: cloneCollection(n.sections, func(s *domain.Section) *domain.Section {
			v := *s
			v.Tags = slices.Clone(s.Tags)
			v.Characters = slices.Clone(s.Characters)
			v.Locations = slices.Clone(s.Locations)
			v.Items = slices.Clone(s.Items)
			v.PlotLines = slices.Clone(s.PlotLines)
			if s.Day != nil {
				day := *s.Day
				v.Day = &day
			}
			return &v
		}),
		characters: cloneCollection(n.characters, func(c *domain.Character) *domain.Character {
			v := *c
			return &v
		}),
		locations: cloneCollection(n.locations, func(l *domain.Location) *domain.Location {
			v := *l
			return &v
		}),
		items: cloneCollection(n.items, func(i *domain.Item) *domain.Item {
			v := *i
			return &v
		}),
		plotLines: cloneCollection(n.plotLines, func(p *domain.PlotLine) *domain.PlotLine {
			v := *p
			v.Sections = slices.Clone(p.Sections)
			return &v
		}),
		tree: tree,
	}
}
