package driven

import (
	"context"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

// Collection is an ordered set of novel elements keyed by id.
type Collection[T any] interface {
	// IDs returns element ids in insertion order.
	IDs() []string

	// Get retrieves an element by id.
	Get(id string) (T, bool)

	// Put stores an element under id, appending new ids to the order.
	Put(id string, v T)

	// Create stores v under a fresh id and returns that id.
	// Ids are the element prefix followed by the smallest unused number.
	Create(v T) string

	// Len returns the number of elements.
	Len() int
}

// Tree is the ordered containment tree of a novel.
type Tree interface {
	// Append adds child as the last child of parent.
	Append(parentID, childID string)

	// Children returns the children of parent in order.
	Children(parentID string) []string
}

// NovelModel is the in-memory novel a sync reads from or writes into.
type NovelModel interface {
	Title() string
	SetTitle(title string)

	// ReferenceDate is the ISO date day offsets are relative to, or "".
	ReferenceDate() string
	SetReferenceDate(date string)

	Chapters() Collection[*domain.Chapter]
	Sections() Collection[*domain.Section]
	Characters() Collection[*domain.Character]
	Locations() Collection[*domain.Location]
	Items() Collection[*domain.Item]
	PlotLines() Collection[*domain.PlotLine]

	Tree() Tree
}

// NovelStore loads and saves novel projects.
type NovelStore interface {
	// New returns an empty novel.
	New() NovelModel

	// Load reads the project at path.
	Load(ctx context.Context, path string) (NovelModel, error)

	// Save writes novel to path atomically.
	Save(ctx context.Context, novel NovelModel, path string) error
}

// ProjectLocker marks a novel project as locked for editing.
type ProjectLocker interface {
	// Lock creates the lock for the project at path.
	Lock(path string) error

	// IsLocked reports whether the project at path is locked.
	IsLocked(path string) bool
}
