package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

func TestCollection_CreateUsesSmallestFreeID(t *testing.T) {
	c := NewCollection[*domain.Item](domain.ItemPrefix)
	c.Put("it2", &domain.Item{Title: "Key"})

	id := c.Create(&domain.Item{Title: "Lamp"})
	assert.Equal(t, "it1", id)
	id = c.Create(&domain.Item{Title: "Rope"})
	assert.Equal(t, "it3", id)

	assert.Equal(t, []string{"it2", "it1", "it3"}, c.IDs())
	assert.Equal(t, 3, c.Len())
}

func TestCollection_PutKeepsOrder(t *testing.T) {
	c := NewCollection[*domain.Location](domain.LocationPrefix)
	c.Put("lc1", &domain.Location{Title: "Harbour"})
	c.Put("lc2", &domain.Location{Title: "Tower"})
	c.Put("lc1", &domain.Location{Title: "Old harbour"})

	assert.Equal(t, []string{"lc1", "lc2"}, c.IDs())
	got, ok := c.Get("lc1")
	require.True(t, ok)
	assert.Equal(t, "Old harbour", got.Title)

	_, ok = c.Get("lc9")
	assert.False(t, ok)
}

func TestTree_AppendIsIdempotent(t *testing.T) {
	tree := NewTree()
	tree.Append(domain.ChapterRoot, "ch1")
	tree.Append(domain.ChapterRoot, "ch2")
	tree.Append(domain.ChapterRoot, "ch1")

	assert.Equal(t, []string{"ch1", "ch2"}, tree.Children(domain.ChapterRoot))
	assert.Empty(t, tree.Children("ch1"))
}

func TestNovel_CloneIsDeep(t *testing.T) {
	n := NewNovel()
	n.SetTitle("Demo")
	n.SetReferenceDate("2024-01-01")
	day := 3
	scID := n.Sections().Create(&domain.Section{Title: "Arrival", Tags: []string{"a"}, Day: &day})
	chID := n.Chapters().Create(&domain.Chapter{Title: "One"})
	n.Tree().Append(domain.ChapterRoot, chID)
	n.Tree().Append(chID, scID)

	c := n.Clone()
	sc, _ := c.Sections().Get(scID)
	sc.Tags[0] = "b"
	*sc.Day = 9
	c.Tree().Append(chID, "sc9")

	orig, _ := n.Sections().Get(scID)
	assert.Equal(t, []string{"a"}, orig.Tags)
	assert.Equal(t, 3, *orig.Day)
	assert.Equal(t, []string{scID}, n.Tree().Children(chID))
	assert.Equal(t, "Demo", c.Title())
	assert.Equal(t, "2024-01-01", c.ReferenceDate())
}

func TestNovelStore_LoadReturnsCopy(t *testing.T) {
	store := NewNovelStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing.novx")
	require.ErrorIs(t, err, domain.ErrDocumentIO)

	n := store.New()
	n.SetTitle("Demo")
	require.NoError(t, store.Save(ctx, n, "demo.novx"))
	n.SetTitle("Changed")

	loaded, err := store.Load(ctx, "demo.novx")
	require.NoError(t, err)
	assert.Equal(t, "Demo", loaded.Title())
	assert.Equal(t, 1, store.Saves())
}

func TestLocker(t *testing.T) {
	l := NewLocker()
	assert.False(t, l.IsLocked("demo.novx"))
	require.NoError(t, l.Lock("demo.novx"))
	assert.True(t, l.IsLocked("demo.novx"))
}
