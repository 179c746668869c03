package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.Empty(t, store.Keys())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("names.narrative_arc", "Story"))
	require.NoError(t, store.Set("options.add_moonphase", true))
	require.NoError(t, store.Set("watch.interval", int64(3)))

	assert.Equal(t, "Story", store.GetString("names.narrative_arc"))
	assert.True(t, store.GetBool("options.add_moonphase"))
	assert.Equal(t, 3, store.GetInt("watch.interval"))

	// Wrong types and missing keys give zero values.
	assert.Empty(t, store.GetString("options.add_moonphase"))
	assert.False(t, store.GetBool("names.narrative_arc"))
	assert.Zero(t, store.GetInt("missing"))
}

func TestConfigStore_Keys_Sorted(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("options.lock_on_export", true))
	require.NoError(t, store.Set("names.type_item", "Thing"))
	require.NoError(t, store.Set("names.role_item", "Prop"))

	assert.Equal(t, []string{"names.role_item", "names.type_item", "options.lock_on_export"}, store.Keys())
}

func TestConfigStore_WithOverlay(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("names.narrative_arc", "Story"))
	require.NoError(t, store.Set("names.type_item", "Thing"))
	store.AddOverlay("/novel/aeonsync.toml", map[string]any{
		"names.narrative_arc":   "Plot",
		"options.add_moonphase": true,
	})

	view, err := store.WithOverlay("/novel/aeonsync.toml")
	require.NoError(t, err)

	assert.Equal(t, "Plot", view.GetString("names.narrative_arc"))
	assert.Equal(t, "Thing", view.GetString("names.type_item"))
	assert.True(t, view.GetBool("options.add_moonphase"))

	// The receiver is unchanged.
	assert.Equal(t, "Story", store.GetString("names.narrative_arc"))
	_, ok := store.Get("options.add_moonphase")
	assert.False(t, ok)
}

func TestConfigStore_WithOverlay_Missing(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("names.type_arc", "Thread"))

	view, err := store.WithOverlay("/nowhere/aeonsync.toml")
	require.NoError(t, err)
	assert.Equal(t, "Thread", view.GetString("names.type_arc"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set("names.narrative_arc", "Story")
			_ = store.GetString("names.narrative_arc")
			_ = store.Keys()
		}()
	}
	wg.Wait()
	assert.Equal(t, "Story", store.GetString("names.narrative_arc"))
}
