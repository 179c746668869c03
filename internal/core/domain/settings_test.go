package domain

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSyncSettings(t *testing.T) {
	s := DefaultSyncSettings()

	assert.Equal(t, "Narrative", s.NarrativeArc)
	assert.Equal(t, "Storyline", s.RolePlotLine)
	assert.Equal(t, "Participant", s.RoleCharacter)
	assert.Equal(t, "Red", s.ColorSection)
	assert.Equal(t, "Yellow", s.ColorEvent)
	assert.False(t, s.AddMoonPhase)
	assert.False(t, s.LockOnExport)
}

// Every name is matched against the template, so none may be empty.
func TestDefaultSyncSettings_NamesSet(t *testing.T) {
	v := reflect.ValueOf(DefaultSyncSettings())
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() != reflect.String {
			continue
		}
		assert.NotEmpty(t, f.String(), v.Type().Field(i).Name)
	}
}
