package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStableID_KnownValue(t *testing.T) {
	assert.Equal(t, "c6f6cf73-e139-32f0-a767-a2c56415d88d", StableID("demo", "entityNarrativeGuid"))
}

func TestStableID_Deterministic(t *testing.T) {
	assert.Equal(t, StableID("demo", fragTypeArc), StableID("demo", fragTypeArc))
	assert.NotEqual(t, StableID("demo", fragTypeArc), StableID("other", fragTypeArc))
	assert.NotEqual(t, StableID("demo", fragTypeArc), StableID("demo", fragTypeItem))
}
