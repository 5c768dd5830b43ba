package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenekit/scenesync/internal/scene"
)

func TestDiffProperties(t *testing.T) {
	old := scene.NewInstance("Part", "A")
	old.SetProperty("Size", scene.Float(2))
	old.SetProperty("Anchored", scene.Bool(true))
	old.SetProperty("Color", scene.String("red"))

	new := scene.NewInstance("Part", "A")
	new.SetProperty("Size", scene.Float(3))
	new.SetProperty("Anchored", scene.Bool(true))
	new.SetProperty("Mass", scene.Float(1))

	diffs := DiffProperties(old, new)
	require.Len(t, diffs, 3)
	// Sorted by name.
	assert.Equal(t, "Color", diffs[0].Name)
	assert.Nil(t, diffs[0].New)
	assert.Equal(t, "Mass", diffs[1].Name)
	assert.Nil(t, diffs[1].Old)
	assert.Equal(t, "Size", diffs[2].Name)
	assert.Equal(t, scene.Float(3), diffs[2].New)
}

func TestDiffTags(t *testing.T) {
	old := scene.NewInstance("Part", "A")
	old.AddTag("solid").AddTag("old")
	new := scene.NewInstance("Part", "A")
	new.AddTag("solid").AddTag("fresh")

	tags := DiffTags(old, new)
	assert.Equal(t, []string{"fresh"}, tags.Added)
	assert.Equal(t, []string{"old"}, tags.Removed)

	assert.True(t, DiffTags(old, old).Empty())
}

func TestOwnStateCost(t *testing.T) {
	old := scene.NewInstance("Part", "A")
	old.SetProperty("Size", scene.Float(2))
	old.AddTag("solid")
	old.SetAttribute("Team", scene.String("blue"))

	same := scene.NewInstance("Part", "A")
	same.SetProperty("Size", scene.Float(2))
	same.AddTag("solid")
	same.SetAttribute("Team", scene.String("blue"))
	assert.Zero(t, OwnStateCost(old, same))

	changed := scene.NewInstance("Part", "A")
	changed.SetProperty("Size", scene.Float(9)) // changed property
	changed.AddTag("fresh")                     // tag symmetric difference of 2
	// attribute removed
	assert.Equal(t, 4, OwnStateCost(old, changed))
}
