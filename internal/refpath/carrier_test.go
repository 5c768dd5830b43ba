package refpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenekit/scenesync/internal/scene"
)

func TestCarrierRoundTrip(t *testing.T) {
	childA := scene.NewRef()
	childB := scene.NewRef()
	outside := scene.NewRef()
	children := []scene.Ref{childA, childB}

	record, carriers := EncodeContainer(children, map[string]scene.Ref{
		"Primary":  childB,
		"Linked":   outside,
		"Detached": scene.RefNone,
	})

	assert.Equal(t, 2, record.ChildCount)
	assert.Equal(t, 1, record.RefTargetCount)
	require.Len(t, carriers, 1)
	assert.Equal(t, outside, carriers[0].Target)

	data, err := record.Marshal()
	require.NoError(t, err)
	decoded, err := UnmarshalContainerRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)

	targets := decoded.Resolve(children, carriers)
	assert.Equal(t, map[string]scene.Ref{
		"Primary": childB,
		"Linked":  outside,
	}, targets)
}

func TestCarrierSharedTarget(t *testing.T) {
	outside := scene.NewRef()
	record, carriers := EncodeContainer(nil, map[string]scene.Ref{
		"First":  outside,
		"Second": outside,
	})
	// One carrier serves both properties.
	assert.Equal(t, 1, record.RefTargetCount)
	require.Len(t, carriers, 1)
	assert.Equal(t, record.Refs["First"], record.Refs["Second"])
}

func TestCarrierDanglingIndexSkipped(t *testing.T) {
	children := []scene.Ref{scene.NewRef()}
	record := ContainerRecord{
		ChildCount:     1,
		RefTargetCount: 0,
		Refs: map[string]int{
			"OutOfRange": 9,
			"Nil":        0,
			"Valid":      1,
		},
	}
	targets := record.Resolve(children, nil)
	assert.Equal(t, map[string]scene.Ref{"Valid": children[0]}, targets)
}

func TestCarrierHoldingNilSkipped(t *testing.T) {
	record := ContainerRecord{
		ChildCount:     0,
		RefTargetCount: 1,
		Refs:           map[string]int{"Broken": 1},
	}
	targets := record.Resolve(nil, []Carrier{{Target: scene.RefNone}})
	assert.Nil(t, targets)
}

func TestEncodeContainerNoRefs(t *testing.T) {
	record, carriers := EncodeContainer([]scene.Ref{scene.NewRef()}, nil)
	assert.Equal(t, 1, record.ChildCount)
	assert.Zero(t, record.RefTargetCount)
	assert.Nil(t, record.Refs)
	assert.Nil(t, carriers)
}
