package iabrenderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestZone9UnityGainsAreIdentity(t *testing.T) {
	cfg := floorRingLayout71(t)
	zone9 := NewObjectZone9(cfg)
	require.True(t, zone9.IsInitialised())

	rapid.Check(t, func(t *rapid.T) {
		gains := make([]float32, cfg.PhysicalSpeakerCount())
		for i := range gains {
			gains[i] = float32(rapid.Float64Range(0, 1).Draw(t, "gain"))
		}
		original := append([]float32(nil), gains...)

		zg := ObjectZoneGain9{Present: true}
		for i := range zg.Gains {
			zg.Gains[i] = 1.0
		}

		require.NoError(t, zone9.ProcessZoneGains(zg, gains))
		assert.Equal(t, original, gains, "All-unity zone gains must not change channel gains")
	})
}

func TestZone9AbsentGainsAreNoOp(t *testing.T) {
	cfg := floorRingLayout71(t)
	zone9 := NewObjectZone9(cfg)

	gains := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	original := append([]float32(nil), gains...)

	require.NoError(t, zone9.ProcessZoneGains(ObjectZoneGain9{Present: false}, gains))
	assert.Equal(t, original, gains)
}

func TestZone9AttenuatesByRegion(t *testing.T) {
	cfg := floorRingLayout71(t)
	zone9 := NewObjectZone9(cfg)

	// Mute everything but the screen centre zone: only C survives.
	// Channel order: C L R LSS RSS LRS RRS LFE.
	gains := []float32{1, 1, 1, 1, 1, 1, 1, 1}

	zg := ObjectZoneGain9{Present: true}
	zg.Gains[zoneScreenCenter] = 1.0

	require.NoError(t, zone9.ProcessZoneGains(zg, gains))

	assert.Equal(t, float32(1), gains[0], "C is in the screen centre zone")
	for _, c := range []int{1, 2, 3, 4, 5, 6} {
		assert.Zero(t, gains[c], "channel %d muted", c)
	}
	assert.Equal(t, float32(1), gains[7], "LFE is outside zone control")
}

func TestZone9Classification(t *testing.T) {
	assert.Equal(t, zoneScreenCenter, classifySpeakerZone(positionFromDegrees(0, 0)))
	assert.Equal(t, zoneScreenLeft, classifySpeakerZone(positionFromDegrees(-30, 0)))
	assert.Equal(t, zoneScreenRight, classifySpeakerZone(positionFromDegrees(30, 0)))
	assert.Equal(t, zoneWallLeft, classifySpeakerZone(positionFromDegrees(-90, 0)))
	assert.Equal(t, zoneWallRight, classifySpeakerZone(positionFromDegrees(110, 0)))
	assert.Equal(t, zoneRearLeft, classifySpeakerZone(positionFromDegrees(-150, 0)))
	assert.Equal(t, zoneRearRight, classifySpeakerZone(positionFromDegrees(150, 0)))
	assert.Equal(t, zoneOverheadLeft, classifySpeakerZone(positionFromDegrees(-90, 55)))
	assert.Equal(t, zoneOverheadRight, classifySpeakerZone(positionFromDegrees(90, 55)))
}
