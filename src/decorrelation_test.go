package iabrenderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecorrelationEnergyPreservation(t *testing.T) {
	cfg := floorRingLayout71(t)

	d := NewIABDecorrelation()
	require.NoError(t, d.Setup(cfg))

	// An all-pass chain preserves signal energy over a long enough
	// window.
	const n = 48000
	channels := make([][]float32, cfg.PhysicalSpeakerCount())
	var inputEnergy float64
	for c := range channels {
		channels[c] = make([]float32, n)
		channels[c][0] = 1.0
		inputEnergy += 1.0
	}

	require.NoError(t, d.DecorrelateDecorOutputs(channels, len(channels), n))

	var outputEnergy float64
	for c := range channels {
		for i := 0; i < n; i++ {
			outputEnergy += float64(channels[c][i]) * float64(channels[c][i])
		}
	}

	assert.InDelta(t, inputEnergy, outputEnergy, inputEnergy*0.05,
		"All-pass decorrelation must be (approximately) energy preserving")
}

func TestDecorrelationChannelsDiffer(t *testing.T) {
	cfg := floorRingLayout71(t)

	d := NewIABDecorrelation()
	require.NoError(t, d.Setup(cfg))

	const n = 4096
	channels := make([][]float32, cfg.PhysicalSpeakerCount())
	for c := range channels {
		channels[c] = make([]float32, n)
		channels[c][0] = 1.0
	}

	require.NoError(t, d.DecorrelateDecorOutputs(channels, len(channels), n))

	// Identical inputs must come out decorrelated: the impulse responses
	// of neighbouring channels differ.
	differs := false
	for i := 0; i < n; i++ {
		if channels[0][i] != channels[1][i] {
			differs = true
			break
		}
	}
	assert.True(t, differs)
}

func TestDecorrelationReset(t *testing.T) {
	cfg := floorRingLayout71(t)

	d := NewIABDecorrelation()
	require.NoError(t, d.Setup(cfg))

	const n = 1024
	channels := make([][]float32, cfg.PhysicalSpeakerCount())
	for c := range channels {
		channels[c] = make([]float32, n)
		channels[c][0] = 1.0
	}
	require.NoError(t, d.DecorrelateDecorOutputs(channels, len(channels), n))

	// After a reset, silence in produces silence out: no residue.
	d.Reset()

	for c := range channels {
		for i := range channels[c] {
			channels[c][i] = 0.0
		}
	}
	require.NoError(t, d.DecorrelateDecorOutputs(channels, len(channels), n))

	for c := range channels {
		for i := range channels[c] {
			require.Zero(t, channels[c][i], "channel %d sample %d", c, i)
		}
	}
}

func TestDecorrelationChannelCountMismatch(t *testing.T) {
	cfg := floorRingLayout71(t)

	d := NewIABDecorrelation()
	require.NoError(t, d.Setup(cfg))

	channels := make([][]float32, 2)
	assert.ErrorIs(t, d.DecorrelateDecorOutputs(channels, 2, 16), ErrBadArguments)
}
