package iabrenderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubBlockCounts(t *testing.T) {
	assert.Equal(t, uint32(8), GetIABNumSubBlocks(FrameRate23_976FPS))
	assert.Equal(t, uint32(8), GetIABNumSubBlocks(FrameRate24FPS))
	assert.Equal(t, uint32(8), GetIABNumSubBlocks(FrameRate25FPS))
	assert.Equal(t, uint32(8), GetIABNumSubBlocks(FrameRate30FPS))
	assert.Equal(t, uint32(4), GetIABNumSubBlocks(FrameRate48FPS))
	assert.Equal(t, uint32(4), GetIABNumSubBlocks(FrameRate50FPS))
	assert.Equal(t, uint32(4), GetIABNumSubBlocks(FrameRate60FPS))
	assert.Equal(t, uint32(2), GetIABNumSubBlocks(FrameRate96FPS))
	assert.Equal(t, uint32(2), GetIABNumSubBlocks(FrameRate120FPS))
}

func TestFrameSampleCounts(t *testing.T) {
	assert.Equal(t, uint32(2000), GetIABNumFrameSamples(FrameRate24FPS, SampleRate48000Hz))
	assert.Equal(t, uint32(1920), GetIABNumFrameSamples(FrameRate25FPS, SampleRate48000Hz))
	assert.Equal(t, uint32(1600), GetIABNumFrameSamples(FrameRate30FPS, SampleRate48000Hz))
	assert.Equal(t, uint32(1000), GetIABNumFrameSamples(FrameRate48FPS, SampleRate48000Hz))
	assert.Equal(t, uint32(800), GetIABNumFrameSamples(FrameRate60FPS, SampleRate48000Hz))
	assert.Equal(t, uint32(400), GetIABNumFrameSamples(FrameRate120FPS, SampleRate48000Hz))
	assert.Equal(t, uint32(4000), GetIABNumFrameSamples(FrameRate24FPS, SampleRate96000Hz))
}

func TestFractionalScheduleSumsToFrame(t *testing.T) {
	var sum uint32
	for _, c := range kSubblockSize23_97FPS48kHz {
		sum += c
	}
	assert.Equal(t, uint32(kIABMaxFrameSampleCount), sum,
		"The 23.976fps sub-block table must sum to the exact frame sample count")
	assert.Equal(t, uint32(kIABMaxFrameSampleCount), GetIABNumFrameSamples(FrameRate23_976FPS, SampleRate48000Hz))
}

func TestIsSupportedMatrix(t *testing.T) {
	// 48kHz combinations.
	assert.True(t, IsSupported(FrameRate23_976FPS, SampleRate48000Hz))
	assert.True(t, IsSupported(FrameRate24FPS, SampleRate48000Hz))
	assert.True(t, IsSupported(FrameRate25FPS, SampleRate48000Hz))
	assert.True(t, IsSupported(FrameRate30FPS, SampleRate48000Hz))
	assert.True(t, IsSupported(FrameRate48FPS, SampleRate48000Hz))
	assert.True(t, IsSupported(FrameRate60FPS, SampleRate48000Hz))
	assert.True(t, IsSupported(FrameRate120FPS, SampleRate48000Hz))
	assert.False(t, IsSupported(FrameRate50FPS, SampleRate48000Hz))
	assert.False(t, IsSupported(FrameRate96FPS, SampleRate48000Hz))
	assert.False(t, IsSupported(FrameRate100FPS, SampleRate48000Hz))

	// 96kHz combinations.
	assert.True(t, IsSupported(FrameRate24FPS, SampleRate96000Hz))
	assert.True(t, IsSupported(FrameRate48FPS, SampleRate96000Hz))
	assert.False(t, IsSupported(FrameRate23_976FPS, SampleRate96000Hz))
	assert.False(t, IsSupported(FrameRate60FPS, SampleRate96000Hz))
	assert.False(t, IsSupported(FrameRate120FPS, SampleRate96000Hz))
}
