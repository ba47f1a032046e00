package iabrenderer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Shared test layouts.
//
// midRingLayout51 places the five mains at the shoebox transform images
// of the wall mid-height positions, so objects at z = 0.5 land exactly
// on speakers; the top centre is virtual and downmixes equally into the
// mains.  The LFE speaker is physical but outside the hull.
func midRingLayout51(t *testing.T) *RendererConfiguration {
	t.Helper()

	transform := NewIABTransform()

	at := func(x, y, z float32) Vector3 {
		pos, err := transform.TransformIABToCartesianVBAP(x, y, z)
		require.NoError(t, err)
		return pos
	}

	mainsDownmix := []DownmixValue{
		{Channel: 0, Coefficient: 0.2},
		{Channel: 1, Coefficient: 0.2},
		{Channel: 2, Coefficient: 0.2},
		{Channel: 3, Coefficient: 0.2},
		{Channel: 4, Coefficient: 0.2},
	}

	speakers := []RenderSpeaker{
		{Name: "C", Channel: 0, URI: bedChannelInfoMap[ChannelIDCenter].SpeakerURI, Position: at(0.5, 0.0, 0.5)},
		{Name: "L", Channel: 1, URI: bedChannelInfoMap[ChannelIDLeft].SpeakerURI, Position: at(0.0, 0.0, 0.5)},
		{Name: "R", Channel: 2, URI: bedChannelInfoMap[ChannelIDRight].SpeakerURI, Position: at(1.0, 0.0, 0.5)},
		{Name: "LS", Channel: 3, URI: bedChannelInfoMap[ChannelIDLeftSurround].SpeakerURI, Position: at(0.0, 1.0, 0.5)},
		{Name: "RS", Channel: 4, URI: bedChannelInfoMap[ChannelIDRightSurround].SpeakerURI, Position: at(1.0, 1.0, 0.5)},
		{Name: "LFE", Channel: 5, URI: speakerURILFE, Position: Vector3{0, 1, 0}},
		{Name: "TS", Channel: -1, Position: Vector3{0, 0, 1}, Downmix: mainsDownmix},
	}

	// Fan triangulation from the mid ring up to the virtual top centre.
	patches := [][3]int{
		{0, 2, 6}, // C  R  TS
		{2, 4, 6}, // R  RS TS
		{4, 3, 6}, // RS LS TS
		{3, 1, 6}, // LS L  TS
		{1, 0, 6}, // L  C  TS
	}

	cfg, err := NewRendererConfiguration(speakers, patches, "5.1")
	require.NoError(t, err)
	return cfg
}

// floorRingLayout71 is a 7.1-style hull with the mains on the horizontal
// plane at the canonical bed channel azimuths plus a virtual top centre.
// Every speaker direction is a pyra-mesa anchor, so inverse conversion
// is exact for all of them.
func floorRingLayout71(t *testing.T) *RendererConfiguration {
	t.Helper()

	pos := func(id ChannelID) Vector3 {
		return bedChannelInfoMap[id].SpeakerVBAPCoordinates
	}

	mainsDownmix := []DownmixValue{
		{Channel: 0, Coefficient: 1.0 / 7.0},
		{Channel: 1, Coefficient: 1.0 / 7.0},
		{Channel: 2, Coefficient: 1.0 / 7.0},
		{Channel: 3, Coefficient: 1.0 / 7.0},
		{Channel: 4, Coefficient: 1.0 / 7.0},
		{Channel: 5, Coefficient: 1.0 / 7.0},
		{Channel: 6, Coefficient: 1.0 / 7.0},
	}

	speakers := []RenderSpeaker{
		{Name: "C", Channel: 0, URI: bedChannelInfoMap[ChannelIDCenter].SpeakerURI, Position: pos(ChannelIDCenter)},
		{Name: "L", Channel: 1, URI: bedChannelInfoMap[ChannelIDLeft].SpeakerURI, Position: pos(ChannelIDLeft)},
		{Name: "R", Channel: 2, URI: bedChannelInfoMap[ChannelIDRight].SpeakerURI, Position: pos(ChannelIDRight)},
		{Name: "LSS", Channel: 3, URI: bedChannelInfoMap[ChannelIDLeftSideSurround].SpeakerURI, Position: pos(ChannelIDLeftSideSurround)},
		{Name: "RSS", Channel: 4, URI: bedChannelInfoMap[ChannelIDRightSideSurround].SpeakerURI, Position: pos(ChannelIDRightSideSurround)},
		{Name: "LRS", Channel: 5, URI: bedChannelInfoMap[ChannelIDLeftRearSurround].SpeakerURI, Position: pos(ChannelIDLeftRearSurround)},
		{Name: "RRS", Channel: 6, URI: bedChannelInfoMap[ChannelIDRightRearSurround].SpeakerURI, Position: pos(ChannelIDRightRearSurround)},
		{Name: "LFE", Channel: 7, URI: speakerURILFE, Position: Vector3{0, 1, 0}},
		{Name: "TS", Channel: -1, Position: Vector3{0, 0, 1}, Downmix: mainsDownmix},
	}

	patches := [][3]int{
		{0, 2, 8}, // C   R   TS
		{2, 4, 8}, // R   RSS TS
		{4, 6, 8}, // RSS RRS TS
		{6, 5, 8}, // RRS LRS TS
		{5, 3, 8}, // LRS LSS TS
		{3, 1, 8}, // LSS L   TS
		{1, 0, 8}, // L   C   TS
	}

	cfg, err := NewRendererConfiguration(speakers, patches, "7.1")
	require.NoError(t, err)
	return cfg
}

// layout50 is a 5.0 target without LFE, for remap tests.
func layout50(t *testing.T) *RendererConfiguration {
	t.Helper()

	pos := func(id ChannelID) Vector3 {
		return bedChannelInfoMap[id].SpeakerVBAPCoordinates
	}

	mainsDownmix := []DownmixValue{
		{Channel: 0, Coefficient: 0.2},
		{Channel: 1, Coefficient: 0.2},
		{Channel: 2, Coefficient: 0.2},
		{Channel: 3, Coefficient: 0.2},
		{Channel: 4, Coefficient: 0.2},
	}

	speakers := []RenderSpeaker{
		{Name: "L", Channel: 0, URI: bedChannelInfoMap[ChannelIDLeft].SpeakerURI, Position: pos(ChannelIDLeft)},
		{Name: "C", Channel: 1, URI: bedChannelInfoMap[ChannelIDCenter].SpeakerURI, Position: pos(ChannelIDCenter)},
		{Name: "R", Channel: 2, URI: bedChannelInfoMap[ChannelIDRight].SpeakerURI, Position: pos(ChannelIDRight)},
		{Name: "LS", Channel: 3, URI: bedChannelInfoMap[ChannelIDLeftSurround].SpeakerURI, Position: pos(ChannelIDLeftSurround)},
		{Name: "RS", Channel: 4, URI: bedChannelInfoMap[ChannelIDRightSurround].SpeakerURI, Position: pos(ChannelIDRightSurround)},
		{Name: "TS", Channel: -1, Position: Vector3{0, 0, 1}, Downmix: mainsDownmix},
	}

	patches := [][3]int{
		{1, 2, 5}, // C  R  TS
		{2, 4, 5}, // R  RS TS
		{4, 3, 5}, // RS LS TS
		{3, 0, 5}, // LS L  TS
		{0, 1, 5}, // L  C  TS
	}

	cfg, err := NewRendererConfiguration(speakers, patches, "5.1")
	require.NoError(t, err)
	return cfg
}

// impulseAsset is a one-sample full-scale impulse, frameSamples long.
func impulseAsset(id uint32, frameSamples int) *AudioDataPCM {
	samples := make([]int32, frameSamples)
	samples[0] = 2147483647
	return &AudioDataPCM{AudioDataID: id, SampleRate: SampleRate48000Hz, Samples: samples}
}

// constantAsset is a full-scale DC asset, frameSamples long.
func constantAsset(id uint32, frameSamples int) *AudioDataPCM {
	samples := make([]int32, frameSamples)
	for i := range samples {
		samples[i] = 2147483647
	}
	return &AudioDataPCM{AudioDataID: id, SampleRate: SampleRate48000Hz, Samples: samples}
}

// staticObject builds an object with identical pan info in the first
// sub-block and carry-forward in the rest.
func staticObject(metaID, audioID uint32, x, y, z, gain float32, numSubBlocks int) *ObjectDefinition {
	subBlocks := make([]*ObjectSubBlock, numSubBlocks)
	for i := range subBlocks {
		sb := &ObjectSubBlock{PanInfoExists: i == 0, Gain: gain}
		if i == 0 {
			sb.Position = CartesianPosInUnitCube{X: x, Y: y, Z: z}
		}
		subBlocks[i] = sb
	}
	return &ObjectDefinition{MetaID: metaID, AudioDataID: audioID, PanSubBlocks: subBlocks}
}

// outputBuffers allocates one frame of zeroed output per channel.
func outputBuffers(channels, frameSamples int) [][]float32 {
	out := make([][]float32, channels)
	for i := range out {
		out[i] = make([]float32, frameSamples)
	}
	return out
}
