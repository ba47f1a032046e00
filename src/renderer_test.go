package iabrenderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFrameSamples = 2000 // 24fps at 48kHz

func newTestRenderer(t *testing.T, cfg *RendererConfiguration) *IABRenderer {
	t.Helper()
	renderer, err := NewIABRenderer(cfg)
	require.NoError(t, err)
	return renderer
}

func renderOneFrame(t *testing.T, renderer *IABRenderer, elements ...FrameSubElement) [][]float32 {
	t.Helper()

	frame := &Frame{
		FrameRate:   FrameRate24FPS,
		SampleRate:  SampleRate48000Hz,
		SubElements: elements,
	}

	out := outputBuffers(renderer.OutputChannelCount(), testFrameSamples)
	rendered, err := renderer.RenderFrame(frame, out)
	require.NoError(t, err)
	require.Equal(t, testFrameSamples, rendered)
	return out
}

func TestRenderFrameRejectsUnsupportedRates(t *testing.T) {
	renderer := newTestRenderer(t, floorRingLayout71(t))
	out := outputBuffers(renderer.OutputChannelCount(), testFrameSamples)

	_, err := renderer.RenderFrame(&Frame{FrameRate: FrameRate24FPS, SampleRate: 44100}, out)
	assert.ErrorIs(t, err, ErrUnsupportedSampleRate)

	_, err = renderer.RenderFrame(&Frame{FrameRate: FrameRate50FPS, SampleRate: SampleRate48000Hz}, out)
	assert.ErrorIs(t, err, ErrUnsupportedFrameRate)

	_, err = renderer.RenderFrame(&Frame{FrameRate: FrameRate23_976FPS, SampleRate: SampleRate96000Hz}, out)
	assert.ErrorIs(t, err, ErrUnsupportedFrameRate)
}

func TestRenderFrameChannelCountMismatch(t *testing.T) {
	renderer := newTestRenderer(t, floorRingLayout71(t))

	out := outputBuffers(renderer.OutputChannelCount()-1, testFrameSamples)
	_, err := renderer.RenderFrame(&Frame{FrameRate: FrameRate24FPS, SampleRate: SampleRate48000Hz}, out)
	assert.ErrorIs(t, err, ErrBadArguments)
}

// A frame with no sub-elements is a successful silent frame.
func TestRenderEmptyFrameIsSilence(t *testing.T) {
	renderer := newTestRenderer(t, floorRingLayout71(t))
	out := renderOneFrame(t, renderer)

	for c := range out {
		for n := range out[c] {
			require.Zero(t, out[c][n], "channel %d sample %d", c, n)
		}
	}
}

// Invariant: an all-zero audio asset produces all-zero output.
func TestSilenceIdentity(t *testing.T) {
	renderer := newTestRenderer(t, floorRingLayout71(t))

	silent := &AudioDataPCM{AudioDataID: 1, SampleRate: SampleRate48000Hz, Samples: make([]int32, testFrameSamples)}
	object := staticObject(1, 1, 0.3, 0.7, 0.2, 1.0, 8)

	out := renderOneFrame(t, renderer, object, silent)

	for c := range out {
		for n := range out[c] {
			require.Zero(t, out[c][n], "channel %d sample %d", c, n)
		}
	}
}

// Scenario S1: an object on the front wall centre at mid height lands
// exactly on the centre speaker of the mid-ring layout.
func TestScenarioOnDomeFrontCenter(t *testing.T) {
	cfg := midRingLayout51(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	object := staticObject(1, 1, 0.5, 0.0, 0.5, 1.0, 8)
	out := renderOneFrame(t, renderer, object, impulseAsset(1, testFrameSamples))

	// Channel order: C L R LS RS LFE.
	assert.InDelta(t, 1.0, float64(out[0][0]), 1e-4, "C takes the impulse")
	for c := 1; c < len(out); c++ {
		assert.InDelta(t, 0.0, float64(out[c][0]), 1e-4, "channel %d silent", c)
	}
	for n := 1; n < testFrameSamples; n++ {
		assert.Zero(t, out[0][n], "no energy outside the impulse")
	}
}

// Scenario S2: an object at the listener position decomposes into an
// equal left/right pair at +/-90 with the projected source faded out,
// and the rendered energy is unit.
func TestScenarioInteriorTripleBalance(t *testing.T) {
	cfg := floorRingLayout71(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	object := staticObject(1, 1, 0.5, 0.5, 0.0, 1.0, 8)
	out := renderOneFrame(t, renderer, object, impulseAsset(1, testFrameSamples))

	// The pair lands on LSS and RSS (channels 3 and 4) as vertex hits.
	var sumSquares float64
	for c := range out {
		sumSquares += float64(out[c][0]) * float64(out[c][0])
	}
	assert.InDelta(t, 1.0, sumSquares, 1e-4, "Rendered energy is unit after normalization")

	assert.InDelta(t, float64(out[3][0]), float64(out[4][0]), 1e-5, "Left/right split is symmetric")
	assert.Greater(t, float64(out[3][0]), 0.0)

	for _, c := range []int{0, 1, 2, 5, 6, 7} {
		assert.InDelta(t, 0.0, float64(out[c][0]), 1e-4, "channel %d silent", c)
	}
}

// Scenario S3: a nearly colocated object with snap tolerance collapses
// onto the speaker; the VBAP path is bypassed.
func TestScenarioSnapFires(t *testing.T) {
	cfg := midRingLayout51(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	object := staticObject(1, 1, 0.499, 0.0, 0.5, 1.0, 8)
	for _, sb := range object.PanSubBlocks {
		if sb.PanInfoExists {
			sb.Snap = ObjectSnap{Present: true, Tolerance: 41} // ~0.01 after dequantization
		}
	}

	out := renderOneFrame(t, renderer, object, impulseAsset(1, testFrameSamples))

	assert.InDelta(t, 1.0, float64(out[0][0]), 1e-4, "One-hot on the snapped C speaker")
	for c := 1; c < len(out); c++ {
		assert.InDelta(t, 0.0, float64(out[c][0]), 1e-6, "channel %d silent", c)
	}

	assert.Zero(t, renderer.vbapRenderer.VBAPCacheSize(), "Snap must not touch the VBAP path")
}

// Snap is disabled as soon as the object carries any spread.
func TestSnapDisabledBySpread(t *testing.T) {
	cfg := midRingLayout51(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	object := staticObject(1, 1, 0.499, 0.0, 0.5, 1.0, 8)
	for _, sb := range object.PanSubBlocks {
		if sb.PanInfoExists {
			sb.Snap = ObjectSnap{Present: true, Tolerance: 41}
			sb.Spread = ObjectSpread{Mode: SpreadModeHighResolution1D, SpreadXYZ: 0.5}
		}
	}

	renderOneFrame(t, renderer, object, impulseAsset(1, testFrameSamples))

	assert.NotZero(t, renderer.vbapRenderer.VBAPCacheSize(), "Spread forces the VBAP extent path")
}

// Scenario S4: a full-range gain transition is slope-capped: the output
// climbs by at most 1/480 per sample and reaches the target around the
// 480 sample mark, far before the 2000 sample frame ends.
func TestScenarioSmoothingRampCap(t *testing.T) {
	cfg := midRingLayout51(t)
	cfg.Smoothing = true
	renderer := newTestRenderer(t, cfg)

	// Frame 0 establishes gain history at 0 for the object.
	silentGain := staticObject(1, 1, 0.5, 0.0, 0.5, 0.0, 8)
	renderOneFrame(t, renderer, silentGain, constantAsset(1, testFrameSamples))

	// Frame 1 jumps the object gain to 1.
	fullGain := staticObject(1, 1, 0.5, 0.0, 0.5, 1.0, 8)
	out := renderOneFrame(t, renderer, fullGain, constantAsset(1, testFrameSamples))

	c := out[0] // the object sits on C with unit input

	reachedAt := -1
	for n := 0; n < testFrameSamples; n++ {
		if reachedAt < 0 && c[n] >= 1.0-1e-4 {
			reachedAt = n
		}
		if n > 0 {
			diff := float64(c[n] - c[n-1])
			assert.GreaterOrEqual(t, diff, -1e-5, "Ramp is monotone at %d", n)
			assert.LessOrEqual(t, diff, 1.0/480.0+1e-5, "Slope cap holds at %d", n)
		}
	}

	require.GreaterOrEqual(t, reachedAt, 0, "Target reached inside the frame")
	assert.InDelta(t, 480, reachedAt, 25, "Ramp takes the capped length, not the whole frame")

	for n := reachedAt; n < testFrameSamples; n++ {
		assert.InDelta(t, 1.0, float64(c[n]), 1e-4, "Holds the target after the ramp")
	}
}

// Bed channels route by URI to their physical speakers.
func TestBedDirectRouting(t *testing.T) {
	cfg := floorRingLayout71(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	bed := &BedDefinition{
		MetaID: 10,
		Channels: []*BedChannel{
			{ChannelID: ChannelIDCenter, AudioDataID: 1, Gain: 1.0},
			{ChannelID: ChannelIDLeft, AudioDataID: 2, Gain: 0.5},
		},
	}

	out := renderOneFrame(t, renderer, bed, impulseAsset(1, testFrameSamples), impulseAsset(2, testFrameSamples))

	assert.InDelta(t, 1.0, float64(out[0][0]), 1e-4, "C direct hit")
	assert.InDelta(t, 0.5, float64(out[1][0]), 1e-4, "L scaled by channel gain")
	for _, c := range []int{2, 3, 4, 5, 6, 7} {
		assert.Zero(t, out[c][0], "channel %d silent", c)
	}
}

// A bed channel with no speaker in the layout renders as a point-source
// object at its canonical position.
func TestBedChannelRendersAsObject(t *testing.T) {
	cfg := floorRingLayout71(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	// The layout has no height channels; CH renders as an object at
	// (0, 36deg) between C and the virtual top.
	bed := &BedDefinition{
		MetaID: 10,
		Channels: []*BedChannel{
			{ChannelID: ChannelIDCenterHeight, AudioDataID: 1, Gain: 1.0},
		},
	}

	out := renderOneFrame(t, renderer, bed, impulseAsset(1, testFrameSamples))

	var total float64
	for c := range out {
		assert.GreaterOrEqual(t, float64(out[c][0]), -1e-6)
		total += float64(out[c][0])
	}
	assert.Greater(t, total, 0.1, "Height channel content must land somewhere")
	assert.Greater(t, float64(out[0][0]), 0.0, "C picks up the front height content")
	assert.Empty(t, renderer.Warnings())
}

// A bed LFE channel without an LFE speaker is discarded with a warning.
func TestBedLFEWarning(t *testing.T) {
	cfg := layout50(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	bed := &BedDefinition{
		MetaID: 10,
		Channels: []*BedChannel{
			{ChannelID: ChannelIDLFE, AudioDataID: 1, Gain: 1.0},
		},
	}

	out := renderOneFrame(t, renderer, bed, impulseAsset(1, testFrameSamples))

	for c := range out {
		for n := range out[c] {
			require.Zero(t, out[c][n], "LFE content is discarded")
		}
	}

	assert.Equal(t, []RenderWarning{WarningNoLFEInConfigForBedLFE}, renderer.Warnings())
}

// Scenario S5: remap of a 5.1 source bed to a 5.0 target: non-LFE
// channels pass through the identity matrix weighted by the per-channel
// gains; the LFE destination is discarded with a warning.
func TestScenarioBedRemapToFiveZero(t *testing.T) {
	cfg := layout50(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	sourceIDs := []ChannelID{
		ChannelIDLeft, ChannelIDCenter, ChannelIDRight,
		ChannelIDLeftSurround, ChannelIDRightSurround, ChannelIDLFE,
	}

	channels := make([]*BedChannel, len(sourceIDs))
	elements := []FrameSubElement{}
	for i, id := range sourceIDs {
		channels[i] = &BedChannel{ChannelID: id, AudioDataID: uint32(i + 1), Gain: 0.5}
		elements = append(elements, impulseAsset(uint32(i+1), testFrameSamples))
	}

	// Identity remap onto the same six destinations.
	coeffs := make([]*RemapCoeff, len(sourceIDs))
	for i, id := range sourceIDs {
		c := &RemapCoeff{DestinationChannelID: id, Coeffs: make([]float32, len(sourceIDs))}
		c.Coeffs[i] = 1.0
		coeffs[i] = c
	}

	subBlocks := make([]*RemapSubBlock, 8)
	for i := range subBlocks {
		subBlocks[i] = &RemapSubBlock{RemapInfoExists: i == 0}
		if i == 0 {
			subBlocks[i].Coeffs = coeffs
		}
	}

	remap := &BedRemap{
		MetaID:              11,
		UseCase:             UseCase5_1,
		SourceChannels:      uint16(len(sourceIDs)),
		DestinationChannels: uint16(len(sourceIDs)),
		SubBlocks:           subBlocks,
	}

	bed := &BedDefinition{
		MetaID:      10,
		Channels:    channels,
		SubElements: []FrameSubElement{remap},
	}

	out := renderOneFrame(t, renderer, append([]FrameSubElement{bed}, elements...)...)

	// Output order: L C R LS RS.
	for c := 0; c < 5; c++ {
		assert.InDelta(t, 0.5, float64(out[c][0]), 1e-4, "channel %d passes through at its gain", c)
	}

	assert.Equal(t, []RenderWarning{WarningNoLFEInConfigForRemapLFE}, renderer.Warnings())
}

// Remap coefficients carry forward across sub-blocks until updated.
func TestBedRemapCarryForward(t *testing.T) {
	cfg := layout50(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	channels := []*BedChannel{{ChannelID: ChannelIDCenter, AudioDataID: 1, Gain: 1.0}}

	// Block 0 routes C->C at 1.0; block 4 swaps to C->L.
	toC := []*RemapCoeff{{DestinationChannelID: ChannelIDCenter, Coeffs: []float32{1}}}
	toL := []*RemapCoeff{{DestinationChannelID: ChannelIDLeft, Coeffs: []float32{1}}}

	subBlocks := make([]*RemapSubBlock, 8)
	for i := range subBlocks {
		subBlocks[i] = &RemapSubBlock{}
	}
	subBlocks[0].RemapInfoExists = true
	subBlocks[0].Coeffs = toC
	subBlocks[4].RemapInfoExists = true
	subBlocks[4].Coeffs = toL

	remap := &BedRemap{
		MetaID:              11,
		UseCase:             UseCaseAlways,
		SourceChannels:      1,
		DestinationChannels: 1,
		SubBlocks:           subBlocks,
	}

	bed := &BedDefinition{MetaID: 10, Channels: channels, SubElements: []FrameSubElement{remap}}

	out := renderOneFrame(t, renderer, bed, constantAsset(1, testFrameSamples))

	blockLen := testFrameSamples / 8

	// First half on C (channel 1), second half on L (channel 0).
	assert.InDelta(t, 1.0, float64(out[1][0]), 1e-4)
	assert.InDelta(t, 1.0, float64(out[1][4*blockLen-1]), 1e-4)
	assert.Zero(t, out[0][0])

	assert.InDelta(t, 1.0, float64(out[0][4*blockLen]), 1e-4)
	assert.Zero(t, out[1][4*blockLen])
}

// Conditional elements activate on use case match.
func TestActivationGating(t *testing.T) {
	cfg := floorRingLayout71(t) // target use case 7.1
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	mismatched := staticObject(1, 1, 0.5, 0.0, 0.0, 1.0, 8)
	mismatched.Conditional = true
	mismatched.UseCase = UseCase5_1

	out := renderOneFrame(t, renderer, mismatched, impulseAsset(1, testFrameSamples))
	assert.Zero(t, out[0][0], "Mismatched conditional object is skipped")

	always := staticObject(2, 1, 0.5, 0.0, 0.0, 1.0, 8)
	always.Conditional = true
	always.UseCase = UseCaseAlways

	out = renderOneFrame(t, renderer, always, impulseAsset(1, testFrameSamples))
	assert.InDelta(t, 1.0, float64(out[0][0]), 1e-4, "Always-use-case object renders")

	matched := staticObject(3, 1, 0.5, 0.0, 0.0, 1.0, 8)
	matched.Conditional = true
	matched.UseCase = UseCase7_1

	out = renderOneFrame(t, renderer, matched, impulseAsset(1, testFrameSamples))
	assert.InDelta(t, 1.0, float64(out[0][0]), 1e-4, "Matching conditional object renders")
}

// An activated child object replaces its parent.
func TestChildObjectReplacesParent(t *testing.T) {
	cfg := floorRingLayout71(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	// Parent points at C, the activated child at R.
	child := staticObject(2, 2, 1.0, 0.0, 0.0, 1.0, 8)
	child.Conditional = true
	child.UseCase = UseCase7_1

	parent := staticObject(1, 1, 0.5, 0.0, 0.0, 1.0, 8)
	parent.SubElements = []FrameSubElement{child}

	out := renderOneFrame(t, renderer, parent,
		impulseAsset(1, testFrameSamples), impulseAsset(2, testFrameSamples))

	assert.Zero(t, out[0][0], "Parent C content is replaced")
	assert.Greater(t, float64(out[2][0]), 0.5, "Child renders at R instead")
}

// An object with audio data ID 0 has no audio this frame and renders
// nothing.
func TestObjectWithoutAudioSkipped(t *testing.T) {
	renderer := newTestRenderer(t, floorRingLayout71(t))

	object := staticObject(1, 0, 0.5, 0.0, 0.0, 1.0, 8)
	out := renderOneFrame(t, renderer, object)

	for c := range out {
		assert.Zero(t, out[c][0])
	}
}

func TestObjectSubBlockCountMismatch(t *testing.T) {
	renderer := newTestRenderer(t, floorRingLayout71(t))

	object := staticObject(1, 1, 0.5, 0.0, 0.0, 1.0, 4) // 8 expected at 24fps
	frame := &Frame{
		FrameRate:   FrameRate24FPS,
		SampleRate:  SampleRate48000Hz,
		SubElements: []FrameSubElement{object, impulseAsset(1, testFrameSamples)},
	}

	out := outputBuffers(renderer.OutputChannelCount(), testFrameSamples)
	_, err := renderer.RenderFrame(frame, out)
	assert.ErrorIs(t, err, ErrObjectDefinition)
}

func TestPCMSampleCountMismatch(t *testing.T) {
	renderer := newTestRenderer(t, floorRingLayout71(t))

	object := staticObject(1, 1, 0.5, 0.0, 0.0, 1.0, 8)
	short := &AudioDataPCM{AudioDataID: 1, SampleRate: SampleRate48000Hz, Samples: make([]int32, 100)}

	frame := &Frame{
		FrameRate:   FrameRate24FPS,
		SampleRate:  SampleRate48000Hz,
		SubElements: []FrameSubElement{object, short},
	}

	out := outputBuffers(renderer.OutputChannelCount(), testFrameSamples)
	_, err := renderer.RenderFrame(frame, out)
	assert.ErrorIs(t, err, ErrSampleCountMismatch)
}

// Zone 19 is reserved: its call path reports not-implemented instead of
// silently ignoring the element.
func TestZone19NotImplemented(t *testing.T) {
	renderer := newTestRenderer(t, floorRingLayout71(t))

	frame := &Frame{
		FrameRate:   FrameRate24FPS,
		SampleRate:  SampleRate48000Hz,
		SubElements: []FrameSubElement{&ObjectZoneDefinition19{MetaID: 1}},
	}

	out := outputBuffers(renderer.OutputChannelCount(), testFrameSamples)
	_, err := renderer.RenderFrame(frame, out)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

// Invariant: the returned sample count matches the rate combination.
func TestFrameSampleCountPerRate(t *testing.T) {
	renderer := newTestRenderer(t, floorRingLayout71(t))

	cases := []struct {
		frameRate  FrameRate
		sampleRate SampleRate
		expected   int
	}{
		{FrameRate24FPS, SampleRate48000Hz, 2000},
		{FrameRate25FPS, SampleRate48000Hz, 1920},
		{FrameRate30FPS, SampleRate48000Hz, 1600},
		{FrameRate48FPS, SampleRate48000Hz, 1000},
		{FrameRate60FPS, SampleRate48000Hz, 800},
		{FrameRate120FPS, SampleRate48000Hz, 400},
		{FrameRate23_976FPS, SampleRate48000Hz, 6403},
		{FrameRate24FPS, SampleRate96000Hz, 2000}, // decimated to 48k
		{FrameRate48FPS, SampleRate96000Hz, 1000},
	}

	for _, c := range cases {
		out := outputBuffers(renderer.OutputChannelCount(), kIABMaxFrameSampleCount)
		rendered, err := renderer.RenderFrame(&Frame{FrameRate: c.frameRate, SampleRate: c.sampleRate}, out)
		require.NoError(t, err)
		assert.Equal(t, c.expected, rendered, "%v/%v", c.frameRate, c.sampleRate)
	}
}

// Scenario S6 and the hysteresis invariant: a decorrelated object keeps
// the decorrelator running for the tail frames, after which it resets.
func TestScenarioDecorrelationTail(t *testing.T) {
	cfg := floorRingLayout71(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	decorObject := staticObject(1, 1, 0.5, 0.0, 0.0, 1.0, 8)
	for _, sb := range decorObject.PanSubBlocks {
		sb.DecorCoef = DecorCoefPrefixMaxDecor
	}

	// F0: decorrelated impulse.
	out0 := renderOneFrame(t, renderer, decorObject, impulseAsset(1, testFrameSamples))

	energy := func(out [][]float32) float64 {
		var e float64
		for c := range out {
			for n := range out[c] {
				e += float64(out[c][n]) * float64(out[c][n])
			}
		}
		return e
	}

	assert.Greater(t, energy(out0), 0.0, "F0 carries the decorrelated impulse")
	assert.False(t, renderer.decorrelationInReset)

	// F1: no decor objects; the filter tail still rings out.
	plainSilent := staticObject(2, 1, 0.5, 0.0, 0.0, 1.0, 8)
	silent := &AudioDataPCM{AudioDataID: 1, SampleRate: SampleRate48000Hz, Samples: make([]int32, testFrameSamples)}

	out1 := renderOneFrame(t, renderer, plainSilent, silent)
	assert.Greater(t, energy(out1), 0.0, "F1 output carries decorrelator tail energy")
	assert.False(t, renderer.decorrelationInReset)

	// F2: tail exhausted; the decorrelator resets.
	out2 := renderOneFrame(t, renderer, plainSilent, silent)
	assert.Zero(t, energy(out2), "F2 is clean")
	assert.True(t, renderer.decorrelationInReset, "Decorrelator reset after the tail")

	// F3: stays clean and reset.
	out3 := renderOneFrame(t, renderer, plainSilent, silent)
	assert.Zero(t, energy(out3))
	assert.True(t, renderer.decorrelationInReset)
}

// Disabling decorrelation routes flagged objects through the normal
// path untouched.
func TestDecorrelationDisabled(t *testing.T) {
	cfg := floorRingLayout71(t)
	cfg.Smoothing = false
	cfg.Decorrelation = false
	renderer := newTestRenderer(t, cfg)

	decorObject := staticObject(1, 1, 0.5, 0.0, 0.0, 1.0, 8)
	decorObject.PanSubBlocks[0].DecorCoef = DecorCoefPrefixMaxDecor

	out := renderOneFrame(t, renderer, decorObject, impulseAsset(1, testFrameSamples))

	assert.InDelta(t, 1.0, float64(out[0][0]), 1e-4, "Impulse passes through undecorralated")
	assert.True(t, renderer.decorrelationInReset)
}

// The 23.976fps schedule renders the fixed sub-block table.
func TestFractionalFrameRateRendering(t *testing.T) {
	cfg := floorRingLayout71(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	object := staticObject(1, 1, 0.5, 0.0, 0.0, 1.0, 8)
	asset := constantAsset(1, kIABMaxFrameSampleCount)

	frame := &Frame{
		FrameRate:   FrameRate23_976FPS,
		SampleRate:  SampleRate48000Hz,
		SubElements: []FrameSubElement{object, asset},
	}

	out := outputBuffers(renderer.OutputChannelCount(), kIABMaxFrameSampleCount)
	rendered, err := renderer.RenderFrame(frame, out)
	require.NoError(t, err)
	assert.Equal(t, kIABMaxFrameSampleCount, rendered)

	// Every sample of the frame, including the short final sub-blocks,
	// carries the content.
	assert.InDelta(t, 1.0, float64(out[0][kIABMaxFrameSampleCount-1]), 1e-4)
}

// DLC assets decode through the collaborator interface, forced down to
// 48k for 96k content.
type fakeDLCDecoder struct {
	value       int32
	decodedRate SampleRate
}

func (d *fakeDLCDecoder) DecodeDLCToMonoPCM(dest []int32, count uint32, targetSampleRate SampleRate) error {
	d.decodedRate = targetSampleRate
	for i := uint32(0); i < count; i++ {
		dest[i] = d.value
	}
	return nil
}

func TestDLCDecodeForcedTo48k(t *testing.T) {
	cfg := floorRingLayout71(t)
	cfg.Smoothing = false
	renderer := newTestRenderer(t, cfg)

	decoder := &fakeDLCDecoder{value: 2147483647}
	object := staticObject(1, 1, 0.5, 0.0, 0.0, 1.0, 8)
	dlc := &AudioDataDLC{AudioDataID: 1, SampleRate: SampleRate96000Hz, Decoder: decoder}

	frame := &Frame{
		FrameRate:   FrameRate24FPS,
		SampleRate:  SampleRate96000Hz,
		SubElements: []FrameSubElement{object, dlc},
	}

	out := outputBuffers(renderer.OutputChannelCount(), testFrameSamples)
	rendered, err := renderer.RenderFrame(frame, out)
	require.NoError(t, err)

	assert.Equal(t, testFrameSamples, rendered, "96k frames render at the decimated length")
	assert.Equal(t, SampleRate48000Hz, decoder.decodedRate, "DLC decode is forced down to 48k")
	assert.InDelta(t, 1.0, float64(out[0][0]), 1e-4)
}
