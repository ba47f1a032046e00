package iabrenderer

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Frame renderer: owns one pass over a frame's
 *		sub-elements.
 *
 *		Objects are transformed, decomposed into extended
 *		sources, VBAP-rendered per sub-block, zone-attenuated,
 *		smoothed and accumulated.  Beds route directly to
 *		matching speakers, downmix through virtual ones or
 *		render as synthetic point-source objects.  Remaps
 *		compose source channels into destination channels per
 *		sub-block.  Decorrelation-flagged objects accumulate on
 *		a separate bus which is filtered and summed in with a
 *		two-frame hysteretic tail.
 *
 *----------------------------------------------------------------*/

// kIABDecorrTailingFrames is the number of frames the decorrelator runs,
// counting the frame that last carried a decorrelated object; it resets
// on the frame after that.
const kIABDecorrTailingFrames = 2

// RendererOptions carries construction options beyond the configuration.
type RendererOptions struct {
	// FrameGainsCache keeps gain histories and the extended source cache
	// across frames (evicting untouched entries per frame) instead of
	// clearing them at each frame start.
	FrameGainsCache bool

	// Logger receives rendering warnings; nil silences them.
	Logger *log.Logger
}

// IABRenderer renders frames against one target configuration.  A
// renderer instance is not reentrant; use one instance per goroutine.
type IABRenderer struct {
	config *RendererConfiguration
	logger *log.Logger

	targetUseCase UseCaseType

	numOutputChannels       int
	numSamplesPerOutChannel uint32

	render96kTo48k bool

	enableSmoothing       bool
	enableDecorrelation   bool
	enableFrameGainsCache bool

	vbapRenderer   *VBAPRenderer
	gainsProcessor *ChannelGainsProcessor
	iabTransform   *IABTransform
	iabInterior    *IABInterior
	objectZone9    *ObjectZone9
	decorrelation  *IABDecorrelation
	vectDSP        *VectDSP

	// Working object reused across all sub-blocks.
	vbapObject *VBAPRendererObject

	speakerCount int

	frameRate        FrameRate
	sampleRate       SampleRate
	frameSampleCount uint32
	numPanSubBlocks  uint32

	subBlockSampleCount       [8]uint32
	subBlockSampleStartOffset [8]uint32

	// Asset decode buffers.
	sampleBufferInt   []int32
	sampleBufferFloat []float32

	// Per-sub-block channel buffer views, reused to avoid allocation.
	outputBufferPointers [][]float32

	// Decorrelation bus, one frame per channel.
	decorrOutput [][]float32

	decorrTailingFramesCount int
	decorrelationInReset     bool
	hasDecorrObjects         bool

	// Speaker positions converted to unit-cube coordinates for snap
	// tolerance comparison, keyed by output channel index.
	vbapSpeakerChannelIABPositionMap map[int]CartesianPosInUnitCube

	parentMetaID uint32

	frameToRender *Frame

	warnings map[RenderWarning]bool
}

// NewIABRenderer builds a renderer with default options (frame gains
// cache enabled, no logging).
func NewIABRenderer(config *RendererConfiguration) (*IABRenderer, error) {
	return NewIABRendererWithOptions(config, RendererOptions{FrameGainsCache: true})
}

// NewIABRendererWithOptions builds a renderer against config.  The
// configuration is referenced, not copied, and must not change for the
// renderer's lifetime.
func NewIABRendererWithOptions(config *RendererConfiguration, options RendererOptions) (*IABRenderer, error) {
	if config == nil {
		return nil, ErrBadArguments
	}

	r := &IABRenderer{
		config:                config,
		logger:                options.Logger,
		targetUseCase:         config.TargetUseCase(),
		render96kTo48k:        true,
		enableSmoothing:       config.Smoothing,
		enableDecorrelation:   config.Decorrelation,
		enableFrameGainsCache: options.FrameGainsCache,
		warnings:              make(map[RenderWarning]bool),
	}

	r.numOutputChannels = config.PhysicalSpeakerCount()
	r.speakerCount = config.TotalSpeakerCount()
	if r.numOutputChannels == 0 || r.speakerCount == 0 {
		return nil, fmt.Errorf("%w: no speakers", ErrBadArguments)
	}

	r.vbapRenderer = NewVBAPRenderer()
	if err := r.vbapRenderer.InitWithConfig(config); err != nil {
		return nil, err
	}

	r.gainsProcessor = NewChannelGainsProcessor()
	r.iabTransform = NewIABTransform()
	r.iabInterior = NewIABInterior()
	r.vectDSP = NewVectDSP()

	r.vbapObject = NewVBAPRendererObject(r.numOutputChannels)

	r.sampleBufferInt = make([]int32, kIABMaxFrameSampleCount)
	r.sampleBufferFloat = make([]float32, kIABMaxFrameSampleCount)
	r.outputBufferPointers = make([][]float32, r.numOutputChannels)

	r.decorrOutput = make([][]float32, r.numOutputChannels)
	for i := range r.decorrOutput {
		r.decorrOutput[i] = make([]float32, kIABMaxFrameSampleCount)
	}

	r.decorrelation = NewIABDecorrelation()
	if err := r.decorrelation.Setup(config); err != nil {
		return nil, err
	}
	r.decorrelation.Reset()
	r.decorrelationInReset = true

	r.objectZone9 = NewObjectZone9(config)
	if !r.objectZone9.IsInitialised() && r.logger != nil {
		r.logger.Warn("object zone 9 could not be initialised; zone control disabled for target configuration")
	}

	// Convert the VBAP speaker positions to unit-cube coordinates for
	// snap comparison.  Only speakers in VBAP patches participate; LFE
	// never snaps.  A conversion failure disables snap altogether.
	r.vbapSpeakerChannelIABPositionMap = make(map[int]CartesianPosInUnitCube)
	outputIndex := 0
	for i := range config.Speakers {
		s := &config.Speakers[i]
		if s.IsVirtual() {
			continue
		}
		idx := outputIndex
		outputIndex++

		if !config.IsVBAPSpeaker(s.Name) || s.URI == speakerURILFE {
			continue
		}

		x, y, z, err := r.iabTransform.TransformCartesianVBAPToIAB(s.Position)
		if err != nil {
			r.vbapSpeakerChannelIABPositionMap = map[int]CartesianPosInUnitCube{}
			break
		}

		var pos CartesianPosInUnitCube
		if err := pos.SetPosition(x, y, z); err != nil {
			r.vbapSpeakerChannelIABPositionMap = map[int]CartesianPosInUnitCube{}
			break
		}

		r.vbapSpeakerChannelIABPositionMap[idx] = pos
	}

	return r, nil
}

// OutputChannelCount returns the physical output channel count.
func (r *IABRenderer) OutputChannelCount() int {
	return r.numOutputChannels
}

// MaxOutputSampleCount returns the largest per-channel sample count
// RenderFrame can produce.
func (r *IABRenderer) MaxOutputSampleCount() int {
	return kIABMaxFrameSampleCount
}

// Warnings returns the warnings of the last rendered frame in their
// documented precedence order.
func (r *IABRenderer) Warnings() []RenderWarning {
	var out []RenderWarning
	for _, w := range warningPriority {
		if r.warnings[w] {
			out = append(out, w)
		}
	}
	return out
}

/*------------------------------------------------------------------
 *
 * Name:	RenderFrame
 *
 * Purpose:	Render one frame into the per-channel output buffers.
 *
 * Inputs:	frame		- the frame to render
 *		outputChannels	- one buffer per physical channel, each
 *				  at least one frame long
 *
 * Returns:	samples rendered per channel.  On error the buffers
 *		are partially written and must be treated as undefined.
 *
 *----------------------------------------------------------------*/

func (r *IABRenderer) RenderFrame(frame *Frame, outputChannels [][]float32) (int, error) {
	if frame == nil {
		return 0, ErrBadArguments
	}

	clear(r.warnings)

	r.frameRate = frame.FrameRate
	r.sampleRate = frame.SampleRate

	if r.sampleRate != SampleRate48000Hz && r.sampleRate != SampleRate96000Hz {
		return 0, ErrUnsupportedSampleRate
	}

	if !IsSupported(r.frameRate, r.sampleRate) {
		return 0, ErrUnsupportedFrameRate
	}

	r.frameSampleCount = GetIABNumFrameSamples(r.frameRate, r.sampleRate)

	// v1 renders 96k content at 48k by decimating the decode.
	if r.sampleRate == SampleRate96000Hz && r.render96kTo48k {
		r.frameSampleCount >>= 1
	}

	r.numPanSubBlocks = GetIABNumSubBlocks(r.frameRate)

	if r.frameSampleCount == 0 || r.frameSampleCount > kIABMaxFrameSampleCount || r.numPanSubBlocks == 0 {
		return 0, ErrBadArguments
	}

	// Sub-block sample counts and running offsets.  The fractional
	// 23.976fps rate uses its fixed table; everything else divides
	// uniformly.
	if r.frameRate == FrameRate23_976FPS {
		r.subBlockSampleCount[0] = kSubblockSize23_97FPS48kHz[0]
		r.subBlockSampleStartOffset[0] = 0
		for i := uint32(1); i < r.numPanSubBlocks; i++ {
			r.subBlockSampleCount[i] = kSubblockSize23_97FPS48kHz[i]
			r.subBlockSampleStartOffset[i] = r.subBlockSampleStartOffset[i-1] + kSubblockSize23_97FPS48kHz[i-1]
		}
	} else {
		uniform := r.frameSampleCount / r.numPanSubBlocks
		r.subBlockSampleCount[0] = uniform
		r.subBlockSampleStartOffset[0] = 0
		for i := uint32(1); i < r.numPanSubBlocks; i++ {
			r.subBlockSampleCount[i] = uniform
			r.subBlockSampleStartOffset[i] = r.subBlockSampleStartOffset[i-1] + uniform
		}
	}

	r.numSamplesPerOutChannel = r.frameSampleCount

	if len(outputChannels) != r.numOutputChannels {
		return 0, ErrBadArguments
	}
	for i := range outputChannels {
		if outputChannels[i] == nil || uint32(len(outputChannels[i])) < r.frameSampleCount {
			return 0, ErrMemory
		}
		for n := uint32(0); n < r.frameSampleCount; n++ {
			outputChannels[i][n] = 0.0
		}
	}

	// Clear the decorrelation bus before any rendering.
	for i := range r.decorrOutput {
		for n := range r.decorrOutput[i] {
			r.decorrOutput[i][n] = 0.0
		}
	}

	// Age or clear the caches at frame start.
	if r.enableFrameGainsCache {
		r.vbapRenderer.CleanupPreviouslyRendered()
		r.gainsProcessor.UpdateGainsHistory()
	} else {
		r.vbapRenderer.ResetPreviouslyRendered()
		r.gainsProcessor.ResetGainsHistory()
	}

	r.frameToRender = frame

	if len(frame.SubElements) == 0 {
		// Nothing to render; the cleared buffers are a silent frame.
		return int(r.frameSampleCount), nil
	}

	r.hasDecorrObjects = false

	for _, element := range frame.SubElements {
		switch element := element.(type) {
		case *ObjectDefinition:
			// Decorr support is binary and frame-level: the decision
			// comes from the decorr prefix of the first pan sub-block,
			// which always exists.
			if len(element.PanSubBlocks) == 0 {
				return 0, ErrObjectDefinition
			}

			var rendered uint32
			var err error
			if r.enableDecorrelation &&
				element.PanSubBlocks[0].DecorCoef == DecorCoefPrefixMaxDecor {
				// Maximum decorrelation: route onto the decorr bus, to be
				// processed after all sub-elements.
				rendered, err = r.renderObject(element, r.decorrOutput)
				r.hasDecorrObjects = true
			} else {
				rendered, err = r.renderObject(element, outputChannels)
			}

			if err != nil {
				return 0, err
			}
			if rendered != r.numSamplesPerOutChannel {
				return 0, ErrObjectDefinition
			}

		case *BedDefinition:
			rendered, err := r.renderBed(element, outputChannels)
			if err != nil {
				return 0, err
			}
			if rendered != r.numSamplesPerOutChannel {
				return 0, ErrBedDefinition
			}

		case *ObjectZoneDefinition19:
			// Reserved: the call path exists to catch inadvertent
			// reliance rather than silently no-op.
			return 0, ErrNotImplemented

		case *AudioDataPCM, *AudioDataDLC, *BedRemap:
			// Audio assets are consumed via ID lookup; a top-level remap
			// has no parent bed and nothing to do.
		}
	}

	// Decorrelation processing with hysteresis: a frame with decorr
	// objects arms the tail counter; the filter keeps running until the
	// tail runs out, then resets once.
	if r.hasDecorrObjects {
		r.decorrTailingFramesCount = kIABDecorrTailingFrames
	}

	if r.decorrTailingFramesCount > 0 {
		if err := r.decorrelation.DecorrelateDecorOutputs(r.decorrOutput, r.numOutputChannels, int(r.numSamplesPerOutChannel)); err != nil {
			return 0, err
		}

		r.decorrTailingFramesCount--
		r.decorrelationInReset = false

		for i := range outputChannels {
			r.vectDSP.Add(outputChannels[i], r.decorrOutput[i], outputChannels[i], int(r.numSamplesPerOutChannel))
		}
	} else if !r.decorrelationInReset {
		r.decorrelation.Reset()
		r.decorrelationInReset = true
	}

	if r.logger != nil {
		for _, w := range r.Warnings() {
			r.logger.Warn(w.String())
		}
	}

	return int(r.numSamplesPerOutChannel), nil
}

// isObjectActivated implements the conditional object rules: an
// unconditional object is always active; a conditional one activates on
// use case Always or on a match with the renderer's target use case.
func (r *IABRenderer) isObjectActivated(object *ObjectDefinition) bool {
	if !object.Conditional {
		return true
	}
	if object.UseCase == UseCaseAlways {
		return true
	}
	return object.UseCase == r.targetUseCase && object.UseCase != UseCaseNoUseCase
}

func (r *IABRenderer) isBedActivated(bed *BedDefinition) bool {
	if !bed.Conditional {
		return true
	}
	if bed.UseCase == UseCaseAlways {
		return true
	}
	return bed.UseCase == r.targetUseCase && bed.UseCase != UseCaseNoUseCase
}

func (r *IABRenderer) isBedRemapActivated(remap *BedRemap) bool {
	if remap.UseCase == UseCaseAlways {
		return true
	}
	return remap.UseCase == r.targetUseCase && remap.UseCase != UseCaseNoUseCase
}

/*------------------------------------------------------------------
 *
 * Name:	renderObject
 *
 * Purpose:	Render one object definition.  An activated child
 *		object replaces its parent (ST 2098-2 10.5.1: at most
 *		one child ObjectDefinition is activated).
 *
 *----------------------------------------------------------------*/

func (r *IABRenderer) renderObject(object *ObjectDefinition, outputChannels [][]float32) (uint32, error) {
	if !r.isObjectActivated(object) {
		return r.numSamplesPerOutChannel, nil
	}

	for _, sub := range object.SubElements {
		switch sub := sub.(type) {
		case *ObjectDefinition:
			if r.isObjectActivated(sub) {
				// The activated child renders in place of the parent.
				return r.renderObject(sub, outputChannels)
			}
		case *ObjectZoneDefinition19:
			// Not supported; skipped.
		case nil:
			return 0, ErrObjectDefinition
		}
	}

	if object.AudioDataID == 0 {
		// No audio for this frame; nothing to render.
		return r.numSamplesPerOutChannel, nil
	}

	if err := r.updateAudioSampleBuffer(object.AudioDataID, r.sampleBufferFloat); err != nil {
		return 0, err
	}

	// One working VBAP object serves all pan sub-blocks.
	r.vbapObject.ResetState()
	r.vbapObject.ID = object.MetaID

	if uint32(len(object.PanSubBlocks)) != r.numPanSubBlocks {
		return 0, ErrObjectDefinition
	}

	var renderedTotal uint32

	for i := uint32(0); i < r.numPanSubBlocks; i++ {
		count := r.subBlockSampleCount[i]
		offset := r.subBlockSampleStartOffset[i]

		input := r.sampleBufferFloat[offset : offset+count]
		for j := 0; j < r.numOutputChannels; j++ {
			r.outputBufferPointers[j] = outputChannels[j][offset : offset+count]
		}

		rendered, err := r.renderObjectSubBlock(object.PanSubBlocks[i], r.vbapObject, input, r.outputBufferPointers, count)
		if err != nil {
			return 0, err
		}
		renderedTotal += rendered
	}

	if renderedTotal != r.numSamplesPerOutChannel {
		return 0, ErrObjectDefinition
	}

	return renderedTotal, nil
}

/*------------------------------------------------------------------
 *
 * Name:	renderObjectSubBlock
 *
 * Purpose:	Render one pan sub-block of an object: snap decision,
 *		coordinate transforms, interior decomposition, VBAP,
 *		zone gains, then smoothing and accumulation.
 *
 *		When the sub-block carries no pan info the previous
 *		block's channel gains carry forward and only the gain
 *		application runs.
 *
 *----------------------------------------------------------------*/

func (r *IABRenderer) renderObjectSubBlock(
	subBlock *ObjectSubBlock,
	vbapObject *VBAPRendererObject,
	assetSamples []float32,
	outputChannels [][]float32,
	sampleCount uint32,
) (uint32, error) {
	if subBlock == nil || vbapObject == nil || len(outputChannels) == 0 || sampleCount == 0 {
		return 0, ErrBadArguments
	}
	for i := range outputChannels {
		if outputChannels[i] == nil {
			return 0, ErrMemory
		}
	}

	if subBlock.PanInfoExists {
		position := subBlock.Position

		// Spread: 3D spread is treated as 1D by averaging the three
		// dimensions (v1 behaviour).
		objectHasSpread := false
		spreadXYZ := subBlock.Spread.SpreadXYZ
		switch subBlock.Spread.Mode {
		case SpreadModeLowResolution1D, SpreadModeHighResolution1D:
			if spreadXYZ > 0.0 {
				objectHasSpread = true
			}
		case SpreadModeHighResolution3D:
			if spreadXYZ > 0.0 || subBlock.Spread.SpreadY > 0.0 || subBlock.Spread.SpreadZ > 0.0 {
				objectHasSpread = true
			}
			spreadXYZ = (spreadXYZ + subBlock.Spread.SpreadY + subBlock.Spread.SpreadZ) / 3.0
		}

		// Spread has priority over snap.
		snapSpeakerIndex := -1
		if !objectHasSpread && subBlock.Snap.Present {
			// Dequantize the 12-bit tolerance.
			snapTolerance := float32(subBlock.Snap.Tolerance) / 4095.0
			if snapTolerance > 0.0 {
				snapSpeakerIndex = r.findSnapSpeakerIndex(position, snapTolerance)
			}
		}

		if snapSpeakerIndex != -1 {
			// Snap is active: one-hot channel gains on the snapped
			// speaker, bypassing VBAP entirely.
			for gainIndex := range vbapObject.ChannelGains {
				if gainIndex == snapSpeakerIndex {
					vbapObject.ChannelGains[gainIndex] = 1.0
				} else {
					vbapObject.ChannelGains[gainIndex] = 0.0
				}
			}
		} else {
			// Interior positions cannot feed VBAP directly; the transform
			// plus interior decomposition produce on-dome extended
			// sources with a radius of exactly 1.
			azimuth, elevation, radius, err := r.iabTransform.TransformIABToSphericalVBAP(position.X, position.Y, position.Z)
			if err != nil {
				return 0, err
			}

			var aperture, divergence float32
			if objectHasSpread {
				aperture, divergence, err = r.iabTransform.TransformIAB1DSpreadToVBAPExtent(spreadXYZ)
				if err != nil {
					return 0, err
				}
			}

			extendedSources, err := r.iabInterior.MapExtendedSourceToVBAPExtendedSources(azimuth, elevation, radius, aperture, divergence)
			if err != nil {
				return 0, err
			}

			// Size the rendered gain slices for the actual configuration.
			for i := range extendedSources {
				extendedSources[i].RenderedSpeakerGains = make([]float32, r.speakerCount)
				extendedSources[i].RenderedChannelGains = make([]float32, r.numOutputChannels)
			}

			vbapObject.ExtendedSources = extendedSources

			if err := vbapObject.SetGain(subBlock.Gain); err != nil {
				return 0, err
			}

			if err := r.vbapRenderer.RenderObject(vbapObject); err != nil {
				return 0, fmt.Errorf("%w: %w", ErrVBAPRendering, err)
			}
		}

		// Zone 9 control applies to the rendered channel gains, before
		// smoothing.
		if r.objectZone9 != nil {
			if err := r.objectZone9.ProcessZoneGains(subBlock.ZoneGains, vbapObject.ChannelGains); err != nil {
				return 0, err
			}
		}
	}

	if err := r.gainsProcessor.ApplyChannelGains(
		vbapObject.ID,
		assetSamples,
		int(sampleCount),
		outputChannels,
		false, // no init; accumulate into the frame output
		vbapObject.ChannelGains,
		r.enableSmoothing,
	); err != nil {
		if err == ErrDivisionByZero {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", ErrApplyChannelGains, err)
	}

	return sampleCount, nil
}

/*------------------------------------------------------------------
 *
 * Name:	findSnapSpeakerIndex
 *
 * Purpose:	Find the speaker to snap to: smallest Chebyshev
 *		(max-abs) distance strictly below the tolerance.
 *		Equal minima resolve by smallest Euclidean distance.
 *
 * Returns:	output channel index, or -1 when no speaker
 *		satisfies the criteria.
 *
 *----------------------------------------------------------------*/

func (r *IABRenderer) findSnapSpeakerIndex(objectPosition CartesianPosInUnitCube, snapTolerance float32) int {
	type candidate struct {
		index   int
		x, y, z float32
	}
	var candidates []candidate

	speakerIndex := -1
	lastMax := float32(2.0) // above any reachable distance, replaced by the first match

	// Map iteration order is unspecified; gather candidates and resolve
	// deterministically below.
	for idx, pos := range r.vbapSpeakerChannelIABPositionMap {
		diffMax := absF32(pos.X - objectPosition.X)
		if d := absF32(pos.Y - objectPosition.Y); d > diffMax {
			diffMax = d
		}
		if d := absF32(pos.Z - objectPosition.Z); d > diffMax {
			diffMax = d
		}

		if diffMax >= snapTolerance {
			continue
		}

		if diffMax < lastMax {
			candidates = candidates[:0]
			lastMax = diffMax
			speakerIndex = idx
			candidates = append(candidates, candidate{idx, pos.X, pos.Y, pos.Z})
		} else if diffMax == lastMax {
			candidates = append(candidates, candidate{idx, pos.X, pos.Y, pos.Z})
		}
	}

	// Resolve multiple minima by closest Euclidean distance; ties on
	// that break towards the lowest channel index for determinism.
	if len(candidates) > 1 {
		lastClosest := float64(3.0) // worst case: 1+1+1
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].index < candidates[j].index })

		for _, c := range candidates {
			dx := float64(c.x - objectPosition.X)
			dy := float64(c.y - objectPosition.Y)
			dz := float64(c.z - objectPosition.Z)
			squared := dx*dx + dy*dy + dz*dz

			if squared < lastClosest {
				lastClosest = squared
				speakerIndex = c.index
			}
		}
	}

	return speakerIndex
}

func absF32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

/*------------------------------------------------------------------
 *
 * Name:	renderBed
 *
 * Purpose:	Render one bed definition.  An activated child bed
 *		replaces the parent; an activated child remap renders
 *		the parent's channels through its matrix (ST 2098-2
 *		10.3.2: at most one BedDefinition or BedRemap child is
 *		activated).
 *
 *----------------------------------------------------------------*/

func (r *IABRenderer) renderBed(bed *BedDefinition, outputChannels [][]float32) (uint32, error) {
	r.parentMetaID = bed.MetaID

	if !r.isBedActivated(bed) {
		return r.numSamplesPerOutChannel, nil
	}

	for _, sub := range bed.SubElements {
		switch sub := sub.(type) {
		case *BedDefinition:
			if r.isBedActivated(sub) {
				return r.renderBed(sub, outputChannels)
			}
		case *BedRemap:
			if r.isBedRemapActivated(sub) {
				return r.renderBedRemap(sub, bed, outputChannels)
			}
		case nil:
			return 0, ErrBedDefinition
		}
	}

	if len(bed.Channels) == 0 {
		return 0, ErrBedDefinition
	}

	for _, channel := range bed.Channels {
		if channel == nil {
			return 0, ErrBedDefinition
		}

		if channel.AudioDataID == 0 {
			// No audio for this frame; skip the channel.
			continue
		}

		if err := r.updateAudioSampleBuffer(channel.AudioDataID, r.sampleBufferFloat); err != nil {
			return 0, err
		}

		rendered, err := r.renderChannel(channel, r.sampleBufferFloat, outputChannels)
		if err != nil {
			return 0, err
		}
		if rendered != r.numSamplesPerOutChannel {
			return 0, ErrBedDefinition
		}
	}

	return r.numSamplesPerOutChannel, nil
}

/*------------------------------------------------------------------
 *
 * Name:	renderChannel
 *
 * Purpose:	Route one bed channel: directly to a physical speaker
 *		matched by URI, through a virtual speaker's downmix,
 *		or rendered as a point-source object at the channel's
 *		canonical position.  A missing LFE speaker for an LFE
 *		channel is a warning, not an error.
 *
 *----------------------------------------------------------------*/

func (r *IABRenderer) renderChannel(channel *BedChannel, assetSamples []float32, outputChannels [][]float32) (uint32, error) {
	gain := channel.Gain

	if gain == 0.0 {
		// Zero channel gain: nothing to do.
		return r.numSamplesPerOutChannel, nil
	}

	info, ok := bedChannelInfoMap[channel.ChannelID]
	if !ok {
		return 0, ErrBedChannel
	}

	sampleCount := r.numSamplesPerOutChannel

	if outputIndex, ok := r.config.OutputIndexByURI(info.SpeakerURI); ok {
		// Physical speaker in the layout: straight multiply-add.
		if outputIndex >= r.numOutputChannels {
			return 0, ErrBedChannel
		}

		out := outputChannels[outputIndex]
		if gain == 1.0 {
			for i := uint32(0); i < sampleCount; i++ {
				out[i] += assetSamples[i]
			}
		} else {
			for i := uint32(0); i < sampleCount; i++ {
				out[i] += assetSamples[i] * gain
			}
		}

		return sampleCount, nil
	}

	if speakerIndex, ok := r.config.SpeakerIndexByURI(info.SpeakerURI); ok {
		// Virtual speaker match: apply the normalized downmix to the
		// physical channels, folding the channel gain in.
		for _, dm := range r.config.Speakers[speakerIndex].NormalizedDownmixValues() {
			outputIndex, ok := r.config.OutputIndexByChannel(dm.Channel)
			if !ok {
				return 0, ErrDownmixChannel
			}

			downmixChannelGain := dm.Coefficient * gain
			out := outputChannels[outputIndex]
			for i := uint32(0); i < sampleCount; i++ {
				out[i] += assetSamples[i] * downmixChannelGain
			}
		}

		return sampleCount, nil
	}

	if info.SpeakerURI != speakerURILFE {
		// Not in the layout and not LFE: render as a point-source object
		// at the channel's canonical position.
		return r.renderChannelAsObject(channel.ChannelID, gain, assetSamples, outputChannels, sampleCount)
	}

	// LFE with no LFE speaker: discard, but keep track.
	r.warnings[WarningNoLFEInConfigForBedLFE] = true

	return sampleCount, nil
}

/*------------------------------------------------------------------
 *
 * Name:	renderChannelAsObject
 *
 * Purpose:	Render a bed channel as a synthetic on-dome point
 *		source at its canonical position.  The smoothing
 *		entity ID combines the channel ID and the parent bed
 *		meta ID under a high marker byte for uniqueness
 *		against real object IDs.
 *
 *----------------------------------------------------------------*/

func (r *IABRenderer) renderChannelAsObject(
	channelID ChannelID,
	channelGain float32,
	assetSamples []float32,
	outputChannels [][]float32,
	sampleCount uint32,
) (uint32, error) {
	r.vbapObject.ResetState()

	vbapIDForChannel := uint32(channelID) + (r.parentMetaID << 8) + 0xff000000
	r.vbapObject.ID = vbapIDForChannel

	info, ok := bedChannelInfoMap[channelID]
	if !ok {
		return 0, ErrBedChannel
	}

	// Channel position is already on the dome; extent stays zero.
	source := NewVBAPRendererExtendedSource(r.speakerCount, r.numOutputChannels)
	if err := source.SetPosition(info.SpeakerVBAPCoordinates); err != nil {
		return 0, err
	}
	if err := source.SetGain(1.0); err != nil {
		return 0, err
	}

	r.vbapObject.ExtendedSources = append(r.vbapObject.ExtendedSources[:0], source)

	if err := r.vbapObject.SetGain(channelGain); err != nil {
		return 0, err
	}

	if err := r.vbapRenderer.RenderObject(r.vbapObject); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrVBAPRendering, err)
	}

	if err := r.gainsProcessor.ApplyChannelGains(
		r.vbapObject.ID,
		assetSamples,
		int(sampleCount),
		outputChannels,
		false,
		r.vbapObject.ChannelGains,
		r.enableSmoothing,
	); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrApplyChannelGains, err)
	}

	return sampleCount, nil
}

/*------------------------------------------------------------------
 *
 * Name:	renderBedRemap
 *
 * Purpose:	Render a bed through a remap: per sub-block, each
 *		destination channel is a weighted sum of all source
 *		channels, routed like a bed channel (physical hit,
 *		virtual downmix, or render-as-object on a scratch
 *		buffer).  Source assets are decoded once per frame;
 *		the coefficient matrix carries forward across
 *		sub-blocks unless explicitly updated.
 *
 *----------------------------------------------------------------*/

func (r *IABRenderer) renderBedRemap(remap *BedRemap, parentBed *BedDefinition, outputChannels [][]float32) (uint32, error) {
	if remap.UseCase != r.targetUseCase && remap.UseCase != UseCaseAlways {
		return 0, ErrBedRemap
	}

	sourceChannelCount := int(remap.SourceChannels)
	destinationChannelCount := int(remap.DestinationChannels)

	sourceChannels := parentBed.Channels

	if sourceChannelCount == 0 ||
		len(sourceChannels) != sourceChannelCount ||
		destinationChannelCount == 0 ||
		r.numSamplesPerOutChannel == 0 {
		return 0, ErrBedRemap
	}

	sampleCount := r.numSamplesPerOutChannel

	// Decode all source assets up front; audio is frame-atomic, remap
	// coefficients are not.
	sourceBuffers := make([][]float32, sourceChannelCount)
	sourceChannelScales := make([]float32, sourceChannelCount)

	for i := 0; i < sourceChannelCount; i++ {
		if sourceChannels[i] == nil {
			return 0, ErrBedRemap
		}

		sourceBuffers[i] = make([]float32, sampleCount)
		sourceChannelScales[i] = sourceChannels[i].Gain

		if sourceChannels[i].AudioDataID == 0 {
			// Silent source channel; the zeroed buffer stands in.
			continue
		}

		if err := r.updateAudioSampleBuffer(sourceChannels[i].AudioDataID, sourceBuffers[i]); err != nil {
			return 0, err
		}
	}

	if len(remap.SubBlocks) == 0 ||
		uint32(len(remap.SubBlocks)) != r.numPanSubBlocks {
		return 0, ErrBedRemap
	}

	// Scratch for destinations that need render-as-object.
	tempRemapped := make([]float32, kIABMaxSubblockSampleCount)

	var coeffArray []*RemapCoeff

	for n := uint32(0); n < r.numPanSubBlocks; n++ {
		subBlockSampleCount := r.subBlockSampleCount[n]
		offset := r.subBlockSampleStartOffset[n]

		// The first sub-block always carries coefficients; later blocks
		// carry the previous block's matrix forward unless present.
		if remap.SubBlocks[n].RemapInfoExists {
			coeffArray = remap.SubBlocks[n].Coeffs
		}

		if len(coeffArray) != destinationChannelCount {
			return 0, ErrBedRemap
		}

		for i := 0; i < destinationChannelCount; i++ {
			destinationChannelID := coeffArray[i].DestinationChannelID

			destInfo, ok := bedChannelInfoMap[destinationChannelID]
			if !ok {
				return 0, ErrBedRemap
			}

			if len(coeffArray[i].Coeffs) != sourceChannelCount {
				return 0, ErrBedRemap
			}

			if outputIndex, ok := r.config.OutputIndexByURI(destInfo.SpeakerURI); ok {
				// Physical destination: accumulate the remapped samples
				// directly.
				if outputIndex >= r.numOutputChannels {
					return 0, ErrBedRemap
				}

				dest := outputChannels[outputIndex][offset : offset+subBlockSampleCount]

				for j := 0; j < sourceChannelCount; j++ {
					combinedScale := coeffArray[i].Coeffs[j] * sourceChannelScales[j]
					if combinedScale == 0.0 {
						continue
					}

					src := sourceBuffers[j][offset : offset+subBlockSampleCount]
					for k := range dest {
						dest[k] += src[k] * combinedScale
					}
				}
			} else if speakerIndex, ok := r.config.SpeakerIndexByURI(destInfo.SpeakerURI); ok {
				// Virtual destination: remap, then downmix to physical
				// channels with the combined scale chain of source gain,
				// remap coefficient and downmix coefficient.
				for _, dm := range r.config.Speakers[speakerIndex].NormalizedDownmixValues() {
					outputIndex, ok := r.config.OutputIndexByChannel(dm.Channel)
					if !ok {
						return 0, ErrDownmixChannel
					}

					dest := outputChannels[outputIndex][offset : offset+subBlockSampleCount]

					for j := 0; j < sourceChannelCount; j++ {
						combinedScale := dm.Coefficient * coeffArray[i].Coeffs[j] * sourceChannelScales[j]
						if combinedScale == 0.0 {
							continue
						}

						src := sourceBuffers[j][offset : offset+subBlockSampleCount]
						for k := range dest {
							dest[k] += src[k] * combinedScale
						}
					}
				}
			} else if destInfo.SpeakerURI != speakerURILFE {
				// Not in the layout: remap into scratch, then render the
				// scratch as a point-source object.  Source gains are
				// folded in during remapping, so the object gain is one.
				for k := range tempRemapped {
					tempRemapped[k] = 0.0
				}

				for j := 0; j < sourceChannelCount; j++ {
					combinedScale := coeffArray[i].Coeffs[j] * sourceChannelScales[j]
					if combinedScale == 0.0 {
						continue
					}

					src := sourceBuffers[j][offset : offset+subBlockSampleCount]
					for k := uint32(0); k < subBlockSampleCount; k++ {
						tempRemapped[k] += src[k] * combinedScale
					}
				}

				for m := 0; m < r.numOutputChannels; m++ {
					r.outputBufferPointers[m] = outputChannels[m][offset : offset+subBlockSampleCount]
				}

				if _, err := r.renderChannelAsObject(destinationChannelID, 1.0,
					tempRemapped, r.outputBufferPointers, subBlockSampleCount); err != nil {
					return 0, err
				}
			} else {
				// LFE destination with no LFE speaker: discard, but keep
				// track.
				r.warnings[WarningNoLFEInConfigForRemapLFE] = true
			}
		}
	}

	return sampleCount, nil
}

/*------------------------------------------------------------------
 *
 * Name:	updateAudioSampleBuffer
 *
 * Purpose:	Locate the audio asset with the given ID among the
 *		frame sub-elements, decode it to 32-bit integer PCM
 *		(decimating 96k content to 48k) and convert to float
 *		into dest.
 *
 *----------------------------------------------------------------*/

func (r *IABRenderer) updateAudioSampleBuffer(audioDataID uint32, dest []float32) error {
	if audioDataID == 0 {
		return ErrBadArguments
	}
	if r.sampleBufferInt == nil || dest == nil {
		return ErrNotInitialised
	}

	count := r.numSamplesPerOutChannel
	found := false

	for _, element := range r.frameToRender.SubElements {
		switch element := element.(type) {
		case *AudioDataDLC:
			if element.AudioDataID != audioDataID {
				continue
			}
			if element.Decoder == nil {
				return ErrBadArguments
			}

			targetRate := element.SampleRate
			if element.SampleRate == SampleRate96000Hz && r.render96kTo48k {
				// Force the DLC decode down to 48k.
				targetRate = SampleRate48000Hz
			}

			if err := element.Decoder.DecodeDLCToMonoPCM(r.sampleBufferInt, count, targetRate); err != nil {
				return err
			}
			found = true

		case *AudioDataPCM:
			if element.AudioDataID != audioDataID {
				continue
			}

			if uint32(len(element.Samples)) != count {
				return ErrSampleCountMismatch
			}

			if err := element.UnpackPCMToMonoSamples(r.sampleBufferInt, count); err != nil {
				return err
			}
			found = true
		}

		if found {
			for i := uint32(0); i < count; i++ {
				dest[i] = float32(r.sampleBufferInt[i]) / kInt32BitMaxValue
			}
			return nil
		}
	}

	// Audio ID not found in this frame.
	return ErrBadArguments
}
