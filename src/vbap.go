package iabrenderer

import (
	"math"
)

/*------------------------------------------------------------------
 *
 * Purpose:	VBAP panner.  Renders extended sources against the
 *		triangulated speaker hull: point sources directly by
 *		patch, extent sources by integrating the precomputed
 *		virtual-source hemisphere, then downmixes speaker
 *		gains (virtual speakers included) to physical output
 *		channel gains.
 *
 *		Rendered extended sources are memoized on their exact
 *		parameter tuple between sub-blocks; the cache is aged
 *		at frame boundaries (see renderer.go).
 *
 *----------------------------------------------------------------*/

const (
	defaultThetaDivs = 128
	defaultPhiDivs   = 32
)

// VBAPRenderer renders extended sources and objects against one target
// configuration.
type VBAPRenderer struct {
	config            *RendererConfiguration
	topVirtualSources *HemisphereVirtualSources

	// totalSpeakerGains is the per-patch working accumulator.
	totalSpeakerGains []float32

	// scratch buffers for extent rendering; sized at init so the render
	// path does not allocate.
	extentScratch []float32

	previouslyRendered []VBAPRendererExtendedSource

	speakerLFEIndex int
}

// NewVBAPRenderer returns an unconfigured renderer; call InitWithConfig
// before rendering.
func NewVBAPRenderer() *VBAPRenderer {
	return &VBAPRenderer{speakerLFEIndex: -1}
}

// InitWithConfig configures the renderer and precomputes the virtual
// source hemisphere.  Re-configuration is not allowed; create a new
// instance instead.
func (v *VBAPRenderer) InitWithConfig(config *RendererConfiguration) error {
	if config == nil {
		return ErrBadArguments
	}
	if v.topVirtualSources != nil {
		return ErrAlreadyInitialised
	}

	v.config = config
	v.speakerLFEIndex = config.LFESpeakerIndex()

	speakerCount := config.TotalSpeakerCount()
	v.totalSpeakerGains = make([]float32, speakerCount)
	v.extentScratch = make([]float32, speakerCount)

	v.topVirtualSources = v.buildHemisphere(defaultThetaDivs, defaultPhiDivs)

	return nil
}

/*------------------------------------------------------------------
 *
 * Name:	buildHemisphere
 *
 * Purpose:	Pre-render the virtual source grid.  Ring i sits at
 *		phi = i * (pi/2) / phiDivs from the zenith and carries
 *		max(1, floor(thetaDivs * sin(phi))) sources, each
 *		rendered as a pure point source against the hull.
 *
 *		A grid source that falls outside the hull keeps zero
 *		gains; sparse layouts tolerate this.
 *
 *----------------------------------------------------------------*/

func (v *VBAPRenderer) buildHemisphere(thetaDivs, phiDivs int) *HemisphereVirtualSources {
	hemisphere := &HemisphereVirtualSources{
		DeltaPhi: kPI / 2.0 / float32(phiDivs),
	}

	speakerCount := v.config.TotalSpeakerCount()

	for i := 0; i <= phiDivs; i++ {
		phi := float32(i) * hemisphere.DeltaPhi

		n := 1
		if i != 0 {
			n = int(math.Floor(float64(thetaDivs) * math.Sin(float64(phi))))
			if n < 1 {
				n = 1
			}
		}

		ring := LongitudeVirtualSources{
			MaxThetaIndex: n - 1,
			DeltaTheta:    2 * kPI / float32(n),
			Phi:           phi,
			PhiIndex:      i,
		}

		sources := make([]VirtualSource, n)
		for j := 0; j < n; j++ {
			theta := ring.DeltaTheta * float32(j)

			sources[j].ThetaIndex = j
			sources[j].Theta = theta
			sources[j].SpeakerGains = make([]float32, speakerCount)

			sinPhi, cosPhi := math.Sincos(float64(phi))
			sinTheta, cosTheta := math.Sincos(float64(theta))

			src := Vector3{
				X: clampF32(float32(sinTheta*sinPhi), -1.0, 1.0),
				Y: clampF32(float32(cosTheta*sinPhi), -1.0, 1.0),
				Z: clampF32(float32(cosPhi), -1.0, 1.0),
			}

			v.renderPatch(src, sources[j].SpeakerGains)
		}

		ring.VirtualSources = BuildVirtualSourceTree(sources)
		hemisphere.Longitudes = append(hemisphere.Longitudes, ring)
	}

	return hemisphere
}

func clampF32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

/*------------------------------------------------------------------
 *
 * Name:	RenderExtendedSource
 *
 * Purpose:	Render one extended source to speaker and channel
 *		gains, reusing a cached result when an identically
 *		parameterized source was rendered before.
 *
 *----------------------------------------------------------------*/

func (v *VBAPRenderer) RenderExtendedSource(source *VBAPRendererExtendedSource) error {
	if source == nil {
		return ErrBadArguments
	}
	if v.config == nil {
		return ErrNotInitialised
	}
	if len(source.RenderedSpeakerGains) == 0 || len(source.RenderedChannelGains) == 0 {
		return ErrBadArguments
	}
	if source.ExtSourceGain < 0.0 || source.ExtSourceGain > 1.0 {
		return ErrParameterOutOfBounds
	}

	for i := range source.RenderedSpeakerGains {
		source.RenderedSpeakerGains[i] = 0.0
	}

	if v.reusePreviouslyRendered(source) {
		return nil
	}

	if err := v.renderExtent(source.Position, source.Aperture, source.Divergence, source.RenderedSpeakerGains); err != nil {
		return err
	}

	if err := v.SpeakerDownmix(source.RenderedSpeakerGains, source.RenderedChannelGains); err != nil {
		return err
	}

	v.addToPreviouslyRendered(source)

	return nil
}

// RenderObject renders an object's extended sources (one for on-dome,
// three for interior) and leaves the normalized, object-gain scaled
// result in the object's channel gains.
func (v *VBAPRenderer) RenderObject(object *VBAPRendererObject) error {
	if object == nil || len(object.ChannelGains) == 0 {
		return ErrBadArguments
	}

	for i := range object.ChannelGains {
		object.ChannelGains[i] = 0.0
	}

	switch len(object.ExtendedSources) {
	case 0:
		return ErrNoExtendedSource
	case 1:
		return v.renderOnDomeObject(object)
	default:
		return v.renderInteriorObject(object)
	}
}

// RenderLFEChannel routes an LFE entity's gain directly to the LFE
// speaker slot and downmixes.  Rendering LFE content without an LFE
// speaker in the configuration is an error at this level; the frame
// renderer degrades it to a warning for bed content.
func (v *VBAPRenderer) RenderLFEChannel(lfeChannel *VBAPRendererLFEChannel) error {
	if lfeChannel == nil {
		return ErrBadArguments
	}
	if v.speakerLFEIndex < 0 {
		return ErrNoLFEChannel
	}
	if lfeChannel.LFEGain < 0.0 || lfeChannel.LFEGain > 1.0 {
		return ErrParameterOutOfBounds
	}

	for i := range lfeChannel.SpeakerGains {
		lfeChannel.SpeakerGains[i] = 0.0
	}

	// The LFE speaker may itself be virtual; the downmix transfers its
	// gain onto physical channels either way.
	lfeChannel.SpeakerGains[v.speakerLFEIndex] = lfeChannel.LFEGain

	return v.SpeakerDownmix(lfeChannel.SpeakerGains, lfeChannel.ChannelGains)
}

// CleanupPreviouslyRendered ages the extended source cache at a frame
// boundary: entries not touched in the previous frame are evicted and
// survivors start the new frame untouched.
func (v *VBAPRenderer) CleanupPreviouslyRendered() {
	kept := v.previouslyRendered[:0]
	for i := range v.previouslyRendered {
		if v.previouslyRendered[i].touched {
			v.previouslyRendered[i].touched = false
			kept = append(kept, v.previouslyRendered[i])
		}
	}
	v.previouslyRendered = kept
}

// ResetPreviouslyRendered clears the extended source cache entirely.
func (v *VBAPRenderer) ResetPreviouslyRendered() {
	v.previouslyRendered = v.previouslyRendered[:0]
}

// VBAPCacheSize returns the number of cached extended sources.
func (v *VBAPRenderer) VBAPCacheSize() int {
	return len(v.previouslyRendered)
}

/*------------------------------------------------------------------
 *
 * Name:	SpeakerDownmix
 *
 * Purpose:	Fold speaker gains (virtual speakers included) into
 *		physical output channel gains through each speaker's
 *		downmix list.
 *
 *----------------------------------------------------------------*/

func (v *VBAPRenderer) SpeakerDownmix(speakerGains, channelGains []float32) error {
	if len(speakerGains) == 0 || len(channelGains) == 0 {
		return ErrBadArguments
	}

	for i := range channelGains {
		channelGains[i] = 0.0
	}

	for speaker := range speakerGains {
		for _, dm := range v.config.Speakers[speaker].Downmix {
			outputIndex, ok := v.config.OutputIndexByChannel(dm.Channel)
			if !ok {
				return ErrParameterOutOfBounds
			}
			channelGains[outputIndex] += dm.Coefficient * speakerGains[speaker]
		}
	}

	return nil
}

func (v *VBAPRenderer) renderOnDomeObject(object *VBAPRendererObject) error {
	source := &object.ExtendedSources[0]

	if err := v.RenderExtendedSource(source); err != nil {
		return err
	}

	copy(object.ChannelGains, source.RenderedChannelGains)

	// For a single extended source the source gain is 1; it is still the
	// normalization target.
	object.VBAPNormGains = source.ExtSourceGain

	if err := v.normalizeChannelGains(object.VBAPNormGains, object.ChannelGains); err != nil {
		return err
	}

	return v.applyObjectGainToChannelGains(object.ObjectGain, object.ChannelGains)
}

func (v *VBAPRenderer) renderInteriorObject(object *VBAPRendererObject) error {
	numChannels := len(object.ChannelGains)

	object.VBAPNormGains = 0.0

	for i := range object.ExtendedSources {
		source := &object.ExtendedSources[i]

		if err := v.RenderExtendedSource(source); err != nil {
			return err
		}

		// Aggregate the source's channel gains weighted by its gain, and
		// its gain into the group normalization target.
		for j := 0; j < numChannels; j++ {
			object.ChannelGains[j] += source.RenderedChannelGains[j] * source.ExtSourceGain
		}
		object.VBAPNormGains += source.ExtSourceGain
	}

	if err := v.normalizeChannelGains(object.VBAPNormGains, object.ChannelGains); err != nil {
		return err
	}

	return v.applyObjectGainToChannelGains(object.ObjectGain, object.ChannelGains)
}

// normalizeChannelGains rescales the gains so their L2 norm equals
// normGain.  Insignificant norms or targets zero the gains instead.
func (v *VBAPRenderer) normalizeChannelGains(normGain float32, channelGains []float32) error {
	if len(channelGains) == 0 {
		return ErrBadArguments
	}

	var sumSquares float32
	for _, g := range channelGains {
		sumSquares += g * g
	}
	norm := float32(math.Sqrt(float64(sumSquares)))

	if norm > kEpsilon && normGain > 0.0 {
		gain := normGain / norm
		for i := range channelGains {
			channelGains[i] *= gain
		}
	} else {
		for i := range channelGains {
			channelGains[i] = 0.0
		}
	}

	return nil
}

func (v *VBAPRenderer) applyObjectGainToChannelGains(objectGain float32, channelGains []float32) error {
	if len(channelGains) == 0 {
		return ErrBadArguments
	}
	for i := range channelGains {
		channelGains[i] *= objectGain
	}
	return nil
}

func (v *VBAPRenderer) addToPreviouslyRendered(source *VBAPRendererExtendedSource) {
	source.touched = true

	// Deep copy; cache entries outlive the caller's source.
	entry := *source
	entry.RenderedSpeakerGains = append([]float32(nil), source.RenderedSpeakerGains...)
	entry.RenderedChannelGains = append([]float32(nil), source.RenderedChannelGains...)
	v.previouslyRendered = append(v.previouslyRendered, entry)
}

func (v *VBAPRenderer) reusePreviouslyRendered(source *VBAPRendererExtendedSource) bool {
	for i := range v.previouslyRendered {
		entry := &v.previouslyRendered[i]
		if entry.HasSameRenderingParams(source) {
			copy(source.RenderedSpeakerGains, entry.RenderedSpeakerGains)
			copy(source.RenderedChannelGains, entry.RenderedChannelGains)
			entry.touched = true
			return true
		}
	}
	return false
}

// =================================================================
// Core VBAP algorithm
//

// rendererRTZ and rendererAtan2 circumvent cross-platform differences of
// atan2 by rounding to milliradians, round-half-towards-zero.
func rendererRTZ(value float32) float32 {
	if value >= 0 {
		return float32(-math.Floor(float64(-value) + 0.5))
	}
	return float32(math.Floor(float64(value) + 0.5))
}

func rendererAtan2(value1, value2 float32) float32 {
	return 0.001 * rendererRTZ(float32(math.Atan2(float64(value1), float64(value2)))/0.001)
}

/*------------------------------------------------------------------
 *
 * Name:	renderExtent
 *
 * Purpose:	Render one source with optional extent.  Non-zero
 *		aperture or divergence integrates the virtual source
 *		hemisphere; if fewer than two virtual sources land in
 *		the extent region the partial result is discarded and
 *		the source renders as a pure point source.
 *
 *----------------------------------------------------------------*/

func (v *VBAPRenderer) renderExtent(source Vector3, aperture, divergence float32, speakerGains []float32) error {
	norm := source.Norm()
	if norm <= 0 {
		return ErrNotInConvexHull
	}
	center := source.Scale(1.0 / norm)

	phi := float32(math.Acos(float64(center.Z)))
	theta := rendererAtan2(center.X, center.Y)

	// The lower hemisphere has no speakers.
	if center.Z < 0 || v.topVirtualSources == nil {
		return ErrNotInConvexHull
	}

	scratch := v.extentScratch
	for i := range scratch {
		scratch[i] = 0.0
	}

	foundVirtualSources := 0

	if aperture != 0.0 || divergence != 0.0 {
		foundVirtualSources = v.renderHemisphere(theta, phi, aperture, divergence, scratch)
	}

	if foundVirtualSources < 2 {
		// Point source fallback; any partial extent result is discarded.
		for i := range scratch {
			scratch[i] = 0.0
		}

		if v.renderPatch(source, scratch) <= 0 {
			return ErrNotInConvexHull
		}
	}

	for i := range speakerGains {
		speakerGains[i] += scratch[i]
	}

	return nil
}

/*------------------------------------------------------------------
 *
 * Name:	renderHemisphere
 *
 * Purpose:	Integrate the virtual source rings over the extent
 *		region: for each ring, the latitude sigma gives the
 *		arc inside the aperture disk; divergence widens it.
 *		Theta intervals wrap at the ring boundary.
 *
 * Returns:	the number of virtual sources that contributed.
 *
 *----------------------------------------------------------------*/

func (v *VBAPRenderer) renderHemisphere(theta, phi, aperture, divergence float32, speakerGains []float32) int {
	hemisphere := v.topVirtualSources

	if theta < 0 {
		theta += 2.0 * kPI
	}

	// Round phi to the nearest ring so virtual sources are selected even
	// when aperture == 0 and divergence > 0.
	phi = hemisphere.DeltaPhi * float32(math.Floor(float64(phi/hemisphere.DeltaPhi)+0.5))

	foundSources := 0

	for r := range hemisphere.Longitudes {
		ring := &hemisphere.Longitudes[r]

		sigma := computeLatitudeSigma(phi, aperture, ring.Phi)
		if sigma == -1 {
			continue
		}

		arc := clampF32(divergence+sigma, 0, kPI)

		thetaMax := theta + arc
		thetaMin := theta - arc

		thetaMinIndex := int(math.Floor(float64(thetaMin/ring.DeltaTheta) + 0.5))
		thetaMaxIndex := int(math.Floor(float64(thetaMax/ring.DeltaTheta) + 0.5))

		if thetaMaxIndex-thetaMinIndex > ring.MaxThetaIndex {
			thetaMinIndex = 0
			thetaMaxIndex = ring.MaxThetaIndex
		}

		if thetaMaxIndex > ring.MaxThetaIndex {
			foundSources += ring.VirtualSources.AverageGainsOverRange(
				0, thetaMaxIndex-ring.MaxThetaIndex-1, 0, ring.MaxThetaIndex, speakerGains)
			foundSources += ring.VirtualSources.AverageGainsOverRange(
				thetaMinIndex, ring.MaxThetaIndex, 0, ring.MaxThetaIndex, speakerGains)
		} else if thetaMinIndex < 0 {
			foundSources += ring.VirtualSources.AverageGainsOverRange(
				0, thetaMaxIndex, 0, ring.MaxThetaIndex, speakerGains)
			foundSources += ring.VirtualSources.AverageGainsOverRange(
				ring.MaxThetaIndex+thetaMinIndex+1, ring.MaxThetaIndex, 0, ring.MaxThetaIndex, speakerGains)
		} else {
			foundSources += ring.VirtualSources.AverageGainsOverRange(
				thetaMinIndex, thetaMaxIndex, 0, ring.MaxThetaIndex, speakerGains)
		}
	}

	return foundSources
}

/*------------------------------------------------------------------
 *
 * Name:	computeLatitudeSigma
 *
 * Purpose:	Angle sigma describing the portion of a latitude ring
 *		inside an object's aperture disk.
 *
 *		phi: 0 at zenith, pi at bottom.
 *		aperture: 0 - pi.
 *		latitude: ring angle from zenith, pi/2 horizontal.
 *
 * Returns:	-1 when the ring misses the disk, else 0 .. pi.
 *
 *----------------------------------------------------------------*/

func computeLatitudeSigma(phi, aperture, latitude float32) float32 {
	ca := float32(math.Cos(float64(aperture)))
	cp := float32(math.Cos(float64(phi + latitude)))
	cm := float32(math.Cos(float64(phi - latitude)))

	en := 2.0*ca - (cp + cm)
	dn := cm - cp

	switch {
	case ca <= cp:
		// Ring fully inside the disk.
		return kPI
	case cm > cp:
		// dn cannot go negative with phi and latitude in 0..pi.
		if ca == cm {
			return 0
		}
		if ca < cm {
			return float32(math.Acos(float64(en / dn)))
		}
	}

	return -1
}

/*------------------------------------------------------------------
 *
 * Name:	renderPatch
 *
 * Purpose:	Pure point-source render against the hull.  For each
 *		triangle patch the basis coefficients decide whether
 *		the source is inside (3 significant gains), on a border
 *		(2: halve and count half, since the border renders
 *		twice) or on a corner (1: final).  Gains average over
 *		the number of contributing patches.
 *
 * Returns:	the active patch count; 0 means the source is outside
 *		the convex hull.
 *
 *----------------------------------------------------------------*/

func (v *VBAPRenderer) renderPatch(source Vector3, speakerGains []float32) float32 {
	if v.config == nil {
		return 0
	}
	if len(speakerGains) != len(v.totalSpeakerGains) {
		return 0
	}
	if len(v.config.Patches) == 0 {
		return 0
	}

	for i := range v.totalSpeakerGains {
		v.totalSpeakerGains[i] = 0.0
	}

	countActivePatches := float32(0)

	norm := source.Norm()
	if norm <= 0 {
		return 0
	}
	normalizedSource := source.Scale(1.0 / norm)

	for i := range v.config.Patches {
		patch := &v.config.Patches[i]
		coefs := patch.Basis.MulVec(normalizedSource)

		// Is the source rendered by this patch at all?
		if coefs.X < -kEpsilon || coefs.Y < -kEpsilon || coefs.Z < -kEpsilon {
			continue
		}

		// Gains within +/- epsilon constitute the border of the triangle.
		numSignificantGains := 0
		if coefs.X > kEpsilon {
			numSignificantGains++
		}
		if coefs.Y > kEpsilon {
			numSignificantGains++
		}
		if coefs.Z > kEpsilon {
			numSignificantGains++
		}

		if numSignificantGains == 2 {
			v.totalSpeakerGains[patch.S1] += 0.5 * coefs.X
			v.totalSpeakerGains[patch.S2] += 0.5 * coefs.Y
			v.totalSpeakerGains[patch.S3] += 0.5 * coefs.Z

			countActivePatches += 0.5
		} else {
			v.totalSpeakerGains[patch.S1] += coefs.X
			v.totalSpeakerGains[patch.S2] += coefs.Y
			v.totalSpeakerGains[patch.S3] += coefs.Z

			countActivePatches++
		}

		// A single significant gain means the source coincides with a
		// corner speaker; no further patch can contribute.
		if numSignificantGains == 1 {
			break
		}
	}

	if countActivePatches != 0 {
		for i := range v.totalSpeakerGains {
			v.totalSpeakerGains[i] /= countActivePatches
			speakerGains[i] += v.totalSpeakerGains[i]
		}
	}

	return countActivePatches
}
