package iabrenderer

import "math"

/*------------------------------------------------------------------
 *
 * Purpose:	Shared value types of the VBAP rendering engine:
 *		single-precision vectors, 3x3 basis matrices, the
 *		extended source, the renderer object and the LFE
 *		channel entity.
 *
 *		The hot path is float32 throughout.  Construction-time
 *		geometry is done in float64 (see transform.go and
 *		config.go) and narrowed once.
 *
 *----------------------------------------------------------------*/

const kEpsilon = 1e-6

const kPI = float32(math.Pi)

// Vector3 is a Cartesian position or direction in the room-centred VBAP
// domain.  For renderable sources x,y in [-1,1] and z in [0,1], with
// x*x+y*y+z*z <= 1.
type Vector3 struct {
	X, Y, Z float32
}

func (v Vector3) Dot(o Vector3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) Norm() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Matrix3 is a row-major 3x3 matrix.
type Matrix3 [3][3]float32

// MulVec computes m * v.
func (m *Matrix3) MulVec(v Vector3) Vector3 {
	return Vector3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// VBAPRendererExtendedSource is the atom consumed by the VBAP panner: a
// position on the dome plus extent parameters, and the rendered speaker
// and channel gains once the panner has run.
//
// Two extended sources with bit-identical rendering parameters (position,
// aperture, divergence, gain) produce bit-identical rendered gains; the
// panner memoizes on exactly that tuple.
type VBAPRendererExtendedSource struct {
	Position      Vector3
	ExtSourceGain float32
	Aperture      float32
	Divergence    float32

	// Rendered speaker gains include virtual speakers.  They are internal
	// to the renderer; clients only consume channel gains.
	RenderedSpeakerGains []float32

	// Rendered channel gains correspond one-to-one with physical output
	// channels of the target configuration.
	RenderedChannelGains []float32

	// touched marks cache entries used in the current frame.  Entries not
	// touched by the end of a frame are evicted at the next frame start.
	touched bool
}

// NewVBAPRendererExtendedSource returns an extended source at front centre
// with unit gain and no extent.
func NewVBAPRendererExtendedSource(speakerCount, channelCount int) VBAPRendererExtendedSource {
	return VBAPRendererExtendedSource{
		Position:             Vector3{0, 1, 0},
		ExtSourceGain:        1.0,
		RenderedSpeakerGains: make([]float32, speakerCount),
		RenderedChannelGains: make([]float32, channelCount),
	}
}

// HasSameRenderingParams reports whether o carries the same rendering
// input values.  Rendered outputs are not considered.
func (s *VBAPRendererExtendedSource) HasSameRenderingParams(o *VBAPRendererExtendedSource) bool {
	return s.Position == o.Position &&
		s.Aperture == o.Aperture &&
		s.Divergence == o.Divergence &&
		s.ExtSourceGain == o.ExtSourceGain
}

func (s *VBAPRendererExtendedSource) SetGain(gain float32) error {
	if gain < 0.0 || gain > 1.0 {
		return ErrParameterOutOfBounds
	}
	s.ExtSourceGain = gain
	return nil
}

func (s *VBAPRendererExtendedSource) SetPosition(p Vector3) error {
	if p.X < -1.0 || p.X > 1.0 || p.Y < -1.0 || p.Y > 1.0 || p.Z < 0.0 || p.Z > 1.0 {
		return ErrParameterOutOfBounds
	}
	s.Position = p
	return nil
}

func (s *VBAPRendererExtendedSource) SetAperture(aperture float32) error {
	if aperture < 0.0 || aperture > kPI {
		return ErrParameterOutOfBounds
	}
	s.Aperture = aperture
	return nil
}

func (s *VBAPRendererExtendedSource) SetDivergence(divergence float32) error {
	if divergence < 0.0 || divergence > kPI/2 {
		return ErrParameterOutOfBounds
	}
	s.Divergence = divergence
	return nil
}

// VBAPRendererObject represents one renderable object: a single extended
// source for an on-dome object, or three for an interior object rendered
// by triple-balance decomposition.
type VBAPRendererObject struct {
	ObjectGain float32
	ID         uint32

	// VBAPNormGains accumulates the extended source gains of the object
	// and is the L2 normalization target for the summed channel gains.
	VBAPNormGains float32

	ChannelGains    []float32
	ExtendedSources []VBAPRendererExtendedSource
}

func NewVBAPRendererObject(channelCount int) *VBAPRendererObject {
	return &VBAPRendererObject{
		ObjectGain:   1.0,
		ChannelGains: make([]float32, channelCount),
	}
}

func (o *VBAPRendererObject) SetGain(gain float32) error {
	if gain < 0.0 || gain > 1.0 {
		return ErrParameterOutOfBounds
	}
	o.ObjectGain = gain
	return nil
}

// ResetState clears everything except the channel count.
func (o *VBAPRendererObject) ResetState() {
	o.ObjectGain = 1.0
	o.ID = 0
	o.VBAPNormGains = 0.0
	o.ExtendedSources = o.ExtendedSources[:0]
	for i := range o.ChannelGains {
		o.ChannelGains[i] = 0.0
	}
}

// VBAPRendererLFEChannel represents an LFE entity.  LFE content bypasses
// panning; its gain is applied at the LFE speaker slot and downmixed.
type VBAPRendererLFEChannel struct {
	LFEGain      float32
	ID           uint32
	SpeakerGains []float32
	ChannelGains []float32
}

func NewVBAPRendererLFEChannel(speakerCount, channelCount int) *VBAPRendererLFEChannel {
	return &VBAPRendererLFEChannel{
		LFEGain:      1.0,
		SpeakerGains: make([]float32, speakerCount),
		ChannelGains: make([]float32, channelCount),
	}
}

func (c *VBAPRendererLFEChannel) SetGain(gain float32) error {
	if gain < 0.0 || gain > 1.0 {
		return ErrParameterOutOfBounds
	}
	c.LFEGain = gain
	return nil
}
