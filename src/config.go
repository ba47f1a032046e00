package iabrenderer

import (
	"fmt"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Renderer configuration: the target speaker layout,
 *		the VBAP hull triangulation and the derived lookup
 *		maps the renderer needs.
 *
 *		Parsing a configuration file into these structs is the
 *		caller's business (cmd/ shows a YAML loader).  The core
 *		only validates and derives.
 *
 *		Everything here is immutable after NewRendererConfiguration
 *		and may be shared by reference across renderer instances.
 *
 *----------------------------------------------------------------*/

// DownmixValue routes a (possibly virtual) speaker's gain to one
// configuration channel with a weight.
type DownmixValue struct {
	Channel     int
	Coefficient float32
}

// RenderSpeaker is one speaker of the target layout.
//
// A physical speaker has Channel >= 0 identifying its slot in the output
// buffer map.  A virtual speaker has Channel < 0 and a Downmix list
// routing its gain to physical channels; virtual speakers participate in
// hull completion but produce no output of their own.
type RenderSpeaker struct {
	Name     string
	Channel  int
	URI      string
	Position Vector3
	Downmix  []DownmixValue

	normalizedDownmix []DownmixValue
}

// IsVirtual reports whether the speaker downmixes into others rather
// than owning an output channel.
func (s *RenderSpeaker) IsVirtual() bool {
	return s.Channel < 0
}

// NormalizedDownmixValues returns the downmix list scaled so the
// coefficients sum to one.
func (s *RenderSpeaker) NormalizedDownmixValues() []DownmixValue {
	return s.normalizedDownmix
}

// RenderPatch is one triangle of the VBAP hull: three speaker indices
// into the configuration's total speaker list plus the precomputed basis
// matrix that maps a unit source vector to the triangle's gain
// coefficients.
type RenderPatch struct {
	S1, S2, S3 int
	Basis      Matrix3
}

// RendererConfiguration is the immutable setup input of a renderer.
type RendererConfiguration struct {
	// Speakers is the total ordered speaker list, physical and virtual.
	Speakers []RenderSpeaker

	// Patches triangulates the hull over Speakers indices.
	Patches []RenderPatch

	// Soundfield labels the target layout ("5.1", "7.1.4", ...).
	Soundfield string

	// Smoothing enables the per-sample gain ramp (on by default).
	Smoothing bool

	// Decorrelation enables object decorrelation per stream metadata.
	Decorrelation bool

	targetUseCase UseCaseType

	physicalCount int

	// lfeOutputIndex is the output channel of the LFE speaker, -1 if the
	// layout has none.
	lfeOutputIndex int

	// lfeSpeakerIndex is the LFE slot in the total speaker list, -1 if
	// the layout has none.
	lfeSpeakerIndex int

	// vbapSpeakerNames marks speakers that are a corner of some patch.
	vbapSpeakerNames map[string]bool

	// speakerURIToOutputIndex maps URIs of physical speakers to output
	// channel indices.
	speakerURIToOutputIndex map[string]int

	// speakerURIToSpeakerIndex maps URIs of all speakers (virtual ones
	// included) to indices into Speakers.
	speakerURIToSpeakerIndex map[string]int

	// speakerChannelToOutputIndex maps configuration channel numbers
	// (possibly sparse) to dense output buffer indices.
	speakerChannelToOutputIndex map[int]int
}

/*------------------------------------------------------------------
 *
 * Name:	NewRendererConfiguration
 *
 * Purpose:	Validate a speaker list plus hull triangulation and
 *		derive the renderer lookup maps.
 *
 *		Patch basis matrices are computed here, from the patch
 *		corner positions: the basis is the inverse of the
 *		matrix whose columns are the three (normalized) corner
 *		vectors, so that basis * source yields the barycentric
 *		gain coefficients.
 *
 *----------------------------------------------------------------*/

func NewRendererConfiguration(speakers []RenderSpeaker, patchCorners [][3]int, soundfield string) (*RendererConfiguration, error) {
	if len(speakers) == 0 {
		return nil, fmt.Errorf("%w: empty speaker list", ErrBadArguments)
	}

	cfg := &RendererConfiguration{
		Speakers:                    append([]RenderSpeaker(nil), speakers...),
		Soundfield:                  soundfield,
		Smoothing:                   true,
		Decorrelation:               true,
		lfeOutputIndex:              -1,
		lfeSpeakerIndex:             -1,
		vbapSpeakerNames:            make(map[string]bool),
		speakerURIToOutputIndex:     make(map[string]int),
		speakerURIToSpeakerIndex:    make(map[string]int),
		speakerChannelToOutputIndex: make(map[int]int),
	}

	if uc, ok := soundfieldToUseCase[soundfield]; ok {
		cfg.targetUseCase = uc
	}

	// Output index assignment: physical speakers take dense output slots
	// in list order.  Configuration channel numbers may be sparse; the
	// channel-to-output map bridges the two.
	outputIndex := 0
	for i := range cfg.Speakers {
		s := &cfg.Speakers[i]

		if s.IsVirtual() {
			if len(s.Downmix) == 0 {
				return nil, fmt.Errorf("%w: virtual speaker %q has no downmix", ErrBadArguments, s.Name)
			}
		} else {
			if _, dup := cfg.speakerChannelToOutputIndex[s.Channel]; dup {
				return nil, fmt.Errorf("%w: duplicate channel %d", ErrBadArguments, s.Channel)
			}
			cfg.speakerChannelToOutputIndex[s.Channel] = outputIndex
			if s.URI != "" {
				cfg.speakerURIToOutputIndex[s.URI] = outputIndex
			}
			if s.URI == speakerURILFE {
				cfg.lfeOutputIndex = outputIndex
				cfg.lfeSpeakerIndex = i
			}
			outputIndex++
		}

		if s.URI != "" {
			cfg.speakerURIToSpeakerIndex[s.URI] = i
		}

		// Physical speakers without an explicit downmix route to their
		// own channel with unit weight.
		if len(s.Downmix) == 0 {
			s.Downmix = []DownmixValue{{Channel: s.Channel, Coefficient: 1.0}}
		}
		s.normalizedDownmix = normalizeDownmix(s.Downmix)
	}
	cfg.physicalCount = outputIndex

	if cfg.physicalCount == 0 {
		return nil, fmt.Errorf("%w: no physical speakers", ErrBadArguments)
	}

	// Build patches with their basis matrices.
	for _, corners := range patchCorners {
		patch, err := cfg.newPatch(corners[0], corners[1], corners[2])
		if err != nil {
			return nil, err
		}
		cfg.Patches = append(cfg.Patches, patch)
		cfg.vbapSpeakerNames[cfg.Speakers[corners[0]].Name] = true
		cfg.vbapSpeakerNames[cfg.Speakers[corners[1]].Name] = true
		cfg.vbapSpeakerNames[cfg.Speakers[corners[2]].Name] = true
	}

	return cfg, nil
}

func (cfg *RendererConfiguration) newPatch(s1, s2, s3 int) (RenderPatch, error) {
	n := len(cfg.Speakers)
	if s1 < 0 || s1 >= n || s2 < 0 || s2 >= n || s3 < 0 || s3 >= n {
		return RenderPatch{}, fmt.Errorf("%w: patch corner out of range", ErrBadArguments)
	}

	a := r3FromVector3(cfg.Speakers[s1].Position).Normalize()
	b := r3FromVector3(cfg.Speakers[s2].Position).Normalize()
	c := r3FromVector3(cfg.Speakers[s3].Position).Normalize()

	inv, ok := columnBasis(a, b, c).inverse()
	if !ok {
		return RenderPatch{}, fmt.Errorf("%w: degenerate patch (%d %d %d)", ErrBadArguments, s1, s2, s3)
	}

	return RenderPatch{S1: s1, S2: s2, S3: s3, Basis: inv.narrow()}, nil
}

func normalizeDownmix(in []DownmixValue) []DownmixValue {
	var sum float32
	for _, d := range in {
		sum += d.Coefficient
	}
	out := make([]DownmixValue, len(in))
	copy(out, in)
	if sum > kEpsilon {
		for i := range out {
			out[i].Coefficient /= sum
		}
	}
	return out
}

// TotalSpeakerCount returns the speaker count including virtual speakers.
func (cfg *RendererConfiguration) TotalSpeakerCount() int {
	return len(cfg.Speakers)
}

// PhysicalSpeakerCount returns the number of output channels.
func (cfg *RendererConfiguration) PhysicalSpeakerCount() int {
	return cfg.physicalCount
}

// TargetUseCase returns the use case derived from the soundfield label.
func (cfg *RendererConfiguration) TargetUseCase() UseCaseType {
	return cfg.targetUseCase
}

// LFEOutputIndex returns the LFE output channel, or -1 when the layout
// has no LFE speaker.
func (cfg *RendererConfiguration) LFEOutputIndex() int {
	return cfg.lfeOutputIndex
}

// LFESpeakerIndex returns the LFE slot in the total speaker list, or -1
// when the layout has no LFE speaker.
func (cfg *RendererConfiguration) LFESpeakerIndex() int {
	return cfg.lfeSpeakerIndex
}

// IsVBAPSpeaker reports whether the named speaker is part of the hull
// triangulation.
func (cfg *RendererConfiguration) IsVBAPSpeaker(name string) bool {
	return cfg.vbapSpeakerNames[name]
}

// OutputIndexByChannel maps a configuration channel number to its output
// buffer index.
func (cfg *RendererConfiguration) OutputIndexByChannel(channel int) (int, bool) {
	idx, ok := cfg.speakerChannelToOutputIndex[channel]
	return idx, ok
}

// OutputIndexByURI maps a physical speaker URI to its output index.
func (cfg *RendererConfiguration) OutputIndexByURI(uri string) (int, bool) {
	idx, ok := cfg.speakerURIToOutputIndex[uri]
	return idx, ok
}

// SpeakerIndexByURI maps any speaker URI (virtual included) to its index
// in the total speaker list.
func (cfg *RendererConfiguration) SpeakerIndexByURI(uri string) (int, bool) {
	idx, ok := cfg.speakerURIToSpeakerIndex[uri]
	return idx, ok
}
