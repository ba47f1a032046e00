package iabrenderer

/*------------------------------------------------------------------
 *
 * Purpose:	In-memory model of the frame sub-elements the core
 *		consumes.  Bitstream parsing happens upstream; these
 *		structs are what a parser (or a test) hands to
 *		RenderFrame.
 *
 *		The sub-element set is a closed sum: ObjectDefinition,
 *		BedDefinition, BedRemap, AudioDataDLC, AudioDataPCM and
 *		ObjectZoneDefinition19.  Exhaustive type switches in
 *		renderer.go replace the dynamic casts of the reference
 *		implementation.
 *
 *----------------------------------------------------------------*/

// UseCaseType identifies a target playback context used for conditional
// element activation.
type UseCaseType int

const (
	UseCaseNoUseCase UseCaseType = iota
	UseCase5_1
	UseCase7_1
	UseCase7_1_4
	UseCase9_1
	UseCase11_1
	UseCase13_1
	UseCaseAlways
)

// soundfieldToUseCase maps the configuration soundfield labels to use
// cases for activation gating.
var soundfieldToUseCase = map[string]UseCaseType{
	"5.1":    UseCase5_1,
	"7.1":    UseCase7_1,
	"7.1.4":  UseCase7_1_4,
	"9.1OH":  UseCase9_1,
	"11.1HT": UseCase11_1,
	"13.1HT": UseCase13_1,
}

// DecorCoefPrefix is the object decorrelation mode carried per sub-block.
type DecorCoefPrefix uint8

const (
	DecorCoefPrefixNoDecor  DecorCoefPrefix = 0
	DecorCoefPrefixMaxDecor DecorCoefPrefix = 1
	// Values >= 2 select explicit coefficients; not supported in v1 and
	// treated as no decorrelation.
)

// SpreadMode distinguishes the spread encodings of a sub-block.
type SpreadMode uint8

const (
	SpreadModeNone             SpreadMode = 0
	SpreadModeLowResolution1D  SpreadMode = 1
	SpreadModeHighResolution1D SpreadMode = 2
	SpreadModeHighResolution3D SpreadMode = 3
)

// CartesianPosInUnitCube is an object position in program space:
// (x, y, z) in [0,1]^3 with the origin at the front-left-floor corner.
type CartesianPosInUnitCube struct {
	X, Y, Z float32
}

// SetPosition validates and stores a unit-cube position.
func (p *CartesianPosInUnitCube) SetPosition(x, y, z float32) error {
	if x < 0.0 || x > 1.0 || y < 0.0 || y > 1.0 || z < 0.0 || z > 1.0 {
		return ErrCoordinateRange
	}
	p.X, p.Y, p.Z = x, y, z
	return nil
}

// ObjectSnap carries the per-sub-block snap parameter.  The tolerance is
// the 12-bit quantized field from the stream; 0 disables snap.
type ObjectSnap struct {
	Present   bool
	Tolerance uint16
}

// ObjectSpread carries the per-sub-block spread (size) parameters.
type ObjectSpread struct {
	Mode      SpreadMode
	SpreadXYZ float32
	SpreadY   float32
	SpreadZ   float32
}

// ObjectZoneGain9 carries the nine zone gains of a sub-block, if present.
type ObjectZoneGain9 struct {
	Present bool
	Gains   [9]float32
}

// ObjectSubBlock is the pan metadata of one object over one sub-block.
// PanInfoExists is always true for the first sub-block of an object; for
// the rest the previous block's values carry forward when false.
type ObjectSubBlock struct {
	PanInfoExists bool
	Gain          float32
	Position      CartesianPosInUnitCube
	Snap          ObjectSnap
	Spread        ObjectSpread
	DecorCoef     DecorCoefPrefix
	ZoneGains     ObjectZoneGain9
}

// FrameSubElement is the closed sum of element types a frame may carry.
type FrameSubElement interface {
	isFrameSubElement()
}

// ObjectDefinition is a renderable audio object with per-sub-block pan
// metadata.  Child ObjectDefinitions implement conditional rendering: at
// most one active child replaces the parent.
type ObjectDefinition struct {
	MetaID      uint32
	AudioDataID uint32
	Conditional bool
	UseCase     UseCaseType
	PanSubBlocks []*ObjectSubBlock
	SubElements  []FrameSubElement
}

func (*ObjectDefinition) isFrameSubElement() {}

// BedChannel is one channel of a bed: an IAB channel ID, a scalar gain
// and a reference into the frame's audio assets.
type BedChannel struct {
	ChannelID   ChannelID
	AudioDataID uint32
	Gain        float32
}

// BedDefinition is a channel bed.  At most one active BedDefinition child
// replaces the parent; an active BedRemap child renders the parent's
// channels through its remap matrix instead.
type BedDefinition struct {
	MetaID      uint32
	Conditional bool
	UseCase     UseCaseType
	Channels    []*BedChannel
	SubElements []FrameSubElement
}

func (*BedDefinition) isFrameSubElement() {}

// RemapCoeff holds the remap coefficients from every source channel to
// one destination channel.
type RemapCoeff struct {
	DestinationChannelID ChannelID
	Coeffs               []float32 // indexed by source channel
}

// RemapSubBlock is the remap matrix over one sub-block.  The matrix of
// the previous block carries forward when RemapInfoExists is false; the
// first sub-block always carries one.
type RemapSubBlock struct {
	RemapInfoExists bool
	Coeffs          []*RemapCoeff // one per destination channel
}

// BedRemap re-expresses a parent bed's source channels as a different
// destination channel set via per-sub-block coefficient matrices.
type BedRemap struct {
	MetaID              uint32
	UseCase             UseCaseType
	SourceChannels      uint16
	DestinationChannels uint16
	SubBlocks           []*RemapSubBlock
}

func (*BedRemap) isFrameSubElement() {}

// AudioDataPCM is an unpacked PCM audio asset.
type AudioDataPCM struct {
	AudioDataID uint32
	SampleRate  SampleRate
	Samples     []int32
}

func (*AudioDataPCM) isFrameSubElement() {}

// UnpackPCMToMonoSamples copies the asset samples into dest.
func (p *AudioDataPCM) UnpackPCMToMonoSamples(dest []int32, count uint32) error {
	if uint32(len(p.Samples)) < count || uint32(len(dest)) < count {
		return ErrBadArguments
	}
	copy(dest[:count], p.Samples[:count])
	return nil
}

// DLCDecoder decodes a DLC-coded asset to mono PCM at the target sample
// rate.  Decoding is an external collaborator concern; the core only
// drives this interface.
type DLCDecoder interface {
	DecodeDLCToMonoPCM(dest []int32, count uint32, targetSampleRate SampleRate) error
}

// AudioDataDLC is a DLC-coded audio asset with a pluggable decoder.
type AudioDataDLC struct {
	AudioDataID uint32
	SampleRate  SampleRate
	Decoder     DLCDecoder
}

func (*AudioDataDLC) isFrameSubElement() {}

// ObjectZoneDefinition19 is the reserved 19-zone element.  The render
// path exists but reports ErrNotImplemented so that inadvertent reliance
// is caught rather than silently ignored.
type ObjectZoneDefinition19 struct {
	MetaID uint32
}

func (*ObjectZoneDefinition19) isFrameSubElement() {}

// Frame is one immutable program frame: rates plus the ordered set of
// sub-elements (objects, beds and audio assets).
type Frame struct {
	FrameRate   FrameRate
	SampleRate  SampleRate
	SubElements []FrameSubElement
}
