package iabrenderer

import "math"

/*------------------------------------------------------------------
 *
 * Purpose:	Interior panner: maps an object inside the dome onto
 *		one on-dome extended source (radius ~1) or three
 *		("triple-balance" decomposition): a left and a right
 *		source on the circle at the object's height plus a
 *		projected source at the original direction, with gains
 *		summing to one.
 *
 *----------------------------------------------------------------*/

// Normalized room side angles, degrees.
const (
	normSideFrontLeft  = -45.0
	normSideFrontRight = 45.0
	normSideRearLeft   = -135.0
	normSideRearRight  = 135.0
)

// inwardPanObjectZeroGain is the radius (0-100 scale, 100 = dome surface)
// where the gain of the projected third source reaches zero.  The value
// came out of listening tests for inward panning directionality.
const inwardPanObjectZeroGain = 75.0

// iabGainTableSize is the resolution of the 2D panner gain profile.
const iabGainTableSize = 201

// IABInterior converts interior object positions to VBAP extended
// sources.  The gain table maps the 2D panner x coordinate to linear
// gain with the sin/cos profile ProTools uses.
type IABInterior struct {
	gainTable [iabGainTableSize]float32
}

func NewIABInterior() *IABInterior {
	in := &IABInterior{}
	for i := 0; i < iabGainTableSize; i++ {
		in.gainTable[i] = float32(math.Sin(float64(i) / iabGainTableSize * math.Pi / 2.0))
	}
	return in
}

// newExtendedSource builds an on-dome extended source from polar
// coordinates.  Speaker and channel counts are not known here; the
// caller resizes the gain slices before rendering.
func newExtendedSource(elevation, azimuth, gain, aperture, divergence float32) (VBAPRendererExtendedSource, error) {
	el := float64(elevation)
	az := float64(azimuth)
	pos := Vector3{
		X: float32(math.Cos(el) * math.Sin(az)),
		Y: float32(math.Cos(el) * math.Cos(az)),
		Z: float32(math.Sin(el)),
	}

	source := NewVBAPRendererExtendedSource(0, 0)
	if err := source.SetGain(gain); err != nil {
		return source, err
	}
	if err := source.SetPosition(pos); err != nil {
		return source, err
	}
	if err := source.SetAperture(aperture); err != nil {
		return source, err
	}
	if err := source.SetDivergence(divergence); err != nil {
		return source, err
	}
	return source, nil
}

/*------------------------------------------------------------------
 *
 * Name:	MapExtendedSourceToVBAPExtendedSources
 *
 * Purpose:	Decompose an object at (azimuth, elevation, radius)
 *		into VBAP extended sources.
 *
 *		radius >= 1-eps: one source at the input direction.
 *		radius <  0:     error.
 *		otherwise:       left/right sources on the height
 *		circle plus the projected source, gains normalized to
 *		one.  When the right azimuth falls inside a side
 *		speaker wedge, the pair is clamped onto the wedge
 *		boundary and scaled, preventing hole-in-the-middle
 *		mid-side panning.
 *
 *		The output order (left, right, projected) is part of
 *		the contract.
 *
 *----------------------------------------------------------------*/

func (in *IABInterior) MapExtendedSourceToVBAPExtendedSources(azimuth, elevation, radius, aperture, divergence float32) ([]VBAPRendererExtendedSource, error) {
	// On or outside the dome surface: a single on-dome source.
	if radius >= 1.0-kEpsilon {
		source, err := newExtendedSource(elevation, azimuth, 1.0, aperture, divergence)
		if err != nil {
			return nil, err
		}
		return []VBAPRendererExtendedSource{source}, nil
	}

	if radius < 0.0 {
		return nil, ErrInvalidRadius
	}

	az := float64(azimuth)
	el := float64(elevation)
	r := float64(radius)

	// Radius of the 2D circle at the object's height.
	height := r * math.Sin(el)
	rCircle := math.Sqrt(1 - height*height)

	// Project the object onto that circle.
	rObj := r * math.Cos(el)
	y1 := rObj * math.Cos(az)
	x1 := rObj * math.Sin(az)

	if x1 > rCircle {
		x1 = rCircle
	} else if x1 < -rCircle {
		x1 = -rCircle
	}
	if y1 > rCircle {
		y1 = rCircle
	} else if y1 < -rCircle {
		y1 = -rCircle
	}

	// Right intersection of the horizontal line at y1 with the circle.
	xRight := math.Sqrt(rCircle*rCircle - y1*y1)

	rAzimuth := math.Atan2(xRight, y1)
	lAzimuth := -rAzimuth

	lElevation := math.Atan2(height, rCircle)
	if lElevation > math.Pi/2.0 {
		lElevation = math.Pi / 2.0
	}
	rElevation := lElevation

	// Right gain from the distance of the object to the right
	// intersection, scaled by the length of the horizontal chord.
	var gainTableIndex int
	if xRight > kEpsilon {
		gainTableIndex = int(((xRight + x1) / (2.0 * xRight)) * iabGainTableSize)
	} else {
		gainTableIndex = iabGainTableSize / 2
	}
	if gainTableIndex < 0 {
		gainTableIndex = 0
	} else if gainTableIndex >= iabGainTableSize {
		gainTableIndex = iabGainTableSize - 1
	}

	rGain := float64(in.gainTable[gainTableIndex])
	lGain := float64(in.gainTable[iabGainTableSize-1-gainTableIndex])

	gainSum := lGain + rGain
	rGain *= 1.0 / gainSum
	lGain *= 1.0 / gainSum

	// Third object for triple-balanced panning at the original direction,
	// fading out linearly towards the interior.
	pAzimuth := az
	pElevation := el
	pGain := ((100.0 * r) - inwardPanObjectZeroGain) / (100.0 - inwardPanObjectZeroGain)
	if pGain < 0.0 {
		pGain = 0.0
	}

	nsfl := normSideFrontLeft * math.Pi / 180.0
	nsfr := normSideFrontRight * math.Pi / 180.0
	nsrl := normSideRearLeft * math.Pi / 180.0
	nsrr := normSideRearRight * math.Pi / 180.0

	// Restrict side objects to the normalized room side speaker wedges.
	if rAzimuth < nsfr {
		rGain *= rAzimuth / nsfr
		lGain *= rAzimuth / nsfr

		rAzimuth = nsfr
		lAzimuth = nsfl
	} else if rAzimuth > nsrr {
		rGain *= (math.Pi - rAzimuth) / (math.Pi - nsrr)
		lGain *= (math.Pi - rAzimuth) / (math.Pi - nsrr)

		rAzimuth = nsrr
		lAzimuth = nsrl
	}

	// Renormalize with the third object included.
	gainSum = lGain + rGain + pGain
	pGain *= 1.0 / gainSum
	lGain *= 1.0 / gainSum
	rGain *= 1.0 / gainSum

	// Negative gain is not allowed in an extended source.
	if lGain < 0.0 {
		lGain = 0.0
	}
	if rGain < 0.0 {
		rGain = 0.0
	}

	// Order matters: left, right, projected.
	out := make([]VBAPRendererExtendedSource, 0, 3)

	left, err := newExtendedSource(float32(lElevation), float32(lAzimuth), float32(lGain), aperture, divergence)
	if err != nil {
		return nil, err
	}
	out = append(out, left)

	right, err := newExtendedSource(float32(rElevation), float32(rAzimuth), float32(rGain), aperture, divergence)
	if err != nil {
		return nil, err
	}
	out = append(out, right)

	projected, err := newExtendedSource(float32(pElevation), float32(pAzimuth), float32(pGain), aperture, divergence)
	if err != nil {
		return nil, err
	}
	out = append(out, projected)

	return out, nil
}
