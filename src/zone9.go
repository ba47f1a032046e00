package iabrenderer

import "math"

/*------------------------------------------------------------------
 *
 * Purpose:	Object zone 9 control: the nine-region gain set an
 *		object sub-block may carry, applied to the rendered
 *		channel gains after VBAP and before smoothing.
 *
 *		Each output channel other than LFE belongs to exactly
 *		one zone, classified from its speaker direction at
 *		construction, so its coefficients over the nine zones
 *		sum to one; LFE belongs to no zone and passes through.
 *		Applying all-unity zone gains is the identity.
 *
 *----------------------------------------------------------------*/

// The nine object zones.
const (
	zoneScreenLeft = iota
	zoneScreenCenter
	zoneScreenRight
	zoneWallLeft
	zoneWallRight
	zoneRearLeft
	zoneRearRight
	zoneOverheadLeft
	zoneOverheadRight
	numObjectZones
)

// ObjectZone9 holds the per-zone, per-output-channel attenuation
// coefficients for one target configuration.
type ObjectZone9 struct {
	initialised bool

	// coefficients[zone][channel]
	coefficients [numObjectZones][]float32
}

// NewObjectZone9 classifies the configuration's physical speakers into
// the nine zones.  The LFE channel belongs to no zone and is never
// attenuated by zone gains.
func NewObjectZone9(config *RendererConfiguration) *ObjectZone9 {
	z := &ObjectZone9{}

	channelCount := config.PhysicalSpeakerCount()
	for zone := 0; zone < numObjectZones; zone++ {
		z.coefficients[zone] = make([]float32, channelCount)
	}

	lfeIndex := config.LFEOutputIndex()

	outputIndex := 0
	for i := range config.Speakers {
		s := &config.Speakers[i]
		if s.IsVirtual() {
			continue
		}
		idx := outputIndex
		outputIndex++

		if idx == lfeIndex {
			continue
		}

		zone := classifySpeakerZone(s.Position)
		z.coefficients[zone][idx] = 1.0
	}

	z.initialised = outputIndex == channelCount

	return z
}

// classifySpeakerZone assigns a speaker direction to one of the nine
// zones by azimuth and elevation.
func classifySpeakerZone(p Vector3) int {
	az := math.Atan2(float64(p.X), float64(p.Y)) * 180.0 / math.Pi
	el := math.Atan2(float64(p.Z), math.Sqrt(float64(p.X*p.X+p.Y*p.Y))) * 180.0 / math.Pi

	if el > 45.0 {
		if p.X < 0 {
			return zoneOverheadLeft
		}
		return zoneOverheadRight
	}

	absAz := math.Abs(az)
	switch {
	case absAz <= 15.0:
		return zoneScreenCenter
	case absAz <= 60.0:
		if az < 0 {
			return zoneScreenLeft
		}
		return zoneScreenRight
	case absAz <= 120.0:
		if az < 0 {
			return zoneWallLeft
		}
		return zoneWallRight
	default:
		if az < 0 {
			return zoneRearLeft
		}
		return zoneRearRight
	}
}

// IsInitialised reports whether the zone table covers the configuration.
func (z *ObjectZone9) IsInitialised() bool {
	return z.initialised
}

/*------------------------------------------------------------------
 *
 * Name:	ProcessZoneGains
 *
 * Purpose:	Scale rendered channel gains by the sub-block's zone
 *		gains: each channel is attenuated by the gain of the
 *		zone its speaker belongs to.  Absent zone gains leave
 *		the channel gains untouched.
 *
 *----------------------------------------------------------------*/

func (z *ObjectZone9) ProcessZoneGains(zoneGains ObjectZoneGain9, channelGains []float32) error {
	if !zoneGains.Present {
		return nil
	}
	if !z.initialised {
		return nil
	}
	if len(channelGains) != len(z.coefficients[0]) {
		return ErrBadArguments
	}

	for c := range channelGains {
		var scale float32
		var coverage float32
		for zone := 0; zone < numObjectZones; zone++ {
			coef := z.coefficients[zone][c]
			scale += zoneGains.Gains[zone] * coef
			coverage += coef
		}

		// Channels outside every zone (the LFE slot) pass through.
		if coverage > 0 {
			channelGains[c] *= scale
		}
	}

	return nil
}
