package iabrenderer

import "math"

/*------------------------------------------------------------------
 *
 * Purpose:	Canonical bed channel table: IAB channel ID to SMPTE
 *		URI (for matching configuration speakers) and to the
 *		channel's nominal VBAP position on the dome (for
 *		render-as-object when the target layout has no such
 *		speaker).
 *
 *----------------------------------------------------------------*/

// ChannelID is an IAB bed channel identifier.
type ChannelID uint16

const (
	ChannelIDLeft ChannelID = iota
	ChannelIDLeftCenter
	ChannelIDCenter
	ChannelIDRightCenter
	ChannelIDRight
	ChannelIDLeftSideSurround
	ChannelIDRightSideSurround
	ChannelIDLeftSurround
	ChannelIDRightSurround
	ChannelIDLeftRearSurround
	ChannelIDRightRearSurround
	ChannelIDLeftTopSurround
	ChannelIDRightTopSurround
	ChannelIDLFE
	ChannelIDLeftHeight
	ChannelIDRightHeight
	ChannelIDCenterHeight
	ChannelIDTopSurround
)

// speakerURILFE identifies the LFE channel in configuration files; LFE is
// excluded from panning and from snap.
const speakerURILFE = "urn:smpte:ul:060E2B34.0401010D.03020104.00000000"

// BedChannelInfo describes one canonical bed channel.
type BedChannelInfo struct {
	SpeakerName            string
	SpeakerURI             string
	SpeakerVBAPCoordinates Vector3
}

// positionFromDegrees converts nominal (azimuth, elevation) in degrees to
// a unit vector in the room-centred VBAP domain.  Azimuth is clockwise
// from front; elevation up from the horizontal plane.
func positionFromDegrees(azimuthDeg, elevationDeg float64) Vector3 {
	az := azimuthDeg * math.Pi / 180.0
	el := elevationDeg * math.Pi / 180.0
	return Vector3{
		X: float32(math.Cos(el) * math.Sin(az)),
		Y: float32(math.Cos(el) * math.Cos(az)),
		Z: float32(math.Sin(el)),
	}
}

// bedChannelInfoMap is the canonical channel table.  URIs follow the
// SMPTE ST 428-12 multichannel audio labels.
var bedChannelInfoMap = map[ChannelID]BedChannelInfo{
	ChannelIDLeft:              {"L", "urn:smpte:ul:060E2B34.0401010D.03020101.00000000", positionFromDegrees(-30, 0)},
	ChannelIDRight:             {"R", "urn:smpte:ul:060E2B34.0401010D.03020102.00000000", positionFromDegrees(30, 0)},
	ChannelIDCenter:            {"C", "urn:smpte:ul:060E2B34.0401010D.03020103.00000000", positionFromDegrees(0, 0)},
	ChannelIDLFE:               {"LFE", speakerURILFE, positionFromDegrees(0, 0)},
	ChannelIDLeftSurround:      {"LS", "urn:smpte:ul:060E2B34.0401010D.03020105.00000000", positionFromDegrees(-110, 0)},
	ChannelIDRightSurround:     {"RS", "urn:smpte:ul:060E2B34.0401010D.03020106.00000000", positionFromDegrees(110, 0)},
	ChannelIDLeftCenter:        {"LC", "urn:smpte:ul:060E2B34.0401010D.03020107.00000000", positionFromDegrees(-15, 0)},
	ChannelIDRightCenter:       {"RC", "urn:smpte:ul:060E2B34.0401010D.03020108.00000000", positionFromDegrees(15, 0)},
	ChannelIDLeftSideSurround:  {"LSS", "urn:smpte:ul:060E2B34.0401010D.03020109.00000000", positionFromDegrees(-90, 0)},
	ChannelIDRightSideSurround: {"RSS", "urn:smpte:ul:060E2B34.0401010D.0302010A.00000000", positionFromDegrees(90, 0)},
	ChannelIDLeftRearSurround:  {"LRS", "urn:smpte:ul:060E2B34.0401010D.0302010B.00000000", positionFromDegrees(-150, 0)},
	ChannelIDRightRearSurround: {"RRS", "urn:smpte:ul:060E2B34.0401010D.0302010C.00000000", positionFromDegrees(150, 0)},
	ChannelIDLeftTopSurround:   {"LTS", "urn:smpte:ul:060E2B34.0401010D.0302010D.00000000", positionFromDegrees(-90, 55)},
	ChannelIDRightTopSurround:  {"RTS", "urn:smpte:ul:060E2B34.0401010D.0302010E.00000000", positionFromDegrees(90, 55)},
	ChannelIDLeftHeight:        {"LH", "urn:smpte:ul:060E2B34.0401010D.0302010F.00000000", positionFromDegrees(-30, 36)},
	ChannelIDRightHeight:       {"RH", "urn:smpte:ul:060E2B34.0401010D.03020110.00000000", positionFromDegrees(30, 36)},
	ChannelIDCenterHeight:      {"CH", "urn:smpte:ul:060E2B34.0401010D.03020111.00000000", positionFromDegrees(0, 36)},
	ChannelIDTopSurround:       {"TS", "urn:smpte:ul:060E2B34.0401010D.03020112.00000000", positionFromDegrees(0, 90)},
}
