package iabrenderer

import (
	"math"

	"github.com/golang/geo/r3"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Coordinate transforms between the program's unit-cube
 *		space and the spherical/Cartesian domain of the VBAP
 *		panner.
 *
 *		Forward ("shoebox"): unit-cube position -> (azimuth,
 *		elevation, radius) against a normalized theatrical 7.1
 *		room model, blending a mid-height speaker plane into
 *		the ceiling plane as the object rises.
 *
 *		Inverse ("pyra-mesa"): dome position -> unit cube, by
 *		accumulating over a pyramidal/mesa patch partition of
 *		the sphere.  The patch tables are derived at
 *		construction from the forward transform, so positions
 *		on patch anchors round-trip exactly.
 *
 *		1D spread -> aperture uses the empirical MDA curve.
 *
 *----------------------------------------------------------------*/

// Normalized room corner locations, in order Left_Front_Low,
// Right_Front_Low, Left_Rear_Low, Right_Rear_Low, then the same four
// high.
const (
	roomCornerLeftFrontBottom = iota
	roomCornerRightFrontBottom
	roomCornerLeftRearBottom
	roomCornerRightRearBottom
	roomCornerLeftFrontTop
	roomCornerRightFrontTop
	roomCornerLeftRearTop
	roomCornerRightRearTop
	numRoomCornerCoordinates
)

// Normalized room speaker locations.  The transform algorithm assumes
// top speakers are in the same order as bottom speakers, offset by
// normRoomSpeakersFloor.
const (
	roomLeftFrontSpeakerBottom = iota
	roomRightFrontSpeakerBottom
	roomLeftRearSpeakerBottom
	roomRightRearSpeakerBottom
	roomLeftFrontSideSpeakerBottom
	roomRightFrontSideSpeakerBottom
	roomLeftRearSideSpeakerBottom
	roomRightRearSideSpeakerBottom
	roomLeftFrontSpeakerTop
	roomRightFrontSpeakerTop
	roomLeftRearSpeakerTop
	roomRightRearSpeakerTop
	roomLeftFrontSideSpeakerTop
	roomRightFrontSideSpeakerTop
	roomLeftRearSideSpeakerTop
	roomRightRearSideSpeakerTop
	numRoomSpeakerCoordinates
)

// normRoomListenerLocation - distance from front of room to listener for
// a room depth of 2.0; the listener sits at room centre.
const normRoomListenerLocation = 1.0

// normRoomSpeakersFloor - speakers in the floor half of the room struct.
const normRoomSpeakersFloor = 8

// Room corner (azimuth, elevation) pairs in degrees.
var normRoomCornerCoordinates = [numRoomCornerCoordinates][2]float64{
	{-37.5, 0.0},
	{37.5, 0.0},
	{-142.5, 0.0},
	{142.5, 0.0},
	{-37.5, 25.97},
	{37.5, 25.97},
	{-142.5, 25.97},
	{142.5, 25.97},
}

// Theatrical 7.1 normalized room speaker (azimuth, elevation) pairs.
var normRoomSpeakerCoordinatesTheatrical = [numRoomSpeakerCoordinates][2]float64{
	{-30.0, 0.0}, // speaker boundaries, z = 0
	{30.0, 0.0},
	{-150.0, 0.0},
	{150.0, 0.0},

	{-45.0, 0.0}, // speaker side wall boundaries, z = 0
	{45.0, 0.0},
	{-135.0, 0.0},
	{135.0, 0.0},

	{-24.79, 35.99}, // ceiling corner speakers
	{24.79, 35.99},
	{-155.21, 35.99},
	{155.21, 35.99},

	{-24.79, 35.99}, // side wall boundaries at ceiling, same locations
	{24.79, 35.99},
	{-155.21, 35.99},
	{155.21, 35.99},
}

// Mid-height (z=50) plane speaker pairs.  The mid-plane elevation maps
// the middle of the side walls to the height speakers.
var normRoomSpeakerCoordinatesTheatricalMidPlane = [numRoomSpeakerCoordinates][2]float64{
	{-30.0, 0.0},
	{30.0, 0.0},
	{-150.0, 0.0},
	{150.0, 0.0},

	{-45.0, 0.0},
	{45.0, 0.0},
	{-135.0, 0.0},
	{135.0, 0.0},

	{-30.0, 21.0}, // speaker boundaries for mid-plane locations
	{30.0, 21.0},
	{-150.0, 21.0},
	{150.0, 21.0},

	{-45.0, 22.2}, // side wall boundaries, z = 50
	{45.0, 22.2},
	{-135.0, 22.2},
	{135.0, 22.2},
}

// pyraMesaPatch is one patch of the sphere partition used by the inverse
// transform: a basis in the MDA (dome) domain, a basis in the IAB (cube)
// domain, the patch plane normal and the projection constant V.n.
type pyraMesaPatch struct {
	mdaInvBasis           matrix3f64
	iabBasis              matrix3f64
	normal                r3.Vector
	basisNormalProjection float64
}

// IABTransform holds the precomputed room model and pyra-mesa patch
// tables.  Built once; immutable and shareable afterwards.
type IABTransform struct {
	roomCorners          [numRoomCornerCoordinates][3]float64
	roomSpeakers         [numRoomSpeakerCoordinates][3]float64
	roomSpeakersMidPlane [numRoomSpeakerCoordinates][3]float64
	roomListenerLocation float64

	// Y (PT automation units) position of front and rear side speakers.
	yFrontSideSpeaker float64
	yRearSideSpeaker  float64

	patches []pyraMesaPatch
}

// NewIABTransform builds the shoebox room model and derives the
// pyra-mesa conversion tables.
func NewIABTransform() *IABTransform {
	t := &IABTransform{}
	t.initShoeboxTransform()
	t.initPyraMesaConversionTables()
	return t
}

func (t *IABTransform) initShoeboxTransform() {
	t.roomListenerLocation = normRoomListenerLocation
	t.yFrontSideSpeaker = 75
	t.yRearSideSpeaker = -75

	// Cartesian room corners from the normalized room coordinates and
	// listener position.
	for i := 0; i < numRoomCornerCoordinates; i++ {
		az := normRoomCornerCoordinates[i][0]
		el := normRoomCornerCoordinates[i][1]

		var cx, cy float64
		if az <= 90.0 && az >= -90.0 {
			// In front of listener: y is the room centre line.
			cy = t.roomListenerLocation
			cx = cy * math.Tan(az*math.Pi/180.0)
		} else {
			// Behind the listener.
			cy = -(2.0 - t.roomListenerLocation)
			cx = cy * math.Tan(az*math.Pi/180.0)
		}
		rh := math.Sqrt(cx*cx + cy*cy)
		cz := rh * math.Tan(el*math.Pi/180.0)

		t.roomCorners[i] = [3]float64{cx, cy, cz}
	}

	// Cartesian speaker locations.  Speakers at listener height sit on
	// the walls; ceiling speakers are projected back onto the ceiling
	// plane along the ray from the origin.
	for i := 0; i < numRoomSpeakerCoordinates; i++ {
		az := normRoomSpeakerCoordinatesTheatrical[i][0]
		el := normRoomSpeakerCoordinatesTheatrical[i][1]

		var cx, cy float64
		if az <= 90.0 && az >= -90.0 {
			cy = t.roomListenerLocation
			cx = cy * math.Tan(az*math.Pi/180.0)
		} else {
			cy = -(2.0 - t.roomListenerLocation)
			cx = cy * math.Tan(az*math.Pi/180.0)
		}
		rh := math.Sqrt(cx*cx + cy*cy)
		cz := rh * math.Tan(el*math.Pi/180.0)

		if el > 0.0 {
			// Intersect the ray (0,0,0)->(cx,cy,cz) with the plane of the
			// top room corners, solved as a 3x3 linear system.
			lft := t.roomCorners[roomCornerLeftFrontTop]
			rft := t.roomCorners[roomCornerRightFrontTop]
			lrt := t.roomCorners[roomCornerLeftRearTop]

			a := matrix3f64{
				{cx, lft[0] - rft[0], lrt[0] - lft[0]},
				{cy, lft[1] - rft[1], lrt[1] - lft[1]},
				{cz, lft[2] - rft[2], lrt[2] - lft[2]},
			}
			if aInv, ok := a.inverse(); ok {
				b := r3.Vector{X: cx - lft[0], Y: cy - lft[1], Z: cz - lft[2]}
				c := aInv.mulVec(b)
				scale := 1 - c.X
				cx *= scale
				cy *= scale
				cz *= scale
			}
		}

		t.roomSpeakers[i] = [3]float64{cx, cy, cz}
	}

	// Mid-plane corners.  The mid-plane table represents the lower half
	// of the room; its top rows replace the floor rows of roomSpeakers
	// so that roomSpeakers represents the upper half.
	for i := 0; i < numRoomSpeakerCoordinates; i++ {
		az := normRoomSpeakerCoordinatesTheatricalMidPlane[i][0]
		el := normRoomSpeakerCoordinatesTheatricalMidPlane[i][1]

		var cx, cy float64
		if az <= 90.0 && az >= -90.0 {
			cy = t.roomListenerLocation
			cx = cy * math.Tan(az*math.Pi/180.0)
		} else {
			cy = -(2.0 - t.roomListenerLocation)
			cx = cy * math.Tan(az*math.Pi/180.0)
		}
		rh := math.Sqrt(cx*cx + cy*cy)
		cz := rh * math.Tan(el*math.Pi/180.0)

		t.roomSpeakersMidPlane[i] = [3]float64{cx, cy, cz}

		if i >= normRoomSpeakersFloor {
			t.roomSpeakers[i-normRoomSpeakersFloor] = [3]float64{cx, cy, cz}
		}
	}
}

/*------------------------------------------------------------------
 *
 * Name:	initPyraMesaConversionTables
 *
 * Purpose:	Derive the pyra-mesa patch bases from the forward
 *		transform.
 *
 *		Anchor columns sit at the eight compass points of the
 *		cube walls, with rings at z = 0, 0.5 and 1 plus the
 *		ceiling apex.  Each anchor pairs a cube-surface point
 *		with the unit direction the shoebox transform maps it
 *		to, which makes the inverse exact at every anchor.
 *
 *----------------------------------------------------------------*/

func (t *IABTransform) initPyraMesaConversionTables() {
	// Room-centre (x, y) of the anchor columns, in azimuth order.
	columns := [8][2]float64{
		{0, 1},   // front centre
		{1, 1},   // front right corner
		{1, 0},   // right side
		{1, -1},  // rear right corner
		{0, -1},  // rear centre
		{-1, -1}, // rear left corner
		{-1, 0},  // left side
		{-1, 1},  // front left corner
	}
	rings := [3]float64{0.0, 0.5, 1.0}

	// cube anchor points and their dome directions
	var cube [8][3]r3.Vector
	var dome [8][3]r3.Vector

	for c := 0; c < 8; c++ {
		for r := 0; r < 3; r++ {
			x := columns[c][0]
			y := columns[c][1]
			z := rings[r]
			cube[c][r] = r3.Vector{X: x, Y: y, Z: z}

			az, el, _ := t.shoeboxTransform(x*100.0, y*100.0, z*100.0)
			dome[c][r] = r3.Vector{
				X: math.Cos(el) * math.Sin(az),
				Y: math.Cos(el) * math.Cos(az),
				Z: math.Sin(el),
			}
		}
	}

	apexCube := r3.Vector{X: 0, Y: 0, Z: 1}
	apexDome := r3.Vector{X: 0, Y: 0, Z: 1}

	addPatch := func(m1, m2, m3, v1, v2, v3 r3.Vector) {
		inv, ok := columnBasis(m1, m2, m3).inverse()
		if !ok {
			// Degenerate anchor triple; the neighbouring patches cover it.
			return
		}
		normal := v2.Sub(v1).Cross(v3.Sub(v1)).Normalize()
		t.patches = append(t.patches, pyraMesaPatch{
			mdaInvBasis:           inv,
			iabBasis:              columnBasis(v1, v2, v3),
			normal:                normal,
			basisNormalProjection: v1.Dot(normal),
		})
	}

	// Wall strips: two triangles per column pair per ring pair.
	for c := 0; c < 8; c++ {
		n := (c + 1) % 8
		for r := 0; r < 2; r++ {
			addPatch(dome[c][r], dome[n][r], dome[n][r+1],
				cube[c][r], cube[n][r], cube[n][r+1])
			addPatch(dome[c][r], dome[n][r+1], dome[c][r+1],
				cube[c][r], cube[n][r+1], cube[c][r+1])
		}
	}

	// Ceiling fan from the apex over the top ring.
	for c := 0; c < 8; c++ {
		n := (c + 1) % 8
		addPatch(apexDome, dome[c][2], dome[n][2],
			apexCube, cube[c][2], cube[n][2])
	}
}

// toRoomCenterOrigin shifts the origin from the front-left corner to the
// centre of the floor.  No change in the height dimension.
func toRoomCenterOrigin(xIn, yIn, zIn float64) (x, y, z float64) {
	return 2.0*xIn - 1, 1 - 2.0*yIn, zIn
}

/*------------------------------------------------------------------
 *
 * Name:	TransformIABToSphericalVBAP
 *
 * Purpose:	Transform an IAB object position in unit-cube room
 *		coordinates to VBAP polar coordinates.
 *
 * Inputs:	x, y, z	- IAB position, each in [0, 1]
 *
 * Returns:	azimuth and elevation in radians, and the radius as
 *		converted and unconstrained (1.0 = on the dome).
 *
 *----------------------------------------------------------------*/

func (t *IABTransform) TransformIABToSphericalVBAP(x, y, z float32) (azimuth, elevation, radius float32, err error) {
	if x < 0.0 || x > 1.0 || y < 0.0 || y > 1.0 || z < 0.0 || z > 1.0 {
		return 0, 0, 0, ErrCoordinateRange
	}

	cx, cy, cz := toRoomCenterOrigin(float64(x), float64(y), float64(z))

	// The shoebox algorithm is retained from the reference in ProTools
	// automation data range, [-100, 100].
	az, el, r := t.shoeboxTransform(cx*100.0, cy*100.0, cz*100.0)

	return float32(az), float32(el), float32(r), nil
}

// TransformIABToCartesianVBAP composes the spherical transform with a
// polar to Cartesian conversion.
func (t *IABTransform) TransformIABToCartesianVBAP(x, y, z float32) (Vector3, error) {
	az, el, r, err := t.TransformIABToSphericalVBAP(x, y, z)
	if err != nil {
		return Vector3{}, err
	}

	azf := float64(az)
	elf := float64(el)
	rf := float64(r)
	return Vector3{
		X: float32(rf * math.Cos(elf) * math.Sin(azf)),
		Y: float32(rf * math.Cos(elf) * math.Cos(azf)),
		Z: float32(rf * math.Sin(elf)),
	}, nil
}

/*------------------------------------------------------------------
 *
 * Name:	TransformIAB1DSpreadToVBAPExtent
 *
 * Purpose:	Transform IAB 1D spread to the VBAP extent pair.  The
 *		curve is based on empirical MDA test data; divergence
 *		is locked to 0 for 1D spread.
 *
 *----------------------------------------------------------------*/

func (t *IABTransform) TransformIAB1DSpreadToVBAPExtent(spreadXYZ float32) (aperture, divergence float32, err error) {
	if spreadXYZ < 0.0 || spreadXYZ > 1.0 {
		return 0, 0, ErrSpreadRange
	}

	s := float64(spreadXYZ)
	var a float64
	if s < 0.5 {
		a = s / 2.0 * math.Pi
	} else {
		a = (s/2.0 + (s - 0.5)) * math.Pi
	}

	return float32(a), 0, nil
}

/*------------------------------------------------------------------
 *
 * Name:	TransformCartesianVBAPToIAB
 *
 * Purpose:	Inverse conversion: a speaker position in the VBAP
 *		Cartesian domain back to unit-cube IAB coordinates.
 *
 *		The position is resolved against every pyra-mesa patch
 *		it intersects.  A boundary hit (exactly two significant
 *		basis components) contributes half; a vertex hit ends
 *		the search.  The accumulated cube positions are
 *		averaged, shifted to the corner-relative ST 2098-2
 *		origin and clamped to [0, 1].
 *
 *----------------------------------------------------------------*/

func (t *IABTransform) TransformCartesianVBAPToIAB(v Vector3) (x, y, z float32, err error) {
	count := 0.0
	iabPos := r3.Vector{}
	mdaPos := r3FromVector3(v)

	for i := range t.patches {
		p := &t.patches[i]

		// Coordinates of the position within the patch basis.
		coefs := p.mdaInvBasis.mulVec(mdaPos)

		// The position intersects the patch only if all coordinates are
		// non-negative within epsilon.
		if coefs.X < -kEpsilon || coefs.Y < -kEpsilon || coefs.Z < -kEpsilon {
			continue
		}

		numSignificant := 0
		if coefs.X > kEpsilon {
			numSignificant++
		}
		if coefs.Y > kEpsilon {
			numSignificant++
		}
		if coefs.Z > kEpsilon {
			numSignificant++
		}

		// Map the basis coordinates into the IAB domain and project onto
		// the cube surface along the patch normal.
		coefs = p.iabBasis.mulVec(coefs)

		cn := coefs.Dot(p.normal)
		if cn == 0 {
			continue
		}
		coefs = coefs.Mul(p.basisNormalProjection / cn)

		if numSignificant == 2 {
			// Boundary between two patches; count the contribution once.
			iabPos = iabPos.Add(coefs.Mul(0.5))
			count += 0.5
		} else {
			iabPos = iabPos.Add(coefs)
			count++
		}

		// A vertex hit is final.
		if numSignificant == 1 {
			break
		}
	}

	if count == 0 {
		return 0, 0, 0, ErrCoordinateConversion
	}

	iabPos = iabPos.Mul(1.0 / count)

	// Room-centred to corner-relative, clamped to the unit cube.
	ox := clampF64((iabPos.X+1)/2, 0.0, 1.0)
	oy := clampF64((-iabPos.Y+1)/2, 0.0, 1.0)
	oz := clampF64(iabPos.Z, 0.0, 1.0)

	return float32(ox), float32(oy), float32(oz), nil
}

func clampF64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

/*------------------------------------------------------------------
 *
 * Name:	shoeboxTransform
 *
 * Purpose:	The transform core, as carried over from the creator
 *		plugin processor.  Input position in [-100, 100]
 *		automation units; output azimuth/elevation in radians
 *		plus the unconstrained radius.
 *
 *----------------------------------------------------------------*/

func (t *IABTransform) shoeboxTransform(frontPos, frPos, zPos float64) (azimuth, elevation, radius float64) {
	var scaled [numRoomSpeakerCoordinates][3]float64

	// scale back to -1 .. 1
	x := frontPos / 100.0
	y := frPos / 100.0
	z := zPos / 100.0

	// Scale speaker coordinates to the height of the object: below the
	// mid plane the floor/mid tables apply, above it the mid/ceiling
	// tables blend.
	for i := 0; i < numRoomSpeakerCoordinates; i++ {
		if i < normRoomSpeakersFloor {
			if z <= 0.5 {
				scaled[i] = t.roomSpeakersMidPlane[i]
			} else {
				scaled[i] = t.roomSpeakers[i]
			}
		} else {
			if z <= 0.5 {
				f := (0.5 - z) / 0.5
				scaled[i][0] = t.roomSpeakersMidPlane[i][0] + f*(t.roomSpeakersMidPlane[i-normRoomSpeakersFloor][0]-t.roomSpeakersMidPlane[i][0])
				scaled[i][1] = t.roomSpeakersMidPlane[i][1] + f*(t.roomSpeakersMidPlane[i-normRoomSpeakersFloor][1]-t.roomSpeakersMidPlane[i][1])
				scaled[i][2] = t.roomSpeakersMidPlane[i][2] * (z / 0.5)
			} else {
				f := (1.0 - z) / 0.5
				scaled[i][0] = t.roomSpeakers[i][0] + f*(t.roomSpeakers[i-normRoomSpeakersFloor][0]-t.roomSpeakers[i][0])
				scaled[i][1] = t.roomSpeakers[i][1] + f*(t.roomSpeakers[i-normRoomSpeakersFloor][1]-t.roomSpeakers[i][1])
				scaled[i][2] = t.roomSpeakers[i-normRoomSpeakersFloor][2] +
					(t.roomSpeakers[i][2]-t.roomSpeakers[i-normRoomSpeakersFloor][2])*((z-0.5)/0.5)
			}
		}
	}

	var x1, y1, z1 float64

	// Scale x and y to the plane defined by the speaker coordinates.
	// Assumes the room is left/right symmetric.
	if y >= 0 {
		// Is the object in front of the side speaker wedge (the line from
		// side speaker to listener)?
		slope := 0.0
		sinf := false
		xabs := math.Abs(x)
		if xabs != 0 {
			slope = y / xabs
		} else {
			sinf = true
		}

		// Slope of side speaker to listener, scaled towards the corner as
		// z approaches the ceiling.
		ySide := t.yFrontSideSpeaker / 100.0
		if z > 0.5 {
			ySide = ySide + (1.0-ySide)*((z-0.5)*2)
		}

		ys1 := scaled[roomRightFrontSideSpeakerTop][1]
		xs1 := scaled[roomRightFrontSideSpeakerTop][0]
		ys2 := scaled[roomRightFrontSpeakerTop][1]
		xs2 := scaled[roomRightFrontSpeakerTop][0]

		if slope >= 1.0 || sinf {
			y1 = y * ys2
			x1 = x * xs2
			z1 = scaled[roomRightFrontSpeakerTop][2]
		} else if slope >= ySide {
			// In front of the line from side speaker to listener.
			y1 = xabs * ys2

			if 1.0-ySide != 0.0 {
				x1 = x*xs2 + (x*(1-slope))*((xs1-xs2)/(1.0-ySide))
				z1 = ((slope-ySide)/(1.0-ySide))*scaled[roomRightFrontSpeakerTop][2] +
					(1-((slope-ySide)/(1.0-ySide)))*scaled[roomRightFrontSideSpeakerTop][2]
			} else {
				x1 = x * xs1
				z1 = scaled[roomRightFrontSpeakerTop][2]
			}
		} else {
			// Behind the side speaker line but in front of the listener.
			y1 = (y / ySide) * ys1
			x1 = x * xs1
			z1 = scaled[roomRightFrontSideSpeakerTop][2]
		}
	} else {
		slope := 0.0
		sinf := false
		xabs := math.Abs(x)
		if xabs > kEpsilon {
			slope = -y / xabs
		} else {
			sinf = true
		}

		ySide := -t.yRearSideSpeaker / 100.0
		if z > 0.5 {
			ySide = ySide + (1.0-ySide)*((z-0.5)*2)
		}

		ys1 := -scaled[roomRightRearSideSpeakerTop][1]
		xs1 := scaled[roomRightRearSideSpeakerTop][0]
		ys2 := -scaled[roomRightRearSpeakerTop][1]
		xs2 := scaled[roomRightRearSpeakerTop][0]

		if slope >= 1.0 || sinf {
			y1 = y * ys2
			x1 = x * xs2
			z1 = scaled[roomRightRearSpeakerTop][2]
		} else if slope >= ySide {
			// Behind the line from side speaker to listener.
			y1 = xabs * -ys2
			if 1.0-ySide != 0.0 {
				x1 = x*xs2 + (x*(1-slope))*((xs1-xs2)/(1.0-ySide))
				z1 = ((slope-ySide)/(1.0-ySide))*scaled[roomRightRearSpeakerTop][2] +
					(1-((slope-ySide)/(1.0-ySide)))*scaled[roomRightRearSideSpeakerTop][2]
			} else {
				x1 = x * xs1
				z1 = scaled[roomRightRearSideSpeakerTop][2]
			}
		} else {
			// In front of the side speaker line but behind the listener.
			y1 = (y / ySide) * ys1
			x1 = x * xs1
			z1 = scaled[roomRightRearSideSpeakerTop][2]
		}
	}

	r := math.Sqrt(x1*x1 + y1*y1 + z1*z1)
	if r != 0.0 {
		elevation = math.Asin(z1 / r)
		azimuth = math.Atan2(x1, y1)

		if elevation < 0.0 {
			elevation = 0.0
		}
	} else {
		elevation = 0.0
		azimuth = 0.0
	}

	// Radius: ratio of the listener-to-object distance to the distance
	// of the cube face hit by the same ray.  Work in the first quadrant.
	x2 := math.Abs(x)
	y2 := math.Abs(y)

	var xi, yi, zi float64

	ceiling := false
	if z > 0 {
		if x2/z < 1.0 && y2/z < 1.0 {
			ceiling = true
		}
	}

	if ceiling {
		xi = x2 / z
		yi = y2 / z
		zi = 1.0
	} else if x2 > y2 {
		// Right wall.
		if x2 != 0 {
			xi = 1.0
			yi = y2 / x2
			zi = z / x2
		} else {
			xi = 1.0
			yi = 0.0
			zi = 0.0
		}
	} else {
		// Front wall.
		if y2 != 0 {
			xi = x2 / y2
			yi = 1.0
			zi = z / y2
		} else {
			xi = 0.0
			yi = 1.0
			zi = 0.0
		}
	}

	ri := math.Sqrt(xi*xi + yi*yi + zi*zi)
	rObj := math.Sqrt(x2*x2 + y2*y2 + z*z)
	if ri != 0.0 {
		radius = rObj / ri
	} else {
		radius = 0.0
	}

	return azimuth, elevation, radius
}
