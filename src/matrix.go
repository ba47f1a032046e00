package iabrenderer

import "github.com/golang/geo/r3"

/*------------------------------------------------------------------
 *
 * Purpose:	Double-precision 3x3 helpers for construction-time
 *		geometry.  Basis matrices are inverted once, at setup,
 *		in float64 and narrowed to the float32 Matrix3 used on
 *		the render path.
 *
 *----------------------------------------------------------------*/

type matrix3f64 [3][3]float64

// columnBasis builds the matrix whose columns are a, b, c.
func columnBasis(a, b, c r3.Vector) matrix3f64 {
	return matrix3f64{
		{a.X, b.X, c.X},
		{a.Y, b.Y, c.Y},
		{a.Z, b.Z, c.Z},
	}
}

func (m matrix3f64) determinant() float64 {
	return m[0][0]*m[1][1]*m[2][2] +
		m[1][0]*m[2][1]*m[0][2] +
		m[2][0]*m[0][1]*m[1][2] -
		m[0][0]*m[2][1]*m[1][2] -
		m[2][0]*m[1][1]*m[0][2] -
		m[1][0]*m[0][1]*m[2][2]
}

// inverse returns the matrix inverse and whether the matrix was
// invertible (|det| above epsilon).
func (m matrix3f64) inverse() (matrix3f64, bool) {
	det := m.determinant()
	if det < kEpsilon && det > -kEpsilon {
		return matrix3f64{}, false
	}

	var out matrix3f64
	for i := 0; i < 3; i++ {
		j1 := (1 + i) % 3
		j2 := (2 + i) % 3

		out[i][0] = (m[1][j1]*m[2][j2] - m[1][j2]*m[2][j1]) / det
		out[i][1] = (m[0][j2]*m[2][j1] - m[0][j1]*m[2][j2]) / det
		out[i][2] = (m[0][j1]*m[1][j2] - m[0][j2]*m[1][j1]) / det
	}
	return out, true
}

func (m matrix3f64) mulVec(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// narrow converts to the float32 matrix used on the render path.
func (m matrix3f64) narrow() Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = float32(m[i][j])
		}
	}
	return out
}

func r3FromVector3(v Vector3) r3.Vector {
	return r3.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}
