// SPDX-License-Identifier: Unlicense OR MIT

package math3

import "math"

// Mtx is a 4x4 row-major transform matrix. Row 3 is always (0,0,0,1) for
// the affine transforms produced by NewTRS; the full form is kept so
// composed matrices from relation/bounding-volume math stay exact.
type Mtx struct {
	M [4][4]float32
}

// Identity returns the 4x4 identity matrix.
func Identity() Mtx {
	var m Mtx
	for i := 0; i < 4; i++ {
		m.M[i][i] = 1
	}
	return m
}

// NewTRS builds a matrix from scale, Euler rotation in degrees (applied in
// fixed X, then Y, then Z order) and position, matching the Transform
// entity in the external scene description.
func NewTRS(scale, rotDeg, pos Vec) Mtx {
	sx := Identity()
	sx.M[0][0], sx.M[1][1], sx.M[2][2] = scale.X, scale.Y, scale.Z

	rx := rotX(rotDeg.X * deg2rad)
	ry := rotY(rotDeg.Y * deg2rad)
	rz := rotZ(rotDeg.Z * deg2rad)

	m := sx.Mul(rx).Mul(ry).Mul(rz)
	m.M[0][3] += pos.X
	m.M[1][3] += pos.Y
	m.M[2][3] += pos.Z
	return m
}

const deg2rad = math.Pi / 180

func rotX(r float32) Mtx {
	m := Identity()
	s, c := sincos(r)
	m.M[1][1], m.M[1][2] = c, -s
	m.M[2][1], m.M[2][2] = s, c
	return m
}

func rotY(r float32) Mtx {
	m := Identity()
	s, c := sincos(r)
	m.M[0][0], m.M[0][2] = c, s
	m.M[2][0], m.M[2][2] = -s, c
	return m
}

func rotZ(r float32) Mtx {
	m := Identity()
	s, c := sincos(r)
	m.M[0][0], m.M[0][1] = c, -s
	m.M[1][0], m.M[1][1] = s, c
	return m
}

func sincos(r float32) (float32, float32) {
	s, c := math.Sincos(float64(r))
	return float32(s), float32(c)
}

// Mul returns a*b.
func (a Mtx) Mul(b Mtx) Mtx {
	var r Mtx
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a.M[i][k] * b.M[k][j]
			}
			r.M[i][j] = sum
		}
	}
	return r
}

// MulPoint transforms a point (w=1) by m.
func (m Mtx) MulPoint(v Vec) Vec {
	return Vec{
		m.M[0][0]*v.X + m.M[0][1]*v.Y + m.M[0][2]*v.Z + m.M[0][3],
		m.M[1][0]*v.X + m.M[1][1]*v.Y + m.M[1][2]*v.Z + m.M[1][3],
		m.M[2][0]*v.X + m.M[2][1]*v.Y + m.M[2][2]*v.Z + m.M[2][3],
	}
}

// MulDir transforms a direction (w=0) by m, i.e. ignores translation.
func (m Mtx) MulDir(v Vec) Vec {
	return Vec{
		m.M[0][0]*v.X + m.M[0][1]*v.Y + m.M[0][2]*v.Z,
		m.M[1][0]*v.X + m.M[1][1]*v.Y + m.M[1][2]*v.Z,
		m.M[2][0]*v.X + m.M[2][1]*v.Y + m.M[2][2]*v.Z,
	}
}

// Pos extracts the translation column.
func (m Mtx) Pos() Vec { return Vec{m.M[0][3], m.M[1][3], m.M[2][3]} }

// Transpose3 returns the transpose of the upper-left 3x3 block only,
// as used to carry normals from local to world space.
func (m Mtx) Transpose3() Mtx {
	r := m
	r.M[0][1], r.M[1][0] = m.M[1][0], m.M[0][1]
	r.M[0][2], r.M[2][0] = m.M[2][0], m.M[0][2]
	r.M[1][2], r.M[2][1] = m.M[2][1], m.M[1][2]
	return r
}

// Inverse3x3Rows returns the inverse of the upper-left 3x3 block of m as
// three row vectors tci, tcj, tck -- the backend's "column-of-rows"
// representation used to transform DFF/RAY into local space without
// materializing a full 4x4 inverse.
func (m Mtx) Inverse3x3Rows() (tci, tcj, tck Vec) {
	a, b, c := m.M[0][0], m.M[0][1], m.M[0][2]
	d, e, f := m.M[1][0], m.M[1][1], m.M[1][2]
	g, h, i := m.M[2][0], m.M[2][1], m.M[2][2]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det == 0 {
		return Vec{1, 0, 0}, Vec{0, 1, 0}, Vec{0, 0, 1}
	}
	invDet := 1 / det

	// Adjugate transpose rows give the inverse's rows directly.
	tci = Vec{(e*i - f*h) * invDet, (c*h - b*i) * invDet, (b*f - c*e) * invDet}
	tcj = Vec{(f*g - d*i) * invDet, (a*i - c*g) * invDet, (c*d - a*f) * invDet}
	tck = Vec{(d*h - e*g) * invDet, (b*g - a*h) * invDet, (a*e - b*d) * invDet}
	return
}

// IsScaleTrivial reports whether every scale component is +-1, per §4.1.
func IsScaleTrivial(scale Vec) bool {
	return isUnit(scale.X) && isUnit(scale.Y) && isUnit(scale.Z)
}

func isUnit(f float32) bool { return f == 1 || f == -1 }

// IsRotationTrivial reports whether every Euler angle is a multiple of 90
// degrees.
func IsRotationTrivial(rotDeg Vec) bool {
	return isRightAngle(rotDeg.X) && isRightAngle(rotDeg.Y) && isRightAngle(rotDeg.Z)
}

func isRightAngle(deg float32) bool {
	r := math.Mod(float64(deg), 90)
	return math.Abs(r) < 1e-4 || math.Abs(r-90) < 1e-4
}

// TrmKind describes which parts of an object's own transform are
// non-trivial, per §4.1's mtx_has_trm.
type TrmKind uint8

const (
	TrmNone TrmKind = 0
	TrmScl  TrmKind = 1 << 0
	TrmRot  TrmKind = 1 << 1
)

func ClassifyTrm(scale, rotDeg Vec, fscale bool) TrmKind {
	var k TrmKind
	scaleTrivial := IsScaleTrivial(scale)
	if fscale {
		// FSCALE: treat any fractional (non +-1) scale as non-trivial,
		// same test as the default but documented separately since a
		// future relaxed mode (integer scales trivial too) could change
		// scaleTrivial without touching this call site.
		scaleTrivial = IsScaleTrivial(scale)
	}
	if !scaleTrivial {
		k |= TrmScl
	}
	if !IsRotationTrivial(rotDeg) {
		k |= TrmRot
	}
	return k
}
