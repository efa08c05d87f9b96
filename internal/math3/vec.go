// SPDX-License-Identifier: Unlicense OR MIT

// Package math3 implements the float32 vector, homogeneous vector and
// 4x4 matrix types shared by the scene update pipeline and the SIMD
// traversal kernel, along with the local/world axis-mapping table.
package math3

import "math"

// Vec is a three dimensional vector or point.
type Vec struct {
	X, Y, Z float32
}

// Vec4 is a homogeneous four component vector.
type Vec4 struct {
	X, Y, Z, W float32
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec) Mul(s float32) Vec { return Vec{v.X * s, v.Y * s, v.Z * s} }

// Scale multiplies component-wise.
func (v Vec) Scale(o Vec) Vec { return Vec{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

func (v Vec) Dot(o Vec) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec) Cross(o Vec) Vec {
	return Vec{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec) LenSq() float32 { return v.Dot(v) }

func (v Vec) Len() float32 { return float32(math.Sqrt(float64(v.LenSq()))) }

// Norm returns v scaled to unit length, or v unchanged if it is (near) zero.
func (v Vec) Norm() Vec {
	l := v.Len()
	if l < 1e-12 {
		return v
	}
	return v.Mul(1 / l)
}

// Neg negates every component.
func (v Vec) Neg() Vec { return Vec{-v.X, -v.Y, -v.Z} }

// Comp returns the component selected by axis index 0,1,2.
func (v Vec) Comp(axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithComp returns v with the given axis index set to val.
func (v Vec) WithComp(axis int, val float32) Vec {
	switch axis {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

// Reflect reflects v about normal n (n assumed unit length): v - 2(v.n)n.
func (v Vec) Reflect(n Vec) Vec {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Min / Max are lane-wise component extrema, used by bbox aggregation.
func Min(a, b Vec) Vec {
	return Vec{minf(a.X, b.X), minf(a.Y, b.Y), minf(a.Z, b.Z)}
}

func Max(a, b Vec) Vec {
	return Vec{maxf(a.X, b.X), maxf(a.Y, b.Y), maxf(a.Z, b.Z)}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
