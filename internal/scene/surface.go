// SPDX-License-Identifier: Unlicense OR MIT

package scene

import "github.com/neonkingfr/quadray/internal/math3"

// SurfTag enumerates the surface shapes from spec.md §6.
type SurfTag uint8

const (
	SurfPlane SurfTag = iota
	SurfCylinder
	SurfSphere
	SurfCone
	SurfParaboloid
	SurfHyperboloid
	SurfHypercylinder
	SurfParacylinder
	SurfHyperparaboloid
)

// IsQuadric reports whether a tag is solved via the quadratic path rather
// than the plane's linear path.
func (t SurfTag) IsQuadric() bool { return t != SurfPlane }

// Interval is a one-dimensional [min,max] axis clipper. Infinite bounds
// use +-Inf sentinels, matching the external scene format.
type Interval struct {
	Min, Max float32
}

func (iv Interval) Finite() bool {
	return !isInf(iv.Min) && !isInf(iv.Max)
}

func isInf(f float32) bool {
	return f > 3.0e38 || f < -3.0e38
}

// ShapeParams holds the scalar parameters whose meaning depends on Tag:
// Radius for sphere/cylinder/hypercylinder, Ratio for the cone/hyperboloid
// cross-section ratio, ParCoeff for paraboloid/paracylinder/hyperparaboloid,
// HypOffset for the hyperboloid constant term.
type ShapeParams struct {
	Radius    float32
	Ratio     float32
	ParCoeff  float32
	HypOffset float32
}

// Surface is one of the nine intersectable shapes (spec.md §3 "Surface"
// row). Quadric coefficients are stored in local-axis order (I,J,K) and
// rewritten into world-axis order by Phase 1 into SIMDCoeff.
type Surface struct {
	Base
	Tag    SurfTag
	Clip   [3]Interval // local axis clippers, order I,J,K
	Params ShapeParams

	// sci (x^2/y^2/z^2 + const), scj (linear), sck (plane-normal axis),
	// in local I,J,K,W order; see spec.md §3 invariant on quadric coeffs.
	Sci [4]float32
	Scj [3]float32
	Sck [3]float32

	Outer Ref // KindSurface is never valid here; Outer/Inner index into Materials
	Inner Ref

	OuterMat, InnerMat int32

	Clippers []ClipEntry // custom clipper list, see internal/relation

	// Backend data recomputed by Phase 1/2; see internal/simd.
	Bound Bounds
	Cbox  Bounds // expanded clip box from adjust_minmax's custom-clipper pass

	SIMD SurfaceSIMD
}

// ClipEntry is a custom clipper list element (GLOSSARY "Accum marker"):
// either a reference to another surface with a CSG relation kind, or an
// ENTER/LEAVE accumulator bracket with no surface reference.
type ClipEntry struct {
	Surface  int32 // index into Registry.Surfaces; ignored when IsAccum
	Kind     RelKind
	IsAccum  bool
	AccumEnd bool
}

// SurfaceSIMD is the per-surface backend block derived in update Phase 1:
// inverse-transform rows, replicated position, and axis-mapped
// coefficients, laid out as scalars here (the SIMD packet code in
// internal/simd replicates each field across N lanes at traversal time).
type SurfaceSIMD struct {
	Tci, Tcj, Tck math3.Vec // inverse 3x3 rows, only valid if HasTransform
	HasTransform  bool

	// Deferred marks that Tci/Tcj/Tck have not been computed yet this
	// frame: set when the owning Base.Cached lets Phase 1 skip the
	// inverse-matrix multiplication, to be performed once, lazily, the
	// first time a traversal actually tests this surface (spec.md §4.1).
	Deferred bool

	Pos math3.Vec

	// Coefficients re-ordered into world-axis (a_map applied) order.
	Sci [4]float32
	Scj [3]float32
	Sck [3]float32

	AMap math3.AxisMap
}
