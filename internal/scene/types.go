// SPDX-License-Identifier: Unlicense OR MIT

// Package scene defines the tagged polymorphic object tree described in
// spec.md §3: arrays, cameras, lights and the nine quadric/planar surface
// types, plus materials and textures. All cross-references between
// entities are indices into a Registry arena (see registry.go); nothing
// here is self-referential through pointers, matching the "cyclic /
// back-references" design note in spec.md §9.
package scene

import "github.com/neonkingfr/quadray/internal/math3"

// Kind tags which arena a Ref points into.
type Kind uint8

const (
	KindNone Kind = iota
	KindArray
	KindCamera
	KindLight
	KindSurface
)

// Ref is a weak, non-owning reference to an object in the Registry arena.
// The zero Ref (KindNone, 0) denotes "no object".
type Ref struct {
	Kind  Kind
	Index int32
}

// Valid reports whether r refers to an actual object.
func (r Ref) Valid() bool { return r.Kind != KindNone }

// NilRef is the canonical absent reference.
var NilRef = Ref{Kind: KindNone, Index: -1}

// AnimFunc is the user-supplied time callback from spec.md §4.1 Phase 0.
// It may rewrite m in place given the current and previous frame time.
type AnimFunc func(time, prevTime float64, m *math3.Mtx)

// Base holds the fields common to every object in the tree (spec.md §3
// "Object (base)" row).
type Base struct {
	Parent Ref
	Self   Ref // this object's own Ref, filled in by the registry on creation

	Scale  math3.Vec
	RotDeg math3.Vec
	Pos    math3.Vec

	Anim AnimFunc
	Tag  string

	// Derived by the update pipeline; see internal/update.
	TrNode  Ref
	BvNode  Ref
	AxisMap math3.AxisMap
	OwnTrm  math3.TrmKind
	Changed bool

	// Mtx is this object's own local transform, recomposed in Phase 0
	// whenever Changed is set (by animation or parent propagation).
	Mtx math3.Mtx
	// World is Mtx composed with every ancestor's Mtx: the object's
	// full local-to-world transform, recomputed alongside Mtx.
	World math3.Mtx

	// Cached marks that this object's own transform is trivial relative
	// to its TrNode, so a single matrix multiplication can be deferred
	// to intersection time instead of recomposed here (spec.md §4.1).
	Cached bool
	// Diagonal marks that World decomposes into a signed permutation
	// plus scale, so AxisMap's fast path applies instead of the full
	// 3x3 inverse-rows transform.
	Diagonal bool

	// Initialized marks that Phase 0 has computed this object's Mtx/World
	// at least once. A freshly built object starts with every field at
	// its Go zero value, which is not a valid transform, so Phase 0
	// forces a first pass regardless of cfg.Update or Anim.
	Initialized bool
}

// Array is an interior node: spec.md §3 "Array" row.
type Array struct {
	Base
	Children []Ref

	// Aux is a trnode-space bound enclosing contained surfaces; Box is
	// the world-space bound enclosing sub-arrays and own contents.
	Aux Bounds
	Box Bounds

	Relations []RelationEntry // per-array relation list; internal/relation does not fill it

	HasBoundingVolume bool
	BVCenter          math3.Vec // world-space center
	BVRadiusSq        float32
}

// RelationEntry is one compiled entry in an array's relation list: either
// a reference to another surface's clip contribution, or an accumulator
// bracket marker (spec.md §4.2 / GLOSSARY "Accum marker"). Nothing in
// the module builds these: internal/relation compiles relations into
// each Surface's Clippers list instead.
type RelationEntry struct {
	Kind     RelKind
	Target   Ref // KindSurface; zero value for accumulator markers
	IsAccum  bool
	AccumEnd bool // false => ENTER, true => LEAVE
}

// RelKind mirrors the external Relation.kind enumeration (spec.md §6).
type RelKind uint8

const (
	RelIndexArray RelKind = iota
	RelMinusInner
	RelMinusOuter
	RelMinusAccum
	RelBoundArray
	RelUntieArray
	RelBoundIndex
	RelUntieIndex
)

// Bounds is an axis-aligned bounding box. A non-finite box (Valid==false)
// means "boundless along at least one axis" per spec.md §4.1 Phase 2.
type Bounds struct {
	Min, Max math3.Vec
	Valid    bool
}

// Union returns the smallest Bounds enclosing b and o. An invalid operand
// makes the result invalid.
func (b Bounds) Union(o Bounds) Bounds {
	if !b.Valid || !o.Valid {
		return Bounds{}
	}
	return Bounds{Min: math3.Min(b.Min, o.Min), Max: math3.Max(b.Max, o.Max), Valid: true}
}

// Contains reports whether o lies within b, within epsilon, per spec.md
// §8 invariant 2.
func (b Bounds) Contains(o Bounds, eps float32) bool {
	if !b.Valid || !o.Valid {
		return !o.Valid
	}
	return o.Min.X >= b.Min.X-eps && o.Min.Y >= b.Min.Y-eps && o.Min.Z >= b.Min.Z-eps &&
		o.Max.X <= b.Max.X+eps && o.Max.Y <= b.Max.Y+eps && o.Max.Z <= b.Max.Z+eps
}

// Camera: spec.md §3 "Camera" row.
type Camera struct {
	Base
	Horizon  math3.Vec // horizontal sensor vector
	Vertical math3.Vec // vertical sensor vector
	Forward  math3.Vec
	POV      float32 // field of view
	Primary  bool
	Background Color
}

// Light: spec.md §3 "Light" row.
type Light struct {
	Base
	Color      Color
	Luminosity float32
	Atten      Attenuation
	Shadows    bool
	Ignore     []Ref // per-light shadow-ray ignore set
}

// Attenuation matches {constant, linear, quadratic, range}.
type Attenuation struct {
	Constant, Linear, Quadratic float32
	Range                       float32
}

// Color is a linear RGB triple; alpha is carried separately where needed.
type Color struct {
	R, G, B float32
}

func (c Color) Add(o Color) Color  { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c Color) Mul(s float32) Color { return Color{c.R * s, c.G * s, c.B * s} }
func (c Color) Scale(o Color) Color { return Color{c.R * o.R, c.G * o.G, c.B * o.B} }
func (c Color) Max() float32 {
	m := c.R
	if c.G > m {
		m = c.G
	}
	if c.B > m {
		m = c.B
	}
	return m
}
