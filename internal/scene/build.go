// SPDX-License-Identifier: Unlicense OR MIT

package scene

import "github.com/neonkingfr/quadray/internal/math3"

// Builder provides a small fluent API for constructing a scene tree from
// plain Go calls, standing in for the file-format parser that spec.md §1
// explicitly places out of scope. It is grounded on the teacher's own
// op.Ops recording style (op/op.go): a thin sequential builder rather
// than a general graph API, since scenes are write-once at load time.
type Builder struct {
	Reg *Registry
}

func NewBuilder() *Builder {
	b := &Builder{Reg: NewRegistry()}
	b.Reg.Root = b.Reg.NewArray(NilRef)
	return b
}

// Array appends a new child array under parent and returns its Ref.
func (b *Builder) Array(parent Ref, scale, rot, pos math3.Vec) Ref {
	ref := b.Reg.NewArray(parent)
	a := b.Reg.Array(ref)
	a.Scale, a.RotDeg, a.Pos = scale, rot, pos
	b.attach(parent, ref)
	return ref
}

// Root returns the scene's root array.
func (b *Builder) Root() Ref { return b.Reg.Root }

func (b *Builder) attach(parent, child Ref) {
	if parent == NilRef || !parent.Valid() {
		return
	}
	a := b.Reg.Array(parent)
	a.Children = append(a.Children, child)
}

// Camera adds a camera under parent.
func (b *Builder) Camera(parent Ref, pos, rot math3.Vec, pov float32, bg Color) Ref {
	ref := b.Reg.NewCamera(parent)
	c := b.Reg.Camera(ref)
	c.Pos, c.RotDeg = pos, rot
	c.Scale = math3.Vec{X: 1, Y: 1, Z: 1}
	c.POV = pov
	c.Background = bg
	b.attach(parent, ref)
	return ref
}

// Light adds a light under parent.
func (b *Builder) Light(parent Ref, pos math3.Vec, col Color, lum float32, atten Attenuation) Ref {
	ref := b.Reg.NewLight(parent)
	l := b.Reg.Light(ref)
	l.Pos = pos
	l.Scale = math3.Vec{X: 1, Y: 1, Z: 1}
	l.Color = col
	l.Luminosity = lum
	l.Atten = atten
	l.Shadows = true
	b.attach(parent, ref)
	return ref
}

// Surface adds a surface of the given tag under parent.
func (b *Builder) Surface(parent Ref, tag SurfTag, scale, rot, pos math3.Vec, params ShapeParams, outerMat, innerMat int32) Ref {
	ref := b.Reg.NewSurface(parent, tag)
	s := b.Reg.Surface(ref)
	s.Scale, s.RotDeg, s.Pos = scale, rot, pos
	s.Params = params
	s.OuterMat, s.InnerMat = outerMat, innerMat
	initShapeCoeffs(s)
	b.attach(parent, ref)
	return ref
}

// initShapeCoeffs derives the local-axis sci/scj/sck coefficient triples
// from a surface's tag and scalar parameters, per spec.md §3's invariant
// that (sci, scj) determine the shape up to axis mapping. Axis order is
// I=0,J=1,K=2; the quadric is always expressed with K as its "roll" axis.
func initShapeCoeffs(s *Surface) {
	switch s.Tag {
	case SurfPlane:
		s.Sck = [3]float32{0, 0, 1}
	case SurfSphere:
		r := s.Params.Radius
		s.Sci = [4]float32{1, 1, 1, r * r}
	case SurfCylinder:
		r := s.Params.Radius
		s.Sci = [4]float32{1, 1, 0, r * r}
	case SurfCone:
		ratio := s.Params.Ratio
		s.Sci = [4]float32{1, 1, -ratio * ratio, 0}
	case SurfParaboloid:
		s.Sci = [4]float32{1, 1, 0, 0}
		s.Scj = [3]float32{0, 0, -s.Params.ParCoeff}
	case SurfHyperboloid:
		ratio := s.Params.Ratio
		s.Sci = [4]float32{1, 1, -ratio * ratio, -s.Params.HypOffset}
	case SurfHypercylinder:
		s.Sci = [4]float32{1, -1, 0, -s.Params.Radius * s.Params.Radius}
	case SurfParacylinder:
		s.Sci = [4]float32{1, 0, 0, 0}
		s.Scj = [3]float32{0, -s.Params.ParCoeff, 0}
	case SurfHyperparaboloid:
		s.Sci = [4]float32{1, -1, 0, 0}
		s.Scj = [3]float32{0, 0, -s.Params.ParCoeff}
	}
}
