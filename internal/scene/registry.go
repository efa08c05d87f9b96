// SPDX-License-Identifier: Unlicense OR MIT

package scene

import (
	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/qerr"
)

// Registry is the arena that exclusively owns every allocated node in a
// scene, per spec.md §3 "Ownership": Arrays, Cameras, Lights, Surfaces
// and Materials each live in their own growable slice, addressed by Ref.
// This mirrors the teacher's resourceCache/opCache generational-arena
// pattern (gpu/caches.go) but is long-lived for a whole scene's lifetime
// rather than per-frame: nodes are appended at load time and never moved,
// so a Ref stays valid for the registry's entire life.
type Registry struct {
	Arrays    []Array
	Cameras   []Camera
	Lights    []Light
	Surfaces  []Surface
	Materials []Material

	Root Ref
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// newBase returns a Base wired to parent/self with an identity scale, so
// an object that never has its Scale explicitly set composes a neutral
// (not degenerate all-zero) local transform in Phase 0.
func newBase(parent, self Ref) Base {
	return Base{Parent: parent, Self: self, Scale: math3.Vec{X: 1, Y: 1, Z: 1}}
}

func (r *Registry) NewArray(parent Ref) Ref {
	ref := Ref{Kind: KindArray, Index: int32(len(r.Arrays))}
	a := Array{Base: newBase(parent, ref)}
	r.Arrays = append(r.Arrays, a)
	return ref
}

func (r *Registry) NewCamera(parent Ref) Ref {
	ref := Ref{Kind: KindCamera, Index: int32(len(r.Cameras))}
	r.Cameras = append(r.Cameras, Camera{Base: newBase(parent, ref)})
	return ref
}

func (r *Registry) NewLight(parent Ref) Ref {
	ref := Ref{Kind: KindLight, Index: int32(len(r.Lights))}
	r.Lights = append(r.Lights, Light{Base: newBase(parent, ref)})
	return ref
}

func (r *Registry) NewSurface(parent Ref, tag SurfTag) Ref {
	ref := Ref{Kind: KindSurface, Index: int32(len(r.Surfaces))}
	s := Surface{Base: newBase(parent, ref), Tag: tag}
	for i := range s.Clip {
		s.Clip[i] = Interval{Min: negInf, Max: posInf}
	}
	r.Surfaces = append(r.Surfaces, s)
	return ref
}

func (r *Registry) NewMaterial(m Material) int32 {
	idx := int32(len(r.Materials))
	r.Materials = append(r.Materials, m)
	return idx
}

const posInf = 3.4e38
const negInf = -3.4e38

// Array returns the array at ref, or nil if ref does not address one.
func (r *Registry) Array(ref Ref) *Array {
	if ref.Kind != KindArray || ref.Index < 0 || int(ref.Index) >= len(r.Arrays) {
		return nil
	}
	return &r.Arrays[ref.Index]
}

func (r *Registry) Camera(ref Ref) *Camera {
	if ref.Kind != KindCamera || ref.Index < 0 || int(ref.Index) >= len(r.Cameras) {
		return nil
	}
	return &r.Cameras[ref.Index]
}

func (r *Registry) Light(ref Ref) *Light {
	if ref.Kind != KindLight || ref.Index < 0 || int(ref.Index) >= len(r.Lights) {
		return nil
	}
	return &r.Lights[ref.Index]
}

func (r *Registry) Surface(ref Ref) *Surface {
	if ref.Kind != KindSurface || ref.Index < 0 || int(ref.Index) >= len(r.Surfaces) {
		return nil
	}
	return &r.Surfaces[ref.Index]
}

func (r *Registry) Material(idx int32) *Material {
	if idx < 0 || int(idx) >= len(r.Materials) {
		return nil
	}
	return &r.Materials[idx]
}

// Base returns the common Base fields for any ref, regardless of kind.
func (r *Registry) Base(ref Ref) *Base {
	switch ref.Kind {
	case KindArray:
		if a := r.Array(ref); a != nil {
			return &a.Base
		}
	case KindCamera:
		if c := r.Camera(ref); c != nil {
			return &c.Base
		}
	case KindLight:
		if l := r.Light(ref); l != nil {
			return &l.Base
		}
	case KindSurface:
		if s := r.Surface(ref); s != nil {
			return &s.Base
		}
	}
	return nil
}

// Validate walks the tree from the root checking spec.md §7's
// construction-time "invalid scene" class: every child reference must
// resolve, and the tree must not contain cycles.
func (r *Registry) Validate() error {
	if !r.Root.Valid() {
		return qerr.New(qerr.InvalidScene, "registry has no root object")
	}
	visited := make(map[Ref]bool)
	return r.validate(r.Root, visited)
}

func (r *Registry) validate(ref Ref, visited map[Ref]bool) error {
	if visited[ref] {
		return qerr.New(qerr.InvalidScene, "cycle detected in object tree")
	}
	visited[ref] = true
	if r.Base(ref) == nil {
		return qerr.New(qerr.InvalidScene, "dangling object reference")
	}
	if ref.Kind == KindArray {
		a := r.Array(ref)
		for _, c := range a.Children {
			if !c.Valid() {
				return qerr.New(qerr.InvalidScene, "scene contains a null object")
			}
			if err := r.validate(c, visited); err != nil {
				return err
			}
		}
	}
	return nil
}
