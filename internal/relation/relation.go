// SPDX-License-Identifier: Unlicense OR MIT

// Package relation implements the relation compiler from spec.md §4.2: it
// turns a user-provided relation vector into per-surface custom clipper
// lists and per-array bounding-volume attachments.
package relation

import (
	"github.com/neonkingfr/quadray/internal/qerr"
	"github.com/neonkingfr/quadray/internal/scene"
)

// Spec is one user-declared relation, already resolved to Refs. The
// external wire format's relative/negative index addressing (obj1/obj2
// indices, left/right sub-array narrowing via INDEX_ARRAY) is a concern
// of the scene-file parser, which spec.md §1 places out of scope; callers
// here address objects directly by the Ref the Builder handed back.
type Spec struct {
	Obj1, Obj2 scene.Ref
	Kind       scene.RelKind
}

// Compiler applies a sequence of Specs against a Registry.
type Compiler struct {
	Reg *scene.Registry
}

func New(reg *scene.Registry) *Compiler {
	return &Compiler{Reg: reg}
}

// Apply compiles every spec in order. Relations are applied in the order
// given; MINUS_ACCUM brackets must nest correctly (every accumulator
// opened by a bracket-start spec is closed by a matching bracket-end spec
// before the list is considered valid -- see Validate).
func (c *Compiler) Apply(specs []Spec) error {
	for _, s := range specs {
		if err := c.apply(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) apply(s Spec) error {
	switch s.Kind {
	case scene.RelMinusInner, scene.RelMinusOuter:
		return c.addClip(s.Obj1, s.Obj2, s.Kind)
	case scene.RelBoundArray, scene.RelBoundIndex:
		return c.bindBoundingVolume(s.Obj1, s.Obj2)
	case scene.RelUntieArray, scene.RelUntieIndex:
		return c.untieBoundingVolume(s.Obj1)
	case scene.RelIndexArray:
		// Addressing-only relation; nothing to compile once Refs are
		// already resolved by the caller.
		return nil
	case scene.RelMinusAccum:
		// A bare MINUS_ACCUM spec with Obj2 unset opens a bracket; one
		// with Obj2 set to Obj1 again closes it. Callers typically use
		// BeginAccum/EndAccum directly instead of going through Apply.
		if !s.Obj2.Valid() {
			c.BeginAccum(s.Obj1)
		} else {
			c.EndAccum(s.Obj1)
		}
		return nil
	}
	return qerr.New(qerr.InvalidScene, "unrecognized relation kind")
}

// addClip appends a descriptor to target's custom clipper list pointing
// at clipper's SIMD block, per spec.md §4.2.
func (c *Compiler) addClip(target, clipper scene.Ref, kind scene.RelKind) error {
	t := c.Reg.Surface(target)
	if t == nil {
		return qerr.New(qerr.InvalidScene, "relation target is not a surface")
	}
	cl := c.Reg.Surface(clipper)
	if cl == nil {
		return qerr.New(qerr.InvalidScene, "relation clipper is not a surface")
	}
	t.Clippers = append(t.Clippers, scene.ClipEntry{
		Surface: clipper.Index,
		Kind:    kind,
	})
	return nil
}

// BeginAccum opens a MINUS_ACCUM bracket on target's clipper list: its
// combined mask is OR-accumulated until the matching EndAccum, then
// AND-applied into the running clip mask (GLOSSARY "Accum marker").
func (c *Compiler) BeginAccum(target scene.Ref) {
	t := c.Reg.Surface(target)
	if t == nil {
		return
	}
	t.Clippers = append(t.Clippers, scene.ClipEntry{IsAccum: true, AccumEnd: false})
}

func (c *Compiler) EndAccum(target scene.Ref) {
	t := c.Reg.Surface(target)
	if t == nil {
		return
	}
	t.Clippers = append(t.Clippers, scene.ClipEntry{IsAccum: true, AccumEnd: true})
}

// bindBoundingVolume installs bv as the bvnode on target and every
// descendant surface (spec.md §4.2 BOUND_ARRAY/BOUND_INDEX). It does not
// set Array.HasBoundingVolume, which is the flag the traversal kernel's
// sphere early-out reads, so binding alone enables no early-out.
func (c *Compiler) bindBoundingVolume(target, bv scene.Ref) error {
	b := c.Reg.Base(target)
	if b == nil {
		return qerr.New(qerr.InvalidScene, "bounding-volume target does not exist")
	}
	if c.Reg.Array(bv) == nil {
		return qerr.New(qerr.InvalidScene, "bounding-volume source must be an array")
	}
	setBvNode(c.Reg, target, bv)
	return nil
}

func (c *Compiler) untieBoundingVolume(target scene.Ref) error {
	b := c.Reg.Base(target)
	if b == nil {
		return qerr.New(qerr.InvalidScene, "untie target does not exist")
	}
	setBvNode(c.Reg, target, scene.NilRef)
	return nil
}

func setBvNode(reg *scene.Registry, ref, bv scene.Ref) {
	b := reg.Base(ref)
	if b == nil {
		return
	}
	b.BvNode = bv
	if a := reg.Array(ref); a != nil {
		for _, child := range a.Children {
			setBvNode(reg, child, bv)
		}
	}
}

// Validate checks spec.md §8 invariant 1 (every clip entry references a
// valid surface or is a well-formed marker) and invariant 3's structural
// counterpart: every accumulator ENTER is matched by exactly one LEAVE
// later in the same list.
func Validate(reg *scene.Registry) error {
	for i := range reg.Surfaces {
		s := &reg.Surfaces[i]
		depth := 0
		for _, e := range s.Clippers {
			if e.IsAccum {
				if e.AccumEnd {
					depth--
					if depth < 0 {
						return qerr.New(qerr.InvalidScene, "clip list has unmatched LEAVE marker")
					}
				} else {
					depth++
				}
				continue
			}
			if reg.Surface(scene.Ref{Kind: scene.KindSurface, Index: e.Surface}) == nil {
				return qerr.New(qerr.InvalidScene, "clip entry references a missing surface")
			}
		}
		if depth != 0 {
			return qerr.New(qerr.InvalidScene, "clip list has unmatched ENTER marker")
		}
	}
	return nil
}
