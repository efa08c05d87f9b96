// SPDX-License-Identifier: Unlicense OR MIT

package update

import (
	"github.com/neonkingfr/quadray/internal/config"
	"github.com/neonkingfr/quadray/internal/scene"
)

// phase1 derives the per-object SIMD backend fields described in
// spec.md §4.1 Phase 1. It only touches objects whose Changed flag was
// set by phase0, and every object it visits is independent of its
// siblings, so it could be fanned out across goroutines once phase0 has
// completed; Run calls it serially.
func phase1(reg *scene.Registry, ref scene.Ref, cfg config.Options) {
	base := reg.Base(ref)
	if base == nil || !base.Changed {
		return
	}

	switch ref.Kind {
	case scene.KindSurface:
		derivSurfaceSIMD(reg.Surface(ref))
	case scene.KindLight:
		// Lights carry a SIMD mirror of position/color for the
		// traversal kernel's shadow-ray and lighting paths; the scalar
		// Base fields above already hold the authoritative values, so
		// there is nothing further to replicate here beyond what the
		// shading kernel reads directly off Light.
	case scene.KindArray:
		a := reg.Array(ref)
		for _, c := range a.Children {
			phase1(reg, c, cfg)
		}
	}
}

// derivSurfaceSIMD rewrites a surface's backend block: the inverse
// 3x3-as-rows transform, the replicated world position, and the
// axis-mapped coefficient triples, per spec.md §4.1 Phase 1 / §9's
// "axis map" design note.
func derivSurfaceSIMD(s *scene.Surface) {
	if s == nil {
		return
	}
	blk := &s.SIMD
	blk.Pos = s.World.Pos()
	blk.AMap = s.AxisMap
	blk.HasTransform = !s.Diagonal

	if blk.HasTransform {
		blk.Sci = s.Sci
		blk.Scj = s.Scj
		blk.Sck = s.Sck
		if s.Base.Cached {
			// Own transform rides along its TrNode ancestor's composed
			// matrix with no added rotation/scale: defer the inverse-3x3
			// multiplication to the first traversal that actually tests
			// this surface, instead of recomputing it here every frame
			// regardless of visibility.
			blk.Deferred = true
			return
		}
		blk.Tci, blk.Tcj, blk.Tck = s.World.Inverse3x3Rows()
		blk.Deferred = false
		return
	}
	blk.Deferred = false

	// Diagonal fast path: DFF/RAY are routed through the axis map
	// instead of a full 3x3 multiply, so the coefficients must be
	// permuted into world-axis order up front.
	am := s.AxisMap
	var sci [4]float32
	var scj, sck [3]float32
	sci[3] = s.Sci[3]
	for local := 0; local < 3; local++ {
		world := am.Map[local]
		// sci carries a square term: sign doesn't matter for x^2, but
		// scj and sck are linear and pick up the axis's sign flip.
		sci[world] = s.Sci[local]
		scj[world] = s.Scj[local] * am.Sign[local]
		sck[world] = s.Sck[local] * am.Sign[local]
	}
	blk.Sci, blk.Scj, blk.Sck = sci, scj, sck
}
