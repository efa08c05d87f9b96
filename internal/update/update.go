// SPDX-License-Identifier: Unlicense OR MIT

// Package update implements the three-phase hierarchical scene update
// from spec.md §4.1: top-down matrix propagation (Phase 0), per-object
// SIMD field derivation (Phase 1), and bottom-up bound rebuild (Phase 2).
//
// Phases 0 and 2 must run single-threaded with no renderer threads
// active (spec.md §5); Phase 1 is safe to parallelize per-object, but Run
// executes it serially like the other two phases.
package update

import (
	"github.com/neonkingfr/quadray/internal/config"
	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/scene"
)

// Run executes all three phases against reg's tree, rooted at reg.Root.
func Run(reg *scene.Registry, time, prevTime float64, cfg config.Options) {
	phase0(reg, reg.Root, nil, time, prevTime, cfg)
	phase1(reg, reg.Root, cfg)
	phase2(reg, reg.Root, cfg)
}

// phase0 propagates transforms top-down. See spec.md §4.1 Phase 0.
func phase0(reg *scene.Registry, ref scene.Ref, parent *scene.Base, time, prevTime float64, cfg config.Options) {
	base := reg.Base(ref)
	if base == nil {
		return
	}

	changed := cfg.Update || !base.Initialized
	if base.Anim != nil {
		base.Anim(time, prevTime, &base.Mtx)
		changed = true
	}
	if parent != nil && parent.Changed {
		changed = true
	}
	base.Changed = changed
	if !changed {
		return
	}
	base.Initialized = true

	if base.Anim == nil {
		base.Mtx = math3.NewTRS(base.Scale, base.RotDeg, base.Pos)
	}
	base.OwnTrm = math3.ClassifyTrm(base.Scale, base.RotDeg, cfg.FScale)

	if base.OwnTrm != math3.TrmNone {
		base.TrNode = ref
	} else if parent != nil {
		base.TrNode = parent.TrNode
	} else {
		base.TrNode = scene.NilRef
	}

	// Transform caching (spec.md §4.1): permitted only when this
	// object's own transform is trivial relative to its trnode, i.e. it
	// contributes no scale/rotation of its own and simply rides along
	// with an ancestor's composed matrix plus its own translation.
	base.Cached = base.OwnTrm == math3.TrmNone && base.TrNode.Valid() && base.TrNode != ref

	if parent != nil {
		base.World = parent.World.Mul(base.Mtx)
	} else {
		base.World = base.Mtx
	}

	// For every surface, and for arrays when cfg.TArray is set, try to
	// decompose World into a signed permutation plus scale; on success
	// record the axis map and mark the object Diagonal. World itself is
	// left unchanged and the extracted scale is discarded.
	base.Diagonal = false
	if cfg.TArray || ref.Kind == scene.KindSurface {
		if am, _, ok := math3.FromSignedPermutation(base.World); ok {
			base.AxisMap = am
			base.Diagonal = true
		} else {
			base.AxisMap = math3.IdentityAxisMap()
		}
	} else {
		base.AxisMap = math3.IdentityAxisMap()
	}

	if ref.Kind == scene.KindArray {
		a := reg.Array(ref)
		for _, c := range a.Children {
			phase0(reg, c, base, time, prevTime, cfg)
		}
	}
}
