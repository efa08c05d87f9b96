// SPDX-License-Identifier: Unlicense OR MIT

// Package traverse implements the SIMD per-packet surface-intersection
// kernel from spec.md §4.3: render0's per-surface test, depth
// compositing, and clip-mask evaluation. Material dispatch itself lives
// in package shade, which is wired in through the ShadeFunc hook to keep
// the dependency one-directional (shade imports traverse to recurse into
// Trace for shadow/reflection/refraction rays; traverse never imports
// shade).
package traverse

import (
	"math"

	"github.com/neonkingfr/quadray/internal/config"
	"github.com/neonkingfr/quadray/internal/qerr"
	"github.com/neonkingfr/quadray/internal/scene"
	"github.com/neonkingfr/quadray/internal/simd"
)

// ShadeFunc dispatches the shading kernel for the nearest hit currently
// recorded in ctx.HitSurf/HitSide, at the given recursion depth.
type ShadeFunc func(ctx *simd.Context, depth int)

// Kernel holds everything the traversal pass needs to walk one scene.
type Kernel struct {
	Reg   *scene.Registry
	Cfg   config.Options
	Stats *qerr.Stats
	Shade ShadeFunc
}

func NewKernel(reg *scene.Registry, cfg config.Options, stats *qerr.Stats) *Kernel {
	return &Kernel{Reg: reg, Cfg: cfg, Stats: stats}
}

// Trace walks the scene tree from the root, finds the nearest hit per
// lane, and -- if a Shade hook is installed and depth is within budget --
// dispatches shading. When depth exceeds Cfg.MaxDepth the ray returns its
// current partial radiance without further recursion (spec.md §7
// "Budget exceeded").
func (k *Kernel) Trace(ctx *simd.Context, depth int) {
	if depth > k.Cfg.MaxDepth {
		k.Stats.RecordDepthCap()
		return
	}
	k.traceNode(ctx, k.Reg.Root)
	if k.Shade != nil {
		k.Shade(ctx, depth)
	}
}

// TraceOcclusion walks the scene tree looking only for *any* hit closer
// than tMax per lane, ignoring surfaces in the ignore set. It is used by
// the shading kernel's shadow-ray pass (spec.md §4.4) and never invokes
// Shade.
func (k *Kernel) TraceOcclusion(ctx *simd.Context, tMax []float32, ignore map[int32]bool) simd.Mask {
	occluded := simd.NewMask(ctx.N, false)
	k.occludeNode(ctx, k.Reg.Root, tMax, ignore, occluded)
	return occluded
}

func (k *Kernel) traceNode(ctx *simd.Context, ref scene.Ref) {
	switch ref.Kind {
	case scene.KindArray:
		a := k.Reg.Array(ref)
		if a == nil {
			return
		}
		if k.Cfg.VArray && a.HasBoundingVolume && !arrayMayHit(ctx, a) {
			return
		}
		for _, c := range a.Children {
			k.traceNode(ctx, c)
		}
	case scene.KindSurface:
		k.testSurface(ctx, ref.Index)
	}
}

func (k *Kernel) occludeNode(ctx *simd.Context, ref scene.Ref, tMax []float32, ignore map[int32]bool, occluded simd.Mask) {
	switch ref.Kind {
	case scene.KindArray:
		a := k.Reg.Array(ref)
		if a == nil {
			return
		}
		if k.Cfg.VArray && a.HasBoundingVolume && !arrayMayHit(ctx, a) {
			return
		}
		for _, c := range a.Children {
			k.occludeNode(ctx, c, tMax, ignore, occluded)
		}
	case scene.KindSurface:
		if ignore[ref.Index] {
			return
		}
		k.testOcclusion(ctx, ref.Index, tMax, occluded)
	}
}

// arrayMayHit solves |r(t)|^2 = R^2 against a's bounding sphere; it
// reports whether any live lane has a root in [TMin, TBuf].
func arrayMayHit(ctx *simd.Context, a *scene.Array) bool {
	for i := 0; i < ctx.N; i++ {
		if !ctx.TMask[i] {
			continue
		}
		dx := ctx.OrgX[i] - a.BVCenter.X
		dy := ctx.OrgY[i] - a.BVCenter.Y
		dz := ctx.OrgZ[i] - a.BVCenter.Z
		rx, ry, rz := ctx.RayX[i], ctx.RayY[i], ctx.RayZ[i]

		aCoef := rx*rx + ry*ry + rz*rz
		bCoef := dx*rx + dy*ry + dz*rz
		cCoef := dx*dx+dy*dy+dz*dz - a.BVRadiusSq
		disc := bCoef*bCoef - aCoef*cCoef
		if disc < 0 || aCoef == 0 {
			continue
		}
		sq := float32(math.Sqrt(float64(disc)))
		t0 := (-bCoef - sq) / aCoef
		t1 := (-bCoef + sq) / aCoef
		if inRange(t0, ctx.TMin, ctx.TBuf[i]) || inRange(t1, ctx.TMin, ctx.TBuf[i]) {
			return true
		}
	}
	return false
}

func inRange(t, tmin, tmax float32) bool { return t > tmin && t < tmax }
