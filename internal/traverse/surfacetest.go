// SPDX-License-Identifier: Unlicense OR MIT

package traverse

import (
	"math"

	"github.com/neonkingfr/quadray/internal/scene"
	"github.com/neonkingfr/quadray/internal/simd"
)

// testSurface runs the per-surface test from spec.md §4.3 for every live
// lane in ctx, and for lanes that pass depth+clip testing, updates
// ctx.TBuf/HitSurf/HitSide to the new nearest hit.
func (k *Kernel) testSurface(ctx *simd.Context, surfIdx int32) {
	s := &k.Reg.Surfaces[surfIdx]
	blk := &s.SIMD
	if blk.Deferred {
		blk.Tci, blk.Tcj, blk.Tck = s.World.Inverse3x3Rows()
		blk.Deferred = false
	}

	for i := 0; i < ctx.N; i++ {
		if !ctx.TMask[i] {
			continue
		}
		if ctx.HasOrigin && ctx.ObjOrigin == surfIdx && ctx.Pass != simd.PassRefractThru {
			// Same-surface self-intersection is only suppressed for the
			// ordinary primary/reflect path; "thru" passes on the
			// opposite side are allowed through (spec.md §4.3).
			continue
		}

		dffX := ctx.OrgX[i] - blk.Pos.X
		dffY := ctx.OrgY[i] - blk.Pos.Y
		dffZ := ctx.OrgZ[i] - blk.Pos.Z
		rayX, rayY, rayZ := ctx.RayX[i], ctx.RayY[i], ctx.RayZ[i]

		if blk.HasTransform {
			dffX, dffY, dffZ = blk.Tci.X*dffX+blk.Tci.Y*dffY+blk.Tci.Z*dffZ,
				blk.Tcj.X*dffX+blk.Tcj.Y*dffY+blk.Tcj.Z*dffZ,
				blk.Tck.X*dffX+blk.Tck.Y*dffY+blk.Tck.Z*dffZ
			rayX, rayY, rayZ = blk.Tci.X*rayX+blk.Tci.Y*rayY+blk.Tci.Z*rayZ,
				blk.Tcj.X*rayX+blk.Tcj.Y*rayY+blk.Tcj.Z*rayZ,
				blk.Tck.X*rayX+blk.Tck.Y*rayY+blk.Tck.Z*rayZ
		}

		var t float32
		var side simd.Side
		var ok bool
		if s.Tag == scene.SurfPlane {
			t, side, ok = solvePlane(blk, rayZ, dffZ)
		} else {
			t, side, ok = solveQuadric(blk, rayX, rayY, rayZ, dffX, dffY, dffZ)
		}
		if !ok || !inRange(t, ctx.TMin, ctx.TBuf[i]) {
			continue
		}

		worldHitX := ctx.OrgX[i] + ctx.RayX[i]*t
		worldHitY := ctx.OrgY[i] + ctx.RayY[i]*t
		worldHitZ := ctx.OrgZ[i] + ctx.RayZ[i]*t

		if !k.evalClippers(s, worldHitX, worldHitY, worldHitZ, i) {
			continue
		}

		ctx.TBuf[i] = t
		ctx.HitSurf[i] = surfIdx
		ctx.HitSide[i] = side
		ctx.HitX[i], ctx.HitY[i], ctx.HitZ[i] = worldHitX, worldHitY, worldHitZ
	}
}

// testOcclusion is the shadow-ray counterpart of testSurface: it only
// needs to know whether a lane is blocked within tMax, so it skips
// nearest-hit bookkeeping and never calls into shading.
func (k *Kernel) testOcclusion(ctx *simd.Context, surfIdx int32, tMax []float32, occluded simd.Mask) {
	s := &k.Reg.Surfaces[surfIdx]
	blk := &s.SIMD
	if blk.Deferred {
		blk.Tci, blk.Tcj, blk.Tck = s.World.Inverse3x3Rows()
		blk.Deferred = false
	}

	for i := 0; i < ctx.N; i++ {
		if !ctx.TMask[i] || occluded[i] {
			continue
		}
		dffX := ctx.OrgX[i] - blk.Pos.X
		dffY := ctx.OrgY[i] - blk.Pos.Y
		dffZ := ctx.OrgZ[i] - blk.Pos.Z
		rayX, rayY, rayZ := ctx.RayX[i], ctx.RayY[i], ctx.RayZ[i]

		if blk.HasTransform {
			dffX, dffY, dffZ = blk.Tci.X*dffX+blk.Tci.Y*dffY+blk.Tci.Z*dffZ,
				blk.Tcj.X*dffX+blk.Tcj.Y*dffY+blk.Tcj.Z*dffZ,
				blk.Tck.X*dffX+blk.Tck.Y*dffY+blk.Tck.Z*dffZ
			rayX, rayY, rayZ = blk.Tci.X*rayX+blk.Tci.Y*rayY+blk.Tci.Z*rayZ,
				blk.Tcj.X*rayX+blk.Tcj.Y*rayY+blk.Tcj.Z*rayZ,
				blk.Tck.X*rayX+blk.Tck.Y*rayY+blk.Tck.Z*rayZ
		}

		var t float32
		var ok bool
		if s.Tag == scene.SurfPlane {
			t, _, ok = solvePlane(blk, rayZ, dffZ)
		} else {
			t, _, ok = solveQuadric(blk, rayX, rayY, rayZ, dffX, dffY, dffZ)
		}
		if !ok || t <= ctx.TMin || t >= tMax[i] {
			continue
		}

		worldHitX := ctx.OrgX[i] + ctx.RayX[i]*t
		worldHitY := ctx.OrgY[i] + ctx.RayY[i]*t
		worldHitZ := ctx.OrgZ[i] + ctx.RayZ[i]*t
		if k.evalClippers(s, worldHitX, worldHitY, worldHitZ, i) {
			occluded[i] = true
		}
	}
}

func solvePlane(blk *scene.SurfaceSIMD, rayK, dffK float32) (t float32, side simd.Side, ok bool) {
	if rayK == 0 {
		return 0, 0, false
	}
	t = -dffK / rayK
	if rayK < 0 {
		side = simd.SideOuter
	} else {
		side = simd.SideInner
	}
	return t, side, true
}

// quadricSingularEps bounds |a| below which the quadratic's leading
// coefficient is too close to zero to divide by safely but isn't exactly
// the degenerate two-plane case -- a ray passing near a cone's apex or a
// saddle's singular generator, where solveConicSingularity takes over.
const quadricSingularEps = 1e-7

// solveQuadric assembles a,b,c,d as described in spec.md §4.3 and
// returns the nearest root that is not behind the origin: the outer root
// when it is ahead (SideOuter), otherwise the inner root (SideInner).
func solveQuadric(blk *scene.SurfaceSIMD, rayX, rayY, rayZ, dffX, dffY, dffZ float32) (t float32, side simd.Side, ok bool) {
	sci, scj := blk.Sci, blk.Scj
	ray := [3]float32{rayX, rayY, rayZ}
	dff := [3]float32{dffX, dffY, dffZ}

	var a, b, c, r2 float32
	for ax := 0; ax < 3; ax++ {
		a += sci[ax] * ray[ax] * ray[ax]
		b += sci[ax]*ray[ax]*dff[ax] - scj[ax]*ray[ax]/2
		c += sci[ax]*dff[ax]*dff[ax] - scj[ax]*dff[ax]
		r2 += dff[ax] * dff[ax]
	}
	c -= sci[3]

	d := b*b - a*c
	if d < 0 {
		return 0, 0, false
	}
	sq := float32(math.Sqrt(float64(d)))

	if a == 0 {
		// Degenerate two-plane form: linear in the remaining axes.
		if b == 0 {
			return 0, 0, false
		}
		t = -c / (2 * b)
		if b > 0 {
			side = simd.SideOuter
		} else {
			side = simd.SideInner
		}
		return t, side, true
	}

	if absF32(a) < quadricSingularEps {
		return solveConicSingularity(b, c)
	}

	scale := float32(math.Sqrt(float64(absF32(sci[3]) + r2)))
	if scale > 0 && sq < 1e-3*scale {
		// Nearly-equal roots (grazing/near-tangent hit): (-b-sq)/a and
		// (-b+sq)/a subtract two close-magnitude values for one of the
		// two roots, losing precision. Compute the well-conditioned root
		// first and recover its partner from the product t1*t2 = c/a.
		q := -(b + signF32(b)*sq)
		if q == 0 {
			return 0, 0, false
		}
		t1 := q / a
		t2 := c / q
		outer, inner := t1, t2
		if outer > inner {
			outer, inner = inner, outer
		}
		if outer >= 0 {
			return outer, simd.SideOuter, true
		}
		if inner >= 0 {
			return inner, simd.SideInner, true
		}
		return 0, 0, false
	}

	var outer, inner float32
	if a > 0 {
		outer, inner = (-b-sq)/a, (-b+sq)/a
	} else {
		outer, inner = (-b+sq)/a, (-b-sq)/a
	}

	if outer >= 0 {
		return outer, simd.SideOuter, true
	}
	if inner >= 0 {
		return inner, simd.SideInner, true
	}
	return 0, 0, false
}

// solveConicSingularity handles the |a| ~ 0 case that isn't the exact
// two-plane degeneracy: a ray running near-parallel to a cone's apex
// generator or a saddle's singular line, where the remaining linear term
// in a*t^2+2bt+c=0 would otherwise divide by a near-zero a and blow the
// hit distance out to plus/minus infinity. Falling back to the linear
// solve (as if a were exactly zero) snaps the hit to the nearest regular
// point along the rotational axis instead of speckling the surface with
// spurious far-away roots.
func solveConicSingularity(b, c float32) (t float32, side simd.Side, ok bool) {
	if b == 0 {
		return 0, 0, false
	}
	t = -c / (2 * b)
	if b > 0 {
		side = simd.SideOuter
	} else {
		side = simd.SideInner
	}
	return t, side, true
}

func absF32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func signF32(f float32) float32 {
	if f < 0 {
		return -1
	}
	return 1
}
