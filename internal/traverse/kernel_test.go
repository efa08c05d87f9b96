// SPDX-License-Identifier: Unlicense OR MIT

package traverse

import (
	"testing"

	"github.com/neonkingfr/quadray/internal/config"
	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/qerr"
	"github.com/neonkingfr/quadray/internal/scene"
	"github.com/neonkingfr/quadray/internal/simd"
	"github.com/neonkingfr/quadray/internal/update"
)

func buildSphereScene(t *testing.T) *scene.Registry {
	t.Helper()
	b := scene.NewBuilder()
	b.Reg.NewMaterial(scene.Material{})
	root := b.Root()
	b.Surface(root, scene.SurfSphere, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{Z: 10},
		scene.ShapeParams{Radius: 2}, 0, 0)
	update.Run(b.Reg, 0, 0, config.Default())
	return b.Reg
}

func TestTraceHitsSphereHeadOn(t *testing.T) {
	reg := buildSphereScene(t)
	k := NewKernel(reg, config.Default(), &qerr.Stats{})

	ctx := simd.NewContext(1)
	ctx.OrgZ[0] = 0
	ctx.RayZ[0] = 1
	ctx.TBuf[0] = 1000

	k.Shade = func(ctx *simd.Context, depth int) {}
	k.Trace(ctx, 0)

	if ctx.HitSurf[0] != 0 {
		t.Fatalf("expected to hit surface 0, got %d", ctx.HitSurf[0])
	}
	wantT := float32(8) // sphere at z=10 radius 2, ray from z=0 along +Z hits at z=8
	if diff := ctx.TBuf[0] - wantT; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("expected t~=%v, got %v", wantT, ctx.TBuf[0])
	}
}

func TestTraceMissesWhenRayPointsAway(t *testing.T) {
	reg := buildSphereScene(t)
	k := NewKernel(reg, config.Default(), &qerr.Stats{})

	ctx := simd.NewContext(1)
	ctx.OrgZ[0] = 0
	ctx.RayZ[0] = -1
	ctx.TBuf[0] = 1000
	k.Shade = func(ctx *simd.Context, depth int) {}
	k.Trace(ctx, 0)

	if ctx.HitSurf[0] != -1 {
		t.Fatalf("expected a miss, got hit on surface %d at t=%v", ctx.HitSurf[0], ctx.TBuf[0])
	}
}
