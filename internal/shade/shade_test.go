// SPDX-License-Identifier: Unlicense OR MIT

package shade

import (
	"math"
	"testing"

	"github.com/neonkingfr/quadray/internal/config"
	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/qerr"
	"github.com/neonkingfr/quadray/internal/scene"
	"github.com/neonkingfr/quadray/internal/simd"
	"github.com/neonkingfr/quadray/internal/traverse"
	"github.com/neonkingfr/quadray/internal/update"
)

func buildLitSphere(t *testing.T) (*scene.Registry, int32) {
	t.Helper()
	b := scene.NewBuilder()
	matIdx := b.Reg.NewMaterial(scene.Material{
		Props:    scene.MatDiffuseFlag | scene.MatAmbientColored,
		Color:    scene.Color{R: 1, G: 1, B: 1},
		Diffuse:  1,
		AmbientSrc: scene.Color{R: 0.1, G: 0.1, B: 0.1},
	})
	root := b.Root()
	ref := b.Surface(root, scene.SurfSphere, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{Z: 10},
		scene.ShapeParams{Radius: 2}, matIdx, matIdx)
	b.Light(root, math3.Vec{X: 0, Y: 0, Z: 0}, scene.Color{R: 1, G: 1, B: 1}, 1,
		scene.Attenuation{Constant: 1})
	update.Run(b.Reg, 0, 0, config.Default())
	return b.Reg, ref.Index
}

func TestShadeColorsHeadOnHit(t *testing.T) {
	reg, _ := buildLitSphere(t)
	k := traverse.NewKernel(reg, config.Default(), &qerr.Stats{})
	sh := New(k, reg, config.Default(), &qerr.Stats{})
	_ = sh

	ctx := simd.NewContext(1)
	ctx.RayZ[0] = 1
	ctx.TBuf[0] = 1000
	ctx.BgR, ctx.BgG, ctx.BgB = 0.2, 0.2, 0.3

	k.Trace(ctx, 0)

	if ctx.HitSurf[0] != 0 {
		t.Fatalf("expected hit on surface 0, got %d", ctx.HitSurf[0])
	}
	if ctx.ColR[0] <= 0 {
		t.Fatalf("expected positive lit color, got %v", ctx.ColR[0])
	}
}

func TestShadeMissUsesBackground(t *testing.T) {
	reg, _ := buildLitSphere(t)
	k := traverse.NewKernel(reg, config.Default(), &qerr.Stats{})
	_ = New(k, reg, config.Default(), &qerr.Stats{})

	ctx := simd.NewContext(1)
	ctx.RayZ[0] = -1
	ctx.TBuf[0] = 1000
	ctx.BgR, ctx.BgG, ctx.BgB = 0.2, 0.3, 0.4

	k.Trace(ctx, 0)

	if ctx.HitSurf[0] != -1 {
		t.Fatalf("expected a miss, got hit on surface %d", ctx.HitSurf[0])
	}
	if ctx.ColR[0] != 0.2 || ctx.ColG[0] != 0.3 || ctx.ColB[0] != 0.4 {
		t.Fatalf("expected background color, got (%v,%v,%v)", ctx.ColR[0], ctx.ColG[0], ctx.ColB[0])
	}
}

func TestComputeNormalPointsOutward(t *testing.T) {
	reg, surfIdx := buildLitSphere(t)
	s := reg.Surface(scene.Ref{Kind: scene.KindSurface, Index: surfIdx})

	hit := math3.Vec{X: 0, Y: 0, Z: 8} // nearest point on the sphere to the origin
	n := computeNormal(s, simd.SideOuter, hit)

	want := math3.Vec{X: 0, Y: 0, Z: -1}
	if d := n.Sub(want).Len(); d > 1e-3 {
		t.Fatalf("expected outward normal ~%v, got %v", want, n)
	}
}

func TestPow28_4MatchesMathPow(t *testing.T) {
	cases := []struct {
		base  float32
		power float32
	}{
		{0.5, 1}, {0.5, 2}, {0.9, 8}, {0.25, 4},
	}
	for _, c := range cases {
		got := Pow28_4(c.base, NewFixed28_4(c.power))
		want := float32(math.Pow(float64(c.base), float64(c.power)))
		if diff := got - want; diff > 0.05 || diff < -0.05 {
			t.Errorf("Pow28_4(%v, %v) = %v, want ~%v", c.base, c.power, got, want)
		}
	}
}

func TestDielectricFresnelAtNormalIncidence(t *testing.T) {
	view := math3.Vec{X: 0, Y: 0, Z: 1}
	n := math3.Vec{X: 0, Y: 0, Z: -1}
	fr := dielectricFresnel(view, n, 1.5)
	// At normal incidence, R = ((n-1)/(n+1))^2.
	want := float32(((1.5 - 1) / (1.5 + 1)) * ((1.5 - 1) / (1.5 + 1)))
	if diff := fr - want; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("dielectricFresnel at normal incidence = %v, want ~%v", fr, want)
	}
}

func TestRefractStraightThroughAtNormalIncidence(t *testing.T) {
	view := math3.Vec{X: 0, Y: 0, Z: 1}
	n := math3.Vec{X: 0, Y: 0, Z: -1}
	dir, ok := refract(view, n, 1.5)
	if !ok {
		t.Fatal("expected refraction to succeed at normal incidence")
	}
	if d := dir.Sub(view).Len(); d > 1e-3 {
		t.Fatalf("expected refracted ray to continue straight, got %v", dir)
	}
}

func TestPathStateRunningMean(t *testing.T) {
	ps := NewPathState()
	a := ps.Record(0, scene.Color{R: 1})
	if a.R != 1 {
		t.Fatalf("first sample should be the mean, got %v", a.R)
	}
	b := ps.Record(0, scene.Color{R: 0})
	if b.R != 0.5 {
		t.Fatalf("expected running mean 0.5 after two samples, got %v", b.R)
	}
}
