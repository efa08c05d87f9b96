// SPDX-License-Identifier: Unlicense OR MIT

package shade

import (
	"math"

	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/scene"
	"github.com/neonkingfr/quadray/internal/simd"
)

// PathState holds the per-pixel running-mean accumulators for path-traced
// rendering (spec.md §4.5 "Frame accumulation"): each call to Record
// folds one more sample into a pixel's mean, so repeated render passes
// converge without needing to keep every sample around.
type PathState struct {
	Accum []scene.Color
	Count []uint32
}

func NewPathState() *PathState {
	return &PathState{}
}

// EnsureSize grows the accumulator to cover pixel index n-1, preserving
// the existing running means and sample counts. Render drivers call this once they know the frame's
// pixel count.
func (p *PathState) EnsureSize(n int) {
	if len(p.Accum) >= n {
		return
	}
	accum := make([]scene.Color, n)
	count := make([]uint32, n)
	copy(accum, p.Accum)
	copy(count, p.Count)
	p.Accum, p.Count = accum, count
}

// Record folds sample into pixelIdx's running mean and returns the
// updated mean: accum' = accum*(k/(k+1)) + sample*(1/(k+1)).
func (p *PathState) Record(pixelIdx int, sample scene.Color) scene.Color {
	if pixelIdx < 0 {
		return sample
	}
	p.EnsureSize(pixelIdx + 1)
	k := p.Count[pixelIdx]
	p.Count[pixelIdx] = k + 1
	n := float32(k) + 1
	mean := p.Accum[pixelIdx].Mul(float32(k) / n).Add(sample.Mul(1 / n))
	p.Accum[pixelIdx] = mean
	return mean
}

// nextRand advances an LCG PRNG seed (the multiplier/increment pair is
// the one Knuth's MMIX generator uses) and returns a float32 in [0,1).
func nextRand(seed *uint64) float32 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float32(*seed>>40) / float32(1<<24)
}

// cosineHemisphere draws a cosine-weighted direction around n using two
// uniform randoms, per spec.md §4.5's sampling note.
func cosineHemisphere(n math3.Vec, r1, r2 float32) math3.Vec {
	t, b := orthonormalBasis(n)
	phi := 2 * math.Pi * float64(r1)
	r := sqrt32(r2)
	x := r * float32(math.Cos(phi))
	y := r * float32(math.Sin(phi))
	z := sqrt32(1 - r2)
	return t.Mul(x).Add(b.Mul(y)).Add(n.Mul(z))
}

// orthonormalBasis builds a tangent/bitangent pair for n, falling back
// to a different world axis when n is nearly parallel to the usual one
// (spec.md §4.5 "basis construction" note).
func orthonormalBasis(n math3.Vec) (t, b math3.Vec) {
	up := math3.Vec{X: 0, Y: 1, Z: 0}
	if absf32(n.Y) > 0.99 {
		up = math3.Vec{X: 1, Y: 0, Z: 0}
	}
	t = up.Cross(n).Norm()
	b = n.Cross(t)
	return
}

func absf32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// pathTraceBounce implements spec.md §4.5: one cosine-weighted indirect
// bounce plus a Fresnel-weighted reflect/refract branch when the
// material is reflective or refractive, Russian-roulette terminated, the
// result folded into the pixel's running mean via PathState.Record.
// Cosine-weighted importance sampling cancels the Lambertian cos(theta)/pi
// term exactly, so the diffuse estimator is just albedo*Li with no extra
// pdf division.
func (sh *Shader) pathTraceBounce(ctx *simd.Context, lane int, depth int, mat *scene.Material, hit, n, view math3.Vec, albedo scene.Color) scene.Color {
	sample := sh.tracePathSample(ctx, lane, depth, mat, hit, n, view, albedo)
	if depth > 0 {
		// Only the primary hit's pixel index owns a stable accumulator
		// slot; deeper recursive calls just return their raw estimate to
		// the caller for throughput weighting.
		return sample
	}
	return sh.PT.Record(ctx.PixelIdx[lane], sample)
}

func (sh *Shader) tracePathSample(ctx *simd.Context, lane int, depth int, mat *scene.Material, hit, n, view math3.Vec, albedo scene.Color) scene.Color {
	if depth >= sh.Cfg.MaxDepth {
		sh.Stats.RecordDepthCap()
		return scene.Color{}
	}

	survival := albedo.Max()
	if survival <= 0 {
		return scene.Color{}
	}
	if survival > 1 {
		survival = 1
	}
	if depth > 2 {
		r := nextRand(&ctx.Seed[lane])
		if r > survival {
			return scene.Color{}
		}
	} else {
		survival = 1
	}

	var out scene.Color

	if mat.Has(scene.MatReflect) || mat.Has(scene.MatRefract) || mat.Has(scene.MatTransp) {
		out = out.Add(sh.pathTraceSpecular(ctx, lane, depth, mat, hit, n, view, albedo))
	}

	if mat.Has(scene.MatDiffuseFlag) {
		r1 := nextRand(&ctx.Seed[lane])
		r2 := nextRand(&ctx.Seed[lane])
		dir := cosineHemisphere(n, r1, r2)
		indirect := sh.traceSub(ctx, lane, depth, hit, dir)
		out = out.Add(indirect.Scale(albedo))
	}

	return out.Mul(1 / survival)
}
