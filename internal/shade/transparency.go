// SPDX-License-Identifier: Unlicense OR MIT

package shade

import (
	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/scene"
	"github.com/neonkingfr/quadray/internal/simd"
)

// transparencyAndReflection implements spec.md §4.4's reflection and
// refraction branch: a dielectric or metal Fresnel term weighs a
// recursive reflected sub-ray against a recursive refracted sub-ray (or
// total internal reflection folds entirely into the reflected branch).
// Recursion is expressed as a single-lane sub-Context passed back into
// internal/traverse's Kernel.Trace, per this package's doc-comment note
// on bounded per-lane recursion.
func (sh *Shader) transparencyAndReflection(ctx *simd.Context, lane int, depth int, surf *scene.Surface, mat *scene.Material, hit, n, view math3.Vec, albedo scene.Color) scene.Color {
	var out scene.Color
	if depth >= sh.Cfg.MaxDepth {
		sh.Stats.RecordDepthCap()
		return out
	}
	if !mat.Has(scene.MatReflect) && !mat.Has(scene.MatRefract) && !mat.Has(scene.MatTransp) {
		return out
	}

	hasRefract := mat.Has(scene.MatRefract) || mat.Has(scene.MatTransp)

	// fr only rises above the material's flat constants when FRESNEL is
	// on; spec.md §4.4: "if FRESNEL is on compute an angle-dependent
	// reflectance ... storing the result so c_rfl rises and c_trn
	// falls". Without it, c_rfl/c_trn stay at Reflectivity/Transparency,
	// so a non-Fresnel glass or mirror material is expressible.
	fresnelOn := mat.Has(scene.MatFresnel)
	var fr float32
	if fresnelOn {
		if mat.Has(scene.MatMetal) {
			fr = metalFresnel(view, n, mat)
		} else {
			fr = dielectricFresnel(view, n, mat.RefrIndex)
		}
	}

	cRfl := mat.Reflectivity
	cTrn := mat.Transparency

	if hasRefract {
		refrDir, ok := refract(view, n, mat.RefrIndex)
		if !ok {
			// Total internal reflection: all energy goes to the
			// reflected branch.
			if fresnelOn {
				fr = 1
			}
			cRfl = mat.Reflectivity + mat.Transparency
			cTrn = 0
		} else {
			if fresnelOn {
				cTrn = (1 - fr) * mat.Transparency
			}
			refrColor := sh.traceSub(ctx, lane, depth, hit, refrDir)
			out = out.Add(refrColor.Scale(albedo).Mul(cTrn))
		}
	}

	if mat.Has(scene.MatReflect) {
		reflDir := view.Reflect(n)
		reflColor := sh.traceSub(ctx, lane, depth, hit, reflDir)
		weight := cRfl
		if hasRefract && fresnelOn {
			weight = mat.Reflectivity + mat.Transparency*fr
		}
		out = out.Add(reflColor.Mul(weight))
	}

	return out
}

// pathTraceSpecular implements spec.md §4.5's stochastic reflect/refract
// branch: unlike transparencyAndReflection's deterministic weighted sum
// of both branches, a path-traced sample follows exactly one of them,
// chosen with probability equal to the (possibly Fresnel-weighted)
// reflectance, and divides the traced color by that probability so the
// single-sample estimator stays unbiased in expectation.
func (sh *Shader) pathTraceSpecular(ctx *simd.Context, lane int, depth int, mat *scene.Material, hit, n, view math3.Vec, albedo scene.Color) scene.Color {
	hasReflect := mat.Has(scene.MatReflect)
	hasRefract := mat.Has(scene.MatRefract) || mat.Has(scene.MatTransp)
	if !hasReflect && !hasRefract {
		return scene.Color{}
	}

	fresnelOn := mat.Has(scene.MatFresnel)
	var fr float32
	if hasRefract && hasReflect {
		if fresnelOn {
			if mat.Has(scene.MatMetal) {
				fr = metalFresnel(view, n, mat)
			} else {
				fr = dielectricFresnel(view, n, mat.RefrIndex)
			}
		} else {
			total := mat.Reflectivity + mat.Transparency
			if total > 0 {
				fr = mat.Reflectivity / total
			} else {
				fr = 1
			}
		}
	} else if hasReflect {
		fr = 1
	}
	// else hasRefract only: fr stays 0, always refract.

	var refrDir math3.Vec
	refrOK := false
	if hasRefract {
		refrDir, refrOK = refract(view, n, mat.RefrIndex)
		if !refrOK {
			fr = 1 // total internal reflection folds entirely into reflect
		}
	}

	r := nextRand(&ctx.Seed[lane])
	if r < fr {
		if fr <= 0 || !hasReflect {
			return scene.Color{}
		}
		reflDir := view.Reflect(n)
		reflColor := sh.traceSub(ctx, lane, depth, hit, reflDir)
		return reflColor.Mul(mat.Reflectivity / fr)
	}

	p := 1 - fr
	if p <= 0 || !refrOK {
		return scene.Color{}
	}
	refrColor := sh.traceSub(ctx, lane, depth, hit, refrDir)
	return refrColor.Scale(albedo).Mul(mat.Transparency / p)
}

// traceSub recurses a single-lane sub-ray from hit along dir, carrying
// the parent lane's random seed, pixel index and background color (its
// throughput starts at 1; callers weight the result), and returns the
// resulting color. The sub-ray's Context comes from ctx.Frames's
// preallocated ring (see FrameStack) rather than a fresh per-call
// allocation.
func (sh *Shader) traceSub(ctx *simd.Context, lane int, depth int, hit, dir math3.Vec) scene.Color {
	sub, done := sh.pushFrame(ctx)
	if sub == nil {
		return scene.Color{}
	}
	defer done()

	sub.OrgX[0], sub.OrgY[0], sub.OrgZ[0] = hit.X, hit.Y, hit.Z
	sub.RayX[0], sub.RayY[0], sub.RayZ[0] = dir.X, dir.Y, dir.Z
	sub.TBuf[0] = 1e30
	sub.BgR, sub.BgG, sub.BgB = ctx.BgR, ctx.BgG, ctx.BgB
	if len(ctx.Seed) > lane {
		sub.Seed[0] = ctx.Seed[lane]
	}
	sub.PixelIdx[0] = ctx.PixelIdx[lane]

	sh.Kernel.Trace(sub, depth+1)
	return scene.Color{R: sub.ColR[0], G: sub.ColG[0], B: sub.ColB[0]}
}

// refract implements spec.md §4.4's refraction direction:
// eta*v - (eta*(n.v) + sqrt(1 - eta^2*(1-(n.v)^2)))*n, returning ok=false
// on total internal reflection. v is the incident direction (pointing
// into the surface); eta is the ratio of the incident to transmitted
// index of refraction.
func refract(v, n math3.Vec, refrIndex float32) (math3.Vec, bool) {
	ndotv := n.Dot(v)
	nn := n
	eta := float32(1) / refrIndex
	if ndotv > 0 {
		// Leaving the medium: flip the normal and invert the ratio.
		nn = n.Neg()
		eta = refrIndex
		ndotv = -ndotv
	}
	k := 1 - eta*eta*(1-ndotv*ndotv)
	if k < 0 {
		return math3.Vec{}, false
	}
	t := v.Mul(eta).Sub(nn.Mul(eta*ndotv + sqrt32(k)))
	return t.Norm(), true
}

// dielectricFresnel computes the unpolarized Fresnel reflectance for a
// dielectric interface from the full formula, falling back to the
// Schlick approximation when the exact form is not numerically stable
// (near-grazing angles), per spec.md §4.4's "Fresnel" note naming both a
// full-precision and a low-precision path.
func dielectricFresnel(view, n math3.Vec, refrIndex float32) float32 {
	cosi := -view.Dot(n)
	eta := 1 / refrIndex
	if cosi < 0 {
		// Leaving the medium: same ratio inversion as refract.
		cosi = -cosi
		eta = refrIndex
	}
	sint2 := eta * eta * (1 - cosi*cosi)
	if sint2 > 1 {
		return 1 // total internal reflection
	}
	cost := sqrt32(1 - sint2)
	if cost < 1e-4 {
		// Near-grazing: the exact ratio below loses precision, use the
		// Schlick approximation instead.
		return schlickFresnel(cosi, refrIndex)
	}

	rs := (eta*cosi - cost) / (eta*cosi + cost)
	rp := (cosi - eta*cost) / (cosi + eta*cost)
	return (rs*rs + rp*rp) / 2
}

// schlickFresnel is the low-precision Fresnel approximation spec.md §4.4
// names as an alternative to the full form above.
func schlickFresnel(cosi, refrIndex float32) float32 {
	r0 := (refrIndex - 1) / (refrIndex + 1)
	r0 *= r0
	x := 1 - cosi
	return r0 + (1-r0)*x*x*x*x*x
}

// metalFresnel dispatches to the exact conductor Fresnel formula or its
// fast rational approximation, mirroring dielectricFresnel's exact/Schlick
// split: near grazing angles the exact rs/rp ratios lose precision the
// same way the dielectric ones do, so the approximation takes over there.
func metalFresnel(view, n math3.Vec, mat *scene.Material) float32 {
	cosi := -view.Dot(n)
	if cosi < 0 {
		cosi = -cosi
	}
	if cosi < 1e-4 {
		return metalFresnelFast(cosi, mat)
	}
	return metalFresnelExact(cosi, mat)
}

// metalFresnelExact computes reflectance for a conductor with complex
// index of refraction (eta, kappa), using mat.Eta and mat.ExtinctionSq
// (kappa^2), per spec.md §4.4's metal Fresnel note.
func metalFresnelExact(cosi float32, mat *scene.Material) float32 {
	eta2 := mat.Eta * mat.Eta
	k2 := mat.ExtinctionSq
	cosi2 := cosi * cosi

	t0 := eta2 + k2
	t1 := t0 * cosi2
	rs := (t1 - 2*mat.Eta*cosi + 1) / (t1 + 2*mat.Eta*cosi + 1)
	rp := (t0 - 2*mat.Eta*cosi + cosi2) / (t0 + 2*mat.Eta*cosi + cosi2)
	return (rs + rp) / 2
}

// metalFresnelFast is a Schlick-style rational approximation for
// conductors: the normal-incidence reflectance R0 derived from (eta,
// kappa) interpolated toward 1 by the same (1-cosi)^5 falloff
// schlickFresnel uses for dielectrics.
func metalFresnelFast(cosi float32, mat *scene.Material) float32 {
	num := (mat.Eta-1)*(mat.Eta-1) + mat.ExtinctionSq
	den := (mat.Eta+1)*(mat.Eta+1) + mat.ExtinctionSq
	r0 := num / den
	x := 1 - cosi
	return r0 + (1-r0)*x*x*x*x*x
}

