// SPDX-License-Identifier: Unlicense OR MIT

package shade

import (
	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/scene"
	"github.com/neonkingfr/quadray/internal/simd"
)

// directLighting implements spec.md §4.4's per-light loop: attenuation,
// shadow-ray occlusion, diffuse (N.L) and specular (R.V)^power terms,
// combined per the material's METAL/PLAIN reflectance model.
func (sh *Shader) directLighting(ctx *simd.Context, lane int, hit, n, view math3.Vec, mat *scene.Material, albedo scene.Color) scene.Color {
	var sum scene.Color
	if !mat.Has(scene.MatDiffuseFlag) && !mat.Has(scene.MatSpecular) {
		return sum
	}

	for li := range sh.Reg.Lights {
		light := &sh.Reg.Lights[li]
		lpos := light.World.Pos()
		toLight := lpos.Sub(hit)
		dist := toLight.Len()
		if dist < 1e-9 {
			continue
		}
		ldir := toLight.Mul(1 / dist)

		ndotl := n.Dot(ldir)
		if ndotl <= 0 {
			continue
		}

		if light.Atten.Range > 0 && dist > light.Atten.Range {
			continue
		}

		if light.Shadows {
			if sh.occluded(ctx, lane, hit, ldir, dist, light) {
				continue
			}
		}

		atten := attenuate(light.Atten, dist)
		lc := light.Color.Mul(light.Luminosity * atten)

		if mat.Has(scene.MatDiffuseFlag) {
			sum = sum.Add(albedo.Scale(lc).Mul(mat.Diffuse * ndotl))
		}

		if mat.Has(scene.MatSpecular) {
			refl := ldir.Neg().Reflect(n)
			rdotv := refl.Dot(view.Neg())
			if rdotv > 0 {
				spec := Pow28_4(rdotv, NewFixed28_4(mat.Power)) * mat.Specular
				if mat.Has(scene.MatMetal) {
					// A conductor's specular highlight is tinted by its own
					// albedo on top of the light's color (spec.md §4.4
					// METAL note).
					sum = sum.Add(albedo.Scale(lc).Mul(spec))
				} else {
					sum = sum.Add(lc.Mul(spec))
				}
			}
		}
	}
	return sum
}

// occluded casts a shadow ray from hit toward the light and reports
// whether anything (other than the originating surface and the light's
// own ignore set) blocks it short of the light's distance. The shadow
// ray's Context comes from ctx.Frames's preallocated ring rather than a
// fresh per-call allocation; hitting the depth cap degrades to "not
// occluded" (spec.md §7's silent degradation) rather than refusing to
// shade the lane.
func (sh *Shader) occluded(ctx *simd.Context, lane int, hit, ldir math3.Vec, dist float32, light *scene.Light) bool {
	shadowCtx, done := sh.pushFrame(ctx)
	if shadowCtx == nil {
		return false
	}
	defer done()

	shadowCtx.OrgX[0], shadowCtx.OrgY[0], shadowCtx.OrgZ[0] = hit.X, hit.Y, hit.Z
	shadowCtx.RayX[0], shadowCtx.RayY[0], shadowCtx.RayZ[0] = ldir.X, ldir.Y, ldir.Z
	shadowCtx.TBuf[0] = dist

	ignore := make(map[int32]bool, len(light.Ignore)+1)
	if ctx.HitSurf[lane] >= 0 {
		ignore[ctx.HitSurf[lane]] = true
	}
	for _, r := range light.Ignore {
		if r.Kind == scene.KindSurface {
			ignore[r.Index] = true
		}
	}

	tMax := []float32{dist - 1e-3}
	occ := sh.Kernel.TraceOcclusion(shadowCtx, tMax, ignore)
	return occ[0]
}

// attenuate implements spec.md §3's {constant, linear, quadratic} falloff.
func attenuate(a scene.Attenuation, dist float32) float32 {
	denom := a.Constant + a.Linear*dist + a.Quadratic*dist*dist
	if denom <= 1e-6 {
		return 1
	}
	return 1 / denom
}
