// SPDX-License-Identifier: Unlicense OR MIT

package update

import (
	"github.com/neonkingfr/quadray/internal/config"
	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/scene"
)

// phase2 rebuilds bounding boxes bottom-up, per spec.md §4.1 Phase 2, and
// aggregates array aux/box bounds. It returns the world-space Bounds of
// the subtree rooted at ref, so the caller (an enclosing array) can fold
// it into its own aggregate.
func phase2(reg *scene.Registry, ref scene.Ref, cfg config.Options) scene.Bounds {
	base := reg.Base(ref)
	if base == nil {
		return scene.Bounds{}
	}

	switch ref.Kind {
	case scene.KindSurface:
		return phase2Surface(reg, reg.Surface(ref), cfg)
	case scene.KindArray:
		return phase2Array(reg, reg.Array(ref), cfg)
	default:
		// Cameras and lights carry no bounding geometry of their own.
		return scene.Bounds{}
	}
}

func phase2Surface(reg *scene.Registry, s *scene.Surface, cfg config.Options) scene.Bounds {
	local := AdjustMinMax(s.Tag, s.Params, s.Clip)

	if len(s.Clippers) > 0 && cfg.Adjust {
		var clipperBounds []scene.Bounds
		for _, ce := range s.Clippers {
			if ce.IsAccum || ce.Kind != scene.RelMinusOuter {
				continue
			}
			other := reg.Surfaces[ce.Surface]
			clipperBounds = append(clipperBounds, AdjustMinMax(other.Tag, other.Params, other.Clip))
		}
		tightened, cbox := AdjustWithClippers(local, clipperBounds)
		local = tightened
		s.Cbox = worldBounds(s.World, cbox)
	} else {
		s.Cbox = scene.Bounds{}
	}

	s.Bound = worldBounds(s.World, local)
	return s.Bound
}

func phase2Array(reg *scene.Registry, a *scene.Array, cfg config.Options) scene.Bounds {
	var aux, box scene.Bounds
	for _, c := range a.Children {
		child := phase2(reg, c, cfg)
		if !child.Valid {
			continue
		}
		if c.Kind == scene.KindSurface {
			aux = childOrFirst(aux, child)
		}
		box = childOrFirst(box, child)
	}
	a.Aux = aux
	a.Box = box

	if cfg.VArray && a.HasBoundingVolume && box.Valid {
		center := box.Min.Add(box.Max).Mul(0.5)
		r := box.Max.Sub(center)
		a.BVCenter = center
		a.BVRadiusSq = r.Dot(r)
	}
	return box
}

// childOrFirst returns child when acc is still the zero Bounds, so the
// first real contribution seeds the union instead of intersecting
// against an invalid zero value.
func childOrFirst(acc, child scene.Bounds) scene.Bounds {
	if !acc.Valid {
		return child
	}
	return acc.Union(child)
}

func worldBounds(world math3.Mtx, local scene.Bounds) scene.Bounds {
	if !local.Valid {
		return scene.Bounds{}
	}
	var out scene.Bounds
	for i := 0; i < 8; i++ {
		v := math3.Vec{
			X: pick(i&1 != 0, local.Min.X, local.Max.X),
			Y: pick(i&2 != 0, local.Min.Y, local.Max.Y),
			Z: pick(i&4 != 0, local.Min.Z, local.Max.Z),
		}
		w := world.MulPoint(v)
		if i == 0 {
			out = scene.Bounds{Min: w, Max: w, Valid: true}
		} else {
			out.Min = math3.Min(out.Min, w)
			out.Max = math3.Max(out.Max, w)
		}
	}
	return out
}

func pick(b bool, a, c float32) float32 {
	if b {
		return c
	}
	return a
}
