// SPDX-License-Identifier: Unlicense OR MIT

package update

import "github.com/neonkingfr/quadray/internal/scene"

const boundInf = 1e6 // finite stand-in for unbounded axes; not referenced by the code in this package

// AdjustMinMax tightens a surface's raw local-space axis clippers into a
// shape-aware bounding box, per spec.md §4.1 Phase 2 step 2. The
// returned Bounds is in the surface's local I,J,K frame.
func AdjustMinMax(tag scene.SurfTag, params scene.ShapeParams, clip [3]scene.Interval) scene.Bounds {
	switch tag {
	case scene.SurfPlane:
		return adjustPlane(clip)
	case scene.SurfSphere:
		return adjustRadial(clip, params.Radius, params.Radius)
	case scene.SurfCylinder:
		return adjustCylinder(clip, params.Radius)
	case scene.SurfCone:
		return adjustCone(clip, params.Ratio)
	case scene.SurfParaboloid, scene.SurfHyperboloid, scene.SurfHypercylinder, scene.SurfParacylinder, scene.SurfHyperparaboloid:
		return adjustUnboundedQuadric(clip)
	default:
		return scene.Bounds{}
	}
}

func adjustPlane(clip [3]scene.Interval) scene.Bounds {
	// A plane's local K axis always collapses to 0; I and J come
	// straight from the clippers and must both be finite for the plane
	// to have a finite bbox (spec.md §3 invariant on surface bboxes).
	if !clip[0].Finite() || !clip[1].Finite() {
		return scene.Bounds{}
	}
	return scene.Bounds{
		Min:   vec3(clip[0].Min, clip[1].Min, 0),
		Max:   vec3(clip[0].Max, clip[1].Max, 0),
		Valid: true,
	}
}

func adjustRadial(clip [3]scene.Interval, radiusI, radiusJK float32) scene.Bounds {
	b := scene.Bounds{Valid: true}
	b.Min = vec3(
		maxf(-radiusI, clip[0].Min),
		maxf(-radiusJK, clip[1].Min),
		maxf(-radiusJK, clip[2].Min),
	)
	b.Max = vec3(
		minf(radiusI, clip[0].Max),
		minf(radiusJK, clip[1].Max),
		minf(radiusJK, clip[2].Max),
	)
	return b
}

func adjustCylinder(clip [3]scene.Interval, radius float32) scene.Bounds {
	// Cylinder: I,J bounded by radius; K follows the clipper, which may
	// be unbounded (an infinite cylinder has no finite bbox).
	if !clip[2].Finite() {
		return scene.Bounds{}
	}
	b := scene.Bounds{Valid: true}
	b.Min = vec3(maxf(-radius, clip[0].Min), maxf(-radius, clip[1].Min), clip[2].Min)
	b.Max = vec3(minf(radius, clip[0].Max), minf(radius, clip[1].Max), clip[2].Max)
	return b
}

func adjustCone(clip [3]scene.Interval, ratio float32) scene.Bounds {
	if !clip[2].Finite() {
		return scene.Bounds{}
	}
	// Radius grows linearly with |K|; take the extreme of the K range.
	rMax := ratio * maxf(absf(clip[2].Min), absf(clip[2].Max))
	b := scene.Bounds{Valid: true}
	b.Min = vec3(maxf(-rMax, clip[0].Min), maxf(-rMax, clip[1].Min), clip[2].Min)
	b.Max = vec3(minf(rMax, clip[0].Max), minf(rMax, clip[1].Max), clip[2].Max)
	return b
}

func adjustUnboundedQuadric(clip [3]scene.Interval) scene.Bounds {
	// Paraboloids/hyperboloids/hyperparaboloids are unclosed along their
	// roll axis unless the user supplies finite clippers on every axis;
	// spec.md §3's invariant makes boundedness entirely clipper-driven
	// for these shapes.
	if !clip[0].Finite() || !clip[1].Finite() || !clip[2].Finite() {
		return scene.Bounds{}
	}
	return scene.Bounds{
		Min:   vec3(clip[0].Min, clip[1].Min, clip[2].Min),
		Max:   vec3(clip[0].Max, clip[1].Max, clip[2].Max),
		Valid: true,
	}
}

// AdjustWithClippers implements spec.md §4.1 Phase 2 step 3: when custom
// clippers exist and ADJUST is enabled, iteratively intersect bbox with
// each MINUS_OUTER clipper's own bbox contribution, producing a tightened
// bbox and an expanded cbox (the region the clip pass must still test).
func AdjustWithClippers(bbox scene.Bounds, clipperBounds []scene.Bounds) (tightened, cbox scene.Bounds) {
	tightened = bbox
	cbox = bbox
	for _, cb := range clipperBounds {
		if !cb.Valid {
			continue
		}
		inter := intersect(tightened, cb)
		if inter.Valid {
			tightened = inter
		}
		cbox = cbox.Union(cb)
	}
	return tightened, cbox
}

func intersect(a, b scene.Bounds) scene.Bounds {
	if !a.Valid || !b.Valid {
		return scene.Bounds{}
	}
	min := vmax(a.Min, b.Min)
	max := vmin(a.Max, b.Max)
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return scene.Bounds{}
	}
	return scene.Bounds{Min: min, Max: max, Valid: true}
}

// BoxGeometry reports how many vertices/edges/faces a finite bbox
// generates, per spec.md §4.1's closing paragraph: 8/12/6 for a full
// box, 4/4/1 when an axis is degenerate (collapsed to a plane), 0 for a
// boundless box.
type BoxGeometry struct {
	Vertices, Edges, Faces int
}

func GenerateBoxGeometry(b scene.Bounds) BoxGeometry {
	if !b.Valid {
		return BoxGeometry{}
	}
	degenerate := 0
	if b.Min.X == b.Max.X {
		degenerate++
	}
	if b.Min.Y == b.Max.Y {
		degenerate++
	}
	if b.Min.Z == b.Max.Z {
		degenerate++
	}
	switch {
	case degenerate == 0:
		return BoxGeometry{Vertices: 8, Edges: 12, Faces: 6}
	case degenerate == 1:
		return BoxGeometry{Vertices: 4, Edges: 4, Faces: 1}
	default:
		return BoxGeometry{}
	}
}
