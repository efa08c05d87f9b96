// SPDX-License-Identifier: Unlicense OR MIT

package traverse

import "github.com/neonkingfr/quadray/internal/scene"

// LocalIJK recovers a surface's local-axis (I,J,K) hit coordinates from a
// world-space point, regardless of whether the surface's backend block
// took the full-transform path or the axis-map fast path (spec.md §4.1
// Phase 1 / §9 "Axis map" design note).
func LocalIJK(blk *scene.SurfaceSIMD, worldX, worldY, worldZ float32) (i, j, k float32) {
	relX := worldX - blk.Pos.X
	relY := worldY - blk.Pos.Y
	relZ := worldZ - blk.Pos.Z

	if blk.HasTransform {
		i = blk.Tci.X*relX + blk.Tci.Y*relY + blk.Tci.Z*relZ
		j = blk.Tcj.X*relX + blk.Tcj.Y*relY + blk.Tcj.Z*relZ
		k = blk.Tck.X*relX + blk.Tck.Y*relY + blk.Tck.Z*relZ
		return
	}

	world := [3]float32{relX, relY, relZ}
	var loc [3]float32
	for local := 0; local < 3; local++ {
		loc[local] = blk.AMap.Sign[local] * world[blk.AMap.Map[local]]
	}
	return loc[0], loc[1], loc[2]
}

// axisClipInside reports whether local coordinates (i,j,k) fall within a
// surface's three local axis clippers.
func axisClipInside(s *scene.Surface, i, j, k float32) bool {
	loc := [3]float32{i, j, k}
	for ax := 0; ax < 3; ax++ {
		if loc[ax] < s.Clip[ax].Min || loc[ax] > s.Clip[ax].Max {
			return false
		}
	}
	return true
}

// insideShape reports whether a world-space point lies inside a
// surface's implicit solid: for a plane, on the negative side of its
// local K axis; for a quadric, where its assembled quadratic form is
// non-positive. Used to evaluate custom (CSG) clippers.
func insideShape(s *scene.Surface, worldX, worldY, worldZ float32) bool {
	blk := &s.SIMD
	i, j, k := LocalIJK(blk, worldX, worldY, worldZ)
	if !axisClipInside(s, i, j, k) {
		return false
	}
	if s.Tag == scene.SurfPlane {
		return k <= 0
	}
	loc := [3]float32{i, j, k}
	var v float32
	for ax := 0; ax < 3; ax++ {
		v += blk.Sci[ax]*loc[ax]*loc[ax] - blk.Scj[ax]*loc[ax]
	}
	v -= blk.Sci[3]
	return v <= 0
}

// evalClippers evaluates a surface's axis-min/max clippers and every
// custom clipper against a world-space candidate hit, per spec.md §4.3
// "Per-candidate pipeline" step 2. ENTER/LEAVE markers bracket a group of
// clippers whose individual results are OR-accumulated and then
// AND-applied into the running decision, matching GLOSSARY "Accum
// marker" / "C_ACC".
func (k *Kernel) evalClippers(s *scene.Surface, worldX, worldY, worldZ float32, lane int) bool {
	li, lj, lk := LocalIJK(&s.SIMD, worldX, worldY, worldZ)
	if !axisClipInside(s, li, lj, lk) {
		return false
	}

	pass := true
	inAccum := false
	accumResult := false

	for _, ce := range s.Clippers {
		if ce.IsAccum {
			if !ce.AccumEnd {
				inAccum = true
				accumResult = false
			} else {
				inAccum = false
				pass = pass && accumResult
			}
			continue
		}

		other := &k.Reg.Surfaces[ce.Surface]
		in := insideShape(other, worldX, worldY, worldZ)

		var keep bool
		switch ce.Kind {
		case scene.RelMinusOuter:
			keep = !in
		case scene.RelMinusInner:
			keep = in
		default:
			keep = true
		}

		if inAccum {
			accumResult = accumResult || keep
		} else {
			pass = pass && keep
		}
		if !pass && !inAccum {
			return false
		}
	}
	return pass
}
