// SPDX-License-Identifier: Unlicense OR MIT

package math3

// AxisMap is the per-object permutation+sign table {I,J,K,L -> X,Y,Z,W}
// used by Phase 1 to route SIMD loads through per-axis offsets without
// branches, grounded on object.cpp's a_map/a_sgn byte tables.
//
// Map[a] gives the world axis index (0=X,1=Y,2=Z) that local axis a (in
// I,J,K order) loads from; Sign[a] is +1 or -1. Exactly one permutation of
// {0,1,2} must appear across Map[0:3].
type AxisMap struct {
	Map  [3]int
	Sign [3]float32
}

// IdentityAxisMap is the trivial I->X, J->Y, K->Z, all positive map.
func IdentityAxisMap() AxisMap {
	return AxisMap{Map: [3]int{0, 1, 2}, Sign: [3]float32{1, 1, 1}}
}

// FromSignedPermutation extracts an axis map from a matrix that is known
// (by ClassifyTrm) to be a signed-permutation-plus-scale: each row has
// exactly one non-zero entry in its upper-left 3x3 block.
func FromSignedPermutation(m Mtx) (AxisMap, Vec, bool) {
	var am AxisMap
	var scale Vec
	used := [3]bool{}
	for row := 0; row < 3; row++ {
		col := -1
		for c := 0; c < 3; c++ {
			if m.M[row][c] != 0 {
				if col != -1 {
					return AxisMap{}, Vec{}, false
				}
				col = c
			}
		}
		if col == -1 || used[col] {
			return AxisMap{}, Vec{}, false
		}
		used[col] = true
		v := m.M[row][col]
		sign := float32(1)
		if v < 0 {
			sign = -1
		}
		am.Map[col] = row
		am.Sign[col] = sign
		scale = scale.WithComp(col, v*sign)
	}
	return am, scale, true
}

// Apply permutes and sign-flips a local-space vector's axes into the
// order the axis map selects.
func (am AxisMap) Apply(v Vec) Vec {
	var r Vec
	for local := 0; local < 3; local++ {
		world := am.Map[local]
		r = r.WithComp(world, v.Comp(local)*am.Sign[local])
	}
	return r
}
