// SPDX-License-Identifier: Unlicense OR MIT

package math3

import "testing"

const epsilon = 1e-5

func almostEqual(a, b Vec) bool {
	d := a.Sub(b)
	return d.X*d.X+d.Y*d.Y+d.Z*d.Z < epsilon*epsilon
}

// TestRoundTrip checks invariant 4 from spec §8: transforming a local
// vector to world via mtx then back via the 3x3 inverse rows reproduces
// the original within epsilon.
func TestRoundTrip(t *testing.T) {
	m := NewTRS(Vec{2, 3, 0.5}, Vec{30, 45, 60}, Vec{1, -2, 5})
	tci, tcj, tck := m.Inverse3x3Rows()

	local := Vec{0.3, -1.2, 4.0}
	world := m.MulPoint(local)
	dff := world.Sub(m.Pos())
	back := Vec{tci.Dot(dff), tcj.Dot(dff), tck.Dot(dff)}

	if !almostEqual(local, back) {
		t.Fatalf("round trip mismatch: got %+v want %+v", back, local)
	}
}

func TestClassifyTrm(t *testing.T) {
	cases := []struct {
		scale, rot Vec
		want       TrmKind
	}{
		{Vec{1, 1, 1}, Vec{0, 0, 0}, TrmNone},
		{Vec{1, -1, 1}, Vec{0, 90, 180}, TrmNone},
		{Vec{2, 1, 1}, Vec{0, 0, 0}, TrmScl},
		{Vec{1, 1, 1}, Vec{0, 45, 0}, TrmRot},
		{Vec{2, 1, 1}, Vec{45, 0, 0}, TrmScl | TrmRot},
	}
	for _, c := range cases {
		got := ClassifyTrm(c.scale, c.rot, false)
		if got != c.want {
			t.Errorf("ClassifyTrm(%v, %v) = %v, want %v", c.scale, c.rot, got, c.want)
		}
	}
}

func TestFromSignedPermutation(t *testing.T) {
	m := NewTRS(Vec{2, 3, 4}, Vec{0, 90, 0}, Vec{0, 0, 0})
	am, scale, ok := FromSignedPermutation(m)
	if !ok {
		t.Fatalf("expected signed-permutation decomposition to succeed")
	}
	// For every local axis `col`, the matrix entry at (am.Map[col], col)
	// must equal the extracted signed scale for that local axis.
	for col := 0; col < 3; col++ {
		row := am.Map[col]
		got := m.M[row][col]
		want := scale.Comp(col) * am.Sign[col]
		if got != want {
			t.Errorf("col %d: m[%d][%d]=%v, want sign*scale=%v", col, row, col, got, want)
		}
	}
}
