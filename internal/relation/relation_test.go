// SPDX-License-Identifier: Unlicense OR MIT

package relation

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/scene"
)

func buildCSGScene(t *testing.T) (*scene.Registry, scene.Ref, scene.Ref) {
	t.Helper()
	b := scene.NewBuilder()
	root := b.Root()
	shell := b.Surface(root, scene.SurfHyperboloid, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{Z: 3},
		scene.ShapeParams{Ratio: 2.5, HypOffset: -0.5}, 0, 0)
	cutout := b.Surface(root, scene.SurfSphere, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{Z: 3},
		scene.ShapeParams{Radius: 3.0}, 0, 0)
	return b.Reg, shell, cutout
}

func TestAddClipAndValidate(t *testing.T) {
	reg, shell, cutout := buildCSGScene(t)
	c := New(reg)
	if err := c.Apply([]Spec{{Obj1: shell, Obj2: cutout, Kind: scene.RelMinusOuter}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := len(reg.Surface(shell).Clippers); got != 1 {
		t.Fatalf("expected 1 clipper entry, got %d", got)
	}
	if err := Validate(reg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAccumBracketMatching(t *testing.T) {
	reg, shell, cutout := buildCSGScene(t)
	c := New(reg)
	c.BeginAccum(shell)
	if err := c.addClip(shell, cutout, scene.RelMinusOuter); err != nil {
		t.Fatal(err)
	}
	c.EndAccum(shell)
	if err := Validate(reg); err != nil {
		t.Fatalf("balanced accum should validate: %v", err)
	}

	// Now unbalance it and expect Validate to reject.
	c.BeginAccum(shell)
	if err := Validate(reg); err == nil {
		t.Fatal("expected Validate to reject an unmatched ENTER marker")
	}
}

func TestBoundingVolumePropagatesToDescendants(t *testing.T) {
	b := scene.NewBuilder()
	root := b.Root()
	bvHolder := b.Array(root, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{})
	sub := b.Array(bvHolder, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{})
	leaf := b.Surface(sub, scene.SurfSphere, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{}, scene.ShapeParams{Radius: 1}, 0, 0)

	c := New(b.Reg)
	if err := c.Apply([]Spec{{Obj1: sub, Obj2: bvHolder, Kind: scene.RelBoundArray}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if b.Reg.Surface(leaf).BvNode != bvHolder {
		t.Fatalf("expected leaf surface to inherit bvnode %v, got %v", bvHolder, b.Reg.Surface(leaf).BvNode)
	}

	if err := c.Apply([]Spec{{Obj1: sub, Kind: scene.RelUntieArray}}); err != nil {
		t.Fatalf("Apply untie: %v", err)
	}
	if b.Reg.Surface(leaf).BvNode.Valid() {
		t.Fatalf("expected bvnode to be cleared after untie")
	}
}

// TestAccumBracketClipListShape checks the exact compiled clip-entry
// sequence for a bracketed accumulator, not just that it validates: a
// bracket compiles to [ENTER, clip, LEAVE] in list order, nothing more
// or less. spew.Sdump gives a readable diff of the whole slice if this
// ever drifts, since ClipEntry has no compact String form of its own.
func TestAccumBracketClipListShape(t *testing.T) {
	reg, shell, cutout := buildCSGScene(t)
	c := New(reg)
	c.BeginAccum(shell)
	if err := c.addClip(shell, cutout, scene.RelMinusOuter); err != nil {
		t.Fatal(err)
	}
	c.EndAccum(shell)

	want := []scene.ClipEntry{
		{IsAccum: true, AccumEnd: false},
		{Surface: cutout.Index, Kind: scene.RelMinusOuter},
		{IsAccum: true, AccumEnd: true},
	}
	got := reg.Surface(shell).Clippers
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("compiled clip list mismatch:\nwant:\n%sgot:\n%s", spew.Sdump(want), spew.Sdump(got))
	}
}
