// SPDX-License-Identifier: Unlicense OR MIT

package update

import (
	"testing"

	"github.com/neonkingfr/quadray/internal/config"
	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/scene"
)

func buildFloorAndSphere(t *testing.T) *scene.Registry {
	t.Helper()
	b := scene.NewBuilder()
	root := b.Root()
	b.Surface(root, scene.SurfPlane, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{},
		scene.ShapeParams{}, 0, 0)
	b.Surface(root, scene.SurfSphere, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{Z: 5},
		scene.ShapeParams{Radius: 1.5}, 0, 0)
	return b.Reg
}

func TestRunProducesFiniteSphereBounds(t *testing.T) {
	reg := buildFloorAndSphere(t)
	cfg := config.Default()
	Run(reg, 0, 0, cfg)

	sphere := &reg.Surfaces[1]
	if !sphere.Bound.Valid {
		t.Fatal("expected sphere to have a finite world bbox")
	}
	want := scene.Bounds{
		Min: math3.Vec{X: -1.5, Y: -1.5, Z: 3.5},
		Max: math3.Vec{X: 1.5, Y: 1.5, Z: 6.5},
		Valid: true,
	}
	const eps = 1e-4
	if absf(sphere.Bound.Min.X-want.Min.X) > eps || absf(sphere.Bound.Max.Z-want.Max.Z) > eps {
		t.Fatalf("got bounds %+v, want %+v", sphere.Bound, want)
	}
}

func TestRunSkipsUnchangedSubtree(t *testing.T) {
	reg := buildFloorAndSphere(t)
	cfg := config.Default()
	Run(reg, 0, 0, cfg)

	// Second run with Update disabled and no animation should leave
	// Changed false, per §4.1 Phase 0 "if unchanged, recursion stops".
	Run(reg, 1, 0, cfg)
	root := reg.Array(reg.Root)
	if root.Changed {
		t.Fatal("expected root to report unchanged on the second static frame")
	}
}

func TestArrayAggregatesContainment(t *testing.T) {
	reg := buildFloorAndSphere(t)
	Run(reg, 0, 0, config.Default())

	root := reg.Array(reg.Root)
	if !root.Box.Valid {
		// Boundless children (the infinite floor plane) are left out of
		// the aggregate, so the box is only invalid when no child has a
		// finite bbox at all.
		t.Skip("root box is invalid because no child has a finite bbox")
	}
	sphere := &reg.Surfaces[1]
	if !root.Box.Contains(sphere.Bound, 1e-4) {
		t.Fatalf("expected array box %+v to contain sphere bbox %+v", root.Box, sphere.Bound)
	}
}

func TestAdjustMinMaxConeRequiresFiniteK(t *testing.T) {
	b := AdjustMinMax(scene.SurfCone, scene.ShapeParams{Ratio: 1}, [3]scene.Interval{
		{Min: -3.4e38, Max: 3.4e38},
		{Min: -3.4e38, Max: 3.4e38},
		{Min: -3.4e38, Max: 3.4e38},
	})
	if b.Valid {
		t.Fatal("expected an unbounded cone to produce an invalid bbox")
	}
}

func TestGenerateBoxGeometry(t *testing.T) {
	full := scene.Bounds{Min: math3.Vec{X: -1, Y: -1, Z: -1}, Max: math3.Vec{X: 1, Y: 1, Z: 1}, Valid: true}
	if g := GenerateBoxGeometry(full); g.Vertices != 8 || g.Edges != 12 || g.Faces != 6 {
		t.Errorf("full box geometry = %+v", g)
	}
	flat := scene.Bounds{Min: math3.Vec{X: -1, Y: -1, Z: 0}, Max: math3.Vec{X: 1, Y: 1, Z: 0}, Valid: true}
	if g := GenerateBoxGeometry(flat); g.Vertices != 4 || g.Edges != 4 || g.Faces != 1 {
		t.Errorf("flat box geometry = %+v", g)
	}
	if g := GenerateBoxGeometry(scene.Bounds{}); g.Vertices != 0 {
		t.Errorf("invalid box geometry = %+v", g)
	}
}
