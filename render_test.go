// SPDX-License-Identifier: Unlicense OR MIT

package quadray

import (
	"context"
	"testing"

	"github.com/neonkingfr/quadray/internal/config"
	"github.com/neonkingfr/quadray/internal/framebuffer"
	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/scene"
)

// buildSphereOnFloor constructs a reduced spec.md §8 scenario 1 scene: a
// diffuse sphere (no floor plane is built), one light, one camera
// looking straight down the +Z axis.
func buildSphereOnFloor(t *testing.T) (*scene.Registry, *scene.Camera) {
	t.Helper()
	b := scene.NewBuilder()
	root := b.Root()

	matIdx := b.Reg.NewMaterial(scene.Material{
		Props:      scene.MatDiffuseFlag | scene.MatAmbientColored,
		Color:      scene.Color{R: 0.8, G: 0.2, B: 0.2},
		Diffuse:    1,
		AmbientSrc: scene.Color{R: 0.1, G: 0.1, B: 0.1},
	})

	b.Surface(root, scene.SurfSphere, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{Z: 10},
		scene.ShapeParams{Radius: 2}, matIdx, matIdx)

	b.Light(root, math3.Vec{X: -5, Y: 5, Z: 0}, scene.Color{R: 1, G: 1, B: 1}, 4,
		scene.Attenuation{Constant: 1})

	camRef := b.Camera(root, math3.Vec{}, math3.Vec{}, 1, scene.Color{R: 0.05, G: 0.05, B: 0.1})
	cam := b.Reg.Camera(camRef)
	cam.Forward = math3.Vec{X: 0, Y: 0, Z: 1}
	cam.Horizon = math3.Vec{X: 1, Y: 0, Z: 0}
	cam.Vertical = math3.Vec{X: 0, Y: 1, Z: 0}
	cam.Primary = true

	return b.Reg, cam
}

func TestRenderFrameProducesNonBackgroundPixelsOnSphere(t *testing.T) {
	reg, cam := buildSphereOnFloor(t)
	r := New(reg, config.Default())

	fb := framebuffer.New(32, 32)
	if err := r.RenderFrame(context.Background(), cam, fb, 0, 0); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	bg := framebuffer.EncodePixel(cam.Background, r.Cfg.Gamma)
	centerX, centerY := fb.Width/2, fb.Height/2
	center := fb.Pixels[centerY*fb.RowStride+centerX]
	if center == bg {
		t.Fatalf("expected the sphere to cover the image center, got background pixel %08x", center)
	}

	corner := fb.Pixels[0]
	if corner != bg {
		t.Fatalf("expected the image corner to miss the sphere and show background, got %08x (bg=%08x)", corner, bg)
	}
}

func TestRenderFrameIsDeterministicAcrossWorkerCounts(t *testing.T) {
	reg1, cam1 := buildSphereOnFloor(t)
	cfg1 := config.New(config.WithWorkers(1))
	r1 := New(reg1, cfg1)
	fb1 := framebuffer.New(16, 16)
	if err := r1.RenderFrame(context.Background(), cam1, fb1, 0, 0); err != nil {
		t.Fatalf("RenderFrame (1 worker): %v", err)
	}

	reg4, cam4 := buildSphereOnFloor(t)
	cfg4 := config.New(config.WithWorkers(4))
	r4 := New(reg4, cfg4)
	fb4 := framebuffer.New(16, 16)
	if err := r4.RenderFrame(context.Background(), cam4, fb4, 0, 0); err != nil {
		t.Fatalf("RenderFrame (4 workers): %v", err)
	}

	for i := range fb1.Pixels {
		if fb1.Pixels[i] != fb4.Pixels[i] {
			t.Fatalf("pixel %d differs between worker counts: %08x vs %08x", i, fb1.Pixels[i], fb4.Pixels[i])
		}
	}
}
