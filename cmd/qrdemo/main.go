// SPDX-License-Identifier: Unlicense OR MIT

// Command qrdemo is a minimal example host: it builds the §8 scenario 1
// scene (a diffuse sphere over a floor plane, one light, one camera),
// renders a single frame, and writes a PPM. It is not part of the core
// library's module boundary -- a tiny driver to exercise the engine
// end-to-end, mirroring the teacher's own gpu/headless pattern of a
// minimal host driving the library in isolation.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	quadray "github.com/neonkingfr/quadray"
	"github.com/neonkingfr/quadray/internal/config"
	"github.com/neonkingfr/quadray/internal/framebuffer"
	"github.com/neonkingfr/quadray/internal/math3"
	"github.com/neonkingfr/quadray/internal/scene"
)

func main() {
	width := flag.Int("w", 320, "frame width")
	height := flag.Int("h", 240, "frame height")
	out := flag.String("o", "out.ppm", "output PPM path")
	fsaa := flag.Int("fsaa", 1, "supersample factor (1,2,4,8)")
	flag.Parse()

	reg, cam := buildScenario1()
	cfg := config.New(config.WithFSAA(*fsaa), config.WithWorkers(4))
	r := quadray.New(reg, cfg)

	fb := framebuffer.New(*width, *height)
	if err := r.RenderFrame(context.Background(), cam, fb, 0, 0); err != nil {
		log.Fatalf("render: %v", err)
	}

	if err := writePPM(*out, fb); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	if r.Stats.DepthCapped > 0 {
		fmt.Printf("warning: %d rays hit the recursion depth cap\n", r.Stats.DepthCapped)
	}
}

// buildScenario1 constructs a floor plane, a diffuse sphere, one light
// and one camera looking down +Z, per spec.md §8 scenario 1.
func buildScenario1() (*scene.Registry, *scene.Camera) {
	b := scene.NewBuilder()
	root := b.Root()

	floorMat := b.Reg.NewMaterial(scene.Material{
		Props:      scene.MatDiffuseFlag | scene.MatAmbientColored,
		Color:      scene.Color{R: 0.6, G: 0.6, B: 0.6},
		Diffuse:    0.8,
		AmbientSrc: scene.Color{R: 0.05, G: 0.05, B: 0.05},
	})
	b.Surface(root, scene.SurfPlane, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{X: 90, Y: 0, Z: 0}, math3.Vec{Y: -2},
		scene.ShapeParams{}, floorMat, floorMat)

	sphereMat := b.Reg.NewMaterial(scene.Material{
		Props:      scene.MatDiffuseFlag | scene.MatSpecular | scene.MatAmbientColored,
		Color:      scene.Color{R: 0.8, G: 0.2, B: 0.2},
		Diffuse:    0.7,
		Specular:   0.5,
		Power:      32,
		AmbientSrc: scene.Color{R: 0.05, G: 0.05, B: 0.05},
	})
	b.Surface(root, scene.SurfSphere, math3.Vec{X: 1, Y: 1, Z: 1}, math3.Vec{}, math3.Vec{Z: 10},
		scene.ShapeParams{Radius: 2}, sphereMat, sphereMat)

	b.Light(root, math3.Vec{X: -5, Y: 8, Z: 2}, scene.Color{R: 1, G: 1, B: 1}, 4,
		scene.Attenuation{Constant: 1})

	camRef := b.Camera(root, math3.Vec{}, math3.Vec{}, 1, scene.Color{R: 0.1, G: 0.1, B: 0.2})
	cam := b.Reg.Camera(camRef)
	cam.Forward = math3.Vec{X: 0, Y: 0, Z: 1}
	cam.Horizon = math3.Vec{X: 1, Y: 0, Z: 0}
	cam.Vertical = math3.Vec{X: 0, Y: 1, Z: 0}
	cam.Primary = true

	return b.Reg, cam
}

// writePPM writes fb as a binary PPM (P6), converting from its packed
// B,G,R,X pixels to the R,G,B byte triples PPM expects.
func writePPM(path string, fb *framebuffer.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P6\n%d %d\n255\n", fb.Width, fb.Height)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			p := fb.Pixels[y*fb.RowStride+x]
			r := byte(p >> 16)
			g := byte(p >> 8)
			b := byte(p)
			w.Write([]byte{r, g, b})
		}
	}
	return w.Flush()
}
