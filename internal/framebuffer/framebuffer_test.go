// SPDX-License-Identifier: Unlicense OR MIT

package framebuffer

import (
	"testing"

	"github.com/neonkingfr/quadray/internal/scene"
)

func TestGammaRoundTripWithinOneLSB(t *testing.T) {
	cases := []scene.Color{
		{R: 0, G: 0, B: 0},
		{R: 1, G: 1, B: 1},
		{R: 0.5, G: 0.25, B: 0.75},
		{R: 0.1, G: 0.9, B: 0.3},
	}
	for _, c := range cases {
		p := EncodePixel(c, true)
		back := DecodePixel(p, true)
		p2 := EncodePixel(back, true)

		if diffByte(p, p2) > 1 {
			t.Errorf("color %v: round-trip drifted more than 1 LSB (p=%08x p2=%08x)", c, p, p2)
		}
	}
}

func diffByte(a, b uint32) int {
	max := 0
	for shift := 0; shift <= 16; shift += 8 {
		da := int(a>>shift&0xff) - int(b>>shift&0xff)
		if da < 0 {
			da = -da
		}
		if da > max {
			max = da
		}
	}
	return max
}

func TestSupersamplerCollapseAverages(t *testing.T) {
	s := Supersampler{Factor: 2}
	got := s.Collapse([]scene.Color{
		{R: 1, G: 0, B: 0},
		{R: 0, G: 1, B: 0},
		{R: 0, G: 0, B: 1},
		{R: 1, G: 1, B: 1},
	})
	want := scene.Color{R: 0.5, G: 0.5, B: 0.5}
	if got != want {
		t.Fatalf("expected average %v, got %v", want, got)
	}
}

func TestBufferSetPacksBGRX(t *testing.T) {
	b := New(2, 2)
	b.Set(1, 0, scene.Color{R: 1, G: 0, B: 0}, false)
	p := b.Pixels[1]
	if (p>>16)&0xff != 255 || (p>>8)&0xff != 0 || p&0xff != 0 {
		t.Fatalf("expected pure red packed as R byte set, got %08x", p)
	}
}
