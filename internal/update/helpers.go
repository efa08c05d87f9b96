// SPDX-License-Identifier: Unlicense OR MIT

package update

import "github.com/neonkingfr/quadray/internal/math3"

func vec3(x, y, z float32) math3.Vec { return math3.Vec{X: x, Y: y, Z: z} }

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absf(a float32) float32 {
	if a < 0 {
		return -a
	}
	return a
}

func vmin(a, b math3.Vec) math3.Vec { return math3.Min(a, b) }
func vmax(a, b math3.Vec) math3.Vec { return math3.Max(a, b) }
