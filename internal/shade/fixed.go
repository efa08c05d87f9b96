// SPDX-License-Identifier: Unlicense OR MIT

package shade

// Pow28_4 raises base (0..1) to a specular exponent encoded in 28.4
// fixed point, via iterated square-and-multiply, per spec.md §4.4's
// "Specular" step. The 28.4 encoding matches the fixed-point convention
// golang.org/x/image/math/fixed uses for its Int26_6 type (an integer
// scaled by a power-of-two fractional width), adapted here to a 4-bit
// fraction since the specular power table only needs quarter-exponent
// granularity.
type Fixed28_4 int32

// NewFixed28_4 converts a floating-point power to the fixed encoding.
func NewFixed28_4(f float32) Fixed28_4 {
	return Fixed28_4(f * 16)
}

func (f Fixed28_4) Float() float32 { return float32(f) / 16 }

// Pow28_4 computes base^power using square-and-multiply over the fixed
// point's integer bit pattern: the 4 fractional bits are handled by a
// final multiply against powers of base^(1/16), taken as four successive
// square roots, since powers in this engine are always integers-or-quarters in
// practice (L_POW is author-supplied, not derived).
func Pow28_4(base float32, power Fixed28_4) float32 {
	if base <= 0 {
		return 0
	}
	whole := int32(power) >> 4
	frac := int32(power) & 0xf

	result := float32(1)
	b := base
	n := whole
	for n > 0 {
		if n&1 != 0 {
			result *= b
		}
		b *= b
		n >>= 1
	}
	if frac != 0 {
		// Quarter-power correction via repeated square-root halving:
		// base^(frac/16) = base^(1/16 * frac), and base^(1/16) is four
		// successive square roots of base.
		root := base
		for i := 0; i < 4; i++ {
			root = sqrtf(root)
		}
		fb := float32(1)
		fn := frac
		r := root
		for fn > 0 {
			if fn&1 != 0 {
				fb *= r
			}
			r *= r
			fn >>= 1
		}
		result *= fb
	}
	return result
}

func sqrtf(x float32) float32 {
	if x <= 0 {
		return 0
	}
	// Six Newton-Raphson iterations seeded with x itself, sufficient for
	// a specular highlight's visual precision.
	y := x
	for i := 0; i < 6; i++ {
		y = 0.5 * (y + x/y)
	}
	return y
}
