// SPDX-License-Identifier: Unlicense OR MIT

package simd

import "golang.org/x/exp/constraints"

// Clamp bounds v to [lo, hi]. Used to guard packet widths and recursion
// depths read from config against nonsensical (zero or negative) values
// without each call site repeating the same two comparisons.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
