// SPDX-License-Identifier: Unlicense OR MIT

// Package platform implements the runtime SIMD-width selection from
// spec.md §4.6: a switch0 step that queries CPU capability bits and
// picks the widest available packet width, encoded as a stable
// (size, type, factor) -> bitmask selector. It is grounded on the
// teacher's own capability-query abstraction (gpu/backend.go's Caps),
// with the feature bits themselves sourced from golang.org/x/sys/cpu
// instead of a GL/D3D driver query.
package platform

import "golang.org/x/sys/cpu"

// Width is one of the packet lane counts spec.md §3 allows.
type Width int

const (
	Width4  Width = 4
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// ElemType distinguishes the float/int factor used to build the selector
// bitmask; the core only ever uses Float32 lanes, but the table keeps the
// (size,type,factor) shape spec.md §4.6 and §6 describe.
type ElemType uint8

const (
	Float32 ElemType = iota
)

// Caps mirrors gpu.Caps: a small value struct describing what the
// current process can run, queried once at startup.
type Caps struct {
	HasAVX512 bool
	HasAVX2   bool
	HasAVX    bool
	HasSSE2   bool
	HasNEON   bool
}

// DetectCaps queries golang.org/x/sys/cpu's feature bits for the running
// CPU.
func DetectCaps() Caps {
	return Caps{
		HasAVX512: cpu.X86.HasAVX512F,
		HasAVX2:   cpu.X86.HasAVX2,
		HasAVX:    cpu.X86.HasAVX,
		HasSSE2:   cpu.X86.HasSSE2,
		HasNEON:   cpu.ARM64.HasASIMD,
	}
}

// Selector is the stable 32-bit (size | type<<8 | factor<<16) code
// switch0 returns, per spec.md §6 "CPU feature selector".
type Selector uint32

func MakeSelector(size Width, typ ElemType, factor int) Selector {
	return Selector(uint32(size) | uint32(typ)<<8 | uint32(factor)<<16)
}

func (s Selector) Width() Width    { return Width(s & 0xff) }
func (s Selector) Type() ElemType  { return ElemType((s >> 8) & 0xff) }
func (s Selector) Factor() int     { return int((s >> 16) & 0xff) }

// Switch0 grants the widest packet width the running CPU and the
// requested code both support. Requesting a width wider than the CPU
// can deliver silently falls back to the next narrower supported width,
// matching spec.md §7's "render-time conditions ... degrade silently".
func Switch0(requested Selector, caps Caps) Selector {
	req := requested.Width()
	best := pickWidth(caps)
	if req != 0 && req < best {
		best = req
	}
	return MakeSelector(best, Float32, 1)
}

func pickWidth(caps Caps) Width {
	switch {
	case caps.HasAVX512:
		return Width16
	case caps.HasAVX2, caps.HasAVX:
		return Width8
	case caps.HasSSE2, caps.HasNEON:
		return Width4
	default:
		return Width4
	}
}
