// SPDX-License-Identifier: Unlicense OR MIT

// Package simd implements the lane-parallel ray-packet context record
// from spec.md §3 "SIMD packet". A packet holds N lanes of float32; N is
// chosen by internal/platform's dispatch and is the same for every field
// in a given Context. Unlike the source engine's raw SIMD register
// files, lanes here are plain []float32 slices -- the width is a runtime
// parameter, not a compile-time instantiation, matching how a Go port
// trades instruction-level SIMD for data-parallel slices operated on in
// straight-line loops the compiler can still autovectorize.
package simd

import "github.com/neonkingfr/quadray/internal/qerr"

// Mask is a per-lane boolean mask. true means "lane is live/selected".
type Mask []bool

func NewMask(n int, v bool) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = v
	}
	return m
}

func (m Mask) Any() bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}

func (m Mask) And(o Mask) Mask {
	r := make(Mask, len(m))
	for i := range m {
		r[i] = m[i] && o[i]
	}
	return r
}

func (m Mask) Or(o Mask) Mask {
	r := make(Mask, len(m))
	for i := range m {
		r[i] = m[i] || o[i]
	}
	return r
}

func (m Mask) Not() Mask {
	r := make(Mask, len(m))
	for i := range m {
		r[i] = !m[i]
	}
	return r
}

// Side encodes which face of a surface a ray hit, and Pass encodes why
// the ray was cast, per spec.md §4.3 "Side bookkeeping".
type Side uint8

const (
	SideOuter Side = iota
	SideInner
)

type Pass uint8

const (
	PassPrimary Pass = iota
	PassShadow
	PassReflectBack
	PassRefractThru
)

// Context is one SIMD packet's working state: N lanes of ray origin,
// direction, running hit distance, accumulated color, hit point,
// surface-local hit, texture coordinates, and the two mask fields TMask
// and ClipAccum (GLOSSARY "C_ACC"). Path-tracing fields are only
// populated when the packet is running in PT mode.
type Context struct {
	N int

	OrgX, OrgY, OrgZ []float32
	RayX, RayY, RayZ []float32

	TBuf []float32 // T_BUF: nearest hit distance seen so far
	TMin float32

	ColR, ColG, ColB []float32 // accumulated color

	HitX, HitY, HitZ []float32
	LocI, LocJ, LocK []float32 // surface-local hit (NRM_I/J/K reused)

	TexU, TexV []float32

	TMask    Mask // live lane mask
	ClipAccum Mask // C_ACC: accumulator mask for a bracketed clipper group

	// BgR/BgG/BgB is the active camera's background color, used both as
	// the miss color and as the ambient light source (spec.md §4.4).
	BgR, BgG, BgB float32

	// Path-tracing fields.
	MulR, MulG, MulB []float32 // throughput
	Seed             []uint64  // per-lane PRNG state
	PixelIdx         []int

	Side Side
	Pass Pass

	// ObjOrigin, when valid, is the surface this ray originates from
	// (PARAM(OBJ)): reused to skip re-deriving the local hit point and
	// to enforce the same-surface self-intersection rule.
	ObjOrigin int32
	HasOrigin bool

	// HitSurf/HitSide record the nearest surface (by index into
	// Registry.Surfaces, -1 if none) and which side it was hit from,
	// per lane, after a full traversal pass.
	HitSurf []int32
	HitSide []Side

	// Frames is the calling worker's recursion-stack ring (see
	// FrameStack below), carried along so package shade can pull a
	// single-lane sub-ray frame for a shadow/reflection/refraction/path
	// bounce without a per-sub-ray heap allocation. nil for packets built
	// outside the render loop (e.g. direct unit tests), which fall back
	// to allocating their own single-lane Context.
	Frames *FrameStack
}

// NewContext allocates a zeroed packet of width n. n is clamped to at
// least 1: a caller deriving width from a mis-detected CPU selector
// should still get a usable single-lane packet rather than empty slices.
func NewContext(n int) *Context {
	n = Max(n, 1)
	c := &Context{N: n}
	f := func() []float32 { return make([]float32, n) }
	c.OrgX, c.OrgY, c.OrgZ = f(), f(), f()
	c.RayX, c.RayY, c.RayZ = f(), f(), f()
	c.TBuf = f()
	c.ColR, c.ColG, c.ColB = f(), f(), f()
	c.HitX, c.HitY, c.HitZ = f(), f(), f()
	c.LocI, c.LocJ, c.LocK = f(), f(), f()
	c.TexU, c.TexV = f(), f()
	c.TMask = NewMask(n, true)
	c.ClipAccum = NewMask(n, true)
	c.MulR, c.MulG, c.MulB = f(), f(), f()
	c.Seed = make([]uint64, n)
	c.PixelIdx = make([]int, n)
	c.HitSurf = make([]int32, n)
	c.HitSide = make([]Side, n)
	for i := range c.MulR {
		c.MulR[i], c.MulG[i], c.MulB[i] = 1, 1, 1
	}
	for i := range c.HitSurf {
		c.HitSurf[i] = -1
	}
	return c
}

// Reset reinitializes the per-pixel accumulators for a new primary-ray
// pass while keeping ray directions (set separately by the caller).
func (c *Context) Reset(tFar float32) {
	for i := 0; i < c.N; i++ {
		c.TBuf[i] = tFar
		c.ColR[i], c.ColG[i], c.ColB[i] = 0, 0, 0
		c.TMask[i] = true
		c.ClipAccum[i] = true
		c.HitSurf[i] = -1
	}
	c.HasOrigin = false
}

// FrameStack is a preallocated ring of Context frames used by the
// traversal kernel's explicit recursion stack (spec.md §9 "Coroutine-like
// recursion"): reflection/refraction/shadow sub-rays advance to the next
// frame instead of growing the Go call stack unboundedly, and a
// configured MaxDepth is enforced by refusing to hand out a frame beyond
// it.
type FrameStack struct {
	frames []*Context
	depth  int
	max    int
}

func NewFrameStack(width, max int) *FrameStack {
	max = Clamp(max, 0, 64) // spec.md §7's configured depth cap never exceeds this
	frames := make([]*Context, max+1)
	for i := range frames {
		frames[i] = NewContext(width)
	}
	return &FrameStack{frames: frames, max: max}
}

// Push returns the next frame down the stack, reset and ready for a new
// single-lane sub-ray, or nil and records a depth-cap hit on stats
// (spec.md §7 "Budget exceeded": silent degradation, no error).
func (s *FrameStack) Push(stats *qerr.Stats) *Context {
	if s.depth >= s.max {
		stats.RecordDepthCap()
		return nil
	}
	s.depth++
	f := s.frames[s.depth]
	f.Reset(1e30)
	f.Frames = s
	return f
}

func (s *FrameStack) Pop() {
	if s.depth > 0 {
		s.depth--
	}
}

func (s *FrameStack) Current() *Context { return s.frames[s.depth] }
