// SPDX-License-Identifier: Unlicense OR MIT

// Package config holds the runtime knobs enumerated in spec.md §6, as a
// plain value struct plus functional-option constructors, matching the
// teacher's value-struct configuration style (gpu.Caps, unit.Metric).
package config

// Option mutates an Options value during construction.
type Option func(*Options)

// Options bundles every runtime knob influencing update/render.
type Options struct {
	Update   bool // force full hierarchy update every frame
	TArray   bool // enable transform caching for arrays of surfaces
	Tiling   bool // enable coarse 2D tile culling
	FScale   bool // treat fractional scales as non-trivial
	Adjust   bool // enable recursive bbox tightening via custom clippers
	VArray   bool // honor bounding-volume relations
	Gamma    bool // enable sRGB<->linear conversion
	FSAA     int  // super-sample factor: 1, 2, 4 or 8
	PTOn     bool // enable path-tracing accumulator mode

	MaxDepth int // ray-recursion stack depth cap
	Workers  int // render worker thread count
}

// Default returns the engine's default configuration.
func Default() Options {
	return Options{
		Adjust:   true,
		VArray:   true,
		Gamma:    true,
		FSAA:     1,
		MaxDepth: 6,
		Workers:  1,
	}
}

func WithUpdate(v bool) Option   { return func(o *Options) { o.Update = v } }
func WithTArray(v bool) Option   { return func(o *Options) { o.TArray = v } }
func WithTiling(v bool) Option   { return func(o *Options) { o.Tiling = v } }
func WithFScale(v bool) Option   { return func(o *Options) { o.FScale = v } }
func WithAdjust(v bool) Option   { return func(o *Options) { o.Adjust = v } }
func WithVArray(v bool) Option   { return func(o *Options) { o.VArray = v } }
func WithGamma(v bool) Option    { return func(o *Options) { o.Gamma = v } }
func WithFSAA(n int) Option      { return func(o *Options) { o.FSAA = n } }
func WithPathTrace(v bool) Option { return func(o *Options) { o.PTOn = v } }
func WithMaxDepth(n int) Option  { return func(o *Options) { o.MaxDepth = n } }
func WithWorkers(n int) Option   { return func(o *Options) { o.Workers = n } }

// New builds an Options from Default() with opts applied in order.
func New(opts ...Option) Options {
	o := Default()
	for _, f := range opts {
		f(&o)
	}
	return o
}
