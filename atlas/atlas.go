package atlas

import "image"

// Glyph holds the per-character geometric data needed to place and
// size one character: the atlas pixel rectangle, bearing offsets and
// advance width. Field names follow the BMFont char record.
type Glyph struct {
	// ID is the Unicode codepoint.
	ID rune

	// X, Y is the top-left corner of the glyph rectangle in atlas pixels.
	X, Y float64

	// Width, Height is the glyph rectangle size in atlas pixels.
	Width, Height float64

	// XOffset, YOffset is the bearing: how far the glyph rectangle is
	// displaced from the layout cursor, in atlas pixels.
	XOffset, YOffset float64

	// XAdvance is the horizontal distance to move the cursor after
	// placing this character, in atlas pixels.
	XAdvance float64
}

// Metrics holds atlas-wide values from the descriptor's info and
// common blocks.
type Metrics struct {
	// ScaleW, ScaleH is the atlas image size in pixels.
	ScaleW, ScaleH int

	// LineHeight is the vertical distance between baselines, in atlas
	// pixels.
	LineHeight float64

	// Size is the nominal glyph size the atlas was generated at, in
	// atlas pixels. Layout divides the requested world-unit size by
	// this to obtain the glyph scale.
	Size float64

	// Face is the font face name, when the descriptor carries one.
	Face string

	// Charset lists the characters the atlas was generated with, when
	// the descriptor carries one.
	Charset string
}

// Sampling describes the sampler state an MSDF atlas texture requires.
// The render layer must honor these settings; anything else distorts
// the reconstructed distance values.
type Sampling struct {
	// TrilinearMin selects linear minification across a mip chain.
	TrilinearMin bool

	// LinearMag selects linear magnification.
	LinearMag bool

	// GenerateMips indicates the mip chain must exist (it is built at
	// load time, see Atlas.Mips).
	GenerateMips bool

	// FlipY is false: the atlas is uploaded with its native row order.
	FlipY bool

	// SRGB is false: distance values are linear data, not color.
	SRGB bool
}

// DefaultSampling returns the sampler state required for
// distance-field reconstruction.
func DefaultSampling() Sampling {
	return Sampling{
		TrilinearMin: true,
		LinearMag:    true,
		GenerateMips: true,
		FlipY:        false,
		SRGB:         false,
	}
}

// Atlas is a loaded MSDF glyph atlas: the distance-field image with
// its generated mip chain, the atlas-wide metrics and the glyph table.
//
// An Atlas is immutable once loaded. It is shared read-only among
// every Text object that references it by name; the owning Cache is
// the only component that may release it (on Evict or Clear).
type Atlas struct {
	// Name is the cache key this atlas was loaded under. Empty for
	// atlases constructed directly from an image and descriptor.
	Name string

	// Image is the decoded distance-field image (mip level 0).
	Image *image.RGBA

	// Mips is the generated mip chain, excluding level 0. Each level
	// halves the previous one down to 1x1.
	Mips []*image.RGBA

	// Metrics holds the atlas-wide descriptor values.
	Metrics Metrics

	// Sampling records the sampler state this atlas requires.
	Sampling Sampling

	glyphs map[rune]Glyph
}

// New builds an Atlas from a decoded image and a parsed descriptor.
// The mip chain is generated eagerly so trilinear minification works
// from the first draw.
func New(img *image.RGBA, desc *Descriptor) *Atlas {
	lookup := make(map[rune]Glyph, len(desc.Glyphs))
	for _, g := range desc.Glyphs {
		lookup[g.ID] = g
	}
	return &Atlas{
		Image:    img,
		Mips:     GenerateMips(img),
		Metrics:  desc.Metrics,
		Sampling: DefaultSampling(),
		glyphs:   lookup,
	}
}

// Lookup returns the glyph metrics for a codepoint.
// The second result is false when the atlas has no glyph for it.
func (a *Atlas) Lookup(r rune) (Glyph, bool) {
	g, ok := a.glyphs[r]
	return g, ok
}

// GlyphCount returns the number of glyphs in the atlas.
func (a *Atlas) GlyphCount() int {
	return len(a.glyphs)
}

// MipLevels returns the total number of mip levels including level 0.
func (a *Atlas) MipLevels() int {
	return 1 + len(a.Mips)
}

// MemoryUsage returns the bytes held by the image and its mip chain.
func (a *Atlas) MemoryUsage() int64 {
	if a.Image == nil {
		return 0
	}
	total := int64(len(a.Image.Pix))
	for _, m := range a.Mips {
		total += int64(len(m.Pix))
	}
	return total
}

// release drops the pixel data so the backing memory can be reclaimed.
// Called by the cache on eviction; the metrics table stays intact so a
// stale reference fails softly (lookups still resolve, draws render
// nothing).
func (a *Atlas) release() {
	a.Image = nil
	a.Mips = nil
}
