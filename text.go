package msdftext

import (
	"github.com/gogpu/msdftext/atlas"
	"github.com/gogpu/msdftext/material"
)

// Text is a styled text object: it owns an instance buffer store, a
// non-owning reference to a glyph atlas and the global style
// parameters. Mutations run synchronously on the caller's goroutine;
// a Text is not safe for concurrent mutation (single-writer
// discipline). The host render pipeline reads the buffers between
// mutations, driven by the dirty flags.
type Text struct {
	atlas   *atlas.Atlas
	buffers *InstanceBuffers
	style   Style

	text       string
	layoutOpts LayoutOptions

	program *material.Program
}

// New creates a Text object. The atlas is taken from opts.Atlas when
// set, otherwise resolved from cache by opts.Font:
//
//   - neither given: ErrNoAtlas
//   - Font given but cache is nil: ErrNilCache
//   - Font given but not loaded yet: *atlas.NotLoadedError
//
// When opts.Material is set its shading stage is spliced immediately.
// A failed splice returns the error together with a usable Text: the
// object renders with the default shading path and the caller decides
// whether to retry or fall back.
func New(cache *atlas.Cache, opts Options) (*Text, error) {
	a := opts.Atlas
	if a == nil {
		if opts.Font == "" {
			return nil, ErrNoAtlas
		}
		if cache == nil {
			return nil, ErrNilCache
		}
		var ok bool
		a, ok = cache.Get(opts.Font)
		if !ok {
			return nil, &atlas.NotLoadedError{Name: opts.Font}
		}
	}

	capacity := opts.MaxLength
	if n := runeCount(opts.Text); n > capacity {
		capacity = n
	}
	if capacity < defaultMaxLength {
		capacity = defaultMaxLength
	}

	style := DefaultStyle()
	if opts.Color != nil {
		style.FillColor = *opts.Color
	}
	if opts.OutlineColor != nil {
		style.OutlineColor = *opts.OutlineColor
	}
	if opts.Thickness != 0 {
		style.Thickness = opts.Thickness
	}
	if opts.OutlineThickness != 0 {
		style.OutlineThickness = opts.OutlineThickness
	}

	t := &Text{
		atlas:      a,
		buffers:    NewInstanceBuffers(capacity),
		style:      style,
		layoutOpts: DefaultLayoutOptions(),
		program:    opts.Material,
	}
	if opts.Text != "" {
		t.SetText(opts.Text)
	}

	if t.program != nil {
		if err := t.program.Splice(ShadingStage()); err != nil {
			Logger().Warn("material splice failed", "error", err)
			return t, err
		}
	}
	return t, nil
}

// SetText replaces the displayed string and re-runs layout. Optional
// layout options override the previous pass: a zero Size or LineHeight
// keeps the prior value, Align is always taken from the given options.
//
// Capacity grows as needed and never shrinks; slots beyond the new
// live count are parked so stale glyphs never render.
func (t *Text) SetText(text string, opts ...LayoutOptions) {
	if len(opts) > 0 {
		o := opts[0]
		if o.Size == 0 {
			o.Size = t.layoutOpts.Size
		}
		if o.LineHeight == 0 {
			o.LineHeight = t.layoutOpts.LineHeight
		}
		t.layoutOpts = o
	}

	normalized := normalizeText(text)
	t.buffers.EnsureCapacity(runeCount(normalized))
	live := layoutText(t.buffers, t.atlas, normalized, t.layoutOpts)
	t.text = text

	Logger().Debug("text laid out",
		"chars", live, "capacity", t.buffers.Cap(), "size", t.layoutOpts.Size)
}

// Text returns the string passed to the last SetText call.
func (t *Text) Text() string { return t.text }

// Len returns the live character count C.
func (t *Text) Len() int { return t.buffers.Live() }

// Capacity returns the instance slot capacity N.
func (t *Text) Capacity() int { return t.buffers.Cap() }

// Buffers exposes the instance buffer store for the host pipeline.
func (t *Text) Buffers() *InstanceBuffers { return t.buffers }

// Atlas returns the glyph atlas this object references.
func (t *Text) Atlas() *atlas.Atlas { return t.atlas }

// Style returns the current global style. The host pipeline packs it
// into the uniform block each submission.
func (t *Text) Style() Style { return t.style }

// Material returns the spliced host program, or nil.
func (t *Text) Material() *material.Program { return t.program }

// SetColor sets the global fill color.
func (t *Text) SetColor(c RGBA) { t.style.FillColor = c }

// SetOutlineColor sets the global outline color.
func (t *Text) SetOutlineColor(c RGBA) { t.style.OutlineColor = c }

// SetThickness sets the global fill thickness (nominal [0, 1] range).
func (t *Text) SetThickness(v float64) { t.style.Thickness = v }

// SetOutlineThickness sets the global outline thickness.
func (t *Text) SetOutlineThickness(v float64) { t.style.OutlineThickness = v }

// SetSmoothness sets the global edge smoothness.
func (t *Text) SetSmoothness(v float64) { t.style.Smoothness = v }

// SetGlowMode sets the global glow mode factor in [0, 1]. Values above
// 0.5 select the glow shading branch for characters whose per-instance
// glow flag is enabled.
func (t *Text) SetGlowMode(v float64) { t.style.GlowMode = v }

// EnableGlow is shorthand for SetGlowMode(1).
func (t *Text) EnableGlow() { t.style.GlowMode = 1 }

// DisableGlow is shorthand for SetGlowMode(0).
func (t *Text) DisableGlow() { t.style.GlowMode = 0 }

// checkIndex validates a per-character index against [0, C). Out of
// range indices are a common caller mistake during incremental edits,
// so the operation degrades to a logged no-op instead of failing.
func (t *Text) checkIndex(op string, i int) bool {
	if i < 0 || i >= t.buffers.Live() {
		Logger().Warn("character index out of range",
			"op", op, "index", i, "live", t.buffers.Live())
		return false
	}
	return true
}

// SetCharColor sets the fill color multiplier of character i. The
// effective fill color at shading time is global times instance.
func (t *Text) SetCharColor(i int, c RGBA) {
	if !t.checkIndex("SetCharColor", i) {
		return
	}
	t.buffers.setFillColor(i, c)
}

// SetCharOutlineColor sets the outline color multiplier of character i.
func (t *Text) SetCharOutlineColor(i int, c RGBA) {
	if !t.checkIndex("SetCharOutlineColor", i) {
		return
	}
	t.buffers.setOutlineColor(i, c)
}

// SetCharThickness sets the (fill, outline) thickness multipliers of
// character i.
func (t *Text) SetCharThickness(i int, fill, outline float64) {
	if !t.checkIndex("SetCharThickness", i) {
		return
	}
	t.buffers.setThickness(i, float32(fill), float32(outline))
}

// SetCharGlow sets the glow flag of character i.
func (t *Text) SetCharGlow(i int, enabled bool) {
	if !t.checkIndex("SetCharGlow", i) {
		return
	}
	var v float32
	if enabled {
		v = 1
	}
	t.buffers.setGlow(i, v)
}

// ResetCharStyles restores the default per-character style on every
// slot: opaque white colors, unit thickness multipliers, glow enabled.
// Layout (transforms and UV rects) is untouched.
func (t *Text) ResetCharStyles() {
	white := RGB(1, 1, 1)
	for i := 0; i < t.buffers.Cap(); i++ {
		t.buffers.setFillColor(i, white)
		t.buffers.setOutlineColor(i, white)
		t.buffers.setThickness(i, 1, 1)
		t.buffers.setGlow(i, 1)
	}
}
