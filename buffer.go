package msdftext

import "math"

// Per-slot element counts for each instance attribute array.
const (
	// transformStride is the number of floats per slot in Transforms:
	// a 4x4 matrix, row-major, with glyph scale on the diagonal and
	// position in the last column (z = 0).
	transformStride = 16

	// uvRectStride is the number of floats per slot in UVRects:
	// offset U, offset V, scale U, scale V.
	uvRectStride = 4

	// colorStride is the number of floats per slot in FillColors and
	// OutlineColors: RGBA.
	colorStride = 4

	// thicknessStride is the number of floats per slot in Thickness:
	// fill multiplier, outline multiplier.
	thicknessStride = 2
)

// parkedPosition is where unused slots are moved. Combined with zero
// scale it keeps stale glyphs outside any view volume.
const parkedPosition = -1e6

// growthFactor is the capacity multiplier applied when a layout pass
// needs more slots than are allocated. Capacity never shrinks; this
// trades peak memory for avoiding reallocation churn on repeated text
// updates.
const growthFactor = 1.5

// InstanceBuffers is a structure-of-arrays store holding one slot per
// renderable character. Slot lifetime is tied to its index: indices
// [0, Live) are visible characters in layout order; indices
// [Live, Cap) are parked rather than deallocated.
//
// Each attribute array carries its own dirty flag. A mutation marks the
// affected arrays dirty; the host pipeline re-uploads dirty arrays
// before the next draw and clears the flags via MarkClean. This is the
// explicit ordering mechanism between mutation and render submission.
//
// InstanceBuffers is exclusively owned by its Text object and follows
// the same single-writer discipline.
type InstanceBuffers struct {
	// Transforms holds a 4x4 matrix per slot (16 floats, row-major).
	Transforms []float32

	// UVRects holds an atlas UV rect per slot (4 floats).
	// The V scale is negative: atlas pixel rects use a top-left origin
	// while the shading sample space uses a bottom-left origin.
	UVRects []float32

	// FillColors holds an RGBA fill multiplier per slot.
	FillColors []float32

	// OutlineColors holds an RGBA outline multiplier per slot.
	OutlineColors []float32

	// Thickness holds a (fill, outline) thickness multiplier pair per slot.
	Thickness []float32

	// Glow holds a glow flag per slot, stored as a float so blended
	// intermediate values survive the trip through vertex attributes.
	Glow []float32

	live int
	cap  int

	dirty dirtyFlags
}

// dirtyFlags tracks which attribute arrays need a GPU re-upload.
type dirtyFlags struct {
	transforms    bool
	uvRects       bool
	fillColors    bool
	outlineColors bool
	thickness     bool
	glow          bool
}

func (d *dirtyFlags) setAll() {
	*d = dirtyFlags{true, true, true, true, true, true}
}

// NewInstanceBuffers creates a store with the given initial capacity.
// All slots start parked with default style.
func NewInstanceBuffers(capacity int) *InstanceBuffers {
	if capacity < 0 {
		capacity = 0
	}
	b := &InstanceBuffers{}
	b.alloc(capacity)
	for i := 0; i < capacity; i++ {
		b.initSlot(i)
	}
	b.cap = capacity
	b.dirty.setAll()
	return b
}

// alloc allocates all attribute arrays for the given capacity.
func (b *InstanceBuffers) alloc(capacity int) {
	b.Transforms = make([]float32, capacity*transformStride)
	b.UVRects = make([]float32, capacity*uvRectStride)
	b.FillColors = make([]float32, capacity*colorStride)
	b.OutlineColors = make([]float32, capacity*colorStride)
	b.Thickness = make([]float32, capacity*thicknessStride)
	b.Glow = make([]float32, capacity)
}

// initSlot parks slot i and resets its style attributes to defaults:
// opaque white fill and outline, thickness multipliers 1, glow enabled.
func (b *InstanceBuffers) initSlot(i int) {
	b.park(i)
	co := i * colorStride
	b.FillColors[co] = 1
	b.FillColors[co+1] = 1
	b.FillColors[co+2] = 1
	b.FillColors[co+3] = 1
	b.OutlineColors[co] = 1
	b.OutlineColors[co+1] = 1
	b.OutlineColors[co+2] = 1
	b.OutlineColors[co+3] = 1
	to := i * thicknessStride
	b.Thickness[to] = 1
	b.Thickness[to+1] = 1
	b.Glow[i] = 1
}

// park zeroes slot i's scale and moves it far outside the view volume.
func (b *InstanceBuffers) park(i int) {
	o := i * transformStride
	m := b.Transforms[o : o+transformStride]
	for j := range m {
		m[j] = 0
	}
	// Zero scale, identity w, off-screen translation.
	m[10] = 1
	m[15] = 1
	m[3] = parkedPosition
	m[7] = parkedPosition
}

// Live returns the number of visible characters C.
func (b *InstanceBuffers) Live() int { return b.live }

// Cap returns the slot capacity N. Invariant: 0 <= Live() <= Cap().
func (b *InstanceBuffers) Cap() int { return b.cap }

// EnsureCapacity grows the store so that at least required slots exist.
// Growth allocates ceil(required * 1.5) slots, copies indices [0, N)
// verbatim and initializes [N, newN) to default style. The copy fully
// completes before EnsureCapacity returns, so the layout engine may
// write into the expanded region immediately. Capacity never shrinks.
func (b *InstanceBuffers) EnsureCapacity(required int) {
	if required <= b.cap {
		return
	}
	newCap := int(math.Ceil(float64(required) * growthFactor))

	old := *b
	b.alloc(newCap)
	copy(b.Transforms, old.Transforms)
	copy(b.UVRects, old.UVRects)
	copy(b.FillColors, old.FillColors)
	copy(b.OutlineColors, old.OutlineColors)
	copy(b.Thickness, old.Thickness)
	copy(b.Glow, old.Glow)
	for i := old.cap; i < newCap; i++ {
		b.initSlot(i)
	}
	b.cap = newCap
	b.dirty.setAll()

	Logger().Debug("instance buffers grown",
		"from", old.cap, "to", newCap, "required", required)
}

// setTransform writes a 2D position + uniform-ish scale transform into
// slot i as a 4x4 matrix with z = 0.
func (b *InstanceBuffers) setTransform(i int, x, y, scaleX, scaleY float32) {
	o := i * transformStride
	m := b.Transforms[o : o+transformStride]
	for j := range m {
		m[j] = 0
	}
	m[0] = scaleX
	m[5] = scaleY
	m[10] = 1
	m[15] = 1
	m[3] = x
	m[7] = y
	b.dirty.transforms = true
}

// setUVRect writes the atlas UV rect for slot i.
func (b *InstanceBuffers) setUVRect(i int, u, v, su, sv float32) {
	o := i * uvRectStride
	b.UVRects[o] = u
	b.UVRects[o+1] = v
	b.UVRects[o+2] = su
	b.UVRects[o+3] = sv
	b.dirty.uvRects = true
}

// setFillColor writes the per-instance fill color multiplier for slot i.
func (b *InstanceBuffers) setFillColor(i int, c RGBA) {
	o := i * colorStride
	b.FillColors[o] = float32(c.R)
	b.FillColors[o+1] = float32(c.G)
	b.FillColors[o+2] = float32(c.B)
	b.FillColors[o+3] = float32(c.A)
	b.dirty.fillColors = true
}

// setOutlineColor writes the per-instance outline color multiplier for slot i.
func (b *InstanceBuffers) setOutlineColor(i int, c RGBA) {
	o := i * colorStride
	b.OutlineColors[o] = float32(c.R)
	b.OutlineColors[o+1] = float32(c.G)
	b.OutlineColors[o+2] = float32(c.B)
	b.OutlineColors[o+3] = float32(c.A)
	b.dirty.outlineColors = true
}

// setThickness writes the per-instance (fill, outline) thickness
// multiplier pair for slot i.
func (b *InstanceBuffers) setThickness(i int, fill, outline float32) {
	o := i * thicknessStride
	b.Thickness[o] = fill
	b.Thickness[o+1] = outline
	b.dirty.thickness = true
}

// setGlow writes the per-instance glow flag for slot i.
func (b *InstanceBuffers) setGlow(i int, glow float32) {
	b.Glow[i] = glow
	b.dirty.glow = true
}

// parkFrom parks every slot from index from up to capacity and records
// the new live count. Parking stale slots guarantees that glyphs from a
// previous, longer layout never render.
func (b *InstanceBuffers) parkFrom(from int) {
	for i := from; i < b.cap; i++ {
		b.park(i)
	}
	b.live = from
	b.dirty.transforms = true
}

// Slot reads back the per-instance style of slot i. Used by tests and
// by hosts that mirror instance state.
func (b *InstanceBuffers) Slot(i int) (fill, outline RGBA, thickFill, thickOutline, glow float32) {
	co := i * colorStride
	fill = RGBA{
		R: float64(b.FillColors[co]),
		G: float64(b.FillColors[co+1]),
		B: float64(b.FillColors[co+2]),
		A: float64(b.FillColors[co+3]),
	}
	outline = RGBA{
		R: float64(b.OutlineColors[co]),
		G: float64(b.OutlineColors[co+1]),
		B: float64(b.OutlineColors[co+2]),
		A: float64(b.OutlineColors[co+3]),
	}
	to := i * thicknessStride
	return fill, outline, b.Thickness[to], b.Thickness[to+1], b.Glow[i]
}

// TransformAt returns the 16-float matrix of slot i.
func (b *InstanceBuffers) TransformAt(i int) []float32 {
	o := i * transformStride
	return b.Transforms[o : o+transformStride]
}

// UVRectAt returns the 4-float UV rect of slot i.
func (b *InstanceBuffers) UVRectAt(i int) []float32 {
	o := i * uvRectStride
	return b.UVRects[o : o+uvRectStride]
}

// DirtyState reports, per attribute array, whether a GPU re-upload is
// needed. The host pipeline uploads exactly the arrays marked here.
type DirtyState struct {
	Transforms    bool
	UVRects       bool
	FillColors    bool
	OutlineColors bool
	Thickness     bool
	Glow          bool
}

// DirtyState returns which arrays changed since the last MarkClean.
func (b *InstanceBuffers) DirtyState() DirtyState {
	return DirtyState{
		Transforms:    b.dirty.transforms,
		UVRects:       b.dirty.uvRects,
		FillColors:    b.dirty.fillColors,
		OutlineColors: b.dirty.outlineColors,
		Thickness:     b.dirty.thickness,
		Glow:          b.dirty.glow,
	}
}

// Dirty reports whether any attribute array needs a GPU re-upload.
func (b *InstanceBuffers) Dirty() bool {
	d := b.dirty
	return d.transforms || d.uvRects || d.fillColors ||
		d.outlineColors || d.thickness || d.glow
}

// MarkClean clears all dirty flags. Called by the host pipeline after
// re-uploading the buffers.
func (b *InstanceBuffers) MarkClean() {
	b.dirty = dirtyFlags{}
}
