package msdftext

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/msdftext/atlas"
	"github.com/gogpu/msdftext/material"
)

func TestNewValidation(t *testing.T) {
	t.Run("no atlas reference", func(t *testing.T) {
		_, err := New(nil, Options{})
		if !errors.Is(err, ErrNoAtlas) {
			t.Errorf("err = %v, want ErrNoAtlas", err)
		}
	})

	t.Run("font name without cache", func(t *testing.T) {
		_, err := New(nil, Options{Font: "roboto"})
		if !errors.Is(err, ErrNilCache) {
			t.Errorf("err = %v, want ErrNilCache", err)
		}
	})

	t.Run("font name not loaded", func(t *testing.T) {
		cache := atlas.NewCache(atlas.DefaultCacheConfig())
		_, err := New(cache, Options{Font: "roboto"})
		var notLoaded *atlas.NotLoadedError
		if !errors.As(err, &notLoaded) {
			t.Fatalf("err = %v, want *atlas.NotLoadedError", err)
		}
		if notLoaded.Name != "roboto" {
			t.Errorf("Name = %q, want %q", notLoaded.Name, "roboto")
		}
	})

	t.Run("direct atlas", func(t *testing.T) {
		txt, err := New(nil, Options{Atlas: testAtlas(), Text: "A"})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if txt.Len() != 1 {
			t.Errorf("Len() = %d, want 1", txt.Len())
		}
	})
}

func TestNewDefaultCapacity(t *testing.T) {
	t.Run("minimum capacity", func(t *testing.T) {
		txt, _ := New(nil, Options{Atlas: testAtlas(), Text: "AA"})
		if txt.Capacity() != defaultMaxLength {
			t.Errorf("Capacity() = %d, want %d", txt.Capacity(), defaultMaxLength)
		}
	})

	t.Run("long initial text wins", func(t *testing.T) {
		text := strings.Repeat("A", 150)
		txt, _ := New(nil, Options{Atlas: testAtlas(), Text: text})
		if txt.Capacity() < 150 {
			t.Errorf("Capacity() = %d, want >= 150", txt.Capacity())
		}
	})

	t.Run("explicit max length", func(t *testing.T) {
		txt, _ := New(nil, Options{Atlas: testAtlas(), MaxLength: 500})
		if txt.Capacity() != 500 {
			t.Errorf("Capacity() = %d, want 500", txt.Capacity())
		}
	})
}

func TestSetTextRoundTrip(t *testing.T) {
	txt := newTestText(t)
	for _, s := range []string{"Hi", "", "A\nYo", "Hi"} {
		txt.SetText(s)
		if got := txt.Text(); got != s {
			t.Errorf("Text() = %q, want %q", got, s)
		}
	}
}

func TestSetTextIdempotent(t *testing.T) {
	txt := newTestText(t)
	txt.SetText("Hi\nYo", LayoutOptions{Size: 2, Align: AlignCenter, LineHeight: 1.5})

	first := snapshotBuffers(txt.Buffers())
	liveFirst := txt.Len()

	txt.SetText("Hi\nYo")
	second := snapshotBuffers(txt.Buffers())

	if txt.Len() != liveFirst {
		t.Fatalf("Len() = %d, want %d", txt.Len(), liveFirst)
	}
	for name, a := range first {
		b := second[name]
		if len(a) != len(b) {
			t.Fatalf("%s length changed: %d -> %d", name, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%s[%d] changed: %v -> %v", name, i, a[i], b[i])
			}
		}
	}
}

func snapshotBuffers(b *InstanceBuffers) map[string][]float32 {
	clone := func(s []float32) []float32 {
		out := make([]float32, len(s))
		copy(out, s)
		return out
	}
	return map[string][]float32{
		"transforms":     clone(b.Transforms),
		"uv rects":       clone(b.UVRects),
		"fill colors":    clone(b.FillColors),
		"outline colors": clone(b.OutlineColors),
		"thickness":      clone(b.Thickness),
		"glow":           clone(b.Glow),
	}
}

func TestSetTextGrowthLaw(t *testing.T) {
	txt := newTestText(t)
	if txt.Capacity() != 100 {
		t.Fatalf("initial Capacity() = %d, want 100", txt.Capacity())
	}

	txt.SetText(strings.Repeat("A", 250))
	// ceil(250 * 1.5) = 375.
	if txt.Capacity() != 375 {
		t.Errorf("Capacity() = %d, want 375", txt.Capacity())
	}
}

func TestCapacityMonotonic(t *testing.T) {
	txt := newTestText(t)
	prev := txt.Capacity()
	for _, n := range []int{150, 10, 400, 1, 0, 200} {
		txt.SetText(strings.Repeat("A", n))
		if txt.Capacity() < prev {
			t.Fatalf("capacity shrank: %d -> %d after %d chars", prev, txt.Capacity(), n)
		}
		prev = txt.Capacity()
	}
}

func TestLiveNeverExceedsCapacity(t *testing.T) {
	txt := newTestText(t)
	for _, n := range []int{0, 50, 150, 151, 500} {
		txt.SetText(strings.Repeat("A", n))
		if txt.Len() < 0 || txt.Len() > txt.Capacity() {
			t.Fatalf("Len() = %d outside [0, %d]", txt.Len(), txt.Capacity())
		}
	}
}

func TestPerCharacterStyle(t *testing.T) {
	txt := newTestText(t)
	txt.SetText("AAA")

	red := RGB(1, 0, 0)
	txt.SetCharColor(1, red)
	txt.SetCharOutlineColor(1, RGB(0, 1, 0))
	txt.SetCharThickness(1, 0.8, 0.6)
	txt.SetCharGlow(1, false)

	fill, outline, thickFill, thickOutline, glow := txt.Buffers().Slot(1)
	if fill != red {
		t.Errorf("fill = %+v, want red", fill)
	}
	if outline != RGB(0, 1, 0) {
		t.Errorf("outline = %+v, want green", outline)
	}
	if !almostEqual(float64(thickFill), 0.8, 1e-6) || !almostEqual(float64(thickOutline), 0.6, 1e-6) {
		t.Errorf("thickness = (%v, %v), want (0.8, 0.6)", thickFill, thickOutline)
	}
	if glow != 0 {
		t.Errorf("glow = %v, want 0", glow)
	}

	// Neighbors untouched.
	fill, _, _, _, _ = txt.Buffers().Slot(0)
	if fill != RGB(1, 1, 1) {
		t.Errorf("slot 0 fill = %+v, want white", fill)
	}
}

func TestPerCharacterIndexOutOfRange(t *testing.T) {
	txt := newTestText(t)
	txt.SetText("AA")
	before := snapshotBuffers(txt.Buffers())

	// Out-of-range indices are logged no-ops: never a panic, never a
	// mutation. Index 2 is within capacity but past the live count.
	for _, i := range []int{-1, 2, 99, 1000} {
		txt.SetCharColor(i, RGB(1, 0, 0))
		txt.SetCharOutlineColor(i, RGB(1, 0, 0))
		txt.SetCharThickness(i, 0.5, 0.5)
		txt.SetCharGlow(i, false)
	}

	after := snapshotBuffers(txt.Buffers())
	for name, a := range before {
		b := after[name]
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%s[%d] mutated by out-of-range index", name, i)
			}
		}
	}
}

func TestResetCharStyles(t *testing.T) {
	txt := newTestText(t)
	txt.SetText("AAA")
	txt.SetCharColor(0, RGB(1, 0, 0))
	txt.SetCharThickness(2, 0.1, 0.2)
	txt.SetCharGlow(1, false)

	txt.ResetCharStyles()

	for i := 0; i < txt.Capacity(); i++ {
		fill, outline, thickFill, thickOutline, glow := txt.Buffers().Slot(i)
		if fill != RGB(1, 1, 1) || outline != RGB(1, 1, 1) ||
			thickFill != 1 || thickOutline != 1 || glow != 1 {
			t.Fatalf("slot %d not reset", i)
		}
	}
}

func TestGlobalStyleSetters(t *testing.T) {
	txt := newTestText(t)

	txt.SetColor(RGB(1, 0, 0))
	txt.SetOutlineColor(RGB(0, 0, 1))
	txt.SetThickness(0.4)
	txt.SetOutlineThickness(0.1)
	txt.SetSmoothness(0.25)
	txt.EnableGlow()

	s := txt.Style()
	if s.FillColor != RGB(1, 0, 0) || s.OutlineColor != RGB(0, 0, 1) {
		t.Errorf("colors = %+v / %+v", s.FillColor, s.OutlineColor)
	}
	if s.Thickness != 0.4 || s.OutlineThickness != 0.1 || s.Smoothness != 0.25 {
		t.Errorf("scalars = %+v", s)
	}
	if s.GlowMode != 1 {
		t.Errorf("GlowMode = %v, want 1", s.GlowMode)
	}

	txt.DisableGlow()
	if txt.Style().GlowMode != 0 {
		t.Errorf("GlowMode = %v after DisableGlow, want 0", txt.Style().GlowMode)
	}

	txt.SetGlowMode(0.75)
	if txt.Style().GlowMode != 0.75 {
		t.Errorf("GlowMode = %v, want 0.75", txt.Style().GlowMode)
	}
}

func TestConstructionStyleOptions(t *testing.T) {
	red := RGB(1, 0, 0)
	blue := RGB(0, 0, 1)
	txt, err := New(nil, Options{
		Atlas:            testAtlas(),
		Color:            &red,
		OutlineColor:     &blue,
		Thickness:        0.3,
		OutlineThickness: 0.15,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s := txt.Style()
	if s.FillColor != red || s.OutlineColor != blue {
		t.Errorf("colors = %+v / %+v", s.FillColor, s.OutlineColor)
	}
	if s.Thickness != 0.3 || s.OutlineThickness != 0.15 {
		t.Errorf("thickness = %v / %v", s.Thickness, s.OutlineThickness)
	}
}

func TestNewMaterialSpliceFailure(t *testing.T) {
	// A host program without extension points fails the splice, but
	// the text object comes back usable.
	prog := material.NewProgram("@fragment fn fs_main() {}")
	txt, err := New(nil, Options{Atlas: testAtlas(), Text: "A", Material: prog})

	var unsupported *material.UnsupportedHostProgramError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want *material.UnsupportedHostProgramError", err)
	}
	if len(unsupported.Missing) != 3 {
		t.Errorf("Missing = %v, want all three points", unsupported.Missing)
	}
	if txt == nil {
		t.Fatal("text object not returned alongside splice error")
	}
	if txt.Len() != 1 {
		t.Errorf("Len() = %d, want 1", txt.Len())
	}
}

func TestNewMaterialSpliceSuccess(t *testing.T) {
	prog := material.NewProgram(hostSurfaceProgram)
	txt, err := New(nil, Options{Atlas: testAtlas(), Material: prog})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if txt.Material() != prog {
		t.Error("Material() does not return the spliced program")
	}
	if !prog.Spliced() {
		t.Error("program not marked spliced")
	}
}

func TestLayoutOptionsPersist(t *testing.T) {
	txt := newTestText(t)
	txt.SetText("A", LayoutOptions{Size: 2, Align: AlignCenter, LineHeight: 1.5})
	x1 := txt.Buffers().TransformAt(0)[3]

	// A later call without options reuses the previous ones.
	txt.SetText("A")
	x2 := txt.Buffers().TransformAt(0)[3]
	if x1 != x2 {
		t.Errorf("layout changed without new options: %v -> %v", x1, x2)
	}

	// Zero Size keeps the previous size.
	txt.SetText("A", LayoutOptions{Align: AlignCenter, LineHeight: 1.5})
	x3 := txt.Buffers().TransformAt(0)[3]
	if x1 != x3 {
		t.Errorf("zero size overrode previous size: %v -> %v", x1, x3)
	}
}
