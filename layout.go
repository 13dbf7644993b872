package msdftext

import (
	"strings"
	"unicode/utf8"

	"github.com/gogpu/msdftext/atlas"
	"golang.org/x/text/unicode/norm"
)

// fallbackAdvanceFactor is the cursor advance, as a fraction of the
// nominal size, consumed by a codepoint the atlas has no glyph for.
// Unknown glyphs leave a gap rather than collapsing.
const fallbackAdvanceFactor = 0.3

// normalizeText prepares a string for layout: NFC normalization so
// composed and decomposed forms resolve to the same atlas glyphs, and
// newline canonicalization so "\r\n" and "\r" both break lines.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	if strings.ContainsRune(s, '\r') {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	return s
}

// runeCount returns the character count of a normalized string. This is
// the required slot count handed to the capacity manager; it counts
// every rune, so capacity is a slight overestimate when the text holds
// newlines or unresolved codepoints.
func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}

// layoutText runs one layout pass: it places every resolvable
// character of text into b starting at slot 0, parks the remaining
// slots and returns the new live count.
//
// The caller must have grown b to at least runeCount(text) slots.
// Placement is deterministic: the same text, atlas and options always
// produce identical buffer contents.
//
// The transform written per slot scales a unit quad centered at the
// origin, so the matrix diagonal carries the full glyph extents and the
// translation the quad center.
func layoutText(b *InstanceBuffers, a *atlas.Atlas, text string, opts LayoutOptions) int {
	lines := strings.Split(text, "\n")
	scale := opts.Size / a.Metrics.Size
	fallback := fallbackAdvanceFactor * opts.Size
	totalLines := float64(len(lines))

	atlasW := float64(a.Metrics.ScaleW)
	atlasH := float64(a.Metrics.ScaleH)

	slot := 0
	for li, line := range lines {
		var lineWidth float64
		for _, r := range line {
			if g, ok := a.Lookup(r); ok {
				lineWidth += g.XAdvance * scale
			}
		}

		var penX float64
		switch opts.Align {
		case AlignCenter:
			penX = -lineWidth / 2
		case AlignRight:
			penX = -lineWidth
		}

		// Vertical block centering: line 0 sits highest, the block's
		// midpoint is at y = 0.
		lineY := (totalLines/2 - float64(li) - 0.5) * opts.LineHeight * opts.Size

		for _, r := range line {
			g, ok := a.Lookup(r)
			if !ok {
				penX += fallback
				continue
			}

			halfW := g.Width * scale / 2
			halfH := g.Height * scale / 2
			cx := penX + g.XOffset*scale + halfW
			cy := lineY - g.YOffset*scale - halfH
			b.setTransform(slot,
				float32(cx), float32(cy),
				float32(halfW*2), float32(halfH*2))

			// Negative V scale: the atlas rect has a top-left origin,
			// the shading sample space a bottom-left origin.
			b.setUVRect(slot,
				float32(g.X/atlasW),
				float32((g.Y+g.Height)/atlasH),
				float32(g.Width/atlasW),
				float32(-g.Height/atlasH))

			penX += g.XAdvance * scale
			slot++
		}
	}

	b.parkFrom(slot)
	return slot
}
