package msdftext

import (
	"github.com/gogpu/msdftext/atlas"
	"github.com/gogpu/msdftext/material"
)

// Alignment specifies horizontal text alignment within a line.
type Alignment int

const (
	// AlignLeft anchors each line at its left edge (default).
	AlignLeft Alignment = iota
	// AlignCenter centers each line horizontally.
	AlignCenter
	// AlignRight anchors each line at its right edge.
	AlignRight
)

// String returns the string representation of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// defaultMaxLength is the minimum initial capacity when Options.MaxLength
// is not set.
const defaultMaxLength = 100

// Options configures a Text object during creation.
type Options struct {
	// Font is the name of a loaded atlas in the cache passed to New.
	// Ignored when Atlas is set.
	Font string

	// Atlas is a direct atlas reference. Takes precedence over Font.
	Atlas *atlas.Atlas

	// Text is the initial string. May be empty.
	Text string

	// Color is the global fill color. Defaults to opaque white.
	Color *RGBA

	// OutlineColor is the global outline color. Defaults to opaque white.
	OutlineColor *RGBA

	// Thickness is the global fill thickness in the nominal [0, 1] range.
	Thickness float64

	// OutlineThickness is the global outline thickness in the nominal
	// [0, 1] range.
	OutlineThickness float64

	// MaxLength is the initial instance capacity hint.
	// Defaults to max(len(Text), 100).
	MaxLength int

	// Material is an optional host surface-shading program to splice the
	// distance-field stage into. A failed splice surfaces an error from
	// New; the Text object itself is still returned and usable without
	// the material.
	Material *material.Program
}

// LayoutOptions configures a SetText layout pass.
type LayoutOptions struct {
	// Size is the nominal glyph size in world units.
	// If 0, the previous size is kept (initially 1).
	Size float64

	// Align specifies horizontal line alignment.
	Align Alignment

	// LineHeight is a multiplier for the vertical distance between lines.
	// If 0, the previous multiplier is kept (initially 1).
	LineHeight float64
}

// DefaultLayoutOptions returns the layout options used when SetText is
// called without any.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		Size:       1.0,
		Align:      AlignLeft,
		LineHeight: 1.0,
	}
}
