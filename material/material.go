package material

import (
	"strings"
)

// ExtensionPoint identifies a required splice location in a host
// program's WGSL source.
type ExtensionPoint int

const (
	// PointDeclarations sits after the host's module-scope
	// declarations; helper functions are injected here.
	PointDeclarations ExtensionPoint = iota

	// PointVertexUV sits after the host's per-vertex UV setup; the
	// atlas UV computation is injected here.
	PointVertexUV

	// PointFinalBlend sits after the host's final tone/dither stage;
	// the distance-field blend is injected here.
	PointFinalBlend
)

// String returns the marker name of the extension point.
func (p ExtensionPoint) String() string {
	switch p {
	case PointDeclarations:
		return "declarations"
	case PointVertexUV:
		return "vertex_uv"
	case PointFinalBlend:
		return "final_blend"
	default:
		return "unknown"
	}
}

// marker returns the literal comment a host program must carry for
// this extension point.
func (p ExtensionPoint) marker() string {
	return "//@extension:" + p.String()
}

// requiredPoints lists every extension point a host program must
// expose for the splice to succeed.
var requiredPoints = []ExtensionPoint{
	PointDeclarations,
	PointVertexUV,
	PointFinalBlend,
}

// Stage is the shading code injected at each extension point.
//
// RequiredSymbols lists identifiers the injected code references but
// cannot declare itself: per-instance vertex attributes, interstage
// varyings and the host's output variable all live in host-owned
// struct and function scopes that textual injection cannot reach. They
// are part of the capability contract and verified by Splice before
// any text is modified.
type Stage struct {
	Declarations    string
	VertexUV        string
	FinalBlend      string
	RequiredSymbols []string
}

// Program is a host surface-shading program in WGSL. The zero value is
// unusable; construct with NewProgram.
type Program struct {
	source   string
	spliced  bool
	compiled []byte
}

// NewProgram wraps a host program's WGSL source.
func NewProgram(source string) *Program {
	return &Program{source: source}
}

// Source returns the current WGSL source, including any spliced stage.
func (p *Program) Source() string {
	return p.source
}

// Spliced reports whether a shading stage has been injected.
func (p *Program) Spliced() bool {
	return p.spliced
}

// MissingPoints returns the extension points the program's source does
// not carry, in declaration order.
func (p *Program) MissingPoints() []ExtensionPoint {
	var missing []ExtensionPoint
	for _, pt := range requiredPoints {
		if !strings.Contains(p.source, pt.marker()) {
			missing = append(missing, pt)
		}
	}
	return missing
}

// MissingSymbols returns the identifiers from names the program's
// source does not carry, in the given order. Matching is whole-word:
// an identifier embedded in a longer one does not count.
func (p *Program) MissingSymbols(names []string) []string {
	var missing []string
	for _, name := range names {
		if !declaresSymbol(p.source, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Splice injects the shading stage at the program's extension points.
// All three points and every required symbol are verified before any
// text is modified; a program lacking any of them is rejected with an
// *UnsupportedHostProgramError and left untouched.
//
// A successful splice invalidates any previously compiled binary; the
// next Compile call pays the recompilation once for this combination.
func (p *Program) Splice(stage Stage) error {
	missing := p.MissingPoints()
	missingSyms := p.MissingSymbols(stage.RequiredSymbols)
	if len(missing) > 0 || len(missingSyms) > 0 {
		return &UnsupportedHostProgramError{
			Missing:        missing,
			MissingSymbols: missingSyms,
		}
	}

	src := p.source
	src = injectAfter(src, PointDeclarations.marker(), stage.Declarations)
	src = injectAfter(src, PointVertexUV.marker(), stage.VertexUV)
	src = injectAfter(src, PointFinalBlend.marker(), stage.FinalBlend)

	p.source = src
	p.spliced = true
	p.compiled = nil
	return nil
}

// injectAfter inserts code on a new line after the first occurrence of
// marker. The marker is known to exist; Splice verified it.
func injectAfter(src, marker, code string) string {
	i := strings.Index(src, marker)
	end := i + len(marker)
	return src[:end] + "\n" + code + src[end:]
}

// declaresSymbol reports whether src contains name as a whole
// identifier, not as a fragment of a longer one.
func declaresSymbol(src, name string) bool {
	for from := 0; ; {
		i := strings.Index(src[from:], name)
		if i < 0 {
			return false
		}
		i += from
		end := i + len(name)
		if (i == 0 || !identByte(src[i-1])) &&
			(end == len(src) || !identByte(src[end])) {
			return true
		}
		from = end
	}
}

func identByte(b byte) bool {
	return b == '_' ||
		'a' <= b && b <= 'z' ||
		'A' <= b && b <= 'Z' ||
		'0' <= b && b <= '9'
}
