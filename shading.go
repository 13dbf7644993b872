package msdftext

import "math"

// aaEpsilon is the floor applied to the estimated antialiasing width
// so the coverage division never blows up on degenerate gradients.
const aaEpsilon = 1e-5

// DiscardThreshold is the coverage below which a fragment is discarded
// instead of blended. Discarding avoids depth-buffer pollution from
// near-invisible fringe pixels. The comparison is strict: a fragment
// with alpha exactly equal to the threshold renders.
const DiscardThreshold = 0.01

// Style holds the global (all-characters) shading parameters of a Text
// object. At shading time every styled property's effective value is
// the product of the global value and the per-instance value.
type Style struct {
	// FillColor is the global fill color.
	FillColor RGBA

	// OutlineColor is the global outline (or glow halo) color.
	OutlineColor RGBA

	// Thickness is the inner edge position in distance-field units.
	// 0.5 is the glyph's natural edge; lower values fatten the glyph.
	Thickness float64

	// OutlineThickness is how far the outer edge sits below the inner
	// edge, in distance-field units.
	OutlineThickness float64

	// Smoothness widens the antialiasing band of both edges.
	Smoothness float64

	// GlowMode selects the shading branch: values <= 0.5 give a hard
	// outline, values > 0.5 a smoothly fading halo. Continuous in
	// [0, 1]; the per-character flag multiplies into it.
	GlowMode float64
}

// DefaultStyle returns the global style a Text object starts with.
func DefaultStyle() Style {
	return Style{
		FillColor:        RGB(1, 1, 1),
		OutlineColor:     RGB(1, 1, 1),
		Thickness:        0.5,
		OutlineThickness: 0.0,
		Smoothness:       0.0,
		GlowMode:         0.0,
	}
}

// Fragment is the per-pixel input of the shading algorithm: the
// sampled distance channels with their screen-space derivatives, plus
// the per-instance attribute values interpolated for this pixel.
type Fragment struct {
	// MSD is the sampled 3-channel distance value at the pixel's UV.
	MSD [3]float64

	// GradX, GradY are the screen-space derivatives of the first two
	// distance channels: (dr/dx, dg/dx) and (dr/dy, dg/dy).
	GradX, GradY [2]float64

	// FillColor and OutlineColor are the per-instance color multipliers.
	FillColor, OutlineColor RGBA

	// ThicknessFill and ThicknessOutline are the per-instance
	// thickness multipliers.
	ThicknessFill, ThicknessOutline float64

	// Glow is the per-instance glow flag (0 or 1, float to allow
	// blended intermediate values).
	Glow float64
}

// DefaultFragmentStyle returns a Fragment with neutral per-instance
// multipliers: opaque white colors, unit thickness, glow enabled.
func DefaultFragmentStyle() Fragment {
	return Fragment{
		FillColor:        RGB(1, 1, 1),
		OutlineColor:     RGB(1, 1, 1),
		ThicknessFill:    1,
		ThicknessOutline: 1,
		Glow:             1,
	}
}

// Median returns the middle value of three distance samples:
// max(min(r,g), min(max(r,g), b)). This is the standard MSDF decode;
// it recovers a robust signed distance even when any single channel is
// an outlier, and is invariant under permutation of its arguments.
func Median(r, g, b float64) float64 {
	return math.Max(math.Min(r, g), math.Min(math.Max(r, g), b))
}

// Shade executes the distance-field shading algorithm for one pixel.
// It is a pure function of its inputs and safe across arbitrarily many
// parallel invocations. The returned color is not premultiplied;
// discard reports whether the fragment must be dropped entirely
// (alpha < DiscardThreshold).
//
// The same algorithm, with identical formulas and constants, is
// implemented by the embedded WGSL shader (see ShaderSource).
func Shade(frag Fragment, style Style) (color RGBA, alpha float64, discard bool) {
	sd := Median(frag.MSD[0], frag.MSD[1], frag.MSD[2])

	// Antialiasing width from the screen-space gradient magnitude of
	// the first two distance channels.
	w := math.Max(aaWidth(frag.GradX, frag.GradY), aaEpsilon)

	// Hybrid global x instance effective parameters.
	thickness := style.Thickness * frag.ThicknessFill
	outlineThickness := style.OutlineThickness * frag.ThicknessOutline
	glowMode := style.GlowMode * frag.Glow
	fill := style.FillColor.Mul(frag.FillColor)
	outline := style.OutlineColor.Mul(frag.OutlineColor)

	innerEdge := thickness
	outerEdge := thickness - outlineThickness
	innerCoverage := smoothstepBand(clamp01((sd-innerEdge)/w+0.5), style.Smoothness)
	outerCoverage := smoothstepBand(clamp01((sd-outerEdge)/w+0.5), style.Smoothness)

	if glowMode <= 0.5 {
		// Hard-outline mode: the outline mask is the band between the
		// outer and inner coverages.
		outlineMask := outerCoverage * (1 - innerCoverage)
		color = fill.Lerp(outline, outlineMask)
		alpha = outerCoverage * fill.A
	} else if innerCoverage > 0.5 {
		// Glow mode, solid glyph body.
		color = fill
		alpha = fill.A
	} else {
		// Glow mode, halo: squared smoothstep for a steeper falloff.
		color = outline
		edgeFraction := (sd - outerEdge) / (innerEdge - outerEdge)
		fade := smoothstep(0, 1, edgeFraction)
		alpha = fade * fade * fill.A
	}

	return color, alpha, alpha < DiscardThreshold
}

// ComposeWithHost combines the shading output with a host surface
// shader's own result: the final fragment is the component-wise
// product of the two color/alpha pairs. The distance-field output
// tints and multiplies the host's lit result rather than replacing it.
func ComposeWithHost(color RGBA, alpha float64, hostColor RGBA, hostAlpha float64) (RGBA, float64) {
	return color.Mul(hostColor), alpha * hostAlpha
}

// aaWidth combines the two channel-gradient vectors into a single
// antialiasing width via the Euclidean norm.
func aaWidth(gradX, gradY [2]float64) float64 {
	nx := math.Hypot(gradX[0], gradX[1])
	ny := math.Hypot(gradY[0], gradY[1])
	return math.Hypot(nx, ny)
}

// smoothstepBand applies a Hermite interpolation across the band
// [0.5-s, 0.5+s]. With s = 0 it degenerates to a hard step at 0.5.
func smoothstepBand(x, s float64) float64 {
	if s <= 0 {
		if x >= 0.5 {
			return 1
		}
		return 0
	}
	return smoothstep(0.5-s, 0.5+s, x)
}

// smoothstep is the standard Hermite smoothstep over [edge0, edge1].
func smoothstep(edge0, edge1, x float64) float64 {
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// clamp01 clamps v to [0, 1]. NaN (from a degenerate 0/0 edge
// fraction) clamps to 0 so it never propagates into blend math.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
