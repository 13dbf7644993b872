package msdftext

import (
	_ "embed"

	"github.com/gogpu/msdftext/material"
)

//go:embed shaders/msdf_text.wgsl
var shaderSource string

// ShaderSource returns the standalone instanced WGSL shader. The host
// pipeline compiles it when no custom material is spliced.
func ShaderSource() string {
	return shaderSource
}

// SpliceBindGroup is the bind group index reserved for the injected
// uniform, atlas texture and sampler when the shading stage is spliced
// into a host program. Host pipelines must leave this group free and
// bind the text resources to it.
const SpliceBindGroup = 3

// Splice snippets injected into a host surface-shading program. They
// carry the same formulas and constants as the standalone shader; the
// final blend multiplies the distance-field output into the host's own
// lit result instead of replacing it.
//
// The declarations snippet is self-contained at module scope: it
// brings the uniform block (same 112-byte layout as the standalone
// shader, so the host reuses the same upload path), the atlas texture
// and the sampler on the reserved bind group. Everything the snippets
// reference inside host-owned scopes must be declared by the host and
// is listed in spliceRequiredSymbols.
const (
	spliceDeclarations = `
struct MsdfGlobals {
    view_proj: mat4x4<f32>,
    fill_color: vec4<f32>,
    outline_color: vec4<f32>,
    params: vec4<f32>,
}

@group(3) @binding(0) var<uniform> msdf_globals: MsdfGlobals;
@group(3) @binding(1) var msdf_atlas_tex: texture_2d<f32>;
@group(3) @binding(2) var msdf_atlas_samp: sampler;

fn msdf_median3(c: vec3<f32>) -> f32 {
    return max(min(c.r, c.g), min(max(c.r, c.g), c.b));
}

fn msdf_coverage_band(x: f32, s: f32) -> f32 {
    if s <= 0.0 {
        return step(0.5, x);
    }
    return smoothstep(0.5 - s, 0.5 + s, x);
}
`

	spliceVertexUV = `
    msdf_uv = msdf_uv_rect.xy + (msdf_corner + vec2<f32>(0.5)) * msdf_uv_rect.zw;
`

	spliceFinalBlend = `
    let msdf_msd = textureSample(msdf_atlas_tex, msdf_atlas_samp, msdf_uv).rgb;
    let msdf_sd = msdf_median3(msdf_msd);
    let msdf_w = max(length(vec2<f32>(length(dpdx(msdf_msd.rg)), length(dpdy(msdf_msd.rg)))), 1e-5);

    let msdf_thickness = msdf_globals.params.x * msdf_thickness_in.x;
    let msdf_outline_thickness = msdf_globals.params.y * msdf_thickness_in.y;
    let msdf_smoothness = msdf_globals.params.z;
    let msdf_glow_mode = msdf_globals.params.w * msdf_glow_in;
    let msdf_fill = msdf_globals.fill_color * msdf_fill_in;
    let msdf_outline = msdf_globals.outline_color * msdf_outline_in;

    let msdf_inner_edge = msdf_thickness;
    let msdf_outer_edge = msdf_thickness - msdf_outline_thickness;
    let msdf_inner = msdf_coverage_band(clamp((msdf_sd - msdf_inner_edge) / msdf_w + 0.5, 0.0, 1.0), msdf_smoothness);
    let msdf_outer = msdf_coverage_band(clamp((msdf_sd - msdf_outer_edge) / msdf_w + 0.5, 0.0, 1.0), msdf_smoothness);

    var msdf_color: vec3<f32>;
    var msdf_alpha: f32;
    if msdf_glow_mode <= 0.5 {
        let msdf_mask = msdf_outer * (1.0 - msdf_inner);
        msdf_color = mix(msdf_fill.rgb, msdf_outline.rgb, msdf_mask);
        msdf_alpha = msdf_outer * msdf_fill.a;
    } else if msdf_inner > 0.5 {
        msdf_color = msdf_fill.rgb;
        msdf_alpha = msdf_fill.a;
    } else {
        msdf_color = msdf_outline.rgb;
        let msdf_fade = smoothstep(0.0, 1.0, (msdf_sd - msdf_outer_edge) / (msdf_inner_edge - msdf_outer_edge));
        msdf_alpha = msdf_fade * msdf_fade * msdf_fill.a;
    }

    if msdf_alpha < 0.01 {
        discard;
    }
    // Multiply into the host result instead of replacing it.
    out_color = vec4<f32>(out_color.rgb * msdf_color, out_color.a * msdf_alpha);
`
)

// spliceRequiredSymbols lists the identifiers the snippets reference
// inside host-owned scopes. The host declares them: msdf_corner and
// msdf_uv_rect plus a writable msdf_uv in the vertex stage, the
// per-instance style attributes, msdf_uv and a writable out_color in
// the fragment stage. Splice verifies them up front so an
// incompatible host fails the capability check instead of failing
// later at shader compilation.
var spliceRequiredSymbols = []string{
	"msdf_corner",
	"msdf_uv_rect",
	"msdf_uv",
	"msdf_fill_in",
	"msdf_outline_in",
	"msdf_thickness_in",
	"msdf_glow_in",
	"out_color",
}

// ShadingStage returns the distance-field shading stage used to splice
// into a host material program.
func ShadingStage() material.Stage {
	return material.Stage{
		Declarations:    spliceDeclarations,
		VertexUV:        spliceVertexUV,
		FinalBlend:      spliceFinalBlend,
		RequiredSymbols: spliceRequiredSymbols,
	}
}
