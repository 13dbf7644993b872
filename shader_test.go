package msdftext

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/msdftext/material"
)

// hostSurfaceProgram is a minimal host surface shader carrying every
// extension point and every symbol the shading stage requires.
const hostSurfaceProgram = `
//@extension:declarations

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) index: u32,
    @location(0) msdf_uv_rect: vec4<f32>) -> VertexOut {
    var corners = array<vec2<f32>, 3>(
        vec2<f32>(-0.5, -0.5),
        vec2<f32>(1.5, -0.5),
        vec2<f32>(-0.5, 1.5)
    );
    let msdf_corner = corners[index];
    var msdf_uv = vec2<f32>(0.0);
//@extension:vertex_uv

    var out: VertexOut;
    out.position = vec4<f32>(msdf_corner, 0.0, 1.0);
    out.uv = msdf_uv;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let msdf_uv = in.uv;
    let msdf_fill_in = vec4<f32>(1.0);
    let msdf_outline_in = vec4<f32>(1.0);
    let msdf_thickness_in = vec2<f32>(1.0, 1.0);
    let msdf_glow_in = 1.0;
    var out_color = vec4<f32>(1.0);
//@extension:final_blend
    return out_color;
}
`

func TestShadingStageSpliceAndCompile(t *testing.T) {
	prog := material.NewProgram(hostSurfaceProgram)
	if err := prog.Splice(ShadingStage()); err != nil {
		t.Fatalf("Splice: %v", err)
	}

	// The declarations snippet brings its own bindings on the
	// reserved group; the host never declares them.
	if !strings.Contains(prog.Source(), "@group(3) @binding(0) var<uniform> msdf_globals") {
		t.Error("spliced source missing the injected uniform binding")
	}
	if !strings.Contains(prog.Source(), "msdf_atlas_tex") ||
		!strings.Contains(prog.Source(), "msdf_atlas_samp") {
		t.Error("spliced source missing the injected atlas bindings")
	}

	spirv, err := prog.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(spirv) == 0 {
		t.Fatal("Compile returned an empty binary")
	}
}

func TestSplicedCompileHitsCache(t *testing.T) {
	first := material.NewProgram(hostSurfaceProgram)
	if err := first.Splice(ShadingStage()); err != nil {
		t.Fatalf("Splice: %v", err)
	}
	a, err := first.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	// A second program with the identical source resolves from the
	// process-wide cache: same backing binary, no recompilation.
	second := material.NewProgram(hostSurfaceProgram)
	if err := second.Splice(ShadingStage()); err != nil {
		t.Fatalf("second Splice: %v", err)
	}
	b, err := second.Compile()
	if err != nil {
		t.Fatalf("second Compile: %v", err)
	}
	if &a[0] != &b[0] {
		t.Error("second compile of identical source missed the cache")
	}
}

func TestShadingStageRejectsUndeclaredSymbols(t *testing.T) {
	// All three markers present, none of the host-side identifiers.
	src := `
//@extension:declarations
@vertex fn vs_main() {
//@extension:vertex_uv
}
@fragment fn fs_main() {
//@extension:final_blend
}
`
	prog := material.NewProgram(src)
	err := prog.Splice(ShadingStage())

	var unsupported *material.UnsupportedHostProgramError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want *material.UnsupportedHostProgramError", err)
	}
	if len(unsupported.Missing) != 0 {
		t.Errorf("Missing = %v, want no missing points", unsupported.Missing)
	}
	if len(unsupported.MissingSymbols) != len(spliceRequiredSymbols) {
		t.Errorf("MissingSymbols = %v, want all of %v",
			unsupported.MissingSymbols, spliceRequiredSymbols)
	}
	if prog.Source() != src {
		t.Error("failed splice modified the source")
	}
	if prog.Spliced() {
		t.Error("failed splice marked the program spliced")
	}
}

func TestShadingStageNamesMissingSymbol(t *testing.T) {
	// A host one identifier short of the contract: every symbol but
	// msdf_glow_in.
	src := strings.Replace(hostSurfaceProgram,
		"    let msdf_glow_in = 1.0;\n", "", 1)
	prog := material.NewProgram(src)
	err := prog.Splice(ShadingStage())

	var unsupported *material.UnsupportedHostProgramError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want *material.UnsupportedHostProgramError", err)
	}
	if len(unsupported.MissingSymbols) != 1 || unsupported.MissingSymbols[0] != "msdf_glow_in" {
		t.Errorf("MissingSymbols = %v, want [msdf_glow_in]", unsupported.MissingSymbols)
	}
	if !strings.Contains(err.Error(), "msdf_glow_in") {
		t.Errorf("error %q does not name the missing symbol", err)
	}
}
