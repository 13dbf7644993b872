// Package msdftext renders large numbers of text glyphs in real-time 3D
// scenes using precomputed multi-channel signed distance field (MSDF)
// glyph atlases.
//
// # Overview
//
// Text stays crisp at arbitrary scale because glyph edges are
// reconstructed per pixel from a distance field rather than from
// rasterized bitmaps. Every character is one GPU instance: layout runs
// once per text change on the CPU, after which styling (fill color,
// outline, glow, thickness) costs nothing per character: the effective
// value of every styled property is the product of a global uniform and
// a per-instance attribute.
//
// # Quick Start
//
//	cache := atlas.NewCache(atlas.DefaultCacheConfig())
//	if _, err := cache.Load(ctx, "roboto", "assets/fonts"); err != nil {
//		log.Fatal(err)
//	}
//
//	txt, err := msdftext.New(cache, msdftext.Options{
//		Font:  "roboto",
//		Text:  "Hello, world",
//		Color: msdftext.RGB(1, 1, 1),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	txt.SetText("Updated text", msdftext.LayoutOptions{Size: 2})
//	txt.SetCharColor(0, msdftext.RGB(1, 0, 0))
//
// # Architecture
//
// The library is organized into:
//   - Root package: Text object, instance buffers, layout engine, and
//     the reference distance-field shading algorithm
//   - atlas/: glyph atlas loading, descriptor parsing, cache service
//   - material/: splicing the shading stage into host surface shaders
//   - render/: GPU upload and pipeline creation via gogpu/wgpu
//
// # Coordinate System
//
// Layout places glyph quads in world units on the XY plane (z = 0):
//   - X increases right
//   - Y increases up
//   - The text block is centered vertically around Y = 0
//
// Atlas pixel rectangles use a top-left origin while the shading sample
// space uses a bottom-left origin; UV rects carry a negative V scale to
// perform the flip.
//
// # Concurrency
//
// Text objects follow a single-writer discipline: layout and style
// mutations are synchronous and must not run concurrently on the same
// object. Atlas loading is the only asynchronous operation. The shading
// algorithm is a pure function and safe across any number of parallel
// invocations.
package msdftext

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"
)
