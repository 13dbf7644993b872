// Package atlas loads and caches MSDF glyph atlases: an image whose
// color channels encode a multi-channel signed distance field, paired
// with a BMFont-style metrics descriptor.
//
// An atlas pair is produced offline by an MSDF generator (for example
// msdf-bmfont or msdf-atlas-gen) and consumed read-only here. The
// descriptor carries atlas-wide metrics (scaleW, scaleH, lineHeight,
// size) and one record per glyph (id, x, y, width, height, xoffset,
// yoffset, xadvance). Both the classic text format and the JSON
// format are supported.
//
// # Cache Service
//
// Atlases are owned by a Cache keyed by name. The cache is an explicit
// service object with a defined lifecycle (Load, Get, Evict, Clear),
// never ambient global state. Concurrent Load calls for the same name
// are deduplicated to at most one in-flight fetch; latecomers receive
// the same result.
//
//	cache := atlas.NewCache(atlas.DefaultCacheConfig())
//	if _, err := cache.Load(ctx, "roboto", "assets/fonts"); err != nil {
//	    log.Fatal(err)
//	}
//	a, ok := cache.Get("roboto")
//
// # Sampling
//
// Distance fields need specific sampler state to reconstruct cleanly:
// trilinear minification over a generated mip chain, linear
// magnification, no vertical flip and no color-space transform. The
// mip chain is generated at load time and the required sampler state
// is recorded on the Atlas for the render layer to honor.
package atlas
