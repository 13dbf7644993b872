// Package material splices the distance-field shading stage into an
// externally authored surface-shading program.
//
// A host program opts in by carrying three extension-point markers in
// its WGSL source. Splicing is a capability check against those
// markers, not a blind string replace: a program missing any marker is
// rejected with an UnsupportedHostProgramError and left unmodified.
// On success the program is marked for recompilation; the compiled
// SPIR-V is cached per source shape so the cost is paid once per
// distinct host-program and splice combination.
package material
