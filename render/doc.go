// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the host pipeline integration layer: it owns the
// GPU-side mirror of a text object (instanced render pipeline, atlas
// texture with mips, structure-of-arrays instance buffers, uniform
// block) and re-uploads whatever the dirty flags mark before each
// draw.
//
// The package receives its device from the host via DeviceHandle; it
// never creates one.
package render
