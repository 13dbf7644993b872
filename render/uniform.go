// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/msdftext"
)

// packUniforms serializes the global uniform block: view-projection
// matrix, fill color, outline color, and the packed style parameters
// (thickness, outline thickness, smoothness, glow mode). Matches the
// Globals struct in msdf_text.wgsl.
func packUniforms(style msdftext.Style, viewProj [16]float32) []byte {
	buf := make([]byte, uniformSize)
	off := 0

	for _, v := range viewProj {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}

	off = putColor(buf, off, style.FillColor)
	off = putColor(buf, off, style.OutlineColor)

	for _, v := range [4]float64{
		style.Thickness,
		style.OutlineThickness,
		style.Smoothness,
		style.GlowMode,
	} {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
		off += 4
	}

	return buf
}

// putColor writes an RGBA color as four float32 values.
func putColor(buf []byte, off int, c msdftext.RGBA) int {
	for _, v := range [4]float64{c.R, c.G, c.B, c.A} {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
		off += 4
	}
	return off
}

// floatBytes serializes a float32 slice to little-endian bytes for
// GPU upload.
func floatBytes(values []float32) []byte {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

// IdentityMatrix returns the identity view-projection matrix, used
// when the host draws in clip space directly.
func IdentityMatrix() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}
