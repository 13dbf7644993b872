// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/msdftext"
	"github.com/gogpu/msdftext/atlas"
)

func TestNewTextPipelineNilDevice(t *testing.T) {
	_, err := NewTextPipeline(nil, nil, DefaultConfig())
	if !errors.Is(err, ErrNilDevice) {
		t.Errorf("err = %v, want ErrNilDevice", err)
	}
}

func TestInstanceVertexLayouts(t *testing.T) {
	layouts := instanceVertexLayouts()
	if len(layouts) != 6 {
		t.Fatalf("layout count = %d, want 6", len(layouts))
	}

	wantStrides := []uint64{64, 16, 16, 16, 8, 4}
	locations := map[uint32]bool{}
	for i, l := range layouts {
		if uint64(l.ArrayStride) != wantStrides[i] {
			t.Errorf("buffer %d stride = %d, want %d", i, l.ArrayStride, wantStrides[i])
		}
		if l.StepMode != gputypes.VertexStepModeInstance {
			t.Errorf("buffer %d step mode is not per-instance", i)
		}
		for _, a := range l.Attributes {
			if locations[a.ShaderLocation] {
				t.Errorf("shader location %d used twice", a.ShaderLocation)
			}
			locations[a.ShaderLocation] = true
		}
	}

	// Locations 0..8 all present, matching VertexIn in the shader.
	for loc := uint32(0); loc <= 8; loc++ {
		if !locations[loc] {
			t.Errorf("shader location %d not covered", loc)
		}
	}
}

func TestPackUniforms(t *testing.T) {
	style := msdftext.Style{
		FillColor:        msdftext.RGB(1, 0.5, 0.25),
		OutlineColor:     msdftext.RGBA{R: 0, G: 1, B: 0, A: 0.5},
		Thickness:        0.5,
		OutlineThickness: 0.1,
		Smoothness:       0.25,
		GlowMode:         1,
	}

	buf := packUniforms(style, IdentityMatrix())
	if len(buf) != uniformSize {
		t.Fatalf("uniform size = %d, want %d", len(buf), uniformSize)
	}

	at := func(off int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])))
	}

	// Matrix diagonal.
	for _, off := range []int{0, 20, 40, 60} {
		if at(off) != 1 {
			t.Errorf("matrix diagonal at %d = %v, want 1", off, at(off))
		}
	}
	// Fill color at offset 64, outline at 80, params at 96.
	if at(64) != 1 || at(68) != 0.5 || at(72) != 0.25 || at(76) != 1 {
		t.Errorf("fill color block wrong: %v %v %v %v", at(64), at(68), at(72), at(76))
	}
	if at(80) != 0 || at(84) != 1 || at(92) != 0.5 {
		t.Errorf("outline color block wrong")
	}
	if at(96) != 0.5 || at(100) != float64(float32(0.1)) || at(104) != 0.25 || at(108) != 1 {
		t.Errorf("params block wrong: %v %v %v %v", at(96), at(100), at(104), at(108))
	}
}

func TestFloatBytes(t *testing.T) {
	data := floatBytes([]float32{1, -2.5, 0})
	if len(data) != 12 {
		t.Fatalf("len = %d, want 12", len(data))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[4:])); got != -2.5 {
		t.Errorf("second value = %v, want -2.5", got)
	}
}

func TestSamplerDescriptor(t *testing.T) {
	t.Run("distance field defaults", func(t *testing.T) {
		desc := samplerDescriptor(atlas.DefaultSampling())
		if desc.MagFilter != gputypes.FilterModeLinear {
			t.Error("magnification must be linear")
		}
		if desc.MinFilter != gputypes.FilterModeLinear || desc.MipmapFilter != gputypes.FilterModeLinear {
			t.Error("minification must be trilinear")
		}
		if desc.AddressModeU != gputypes.AddressModeClampToEdge {
			t.Error("addressing must clamp to edge")
		}
	})

	t.Run("filtering disabled", func(t *testing.T) {
		desc := samplerDescriptor(atlas.Sampling{})
		if desc.MagFilter != gputypes.FilterModeNearest || desc.MipmapFilter != gputypes.FilterModeNearest {
			t.Error("disabled sampling flags must fall back to nearest")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.TargetFormat != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("TargetFormat = %v", c.TargetFormat)
	}
	if c.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", c.SampleCount)
	}
}
