// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/msdftext"
)

// Rendering errors.
var (
	// ErrNilDevice is returned when the pipeline is constructed without
	// a device.
	ErrNilDevice = errors.New("render: device is nil")

	// ErrNotInitialized is returned when operating on a pipeline before
	// Init succeeded.
	ErrNotInitialized = errors.New("render: pipeline not initialized")

	// ErrNoAtlasTexture is returned when drawing before UploadAtlas.
	ErrNoAtlasTexture = errors.New("render: no atlas texture uploaded")
)

// quadVertexCount is the number of vertices per character: two
// triangles of a unit quad expanded from the vertex index.
const quadVertexCount = 6

// uniformSize is the byte size of the global uniform block.
// Layout: view_proj (mat4x4<f32>) = 64 bytes + fill_color (vec4<f32>)
// = 16 bytes + outline_color (vec4<f32>) = 16 bytes + params
// (vec4<f32>) = 16 bytes = 112 bytes.
const uniformSize = 112

// Config holds text pipeline configuration.
type Config struct {
	// TargetFormat is the color attachment format.
	// Default: BGRA8Unorm
	TargetFormat gputypes.TextureFormat

	// SampleCount is the MSAA sample count. Default: 1
	SampleCount uint32
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		TargetFormat: gputypes.TextureFormatBGRA8Unorm,
		SampleCount:  1,
	}
}

// TextPipeline manages the GPU resources for instanced distance-field
// text rendering: shader, render pipeline, sampler, atlas texture,
// uniform block and the per-instance attribute buffers mirroring a
// text object's structure-of-arrays store.
//
// Each character is one instance of a unit quad; every per-character
// attribute streams from its own instance-stepped vertex buffer, so a
// style change re-uploads only the affected array.
type TextPipeline struct {
	device hal.Device
	queue  hal.Queue
	config Config

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline

	sampler    hal.Sampler
	uniformBuf hal.Buffer

	atlasTexture hal.Texture
	atlasView    hal.TextureView
	bindGroup    hal.BindGroup

	instance instanceBuffers
}

// instanceBuffers holds one GPU buffer per instance attribute array.
type instanceBuffers struct {
	transforms    hal.Buffer
	uvRects       hal.Buffer
	fillColors    hal.Buffer
	outlineColors hal.Buffer
	thickness     hal.Buffer
	glow          hal.Buffer

	// capacity is the slot count the buffers were allocated for.
	capacity int
}

// NewTextPipeline creates a text pipeline on the given device and
// queue. GPU objects are not created until Init.
func NewTextPipeline(device hal.Device, queue hal.Queue, config Config) (*TextPipeline, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if config.TargetFormat == gputypes.TextureFormatUndefined {
		config.TargetFormat = DefaultConfig().TargetFormat
	}
	if config.SampleCount == 0 {
		config.SampleCount = DefaultConfig().SampleCount
	}
	return &TextPipeline{
		device: device,
		queue:  queue,
		config: config,
	}, nil
}

// Init compiles the shader and creates the render pipeline and the
// uniform buffer. Idempotent.
func (p *TextPipeline) Init() error {
	if p.pipeline != nil {
		return nil
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "msdf_text_shader",
		Source: hal.ShaderSource{WGSL: msdftext.ShaderSource()},
	})
	if err != nil {
		return fmt.Errorf("compile text shader: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: Globals (uniform buffer, vertex+fragment)
	//   Binding 1: atlas texture (texture_2d, fragment)
	//   Binding 2: sampler (fragment)
	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "msdf_text_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create text uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "msdf_text_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create text pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "msdf_text_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create text uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "msdf_text_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    instanceVertexLayouts(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.config.TargetFormat,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: p.config.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create text pipeline: %w", err)
	}
	p.pipeline = pipeline

	return nil
}

// Sync mirrors a text object's CPU state to the GPU: it grows the
// instance buffers if capacity changed, re-uploads exactly the arrays
// the dirty flags mark, packs the uniform block and clears the flags.
// Must run before the render pass that draws the object.
func (p *TextPipeline) Sync(t *msdftext.Text, viewProj [16]float32) error {
	if p.pipeline == nil {
		return ErrNotInitialized
	}

	b := t.Buffers()
	grown, err := p.ensureInstanceCapacity(b.Cap())
	if err != nil {
		return err
	}

	d := b.DirtyState()
	if grown {
		// Fresh buffers hold garbage; upload everything once.
		d = msdftext.DirtyState{
			Transforms: true, UVRects: true,
			FillColors: true, OutlineColors: true,
			Thickness: true, Glow: true,
		}
	}
	if d.Transforms {
		p.queue.WriteBuffer(p.instance.transforms, 0, floatBytes(b.Transforms))
	}
	if d.UVRects {
		p.queue.WriteBuffer(p.instance.uvRects, 0, floatBytes(b.UVRects))
	}
	if d.FillColors {
		p.queue.WriteBuffer(p.instance.fillColors, 0, floatBytes(b.FillColors))
	}
	if d.OutlineColors {
		p.queue.WriteBuffer(p.instance.outlineColors, 0, floatBytes(b.OutlineColors))
	}
	if d.Thickness {
		p.queue.WriteBuffer(p.instance.thickness, 0, floatBytes(b.Thickness))
	}
	if d.Glow {
		p.queue.WriteBuffer(p.instance.glow, 0, floatBytes(b.Glow))
	}
	b.MarkClean()

	p.queue.WriteBuffer(p.uniformBuf, 0, packUniforms(t.Style(), viewProj))
	return nil
}

// RecordDraws records the instanced draw into an existing render pass.
// One unit quad is drawn per live character; parked slots past the
// live count are never submitted.
func (p *TextPipeline) RecordDraws(rp hal.RenderPassEncoder, t *msdftext.Text) error {
	if p.pipeline == nil {
		return ErrNotInitialized
	}
	if p.bindGroup == nil {
		return ErrNoAtlasTexture
	}
	live := t.Len()
	if live == 0 {
		return nil
	}

	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.instance.transforms, 0)
	rp.SetVertexBuffer(1, p.instance.uvRects, 0)
	rp.SetVertexBuffer(2, p.instance.fillColors, 0)
	rp.SetVertexBuffer(3, p.instance.outlineColors, 0)
	rp.SetVertexBuffer(4, p.instance.thickness, 0)
	rp.SetVertexBuffer(5, p.instance.glow, 0)
	rp.Draw(quadVertexCount, uint32(live), 0, 0)
	return nil
}

// ensureInstanceCapacity reallocates the instance buffers when the CPU
// store outgrew them. Returns whether a reallocation happened.
func (p *TextPipeline) ensureInstanceCapacity(capacity int) (bool, error) {
	if capacity <= p.instance.capacity && p.instance.transforms != nil {
		return false, nil
	}
	p.destroyInstanceBuffers()

	specs := []struct {
		label  string
		stride int
		out    *hal.Buffer
	}{
		{"msdf_text_transforms", 16 * 4, &p.instance.transforms},
		{"msdf_text_uv_rects", 4 * 4, &p.instance.uvRects},
		{"msdf_text_fill_colors", 4 * 4, &p.instance.fillColors},
		{"msdf_text_outline_colors", 4 * 4, &p.instance.outlineColors},
		{"msdf_text_thickness", 2 * 4, &p.instance.thickness},
		{"msdf_text_glow", 4, &p.instance.glow},
	}
	for _, s := range specs {
		buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.label,
			Size:  uint64(capacity * s.stride),
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			p.destroyInstanceBuffers()
			return false, fmt.Errorf("create %s: %w", s.label, err)
		}
		*s.out = buf
	}
	p.instance.capacity = capacity
	return true, nil
}

// destroyInstanceBuffers releases all instance attribute buffers.
func (p *TextPipeline) destroyInstanceBuffers() {
	for _, buf := range []*hal.Buffer{
		&p.instance.transforms,
		&p.instance.uvRects,
		&p.instance.fillColors,
		&p.instance.outlineColors,
		&p.instance.thickness,
		&p.instance.glow,
	} {
		if *buf != nil {
			p.device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
	p.instance.capacity = 0
}

// Destroy releases all GPU resources in reverse creation order. Safe
// to call multiple times.
func (p *TextPipeline) Destroy() {
	if p.device == nil {
		return
	}
	p.destroyAtlasResources()
	p.destroyInstanceBuffers()
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.uniformLayout != nil {
		p.device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// instanceVertexLayouts returns the vertex buffer layouts for the
// instanced text pipeline. One instance-stepped buffer per attribute
// array, matching VertexIn in msdf_text.wgsl:
//
//	buffer 0: transform rows   (4 x vec4<f32>, locations 0-3)
//	buffer 1: uv_rect          (vec4<f32>, location 4)
//	buffer 2: fill color       (vec4<f32>, location 5)
//	buffer 3: outline color    (vec4<f32>, location 6)
//	buffer 4: thickness pair   (vec2<f32>, location 7)
//	buffer 5: glow flag        (f32, location 8)
func instanceVertexLayouts() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: 64,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 2},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 3},
			},
		},
		{
			ArrayStride: 16,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 4},
			},
		},
		{
			ArrayStride: 16,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 5},
			},
		},
		{
			ArrayStride: 16,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 6},
			},
		},
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 7},
			},
		},
		{
			ArrayStride: 4,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32, Offset: 0, ShaderLocation: 8},
			},
		},
	}
}
