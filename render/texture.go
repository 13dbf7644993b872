// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/msdftext/atlas"
)

// ErrAtlasReleased is returned when uploading an atlas whose pixel
// data was evicted from the cache.
var ErrAtlasReleased = errors.New("render: atlas image released")

// UploadAtlas creates the atlas texture with its full mip chain, the
// sampler matching the atlas sampling contract and the bind group.
// Distance-field reconstruction depends on the sampler state: linear
// magnification, linear minification across mips, clamp-to-edge, no
// color-space transform. Replaces any previously uploaded atlas.
func (p *TextPipeline) UploadAtlas(a *atlas.Atlas) error {
	if p.pipeline == nil {
		return ErrNotInitialized
	}
	if a.Image == nil {
		return ErrAtlasReleased
	}
	p.destroyAtlasResources()

	width := uint32(a.Image.Bounds().Dx())
	height := uint32(a.Image.Bounds().Dy())
	mipCount := uint32(1)
	if a.Sampling.GenerateMips {
		mipCount = uint32(a.MipLevels())
	}

	// RGBA8Unorm, not sRGB: the channels are distance data.
	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "msdf_atlas",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: mipCount,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create atlas texture: %w", err)
	}
	p.atlasTexture = tex

	p.writeMipLevel(0, a.Image)
	if a.Sampling.GenerateMips {
		for i, mip := range a.Mips {
			p.writeMipLevel(uint32(i+1), mip)
		}
	}

	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "msdf_atlas_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: mipCount,
	})
	if err != nil {
		return fmt.Errorf("create atlas texture view: %w", err)
	}
	p.atlasView = view

	sampler, err := p.device.CreateSampler(samplerDescriptor(a.Sampling))
	if err != nil {
		return fmt.Errorf("create atlas sampler: %w", err)
	}
	p.sampler = sampler

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "msdf_text_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: p.uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: p.atlasView.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create text bind group: %w", err)
	}
	p.bindGroup = bindGroup

	return nil
}

// writeMipLevel uploads one mip level's pixels.
func (p *TextPipeline) writeMipLevel(level uint32, img *image.RGBA) {
	w := uint32(img.Bounds().Dx())
	h := uint32(img.Bounds().Dy())
	p.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  p.atlasTexture,
			MipLevel: level,
		},
		img.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
}

// samplerDescriptor translates the atlas sampling contract into a
// sampler descriptor.
func samplerDescriptor(s atlas.Sampling) *hal.SamplerDescriptor {
	desc := &hal.SamplerDescriptor{
		Label:        "msdf_atlas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	}
	if s.LinearMag {
		desc.MagFilter = gputypes.FilterModeLinear
	}
	if s.TrilinearMin {
		desc.MinFilter = gputypes.FilterModeLinear
		desc.MipmapFilter = gputypes.FilterModeLinear
	}
	return desc
}

// destroyAtlasResources releases the atlas texture, view, sampler and
// bind group.
func (p *TextPipeline) destroyAtlasResources() {
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.atlasView != nil {
		p.device.DestroyTextureView(p.atlasView)
		p.atlasView = nil
	}
	if p.atlasTexture != nil {
		p.device.DestroyTexture(p.atlasTexture)
		p.atlasTexture = nil
	}
}
