package atlas

import (
	"image"

	"golang.org/x/image/draw"
)

// GenerateMips builds the mip chain for an atlas image: each level
// halves the previous one (rounding up) until 1x1. Level 0 (the source
// image) is not included in the result.
//
// Distance fields downscale well with a high-quality kernel because
// the field is piecewise smooth; Catmull-Rom keeps the median decode
// stable at minified scales where a box filter would wash out thin
// strokes.
func GenerateMips(src *image.RGBA) []*image.RGBA {
	if src == nil {
		return nil
	}
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if w <= 1 && h <= 1 {
		return nil
	}

	var mips []*image.RGBA
	prev := src
	for w > 1 || h > 1 {
		w = halve(w)
		h = halve(h)
		level := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(level, level.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		mips = append(mips, level)
		prev = level
	}
	return mips
}

// MipLevelCount returns the number of mip levels (including level 0)
// for a texture of the given size.
func MipLevelCount(width, height int) int {
	levels := 1
	for width > 1 || height > 1 {
		width = halve(width)
		height = halve(height)
		levels++
	}
	return levels
}

// halve halves a dimension, never going below 1.
func halve(v int) int {
	v /= 2
	if v < 1 {
		return 1
	}
	return v
}

// ToRGBA converts any decoded image to *image.RGBA without a
// color-space transform, as required for distance-field data.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
