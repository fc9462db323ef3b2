package emu

import (
	"image"
	"image/color"
)

// Surface is the 32-bit presentation buffer mirroring the framebuffer.
// Pixels are 0xAARRGGBB words. The rasterizer is its only writer; hosts
// read it between frames.
type Surface struct {
	Pix    []uint32
	Width  int
	Height int
}

// NewSurface allocates a surface of the given size, filled with opaque black.
func NewSurface(width, height int) *Surface {
	s := &Surface{
		Pix:    make([]uint32, width*height),
		Width:  width,
		Height: height,
	}
	s.Fill(ARGB(0))
	return s
}

// Pixel returns the word at (x, y).
func (s *Surface) Pixel(x, y int) uint32 {
	return s.Pix[y*s.Width+x]
}

// Set stores a word at (x, y).
func (s *Surface) Set(x, y int, argb uint32) {
	s.Pix[y*s.Width+x] = argb
}

// Fill stores argb in every pixel.
func (s *Surface) Fill(argb uint32) {
	for i := range s.Pix {
		s.Pix[i] = argb
	}
}

// CopyRGBA writes the surface as R, G, B, A bytes into dst, which must hold
// at least Width*Height*4 bytes. It returns the number of bytes written.
func (s *Surface) CopyRGBA(dst []byte) int {
	n := 0
	for _, p := range s.Pix {
		dst[n] = uint8(p >> 16)
		dst[n+1] = uint8(p >> 8)
		dst[n+2] = uint8(p)
		dst[n+3] = uint8(p >> 24)
		n += 4
	}
	return n
}

// ColorModel implements image.Image.
func (s *Surface) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds returns the surface rectangle anchored at the origin.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// At returns the pixel at (x, y), or transparent black outside the bounds.
func (s *Surface) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(s.Bounds()) {
		return color.RGBA{}
	}
	p := s.Pixel(x, y)
	return color.RGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: uint8(p >> 24)}
}
