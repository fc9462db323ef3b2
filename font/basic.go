package font

import (
	"image"

	"golang.org/x/image/draw"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Coverage at or above this alpha marks a downscaled cell as painted.
const coverageThreshold = 0x60

// FaceProvider rasterizes glyphs from a font face, shrinking each one into
// the top-left (GlyphWidth-1) x (GlyphHeight-1) cells so neighbouring
// characters keep a one pixel gap at the fixed advance.
type FaceProvider struct {
	face xfont.Face
}

// Basic returns a provider backed by basicfont.Face7x13.
func Basic() *FaceProvider {
	return NewFaceProvider(basicfont.Face7x13)
}

// NewFaceProvider wraps any face.
func NewFaceProvider(face xfont.Face) *FaceProvider {
	return &FaceProvider{face: face}
}

// Glyph rasterizes c, interpreted as a Latin-1 code point.
func (p *FaceProvider) Glyph(c byte) *Glyph {
	r := rune(c)
	if r == ' ' {
		return &Glyph{}
	}

	adv, ok := p.face.GlyphAdvance(r)
	if !ok {
		return nil
	}
	m := p.face.Metrics()
	width := adv.Ceil()
	height := m.Height.Ceil()
	if width <= 0 || height <= 0 {
		return nil
	}

	dr, mask, maskp, _, ok := p.face.Glyph(fixed.P(0, m.Ascent.Ceil()), r)
	if !ok {
		return nil
	}

	cell := image.NewAlpha(image.Rect(0, 0, width, height))
	draw.DrawMask(cell, dr, image.Opaque, image.Point{}, mask, maskp, draw.Over)

	small := image.NewAlpha(image.Rect(0, 0, GlyphWidth-1, GlyphHeight-1))
	draw.BiLinear.Scale(small, small.Bounds(), cell, cell.Bounds(), draw.Src, nil)

	g := &Glyph{}
	for y := 0; y < GlyphHeight-1; y++ {
		for x := 0; x < GlyphWidth-1; x++ {
			if small.AlphaAt(x, y).A >= coverageThreshold {
				g[y][x] = 1
			}
		}
	}
	return g
}
