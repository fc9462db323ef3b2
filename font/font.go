// Package font supplies the glyph bitmaps used by the print primitive.
//
// A glyph is a fixed GlyphWidth x GlyphHeight grid of 4-bit indices where 0
// means "do not paint". The rasterizer only distinguishes zero from nonzero:
// the foreground color comes from the print call.
package font

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	GlyphWidth  = 4
	GlyphHeight = 6
)

// Glyph is one character bitmap, indexed [y][x].
type Glyph [GlyphHeight][GlyphWidth]uint8

// Get returns the index at (x, y).
func (g *Glyph) Get(x, y int) uint8 {
	return g[y][x]
}

// Painted counts the nonzero cells.
func (g *Glyph) Painted() int {
	n := 0
	for y := range g {
		for x := range g[y] {
			if g[y][x] != 0 {
				n++
			}
		}
	}
	return n
}

// Provider returns the glyph for a character code. A nil glyph draws nothing.
type Provider interface {
	Glyph(c byte) *Glyph
}

// Encode converts text to 8-bit character codes. Runes outside Latin-1 become
// the charmap's replacement byte.
func Encode(s string) []byte {
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return b
}

// Default returns the built-in font: the basic face behind a glyph cache.
func Default() Provider {
	c, err := NewCache(Basic(), 256)
	if err != nil {
		return Basic()
	}
	return c
}
