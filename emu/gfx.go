package emu

import "image/color"

// Color is a 4-bit color index. Logical colors come from callers and are
// resolved through the draw palette; physical colors are what the
// framebuffer stores.
type Color uint8

// Point is a screen coordinate.
type Point struct {
	X, Y int
}

const (
	SpriteWidth  = 8
	SpriteHeight = 8

	// Characters advance by a fixed step regardless of glyph width.
	GlyphAdvance = 4

	// DrawPaletteIndex is the palette slot consulted by every primitive.
	DrawPaletteIndex = 0

	colorMask = 0x0F
)

// ColorTable maps a physical color index to the RGB shown on the surface.
var ColorTable = [16]color.RGBA{
	{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}, // black
	{R: 0x1D, G: 0x2B, B: 0x53, A: 0xFF}, // dark blue
	{R: 0x7E, G: 0x25, B: 0x53, A: 0xFF}, // dark purple
	{R: 0x00, G: 0x87, B: 0x51, A: 0xFF}, // dark green
	{R: 0xAB, G: 0x52, B: 0x36, A: 0xFF}, // brown
	{R: 0x5F, G: 0x57, B: 0x4F, A: 0xFF}, // dark gray
	{R: 0xC2, G: 0xC3, B: 0xC7, A: 0xFF}, // light gray
	{R: 0xFF, G: 0xF1, B: 0xE8, A: 0xFF}, // white
	{R: 0xFF, G: 0x00, B: 0x4D, A: 0xFF}, // red
	{R: 0xFF, G: 0xA3, B: 0x00, A: 0xFF}, // orange
	{R: 0xFF, G: 0xEC, B: 0x27, A: 0xFF}, // yellow
	{R: 0x00, G: 0xE4, B: 0x36, A: 0xFF}, // green
	{R: 0x29, G: 0xAD, B: 0xFF, A: 0xFF}, // blue
	{R: 0x83, G: 0x76, B: 0x9C, A: 0xFF}, // indigo
	{R: 0xFF, G: 0x77, B: 0xA8, A: 0xFF}, // pink
	{R: 0xFF, G: 0xCC, B: 0xAA, A: 0xFF}, // peach
}

// argbTable is ColorTable packed as 0xAARRGGBB surface words.
var argbTable = func() [16]uint32 {
	var table [16]uint32
	for i, c := range ColorTable {
		table[i] = 0xFF000000 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	}
	return table
}()

// ARGB returns the surface word for a physical color.
func ARGB(c Color) uint32 {
	return argbTable[c&colorMask]
}

// ColorPair is a live view over one byte holding two color nibbles.
type ColorPair struct {
	b *byte
}

// PackColorPair builds the byte value of a pair.
func PackColorPair(low, high Color) byte {
	return byte(low&colorMask) | byte(high&colorMask)<<4
}

// Low returns the color in the low nibble.
func (p ColorPair) Low() Color { return Color(*p.b & 0x0F) }

// High returns the color in the high nibble.
func (p ColorPair) High() Color { return Color(*p.b >> 4) }

// Value returns the raw byte.
func (p ColorPair) Value() byte { return *p.b }

// SetLow stores c in the low nibble, keeping the high one.
func (p ColorPair) SetLow(c Color) {
	*p.b = (*p.b & 0xF0) | byte(c&colorMask)
}

// SetHigh stores c in the high nibble, keeping the low one.
func (p ColorPair) SetHigh(c Color) {
	*p.b = (*p.b & 0x0F) | byte(c&colorMask)<<4
}

// Palette is a live view over the 16 entry bytes of one palette.
// Only the low nibble of each entry is significant.
type Palette []byte

// Get returns the color c maps to.
func (p Palette) Get(c Color) Color {
	return Color(p[c&colorMask] & colorMask)
}

// Set remaps from to to. Pixels already drawn are not touched.
func (p Palette) Set(from, to Color) {
	p[from&colorMask] = byte(to & colorMask)
}

// Reset restores the identity mapping.
func (p Palette) Reset() {
	for i := 0; i < PaletteEntries; i++ {
		p[i] = byte(i)
	}
}

// Sprite is a live view over the 32 bytes of one 8x8 sprite.
// Pixel (x, y) lives in byte y*4 + x/2, even x in the low nibble.
type Sprite []byte

// Get returns the color of cell (x, y).
func (s Sprite) Get(x, y int) Color {
	b := s[y*(SpriteWidth/2)+x/2]
	if x%2 == 0 {
		return Color(b & 0x0F)
	}
	return Color(b >> 4)
}

// Set stores c in cell (x, y).
func (s Sprite) Set(x, y int, c Color) {
	i := y*(SpriteWidth/2) + x/2
	if x%2 == 0 {
		s[i] = (s[i] & 0xF0) | byte(c&colorMask)
	} else {
		s[i] = (s[i] & 0x0F) | byte(c&colorMask)<<4
	}
}
