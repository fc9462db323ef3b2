package emu

import "fmt"

// ----------------------------------------------------------------------------
// Memory map
// ----------------------------------------------------------------------------
//   $0000-$1FFF: sprite sheet (256 sprites, 32 bytes each)
//   $5F10-$5F1F: draw palette (16 entries, low nibble significant)
//   $5F25:       pen color (low nibble = primary pen)
//   $6000-$7FFF: screen (128x128, 2 pixels per byte, even x in low nibble)
//
// Scripts may peek and poke these addresses directly, so the layout is fixed.

const (
	MemorySize = 0x8000

	AddrSpriteSheet = 0x0000
	AddrPalettes    = 0x5F10
	AddrPenColor    = 0x5F25
	AddrScreen      = 0x6000

	ScreenWidth  = 128
	ScreenHeight = 128

	BytesPerScreenRow = ScreenWidth / 2
	ScreenSize        = BytesPerScreenRow * ScreenHeight

	BytesPerSprite  = SpriteWidth * SpriteHeight / 2
	SpriteSheetSize = 0x2000
	SpriteCount     = SpriteSheetSize / BytesPerSprite

	PaletteEntries  = 16
	BytesPerPalette = PaletteEntries
	PaletteCount    = 1
)

// Memory is the 32KB address space shared by scripts and the rasterizer.
// Every view it hands out aliases the same backing array.
type Memory struct {
	data [MemorySize]uint8
}

// NewMemory returns zeroed memory with the draw palette reset to identity.
func NewMemory() *Memory {
	m := &Memory{}
	m.drawPalette().Reset()
	return m
}

// Get reads a byte. Addresses past the end read as zero.
func (m *Memory) Get(addr uint16) uint8 {
	if int(addr) >= MemorySize {
		return 0
	}
	return m.data[addr]
}

// Set writes a byte. Writes past the end are ignored.
func (m *Memory) Set(addr uint16, val uint8) {
	if int(addr) >= MemorySize {
		return
	}
	m.data[addr] = val
}

// Bytes returns the live backing store.
func (m *Memory) Bytes() []byte {
	return m.data[:]
}

// SpriteAt returns a view of sprite index.
func (m *Memory) SpriteAt(index int) (Sprite, error) {
	if index < 0 || index >= SpriteCount {
		return nil, fmt.Errorf("sprite %d: %w", index, ErrOutOfBounds)
	}
	base := AddrSpriteSheet + index*BytesPerSprite
	return Sprite(m.data[base : base+BytesPerSprite : base+BytesPerSprite]), nil
}

// PaletteAt returns a view of palette index.
func (m *Memory) PaletteAt(index int) (Palette, error) {
	if index < 0 || index >= PaletteCount {
		return nil, fmt.Errorf("palette %d: %w", index, ErrOutOfBounds)
	}
	base := AddrPalettes + index*BytesPerPalette
	return Palette(m.data[base : base+BytesPerPalette : base+BytesPerPalette]), nil
}

func (m *Memory) drawPalette() Palette {
	base := AddrPalettes + DrawPaletteIndex*BytesPerPalette
	return Palette(m.data[base : base+BytesPerPalette : base+BytesPerPalette])
}

// PenColor returns a view of the pen color register.
func (m *Memory) PenColor() ColorPair {
	return ColorPair{b: &m.data[AddrPenColor]}
}

// InScreen reports whether (x, y) addresses a framebuffer pixel.
func InScreen(x, y int) bool {
	return x >= 0 && x < ScreenWidth && y >= 0 && y < ScreenHeight
}

func screenAddr(x, y int) int {
	return AddrScreen + (y*ScreenWidth+x)/2
}

// ScreenPixel reads the physical color at (x, y), which must be on screen.
func (m *Memory) ScreenPixel(x, y int) Color {
	b := m.data[screenAddr(x, y)]
	if x%2 == 0 {
		return Color(b & 0x0F)
	}
	return Color((b >> 4) & 0x0F)
}

// SetScreenPixel stores c at (x, y), which must be on screen. The other pixel
// sharing the byte is preserved.
func (m *Memory) SetScreenPixel(x, y int, c Color) {
	addr := screenAddr(x, y)
	if x%2 == 0 {
		m.data[addr] = (m.data[addr] & 0xF0) | byte(c&colorMask)
	} else {
		m.data[addr] = (m.data[addr] & 0x0F) | byte(c&colorMask)<<4
	}
}

// FillScreen sets every framebuffer pixel to c.
func (m *Memory) FillScreen(c Color) {
	v := PackColorPair(c, c)
	screen := m.data[AddrScreen : AddrScreen+ScreenSize]
	for i := range screen {
		screen[i] = v
	}
}

// inScreenRegion reports whether addr falls in the framebuffer.
func inScreenRegion(addr uint16) bool {
	return int(addr) >= AddrScreen && int(addr) < AddrScreen+ScreenSize
}
