package emu

import (
	"testing"

	"github.com/user-none/retro8/font"
)

// blockFont paints every cell of the three left columns for any character
// other than space, so consecutive glyphs leave column 3 of each cell blank.
type blockFont struct{}

func (blockFont) Glyph(c byte) *font.Glyph {
	g := &font.Glyph{}
	if c == ' ' {
		return g
	}
	for y := 0; y < font.GlyphHeight; y++ {
		for x := 0; x < font.GlyphWidth-1; x++ {
			g[y][x] = 1
		}
	}
	return g
}

// newTestMachine creates a machine with the block font.
func newTestMachine(policy BoundsPolicy) *Machine {
	return NewMachine(Options{Policy: policy, Font: blockFont{}})
}

// checkSurfaceSync fails the test if any surface pixel disagrees with the
// packed framebuffer.
func checkSurfaceSync(t *testing.T, m *Machine) {
	t.Helper()
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			want := ARGB(m.mem.ScreenPixel(x, y))
			if got := m.surface.Pixel(x, y); got != want {
				t.Fatalf("surface (%d, %d): expected 0x%08X, got 0x%08X", x, y, want, got)
			}
		}
	}
}

// paintedPixels returns every on-screen pixel whose value differs from bg.
func paintedPixels(m *Machine, bg Color) map[Point]Color {
	out := make(map[Point]Color)
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			if c := m.mem.ScreenPixel(x, y); c != bg {
				out[Point{X: x, Y: y}] = c
			}
		}
	}
	return out
}
