package emu

import (
	"errors"
	"testing"
	"time"
)

// TestMachine_NewState tests the power-on state of a machine
func TestMachine_NewState(t *testing.T) {
	m := newTestMachine(PolicyClip)

	if got := len(paintedPixels(m, 0)); got != 0 {
		t.Errorf("new screen: expected all color 0, got %d painted pixels", got)
	}
	if m.State().LastLineEnd != (Point{}) {
		t.Errorf("LastLineEnd: expected (0, 0), got %+v", m.State().LastLineEnd)
	}
	if m.Policy() != PolicyClip {
		t.Errorf("Policy: expected clip, got %v", m.Policy())
	}
	checkSurfaceSync(t, m)
}

// TestMachine_PsetPget tests that pget returns the resolved color pset stored
func TestMachine_PsetPget(t *testing.T) {
	tests := []struct {
		x, y int
		c    Color
	}{
		{0, 0, 1},
		{127, 0, 15},
		{0, 127, 7},
		{127, 127, 8},
		{64, 33, 12},
		{65, 33, 3},
	}

	m := newTestMachine(PolicyClip)
	for _, tt := range tests {
		if err := m.Pset(tt.x, tt.y, tt.c); err != nil {
			t.Fatalf("Pset(%d, %d, %d): %v", tt.x, tt.y, tt.c, err)
		}
	}
	for _, tt := range tests {
		got, err := m.Pget(tt.x, tt.y)
		if err != nil {
			t.Fatalf("Pget(%d, %d): %v", tt.x, tt.y, err)
		}
		if got != tt.c {
			t.Errorf("Pget(%d, %d): expected %d, got %d", tt.x, tt.y, tt.c, got)
		}
	}
	checkSurfaceSync(t, m)
}

// TestMachine_PackedPair tests two adjacent pixels sharing one framebuffer byte
func TestMachine_PackedPair(t *testing.T) {
	m := newTestMachine(PolicyClip)

	m.Pset(0, 0, 0x3)
	m.Pset(1, 0, 0xA)

	if got := m.Peek(AddrScreen); got != 0xA3 {
		t.Errorf("screen byte 0: expected 0xA3, got 0x%02X", got)
	}
	if c, _ := m.Pget(0, 0); c != 0x3 {
		t.Errorf("Pget(0, 0): expected 3, got %d", c)
	}
	if c, _ := m.Pget(1, 0); c != 0xA {
		t.Errorf("Pget(1, 0): expected 10, got %d", c)
	}
}

// TestMachine_PalNotRetroactive tests that a remap affects only later draws
func TestMachine_PalNotRetroactive(t *testing.T) {
	m := newTestMachine(PolicyClip)

	m.Pset(1, 1, 5)
	if err := m.Pal(5, 12); err != nil {
		t.Fatalf("Pal: %v", err)
	}
	m.Pset(2, 1, 5)

	if c, _ := m.Pget(1, 1); c != 5 {
		t.Errorf("pixel drawn before pal: expected 5, got %d", c)
	}
	if c, _ := m.Pget(2, 1); c != 12 {
		t.Errorf("pixel drawn after pal: expected 12, got %d", c)
	}
	if got := m.Surface().Pixel(1, 1); got != ARGB(5) {
		t.Errorf("surface (1, 1): expected 0x%08X, got 0x%08X", ARGB(5), got)
	}
	if got := m.Surface().Pixel(2, 1); got != ARGB(12) {
		t.Errorf("surface (2, 1): expected 0x%08X, got 0x%08X", ARGB(12), got)
	}

	m.PalReset()
	m.Pset(3, 1, 5)
	if c, _ := m.Pget(3, 1); c != 5 {
		t.Errorf("pixel drawn after PalReset: expected 5, got %d", c)
	}
}

// TestMachine_Cls tests that cls fills both buffers with the resolved color
func TestMachine_Cls(t *testing.T) {
	m := newTestMachine(PolicyClip)
	m.Pset(10, 10, 4)
	m.Pal(3, 9)

	if err := m.Cls(3); err != nil {
		t.Fatalf("Cls: %v", err)
	}

	for addr := AddrScreen; addr < AddrScreen+ScreenSize; addr++ {
		if got := m.Peek(uint16(addr)); got != 0x99 {
			t.Fatalf("0x%04X: expected 0x99, got 0x%02X", addr, got)
		}
	}
	for i, p := range m.Surface().Pix {
		if p != ARGB(9) {
			t.Fatalf("surface word %d: expected 0x%08X, got 0x%08X", i, ARGB(9), p)
		}
	}
}

// TestMachine_Color tests that color writes the low nibble of the pen register
func TestMachine_Color(t *testing.T) {
	m := newTestMachine(PolicyClip)
	m.Poke(AddrPenColor, 0x50)

	if err := m.Color(11); err != nil {
		t.Fatalf("Color: %v", err)
	}
	if got := m.Peek(AddrPenColor); got != 0x5B {
		t.Errorf("pen byte: expected 0x5B, got 0x%02X", got)
	}
	if got := len(paintedPixels(m, 0)); got != 0 {
		t.Errorf("Color painted %d pixels", got)
	}
}

// TestMachine_LineAxisAligned tests horizontal and vertical lines in both directions
func TestMachine_LineAxisAligned(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           []Point
	}{
		{"horizontal", 0, 5, 10, 5, pointsH(0, 10, 5)},
		{"horizontal reversed", 10, 5, 0, 5, pointsH(0, 10, 5)},
		{"vertical", 3, 2, 3, 6, pointsV(3, 2, 6)},
		{"vertical reversed", 3, 6, 3, 2, pointsV(3, 2, 6)},
		{"single point", 7, 7, 7, 7, []Point{{7, 7}}},
		{"horizontal clipped", -10, 4, 200, 4, pointsH(0, ScreenWidth-1, 4)},
		{"vertical clipped", 9, -3, 9, 300, pointsV(9, 0, ScreenHeight-1)},
		{"horizontal off screen", 0, -1, 10, -1, nil},
		{"vertical off screen", 128, 0, 128, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(PolicyClip)
			if err := m.Line(tt.x0, tt.y0, tt.x1, tt.y1, 7); err != nil {
				t.Fatalf("Line: %v", err)
			}
			checkPainted(t, m, tt.want, 7)
		})
	}
}

// TestMachine_LineGeneral tests the error-accumulating stepper on sloped lines
func TestMachine_LineGeneral(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           []Point
	}{
		{"half slope", 0, 0, 4, 2, []Point{{0, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2}}},
		{"half slope reversed", 4, 2, 0, 0, []Point{{0, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2}}},
		{"negative slope", 0, 4, 4, 2, []Point{{0, 4}, {1, 3}, {2, 3}, {3, 2}, {4, 2}}},
		{"third slope", 0, 0, 3, 1, []Point{{0, 0}, {1, 0}, {2, 1}, {3, 1}}},
		{"diagonal", 2, 2, 5, 5, []Point{{2, 2}, {3, 3}, {4, 4}, {5, 5}}},
		// y advances at most one row per column
		{"steep", 0, 0, 1, 10, []Point{{0, 0}, {1, 1}}},
		{"right edge", 125, 0, 140, 15, []Point{{125, 0}, {126, 1}, {127, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(PolicyClip)
			if err := m.Line(tt.x0, tt.y0, tt.x1, tt.y1, 9); err != nil {
				t.Fatalf("Line: %v", err)
			}
			checkPainted(t, m, tt.want, 9)
			checkSurfaceSync(t, m)
		})
	}
}

// TestMachine_LineExtreme tests that lines with far off-screen endpoints
// finish promptly and only paint what falls on the screen
func TestMachine_LineExtreme(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           []Point
	}{
		{"far left", -400000000, 0, 5, 1, pointsH(0, 5, 1)},
		{"far right", 0, 0, 400000000, 1, pointsH(0, 127, 0)},
		{"beyond range", -400000000, 50, -300000000, 60, nil},
		{"leaves bottom", -30000, 0, 30000, 200000, nil},
		{"leaves top", -30000, 127, 30000, -200000, nil},
		{"diagonal", 0, 0, 100000, 100000, diagonal(128)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(PolicyClip)
			start := time.Now()
			if err := m.Line(tt.x0, tt.y0, tt.x1, tt.y1, 7); err != nil {
				t.Fatalf("Line: %v", err)
			}
			if d := time.Since(start); d > time.Second {
				t.Errorf("Line took %v", d)
			}
			checkPainted(t, m, tt.want, 7)
			if got := m.State().LastLineEnd; got != (Point{tt.x1, tt.y1}) {
				t.Errorf("last line end: expected (%d, %d), got %+v", tt.x1, tt.y1, got)
			}
		})
	}

	m := newTestMachine(PolicyStrict)
	if err := m.Line(-400000000, 0, 5, 1, 7); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("strict: expected ErrOutOfBounds, got %v", err)
	}
}

func diagonal(n int) []Point {
	out := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Point{i, i})
	}
	return out
}

// TestMachine_LastLineEnd tests that line records its second endpoint and LineTo continues from it
func TestMachine_LastLineEnd(t *testing.T) {
	m := newTestMachine(PolicyClip)

	m.Line(1, 2, 30, 40, 6)
	if got := m.State().LastLineEnd; got != (Point{30, 40}) {
		t.Errorf("after Line: expected (30, 40), got %+v", got)
	}

	// Reversed endpoints still record the caller's second point
	m.Line(50, 10, 20, 10, 6)
	if got := m.State().LastLineEnd; got != (Point{20, 10}) {
		t.Errorf("after reversed Line: expected (20, 10), got %+v", got)
	}

	m2 := newTestMachine(PolicyClip)
	m2.Line(0, 0, 5, 0, 6)
	if err := m2.LineTo(5, 3, 8); err != nil {
		t.Fatalf("LineTo: %v", err)
	}
	for y := 0; y <= 3; y++ {
		want := Color(8)
		if c, _ := m2.Pget(5, y); c != want {
			t.Errorf("LineTo pixel (5, %d): expected %d, got %d", y, want, c)
		}
	}
	if got := m2.State().LastLineEnd; got != (Point{5, 3}) {
		t.Errorf("after LineTo: expected (5, 3), got %+v", got)
	}
}

// TestMachine_Rect tests that rect paints the border only
func TestMachine_Rect(t *testing.T) {
	m := newTestMachine(PolicyClip)

	if err := m.Rect(2, 3, 8, 7, 10); err != nil {
		t.Fatalf("Rect: %v", err)
	}

	var want []Point
	for y := 3; y <= 7; y++ {
		for x := 2; x <= 8; x++ {
			if x == 2 || x == 8 || y == 3 || y == 7 {
				want = append(want, Point{x, y})
			}
		}
	}
	checkPainted(t, m, want, 10)

	if got := m.State().LastLineEnd; got != (Point{2, 3}) {
		t.Errorf("LastLineEnd after Rect: expected (2, 3), got %+v", got)
	}
}

// TestMachine_SprTransparency tests that zero cells leave the background intact
func TestMachine_SprTransparency(t *testing.T) {
	m := newTestMachine(PolicyClip)

	spr, _ := m.Memory().SpriteAt(1)
	spr.Set(1, 0, 7)
	spr.Set(7, 7, 2)

	m.Pset(10, 10, 3)
	if err := m.Spr(1, 10, 10); err != nil {
		t.Fatalf("Spr: %v", err)
	}

	if c, _ := m.Pget(10, 10); c != 3 {
		t.Errorf("transparent cell: expected background 3, got %d", c)
	}
	if c, _ := m.Pget(11, 10); c != 7 {
		t.Errorf("cell (1, 0): expected 7, got %d", c)
	}
	if c, _ := m.Pget(17, 17); c != 2 {
		t.Errorf("cell (7, 7): expected 2, got %d", c)
	}
	if got := len(paintedPixels(m, 0)); got != 3 {
		t.Errorf("painted pixels: expected 3, got %d", got)
	}
	checkSurfaceSync(t, m)
}

// TestMachine_SprPalette tests that sprite cells resolve through the draw palette
func TestMachine_SprPalette(t *testing.T) {
	m := newTestMachine(PolicyClip)

	spr, _ := m.Memory().SpriteAt(0)
	spr.Set(0, 0, 7)
	m.Pal(7, 14)
	m.Spr(0, 0, 0)

	if c, _ := m.Pget(0, 0); c != 14 {
		t.Errorf("remapped cell: expected 14, got %d", c)
	}
	if got := spr.Get(0, 0); got != 7 {
		t.Errorf("sprite sheet changed: expected 7, got %d", got)
	}
}

// TestMachine_SprClip tests partially off-screen blits and invalid indices under clip
func TestMachine_SprClip(t *testing.T) {
	m := newTestMachine(PolicyClip)

	spr, _ := m.Memory().SpriteAt(5)
	for y := 0; y < SpriteHeight; y++ {
		for x := 0; x < SpriteWidth; x++ {
			spr.Set(x, y, 4)
		}
	}

	if err := m.Spr(5, 124, -4); err != nil {
		t.Fatalf("Spr: %v", err)
	}
	if got := len(paintedPixels(m, 0)); got != 4*4 {
		t.Errorf("clipped blit: expected 16 pixels, got %d", got)
	}

	if err := m.Spr(SpriteCount, 0, 0); err != nil {
		t.Errorf("invalid index under clip: expected nil, got %v", err)
	}
	if err := m.Spr(-1, 0, 0); err != nil {
		t.Errorf("negative index under clip: expected nil, got %v", err)
	}
	if got := len(paintedPixels(m, 0)); got != 16 {
		t.Errorf("invalid index drew pixels: got %d painted", got)
	}
}

// TestMachine_PrintAdvance tests glyph placement and the fixed advance
func TestMachine_PrintAdvance(t *testing.T) {
	m := newTestMachine(PolicyClip)

	if err := m.Print("AB", 0, 0, 7); err != nil {
		t.Fatalf("Print: %v", err)
	}

	var want []Point
	for y := 0; y < 6; y++ {
		for _, x := range []int{0, 1, 2, 4, 5, 6} {
			want = append(want, Point{x, y})
		}
	}
	checkPainted(t, m, want, 7)
}

// TestMachine_PrintSpace tests that a space advances without painting
func TestMachine_PrintSpace(t *testing.T) {
	m := newTestMachine(PolicyClip)

	m.Print(" A", 10, 20, 8)

	if c, _ := m.Pget(10, 20); c != 0 {
		t.Errorf("space cell: expected 0, got %d", c)
	}
	if c, _ := m.Pget(14, 20); c != 8 {
		t.Errorf("first cell of A: expected 8, got %d", c)
	}
}

// TestMachine_PrintPalette tests that text color resolves through the draw palette
func TestMachine_PrintPalette(t *testing.T) {
	m := newTestMachine(PolicyClip)
	m.Pal(7, 1)

	m.Print("X", 0, 0, 7)
	if c, _ := m.Pget(0, 0); c != 1 {
		t.Errorf("text pixel: expected 1, got %d", c)
	}
}

// TestMachine_ClipPolicy tests that clip drops off-screen work and wraps colors
func TestMachine_ClipPolicy(t *testing.T) {
	m := newTestMachine(PolicyClip)

	if err := m.Pset(200, 5, 7); err != nil {
		t.Errorf("Pset off screen: expected nil, got %v", err)
	}
	if err := m.Pset(-1, -1, 7); err != nil {
		t.Errorf("Pset negative: expected nil, got %v", err)
	}
	if got := len(paintedPixels(m, 0)); got != 0 {
		t.Errorf("off-screen Pset painted %d pixels", got)
	}

	c, err := m.Pget(-5, 300)
	if err != nil || c != 0 {
		t.Errorf("Pget off screen: expected (0, nil), got (%d, %v)", c, err)
	}

	if err := m.Pset(0, 0, 0x1A); err != nil {
		t.Fatalf("Pset wide color: %v", err)
	}
	if c, _ := m.Pget(0, 0); c != 0xA {
		t.Errorf("wrapped color: expected 10, got %d", c)
	}
}

// TestMachine_StrictPolicy tests that strict rejects invalid calls without side effects
func TestMachine_StrictPolicy(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		call    func(m *Machine) error
		wantErr error
	}{
		{"pset off screen", "pset", func(m *Machine) error { return m.Pset(-1, 0, 7) }, ErrOutOfBounds},
		{"pset bad color", "pset", func(m *Machine) error { return m.Pset(0, 0, 16) }, ErrInvalidColor},
		{"pget off screen", "pget", func(m *Machine) error { _, err := m.Pget(128, 0); return err }, ErrOutOfBounds},
		{"line end off screen", "line", func(m *Machine) error { return m.Line(0, 0, 200, 0, 7) }, ErrOutOfBounds},
		{"line start off screen", "line", func(m *Machine) error { return m.Line(0, -1, 10, 10, 7) }, ErrOutOfBounds},
		{"rect off screen", "rect", func(m *Machine) error { return m.Rect(0, 0, 130, 10, 7) }, ErrOutOfBounds},
		{"spr bad index", "spr", func(m *Machine) error { return m.Spr(SpriteCount, 0, 0) }, ErrOutOfBounds},
		{"spr partly off screen", "spr", func(m *Machine) error { return m.Spr(0, 121, 0) }, ErrOutOfBounds},
		{"print too long", "print", func(m *Machine) error { return m.Print("0123456789012345678901234567890123", 0, 0, 7) }, ErrOutOfBounds},
		{"print bad color", "print", func(m *Machine) error { return m.Print("A", 0, 0, 99) }, ErrInvalidColor},
		{"cls bad color", "cls", func(m *Machine) error { return m.Cls(16) }, ErrInvalidColor},
		{"color bad color", "color", func(m *Machine) error { return m.Color(255) }, ErrInvalidColor},
		{"pal bad target", "pal", func(m *Machine) error { return m.Pal(1, 16) }, ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(PolicyStrict)
			m.Line(3, 4, 5, 4, 2)
			before := *m.Memory()
			state := m.State()

			err := tt.call(m)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			var de *DrawError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DrawError, got %T", err)
			}
			if de.Op != tt.op {
				t.Errorf("Op: expected %q, got %q", tt.op, de.Op)
			}

			if *m.Memory() != before {
				t.Error("memory changed by rejected call")
			}
			if m.State() != state {
				t.Errorf("state changed: expected %+v, got %+v", state, m.State())
			}
			checkSurfaceSync(t, m)
		})
	}
}

// TestMachine_StrictAccepts tests that strict lets in-bounds calls through
func TestMachine_StrictAccepts(t *testing.T) {
	m := newTestMachine(PolicyStrict)

	if err := m.Spr(0, 120, 120); err != nil {
		t.Errorf("Spr at last fitting corner: %v", err)
	}
	if err := m.Print("ABCD", 112, 122, 7); err != nil {
		t.Errorf("Print ending at the corner: %v", err)
	}
	if err := m.Line(0, 0, 127, 127, 7); err != nil {
		t.Errorf("Line corner to corner: %v", err)
	}
	if err := m.Print("", 500, 500, 7); err != nil {
		t.Errorf("Print empty string: %v", err)
	}
}

// TestMachine_SetPolicy tests switching policy between calls
func TestMachine_SetPolicy(t *testing.T) {
	m := newTestMachine(PolicyClip)

	if err := m.Pset(-1, 0, 1); err != nil {
		t.Fatalf("clip Pset: %v", err)
	}
	m.SetPolicy(PolicyStrict)
	if err := m.Pset(-1, 0, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("strict Pset: expected ErrOutOfBounds, got %v", err)
	}
}

// TestMachine_PokeScreen tests that a screen poke updates both surface pixels
func TestMachine_PokeScreen(t *testing.T) {
	m := newTestMachine(PolicyClip)

	m.Poke(AddrScreen, 0x8C)
	m.Poke(AddrScreen+ScreenSize-1, 0x21)

	if c, _ := m.Pget(0, 0); c != 0xC {
		t.Errorf("Pget(0, 0): expected 12, got %d", c)
	}
	if c, _ := m.Pget(1, 0); c != 0x8 {
		t.Errorf("Pget(1, 0): expected 8, got %d", c)
	}
	if c, _ := m.Pget(127, 127); c != 0x2 {
		t.Errorf("Pget(127, 127): expected 2, got %d", c)
	}
	checkSurfaceSync(t, m)

	m.Poke(AddrSpriteSheet, 0x11)
	if got := m.Peek(AddrSpriteSheet); got != 0x11 {
		t.Errorf("Peek sprite sheet: expected 0x11, got 0x%02X", got)
	}
	checkSurfaceSync(t, m)
}

// TestMachine_Refresh tests rebuilding the surface after raw memory writes
func TestMachine_Refresh(t *testing.T) {
	m := newTestMachine(PolicyClip)

	m.Memory().SetScreenPixel(40, 50, 11)
	if m.Surface().Pixel(40, 50) == ARGB(11) {
		t.Fatal("raw memory write should not touch the surface")
	}

	m.Refresh()
	checkSurfaceSync(t, m)
}

func pointsH(x0, x1, y int) []Point {
	var out []Point
	for x := x0; x <= x1; x++ {
		out = append(out, Point{x, y})
	}
	return out
}

func pointsV(x, y0, y1 int) []Point {
	var out []Point
	for y := y0; y <= y1; y++ {
		out = append(out, Point{x, y})
	}
	return out
}

// checkPainted fails unless exactly want is painted with c on a color 0 screen.
func checkPainted(t *testing.T, m *Machine, want []Point, c Color) {
	t.Helper()
	got := paintedPixels(m, 0)
	for _, p := range want {
		if got[p] != c {
			t.Errorf("pixel (%d, %d): expected %d, got %d", p.X, p.Y, c, got[p])
		}
		delete(got, p)
	}
	for p, v := range got {
		t.Errorf("unexpected pixel (%d, %d) = %d", p.X, p.Y, v)
	}
}
