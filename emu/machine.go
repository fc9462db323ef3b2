package emu

import (
	"log/slog"
	"math"

	"github.com/user-none/retro8/font"
)

// Line coordinates are clamped to the signed 16-bit range carts assume,
// which bounds the work of a single line.
const (
	CoordMin = math.MinInt16
	CoordMax = math.MaxInt16
)

func clampCoord(v int) int {
	return min(max(v, CoordMin), CoordMax)
}

// State holds registers that persist between primitive calls.
type State struct {
	LastLineEnd Point
}

// Options configures a Machine.
type Options struct {
	Policy BoundsPolicy
	Font   font.Provider // nil selects font.Default()
}

// Machine is the rasterizer. Every primitive resolves its color through the
// draw palette and writes the packed framebuffer and the surface together.
type Machine struct {
	state   State
	mem     *Memory
	surface *Surface
	font    font.Provider
	policy  BoundsPolicy
}

// NewMachine allocates memory and the surface. The draw palette starts as
// identity and the screen as color 0.
func NewMachine(opts Options) *Machine {
	f := opts.Font
	if f == nil {
		f = font.Default()
	}
	return &Machine{
		mem:     NewMemory(),
		surface: NewSurface(ScreenWidth, ScreenHeight),
		font:    f,
		policy:  opts.Policy,
	}
}

// Memory returns the address space. Screen writes made directly through it
// bypass the surface; call Refresh afterwards.
func (m *Machine) Memory() *Memory { return m.mem }

// Surface returns the presentation buffer.
func (m *Machine) Surface() *Surface { return m.surface }

// State returns a copy of the draw state.
func (m *Machine) State() State { return m.state }

// Policy returns the active bounds policy.
func (m *Machine) Policy() BoundsPolicy { return m.policy }

// SetPolicy changes the bounds policy for subsequent calls.
func (m *Machine) SetPolicy(p BoundsPolicy) { m.policy = p }

// SetFont replaces the glyph provider used by Print.
func (m *Machine) SetFont(p font.Provider) {
	if p == nil {
		p = font.Default()
	}
	m.font = p
}

func (m *Machine) reject(op string, x, y int, err error) error {
	Logger().Debug("draw call rejected",
		slog.String("op", op), slog.Int("x", x), slog.Int("y", y), slog.Any("err", err))
	return &DrawError{Op: op, X: x, Y: y, Err: err}
}

// checkColor wraps c to 4 bits under PolicyClip and rejects it under PolicyStrict.
func (m *Machine) checkColor(op string, c Color) (Color, error) {
	if c <= colorMask {
		return c, nil
	}
	if m.policy == PolicyStrict {
		return 0, m.reject(op, int(c), 0, ErrInvalidColor)
	}
	return c & colorMask, nil
}

// checkPoint rejects off-screen coordinates under PolicyStrict only.
func (m *Machine) checkPoint(op string, x, y int) error {
	if m.policy == PolicyStrict && !InScreen(x, y) {
		return m.reject(op, x, y, ErrOutOfBounds)
	}
	return nil
}

// resolve maps a logical color through the draw palette as it is right now.
func (m *Machine) resolve(c Color) Color {
	return m.mem.drawPalette().Get(c)
}

// plot is the single write path: one physical color into both buffers.
func (m *Machine) plot(x, y int, c Color) {
	if !InScreen(x, y) {
		return
	}
	m.mem.SetScreenPixel(x, y, c)
	m.surface.Set(x, y, ARGB(c))
}

func (m *Machine) pset(x, y int, c Color) {
	m.plot(x, y, m.resolve(c))
}

// Color sets the primary pen color.
func (m *Machine) Color(c Color) error {
	c, err := m.checkColor("color", c)
	if err != nil {
		return err
	}
	m.mem.PenColor().SetLow(c)
	return nil
}

// Cls fills the screen with c.
func (m *Machine) Cls(c Color) error {
	c, err := m.checkColor("cls", c)
	if err != nil {
		return err
	}
	r := m.resolve(c)
	m.mem.FillScreen(r)
	m.surface.Fill(ARGB(r))
	return nil
}

// Pset draws one pixel.
func (m *Machine) Pset(x, y int, c Color) error {
	c, err := m.checkColor("pset", c)
	if err != nil {
		return err
	}
	if err := m.checkPoint("pset", x, y); err != nil {
		return err
	}
	m.pset(x, y, c)
	return nil
}

// Pget returns the physical color stored at (x, y). Off-screen reads return
// 0 under PolicyClip.
func (m *Machine) Pget(x, y int) (Color, error) {
	if !InScreen(x, y) {
		if m.policy == PolicyStrict {
			return 0, m.reject("pget", x, y, ErrOutOfBounds)
		}
		return 0, nil
	}
	return m.mem.ScreenPixel(x, y), nil
}

// Line draws from (x0, y0) to (x1, y1) inclusive and records (x1, y1) as the
// last line end.
func (m *Machine) Line(x0, y0, x1, y1 int, c Color) error {
	c, err := m.checkColor("line", c)
	if err != nil {
		return err
	}
	if err := m.checkPoint("line", x0, y0); err != nil {
		return err
	}
	if err := m.checkPoint("line", x1, y1); err != nil {
		return err
	}
	m.line(x0, y0, x1, y1, c)
	return nil
}

// LineTo draws from the last line end to (x1, y1).
func (m *Machine) LineTo(x1, y1 int, c Color) error {
	from := m.state.LastLineEnd
	return m.Line(from.X, from.Y, x1, y1, c)
}

func (m *Machine) line(x0, y0, x1, y1 int, c Color) {
	m.state.LastLineEnd = Point{X: x1, Y: y1}
	x0, y0 = clampCoord(x0), clampCoord(y0)
	x1, y1 = clampCoord(x1), clampCoord(y1)

	switch {
	case y0 == y1:
		if y0 < 0 || y0 >= ScreenHeight {
			return
		}
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		for x := max(x0, 0); x <= min(x1, ScreenWidth-1); x++ {
			m.pset(x, y0, c)
		}

	case x0 == x1:
		if x0 < 0 || x0 >= ScreenWidth {
			return
		}
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		for y := max(y0, 0); y <= min(y1, ScreenHeight-1); y++ {
			m.pset(x0, y, c)
		}

	default:
		// Stepped along x with float32 error accumulation: y moves by at
		// most one per column, once the error reaches one half.
		if x0 > x1 {
			x0, y0, x1, y1 = x1, y1, x0, y0
		}
		dx := float32(x1) - float32(x0)
		dy := float32(y1 - y0)
		derror := float32(math.Abs(float64(dy / dx)))
		step := 1
		if dy < 0 {
			step = -1
		}

		var e float32
		y := y0
		for x := x0; x <= x1 && x < ScreenWidth; x++ {
			// y is monotonic, so nothing after it leaves the screen can land.
			if (step > 0 && y >= ScreenHeight) || (step < 0 && y < 0) {
				break
			}
			m.pset(x, y, c)
			e += derror
			if e >= 0.5 {
				y += step
				e -= 1.0
			}
		}
	}
}

// Rect draws the border of the box spanned by the two corners as four lines:
// top, right, bottom, left. The last line end ends up at (x0, y0).
func (m *Machine) Rect(x0, y0, x1, y1 int, c Color) error {
	c, err := m.checkColor("rect", c)
	if err != nil {
		return err
	}
	if err := m.checkPoint("rect", x0, y0); err != nil {
		return err
	}
	if err := m.checkPoint("rect", x1, y1); err != nil {
		return err
	}
	m.line(x0, y0, x1, y0, c)
	m.line(x1, y0, x1, y1, c)
	m.line(x0, y1, x1, y1, c)
	m.line(x0, y1, x0, y0, c)
	return nil
}

// Spr blits sprite index with its top-left corner at (x, y). Cells holding
// 0 are transparent; the rest are logical colors.
func (m *Machine) Spr(index, x, y int) error {
	sprite, err := m.mem.SpriteAt(index)
	if err != nil {
		if m.policy == PolicyStrict {
			return m.reject("spr", index, 0, ErrOutOfBounds)
		}
		return nil
	}
	if err := m.checkPoint("spr", x, y); err != nil {
		return err
	}
	if err := m.checkPoint("spr", x+SpriteWidth-1, y+SpriteHeight-1); err != nil {
		return err
	}

	for ty := 0; ty < SpriteHeight; ty++ {
		for tx := 0; tx < SpriteWidth; tx++ {
			if c := sprite.Get(tx, ty); c != 0 {
				m.pset(x+tx, y+ty, c)
			}
		}
	}
	return nil
}

// Print draws text with its first character's top-left at (x, y). Glyph
// cells are a stencil: every painted cell takes color c.
func (m *Machine) Print(text string, x, y int, c Color) error {
	return m.PrintCodes(font.Encode(text), x, y, c)
}

// PrintCodes is Print for text already in 8-bit character codes.
func (m *Machine) PrintCodes(codes []byte, x, y int, c Color) error {
	c, err := m.checkColor("print", c)
	if err != nil {
		return err
	}
	if len(codes) > 0 {
		if err := m.checkPoint("print", x, y); err != nil {
			return err
		}
		right := x + (len(codes)-1)*GlyphAdvance + font.GlyphWidth - 1
		if err := m.checkPoint("print", right, y+font.GlyphHeight-1); err != nil {
			return err
		}
	}

	for _, ch := range codes {
		if g := m.font.Glyph(ch); g != nil {
			for ty := 0; ty < font.GlyphHeight; ty++ {
				for tx := 0; tx < font.GlyphWidth; tx++ {
					if g.Get(tx, ty) != 0 {
						m.pset(x+tx, y+ty, c)
					}
				}
			}
		}
		x += GlyphAdvance
	}
	return nil
}

// Pal remaps logical color c0 to c1 for future draws.
func (m *Machine) Pal(c0, c1 Color) error {
	c0, err := m.checkColor("pal", c0)
	if err != nil {
		return err
	}
	c1, err = m.checkColor("pal", c1)
	if err != nil {
		return err
	}
	m.mem.drawPalette().Set(c0, c1)
	return nil
}

// PalReset restores the identity draw palette.
func (m *Machine) PalReset() {
	m.mem.drawPalette().Reset()
}

// Peek reads a byte of the address space.
func (m *Machine) Peek(addr uint16) uint8 {
	return m.mem.Get(addr)
}

// Poke writes a byte of the address space. A write into the screen region
// updates both pixels it holds on the surface.
func (m *Machine) Poke(addr uint16, val uint8) {
	m.mem.Set(addr, val)
	if !inScreenRegion(addr) {
		return
	}
	off := int(addr) - AddrScreen
	x := (off % BytesPerScreenRow) * 2
	y := off / BytesPerScreenRow
	m.surface.Set(x, y, ARGB(Color(val&0x0F)))
	m.surface.Set(x+1, y, ARGB(Color(val>>4)))
}

// Refresh rebuilds the surface from the packed framebuffer.
func (m *Machine) Refresh() {
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			m.surface.Set(x, y, ARGB(m.mem.ScreenPixel(x, y)))
		}
	}
}
