// Package script exposes the drawing primitives to Lua programs.
//
// The bindings follow the fantasy-console calling conventions: numbers are
// floored to integers, a missing color argument means the pen color, and
// line with two coordinates continues from the previous line's end.
package script

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/user-none/retro8/emu"
)

type binding struct {
	m *emu.Machine
}

// Bind registers the primitives as globals of L, drawing on m.
func Bind(L *lua.LState, m *emu.Machine) {
	b := &binding{m: m}
	funcs := map[string]lua.LGFunction{
		"cls":   b.cls,
		"color": b.color,
		"pset":  b.pset,
		"pget":  b.pget,
		"line":  b.line,
		"rect":  b.rect,
		"spr":   b.spr,
		"print": b.print,
		"pal":   b.pal,
		"peek":  b.peek,
		"poke":  b.poke,
	}
	for name, fn := range funcs {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

// intArg floors argument n. Values beyond the int32 range saturate and NaN
// reads as 0, so the conversion to int is always defined.
func intArg(L *lua.LState, n int) int {
	f := math.Floor(float64(L.CheckNumber(n)))
	switch {
	case math.IsNaN(f):
		return 0
	case f < math.MinInt32:
		return math.MinInt32
	case f > math.MaxInt32:
		return math.MaxInt32
	}
	return int(f)
}

func optIntArg(L *lua.LState, n int, def int) int {
	if L.Get(n) == lua.LNil {
		return def
	}
	return intArg(L, n)
}

// toColor narrows v to a logical color. Under the strict policy a value
// outside 0..15 raises an invalid color error naming op; otherwise it wraps
// to its low nibble.
func (b *binding) toColor(L *lua.LState, op string, v int) emu.Color {
	if v >= 0 && v < emu.PaletteEntries {
		return emu.Color(v)
	}
	if b.m.Policy() == emu.PolicyStrict {
		L.RaiseError("%v", &emu.DrawError{Op: op, X: v, Err: emu.ErrInvalidColor})
	}
	return emu.Color(v & 0x0F)
}

// colorArg returns argument n as a color, or the pen color when absent.
func (b *binding) colorArg(L *lua.LState, op string, n int) emu.Color {
	if L.Get(n) == lua.LNil {
		return b.m.Memory().PenColor().Low()
	}
	return b.toColor(L, op, intArg(L, n))
}

// addrArg returns argument n as an address. Addresses outside memory are
// not wrapped; ok is false and the access is treated as open bus.
func addrArg(L *lua.LState, n int) (addr uint16, ok bool) {
	v := intArg(L, n)
	if v < 0 || v >= emu.MemorySize {
		return 0, false
	}
	return uint16(v), true
}

func check(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%v", err)
	}
}

func (b *binding) cls(L *lua.LState) int {
	check(L, b.m.Cls(b.toColor(L, "cls", optIntArg(L, 1, 0))))
	return 0
}

func (b *binding) color(L *lua.LState) int {
	check(L, b.m.Color(b.toColor(L, "color", optIntArg(L, 1, 6))))
	return 0
}

func (b *binding) pset(L *lua.LState) int {
	check(L, b.m.Pset(intArg(L, 1), intArg(L, 2), b.colorArg(L, "pset", 3)))
	return 0
}

func (b *binding) pget(L *lua.LState) int {
	c, err := b.m.Pget(intArg(L, 1), intArg(L, 2))
	check(L, err)
	L.Push(lua.LNumber(c))
	return 1
}

func (b *binding) line(L *lua.LState) int {
	if L.GetTop() <= 3 {
		check(L, b.m.LineTo(intArg(L, 1), intArg(L, 2), b.colorArg(L, "line", 3)))
		return 0
	}
	check(L, b.m.Line(intArg(L, 1), intArg(L, 2), intArg(L, 3), intArg(L, 4), b.colorArg(L, "line", 5)))
	return 0
}

func (b *binding) rect(L *lua.LState) int {
	check(L, b.m.Rect(intArg(L, 1), intArg(L, 2), intArg(L, 3), intArg(L, 4), b.colorArg(L, "rect", 5)))
	return 0
}

func (b *binding) spr(L *lua.LState) int {
	check(L, b.m.Spr(intArg(L, 1), optIntArg(L, 2, 0), optIntArg(L, 3, 0)))
	return 0
}

func (b *binding) print(L *lua.LState) int {
	text := L.ToStringMeta(L.Get(1)).String()
	check(L, b.m.Print(text, optIntArg(L, 2, 0), optIntArg(L, 3, 0), b.colorArg(L, "print", 4)))
	return 0
}

func (b *binding) pal(L *lua.LState) int {
	if L.GetTop() == 0 {
		b.m.PalReset()
		return 0
	}
	c0 := b.toColor(L, "pal", intArg(L, 1))
	c1 := b.toColor(L, "pal", intArg(L, 2))
	check(L, b.m.Pal(c0, c1))
	return 0
}

func (b *binding) peek(L *lua.LState) int {
	var v uint8
	if addr, ok := addrArg(L, 1); ok {
		v = b.m.Peek(addr)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (b *binding) poke(L *lua.LState) int {
	addr, ok := addrArg(L, 1)
	v := intArg(L, 2)
	if ok {
		b.m.Poke(addr, uint8(v&0xFF))
	}
	return 0
}
