package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/user-none/retro8/emu"
)

// Callbacks a cart may define.
const (
	fnInit     = "_init"
	fnUpdate   = "_update"
	fnUpdate60 = "_update60"
	fnDraw     = "_draw"
)

// Cart is a Lua program bound to a Machine. It implements emu.Program.
type Cart struct {
	L      *lua.LState
	name   string
	inited bool
}

var _ emu.Program = (*Cart)(nil)

// Load runs the top level of src with the primitives bound to m.
func Load(src []byte, name string, m *emu.Machine) (*Cart, error) {
	L := lua.NewState()
	Bind(L, m)
	if err := L.DoString(string(src)); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return &Cart{L: L, name: name}, nil
}

// FPS returns 60 when the cart defines _update60, otherwise 30.
func (c *Cart) FPS() int {
	if c.defines(fnUpdate60) {
		return emu.FPS60
	}
	return emu.FPS30
}

func (c *Cart) defines(name string) bool {
	return c.L.GetGlobal(name).Type() == lua.LTFunction
}

func (c *Cart) call(name string) error {
	fn := c.L.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return nil
	}
	if err := c.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		return fmt.Errorf("%s %s: %w", c.name, name, err)
	}
	return nil
}

// Frame runs _init on the first call, then the update callback and _draw.
func (c *Cart) Frame() error {
	if !c.inited {
		c.inited = true
		if err := c.call(fnInit); err != nil {
			return err
		}
	}

	update := fnUpdate
	if c.defines(fnUpdate60) {
		update = fnUpdate60
	}
	if err := c.call(update); err != nil {
		return err
	}
	return c.call(fnDraw)
}

// Close releases the Lua state.
func (c *Cart) Close() error {
	c.L.Close()
	return nil
}
