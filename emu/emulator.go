package emu

import (
	"fmt"
	"log/slog"

	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

const (
	Name    = "retro8"
	Version = "0.1.0"
)

// Program is the script side of a frame. The interpreter lives outside the
// core; it only issues primitive calls on the Machine it was bound to.
type Program interface {
	// Frame runs one frame of the program.
	Frame() error
	// Close releases the interpreter.
	Close() error
}

// Emulator adapts a Machine to the eblitui frontend interfaces.
type Emulator struct {
	machine *Machine
	program Program

	region     Region
	fps        int
	frameCount uint64
	lastErr    error

	// Pre-allocated RGBA copy of the surface handed to the frontend
	rgba []byte
}

// NewEmulator creates an emulator with an idle machine. Load a Program to
// give it something to run.
func NewEmulator(region Region, opts Options) (*Emulator, error) {
	if opts.Policy != PolicyClip && opts.Policy != PolicyStrict {
		return nil, fmt.Errorf("invalid bounds policy %d", opts.Policy)
	}
	return &Emulator{
		machine: NewMachine(opts),
		region:  region,
		fps:     FPS30,
		rgba:    make([]byte, ScreenWidth*ScreenHeight*4),
	}, nil
}

// Machine returns the rasterizer the program draws on.
func (e *Emulator) Machine() *Machine {
	return e.machine
}

// Load installs p, closing any previous program, and sets the frame rate.
func (e *Emulator) Load(p Program, fps int) {
	if e.program != nil {
		if err := e.program.Close(); err != nil {
			Logger().Warn("closing program failed", slog.Any("err", err))
		}
	}
	e.program = p
	if fps != FPS60 {
		fps = FPS30
	}
	e.fps = fps
	e.frameCount = 0
	e.lastErr = nil
	Logger().Info("program loaded", slog.Int("fps", fps))
}

// LastError returns the most recent error returned by a frame.
func (e *Emulator) LastError() error {
	return e.lastErr
}

// FrameCount returns the number of frames run since the program was loaded.
func (e *Emulator) FrameCount() uint64 {
	return e.frameCount
}

// RunFrame runs one frame of the loaded program. Frame errors are logged
// and kept; the next frame still runs.
func (e *Emulator) RunFrame() {
	if e.program == nil {
		return
	}
	if err := e.program.Frame(); err != nil {
		e.lastErr = err
		Logger().Warn("frame failed", slog.Uint64("frame", e.frameCount), slog.Any("err", err))
	}
	e.frameCount++
}

// GetFramebuffer returns the surface as RGBA bytes.
func (e *Emulator) GetFramebuffer() []byte {
	n := e.machine.surface.CopyRGBA(e.rgba)
	return e.rgba[:n]
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return ScreenWidth * 4
}

// GetActiveHeight returns the display height.
func (e *Emulator) GetActiveHeight() int {
	return ScreenHeight
}

// GetAudioSamples returns nothing: the core has no audio.
func (e *Emulator) GetAudioSamples() []int16 {
	return nil
}

// SetInput is a no-op. Input belongs to the host and the interpreter.
func (e *Emulator) SetInput(player int, buttons uint32) {}

// GetRegion returns the emulator's region setting
func (e *Emulator) GetRegion() Region {
	return e.region
}

// SetRegion updates the emulator's region setting
func (e *Emulator) SetRegion(region Region) {
	e.region = region
}

// GetTiming returns the program's frame rate. Scanlines is the screen height.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.fps,
		Scanlines: ScreenHeight,
	}
}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case "strict_bounds":
		if value == "true" {
			e.machine.SetPolicy(PolicyStrict)
		} else {
			e.machine.SetPolicy(PolicyClip)
		}
	}
}

// Close releases the loaded program.
func (e *Emulator) Close() {
	if e.program == nil {
		return
	}
	if err := e.program.Close(); err != nil {
		Logger().Warn("closing program failed", slog.Any("err", err))
	}
	e.program = nil
}

// =============================================================================
// MemoryInspector interface
// =============================================================================

// ReadMemory reads from a flat address into buf and returns the number of
// bytes read. Flat addresses map 1:1 onto the 32KB address space.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		if cur >= MemorySize {
			return count
		}
		buf[i] = e.machine.mem.data[cur]
		count++
	}
	return count
}

// =============================================================================
// MemoryMapper interface
// =============================================================================

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: MemorySize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		out := make([]byte, MemorySize)
		copy(out, e.machine.mem.data[:])
		return out
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region and brings the
// surface back in line with the framebuffer.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	switch regionType {
	case emucore.MemorySystemRAM:
		copy(e.machine.mem.data[:], data)
		e.machine.Refresh()
	}
}
