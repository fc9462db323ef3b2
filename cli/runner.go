//go:build !libretro

// Package cli provides a command-line runner for the machine.
// It runs a cart in a window without the full frontend UI.
package cli

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/retro8/emu"
)

// Runner presents an emulator's surface with Ebiten. The emulator runs one
// frame per tick and the surface is only read after the frame returns.
type Runner struct {
	emulator  *emu.Emulator
	offscreen *ebiten.Image           // Native resolution copy of the surface
	drawOpts  ebiten.DrawImageOptions // Pre-allocated draw options to avoid per-frame allocation
}

// NewRunner creates a new Runner wrapping the given emulator.
func NewRunner(e *emu.Emulator) *Runner {
	return &Runner{emulator: e}
}

// Close releases the emulator's program.
func (r *Runner) Close() {
	r.emulator.Close()
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if !ebiten.IsFocused() {
		return nil
	}
	r.emulator.RunFrame()
	return nil
}

// Draw implements ebiten.Game. The surface is scaled to fit the window,
// preserving aspect ratio, and centered.
func (r *Runner) Draw(screen *ebiten.Image) {
	if r.offscreen == nil {
		r.offscreen = ebiten.NewImage(emu.ScreenWidth, emu.ScreenHeight)
	}
	r.offscreen.WritePixels(r.emulator.GetFramebuffer())

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW := float64(emu.ScreenWidth)
	nativeH := float64(emu.ScreenHeight)

	scale := float64(screenW) / nativeW
	if s := float64(screenH) / nativeH; s < scale {
		scale = s
	}

	offsetX := (float64(screenW) - nativeW*scale) / 2
	offsetY := (float64(screenH) - nativeH*scale) / 2

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Scale(scale, scale)
	r.drawOpts.GeoM.Translate(offsetX, offsetY)
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, &r.drawOpts)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	// Return window size so we control scaling in Draw()
	return outsideWidth, outsideHeight
}
