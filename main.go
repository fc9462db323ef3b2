//go:build !libretro

package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/afero"

	"github.com/user-none/retro8/cartloader"
	"github.com/user-none/retro8/cli"
	"github.com/user-none/retro8/emu"
	"github.com/user-none/retro8/font"
	"github.com/user-none/retro8/script"
)

func main() {
	cartPath := flag.String("cart", "", "path to Lua cart (.lua, or an archive holding one)")
	fontPath := flag.String("font", "", "path to a 16x16 cell PNG/BMP font sheet (built-in font if empty)")
	policyFlag := flag.String("bounds", "clip", "bounds policy: clip or strict")
	scale := flag.Int("scale", 4, "window scale")
	debug := flag.Bool("debug", false, "log rejected draw calls and frame errors")
	flag.Parse()

	if *cartPath == "" {
		fmt.Println("Usage: retro8 -cart <file.lua> [-font sheet.png] [-bounds clip|strict] [-scale n] [-debug]")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	emu.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	policy, err := emu.ParseBoundsPolicy(*policyFlag)
	if err != nil {
		log.Fatalf("Invalid bounds policy: %v", err)
	}

	opts := emu.Options{Policy: policy}
	if *fontPath != "" {
		sheet, err := font.LoadSheet(afero.NewOsFs(), *fontPath)
		if err != nil {
			log.Fatalf("Failed to load font: %v", err)
		}
		opts.Font = sheet
	}

	src, cartName, err := cartloader.Load(afero.NewOsFs(), *cartPath)
	if err != nil {
		log.Fatalf("Failed to read cart: %v", err)
	}

	e, err := emu.NewEmulator(emu.DefaultRegion(), opts)
	if err != nil {
		log.Fatalf("Failed to create emulator: %v", err)
	}
	cart, err := script.Load(src, cartName, e.Machine())
	if err != nil {
		log.Fatalf("Failed to load cart: %v", err)
	}
	e.Load(cart, cart.FPS())

	runner := cli.NewRunner(e)
	defer runner.Close()

	ebiten.SetWindowSize(emu.ScreenWidth**scale, emu.ScreenHeight**scale)
	ebiten.SetWindowTitle("retro8 - " + cartName)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cart.FPS())

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}
