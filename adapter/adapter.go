package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/retro8/emu"
	"github.com/user-none/retro8/script"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the retro8 machine.
type Factory struct{}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "retro8",
		ConsoleName:     "retro8 Fantasy Console",
		Extensions:      []string{".lua"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.ScreenHeight,
		AspectRatio:     1.0,
		SampleRate:      48000,
		Players:         1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         "strict_bounds",
				Label:       "Strict Bounds",
				Description: "Fail drawing calls that leave the screen instead of clipping them",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryVideo,
			},
		},
		DataDirName:   "retro8",
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: 0,
	}
}

// CreateEmulator creates an emulator running the Lua cart in rom.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	e, err := emu.NewEmulator(region, emu.Options{})
	if err != nil {
		return nil, err
	}
	cart, err := script.Load(rom, "cart", e.Machine())
	if err != nil {
		return nil, err
	}
	e.Load(cart, cart.FPS())
	return e, nil
}

// DetectRegion reports the default region; carts carry no region.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emu.DefaultRegion(), false
}
