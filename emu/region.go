package emu

import (
	emucore "github.com/user-none/eblitui/api"
)

// Region is an alias for emucore.Region. The machine has no video timing of
// its own, so the region is only carried for the frontend.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// Frame rates a program can request.
const (
	FPS30 = 30
	FPS60 = 60
)

// DefaultRegion returns the region reported to frontends.
func DefaultRegion() Region {
	return RegionNTSC
}
