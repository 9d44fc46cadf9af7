// Package lcd decodes the LCDC and STAT registers into the fields the
// PPU's scanline renderer and mode state machine read directly,
// rather than re-testing individual bits on every pixel.
package lcd

import "github.com/hhowser/gbcore/internal/bits"

// Mode is one of the PPU's four states, numbered to match the value
// STAT reports in its low two bits.
type Mode uint8

const (
	HBlank Mode = iota
	VBlank
	OAMScan
	Drawing
)

// Control decodes LCDC (0xFF40).
type Control struct {
	Enabled                  bool
	WindowTileMapAddress     uint16
	WindowEnabled            bool
	TileDataAddress          uint16
	BackgroundTileMapAddress uint16
	SpriteSize               uint8 // 8 or 16
	SpriteEnabled            bool
	BackgroundEnabled        bool
}

func NewControl() *Control {
	return &Control{
		WindowTileMapAddress:     0x9800,
		BackgroundTileMapAddress: 0x9800,
		TileDataAddress:          0x8800,
		SpriteSize:               8,
	}
}

func (c *Control) Write(value uint8) {
	c.Enabled = bits.Test(value, 7)
	if bits.Test(value, 6) {
		c.WindowTileMapAddress = 0x9C00
	} else {
		c.WindowTileMapAddress = 0x9800
	}
	c.WindowEnabled = bits.Test(value, 5)
	if bits.Test(value, 4) {
		c.TileDataAddress = 0x8000
	} else {
		c.TileDataAddress = 0x8800
	}
	if bits.Test(value, 3) {
		c.BackgroundTileMapAddress = 0x9C00
	} else {
		c.BackgroundTileMapAddress = 0x9800
	}
	c.SpriteSize = 8 + uint8(bits.Val(value, 2))*8
	c.SpriteEnabled = bits.Test(value, 1)
	c.BackgroundEnabled = bits.Test(value, 0)
}

func (c *Control) Read() uint8 {
	var v uint8
	v = bits.SetIf(v, 7, c.Enabled)
	v = bits.SetIf(v, 6, c.WindowTileMapAddress == 0x9C00)
	v = bits.SetIf(v, 5, c.WindowEnabled)
	v = bits.SetIf(v, 4, c.TileDataAddress == 0x8000)
	v = bits.SetIf(v, 3, c.BackgroundTileMapAddress == 0x9C00)
	v = bits.SetIf(v, 2, c.SpriteSize == 16)
	v = bits.SetIf(v, 1, c.SpriteEnabled)
	v = bits.SetIf(v, 0, c.BackgroundEnabled)
	return v
}

func (c *Control) UsingSignedTileData() bool {
	return c.TileDataAddress == 0x8800
}

// Status decodes STAT (0xFF41). Mode and Coincidence are read-only
// from the CPU's perspective; the PPU drives them directly.
type Status struct {
	LYCInterrupt    bool
	OAMInterrupt    bool
	VBlankInterrupt bool
	HBlankInterrupt bool
	Coincidence     bool
	Mode            Mode
}

func (s *Status) Write(value uint8) {
	s.LYCInterrupt = bits.Test(value, 6)
	s.OAMInterrupt = bits.Test(value, 5)
	s.VBlankInterrupt = bits.Test(value, 4)
	s.HBlankInterrupt = bits.Test(value, 3)
}

func (s *Status) Read() uint8 {
	var v uint8 = 0x80
	v = bits.SetIf(v, 6, s.LYCInterrupt)
	v = bits.SetIf(v, 5, s.OAMInterrupt)
	v = bits.SetIf(v, 4, s.VBlankInterrupt)
	v = bits.SetIf(v, 3, s.HBlankInterrupt)
	v = bits.SetIf(v, 2, s.Coincidence)
	return v | uint8(s.Mode)&0x3
}

// SourceActive reports whether the currently-configured mode
// transition should raise the STAT interrupt source for the given
// mode, per whichever of OAM/VBlank/HBlank interrupts are enabled.
func (s *Status) SourceActive(mode Mode) bool {
	switch mode {
	case OAMScan:
		return s.OAMInterrupt
	case VBlank:
		return s.VBlankInterrupt
	case HBlank:
		return s.HBlankInterrupt
	}
	return false
}
