// Package ppu implements the picture processing unit: the LCDC/STAT
// register pair, a dot-counter-driven 4-mode state machine, and a
// per-scanline renderer invoked atomically at the OAM->Drawing
// transition rather than a pixel-by-pixel FIFO.
package ppu

import (
	"github.com/hhowser/gbcore/internal/bits"
	"github.com/hhowser/gbcore/internal/interrupts"
	"github.com/hhowser/gbcore/internal/ppu/lcd"
	"github.com/hhowser/gbcore/internal/ram"
	"github.com/hhowser/gbcore/internal/types"
)

const (
	dotsPerLine  = 456
	oamScanDots  = 80
	drawingDots  = 289
	linesPerFrame = 154
	DotsPerFrame = dotsPerLine * linesPerFrame

	ScreenWidth  = 160
	ScreenHeight = 144
)

// oamEntry is one decoded OAM entry, cached at the start of each
// scanline's rendering pass.
type oamEntry struct {
	y, x, tile, flags uint8
}

// PPU owns VRAM, OAM, the LCDC/STAT register pair, and the 144x160
// frame buffer of 2-bit DMG color indices (0-3, post-palette).
type PPU struct {
	vram *ram.Block // 0x8000-0x9FFF, 8 KiB
	oam  *ram.Block // 0xFE00-0xFE9F, 160 bytes

	lcdc lcd.Control
	stat lcd.Status

	scy, scx uint8
	ly, lyc  uint8
	bgp, obp0, obp1 uint8
	wy, wx   uint8

	dot int

	frame [ScreenHeight][ScreenWidth]uint8

	irq *interrupts.Service
}

// New returns a PPU with VRAM/OAM zeroed and the LCD off; once LCDC
// enables the LCD, the mode state machine starts at frame 0,
// scanline 0's OAM Scan.
func New(irq *interrupts.Service) *PPU {
	return &PPU{
		vram: ram.NewBlock(0x2000),
		oam:  ram.NewBlock(0xA0),
		lcdc: *lcd.NewControl(),
		irq:  irq,
	}
}

// Tick advances the PPU by one dot, driving LY from the dot counter
// and running the scanline renderer at the OAM->Drawing boundary.
func (p *PPU) Tick() {
	if !p.lcdc.Enabled {
		return
	}

	prevMode := p.stat.Mode
	prevLY := p.ly

	p.dot++
	if p.dot >= DotsPerFrame {
		p.dot = 0
	}

	line := p.dot / dotsPerLine
	p.ly = uint8(line)
	offset := p.dot % dotsPerLine

	switch {
	case line >= ScreenHeight:
		p.stat.Mode = lcd.VBlank
	case offset < oamScanDots:
		p.stat.Mode = lcd.OAMScan
	case offset < oamScanDots+drawingDots:
		p.stat.Mode = lcd.Drawing
	default:
		p.stat.Mode = lcd.HBlank
	}

	if p.stat.Mode != prevMode {
		p.onModeEntry(prevMode)
	}
	if p.ly != prevLY {
		p.stat.Coincidence = p.ly == p.lyc
		if p.stat.Coincidence && p.stat.LYCInterrupt {
			p.irq.Request(interrupts.LCDFlag)
		}
	}
}

func (p *PPU) onModeEntry(prev lcd.Mode) {
	switch p.stat.Mode {
	case lcd.Drawing:
		p.renderScanline(int(p.ly))
	case lcd.VBlank:
		if prev != lcd.VBlank {
			p.irq.Request(interrupts.VBlankFlag)
		}
	}
	if p.stat.SourceActive(p.stat.Mode) {
		p.irq.Request(interrupts.LCDFlag)
	}
}

// Frame returns the current frame buffer of post-palette 2-bit color
// indices, row-major, [y][x].
func (p *PPU) Frame() [ScreenHeight][ScreenWidth]uint8 {
	return p.frame
}

// ReadRegister/WriteRegister handle 0xFF40-0xFF4B.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0xFF40:
		return p.lcdc.Read()
	case 0xFF41:
		return p.stat.Read()
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	}
	return 0xFF
}

func (p *PPU) WriteRegister(addr uint16, v uint8) {
	switch addr {
	case 0xFF40:
		wasEnabled := p.lcdc.Enabled
		p.lcdc.Write(v)
		if wasEnabled && !p.lcdc.Enabled {
			p.dot = 0
			p.ly = 0
			p.stat.Mode = lcd.HBlank
		}
		if !wasEnabled && p.lcdc.Enabled {
			p.stat.Mode = lcd.OAMScan
		}
	case 0xFF41:
		p.stat.Write(v)
	case 0xFF42:
		p.scy = v
	case 0xFF43:
		p.scx = v
	case 0xFF45:
		p.lyc = v
	case 0xFF47:
		p.bgp = v
	case 0xFF48:
		p.obp0 = v
	case 0xFF49:
		p.obp1 = v
	case 0xFF4A:
		p.wy = v
	case 0xFF4B:
		p.wx = v
	}
}

// Mode reports the PPU's current state-machine mode, which the VRAM/OAM
// accessors below use to decide whether CPU access should be blocked.
func (p *PPU) Mode() lcd.Mode {
	if !p.lcdc.Enabled {
		return lcd.HBlank
	}
	return p.stat.Mode
}

func (p *PPU) ReadVRAM(addr uint16) uint8 {
	if p.Mode() == lcd.Drawing {
		return 0xFF
	}
	return p.vram.Read(addr)
}

func (p *PPU) WriteVRAM(addr uint16, v uint8) {
	if p.Mode() == lcd.Drawing {
		return
	}
	p.vram.Write(addr, v)
}

func (p *PPU) ReadOAM(addr uint16) uint8 {
	mode := p.Mode()
	if mode == lcd.OAMScan || mode == lcd.Drawing {
		return 0xFF
	}
	return p.oam.Read(addr)
}

func (p *PPU) WriteOAM(addr uint16, v uint8) {
	mode := p.Mode()
	if mode == lcd.OAMScan || mode == lcd.Drawing {
		return
	}
	p.oam.Write(addr, v)
}

// PeekVRAM/PokeOAM bypass mode-based blocking, for OAM DMA's
// VRAM-sourced reads and the DMA engine's writes into OAM.
func (p *PPU) PeekVRAM(addr uint16) uint8     { return p.vram.Read(addr) }
func (p *PPU) PokeOAM(addr uint16, v uint8)   { p.oam.Write(addr, v) }

func (p *PPU) tileData(tileNo uint8, fineY uint8) (lo, hi uint8) {
	var base uint16
	if p.lcdc.TileDataAddress == 0x8000 {
		base = 0x8000 + uint16(tileNo)*16
	} else {
		base = uint16(0x9000 + int(int8(tileNo))*16)
	}
	off := base - 0x8000 + uint16(fineY)*2
	return p.vram.Read(off), p.vram.Read(off + 1)
}

func pixelAt(lo, hi uint8, bit uint8) uint8 {
	l := bits.Val(lo, 7-bit)
	h := bits.Val(hi, 7-bit)
	return h<<1 | l
}

func applyPalette(palette uint8, colorIdx uint8) uint8 {
	return (palette >> (colorIdx * 2)) & 0x3
}

func (p *PPU) renderScanline(y int) {
	var bg [ScreenWidth]uint8 // raw (pre-palette) color indices, for object priority

	if p.lcdc.BackgroundEnabled {
		mapBase := p.lcdc.BackgroundTileMapAddress - 0x8000
		for x := 0; x < ScreenWidth; x++ {
			mapX := (uint8(x) + p.scx)
			mapY := uint8(y) + p.scy
			tileIdx := uint16(mapY/8)*32 + uint16(mapX/8)
			tileNo := p.vram.Read(mapBase + tileIdx)
			lo, hi := p.tileData(tileNo, mapY%8)
			c := pixelAt(lo, hi, mapX%8)
			bg[x] = c
			p.frame[y][x] = applyPalette(p.bgp, c)
		}
	} else {
		for x := 0; x < ScreenWidth; x++ {
			p.frame[y][x] = 0
		}
	}

	if p.lcdc.WindowEnabled && uint8(y) >= p.wy {
		mapBase := p.lcdc.WindowTileMapAddress - 0x8000
		winY := uint8(y) - p.wy
		for x := 0; x < ScreenWidth; x++ {
			wx := int(p.wx) - 7
			if x < wx {
				continue
			}
			winX := uint8(x - wx)
			tileIdx := uint16(winY/8)*32 + uint16(winX/8)
			tileNo := p.vram.Read(mapBase + tileIdx)
			lo, hi := p.tileData(tileNo, winY%8)
			c := pixelAt(lo, hi, winX%8)
			bg[x] = c
			p.frame[y][x] = applyPalette(p.bgp, c)
		}
	}

	if p.lcdc.SpriteEnabled {
		p.renderSprites(y, bg)
	}
}

func (p *PPU) renderSprites(y int, bg [ScreenWidth]uint8) {
	height := int(p.lcdc.SpriteSize)

	var visible []oamEntry
	for i := 0; i < 40 && len(visible) < 10; i++ {
		base := uint16(i * 4)
		spriteY := int(p.oam.Read(base)) - 16
		if y < spriteY || y >= spriteY+height {
			continue
		}
		visible = append(visible, oamEntry{
			y:     p.oam.Read(base),
			x:     p.oam.Read(base + 1),
			tile:  p.oam.Read(base + 2),
			flags: p.oam.Read(base + 3),
		})
	}

	// Stable ascending-X order; ties broken by OAM index, which the
	// scan above already preserves since it walks OAM in order.
	for i := 1; i < len(visible); i++ {
		for j := i; j > 0 && visible[j].x < visible[j-1].x; j-- {
			visible[j], visible[j-1] = visible[j-1], visible[j]
		}
	}

	for _, s := range visible {
		spriteY := int(s.y) - 16
		spriteX := int(s.x) - 8
		row := y - spriteY
		yFlip := bits.Test(s.flags, 6)
		xFlip := bits.Test(s.flags, 5)
		bgPriority := bits.Test(s.flags, 7)
		palette := p.obp0
		if bits.Test(s.flags, 4) {
			palette = p.obp1
		}

		tile := s.tile
		if height == 16 {
			tile &^= 1
		}
		drawRow := row
		if yFlip {
			drawRow = height - 1 - row
		}
		lo := p.vram.Read(uint16(tile)*16 + uint16(drawRow)*2)
		hi := p.vram.Read(uint16(tile)*16 + uint16(drawRow)*2 + 1)

		for col := 0; col < 8; col++ {
			sx := spriteX + col
			if sx < 0 || sx >= ScreenWidth {
				continue
			}
			bit := col
			if xFlip {
				bit = 7 - col
			}
			c := pixelAt(lo, hi, uint8(bit))
			if c == 0 {
				continue
			}
			if bgPriority && bg[sx] != 0 {
				continue
			}
			p.frame[y][sx] = applyPalette(palette, c)
		}
	}
}

var _ types.Stater = (*PPU)(nil)

func (p *PPU) Save(st *types.State) {
	p.vram.Save(st)
	p.oam.Save(st)
	st.Write8(p.lcdc.Read())
	st.Write8(p.stat.Read())
	st.Write8(p.scy)
	st.Write8(p.scx)
	st.Write8(p.ly)
	st.Write8(p.lyc)
	st.Write8(p.bgp)
	st.Write8(p.obp0)
	st.Write8(p.obp1)
	st.Write8(p.wy)
	st.Write8(p.wx)
	st.Write32(uint32(p.dot))
}

func (p *PPU) Load(st *types.State) {
	p.vram.Load(st)
	p.oam.Load(st)
	p.lcdc.Write(st.Read8())
	p.stat.Write(st.Read8())
	p.scy = st.Read8()
	p.scx = st.Read8()
	p.ly = st.Read8()
	p.lyc = st.Read8()
	p.bgp = st.Read8()
	p.obp0 = st.Read8()
	p.obp1 = st.Read8()
	p.wy = st.Read8()
	p.wx = st.Read8()
	p.dot = int(st.Read32())
	p.recomputeMode()
}

// recomputeMode derives LY and the STAT mode from the dot counter
// without running onModeEntry's interrupt side effects - used after
// Load, where the mode must reflect the restored dot exactly.
func (p *PPU) recomputeMode() {
	line := p.dot / dotsPerLine
	p.ly = uint8(line)
	offset := p.dot % dotsPerLine
	switch {
	case line >= ScreenHeight:
		p.stat.Mode = lcd.VBlank
	case offset < oamScanDots:
		p.stat.Mode = lcd.OAMScan
	case offset < oamScanDots+drawingDots:
		p.stat.Mode = lcd.Drawing
	default:
		p.stat.Mode = lcd.HBlank
	}
}
