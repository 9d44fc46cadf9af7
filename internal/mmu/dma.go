package mmu

import (
	"github.com/hhowser/gbcore/internal/ppu"
	"github.com/hhowser/gbcore/internal/types"
)

// dma implements OAM DMA: a write to 0xFF46 schedules a 160-byte copy
// from 0x{V}00 into OAM, starting after a two-M-cycle delay and then
// transferring one byte per M-cycle. Source reads go through Bus.Peek,
// or the PPU's unblocked VRAM peek for VRAM sources, so they don't
// recursively cost bus time.
type dma struct {
	bus *Bus
	ppu *ppu.PPU

	value   uint8
	active  bool
	delay   uint8 // M-cycles remaining before the first byte transfers
	index   uint8 // next OAM offset to write
}

func newDMA(bus *Bus, p *ppu.PPU) *dma {
	return &dma{bus: bus, ppu: p}
}

func (d *dma) register() uint8 {
	return d.value
}

func (d *dma) start(v uint8) {
	d.value = v
	d.active = true
	d.delay = 2
	d.index = 0
}

func (d *dma) tickM() {
	if !d.active {
		return
	}
	if d.delay > 0 {
		d.delay--
		return
	}

	source := uint16(d.value)<<8 + uint16(d.index)
	d.ppu.PokeOAM(uint16(d.index), d.peekSource(source))

	d.index++
	if d.index >= 160 {
		d.active = false
	}
}

// peekSource reads the DMA's source byte. VRAM sources use the PPU's
// unconditional VRAM peek, bypassing mode-based VRAM blocking; every
// other source goes through Bus.Peek.
func (d *dma) peekSource(addr uint16) uint8 {
	if addr >= 0x8000 && addr < 0xA000 {
		return d.ppu.PeekVRAM(addr - 0x8000)
	}
	return d.bus.Peek(addr)
}

func (d *dma) save(st *types.State) {
	st.Write8(d.value)
	st.WriteBool(d.active)
	st.Write8(d.delay)
	st.Write8(d.index)
}

func (d *dma) load(st *types.State) {
	d.value = st.Read8()
	d.active = st.ReadBool()
	d.delay = st.Read8()
	d.index = st.Read8()
}
