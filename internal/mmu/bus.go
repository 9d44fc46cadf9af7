// Package mmu implements the 16-bit address bus: a 65536-entry array
// of region dispatch closures, looked up directly by address rather
// than walked through a chain of "does this region own addr" checks.
package mmu

import (
	"github.com/hhowser/gbcore/internal/apu"
	"github.com/hhowser/gbcore/internal/cartridge"
	"github.com/hhowser/gbcore/internal/interrupts"
	"github.com/hhowser/gbcore/internal/joypad"
	"github.com/hhowser/gbcore/internal/ppu"
	"github.com/hhowser/gbcore/internal/ram"
	"github.com/hhowser/gbcore/internal/serial"
	"github.com/hhowser/gbcore/internal/timer"
	"github.com/hhowser/gbcore/internal/types"
)

// Bus is the Game Boy's 64 KiB address space. Every component that
// owns a region of memory registers its read/write closures once, at
// construction; Read/Write then cost nothing beyond the array index
// and the two function calls the owning region chose to expose.
type Bus struct {
	raw [65536]types.Address

	cart cartridge.Cartridge
	wram *ram.WRAM
	hram *ram.Block

	ppu     *ppu.PPU
	timer   *timer.Controller
	joypad  *joypad.State
	serial  *serial.Controller
	apu     *apu.APU
	irq     *interrupts.Service
	dma     *dma
}

// New wires every component's region into the dispatch array and
// returns a ready Bus. cart must not be nil: besides backing the
// cartridge address ranges, it is called by TickM and Save/Load.
func New(cart cartridge.Cartridge, p *ppu.PPU, t *timer.Controller, j *joypad.State, s *serial.Controller, irq *interrupts.Service) *Bus {
	b := &Bus{
		cart:   cart,
		wram:   ram.NewWRAM(),
		hram:   ram.NewBlock(0x7F),
		ppu:    p,
		timer:  t,
		joypad: j,
		serial: s,
		apu:    apu.New(),
		irq:    irq,
	}
	b.dma = newDMA(b, p)
	b.wire()
	return b
}

func (b *Bus) wire() {
	// 0x0000-0x7FFF ROM, 0xA000-0xBFFF external RAM: cartridge-owned.
	cartAddr := types.Address{
		Read:  func(a uint16) uint8 { return b.cart.Read(a) },
		Write: func(a uint16, v uint8) { b.cart.Write(a, v) },
	}
	for i := 0; i < 0x8000; i++ {
		b.raw[i] = cartAddr
	}
	for i := 0xA000; i < 0xC000; i++ {
		b.raw[i] = cartAddr
	}

	// 0x8000-0x9FFF VRAM
	for i := 0x8000; i < 0xA000; i++ {
		addr := uint16(i)
		b.raw[i] = types.Address{
			Read:  func(uint16) uint8 { return b.ppu.ReadVRAM(addr - 0x8000) },
			Write: func(_ uint16, v uint8) { b.ppu.WriteVRAM(addr-0x8000, v) },
		}
	}

	// 0xC000-0xCFFF fixed WRAM bank
	for i := 0xC000; i < 0xD000; i++ {
		addr := uint16(i)
		b.raw[i] = types.Address{
			Read:  func(uint16) uint8 { return b.wram.ReadFixed(addr - 0xC000) },
			Write: func(_ uint16, v uint8) { b.wram.WriteFixed(addr-0xC000, v) },
		}
	}
	// 0xD000-0xDFFF switchable WRAM bank
	for i := 0xD000; i < 0xE000; i++ {
		addr := uint16(i)
		b.raw[i] = types.Address{
			Read:  func(uint16) uint8 { return b.wram.ReadSwitchable(addr - 0xD000) },
			Write: func(_ uint16, v uint8) { b.wram.WriteSwitchable(addr-0xD000, v) },
		}
	}
	// 0xE000-0xFDFF: reserved, reads always 0x00, writes discarded.
	for i := 0xE000; i < 0xFE00; i++ {
		b.raw[i] = types.Address{Read: func(uint16) uint8 { return 0x00 }, Write: func(uint16, uint8) {}}
	}

	// 0xFE00-0xFE9F OAM
	for i := 0xFE00; i < 0xFEA0; i++ {
		addr := uint16(i)
		b.raw[i] = types.Address{
			Read:  func(uint16) uint8 { return b.ppu.ReadOAM(addr - 0xFE00) },
			Write: func(_ uint16, v uint8) { b.ppu.WriteOAM(addr-0xFE00, v) },
		}
	}
	// 0xFEA0-0xFEFF reserved: reads always 0x00, writes discarded.
	for i := 0xFEA0; i < 0xFF00; i++ {
		b.raw[i] = types.Address{Read: func(uint16) uint8 { return 0x00 }, Write: func(uint16, uint8) {}}
	}

	b.wireIO()

	// 0xFF80-0xFFFE HRAM
	for i := 0xFF80; i < 0xFFFF; i++ {
		addr := uint16(i)
		b.raw[i] = types.Address{
			Read:  func(uint16) uint8 { return b.hram.Read(addr - 0xFF80) },
			Write: func(_ uint16, v uint8) { b.hram.Write(addr-0xFF80, v) },
		}
	}

	b.raw[types.IE] = types.Address{
		Read:  func(uint16) uint8 { return b.irq.Enable },
		Write: func(_ uint16, v uint8) { b.irq.Enable = v },
	}
}

func (b *Bus) wireIO() {
	for i := 0xFF00; i < 0xFF80; i++ {
		b.raw[i] = types.Address{Read: func(uint16) uint8 { return 0xFF }, Write: func(uint16, uint8) {}}
	}

	// 0xFF10-0xFF3F: sound channel registers and wave RAM. Synthesis
	// is out of scope; the APU backs this range as inert storage.
	for i := 0xFF10; i < 0xFF40; i++ {
		offset := uint16(i - 0xFF10)
		b.raw[i] = types.Address{
			Read:  func(uint16) uint8 { return b.apu.Read(offset) },
			Write: func(_ uint16, v uint8) { b.apu.Write(offset, v) },
		}
	}

	b.raw[types.P1] = types.Address{
		Read:  func(uint16) uint8 { return b.joypad.Read() },
		Write: func(_ uint16, v uint8) { b.joypad.Write(v) },
	}
	b.raw[types.SB] = types.Address{
		Read:  func(uint16) uint8 { return b.serial.ReadSB() },
		Write: func(_ uint16, v uint8) { b.serial.WriteSB(v) },
	}
	b.raw[types.SC] = types.Address{
		Read:  func(uint16) uint8 { return b.serial.ReadSC() },
		Write: func(_ uint16, v uint8) { b.serial.WriteSC(v) },
	}
	b.raw[types.DIV] = types.Address{
		Read:  func(uint16) uint8 { return b.timer.DIV() },
		Write: func(uint16, uint8) { b.timer.WriteDIV() },
	}
	b.raw[types.TIMA] = types.Address{
		Read:  func(uint16) uint8 { return b.timer.TIMA() },
		Write: func(_ uint16, v uint8) { b.timer.WriteTIMA(v) },
	}
	b.raw[types.TMA] = types.Address{
		Read:  func(uint16) uint8 { return b.timer.TMA() },
		Write: func(_ uint16, v uint8) { b.timer.WriteTMA(v) },
	}
	b.raw[types.TAC] = types.Address{
		Read:  func(uint16) uint8 { return b.timer.TAC() },
		Write: func(_ uint16, v uint8) { b.timer.WriteTAC(v) },
	}
	b.raw[types.IF] = types.Address{
		Read:  func(uint16) uint8 { return b.irq.ReadIF() },
		Write: func(_ uint16, v uint8) { b.irq.WriteIF(v) },
	}
	b.raw[types.SVBK] = types.Address{
		Read:  func(uint16) uint8 { return b.wram.SVBK() },
		Write: func(_ uint16, v uint8) { b.wram.WriteSVBK(v) },
	}
	b.raw[types.DMA] = types.Address{
		Read:  func(uint16) uint8 { return b.dma.register() },
		Write: func(_ uint16, v uint8) { b.dma.start(v) },
	}

	for _, addr := range []uint16{
		types.LCDC, types.STAT, types.SCY, types.SCX, types.LY, types.LYC,
		types.BGP, types.OBP0, types.OBP1, types.WY, types.WX,
	} {
		a := addr
		b.raw[a] = types.Address{
			Read:  func(uint16) uint8 { return b.ppu.ReadRegister(a) },
			Write: func(_ uint16, v uint8) { b.ppu.WriteRegister(a, v) },
		}
	}
}

// Read returns the byte visible at addr, through whichever region
// owns it.
func (b *Bus) Read(addr uint16) uint8 {
	return b.raw[addr].Read(addr)
}

// Write stores value at addr, through whichever region owns it.
func (b *Bus) Write(addr uint16, value uint8) {
	b.raw[addr].Write(addr, value)
}

// Peek reads without triggering region side effects that a normal CPU
// read would have (currently identical to Read, since no region here
// has read side effects beyond the PPU/OAM access-blocking already
// applied uniformly).
func (b *Bus) Peek(addr uint16) uint8 {
	return b.Read(addr)
}

// Read16/Write16 read or write a little-endian 16-bit value across
// two consecutive addresses.
func (b *Bus) Read16(addr uint16) uint16 {
	lo := b.Read(addr)
	hi := b.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (b *Bus) Write16(addr uint16, value uint16) {
	b.Write(addr, uint8(value))
	b.Write(addr+1, uint8(value>>8))
}

// TickM advances every dot-driven component by one M-cycle (4 dots),
// including the OAM DMA engine.
func (b *Bus) TickM() {
	for i := 0; i < 4; i++ {
		b.ppu.Tick()
		b.timer.Tick()
	}
	b.dma.tickM()
	b.cart.Advance(4)
}

var _ types.Stater = (*Bus)(nil)

func (b *Bus) Save(st *types.State) {
	b.wram.Save(st)
	b.hram.Save(st)
	b.ppu.Save(st)
	b.timer.Save(st)
	b.joypad.Save(st)
	b.serial.Save(st)
	b.apu.Save(st)
	b.irq.Save(st)
	b.cart.Save(st)
	b.dma.save(st)
}

func (b *Bus) Load(st *types.State) {
	b.wram.Load(st)
	b.hram.Load(st)
	b.ppu.Load(st)
	b.timer.Load(st)
	b.joypad.Load(st)
	b.serial.Load(st)
	b.apu.Load(st)
	b.irq.Load(st)
	b.cart.Load(st)
	b.dma.load(st)
}
