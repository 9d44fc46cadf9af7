// Package ram provides the core's RAM blocks: a plain byte-addressed
// block used for VRAM/OAM/HRAM, and the Work-RAM plane with its fixed
// bank plus seven switchable banks.
package ram

import "github.com/hhowser/gbcore/internal/types"

// Block is a flat, slice-backed span of RAM addressed from 0, with no
// banking of its own. The teacher's ram package backed this with a
// map[uint16]uint8; a slice is used here since every block in this
// core has a small, fixed, known-at-construction size.
type Block struct {
	data []uint8
}

// NewBlock returns a zeroed Block of the given size.
func NewBlock(size int) *Block {
	return &Block{data: make([]uint8, size)}
}

func (b *Block) Read(addr uint16) uint8 {
	return b.data[addr]
}

func (b *Block) Write(addr uint16, value uint8) {
	b.data[addr] = value
}

// Raw exposes the backing slice directly, for components (PPU OAM
// scan, DMA) that need bulk or structured access rather than one byte
// at a time.
func (b *Block) Raw() []uint8 {
	return b.data
}

func (b *Block) Save(st *types.State) {
	st.WriteData(b.data)
}

func (b *Block) Load(st *types.State) {
	st.ReadData(b.data)
}

var _ types.Stater = (*Block)(nil)

// WRAM is the two work-RAM planes: a fixed 4 KiB bank at 0xC000-0xCFFF
// and seven switchable 4 KiB banks multiplexed at 0xD000-0xDFFF by the
// 3-bit SVBK register. Bank 0 can never be mapped into the switchable
// window - writing 0 selects bank 1, matching real hardware.
type WRAM struct {
	fixed [0x1000]uint8
	banks [8][0x1000]uint8
	svbk  uint8
}

// NewWRAM returns a WRAM with bank 1 selected, as after boot.
func NewWRAM() *WRAM {
	return &WRAM{svbk: 1}
}

// ReadFixed/WriteFixed address the 0xC000-0xCFFF window directly by
// its 12-bit offset.
func (w *WRAM) ReadFixed(offset uint16) uint8 {
	return w.fixed[offset]
}

func (w *WRAM) WriteFixed(offset uint16, value uint8) {
	w.fixed[offset] = value
}

// ReadSwitchable/WriteSwitchable address the 0xD000-0xDFFF window,
// resolving through the currently selected bank.
func (w *WRAM) ReadSwitchable(offset uint16) uint8 {
	return w.banks[w.bank()][offset]
}

func (w *WRAM) WriteSwitchable(offset uint16, value uint8) {
	w.banks[w.bank()][offset] = value
}

func (w *WRAM) bank() uint8 {
	b := w.svbk & 0x7
	if b == 0 {
		return 1
	}
	return b
}

// SVBK returns the raw register value as last written, with the
// unused upper bits set per hardware.
func (w *WRAM) SVBK() uint8 {
	return w.svbk | 0xF8
}

// WriteSVBK stores the new bank selection; only the low 3 bits matter.
func (w *WRAM) WriteSVBK(value uint8) {
	w.svbk = value & 0x7
}

func (w *WRAM) Save(st *types.State) {
	st.WriteData(w.fixed[:])
	for i := range w.banks {
		st.WriteData(w.banks[i][:])
	}
	st.Write8(w.svbk)
}

func (w *WRAM) Load(st *types.State) {
	st.ReadData(w.fixed[:])
	for i := range w.banks {
		st.ReadData(w.banks[i][:])
	}
	w.svbk = st.Read8()
}

var _ types.Stater = (*WRAM)(nil)
