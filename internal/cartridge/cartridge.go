// Package cartridge parses a ROM's header and constructs the mapper
// its cartridge-type byte selects: a plain ROM-only mapper, or one of
// MBC1/MBC3/MBC5, each owning its own ROM/RAM bank registers.
package cartridge

import "github.com/hhowser/gbcore/internal/types"

// Cartridge is the bus-facing contract every mapper implements.
type Cartridge interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)

	Header() Header

	// RAM returns the cartridge's battery-backed RAM for persistence,
	// or nil if the cartridge carries none.
	RAM() []byte
	// LoadRAM restores previously persisted RAM. The slice length must
	// match what RAM() previously reported.
	LoadRAM(data []byte)

	// Advance gives the cartridge a chance to observe elapsed time, in
	// dots (1/4194304 s), so mappers carrying a real-time clock (MBC3)
	// can tick it forward. A no-op for every mapper without one.
	Advance(dots int)

	types.Stater
}

// New parses rom's header and returns the mapper it selects, or a
// *LoadError if the header is malformed or names an unimplemented
// mapper (MBC2, MBC6, MBC7, MMM01, the camera and TAMA5 carts, and
// HuC1/HuC3 are all recognized but not implemented).
func New(rom []byte) (Cartridge, error) {
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	switch header.CartridgeType {
	case ROM, ROMRAM, ROMRAMBATT:
		return newNone(rom, header), nil
	case MBC1, MBC1RAM, MBC1RAMBATT:
		return newMBC1(rom, header), nil
	case MBC3, MBC3RAM, MBC3RAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT:
		return newMBC3(rom, header), nil
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		return newMBC5(rom, header), nil
	default:
		return nil, &LoadError{Reason: "unimplemented cartridge type " + hex(uint8(header.CartridgeType))}
	}
}

func hex(v uint8) string {
	const digits = "0123456789ABCDEF"
	return "0x" + string([]byte{digits[v>>4], digits[v&0xF]})
}

// none is the ROM-only mapper, used by cartridges with no banking
// hardware at all.
type none struct {
	rom    []byte
	header Header
}

func newNone(rom []byte, header Header) *none {
	return &none{rom: rom, header: header}
}

func (c *none) Header() Header { return c.header }

func (c *none) Read(address uint16) uint8 {
	if int(address) < len(c.rom) {
		return c.rom[address]
	}
	return 0xFF
}

func (c *none) Write(address uint16, value uint8) {}

func (c *none) RAM() []byte         { return nil }
func (c *none) LoadRAM(data []byte) {}
func (c *none) Advance(dots int)    {}

func (c *none) Save(st *types.State) {}
func (c *none) Load(st *types.State) {}

var _ Cartridge = (*none)(nil)
