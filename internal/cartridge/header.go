package cartridge

import "fmt"

// Type is the cartridge-type byte at 0x0147, identifying the mapper
// and the auxiliary hardware (RAM, battery, timer) a cartridge carries.
type Type uint8

const (
	ROM               Type = 0x00
	MBC1              Type = 0x01
	MBC1RAM           Type = 0x02
	MBC1RAMBATT       Type = 0x03
	MBC2              Type = 0x05
	MBC2BATT          Type = 0x06
	ROMRAM            Type = 0x08
	ROMRAMBATT        Type = 0x09
	MMM01             Type = 0x0B
	MMM01RAM          Type = 0x0C
	MMM01RAMBATT      Type = 0x0D
	MBC3TIMERBATT     Type = 0x0F
	MBC3TIMERRAMBATT  Type = 0x10
	MBC3              Type = 0x11
	MBC3RAM           Type = 0x12
	MBC3RAMBATT       Type = 0x13
	MBC5              Type = 0x19
	MBC5RAM           Type = 0x1A
	MBC5RAMBATT       Type = 0x1B
	MBC5RUMBLE        Type = 0x1C
	MBC5RUMBLERAM     Type = 0x1D
	MBC5RUMBLERAMBATT Type = 0x1E
	MBC6              Type = 0x20
	MBC7              Type = 0x22
	POCKETCAMERA      Type = 0xFC
	BANDAITAMA5       Type = 0xFD
	HUDSONHUC3        Type = 0xFE
	HUDSONHUC1        Type = 0xFF
)

var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Header describes the cartridge metadata at 0x0100-0x014F.
type Header struct {
	Title         string
	CGBFlag       uint8
	CartridgeType Type
	ROMSize       int
	RAMSize       int
	HeaderChecksum uint8
	GlobalChecksum uint16
}

// ParseHeader parses the 0x50-byte header region (rom[0x100:0x150]).
// It returns an error rather than panicking on a short buffer, so
// truncated or corrupt ROM files can be rejected cleanly by callers.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < 0x150 {
		return Header{}, &LoadError{Reason: fmt.Sprintf("rom is %d bytes, too small to contain a header", len(rom))}
	}
	h := rom[0x100:0x150]

	header := Header{}
	header.CGBFlag = h[0x43]
	if header.CGBFlag == 0x80 || header.CGBFlag == 0xC0 {
		header.Title = string(h[0x34:0x43])
	} else {
		header.Title = string(h[0x34:0x44])
	}
	header.CartridgeType = Type(h[0x47])
	header.ROMSize = (32 * 1024) << h[0x48]
	header.RAMSize = ramSizes[h[0x49]]
	header.HeaderChecksum = h[0x4D]
	header.GlobalChecksum = uint16(h[0x4E])<<8 | uint16(h[0x4F])

	return header, nil
}

// CGB reports whether the cartridge declares Color Game Boy support.
func (h Header) CGB() bool {
	return h.CGBFlag == 0x80 || h.CGBFlag == 0xC0
}
