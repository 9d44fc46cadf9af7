package cartridge

import "github.com/hhowser/gbcore/internal/types"

// mbc5 supports up to 512 16 KiB ROM banks (a 9-bit bank number split
// across two write ports) and up to 16 8 KiB RAM banks.
type mbc5 struct {
	rom     []byte
	romBank uint32

	ram        []byte
	ramBank    uint32
	ramEnabled bool

	header Header
}

func newMBC5(rom []byte, header Header) *mbc5 {
	return &mbc5{rom: rom, romBank: 1, ram: make([]byte, header.RAMSize), header: header}
}

func (m *mbc5) Header() Header { return m.header }

func (m *mbc5) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.rom[address]
	case address < 0x8000:
		off := m.romBank*0x4000 + uint32(address&0x3FFF)
		if int(off) < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case address >= 0xA000 && address < 0xC000:
		if m.ramEnabled && len(m.ram) > 0 {
			return m.ram[(m.ramBank*0x2000+uint32(address&0x1FFF))%uint32(len(m.ram))]
		}
		return 0xFF
	}
	return 0xFF
}

func (m *mbc5) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x3000:
		m.romBank = (m.romBank &^ 0xFF) | uint32(value)
	case address < 0x4000:
		m.romBank = (m.romBank & 0xFF) | (uint32(value&0x1) << 8)
	case address < 0x6000:
		m.ramBank = uint32(value) & 0xF
	case address >= 0xA000 && address < 0xC000:
		if m.ramEnabled && len(m.ram) > 0 {
			m.ram[(m.ramBank*0x2000+uint32(address&0x1FFF))%uint32(len(m.ram))] = value
		}
	}
}

func (m *mbc5) RAM() []byte         { return m.ram }
func (m *mbc5) LoadRAM(data []byte) { copy(m.ram, data) }
func (m *mbc5) Advance(dots int)    {}

var _ Cartridge = (*mbc5)(nil)

func (m *mbc5) Save(st *types.State) {
	st.Write32(m.romBank)
	st.Write32(m.ramBank)
	st.WriteBool(m.ramEnabled)
	st.WriteData(m.ram)
}

func (m *mbc5) Load(st *types.State) {
	m.romBank = st.Read32()
	m.ramBank = st.Read32()
	m.ramEnabled = st.ReadBool()
	st.ReadData(m.ram)
}
