package cartridge

import "github.com/hhowser/gbcore/internal/types"

// mbc1 supports switching between up to 128 16 KiB ROM banks and up to
// 4 8 KiB RAM banks, plus a mode bit that repurposes the upper bank
// bits to select a RAM bank instead of extending the ROM bank number.
type mbc1 struct {
	rom     []byte
	romBank uint32

	ram        []byte
	ramBank    uint32
	ramEnabled bool

	romBankingMode bool

	header Header
}

func newMBC1(rom []byte, header Header) *mbc1 {
	return &mbc1{rom: rom, romBank: 1, ram: make([]byte, header.RAMSize), header: header, romBankingMode: true}
}

func (m *mbc1) Header() Header { return m.header }

func (m *mbc1) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.rom[address]
	case address < 0x8000:
		off := uint32(address-0x4000) + m.romBank*0x4000
		if int(off) < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case address >= 0xA000 && address < 0xC000:
		if m.ramEnabled && len(m.ram) > 0 {
			return m.ram[(uint32(address-0xA000)+m.ramBank*0x2000)%uint32(len(m.ram))]
		}
		return 0xFF
	}
	return 0xFF
}

func (m *mbc1) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBank = (m.romBank &^ 0x1F) | uint32(bank)
	case address < 0x6000:
		if m.romBankingMode {
			m.romBank = (m.romBank & 0x1F) | (uint32(value&0x03) << 5)
			if banks := uint32(len(m.rom) / 0x4000); banks > 0 {
				m.romBank %= banks
			}
			if m.romBank == 0 {
				m.romBank = 1
			}
		} else {
			m.ramBank = uint32(value) & 0x03
		}
	case address < 0x8000:
		m.romBankingMode = value&0x1 == 0
	case address >= 0xA000 && address < 0xC000:
		if m.ramEnabled && len(m.ram) > 0 {
			m.ram[(uint32(address-0xA000)+m.ramBank*0x2000)%uint32(len(m.ram))] = value
		}
	}
}

func (m *mbc1) RAM() []byte         { return m.ram }
func (m *mbc1) LoadRAM(data []byte) { copy(m.ram, data) }
func (m *mbc1) Advance(dots int)    {}

var _ Cartridge = (*mbc1)(nil)

func (m *mbc1) Save(st *types.State) {
	st.Write32(m.romBank)
	st.Write32(m.ramBank)
	st.WriteBool(m.ramEnabled)
	st.WriteBool(m.romBankingMode)
	st.WriteData(m.ram)
}

func (m *mbc1) Load(st *types.State) {
	m.romBank = st.Read32()
	m.ramBank = st.Read32()
	m.ramEnabled = st.ReadBool()
	m.romBankingMode = st.ReadBool()
	st.ReadData(m.ram)
}
