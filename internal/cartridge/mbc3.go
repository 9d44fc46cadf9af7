package cartridge

import "github.com/hhowser/gbcore/internal/types"

// rtc is the MBC3's battery-backed real-time clock: seconds, minutes,
// hours, and a 9-bit day counter with a halt bit and day-carry flag,
// each latched into a shadow copy on a 0->1 write to the latch port.
type rtc struct {
	seconds, minutes, hours uint8
	daysLow                 uint8
	daysHighAndControl      uint8 // bit0: day high bit, bit6: halt, bit7: day carry

	latchedSeconds, latchedMinutes, latchedHours uint8
	latchedDaysLow, latchedDaysHighAndControl    uint8

	register  uint8 // selected RTC register, 0x08-0x0C
	latchPrev uint8

	dotAccum int // dots accumulated since the last whole second ticked
}

// dotsPerSecond is the DMG system clock rate: 4194304 Hz.
const dotsPerSecond = 4194304

// advance accumulates dots and ticks the clock forward one second at a
// time. A set halt bit (bit6 of daysHighAndControl) freezes the clock
// entirely - elapsed dots while halted are discarded, not buffered.
func (r *rtc) advance(dots int) {
	if r.daysHighAndControl&0x40 != 0 {
		return
	}
	r.dotAccum += dots
	for r.dotAccum >= dotsPerSecond {
		r.dotAccum -= dotsPerSecond
		r.tickSecond()
	}
}

// tickSecond carries seconds into minutes, hours, and the 9-bit day
// counter (daysLow plus bit0 of daysHighAndControl), setting the day
// carry flag (bit7) on overflow past day 511. The carry flag is sticky:
// advancing never clears it, only an explicit register write can.
func (r *rtc) tickSecond() {
	r.seconds++
	if r.seconds < 60 {
		return
	}
	r.seconds = 0

	r.minutes++
	if r.minutes < 60 {
		return
	}
	r.minutes = 0

	r.hours++
	if r.hours < 24 {
		return
	}
	r.hours = 0

	days := uint16(r.daysLow) | uint16(r.daysHighAndControl&0x01)<<8
	days++
	if days > 0x1FF {
		days = 0
		r.daysHighAndControl |= 0x80
	}
	r.daysLow = uint8(days)
	r.daysHighAndControl = (r.daysHighAndControl &^ 0x01) | uint8(days>>8&0x01)
}

func (r *rtc) latch() {
	r.latchedSeconds = r.seconds
	r.latchedMinutes = r.minutes
	r.latchedHours = r.hours
	r.latchedDaysLow = r.daysLow
	r.latchedDaysHighAndControl = r.daysHighAndControl
}

func (r *rtc) writeLatch(v uint8) {
	if r.latchPrev == 0x00 && v == 0x01 {
		r.latch()
	}
	r.latchPrev = v
}

func (r *rtc) readSelected() uint8 {
	switch r.register {
	case 0x08:
		return r.latchedSeconds
	case 0x09:
		return r.latchedMinutes
	case 0x0A:
		return r.latchedHours
	case 0x0B:
		return r.latchedDaysLow
	case 0x0C:
		return r.latchedDaysHighAndControl
	}
	return 0xFF
}

func (r *rtc) writeSelected(v uint8) {
	switch r.register {
	case 0x08:
		r.seconds = v & 0x3F
	case 0x09:
		r.minutes = v & 0x3F
	case 0x0A:
		r.hours = v & 0x1F
	case 0x0B:
		r.daysLow = v
	case 0x0C:
		r.daysHighAndControl = v & 0xC1
	}
}

// mbc3 supports up to 128 16 KiB ROM banks, up to 4 8 KiB RAM banks,
// and the RTC register set on carts whose type byte declares a timer.
type mbc3 struct {
	rom     []byte
	romBank uint32

	ram        []byte
	ramBank    int32 // -1 selects the RTC register set instead of RAM
	ramEnabled bool

	hasRTC     bool
	rtc        rtc
	rtcEnabled bool

	header Header
}

func newMBC3(rom []byte, header Header) *mbc3 {
	return &mbc3{
		rom:     rom,
		romBank: 1,
		ram:     make([]byte, header.RAMSize),
		hasRTC:  header.CartridgeType == MBC3TIMERBATT || header.CartridgeType == MBC3TIMERRAMBATT,
		header:  header,
	}
}

func (m *mbc3) Header() Header { return m.header }

func (m *mbc3) Read(address uint16) uint8 {
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
		if m.ramBank >= 0 {
			if m.ramEnabled && len(m.ram) > 0 {
				return m.ram[(uint32(m.ramBank)*0x2000+uint32(address&0x1FFF))%uint32(len(m.ram))]
			}
			return 0xFF
		}
		if m.hasRTC && m.rtcEnabled {
			return m.rtc.readSelected()
		}
		return 0xFF
	}
	return 0xFF
}

func (m *mbc3) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		enable := value&0x0F == 0x0A
		m.ramEnabled = enable
		m.rtcEnabled = enable
	case address < 0x4000:
		bank := uint32(value) & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case address < 0x6000:
		switch {
		case value <= 0x03:
			m.ramBank = int32(value)
		case value >= 0x08 && value <= 0x0C && m.hasRTC:
			m.ramBank = -1
			m.rtc.register = value
		}
	case address < 0x8000:
		if m.hasRTC {
			m.rtc.writeLatch(value)
		}
	case address >= 0xA000 && address < 0xC000:
		if m.ramBank >= 0 {
			if m.ramEnabled && len(m.ram) > 0 {
				m.ram[(uint32(m.ramBank)*0x2000+uint32(address&0x1FFF))%uint32(len(m.ram))] = value
			}
		} else if m.hasRTC && m.rtcEnabled {
			m.rtc.writeSelected(value)
		}
	}
}

func (m *mbc3) RAM() []byte         { return m.ram }
func (m *mbc3) LoadRAM(data []byte) { copy(m.ram, data) }

// Advance ticks the real-time clock forward by dots, a no-op on carts
// without one.
func (m *mbc3) Advance(dots int) {
	if m.hasRTC {
		m.rtc.advance(dots)
	}
}

var _ Cartridge = (*mbc3)(nil)

func (m *mbc3) Save(st *types.State) {
	st.Write32(m.romBank)
	st.Write32(uint32(m.ramBank))
	st.WriteBool(m.ramEnabled)
	st.WriteData(m.ram)
	st.WriteBool(m.hasRTC)
	st.WriteBool(m.rtcEnabled)
	st.Write8(m.rtc.seconds)
	st.Write8(m.rtc.minutes)
	st.Write8(m.rtc.hours)
	st.Write8(m.rtc.daysLow)
	st.Write8(m.rtc.daysHighAndControl)
	st.Write8(m.rtc.latchedSeconds)
	st.Write8(m.rtc.latchedMinutes)
	st.Write8(m.rtc.latchedHours)
	st.Write8(m.rtc.latchedDaysLow)
	st.Write8(m.rtc.latchedDaysHighAndControl)
	st.Write8(m.rtc.register)
	st.Write8(m.rtc.latchPrev)
	st.Write32(uint32(m.rtc.dotAccum))
}

func (m *mbc3) Load(st *types.State) {
	m.romBank = st.Read32()
	m.ramBank = int32(st.Read32())
	m.ramEnabled = st.ReadBool()
	st.ReadData(m.ram)
	m.hasRTC = st.ReadBool()
	m.rtcEnabled = st.ReadBool()
	m.rtc.seconds = st.Read8()
	m.rtc.minutes = st.Read8()
	m.rtc.hours = st.Read8()
	m.rtc.daysLow = st.Read8()
	m.rtc.daysHighAndControl = st.Read8()
	m.rtc.latchedSeconds = st.Read8()
	m.rtc.latchedMinutes = st.Read8()
	m.rtc.latchedHours = st.Read8()
	m.rtc.latchedDaysLow = st.Read8()
	m.rtc.latchedDaysHighAndControl = st.Read8()
	m.rtc.register = st.Read8()
	m.rtc.latchPrev = st.Read8()
	m.rtc.dotAccum = int(st.Read32())
}
