package cartridge

import "testing"

func makeROM(cartType Type, romBanks int) []byte {
	rom := make([]byte, 0x4000*romBanks)
	copy(rom[0x134:0x144], []byte("TESTROM"))
	rom[0x147] = byte(cartType)
	rom[0x149] = 0x03 // 32 KiB RAM
	return rom
}

func TestNewRejectsShortROM(t *testing.T) {
	_, err := New([]byte{0x00, 0x01})
	if err == nil {
		t.Fatal("expected an error for a too-short ROM")
	}
}

func TestNewRejectsUnimplementedMapper(t *testing.T) {
	rom := makeROM(MBC2, 2)
	_, err := New(rom)
	if err == nil {
		t.Fatal("expected an error for an unimplemented mapper type")
	}
}

func TestMBC1ROMBankSwitch(t *testing.T) {
	rom := makeROM(MBC1, 4)
	rom[0x4000] = 0xAB // bank 1, offset 0
	rom[2*0x4000+2] = 0xCD // bank 2, offset 2

	c, err := New(rom)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Read(0x4000); got != 0xAB {
		t.Fatalf("expected bank 1 byte 0xAB, got %#x", got)
	}

	c.Write(0x2000, 0x02) // select bank 2
	if got := c.Read(0x4002); got != 0xCD {
		t.Fatalf("expected bank 2 byte 0xCD, got %#x", got)
	}
}

func TestMBC1BankZeroAliasesToOne(t *testing.T) {
	rom := makeROM(MBC1, 4)
	c, _ := New(rom)
	c.Write(0x2000, 0x00)
	// writing 0 must select bank 1, not bank 0
	if got := c.Read(0x4000); got != rom[0x4000] {
		t.Fatalf("expected bank 1 contents at 0x4000, got %#x want %#x", got, rom[0x4000])
	}
}

func TestMBC1RAMEnableGate(t *testing.T) {
	rom := makeROM(MBC1RAMBATT, 2)
	c, _ := New(rom)

	c.Write(0xA000, 0x42)
	if got := c.Read(0xA000); got == 0x42 {
		t.Fatal("RAM write should be ignored while RAM is disabled")
	}

	c.Write(0x0000, 0x0A) // enable RAM
	c.Write(0xA000, 0x42)
	if got := c.Read(0xA000); got != 0x42 {
		t.Fatalf("expected RAM write to take effect once enabled, got %#x", got)
	}
}

func TestMBC3RTCLatch(t *testing.T) {
	rom := makeROM(MBC3TIMERRAMBATT, 2)
	c, err := New(rom)
	if err != nil {
		t.Fatal(err)
	}
	m := c.(*mbc3)

	m.rtcEnabled = true
	m.rtc.seconds = 42
	c.Write(0x6000, 0x00)
	c.Write(0x6000, 0x01) // latch

	c.Write(0x4000, 0x08) // select seconds register
	if got := c.Read(0xA000); got != 42 {
		t.Fatalf("expected latched seconds 42, got %d", got)
	}
}

func TestMBC3RTCAdvancesWithElapsedDots(t *testing.T) {
	rom := makeROM(MBC3TIMERRAMBATT, 2)
	c, err := New(rom)
	if err != nil {
		t.Fatal(err)
	}
	m := c.(*mbc3)
	m.rtcEnabled = true

	c.Advance(90 * dotsPerSecond) // 90 real seconds elapsed

	c.Write(0x6000, 0x00)
	c.Write(0x6000, 0x01) // latch

	c.Write(0x4000, 0x08) // select seconds
	if got := c.Read(0xA000); got != 30 {
		t.Fatalf("expected seconds to read 30 after 90s elapsed, got %d", got)
	}
	c.Write(0x4000, 0x09) // select minutes
	if got := c.Read(0xA000); got != 1 {
		t.Fatalf("expected minutes to read 1 after 90s elapsed, got %d", got)
	}
}

func TestMBC3RTCHaltStopsAdvancement(t *testing.T) {
	rom := makeROM(MBC3TIMERRAMBATT, 2)
	c, err := New(rom)
	if err != nil {
		t.Fatal(err)
	}
	m := c.(*mbc3)
	m.rtcEnabled = true
	m.rtc.daysHighAndControl = 0x40 // halt bit set

	c.Advance(10 * dotsPerSecond)

	c.Write(0x6000, 0x00)
	c.Write(0x6000, 0x01) // latch

	c.Write(0x4000, 0x08) // select seconds
	if got := c.Read(0xA000); got != 0 {
		t.Fatalf("expected seconds to stay at 0 while halted, got %d", got)
	}
}

func TestMBC3RTCDayCarryStickyOnOverflow(t *testing.T) {
	rom := makeROM(MBC3TIMERRAMBATT, 2)
	c, err := New(rom)
	if err != nil {
		t.Fatal(err)
	}
	m := c.(*mbc3)
	m.rtcEnabled = true
	m.rtc.daysLow = 0xFF
	m.rtc.daysHighAndControl = 0x01 // day high bit set: day counter at 511

	c.Advance(24 * 60 * 60 * dotsPerSecond) // one more day: overflow past 511

	c.Write(0x6000, 0x00)
	c.Write(0x6000, 0x01) // latch

	c.Write(0x4000, 0x0C) // select day-high/control
	if got := c.Read(0xA000); got&0x80 == 0 {
		t.Fatalf("expected day-carry bit set after day counter overflow, got %#x", got)
	}
}

func TestMBC5Wide16BitRomBank(t *testing.T) {
	rom := makeROM(MBC5, 512) // 512 banks needs the 9th bit
	rom[511*0x4000] = 0x99
	c, _ := New(rom)

	c.Write(0x2000, 0xFF)
	c.Write(0x3000, 0x01)
	if got := c.Read(0x4000); got != 0x99 {
		t.Fatalf("expected bank 511 byte 0x99, got %#x", got)
	}
}
