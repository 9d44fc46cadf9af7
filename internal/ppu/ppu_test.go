package ppu

import (
	"testing"

	"github.com/hhowser/gbcore/internal/interrupts"
	"github.com/hhowser/gbcore/internal/ppu/lcd"
)

func TestModePartitionAcrossOneLine(t *testing.T) {
	irq := interrupts.NewService()
	p := New(irq)
	p.WriteRegister(0xFF40, 0x80) // LCD enable only

	for i := 0; i < oamScanDots; i++ {
		if p.Mode() != lcd.OAMScan {
			t.Fatalf("dot %d: expected OAMScan, got %d", i, p.Mode())
		}
		p.Tick()
	}
	for i := 0; i < drawingDots; i++ {
		if p.Mode() != lcd.Drawing {
			t.Fatalf("dot %d: expected Drawing, got %d", i, p.Mode())
		}
		p.Tick()
	}
	for i := 0; i < dotsPerLine-oamScanDots-drawingDots; i++ {
		if p.Mode() != lcd.HBlank {
			t.Fatalf("dot %d: expected HBlank, got %d", i, p.Mode())
		}
		p.Tick()
	}
	if p.Mode() != lcd.OAMScan {
		t.Fatalf("expected line 1 to restart at OAMScan, got %d", p.Mode())
	}
}

func TestVBlankRaisesIRQOnce(t *testing.T) {
	irq := interrupts.NewService()
	p := New(irq)
	irq.Enable = interrupts.VBlankFlag
	p.WriteRegister(0xFF40, 0x80)

	for i := 0; i < dotsPerLine*ScreenHeight; i++ {
		p.Tick()
	}
	if !irq.Pending() {
		t.Fatal("expected VBlank IRQ pending at line 144")
	}

	irq.Flag &^= interrupts.VBlankFlag
	for i := 0; i < dotsPerLine*(linesPerFrame-ScreenHeight)-1; i++ {
		p.Tick()
	}
	if irq.Pending() {
		t.Fatal("VBlank IRQ must be requested only once per frame")
	}
}

func TestLYCCoincidenceRaisesLCDStat(t *testing.T) {
	irq := interrupts.NewService()
	p := New(irq)
	irq.Enable = interrupts.LCDFlag
	p.WriteRegister(0xFF40, 0x80)
	p.WriteRegister(0xFF45, 1) // LYC = 1
	p.WriteRegister(0xFF41, 0x40) // enable LYC=LY STAT source

	for i := 0; i < dotsPerLine+1; i++ {
		p.Tick()
	}
	if !irq.Pending() {
		t.Fatal("expected LCD-STAT IRQ once LY reaches LYC")
	}
}

func TestBackgroundTileRendersExpectedColor(t *testing.T) {
	irq := interrupts.NewService()
	p := New(irq)
	p.WriteRegister(0xFF40, 0x91) // LCD+BG enabled, tile data at 0x8000, BG map at 0x9800
	p.WriteRegister(0xFF47, 0xE4) // identity-ish BGP: 11 10 01 00

	// tile 0's row 0 set to color index 3 across all 8 pixels.
	p.WriteVRAM(0x0000, 0xFF)
	p.WriteVRAM(0x0001, 0xFF)

	p.renderScanline(0)
	if got := p.frame[0][0]; got != 3 {
		t.Fatalf("expected color index 3 at (0,0), got %d", got)
	}
}
