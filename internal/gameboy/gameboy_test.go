package gameboy

import (
	"testing"

	"github.com/hhowser/gbcore/internal/types"
	"github.com/hhowser/gbcore/pkg/log"
)

// newTestROM returns a minimal ROM-only cartridge image of program
// loaded at 0x0150, the conventional test-ROM entry point.
func newTestROM(program ...uint8) []byte {
	rom := make([]byte, 32*1024)
	copy(rom[0x0150:], program)
	return rom
}

func newTestGameBoy(t *testing.T, program ...uint8) *GameBoy {
	t.Helper()
	g, err := NewGameBoy(newTestROM(program...), NoRewind(), WithLogger(log.Null()))
	if err != nil {
		t.Fatalf("NewGameBoy: %v", err)
	}
	return g
}

func TestRunUntilStopsOnPredicate(t *testing.T) {
	// LD A,0x01 ; INC A ; INC A ; INC A ; JR -4 (loop over the last two INC A)
	g := newTestGameBoy(t, 0x3E, 0x01, 0x3C, 0x3C, 0x3C, 0x18, 0xFC)

	ok := g.RunUntil(func() bool { return g.CPU.A == 4 }, 10_000)
	if !ok {
		t.Fatalf("predicate never satisfied, A=%#02x", g.CPU.A)
	}
	if g.CPU.A != 4 {
		t.Fatalf("A = %#02x, want 0x04", g.CPU.A)
	}
}

func TestRunUntilBudgetExpires(t *testing.T) {
	g := newTestGameBoy(t, 0x00, 0x18, 0xFD) // NOP ; JR -3 (spin forever)

	ok := g.RunUntil(func() bool { return false }, 40)
	if ok {
		t.Fatalf("predicate reported satisfied, want budget exhaustion")
	}
}

func TestRunUntilStopsEarlyOnFatalCPUError(t *testing.T) {
	g := newTestGameBoy(t, 0xD3) // illegal opcode

	ok := g.RunUntil(func() bool { return false }, 1_000_000)
	if ok {
		t.Fatalf("predicate reported satisfied after a fatal opcode")
	}
	if !g.CPU.Stopped || g.CPU.Err == nil {
		t.Fatalf("CPU should be Stopped with Err set, got Stopped=%v Err=%v", g.CPU.Stopped, g.CPU.Err)
	}
}

func TestRunToNextScanlineAdvancesLY(t *testing.T) {
	g := newTestGameBoy(t, 0x00, 0x18, 0xFD) // NOP ; JR -3 (spin forever)

	// Enable the LCD so the PPU's dot counter actually advances.
	g.Bus.Write(types.LCDC, 0x80)

	startLY := g.Bus.Read(types.LY)
	if !g.RunToNextScanline() {
		t.Fatalf("RunToNextScanline did not complete within its budget")
	}
	if g.Bus.Read(types.LY) == startLY {
		t.Fatalf("LY did not advance")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := newTestGameBoy(t, 0x3E, 0x42) // LD A,0x42

	g.RunUntil(func() bool { return g.CPU.PC == 0x0152 }, 1000)
	if g.CPU.A != 0x42 {
		t.Fatalf("A = %#02x, want 0x42", g.CPU.A)
	}

	st := types.NewState()
	g.Save(st)

	g2 := newTestGameBoy(t, 0x3E, 0x42)
	g2.Load(types.StateFromBytes(st.Bytes()))

	if g2.CPU.A != g.CPU.A || g2.CPU.PC != g.CPU.PC {
		t.Fatalf("state did not round-trip: A=%#02x PC=%#04x, want A=%#02x PC=%#04x",
			g2.CPU.A, g2.CPU.PC, g.CPU.A, g.CPU.PC)
	}
}

func TestPushPopRewind(t *testing.T) {
	g, err := NewGameBoy(newTestROM(0x3C, 0x18, 0xFD)) // INC A ; JR -3 (spin forever)
	if err != nil {
		t.Fatalf("NewGameBoy: %v", err)
	}

	g.RunUntil(func() bool { return g.CPU.A == 3 }, 10_000)
	g.PushRewind()
	g.RunUntil(func() bool { return g.CPU.A == 6 }, 10_000)

	if !g.PopRewind() {
		t.Fatalf("PopRewind found nothing to restore")
	}
	if g.CPU.A != 3 {
		t.Fatalf("A = %d after rewind, want 3", g.CPU.A)
	}
}
