package cpu

import (
	"testing"

	"github.com/hhowser/gbcore/internal/cartridge"
	"github.com/hhowser/gbcore/internal/interrupts"
	"github.com/hhowser/gbcore/internal/joypad"
	"github.com/hhowser/gbcore/internal/mmu"
	"github.com/hhowser/gbcore/internal/ppu"
	"github.com/hhowser/gbcore/internal/serial"
	"github.com/hhowser/gbcore/internal/timer"
)

// newTestCPU wires a CPU to a bus backed by a ROM-only cartridge whose
// contents are program, loaded at 0x0150 - the conventional test-ROM
// entry point after the boot ROM hands off.
func newTestCPU(t *testing.T, program ...uint8) (*CPU, *interrupts.Service) {
	t.Helper()
	rom := make([]byte, 0x8000)
	rom[0x147] = 0x00 // ROM only
	copy(rom[0x150:], program)

	cart, err := cartridge.New(rom)
	if err != nil {
		t.Fatal(err)
	}
	irq := interrupts.NewService()
	bus := mmu.New(cart, ppu.New(irq), timer.NewController(irq), joypad.New(irq), serial.NewController(), irq)
	c := New(bus, irq)
	c.PC = 0x0150
	return c, irq
}

func TestLoadImmediateThenAdd(t *testing.T) {
	// LD A,0x42 ; ADD A,0x01
	c, _ := newTestCPU(t, 0x3E, 0x42, 0xC6, 0x01)

	cyclesA := c.Step()
	if c.A != 0x42 {
		t.Fatalf("expected A=0x42 after LD, got %#x", c.A)
	}
	if cyclesA != 2 {
		t.Fatalf("expected LD A,n8 to cost 2 M-cycles, got %d", cyclesA)
	}

	cyclesB := c.Step()
	if c.A != 0x43 {
		t.Fatalf("expected A=0x43 after ADD, got %#x", c.A)
	}
	if c.F != 0x00 {
		t.Fatalf("expected F=0x00, got %#x", c.F)
	}
	if cyclesB != 2 {
		t.Fatalf("expected ADD A,n8 to cost 2 M-cycles, got %d", cyclesB)
	}
	if c.PC != 0x0154 {
		t.Fatalf("expected PC=0x0154, got %#x", c.PC)
	}
}

func TestXorASetsZeroFlag(t *testing.T) {
	c, _ := newTestCPU(t, 0xAF) // XOR A
	cycles := c.Step()
	if c.A != 0x00 {
		t.Fatalf("expected A=0x00, got %#x", c.A)
	}
	if c.F != 1<<FlagZero {
		t.Fatalf("expected only Z set, got F=%#x", c.F)
	}
	if cycles != 1 {
		t.Fatalf("expected XOR A to cost 1 M-cycle, got %d", cycles)
	}
}

func TestAddHalfCarry(t *testing.T) {
	// LD A,0x0F ; ADD A,0x01
	c, _ := newTestCPU(t, 0x3E, 0x0F, 0xC6, 0x01)
	c.Step()
	c.Step()
	if c.A != 0x10 {
		t.Fatalf("expected A=0x10, got %#x", c.A)
	}
	if !c.flag(FlagHalfCarry) {
		t.Fatal("expected half-carry flag set")
	}
	if c.flag(FlagZero) || c.flag(FlagSubtract) || c.flag(FlagCarry) {
		t.Fatalf("expected only H set, got F=%#x", c.F)
	}
}

func TestDecJrLoop(t *testing.T) {
	// LD B,5 ; loop: DEC B ; JR NZ,loop
	c, _ := newTestCPU(t, 0x06, 0x05, 0x05, 0x20, 0xFD)
	total := 0
	total += c.Step() // LD B,5 -> 2
	for i := 0; i < 5; i++ {
		total += c.Step() // DEC B -> 1
		total += c.Step() // JR NZ -> 3 taken, 2 not taken
	}
	if c.B != 0 {
		t.Fatalf("expected B=0, got %d", c.B)
	}
	// 2 (LD) + 5*1 (DEC) + 4*3 (JR taken) + 1*2 (JR not taken) = 21
	if total != 21 {
		t.Fatalf("expected 21 M-cycles total, got %d", total)
	}
}

func TestCallAndRet(t *testing.T) {
	// CALL 0x0158 ; ... ; at 0x0158: RET
	program := make([]uint8, 0x10)
	program[0] = 0xCD // CALL a16
	program[1] = 0x58
	program[2] = 0x01
	program[0x08] = 0xC9 // RET, at 0x0150+0x08 = 0x0158
	c, _ := newTestCPU(t, program...)

	before := c.SP
	cycles := c.Step() // CALL
	if cycles != 6 {
		t.Fatalf("expected CALL to cost 6 M-cycles, got %d", cycles)
	}
	if c.PC != 0x0158 {
		t.Fatalf("expected PC=0x0158 after CALL, got %#x", c.PC)
	}
	if c.SP != before-2 {
		t.Fatalf("expected SP to drop by 2, got %#x", c.SP)
	}

	retCycles := c.Step() // RET
	if retCycles != 4 {
		t.Fatalf("expected RET to cost 4 M-cycles, got %d", retCycles)
	}
	if c.PC != 0x0153 {
		t.Fatalf("expected PC restored to 0x0153, got %#x", c.PC)
	}
	if c.SP != before {
		t.Fatalf("expected SP restored, got %#x", c.SP)
	}
}

func TestHaltWakesOnPendingInterrupt(t *testing.T) {
	c, irq := newTestCPU(t, 0x76) // HALT
	irq.IME = false
	c.Step() // enters HALT

	irq.Enable = 0x01
	irq.Request(0x01)

	cycles := c.Step()
	if cycles != 1 {
		t.Fatalf("expected one idle M-cycle while halted, got %d", cycles)
	}
	if c.mode != modeNormal {
		t.Fatal("expected HALT to end once an enabled interrupt is pending")
	}
}

func TestEIDelaysIMEByOneInstruction(t *testing.T) {
	c, irq := newTestCPU(t, 0xFB, 0x00, 0x00) // EI ; NOP ; NOP
	c.Step()                                  // EI: IME not yet set
	if irq.IME {
		t.Fatal("expected IME to still be false immediately after EI")
	}
	c.Step() // NOP: IME becomes true after this instruction
	if !irq.IME {
		t.Fatal("expected IME to be true after the instruction following EI")
	}
}

func TestEIThenDILeavesIMEClear(t *testing.T) {
	c, irq := newTestCPU(t, 0xFB, 0xF3) // EI ; DI
	c.Step()
	c.Step()
	if irq.IME {
		t.Fatal("expected EI immediately followed by DI to leave IME clear")
	}
}

func TestInterruptDispatchPushesPCAndJumps(t *testing.T) {
	c, irq := newTestCPU(t, 0x00, 0x00) // NOP ; NOP
	irq.IME = true
	irq.Enable = 0x01 // VBlank
	irq.Request(0x01)

	startPC := c.PC
	c.Step()
	if c.PC != 0x0040 { // VBlank vector
		t.Fatalf("expected PC at VBlank vector 0x0040, got %#x", c.PC)
	}
	if irq.IME {
		t.Fatal("expected IME cleared after dispatch")
	}
	returnAddr := uint16(c.bus.Read(c.SP)) | uint16(c.bus.Read(c.SP+1))<<8
	if returnAddr != startPC {
		t.Fatalf("expected pushed return address %#x, got %#x", startPC, returnAddr)
	}
}

func TestCBBitInstruction(t *testing.T) {
	// LD A,0x80 ; CB 7F -> BIT 7,A
	c, _ := newTestCPU(t, 0x3E, 0x80, 0xCB, 0x7F)
	c.Step()
	cycles := c.Step()
	if cycles != 2 {
		t.Fatalf("expected BIT b,r to cost 2 M-cycles, got %d", cycles)
	}
	if c.flag(FlagZero) {
		t.Fatal("expected Z clear since bit 7 of 0x80 is set")
	}
	if !c.flag(FlagHalfCarry) {
		t.Fatal("expected H always set after BIT")
	}
}
