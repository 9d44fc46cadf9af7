// Package cpu implements the Sharp LR35902 interpreter: fetch-decode-
// execute through a 256+256-entry handler table, interrupt dispatch,
// and the HALT/STOP/EI-delay quirks test ROMs rely on.
package cpu

import (
	"github.com/hhowser/gbcore/internal/interrupts"
	"github.com/hhowser/gbcore/internal/mmu"
	"github.com/hhowser/gbcore/internal/types"
)

type mode uint8

const (
	modeNormal mode = iota
	modeHalt
	modeHaltBug
)

// CPU is the Sharp LR35902 core: registers, program counter, stack
// pointer, and the bus/interrupt service it drives.
type CPU struct {
	PC, SP uint16
	Registers

	bus *mmu.Bus
	irq *interrupts.Service

	mode mode

	// imeDelay counts down the one-instruction gap between EI and IME
	// actually taking effect: set to 1 when EI runs, consumed (and
	// IME set) at the top of the following step, 0 when idle.
	imeDelay uint8

	// cycles counts total M-cycles executed since construction.
	cycles uint64

	// Stopped is set by the STOP instruction or an illegal opcode.
	// Real hardware either enters low-power mode (STOP) or locks up
	// (illegal opcode); this core treats both as a terminal condition
	// the caller must check for, surfaced in detail via Err.
	Stopped bool

	// Err holds the fatal error that set Stopped, if any
	// (*StopExecutedError or *UnknownOpcodeError).
	Err error
}

// New returns a CPU at the post-boot register state, wired to bus and
// irq.
func New(bus *mmu.Bus, irq *interrupts.Service) *CPU {
	c := &CPU{PC: 0x0100, SP: 0xFFFE, bus: bus, irq: irq}
	c.Registers.init()
	c.A, c.F, c.B, c.C = 0x01, 0xB0, 0x00, 0x13
	c.D, c.E, c.H, c.L = 0x00, 0xD8, 0x01, 0x4D
	return c
}

// Step executes exactly one instruction (or one HALT-idle tick) and
// returns the number of M-cycles it cost.
func (c *CPU) Step() int {
	before := c.cycles

	// A pending EI takes effect here, before this step's own
	// fetch/execute - so "EI; DI" still leaves IME clear, since DI's
	// own effect runs after this point in the same step.
	eiTookEffect := false
	if c.imeDelay > 0 {
		c.imeDelay--
		if c.imeDelay == 0 {
			c.irq.IME = true
			eiTookEffect = true
		}
	}

	// The dispatch check runs here, before this step does anything
	// else - "the top of the next step" relative to whichever
	// instruction last ran. An interrupt already pending when Step is
	// called preempts this step's own fetch entirely, rather than
	// waiting for the instruction under the PC to run first. The one
	// exception is the step in which EI takes effect: the instruction
	// following EI always runs before any interrupt is dispatched.
	if c.irq.IME && c.irq.Pending() && !eiTookEffect {
		c.mode = modeNormal
		c.dispatchInterrupt()
		return int(c.cycles - before)
	}

	if c.mode == modeHalt {
		c.tickM()
		if c.irq.Pending() {
			c.mode = modeNormal
		}
	} else {
		opcode := c.fetch()
		if c.mode == modeHaltBug {
			c.PC--
			c.mode = modeNormal
		}
		c.execute(opcode)
	}

	return int(c.cycles - before)
}

func (c *CPU) execute(opcode uint8) {
	if opcode == 0xCB {
		op := c.fetch()
		instructionSetCB[op].fn(c)
		return
	}
	instructionSet[opcode].fn(c)
}

// fetch reads the byte at PC, advancing PC and costing one M-cycle.
func (c *CPU) fetch() uint8 {
	v := c.readByte(c.PC)
	c.PC++
	return v
}

func (c *CPU) readByte(addr uint16) uint8 {
	c.tickM()
	return c.bus.Read(addr)
}

func (c *CPU) writeByte(addr uint16, v uint8) {
	c.tickM()
	c.bus.Write(addr, v)
}

// tickInternal costs one M-cycle with no bus access: 16-bit
// register moves, 16-bit INC/DEC, and the extra SP-relative cycles.
func (c *CPU) tickInternal() {
	c.tickM()
}

func (c *CPU) tickM() {
	c.bus.TickM()
	c.cycles++
}

// halt enters HALT. The HALT bug triggers when IME is clear but an
// interrupt is already pending: the next instruction fetch re-reads
// the same byte, because the PC increment that should have happened
// is skipped by real hardware.
func (c *CPU) halt() {
	if !c.irq.IME && c.irq.Pending() {
		c.mode = modeHaltBug
		return
	}
	c.mode = modeHalt
}

// ei schedules IME to be set at the top of the next step; Step then
// holds off dispatch until the instruction following EI completes,
// per hardware's one-instruction delay.
func (c *CPU) ei() {
	c.imeDelay = 1
}

func (c *CPU) dispatchInterrupt() {
	vector, ok := c.irq.Dispatch()
	if !ok {
		return
	}
	c.irq.IME = false

	c.tickInternal()
	c.tickInternal()

	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))
	c.SP--
	c.writeByte(c.SP, uint8(c.PC))

	c.tickInternal()
	c.PC = vector
}

var _ types.Stater = (*CPU)(nil)

func (c *CPU) Save(st *types.State) {
	st.Write16(c.PC)
	st.Write16(c.SP)
	st.Write8(c.A)
	st.Write8(c.F)
	st.Write8(c.B)
	st.Write8(c.C)
	st.Write8(c.D)
	st.Write8(c.E)
	st.Write8(c.H)
	st.Write8(c.L)
	st.Write8(uint8(c.mode))
	st.WriteBool(c.Stopped)
}

func (c *CPU) Load(st *types.State) {
	c.PC = st.Read16()
	c.SP = st.Read16()
	c.A = st.Read8()
	c.F = st.Read8()
	c.B = st.Read8()
	c.C = st.Read8()
	c.D = st.Read8()
	c.E = st.Read8()
	c.H = st.Read8()
	c.L = st.Read8()
	c.mode = mode(st.Read8())
	c.Stopped = st.ReadBool()
}
