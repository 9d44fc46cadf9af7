// Package timer implements the DIV/TIMA/TMA/TAC timer block. TIMA
// increments on a falling edge of one of DIV's internal bits, and an
// overflow is a two-stage event: the wrap to zero is only marked, and
// the reload from TMA plus the Timer interrupt request happen on the
// following tick. Test ROMs rely on this being two stages rather than
// one, so the teacher's single-glitch model is not reused here.
package timer

import (
	"github.com/hhowser/gbcore/internal/interrupts"
	"github.com/hhowser/gbcore/internal/types"
)

// selectedBit maps TAC's low two bits to the DIV bit position that
// drives TIMA: {9, 3, 5, 7} per the hardware's clock select encoding.
var selectedBit = [4]uint16{1 << 9, 1 << 3, 1 << 5, 1 << 7}

// Controller is the timer's register block and falling-edge detector.
type Controller struct {
	div uint16

	tima uint8
	tma  uint8
	tac  uint8

	lastBit    bool
	overflowed bool

	irq *interrupts.Service
}

// NewController returns a Controller wired to irq for Timer interrupt
// requests, with DIV and TAC at their post-boot reset values.
func NewController(irq *interrupts.Service) *Controller {
	return &Controller{irq: irq}
}

// Tick advances the timer by one dot (one T-cycle).
func (c *Controller) Tick() {
	if c.overflowed {
		c.overflowed = false
		c.tima = c.tma
		c.irq.Request(interrupts.TimerFlag)
	}

	c.div++

	enabled := c.tac&0x4 != 0
	bit := selectedBit[c.tac&0x3]
	newBit := enabled && c.div&bit != 0

	if !newBit && c.lastBit {
		c.tima++
		if c.tima == 0 {
			c.overflowed = true
		}
	}
	c.lastBit = newBit
}

// TickM advances the timer by one M-cycle (4 dots), for callers that
// tick the bus at M-cycle granularity.
func (c *Controller) TickM() {
	for i := 0; i < 4; i++ {
		c.Tick()
	}
}

// DIV returns the CPU-visible divider register: the high 8 bits of
// the internal 16-bit counter.
func (c *Controller) DIV() uint8 {
	return uint8(c.div >> 8)
}

// WriteDIV resets the entire internal counter to 0, regardless of the
// value written - any write to 0xFF04 clears it.
func (c *Controller) WriteDIV() {
	c.div = 0
	c.lastBit = false
}

func (c *Controller) TIMA() uint8 {
	return c.tima
}

// WriteTIMA stores a CPU-written value, cancelling any overflow marked
// this tick - writing TIMA before the reload lands takes precedence.
func (c *Controller) WriteTIMA(v uint8) {
	c.tima = v
	c.overflowed = false
}

func (c *Controller) TMA() uint8 {
	return c.tma
}

func (c *Controller) WriteTMA(v uint8) {
	c.tma = v
}

// TAC returns the register with its unused upper bits set.
func (c *Controller) TAC() uint8 {
	return c.tac | 0xF8
}

func (c *Controller) WriteTAC(v uint8) {
	c.tac = v & 0x7
}

var _ types.Stater = (*Controller)(nil)

func (c *Controller) Save(st *types.State) {
	st.Write16(c.div)
	st.Write8(c.tima)
	st.Write8(c.tma)
	st.Write8(c.tac)
	st.WriteBool(c.lastBit)
	st.WriteBool(c.overflowed)
}

func (c *Controller) Load(st *types.State) {
	c.div = st.Read16()
	c.tima = st.Read8()
	c.tma = st.Read8()
	c.tac = st.Read8()
	c.lastBit = st.ReadBool()
	c.overflowed = st.ReadBool()
}
