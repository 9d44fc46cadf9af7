// Package joypad implements the P1 register (0xFF00): two 4-bit button
// columns, selected by bits 4/5 and read back active-low on bits 0-3.
package joypad

import (
	"github.com/hhowser/gbcore/internal/bits"
	"github.com/hhowser/gbcore/internal/interrupts"
	"github.com/hhowser/gbcore/internal/types"
)

// Button identifies one of the eight physical buttons.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

// State holds the pressed/released bit for every button (0 = pressed,
// matching hardware polarity) plus the host's column selection.
type State struct {
	buttons    uint8 // bit i set = button i released
	selectBits uint8 // last-written bits 4-5, passed straight back through on read

	selectActions   bool
	selectDirection bool

	irq *interrupts.Service
}

// New returns a State with every button released and no column
// selected, wired to irq for Joypad interrupt requests.
func New(irq *interrupts.Service) *State {
	return &State{buttons: 0xFF, irq: irq}
}

// Press marks button as held. If the column it belongs to is
// currently selected, this raises the Joypad interrupt - release
// never does.
func (s *State) Press(button Button) {
	wasReleased := bits.Test(s.buttons, uint8(button))
	s.buttons = bits.Reset(s.buttons, uint8(button))
	if wasReleased && s.selects(button) {
		s.irq.Request(interrupts.JoypadFlag)
	}
}

// Release marks button as no longer held.
func (s *State) Release(button Button) {
	s.buttons = bits.Set(s.buttons, uint8(button))
}

func (s *State) selects(button Button) bool {
	if button <= ButtonStart {
		return s.selectActions
	}
	return s.selectDirection
}

// Read returns the P1 register as the CPU sees it: bits 4-5 pass
// straight through the last-written value (no polarity flip), bits
// 0-3 report whichever selected column(s) are held, active-low.
func (s *State) Read() uint8 {
	column := uint8(0xF)
	if s.selectActions {
		column &= s.buttons & 0xF
	}
	if s.selectDirection {
		column &= s.buttons >> 4
	}
	return 0xC0 | s.selectBits | column
}

// Write updates the column-select bits (4 and 5); the rest of the
// register is read-only. Selection is active-low and the two columns
// are independent - both, either, or neither may be selected at once.
func (s *State) Write(v uint8) {
	s.selectBits = v & 0x30
	s.selectActions = v&bits.Bit5 == 0
	s.selectDirection = v&bits.Bit4 == 0
}

var _ types.Stater = (*State)(nil)

func (s *State) Save(st *types.State) {
	st.Write8(s.buttons)
	st.Write8(s.selectBits)
	st.WriteBool(s.selectActions)
	st.WriteBool(s.selectDirection)
}

func (s *State) Load(st *types.State) {
	s.buttons = st.Read8()
	s.selectBits = st.Read8()
	s.selectActions = st.ReadBool()
	s.selectDirection = st.ReadBool()
}
