// Package interrupts implements the Game Boy's interrupt request/enable
// registers and vector dispatch. Every other component that can raise an
// interrupt (timer, joypad, serial, PPU) is handed a *Service and calls
// Request on it rather than holding a back-reference to the CPU - this
// is the "interrupt requester" capability from the core design notes.
package interrupts

import "github.com/hhowser/gbcore/internal/types"

// Flag bits, re-exported from types so callers that only need to
// request an interrupt don't also need to import types.
const (
	VBlankFlag = types.VBlankFlag
	LCDFlag    = types.LCDFlag
	TimerFlag  = types.TimerFlag
	SerialFlag = types.SerialFlag
	JoypadFlag = types.JoypadFlag
)

// Service holds IF (0xFF0F) and IE (0xFFFF), and the master-enable flag
// IME. An interrupt is dispatched by the CPU only when
// IME && (IF & IE & 0x1F) != 0.
type Service struct {
	Flag   uint8 // IF - bits 0-4 are meaningful, bits 5-7 always read as 1
	Enable uint8 // IE
	IME    bool
}

// NewService returns a Service with all interrupts disabled and IME
// cleared, matching the post-boot state.
func NewService() *Service {
	return &Service{}
}

// Request sets the given IF bit(s).
func (s *Service) Request(flag uint8) {
	s.Flag |= flag
}

// Pending reports whether any requested interrupt is also enabled,
// independent of IME - used by HALT to decide when to wake up.
func (s *Service) Pending() bool {
	return s.Enable&s.Flag&0x1F != 0
}

// ReadIF returns the IF register as the CPU/bus would see it: the
// unused upper three bits always read back as 1.
func (s *Service) ReadIF() uint8 {
	return s.Flag | 0xE0
}

// WriteIF updates IF from a CPU write; only the low 5 bits are stored.
func (s *Service) WriteIF(v uint8) {
	s.Flag = v & 0x1F
}

// Dispatch returns the vector address of the highest-priority pending
// and enabled interrupt, clearing its IF bit as a side effect, or
// returns ok=false if none is currently pending.
func (s *Service) Dispatch() (vector uint16, ok bool) {
	pending := s.Enable & s.Flag & 0x1F
	if pending == 0 {
		return 0, false
	}
	for i := uint8(0); i < 5; i++ {
		bit := uint8(1) << i
		if pending&bit != 0 {
			s.Flag &^= bit
			return types.InterruptVectors[i], true
		}
	}
	return 0, false
}

var _ types.Stater = (*Service)(nil)

func (s *Service) Save(st *types.State) {
	st.Write8(s.Flag)
	st.Write8(s.Enable)
	st.WriteBool(s.IME)
}

func (s *Service) Load(st *types.State) {
	s.Flag = st.Read8()
	s.Enable = st.Read8()
	s.IME = st.ReadBool()
}
