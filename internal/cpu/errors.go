package cpu

import "fmt"

// UnknownOpcodeError is raised when execution reaches one of the
// handful of opcode values the Sharp LR35902 never defines. Real
// hardware locks up; this core terminates emulation instead, since a
// well-formed ROM never hits one deliberately.
type UnknownOpcodeError struct {
	Opcode uint8
	PC     uint16
	A, F   uint8
	BC, DE, HL, SP uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("cpu: unknown opcode %#02x at pc=%#04x (a=%#02x f=%#02x sp=%#04x)",
		e.Opcode, e.PC, e.A, e.F, e.SP)
}

// StopExecutedError is raised when the STOP opcode runs. Real hardware
// enters low-power mode and waits for a button press; this engine
// reports it as fatal rather than modeling that wait.
type StopExecutedError struct {
	PC uint16
}

func (e *StopExecutedError) Error() string {
	return fmt.Sprintf("cpu: STOP executed at pc=%#04x", e.PC)
}

func (c *CPU) snapshotError(opcode uint8) *UnknownOpcodeError {
	return &UnknownOpcodeError{
		Opcode: opcode,
		PC:     c.PC - 1,
		A:      c.A,
		F:      c.F,
		BC:     c.BC.Uint16(),
		DE:     c.DE.Uint16(),
		HL:     c.HL.Uint16(),
		SP:     c.SP,
	}
}
