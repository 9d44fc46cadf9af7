package cpu

// reg8 and setReg8 address the eight places an opcode's 3-bit register
// field can name: B,C,D,E,H,L,[HL],A. Index 6, [HL], is the only one
// that costs a bus access - callers never need to special-case it.
func (c *CPU) reg8(i uint8) uint8 {
	switch i {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.readByte(c.HL.Uint16())
	default:
		return c.A
	}
}

func (c *CPU) setReg8(i uint8, v uint8) {
	switch i {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.writeByte(c.HL.Uint16(), v)
	default:
		c.A = v
	}
}

// regPair/setRegPair address the four 16-bit group-1 registers a
// bit-pattern can name: BC, DE, HL, SP.
func (c *CPU) regPair(i uint8) uint16 {
	switch i {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		return c.HL.Uint16()
	default:
		return c.SP
	}
}

func (c *CPU) setRegPair(i uint8, v uint16) {
	switch i {
	case 0:
		c.BC.SetUint16(v)
	case 1:
		c.DE.SetUint16(v)
	case 2:
		c.HL.SetUint16(v)
	default:
		c.SP = v
	}
}

// regPairStk/setRegPairStk address the group-2 register names PUSH/POP
// use: BC, DE, HL, AF (AF in place of SP). F's low nibble always reads
// back as zero.
func (c *CPU) regPairStk(i uint8) uint16 {
	switch i {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		return c.HL.Uint16()
	default:
		return c.AF.Uint16() &^ 0xF
	}
}

func (c *CPU) setRegPairStk(i uint8, v uint16) {
	switch i {
	case 0:
		c.BC.SetUint16(v)
	case 1:
		c.DE.SetUint16(v)
	case 2:
		c.HL.SetUint16(v)
	default:
		c.AF.SetUint16(v &^ 0xF)
	}
}
