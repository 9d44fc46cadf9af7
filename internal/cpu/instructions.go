package cpu

// Instruction is one entry of the 256-slot dispatch table: a name for
// diagnostics and the handler that executes it. Handlers pay their own
// cycle cost by calling fetch/readByte/writeByte/tickInternal as the
// real bus transactions and internal cycles they represent occur,
// rather than consulting a separately maintained cycle-count table.
type Instruction struct {
	name string
	fn   func(c *CPU)
}

var instructionSet [256]Instruction
var instructionSetCB [256]Instruction

func define(opcode uint8, name string, fn func(c *CPU)) {
	instructionSet[opcode] = Instruction{name, fn}
}

func defineCB(opcode uint8, name string, fn func(c *CPU)) {
	instructionSetCB[opcode] = Instruction{name, fn}
}

var regName = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var pairName = [4]string{"BC", "DE", "HL", "SP"}
var stkName = [4]string{"BC", "DE", "HL", "AF"}

func init() {
	defineMiscInstructions()
	defineLoadInstructions()
	define16BitGroup()
	defineALUInstructions()
	defineControlFlow()
	defineCBInstructions()
}

func defineMiscInstructions() {
	define(0x00, "NOP", func(c *CPU) {})
	define(0x10, "STOP", func(c *CPU) {
		c.fetch() // STOP is followed by an ignored padding byte.
		c.Stopped = true
		c.Err = &StopExecutedError{PC: c.PC - 2}
	})
	define(0x76, "HALT", func(c *CPU) { c.halt() })
	define(0xF3, "DI", func(c *CPU) { c.irq.IME = false })
	define(0xFB, "EI", func(c *CPU) { c.ei() })
	define(0x07, "RLCA", func(c *CPU) { c.rlca() })
	define(0x0F, "RRCA", func(c *CPU) { c.rrca() })
	define(0x17, "RLA", func(c *CPU) { c.rla() })
	define(0x1F, "RRA", func(c *CPU) { c.rra() })
	define(0x27, "DAA", func(c *CPU) { c.daa() })
	define(0x2F, "CPL", func(c *CPU) { c.cpl() })
	define(0x37, "SCF", func(c *CPU) { c.scf() })
	define(0x3F, "CCF", func(c *CPU) { c.ccf() })

	for _, op := range []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		opcode := op
		define(opcode, "ILLEGAL", func(c *CPU) { c.illegal(opcode) })
	}
}

// illegal marks a hole in the opcode map. Real hardware locks up; this
// core reports it as a fatal, terminating error instead.
func (c *CPU) illegal(opcode uint8) {
	c.Stopped = true
	c.Err = c.snapshotError(opcode)
}

// defineLoadInstructions builds the LD r,r' block (0x40-0x7F, with
// 0x76 already claimed by HALT), the LD r,n8 / INC r / DEC r
// instructions, and the handful of irregular 8-bit loads through
// memory (LDH, (C), (HL+/-), (a16)).
func defineLoadInstructions() {
	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		if opcode == 0x76 {
			continue
		}
		dst := uint8(opcode>>3) & 7
		src := uint8(opcode) & 7
		name := "LD " + regName[dst] + "," + regName[src]
		define(uint8(opcode), name, func(c *CPU) {
			c.setReg8(dst, c.reg8(src))
		})
	}

	ldImmOpcodes := [8]uint8{0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E}
	for i, opcode := range ldImmOpcodes {
		dst := uint8(i)
		define(opcode, "LD "+regName[dst]+",n8", func(c *CPU) {
			c.setReg8(dst, c.fetch())
		})
	}

	incOpcodes := [8]uint8{0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C}
	for i, opcode := range incOpcodes {
		r := uint8(i)
		define(opcode, "INC "+regName[r], func(c *CPU) {
			c.setReg8(r, c.increment(c.reg8(r)))
		})
	}
	decOpcodes := [8]uint8{0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D}
	for i, opcode := range decOpcodes {
		r := uint8(i)
		define(opcode, "DEC "+regName[r], func(c *CPU) {
			c.setReg8(r, c.decrement(c.reg8(r)))
		})
	}

	define(0x02, "LD (BC),A", func(c *CPU) { c.writeByte(c.BC.Uint16(), c.A) })
	define(0x12, "LD (DE),A", func(c *CPU) { c.writeByte(c.DE.Uint16(), c.A) })
	define(0x0A, "LD A,(BC)", func(c *CPU) { c.A = c.readByte(c.BC.Uint16()) })
	define(0x1A, "LD A,(DE)", func(c *CPU) { c.A = c.readByte(c.DE.Uint16()) })

	define(0x22, "LD (HL+),A", func(c *CPU) {
		c.writeByte(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() + 1)
	})
	define(0x2A, "LD A,(HL+)", func(c *CPU) {
		c.A = c.readByte(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() + 1)
	})
	define(0x32, "LD (HL-),A", func(c *CPU) {
		c.writeByte(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() - 1)
	})
	define(0x3A, "LD A,(HL-)", func(c *CPU) {
		c.A = c.readByte(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() - 1)
	})

	define(0xE0, "LDH (a8),A", func(c *CPU) {
		addr := 0xFF00 | uint16(c.fetch())
		c.writeByte(addr, c.A)
	})
	define(0xF0, "LDH A,(a8)", func(c *CPU) {
		addr := 0xFF00 | uint16(c.fetch())
		c.A = c.readByte(addr)
	})
	define(0xE2, "LD (C),A", func(c *CPU) { c.writeByte(0xFF00|uint16(c.C), c.A) })
	define(0xF2, "LD A,(C)", func(c *CPU) { c.A = c.readByte(0xFF00 | uint16(c.C)) })

	define(0xEA, "LD (a16),A", func(c *CPU) {
		lo := c.fetch()
		hi := c.fetch()
		c.writeByte(uint16(hi)<<8|uint16(lo), c.A)
	})
	define(0xFA, "LD A,(a16)", func(c *CPU) {
		lo := c.fetch()
		hi := c.fetch()
		c.A = c.readByte(uint16(hi)<<8 | uint16(lo))
	})
}

// define16BitGroup builds LD rr,n16 / INC rr / DEC rr / ADD HL,rr
// (group-1: BC,DE,HL,SP) and PUSH/POP (group-2: BC,DE,HL,AF), plus the
// handful of irregular 16-bit moves.
func define16BitGroup() {
	ldOpcodes := [4]uint8{0x01, 0x11, 0x21, 0x31}
	for i, opcode := range ldOpcodes {
		r := uint8(i)
		define(opcode, "LD "+pairName[r]+",n16", func(c *CPU) {
			lo := c.fetch()
			hi := c.fetch()
			c.setRegPair(r, uint16(hi)<<8|uint16(lo))
		})
	}

	incOpcodes := [4]uint8{0x03, 0x13, 0x23, 0x33}
	for i, opcode := range incOpcodes {
		r := uint8(i)
		define(opcode, "INC "+pairName[r], func(c *CPU) {
			c.tickInternal()
			c.setRegPair(r, c.regPair(r)+1)
		})
	}
	decOpcodes := [4]uint8{0x0B, 0x1B, 0x2B, 0x3B}
	for i, opcode := range decOpcodes {
		r := uint8(i)
		define(opcode, "DEC "+pairName[r], func(c *CPU) {
			c.tickInternal()
			c.setRegPair(r, c.regPair(r)-1)
		})
	}
	addOpcodes := [4]uint8{0x09, 0x19, 0x29, 0x39}
	for i, opcode := range addOpcodes {
		r := uint8(i)
		define(opcode, "ADD HL,"+pairName[r], func(c *CPU) {
			c.tickInternal()
			c.addHL(c.regPair(r))
		})
	}

	pushOpcodes := [4]uint8{0xC5, 0xD5, 0xE5, 0xF5}
	for i, opcode := range pushOpcodes {
		r := uint8(i)
		define(opcode, "PUSH "+stkName[r], func(c *CPU) {
			c.push(c.regPairStk(r))
		})
	}
	popOpcodes := [4]uint8{0xC1, 0xD1, 0xE1, 0xF1}
	for i, opcode := range popOpcodes {
		r := uint8(i)
		define(opcode, "POP "+stkName[r], func(c *CPU) {
			c.setRegPairStk(r, c.pop())
		})
	}

	define(0x08, "LD (a16),SP", func(c *CPU) {
		lo := c.fetch()
		hi := c.fetch()
		addr := uint16(hi)<<8 | uint16(lo)
		c.writeByte(addr, uint8(c.SP))
		c.writeByte(addr+1, uint8(c.SP>>8))
	})
	define(0xF9, "LD SP,HL", func(c *CPU) {
		c.tickInternal()
		c.SP = c.HL.Uint16()
	})
	define(0xE8, "ADD SP,e8", func(c *CPU) {
		e := int8(c.fetch())
		c.SP = c.addSPSigned(e)
		c.tickInternal()
		c.tickInternal()
	})
	define(0xF8, "LD HL,SP+e8", func(c *CPU) {
		e := int8(c.fetch())
		c.HL.SetUint16(c.addSPSigned(e))
		c.tickInternal()
	})
}

// defineALUInstructions builds the ADD/ADC/SUB/SBC/AND/XOR/OR/CP A,r
// block (0x80-0xBF) and their A,n8 counterparts.
func defineALUInstructions() {
	ops := [8]func(c *CPU, n uint8){
		func(c *CPU, n uint8) { c.add(n, false) },
		func(c *CPU, n uint8) { c.add(n, true) },
		func(c *CPU, n uint8) { c.sub(n, false) },
		func(c *CPU, n uint8) { c.sub(n, true) },
		func(c *CPU, n uint8) { c.and(n) },
		func(c *CPU, n uint8) { c.xor(n) },
		func(c *CPU, n uint8) { c.or(n) },
		func(c *CPU, n uint8) { c.compare(n) },
	}
	names := [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}

	for opcode := 0x80; opcode <= 0xBF; opcode++ {
		op := uint8(opcode>>3) & 7
		src := uint8(opcode) & 7
		fn := ops[op]
		define(uint8(opcode), names[op]+" A,"+regName[src], func(c *CPU) {
			fn(c, c.reg8(src))
		})
	}

	immOpcodes := [8]uint8{0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE}
	for i, opcode := range immOpcodes {
		fn := ops[i]
		define(opcode, names[i]+" A,n8", func(c *CPU) {
			fn(c, c.fetch())
		})
	}
}

// defineControlFlow builds JR/JP/CALL/RET in both their unconditional
// and four-condition forms, plus RST.
func defineControlFlow() {
	define(0x18, "JR e8", func(c *CPU) { c.jr(true) })
	define(0xC3, "JP a16", func(c *CPU) { c.jp(true) })
	define(0xCD, "CALL a16", func(c *CPU) { c.call(true) })
	define(0xC9, "RET", func(c *CPU) { c.ret(true, false) })
	define(0xD9, "RETI", func(c *CPU) { c.reti() })
	define(0xE9, "JP HL", func(c *CPU) { c.PC = c.HL.Uint16() })

	type cc struct {
		flag uint8
		want bool
		jr   uint8
		jp   uint8
		call uint8
		ret  uint8
	}
	conds := []cc{
		{flag: FlagZero, want: false, jr: 0x20, jp: 0xC2, call: 0xC4, ret: 0xC0},
		{flag: FlagZero, want: true, jr: 0x28, jp: 0xCA, call: 0xCC, ret: 0xC8},
		{flag: FlagCarry, want: false, jr: 0x30, jp: 0xD2, call: 0xD4, ret: 0xD0},
		{flag: FlagCarry, want: true, jr: 0x38, jp: 0xDA, call: 0xDC, ret: 0xD8},
	}
	for _, cnd := range conds {
		flag, want := cnd.flag, cnd.want
		define(cnd.jr, "JR cc,e8", func(c *CPU) { c.jr(c.flag(flag) == want) })
		define(cnd.jp, "JP cc,a16", func(c *CPU) { c.jp(c.flag(flag) == want) })
		define(cnd.call, "CALL cc,a16", func(c *CPU) { c.call(c.flag(flag) == want) })
		define(cnd.ret, "RET cc", func(c *CPU) { c.ret(c.flag(flag) == want, true) })
	}

	rstOpcodes := [8]uint8{0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF}
	for i, opcode := range rstOpcodes {
		addr := uint16(i) * 8
		define(opcode, "RST", func(c *CPU) { c.rst(addr) })
	}
}

// defineCBInstructions builds the 0xCB-prefixed table: eight
// rotate/shift families over the eight register slots, then
// BIT/RES/SET over all eight bits and eight register slots.
func defineCBInstructions() {
	shiftOps := [8]func(c *CPU, n uint8) uint8{
		func(c *CPU, n uint8) uint8 { return c.rlc(n) },
		func(c *CPU, n uint8) uint8 { return c.rrc(n) },
		func(c *CPU, n uint8) uint8 { return c.rl(n) },
		func(c *CPU, n uint8) uint8 { return c.rr(n) },
		func(c *CPU, n uint8) uint8 { return c.sla(n) },
		func(c *CPU, n uint8) uint8 { return c.sra(n) },
		func(c *CPU, n uint8) uint8 { return c.swap(n) },
		func(c *CPU, n uint8) uint8 { return c.srl(n) },
	}
	shiftNames := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
	for block := 0; block < 8; block++ {
		fn := shiftOps[block]
		for r := 0; r < 8; r++ {
			opcode := uint8(block*8 + r)
			reg := uint8(r)
			defineCB(opcode, shiftNames[block]+" "+regName[reg], func(c *CPU) {
				c.setReg8(reg, fn(c, c.reg8(reg)))
			})
		}
	}

	for bit := 0; bit < 8; bit++ {
		b := uint8(bit)
		for r := 0; r < 8; r++ {
			reg := uint8(r)
			defineCB(uint8(0x40+bit*8+r), "BIT", func(c *CPU) { c.testBit(c.reg8(reg), b) })
			defineCB(uint8(0x80+bit*8+r), "RES", func(c *CPU) {
				c.setReg8(reg, resetBit(c.reg8(reg), b))
			})
			defineCB(uint8(0xC0+bit*8+r), "SET", func(c *CPU) {
				c.setReg8(reg, setBit(c.reg8(reg), b))
			})
		}
	}
}
