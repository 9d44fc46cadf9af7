package cpu

// jr implements JR e8 / JR cc,e8. The offset is always fetched; the
// jump itself costs one more internal M-cycle, paid only when taken.
func (c *CPU) jr(taken bool) {
	offset := int8(c.fetch())
	if taken {
		c.tickInternal()
		c.PC = uint16(int32(c.PC) + int32(offset))
	}
}

// jp implements JP a16 / JP cc,a16. Both operand bytes are always
// fetched; loading PC from them costs one more internal M-cycle, paid
// only when taken.
func (c *CPU) jp(taken bool) {
	lo := c.fetch()
	hi := c.fetch()
	addr := uint16(hi)<<8 | uint16(lo)
	if taken {
		c.tickInternal()
		c.PC = addr
	}
}

// call implements CALL a16 / CALL cc,a16. The return address is pushed
// only when the call is taken.
func (c *CPU) call(taken bool) {
	lo := c.fetch()
	hi := c.fetch()
	addr := uint16(hi)<<8 | uint16(lo)
	if taken {
		c.tickInternal()
		c.SP--
		c.writeByte(c.SP, uint8(c.PC>>8))
		c.SP--
		c.writeByte(c.SP, uint8(c.PC))
		c.PC = addr
	}
}

// ret implements RET / RET cc / RETI. hasCondition distinguishes RET
// (no condition-check cycle) from the four conditional forms (which
// spend one M-cycle testing the flag regardless of outcome).
func (c *CPU) ret(taken bool, hasCondition bool) {
	if hasCondition {
		c.tickInternal()
	}
	if taken {
		lo := c.readByte(c.SP)
		c.SP++
		hi := c.readByte(c.SP)
		c.SP++
		c.tickInternal()
		c.PC = uint16(hi)<<8 | uint16(lo)
	}
}

func (c *CPU) reti() {
	c.ret(true, false)
	c.irq.IME = true
}

func (c *CPU) rst(addr uint16) {
	c.tickInternal()
	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))
	c.SP--
	c.writeByte(c.SP, uint8(c.PC))
	c.PC = addr
}

func (c *CPU) push(v uint16) {
	c.tickInternal()
	c.SP--
	c.writeByte(c.SP, uint8(v>>8))
	c.SP--
	c.writeByte(c.SP, uint8(v))
}

func (c *CPU) pop() uint16 {
	lo := c.readByte(c.SP)
	c.SP++
	hi := c.readByte(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}
