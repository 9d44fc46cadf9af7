package cpu

// Flag bit positions within F.
const (
	FlagZero      uint8 = 7
	FlagSubtract  uint8 = 6
	FlagHalfCarry uint8 = 5
	FlagCarry     uint8 = 4
)

func (c *CPU) flag(f uint8) bool {
	return c.F&(1<<f) != 0
}

func (c *CPU) setFlag(f uint8, v bool) {
	if v {
		c.F |= 1 << f
	} else {
		c.F &^= 1 << f
	}
}

// setFlags sets all four flags at once, the shape every ALU helper in
// this package uses.
func (c *CPU) setFlags(z, n, h, cy bool) {
	c.setFlag(FlagZero, z)
	c.setFlag(FlagSubtract, n)
	c.setFlag(FlagHalfCarry, h)
	c.setFlag(FlagCarry, cy)
}
