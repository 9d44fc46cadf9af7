// Package serial implements the SB/SC register pair. Test ROMs drive
// this link cable by writing the byte to send to SB, then setting
// bit 7 of SC to start a transfer; with no link partner attached this
// core captures the byte into a log rather than simulating the bit
// clock the way the teacher's scheduler-driven Controller does.
package serial

import "github.com/hhowser/gbcore/internal/types"

// Controller holds the two serial registers and the outbound byte
// log test ROMs write their textual output through.
type Controller struct {
	sb  uint8
	sc  uint8
	log []uint8
}

// NewController returns a Controller with SC at its post-boot value.
func NewController() *Controller {
	return &Controller{sc: 0x7E}
}

func (c *Controller) ReadSB() uint8 {
	return c.sb
}

func (c *Controller) WriteSB(v uint8) {
	c.sb = v
}

// ReadSC returns SC with its unused bits 1-6 always set.
func (c *Controller) ReadSC() uint8 {
	return c.sc | 0x7E
}

// WriteSC stores the control byte; a bit-7 write captures the current
// SB byte into the log and is otherwise a no-op, since this core does
// not emulate an attached link-cable partner.
func (c *Controller) WriteSC(v uint8) {
	c.sc = v & 0x81
	if v&0x80 != 0 {
		c.log = append(c.log, c.sb)
	}
}

// Log returns every byte captured via a bit-7 SC write, in order.
func (c *Controller) Log() []uint8 {
	return c.log
}

var _ types.Stater = (*Controller)(nil)

func (c *Controller) Save(st *types.State) {
	st.Write8(c.sb)
	st.Write8(c.sc)
	st.Write32(uint32(len(c.log)))
	st.WriteData(c.log)
}

func (c *Controller) Load(st *types.State) {
	c.sb = st.Read8()
	c.sc = st.Read8()
	n := st.Read32()
	c.log = make([]uint8, n)
	st.ReadData(c.log)
}
