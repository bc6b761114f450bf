package cpu

// jr/jp/call/ret implement the control-flow family. Each charges the
// extra M-cycle the hardware spends only when the branch is actually
// taken, per the per-opcode cycle table.

func (c *CPU) jrRelative(taken bool) {
	offset := int8(c.fetch())
	if taken {
		c.PC = uint16(int32(c.PC) + int32(offset))
		c.tick(1)
	}
}

func (c *CPU) jpAbsolute(taken bool) {
	addr := c.fetch16()
	if taken {
		c.PC = addr
		c.tick(1)
	}
}

func (c *CPU) call(taken bool) {
	addr := c.fetch16()
	if taken {
		c.tick(1)
		c.push(c.PC)
		c.PC = addr
	}
}

func (c *CPU) ret(taken bool) {
	if taken {
		c.PC = c.pop()
		c.tick(1)
	}
}

// retConditional additionally charges the 1-cycle condition test that
// only conditional RET (not RET/RETI) pays, whether or not it branches.
func (c *CPU) retConditional(taken bool) {
	c.tick(1)
	c.ret(taken)
}

func (c *CPU) rst(addr uint16) {
	c.tick(1)
	c.push(c.PC)
	c.PC = addr
}
