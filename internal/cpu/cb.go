package cpu

// executeCB dispatches the 0xCB-prefixed page: rotate/shift (x=0),
// BIT (x=1), RES (x=2), SET (x=3), each against one of the 8 r8
// targets (z) and, for the rotate/shift block, one of 8 operations (y).
func (c *CPU) executeCB(op uint8) {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	switch x {
	case 0:
		c.setR8(z, c.shiftOp(y, c.r8(z)))
	case 1:
		c.bitTest(c.r8(z), y)
	case 2:
		c.setR8(z, c.bitRes(c.r8(z), y))
	case 3:
		c.setR8(z, c.bitSet(c.r8(z), y))
	}
}

func (c *CPU) shiftOp(y uint8, v uint8) uint8 {
	switch y {
	case 0:
		return c.rlc(v)
	case 1:
		return c.rrc(v)
	case 2:
		return c.rl(v)
	case 3:
		return c.rr(v)
	case 4:
		return c.sla(v)
	case 5:
		return c.sra(v)
	case 6:
		return c.swap(v)
	default:
		return c.srl(v)
	}
}
