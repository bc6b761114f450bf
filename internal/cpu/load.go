package cpu

// Register-index helpers implementing the SM83's standard 3-bit
// register encoding (B C D E H L (HL) A) and the two 2-bit 16-bit
// groupings (BC DE HL SP, and BC DE HL AF) used throughout the main
// opcode page. Centralizing the encoding here keeps decode.go a flat
// dispatch table instead of repeating switch/case register lookups.

func (c *CPU) r8(idx uint8) uint8 {
	switch idx {
	case 0:
		return c.BC.Hi
	case 1:
		return c.BC.Lo
	case 2:
		return c.DE.Hi
	case 3:
		return c.DE.Lo
	case 4:
		return c.HL.Hi
	case 5:
		return c.HL.Lo
	case 6:
		return c.readByte(c.HL.Full())
	default:
		return c.AF.Hi
	}
}

func (c *CPU) setR8(idx uint8, v uint8) {
	switch idx {
	case 0:
		c.BC.Hi = v
	case 1:
		c.BC.Lo = v
	case 2:
		c.DE.Hi = v
	case 3:
		c.DE.Lo = v
	case 4:
		c.HL.Hi = v
	case 5:
		c.HL.Lo = v
	case 6:
		c.writeByte(c.HL.Full(), v)
	default:
		c.AF.Hi = v
	}
}

func (c *CPU) r16(idx uint8) uint16 {
	switch idx {
	case 0:
		return c.BC.Full()
	case 1:
		return c.DE.Full()
	case 2:
		return c.HL.Full()
	default:
		return c.SP
	}
}

func (c *CPU) setR16(idx uint8, v uint16) {
	switch idx {
	case 0:
		c.BC.SetFull(v)
	case 1:
		c.DE.SetFull(v)
	case 2:
		c.HL.SetFull(v)
	default:
		c.SP = v
	}
}

// r16Stk is the PUSH/POP grouping: BC, DE, HL, AF in place of SP.
func (c *CPU) r16Stk(idx uint8) uint16 {
	if idx == 3 {
		return c.AF.Full()
	}
	return c.r16(idx)
}

func (c *CPU) setR16Stk(idx uint8, v uint16) {
	if idx == 3 {
		c.SetAF(v)
		return
	}
	c.setR16(idx, v)
}

// r16MemAddr is the LD A,(rr)/LD (rr),A grouping: BC, DE, HL+ (post-inc),
// HL- (post-dec).
func (c *CPU) r16MemAddr(idx uint8) uint16 {
	switch idx {
	case 0:
		return c.BC.Full()
	case 1:
		return c.DE.Full()
	case 2:
		addr := c.HL.Full()
		c.HL.SetFull(addr + 1)
		return addr
	default:
		addr := c.HL.Full()
		c.HL.SetFull(addr - 1)
		return addr
	}
}

func (c *CPU) cond(idx uint8) bool {
	switch idx {
	case 0:
		return !c.Flag(FlagZ)
	case 1:
		return c.Flag(FlagZ)
	case 2:
		return !c.Flag(FlagC)
	default:
		return c.Flag(FlagC)
	}
}
