package cpu

// execute dispatches a fetched main-page opcode using the SM83's
// regular x/y/z/p/q bitfield decomposition (the same structure
// documented in every SM83 opcode table): x = bits 7-6, y = bits 5-3,
// z = bits 2-0, p = y>>1, q = y&1. This keeps the ~245 defined opcodes
// as a handful of table-driven branches instead of 245 hand-written
// cases.
func (c *CPU) execute(op uint8) {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		c.executeBlock0(op, y, z, p, q)
	case 1:
		c.executeBlock1(y, z)
	case 2:
		c.aluOp(y, c.r8(z))
	case 3:
		c.executeBlock3(op, y, z, p, q)
	}
}

func (c *CPU) executeBlock0(op, y, z, p, q uint8) {
	switch z {
	case 0:
		switch {
		case y == 0: // NOP
		case y == 1: // LD (a16),SP
			addr := c.fetch16()
			c.writeByte(addr, uint8(c.SP))
			c.writeByte(addr+1, uint8(c.SP>>8))
		case y == 2: // STOP
			c.fetch() // STOP is always 2 bytes
			if c.bus.SpeedSwitch() {
				c.doubleSpeed = !c.doubleSpeed
				c.tick(2560)
			} else {
				// DMG STOP (or CGB without an armed speed switch) is
				// undefined hardware behavior; model it as the CPU
				// idling rather than crashing the host process.
				c.Stopped = true
			}
		case y == 3: // JR d
			c.jrRelative(true)
		default: // JR cc,d
			c.jrRelative(c.cond(y - 4))
		}
	case 1:
		if q == 0 { // LD r16[p],d16
			c.setR16(p, c.fetch16())
		} else { // ADD HL,r16[p]
			c.tick(1)
			c.addHL(c.r16(p))
		}
	case 2:
		addr := c.r16MemAddr(p)
		if q == 0 {
			c.writeByte(addr, c.AF.Hi)
		} else {
			c.AF.Hi = c.readByte(addr)
		}
	case 3:
		c.tick(1)
		if q == 0 {
			c.setR16(p, c.r16(p)+1)
		} else {
			c.setR16(p, c.r16(p)-1)
		}
	case 4:
		c.setR8(y, c.inc8(c.r8(y)))
	case 5:
		c.setR8(y, c.dec8(c.r8(y)))
	case 6:
		c.setR8(y, c.fetch())
	case 7:
		switch y {
		case 0:
			c.rlca()
		case 1:
			c.rrca()
		case 2:
			c.rla()
		case 3:
			c.rra()
		case 4:
			c.daa()
		case 5:
			c.cpl()
		case 6:
			c.scf()
		case 7:
			c.ccf()
		}
	}
}

func (c *CPU) executeBlock1(y, z uint8) {
	if y == 6 && z == 6 {
		// HALT: if IME is clear and an interrupt is already pending,
		// the next instruction byte is fetched but PC does not
		// advance (the documented halt bug), instead of halting.
		if !c.irq.IME && c.irq.HasPending() {
			c.haltBug = true
		} else {
			c.Halted = true
		}
		return
	}
	c.setR8(y, c.r8(z))
}

func (c *CPU) executeBlock3(op, y, z, p, q uint8) {
	switch z {
	case 0:
		switch {
		case y <= 3: // RET cc
			c.retConditional(c.cond(y))
		case y == 4: // LDH (a8),A
			addr := 0xFF00 | uint16(c.fetch())
			c.writeByte(addr, c.AF.Hi)
		case y == 5: // ADD SP,e8
			e := int8(c.fetch())
			c.SP = c.addSPRelative(e)
			c.tick(1)
			c.tick(1)
		case y == 6: // LDH A,(a8)
			addr := 0xFF00 | uint16(c.fetch())
			c.AF.Hi = c.readByte(addr)
		case y == 7: // LD HL,SP+e8
			e := int8(c.fetch())
			c.HL.SetFull(c.addSPRelative(e))
			c.tick(1)
		}
	case 1:
		if q == 0 { // POP r16stk[p]
			c.setR16Stk(p, c.pop())
		} else {
			switch p {
			case 0: // RET
				c.ret(true)
			case 1: // RETI
				c.irq.IME = true
				c.ret(true)
			case 2: // JP HL
				c.PC = c.HL.Full()
			case 3: // LD SP,HL
				c.SP = c.HL.Full()
				c.tick(1)
			}
		}
	case 2:
		switch {
		case y <= 3: // JP cc,a16
			c.jpAbsolute(c.cond(y))
		case y == 4: // LD (0xFF00+C),A
			c.writeByte(0xFF00|uint16(c.BC.Lo), c.AF.Hi)
		case y == 5: // LD (a16),A
			c.writeByte(c.fetch16(), c.AF.Hi)
		case y == 6: // LD A,(0xFF00+C)
			c.AF.Hi = c.readByte(0xFF00 | uint16(c.BC.Lo))
		case y == 7: // LD A,(a16)
			c.AF.Hi = c.readByte(c.fetch16())
		}
	case 3:
		switch y {
		case 0: // JP a16
			c.jpAbsolute(true)
		case 1: // CB prefix
			c.executeCB(c.fetch())
		case 6: // DI
			c.irq.IME = false
			c.eiDelay = 0
		case 7: // EI
			c.eiDelay = 2
		}
	case 4: // CALL cc,a16
		if y <= 3 {
			c.call(c.cond(y))
		}
	case 5:
		if q == 0 { // PUSH r16stk[p]
			c.tick(1)
			c.push(c.r16Stk(p))
		} else if p == 0 { // CALL a16
			c.call(true)
		}
	case 6: // alu[y] A,d8
		c.aluOp(y, c.fetch())
	case 7: // RST y*8
		c.rst(uint16(y) * 8)
	}
}

// aluOp applies one of the 8 ALU operations (ADD ADC SUB SBC AND XOR
// OR CP) selecting y against the accumulator and operand.
func (c *CPU) aluOp(y uint8, operand uint8) {
	a := c.AF.Hi
	switch y {
	case 0:
		c.AF.Hi = c.add8(a, operand, false)
	case 1:
		c.AF.Hi = c.add8(a, operand, c.Flag(FlagC))
	case 2:
		c.AF.Hi = c.sub8(a, operand, false)
	case 3:
		c.AF.Hi = c.sub8(a, operand, c.Flag(FlagC))
	case 4:
		c.AF.Hi = c.and8(a, operand)
	case 5:
		c.AF.Hi = c.xor8(a, operand)
	case 6:
		c.AF.Hi = c.or8(a, operand)
	case 7:
		c.cp8(a, operand)
	}
}
