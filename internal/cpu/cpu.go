// Package cpu implements the SM83 instruction set: fetch/decode/execute,
// interrupt servicing, and the HALT/STOP power states.
package cpu

import (
	"gbcore/internal/interrupts"
	"gbcore/internal/types"
)

// Bus is the memory and peripheral surface the CPU drives.
// Intra-instruction accesses advance only the OAM DMA engine, the
// timer, and the APU's frame sequencer (PartialStep); PPU and APU
// sample production advance once per instruction, at its end (Step). This keeps mid-instruction timer
// edges exact while treating pixel/sample output as bulk-advanceable.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
	PartialStep(mCycles int)
	Step(mCycles int)

	// SpeedSwitch implements the CGB KEY1 handshake: if bit 0 of KEY1
	// is armed, it flips the bus's internal double-speed flag, updates
	// KEY1's visible bits, and returns true. A no-op returning false
	// on DMG or when the armed bit isn't set.
	SpeedSwitch() bool
}

// CPU is the SM83 core: registers, halt/stop state, and the interrupt
// master-enable flip-flop with its documented one-instruction EI delay.
type CPU struct {
	Registers

	bus Bus
	irq *interrupts.Controller

	Halted      bool
	Stopped     bool
	haltBug     bool // next fetch re-reads PC without incrementing it
	doubleSpeed bool

	// eiDelay counts down 2->1->0 after EI executes. IME flips to true
	// when it reaches 0, which is the step *after* the instruction
	// immediately following EI, not the one right after EI itself.
	// This guarantees that one full instruction always runs with the
	// pre-EI IME value.
	eiDelay int

	mCycles int // M-cycles consumed so far this Step call
}

// New constructs a CPU wired to bus and irq. Registers power on zeroed;
// callers that skip running a boot ROM image set the post-boot
// register values themselves.
func New(bus Bus, irq *interrupts.Controller) *CPU {
	return &CPU{bus: bus, irq: irq}
}

// SetDoubleSpeed toggles CGB double-speed mode, in which Step reports
// half as many T-cycles per M-cycle.
func (c *CPU) SetDoubleSpeed(v bool) { c.doubleSpeed = v }

// tick charges n M-cycles to the bus's intra-instruction step (DMA,
// timer, APU frame sequencer) and to this instruction's running total.
func (c *CPU) tick(n int) {
	c.mCycles += n
	c.bus.PartialStep(n)
}

func (c *CPU) readByte(addr uint16) uint8 {
	v := c.bus.Read(addr)
	c.tick(1)
	return v
}

func (c *CPU) writeByte(addr uint16, v uint8) {
	c.bus.Write(addr, v)
	c.tick(1)
}

func (c *CPU) fetch() uint8 {
	v := c.bus.Read(c.PC)
	if !c.haltBug {
		c.PC++
	} else {
		c.haltBug = false
	}
	c.tick(1)
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push(v uint16) {
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

// Step executes one instruction (or, if halted, one idle M-cycle),
// services at most one pending interrupt, and returns the T-cycles
// consumed.
func (c *CPU) Step() int {
	c.mCycles = 0

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.irq.IME = true
		}
	}

	if serviced := c.serviceInterrupt(); serviced {
		c.bus.Step(c.mCycles)
		return c.tCycles()
	}

	if c.Halted {
		c.tick(1)
		c.bus.Step(c.mCycles)
		return c.tCycles()
	}

	if c.Stopped {
		c.tick(1)
		c.bus.Step(c.mCycles)
		return c.tCycles()
	}

	opcode := c.fetch()
	c.execute(opcode)

	c.bus.Step(c.mCycles)
	return c.tCycles()
}

func (c *CPU) tCycles() int {
	if c.doubleSpeed {
		return c.mCycles * 2
	}
	return c.mCycles * 4
}

// serviceInterrupt runs the 5 M-cycle interrupt-dispatch sequence
// (two idle cycles, a 2-cycle PC push, a 1-cycle vector jump) when IME
// is set and a pending, enabled interrupt exists. HALT exits on a
// pending interrupt even when IME is clear, without servicing it.
func (c *CPU) serviceInterrupt() bool {
	kind, pending := c.irq.Pending()
	if !pending {
		return false
	}
	if c.Halted {
		c.Halted = false
	}
	if !c.irq.IME {
		return false
	}
	c.irq.IME = false
	c.irq.Clear(kind)

	c.tick(1)
	c.tick(1)
	c.push(c.PC)
	c.PC = kind.Vector()
	c.tick(1)
	return true
}

func (c *CPU) Save(s *types.State) {
	s.Write16(c.AF.Full())
	s.Write16(c.BC.Full())
	s.Write16(c.DE.Full())
	s.Write16(c.HL.Full())
	s.Write16(c.SP)
	s.Write16(c.PC)
	s.WriteBool(c.Halted)
	s.WriteBool(c.Stopped)
	s.WriteBool(c.haltBug)
	s.WriteBool(c.doubleSpeed)
	s.Write8(uint8(c.eiDelay))
}

func (c *CPU) Load(s *types.State) {
	c.SetAF(s.Read16())
	c.BC.SetFull(s.Read16())
	c.DE.SetFull(s.Read16())
	c.HL.SetFull(s.Read16())
	c.SP = s.Read16()
	c.PC = s.Read16()
	c.Halted = s.ReadBool()
	c.Stopped = s.ReadBool()
	c.haltBug = s.ReadBool()
	c.doubleSpeed = s.ReadBool()
	c.eiDelay = int(s.Read8())
}

var _ types.Stater = (*CPU)(nil)
