// Package serial implements the Game Boy's serial port: the SB/SC
// register pair, a shift register clocked either internally or by
// an attached Device, plus the write-to-SB debug buffer that Blargg's
// and Mooneye's test ROMs use to report pass/fail text.
package serial

import (
	"gbcore/internal/interrupts"
	"gbcore/internal/types"
)

// Device is an accessory that can be attached to the serial port: a
// link-cable peer, a null terminator, or the Game Boy Printer.
type Device interface {
	// Receive delivers a bit shifted out of the Game Boy.
	Receive(bit bool)
	// Send returns the bit the device is shifting in.
	Send() bool
}

// nullDevice answers every shift with a released (1) line and discards
// whatever is sent to it; it is what real hardware sees with no link
// cable plugged in.
type nullDevice struct{}

func (nullDevice) Receive(bool) {}
func (nullDevice) Send() bool   { return true }

const ticksPerBit = 512 // 8192 Hz at normal speed: 4194304/8192/... per bit-shift

// Controller is the SB/SC register pair and its shift clock.
type Controller struct {
	data    uint8
	control uint8 // bit7 = transfer start/active, bit0 = clock source (1=internal)

	clock   int
	bitsLeft int

	device Device
	irq    *interrupts.Controller

	// DebugBuffer accumulates every byte written to SB, in write order;
	// test ROMs (Blargg, Mooneye) use the serial port purely to print
	// ASCII progress/pass-fail text, and this is how a host or test
	// harness reads it back without needing a working link partner.
	DebugBuffer []byte
}

// New returns a Controller with no device attached.
func New(irq *interrupts.Controller) *Controller {
	return &Controller{irq: irq, device: nullDevice{}, control: 0x7E}
}

// Attach plugs in d as the remote end of the link cable.
func (c *Controller) Attach(d Device) {
	c.device = d
}

func (c *Controller) Read(addr types.Addr) uint8 {
	if addr == types.SB {
		return c.data
	}
	return c.control | 0x7E
}

func (c *Controller) Write(addr types.Addr, v uint8) {
	if addr == types.SB {
		c.data = v
		c.DebugBuffer = append(c.DebugBuffer, v)
		return
	}
	// SC
	c.control = v & 0x81
	if c.control&types.Bit7 != 0 && c.control&types.Bit0 != 0 {
		// only the internal clock actually drives a transfer here; an
		// external clock source waits for a peer to drive it, which
		// nullDevice never does.
		c.bitsLeft = 8
		c.clock = 0
	}
}

// Step advances the shift clock by t T-cycles.
func (c *Controller) Step(t int) {
	if c.bitsLeft == 0 {
		return
	}
	c.clock += t
	for c.clock >= ticksPerBit && c.bitsLeft > 0 {
		c.clock -= ticksPerBit
		out := c.data&types.Bit7 != 0
		c.device.Receive(out)
		in := c.device.Send()
		c.data <<= 1
		if in {
			c.data |= 1
		}
		c.bitsLeft--
		if c.bitsLeft == 0 {
			c.control &^= types.Bit7
			c.irq.Request(interrupts.Serial)
		}
	}
}

func (c *Controller) Save(s *types.State) {
	s.Write8(c.data)
	s.Write8(c.control)
	s.Write32(uint32(c.clock))
	s.Write32(uint32(c.bitsLeft))
}

func (c *Controller) Load(s *types.State) {
	c.data = s.Read8()
	c.control = s.Read8()
	c.clock = int(s.Read32())
	c.bitsLeft = int(s.Read32())
}

var _ types.Stater = (*Controller)(nil)
