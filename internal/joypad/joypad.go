// Package joypad emulates the Game Boy's P1/JOYP register: an 8-bit register whose low nibble reflects whichever button
// group the game has selected, with a falling edge on that nibble
// raising the joypad interrupt.
package joypad

import (
	"gbcore/internal/interrupts"
	"gbcore/internal/types"
)

// Button bits, matching the host-facing UpdateJoypad bit layout.
const (
	Right  uint8 = 1 << iota // action group is actually Start/Select/B/A, direction is Down/Up/Left/Right
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Controller holds the host's latched button snapshot and the P1
// selection bits written by the program. selectButtons/selectDirection
// are true when that group is active, i.e. when the program wrote a 0
// to the corresponding (active-low) P1 select bit.
type Controller struct {
	selectButtons   bool
	selectDirection bool

	// pressed is 1 for a pressed button (inverted from the register's
	// active-low convention, for readability).
	pressed uint8

	irq *interrupts.Controller
}

// New returns a Controller with no buttons pressed.
func New(irq *interrupts.Controller) *Controller {
	return &Controller{irq: irq}
}

// SetState replaces the host's button snapshot: 1 = released,
// 0 = pressed. A falling edge on
// the currently-selected nibble requests the joypad interrupt.
func (c *Controller) SetState(status uint8) {
	before := c.selectedNibble()
	c.pressed = ^status
	after := c.selectedNibble()
	// a falling edge is any nibble bit that read 1 (released) before
	// and reads 0 (pressed) now: set in before but clear in after.
	if before&^after != 0 {
		c.irq.Request(interrupts.Joypad)
	}
}

// selectedNibble returns the low nibble as it reads right now: each
// bit is 0 if that button is pressed and currently selected, 1 otherwise.
func (c *Controller) selectedNibble() uint8 {
	var n uint8 = 0x0F
	if c.selectDirection {
		n &= ^((c.pressed >> 0) & 0x0F) & 0x0F // Right,Left,Up,Down occupy bits 0-3
	}
	if c.selectButtons {
		n &= ^((c.pressed >> 4) & 0x0F) & 0x0F
	}
	return n
}

// Read implements the P1 register read. The selection bits read back
// as 0 when that group is selected (active-low), 1 otherwise; bits
// 6-7 are unused and read as 1.
func (c *Controller) Read(types.Addr) uint8 {
	v := uint8(0xC0) | c.selectedNibble()
	if !c.selectDirection {
		v |= types.Bit4
	}
	if !c.selectButtons {
		v |= types.Bit5
	}
	return v
}

// Write implements the P1 register write: only bits 4-5 are writable.
func (c *Controller) Write(_ types.Addr, v uint8) {
	before := c.selectedNibble()
	c.selectDirection = v&types.Bit4 == 0
	c.selectButtons = v&types.Bit5 == 0
	after := c.selectedNibble()
	if before&^after != 0 {
		c.irq.Request(interrupts.Joypad)
	}
}

func (c *Controller) Save(s *types.State) {
	s.Write8(c.pressed)
	s.WriteBool(c.selectButtons)
	s.WriteBool(c.selectDirection)
}

func (c *Controller) Load(s *types.State) {
	c.pressed = s.Read8()
	c.selectButtons = s.ReadBool()
	c.selectDirection = s.ReadBool()
}

var _ types.Stater = (*Controller)(nil)
