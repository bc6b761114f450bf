package types

// Bit0-Bit7 name the eight bit positions of a byte; used throughout
// the register views (LCDC/STAT, SC, MBC5's rumble bit, RTC day-carry
// etc.) in place of raw shift literals.
const (
	Bit0 uint8 = 1 << iota
	Bit1
	Bit2
	Bit3
	Bit4
	Bit5
	Bit6
	Bit7
)
