// Package types holds values shared across every hardware component:
// the address map, the DMG/CGB model switch and the Stater save-state
// contract used by every stateful component in the core.
package types

// Model selects which physical machine the core behaves as. A handful
// of components (the PPU's color pipeline, the WRAM/VRAM bank count,
// the boot sequence, the starting register values) branch on it.
type Model uint8

const (
	// DMG is the original monochrome Game Boy.
	DMG Model = iota
	// CGB is the Game Boy Color.
	CGB
)

func (m Model) String() string {
	if m == CGB {
		return "CGB"
	}
	return "DMG"
}

// Registers returns the post-boot A,F,B,C,D,E,H,L values used when no
// boot ROM is supplied; see Pan Docs "Power Up Sequence".
func (m Model) Registers() [8]uint8 {
	if m == CGB {
		return [8]uint8{0x11, 0x80, 0x00, 0x00, 0x00, 0x08, 0x00, 0x7C}
	}
	return [8]uint8{0x01, 0xB0, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D}
}
