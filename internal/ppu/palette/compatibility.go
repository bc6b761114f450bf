package palette

// CompatibilityEntry is one boot-time palette assignment the CGB's
// boot ROM picks for a DMG/MGB cartridge lacking a CGB flag, keyed by
// a hash of the title bytes. This subset covers a handful of commonly
// emulated titles rather than the full ~80-entry boot ROM table;
// titles absent from the table fall back to
// DefaultCompatibilityEntry, which is the boot ROM's own fallback
// (grey BG, red/blue sprites).
type CompatibilityEntry struct {
	BG, OBJ0, OBJ1 [4]RGB
}

// CompatibilityPalettes is keyed by title checksum: the low byte of the
// sum of the title bytes, as Header.TitleChecksum computes it.
var CompatibilityPalettes = map[uint8]CompatibilityEntry{
	0x71: { // titles whose checksum is 0x71
		BG:   [4]RGB{{0xFF, 0xFF, 0xFF}, {0xAD, 0xAD, 0x84}, {0x42, 0x73, 0x7B}, {0x00, 0x00, 0x00}},
		OBJ0: [4]RGB{{0xFF, 0xFF, 0xFF}, {0xFF, 0x84, 0x84}, {0x94, 0x3A, 0x3A}, {0x00, 0x00, 0x00}},
		OBJ1: [4]RGB{{0xFF, 0xFF, 0xFF}, {0x52, 0xFF, 0x00}, {0xFF, 0x42, 0x00}, {0x00, 0x00, 0x00}},
	},
}

// DefaultCompatibilityEntry is used for any title not present in
// CompatibilityPalettes.
var DefaultCompatibilityEntry = CompatibilityEntry{
	BG:   [4]RGB{{0xFF, 0xFF, 0xFF}, {0xAD, 0xAD, 0x84}, {0x52, 0x52, 0x52}, {0x00, 0x00, 0x00}},
	OBJ0: [4]RGB{{0xFF, 0xFF, 0xFF}, {0xFF, 0x84, 0x84}, {0x94, 0x3A, 0x3A}, {0x00, 0x00, 0x00}},
	OBJ1: [4]RGB{{0xFF, 0xFF, 0xFF}, {0x63, 0xA5, 0xFF}, {0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00}},
}

// Lookup resolves a compatibility entry by title checksum, falling
// back to DefaultCompatibilityEntry.
func Lookup(titleChecksum uint8) CompatibilityEntry {
	if e, ok := CompatibilityPalettes[titleChecksum]; ok {
		return e
	}
	return DefaultCompatibilityEntry
}
