package cheats

import (
	"fmt"
	"strconv"
)

// GameSharkCode is one decoded eight-digit code, formatted ABCDEFGH:
// AB is the external RAM bank, CD the replacement byte, and GHEF the
// little-endian target address.
type GameSharkCode struct {
	RAMBank uint8
	Address uint16
	NewData uint8

	Name    string
	Enabled bool
}

func parseGameShark(code string) (GameSharkCode, error) {
	var c GameSharkCode
	if len(code) != 8 {
		return c, fmt.Errorf("cheats: gameshark code must be 8 hex digits, got %q", code)
	}

	ab, err := strconv.ParseUint(code[0:2], 16, 8)
	if err != nil {
		return c, fmt.Errorf("cheats: bad gameshark code %q: %w", code, err)
	}
	c.RAMBank = uint8(ab)

	cd, err := strconv.ParseUint(code[2:4], 16, 8)
	if err != nil {
		return c, fmt.Errorf("cheats: bad gameshark code %q: %w", code, err)
	}
	c.NewData = uint8(cd)

	// EFGH on the wire, rearranged to GHEF
	efgh, err := strconv.ParseUint(code[6:8]+code[4:6], 16, 16)
	if err != nil {
		return c, fmt.Errorf("cheats: bad gameshark code %q: %w", code, err)
	}
	c.Address = uint16(efgh)

	if c.Address < 0xA000 || c.Address > 0xDFFF {
		return c, fmt.Errorf("cheats: gameshark code %q targets %04X, outside RAM", code, c.Address)
	}
	return c, nil
}
