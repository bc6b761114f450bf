package cheats

import (
	"fmt"
	"strconv"
	"strings"
)

// GameGenieCode is one decoded nine-digit code, formatted ABC-DEF-GHI:
// AB is the replacement byte, FCDE is the ROM address XORed with
// 0xF000, and GI (with H discarded) is the original byte XORed with
// 0xBA then rotated left by two.
type GameGenieCode struct {
	NewData uint8
	Address uint16
	OldData uint8

	Name    string
	Enabled bool
}

func parseGameGenie(code string) (GameGenieCode, error) {
	var c GameGenieCode
	if len(code) != 11 || code[3] != '-' || code[7] != '-' {
		return c, fmt.Errorf("cheats: game genie code must be formatted ABC-DEF-GHI, got %q", code)
	}
	digits := strings.ReplaceAll(code, "-", "")

	ab, err := strconv.ParseUint(digits[0:2], 16, 8)
	if err != nil {
		return c, fmt.Errorf("cheats: bad game genie code %q: %w", code, err)
	}
	c.NewData = uint8(ab)

	// CDEF on the wire, rearranged to FCDE
	fcde, err := strconv.ParseUint(digits[5:6]+digits[2:5], 16, 16)
	if err != nil {
		return c, fmt.Errorf("cheats: bad game genie code %q: %w", code, err)
	}
	c.Address = uint16(fcde) ^ 0xF000

	gi, err := strconv.ParseUint(digits[6:7]+digits[8:9], 16, 8)
	if err != nil {
		return c, fmt.Errorf("cheats: bad game genie code %q: %w", code, err)
	}
	old := uint8(gi) ^ 0xBA
	c.OldData = old<<2 | old>>6
	return c, nil
}
