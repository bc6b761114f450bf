package cheats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameGenieParse(t *testing.T) {
	// 00A-17B-C49: replacement 0x00 at address 0xBA17 ^ 0xF000 = 0x4A17
	c, err := parseGameGenie("00A-17B-C49")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x00), c.NewData)
	assert.Equal(t, uint16(0x4A17), c.Address)
}

func TestGameGenieRejectsMalformed(t *testing.T) {
	for _, code := range []string{"", "00A17BC49", "00A-17B-C4", "ZZZ-ZZZ-ZZZ", "00A+17B+C49"} {
		_, err := parseGameGenie(code)
		assert.Error(t, err, "code %q", code)
	}
}

func TestGameSharkParse(t *testing.T) {
	// 01FF16D0: bank 1, value 0xFF, address 0xD016
	c, err := parseGameShark("01FF16D0")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), c.RAMBank)
	assert.Equal(t, uint8(0xFF), c.NewData)
	assert.Equal(t, uint16(0xD016), c.Address)
}

func TestGameSharkRejectsROMAddresses(t *testing.T) {
	_, err := parseGameShark("01FF0010") // address 0x1000
	assert.Error(t, err)
}

func TestPatchROMRequiresMatchAndEnable(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddGameGenie("00A-17B-C49", "test"))

	// disabled: identity
	assert.Equal(t, uint8(0x55), r.PatchROM(0x4A17, 0x55))

	r.Enable("test")
	old := GameGenieCode{}
	for _, c := range r.genie {
		old = c
	}
	// only the expected original byte is replaced
	assert.Equal(t, uint8(0x00), r.PatchROM(0x4A17, old.OldData))
	assert.Equal(t, uint8(0x55), r.PatchROM(0x4A17, 0x55))
	assert.Equal(t, old.OldData, r.PatchROM(0x4A18, old.OldData), "wrong address untouched")

	r.Disable("test")
	assert.Equal(t, old.OldData, r.PatchROM(0x4A17, old.OldData))
}

func TestPatchRAM(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddGameShark("01FF16D0", "gold"))
	r.Enable("gold")

	assert.Equal(t, uint8(0xFF), r.PatchRAM(0xD016, 0x00))
	assert.Equal(t, uint8(0x12), r.PatchRAM(0xD017, 0x12))
}
