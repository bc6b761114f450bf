package mbc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bankedROM builds a ROM of n 16 KiB banks where every byte of bank i
// reads i, so tests can assert which bank a read resolved to.
func bankedROM(banks int) []byte {
	rom := make([]byte, banks*0x4000)
	for i := 0; i < banks; i++ {
		for j := 0; j < 0x4000; j++ {
			rom[i*0x4000+j] = uint8(i)
		}
	}
	return rom
}

func TestMBC1BankZeroRemap(t *testing.T) {
	m := NewMBC1(bankedROM(64), 0)
	assert.Equal(t, uint8(1), m.ReadROM(0x4000), "power-on high bank is 1")

	m.WriteROM(0x2000, 0x00)
	assert.Equal(t, uint8(1), m.ReadROM(0x4000), "bank 0 reads as 1")

	// 0x20 has a zero low field, so it also remaps; with the high
	// register set it resolves to 0x21
	m.WriteROM(0x4000, 0x01)
	m.WriteROM(0x2000, 0x00)
	assert.Equal(t, uint8(0x21), m.ReadROM(0x4000))
}

func TestMBC1BankingModes(t *testing.T) {
	m := NewMBC1(bankedROM(64), 32*1024)
	m.WriteROM(0x2000, 0x02)
	m.WriteROM(0x4000, 0x01)
	assert.Equal(t, uint8(0x22), m.ReadROM(0x4000))
	assert.Equal(t, uint8(0), m.ReadROM(0x0000), "mode 0: low region fixed at bank 0")

	m.WriteROM(0x6000, 0x01)
	assert.Equal(t, uint8(0x20), m.ReadROM(0x0000), "mode 1: high register affects the low region")
}

func TestMBC1RAMEnable(t *testing.T) {
	m := NewMBC1(bankedROM(4), 8*1024)
	m.WriteRAM(0x0000, 0x42)
	assert.Equal(t, uint8(0xFF), m.ReadRAM(0x0000), "disabled RAM reads 0xFF, writes dropped")

	m.WriteROM(0x0000, 0x0A)
	m.WriteRAM(0x0000, 0x42)
	assert.Equal(t, uint8(0x42), m.ReadRAM(0x0000))
}

func TestMBC2AddressBit8SelectsRegister(t *testing.T) {
	m := NewMBC2(bankedROM(16))
	// bit 8 clear: RAM enable
	m.WriteROM(0x0000, 0x0A)
	// bit 8 set: ROM bank
	m.WriteROM(0x0100, 0x05)
	assert.Equal(t, uint8(5), m.ReadROM(0x4000))

	// a bank write with bit 8 clear must not change the bank
	m.WriteROM(0x0000, 0x00) // this disables RAM instead
	assert.Equal(t, uint8(5), m.ReadROM(0x4000))
}

func TestMBC2NibbleRAM(t *testing.T) {
	m := NewMBC2(bankedROM(16))
	m.WriteROM(0x0000, 0x0A)
	m.WriteRAM(0x0000, 0xAB)
	assert.Equal(t, uint8(0x0B), m.ReadRAM(0x0000)&0x0F, "only the low nibble is stored")

	// the 512-entry RAM echoes through the whole window
	m.WriteRAM(0x0200, 0x07)
	assert.Equal(t, uint8(0x07), m.ReadRAM(0x0000)&0x0F)
}

func TestMBC3RTCLatchSequence(t *testing.T) {
	m := NewMBC3(bankedROM(16), 0, true)
	m.WriteROM(0x0000, 0x0A) // RAM/RTC enable
	m.WriteROM(0x4000, 0x08) // select RTC seconds

	m.RTC().Step(3 * cyclesPerSecond)
	assert.Equal(t, uint8(0), m.ReadRAM(0), "nothing latched yet")

	m.WriteROM(0x6000, 0x00)
	m.WriteROM(0x6000, 0x01)
	assert.Equal(t, uint8(3), m.ReadRAM(0), "0->1 sequence latched the counters")

	m.RTC().Step(2 * cyclesPerSecond)
	assert.Equal(t, uint8(3), m.ReadRAM(0), "latched value holds until the next latch")
}

func TestMBC3RTCHalt(t *testing.T) {
	m := NewMBC3(bankedROM(16), 0, true)
	m.WriteROM(0x0000, 0x0A)
	m.WriteROM(0x4000, 0x0C)
	m.WriteRAM(0, 0x40) // halt bit

	m.RTC().Step(10 * cyclesPerSecond)
	m.WriteROM(0x6000, 0x00)
	m.WriteROM(0x6000, 0x01)
	m.WriteROM(0x4000, 0x08)
	assert.Equal(t, uint8(0), m.ReadRAM(0), "halted clock does not advance")
}

func TestMBC3BankZeroRemap(t *testing.T) {
	m := NewMBC3(bankedROM(16), 0, false)
	m.WriteROM(0x2000, 0x00)
	assert.Equal(t, uint8(1), m.ReadROM(0x4000))
	m.WriteROM(0x2000, 0x0D)
	assert.Equal(t, uint8(0x0D), m.ReadROM(0x4000))
}

func TestMBC59BitBank(t *testing.T) {
	m := NewMBC5(bankedROM(512), 0, false)
	m.WriteROM(0x2000, 0x34)
	m.WriteROM(0x3000, 0x01) // 9th bit
	assert.Equal(t, uint8(0x34), m.ReadROM(0x4000), "bank 0x134, tagged with its number's low byte")

	// no zero remap on MBC5
	m.WriteROM(0x2000, 0x00)
	m.WriteROM(0x3000, 0x00)
	assert.Equal(t, uint8(0), m.ReadROM(0x4000))
}

func TestRTCDayCarry(t *testing.T) {
	r := NewRTC()
	r.WriteRegister(0x0B, 0xFF)
	r.WriteRegister(0x0C, 0x01) // day 0x1FF
	r.WriteRegister(0x0A, 23)
	r.WriteRegister(0x09, 59)
	r.WriteRegister(0x08, 59)

	r.AdvanceRealSeconds(1)
	r.Latch()
	require.Equal(t, uint8(0), r.ReadRegister(0x0B))
	assert.NotZero(t, r.ReadRegister(0x0C)&0x80, "day counter overflow sets the carry")
}
