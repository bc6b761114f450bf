package mbc

import "gbcore/internal/types"

// MBC2 is the 4-bit banking chip: a 4-bit ROM bank register and
// 512x4-bit built-in RAM, with the RAM-enable/bank-select write
// disambiguated by address bit 8.
type MBC2 struct {
	rom []byte
	ram [512]byte // only the low nibble of each byte is meaningful

	ramEnabled bool
	romBank    uint8 // 4 bits, 0 reads as 1
}

func NewMBC2(rom []byte) *MBC2 {
	return &MBC2{rom: rom, romBank: 1}
}

func (m *MBC2) bank() uint8 {
	if m.romBank == 0 {
		return 1
	}
	return m.romBank
}

func (m *MBC2) ReadROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return m.rom[romOffset(m.rom, 0, addr)]
	}
	return m.rom[romOffset(m.rom, uint16(m.bank()), addr-0x4000)]
}

func (m *MBC2) WriteROM(addr uint16, v uint8) {
	if addr >= 0x4000 {
		return
	}
	if addr&0x0100 == 0 {
		m.ramEnabled = v&0x0F == 0x0A
	} else {
		m.romBank = v & 0x0F
	}
}

func (m *MBC2) ReadRAM(addr uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	return m.ram[addr%512] | 0xF0
}

func (m *MBC2) WriteRAM(addr uint16, v uint8) {
	if !m.ramEnabled {
		return
	}
	m.ram[addr%512] = v & 0x0F
}

func (m *MBC2) RAM() []byte { return m.ram[:] }

func (m *MBC2) Save(s *types.State) {
	s.WriteData(m.ram[:])
	s.WriteBool(m.ramEnabled)
	s.Write8(m.romBank)
}

func (m *MBC2) Load(s *types.State) {
	s.ReadData(m.ram[:])
	m.ramEnabled = s.ReadBool()
	m.romBank = s.Read8()
}

var _ Chip = (*MBC2)(nil)
