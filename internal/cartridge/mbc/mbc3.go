package mbc

import "gbcore/internal/types"

// MBC3 has a 7-bit ROM bank (0 remapped to 1), a RAM-bank/RTC-register
// select in 0xA000-0xBFFF, and the RTC
// latch sequence in 0x6000-0x7FFF. RTC is nil for cartridges without
// the timer variant of the chip.
type MBC3 struct {
	rom []byte
	ram []byte
	rtc *RTC

	ramEnabled bool
	romBank    uint8 // 7 bits, 0 reads as 1
	ramSelect  uint8 // 0x00-0x03 selects a RAM bank, 0x08-0x0C selects an RTC register
}

func NewMBC3(rom []byte, ramSize uint, hasRTC bool) *MBC3 {
	m := &MBC3{rom: rom, ram: make([]byte, ramSize), romBank: 1}
	if hasRTC {
		m.rtc = NewRTC()
	}
	return m
}

// RTC returns the cartridge's clock, or nil if this variant doesn't
// have one.
func (m *MBC3) RTC() *RTC { return m.rtc }

func (m *MBC3) bank() uint8 {
	if m.romBank == 0 {
		return 1
	}
	return m.romBank
}

func (m *MBC3) ReadROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return m.rom[romOffset(m.rom, 0, addr)]
	}
	return m.rom[romOffset(m.rom, uint16(m.bank()), addr-0x4000)]
}

func (m *MBC3) WriteROM(addr uint16, v uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = v&0x0F == 0x0A
	case addr < 0x4000:
		m.romBank = v & 0x7F
	case addr < 0x6000:
		m.ramSelect = v
	default:
		if m.rtc != nil {
			m.rtc.WriteLatchControl(v)
		}
	}
}

func (m *MBC3) ReadRAM(addr uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	if m.ramSelect >= 0x08 && m.ramSelect <= 0x0C {
		if m.rtc == nil {
			return 0xFF
		}
		return m.rtc.ReadRegister(m.ramSelect)
	}
	if off, ok := ramOffset(m.ram, m.ramSelect&0x03, addr); ok {
		return m.ram[off]
	}
	return 0xFF
}

func (m *MBC3) WriteRAM(addr uint16, v uint8) {
	if !m.ramEnabled {
		return
	}
	if m.ramSelect >= 0x08 && m.ramSelect <= 0x0C {
		if m.rtc != nil {
			m.rtc.WriteRegister(m.ramSelect, v)
		}
		return
	}
	if off, ok := ramOffset(m.ram, m.ramSelect&0x03, addr); ok {
		m.ram[off] = v
	}
}

func (m *MBC3) RAM() []byte { return m.ram }

func (m *MBC3) Save(s *types.State) {
	s.WriteData(m.ram)
	s.WriteBool(m.ramEnabled)
	s.Write8(m.romBank)
	s.Write8(m.ramSelect)
	s.WriteBool(m.rtc != nil)
	if m.rtc != nil {
		m.rtc.Save(s)
	}
}

func (m *MBC3) Load(s *types.State) {
	s.ReadData(m.ram)
	m.ramEnabled = s.ReadBool()
	m.romBank = s.Read8()
	m.ramSelect = s.Read8()
	hasRTC := s.ReadBool()
	if hasRTC {
		if m.rtc == nil {
			m.rtc = NewRTC()
		}
		m.rtc.Load(s)
	}
}

var _ Chip = (*MBC3)(nil)
