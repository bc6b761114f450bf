package cartridge

import (
	"encoding/binary"
	"fmt"

	"gbcore/internal/cartridge/mbc"
	"gbcore/internal/types"
)

// Cartridge wraps a parsed Header and the mbc.Chip it selected.
type Cartridge struct {
	Header Header
	chip   mbc.Chip
	mbc3   *mbc.MBC3 // non-nil only when Header.Type.HasRTC()
}

// New parses rom's header and constructs the matching MBC. It returns
// a typed construction error and never a partially
// built Cartridge.
func New(rom []byte) (*Cartridge, error) {
	if len(rom) < 0x150 {
		return nil, fmt.Errorf("cartridge: ROM too small to contain a header (%d bytes)", len(rom))
	}
	header, err := parseHeader(rom[0x100:0x150])
	if err != nil {
		return nil, err
	}

	c := &Cartridge{Header: header}
	switch header.Type {
	case ROM:
		c.chip = mbc.NewNoMBC(rom, header.RAMSize)
	case MBC1, MBC1RAM, MBC1RAMBATT:
		c.chip = mbc.NewMBC1(rom, header.RAMSize)
	case MBC2, MBC2BATT:
		c.chip = mbc.NewMBC2(rom)
	case ROMRAM, ROMRAMBATT:
		c.chip = mbc.NewNoMBC(rom, header.RAMSize)
	case MBC3, MBC3RAM, MBC3RAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT:
		m3 := mbc.NewMBC3(rom, header.RAMSize, header.Type.HasRTC())
		c.chip = m3
		c.mbc3 = m3
	case MBC5, MBC5RAM, MBC5RAMBATT:
		c.chip = mbc.NewMBC5(rom, header.RAMSize, false)
	case MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		c.chip = mbc.NewMBC5(rom, header.RAMSize, true)
	default:
		return nil, fmt.Errorf("cartridge: unsupported cartridge type 0x%02X", header.Type)
	}
	return c, nil
}

func (c *Cartridge) Read(addr uint16) uint8 {
	if addr < 0x8000 {
		return c.chip.ReadROM(addr)
	}
	return c.chip.ReadRAM(addr - 0xA000)
}

func (c *Cartridge) Write(addr uint16, v uint8) {
	if addr < 0x8000 {
		c.chip.WriteROM(addr, v)
		return
	}
	c.chip.WriteRAM(addr-0xA000, v)
}

// StepRTC advances the MBC3 real-time clock, if this cartridge has
// one, by t T-cycles. A no-op for every other cartridge type.
func (c *Cartridge) StepRTC(t int) {
	if c.mbc3 != nil && c.mbc3.RTC() != nil {
		c.mbc3.RTC().Step(t)
	}
}

// HasBattery reports whether Save/Load round-trip anything.
func (c *Cartridge) HasBattery() bool {
	return c.Header.Type.HasBattery()
}

// Save serializes cartridge RAM as the concatenation of every RAM
// bank in order, the conventional .sav layout. RTC state is serialized separately by
// SaveRTC, since the two are persisted to different files on the host
// convention (saves/<TITLE>.sav and saves/<TITLE>.rtc).
func (c *Cartridge) Save() []byte {
	ram := c.chip.RAM()
	out := make([]byte, len(ram))
	copy(out, ram)
	return out
}

// Load restores cartridge RAM from a Save blob. Short or oversized
// blobs copy what fits; a missing save file is normal and callers
// simply skip the call.
func (c *Cartridge) Load(data []byte) {
	copy(c.chip.RAM(), data)
}

// SaveState serializes the complete MBC state (bank registers, RAM,
// RTC counters), as opposed to Save's battery-only format.
func (c *Cartridge) SaveState(s *types.State) { c.chip.Save(s) }

// LoadState restores a SaveState snapshot.
func (c *Cartridge) LoadState(s *types.State) { c.chip.Load(s) }

// SaveRTC serializes the 5 latched RTC registers followed by a
// big-endian Unix-seconds timestamp, 13 bytes total.
// It returns (nil, false) for cartridges without an RTC.
func (c *Cartridge) SaveRTC(now int64) ([]byte, bool) {
	if c.mbc3 == nil || c.mbc3.RTC() == nil {
		return nil, false
	}
	regs := c.mbc3.RTC().RegisterBytes()
	buf := make([]byte, 13)
	copy(buf, regs[:])
	binary.BigEndian.PutUint64(buf[5:], uint64(now))
	return buf, true
}

// LoadRTC restores the 5 latched RTC registers and applies the
// wall-clock delta between the saved timestamp and now to the live
// counters, per the round-trip property.
func (c *Cartridge) LoadRTC(data []byte, now int64) error {
	if c.mbc3 == nil || c.mbc3.RTC() == nil {
		return fmt.Errorf("cartridge: no RTC to load into")
	}
	if len(data) != 13 {
		return fmt.Errorf("cartridge: RTC save must be 13 bytes, got %d", len(data))
	}
	var regs [5]byte
	copy(regs[:], data[:5])
	saved := int64(binary.BigEndian.Uint64(data[5:]))
	c.mbc3.RTC().LoadRegisterBytes(regs)
	c.mbc3.RTC().AdvanceRealSeconds(now - saved)
	return nil
}
