package mbc

import "gbcore/internal/types"

// RTC models the MBC3 real-time clock: seconds, minutes, hours, and a
// 9-bit day counter with carry and halt flags in register 0x0C. It
// advances on its own crystal, independent of CPU speed,
// so it is clocked in T-cycles at the fixed base clock rate rather
// than by the CPU's (possibly double-speed) step count.
type RTC struct {
	seconds, minutes, hours uint8
	days                    uint16 // 9 bits; bit 8 is the overflow/day-high bit
	halt                    bool
	carry                   bool

	// latched holds the snapshot taken on the last 0->1 latch write;
	// reads of 0x08-0x0C return these, not the live counters.
	latchedS, latchedM, latchedH uint8
	latchedDays                  uint16
	latchedHalt, latchedCarry    bool

	latchPending bool // last latch-register write was 0

	cycleAccum int
}

const cyclesPerSecond = 4194304

func NewRTC() *RTC {
	return &RTC{}
}

// Step advances the crystal by t T-cycles at the fixed base rate.
func (r *RTC) Step(t int) {
	if r.halt {
		return
	}
	r.cycleAccum += t
	for r.cycleAccum >= cyclesPerSecond {
		r.cycleAccum -= cyclesPerSecond
		r.tickSecond()
	}
}

func (r *RTC) tickSecond() {
	r.seconds++
	if r.seconds < 60 {
		return
	}
	r.seconds = 0
	r.minutes++
	if r.minutes < 60 {
		return
	}
	r.minutes = 0
	r.hours++
	if r.hours < 24 {
		return
	}
	r.hours = 0
	r.days++
	if r.days > 0x1FF {
		r.days = 0
		r.carry = true
	}
}

// Latch is called on the 0->1 latch-register write sequence; it
// snapshots the live counters into the registers the program reads.
func (r *RTC) Latch() {
	r.latchedS, r.latchedM, r.latchedH = r.seconds, r.minutes, r.hours
	r.latchedDays, r.latchedHalt, r.latchedCarry = r.days, r.halt, r.carry
}

// WriteLatchControl implements the 0->1 edge detection on writes to
// the 0x6000-0x7FFF latch-control register.
func (r *RTC) WriteLatchControl(v uint8) {
	if v == 0 {
		r.latchPending = true
	} else if v == 1 && r.latchPending {
		r.Latch()
		r.latchPending = false
	} else {
		r.latchPending = false
	}
}

// ReadRegister reads one of the five latched 0x08-0x0C registers.
func (r *RTC) ReadRegister(reg uint8) uint8 {
	switch reg {
	case 0x08:
		return r.latchedS
	case 0x09:
		return r.latchedM
	case 0x0A:
		return r.latchedH
	case 0x0B:
		return uint8(r.latchedDays)
	case 0x0C:
		v := uint8(r.latchedDays>>8) & 1
		if r.latchedHalt {
			v |= types.Bit6
		}
		if r.latchedCarry {
			v |= types.Bit7
		}
		return v
	}
	return 0xFF
}

// WriteRegister writes one of the five live (not latched) registers.
func (r *RTC) WriteRegister(reg, v uint8) {
	switch reg {
	case 0x08:
		r.seconds = v % 60
	case 0x09:
		r.minutes = v % 60
	case 0x0A:
		r.hours = v % 24
	case 0x0B:
		r.days = r.days&0x100 | uint16(v)
	case 0x0C:
		r.days = r.days&0xFF | uint16(v&1)<<8
		r.halt = v&types.Bit6 != 0
		r.carry = v&types.Bit7 != 0
	}
}

// AdvanceRealSeconds applies the wall-clock delta recorded across a
// save/load cycle: the same per-second cascade used
// by Step, run delta times.
func (r *RTC) AdvanceRealSeconds(delta int64) {
	if delta <= 0 || r.halt {
		return
	}
	for i := int64(0); i < delta; i++ {
		r.tickSecond()
	}
}

// Save serializes both the live and latched counters for save states.
func (r *RTC) Save(s *types.State) {
	s.Write8(r.seconds)
	s.Write8(r.minutes)
	s.Write8(r.hours)
	s.Write16(r.days)
	s.WriteBool(r.halt)
	s.WriteBool(r.carry)
	s.Write8(r.latchedS)
	s.Write8(r.latchedM)
	s.Write8(r.latchedH)
	s.Write16(r.latchedDays)
	s.WriteBool(r.latchedHalt)
	s.WriteBool(r.latchedCarry)
}

func (r *RTC) Load(s *types.State) {
	r.seconds = s.Read8()
	r.minutes = s.Read8()
	r.hours = s.Read8()
	r.days = s.Read16()
	r.halt = s.ReadBool()
	r.carry = s.ReadBool()
	r.latchedS = s.Read8()
	r.latchedM = s.Read8()
	r.latchedH = s.Read8()
	r.latchedDays = s.Read16()
	r.latchedHalt = s.ReadBool()
	r.latchedCarry = s.ReadBool()
}

// RegisterBytes returns the 5-byte latched-register encoding used by
// the cartridge save format: S, M, H, DL, DH.
func (r *RTC) RegisterBytes() [5]byte {
	return [5]byte{
		r.ReadRegister(0x08),
		r.ReadRegister(0x09),
		r.ReadRegister(0x0A),
		r.ReadRegister(0x0B),
		r.ReadRegister(0x0C),
	}
}

// LoadRegisterBytes restores both the live and latched counters from
// the cartridge 5-byte encoding; AdvanceRealSeconds is applied to the
// live counters afterwards.
func (r *RTC) LoadRegisterBytes(b [5]byte) {
	r.WriteRegister(0x08, b[0])
	r.WriteRegister(0x09, b[1])
	r.WriteRegister(0x0A, b[2])
	r.WriteRegister(0x0B, b[3])
	r.WriteRegister(0x0C, b[4])
	r.Latch()
}
