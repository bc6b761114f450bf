package apu

import "gbcore/internal/types"

// wave is channel 3: a user-supplied 32-sample, 4-bit waveform played
// back at a programmable frequency and attenuated by a 2-bit shift
// code rather than an envelope.
type wave struct {
	channel

	dacEnabledReg bool // NR30 bit 7, this channel's only DAC gate
	freq          uint16
	volumeCode    uint8 // NR32 bits 6-5: 0=mute,1=100%,2=50%,3=25%

	ram      [16]byte // 32 4-bit samples packed 2-per-byte
	timer    int
	position uint8

	// lastRead holds the most recently fetched 4-bit sample, which the
	// channel outputs. Wave RAM reads and writes always reach the
	// addressed byte, even while the channel is playing.
	lastRead uint8
}

func newWave() *wave {
	w := &wave{}
	w.lengthFull = 256
	return w
}

func (w *wave) period() int {
	return (2048 - int(w.freq)) * 2
}

func (w *wave) step(t int) {
	if !w.on() {
		return
	}
	w.timer -= t
	for w.timer <= 0 {
		w.timer += w.period()
		w.position = (w.position + 1) & 31
		w.lastRead = w.sample(w.position)
	}
}

func (w *wave) sample(i uint8) uint8 {
	b := w.ram[i/2]
	if i%2 == 0 {
		return b >> 4
	}
	return b & 0x0F
}

func (w *wave) digital() uint8 {
	if !w.on() || w.volumeCode == 0 {
		return 0
	}
	shift := w.volumeCode - 1
	return w.lastRead >> shift
}

func (w *wave) writeNR30(v uint8) {
	w.dacEnabledReg = v&types.Bit7 != 0
	w.dacEnabled = w.dacEnabledReg
	if !w.dacEnabled {
		w.enabled = false
	}
}

func (w *wave) readNR30() uint8 {
	if w.dacEnabledReg {
		return 0xFF
	}
	return 0x7F
}

func (w *wave) writeNR31(v uint8) { w.writeLength(uint(v)) }

func (w *wave) writeNR32(v uint8) { w.volumeCode = (v >> 5) & 0x03 }
func (w *wave) readNR32() uint8   { return w.volumeCode<<5 | 0x9F }

func (w *wave) writeNR33(v uint8) { w.freq = w.freq&0x700 | uint16(v) }

func (w *wave) writeNR34(v uint8, firstHalfOfLengthPeriod bool) {
	w.freq = w.freq&0xFF | uint16(v&0x07)<<8
	w.setLengthEnable(v&types.Bit6 != 0, firstHalfOfLengthPeriod)
	if v&types.Bit7 != 0 {
		w.trigger(firstHalfOfLengthPeriod)
		w.timer = w.period()
		w.position = 0
	}
}

func (w *wave) readNR34() uint8 {
	v := uint8(0xBF)
	if w.lengthCounterEnabled {
		v |= types.Bit6
	}
	return v
}

func (w *wave) readRAM(addr uint16) uint8 {
	return w.ram[addr-types.WaveRAMStart]
}

func (w *wave) writeRAM(addr uint16, v uint8) {
	w.ram[addr-types.WaveRAMStart] = v
}

func (w *wave) save(s *types.State) {
	s.WriteBool(w.enabled)
	s.WriteBool(w.dacEnabled)
	s.WriteBool(w.dacEnabledReg)
	s.Write32(uint32(w.lengthCounter))
	s.WriteBool(w.lengthCounterEnabled)
	s.Write16(w.freq)
	s.Write8(w.volumeCode)
	s.WriteData(w.ram[:])
	s.Write32(uint32(w.timer))
	s.Write8(w.position)
	s.Write8(w.lastRead)
}

func (w *wave) load(s *types.State) {
	w.enabled = s.ReadBool()
	w.dacEnabled = s.ReadBool()
	w.dacEnabledReg = s.ReadBool()
	w.lengthCounter = uint(s.Read32())
	w.lengthCounterEnabled = s.ReadBool()
	w.freq = s.Read16()
	w.volumeCode = s.Read8()
	s.ReadData(w.ram[:])
	w.timer = int(s.Read32())
	w.position = s.Read8()
	w.lastRead = s.Read8()
}
