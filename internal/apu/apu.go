// Package apu implements the Game Boy's audio processing unit:
// four sound generators, the frame sequencer that
// clocks their length/envelope/sweep subunits, and a mixer that
// down-samples the composite waveform to a fixed host sample rate.
// The frame sequencer is driven by the timer's OnFrameSequencer
// callback so both TIMA and the 512 Hz strobe observe the same system
// counter edges.
package apu

import "gbcore/internal/types"

// MasterClockHz is the T-cycle rate every channel's period counters
// are driven at, regardless of CGB double-speed.
const MasterClockHz = 4194304

// DefaultSampleRate and SamplesPerBlock are the host-facing audio
// contract's defaults).
const (
	DefaultSampleRate = 48000
	SamplesPerBlock   = 2048
)

// Sample is one interleaved stereo frame in [-1, 1].
type Sample struct {
	L, R float32
}

// APU is the four-channel sound core.
type APU struct {
	model types.Model

	enabled bool

	ch1      pulse
	sweep    sweepUnit
	ch2      pulse
	ch3      wave
	ch4      noise

	frameSeqStep            uint8
	firstHalfOfLengthPeriod bool

	volumeLeft, volumeRight uint8
	vinLeft, vinRight       bool
	routeLeft, routeRight   [4]bool

	sampleRate int
	dsError    int
	accumL     float64
	accumR     float64
	accumN     int

	block      []Sample
	blockReady bool
}

// New returns a powered-off APU for model, sampling at
// DefaultSampleRate.
func New(model types.Model) *APU {
	a := &APU{model: model, sampleRate: DefaultSampleRate}
	a.ch1 = *newPulse()
	a.sweep.p = &a.ch1
	a.ch2 = *newPulse()
	a.ch3 = *newWave()
	a.ch4 = *newNoise()
	a.block = make([]Sample, 0, SamplesPerBlock)
	return a
}

// SetSampleRate changes the host output rate.
func (a *APU) SetSampleRate(hz int) { a.sampleRate = hz }

// ClockFrameSequencer advances the 512 Hz strobe one step, clocking
// length every other step, sweep every 4th and envelope every 8th.
// Registered with timer.Controller.OnFrameSequencer.
func (a *APU) ClockFrameSequencer() {
	if !a.enabled {
		return
	}
	a.firstHalfOfLengthPeriod = a.frameSeqStep&1 == 0
	switch a.frameSeqStep {
	case 0, 2, 4, 6:
		a.ch1.lengthStep()
		a.ch2.lengthStep()
		a.ch3.lengthStep()
		a.ch4.lengthStep()
		if a.frameSeqStep == 2 || a.frameSeqStep == 6 {
			a.sweep.step()
		}
	case 7:
		a.ch1.env.step()
		a.ch2.env.step()
		a.ch4.env.step()
	}
	a.frameSeqStep = (a.frameSeqStep + 1) & 7
}

// Step advances every channel's period counter by t T-cycles and
// accumulates down-sampled output, per the "APU whole-sample
// production" contract: called once per instruction, at its end.
func (a *APU) Step(t int) {
	if !a.enabled {
		return
	}
	for i := 0; i < t; i++ {
		a.ch1.step(1)
		a.ch2.step(1)
		a.ch3.step(1)
		a.ch4.step(1)
		a.mixTick()
	}
}

// mixTick composes one T-cycle's worth of channel output and, via a
// Bresenham-style accumulator, emits a down-sampled stereo frame
// whenever enough master-clock ticks have accumulated for one output
// sample.
func (a *APU) mixTick() {
	l, r := a.mixSample()
	a.accumL += float64(l)
	a.accumR += float64(r)
	a.accumN++

	a.dsError += a.sampleRate
	if a.dsError < MasterClockHz {
		return
	}
	a.dsError -= MasterClockHz

	n := float64(a.accumN)
	if n == 0 {
		n = 1
	}
	frame := Sample{L: float32(a.accumL / n), R: float32(a.accumR / n)}
	a.accumL, a.accumR, a.accumN = 0, 0, 0

	a.block = append(a.block, frame)
	if len(a.block) >= SamplesPerBlock {
		a.blockReady = true
	}
}

func centerDAC(digital uint8) float32 {
	return float32(digital)/15*2 - 1
}

func (a *APU) mixSample() (float32, float32) {
	digits := [4]uint8{a.ch1.digital(), a.ch2.digital(), a.ch3.digital(), a.ch4.digital()}
	var left, right float32
	for i, d := range digits {
		analog := centerDAC(d)
		if d == 0 {
			analog = 0 // fully-off channel contributes silence, not DC bias
		}
		if a.routeLeft[i] {
			left += analog
		}
		if a.routeRight[i] {
			right += analog
		}
	}
	left = left / 4 * (float32(a.volumeLeft+1) / 8)
	right = right / 4 * (float32(a.volumeRight+1) / 8)
	return left, right
}

// TakeBlock implements the one-shot take_audio() contract: returns the pending block and whether one was ready. The
// returned slice is a copy owned by the caller.
func (a *APU) TakeBlock() ([]Sample, bool) {
	if !a.blockReady {
		return nil, false
	}
	out := make([]Sample, len(a.block))
	copy(out, a.block)
	a.block = a.block[:0]
	a.blockReady = false
	return out, true
}

// Read implements the NR10-NR52 and wave-RAM register reads. Unused
// bits read as 1.
func (a *APU) Read(addr types.Addr) uint8 {
	switch addr {
	case types.NR10:
		return a.sweep.read()
	case types.NR11:
		return a.ch1.readNRx1()
	case types.NR12:
		return a.ch1.env.read()
	case types.NR13:
		return 0xFF
	case types.NR14:
		return a.ch1.readNRx4()

	case types.NR21:
		return a.ch2.readNRx1()
	case types.NR22:
		return a.ch2.env.read()
	case types.NR23:
		return 0xFF
	case types.NR24:
		return a.ch2.readNRx4()

	case types.NR30:
		return a.ch3.readNR30()
	case types.NR31:
		return 0xFF
	case types.NR32:
		return a.ch3.readNR32()
	case types.NR33:
		return 0xFF
	case types.NR34:
		return a.ch3.readNR34()

	case types.NR41:
		return 0xFF
	case types.NR42:
		return a.ch4.env.read()
	case types.NR43:
		return a.ch4.readNR43()
	case types.NR44:
		return a.ch4.readNR44()

	case types.NR50:
		return a.readNR50()
	case types.NR51:
		return a.readNR51()
	case types.NR52:
		return a.readNR52()
	}
	if addr >= types.WaveRAMStart && addr <= types.WaveRAMEnd {
		return a.ch3.readRAM(addr)
	}
	return 0xFF
}

// Write implements every NRxx and wave-RAM register write. Per
// the hardware, writes to most registers while powered off are
// ignored; the length-counter registers remain writable on DMG, and
// wave RAM is always writable regardless of power state.
func (a *APU) Write(addr types.Addr, v uint8) {
	if addr >= types.WaveRAMStart && addr <= types.WaveRAMEnd {
		a.ch3.writeRAM(addr, v)
		return
	}
	if addr == types.NR52 {
		a.writeNR52(v)
		return
	}
	if !a.enabled {
		if a.model == types.DMG && isLengthRegister(addr) {
			a.writeLengthOnly(addr, v)
		}
		return
	}
	switch addr {
	case types.NR10:
		a.sweep.write(v)
	case types.NR11:
		a.ch1.writeNRx1(v)
	case types.NR12:
		a.ch1.writeNRx2(v)
	case types.NR13:
		a.ch1.writeNRx3(v)
	case types.NR14:
		a.ch1.writeNRx4(v, a.firstHalfOfLengthPeriod)
		if v&types.Bit7 != 0 {
			a.sweep.trigger()
		}

	case types.NR21:
		a.ch2.writeNRx1(v)
	case types.NR22:
		a.ch2.writeNRx2(v)
	case types.NR23:
		a.ch2.writeNRx3(v)
	case types.NR24:
		a.ch2.writeNRx4(v, a.firstHalfOfLengthPeriod)

	case types.NR30:
		a.ch3.writeNR30(v)
	case types.NR31:
		a.ch3.writeNR31(v)
	case types.NR32:
		a.ch3.writeNR32(v)
	case types.NR33:
		a.ch3.writeNR33(v)
	case types.NR34:
		a.ch3.writeNR34(v, a.firstHalfOfLengthPeriod)

	case types.NR41:
		a.ch4.writeNR41(v)
	case types.NR42:
		a.ch4.writeNR42(v)
	case types.NR43:
		a.ch4.writeNR43(v)
	case types.NR44:
		a.ch4.writeNR44(v, a.firstHalfOfLengthPeriod)

	case types.NR50:
		a.writeNR50(v)
	case types.NR51:
		a.writeNR51(v)
	}
}

func isLengthRegister(addr types.Addr) bool {
	switch addr {
	case types.NR11, types.NR21, types.NR31, types.NR41:
		return true
	}
	return false
}

// writeLengthOnly is the DMG-only carve-out: length
// counters stay writable while the APU is powered off.
func (a *APU) writeLengthOnly(addr types.Addr, v uint8) {
	switch addr {
	case types.NR11:
		a.ch1.writeLength(uint(v & 0x3F))
	case types.NR21:
		a.ch2.writeLength(uint(v & 0x3F))
	case types.NR31:
		a.ch3.writeLength(uint(v))
	case types.NR41:
		a.ch4.writeLength(uint(v & 0x3F))
	}
}

func (a *APU) readNR50() uint8 {
	v := a.volumeRight | a.volumeLeft<<4
	if a.vinRight {
		v |= types.Bit3
	}
	if a.vinLeft {
		v |= types.Bit7
	}
	return v
}

func (a *APU) writeNR50(v uint8) {
	a.volumeRight = v & 0x07
	a.volumeLeft = (v >> 4) & 0x07
	a.vinRight = v&types.Bit3 != 0
	a.vinLeft = v&types.Bit7 != 0
}

func (a *APU) readNR51() uint8 {
	var v uint8
	for i := 0; i < 4; i++ {
		if a.routeRight[i] {
			v |= 1 << i
		}
		if a.routeLeft[i] {
			v |= 1 << (i + 4)
		}
	}
	return v
}

func (a *APU) writeNR51(v uint8) {
	for i := 0; i < 4; i++ {
		a.routeRight[i] = v&(1<<i) != 0
		a.routeLeft[i] = v&(1<<(i+4)) != 0
	}
}

func (a *APU) readNR52() uint8 {
	v := uint8(0x70)
	if a.enabled {
		v |= types.Bit7
	}
	if a.ch1.on() {
		v |= types.Bit0
	}
	if a.ch2.on() {
		v |= types.Bit1
	}
	if a.ch3.on() {
		v |= types.Bit2
	}
	if a.ch4.on() {
		v |= types.Bit3
	}
	return v
}

// writeNR52 implements the master power switch: power
// off clears every register (wave RAM survives on DMG, is wiped on
// CGB) and silences output; power on resets the frame-sequencer step.
func (a *APU) writeNR52(v uint8) {
	on := v&types.Bit7 != 0
	if on == a.enabled {
		return
	}
	if !on {
		savedRAM := a.ch3.ram
		sampleRate := a.sampleRate
		*a = *New(a.model)
		a.sweep.p = &a.ch1 // New wired the sweep to its own temporary
		a.sampleRate = sampleRate
		a.enabled = false
		if a.model == types.DMG {
			a.ch3.ram = savedRAM
		}
		return
	}
	a.enabled = true
	a.frameSeqStep = 0
}

func (a *APU) Save(s *types.State) {
	s.WriteBool(a.enabled)
	a.ch1.save(s)
	a.sweep.save(s)
	a.ch2.save(s)
	a.ch3.save(s)
	a.ch4.save(s)
	s.Write8(a.frameSeqStep)
	s.WriteBool(a.firstHalfOfLengthPeriod)
	s.Write8(a.volumeLeft)
	s.Write8(a.volumeRight)
	s.WriteBool(a.vinLeft)
	s.WriteBool(a.vinRight)
	for i := 0; i < 4; i++ {
		s.WriteBool(a.routeLeft[i])
		s.WriteBool(a.routeRight[i])
	}
}

func (a *APU) Load(s *types.State) {
	a.enabled = s.ReadBool()
	a.ch1.load(s)
	a.sweep.load(s)
	a.sweep.p = &a.ch1
	a.ch2.load(s)
	a.ch3.load(s)
	a.ch4.load(s)
	a.frameSeqStep = s.Read8()
	a.firstHalfOfLengthPeriod = s.ReadBool()
	a.volumeLeft = s.Read8()
	a.volumeRight = s.Read8()
	a.vinLeft = s.ReadBool()
	a.vinRight = s.ReadBool()
	for i := 0; i < 4; i++ {
		a.routeLeft[i] = s.ReadBool()
		a.routeRight[i] = s.ReadBool()
	}
}

var _ types.Stater = (*APU)(nil)
