package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbcore/internal/types"
)

func newPoweredAPU(model types.Model) *APU {
	a := New(model)
	a.Write(types.NR52, 0x80)
	return a
}

func TestPowerOffClearsRegisters(t *testing.T) {
	a := newPoweredAPU(types.DMG)
	a.Write(types.NR50, 0x77)
	a.Write(types.NR51, 0xF3)
	a.Write(types.NR10, 0x5E)

	a.Write(types.NR52, 0x00)
	assert.Equal(t, uint8(0x70), a.Read(types.NR52), "only the unused bits remain")
	a.Write(types.NR52, 0x80)
	assert.Equal(t, uint8(0x00), a.Read(types.NR50))
	assert.Equal(t, uint8(0x00), a.Read(types.NR51))
	assert.Equal(t, uint8(0x80), a.Read(types.NR10), "register cleared, unused bit 7 reads 1")
}

func TestWaveRAMSurvivesPowerCycleOnDMG(t *testing.T) {
	for _, model := range []types.Model{types.DMG, types.CGB} {
		a := newPoweredAPU(model)
		for i := types.WaveRAMStart; i <= types.WaveRAMEnd; i++ {
			a.Write(i, uint8(i))
		}
		a.Write(types.NR52, 0x00)
		a.Write(types.NR52, 0x80)

		got := a.Read(types.WaveRAMStart)
		if model == types.DMG {
			start := types.WaveRAMStart
			assert.Equal(t, uint8(start), got, "DMG keeps wave RAM")
		} else {
			assert.Equal(t, uint8(0), got, "CGB clears wave RAM")
		}
	}
}

func TestWritesIgnoredWhilePoweredOff(t *testing.T) {
	a := New(types.DMG)
	a.Write(types.NR50, 0x77)
	a.Write(types.NR52, 0x80)
	assert.Equal(t, uint8(0x00), a.Read(types.NR50))
}

func TestLengthWritableWhilePoweredOffOnDMG(t *testing.T) {
	a := New(types.DMG)
	a.Write(types.NR11, 0x3F) // length 63: one tick from expiry
	a.Write(types.NR52, 0x80)
	a.Write(types.NR12, 0xF0)                       // DAC on
	a.Write(types.NR14, uint8(types.Bit7|types.Bit6)) // trigger with length enabled

	require.NotZero(t, a.Read(types.NR52)&0x01, "channel 1 on")
	a.ClockFrameSequencer() // step 0: length tick
	assert.Zero(t, a.Read(types.NR52)&0x01, "length expired after one tick")
}

func TestChannelOnRequiresDAC(t *testing.T) {
	a := newPoweredAPU(types.DMG)
	a.Write(types.NR12, 0x00) // DAC off
	a.Write(types.NR14, uint8(types.Bit7))
	assert.Zero(t, a.Read(types.NR52)&0x01, "trigger with a dead DAC cannot enable the channel")

	a.Write(types.NR12, 0xF0)
	a.Write(types.NR14, uint8(types.Bit7))
	assert.NotZero(t, a.Read(types.NR52)&0x01)

	a.Write(types.NR12, 0x00) // killing the DAC kills the channel
	assert.Zero(t, a.Read(types.NR52)&0x01)
}

func TestSweepOverflowDisablesChannel(t *testing.T) {
	a := newPoweredAPU(types.DMG)
	a.Write(types.NR12, 0xF0)
	a.Write(types.NR13, 0x00)
	a.Write(types.NR10, 0x11) // period 1, shift 1, increasing
	a.Write(types.NR14, uint8(types.Bit7)|0x05) // frequency 0x500
	require.NotZero(t, a.Read(types.NR52)&0x01)

	// 0x500 sweeps to 0x780, whose own next step (0xB40) overflows
	a.ClockFrameSequencer() // 0: length
	a.ClockFrameSequencer() // 1
	a.ClockFrameSequencer() // 2: sweep
	assert.Zero(t, a.Read(types.NR52)&0x01)
}

func TestEnvelopeSteps(t *testing.T) {
	a := newPoweredAPU(types.DMG)
	a.Write(types.NR12, 0x29) // volume 2, increasing, period 1
	a.Write(types.NR14, uint8(types.Bit7))

	for i := 0; i < 8; i++ { // one full sequencer round: one envelope tick
		a.ClockFrameSequencer()
	}
	assert.Equal(t, uint8(3), a.ch1.env.current)
}

func TestSampleBlockProduction(t *testing.T) {
	a := newPoweredAPU(types.DMG)
	_, ok := a.TakeBlock()
	require.False(t, ok)

	// a block's worth of T-cycles, rounded up
	a.Step(SamplesPerBlock*MasterClockHz/DefaultSampleRate + 100)
	block, ok := a.TakeBlock()
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(block), SamplesPerBlock)

	_, ok = a.TakeBlock()
	assert.False(t, ok, "hand-off is one-shot")
}

func TestMixerSilenceIsCentered(t *testing.T) {
	a := newPoweredAPU(types.DMG)
	l, r := a.mixSample()
	assert.Zero(t, l)
	assert.Zero(t, r)
}
