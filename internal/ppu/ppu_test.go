package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbcore/internal/interrupts"
	"gbcore/internal/ppu/lcd"
	"gbcore/internal/types"
)

func newTestPPU() (*PPU, *interrupts.Controller) {
	irq := interrupts.New()
	p := New(types.DMG, irq, func(addr uint16) uint8 { return 0 })
	p.WriteRegister(types.LCDC, 0x91) // LCD on, BG on
	return p, irq
}

func TestScanlineModeProgression(t *testing.T) {
	p, _ := newTestPPU()
	require.Equal(t, lcd.OAMScan, p.Status.Mode)

	p.Step(80)
	assert.Equal(t, lcd.Drawing, p.Status.Mode)

	p.Step(p.mode3Dots)
	assert.Equal(t, lcd.HBlank, p.Status.Mode)

	// the three modes always sum to one 456-dot line
	p.Step(456 - 80 - p.mode3Dots)
	assert.Equal(t, lcd.OAMScan, p.Status.Mode)
	assert.Equal(t, uint8(1), p.LY)
}

func TestMode3LengthBounds(t *testing.T) {
	p, _ := newTestPPU()
	for _, scx := range []uint8{0, 1, 5, 7, 255} {
		p.SCX = scx
		p.Step(80) // into drawing
		assert.GreaterOrEqual(t, p.mode3Dots, 172)
		assert.LessOrEqual(t, p.mode3Dots, 289)
		p.Step(456 - 80) // finish the line
	}
}

func TestVBlankEntry(t *testing.T) {
	p, irq := newTestPPU()
	p.Step(456 * 144)
	assert.Equal(t, lcd.VBlank, p.Status.Mode)
	assert.Equal(t, uint8(144), p.LY)
	assert.NotZero(t, irq.Flag&0x01, "VBlank interrupt requested")

	frame, ok := p.TakeFrame()
	require.True(t, ok)
	require.NotNil(t, frame)
	_, ok = p.TakeFrame()
	assert.False(t, ok, "frame hand-off is one-shot")
}

func TestLYWrapsEarlyOnLine153(t *testing.T) {
	p, _ := newTestPPU()
	p.Step(456 * 153) // start of line 153
	require.Equal(t, uint8(153), p.LY)

	p.Step(4)
	assert.Equal(t, uint8(0), p.LY, "LY reads 0 four dots into line 153")
	assert.Equal(t, lcd.VBlank, p.Status.Mode, "still in VBlank")

	p.Step(456 - 4)
	assert.Equal(t, lcd.OAMScan, p.Status.Mode)
	assert.Equal(t, uint8(0), p.LY)
}

func TestSpriteBufferLimit(t *testing.T) {
	p, _ := newTestPPU()
	// 40 sprites all on line 0
	for i := 0; i < 40; i++ {
		p.oam[i*4] = 16 // Y: covers LY 0..7
		p.oam[i*4+1] = uint8(8 + i)
	}
	p.scanOAM()
	assert.Len(t, p.spriteBuf, 10)
}

func TestSpriteBufferYRange(t *testing.T) {
	p, _ := newTestPPU()
	p.LY = 10
	p.oam[0] = 16 + 10 // exactly on the line
	p.oam[4] = 16 + 11 // one below
	p.oam[8] = 14      // 12 rows above: visible only at 8x16 height
	p.scanOAM()
	require.Len(t, p.spriteBuf, 1)

	p.Control.SpriteSize16 = true
	p.scanOAM()
	assert.Len(t, p.spriteBuf, 2)
}

func TestLCDOffBehavior(t *testing.T) {
	p, _ := newTestPPU()
	p.Step(456*2 + 100) // somewhere inside line 2
	require.NotZero(t, p.LY)

	p.WriteRegister(types.LCDC, 0x11) // bit 7 off
	assert.Zero(t, p.ReadRegister(types.LY))
	assert.Zero(t, p.ReadRegister(types.STAT)&0x03, "mode bits read 0")

	// no progression while off
	p.Step(456 * 10)
	assert.Zero(t, p.ReadRegister(types.LY))
}

func TestVRAMAccessByMode(t *testing.T) {
	p, _ := newTestPPU()

	// HBlank/VBlank/OAM-scan: read-back works
	require.Equal(t, lcd.OAMScan, p.Status.Mode)
	p.WriteVRAM(0x8123, 0x42)
	assert.Equal(t, uint8(0x42), p.ReadVRAM(0x8123))

	// mode 3: reads are blocked, writes still land
	p.Step(80)
	require.Equal(t, lcd.Drawing, p.Status.Mode)
	p.WriteVRAM(0x8456, 0x99)
	assert.Equal(t, uint8(0xFF), p.ReadVRAM(0x8456))

	p.Step(p.mode3Dots)
	assert.Equal(t, uint8(0x99), p.ReadVRAM(0x8456), "the mode-3 write landed")
}

func TestSTATRisingEdgeOnly(t *testing.T) {
	p, irq := newTestPPU()
	p.WriteRegister(types.LYC, 5)     // no coincidence yet, line is low
	p.WriteRegister(types.STAT, 1<<6) // LY==LYC interrupt enable
	irq.Flag = 0

	p.WriteRegister(types.LYC, 0) // LY==LYC becomes true: rising edge
	require.NotZero(t, irq.Flag&0x02, "rising edge requests STAT")

	irq.Flag = 0
	p.updateSTATLine()
	assert.Zero(t, irq.Flag&0x02, "level held high does not re-request")
}

func TestBackgroundRendering(t *testing.T) {
	p, _ := newTestPPU()
	// tile 1 = solid color 3, mapped across the whole background
	for row := 0; row < 8; row++ {
		p.vram[0][16+row*2] = 0xFF
		p.vram[0][16+row*2+1] = 0xFF
	}
	for i := 0x1800; i < 0x1C00; i++ {
		p.vram[0][i] = 1
	}
	p.BGP = 0xE4 // identity palette

	p.Step(456) // render line 0
	black := [3]uint8(p.dmgPalette.Colors[3])
	assert.Equal(t, black, p.frame[0][0])
	assert.Equal(t, black, p.frame[0][159])
}

func TestSpriteOverBackground(t *testing.T) {
	p, _ := newTestPPU()
	p.Control.SpriteEnabled = true
	p.BGP = 0xE4
	p.OBP0 = 0xE4

	// sprite tile 2: solid color 1
	for row := 0; row < 8; row++ {
		p.vram[0][32+row*2] = 0xFF
	}
	p.oam[0] = 16 // Y: line 0
	p.oam[1] = 8  // X: pixel 0
	p.oam[2] = 2
	p.oam[3] = 0
	p.scanOAM() // line 0's scan ran before OAM was populated

	p.Step(456)
	assert.Equal(t, [3]uint8(p.dmgPalette.Colors[1]), p.frame[0][0], "sprite pixel wins over BG color 0")
	assert.Equal(t, [3]uint8(p.dmgPalette.Colors[0]), p.frame[0][8], "past the sprite, BG again")
}

func TestOAMDMACopies(t *testing.T) {
	src := make([]byte, 0x10000)
	for i := 0; i < 160; i++ {
		src[0xC000+i] = uint8(i ^ 0xA5)
	}
	irq := interrupts.New()
	p := New(types.DMG, irq, func(addr uint16) uint8 { return src[addr] })

	p.DMA.Write(0xC0)
	require.True(t, p.DMA.Active())
	p.DMA.Step(160, p.OAM())
	assert.False(t, p.DMA.Active())
	for i := 0; i < 160; i++ {
		require.Equal(t, uint8(i^0xA5), p.oam[i], "OAM byte %d", i)
	}
}
