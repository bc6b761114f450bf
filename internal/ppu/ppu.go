// Package ppu implements the pixel processing unit for the DMG and
// CGB: the four-mode scanline state machine, the per-dot renderer, the
// OAM DMA engine and the DMG/CGB palette plumbing. One call to Step
// advances the unit dot-by-dot, so register writes landing between two
// CPU sub-cycles are visible to the very next pixel.
package ppu

import (
	"gbcore/internal/interrupts"
	"gbcore/internal/ppu/lcd"
	"gbcore/internal/ppu/palette"
	"gbcore/internal/types"
)

const (
	// ScreenWidth is the width of the visible screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the visible screen in pixels.
	ScreenHeight = 144

	dotsPerLine    = 456
	oamScanDots    = 80
	linesPerFrame  = 154
	firstVBlankLine = 144
)

// Frame is one finished 160x144 framebuffer, 8-bit RGB per pixel.
type Frame [ScreenHeight][ScreenWidth][3]uint8

// PPU owns VRAM, OAM, the LCD registers and the renderer.
type PPU struct {
	Control lcd.Control
	Status  lcd.Status

	LY, LYC         uint8
	SCX, SCY        uint8
	WX, WY          uint8
	BGP, OBP0, OBP1 uint8

	vram     [2][0x2000]byte // bank 1 only reachable on CGB
	vramBank uint8
	oam      [160]byte

	bgPal  palette.CGB
	objPal palette.CGB
	opri   bool // CGB: use DMG-style X-coordinate sprite priority

	// compatMode is set when a DMG-only cartridge runs on a CGB model:
	// rendering follows the DMG pipeline but the final 2-bit shades map
	// through the boot ROM's compatibility colors instead of greyscale.
	compatMode  bool
	compatEntry palette.CompatibilityEntry

	model      types.Model
	cgbMode    bool // CGB model running a CGB-aware cartridge
	dmgPalette palette.DMG

	DMA *DMA

	irq *interrupts.Controller

	// transient per-line rendering state
	modeDots    int // dots elapsed in the current mode; always < the mode's length
	mode3Dots   int
	curX        int
	vblankLine  int
	windowLine  uint8
	windowDrawn bool // a window pixel was emitted on the current line
	frameWY     bool // WY <= LY has been seen this frame
	spriteBuf   []Sprite

	statLine      bool // previous level of the OR of STAT sources
	enteredVBlank bool
	enteredHBlank bool
	frameReady    bool

	// cleared tracks whether the framebuffer has been blanked since the
	// LCD was last switched off; the first frame after re-enable is
	// white on hardware.
	cleared bool

	frame Frame
}

// New constructs the PPU for model. dmaRead lets the OAM DMA engine
// reach the rest of the address space through the bus.
func New(model types.Model, irq *interrupts.Controller, dmaRead func(addr uint16) uint8) *PPU {
	p := &PPU{
		model:      model,
		irq:        irq,
		dmgPalette: palette.DMGPalettes[palette.Greyscale],
		spriteBuf:  make([]Sprite, 0, 10),
	}
	p.DMA = NewDMA(dmaRead)
	return p
}

// SetCGBMode marks the cartridge as CGB-aware; rendering uses CRAM
// palettes and BG attributes. Called once at construction.
func (p *PPU) SetCGBMode(v bool) { p.cgbMode = v }

// SetCompatibility puts the PPU into DMG-on-CGB compatibility mode,
// seeding the boot ROM's palette choice for this cartridge.
func (p *PPU) SetCompatibility(e palette.CompatibilityEntry) {
	p.compatMode = true
	p.compatEntry = e
}

// SetDMGPalette selects the host palette used to colorize DMG output.
func (p *PPU) SetDMGPalette(pal palette.DMG) { p.dmgPalette = pal }

// TakeFrame returns the finished framebuffer if the PPU entered VBlank
// since the last call; at most one report per frame.
func (p *PPU) TakeFrame() (*Frame, bool) {
	if !p.frameReady {
		return nil, false
	}
	p.frameReady = false
	return &p.frame, true
}

// EnteredVBlank is the one-shot VBlank entry flag.
func (p *PPU) EnteredVBlank() bool {
	v := p.enteredVBlank
	p.enteredVBlank = false
	return v
}

// EnteredHBlank is the one-shot HBlank entry flag, consumed by the
// bus's HDMA engine (and surfaced to hosts implementing HDMA).
func (p *PPU) EnteredHBlank() bool {
	v := p.enteredHBlank
	p.enteredHBlank = false
	return v
}

// Step advances the PPU by dots T-cycles. With the LCD disabled the
// unit is frozen: LY reads 0, the STAT mode bits read 0 and no
// rendering happens.
func (p *PPU) Step(dots int) {
	if !p.Control.Enabled {
		return
	}
	for i := 0; i < dots; i++ {
		p.tick()
	}
}

func (p *PPU) tick() {
	p.modeDots++

	switch p.Status.Mode {
	case lcd.OAMScan:
		if p.modeDots >= oamScanDots {
			p.enterDrawing()
		}
	case lcd.Drawing:
		if p.curX < ScreenWidth {
			p.renderPixel(p.curX)
			p.curX++
		}
		if p.modeDots >= p.mode3Dots {
			p.enterHBlank()
		}
	case lcd.HBlank:
		if p.modeDots >= dotsPerLine-oamScanDots-p.mode3Dots {
			p.endLine()
		}
	case lcd.VBlank:
		// LY wraps to 0 four dots into line 153; LYC=0 comparisons on
		// the last VBlank line depend on it.
		if p.vblankLine == 9 && p.modeDots == 4 && p.LY == 153 {
			p.LY = 0
			p.checkLYC()
			p.updateSTATLine()
		}
		if p.modeDots >= dotsPerLine {
			p.modeDots = 0
			p.vblankLine++
			if p.vblankLine >= 10 {
				p.startFrame()
			} else {
				if p.LY != 0 {
					p.LY++
				}
				p.checkLYC()
				p.updateSTATLine()
			}
		}
	}
}

func (p *PPU) enterOAMScan() {
	p.Status.Mode = lcd.OAMScan
	p.modeDots = 0
	if p.WY <= p.LY {
		p.frameWY = true
	}
	p.scanOAM()
	p.checkLYC()
	p.updateSTATLine()
}

// enterDrawing computes this line's mode-3 length: 172 dots plus the
// SCX fine-scroll stall, a 6-dot window start penalty and a per-sprite
// fetch penalty of 11 - min(5, (objX+offset) mod 8).
func (p *PPU) enterDrawing() {
	p.Status.Mode = lcd.Drawing
	p.modeDots = 0
	p.curX = 0
	p.windowDrawn = false

	dots := 172 + int(p.SCX%8)
	windowOnLine := p.frameWY && p.Control.WindowEnabled && p.WX <= 166
	if windowOnLine {
		dots += 6
	}
	for _, s := range p.spriteBuf {
		offset := p.SCX
		if windowOnLine && s.X >= p.WX {
			offset = 255 - p.WX
		}
		stall := (int(s.X) + int(offset)) % 8
		if stall > 5 {
			stall = 5
		}
		dots += 11 - stall
	}
	p.mode3Dots = dots
	p.updateSTATLine()
}

func (p *PPU) enterHBlank() {
	p.Status.Mode = lcd.HBlank
	p.modeDots = 0
	p.enteredHBlank = true
	p.updateSTATLine()
}

func (p *PPU) endLine() {
	p.modeDots = 0
	p.LY++
	if p.windowDrawn {
		p.windowLine++
	}
	if p.LY == firstVBlankLine {
		p.enterVBlank()
	} else {
		p.enterOAMScan()
	}
}

func (p *PPU) enterVBlank() {
	p.Status.Mode = lcd.VBlank
	p.vblankLine = 0
	p.irq.Request(interrupts.VBlank)
	p.enteredVBlank = true
	p.frameReady = true
	if !p.cleared {
		p.renderBlank()
		p.cleared = true
	}
	p.checkLYC()
	p.updateSTATLine()
}

func (p *PPU) startFrame() {
	p.LY = 0
	p.windowLine = 0
	p.frameWY = false
	p.enterOAMScan()
}

func (p *PPU) checkLYC() {
	p.Status.Coincidence = p.LY == p.LYC
}

// updateSTATLine recomputes the level of the OR of the four STAT
// sources and requests the STAT interrupt only on a rising edge, never
// per-cycle.
func (p *PPU) updateSTATLine() {
	level := p.Status.SourcesActive()
	if level && !p.statLine {
		p.irq.Request(interrupts.LCDStat)
	}
	p.statLine = level
}

// renderBlank fills the framebuffer with the palette's lightest shade.
func (p *PPU) renderBlank() {
	white := p.dmgPalette.Colors[0]
	if p.cgbMode {
		white = palette.RGB{0xFF, 0xFF, 0xFF}
	}
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			p.frame[y][x] = white
		}
	}
}

func (p *PPU) vramUnlocked() bool {
	return p.Status.Mode != lcd.Drawing || !p.Control.Enabled
}

func (p *PPU) oamUnlocked() bool {
	if !p.Control.Enabled {
		return true
	}
	return p.Status.Mode == lcd.HBlank || p.Status.Mode == lcd.VBlank
}

// ReadVRAM implements a bus read of 0x8000-0x9FFF. During mode 3 the
// CPU is locked out and reads 0xFF.
func (p *PPU) ReadVRAM(addr uint16) uint8 {
	if !p.vramUnlocked() {
		return 0xFF
	}
	return p.vram[p.vramBank][addr&0x1FFF]
}

// WriteVRAM implements a bus write of 0x8000-0x9FFF. The write lands
// regardless of mode; only read-back is blocked during mode 3.
func (p *PPU) WriteVRAM(addr uint16, v uint8) {
	p.vram[p.vramBank][addr&0x1FFF] = v
}

// WriteVRAMBank writes directly into a specific bank, regardless of
// the VBK selection.
func (p *PPU) WriteVRAMBank(bank uint8, addr uint16, v uint8) {
	p.vram[bank&1][addr&0x1FFF] = v
}

// ReadOAM implements a bus read of 0xFE00-0xFE9F.
func (p *PPU) ReadOAM(addr uint16) uint8 {
	if !p.oamUnlocked() || p.DMA.Active() {
		return 0xFF
	}
	return p.oam[addr&0xFF]
}

// WriteOAM implements a bus write of 0xFE00-0xFE9F.
func (p *PPU) WriteOAM(addr uint16, v uint8) {
	if !p.oamUnlocked() || p.DMA.Active() {
		return
	}
	p.oam[addr&0xFF] = v
}

// OAM exposes the raw OAM array to the bus's DMA stepping.
func (p *PPU) OAM() *[160]byte { return &p.oam }

// ReadRegister implements the LCD register reads at 0xFF40-0xFF4B and
// the CGB palette/bank registers.
func (p *PPU) ReadRegister(addr types.Addr) uint8 {
	switch addr {
	case types.LCDC:
		return p.Control.Read()
	case types.STAT:
		if !p.Control.Enabled {
			// mode bits read 0 with the LCD off
			return p.Status.Read() &^ 0x03
		}
		return p.Status.Read()
	case types.SCY:
		return p.SCY
	case types.SCX:
		return p.SCX
	case types.LY:
		if !p.Control.Enabled {
			return 0
		}
		return p.LY
	case types.LYC:
		return p.LYC
	case types.DMA:
		return p.DMA.Read()
	case types.BGP:
		return p.BGP
	case types.OBP0:
		return p.OBP0
	case types.OBP1:
		return p.OBP1
	case types.WY:
		return p.WY
	case types.WX:
		return p.WX
	case types.VBK:
		if p.model == types.CGB {
			return p.vramBank | 0xFE
		}
	case types.BGPI:
		if p.model == types.CGB {
			return p.bgPal.Index()
		}
	case types.BGPD:
		if p.model == types.CGB && p.paletteUnlocked() {
			return p.bgPal.Read()
		}
	case types.OBPI:
		if p.model == types.CGB {
			return p.objPal.Index()
		}
	case types.OBPD:
		if p.model == types.CGB && p.paletteUnlocked() {
			return p.objPal.Read()
		}
	case types.OPRI:
		if p.model == types.CGB {
			if p.opri {
				return 0xFF
			}
			return 0xFE
		}
	}
	return 0xFF
}

// WriteRegister implements the LCD register writes.
func (p *PPU) WriteRegister(addr types.Addr, v uint8) {
	switch addr {
	case types.LCDC:
		wasOn := p.Control.Enabled
		p.Control.Write(v)
		if wasOn && !p.Control.Enabled {
			p.lcdOff()
		} else if !wasOn && p.Control.Enabled {
			p.lcdOn()
		}
	case types.STAT:
		p.Status.Write(v)
		if p.Control.Enabled {
			p.updateSTATLine()
		}
	case types.SCY:
		p.SCY = v
	case types.SCX:
		p.SCX = v
	case types.LY:
		// read-only
	case types.LYC:
		p.LYC = v
		if p.Control.Enabled {
			p.checkLYC()
			p.updateSTATLine()
		}
	case types.DMA:
		p.DMA.Write(v)
	case types.BGP:
		p.BGP = v
	case types.OBP0:
		p.OBP0 = v
	case types.OBP1:
		p.OBP1 = v
	case types.WY:
		p.WY = v
	case types.WX:
		p.WX = v
	case types.VBK:
		if p.model == types.CGB {
			p.vramBank = v & 1
		}
	case types.BGPI:
		if p.model == types.CGB {
			p.bgPal.SetIndex(v)
		}
	case types.BGPD:
		if p.model == types.CGB && p.paletteUnlocked() {
			p.bgPal.Write(v)
		}
	case types.OBPI:
		if p.model == types.CGB {
			p.objPal.SetIndex(v)
		}
	case types.OBPD:
		if p.model == types.CGB && p.paletteUnlocked() {
			p.objPal.Write(v)
		}
	case types.OPRI:
		if p.model == types.CGB {
			p.opri = v&1 != 0
		}
	}
}

func (p *PPU) paletteUnlocked() bool {
	return p.Status.Mode != lcd.Drawing || !p.Control.Enabled
}

// lcdOff freezes the unit: LY reads 0, the mode bits read 0 and the
// next enable starts with a blank (white) frame.
func (p *PPU) lcdOff() {
	p.LY = 0
	p.Status.Mode = lcd.HBlank
	p.modeDots = 0
	p.cleared = false
	p.statLine = false
}

func (p *PPU) lcdOn() {
	p.LY = 0
	p.windowLine = 0
	p.frameWY = false
	p.enterOAMScan()
}

// BGPalette exposes the CGB background CRAM.
func (p *PPU) BGPalette() *palette.CGB { return &p.bgPal }

// OBJPalette exposes the CGB sprite CRAM.
func (p *PPU) OBJPalette() *palette.CGB { return &p.objPal }

func (p *PPU) Save(s *types.State) {
	s.Write8(p.Control.Read())
	s.Write8(p.Status.Read())
	s.Write8(uint8(p.Status.Mode))
	s.Write8(p.LY)
	s.Write8(p.LYC)
	s.Write8(p.SCX)
	s.Write8(p.SCY)
	s.Write8(p.WX)
	s.Write8(p.WY)
	s.Write8(p.BGP)
	s.Write8(p.OBP0)
	s.Write8(p.OBP1)
	s.Write8(p.vramBank)
	s.WriteBool(p.opri)
	s.WriteData(p.vram[0][:])
	s.WriteData(p.vram[1][:])
	s.WriteData(p.oam[:])
	s.Write32(uint32(p.modeDots))
	s.Write32(uint32(p.mode3Dots))
	s.Write32(uint32(p.curX))
	s.Write32(uint32(p.vblankLine))
	s.Write8(p.windowLine)
	s.WriteBool(p.windowDrawn)
	s.WriteBool(p.frameWY)
	s.WriteBool(p.statLine)
	s.WriteBool(p.cleared)
	p.DMA.Save(s)
}

func (p *PPU) Load(s *types.State) {
	p.Control.Write(s.Read8())
	p.Status.Write(s.Read8())
	p.Status.Mode = lcd.Mode(s.Read8())
	p.LY = s.Read8()
	p.LYC = s.Read8()
	p.SCX = s.Read8()
	p.SCY = s.Read8()
	p.WX = s.Read8()
	p.WY = s.Read8()
	p.BGP = s.Read8()
	p.OBP0 = s.Read8()
	p.OBP1 = s.Read8()
	p.vramBank = s.Read8()
	p.opri = s.ReadBool()
	s.ReadData(p.vram[0][:])
	s.ReadData(p.vram[1][:])
	s.ReadData(p.oam[:])
	p.modeDots = int(s.Read32())
	p.mode3Dots = int(s.Read32())
	p.curX = int(s.Read32())
	p.vblankLine = int(s.Read32())
	p.windowLine = s.Read8()
	p.windowDrawn = s.ReadBool()
	p.frameWY = s.ReadBool()
	p.statLine = s.ReadBool()
	p.cleared = s.ReadBool()
	p.DMA.Load(s)
	p.checkLYC()
}

var _ types.Stater = (*PPU)(nil)
