package ppu

import (
	"sort"

	"gbcore/internal/types"
)

// Sprite is one decoded 4-byte OAM entry.
type Sprite struct {
	Y, X    uint8
	Tile    uint8
	Attrs   uint8
	OAMIdx  uint8
}

func (s Sprite) Palette() uint8    { return (s.Attrs >> 4) & 1 }     // DMG OBP0/OBP1
func (s Sprite) CGBPalette() uint8 { return s.Attrs & 0x07 }
func (s Sprite) CGBBank() uint8    { return (s.Attrs >> 3) & 1 }
func (s Sprite) XFlip() bool       { return s.Attrs&types.Bit5 != 0 }
func (s Sprite) YFlip() bool       { return s.Attrs&types.Bit6 != 0 }
func (s Sprite) BehindBG() bool    { return s.Attrs&types.Bit7 != 0 }

func (p *PPU) decodeSprite(i uint8) Sprite {
	base := int(i) * 4
	return Sprite{
		Y:      p.oam[base],
		X:      p.oam[base+1],
		Tile:   p.oam[base+2],
		Attrs:  p.oam[base+3],
		OAMIdx: i,
	}
}

// scanOAM builds the current line's visible-sprite buffer (up to 10
// entries), per the mode-2 rule: LY+16 in [objY, objY+h).
func (p *PPU) scanOAM() {
	p.spriteBuf = p.spriteBuf[:0]
	h := uint16(p.Control.SpriteHeight())
	for i := uint8(0); i < 40 && len(p.spriteBuf) < 10; i++ {
		s := p.decodeSprite(i)
		objY := uint16(s.Y)
		ly16 := uint16(p.LY) + 16
		if ly16 >= objY && ly16 < objY+h {
			p.spriteBuf = append(p.spriteBuf, s)
		}
	}
	// DMG draws the leftmost sprite on top; CGB uses OAM order unless
	// OPRI selects the DMG rule. The sort is stable so ties fall back
	// to OAM index either way.
	if !p.cgbMode || p.opri {
		sort.SliceStable(p.spriteBuf, func(i, j int) bool {
			return p.spriteBuf[i].X < p.spriteBuf[j].X
		})
	}
}
