package ppu

import "gbcore/internal/ppu/palette"

// renderPixel emits the pixel at x on the current scanline: resolves
// the background or window pixel, the winning sprite pixel, composes
// them by priority and writes the final color into the framebuffer.
func (p *PPU) renderPixel(x int) {
	bgColor, bgAttrs, bgOpaquePriority := p.backgroundPixel(x)

	sprite, spriteColor, haveSprite := p.spritePixel(x)

	useSprite := false
	if haveSprite {
		switch {
		case p.cgbMode && !p.Control.BGWindowEnabled:
			// LCDC bit 0 on CGB globally disables BG priority
			useSprite = true
		case bgColor != 0 && (bgOpaquePriority || sprite.BehindBG()):
			useSprite = false
		default:
			useSprite = true
		}
	}

	var out palette.RGB
	if useSprite {
		out = p.spriteRGB(sprite, spriteColor)
	} else {
		out = p.backgroundRGB(bgAttrs, bgColor)
	}
	p.frame[p.LY][x] = out
}

// backgroundPixel resolves the BG/window color index at x, the CGB
// attribute byte of its tile, and whether the tile's BG-priority
// attribute applies.
func (p *PPU) backgroundPixel(x int) (colorIdx, attrs uint8, opaquePriority bool) {
	if !p.cgbMode && !p.Control.BGWindowEnabled {
		return 0, 0, false
	}

	window := p.frameWY && p.Control.WindowEnabled && x+7 >= int(p.WX)

	var px, py int
	var mapHigh bool
	if window {
		px = x + 7 - int(p.WX)
		py = int(p.windowLine)
		mapHigh = p.Control.WindowTileMapHigh
		p.windowDrawn = true
	} else {
		px = (x + int(p.SCX)) & 0xFF
		py = (int(p.LY) + int(p.SCY)) & 0xFF
		mapHigh = p.Control.BGTileMapHigh
	}

	mapBase := 0x1800
	if mapHigh {
		mapBase = 0x1C00
	}
	mapAddr := mapBase + (py/8)*32 + px/8

	tileID := p.vram[0][mapAddr]
	if p.cgbMode {
		attrs = p.vram[1][mapAddr]
	}

	row := py % 8
	if attrs&0x40 != 0 { // Y flip
		row = 7 - row
	}
	bit := 7 - px%8
	if attrs&0x20 != 0 { // X flip
		bit = px % 8
	}

	var tileAddr int
	if p.Control.TileDataLow8000 {
		tileAddr = int(tileID) * 16
	} else {
		tileAddr = 0x1000 + int(int8(tileID))*16
	}
	bank := (attrs >> 3) & 1

	lo := p.vram[bank][tileAddr+row*2]
	hi := p.vram[bank][tileAddr+row*2+1]
	colorIdx = (hi>>bit&1)<<1 | lo>>bit&1
	opaquePriority = p.cgbMode && attrs&0x80 != 0
	return colorIdx, attrs, opaquePriority
}

// spritePixel walks the line's sprite buffer in priority order and
// returns the first sprite with an opaque pixel covering x.
func (p *PPU) spritePixel(x int) (Sprite, uint8, bool) {
	if !p.Control.SpriteEnabled {
		return Sprite{}, 0, false
	}
	h := int(p.Control.SpriteHeight())
	for _, s := range p.spriteBuf {
		// objX covers screen pixels [objX-8, objX-1]
		if int(s.X) < x+1 || int(s.X) > x+8 {
			continue
		}
		col := x - (int(s.X) - 8)
		row := int(p.LY) + 16 - int(s.Y)
		if s.YFlip() {
			row = h - 1 - row
		}
		tile := s.Tile
		if h == 16 {
			tile &= 0xFE
		}
		if s.XFlip() {
			col = 7 - col
		}
		bit := 7 - col

		bank := uint8(0)
		if p.cgbMode {
			bank = s.CGBBank()
		}
		tileAddr := int(tile)*16 + row*2
		lo := p.vram[bank][tileAddr]
		hi := p.vram[bank][tileAddr+1]
		colorIdx := (hi>>bit&1)<<1 | lo>>bit&1
		if colorIdx == 0 {
			continue // transparent; the next sprite in order may cover x
		}
		return s, colorIdx, true
	}
	return Sprite{}, 0, false
}

func (p *PPU) backgroundRGB(attrs, colorIdx uint8) palette.RGB {
	if p.cgbMode {
		return p.bgPal.Color(attrs&0x07, colorIdx)
	}
	shade := p.BGP >> (2 * colorIdx) & 3
	if p.compatMode {
		return p.compatEntry.BG[shade]
	}
	return p.dmgPalette.Colors[shade]
}

func (p *PPU) spriteRGB(s Sprite, colorIdx uint8) palette.RGB {
	if p.cgbMode {
		return p.objPal.Color(s.CGBPalette(), colorIdx)
	}
	pal := p.OBP0
	if s.Palette() == 1 {
		pal = p.OBP1
	}
	shade := pal >> (2 * colorIdx) & 3
	if p.compatMode {
		if s.Palette() == 1 {
			return p.compatEntry.OBJ1[shade]
		}
		return p.compatEntry.OBJ0[shade]
	}
	return p.dmgPalette.Colors[shade]
}
