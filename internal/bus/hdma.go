package bus

import "gbcore/internal/types"

// hdma is the CGB's VRAM DMA engine: a general-purpose mode that
// copies the whole block at once, and an HBlank mode that copies 16
// bytes at each HBlank entry until the block is exhausted or the
// program cancels it.
type hdma struct {
	bus *Bus

	source uint16 // low 4 bits ignored
	dest   uint16 // VRAM-relative, low 4 bits ignored

	blocksLeft uint8 // 16-byte blocks remaining, 0 when idle
	hblankMode bool
}

func newHDMA(b *Bus) *hdma {
	return &hdma{bus: b}
}

func (h *hdma) read(addr types.Addr) uint8 {
	if addr != types.HDMA5 {
		return 0xFF // HDMA1-4 are write-only
	}
	if h.blocksLeft == 0 {
		return 0xFF
	}
	return h.blocksLeft - 1
}

func (h *hdma) write(addr types.Addr, v uint8) {
	switch addr {
	case types.HDMA1:
		h.source = h.source&0x00FF | uint16(v)<<8
	case types.HDMA2:
		h.source = h.source&0xFF00 | uint16(v&0xF0)
	case types.HDMA3:
		h.dest = h.dest&0x00FF | uint16(v&0x1F)<<8
	case types.HDMA4:
		h.dest = h.dest&0xFF00 | uint16(v&0xF0)
	case types.HDMA5:
		if h.blocksLeft > 0 && v&types.Bit7 == 0 {
			// writing with bit 7 clear while an HBlank DMA is in
			// flight cancels it; the remaining length is dropped, so
			// HDMA5 then reads 0xFF
			h.hblankMode = false
			h.blocksLeft = 0
			return
		}
		h.blocksLeft = v&0x7F + 1
		h.hblankMode = v&types.Bit7 != 0
		if !h.hblankMode {
			for h.blocksLeft > 0 {
				h.copyBlock()
			}
		}
	}
}

// hblankTick copies one 16-byte block if an HBlank DMA is active.
func (h *hdma) hblankTick() {
	if h.hblankMode && h.blocksLeft > 0 {
		h.copyBlock()
		if h.blocksLeft == 0 {
			h.hblankMode = false
		}
	}
}

func (h *hdma) copyBlock() {
	for i := 0; i < 16; i++ {
		// the destination lands in whichever VRAM bank VBK selects
		h.bus.PPU.WriteVRAM(0x8000|h.dest&0x1FFF, h.bus.Read(h.source))
		h.source++
		h.dest++
	}
	h.blocksLeft--
}

func (h *hdma) save(s *types.State) {
	s.Write16(h.source)
	s.Write16(h.dest)
	s.Write8(h.blocksLeft)
	s.WriteBool(h.hblankMode)
}

func (h *hdma) load(s *types.State) {
	h.source = s.Read16()
	h.dest = s.Read16()
	h.blocksLeft = s.Read8()
	h.hblankMode = s.ReadBool()
}
