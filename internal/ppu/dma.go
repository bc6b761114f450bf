package ppu

import "gbcore/internal/types"

// DMA models the OAM DMA engine: a write to 0xFF46 schedules a
// 160-M-cycle copy, one byte per M-cycle, from (value<<8)|i into OAM.
// The per-M-cycle stepping is driven directly from the CPU's
// PartialStep so mid-instruction OAM state stays observable.
type DMA struct {
	active   bool
	source   uint16
	progress int // bytes copied so far, 0..160
	value    uint8

	read func(addr uint16) uint8
}

// NewDMA wires the engine to a callback that reads the full address
// space (ROM/WRAM/VRAM); the OAM array itself is owned by the PPU and
// passed to Step.
func NewDMA(read func(addr uint16) uint8) *DMA {
	return &DMA{read: read}
}

// Write implements the 0xFF46 trigger register.
func (d *DMA) Write(v uint8) {
	d.value = v
	d.source = uint16(v) << 8
	d.progress = 0
	d.active = true
}

func (d *DMA) Read() uint8 { return d.value }

func (d *DMA) Active() bool { return d.active }

// Step advances the copy by mCycles M-cycles, writing into oam.
func (d *DMA) Step(mCycles int, oam *[160]byte) {
	for i := 0; i < mCycles && d.active; i++ {
		src := d.source + uint16(d.progress)
		oam[d.progress] = d.read(src)
		d.progress++
		if d.progress >= 160 {
			d.active = false
		}
	}
}

func (d *DMA) Save(s *types.State) {
	s.WriteBool(d.active)
	s.Write16(d.source)
	s.Write32(uint32(d.progress))
	s.Write8(d.value)
}

func (d *DMA) Load(s *types.State) {
	d.active = s.ReadBool()
	d.source = s.Read16()
	d.progress = int(s.Read32())
	d.value = s.Read8()
}
