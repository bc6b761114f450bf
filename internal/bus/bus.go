// Package bus unifies the Game Boy's 64 KiB address space: it
// dispatches reads and writes to the cartridge, VRAM, WRAM, OAM, the
// I/O registers and HRAM, steps the OAM DMA engine and the timer
// between CPU sub-cycles, and advances the PPU and APU once per
// instruction.
package bus

import (
	"gbcore/internal/apu"
	"gbcore/internal/cartridge"
	"gbcore/internal/cheats"
	"gbcore/internal/interrupts"
	"gbcore/internal/joypad"
	"gbcore/internal/ppu"
	"gbcore/internal/serial"
	"gbcore/internal/timer"
	"gbcore/internal/types"
	"gbcore/pkg/log"
)

// Bus owns every addressable component and the CGB-only machinery
// (WRAM banking, speed switch, HDMA).
type Bus struct {
	model types.Model

	Cart   *cartridge.Cartridge
	IRQ    *interrupts.Controller
	Timer  *timer.Controller
	Joypad *joypad.Controller
	Serial *serial.Controller
	PPU    *ppu.PPU
	APU    *apu.APU
	Cheats *cheats.Registry

	wram     [8][0x1000]byte
	wramBank uint8 // SVBK, 1..7
	hram     [0x7F]byte

	bootROM     []byte
	bootEnabled bool

	doubleSpeed bool
	key1Armed   bool

	hdma *hdma

	// hblankSeen is the host-visible one-shot, latched from the PPU's
	// own HBlank flag after the bus's HDMA engine has observed it.
	hblankSeen bool

	log log.Logger
}

// New wires a Bus for model around cart. All peripheral state is
// created here; nothing is shared with a previous instance.
func New(model types.Model, cart *cartridge.Cartridge, logger log.Logger) *Bus {
	b := &Bus{
		model:    model,
		Cart:     cart,
		wramBank: 1,
		Cheats:   cheats.NewRegistry(),
		log:      logger,
	}
	b.IRQ = interrupts.New()
	b.Timer = timer.New(b.IRQ)
	b.Joypad = joypad.New(b.IRQ)
	b.Serial = serial.New(b.IRQ)
	b.PPU = ppu.New(model, b.IRQ, b.dmaRead)
	b.APU = apu.New(model)
	b.Timer.OnFrameSequencer(b.APU.ClockFrameSequencer)
	b.hdma = newHDMA(b)
	return b
}

// LoadBootROM overlays rom at the bottom of the address space until
// the program writes 0xFF50.
func (b *Bus) LoadBootROM(rom []byte) {
	b.bootROM = rom
	b.bootEnabled = len(rom) > 0
}

// BootEnabled reports whether the boot ROM overlay is still mapped.
func (b *Bus) BootEnabled() bool { return b.bootEnabled }

// DoubleSpeed reports the CGB speed-switch state.
func (b *Bus) DoubleSpeed() bool { return b.doubleSpeed }

// SpeedSwitch performs the KEY1 handshake: with the armed bit set it
// flips the speed, clears the armed bit and zeroes DIV. Returns false
// on DMG or when not armed.
func (b *Bus) SpeedSwitch() bool {
	if b.model != types.CGB || !b.key1Armed {
		return false
	}
	b.key1Armed = false
	b.doubleSpeed = !b.doubleSpeed
	b.Timer.SetDoubleSpeed(b.doubleSpeed)
	b.Timer.Write(types.DIV, 0)
	return true
}

// RequestInterrupt lets peripherals outside the bus (none today, but
// hosts poking at the core in tests) raise an interrupt line.
func (b *Bus) RequestInterrupt(k interrupts.Kind) { b.IRQ.Request(k) }

// PartialStep advances the CPU-clock domain between two CPU
// sub-operations: the timer (and through it the APU frame sequencer),
// the OAM DMA engine and the serial shift clock.
func (b *Bus) PartialStep(mCycles int) {
	t := mCycles * 4
	b.Timer.Step(t)
	b.Serial.Step(t)
	b.PPU.DMA.Step(mCycles, b.PPU.OAM())
}

// Step advances the dot-clock domain at instruction end: the PPU, the
// APU's sample production and the cartridge RTC. In double-speed mode
// an M-cycle is only two dots of real time.
func (b *Bus) Step(mCycles int) {
	dots := mCycles * 4
	if b.doubleSpeed {
		dots = mCycles * 2
	}
	b.PPU.Step(dots)
	b.APU.Step(dots)
	b.Cart.StepRTC(dots)

	if b.PPU.EnteredHBlank() {
		b.hblankSeen = true
		b.hdma.hblankTick()
	}
}

// EnteredHBlank is the host-facing one-shot HBlank flag.
func (b *Bus) EnteredHBlank() bool {
	v := b.hblankSeen
	b.hblankSeen = false
	return v
}

// dmaRead is the OAM DMA engine's view of memory. DMA from the OAM
// region itself is redirected to WRAM, matching hardware.
func (b *Bus) dmaRead(addr uint16) uint8 {
	if addr >= 0xFE00 {
		addr -= 0x2000
	}
	return b.Read(addr)
}

// Read dispatches a CPU read of addr.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		if b.bootEnabled && b.bootOverlaps(addr) {
			return b.bootROM[addr]
		}
		return b.Cheats.PatchROM(addr, b.Cart.Read(addr))
	case addr < 0xA000:
		return b.PPU.ReadVRAM(addr)
	case addr < 0xC000:
		return b.Cheats.PatchRAM(addr, b.Cart.Read(addr))
	case addr < 0xD000:
		return b.Cheats.PatchRAM(addr, b.wram[0][addr&0x0FFF])
	case addr < 0xE000:
		return b.Cheats.PatchRAM(addr, b.wram[b.wramBank][addr&0x0FFF])
	case addr < 0xFE00:
		return b.Read(addr - 0x2000) // echo RAM
	case addr < 0xFEA0:
		return b.PPU.ReadOAM(addr)
	case addr < 0xFF00:
		return 0xFF
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr < 0xFFFF:
		return b.hram[addr&0x7F]
	default:
		return b.IRQ.Read(types.IE)
	}
}

// Write dispatches a CPU write of addr.
func (b *Bus) Write(addr uint16, v uint8) {
	switch {
	case addr < 0x8000:
		b.Cart.Write(addr, v) // MBC control registers
	case addr < 0xA000:
		b.PPU.WriteVRAM(addr, v)
	case addr < 0xC000:
		b.Cart.Write(addr, v)
	case addr < 0xD000:
		b.wram[0][addr&0x0FFF] = v
	case addr < 0xE000:
		b.wram[b.wramBank][addr&0x0FFF] = v
	case addr < 0xFE00:
		b.Write(addr-0x2000, v)
	case addr < 0xFEA0:
		b.PPU.WriteOAM(addr, v)
	case addr < 0xFF00:
		// unusable; ignored
	case addr < 0xFF80:
		b.writeIO(addr, v)
	case addr < 0xFFFF:
		b.hram[addr&0x7F] = v
	default:
		b.IRQ.Write(types.IE, v)
	}
}

func (b *Bus) bootOverlaps(addr uint16) bool {
	if addr < 0x100 {
		return true
	}
	// the CGB boot image has a second half above the header
	return b.model == types.CGB && len(b.bootROM) > 0x200 && addr >= 0x200 && addr < 0x900
}

func (b *Bus) readIO(addr types.Addr) uint8 {
	switch {
	case addr == types.P1:
		return b.Joypad.Read(addr)
	case addr == types.SB || addr == types.SC:
		return b.Serial.Read(addr)
	case addr >= types.DIV && addr <= types.TAC:
		return b.Timer.Read(addr)
	case addr == types.IF:
		return b.IRQ.Read(addr)
	case addr >= types.NR10 && addr <= types.WaveRAMEnd:
		return b.APU.Read(addr)
	case addr >= types.LCDC && addr <= types.WX, addr == types.VBK,
		addr >= types.BGPI && addr <= types.OPRI:
		return b.PPU.ReadRegister(addr)
	case addr == types.KEY1:
		if b.model != types.CGB {
			return 0xFF
		}
		v := uint8(0x7E)
		if b.doubleSpeed {
			v |= types.Bit7
		}
		if b.key1Armed {
			v |= types.Bit0
		}
		return v
	case addr >= types.HDMA1 && addr <= types.HDMA5:
		if b.model != types.CGB {
			return 0xFF
		}
		return b.hdma.read(addr)
	case addr == types.SVBK:
		if b.model != types.CGB {
			return 0xFF
		}
		return b.wramBank | 0xF8
	case addr == types.BDIS:
		if b.bootEnabled {
			return 0xFE
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (b *Bus) writeIO(addr types.Addr, v uint8) {
	switch {
	case addr == types.P1:
		b.Joypad.Write(addr, v)
	case addr == types.SB || addr == types.SC:
		b.Serial.Write(addr, v)
	case addr >= types.DIV && addr <= types.TAC:
		b.Timer.Write(addr, v)
	case addr == types.IF:
		b.IRQ.Write(addr, v)
	case addr >= types.NR10 && addr <= types.WaveRAMEnd:
		b.APU.Write(addr, v)
	case addr >= types.LCDC && addr <= types.WX, addr == types.VBK,
		addr >= types.BGPI && addr <= types.OPRI:
		b.PPU.WriteRegister(addr, v)
	case addr == types.KEY1:
		if b.model == types.CGB {
			b.key1Armed = v&types.Bit0 != 0
		}
	case addr >= types.HDMA1 && addr <= types.HDMA5:
		if b.model == types.CGB {
			b.hdma.write(addr, v)
		}
	case addr == types.SVBK:
		if b.model == types.CGB {
			b.wramBank = v & 0x07
			if b.wramBank == 0 {
				b.wramBank = 1
			}
		}
	case addr == types.BDIS:
		if v != 0 && b.bootEnabled {
			b.bootEnabled = false
		}
	default:
		b.log.Debugf("bus: write to unmapped I/O register %04X=%02X", addr, v)
	}
}

func (b *Bus) Save(s *types.State) {
	for i := range b.wram {
		s.WriteData(b.wram[i][:])
	}
	s.Write8(b.wramBank)
	s.WriteData(b.hram[:])
	s.WriteBool(b.bootEnabled)
	s.WriteBool(b.doubleSpeed)
	s.WriteBool(b.key1Armed)
	b.IRQ.Save(s)
	b.Timer.Save(s)
	b.Joypad.Save(s)
	b.Serial.Save(s)
	b.PPU.Save(s)
	b.APU.Save(s)
	b.hdma.save(s)
}

func (b *Bus) Load(s *types.State) {
	for i := range b.wram {
		s.ReadData(b.wram[i][:])
	}
	b.wramBank = s.Read8()
	s.ReadData(b.hram[:])
	b.bootEnabled = s.ReadBool()
	b.doubleSpeed = s.ReadBool()
	b.key1Armed = s.ReadBool()
	b.IRQ.Load(s)
	b.Timer.Load(s)
	b.Joypad.Load(s)
	b.Serial.Load(s)
	b.PPU.Load(s)
	b.APU.Load(s)
	b.hdma.load(s)
	b.Timer.SetDoubleSpeed(b.doubleSpeed)
}

var _ types.Stater = (*Bus)(nil)
