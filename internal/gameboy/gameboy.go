// Package gameboy wires the CPU, bus and cartridge into a complete
// machine and exposes the host-facing surface: stepping, joypad input,
// frame and audio hand-off, battery saves and full save states.
package gameboy

import (
	"errors"
	"fmt"

	"gbcore/internal/apu"
	"gbcore/internal/boot"
	"gbcore/internal/bus"
	"gbcore/internal/cartridge"
	"gbcore/internal/cpu"
	"gbcore/internal/ppu"
	"gbcore/internal/ppu/palette"
	"gbcore/internal/savestate"
	"gbcore/internal/types"
	"gbcore/pkg/log"
)

// ErrCGBOnly is returned when a CGB-only cartridge is loaded on a
// machine forced to the DMG model.
var ErrCGBOnly = errors.New("gameboy: cartridge requires a Game Boy Color")

// GameBoy is one constructed machine.
type GameBoy struct {
	Model types.Model

	CPU  *cpu.CPU
	Bus  *bus.Bus
	Cart *cartridge.Cartridge

	log log.Logger
}

// New parses rom, selects the model, and constructs a ready-to-step
// machine. On any construction failure no partial machine is returned.
func New(rom []byte, opts ...Option) (*GameBoy, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, err
	}

	model := o.model
	if o.autoModel {
		model = types.DMG
		if cart.Header.CGBFlag != cartridge.FlagDMGOnly {
			model = types.CGB
		}
	}
	if model == types.DMG && cart.Header.CGBFlag == cartridge.FlagCGBOnly {
		return nil, ErrCGBOnly
	}

	g := &GameBoy{
		Model: model,
		Cart:  cart,
		log:   o.logger,
	}
	g.Bus = bus.New(model, cart, o.logger)
	g.CPU = cpu.New(g.Bus, g.Bus.IRQ)

	g.Bus.APU.SetSampleRate(o.sampleRate)
	g.Bus.PPU.SetDMGPalette(o.dmgPalette)

	cgbCart := cart.Header.CGBFlag != cartridge.FlagDMGOnly
	g.Bus.PPU.SetCGBMode(model == types.CGB && cgbCart)
	if model == types.CGB && !cgbCart {
		g.Bus.PPU.SetCompatibility(palette.Lookup(cart.Header.TitleChecksum()))
	}

	if o.bootROM != nil {
		img, err := boot.Validate(o.bootROM, model)
		if err != nil {
			return nil, err
		}
		g.Bus.LoadBootROM(img)
	} else {
		g.postBoot()
	}
	return g, nil
}

// postBoot fast-forwards the machine to the state the boot ROM leaves
// behind: register file, stack pointer, entry point and the I/O
// register defaults.
func (g *GameBoy) postBoot() {
	r := g.Model.Registers()
	g.CPU.AF.Hi, g.CPU.AF.Lo = r[0], r[1]
	g.CPU.BC.Hi, g.CPU.BC.Lo = r[2], r[3]
	g.CPU.DE.Hi, g.CPU.DE.Lo = r[4], r[5]
	g.CPU.HL.Hi, g.CPU.HL.Lo = r[6], r[7]
	g.CPU.SP = 0xFFFE
	g.CPU.PC = 0x0100

	// the boot ROM leaves the APU powered with these levels
	g.Bus.Write(types.NR52, 0x80)
	g.Bus.Write(types.NR50, 0x77)
	g.Bus.Write(types.NR51, 0xF3)
	g.Bus.Write(types.NR11, 0xBF)
	g.Bus.Write(types.NR12, 0xF3)

	g.Bus.Write(types.BGP, 0xFC)
	g.Bus.Write(types.OBP0, 0xFF)
	g.Bus.Write(types.OBP1, 0xFF)
	g.Bus.Write(types.LCDC, 0x91)
	g.Bus.IRQ.Flag = 0x01
}

// Step executes one instruction and returns the T-cycles it consumed.
func (g *GameBoy) Step() int {
	return g.CPU.Step()
}

// StepFrame runs until the next frame is ready (or a safety bound of
// slightly more than one frame's worth of T-cycles passes, for a
// disabled LCD) and returns it.
func (g *GameBoy) StepFrame() *ppu.Frame {
	const frameDots = 70224
	budget := frameDots + frameDots/4
	for budget > 0 {
		budget -= g.Step()
		if f, ok := g.TakeFrame(); ok {
			return f
		}
	}
	return nil
}

// UpdateJoypad latches the host's button snapshot; bits 7..0 are
// Start, Select, B, A, Down, Up, Left, Right, 1 = released.
func (g *GameBoy) UpdateJoypad(status uint8) {
	g.Bus.Joypad.SetState(status)
}

// TakeFrame is the one-shot frame hand-off: non-nil exactly once per
// VBlank entry.
func (g *GameBoy) TakeFrame() (*ppu.Frame, bool) {
	return g.Bus.PPU.TakeFrame()
}

// TakeAudio is the one-shot audio hand-off: a block of interleaved
// stereo samples when one has accumulated.
func (g *GameBoy) TakeAudio() ([]apu.Sample, bool) {
	return g.Bus.APU.TakeBlock()
}

// EnteredHBlank is the one-shot HBlank flag for hosts driving their
// own HBlank-synchronized work.
func (g *GameBoy) EnteredHBlank() bool {
	return g.Bus.EnteredHBlank()
}

// SerialOutput returns everything the program has written to the
// serial port, which test ROMs use to report pass/fail text.
func (g *GameBoy) SerialOutput() []byte {
	return g.Bus.Serial.DebugBuffer
}

// Save serializes battery-backed cartridge RAM; nil when the
// cartridge has no battery.
func (g *GameBoy) Save() []byte {
	if !g.Cart.HasBattery() {
		return nil
	}
	return g.Cart.Save()
}

// LoadSave restores battery-backed cartridge RAM.
func (g *GameBoy) LoadSave(data []byte) {
	g.Cart.Load(data)
}

// SaveRTC serializes the cartridge's real-time clock, stamping it
// with now (Unix seconds); false when there is no RTC.
func (g *GameBoy) SaveRTC(now int64) ([]byte, bool) {
	return g.Cart.SaveRTC(now)
}

// LoadRTC restores the real-time clock and applies the wall-clock
// time that passed since the save was written.
func (g *GameBoy) LoadRTC(data []byte, now int64) error {
	return g.Cart.LoadRTC(data, now)
}

// SaveState serializes the complete machine into a checksummed,
// compressed blob.
func (g *GameBoy) SaveState() ([]byte, error) {
	s := types.NewState()
	g.CPU.Save(s)
	g.Bus.Save(s)
	g.Cart.SaveState(s) // MBC banks and RAM, so a state is self-contained
	return savestate.Pack(s)
}

// LoadState restores a SaveState blob into this machine. The blob
// must come from a machine constructed from the same cartridge.
func (g *GameBoy) LoadState(data []byte) error {
	s, err := savestate.Unpack(data)
	if err != nil {
		return err
	}
	g.CPU.Load(s)
	g.Bus.Load(s)
	g.Cart.LoadState(s)
	return nil
}

// Title returns the cartridge title, used by hosts to derive save
// file paths.
func (g *GameBoy) Title() string { return g.Cart.Header.Title }

func (g *GameBoy) String() string {
	return fmt.Sprintf("%s (%s)", g.Cart.Header.Title, g.Model)
}
