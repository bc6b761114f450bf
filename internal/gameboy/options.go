package gameboy

import (
	"gbcore/internal/apu"
	"gbcore/internal/ppu/palette"
	"gbcore/internal/types"
	"gbcore/pkg/log"
)

type options struct {
	model      types.Model
	autoModel  bool
	bootROM    []byte
	sampleRate int
	dmgPalette palette.DMG
	logger     log.Logger
}

func defaultOptions() options {
	return options{
		autoModel:  true,
		sampleRate: apu.DefaultSampleRate,
		dmgPalette: palette.DMGPalettes[palette.Greyscale],
		logger:     log.NewNull(),
	}
}

// Option customizes machine construction.
type Option func(*options)

// AsModel forces the machine model instead of following the cartridge
// header's CGB flag.
func AsModel(m types.Model) Option {
	return func(o *options) {
		o.model = m
		o.autoModel = false
	}
}

// WithBootROM executes the given boot image from address 0 instead of
// fast-forwarding to the post-boot state.
func WithBootROM(rom []byte) Option {
	return func(o *options) { o.bootROM = rom }
}

// WithSampleRate overrides the audio output rate.
func WithSampleRate(hz int) Option {
	return func(o *options) { o.sampleRate = hz }
}

// WithDMGPalette selects the host palette used to colorize DMG
// output.
func WithDMGPalette(p palette.DMG) Option {
	return func(o *options) { o.dmgPalette = p }
}

// WithLogger routes core diagnostics to logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}
