// Package boot loads and validates boot ROM images. When an image is
// supplied the core executes the real boot sequence (logo scroll,
// header checksum) from address 0; without one, construction
// fast-forwards to the documented post-boot state.
package boot

import (
	"fmt"
	"os"

	"gbcore/internal/types"
)

const (
	// DMGSize is the size of the original monochrome boot image.
	DMGSize = 0x100
	// CGBSize is the size of the color boot image: 0x100 bytes below
	// the cartridge header plus 0x700 above it.
	CGBSize = 0x900
)

// Load reads a boot ROM image from path and checks that its size
// matches what model expects.
func Load(path string, model types.Model) ([]byte, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("boot: reading %s: %w", path, err)
	}
	return Validate(rom, model)
}

// Validate checks a boot image against model. CGB images are accepted
// both with and without the 0x100-byte header gap cut out.
func Validate(rom []byte, model types.Model) ([]byte, error) {
	switch model {
	case types.DMG:
		if len(rom) != DMGSize {
			return nil, fmt.Errorf("boot: DMG image must be %d bytes, got %d", DMGSize, len(rom))
		}
	case types.CGB:
		switch len(rom) {
		case CGBSize:
		case CGBSize - 0x100:
			// distributed without the header gap; reinsert it so
			// addresses line up with the memory map
			padded := make([]byte, CGBSize)
			copy(padded, rom[:0x100])
			copy(padded[0x200:], rom[0x100:])
			rom = padded
		default:
			return nil, fmt.Errorf("boot: CGB image must be %d or %d bytes, got %d", CGBSize, CGBSize-0x100, len(rom))
		}
	}
	return rom, nil
}
