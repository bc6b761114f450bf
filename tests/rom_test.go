// Package tests runs the standard accuracy suites (Blargg, Mooneye,
// acid2) against the core. The ROMs are not redistributable, so every
// test skips itself when its ROM is absent from testdata/roms.
package tests

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gbcore/internal/gameboy"
	"gbcore/internal/ppu"
	"gbcore/internal/types"
)

const romDir = "testdata/roms"

// maxCycles bounds every ROM run; the suites all finish well inside
// 2^32 T-cycles.
const maxCycles = 1 << 32

func loadTestROM(t *testing.T, path string) []byte {
	t.Helper()
	rom, err := os.ReadFile(filepath.Join(romDir, path))
	if os.IsNotExist(err) {
		t.Skipf("ROM %s not present", path)
	}
	if err != nil {
		t.Fatal(err)
	}
	return rom
}

func newTestGameboy(t *testing.T, romPath string, model types.Model) *gameboy.GameBoy {
	t.Helper()
	g, err := gameboy.New(loadTestROM(t, romPath), gameboy.AsModel(model))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// runUntilSerial steps g until the serial debug buffer contains one of
// the needles or the cycle budget runs out, and returns the buffer.
func runUntilSerial(g *gameboy.GameBoy, needles ...string) string {
	cycles := 0
	checkAt := 0
	for cycles < maxCycles {
		cycles += g.Step()
		// scanning the buffer every instruction would dominate the
		// run; check every ~1M cycles
		if cycles < checkAt {
			continue
		}
		checkAt = cycles + 1_000_000
		out := string(g.SerialOutput())
		for _, needle := range needles {
			if strings.Contains(out, needle) {
				return out
			}
		}
	}
	return string(g.SerialOutput())
}

// runCycles steps g for at least n T-cycles.
func runCycles(g *gameboy.GameBoy, n int) {
	for total := 0; total < n; {
		total += g.Step()
	}
}

// fnv1aFrame hashes a frame with 64-bit FNV-1a, the digest format the
// reference images are pinned in.
func fnv1aFrame(frame *ppu.Frame) uint64 {
	hash := uint64(0xCBF29CE484222325)
	const prime = 0x100000001B3
	for y := range frame {
		for x := range frame[y] {
			for _, c := range frame[y][x] {
				hash ^= uint64(c)
				hash *= prime
			}
		}
	}
	return hash
}
