package tests

import (
	"strings"
	"testing"

	"gbcore/internal/types"
)

// The Blargg suites print their result over the serial port; a run
// passes when "Passed" shows up without a preceding "Failed".
var blarggROMs = []struct {
	name string
	rom  string
}{
	{"cpu_instrs", "blargg/cpu_instrs.gb"},
	{"instr_timing", "blargg/instr_timing.gb"},
	{"mem_timing", "blargg/mem_timing.gb"},
	{"mem_timing-2", "blargg/mem_timing-2.gb"},
	{"halt_bug", "blargg/halt_bug.gb"},
}

func TestBlargg(t *testing.T) {
	for _, tt := range blarggROMs {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGameboy(t, tt.rom, types.DMG)
			output := runUntilSerial(g, "Passed", "Failed")
			if strings.Contains(output, "Failed") || !strings.Contains(output, "Passed") {
				t.Errorf("expected serial output to contain 'Passed', got %q", output)
			}
		})
	}
}
