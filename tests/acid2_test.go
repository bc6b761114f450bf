package tests

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gbcore/internal/types"
)

// The acid2 renderer tests compare a frame digest against a pinned
// reference. The digests live next to the ROMs (as 8 big-endian
// bytes) so they can be regenerated from a known-good build with
// UPDATE_DIGESTS=1 go test -run Acid2.
var update = os.Getenv("UPDATE_DIGESTS") != ""

var acid2ROMs = []struct {
	name  string
	rom   string
	model types.Model
}{
	{"dmg-acid2", "acid2/dmg-acid2.gb", types.DMG},
	{"cgb-acid2", "acid2/cgb-acid2.gbc", types.CGB},
}

func TestAcid2(t *testing.T) {
	for _, tt := range acid2ROMs {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGameboy(t, tt.rom, tt.model)
			runCycles(g, 5_000_000)

			frame, ok := g.TakeFrame()
			for !ok {
				g.Step()
				frame, ok = g.TakeFrame()
			}
			got := fnv1aFrame(frame)

			digestPath := filepath.Join(romDir, tt.rom+".digest")
			if update {
				var buf [8]byte
				binary.BigEndian.PutUint64(buf[:], got)
				if err := os.WriteFile(digestPath, buf[:], 0o644); err != nil {
					t.Fatal(err)
				}
				t.Logf("pinned digest %016x", got)
				return
			}

			raw, err := os.ReadFile(digestPath)
			if os.IsNotExist(err) {
				t.Skipf("no pinned digest for %s (run with UPDATE_DIGESTS=1 to create one)", tt.name)
			}
			if err != nil {
				t.Fatal(err)
			}
			want := binary.BigEndian.Uint64(raw)
			if got != want {
				t.Errorf("frame digest = %s, want %s",
					fmt.Sprintf("%016x", got), fmt.Sprintf("%016x", want))
			}
		})
	}
}
