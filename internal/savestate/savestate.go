// Package savestate wraps a serialized machine state in a small
// container format: a magic/version header, an xxhash checksum of the
// raw payload, and the payload itself compressed with brotli. The
// checksum is verified before any byte of a loaded state is trusted.
package savestate

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/google/brotli/go/cbrotli"

	"gbcore/internal/types"
)

var magic = [4]byte{'G', 'B', 'S', 'S'}

const version = 1

const quality = 5 // brotli quality; states are small, favor speed

// Pack serializes s into the container format.
func Pack(s *types.State) ([]byte, error) {
	raw := s.Bytes()
	compressed, err := cbrotli.Encode(raw, cbrotli.WriterOptions{Quality: quality})
	if err != nil {
		return nil, fmt.Errorf("savestate: compressing: %w", err)
	}

	out := make([]byte, 0, len(compressed)+13)
	out = append(out, magic[:]...)
	out = append(out, version)
	out = binary.BigEndian.AppendUint64(out, xxhash.Sum64(raw))
	out = append(out, compressed...)
	return out, nil
}

// Unpack verifies and decompresses a Pack blob back into a State.
func Unpack(data []byte) (*types.State, error) {
	if len(data) < 13 || [4]byte(data[:4]) != magic {
		return nil, fmt.Errorf("savestate: not a save state")
	}
	if data[4] != version {
		return nil, fmt.Errorf("savestate: unsupported version %d", data[4])
	}
	want := binary.BigEndian.Uint64(data[5:13])

	raw, err := cbrotli.Decode(data[13:])
	if err != nil {
		return nil, fmt.Errorf("savestate: decompressing: %w", err)
	}
	if got := xxhash.Sum64(raw); got != want {
		return nil, fmt.Errorf("savestate: checksum mismatch (%016x != %016x)", got, want)
	}
	return types.StateFromBytes(raw), nil
}
