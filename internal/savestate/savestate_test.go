package savestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbcore/internal/types"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	s := types.NewState()
	s.Write16(0x1234)
	s.WriteData(make([]byte, 8192)) // compressible payload
	s.Write8(0x56)

	blob, err := Pack(s)
	require.NoError(t, err)
	assert.Less(t, len(blob), 8192, "zero-heavy state compresses")

	r, err := Unpack(blob)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), r.Read16())
	r.ReadData(make([]byte, 8192))
	assert.Equal(t, uint8(0x56), r.Read8())
}

func TestUnpackRejectsGarbage(t *testing.T) {
	_, err := Unpack([]byte("not a save state at all"))
	assert.Error(t, err)

	_, err = Unpack(nil)
	assert.Error(t, err)
}

func TestUnpackDetectsCorruption(t *testing.T) {
	s := types.NewState()
	s.WriteData([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	blob, err := Pack(s)
	require.NoError(t, err)

	// flip a checksum bit: the payload decompresses fine but no
	// longer matches
	blob[6] ^= 0x01
	_, err = Unpack(blob)
	assert.ErrorContains(t, err, "checksum")
}
