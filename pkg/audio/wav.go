package audio

import (
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"gbcore/internal/apu"
)

// WAVDump accumulates sample blocks and writes them out as a 16-bit
// stereo WAV file, for listening to the mixer's output outside the
// emulator.
type WAVDump struct {
	samples []apu.Sample
	rate    int
}

// NewWAVDump captures at rate Hz (pass the rate the APU was
// configured with).
func NewWAVDump(rate int) *WAVDump {
	return &WAVDump{rate: rate}
}

// Push appends one block to the capture.
func (d *WAVDump) Push(samples []apu.Sample) error {
	d.samples = append(d.samples, samples...)
	return nil
}

func (d *WAVDump) Close() {}

// WriteTo encodes everything captured so far to ws.
func (d *WAVDump) WriteTo(ws io.WriteSeeker) error {
	enc := wav.NewEncoder(ws, d.rate, 16, 2, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 2, SampleRate: d.rate},
		Data:   make([]int, 0, len(d.samples)*2),
	}
	for _, s := range d.samples {
		buf.Data = append(buf.Data, toPCM16(s.L), toPCM16(s.R))
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

func toPCM16(v float32) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(v * 32767)
}
