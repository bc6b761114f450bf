// Package audio plays the core's sample stream through SDL2 and
// offers a WAV capture helper for debugging the mixer offline.
package audio

import (
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"gbcore/internal/apu"
)

// Sink is where the host pushes finished sample blocks.
type Sink interface {
	Push(samples []apu.Sample) error
	Close()
}

// SDL is a queue-fed SDL2 audio device.
type SDL struct {
	device sdl.AudioDeviceID
	muted  bool
}

// OpenSDL opens the default audio device at sampleRate with float32
// stereo samples, matching the APU's output format exactly.
func OpenSDL(sampleRate int, muted bool) (*SDL, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, err
	}
	spec := sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_F32SYS,
		Channels: 2,
		Samples:  uint16(apu.SamplesPerBlock),
	}
	device, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return nil, err
	}
	sdl.PauseAudioDevice(device, false)
	return &SDL{device: device, muted: muted}, nil
}

// Push queues one block. When muted the block is dropped rather than
// queued, keeping the core's pacing identical either way.
func (s *SDL) Push(samples []apu.Sample) error {
	if s.muted || len(samples) == 0 {
		return nil
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*8)
	return sdl.QueueAudio(s.device, raw)
}

// SetMuted toggles output without closing the device.
func (s *SDL) SetMuted(v bool) { s.muted = v }

// QueuedBytes reports how much audio is still waiting in the device
// queue; hosts use it to pace emulation against the audio clock.
func (s *SDL) QueuedBytes() uint32 {
	return sdl.GetQueuedAudioSize(s.device)
}

func (s *SDL) Close() {
	sdl.CloseAudioDevice(s.device)
}
