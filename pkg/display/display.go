// Package display presents framebuffers in a host window and turns
// key events into joypad snapshots. Two drivers are provided: a Fyne
// window (the default) and an SDL2 window.
package display

import (
	"bytes"

	"golang.design/x/clipboard"

	"gbcore/internal/joypad"
	"gbcore/internal/ppu"
	"gbcore/pkg/screenshot"
)

// Config is shared between drivers.
type Config struct {
	Title string
	Scale int
}

// Driver blocks in Run, rendering frames from the channel and calling
// onInput with a packed joypad snapshot (1 = released) whenever the
// held-key set changes. Run returns when the user closes the window.
type Driver interface {
	Run(cfg Config, frames <-chan *ppu.Frame, onInput func(uint8)) error
}

// keyState tracks which joypad buttons are currently held and packs
// them into the active-low byte the core consumes.
type keyState struct {
	held uint8 // 1 = pressed, joypad bit order
}

func (k *keyState) press(b uint8) uint8   { k.held |= b; return ^k.held }
func (k *keyState) release(b uint8) uint8 { k.held &^= b; return ^k.held }

// buttonForName maps a host key name (driver-normalized) to a joypad
// button bit; ok is false for unbound keys.
func buttonForName(name string) (uint8, bool) {
	switch name {
	case "Up":
		return joypad.Up, true
	case "Down":
		return joypad.Down, true
	case "Left":
		return joypad.Left, true
	case "Right":
		return joypad.Right, true
	case "Z":
		return joypad.A, true
	case "X":
		return joypad.B, true
	case "Return":
		return joypad.Start, true
	case "BackSpace":
		return joypad.Select, true
	}
	return 0, false
}

var clipboardReady bool

// CopyToClipboard places a PNG of frame on the OS clipboard. Used by
// the drivers' screenshot hotkey.
func CopyToClipboard(frame *ppu.Frame, scale int) error {
	if !clipboardReady {
		if err := clipboard.Init(); err != nil {
			return err
		}
		clipboardReady = true
	}
	var buf bytes.Buffer
	if err := screenshot.WritePNG(&buf, frame, scale); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	return nil
}
