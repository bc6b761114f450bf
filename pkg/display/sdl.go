package display

import (
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"gbcore/internal/ppu"
)

// SDL renders frames into an SDL2 window. Unlike the Fyne driver it
// polls events itself, so it must run on the main OS thread.
type SDL struct{}

// NewSDL returns the SDL display driver.
func NewSDL() *SDL { return &SDL{} }

func (s *SDL) Run(cfg Config, frames <-chan *ppu.Frame, onInput func(uint8)) error {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return err
	}
	defer sdl.QuitSubSystem(sdl.INIT_VIDEO | sdl.INIT_EVENTS)

	window, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(ppu.ScreenWidth*cfg.Scale), int32(ppu.ScreenHeight*cfg.Scale),
		sdl.WINDOW_SHOWN)
	if err != nil {
		return err
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB24, sdl.TEXTUREACCESS_STREAMING,
		ppu.ScreenWidth, ppu.ScreenHeight)
	if err != nil {
		return err
	}
	defer texture.Destroy()

	var keys keyState
	var lastFrame *ppu.Frame

	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.KeyboardEvent:
				name := sdlKeyName(ev.Keysym.Sym)
				if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_F12 && lastFrame != nil {
					_ = CopyToClipboard(lastFrame, cfg.Scale)
					continue
				}
				b, bound := buttonForName(name)
				if !bound {
					continue
				}
				if ev.Type == sdl.KEYDOWN {
					onInput(keys.press(b))
				} else if ev.Type == sdl.KEYUP {
					onInput(keys.release(b))
				}
			}
		}

		select {
		case frame, open := <-frames:
			if !open {
				return nil
			}
			lastFrame = frame
			raw := unsafe.Slice((*byte)(unsafe.Pointer(frame)), ppu.ScreenWidth*ppu.ScreenHeight*3)
			if err := texture.Update(nil, raw, ppu.ScreenWidth*3); err != nil {
				return err
			}
		default:
		}

		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()
	}
}

func sdlKeyName(sym sdl.Keycode) string {
	switch sym {
	case sdl.K_UP:
		return "Up"
	case sdl.K_DOWN:
		return "Down"
	case sdl.K_LEFT:
		return "Left"
	case sdl.K_RIGHT:
		return "Right"
	case sdl.K_z:
		return "Z"
	case sdl.K_x:
		return "X"
	case sdl.K_RETURN:
		return "Return"
	case sdl.K_BACKSPACE:
		return "BackSpace"
	}
	return ""
}
