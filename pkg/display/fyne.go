package display

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"

	"gbcore/internal/ppu"
	"gbcore/pkg/screenshot"
)

// Fyne renders frames into a Fyne window.
type Fyne struct{}

// NewFyne returns the Fyne display driver.
func NewFyne() *Fyne { return &Fyne{} }

func (f *Fyne) Run(cfg Config, frames <-chan *ppu.Frame, onInput func(uint8)) error {
	a := app.New()
	w := a.NewWindow(cfg.Title)
	w.SetFixedSize(true)
	w.Resize(fyne.NewSize(
		float32(ppu.ScreenWidth*cfg.Scale),
		float32(ppu.ScreenHeight*cfg.Scale),
	))

	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight)))
	img.ScaleMode = canvas.ImageScalePixels
	w.SetContent(img)

	var keys keyState
	var lastFrame *ppu.Frame

	// a mobile canvas has no key hooks; rendering still works there
	if deskCanvas, ok := w.Canvas().(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			if ev.Name == fyne.KeyF12 && lastFrame != nil {
				_ = CopyToClipboard(lastFrame, cfg.Scale)
				return
			}
			if b, bound := buttonForName(string(ev.Name)); bound {
				onInput(keys.press(b))
			}
		})
		deskCanvas.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if b, bound := buttonForName(string(ev.Name)); bound {
				onInput(keys.release(b))
			}
		})
	}

	go func() {
		for frame := range frames {
			lastFrame = frame
			img.Image = screenshot.Image(frame)
			img.Refresh()
		}
	}()

	w.ShowAndRun()
	return nil
}
