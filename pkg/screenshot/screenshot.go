// Package screenshot converts a finished framebuffer into a standard
// image and encodes it as PNG, with optional integer upscaling.
package screenshot

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"gbcore/internal/ppu"
)

// Image converts frame into a standard RGBA image.
func Image(frame *ppu.Frame) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			c := frame[y][x]
			img.SetRGBA(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF})
		}
	}
	return img
}

// WritePNG encodes frame to w, upscaled by scale (nearest-neighbor, so
// pixels stay crisp). A scale below 1 is treated as 1.
func WritePNG(w io.Writer, frame *ppu.Frame, scale int) error {
	if scale < 1 {
		scale = 1
	}
	img := Image(frame)
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*scale, ppu.ScreenHeight*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}
	return png.Encode(w, img)
}
