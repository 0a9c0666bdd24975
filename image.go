package vrcapture

import (
	"image"

	"golang.org/x/image/draw"
)

// ForceOpaque sets the alpha byte of every RGBA pixel in buf to 255.
func ForceOpaque(buf []byte) {
	for i := 3; i < len(buf); i += 4 {
		buf[i] = 255
	}
}

// ComposeSideBySide places left at the origin and right directly after it.
// The result is as tall as the taller input and fully opaque.
func ComposeSideBySide(left, right image.Image) *image.RGBA {
	lb, rb := left.Bounds(), right.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, lb.Dx()+rb.Dx(), max(lb.Dy(), rb.Dy())))
	draw.Draw(out, image.Rect(0, 0, lb.Dx(), lb.Dy()), left, lb.Min, draw.Src)
	draw.Draw(out, image.Rect(lb.Dx(), 0, lb.Dx()+rb.Dx(), rb.Dy()), right, rb.Min, draw.Src)
	ForceOpaque(out.Pix)
	return out
}
