package vrcapture

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestComposeSideBySide(t *testing.T) {
	left := filled(100, 100, color.RGBA{R: 255, A: 10})
	right := filled(120, 100, color.RGBA{B: 255, A: 0})

	out := ComposeSideBySide(left, right)
	assert.Equal(t, image.Rect(0, 0, 220, 100), out.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(99, 50))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(100, 50))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(219, 99))
}

func TestComposeSideBySideDimensions(t *testing.T) {
	for _, dims := range [][4]int{
		{1, 1, 1, 1},
		{3, 7, 5, 2},
		{640, 480, 1, 960},
		{17, 31, 29, 31},
	} {
		out := ComposeSideBySide(filled(dims[0], dims[1], color.RGBA{}), filled(dims[2], dims[3], color.RGBA{}))
		assert.Equal(t, dims[0]+dims[2], out.Bounds().Dx(), "%v", dims)
		assert.Equal(t, max(dims[1], dims[3]), out.Bounds().Dy(), "%v", dims)
	}
}

func TestForceOpaque(t *testing.T) {
	for _, n := range []int{0, 4, 64, 4096} {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(i * 7)
		}
		ForceOpaque(buf)
		for i := 0; i < n; i++ {
			if i%4 == 3 {
				assert.Equal(t, byte(255), buf[i], "alpha at %d", i)
			} else {
				assert.Equal(t, byte(i*7), buf[i], "color at %d", i)
			}
		}
	}
}
