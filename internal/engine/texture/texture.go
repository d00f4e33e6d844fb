// Package texture holds decoded images and the samplers the terrain builder reads them with.
package texture

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Texture is a decoded image ready for sampling or GPU upload.
type Texture struct {
	Name  string
	Image *image.RGBA
}

// New wraps an already decoded image.
func New(name string, img image.Image) *Texture {
	return &Texture{Name: name, Image: ImageToRGBA(img)}
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int {
	return t.Image.Bounds().Dx()
}

// Height returns the texture height in pixels.
func (t *Texture) Height() int {
	return t.Image.Bounds().Dy()
}

// Sample returns the bilinearly filtered color at (u, v) with repeat wrapping.
// v=0 is the bottom row of the image, matching the BottomUpPixels GL upload.
func (t *Texture) Sample(u, v float32) color.RGBA {
	w, h := t.Width(), t.Height()
	if w == 0 || h == 0 {
		return color.RGBA{}
	}

	fx := fract(u)*float32(w) - 0.5
	fy := (1-fract(v))*float32(h) - 0.5

	x0f := float32(math.Floor(float64(fx)))
	y0f := float32(math.Floor(float64(fy)))
	tx := fx - x0f
	ty := fy - y0f

	x0 := wrapIndex(int(x0f), w)
	x1 := wrapIndex(int(x0f)+1, w)
	y0 := wrapIndex(int(y0f), h)
	y1 := wrapIndex(int(y0f)+1, h)

	c00 := t.at(x0, y0)
	c10 := t.at(x1, y0)
	c01 := t.at(x0, y1)
	c11 := t.at(x1, y1)

	var out [4]uint8
	for i := range out {
		top := c00[i]*(1-tx) + c10[i]*tx
		bottom := c01[i]*(1-tx) + c11[i]*tx
		out[i] = uint8(math.Round(float64(top*(1-ty) + bottom*ty)))
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

func (t *Texture) at(x, y int) [4]float32 {
	b := t.Image.Bounds()
	i := t.Image.PixOffset(b.Min.X+x, b.Min.Y+y)
	p := t.Image.Pix[i : i+4]
	return [4]float32{float32(p[0]), float32(p[1]), float32(p[2]), float32(p[3])}
}

// BottomUpPixels returns the texture's RGBA rows ordered bottom row first, the
// layout glTexImage2D expects for v=0 to address the bottom of the image.
func (t *Texture) BottomUpPixels() []byte {
	w, h := t.Width(), t.Height()
	rowSize := w * 4
	pixels := make([]byte, rowSize*h)
	b := t.Image.Bounds()
	for y := 0; y < h; y++ {
		src := t.Image.PixOffset(b.Min.X, b.Min.Y+h-1-y)
		copy(pixels[y*rowSize:(y+1)*rowSize], t.Image.Pix[src:src+rowSize])
	}
	return pixels
}

// ImageToRGBA converts any image.Image to *image.RGBA anchored at the origin.
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func fract(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
