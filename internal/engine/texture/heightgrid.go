package texture

import "fmt"

// HeightGrid is a 2D grid of normalized elevation samples in [0,1].
// Row 0 is the top of the source image.
type HeightGrid struct {
	Width  int
	Height int
	Values []float32
}

// NewHeightGrid builds a grid from the red channel of a height-map texture.
func NewHeightGrid(t *Texture) (*HeightGrid, error) {
	w, h := t.Width(), t.Height()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("height-map %s is empty", t.Name)
	}

	g := &HeightGrid{
		Width:  w,
		Height: h,
		Values: make([]float32, w*h),
	}
	b := t.Image.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := t.Image.PixOffset(b.Min.X+x, b.Min.Y+y)
			g.Values[y*w+x] = float32(t.Image.Pix[i]) / 255
		}
	}
	return g, nil
}

// At returns the bilinearly interpolated sample at (u, v), clamped to the grid edge.
// v=0 is the bottom row, the same convention as Texture.Sample.
func (g *HeightGrid) At(u, v float32) float32 {
	u = clamp01(u)
	v = clamp01(v)

	fx := u * float32(g.Width-1)
	fy := (1 - v) * float32(g.Height-1)

	x0 := int(fx)
	y0 := int(fy)
	x1 := min(x0+1, g.Width-1)
	y1 := min(y0+1, g.Height-1)
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	top := g.cell(x0, y0)*(1-tx) + g.cell(x1, y0)*tx
	bottom := g.cell(x0, y1)*(1-tx) + g.cell(x1, y1)*tx
	return top*(1-ty) + bottom*ty
}

func (g *HeightGrid) cell(x, y int) float32 {
	return g.Values[y*g.Width+x]
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
