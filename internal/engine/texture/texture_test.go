package texture

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *Texture {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return New("solid", img)
}

func TestSampleSolid(t *testing.T) {
	c := color.RGBA{R: 10, G: 200, B: 30, A: 255}
	tex := solid(4, 4, c)

	tests := []struct {
		u, v float32
	}{
		{0, 0},
		{0.5, 0.5},
		{0.99, 0.01},
		{3.25, -7.5}, // repeat wrapping
	}
	for _, tt := range tests {
		if got := tex.Sample(tt.u, tt.v); got != c {
			t.Errorf("Sample(%v, %v) = %v, want %v", tt.u, tt.v, got, c)
		}
	}
}

func TestSampleBottomRowAtVZero(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255}) // top
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255}) // bottom
	tex := New("flip", img)

	// v=0.25 lands on the centre of the bottom texel.
	got := tex.Sample(0.5, 0.25)
	if got.B != 255 || got.R != 0 {
		t.Errorf("Sample(0.5, 0.25) = %v, want bottom texel (blue)", got)
	}
	got = tex.Sample(0.5, 0.75)
	if got.R != 255 || got.B != 0 {
		t.Errorf("Sample(0.5, 0.75) = %v, want top texel (red)", got)
	}
}

func TestImageToRGBAOffsetBounds(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 7, 8))
	src.SetGray(5, 5, color.Gray{Y: 128})

	rgba := ImageToRGBA(src)
	if rgba.Bounds() != image.Rect(0, 0, 2, 3) {
		t.Fatalf("bounds = %v, want (0,0)-(2,3)", rgba.Bounds())
	}
	if got := rgba.RGBAAt(0, 0); got.R != 128 || got.A != 255 {
		t.Errorf("pixel (0,0) = %v, want gray 128", got)
	}
}

func TestHeightGrid(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255}) // top-left
	img.SetRGBA(1, 0, color.RGBA{R: 255, A: 255}) // top-right
	img.SetRGBA(0, 1, color.RGBA{R: 0, A: 255})   // bottom-left
	img.SetRGBA(1, 1, color.RGBA{R: 0, A: 255})   // bottom-right

	g, err := NewHeightGrid(New("hm", img))
	if err != nil {
		t.Fatalf("NewHeightGrid() error = %v", err)
	}

	tests := []struct {
		name string
		u, v float32
		want float32
	}{
		{"bottom", 0, 0, 0},
		{"top", 1, 1, 1},
		{"middle", 0.5, 0.5, 0.5},
		{"clamped above", 0.5, 4, 1},
		{"clamped below", -1, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.At(tt.u, tt.v)
			if diff := got - tt.want; diff > 1e-5 || diff < -1e-5 {
				t.Errorf("At(%v, %v) = %v, want %v", tt.u, tt.v, got, tt.want)
			}
		})
	}
}

func TestHeightGridEmpty(t *testing.T) {
	tex := &Texture{Name: "empty", Image: image.NewRGBA(image.Rect(0, 0, 0, 0))}
	if _, err := NewHeightGrid(tex); err == nil {
		t.Error("expected error for empty height-map")
	}
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// 2x1, 24bpp, bottom-to-top, BGR order.
	data := make([]byte, 18)
	data[2] = TGATypeUncompressed
	data[12] = 2
	data[14] = 1
	data[16] = 24
	data = append(data,
		0, 0, 255, // red
		255, 0, 0, // blue
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA() error = %v", err)
	}
	rgba := img.(*image.RGBA)
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel 0 = %v, want red", got)
	}
	if got := rgba.RGBAAt(1, 0); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel 1 = %v, want blue", got)
	}
}

func TestDecodeTGARLE(t *testing.T) {
	// 3x1, 32bpp, one run packet of 3 green pixels.
	data := make([]byte, 18)
	data[2] = TGATypeRLE
	data[12] = 3
	data[14] = 1
	data[16] = 32
	data[17] = 0x20
	data = append(data, 0x80|2, 0, 255, 0, 200)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA() error = %v", err)
	}
	rgba := img.(*image.RGBA)
	for x := 0; x < 3; x++ {
		if got := rgba.RGBAAt(x, 0); got != (color.RGBA{G: 255, A: 200}) {
			t.Errorf("pixel %d = %v, want green alpha 200", x, got)
		}
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	header := func(imageType, bpp byte) []byte {
		h := make([]byte, 18)
		h[2] = imageType
		h[12] = 4
		h[14] = 4
		h[16] = bpp
		return h
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"colormapped", func() []byte { h := header(2, 24); h[1] = 1; return h }()},
		{"unsupported type", header(3, 24)},
		{"unsupported depth", header(2, 16)},
		{"truncated pixels", header(2, 24)},
		{"truncated rle", header(10, 24)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestBottomUpPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255}) // top
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255}) // bottom
	tex := New("rows", img)

	pixels := tex.BottomUpPixels()
	if len(pixels) != 8 {
		t.Fatalf("len = %d, want 8", len(pixels))
	}
	// First uploaded row is addressed by v=0, so it must agree with Sample.
	if pixels[2] != 255 || pixels[0] != 0 {
		t.Errorf("first row = %v, want bottom texel (blue)", pixels[:4])
	}
	if got := tex.Sample(0.5, 0.25); got.B != 255 {
		t.Errorf("Sample(0.5, 0.25) = %v, want blue", got)
	}
	if pixels[4] != 255 || pixels[6] != 0 {
		t.Errorf("second row = %v, want top texel (red)", pixels[4:])
	}
}
