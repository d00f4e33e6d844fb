package terrain

import (
	"image/color"
	"math"

	"github.com/Faultbox/terratile/internal/engine/texture"
)

// Material identifies one of the terrain surface textures blended by elevation.
type Material int

// Materials in ascending elevation order.
const (
	Ocean Material = iota
	Sandy
	Grass
	Rocky
	Snowy

	MaterialCount = 5
)

var materialNames = [MaterialCount]string{"ocean", "sandy", "grass", "rocky", "snowy"}

// String returns the material's resource name.
func (m Material) String() string {
	if m < 0 || int(m) >= MaterialCount {
		return "unknown"
	}
	return materialNames[m]
}

// Materials returns every material in elevation order.
func Materials() [MaterialCount]Material {
	return [MaterialCount]Material{Ocean, Sandy, Grass, Rocky, Snowy}
}

// Band describes where a material is visible along the normalized elevation axis.
// The weight is smoothstep(RiseStart, RiseEnd) minus smoothstep(FallStart, FallEnd);
// a band with Falls unset keeps rising to 1.
type Band struct {
	RiseStart, RiseEnd float32
	FallStart, FallEnd float32
	Falls              bool
	// Repeat is how many times the material texture tiles across one mesh at level 0.
	Repeat float32
}

// Bands holds the blending table. Neighbouring bands overlap so transitions stay soft.
var Bands = [MaterialCount]Band{
	Ocean: {RiseStart: 0.01, RiseEnd: 0.25, FallStart: 0.24, FallEnd: 0.26, Falls: true, Repeat: 10},
	Sandy: {RiseStart: 0.24, RiseEnd: 0.27, FallStart: 0.28, FallEnd: 0.31, Falls: true, Repeat: 10},
	Grass: {RiseStart: 0.28, RiseEnd: 0.32, FallStart: 0.35, FallEnd: 0.40, Falls: true, Repeat: 20},
	Rocky: {RiseStart: 0.30, RiseEnd: 0.50, FallStart: 0.40, FallEnd: 0.70, Falls: true, Repeat: 20},
	Snowy: {RiseStart: 0.50, RiseEnd: 0.65, Repeat: 10},
}

// Smoothstep is the cubic Hermite ramp from 0 at edge0 to 1 at edge1.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// Weight returns how much of material m shows at the given elevation.
func Weight(m Material, amount float32) float32 {
	b := Bands[m]
	w := Smoothstep(b.RiseStart, b.RiseEnd, amount)
	if b.Falls {
		w -= Smoothstep(b.FallStart, b.FallEnd, amount)
	}
	return w
}

// Weights returns the weight of every material at the given elevation.
func Weights(amount float32) [MaterialCount]float32 {
	var w [MaterialCount]float32
	for _, m := range Materials() {
		w[m] = Weight(m, amount)
	}
	return w
}

// Repeat returns the texture tiling factor for a material at an LOD level.
// Coarser levels tile more so texel density on screen stays roughly constant.
func Repeat(m Material, level int) float32 {
	return Bands[m].Repeat * float32(math.Pow(2, float64(level)))
}

// Blend mixes per-material samples by elevation. Channels are clamped to [0,255]
// and the result is opaque.
func Blend(amount float32, samples [MaterialCount]color.RGBA) color.RGBA {
	w := Weights(amount)
	var r, g, b float32
	for m, s := range samples {
		r += w[m] * float32(s.R)
		g += w[m] * float32(s.G)
		b += w[m] * float32(s.B)
	}
	return color.RGBA{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b), A: 255}
}

func clampChannel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(float64(v)))
}

// MaterialSet is the five shared surface textures. It is read-only once complete.
type MaterialSet struct {
	textures [MaterialCount]*texture.Texture
}

// Set stores the texture for a material.
func (s *MaterialSet) Set(m Material, t *texture.Texture) {
	s.textures[m] = t
}

// Get returns the texture for a material, or nil if it has not been loaded.
func (s *MaterialSet) Get(m Material) *texture.Texture {
	return s.textures[m]
}

// Complete reports whether every material has a texture.
func (s *MaterialSet) Complete() bool {
	for _, t := range s.textures {
		if t == nil {
			return false
		}
	}
	return true
}

// Shader shades fragments of one LOD variant.
type Shader struct {
	Level     int
	Materials *MaterialSet
}

// Shade returns the fragment color at mesh UV (u, v) with elevation sample amount.
func (s Shader) Shade(u, v, amount float32) color.RGBA {
	var samples [MaterialCount]color.RGBA
	for _, m := range Materials() {
		rep := Repeat(m, s.Level)
		samples[m] = s.Materials.Get(m).Sample(u*rep, v*rep)
	}
	return Blend(amount, samples)
}
