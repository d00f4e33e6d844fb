package terrain

import (
	gomath "math"

	"github.com/Faultbox/terratile/internal/engine/texture"
	"github.com/Faultbox/terratile/internal/tileset"
	"github.com/Faultbox/terratile/pkg/math"
)

// Variant is one resolution of a tile's mesh.
type Variant struct {
	Level    int
	Distance float32 // camera distance at which this variant takes over
	Mesh     *Mesh
	Shader   Shader
}

// LOD owns every resolution of one tile and tracks which is shown.
type LOD struct {
	Name     string
	Position math.Vec3

	variants []Variant
	active   int
}

// BuildParams controls LOD construction.
type BuildParams struct {
	Levels       int
	BaseDistance float32
	HeightScale  HeightScale
}

// BuildLOD builds params.Levels mesh variants for a tile, finest first.
// Variant i is subdivided at desc.Segments(i), displaced by HeightScale.At(i) and
// activates at BaseDistance * 2^i. Inputs are assumed validated by the caller.
func BuildLOD(desc tileset.Descriptor, grid *texture.HeightGrid, materials *MaterialSet, params BuildParams) *LOD {
	lod := &LOD{
		Name:     desc.Filename,
		Position: math.Vec3{X: desc.Position.X, Y: desc.Position.Y},
	}

	for level := 0; level < params.Levels; level++ {
		segX, segY := desc.Segments(level)
		mesh := BuildPlane(desc.Geometry.Width, desc.Geometry.Height, segX, segY)
		Displace(mesh, grid, params.HeightScale.At(level))

		lod.variants = append(lod.variants, Variant{
			Level:    level,
			Distance: params.BaseDistance * float32(gomath.Ldexp(1, level)),
			Mesh:     mesh,
			Shader:   Shader{Level: level, Materials: materials},
		})
	}
	return lod
}

// Variants returns the variants in ascending distance order.
func (l *LOD) Variants() []Variant {
	return l.variants
}

// Active returns the index of the variant currently shown.
func (l *LOD) Active() int {
	return l.active
}

// ActiveVariant returns the variant currently shown.
func (l *LOD) ActiveVariant() *Variant {
	if len(l.variants) == 0 {
		return nil
	}
	return &l.variants[l.active]
}

// Update selects the variant for a camera at eye: the coarsest one whose distance
// threshold has been reached, or the finest when the camera is nearer than all.
// It reports whether the active variant changed.
func (l *LOD) Update(eye math.Vec3) bool {
	if len(l.variants) == 0 {
		return false
	}

	d := eye.Distance(l.Position)
	next := 0
	for i := 1; i < len(l.variants); i++ {
		if d < l.variants[i].Distance {
			break
		}
		next = i
	}

	changed := next != l.active
	l.active = next
	return changed
}

// Bounds returns the world-space bounds of the finest variant.
func (l *LOD) Bounds() Bounds {
	if len(l.variants) == 0 {
		return Bounds{}
	}
	b := l.variants[0].Mesh.Bounds
	offset := l.Position.Array()
	for i := 0; i < 3; i++ {
		b.Min[i] += offset[i]
		b.Max[i] += offset[i]
	}
	return b
}

// VertexCount returns the vertex count of the variant at index i.
func (l *LOD) VertexCount(i int) int {
	return len(l.variants[i].Mesh.Vertices)
}
