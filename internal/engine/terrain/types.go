// Package terrain builds displaced level-of-detail meshes for height-map tiles
// and shades them by elevation.
package terrain

// Vertex represents a terrain mesh vertex with all attributes.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Amount   float32 // height sample in [0,1], drives material blending
}

// Mesh holds one grid mesh ready for GPU upload.
type Mesh struct {
	Vertices  []Vertex
	Indices   []uint32
	SegmentsX int
	SegmentsY int
	Bounds    Bounds
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// emptyBounds returns inverted bounds that any point will expand.
func emptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

func (b *Bounds) extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// HeightScale is the vertical displacement applied per LOD level.
// A single entry applies to every level; otherwise entry i applies to level i.
type HeightScale []float32

// At returns the scale for a level. Levels past the end reuse the last entry.
func (s HeightScale) At(level int) float32 {
	if len(s) == 0 {
		return 0
	}
	if level >= len(s) {
		return s[len(s)-1]
	}
	return s[level]
}

// Covers reports whether the scale can be used for a tileset with the given level count.
func (s HeightScale) Covers(levels int) bool {
	return len(s) == 1 || len(s) == levels
}
