package terrain

import (
	"github.com/Faultbox/terratile/internal/engine/texture"
	"github.com/Faultbox/terratile/pkg/math"
)

// BuildPlane creates a flat width x height grid centred on the origin in the XY plane,
// facing +Z, with segX x segY cells.
// UV (0,0) is the bottom-left corner; vertices are laid out row by row from the top.
func BuildPlane(width, height float32, segX, segY int) *Mesh {
	segX = max(segX, 1)
	segY = max(segY, 1)

	cols := segX + 1
	rows := segY + 1
	segW := width / float32(segX)
	segH := height / float32(segY)

	mesh := &Mesh{
		Vertices:  make([]Vertex, 0, cols*rows),
		Indices:   make([]uint32, 0, segX*segY*6),
		SegmentsX: segX,
		SegmentsY: segY,
		Bounds:    emptyBounds(),
	}

	for iy := 0; iy < rows; iy++ {
		y := height/2 - float32(iy)*segH
		for ix := 0; ix < cols; ix++ {
			x := float32(ix)*segW - width/2
			v := Vertex{
				Position: [3]float32{x, y, 0},
				Normal:   [3]float32{0, 0, 1},
				TexCoord: [2]float32{float32(ix) / float32(segX), 1 - float32(iy)/float32(segY)},
			}
			mesh.Vertices = append(mesh.Vertices, v)
			mesh.Bounds.extend(v.Position)
		}
	}

	for iy := 0; iy < segY; iy++ {
		for ix := 0; ix < segX; ix++ {
			a := uint32(ix + cols*iy)
			b := uint32(ix + cols*(iy+1))
			c := uint32(ix + 1 + cols*(iy+1))
			d := uint32(ix + 1 + cols*iy)
			mesh.Indices = append(mesh.Indices, a, b, d, b, c, d)
		}
	}

	return mesh
}

// Displace moves every vertex along its normal by scale times the height sample
// under its UV, records the sample on the vertex and recomputes normals.
func Displace(mesh *Mesh, grid *texture.HeightGrid, scale float32) {
	mesh.Bounds = emptyBounds()
	for i := range mesh.Vertices {
		v := &mesh.Vertices[i]
		amount := grid.At(v.TexCoord[0], v.TexCoord[1])
		offset := math.FromArray(v.Normal).Scale(scale * amount)
		v.Position = math.FromArray(v.Position).Add(offset).Array()
		v.Amount = amount
		mesh.Bounds.extend(v.Position)
	}
	ComputeNormals(mesh)
}

// ComputeNormals replaces vertex normals with the area-weighted average of the
// faces that share each vertex.
func ComputeNormals(mesh *Mesh) {
	sums := make([]math.Vec3, len(mesh.Vertices))
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		ia, ib, ic := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		a := math.FromArray(mesh.Vertices[ia].Position)
		b := math.FromArray(mesh.Vertices[ib].Position)
		c := math.FromArray(mesh.Vertices[ic].Position)
		n := b.Sub(a).Cross(c.Sub(a))
		sums[ia] = sums[ia].Add(n)
		sums[ib] = sums[ib].Add(n)
		sums[ic] = sums[ic].Add(n)
	}
	for i := range mesh.Vertices {
		if n := sums[i].Normalize(); n != (math.Vec3{}) {
			mesh.Vertices[i].Normal = n.Array()
		}
	}
}
