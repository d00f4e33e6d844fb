package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/terratile/internal/engine/terrain"
	"github.com/Faultbox/terratile/internal/engine/shader"
	"github.com/Faultbox/terratile/internal/engine/texture"
	"github.com/Faultbox/terratile/internal/logger"
	"github.com/Faultbox/terratile/pkg/math"
)

// gpuMesh is one uploaded LOD variant.
type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// TerrainRenderer draws the active variant of each tile LOD with the elevation blend shader.
type TerrainRenderer struct {
	program *shader.Program

	meshes    map[*terrain.LOD][]gpuMesh
	materials map[*terrain.MaterialSet][terrain.MaterialCount]uint32
}

// NewTerrainRenderer compiles the blend shader.
func NewTerrainRenderer() (*TerrainRenderer, error) {
	uniforms := []string{"uViewProj", "uModel", "uLevel", "uLightDir"}
	for _, m := range terrain.Materials() {
		uniforms = append(uniforms, terrain.SamplerUniform(m))
	}

	program, err := shader.Compile(terrain.VertexShaderSource, terrain.FragmentShaderSource(), uniforms...)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}

	return &TerrainRenderer{
		program:   program,
		meshes:    make(map[*terrain.LOD][]gpuMesh),
		materials: make(map[*terrain.MaterialSet][terrain.MaterialCount]uint32),
	}, nil
}

// Sync uploads objects that are new to the scene and frees those that left it.
func (tr *TerrainRenderer) Sync(objects []*terrain.LOD) {
	present := make(map[*terrain.LOD]bool, len(objects))
	for _, lod := range objects {
		present[lod] = true
		if _, ok := tr.meshes[lod]; ok {
			continue
		}
		tr.upload(lod)
	}

	for lod, meshes := range tr.meshes {
		if present[lod] {
			continue
		}
		for i := range meshes {
			deleteMesh(&meshes[i])
		}
		delete(tr.meshes, lod)
		logger.Debug("tile unloaded from GPU", zap.String("tile", lod.Name))
	}
}

func (tr *TerrainRenderer) upload(lod *terrain.LOD) {
	variants := lod.Variants()
	meshes := make([]gpuMesh, len(variants))
	for i, v := range variants {
		meshes[i] = uploadMesh(v.Mesh)
		if v.Shader.Materials != nil {
			tr.uploadMaterials(v.Shader.Materials)
		}
	}
	tr.meshes[lod] = meshes
	logger.Debug("tile uploaded to GPU", zap.String("tile", lod.Name), zap.Int("variants", len(meshes)))
}

func (tr *TerrainRenderer) uploadMaterials(set *terrain.MaterialSet) {
	if _, ok := tr.materials[set]; ok {
		return
	}
	var ids [terrain.MaterialCount]uint32
	for _, m := range terrain.Materials() {
		ids[m] = uploadTexture(set.Get(m))
	}
	tr.materials[set] = ids
}

func uploadTexture(tex *texture.Texture) uint32 {
	pixels := tex.BottomUpPixels()
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(tex.Width()), int32(tex.Height()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))

	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)

	return texID
}

func uploadMesh(mesh *terrain.Mesh) gpuMesh {
	var m gpuMesh
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	vertexSize := int(unsafe.Sizeof(terrain.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*vertexSize, unsafe.Pointer(&mesh.Vertices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	// TexCoord (location 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	// Amount (location 3)
	gl.VertexAttribPointerWithOffset(3, 1, gl.FLOAT, false, int32(vertexSize), 8*4)
	gl.EnableVertexAttribArray(3)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	m.indexCount = int32(len(mesh.Indices))
	return m
}

func deleteMesh(m *gpuMesh) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	*m = gpuMesh{}
}

// Render draws the active variant of every object.
func (tr *TerrainRenderer) Render(objects []*terrain.LOD, viewProj math.Mat4, lightDir [3]float32) {
	tr.program.Use()
	gl.UniformMatrix4fv(tr.program.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.Uniform3f(tr.program.Uniform("uLightDir"), lightDir[0], lightDir[1], lightDir[2])

	for i, m := range terrain.Materials() {
		gl.Uniform1i(tr.program.Uniform(terrain.SamplerUniform(m)), int32(i))
	}

	for _, lod := range objects {
		meshes, ok := tr.meshes[lod]
		if !ok {
			continue
		}
		active := lod.Active()
		v := lod.ActiveVariant()
		if v == nil || active >= len(meshes) {
			continue
		}

		if ids, ok := tr.materials[v.Shader.Materials]; ok {
			for i, id := range ids {
				gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
				gl.BindTexture(gl.TEXTURE_2D, id)
			}
		}

		model := math.Translate(lod.Position.X, lod.Position.Y, lod.Position.Z)
		gl.UniformMatrix4fv(tr.program.Uniform("uModel"), 1, false, model.Ptr())
		gl.Uniform1f(tr.program.Uniform("uLevel"), float32(v.Level))

		gl.BindVertexArray(meshes[active].vao)
		gl.DrawElements(gl.TRIANGLES, meshes[active].indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

// Destroy releases all GPU resources.
func (tr *TerrainRenderer) Destroy() {
	tr.Sync(nil)
	for set, ids := range tr.materials {
		for i := range ids {
			gl.DeleteTextures(1, &ids[i])
		}
		delete(tr.materials, set)
	}
	tr.program.Delete()
}
