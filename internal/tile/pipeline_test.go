package tile

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/terratile/internal/assets"
	"github.com/Faultbox/terratile/internal/engine/scene"
	"github.com/Faultbox/terratile/internal/engine/terrain"
	"github.com/Faultbox/terratile/internal/tileset"
	"github.com/Faultbox/terratile/pkg/math"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// newTileServer serves a two-tile tileset whose height-maps are flat at value.
func newTileServer(t *testing.T, value uint8) *httptest.Server {
	t.Helper()

	meta := tileset.Metadata{
		Level: 2,
		Tiles: []tileset.Descriptor{
			{Filename: "a.png", Geometry: tileset.Geometry{Width: 64, Height: 64}, Segment: tileset.Segment{X: 4, Y: 4}},
			{Filename: "b.png", Geometry: tileset.Geometry{Width: 64, Height: 64}, Segment: tileset.Segment{X: 4, Y: 4}, Position: tileset.Position{X: 64}},
		},
	}
	info, err := json.Marshal(meta)
	if err != nil {
		t.Fatal(err)
	}

	material := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range material.Pix {
		material.Pix[i] = 200
	}
	height := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range height.Pix {
		height.Pix[i] = value
	}
	materialPNG := encodePNG(t, material)
	heightPNG := encodePNG(t, height)

	mux := http.NewServeMux()
	mux.HandleFunc("/info.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(info)
	})
	mux.HandleFunc("/textures/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(materialPNG)
	})
	mux.HandleFunc("/heightmaps/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(heightPNG)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPipelineOverHTTP(t *testing.T) {
	srv := newTileServer(t, 255)

	source := assets.NewSource(5 * time.Second)
	graph := scene.NewGraph()
	viewer := &fakeViewer{}

	opts := Options{
		Info:        srv.URL + "/info.json",
		Texture:     srv.URL + "/textures",
		HeightMap:   srv.URL + "/heightmaps",
		HeightScale: terrain.HeightScale{20, 10},
	}
	loader := assets.NewLoader(source)
	orch := New(opts, tileset.NewFetcher(source), loader, graph, viewer)

	if err := orch.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if orch.State() != Ready {
		t.Fatalf("State() = %v, want ready", orch.State())
	}
	// Only the shared materials stay cached.
	if n := loader.Cache().Len(); n != terrain.MaterialCount {
		t.Errorf("cache holds %d entries, want %d", n, terrain.MaterialCount)
	}
	if graph.Len() != 2 {
		t.Fatalf("graph has %d objects, want 2", graph.Len())
	}

	lod := graph.Objects()[1]
	if lod.Position != (math.Vec3{X: 64}) {
		t.Errorf("tile b position = %+v, want X=64", lod.Position)
	}

	variants := lod.Variants()
	if variants[0].Mesh.SegmentsX != 4 || variants[1].Mesh.SegmentsX != 2 {
		t.Errorf("segments = %d, %d; want 4, 2", variants[0].Mesh.SegmentsX, variants[1].Mesh.SegmentsX)
	}
	for level, want := range []float32{20, 10} {
		for _, v := range variants[level].Mesh.Vertices {
			if diff := v.Position[2] - want; diff > 1e-3 || diff < -1e-3 {
				t.Fatalf("level %d vertex z = %v, want %v", level, v.Position[2], want)
			}
		}
	}

	shader := variants[0].Shader
	if !shader.Materials.Complete() {
		t.Fatal("material set incomplete")
	}
	if got := shader.Shade(0.5, 0.5, 0.5); got == (color.RGBA{}) {
		t.Error("Shade() returned zero colour")
	}

	orch.Close()
	if graph.Len() != 0 {
		t.Errorf("graph has %d objects after Close, want 0", graph.Len())
	}
}

func TestPipelineMetadataStatus(t *testing.T) {
	var materialRequests int
	mux := http.NewServeMux()
	mux.HandleFunc("/info.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/textures/") {
			materialRequests++
		}
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	source := assets.NewSource(5 * time.Second)
	opts := Options{
		Info:        srv.URL + "/info.json",
		Texture:     srv.URL + "/textures",
		HeightMap:   srv.URL + "/heightmaps",
		HeightScale: terrain.HeightScale{1},
	}
	orch := New(opts, tileset.NewFetcher(source), assets.NewLoader(source), scene.NewGraph(), &fakeViewer{})

	err := orch.Load(context.Background())
	if err == nil {
		t.Fatal("Load() error = nil, want metadata failure")
	}
	if orch.State() != Failed {
		t.Errorf("State() = %v, want failed", orch.State())
	}
	if materialRequests != 0 {
		t.Errorf("%d material requests after metadata failure, want 0", materialRequests)
	}
}
