// Package tile sequences a tileset load: metadata, shared material textures, then
// one height-map and LOD build per tile, attaching each finished tile to the scene.
package tile

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/teris-io/shortid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/terratile/internal/assets"
	"github.com/Faultbox/terratile/internal/config"
	"github.com/Faultbox/terratile/internal/engine/camera"
	"github.com/Faultbox/terratile/internal/engine/terrain"
	"github.com/Faultbox/terratile/internal/engine/texture"
	"github.com/Faultbox/terratile/internal/logger"
	"github.com/Faultbox/terratile/internal/tileset"
	"github.com/Faultbox/terratile/pkg/math"
)

var (
	// ErrAlreadyStarted is returned by a second call to Load.
	ErrAlreadyStarted = errors.New("tile: load already started")

	// ErrClosed is returned when the orchestrator is closed while a load is running.
	ErrClosed = errors.New("tile: orchestrator closed")

	// ErrIncompleteMaterials is returned when a material load succeeds without a texture.
	ErrIncompleteMaterials = errors.New("tile: material set incomplete")

	// ErrInvalidHeightScale is returned when the height scale does not fit the tileset's level count.
	ErrInvalidHeightScale = errors.New("tile: height scale does not match tileset levels")
)

var (
	generateID = shortid.Generate
	loadSeq    atomic.Uint64
)

// MetadataFetcher retrieves the tileset description.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, infoPath string) (*tileset.Metadata, error)
}

// ResourceLoader loads one image at a full resource path.
type ResourceLoader interface {
	Load(ctx context.Context, path string) (*texture.Texture, error)
}

// forgetter is implemented by loaders that cache fetched bytes.
type forgetter interface {
	Forget(path string)
}

// Scene receives finished tiles.
type Scene interface {
	Add(lod *terrain.LOD)
	Remove(lod *terrain.LOD) bool
}

// Viewer supplies the projection used for LOD thresholds and the eye position for selection.
type Viewer interface {
	VerticalFOV() float32
	ViewportSize() (width, height float32)
	Position() math.Vec3
}

// Options configures an orchestrator.
type Options struct {
	Texture     string // base path of the shared material images
	HeightMap   string // base path of the per-tile height-maps
	Info        string // tileset metadata path
	HeightScale terrain.HeightScale

	// Materials overrides the file name of a material image, keyed by material name.
	// Names without an extension get ".jpg".
	Materials map[string]string

	// Progress, when set, is called after each completed step. Texture steps
	// report from their own goroutines.
	Progress func(Progress)
}

// OptionsFromConfig maps the tileset configuration section onto Options.
func OptionsFromConfig(cfg config.TilesetConfig) Options {
	return Options{
		Texture:     cfg.Texture,
		HeightMap:   cfg.HeightMap,
		Info:        cfg.Info,
		HeightScale: terrain.HeightScale(cfg.HeightScale),
		Materials:   cfg.Materials,
	}
}

// MaterialPath returns the full path of a material image.
func (o Options) MaterialPath(m terrain.Material) string {
	name := m.String()
	file := name + ".jpg"
	if override, ok := o.Materials[name]; ok && override != "" {
		file = override
		if path.Ext(file) == "" {
			file += ".jpg"
		}
	}
	return assets.ResolvePath(o.Texture, file)
}

// HeightMapPath returns the full path of a tile's height-map.
func (o Options) HeightMapPath(desc tileset.Descriptor) string {
	return assets.ResolvePath(o.HeightMap, desc.Filename)
}

// Orchestrator loads one tileset into a scene and keeps its LOD selection current.
type Orchestrator struct {
	opts     Options
	metadata MetadataFetcher
	loader   ResourceLoader
	scene    Scene
	viewer   Viewer
	log      *zap.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	state   State
	tile    int
	err     error
	meta    *tileset.Metadata
	lods    []*terrain.LOD
	done    int
	total   int
}

// New creates an idle orchestrator.
func New(opts Options, metadata MetadataFetcher, loader ResourceLoader, scene Scene, viewer Viewer) *Orchestrator {
	return &Orchestrator{
		opts:     opts,
		metadata: metadata,
		loader:   loader,
		scene:    scene,
		viewer:   viewer,
		log:      logger.Named("tile"),
		tile:     -1,
	}
}

// Load runs the whole pipeline and blocks until the tileset is Ready or Failed.
// It may be called once.
func (o *Orchestrator) Load(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return ErrAlreadyStarted
	}
	o.started = true
	o.mu.Unlock()

	log := o.log.With(zap.String("load", o.loadID()))

	o.transition(log, MetadataLoading, -1)
	meta, err := o.fetchMetadata(ctx)
	if err != nil {
		return o.fail(log, "fetch metadata", o.opts.Info, err)
	}

	o.mu.Lock()
	o.meta = meta
	o.total = 1 + terrain.MaterialCount + 2*len(meta.Tiles)
	o.mu.Unlock()
	o.step(MetadataLoading, -1)
	log.Info("tileset metadata loaded",
		zap.Int("levels", meta.Level),
		zap.Int("tiles", len(meta.Tiles)),
	)

	o.transition(log, TexturesLoading, -1)
	materials, err := o.loadMaterials(ctx)
	if err != nil {
		return o.fail(log, "load material textures", o.opts.Texture, err)
	}

	_, viewportHeight := o.viewer.ViewportSize()
	params := terrain.BuildParams{
		Levels:       meta.Level,
		BaseDistance: camera.LODDistance(o.viewer.VerticalFOV(), viewportHeight),
		HeightScale:  o.opts.HeightScale,
	}
	log.Debug("lod thresholds", zap.Float32("base_distance", params.BaseDistance))

	for i, desc := range meta.Tiles {
		if err := o.checkLive(ctx); err != nil {
			return o.fail(log, "load tile", desc.Filename, err)
		}

		o.transition(log, HeightMapsLoading, i)
		resource := o.opts.HeightMapPath(desc)
		grid, err := o.loadHeightGrid(ctx, resource)
		if err != nil {
			return o.fail(log, "load height-map", resource, err)
		}
		o.step(HeightMapsLoading, i)

		o.transition(log, Building, i)
		lod := terrain.BuildLOD(desc, grid, materials, params)
		if err := o.attach(lod); err != nil {
			return o.fail(log, "attach tile", desc.Filename, err)
		}
		o.step(Building, i)
		log.Debug("tile attached",
			zap.Int("tile", i),
			zap.String("filename", desc.Filename),
			zap.Int("variants", len(lod.Variants())),
		)
	}

	o.transition(log, Ready, -1)
	log.Info("tileset ready", zap.Int("tiles", len(meta.Tiles)))
	return nil
}

// loadID tags a load's log lines. A failing generator falls back to a counter.
func (o *Orchestrator) loadID() string {
	id, err := generateID()
	if err != nil {
		id = fmt.Sprintf("load-%d", loadSeq.Add(1))
		o.log.Warn("shortid failed, using sequence id", zap.String("load", id), zap.Error(err))
	}
	return id
}

// fetchMetadata fetches and checks the tileset description against the build inputs.
func (o *Orchestrator) fetchMetadata(ctx context.Context) (*tileset.Metadata, error) {
	meta, err := o.metadata.FetchMetadata(ctx, o.opts.Info)
	if err != nil {
		return nil, err
	}
	if err := meta.Validate(); err != nil {
		return nil, &tileset.MetadataFetchError{Path: o.opts.Info, Err: err}
	}
	if !o.opts.HeightScale.Covers(meta.Level) {
		return nil, fmt.Errorf("%w: %d entries for %d levels",
			ErrInvalidHeightScale, len(o.opts.HeightScale), meta.Level)
	}
	return meta, nil
}

// loadMaterials loads the five shared textures concurrently and waits for all of them.
func (o *Orchestrator) loadMaterials(ctx context.Context) (*terrain.MaterialSet, error) {
	var (
		wg       sync.WaitGroup
		textures [terrain.MaterialCount]*texture.Texture
		errs     [terrain.MaterialCount]error
	)
	for _, m := range terrain.Materials() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			textures[m], errs[m] = o.loader.Load(ctx, o.opts.MaterialPath(m))
			if errs[m] == nil {
				o.step(TexturesLoading, -1)
			}
		}()
	}
	wg.Wait()

	if err := multierr.Combine(errs[:]...); err != nil {
		return nil, err
	}

	set := &terrain.MaterialSet{}
	for _, m := range terrain.Materials() {
		set.Set(m, textures[m])
	}
	if !set.Complete() {
		return nil, ErrIncompleteMaterials
	}
	return set, nil
}

func (o *Orchestrator) loadHeightGrid(ctx context.Context, resource string) (*texture.HeightGrid, error) {
	tex, err := o.loader.Load(ctx, resource)
	// Each height-map is read once.
	if f, ok := o.loader.(forgetter); ok {
		f.Forget(resource)
	}
	if err != nil {
		return nil, err
	}
	grid, err := texture.NewHeightGrid(tex)
	if err != nil {
		return nil, &assets.ResourceLoadError{Path: resource, Err: err}
	}
	return grid, nil
}

// attach hands a finished tile to the scene unless the orchestrator was closed meanwhile.
func (o *Orchestrator) attach(lod *terrain.LOD) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	o.scene.Add(lod)
	o.lods = append(o.lods, lod)
	return nil
}

func (o *Orchestrator) checkLive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	return nil
}

func (o *Orchestrator) transition(log *zap.Logger, state State, tile int) {
	o.mu.Lock()
	o.state = state
	o.tile = tile
	o.mu.Unlock()

	if tile >= 0 {
		log.Debug("state", zap.Stringer("state", state), zap.Int("tile", tile))
	} else {
		log.Debug("state", zap.Stringer("state", state))
	}
}

func (o *Orchestrator) step(state State, tile int) {
	o.mu.Lock()
	o.done++
	p := Progress{State: state, Tile: tile, Done: o.done, Total: o.total}
	o.mu.Unlock()

	if o.opts.Progress != nil {
		o.opts.Progress(p)
	}
}

func (o *Orchestrator) fail(log *zap.Logger, op, resource string, err error) error {
	o.mu.Lock()
	o.state = Failed
	o.err = err
	o.mu.Unlock()

	log.Error("tileset load failed",
		zap.String("op", op),
		zap.String("resource", resource),
		zap.Error(err),
	)
	return err
}

// Update reselects the active variant of every tile for the viewer's current position.
// It does nothing until the tileset is Ready, and nothing after Close.
func (o *Orchestrator) Update() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Ready || o.closed {
		return
	}

	eye := o.viewer.Position()
	for _, lod := range o.lods {
		lod.Update(eye)
	}
}

// Close detaches every tile from the scene. A running Load stops before its next tile.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	lods := o.lods
	o.lods = nil
	o.mu.Unlock()

	for _, lod := range lods {
		o.scene.Remove(lod)
	}
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// TileIndex returns the tile being loaded or built, or -1 outside per-tile states.
// After a per-tile failure it keeps the index of the failing tile.
func (o *Orchestrator) TileIndex() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tile
}

// Err returns the error that moved the orchestrator to Failed.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Metadata returns the fetched tileset description, or nil before it arrives.
func (o *Orchestrator) Metadata() *tileset.Metadata {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.meta
}

// LODs returns the attached tiles in tileset order.
func (o *Orchestrator) LODs() []*terrain.LOD {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.lods)
}
