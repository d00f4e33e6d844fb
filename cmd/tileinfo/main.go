// Package main loads a tileset without a window and reports the LOD meshes built for it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/Faultbox/terratile/internal/assets"
	"github.com/Faultbox/terratile/internal/config"
	"github.com/Faultbox/terratile/internal/engine/scene"
	"github.com/Faultbox/terratile/internal/logger"
	"github.com/Faultbox/terratile/internal/tile"
	"github.com/Faultbox/terratile/internal/tileset"
	"github.com/Faultbox/terratile/pkg/math"
)

var (
	flagAltitude = flag.Float64("altitude", 0, "Eye height above the tileset centre used to report active variants")
	flagQuiet    = flag.Bool("quiet", false, "Hide the progress bar")
)

// fixedViewer is a camera that never moves.
type fixedViewer struct {
	mu            sync.Mutex
	fov           float32
	width, height float32
	pos           math.Vec3
}

func (v *fixedViewer) VerticalFOV() float32 { return v.fov }

func (v *fixedViewer) ViewportSize() (width, height float32) { return v.width, v.height }

func (v *fixedViewer) Position() math.Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos
}

func (v *fixedViewer) moveTo(p math.Vec3) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pos = p
}

// progressBar starts a pb bar once the total step count is known.
type progressBar struct {
	mu  sync.Mutex
	bar *pb.ProgressBar
}

func (p *progressBar) update(step tile.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if step.Total == 0 {
		return
	}
	if p.bar == nil {
		p.bar = pb.New(step.Total).Prefix("Loading tileset: ")
		p.bar.Output = os.Stderr
		p.bar.Start()
	}
	p.bar.Set(step.Done)
}

func (p *progressBar) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Finish()
	}
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logger.Error("tileinfo failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	viewer := &fixedViewer{
		fov:    cfg.Camera.FOV,
		width:  float32(cfg.Graphics.Width),
		height: float32(cfg.Graphics.Height),
	}
	graph := scene.NewGraph()

	bar := &progressBar{}
	opts := tile.OptionsFromConfig(cfg.Tileset)
	if !*flagQuiet {
		opts.Progress = bar.update
	}

	source := assets.NewSource(cfg.Network.RequestTimeout)
	loader := assets.NewLoader(source)
	orch := tile.New(opts, tileset.NewFetcher(source), loader, graph, viewer)
	defer orch.Close()

	err := orch.Load(ctx)
	bar.finish()
	if err != nil {
		return err
	}

	meta := orch.Metadata()
	center := meta.Center()
	viewer.moveTo(math.Vec3{X: float32(center[0]), Y: float32(center[1]), Z: float32(*flagAltitude)})
	orch.Update()

	hits, misses := loader.Cache().Stats()
	logger.Debug("resource cache", zap.Int("hits", hits), zap.Int("misses", misses))

	bound := meta.Bound()
	fmt.Fprintf(out, "tileset %s: %d tiles, %d levels, extent (%.1f, %.1f)-(%.1f, %.1f)\n",
		cfg.Tileset.Info, len(meta.Tiles), meta.Level,
		bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1])

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TILE\tLEVEL\tSEGMENTS\tVERTICES\tDISTANCE\tACTIVE")
	for _, lod := range orch.LODs() {
		for i, v := range lod.Variants() {
			active := ""
			if i == lod.Active() {
				active = "*"
			}
			fmt.Fprintf(w, "%s\t%d\t%dx%d\t%d\t%.1f\t%s\n",
				lod.Name, v.Level, v.Mesh.SegmentsX, v.Mesh.SegmentsY,
				lod.VertexCount(i), v.Distance, active)
		}
	}
	return w.Flush()
}
