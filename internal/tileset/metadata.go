// Package tileset describes a terrain tileset and fetches its metadata.
package tileset

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// MaxLevel is the largest accepted LOD level count. Any segment count fits in an
// int32, so deeper levels would all be 1x1.
const MaxLevel = 32

// Metadata is the tileset description served at the info endpoint.
type Metadata struct {
	Level int          `json:"level"`
	Tiles []Descriptor `json:"tiles"`
}

// Descriptor places one height-map tile in the world.
type Descriptor struct {
	Filename string   `json:"filename"`
	Geometry Geometry `json:"geometry"`
	Segment  Segment  `json:"segment"`
	Position Position `json:"position"`
}

// Geometry is the tile's planar size in world units.
type Geometry struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// Segment is the level 0 subdivision count per axis.
type Segment struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Position is the tile centre in world units.
type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Segments returns the subdivision at an LOD level, halved per level and never below 1.
func (d Descriptor) Segments(level int) (x, y int) {
	return max(d.Segment.X>>level, 1), max(d.Segment.Y>>level, 1)
}

// Bound returns the tile's planar extent.
func (d Descriptor) Bound() orb.Bound {
	hw := float64(d.Geometry.Width) / 2
	hh := float64(d.Geometry.Height) / 2
	cx := float64(d.Position.X)
	cy := float64(d.Position.Y)
	return orb.Bound{
		Min: orb.Point{cx - hw, cy - hh},
		Max: orb.Point{cx + hw, cy + hh},
	}
}

// Validate checks the invariants the mesh builder relies on.
func (m *Metadata) Validate() error {
	if m.Level < 1 {
		return fmt.Errorf("level must be at least 1, got %d", m.Level)
	}
	if m.Level > MaxLevel {
		return fmt.Errorf("level must be at most %d, got %d", MaxLevel, m.Level)
	}
	if len(m.Tiles) == 0 {
		return errors.New("tileset has no tiles")
	}
	for i, t := range m.Tiles {
		switch {
		case t.Filename == "":
			return fmt.Errorf("tile %d: missing filename", i)
		case t.Geometry.Width <= 0 || t.Geometry.Height <= 0:
			return fmt.Errorf("tile %d (%s): geometry %vx%v must be positive",
				i, t.Filename, t.Geometry.Width, t.Geometry.Height)
		case t.Segment.X < 1 || t.Segment.Y < 1:
			return fmt.Errorf("tile %d (%s): segment %dx%d must be at least 1",
				i, t.Filename, t.Segment.X, t.Segment.Y)
		}
	}
	return nil
}

// Bound returns the planar extent of every tile.
func (m *Metadata) Bound() orb.Bound {
	if len(m.Tiles) == 0 {
		return orb.Bound{}
	}
	bound := m.Tiles[0].Bound()
	for _, t := range m.Tiles[1:] {
		bound = bound.Union(t.Bound())
	}
	return bound
}

// Center returns the centre of the tileset extent.
func (m *Metadata) Center() orb.Point {
	return m.Bound().Center()
}
