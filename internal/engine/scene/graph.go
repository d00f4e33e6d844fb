// Package scene holds the terrain scene graph.
package scene

import (
	"slices"
	"sync"

	"github.com/Faultbox/terratile/internal/engine/terrain"
)

// Graph is the set of LOD objects currently in the scene.
// Loaders add to it from their own goroutine while the render loop reads it.
type Graph struct {
	mu      sync.RWMutex
	objects []*terrain.LOD
}

// NewGraph creates an empty scene graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add attaches an object. Adding the same object twice is a no-op.
func (g *Graph) Add(lod *terrain.LOD) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if slices.Contains(g.objects, lod) {
		return
	}
	g.objects = append(g.objects, lod)
}

// Remove detaches an object and reports whether it was present.
func (g *Graph) Remove(lod *terrain.LOD) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := slices.Index(g.objects, lod)
	if i < 0 {
		return false
	}
	g.objects = slices.Delete(g.objects, i, i+1)
	return true
}

// Objects returns a snapshot of the attached objects in insertion order.
func (g *Graph) Objects() []*terrain.LOD {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.objects)
}

// Len returns the number of attached objects.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.objects)
}
