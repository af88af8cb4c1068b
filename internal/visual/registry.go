// Package visual keeps the visual representation of a mesh topology in step
// with its vertex positions.
package visual

import (
	"meshsync/internal/mesh"
)

const DefaultEdgeThickness float32 = 0.01

type Options struct {
	EdgeThickness float32
}

// Registry owns the derived transform of every edge. Refresh must follow every
// position change, otherwise the edges attached to the moved vertex keep
// pointing at its old position.
type Registry struct {
	topo       *mesh.Topology
	sink       Sink
	thickness  float32
	transforms []Transform
}

// NewRegistry computes the initial transform of every vertex and edge and
// pushes them to sink.
func NewRegistry(topo *mesh.Topology, sink Sink, opts Options) *Registry {
	if sink == nil {
		sink = NopSink{}
	}
	if opts.EdgeThickness <= 0 {
		opts.EdgeThickness = DefaultEdgeThickness
	}
	r := &Registry{
		topo:       topo,
		sink:       sink,
		thickness:  opts.EdgeThickness,
		transforms: make([]Transform, len(topo.Edges)),
	}
	for _, v := range topo.Vertices {
		sink.SetVertexPosition(v.ID, v.Position)
	}
	for _, e := range topo.Edges {
		r.update(e)
	}
	r.pushSurface()
	return r
}

// Refresh recomputes every edge incident to vertex and returns how many were
// updated. Unknown or isolated vertices are a no-op.
func (r *Registry) Refresh(vertex int) int {
	v := r.topo.Vertex(vertex)
	if v == nil {
		return 0
	}
	r.sink.SetVertexPosition(v.ID, v.Position)
	for _, e := range v.ConnectedEdges {
		r.update(e)
	}
	r.pushSurface()
	return len(v.ConnectedEdges)
}

// Transform returns the last computed transform of an edge.
func (r *Registry) Transform(edge int) (Transform, bool) {
	if edge < 0 || edge >= len(r.transforms) {
		return Transform{}, false
	}
	return r.transforms[edge], true
}

func (r *Registry) update(e *mesh.Edge) {
	a := r.topo.Vertices[e.Vert1].Position
	b := r.topo.Vertices[e.Vert2].Position
	t := EdgeTransform(a, b, r.thickness)
	r.transforms[e.ID] = t
	r.sink.SetEdgeTransform(e.ID, t)
}

func (r *Registry) pushSurface() {
	positions := r.topo.Positions()
	r.sink.SetSurface(positions, mesh.RecalculateNormals(positions, r.topo.Triangles))
}
