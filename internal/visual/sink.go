package visual

import (
	"sync"

	"meshsync/internal/mesh"
)

// Sink is the engine side of the registry: opaque setters on the visual
// objects that represent vertices, edges and the model surface.
type Sink interface {
	SetVertexPosition(vertex int, position mesh.Vec3)
	SetEdgeTransform(edge int, t Transform)
	SetSurface(positions, normals []mesh.Vec3)
}

type NopSink struct{}

func (NopSink) SetVertexPosition(int, mesh.Vec3) {}
func (NopSink) SetEdgeTransform(int, Transform) {}
func (NopSink) SetSurface(_, _ []mesh.Vec3) {}

// Recorder keeps the last value pushed for every visual object. Headless
// participants use it in place of an engine.
type Recorder struct {
	mu       sync.Mutex
	vertices map[int]mesh.Vec3
	edges    map[int]Transform
	normals  []mesh.Vec3

	EdgeWrites    int
	SurfaceWrites int
}

func NewRecorder() *Recorder {
	return &Recorder{
		vertices: make(map[int]mesh.Vec3),
		edges:    make(map[int]Transform),
	}
}

func (r *Recorder) SetVertexPosition(vertex int, position mesh.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vertices[vertex] = position
}

func (r *Recorder) SetEdgeTransform(edge int, t Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges[edge] = t
	r.EdgeWrites++
}

func (r *Recorder) SetSurface(_, normals []mesh.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normals = append(r.normals[:0], normals...)
	r.SurfaceWrites++
}

func (r *Recorder) Vertex(vertex int) (mesh.Vec3, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.vertices[vertex]
	return p, ok
}

func (r *Recorder) Edge(edge int) (Transform, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.edges[edge]
	return t, ok
}

func (r *Recorder) Normals() []mesh.Vec3 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mesh.Vec3(nil), r.normals...)
}
