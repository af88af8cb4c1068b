package mesh

import "github.com/go-gl/mathgl/mgl32"

type Vec3 = mgl32.Vec3

// Mesh is a raw or canonical triangle mesh. Triangles holds index triples into
// Vertices.
type Mesh struct {
	Vertices  []Vec3
	Triangles []int
}

// TriangleCount returns the number of complete index triples.
func (m Mesh) TriangleCount() int {
	return len(m.Triangles) / 3
}

// Vertex is a canonical vertex. ID is its index in Topology.Vertices and is
// never reassigned.
type Vertex struct {
	ID       int
	Position Vec3

	// ConnectedEdges lists every edge whose Vert1 or Vert2 is ID, in edge id
	// order. Filled during Build and read-only afterwards.
	ConnectedEdges []*Edge

	// HeldByRemote is true while another participant is dragging the vertex.
	HeldByRemote bool
}

// Edge is an undirected adjacency between two canonical vertices. Vert1 is
// always the smaller index.
type Edge struct {
	ID    int
	Vert1 int
	Vert2 int
}

// Touches reports whether v is one of the edge's endpoints.
func (e *Edge) Touches(v int) bool {
	return e != nil && (e.Vert1 == v || e.Vert2 == v)
}

// Topology is the canonical mesh plus its adjacency graph.
type Topology struct {
	Vertices  []*Vertex
	Edges     []*Edge
	Triangles []int
}

// Vertex returns the vertex with the given id, or nil when out of range.
func (t *Topology) Vertex(id int) *Vertex {
	if t == nil || id < 0 || id >= len(t.Vertices) {
		return nil
	}
	return t.Vertices[id]
}

// Positions copies the current vertex positions in id order.
func (t *Topology) Positions() []Vec3 {
	if t == nil {
		return nil
	}
	out := make([]Vec3, len(t.Vertices))
	for i, v := range t.Vertices {
		out[i] = v.Position
	}
	return out
}

// Mesh returns the current canonical mesh with live positions.
func (t *Topology) Mesh() Mesh {
	if t == nil {
		return Mesh{}
	}
	return Mesh{
		Vertices:  t.Positions(),
		Triangles: append([]int(nil), t.Triangles...),
	}
}
