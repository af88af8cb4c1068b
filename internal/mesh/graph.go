package mesh

// Build derives the adjacency graph of a canonical mesh.
//
// Vertices are visited in index order. Vertex i creates one edge (i, k) for
// every adjacent k > i, in the order k was first seen while walking the
// triangle list, so each unordered pair becomes exactly one edge and edge ids
// are sequential. Every new edge is appended to both endpoints'
// ConnectedEdges as it is created; since an edge touching i is always created
// while visiting min(i, k), each list ends up in edge id order.
//
// Self pairs from degenerate triangles (a corner repeated within one triple)
// never produce an edge.
func Build(m Mesh) (*Topology, error) {
	if err := validate(m); err != nil {
		return nil, err
	}

	topo := &Topology{
		Vertices:  make([]*Vertex, len(m.Vertices)),
		Triangles: append([]int(nil), m.Triangles...),
	}
	for i, p := range m.Vertices {
		topo.Vertices[i] = &Vertex{ID: i, Position: p}
	}

	adjacent := adjacency(len(m.Vertices), m.Triangles)
	for i, neighbours := range adjacent {
		for _, k := range neighbours {
			if k <= i {
				continue
			}
			e := &Edge{ID: len(topo.Edges), Vert1: i, Vert2: k}
			topo.Edges = append(topo.Edges, e)
			topo.Vertices[i].ConnectedEdges = append(topo.Vertices[i].ConnectedEdges, e)
			topo.Vertices[k].ConnectedEdges = append(topo.Vertices[k].ConnectedEdges, e)
		}
	}
	return topo, nil
}

// FromRaw canonicalizes an imported mesh and builds its topology.
func FromRaw(m Mesh) (*Topology, error) {
	canonical, err := Canonicalize(m)
	if err != nil {
		return nil, err
	}
	return Build(canonical)
}

// adjacency returns, per vertex, its neighbours in first-seen order. A
// triangle (a, b, c) contributes the two other corners to each corner.
func adjacency(vertexCount int, triangles []int) [][]int {
	out := make([][]int, vertexCount)
	seen := make([]map[int]struct{}, vertexCount)
	add := func(v, n int) {
		if v == n {
			return
		}
		if seen[v] == nil {
			seen[v] = make(map[int]struct{}, 6)
		}
		if _, ok := seen[v][n]; ok {
			return
		}
		seen[v][n] = struct{}{}
		out[v] = append(out[v], n)
	}
	for j := 0; j+2 < len(triangles); j += 3 {
		a, b, c := triangles[j], triangles[j+1], triangles[j+2]
		add(a, b)
		add(a, c)
		add(b, a)
		add(b, c)
		add(c, a)
		add(c, b)
	}
	return out
}
