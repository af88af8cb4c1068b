package mesh

// Canonicalize collapses vertices with bit-identical positions. The first
// occurrence of a position wins and keeps its rank among first occurrences as
// its canonical index; every triangle index is rewritten to the canonical
// vertex with the same position.
//
// Equality is exact float comparison, not a tolerance: two corners that differ
// in the last bit stay distinct vertices.
func Canonicalize(m Mesh) (Mesh, error) {
	if err := validate(m); err != nil {
		return Mesh{}, err
	}

	rank := make(map[Vec3]int, len(m.Vertices))
	remap := make([]int, len(m.Vertices))
	vertices := make([]Vec3, 0, len(m.Vertices))
	for i, p := range m.Vertices {
		if r, ok := rank[p]; ok {
			remap[i] = r
			continue
		}
		r := len(vertices)
		rank[p] = r
		remap[i] = r
		vertices = append(vertices, p)
	}

	triangles := make([]int, len(m.Triangles))
	for slot, idx := range m.Triangles {
		triangles[slot] = remap[idx]
	}

	out := Mesh{Vertices: vertices, Triangles: triangles}
	if err := validate(out); err != nil {
		return Mesh{}, err
	}
	return out, nil
}
