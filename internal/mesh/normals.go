package mesh

// RecalculateNormals returns one area-weighted normal per vertex. Vertices not
// referenced by any non-degenerate triangle get the zero vector.
func RecalculateNormals(vertices []Vec3, triangles []int) []Vec3 {
	normals := make([]Vec3, len(vertices))
	for j := 0; j+2 < len(triangles); j += 3 {
		a, b, c := triangles[j], triangles[j+1], triangles[j+2]
		if !inRange(a, len(vertices)) || !inRange(b, len(vertices)) || !inRange(c, len(vertices)) {
			continue
		}
		// Unnormalized cross product: its length is twice the face area.
		face := vertices[b].Sub(vertices[a]).Cross(vertices[c].Sub(vertices[a]))
		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		}
	}
	return normals
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
