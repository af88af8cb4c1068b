package importer

import (
	"encoding/json"
	"fmt"

	"meshsync/internal/mesh"
)

// jsonMesh is the interchange shape:
//
//	{"vertices": [[x, y, z], ...], "triangles": [0, 1, 2, ...]}
type jsonMesh struct {
	Vertices  [][3]float32 `json:"vertices"`
	Triangles []int        `json:"triangles"`
}

func DecodeJSON(data []byte) (mesh.Mesh, error) {
	var in jsonMesh
	if err := json.Unmarshal(data, &in); err != nil {
		return mesh.Mesh{}, fmt.Errorf("importer: decode json mesh: %w", err)
	}
	m := mesh.Mesh{
		Vertices:  make([]mesh.Vec3, len(in.Vertices)),
		Triangles: in.Triangles,
	}
	for i, v := range in.Vertices {
		m.Vertices[i] = mesh.Vec3(v)
	}
	return m, nil
}

func EncodeJSON(m mesh.Mesh) ([]byte, error) {
	out := jsonMesh{
		Vertices:  make([][3]float32, len(m.Vertices)),
		Triangles: m.Triangles,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = [3]float32(v)
	}
	return json.Marshal(out)
}
