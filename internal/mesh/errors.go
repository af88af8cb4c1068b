package mesh

import (
	"errors"
	"fmt"
)

// ErrMalformedMesh indicates a triangle list that cannot describe the vertex
// array it belongs to.
var ErrMalformedMesh = errors.New("mesh: malformed mesh")

// MalformedMeshError reports the first offending triangle slot.
type MalformedMeshError struct {
	Slot        int // position in the triangle index array, -1 when not slot specific
	Index       int
	VertexCount int
	Reason      string
}

func (e *MalformedMeshError) Error() string {
	if e.Slot < 0 {
		return fmt.Sprintf("mesh: malformed mesh: %s", e.Reason)
	}
	return fmt.Sprintf("mesh: malformed mesh: triangle slot %d references vertex %d, have %d vertices",
		e.Slot, e.Index, e.VertexCount)
}

func (e *MalformedMeshError) Is(target error) bool {
	return target == ErrMalformedMesh
}

func validate(m Mesh) error {
	if len(m.Triangles)%3 != 0 {
		return &MalformedMeshError{
			Slot:        -1,
			VertexCount: len(m.Vertices),
			Reason:      fmt.Sprintf("triangle index count %d is not a multiple of 3", len(m.Triangles)),
		}
	}
	for slot, idx := range m.Triangles {
		if idx < 0 || idx >= len(m.Vertices) {
			return &MalformedMeshError{Slot: slot, Index: idx, VertexCount: len(m.Vertices)}
		}
	}
	return nil
}
