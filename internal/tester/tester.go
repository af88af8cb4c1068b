// Package tester holds mesh fixtures and recording fakes shared by tests.
package tester

import (
	"meshsync/internal/mesh"
)

// Cube returns a unit cube the way face-by-face generators emit it: 24
// vertices (4 per face, corners repeated across faces) and 12 triangles, each
// quad split along its 0-2 diagonal.
//
// Canonicalized it has 8 corners and 18 edges: 12 cube edges plus one
// diagonal per face.
func Cube() mesh.Mesh {
	faces := [6][4]mesh.Vec3{
		{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, // -Z
		{{0, 0, 1}, {0, 1, 1}, {1, 1, 1}, {1, 0, 1}}, // +Z
		{{0, 0, 0}, {0, 1, 0}, {0, 1, 1}, {0, 0, 1}}, // -X
		{{1, 0, 0}, {1, 0, 1}, {1, 1, 1}, {1, 1, 0}}, // +X
		{{0, 0, 0}, {0, 0, 1}, {1, 0, 1}, {1, 0, 0}}, // -Y
		{{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1}}, // +Y
	}
	m := mesh.Mesh{
		Vertices:  make([]mesh.Vec3, 0, 24),
		Triangles: make([]int, 0, 36),
	}
	for _, f := range faces {
		base := len(m.Vertices)
		m.Vertices = append(m.Vertices, f[:]...)
		m.Triangles = append(m.Triangles,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}
	return m
}

// Quad returns two triangles sharing the 0-2 diagonal, already canonical.
func Quad() mesh.Mesh {
	return mesh.Mesh{
		Vertices: []mesh.Vec3{
			{0, 0, 0},
			{1, 0, 0},
			{1, 1, 0},
			{0, 1, 0},
		},
		Triangles: []int{0, 1, 2, 0, 2, 3},
	}
}

// Pairs returns the distinct unordered vertex pairs induced by a triangle
// list, computed by brute force.
func Pairs(triangles []int) map[[2]int]struct{} {
	out := make(map[[2]int]struct{})
	for j := 0; j+2 < len(triangles); j += 3 {
		tri := [3]int{triangles[j], triangles[j+1], triangles[j+2]}
		for a := 0; a < 3; a++ {
			for b := a + 1; b < 3; b++ {
				p, q := tri[a], tri[b]
				if p == q {
					continue
				}
				if p > q {
					p, q = q, p
				}
				out[[2]int{p, q}] = struct{}{}
			}
		}
	}
	return out
}

// SentUpdate is one outbound vertex update captured by Sender.
type SentUpdate struct {
	Vertex   int
	Position mesh.Vec3
	Final    bool
}

// Sender records outbound vertex updates instead of sending them.
type Sender struct {
	Sent []SentUpdate
	Err  error
}

func (s *Sender) SendVertexUpdate(vertex int, position mesh.Vec3, final bool) error {
	s.Sent = append(s.Sent, SentUpdate{Vertex: vertex, Position: position, Final: final})
	return s.Err
}

// Last returns the most recent update, or false when nothing was sent.
func (s *Sender) Last() (SentUpdate, bool) {
	if len(s.Sent) == 0 {
		return SentUpdate{}, false
	}
	return s.Sent[len(s.Sent)-1], true
}
