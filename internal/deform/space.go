package deform

import (
	"github.com/go-gl/mathgl/mgl32"

	"meshsync/internal/mesh"
)

// Space is the world transform of the object the mesh is parented to.
type Space struct {
	Position mesh.Vec3
	Rotation mgl32.Quat
	Scale    mesh.Vec3
}

func IdentitySpace() Space {
	return Space{
		Rotation: mgl32.QuatIdent(),
		Scale:    mesh.Vec3{1, 1, 1},
	}
}

// ToLocal maps a world position into the space: subtract the translation,
// divide by the scale element-wise, then apply the inverse rotation. A zero
// scale component is left undivided and a zero quaternion counts as identity.
func (s Space) ToLocal(world mesh.Vec3) mesh.Vec3 {
	d := world.Sub(s.Position)
	for i := 0; i < 3; i++ {
		if s.Scale[i] != 0 {
			d[i] /= s.Scale[i]
		}
	}
	if s.Rotation.Len() == 0 {
		return d
	}
	return s.Rotation.Inverse().Rotate(d)
}

// SpaceProvider reports the parent space as of the current tick.
type SpaceProvider interface {
	EditingSpace() Space
}

// StaticSpace is a SpaceProvider for a parent that never moves.
type StaticSpace Space

func (s StaticSpace) EditingSpace() Space {
	return Space(s)
}
