package visual

import (
	"github.com/go-gl/mathgl/mgl32"

	"meshsync/internal/mesh"
)

// Transform is the local transform of a visual object relative to the model.
type Transform struct {
	Position mesh.Vec3
	Rotation mgl32.Quat
	Scale    mesh.Vec3
}

var (
	worldUp  = mesh.Vec3{0, 1, 0}
	altUp    = mesh.Vec3{0, 0, 1}
	quarterX = mgl32.QuatRotate(mgl32.DegToRad(90), mesh.Vec3{1, 0, 0})
)

// EdgeTransform places a unit line primitive (two units tall along its local
// Y axis) between a and b. The primitive sits at the midpoint, its Y scale is
// half the edge length and its local Y axis points from the midpoint toward a.
// X/Z scale is the edge thickness.
func EdgeTransform(a, b mesh.Vec3, thickness float32) Transform {
	mid := a.Add(b).Mul(0.5)
	return Transform{
		Position: mid,
		Rotation: lookRotation(a.Sub(mid), worldUp).Mul(quarterX),
		Scale:    mesh.Vec3{thickness, 0.5 * a.Sub(b).Len(), thickness},
	}
}

// lookRotation returns the rotation whose local +Z faces forward with local +Y
// as close to up as possible. A zero forward yields the identity.
func lookRotation(forward, up mesh.Vec3) mgl32.Quat {
	if forward.Len() == 0 {
		return mgl32.QuatIdent()
	}
	f := forward.Normalize()
	if abs32(f.Dot(up)) > 0.9999 {
		up = altUp
	}
	right := up.Cross(f).Normalize()
	u := f.Cross(right)
	return mgl32.Mat4ToQuat(mgl32.Mat3FromCols(right, u, f).Mat4()).Normalize()
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
