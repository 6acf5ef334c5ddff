package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera constants.
const (
	FieldOfView    = 45.0 // degrees
	NearPlane      = 0.1
	FarPlane       = 100.0
	CameraDistance = 8.0
)

// PerspectiveLH returns a left-handed perspective projection mapping depth
// to [0, 1]. fovy is in radians.
func PerspectiveLH(fovy, aspect, near, far float32) mgl32.Mat4 {
	sin, cos := math.Sincos(float64(fovy) / 2)
	h := float32(cos / sin)
	w := h / aspect
	r := far / (far - near)
	return mgl32.Mat4{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, r, 1,
		0, 0, -r * near, 0,
	}
}

// MVP returns the model-view-projection matrix of a cube at position,
// rotated by angle radians about axis, for a target with the given aspect
// ratio. The camera looks down +z from the origin; the cube is pushed
// CameraDistance units away from it.
//
// MVP is pure: equal inputs give bit-identical results.
func MVP(position, axis mgl32.Vec3, angle, aspect float32) mgl32.Mat4 {
	proj := PerspectiveLH(mgl32.DegToRad(FieldOfView), aspect, NearPlane, FarPlane)
	world := position.Add(mgl32.Vec3{0, 0, CameraDistance})
	model := mgl32.Translate3D(world[0], world[1], world[2]).Mul4(mgl32.HomogRotate3D(angle, axis))
	return proj.Mul4(model)
}
