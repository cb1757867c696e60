package types

import "github.com/go-gl/mathgl/mgl32"

// Column-major 4x4 matrix.
type Mat4 = mgl32.Mat4

// Get the identity matrix.
func Ident4() Mat4 {
	return mgl32.Ident4()
}

// Create a translation matrix.
func Translate4(v Vec3) Mat4 {
	return mgl32.Translate3D(v[0], v[1], v[2])
}

// Create a scale matrix.
func Scale4(v Vec3) Mat4 {
	return mgl32.Scale3D(v[0], v[1], v[2])
}

// Create a rotation matrix from angles in radians. Rotations are applied to
// a vector in roll (z), pitch (x), yaw (y) order.
func Rotate4(yaw, pitch, roll float32) Mat4 {
	return mgl32.HomogRotate3DY(yaw).
		Mul4(mgl32.HomogRotate3DX(pitch)).
		Mul4(mgl32.HomogRotate3DZ(roll))
}

// Create a rotation matrix from an orientation vector holding
// (pitch, yaw, roll) in radians.
func Orientation4(orientation Vec3) Mat4 {
	return Rotate4(orientation[1], orientation[0], orientation[2])
}

// Create a scale * rotation matrix.
func RotationScale4(orientation, scale Vec3) Mat4 {
	return Scale4(scale).Mul4(Orientation4(orientation))
}

// Create a model matrix: translation * scale * rotation.
func Model4(position, orientation, scale Vec3) Mat4 {
	return Translate4(position).Mul4(RotationScale4(orientation, scale))
}

// Create a matrix that maps normalized device coordinates to the viewport
// rectangle at (x, y) with the given pixel dimensions.
func Viewport4(x, y float32, dims Vec2, zNear, zFar float32) Mat4 {
	return mgl32.Mat4FromCols(
		mgl32.Vec4{dims[0] / 2, 0, 0, 0},
		mgl32.Vec4{0, dims[1] / 2, 0, 0},
		mgl32.Vec4{0, 0, (zFar - zNear) / 2, 0},
		mgl32.Vec4{x + dims[0]/2, y + dims[1]/2, (zFar + zNear) / 2, 1},
	)
}

// Create a perspective projection matrix.
func Perspective4(yFovDegrees, aspect, zNear, zFar float32) Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(yFovDegrees), aspect, zNear, zFar)
}

// Transform a point (w = 1). No perspective divide is applied.
func TransformPoint(m Mat4, p Vec3) Vec3 {
	out := m.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
	return Vec3{out[0], out[1], out[2]}
}

// Transform a direction (w = 0).
func TransformDir(m Mat4, d Vec3) Vec3 {
	out := m.Mul4x1(mgl32.Vec4{d[0], d[1], d[2], 0})
	return Vec3{out[0], out[1], out[2]}
}

// Transform a homogeneous vector.
func Transform4(m Mat4, v Vec4) Vec4 {
	return Vec4(m.Mul4x1(mgl32.Vec4(v)))
}

// Convert degrees to radians.
func DegToRad(v Vec3) Vec3 {
	return Vec3{mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2])}
}
