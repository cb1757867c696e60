package scene

import (
	"fmt"

	"github.com/therdel/raytracer/types"
)

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3

	// Orientation angles in radians: pitch (x), yaw (y) and roll (z).
	Orientation types.Vec3

	YFovDegrees float32
	ZNear       float32
	ZFar        float32

	// Screen dims in pixels.
	PixelWidth  uint32
	PixelHeight uint32

	ViewMat       types.Mat4
	ProjMat       types.Mat4
	ViewportMat   types.Mat4
	ScreenToWorld types.Mat4
}

func NewCamera(yFovDegrees float32, pixelWidth, pixelHeight uint32) *Camera {
	c := &Camera{
		YFovDegrees: yFovDegrees,
		ZNear:       0.1,
		ZFar:        100,
		PixelWidth:  pixelWidth,
		PixelHeight: pixelHeight,
	}
	c.Update()
	return c
}

// Get the screen aspect ratio.
func (c *Camera) Aspect() float32 {
	return float32(c.PixelWidth) / float32(c.PixelHeight)
}

// Recalculate the camera matrices. Must be called after changing any of the
// camera fields.
func (c *Camera) Update() {
	// The view matrix undoes the camera placement
	c.ViewMat = types.Translate4(c.Position).Mul4(types.Orientation4(c.Orientation)).Inv()
	c.ProjMat = types.Perspective4(c.YFovDegrees, c.Aspect(), c.ZNear, c.ZFar)
	c.ViewportMat = types.Viewport4(0, 0, types.XY(float32(c.PixelWidth), float32(c.PixelHeight)), c.ZNear, c.ZFar)
	c.ScreenToWorld = c.ViewportMat.Mul4(c.ProjMat).Mul4(c.ViewMat).Inv()
}

// Check camera parameters.
func (c *Camera) Validate() error {
	switch {
	case c.PixelWidth == 0 || c.PixelHeight == 0:
		return fmt.Errorf("camera: invalid screen dimensions %dx%d", c.PixelWidth, c.PixelHeight)
	case c.YFovDegrees <= 0 || c.YFovDegrees >= 180:
		return fmt.Errorf("camera: vertical field of view must be in (0, 180) degrees; got %f", c.YFovDegrees)
	case c.ZNear <= 0 || c.ZFar <= c.ZNear:
		return fmt.Errorf("camera: invalid clip planes near=%f far=%f", c.ZNear, c.ZFar)
	}
	return nil
}
