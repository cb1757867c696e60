package scene

import "github.com/therdel/raytracer/types"

// A light source. A zero Position w component marks a directional light
// whose Position holds the direction towards the light.
type Light struct {
	Position types.Vec4

	Ambient  types.Vec3
	Diffuse  types.Vec3
	Specular types.Vec3
}

// Returns true for directional lights.
func (l *Light) IsDirectional() bool {
	return l.Position[3] == 0
}

// Get the world position of a point light.
func (l *Light) WorldPosition() types.Vec3 {
	return l.Position.Homogenize()
}

// Get the unit vector from p towards the light.
func (l *Light) DirectionFrom(p types.Vec3) types.Vec3 {
	if l.IsDirectional() {
		return l.Position.Vec3().Normalize()
	}
	return l.WorldPosition().Sub(p).Normalize()
}

// The type of the scene background.
type BackgroundKind uint8

const (
	// A fixed color.
	SolidColor BackgroundKind = iota

	// The ray direction remapped from [-1, 1] to [0, 1] per component.
	ColoredDirection
)

type Background struct {
	Kind  BackgroundKind
	Color types.Vec3
}
