package material

import (
	"fmt"

	"github.com/therdel/raytracer/types"
)

// Index references a material in the scene material list.
type Index uint32

// A surface material. IndexInner and IndexOuter are only used by the
// ReflectAndRefract kind.
type Material struct {
	Name string

	Emissive  types.Vec3
	Ambient   types.Vec3
	Diffuse   types.Vec3
	Specular  types.Vec3
	Shininess float32

	Kind Kind

	// Refractive indices of the medium enclosed by the surface and of the
	// surrounding medium.
	IndexInner float32
	IndexOuter float32
}

// Create a Phong material with the default coefficients.
func New(name string) *Material {
	return &Material{
		Name:      name,
		Ambient:   DefaultAmbient,
		Diffuse:   DefaultDiffuse,
		Specular:  DefaultSpecular,
		Shininess: DefaultShininess,
		Kind:      Phong,
	}
}

// Check material parameters and fill in missing refractive indices.
func (m *Material) Validate() error {
	switch m.Kind {
	case Phong, ReflectAndPhong:
	case ReflectAndRefract:
		if m.IndexInner == 0 {
			m.IndexInner = DefaultIndexInner
		}
		if m.IndexOuter == 0 {
			m.IndexOuter = DefaultIndexOuter
		}
		if m.IndexInner < 0 || m.IndexOuter < 0 {
			return fmt.Errorf("material %q: refractive indices must be positive", m.Name)
		}
	default:
		return fmt.Errorf("material %q: invalid material type", m.Name)
	}

	if m.Shininess < 0 {
		return fmt.Errorf("material %q: shininess must not be negative", m.Name)
	}
	return nil
}
