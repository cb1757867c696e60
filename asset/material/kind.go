package material

import "fmt"

// Kind selects the shading model used for a surface.
type Kind uint8

const (
	kindInvalid Kind = iota

	// Phong illumination with shadow rays.
	Phong

	// Dimmed mirror reflection plus Phong illumination.
	ReflectAndPhong

	// Fresnel weighted blend of mirror reflection and dielectric refraction.
	ReflectAndRefract
)

// Lookup material kind by its name.
func kindFromName(name string) Kind {
	switch name {
	case "Phong":
		return Phong
	case "ReflectAndPhong":
		return ReflectAndPhong
	case "ReflectAndRefract":
		return ReflectAndRefract
	}

	return kindInvalid
}

// Parse a material kind name.
func ParseKind(name string) (Kind, error) {
	kind := kindFromName(name)
	if kind == kindInvalid {
		return kindInvalid, fmt.Errorf("material: unknown material type %q", name)
	}
	return kind, nil
}

func (k Kind) String() string {
	switch k {
	case Phong:
		return "Phong"
	case ReflectAndPhong:
		return "ReflectAndPhong"
	case ReflectAndRefract:
		return "ReflectAndRefract"
	}

	return "invalid"
}
