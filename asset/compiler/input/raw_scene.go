package input

import (
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/types"
)

// The order in which mesh faces list their vertices when seen from the front.
type WindingOrder uint8

const (
	Clockwise WindingOrder = iota

	// Mesh normals point inwards and are negated while loading.
	CounterClockwise
)

// Camera settings.
type Camera struct {
	Position           types.Vec3
	OrientationDegrees types.Vec3

	YFovDegrees float32
	ZNear       float32
	ZFar        float32

	PixelWidth  uint32
	PixelHeight uint32
}

// Scene background settings.
type Background struct {
	// Color the background by the ray direction instead of Color.
	ColoredDirection bool
	Color            types.Vec3
}

// A light source. A zero w component marks a directional light.
type Light struct {
	Position types.Vec4

	Ambient  types.Vec3
	Diffuse  types.Vec3
	Specular types.Vec3
}

// An infinite plane with N.P = Distance.
type Plane struct {
	Normal   types.Vec3
	Distance float32
	Material string
}

type Sphere struct {
	Center   types.Vec3
	Radius   float32
	Material string
}

// A free standing triangle with per-vertex normals.
type Triangle struct {
	Vertices [3]types.Vec3
	Normals  [3]types.Vec3
	Material string
}

// A triangle primitive loaded from a mesh file.
type Primitive struct {
	Vertices [3]types.Vec3
	Normals  [3]types.Vec3
}

// A mesh is constructed by a list of primitives sharing a material.
type Mesh struct {
	Name       string
	FileName   string
	Material   string
	Winding    WindingOrder
	Primitives []Primitive
}

// Create a new mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:       name,
		Winding:    CounterClockwise,
		Primitives: make([]Primitive, 0),
	}
}

// A mesh instance places a named mesh in the world.
type MeshInstance struct {
	Mesh string

	Position           types.Vec3
	OrientationDegrees types.Vec3
	Scale              types.Vec3

	// Optional material replacing the mesh material.
	MaterialOverride string
}

// The scene contains all elements that are processed and optimized by the
// scene compiler. Primitives reference materials and meshes by name.
type Scene struct {
	Camera     Camera
	Background Background

	Lights    []Light
	Materials []*material.Material

	Planes    []Plane
	Spheres   []Sphere
	Triangles []Triangle

	Meshes        []*Mesh
	MeshInstances []*MeshInstance
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Camera: Camera{
			YFovDegrees: 45.0,
			ZNear:       0.1,
			ZFar:        100.0,
			PixelWidth:  512,
			PixelHeight: 512,
		},
		Lights:        make([]Light, 0),
		Materials:     make([]*material.Material, 0),
		Meshes:        make([]*Mesh, 0),
		MeshInstances: make([]*MeshInstance, 0),
	}
}
