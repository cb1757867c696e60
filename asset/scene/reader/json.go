package reader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/therdel/raytracer/asset"
	"github.com/therdel/raytracer/asset/compiler"
	"github.com/therdel/raytracer/asset/compiler/input"
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/asset/scene"
	"github.com/therdel/raytracer/log"
	"github.com/therdel/raytracer/types"
)

func isNull(data []byte) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

type jsonVec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func (v jsonVec3) vec3() types.Vec3 {
	return types.XYZ(v.X, v.Y, v.Z)
}

type jsonVec4 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	W float32 `json:"w"`
}

func (v jsonVec4) vec4() types.Vec4 {
	return types.XYZW(v.X, v.Y, v.Z, v.W)
}

type jsonColor struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
}

func (c jsonColor) vec3() types.Vec3 {
	return types.XYZ(c.R, c.G, c.B)
}

// A background is either an rgb color or the "ColoredDirection" keyword.
type jsonBackground struct {
	coloredDirection bool
	color            jsonColor
}

func (b *jsonBackground) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name != "ColoredDirection" {
			return fmt.Errorf("unknown background %q", name)
		}
		b.coloredDirection = true
		return nil
	}

	return json.Unmarshal(data, &b.color)
}

// A refractive index is either a number or the name of a known medium.
type jsonIOR float32

func (ior *jsonIOR) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		val, exists := material.KnownIORs[name]
		if !exists {
			return fmt.Errorf("unknown refractive index %q", name)
		}
		*ior = jsonIOR(val)
		return nil
	}

	var val float32
	if err := json.Unmarshal(data, &val); err != nil {
		return err
	}
	*ior = jsonIOR(val)
	return nil
}

// A material type is either a plain kind name or an object keyed by the
// kind name that holds the kind parameters.
type jsonMaterialType struct {
	kind       material.Kind
	indexInner float32
	indexOuter float32
}

func (mt *jsonMaterialType) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		mt.kind, err = material.ParseKind(name)
		return err
	}

	var params map[string]struct {
		IndexInner jsonIOR `json:"index_inner"`
		IndexOuter jsonIOR `json:"index_outer"`
	}
	if err := json.Unmarshal(data, &params); err != nil {
		return err
	}
	if len(params) != 1 {
		return fmt.Errorf("expected material type object with a single key; got %d", len(params))
	}

	for name, p := range params {
		kind, err := material.ParseKind(name)
		if err != nil {
			return err
		}
		mt.kind = kind
		mt.indexInner = float32(p.IndexInner)
		mt.indexOuter = float32(p.IndexOuter)
	}
	return nil
}

// Winding order names; meshes without one are treated as counter-clockwise.
type jsonWindingOrder struct {
	order input.WindingOrder
}

func (w *jsonWindingOrder) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	switch name {
	case "Clockwise":
		w.order = input.Clockwise
	case "CounterClockwise":
		w.order = input.CounterClockwise
	default:
		return fmt.Errorf("unknown winding order %q", name)
	}
	return nil
}

type jsonScene struct {
	Camera struct {
		Position           jsonVec3 `json:"position"`
		OrientationDegrees jsonVec3 `json:"orientation_degrees"`
		YFovDegrees        float32  `json:"y_fov_degrees"`
		ZNear              float32  `json:"z_near"`
		ZFar               float32  `json:"z_far"`
	} `json:"camera"`

	Screen struct {
		PixelWidth  uint32         `json:"pixel_width"`
		PixelHeight uint32         `json:"pixel_height"`
		Background  jsonBackground `json:"background"`
	} `json:"screen"`

	Lights []struct {
		Position jsonVec4 `json:"position"`
		Color    struct {
			Ambient  jsonColor `json:"ambient"`
			Diffuse  jsonColor `json:"diffuse"`
			Specular jsonColor `json:"specular"`
		} `json:"color"`
	} `json:"lights"`

	Materials []struct {
		Name         string           `json:"name"`
		Emissive     jsonColor        `json:"emissive"`
		Ambient      jsonColor        `json:"ambient"`
		Diffuse      jsonColor        `json:"diffuse"`
		Specular     jsonColor        `json:"specular"`
		Shininess    float32          `json:"shininess"`
		MaterialType jsonMaterialType `json:"material_type"`
	} `json:"materials"`

	Planes []struct {
		Normal   jsonVec3 `json:"normal"`
		Distance float32  `json:"distance"`
		Material string   `json:"material"`
	} `json:"planes"`

	Spheres []struct {
		Center   jsonVec3 `json:"center"`
		Radius   float32  `json:"radius"`
		Material string   `json:"material"`
	} `json:"spheres"`

	Triangles []struct {
		Vertices [3]jsonVec3 `json:"vertices"`
		Normals  [3]jsonVec3 `json:"normals"`
		Material string      `json:"material"`
	} `json:"triangles"`

	Meshes []struct {
		Name         string            `json:"name"`
		FileName     string            `json:"file_name"`
		Material     string            `json:"material"`
		WindingOrder *jsonWindingOrder `json:"winding_order"`
	} `json:"meshes"`

	MeshInstances []struct {
		Mesh               string    `json:"mesh"`
		Position           jsonVec3  `json:"position"`
		OrientationDegrees jsonVec3  `json:"orientation_degrees"`
		Scale              *jsonVec3 `json:"scale"`
		MaterialOverride   string    `json:"material_override"`
	} `json:"mesh_instances"`
}

// Create a scene document pre-populated with the default camera settings so
// that omitted fields keep their defaults.
func newJSONScene() *jsonScene {
	defaults := input.NewScene().Camera

	js := &jsonScene{}
	js.Camera.YFovDegrees = defaults.YFovDegrees
	js.Camera.ZNear = defaults.ZNear
	js.Camera.ZFar = defaults.ZFar
	js.Screen.PixelWidth = defaults.PixelWidth
	js.Screen.PixelHeight = defaults.PixelHeight
	return js
}

type jsonSceneReader struct {
	logger log.Logger
}

// Create a new json scene reader.
func newJSONSceneReader() *jsonSceneReader {
	return &jsonSceneReader{
		logger: log.New("json reader"),
	}
}

// Read scene definition.
func (r *jsonSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	data, err := io.ReadAll(sceneRes)
	if err != nil {
		return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
	}

	js := newJSONScene()
	if err = json.Unmarshal(data, js); err != nil {
		return nil, decodeError(sceneRes.Path(), data, err)
	}

	rawScene, err := r.buildScene(sceneRes, js)
	if err != nil {
		return nil, err
	}

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)

	return compiler.Compile(rawScene)
}

// Convert the decoded document into a raw scene and load all referenced meshes.
func (r *jsonSceneReader) buildScene(sceneRes *asset.Resource, js *jsonScene) (*input.Scene, error) {
	rawScene := input.NewScene()

	rawScene.Camera = input.Camera{
		Position:           js.Camera.Position.vec3(),
		OrientationDegrees: js.Camera.OrientationDegrees.vec3(),
		YFovDegrees:        js.Camera.YFovDegrees,
		ZNear:              js.Camera.ZNear,
		ZFar:               js.Camera.ZFar,
		PixelWidth:         js.Screen.PixelWidth,
		PixelHeight:        js.Screen.PixelHeight,
	}
	rawScene.Background = input.Background{
		ColoredDirection: js.Screen.Background.coloredDirection,
		Color:            js.Screen.Background.color.vec3(),
	}

	for _, l := range js.Lights {
		rawScene.Lights = append(rawScene.Lights, input.Light{
			Position: l.Position.vec4(),
			Ambient:  l.Color.Ambient.vec3(),
			Diffuse:  l.Color.Diffuse.vec3(),
			Specular: l.Color.Specular.vec3(),
		})
	}

	for _, m := range js.Materials {
		rawScene.Materials = append(rawScene.Materials, &material.Material{
			Name:       m.Name,
			Emissive:   m.Emissive.vec3(),
			Ambient:    m.Ambient.vec3(),
			Diffuse:    m.Diffuse.vec3(),
			Specular:   m.Specular.vec3(),
			Shininess:  m.Shininess,
			Kind:       m.MaterialType.kind,
			IndexInner: m.MaterialType.indexInner,
			IndexOuter: m.MaterialType.indexOuter,
		})
	}

	for _, p := range js.Planes {
		rawScene.Planes = append(rawScene.Planes, input.Plane{Normal: p.Normal.vec3(), Distance: p.Distance, Material: p.Material})
	}
	for _, s := range js.Spheres {
		rawScene.Spheres = append(rawScene.Spheres, input.Sphere{Center: s.Center.vec3(), Radius: s.Radius, Material: s.Material})
	}
	for _, t := range js.Triangles {
		tri := input.Triangle{Material: t.Material}
		for index := range t.Vertices {
			tri.Vertices[index] = t.Vertices[index].vec3()
			tri.Normals[index] = t.Normals[index].vec3()
		}
		rawScene.Triangles = append(rawScene.Triangles, tri)
	}

	for _, m := range js.Meshes {
		mesh := input.NewMesh(m.Name)
		mesh.FileName = m.FileName
		mesh.Material = m.Material
		if m.WindingOrder != nil {
			mesh.Winding = m.WindingOrder.order
		}

		if err := r.loadMesh(sceneRes, mesh); err != nil {
			return nil, err
		}
		rawScene.Meshes = append(rawScene.Meshes, mesh)
	}

	for _, mi := range js.MeshInstances {
		scale := types.XYZ(1, 1, 1)
		if mi.Scale != nil {
			scale = mi.Scale.vec3()
		}
		rawScene.MeshInstances = append(rawScene.MeshInstances, &input.MeshInstance{
			Mesh:               mi.Mesh,
			Position:           mi.Position.vec3(),
			OrientationDegrees: mi.OrientationDegrees.vec3(),
			Scale:              scale,
			MaterialOverride:   mi.MaterialOverride,
		})
	}

	return rawScene, nil
}

// Load mesh geometry from a wavefront file relative to the scene file.
func (r *jsonSceneReader) loadMesh(sceneRes *asset.Resource, mesh *input.Mesh) error {
	if mesh.FileName == "" {
		return fmt.Errorf("reader: mesh %q does not specify a file_name", mesh.Name)
	}

	meshRes, err := asset.NewResource(mesh.FileName, sceneRes)
	if err != nil {
		return fmt.Errorf("reader: mesh %q: %w", mesh.Name, err)
	}
	defer meshRes.Close()

	return newWavefrontMeshReader().ReadMesh(meshRes, mesh)
}

// Annotate json decoding errors with the line and column they occurred at.
func decodeError(file string, data []byte, err error) error {
	var offset int64 = -1

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}

	if offset < 0 || offset > int64(len(data)) {
		return fmt.Errorf("reader: %s: %w", file, err)
	}

	prefix := data[:offset]
	line := bytes.Count(prefix, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(prefix, '\n')
	return fmt.Errorf("reader: [%s: %d:%d] %w", file, line, col, err)
}
