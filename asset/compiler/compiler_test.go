package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/therdel/raytracer/asset/compiler/bvh"
	"github.com/therdel/raytracer/asset/compiler/input"
	"github.com/therdel/raytracer/asset/geometry"
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/asset/scene"
	"github.com/therdel/raytracer/types"
)

func makeQuadMesh(name, mat string) *input.Mesh {
	n := types.XYZ(0, 0, 1)
	mesh := input.NewMesh(name)
	mesh.Material = mat
	mesh.Primitives = []input.Primitive{
		{Vertices: [3]types.Vec3{types.XYZ(-1, -1, 0), types.XYZ(1, -1, 0), types.XYZ(1, 1, 0)}, Normals: [3]types.Vec3{n, n, n}},
		{Vertices: [3]types.Vec3{types.XYZ(-1, -1, 0), types.XYZ(1, 1, 0), types.XYZ(-1, 1, 0)}, Normals: [3]types.Vec3{n, n, n}},
	}
	return mesh
}

func makeInputScene() *input.Scene {
	raw := input.NewScene()
	raw.Camera.Position = types.XYZ(0, 0, 10)
	raw.Camera.OrientationDegrees = types.XYZ(0, 180, 0)
	raw.Camera.PixelWidth = 64
	raw.Camera.PixelHeight = 32

	glass := material.New("glass")
	glass.Kind = material.ReflectAndRefract
	raw.Materials = []*material.Material{material.New("matte"), glass}
	raw.Lights = []input.Light{{Position: types.XYZW(0, 10, 0, 1), Diffuse: types.XYZ(1, 1, 1)}}
	raw.Background = input.Background{ColoredDirection: true}

	raw.Planes = []input.Plane{{Normal: types.XYZ(0, 1, 0), Distance: -1, Material: "matte"}}
	raw.Spheres = []input.Sphere{{Center: types.XYZ(0, 0, -3), Radius: 1, Material: "glass"}}
	raw.Triangles = []input.Triangle{{
		Vertices: [3]types.Vec3{types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)},
		Material: "glass",
	}}
	raw.Meshes = []*input.Mesh{makeQuadMesh("quad", "matte"), makeQuadMesh("other", "glass")}
	raw.MeshInstances = []*input.MeshInstance{
		{Mesh: "other", Position: types.XYZ(0, 0, -5), Scale: types.XYZ(1, 1, 1)},
		{Mesh: "quad", Position: types.XYZ(3, 0, -5), OrientationDegrees: types.XYZ(0, 90, 0), Scale: types.XYZ(2, 2, 2), MaterialOverride: "glass"},
	}
	return raw
}

func TestCompile(t *testing.T) {
	sc, err := Compile(makeInputScene())
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Materials) != 2 || sc.Materials[1].IndexInner != material.DefaultIndexInner {
		t.Fatalf("expected 2 validated materials; got %+v", sc.Materials)
	}
	if sc.Planes[0].Material != 0 || sc.Spheres[0].Material != 1 || sc.Triangles[0].Material != 1 {
		t.Fatal("expected primitive material names to resolve to material indices")
	}
	if sc.Background.Kind != scene.ColoredDirection {
		t.Fatalf("expected colored direction background; got %v", sc.Background.Kind)
	}

	if len(sc.MeshTriangles) != 4 || len(sc.Meshes) != 2 {
		t.Fatalf("expected 2 meshes with 4 triangles in total; got %d meshes and %d triangles", len(sc.Meshes), len(sc.MeshTriangles))
	}
	second := sc.Meshes[1]
	if second.Triangles != (geometry.Range{Start: 2, End: 4}) {
		t.Fatalf("expected second mesh to own triangles [2, 4); got [%d, %d)", second.Triangles.Start, second.Triangles.End)
	}
	if second.Bvh.Nodes.Start != sc.Meshes[0].Bvh.Nodes.End {
		t.Fatal("expected mesh BVHs to be stored back to back in the scene node list")
	}
	if sc.MeshTriangles[2].Material != 1 {
		t.Fatalf("expected mesh triangles to use the mesh material; got %d", sc.MeshTriangles[2].Material)
	}

	if len(sc.MeshInstances) != 2 {
		t.Fatalf("expected 2 mesh instances; got %d", len(sc.MeshInstances))
	}
	if sc.MeshInstances[0].Mesh != 1 || sc.MeshInstances[0].MaterialOverride != nil {
		t.Fatalf("expected first instance to reference mesh 1 without override")
	}
	if sc.MeshInstances[1].Mesh != 0 || sc.MeshInstances[1].MaterialOverride == nil || *sc.MeshInstances[1].MaterialOverride != 1 {
		t.Fatalf("expected second instance to reference mesh 0 with the glass override")
	}

	cam := sc.Camera
	if cam.PixelWidth != 64 || cam.PixelHeight != 32 || cam.Position != types.XYZ(0, 0, 10) {
		t.Fatalf("expected camera settings to be copied; got %+v", cam)
	}
	if exp := types.XYZ(0, 3.14159, 0); !cam.Orientation.ApproxEqual(exp, 1e-4) {
		t.Fatalf("expected orientation in radians %v; got %v", exp, cam.Orientation)
	}
}

func TestCompileCreatesDefaultInstances(t *testing.T) {
	raw := makeInputScene()
	raw.MeshInstances = nil

	sc, err := Compile(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.MeshInstances) != len(sc.Meshes) {
		t.Fatalf("expected one instance per mesh; got %d", len(sc.MeshInstances))
	}
	for index, inst := range sc.MeshInstances {
		if inst.Mesh != scene.MeshIndex(index) || inst.Model != types.Ident4() {
			t.Fatalf("expected instance %d to place mesh %d with an identity transformation", index, index)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	type spec struct {
		mutate func(*input.Scene)
		expErr string
	}
	specs := []spec{
		{func(s *input.Scene) { s.Spheres[0].Material = "gold" }, `sphere 0 references unknown material "gold"`},
		{func(s *input.Scene) { s.Planes[0].Material = "" }, `plane 0 references unknown material ""`},
		{func(s *input.Scene) { s.Meshes[0].Material = "gold" }, `mesh "quad" references unknown material "gold"`},
		{func(s *input.Scene) { s.MeshInstances[0].Mesh = "teapot" }, `unknown mesh "teapot"`},
		{func(s *input.Scene) { s.MeshInstances[1].MaterialOverride = "gold" }, `mesh instance 1 references unknown material "gold"`},
		{func(s *input.Scene) { s.Materials = append(s.Materials, material.New("matte")) }, `material "matte" already defined`},
		{func(s *input.Scene) { s.Meshes[1].Name = "quad" }, `mesh "quad" already defined`},
		{func(s *input.Scene) { s.Spheres[0].Radius = 0 }, `non-positive radius`},
		{func(s *input.Scene) { s.Camera.PixelWidth = 0 }, `invalid screen dimensions`},
		{func(s *input.Scene) { s.Camera.ZNear = 0 }, `invalid clip planes`},
	}

	for index, s := range specs {
		raw := makeInputScene()
		s.mutate(raw)
		_, err := Compile(raw)
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}
}

func TestCompileReportsDegenerateMesh(t *testing.T) {
	raw := makeInputScene()

	mesh := input.NewMesh("flat")
	mesh.Material = "matte"
	for i := 0; i < bvh.LeafCapacity+1; i++ {
		mesh.Primitives = append(mesh.Primitives, input.Primitive{
			Vertices: [3]types.Vec3{types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)},
		})
	}
	raw.Meshes = append(raw.Meshes, mesh)

	_, err := Compile(raw)
	if !errors.Is(err, bvh.ErrEmptySplit) {
		t.Fatalf("expected ErrEmptySplit; got %v", err)
	}
	if !strings.Contains(err.Error(), `mesh "flat"`) {
		t.Fatalf("expected error to name the mesh; got %v", err)
	}
}
