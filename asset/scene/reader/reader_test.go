package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/therdel/raytracer/asset"
	"github.com/therdel/raytracer/asset/compiler/input"
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/asset/scene"
	"github.com/therdel/raytracer/types"
)

const quadObj = `# unit quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vn 0 0 1
vt 0 0
o quad
usemtl ignored
f 1/1/1 2/1/1 3/1/1
f 1//1 3//1 4//1
`

const testScene = `{
  "camera": {
    "position": {"x": 0, "y": 0, "z": 10},
    "orientation_degrees": {"x": 0, "y": 0, "z": 0},
    "y_fov_degrees": 45,
    "z_near": 0.1,
    "z_far": 100
  },
  "screen": {"pixel_width": 32, "pixel_height": 16, "background": "ColoredDirection"},
  "lights": [
    {
      "position": {"x": 0, "y": 10, "z": 10, "w": 1},
      "color": {
        "ambient": {"r": 0.1, "g": 0.1, "b": 0.1},
        "diffuse": {"r": 1, "g": 1, "b": 1},
        "specular": {"r": 1, "g": 1, "b": 1}
      }
    }
  ],
  "materials": [
    {
      "name": "red",
      "emissive": {"r": 0, "g": 0, "b": 0},
      "ambient": {"r": 1, "g": 0, "b": 0},
      "diffuse": {"r": 1, "g": 0, "b": 0},
      "specular": {"r": 1, "g": 1, "b": 1},
      "shininess": 16,
      "material_type": "Phong"
    },
    {
      "name": "mirror",
      "emissive": {"r": 0, "g": 0, "b": 0},
      "ambient": {"r": 0, "g": 0, "b": 0},
      "diffuse": {"r": 0, "g": 0, "b": 0},
      "specular": {"r": 0, "g": 0, "b": 0},
      "shininess": 1,
      "material_type": "ReflectAndPhong"
    },
    {
      "name": "glass",
      "emissive": {"r": 0, "g": 0, "b": 0},
      "ambient": {"r": 0, "g": 0, "b": 0},
      "diffuse": {"r": 0, "g": 0, "b": 0},
      "specular": {"r": 0, "g": 0, "b": 0},
      "shininess": 1,
      "material_type": {"ReflectAndRefract": {"index_inner": "Glass", "index_outer": 1.0}}
    }
  ],
  "planes": [
    {"normal": {"x": 0, "y": 1, "z": 0}, "distance": -2, "material": "mirror"}
  ],
  "spheres": [
    {"center": {"x": 0, "y": 0, "z": 0}, "radius": 1, "material": "glass"}
  ],
  "triangles": [
    {
      "vertices": [{"x": 0, "y": 0, "z": 0}, {"x": 1, "y": 0, "z": 0}, {"x": 0, "y": 1, "z": 0}],
      "normals": [{"x": 0, "y": 0, "z": 1}, {"x": 0, "y": 0, "z": 1}, {"x": 0, "y": 0, "z": 1}],
      "material": "red"
    }
  ],
  "meshes": [
    {"name": "quad", "file_name": "quad.obj", "material": "red"},
    {"name": "quad_cw", "file_name": "quad.obj", "material": "red", "winding_order": "Clockwise"}
  ],
  "mesh_instances": [
    {
      "mesh": "quad",
      "position": {"x": 2, "y": 0, "z": 0},
      "orientation_degrees": {"x": 0, "y": 45, "z": 0},
      "scale": {"x": 1, "y": 1, "z": 1}
    },
    {
      "mesh": "quad_cw",
      "position": {"x": -2, "y": 0, "z": 0},
      "orientation_degrees": {"x": 0, "y": 0, "z": 0},
      "material_override": "glass"
    }
  ]
}`

func writeTestFiles(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestReadJSONScene(t *testing.T) {
	dir := writeTestFiles(t, map[string]string{"scene.json": testScene, "quad.obj": quadObj})

	sc, err := ReadScene(filepath.Join(dir, "scene.json"))
	if err != nil {
		t.Fatal(err)
	}

	if sc.Camera.PixelWidth != 32 || sc.Camera.PixelHeight != 16 || sc.Camera.Position != types.XYZ(0, 0, 10) {
		t.Fatalf("unexpected camera settings %+v", sc.Camera)
	}
	if sc.Background.Kind != scene.ColoredDirection {
		t.Fatal("expected colored direction background")
	}
	if len(sc.Lights) != 1 || sc.Lights[0].Position != types.XYZW(0, 10, 10, 1) {
		t.Fatalf("unexpected lights %+v", sc.Lights)
	}

	type matSpec struct {
		name   string
		kind   material.Kind
		nInner float32
		nOuter float32
	}
	matSpecs := []matSpec{
		{"red", material.Phong, 0, 0},
		{"mirror", material.ReflectAndPhong, 0, 0},
		{"glass", material.ReflectAndRefract, 1.5, 1.0},
	}
	for index, s := range matSpecs {
		mat := sc.Materials[index]
		if mat.Name != s.name || mat.Kind != s.kind || mat.IndexInner != s.nInner || mat.IndexOuter != s.nOuter {
			t.Fatalf("[spec %d] expected material %s/%s (%f, %f); got %s/%s (%f, %f)", index, s.name, s.kind, s.nInner, s.nOuter, mat.Name, mat.Kind, mat.IndexInner, mat.IndexOuter)
		}
	}

	if len(sc.Planes) != 1 || sc.Planes[0].Material != 1 || sc.Planes[0].Distance != -2 {
		t.Fatalf("unexpected planes %+v", sc.Planes)
	}
	if len(sc.Spheres) != 1 || sc.Spheres[0].Material != 2 {
		t.Fatalf("unexpected spheres %+v", sc.Spheres)
	}
	if len(sc.Triangles) != 1 || sc.Triangles[0].Material != 0 {
		t.Fatalf("unexpected triangles %+v", sc.Triangles)
	}

	if len(sc.Meshes) != 2 || len(sc.MeshTriangles) != 4 {
		t.Fatalf("expected 2 meshes with 4 triangles; got %d meshes and %d triangles", len(sc.Meshes), len(sc.MeshTriangles))
	}

	// Counter-clockwise meshes get their normals negated
	if n := sc.MeshTriangles[0].Normals[0]; n != types.XYZ(0, 0, -1) {
		t.Fatalf("expected negated normal for counter-clockwise mesh; got %v", n)
	}
	if n := sc.MeshTriangles[2].Normals[0]; n != types.XYZ(0, 0, 1) {
		t.Fatalf("expected unmodified normal for clockwise mesh; got %v", n)
	}

	if len(sc.MeshInstances) != 2 {
		t.Fatalf("expected 2 mesh instances; got %d", len(sc.MeshInstances))
	}
	if inst := sc.MeshInstances[1]; inst.Mesh != 1 || inst.MaterialOverride == nil || *inst.MaterialOverride != 2 {
		t.Fatalf("expected second instance to place mesh 1 with the glass override")
	}
	// A missing scale defaults to 1
	if p := types.TransformPoint(sc.MeshInstances[1].Model, types.XYZ(1, 1, 0)); !p.ApproxEqual(types.XYZ(-1, 1, 0), 1e-5) {
		t.Fatalf("expected unit scale for instance without scale; got %v", p)
	}
}

func TestReadJSONSceneErrors(t *testing.T) {
	type spec struct {
		doc    string
		expErr string
	}
	specs := []spec{
		{"{\n  \"camera\": {\n    \"position\": x\n  }\n}", "scene.json: 3:"},
		{`{"screen": {"pixel_width": "wide"}}`, "pixel_width"},
		{`{"screen": {"background": "Sunset"}}`, `unknown background "Sunset"`},
		{`{"materials": [{"name": "m", "material_type": "Lambert"}]}`, `unknown material type "Lambert"`},
		{`{"materials": [{"name": "m", "material_type": {"ReflectAndRefract": {"index_inner": "Lava"}}}]}`, `unknown refractive index "Lava"`},
		{`{"materials": [{"name": "m", "material_type": {"Phong": {}, "ReflectAndPhong": {}}}]}`, "single key"},
		{`{"materials": [{"name": "m"}]}`, `material "m": invalid material type`},
		{`{"meshes": [{"name": "m", "material": "x"}]}`, `mesh "m" does not specify a file_name`},
		{`{"meshes": [{"name": "m", "file_name": "m.obj", "winding_order": "Sideways"}]}`, `unknown winding order "Sideways"`},
	}

	for index, s := range specs {
		res := asset.NewResourceFromStream("scene.json", strings.NewReader(s.doc))
		_, err := newJSONSceneReader().Read(res)
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}
}

func TestReadJSONSceneMissingMeshFile(t *testing.T) {
	doc := strings.Replace(testScene, `"file_name": "quad.obj", "material": "red", "winding_order"`, `"file_name": "missing.obj", "material": "red", "winding_order"`, 1)
	dir := writeTestFiles(t, map[string]string{"scene.json": doc, "quad.obj": quadObj})

	_, err := ReadScene(filepath.Join(dir, "scene.json"))
	if err == nil || !strings.Contains(err.Error(), `mesh "quad_cw"`) {
		t.Fatalf("expected error for missing mesh file; got %v", err)
	}
}

func TestReadSceneUnsupportedFormat(t *testing.T) {
	_, err := ReadScene("scene.zip")
	if err == nil || !strings.Contains(err.Error(), "unsupported scene file format") {
		t.Fatalf("expected unsupported format error; got %v", err)
	}
}

func TestWavefrontMesh(t *testing.T) {
	type spec struct {
		obj        string
		winding    input.WindingOrder
		expPrims   int
		expNormal  types.Vec3
		expVertex2 types.Vec3
	}
	specs := []spec{
		{quadObj, input.Clockwise, 2, types.XYZ(0, 0, 1), types.XYZ(1, 1, 0)},
		{quadObj, input.CounterClockwise, 2, types.XYZ(0, 0, -1), types.XYZ(1, 1, 0)},
		// Quad face split into two triangles with generated normals
		{"v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n", input.CounterClockwise, 2, types.XYZ(0, 0, -1), types.XYZ(1, 1, 0)},
		// Negative indices reference the end of the vertex list
		{"v 5 5 5\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n", input.Clockwise, 1, types.XYZ(0, 0, -1), types.XYZ(0, 1, 0)},
	}

	for index, s := range specs {
		mesh := input.NewMesh("test")
		mesh.Winding = s.winding
		err := newWavefrontMeshReader().ReadMesh(asset.NewResourceFromStream("mesh.obj", strings.NewReader(s.obj)), mesh)
		if err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}

		if len(mesh.Primitives) != s.expPrims {
			t.Fatalf("[spec %d] expected %d primitives; got %d", index, s.expPrims, len(mesh.Primitives))
		}
		prim := mesh.Primitives[0]
		if !prim.Normals[0].ApproxEqual(s.expNormal, 1e-6) {
			t.Fatalf("[spec %d] expected normal %v; got %v", index, s.expNormal, prim.Normals[0])
		}
		if prim.Vertices[2] != s.expVertex2 {
			t.Fatalf("[spec %d] expected third vertex %v; got %v", index, s.expVertex2, prim.Vertices[2])
		}
	}
}

func TestWavefrontMeshErrors(t *testing.T) {
	type spec struct {
		obj    string
		expErr string
	}
	specs := []spec{
		{"v 0 0 0\nv 1 0 0\nf 1 2\n", "[mesh.obj: 3]"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3 1 2\n", "quad face"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n", "index 9 out of bounds"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", "index 0 out of bounds"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2/1 3\n", "expected each face argument to contain 1 indices"},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n", "could not parse tex coord"},
		{"v 0 0\n", `expected 3 arguments`},
		{"v 0 0 zero\n", "invalid syntax"},
		{"vn 0 0 1\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//2 2//1 3//1\n", "could not parse normal coord"},
		{"call\n", `unsupported syntax for "call"`},
	}

	for index, s := range specs {
		err := newWavefrontMeshReader().ReadMesh(asset.NewResourceFromStream("mesh.obj", strings.NewReader(s.obj)), input.NewMesh("test"))
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}
}

func TestWavefrontCallIncludesFile(t *testing.T) {
	dir := writeTestFiles(t, map[string]string{
		"main.obj": "call part.obj\nf 1 2 3\n",
		"part.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
	})

	res, err := asset.NewResource(filepath.Join(dir, "main.obj"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	mesh := input.NewMesh("test")
	if err = newWavefrontMeshReader().ReadMesh(res, mesh); err != nil {
		t.Fatal(err)
	}
	if len(mesh.Primitives) != 2 {
		t.Fatalf("expected 2 primitives; got %d", len(mesh.Primitives))
	}
}

func TestReadWavefrontScene(t *testing.T) {
	dir := writeTestFiles(t, map[string]string{"quad.obj": quadObj})

	sc, err := ReadScene(filepath.Join(dir, "quad.obj"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Meshes) != 1 || sc.Meshes[0].Name != "quad" || len(sc.MeshInstances) != 1 {
		t.Fatalf("expected a single instanced mesh named quad; got %d meshes", len(sc.Meshes))
	}
	if len(sc.Lights) != 1 || len(sc.Materials) != 1 {
		t.Fatalf("expected a default light and material")
	}

	// The camera looks down -z at the mesh
	if sc.Camera.Position[2] <= 0 || sc.Camera.Position[0] != 0 || sc.Camera.Position[1] != 0 {
		t.Fatalf("expected camera on the +z axis; got %v", sc.Camera.Position)
	}
}
