package reader

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/therdel/raytracer/asset"
	"github.com/therdel/raytracer/asset/compiler"
	"github.com/therdel/raytracer/asset/compiler/input"
	"github.com/therdel/raytracer/asset/geometry"
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/asset/scene"
	"github.com/therdel/raytracer/log"
	"github.com/therdel/raytracer/types"
)

const defaultMaterialName = "default"

type wavefrontMeshReader struct {
	logger log.Logger

	// The mesh receiving parsed faces.
	mesh *input.Mesh

	// List of vertices, normals and uv coords.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvList     []types.Vec2

	// An error stack that provides additional error information when
	// object files include other files.
	errStack []string
}

// Create a new wavefront mesh reader.
func newWavefrontMeshReader() *wavefrontMeshReader {
	return &wavefrontMeshReader{
		logger:     log.New("wavefront reader"),
		vertexList: make([]types.Vec3, 0),
		normalList: make([]types.Vec3, 0),
		uvList:     make([]types.Vec2, 0),
		errStack:   make([]string, 0),
	}
}

// Parse the faces of a wavefront object file into the primitive list of mesh.
// Materials, groups and smoothing statements are ignored; every face uses the
// material of the mesh. Vertex normals of counter-clockwise meshes are negated.
func (r *wavefrontMeshReader) ReadMesh(res *asset.Resource, mesh *input.Mesh) error {
	r.logger.Infof(`parsing mesh "%s" from "%s"`, mesh.Name, res.Path())
	start := time.Now()

	r.mesh = mesh
	if err := r.parse(res); err != nil {
		return err
	}

	if len(mesh.Primitives) == 0 {
		r.logger.Warningf(`mesh "%s" contains no polygons`, mesh.Name)
	}

	r.logger.Infof(`parsed %d triangles for mesh "%s" in %d ms`, len(mesh.Primitives), mesh.Name, time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontMeshReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	errMsg := strings.Trim(
		fmt.Sprintf("reader: [%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
		"\n",
	)
	return fmt.Errorf("%s", errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontMeshReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontMeshReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Parse wavefront object format.
func (r *wavefrontMeshReader) parse(res *asset.Resource) error {
	var lineNum int = 0

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := len(r.uvList)
	relNormalOffset := len(r.normalList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "call"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [call]", res.Path(), lineNum))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.uvList = append(r.uvList, v)
		case "f":
			primList, err := r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.mesh.Primitives = append(r.mesh.Primitives, primList...)
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}
	return nil
}

// Parse face definition. Each face definitions consists of 3 arguments,
// one for each vertex. Each one of the vertex arguments is comprised of
// 1, 2 or 3 args separated by a slash character. The following formats are
// supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// This method only works with triangular/quad faces and will return an error if a
// face with more than 4 vertices is encountered.
func (r *wavefrontMeshReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) ([]input.Primitive, error) {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	var vertices [4]types.Vec3
	var normals [4]types.Vec3
	var vOffset int
	var err error
	expIndices := 0
	hasNormals := false
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err = selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]

		// UV coords are validated but not used for shading
		if expIndices > 1 && vTokens[1] != "" {
			_, err = selectFaceCoordIndex(vTokens[1], len(r.uvList), relUvOffset)
			if err != nil {
				return nil, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		// Parse normal coords if specified
		if expIndices > 2 && vTokens[2] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[2], len(r.normalList), relNormalOffset)
			if err != nil {
				return nil, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			normals[arg] = r.normalList[vOffset]
			if r.mesh.Winding == input.CounterClockwise {
				normals[arg] = normals[arg].Neg()
			}
			hasNormals = true
		}
	}

	// If no normals are available generate them from the vertices. Generated
	// normals match the triangle's geometric normal regardless of winding.
	if !hasNormals {
		e01 := vertices[1].Sub(vertices[0])
		e02 := vertices[2].Sub(vertices[0])
		faceNormal := e02.Cross(e01).Normalize()
		normals = [4]types.Vec3{faceNormal, faceNormal, faceNormal, faceNormal}
	}

	// Assemble vertices into one or two primitives depending on whether we are parsing a triangular or a quad face
	indiceList := [][3]int{{0, 1, 2}}
	if len(lineTokens) == 5 {
		indiceList = append(indiceList, [3]int{0, 2, 3})
	}

	primitives := make([]input.Primitive, 0, len(indiceList))
	for _, indices := range indiceList {
		var prim input.Primitive
		for triIndex, selectIndex := range indices {
			prim.Vertices[triIndex] = vertices[selectIndex]
			prim.Normals[triIndex] = normals[selectIndex]
		}
		primitives = append(primitives, prim)
	}

	return primitives, nil
}

// A scene reader for standalone wavefront object files. The object file is
// loaded as a single mesh lit by a white light at the camera and viewed by a
// camera placed in front of the mesh bounding box.
type wavefrontSceneReader struct {
	logger log.Logger
}

// Create a new wavefront scene reader.
func newWavefrontSceneReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger: log.New("wavefront reader"),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	rawScene := input.NewScene()
	rawScene.Materials = append(rawScene.Materials, material.New(defaultMaterialName))

	mesh := input.NewMesh(strings.TrimSuffix(filepath.Base(sceneRes.Path()), filepath.Ext(sceneRes.Path())))
	mesh.FileName = sceneRes.Path()
	mesh.Material = defaultMaterialName
	if err := newWavefrontMeshReader().ReadMesh(sceneRes, mesh); err != nil {
		return nil, err
	}
	rawScene.Meshes = append(rawScene.Meshes, mesh)

	frameMesh(rawScene, mesh)

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)

	return compiler.Compile(rawScene)
}

// Place the camera on the +z side of the mesh bounding box so that the
// whole box fits the vertical field of view, and put a light next to it.
func frameMesh(rawScene *input.Scene, mesh *input.Mesh) {
	vertices := make([]types.Vec3, 0, 3*len(mesh.Primitives))
	for _, prim := range mesh.Primitives {
		vertices = append(vertices, prim.Vertices[:]...)
	}

	box, ok := geometry.AABBFromVertices(vertices)
	if !ok {
		return
	}

	radius := math32.Max(box.Extent().Len()*0.5, 1e-3)
	halfFov := math32.Pi * rawScene.Camera.YFovDegrees / 360.0
	distance := radius / math32.Sin(halfFov)

	center := box.Center()
	rawScene.Camera.Position = center.Add(types.XYZ(0, 0, distance))
	rawScene.Camera.ZFar = math32.Max(rawScene.Camera.ZFar, 2*(distance+radius))
	rawScene.Lights = append(rawScene.Lights, input.Light{
		Position: rawScene.Camera.Position.Vec4(1),
		Ambient:  types.XYZ(0.2, 0.2, 0.2),
		Diffuse:  types.XYZ(1, 1, 1),
		Specular: types.XYZ(1, 1, 1),
	})
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if index == 0 || vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index %d out of bounds", index)
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
