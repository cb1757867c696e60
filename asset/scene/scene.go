package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/therdel/raytracer/asset/compiler/bvh"
	"github.com/therdel/raytracer/asset/geometry"
	"github.com/therdel/raytracer/asset/material"
)

// A compiled scene. All cross references are indices into the flat lists
// owned by the scene. A scene is read-only once compiled and can be shared
// by any number of concurrent tracers.
type Scene struct {
	Camera     *Camera
	Background Background

	Lights    []Light
	Materials []material.Material

	Planes    []geometry.Plane
	Spheres   []geometry.Sphere
	Triangles []geometry.Triangle

	// Mesh geometry. Each mesh owns a range of MeshTriangles and a range
	// of BvhNodes.
	MeshTriangles []geometry.Triangle
	BvhNodes      []bvh.Node
	Meshes        []Mesh
	MeshInstances []MeshInstance
}

// Find the closest hit among all scene primitives.
func (sc *Scene) Intersect(ray geometry.Ray) (geometry.Hitpoint, bool) {
	var (
		closest geometry.Hitpoint
		found   bool
	)

	keepCloser := func(hit geometry.Hitpoint, ok bool) {
		if ok && (!found || hit.T < closest.T) {
			closest = hit
			found = true
		}
	}

	for idx := range sc.Planes {
		keepCloser(sc.Planes[idx].Intersect(ray))
	}
	for idx := range sc.Spheres {
		keepCloser(sc.Spheres[idx].Intersect(ray))
	}
	for idx := range sc.Triangles {
		keepCloser(sc.Triangles[idx].Intersect(ray))
	}
	for idx := range sc.MeshInstances {
		keepCloser(sc.MeshInstances[idx].Intersect(sc, ray))
	}

	return closest, found
}

// Check that every index stored in the scene is in range. Tracing assumes a
// validated scene and does not check indices itself.
func (sc *Scene) Validate() error {
	if sc.Camera == nil {
		return fmt.Errorf("scene: no camera defined")
	}
	if err := sc.Camera.Validate(); err != nil {
		return err
	}

	matCount := material.Index(len(sc.Materials))
	checkMat := func(kind string, idx int, mat material.Index) error {
		if mat >= matCount {
			return fmt.Errorf("scene: %s %d references material %d; only %d materials defined", kind, idx, mat, matCount)
		}
		return nil
	}

	for idx := range sc.Planes {
		if err := checkMat("plane", idx, sc.Planes[idx].Material); err != nil {
			return err
		}
	}
	for idx := range sc.Spheres {
		if err := checkMat("sphere", idx, sc.Spheres[idx].Material); err != nil {
			return err
		}
	}
	for idx := range sc.Triangles {
		if err := checkMat("triangle", idx, sc.Triangles[idx].Material); err != nil {
			return err
		}
	}
	for idx := range sc.MeshTriangles {
		if err := checkMat("mesh triangle", idx, sc.MeshTriangles[idx].Material); err != nil {
			return err
		}
	}
	for idx, mesh := range sc.Meshes {
		if int(mesh.Triangles.End) > len(sc.MeshTriangles) || int(mesh.Bvh.Nodes.End) > len(sc.BvhNodes) {
			return fmt.Errorf("scene: mesh %q references geometry outside the scene lists", sc.Meshes[idx].Name)
		}
	}
	for idx, inst := range sc.MeshInstances {
		if int(inst.Mesh) >= len(sc.Meshes) {
			return fmt.Errorf("scene: mesh instance %d references mesh %d; only %d meshes defined", idx, inst.Mesh, len(sc.Meshes))
		}
		if inst.MaterialOverride != nil {
			if err := checkMat("mesh instance", idx, *inst.MaterialOverride); err != nil {
				return err
			}
		}
	}
	return nil
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Primitives", "---", " ", fmtSize(sc.Planes, sc.Spheres, sc.Triangles)})
	table.Append([]string{"", "Planes", fmtCount(sc.Planes), fmtSize(sc.Planes)})
	table.Append([]string{"", "Spheres", fmtCount(sc.Spheres), fmtSize(sc.Spheres)})
	table.Append([]string{"", "Triangles", fmtCount(sc.Triangles), fmtSize(sc.Triangles)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Meshes", "---", " ", fmtSize(sc.Meshes, sc.MeshTriangles, sc.BvhNodes, sc.MeshInstances)})
	table.Append([]string{"", "Meshes", fmtCount(sc.Meshes), fmtSize(sc.Meshes)})
	table.Append([]string{"", "Mesh triangles", fmtCount(sc.MeshTriangles), fmtSize(sc.MeshTriangles)})
	table.Append([]string{"", "BVH nodes", fmtCount(sc.BvhNodes), fmtSize(sc.BvhNodes)})
	table.Append([]string{"", "Mesh instances", fmtCount(sc.MeshInstances), fmtSize(sc.MeshInstances)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Shading", "---", " ", fmtSize(sc.Materials, sc.Lights)})
	table.Append([]string{"", "Materials", fmtCount(sc.Materials), fmtSize(sc.Materials)})
	table.Append([]string{"", "Lights", fmtCount(sc.Lights), fmtSize(sc.Lights)})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sc.Planes, sc.Spheres, sc.Triangles, sc.Meshes, sc.MeshTriangles, sc.BvhNodes, sc.MeshInstances, sc.Materials, sc.Lights), " ")})

	table.Render()
	return buf.String()
}

func fmtCount(items interface{}) string {
	return fmt.Sprintf("%d", reflect.ValueOf(items).Len())
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
