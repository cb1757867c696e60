package compiler

import (
	"fmt"
	"time"

	"github.com/therdel/raytracer/asset/compiler/bvh"
	"github.com/therdel/raytracer/asset/compiler/input"
	"github.com/therdel/raytracer/asset/geometry"
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/asset/scene"
	"github.com/therdel/raytracer/log"
	"github.com/therdel/raytracer/types"
)

type sceneCompiler struct {
	parsedScene    *input.Scene
	optimizedScene *scene.Scene
	logger         log.Logger

	// Name lookups for resolving references between scene elements.
	matNameToIndex  map[string]material.Index
	meshNameToIndex map[string]scene.MeshIndex
}

// Compile a scene representation parsed by a scene reader into a flat scene
// where all references are resolved to indices and each mesh is partitioned
// by its own BVH.
func Compile(parsedScene *input.Scene) (*scene.Scene, error) {
	compiler := &sceneCompiler{
		parsedScene:     parsedScene,
		optimizedScene:  &scene.Scene{},
		logger:          log.New("scene compiler"),
		matNameToIndex:  make(map[string]material.Index),
		meshNameToIndex: make(map[string]scene.MeshIndex),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	steps := []func() error{
		compiler.processMaterials,
		compiler.processLights,
		compiler.processPrimitives,
		compiler.partitionMeshes,
		compiler.processMeshInstances,
		compiler.setupCamera,
		compiler.optimizedScene.Validate,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.optimizedScene, nil
}

// Validate materials and index them by name.
func (sc *sceneCompiler) processMaterials() error {
	sc.logger.Infof("processing %d materials", len(sc.parsedScene.Materials))

	sc.optimizedScene.Materials = make([]material.Material, 0, len(sc.parsedScene.Materials))
	for _, mat := range sc.parsedScene.Materials {
		if _, exists := sc.matNameToIndex[mat.Name]; exists {
			return fmt.Errorf("compiler: material %q already defined", mat.Name)
		}

		m := *mat
		if err := m.Validate(); err != nil {
			return fmt.Errorf("compiler: %w", err)
		}

		sc.matNameToIndex[m.Name] = material.Index(len(sc.optimizedScene.Materials))
		sc.optimizedScene.Materials = append(sc.optimizedScene.Materials, m)
	}
	return nil
}

func (sc *sceneCompiler) lookupMaterial(owner, name string) (material.Index, error) {
	matIndex, exists := sc.matNameToIndex[name]
	if !exists {
		return 0, fmt.Errorf("compiler: %s references unknown material %q", owner, name)
	}
	return matIndex, nil
}

func (sc *sceneCompiler) processLights() error {
	if len(sc.parsedScene.Lights) == 0 {
		sc.logger.Warning("the scene contains no lights; Phong surfaces will not be shaded")
	}

	sc.optimizedScene.Lights = make([]scene.Light, len(sc.parsedScene.Lights))
	for index, light := range sc.parsedScene.Lights {
		sc.optimizedScene.Lights[index] = scene.Light{
			Position: light.Position,
			Ambient:  light.Ambient,
			Diffuse:  light.Diffuse,
			Specular: light.Specular,
		}
	}

	sc.optimizedScene.Background = scene.Background{Kind: scene.SolidColor, Color: sc.parsedScene.Background.Color}
	if sc.parsedScene.Background.ColoredDirection {
		sc.optimizedScene.Background = scene.Background{Kind: scene.ColoredDirection}
	}
	return nil
}

// Resolve material references of the free standing primitives.
func (sc *sceneCompiler) processPrimitives() error {
	for index, plane := range sc.parsedScene.Planes {
		matIndex, err := sc.lookupMaterial(fmt.Sprintf("plane %d", index), plane.Material)
		if err != nil {
			return err
		}
		sc.optimizedScene.Planes = append(sc.optimizedScene.Planes, geometry.Plane{
			Normal:   plane.Normal,
			Distance: plane.Distance,
			Material: matIndex,
		})
	}

	for index, sphere := range sc.parsedScene.Spheres {
		matIndex, err := sc.lookupMaterial(fmt.Sprintf("sphere %d", index), sphere.Material)
		if err != nil {
			return err
		}
		if sphere.Radius <= 0 {
			return fmt.Errorf("compiler: sphere %d has non-positive radius %f", index, sphere.Radius)
		}
		sc.optimizedScene.Spheres = append(sc.optimizedScene.Spheres, geometry.Sphere{
			Center:   sphere.Center,
			Radius:   sphere.Radius,
			Material: matIndex,
		})
	}

	for index, tri := range sc.parsedScene.Triangles {
		matIndex, err := sc.lookupMaterial(fmt.Sprintf("triangle %d", index), tri.Material)
		if err != nil {
			return err
		}
		sc.optimizedScene.Triangles = append(sc.optimizedScene.Triangles, geometry.NewTriangle(tri.Vertices, tri.Normals, matIndex))
	}

	sc.logger.Infof("processed %d planes, %d spheres and %d triangles", len(sc.optimizedScene.Planes), len(sc.optimizedScene.Spheres), len(sc.optimizedScene.Triangles))
	return nil
}

// Append the triangles of each mesh to the scene mesh triangle list and
// build a BVH for each one of them. All mesh BVHs share the scene node list.
func (sc *sceneCompiler) partitionMeshes() error {
	start := time.Now()
	sc.logger.Infof("partitioning %d meshes", len(sc.parsedScene.Meshes))

	totalTriangles := 0
	for _, pm := range sc.parsedScene.Meshes {
		totalTriangles += len(pm.Primitives)
	}
	sc.optimizedScene.MeshTriangles = make([]geometry.Triangle, 0, totalTriangles)

	for _, pm := range sc.parsedScene.Meshes {
		if _, exists := sc.meshNameToIndex[pm.Name]; exists {
			return fmt.Errorf("compiler: mesh %q already defined", pm.Name)
		}
		matIndex, err := sc.lookupMaterial(fmt.Sprintf("mesh %q", pm.Name), pm.Material)
		if err != nil {
			return err
		}

		first := uint32(len(sc.optimizedScene.MeshTriangles))
		indices := make([]uint32, len(pm.Primitives))
		for index, prim := range pm.Primitives {
			indices[index] = first + uint32(index)
			sc.optimizedScene.MeshTriangles = append(sc.optimizedScene.MeshTriangles, geometry.NewTriangle(prim.Vertices, prim.Normals, matIndex))
		}

		tree, err := bvh.Build(sc.optimizedScene.MeshTriangles, indices, &sc.optimizedScene.BvhNodes)
		if err != nil {
			return fmt.Errorf("mesh %q: %w", pm.Name, err)
		}

		st := tree.Stats(sc.optimizedScene.BvhNodes)
		sc.logger.Infof(
			`built BVH for "%s" (%d triangles, %d nodes, %d leafs, depth %d, %.1f±%.1f triangles per leaf)`,
			pm.Name, st.Triangles, st.Nodes, st.Leafs, st.MaxDepth, st.LeafSizeMean, st.LeafSizeStdDev,
		)

		sc.meshNameToIndex[pm.Name] = scene.MeshIndex(len(sc.optimizedScene.Meshes))
		sc.optimizedScene.Meshes = append(sc.optimizedScene.Meshes, scene.Mesh{
			Name:      pm.Name,
			Triangles: geometry.Range{Start: first, End: uint32(len(sc.optimizedScene.MeshTriangles))},
			Bvh:       tree,
		})
	}

	sc.logger.Noticef("partitioned %d mesh triangles in %d ms", len(sc.optimizedScene.MeshTriangles), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Place mesh instances. If no instances are defined, each mesh gets an
// instance with an identity transformation.
func (sc *sceneCompiler) processMeshInstances() error {
	if len(sc.parsedScene.MeshInstances) == 0 {
		for meshIndex := range sc.optimizedScene.Meshes {
			sc.optimizedScene.MeshInstances = append(
				sc.optimizedScene.MeshInstances,
				scene.NewMeshInstance(scene.MeshIndex(meshIndex), types.Vec3{}, types.Vec3{}, types.XYZ(1, 1, 1), nil),
			)
		}
		if len(sc.optimizedScene.MeshInstances) > 0 {
			sc.logger.Infof("created %d default mesh instances", len(sc.optimizedScene.MeshInstances))
		}
		return nil
	}

	for index, pmi := range sc.parsedScene.MeshInstances {
		meshIndex, exists := sc.meshNameToIndex[pmi.Mesh]
		if !exists {
			return fmt.Errorf("compiler: mesh instance %d references unknown mesh %q", index, pmi.Mesh)
		}

		var override *material.Index
		if pmi.MaterialOverride != "" {
			matIndex, err := sc.lookupMaterial(fmt.Sprintf("mesh instance %d", index), pmi.MaterialOverride)
			if err != nil {
				return err
			}
			override = &matIndex
		}

		sc.optimizedScene.MeshInstances = append(
			sc.optimizedScene.MeshInstances,
			scene.NewMeshInstance(meshIndex, pmi.Position, types.DegToRad(pmi.OrientationDegrees), pmi.Scale, override),
		)
	}
	return nil
}

// Initialize and position the camera for the scene.
func (sc *sceneCompiler) setupCamera() error {
	pc := sc.parsedScene.Camera

	cam := scene.NewCamera(pc.YFovDegrees, pc.PixelWidth, pc.PixelHeight)
	cam.Position = pc.Position
	cam.Orientation = types.DegToRad(pc.OrientationDegrees)
	cam.ZNear = pc.ZNear
	cam.ZFar = pc.ZFar
	if err := cam.Validate(); err != nil {
		return fmt.Errorf("compiler: %w", err)
	}
	cam.Update()

	sc.optimizedScene.Camera = cam
	return nil
}
