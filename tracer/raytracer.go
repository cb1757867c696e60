package tracer

import (
	"github.com/chewxy/math32"
	"github.com/therdel/raytracer/asset/geometry"
	"github.com/therdel/raytracer/asset/material"
	"github.com/therdel/raytracer/asset/scene"
	"github.com/therdel/raytracer/types"
)

const (
	// Rays spawned beyond this depth contribute nothing.
	MaxRayRecursionDepth = 10

	// Attenuation of mirror reflections on ReflectAndPhong surfaces.
	ReflectionDimFactor float32 = 0.8

	depthMapExpBase         float32 = 2.0
	depthMapBrightnessScale float32 = 1.5
)

// Raytracer evaluates Whitted style shading for rays against a compiled
// scene. It holds no mutable state and is safe for concurrent use.
type Raytracer struct {
	scene *scene.Scene
}

func NewRaytracer(sc *scene.Scene) *Raytracer {
	return &Raytracer{scene: sc}
}

// Generate the primary ray through a screen coordinate. Screen coordinates
// have their origin at the bottom left pixel.
func (rt *Raytracer) GeneratePrimaryRay(x, y float32) geometry.Ray {
	screenToWorld := rt.scene.Camera.ScreenToWorld
	pScreen := types.XYZW(x, y, 0, 1)
	pScreenForward := pScreen.Add(types.XYZW(0, 0, 1, 0))

	pWorld := types.Transform4(screenToWorld, pScreen).Homogenize()
	pWorldForward := types.Transform4(screenToWorld, pScreenForward).Homogenize()

	return geometry.Ray{
		Origin:    pWorld,
		Direction: pWorldForward.Sub(pWorld).Normalize(),
	}
}

// Trace a ray and shade the closest hit. Returns false if the ray misses
// all geometry; callers then substitute TraceBackground.
func (rt *Raytracer) Raytrace(ray geometry.Ray) (types.Vec3, bool) {
	return rt.raytrace(ray, 0)
}

// Get the background color seen along a ray.
func (rt *Raytracer) TraceBackground(ray geometry.Ray) types.Vec3 {
	if rt.scene.Background.Kind == scene.ColoredDirection {
		return ray.Direction.Add(types.XYZ(1, 1, 1)).Mul(0.5)
	}
	return rt.scene.Background.Color
}

// Visualize the distance to the closest hit; brightness falls off
// exponentially with distance.
func (rt *Raytracer) DepthMap(ray geometry.Ray) (types.Vec3, bool) {
	hit, ok := rt.scene.Intersect(ray)
	if !ok {
		return types.Vec3{}, false
	}

	brightness := math32.Pow(depthMapExpBase, -hit.T) * depthMapBrightnessScale
	return types.XYZ(brightness, brightness, brightness), true
}

func (rt *Raytracer) raytrace(ray geometry.Ray, depth int) (types.Vec3, bool) {
	if depth >= MaxRayRecursionDepth {
		return types.Vec3{}, false
	}

	hit, ok := rt.scene.Intersect(ray)
	if !ok {
		return types.Vec3{}, false
	}
	return rt.shade(ray, &hit, depth)
}

// Trace a secondary ray substituting the background on a miss.
func (rt *Raytracer) traceOrBackground(ray geometry.Ray, depth int) types.Vec3 {
	if color, ok := rt.raytrace(ray, depth); ok {
		return color
	}
	return rt.TraceBackground(ray)
}

func (rt *Raytracer) shade(ray geometry.Ray, hit *geometry.Hitpoint, depth int) (types.Vec3, bool) {
	mat := &rt.scene.Materials[hit.Material]

	switch mat.Kind {
	case material.ReflectAndPhong:
		color := rt.shadeReflect(ray, hit, depth)
		if phong, ok := rt.shadePhong(ray, hit, mat); ok {
			color = color.Add(phong)
		}
		return color, true
	case material.ReflectAndRefract:
		return rt.shadeRefract(ray, hit, mat, depth), true
	default:
		return rt.shadePhong(ray, hit, mat)
	}
}

// Sum the Phong radiance of all lights. Returns false if the scene has no
// lights.
func (rt *Raytracer) shadePhong(ray geometry.Ray, hit *geometry.Hitpoint, mat *material.Material) (types.Vec3, bool) {
	var color types.Vec3
	for idx := range rt.scene.Lights {
		light := &rt.scene.Lights[idx]
		inShadow := rt.traceShadowRay(hit.Position, light)
		color = color.Add(radiance(ray, hit, mat, light, inShadow))
	}
	return color, len(rt.scene.Lights) > 0
}

func (rt *Raytracer) shadeReflect(ray geometry.Ray, hit *geometry.Hitpoint, depth int) types.Vec3 {
	reflected := geometry.Ray{
		Origin:    hit.Position,
		Direction: reflect(ray.Direction.Neg(), hit.HitNormal).Normalize(),
	}
	return rt.traceOrBackground(reflected, depth+1).Mul(ReflectionDimFactor)
}

// Blend the reflected and transmitted colors by the Fresnel reflectance.
func (rt *Raytracer) shadeRefract(ray geometry.Ray, hit *geometry.Hitpoint, mat *material.Material, depth int) types.Vec3 {
	n1, n2 := mat.IndexInner, mat.IndexOuter
	if hit.OnFrontside {
		n1, n2 = mat.IndexOuter, mat.IndexInner
	}

	toViewer := ray.Direction.Neg()
	reflected := geometry.Ray{
		Origin:    hit.Position,
		Direction: reflect(toViewer, hit.HitNormal).Normalize(),
	}
	reflectedColor := rt.traceOrBackground(reflected, depth+1)

	transmittedDir, ok := transmit(toViewer, hit.HitNormal, n1, n2)
	if !ok {
		// Total internal reflection
		return reflectedColor
	}
	transmitted := geometry.Ray{
		Origin:    hit.PositionForRefraction,
		Direction: transmittedDir.Normalize(),
	}
	transmittedColor := rt.traceOrBackground(transmitted, depth+1)

	kReflected := fresnelReflectance(reflected.Direction, transmitted.Direction, hit.HitNormal, n1, n2)
	return reflectedColor.Mul(kReflected).Add(transmittedColor.Mul(1 - kReflected))
}

// Check whether anything blocks the path from p to the light. For
// directional lights any hit blocks; for point lights only hits closer
// than the light do.
func (rt *Raytracer) traceShadowRay(p types.Vec3, light *scene.Light) bool {
	ray := geometry.Ray{Origin: p, Direction: light.DirectionFrom(p)}

	hit, ok := rt.scene.Intersect(ray)
	if !ok {
		return false
	}
	if light.IsDirectional() {
		return true
	}
	return hit.T < p.Distance(light.WorldPosition())
}

// Phong radiance of a single light. Diffuse and specular terms drop out in
// shadow.
func radiance(ray geometry.Ray, hit *geometry.Hitpoint, mat *material.Material, light *scene.Light, inShadow bool) types.Vec3 {
	color := mat.Emissive.Add(light.Ambient.MulVec(mat.Ambient))
	if inShadow {
		return color
	}

	l := light.DirectionFrom(hit.Position)
	n := hit.HitNormal
	v := ray.Direction.Neg()
	r := reflect(l, n)

	lDotN := math32.Max(l.Dot(n), 0)
	rDotV := math32.Max(r.Dot(v), 0)

	diffuse := light.Diffuse.MulVec(mat.Diffuse).Mul(lDotN)
	specular := light.Specular.MulVec(mat.Specular).Mul(math32.Pow(rDotV, mat.Shininess))
	return color.Add(diffuse).Add(specular)
}

// Mirror v around n: 2(n.v)n - v.
func reflect(v, n types.Vec3) types.Vec3 {
	return n.Mul(2 * n.Dot(v)).Sub(v)
}

// Refract the unit vector l pointing away from the surface when passing
// from a medium with index n1 into one with index n2. Returns false on
// total internal reflection.
func transmit(l, normal types.Vec3, n1, n2 float32) (types.Vec3, bool) {
	n := n1 / n2
	w := n * l.Dot(normal)
	radicand := 1 + (w-n)*(w+n)
	if radicand < 0 {
		return types.Vec3{}, false
	}
	k := math32.Sqrt(radicand)
	return normal.Mul(w - k).Sub(l.Mul(n)), true
}

// Unpolarized Fresnel reflectance: the mean of the parallel and orthogonal
// polarization terms.
func fresnelReflectance(reflected, transmitted, normal types.Vec3, n1, n2 float32) float32 {
	cosI := reflected.Dot(normal)
	cosT := transmitted.Dot(normal.Neg())

	rParallel := (n2*cosI - n1*cosT) / (n2*cosI + n1*cosT)
	rOrthogonal := (n1*cosI - n2*cosT) / (n1*cosI + n2*cosT)

	k := 0.5 * (rParallel*rParallel + rOrthogonal*rOrthogonal)
	if math32.IsNaN(k) || k > 1 {
		return 1
	}
	return k
}
