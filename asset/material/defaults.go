package material

import "github.com/therdel/raytracer/types"

// Refractive indices for common media.
var KnownIORs = map[string]float32{
	"Vacuum":  1.0,
	"Air":     1.000293,
	"Water":   1.333,
	"Ice":     1.31,
	"Glass":   1.5,
	"Quartz":  1.544,
	"Diamond": 2.42,
}

var (
	DefaultAmbient           = types.Vec3{0.1, 0.1, 0.1}
	DefaultDiffuse           = types.Vec3{0.8, 0.8, 0.8}
	DefaultSpecular          = types.Vec3{1.0, 1.0, 1.0}
	DefaultShininess float32 = 32.0
	DefaultIndexInner        = KnownIORs["Glass"]
	DefaultIndexOuter        = KnownIORs["Air"]
)
