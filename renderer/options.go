package renderer

type Options struct {
	// Frame dims. If zero, the camera screen dims are used.
	FrameW uint32
	FrameH uint32

	// Number of tracer workers. If zero, one worker per physical core
	// is started.
	Workers uint32

	// Render a depth map instead of the shaded scene.
	DepthMap bool
}
