package renderer

import "image"

type Renderer interface {
	// Render frame.
	Render() error

	// Get the last rendered frame.
	Frame() *image.RGBA

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
