package tracer

import (
	"image"
	"time"
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Block start row and height. Row 0 is the top image row.
	BlockY uint32
	BlockH uint32

	// Render the depth map instead of shading hits.
	DepthMap bool

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering this block
	RenderTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the tracer's relative computation speed.
	Speed() uint32

	// Attach the frame that block requests render into.
	Init(frame *image.RGBA) error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Retrieve last frame statistics.
	Stats() *Stats
}
