package tracer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/therdel/raytracer/log"
	"github.com/therdel/raytracer/types"
)

var (
	ErrTracerBusy     = errors.New("tracer: block request dropped; tracer is busy")
	ErrNotInitialized = errors.New("tracer: no frame attached")
)

// A tracer that renders blocks of frame rows on its own goroutine.
type cpuTracer struct {
	logger log.Logger

	sync.Mutex

	// The tracer id.
	id string

	raytracer *Raytracer

	// The frame shared by all tracers; each tracer only writes the rows
	// of the blocks it is assigned.
	frame *image.RGBA

	// A channel for receiving block requests from the renderer.
	blockReqChan chan BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats *Stats
}

// Create a new cpu tracer.
func NewCPUTracer(id string, raytracer *Raytracer) Tracer {
	return &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		raytracer:    raytracer,
		blockReqChan: make(chan BlockRequest, 1),
		stats:        &Stats{},
	}
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// All cpu tracers run at the same speed.
func (tr *cpuTracer) Speed() uint32 {
	return 1
}

// Attach frame and (re)start the worker.
func (tr *cpuTracer) Init(frame *image.RGBA) error {
	tr.Lock()
	defer tr.Unlock()

	if frame == nil {
		return ErrNotInitialized
	}

	tr.stopWorker()
	tr.frame = frame
	tr.closeChan = make(chan struct{})
	go tr.worker(frame, tr.closeChan)
	return nil
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.stopWorker()
	tr.frame = nil
}

// Stop the worker if it is running. This method is meant to be called while
// holding tr.Lock()
func (tr *cpuTracer) stopWorker() {
	if tr.closeChan == nil {
		return
	}
	tr.closeChan <- struct{}{}

	// wait for worker to ack close and shutdown channel
	<-tr.closeChan
	close(tr.closeChan)
	tr.closeChan = nil
}

// Enqueue block request.
func (tr *cpuTracer) Enqueue(blockReq BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		// drop the request if worker is not listening
		tr.logger.Error("request processor did not receive block request")
		blockReq.ErrChan <- ErrTracerBusy
	}
}

// Retrieve last frame statistics.
func (tr *cpuTracer) Stats() *Stats {
	return tr.stats
}

func (tr *cpuTracer) worker(frame *image.RGBA, closeChan chan struct{}) {
	for {
		select {
		case blockReq := <-tr.blockReqChan:
			start := time.Now()
			tr.renderBlock(frame, blockReq)
			tr.stats.BlockH = blockReq.BlockH
			tr.stats.RenderTime = time.Since(start)
			tr.logger.Debugf("rendered rows [%d, %d) in %s", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, tr.stats.RenderTime)
			blockReq.DoneChan <- blockReq.BlockH
		case <-closeChan:
			closeChan <- struct{}{}
			return
		}
	}
}

// Render the requested rows. Image rows run top to bottom while screen
// coordinates start at the bottom row.
func (tr *cpuTracer) renderBlock(frame *image.RGBA, blockReq BlockRequest) {
	bounds := frame.Bounds()
	frameW, frameH := bounds.Dx(), bounds.Dy()

	for row := int(blockReq.BlockY); row < int(blockReq.BlockY+blockReq.BlockH); row++ {
		y := float32(frameH - 1 - row)
		for x := 0; x < frameW; x++ {
			ray := tr.raytracer.GeneratePrimaryRay(float32(x), y)

			var (
				c  types.Vec3
				ok bool
			)
			if blockReq.DepthMap {
				c, ok = tr.raytracer.DepthMap(ray)
			} else {
				c, ok = tr.raytracer.Raytrace(ray)
			}
			if !ok {
				c = tr.raytracer.TraceBackground(ray)
			}

			frame.SetRGBA(bounds.Min.X+x, bounds.Min.Y+row, Quantize(c))
		}
	}
}

// Convert a linear color to 8 bits per channel clamping each channel to [0, 1].
func Quantize(c types.Vec3) color.RGBA {
	q := func(v float32) uint8 {
		if v != v {
			return 0
		}
		return uint8(math32.Min(math32.Max(v, 0), 1) * 255)
	}
	return color.RGBA{R: q(c[0]), G: q(c[1]), B: q(c[2]), A: 255}
}
