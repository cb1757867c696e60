package renderer

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/therdel/raytracer/asset/scene"
	"github.com/therdel/raytracer/log"
	"github.com/therdel/raytracer/tracer"
)

// A renderer that splits each frame into horizontal blocks and traces
// them in parallel using a pool of cpu tracers.
type defaultRenderer struct {
	sync.Mutex

	logger log.Logger

	scene     *scene.Scene
	scheduler tracer.BlockScheduler
	tracers   []tracer.Tracer
	options   Options

	frame *image.RGBA

	// Block heights assigned to each tracer for the last frame.
	blockAssignments []uint32

	stats FrameStats
}

// Create a new default renderer using the specified block scheduler.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}

	// Resize camera screen if the frame dims were overridden
	if opts.FrameW == 0 {
		opts.FrameW = sc.Camera.PixelWidth
	}
	if opts.FrameH == 0 {
		opts.FrameH = sc.Camera.PixelHeight
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameDims
	}
	if opts.FrameW != sc.Camera.PixelWidth || opts.FrameH != sc.Camera.PixelHeight {
		sc.Camera.PixelWidth = opts.FrameW
		sc.Camera.PixelHeight = opts.FrameH
		sc.Camera.Update()
	}

	if opts.Workers == 0 {
		opts.Workers = defaultWorkerCount()
	}
	if opts.Workers > opts.FrameH {
		opts.Workers = opts.FrameH
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		scene:     sc,
		scheduler: scheduler,
		options:   opts,
		frame:     image.NewRGBA(image.Rect(0, 0, int(opts.FrameW), int(opts.FrameH))),
	}

	err := r.initTracers()
	if err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

// Use one worker per physical core, falling back to the logical cpu count.
func defaultWorkerCount() uint32 {
	count, err := cpu.Counts(false)
	if err != nil || count < 1 {
		count = runtime.NumCPU()
	}
	return uint32(count)
}

func (r *defaultRenderer) initTracers() error {
	rt := tracer.NewRaytracer(r.scene)

	for idx := uint32(0); idx < r.options.Workers; idx++ {
		tr := tracer.NewCPUTracer(fmt.Sprintf("cpu-%d", idx), rt)
		if err := tr.Init(r.frame); err != nil {
			return err
		}
		r.tracers = append(r.tracers, tr)
	}

	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	r.logger.Noticef("using %d tracer(s) for a %dx%d frame", len(r.tracers), r.options.FrameW, r.options.FrameH)
	return nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	r.Lock()
	defer r.Unlock()

	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get the last rendered frame.
func (r *defaultRenderer) Frame() *image.RGBA {
	return r.frame
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Render next frame.
func (r *defaultRenderer) Render() error {
	r.Lock()
	defer r.Unlock()

	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	start := time.Now()
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	// Buffered so that tracers never block on a renderer that bailed out early
	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	var blockY uint32
	pending := 0
	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		if blockH == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			BlockY:   blockY,
			BlockH:   blockH,
			DepthMap: r.options.DepthMap,
			DoneChan: doneChan,
			ErrChan:  errChan,
		})
		blockY += blockH
		pending++
	}

	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case err := <-errChan:
			return err
		}
	}

	r.updateStats(time.Since(start))
	return nil
}

func (r *defaultRenderer) updateStats(renderTime time.Duration) {
	r.stats.RenderTime = renderTime
	r.stats.Tracers = make([]TracerStat, len(r.tracers))
	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		r.stats.Tracers[idx] = TracerStat{
			Id:           tr.Id(),
			BlockH:       blockH,
			FramePercent: 100.0 * float32(blockH) / float32(r.options.FrameH),
			RenderTime:   tr.Stats().RenderTime,
		}
	}
}
