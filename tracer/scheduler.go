package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign them to the
	// pool of tracers. The returned block heights add up to frameH.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame proportionally to each tracer's
// speed estimate.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return naiveScheduler{}
}

func (sch naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	weights := make([]float64, len(tracers))
	for idx, tr := range tracers {
		weights[idx] = float64(tr.Speed())
	}
	return distributeRows(weights, frameH)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance.
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of tracers using feedback collected from previous frames.
//
// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = NaiveScheduler().Schedule(tracers, frameH)
		return sch.blockAssignment
	}

	// Use last frame statistics
	weights := make([]float64, len(tracers))
	for idx, tr := range tracers {
		stats := tr.Stats()
		renderTime := math.Max(1, float64(stats.RenderTime.Nanoseconds()))
		weights[idx] = float64(stats.BlockH) / renderTime
	}

	sch.blockAssignment = distributeRows(weights, frameH)
	return sch.blockAssignment
}

// Split frameH rows proportionally to weights. Every tracer gets at least
// one row as long as there are enough rows to go round.
func distributeRows(weights []float64, frameH uint32) []uint32 {
	assignment := make([]uint32, len(weights))
	if len(weights) == 0 {
		return assignment
	}

	var total float64
	for _, w := range weights {
		total += w
	}

	var scheduledRows uint32
	for idx, w := range weights {
		rows := 1.0
		if total > 0 {
			rows = math.Max(1.0, math.Floor(w*float64(frameH)/total))
		}
		assignment[idx] = uint32(rows)
		scheduledRows += assignment[idx]
	}

	// Trim over-assigned rows from the largest blocks
	for scheduledRows > frameH {
		largest := 0
		for idx := range assignment {
			if assignment[idx] > assignment[largest] {
				largest = idx
			}
		}
		if assignment[largest] == 0 {
			break
		}
		assignment[largest]--
		scheduledRows--
	}

	// In case rows don't add up to the frame height append the missing ones to the first tracer
	assignment[0] += frameH - scheduledRows

	return assignment
}
