package trace

import (
	"context"
	"iter"
	"sync"

	"github.com/odeplot/dirfield"
)

// job wraps one Tracer execution on a worker goroutine. The worker pulls
// points from the tracer's sequence and appends them to an in-progress
// curve under a lock; the coordinator's harvest tick drains the drawable
// portion. A job never outlives its curve production.
type job struct {
	style dirfield.LineStyle
	vp    dirfield.Viewport

	cancel   context.CancelFunc
	finished chan struct{} // closed when the worker goroutine exits

	mu         sync.Mutex
	curve      []dirfield.Point
	shouldDraw bool
	done       bool // tracer sequence exhausted
}

// newJob starts the worker. The tracer must be exclusively owned by the
// job from here on.
func newJob(t *Tracer, x0, y0 float64, style dirfield.LineStyle) *job {
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		style:    style,
		vp:       t.vp,
		cancel:   cancel,
		finished: make(chan struct{}),
	}
	go j.run(ctx, t, x0, y0)
	return j
}

// run is the worker loop: pull one point per iteration, observe
// cancellation between iterations.
func (j *job) run(ctx context.Context, t *Tracer, x0, y0 float64) {
	defer close(j.finished)

	next, stop := iter.Pull(t.Trace(x0, y0))
	defer stop()

	for {
		if ctx.Err() != nil {
			return
		}
		p, ok := next()

		j.mu.Lock()
		if ok {
			j.curve = append(j.curve, p)
		} else {
			j.done = true
		}
		j.shouldDraw = j.drawableLocked()
		j.mu.Unlock()

		if !ok {
			return
		}
	}
}

// drawableLocked reports whether the curve so far is worth handing to the
// renderer. Called with j.mu held, after every append.
func (j *job) drawableLocked() bool {
	if j.shouldDraw {
		return true
	}
	if len(j.curve) < 2 {
		return false
	}
	// Once the sequence is finished, the last bit always gets drawn.
	if j.done {
		return true
	}
	startIn := j.vp.StrictlyContainsY(j.curve[0].Y)
	endIn := j.vp.StrictlyContainsY(j.curve[len(j.curve)-1].Y)
	return startIn || endIn
}

// drain atomically hands over the drawable portion of the curve and resets
// the buffer to its last point, so the next segment connects seamlessly.
// It returns nil when nothing is worth drawing yet. The second result
// reports whether the job has finished producing.
func (j *job) drain() ([]dirfield.Point, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.shouldDraw {
		return nil, j.done
	}
	segment := make([]dirfield.Point, len(j.curve))
	copy(segment, j.curve)
	j.curve = j.curve[:0]
	j.curve = append(j.curve, segment[len(segment)-1])
	j.shouldDraw = false
	return segment, j.done
}

// stop cancels the worker and blocks until it has actually exited, so a
// caller observing stop's return can rely on no further appends.
func (j *job) stop() {
	j.cancel()
	<-j.finished
}
