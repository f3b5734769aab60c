package trace

import (
	"sync"
	"time"

	"github.com/odeplot/dirfield"
)

// drawQueue decouples curve-segment production from rendering. Harvested
// batches are appended under a lock; a periodic consumer pops a bounded
// number of entries per tick and hands them to the sink in one call, so
// the sink repaints once per drain rather than once per tiny segment.
type drawQueue struct {
	sink       dirfield.RenderSink
	interval   time.Duration
	batchLimit int

	mu    sync.Mutex
	queue [][]dirfield.CurveBatch

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newDrawQueue(sink dirfield.RenderSink, interval time.Duration, batchLimit int) *drawQueue {
	q := &drawQueue{
		sink:       sink,
		interval:   interval,
		batchLimit: batchLimit,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go q.run()
	return q
}

// add enqueues one harvest's worth of curve batches.
func (q *drawQueue) add(batches []dirfield.CurveBatch) {
	if len(batches) == 0 {
		return
	}
	q.mu.Lock()
	q.queue = append(q.queue, batches)
	q.mu.Unlock()
}

// clear drops all pending work without touching already-drawn content.
func (q *drawQueue) clear() {
	q.mu.Lock()
	q.queue = nil
	q.mu.Unlock()
}

// pending reports the number of queued entries.
func (q *drawQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// run is the drawing consumer. The queue lock is held only while popping;
// never during sink rendering.
func (q *drawQueue) run() {
	defer close(q.done)

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case <-ticker.C:
			q.drainOnce()
		}
	}
}

func (q *drawQueue) drainOnce() {
	var collected []dirfield.CurveBatch
	for i := 0; i < q.batchLimit; i++ {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.mu.Unlock()
			break
		}
		head := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()
		collected = append(collected, head...)
	}
	if len(collected) > 0 {
		q.sink.DrawCurves(collected)
	}
}

// close stops the consumer, blocks until it has exited, then flushes
// whatever is still queued to the sink. Safe to call more than once.
func (q *drawQueue) close() {
	q.stopOnce.Do(func() { close(q.stop) })
	<-q.done
	for q.pending() > 0 {
		q.drainOnce()
	}
}
