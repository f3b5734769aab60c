package trace

import (
	"fmt"
	"sync"
	"time"

	"github.com/odeplot/dirfield"
)

// Default cadences of the pipeline. Harvesting bounds how often partial
// curves reach the queue; drawing bounds how often the sink repaints.
const (
	DefaultHarvestInterval = 50 * time.Millisecond
	DefaultDrawInterval    = 5 * time.Millisecond
	DefaultDrawBatchLimit  = 10

	// stillRunningDelay is how long a trace may run before the
	// TraceStillRunning hook fires, advising the UI to reveal a stop
	// control. Advisory only; it never cancels anything.
	stillRunningDelay = 1500 * time.Millisecond
)

// Hooks are optional callbacks into the embedding UI. Either may be nil.
// They are invoked from coordinator-owned goroutines; implementations must
// marshal onto their own UI thread as needed.
type Hooks struct {
	// TraceStillRunning fires once per trace request that is still
	// producing points stillRunningDelay after it started.
	TraceStillRunning func()

	// TracingIdle fires when the last active job finishes or is stopped.
	TracingIdle func()
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithHarvestInterval overrides the harvest tick period.
func WithHarvestInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.harvestInterval = d }
}

// WithDrawInterval overrides the draw-consumer tick period.
func WithDrawInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.drawInterval = d }
}

// WithDrawBatchLimit overrides how many queued entries the draw consumer
// pops per tick.
func WithDrawBatchLimit(n int) Option {
	return func(c *Coordinator) { c.drawBatchLimit = n }
}

// WithHooks installs UI callbacks.
func WithHooks(h Hooks) Option {
	return func(c *Coordinator) { c.hooks = h }
}

// Coordinator owns the set of active trace jobs. Each trace request spawns
// two jobs (leftward and rightward) sharing a start point and a settings
// snapshot; a periodic harvest collects newly produced segments from every
// job and forwards them to the drawing queue. All work happens on
// background goroutines; no method blocks on tracing progress except the
// ones documented to.
type Coordinator struct {
	viewport func() dirfield.Viewport

	harvestInterval time.Duration
	drawInterval    time.Duration
	drawBatchLimit  int
	hooks           Hooks

	queue *drawQueue

	mu       sync.Mutex
	jobs     []*job
	settings *Settings
	slopeFn  string

	stopOnce sync.Once
	stopped  chan struct{}
	harvDone chan struct{}
}

// NewCoordinator creates a coordinator drawing into sink. viewport is read
// once per trace request to snapshot the visible region; it must be safe
// to call from any goroutine. settings is adopted as the live settings
// object; use UpdateSettings to swap in an edited copy.
func NewCoordinator(sink dirfield.RenderSink, settings *Settings, viewport func() dirfield.Viewport, opts ...Option) *Coordinator {
	c := &Coordinator{
		viewport:        viewport,
		harvestInterval: DefaultHarvestInterval,
		drawInterval:    DefaultDrawInterval,
		drawBatchLimit:  DefaultDrawBatchLimit,
		settings:        settings,
		stopped:         make(chan struct{}),
		harvDone:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.queue = newDrawQueue(sink, c.drawInterval, c.drawBatchLimit)
	go c.harvestLoop()
	return c
}

// SetSlopeFunction validates src and makes it the active slope function.
// On a compile error the previous function is retained and the error
// returned, so an invalid edit never reaches a tracer.
func (c *Coordinator) SetSlopeFunction(src string) error {
	if _, err := NewTracer(c.SettingsSnapshot(), src, Right, c.viewport()); err != nil {
		return fmt.Errorf("trace: rejecting slope function %q: %w", src, err)
	}
	c.mu.Lock()
	c.slopeFn = src
	c.mu.Unlock()
	return nil
}

// SlopeFunction returns the active slope function source.
func (c *Coordinator) SlopeFunction() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slopeFn
}

// UpdateSettings atomically swaps in new live settings. Running traces
// keep the snapshot they started with.
func (c *Coordinator) UpdateSettings(s *Settings) {
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
}

// SettingsSnapshot returns a deep copy of the live settings, suitable for
// editing and passing back to UpdateSettings.
func (c *Coordinator) SettingsSnapshot() *Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings.Copy()
}

// TraceFromPoint begins tracing the solution through (x, y): one job per
// direction, both using a snapshot of the current settings and viewport.
// It does not validate that the point lies in the viewport; range checks
// belong to the caller.
func (c *Coordinator) TraceFromPoint(x, y float64) error {
	c.mu.Lock()
	snapshot := c.settings.Copy()
	src := c.slopeFn
	c.mu.Unlock()

	vp := c.viewport()
	style := snapshot.Style()

	started := make([]*job, 0, 2)
	for _, dir := range []Direction{Left, Right} {
		t, err := NewTracer(snapshot, src, dir, vp)
		if err != nil {
			for _, j := range started {
				j.stop()
			}
			return err
		}
		started = append(started, newJob(t, x, y, style))
	}

	c.mu.Lock()
	c.jobs = append(c.jobs, started...)
	c.mu.Unlock()

	dirfield.Logger().Info("trace started", "x", x, "y", y, "function", src)

	if c.hooks.TraceStillRunning != nil {
		jobs := started
		time.AfterFunc(stillRunningDelay, func() {
			for _, j := range jobs {
				select {
				case <-j.finished:
				default:
					c.hooks.TraceStillRunning()
					return
				}
			}
		})
	}
	return nil
}

// Active reports the number of jobs still producing points.
func (c *Coordinator) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jobs)
}

// Wait blocks until no jobs remain active. Intended for headless callers;
// interactive ones rely on hooks instead.
func (c *Coordinator) Wait() {
	for {
		if c.Active() == 0 {
			return
		}
		time.Sleep(c.harvestInterval)
	}
}

// StopTracing cancels all active jobs, waits for every worker to exit,
// and clears pending drawing work. When it returns, no straggling worker
// can append another point and the drawing queue is empty.
func (c *Coordinator) StopTracing() {
	c.mu.Lock()
	jobs := c.jobs
	c.jobs = nil
	c.mu.Unlock()

	for _, j := range jobs {
		j.stop()
	}
	c.queue.clear()

	if len(jobs) > 0 {
		dirfield.Logger().Info("tracing stopped", "jobs", len(jobs))
		if c.hooks.TracingIdle != nil {
			c.hooks.TracingIdle()
		}
	}
}

// Shutdown stops everything: active jobs, the harvest ticker, and the
// drawing consumer. Unlike StopTracing it flushes already-produced
// segments to the sink instead of discarding them, so a headless caller
// can Wait, Shutdown, and then render a complete picture. It blocks until
// all goroutines have exited; the coordinator is unusable afterwards.
func (c *Coordinator) Shutdown() {
	c.stopOnce.Do(func() { close(c.stopped) })
	<-c.harvDone

	c.mu.Lock()
	jobs := c.jobs
	c.jobs = nil
	c.mu.Unlock()

	var batches []dirfield.CurveBatch
	for _, j := range jobs {
		j.stop()
		if segment, _ := j.drain(); len(segment) > 0 {
			batches = append(batches, dirfield.CurveBatch{Style: j.style, Points: segment})
		}
	}
	c.queue.add(batches)
	c.queue.close()
}

// harvestLoop periodically drains every job's drawable buffer and batches
// the collected segments into the drawing queue. Finished jobs are removed
// from the active set after their final drain.
func (c *Coordinator) harvestLoop() {
	defer close(c.harvDone)

	ticker := time.NewTicker(c.harvestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopped:
			return
		case <-ticker.C:
			c.harvestOnce()
		}
	}
}

func (c *Coordinator) harvestOnce() {
	c.mu.Lock()
	if len(c.jobs) == 0 {
		c.mu.Unlock()
		return
	}

	var batches []dirfield.CurveBatch
	remaining := c.jobs[:0]
	for _, j := range c.jobs {
		segment, finished := j.drain()
		if len(segment) > 0 {
			batches = append(batches, dirfield.CurveBatch{Style: j.style, Points: segment})
		}
		if finished {
			continue
		}
		remaining = append(remaining, j)
	}
	c.jobs = remaining
	idle := len(c.jobs) == 0

	// Enqueue while still holding c.mu so a concurrent StopTracing cannot
	// clear the queue between the drain and the add.
	c.queue.add(batches)
	c.mu.Unlock()

	if idle {
		dirfield.Logger().Info("all traces finished")
		if c.hooks.TracingIdle != nil {
			c.hooks.TracingIdle()
		}
	}
}
