// Package playback replays a snapshot sequence: manual stepping, seeking and
// speed-adjustable automatic advance.
package playback

import (
	"fmt"
	"time"

	"github.com/sarchlab/pipeviz/log"
	"github.com/sarchlab/pipeviz/snapshot"
)

// Scheduler runs fn once after d has elapsed. Implementations must invoke fn
// on the same goroutine that drives the Controller.
type Scheduler interface {
	Schedule(d time.Duration, fn func())
}

// View receives the snapshot to display after every position change.
type View interface {
	Show(snap *snapshot.Snapshot, position, last int)
}

// ViewFunc adapts a function to the View interface.
type ViewFunc func(snap *snapshot.Snapshot, position, last int)

// Show calls fn.
func (fn ViewFunc) Show(snap *snapshot.Snapshot, position, last int) {
	fn(snap, position, last)
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithConfig sets the initial tick interval and its bounds from config.
func WithConfig(config *Config) Option {
	return func(c *Controller) {
		c.tick = config.Tick()
		c.minTick = config.MinTick()
		c.maxTick = config.MaxTick()
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// Controller owns the loaded sequence, the current position, the running
// flag and the tick interval. It is not safe for concurrent use; every method
// and every scheduled tick must run on one goroutine.
type Controller struct {
	seq      snapshot.Sequence
	position int
	running  bool

	tick    time.Duration
	minTick time.Duration
	maxTick time.Duration

	// loop identifies the active auto-advance loop. Ticks scheduled by an
	// earlier loop carry an older value and are dropped on wake.
	loop uint64

	sched Scheduler
	view  View
	log   log.Logger
}

// NewController creates a controller with nothing loaded.
func NewController(sched Scheduler, view View, opts ...Option) *Controller {
	config := DefaultConfig()
	c := &Controller{
		position: -1,
		tick:     config.Tick(),
		minTick:  config.MinTick(),
		maxTick:  config.MaxTick(),
		sched:    sched,
		view:     view,
		log:      log.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Load replaces the sequence, rewinds to position 0, stops playback and
// renders the first snapshot. An empty sequence is rejected and the current
// state is kept.
func (c *Controller) Load(seq snapshot.Sequence) error {
	if len(seq) == 0 {
		return ErrEmptySequence
	}

	c.seq = seq
	c.position = 0
	c.running = false
	c.loop++

	c.log.Debugf("playback: loaded %d snapshots", len(seq))
	c.show()
	return nil
}

// StepForward advances one position while paused. While running it halves
// the tick interval instead.
func (c *Controller) StepForward() {
	if c.running {
		c.setTick(c.tick / 2)
		return
	}

	if c.position < 0 {
		return
	}

	if c.position < c.seq.Last() {
		c.position++
		c.show()
	} else {
		c.running = false
	}
}

// StepBackward retreats one position while paused. While running it doubles
// the tick interval instead.
func (c *Controller) StepBackward() {
	if c.running {
		c.setTick(c.tick * 2)
		return
	}

	if c.position < 0 {
		return
	}

	if c.position > 0 {
		c.position--
		c.show()
	} else {
		c.running = false
	}
}

// Seek moves directly to position and renders it. Callers clamp; an
// out-of-range position is rejected without any state change.
func (c *Controller) Seek(position int) error {
	if c.position < 0 {
		return ErrNotLoaded
	}

	if position < 0 || position > c.seq.Last() {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, position, c.seq.Last())
	}

	c.position = position
	c.show()
	return nil
}

// TogglePlay pauses a running playback, or starts automatic advance.
func (c *Controller) TogglePlay() {
	if c.running {
		c.Pause()
		return
	}

	if c.position < 0 {
		return
	}

	c.running = true
	c.loop++
	c.schedule()
}

// Pause stops automatic advance. Pausing twice is harmless.
func (c *Controller) Pause() {
	c.running = false
}

// Position returns the current position, and false before the first load.
func (c *Controller) Position() (int, bool) {
	return c.position, c.position >= 0
}

// Running reports whether automatic advance is active.
func (c *Controller) Running() bool {
	return c.running
}

// Tick returns the current tick interval.
func (c *Controller) Tick() time.Duration {
	return c.tick
}

// Len returns the number of snapshots loaded.
func (c *Controller) Len() int {
	return len(c.seq)
}

// Current returns the snapshot at the current position.
func (c *Controller) Current() (*snapshot.Snapshot, bool) {
	return c.seq.At(c.position)
}

func (c *Controller) setTick(d time.Duration) {
	if d < c.minTick {
		d = c.minTick
	}
	if d > c.maxTick {
		d = c.maxTick
	}
	c.tick = d
	c.log.Debugf("playback: tick interval %v", d)
}

func (c *Controller) schedule() {
	loop := c.loop
	c.sched.Schedule(c.tick, func() {
		c.advance(loop)
	})
}

// advance is one iteration of the automatic loop. Running and bounds are
// checked on every wake so a pause or a new load takes effect at the next
// tick.
func (c *Controller) advance(loop uint64) {
	if loop != c.loop {
		c.log.Debugf("playback: dropped tick from superseded loop %d", loop)
		return
	}

	if !c.running {
		return
	}

	if c.position < c.seq.Last() {
		c.position++
		c.schedule()
		c.show()
		return
	}

	c.running = false
}

// show hands the current snapshot to the view. Position is already updated,
// so a faulting view cannot leave the controller inconsistent.
func (c *Controller) show() {
	snap, ok := c.seq.At(c.position)
	if !ok {
		c.running = false
		return
	}

	if c.view != nil {
		c.view.Show(snap, c.position, c.seq.Last())
	}
}
