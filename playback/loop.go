package playback

import (
	"context"
	"time"
)

// Loop is the single goroutine that owns a Controller and everything it
// renders into. Other goroutines hand it work through Post.
type Loop struct {
	work chan func()
	done chan struct{}
}

// NewLoop creates a loop with room for backlog queued closures.
func NewLoop(backlog int) *Loop {
	return &Loop{
		work: make(chan func(), backlog),
		done: make(chan struct{}),
	}
}

// Post queues fn to run on the loop goroutine. It must not be called from
// the loop goroutine when the queue may be full. Once Run has returned, fn
// is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.work <- fn:
	case <-l.done:
	}
}

// Schedule implements Scheduler by posting fn once d has elapsed.
func (l *Loop) Schedule(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		l.Post(fn)
	})
}

// Run executes queued closures in order until ctx is done. A loop runs
// once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	for {
		select {
		case fn := <-l.work:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Do runs fn on the loop and waits for it to return. It is the synchronous
// counterpart of Post for callers outside the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	select {
	case l.work <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}
