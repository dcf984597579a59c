package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunMsg carries work posted to the update loop. Update runs it.
type RunMsg func()

// Sender delivers messages to a running program. *tea.Program implements
// it.
type Sender interface {
	Send(msg tea.Msg)
}

// Host runs posted work on the Bubble Tea update loop, which makes the
// update loop the single goroutine a session lives on. Work is delivered in
// the order it was posted, including work posted before Attach.
type Host struct {
	mu    sync.Mutex
	queue []func()

	wake      chan struct{}
	done      chan struct{}
	attach    sync.Once
	closeOnce sync.Once
}

// NewHost returns a host that queues work until Attach.
func NewHost() *Host {
	return &Host{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Attach connects the host to a program. Only the first call has effect.
func (h *Host) Attach(to Sender) {
	h.attach.Do(func() {
		go h.pump(to)
	})
}

// Close stops delivering work.
func (h *Host) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// Post queues fn for the update loop. It never blocks, so Update may call
// it too.
func (h *Host) Post(fn func()) {
	h.mu.Lock()
	h.queue = append(h.queue, fn)
	h.mu.Unlock()

	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// pump is the only sender, so messages reach the program in queue order.
func (h *Host) pump(to Sender) {
	for {
		select {
		case <-h.wake:
		case <-h.done:
			return
		}

		for {
			h.mu.Lock()
			if len(h.queue) == 0 {
				h.mu.Unlock()
				break
			}
			fn := h.queue[0]
			h.queue[0] = nil
			h.queue = h.queue[1:]
			h.mu.Unlock()

			to.Send(RunMsg(fn))
		}
	}
}

// Schedule posts fn after d.
func (h *Host) Schedule(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		h.Post(fn)
	})
}
