// Package playbacktest provides a manually driven clock for testing code
// built on playback.Scheduler.
package playbacktest

import (
	"sort"
	"time"
)

type pending struct {
	at  time.Duration
	seq int
	fn  func()
}

// Scheduler is a playback.Scheduler whose time only moves when the test says
// so. Callbacks run synchronously inside Advance and Fire.
type Scheduler struct {
	now     time.Duration
	counter int
	queue   []pending
	delays  []time.Duration
}

// NewScheduler returns a scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule implements playback.Scheduler.
func (s *Scheduler) Schedule(d time.Duration, fn func()) {
	s.counter++
	s.delays = append(s.delays, d)
	s.queue = append(s.queue, pending{at: s.now + d, seq: s.counter, fn: fn})
	sort.SliceStable(s.queue, func(i, j int) bool {
		if s.queue[i].at != s.queue[j].at {
			return s.queue[i].at < s.queue[j].at
		}
		return s.queue[i].seq < s.queue[j].seq
	})
}

// Now returns the virtual time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of callbacks not yet fired.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Delays returns every delay passed to Schedule, in call order.
func (s *Scheduler) Delays() []time.Duration {
	return append([]time.Duration(nil), s.delays...)
}

// Advance moves time forward by d, firing every callback that falls due, in
// due order. Callbacks scheduled while advancing fire too if they fall due
// within d.
func (s *Scheduler) Advance(d time.Duration) int {
	end := s.now + d
	fired := 0
	for len(s.queue) > 0 && s.queue[0].at <= end {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.now = next.at
		next.fn()
		fired++
	}
	s.now = end
	return fired
}

// Fire jumps to the next pending callback and runs it. It reports false when
// nothing is pending.
func (s *Scheduler) Fire() bool {
	if len(s.queue) == 0 {
		return false
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	s.now = next.at
	next.fn()
	return true
}

// RunUntilIdle fires callbacks until none are pending or limit is reached.
func (s *Scheduler) RunUntilIdle(limit int) int {
	fired := 0
	for fired < limit && s.Fire() {
		fired++
	}
	return fired
}
