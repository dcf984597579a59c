package playback_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipeviz/playback"
	"github.com/sarchlab/pipeviz/snapshot"
)

var _ = Describe("Loop", func() {
	var (
		loop   *playback.Loop
		ctx    context.Context
		cancel context.CancelFunc
		done   chan error
	)

	BeforeEach(func() {
		loop = playback.NewLoop(16)
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- loop.Run(ctx) }()
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	It("should run posted work in order", func() {
		var order []int
		for i := 0; i < 5; i++ {
			i := i
			loop.Post(func() { order = append(order, i) })
		}
		Expect(loop.Do(ctx, func() {})).To(Succeed())
		Expect(order).To(Equal([]int{0, 1, 2, 3, 4}))
	})

	It("should run scheduled work after the delay", func() {
		var fired atomic.Bool
		loop.Schedule(10*time.Millisecond, func() { fired.Store(true) })
		Eventually(fired.Load).Should(BeTrue())
	})

	It("should drive a controller to the end of a sequence", func() {
		var ctrl *playback.Controller
		config := playback.DefaultConfig()
		config.TickMS = 10
		config.MinTickMS = 1

		var last atomic.Int64
		view := playback.ViewFunc(func(snap *snapshot.Snapshot, position, _ int) {
			last.Store(int64(position))
		})

		var loadErr error
		Expect(loop.Do(ctx, func() {
			ctrl = playback.NewController(loop, view, playback.WithConfig(config))
			loadErr = ctrl.Load(sequenceOf(4))
			ctrl.TogglePlay()
		})).To(Succeed())
		Expect(loadErr).NotTo(HaveOccurred())

		Eventually(last.Load).Should(Equal(int64(3)))
		Eventually(func() bool {
			var running bool
			_ = loop.Do(ctx, func() { running = ctrl.Running() })
			return running
		}).Should(BeFalse())
	})

	It("should give up waiting when the context ends", func() {
		short, stop := context.WithCancel(context.Background())
		stop()
		Expect(loop.Do(short, func() {})).To(MatchError(context.Canceled))
	})

	Context("after Run has returned", func() {
		var stopped *playback.Loop

		BeforeEach(func() {
			stopped = playback.NewLoop(1)
			short, stop := context.WithCancel(context.Background())
			ran := make(chan error, 1)
			go func() { ran <- stopped.Run(short) }()
			stop()
			Eventually(ran).Should(Receive(MatchError(context.Canceled)))
		})

		It("should drop posts instead of blocking on a full queue", func() {
			posted := make(chan struct{})
			go func() {
				stopped.Post(func() {})
				stopped.Post(func() {})
				close(posted)
			}()
			Eventually(posted).Should(BeClosed())
		})

		It("should not block scheduled work", func() {
			var fired atomic.Int32
			for i := 0; i < 3; i++ {
				stopped.Schedule(time.Millisecond, func() { fired.Add(1) })
			}
			Consistently(fired.Load, 50*time.Millisecond).Should(BeZero())
		})

		It("should refuse synchronous work", func() {
			Expect(stopped.Do(context.Background(), func() {})).To(MatchError(playback.ErrLoopStopped))
		})
	})
})
