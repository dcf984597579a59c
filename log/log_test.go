package log_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipeviz/log"
)

var _ = Describe("Logger", func() {
	var w *strings.Builder

	BeforeEach(func() {
		w = &strings.Builder{}
	})

	It("should prefix lines with their tag", func() {
		l := log.NewWithWriter(w, log.LevelDebug)
		l.Infof("loaded %d cycles", 3)
		l.Errorf("engine: %s", "down")
		l.Debugf("tick")
		Expect(w.String()).To(Equal("[INFO]\tloaded 3 cycles\n[ERROR]\tengine: down\n[DEBUG]\ttick\n"))
	})

	It("should drop lines below the level", func() {
		l := log.NewWithWriter(w, log.LevelError)
		l.Debugf("tick")
		l.Infof("info")
		l.Errorf("boom")
		Expect(w.String()).To(Equal("[ERROR]\tboom\n"))
	})

	It("should provide a null logger", func() {
		l := log.NewNullLogger()
		Expect(func() { l.Errorf("ignored %d", 1) }).NotTo(Panic())
	})
})
