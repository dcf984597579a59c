package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sarchlab/pipeviz/playback"
	"github.com/sarchlab/pipeviz/render"
	"github.com/sarchlab/pipeviz/session"
)

// dumpPresenter writes every frame as one JSON line.
type dumpPresenter struct {
	enc    *json.Encoder
	err    error
	loaded chan struct{}
	failed chan session.Notice
	once   sync.Once
}

func newDumpPresenter(out io.Writer) *dumpPresenter {
	return &dumpPresenter{
		enc:    json.NewEncoder(out),
		loaded: make(chan struct{}),
		failed: make(chan session.Notice, 1),
	}
}

func (d *dumpPresenter) Present(fr render.Frame) {
	if d.err == nil {
		d.err = d.enc.Encode(fr)
	}
	d.once.Do(func() { close(d.loaded) })
}

func (d *dumpPresenter) Notify(n session.Notice) {
	if n.Kind != session.NoticeFailure {
		fmt.Fprintln(os.Stderr, n.Text)
		return
	}

	select {
	case d.failed <- n:
	default:
	}
}

func (d *dumpPresenter) SetSource(string) {}

// runDump executes text once and writes the frame of every cycle.
func runDump(ctx context.Context, eng session.Engine, text string, out io.Writer,
	opts []session.Option) int {
	if text == "" {
		fmt.Fprintf(os.Stderr, "Error: dump needs -source\n")
		return 2
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := playback.NewLoop(16)
	dump := newDumpPresenter(out)
	sess := session.New(eng, loop, dump, opts...)

	go func() { _ = loop.Run(ctx) }()

	if err := loop.Do(ctx, func() { sess.Execute(text, *forwarding) }); err != nil {
		return 1
	}

	select {
	case <-dump.loaded:
	case n := <-dump.failed:
		fmt.Fprintf(os.Stderr, "Error: %s\n", n.Text)
		return 1
	case <-ctx.Done():
		return 1
	}

	err := loop.Do(ctx, func() {
		for st := sess.Status(); st.Position < st.Last; st = sess.Status() {
			sess.Next()
		}
	})
	if err != nil {
		return 1
	}

	if dump.err != nil {
		fmt.Fprintf(os.Stderr, "Error writing frames: %v\n", dump.err)
		return 1
	}
	return 0
}
