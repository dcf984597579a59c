// Package session connects the engine, the playback controller, the
// renderer and a presenter. It is the control surface the presentation
// layers drive.
package session

import (
	"context"
	"errors"
	"time"

	"golang.org/x/text/message"

	"github.com/sarchlab/pipeviz/engine"
	"github.com/sarchlab/pipeviz/log"
	"github.com/sarchlab/pipeviz/playback"
	"github.com/sarchlab/pipeviz/render"
	"github.com/sarchlab/pipeviz/snapshot"
	"github.com/sarchlab/pipeviz/translate"
)

// Engine runs source text. *engine.Client implements it.
type Engine interface {
	Execute(ctx context.Context, text string, forwarding bool) (snapshot.Sequence, error)
	Compile(ctx context.Context, text string) (string, error)
	Compare(ctx context.Context, text string) (*engine.Comparison, error)
}

// Host is the single goroutine a Session lives on. Post runs fn on it and
// Schedule does so after d. *playback.Loop implements it.
type Host interface {
	Post(fn func())
	Schedule(d time.Duration, fn func())
}

// Presenter displays what the session produces.
type Presenter interface {
	// Present shows a frame. It is called once per position change.
	Present(fr render.Frame)
	// Notify shows a notice.
	Notify(n Notice)
	// SetSource replaces the text in the source buffer.
	SetSource(text string)
}

type requestKind int

const (
	requestExecute requestKind = iota
	requestCompile
	requestCompare
	numRequestKinds
)

var requestNames = [numRequestKinds]string{"execute", "compile", "compare"}

// Status summarizes the playback state for status lines.
type Status struct {
	Loaded   bool
	Position int
	Last     int
	Running  bool
	Tick     time.Duration

	// Forwarding is the mode the displayed sequence was run with.
	Forwarding bool
	// NextForwarding is the mode the next Execute will request.
	NextForwarding bool
}

// Option is a functional option for configuring the Session.
type Option func(*Session)

// WithConfig sets the playback and render cache configuration.
func WithConfig(config *playback.Config) Option {
	return func(s *Session) {
		s.config = config
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithPrinter sets the printer used for notices.
func WithPrinter(p *message.Printer) Option {
	return func(s *Session) {
		s.printer = p
	}
}

// WithContext sets the context engine requests run under. Canceling it
// aborts requests in flight.
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		s.ctx = ctx
	}
}

// WithRunner sets how engine requests are started. The default starts a
// goroutine per request.
func WithRunner(run func(fn func())) Option {
	return func(s *Session) {
		s.run = run
	}
}

// Session is not safe for concurrent use. Every method must be called on
// the host goroutine.
type Session struct {
	engine    Engine
	host      Host
	presenter Presenter

	ctrl     *playback.Controller
	renderer *render.Renderer

	config  *playback.Config
	log     log.Logger
	printer *message.Printer
	ctx     context.Context
	run     func(fn func())

	// forwarding is the requested mode; loadedForwarding the mode of the
	// sequence on display.
	forwarding       bool
	loadedForwarding bool

	// latest request id per kind. Responses carrying an older id are stale.
	requests [numRequestKinds]uint64
}

// New creates a session with nothing loaded.
func New(eng Engine, host Host, presenter Presenter, opts ...Option) *Session {
	s := &Session{
		engine:    eng,
		host:      host,
		presenter: presenter,
		config:    playback.DefaultConfig(),
		log:       log.NewNullLogger(),
		printer:   translate.Default(),
		ctx:       context.Background(),
		run:       func(fn func()) { go fn() },
	}

	for _, opt := range opts {
		opt(s)
	}

	s.renderer = render.New(render.WithCache(s.config.RenderCacheSets, s.config.RenderCacheWays))
	s.ctrl = playback.NewController(host, playback.ViewFunc(s.show),
		playback.WithConfig(s.config),
		playback.WithLogger(s.log),
	)

	return s
}

// Execute asks the engine to run text and loads the resulting sequence.
func (s *Session) Execute(text string, forwarding bool) {
	s.forwarding = forwarding
	id := s.begin(requestExecute)

	s.run(func() {
		seq, err := s.engine.Execute(s.ctx, text, forwarding)
		s.host.Post(func() { s.executed(id, forwarding, seq, err) })
	})
}

// Compile asks the engine to assemble text and replaces the source buffer
// with the result.
func (s *Session) Compile(text string) {
	id := s.begin(requestCompile)

	s.run(func() {
		out, err := s.engine.Compile(s.ctx, text)
		s.host.Post(func() { s.compiled(id, out, err) })
	})
}

// Compare asks the engine to run text without and with forwarding and
// reports both results.
func (s *Session) Compare(text string) {
	id := s.begin(requestCompare)

	s.run(func() {
		cmp, err := s.engine.Compare(s.ctx, text)
		s.host.Post(func() { s.compared(id, cmp, err) })
	})
}

// Next steps forward, or speeds up a running playback.
func (s *Session) Next() {
	s.ctrl.StepForward()
}

// Prev steps backward, or slows down a running playback.
func (s *Session) Prev() {
	s.ctrl.StepBackward()
}

// Play toggles automatic advance.
func (s *Session) Play() {
	s.ctrl.TogglePlay()
}

// Pause stops automatic advance.
func (s *Session) Pause() {
	s.ctrl.Pause()
}

// Goto jumps to position, clamped into the loaded sequence.
func (s *Session) Goto(position int) error {
	if s.ctrl.Len() == 0 {
		return playback.ErrNotLoaded
	}

	if position < 0 {
		position = 0
	}
	if last := s.ctrl.Len() - 1; position > last {
		position = last
	}

	return s.ctrl.Seek(position)
}

// SetForwarding sets the forwarding mode used by the next Execute.
func (s *Session) SetForwarding(on bool) {
	s.forwarding = on
}

// Forwarding returns the forwarding mode the displayed sequence was run
// with. Failed and superseded executions do not change it.
func (s *Session) Forwarding() bool {
	return s.loadedForwarding
}

// NextForwarding returns the forwarding mode the next Execute requests.
func (s *Session) NextForwarding() bool {
	return s.forwarding
}

// Status returns the current playback state.
func (s *Session) Status() Status {
	position, loaded := s.ctrl.Position()
	return Status{
		Loaded:         loaded,
		Position:       position,
		Last:           s.ctrl.Len() - 1,
		Running:        s.ctrl.Running(),
		Tick:           s.ctrl.Tick(),
		Forwarding:     s.loadedForwarding,
		NextForwarding: s.forwarding,
	}
}

// CacheStats returns the render cache statistics.
func (s *Session) CacheStats() render.CacheStats {
	return s.renderer.CacheStats()
}

func (s *Session) begin(kind requestKind) uint64 {
	s.requests[kind]++
	return s.requests[kind]
}

func (s *Session) stale(kind requestKind, id uint64) bool {
	if id == s.requests[kind] {
		return false
	}

	s.log.Debugf("session: dropped stale %s response %d, latest is %d",
		requestNames[kind], id, s.requests[kind])
	return true
}

func (s *Session) executed(id uint64, forwarding bool, seq snapshot.Sequence, err error) {
	if s.stale(requestExecute, id) {
		return
	}

	if err != nil {
		s.fail(requestExecute, err)
		return
	}

	if len(seq) == 0 {
		s.notify(NoticeFailure, s.printer.Sprintf(translate.EmptyResult, requestNames[requestExecute]))
		return
	}

	if err := seq.Validate(); err != nil {
		s.log.Infof("session: %v", err)
	}

	s.renderer.Invalidate()
	if err := s.ctrl.Load(seq); err != nil {
		s.fail(requestExecute, err)
		return
	}
	s.loadedForwarding = forwarding

	s.log.Infof("session: loaded %d cycles (forwarding %v)", len(seq), forwarding)
}

func (s *Session) compiled(id uint64, out string, err error) {
	if s.stale(requestCompile, id) {
		return
	}

	if err != nil {
		s.fail(requestCompile, err)
		return
	}

	s.presenter.SetSource(out)
}

func (s *Session) compared(id uint64, cmp *engine.Comparison, err error) {
	if s.stale(requestCompare, id) {
		return
	}

	if err != nil {
		s.fail(requestCompare, err)
		return
	}

	s.notify(NoticeInfo, s.CompareMessage(cmp))
}

// CompareMessage formats a comparison as clocks and throughputs, slower
// first.
func (s *Session) CompareMessage(cmp *engine.Comparison) string {
	return s.printer.Sprintf(translate.CompareSummary,
		cmp.Slower.Clocks, cmp.Faster.Clocks,
		cmp.Slower.Throughput, cmp.Faster.Throughput)
}

func (s *Session) fail(kind requestKind, err error) {
	s.log.Errorf("session: %s: %v", requestNames[kind], err)

	if errors.Is(err, engine.ErrInvalidText) {
		s.notify(NoticeFailure, s.printer.Sprintf(translate.InvalidText))
		return
	}

	s.notify(NoticeFailure, s.printer.Sprintf(translate.RequestFailed, requestNames[kind], err))
}

func (s *Session) notify(kind NoticeKind, text string) {
	s.presenter.Notify(Notice{Kind: kind, Text: text})
}

func (s *Session) show(snap *snapshot.Snapshot, position, last int) {
	s.presenter.Present(s.renderer.Render(snap, position, last))
}
