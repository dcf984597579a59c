// Package web is the websocket presenter. Frames, notices and source text
// are pushed to every connected browser as JSON, and browsers send
// playback commands back.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/cespare/xxhash"
	"github.com/gorilla/websocket"

	"github.com/sarchlab/pipeviz/log"
	"github.com/sarchlab/pipeviz/render"
	"github.com/sarchlab/pipeviz/session"
)

// Poster runs work on the goroutine the session lives on.
type Poster interface {
	Post(fn func())
}

// Controls is the part of *session.Session the hub drives.
type Controls interface {
	Execute(text string, forwarding bool)
	Compile(text string)
	Compare(text string)
	Next()
	Prev()
	Play()
	Pause()
	Goto(position int) error
	SetForwarding(on bool)
}

type outbound struct {
	kind string
	data []byte
}

type direct struct {
	c    *client
	data []byte
}

// Option is a functional option for configuring the Hub.
type Option func(*Hub)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(h *Hub) {
		h.log = l
	}
}

// WithCheckOrigin sets the origin check of the websocket upgrader.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = check
	}
}

// Hub fans session output out to websocket clients. It implements
// session.Presenter; Present, Notify and SetSource must be called from the
// session goroutine.
type Hub struct {
	post     Poster
	controls Controls
	log      log.Logger
	upgrader websocket.Upgrader

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan outbound
	direct     chan direct
	done       chan struct{}

	// last frame and source, replayed to clients that join late
	lastFrame  []byte
	lastSource []byte

	frameHash  uint64
	haveFrame  bool
	suppressed atomic.Uint64
}

// NewHub creates a hub. Commands from clients are posted through post.
func NewHub(post Poster, opts ...Option) *Hub {
	h := &Hub{
		post: post,
		log:  log.NewNullLogger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan outbound, sendBacklog),
		direct:     make(chan direct, sendBacklog),
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Bind connects the hub to the controls commands are applied to.
func (h *Hub) Bind(c Controls) {
	h.controls = c
}

// Suppressed returns how many frames were not sent because they were
// identical to the previous one.
func (h *Hub) Suppressed() uint64 {
	return h.suppressed.Load()
}

// Run distributes messages until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.log.Debugf("web: client joined, %d connected", len(h.clients))
			if h.lastSource != nil {
				c.send <- h.lastSource
			}
			if h.lastFrame != nil {
				c.send <- h.lastFrame
			}

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			switch msg.kind {
			case TypeFrame:
				h.lastFrame = msg.data
			case TypeSource:
				h.lastSource = msg.data
			}

			for c := range h.clients {
				select {
				case c.send <- msg.data:
				default:
					h.log.Infof("web: dropping slow client")
					h.drop(c)
				}
			}

		case d := <-h.direct:
			if h.clients[d.c] {
				select {
				case d.c.send <- d.data:
				default:
				}
			}

		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return ctx.Err()
		}
	}
}

func (h *Hub) drop(c *client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.log.Debugf("web: client left, %d connected", len(h.clients))
}

// ServeHTTP upgrades the request to a websocket and attaches the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("web: upgrade: %v", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBacklog)}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Present implements session.Presenter. A frame identical to the previous
// one is not sent again.
func (h *Hub) Present(fr render.Frame) {
	data, err := json.Marshal(Envelope{Type: TypeFrame, Frame: &fr})
	if err != nil {
		h.log.Errorf("web: encode frame: %v", err)
		return
	}

	sum := xxhash.Sum64(data)
	if h.haveFrame && sum == h.frameHash {
		h.suppressed.Add(1)
		return
	}
	h.frameHash = sum
	h.haveFrame = true

	h.send(TypeFrame, data)
}

// Notify implements session.Presenter.
func (h *Hub) Notify(n session.Notice) {
	data, err := json.Marshal(Envelope{Type: TypeNotice, Notice: &n})
	if err != nil {
		h.log.Errorf("web: encode notice: %v", err)
		return
	}
	h.send(TypeNotice, data)
}

// SetSource implements session.Presenter.
func (h *Hub) SetSource(text string) {
	data, err := json.Marshal(Envelope{Type: TypeSource, Source: &text})
	if err != nil {
		h.log.Errorf("web: encode source: %v", err)
		return
	}
	h.send(TypeSource, data)
}

func (h *Hub) send(kind string, data []byte) {
	select {
	case h.broadcast <- outbound{kind: kind, data: data}:
	case <-h.done:
	}
}

// handle decodes a client command and posts it to the session goroutine.
func (h *Hub) handle(c *client, message []byte) {
	var cmd Command
	if err := json.Unmarshal(message, &cmd); err != nil {
		h.reply(c, fmt.Errorf("%w: %w", ErrBadCommand, err))
		return
	}

	apply, err := h.command(cmd)
	if err != nil {
		h.reply(c, err)
		return
	}

	h.post.Post(apply)
}

func (h *Hub) command(cmd Command) (func(), error) {
	ctl := h.controls
	if ctl == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Op)
	}

	switch cmd.Op {
	case OpExecute:
		return func() { ctl.Execute(cmd.Text, cmd.Forwarding) }, nil
	case OpCompile:
		return func() { ctl.Compile(cmd.Text) }, nil
	case OpCompare:
		return func() { ctl.Compare(cmd.Text) }, nil
	case OpNext:
		return ctl.Next, nil
	case OpPrev:
		return ctl.Prev, nil
	case OpPlay:
		return ctl.Play, nil
	case OpPause:
		return ctl.Pause, nil
	case OpForwarding:
		return func() { ctl.SetForwarding(cmd.Forwarding) }, nil
	case OpGoto:
		return func() {
			if err := ctl.Goto(cmd.Position); err != nil {
				h.Notify(session.Notice{Kind: session.NoticeFailure, Text: err.Error()})
			}
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Op)
	}
}

func (h *Hub) reply(c *client, err error) {
	data, _ := json.Marshal(Envelope{
		Type:   TypeNotice,
		Notice: &session.Notice{Kind: session.NoticeFailure, Text: err.Error()},
	})

	select {
	case h.direct <- direct{c: c, data: data}:
	case <-h.done:
	}
}
