package web

import (
	"github.com/sarchlab/pipeviz/render"
	"github.com/sarchlab/pipeviz/session"
)

// Message types sent to clients.
const (
	TypeFrame  = "frame"
	TypeNotice = "notice"
	TypeSource = "source"
)

// Operations accepted from clients.
const (
	OpExecute    = "execute"
	OpCompile    = "compile"
	OpCompare    = "compare"
	OpNext       = "next"
	OpPrev       = "prev"
	OpPlay       = "play"
	OpPause      = "pause"
	OpGoto       = "goto"
	OpForwarding = "forwarding"
)

// Envelope is every message sent to a client. Exactly one payload field is
// set, matching Type.
type Envelope struct {
	Type   string          `json:"type"`
	Frame  *render.Frame   `json:"frame,omitempty"`
	Notice *session.Notice `json:"notice,omitempty"`
	Source *string         `json:"source,omitempty"`
}

// Command is a message received from a client.
type Command struct {
	Op         string `json:"op"`
	Text       string `json:"text,omitempty"`
	Forwarding bool   `json:"forwarding,omitempty"`
	Position   int    `json:"position,omitempty"`
}
