// Package tui is the terminal presenter. The Bubble Tea update loop hosts
// the session, so every key press and every engine response is handled on
// one goroutine.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sarchlab/pipeviz/render"
	"github.com/sarchlab/pipeviz/session"
)

// Controls is the part of *session.Session the model drives.
type Controls interface {
	Execute(text string, forwarding bool)
	Compile(text string)
	Compare(text string)
	Next()
	Prev()
	Play()
	Goto(position int) error
	SetForwarding(on bool)
	Status() session.Status
}

type executeMsg struct{}

// Option is a functional option for configuring the Model.
type Option func(*Model)

// WithSource sets the initial source buffer.
func WithSource(text string) Option {
	return func(m *Model) {
		m.source = text
	}
}

// WithExecuteOnStart runs the source buffer as soon as the program starts.
func WithExecuteOnStart() Option {
	return func(m *Model) {
		m.executeOnStart = true
	}
}

// Model is the Bubble Tea model. It is also the session's presenter.
type Model struct {
	controls Controls

	keys     keyMap
	help     help.Model
	progress progress.Model

	source string
	frame  *render.Frame
	notice *session.Notice

	executeOnStart bool
	width          int
}

// New creates a model. Bind must be called before the program runs.
func New(opts ...Option) *Model {
	m := &Model{
		keys:     keys,
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Bind connects the model to the controls it drives.
func (m *Model) Bind(c Controls) {
	m.controls = c
}

// Source returns the source buffer.
func (m *Model) Source() string {
	return m.source
}

// Frame returns the frame on display, or nil before the first one.
func (m *Model) Frame() *render.Frame {
	return m.frame
}

// Notice returns the last notice, or nil.
func (m *Model) Notice() *session.Notice {
	return m.notice
}

// Present implements session.Presenter.
func (m *Model) Present(fr render.Frame) {
	m.frame = &fr
}

// Notify implements session.Presenter.
func (m *Model) Notify(n session.Notice) {
	m.notice = &n
}

// SetSource implements session.Presenter.
func (m *Model) SetSource(text string) {
	m.source = text
}

func (m *Model) Init() tea.Cmd {
	if m.executeOnStart {
		return func() tea.Msg { return executeMsg{} }
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RunMsg:
		msg()
		return m, nil

	case executeMsg:
		m.execute()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Next):
		m.controls.Next()
	case key.Matches(msg, m.keys.Prev):
		m.controls.Prev()
	case key.Matches(msg, m.keys.Play):
		m.controls.Play()
	case key.Matches(msg, m.keys.First):
		m.seek(0)
	case key.Matches(msg, m.keys.Last):
		m.seek(m.controls.Status().Last)
	case key.Matches(msg, m.keys.Execute):
		m.execute()
	case key.Matches(msg, m.keys.Compile):
		m.notice = nil
		m.controls.Compile(m.source)
	case key.Matches(msg, m.keys.Compare):
		m.notice = nil
		m.controls.Compare(m.source)
	case key.Matches(msg, m.keys.Forwarding):
		m.controls.SetForwarding(!m.controls.Status().NextForwarding)
	}
	return nil
}

func (m *Model) execute() {
	m.notice = nil
	m.controls.Execute(m.source, m.controls.Status().NextForwarding)
}

func (m *Model) seek(position int) {
	if err := m.controls.Goto(position); err != nil {
		m.notice = &session.Notice{Kind: session.NoticeFailure, Text: err.Error()}
	}
}
