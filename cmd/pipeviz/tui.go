package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sarchlab/pipeviz/session"
	"github.com/sarchlab/pipeviz/tui"
)

func runTUI(eng session.Engine, text string, opts []session.Option) int {
	host := tui.NewHost()

	modelOpts := []tui.Option{tui.WithSource(text)}
	if text != "" {
		modelOpts = append(modelOpts, tui.WithExecuteOnStart())
	}
	model := tui.New(modelOpts...)

	sess := session.New(eng, host, model, opts...)
	sess.SetForwarding(*forwarding)
	model.Bind(sess)

	p := tea.NewProgram(model, tea.WithAltScreen())
	host.Attach(p)
	defer host.Close()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
