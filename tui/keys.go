package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Play       key.Binding
	First      key.Binding
	Last       key.Binding
	Execute    key.Binding
	Compile    key.Binding
	Compare    key.Binding
	Forwarding key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Next:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/right", "next / faster")),
	Prev:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/left", "prev / slower")),
	Play:       key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space", "play/pause")),
	First:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first cycle")),
	Last:       key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last cycle")),
	Execute:    key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "execute")),
	Compile:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compile")),
	Compare:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "compare")),
	Forwarding: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "toggle forwarding")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Play, k.Execute, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Play, k.First, k.Last},
		{k.Execute, k.Compile, k.Compare, k.Forwarding},
		{k.Help, k.Quit},
	}
}
