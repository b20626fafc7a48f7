package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit     key.Binding
	Refresh  key.Binding
	Comments key.Binding
}

var Keys = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
	Comments: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "load comments")),
}
