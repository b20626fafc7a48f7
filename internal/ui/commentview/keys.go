package commentview

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	Parent      key.Binding
	NextSib     key.Binding
	NextShown   key.Binding
	BucketLeft  key.Binding
	BucketRight key.Binding
	Select      key.Binding
	Clear       key.Binding
	Expand      key.Binding
}

var keys = keyMap{
	Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "up")),
	Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "down")),
	PageUp:      key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "page up")),
	PageDown:    key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "page down")),
	Home:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	End:         key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Parent:      key.NewBinding(key.WithKeys("["), key.WithHelp("[", "parent")),
	NextSib:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "sibling")),
	NextShown:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next shown")),
	BucketLeft:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/l", "score")),
	BucketRight: key.NewBinding(key.WithKeys("l", "right")),
	Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "filter")),
	Clear:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
	Expand:      key.NewBinding(key.WithKeys("e", " "), key.WithHelp("e", "expand")),
}

func helpLine() string {
	bindings := []key.Binding{
		keys.Down, keys.Parent, keys.NextSib, keys.NextShown,
		keys.BucketLeft, keys.Select, keys.Clear, keys.Expand,
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+":"+h.Desc)
	}
	return joinSpaced(parts)
}
