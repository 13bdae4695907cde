package tui

import "github.com/charmbracelet/bubbles/key"

// PreviewKeyMap defines the key bindings of the board preview.
type PreviewKeyMap struct {
	PrevLayer key.Binding
	NextLayer key.Binding
	AllLayers key.Binding
	Stack     key.Binding
	Free      key.Binding
	Step      key.Binding
	Autoplay  key.Binding
	Reset     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k PreviewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevLayer, k.NextLayer, k.Step, k.Autoplay, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k PreviewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevLayer, k.NextLayer, k.AllLayers, k.Stack},
		{k.Free, k.Step, k.Autoplay, k.Reset},
		{k.Help, k.Quit},
	}
}

// DefaultPreviewKeyMap returns default key bindings.
func DefaultPreviewKeyMap() PreviewKeyMap {
	return PreviewKeyMap{
		PrevLayer: key.NewBinding(
			key.WithKeys("left", "h", "down", "j"),
			key.WithHelp("←/h", "layer down"),
		),
		NextLayer: key.NewBinding(
			key.WithKeys("right", "l", "up", "k"),
			key.WithHelp("→/l", "layer up"),
		),
		AllLayers: key.NewBinding(
			key.WithKeys("a", "0"),
			key.WithHelp("a", "all layers"),
		),
		Stack: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stack lower layers"),
		),
		Free: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "highlight free"),
		),
		Step: key.NewBinding(
			key.WithKeys("n", "enter"),
			key.WithHelp("n", "play next tile"),
		),
		Autoplay: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "autoplay"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
