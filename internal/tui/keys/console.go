package keys

import "github.com/charmbracelet/bubbles/key"

// ConsoleKeys holds the vim-like bindings for the interactive console
type ConsoleKeys struct {
	Quit             key.Binding
	Help             key.Binding
	InsertMode       key.Binding
	Escape           key.Binding
	Enter            key.Binding
	Up               key.Binding
	Down             key.Binding
	Clear            key.Binding
	ToggleTimestamps key.Binding
	RefreshDevice    key.Binding
}

func NewConsoleKeys() ConsoleKeys {
	return ConsoleKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		InsertMode: key.NewBinding(
			key.WithKeys("i", "I"),
			key.WithHelp("i", "insert mode"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "normal mode"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send command"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "history up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "history down"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear buffer"),
		),
		ToggleTimestamps: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle timestamps"),
		),
		RefreshDevice: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "refresh device info"),
		),
	}
}

func (k ConsoleKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.Enter, k.Quit}
}

func (k ConsoleKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Enter},
		{k.Clear, k.ToggleTimestamps, k.RefreshDevice},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}
