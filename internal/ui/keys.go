package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the panel bindings used while browsing. Enter and Escape are
// fixed while renaming.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Rename key.Binding
	Delete key.Binding
	New    key.Binding
}

// DefaultKeyMap returns the standard panel bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r", "f2"),
			key.WithHelp("r", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
	}
}

// ShortHelp returns the bindings shown in the help line
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Rename, k.Delete, k.New}
}
