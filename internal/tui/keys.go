package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Edit        key.Binding
	Escape      key.Binding
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Tab         key.Binding
	Backspace   key.Binding
	Delete      key.Binding
	Left        key.Binding
	Right       key.Binding
	Home        key.Binding
	End         key.Binding
	ExtendLeft  key.Binding
	ExtendRight key.Binding
	TagMenu     key.Binding
	Copy        key.Binding
	Leave       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Edit:        key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit formula")),
		Escape:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Up:          key.NewBinding(key.WithKeys("up", "ctrl+p")),
		Down:        key.NewBinding(key.WithKeys("down", "ctrl+n")),
		Enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Tab:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tag")),
		Backspace:   key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
		Delete:      key.NewBinding(key.WithKeys("delete", "ctrl+d")),
		Left:        key.NewBinding(key.WithKeys("left", "ctrl+b")),
		Right:       key.NewBinding(key.WithKeys("right")),
		Home:        key.NewBinding(key.WithKeys("home", "ctrl+a")),
		End:         key.NewBinding(key.WithKeys("end", "ctrl+e")),
		ExtendLeft:  key.NewBinding(key.WithKeys("shift+left")),
		ExtendRight: key.NewBinding(key.WithKeys("shift+right")),
		TagMenu:     key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "date range")),
		Copy:        key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy formula")),
		Leave:       key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}
