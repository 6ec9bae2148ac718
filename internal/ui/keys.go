package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"bible-tui/internal/ui/listview"
)

type keyMap struct {
	quit   key.Binding
	menu   key.Binding
	reload key.Binding
	help   key.Binding
	list   listview.KeyMap
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		menu: key.NewBinding(
			key.WithKeys("m", "tab"),
			key.WithHelp("m", "jump to..."),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		list: listview.DefaultKeyMap(),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.menu, k.list.Down, k.list.Up, k.list.PageDown, k.reload, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.list.Up, k.list.Down, k.list.PageUp, k.list.PageDown},
		{k.list.HalfUp, k.list.HalfDown, k.list.Top, k.list.Bottom},
		{k.menu, k.reload, k.help, k.quit},
	}
}
