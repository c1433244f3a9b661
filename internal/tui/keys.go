package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

type loginKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

func (k loginKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Quit}
}

func (k loginKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Submit, k.Quit}}
}

type homeKeys struct {
	table.KeyMap

	Create  key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Copy    key.Binding
	Logout  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k homeKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Create, k.Edit, k.Delete, k.Refresh, k.Help, k.Quit}
}

func (k homeKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.LineUp, k.LineDown, k.PageUp, k.PageDown},
		{k.HalfPageUp, k.HalfPageDown, k.GotoTop, k.GotoBottom},
		{k.Create, k.Edit, k.Delete, k.Refresh},
		{k.Copy, k.Logout, k.Help, k.Quit},
	}
}

type editorKeys struct {
	Next   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func (k editorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Cancel}
}

func (k editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type confirmKeys struct {
	Yes key.Binding
	No  key.Binding
}

func (k confirmKeys) ShortHelp() []key.Binding { return []key.Binding{k.Yes, k.No} }

func (k confirmKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type keyMap struct {
	login     loginKeys
	home      homeKeys
	editor    editorKeys
	confirm   confirmKeys
	forceQuit key.Binding
}

func defaultKeys() keyMap {
	tk := table.DefaultKeyMap()
	// d and u belong to delete; half-page moves stay on ctrl.
	tk.HalfPageDown.SetKeys("ctrl+d")
	tk.HalfPageDown.SetHelp("ctrl+d", "½ page down")
	tk.HalfPageUp.SetKeys("ctrl+u")
	tk.HalfPageUp.SetHelp("ctrl+u", "½ page up")

	return keyMap{
		login: loginKeys{
			Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
			Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
			Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign in")),
			Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		},
		home: homeKeys{
			KeyMap:  tk,
			Create:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create")),
			Edit:    key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
			Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
			Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
			Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
			Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
			Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
			Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		editor: editorKeys{
			Next:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
			Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
			Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
		confirm: confirmKeys{
			Yes: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "delete")),
			No:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "keep")),
		},
		forceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}
