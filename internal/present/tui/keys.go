package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New      key.Binding
	Open     key.Binding
	Save     key.Binding
	SaveAs   key.Binding
	Improve  key.Binding
	External key.Binding
	Edit     key.Binding
	Preview  key.Binding
	Split    key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		New:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Open:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		SaveAs:   key.NewBinding(key.WithKeys("alt+ctrl+s", "f12"), key.WithHelp("f12", "save as")),
		Improve:  key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "improve")),
		External: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "$EDITOR")),
		Edit:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "edit")),
		Preview:  key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "preview")),
		Split:    key.NewBinding(key.WithKeys("f3"), key.WithHelp("f3", "split")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
	}
}

// help lists the bindings shown in the status line when no notice is up.
func (k keyMap) help() []key.Binding {
	return []key.Binding{k.New, k.Open, k.Save, k.SaveAs, k.Improve, k.External, k.Quit}
}
