package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// confirmModal is a y/n question guarding a destructive action.
type confirmModal struct {
	prompt string
	box    lipglossv2.Style
}

func newConfirmModal(prompt string, termW, termH int) *confirmModal {
	m := &confirmModal{prompt: prompt}
	m.resize(termW, termH)
	return m
}

func (m *confirmModal) init() tea.Cmd { return nil }

func (m *confirmModal) resize(termW, termH int) {
	m.box, _, _ = modalBox(termW, termH, 0.5, 0.25, 36, 70, 6, 9)
}

func (m *confirmModal) update(msg tea.Msg) (bool, dialogReply, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, dialogReply{}, nil
	}
	switch strings.ToLower(k.String()) {
	case "y", "enter":
		return true, dialogReply{ok: true}, nil
	case "n", "esc", "ctrl+c", "ctrl+q":
		return true, dialogReply{}, nil
	}
	return false, dialogReply{}, nil
}

func (m *confirmModal) view() string {
	body := strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Render("Confirm"),
		"",
		m.prompt,
		"",
		lipgloss.NewStyle().Faint(true).Render("y/enter=yes • n/esc=no"),
	}, "\n")
	return m.box.Render(body)
}
