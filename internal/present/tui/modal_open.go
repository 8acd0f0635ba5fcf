package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// modal is a foreground dialog answering one dialogRequest.
type modal interface {
	init() tea.Cmd
	// update returns done once the user answered or dismissed the dialog.
	update(msg tea.Msg) (done bool, reply dialogReply, cmd tea.Cmd)
	resize(termW, termH int)
	view() string
}

// openModal is the in-terminal open picker, limited to accepted extensions.
type openModal struct {
	title  string
	fp     filepicker.Model
	box    lipglossv2.Style
	notice string
}

func newOpenModal(req dialogRequest, termW, termH int) *openModal {
	fp := filepicker.New()
	fp.CurrentDirectory = "."
	if strings.TrimSpace(req.startIn) != "" {
		fp.CurrentDirectory = req.startIn
	}
	fp.AllowedTypes = append([]string{}, req.accept.Extensions...)
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AutoHeight = false
	// esc dismisses the dialog instead of walking up a directory.
	fp.KeyMap.Back = key.NewBinding(key.WithKeys("h", "backspace", "left"), key.WithHelp("h", "back"))

	title := req.prompt
	if req.accept.Description != "" {
		title += " (" + req.accept.Description + ")"
	}
	m := &openModal{title: title, fp: fp}
	m.resize(termW, termH)
	return m
}

func (m *openModal) init() tea.Cmd { return m.fp.Init() }

func (m *openModal) resize(termW, termH int) {
	box, _, innerH := modalBox(termW, termH, 0.6, 0.7, 40, 100, 10, 30)
	m.box = box
	// header, current dir, blank, help
	m.fp.Height = max(3, innerH-4)
}

func (m *openModal) update(msg tea.Msg) (bool, dialogReply, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc", "ctrl+c", "ctrl+q":
			return true, dialogReply{}, nil
		}
	}
	var cmd tea.Cmd
	m.fp, cmd = m.fp.Update(msg)
	if ok, path := m.fp.DidSelectFile(msg); ok {
		return true, dialogReply{value: path, ok: true}, nil
	}
	if ok, path := m.fp.DidSelectDisabledFile(msg); ok {
		m.notice = path + " is not a markdown file"
	}
	return false, dialogReply{}, cmd
}

func (m *openModal) view() string {
	header := lipgloss.NewStyle().Bold(true).Render(m.title)
	dir := lipgloss.NewStyle().Faint(true).Render(m.fp.CurrentDirectory)
	help := "enter=open • h/←=up • esc=cancel"
	if m.notice != "" {
		help = m.notice
	}
	parts := []string{header, dir, m.fp.View(), lipgloss.NewStyle().Faint(true).Render(help)}
	return m.box.Render(strings.Join(parts, "\n"))
}
