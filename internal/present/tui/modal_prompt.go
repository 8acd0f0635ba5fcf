package tui

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/afero"

	"github.com/mithrel/marksmart/internal/filesys"
)

const maxSuggestions = 6

// scanLimits bounds the suggestion walk. depth counts directory levels
// below the root; entries counts everything visited.
type scanLimits struct {
	depth   int
	entries int
	matches int
}

var defaultScanLimits = scanLimits{depth: 6, entries: 20000, matches: 2000}

// promptModal asks for a path. With candidates it offers fuzzy suggestions
// that tab accepts.
type promptModal struct {
	title      string
	input      textinput.Model
	box        lipglossv2.Style
	candidates []string
	matches    []string
	sel        int
	scanning   bool
}

func newPromptModal(title, value string, candidates []string, termW, termH int) *promptModal {
	ti := textinput.New()
	ti.Prompt = "path: "
	ti.Placeholder = "notes/todo.md"
	ti.SetValue(value)
	ti.CursorEnd()
	m := &promptModal{title: title, input: ti, candidates: candidates, sel: -1}
	m.refresh()
	m.resize(termW, termH)
	return m
}

func (m *promptModal) init() tea.Cmd { return m.input.Focus() }

// setCandidates installs the result of a background scan.
func (m *promptModal) setCandidates(paths []string) {
	m.scanning = false
	m.candidates = paths
	m.refresh()
}

func (m *promptModal) resize(termW, termH int) {
	box, innerW, _ := modalBox(termW, termH, 0.6, 0.4, 40, 90, 8, 16)
	m.box = box
	m.input.Width = max(12, innerW-lipgloss.Width(m.input.Prompt)-1)
}

func (m *promptModal) refresh() {
	m.matches = m.matches[:0]
	m.sel = -1
	if len(m.candidates) == 0 {
		return
	}
	pattern := strings.TrimSpace(m.input.Value())
	if pattern == "" {
		m.matches = append(m.matches, m.candidates[:min(maxSuggestions, len(m.candidates))]...)
		return
	}
	for i, match := range fuzzy.Find(pattern, m.candidates) {
		if i == maxSuggestions {
			break
		}
		m.matches = append(m.matches, match.Str)
	}
}

func (m *promptModal) update(msg tea.Msg) (bool, dialogReply, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc", "ctrl+c", "ctrl+q":
			return true, dialogReply{}, nil
		case "enter":
			v := strings.TrimSpace(m.input.Value())
			if m.sel >= 0 && m.sel < len(m.matches) {
				v = m.matches[m.sel]
			}
			return true, dialogReply{value: v, ok: v != ""}, nil
		case "tab":
			if len(m.matches) > 0 {
				pick := m.matches[0]
				if m.sel >= 0 && m.sel < len(m.matches) {
					pick = m.matches[m.sel]
				}
				m.input.SetValue(pick)
				m.input.CursorEnd()
				m.refresh()
			}
			return false, dialogReply{}, nil
		case "down", "ctrl+n":
			if len(m.matches) > 0 {
				m.sel = (m.sel + 1) % len(m.matches)
			}
			return false, dialogReply{}, nil
		case "up", "ctrl+p":
			if len(m.matches) > 0 {
				m.sel = (m.sel - 1 + len(m.matches)) % len(m.matches)
			}
			return false, dialogReply{}, nil
		}
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refresh()
	}
	return false, dialogReply{}, cmd
}

func (m *promptModal) view() string {
	header := lipgloss.NewStyle().Bold(true).Render(m.title)
	lines := []string{header, "", m.input.View()}
	if m.scanning {
		lines = append(lines, "", lipgloss.NewStyle().Faint(true).Render("looking for markdown files…"))
	}
	if len(m.matches) > 0 {
		lines = append(lines, "")
		selected := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
		for i, s := range m.matches {
			if i == m.sel {
				lines = append(lines, selected.Render("> "+s))
			} else {
				lines = append(lines, "  "+s)
			}
		}
	}
	help := "enter=confirm • esc=cancel"
	if len(m.candidates) > 0 {
		help = "enter=confirm • tab=complete • ↑/↓=pick • esc=cancel"
	}
	lines = append(lines, "", lipgloss.NewStyle().Faint(true).Render(help))
	return m.box.Render(strings.Join(lines, "\n"))
}

// candidatesMsg delivers suggestions for the prompt answering reply.
type candidatesMsg struct {
	reply chan dialogReply
	paths []string
}

// scanCandidatesCmd walks root off the event loop.
func scanCandidatesCmd(fsys afero.Fs, root string, accept filesys.Accept, reply chan dialogReply) tea.Cmd {
	return func() tea.Msg {
		return candidatesMsg{reply: reply, paths: markdownCandidates(fsys, root, accept, defaultScanLimits)}
	}
}

// markdownCandidates lists accepted files under root for prompt suggestions.
// Hidden directories are skipped and the walk stops at the given limits.
func markdownCandidates(fsys afero.Fs, root string, accept filesys.Accept, lim scanLimits) []string {
	if fsys == nil {
		return nil
	}
	if root == "" {
		root = "."
	}
	var out []string
	visited := 0
	_ = afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		visited++
		if visited > lim.entries {
			return filepath.SkipAll
		}
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(info.Name(), ".") || dirLevel(root, path) > lim.depth {
				return filepath.SkipDir
			}
			return nil
		}
		if !accept.Matches(path) {
			return nil
		}
		out = append(out, path)
		if len(out) >= lim.matches {
			return filepath.SkipAll
		}
		return nil
	})
	return out
}

// dirLevel is 1 for a direct child directory of root.
func dirLevel(root, dir string) int {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
