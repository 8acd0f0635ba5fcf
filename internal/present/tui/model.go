// Package tui is the terminal shell: a toolbar, an edit pane and a live
// preview, plus the dialogs the file gateway asks through.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/afero"

	"github.com/mithrel/marksmart/internal/document"
	"github.com/mithrel/marksmart/internal/editor"
	"github.com/mithrel/marksmart/internal/layout"
	"github.com/mithrel/marksmart/internal/logging"
	"github.com/mithrel/marksmart/internal/render"
	"github.com/mithrel/marksmart/internal/transform"
)

// Options wires the shell to its collaborators. Dialogs must be the same
// instance the Gateway uses as chooser, prompter and confirmer.
type Options struct {
	Session        *document.Session
	Gateway        *document.Gateway
	Dialogs        *Dialogs
	Renderer       render.Renderer
	Transformer    transform.Transformer
	Instruction    string
	Layout         *layout.Controller
	Debounce       time.Duration
	ExternalEditor bool
	// Fs and WorkDir feed the import prompt's suggestions.
	Fs      afero.Fs
	WorkDir string
	Log     *slog.Logger
}

// Run starts the full-screen editor and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type model struct {
	ctx         context.Context
	session     *document.Session
	gateway     *document.Gateway
	dialogs     *Dialogs
	renderer    render.Renderer
	transformer transform.Transformer
	instruction string
	layout      *layout.Controller
	deferred    *render.Deferred
	external    bool
	fs          afero.Fs
	workDir     string
	log         *slog.Logger

	keys    keyMap
	editor  textarea.Model
	preview viewport.Model
	spinner spinner.Model
	sub     <-chan struct{}

	modal   modal
	pending chan dialogReply

	// pane maps between session text and the textarea value. sessionText
	// is the session content the editor pane last agreed with.
	pane        paneText
	sessionText string
	rendered    string
	busy     string
	notice   string
	width    int
	height   int
	quitting bool
}

func newModel(ctx context.Context, o Options) model {
	if o.Dialogs == nil {
		o.Dialogs = NewDialogs()
	}
	if o.Layout == nil {
		o.Layout = layout.New(0, 0)
	}
	if o.Log == nil {
		o.Log = logging.Discard()
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Placeholder = "Start typing markdown…"
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		ctx:         ctx,
		session:     o.Session,
		gateway:     o.Gateway,
		dialogs:     o.Dialogs,
		renderer:    o.Renderer,
		transformer: o.Transformer,
		instruction: o.Instruction,
		layout:      o.Layout,
		deferred:    render.NewDeferred(o.Debounce),
		external:    o.ExternalEditor,
		fs:          o.Fs,
		workDir:     o.WorkDir,
		log:         o.Log,
		keys:        defaultKeyMap(),
		editor:      ta,
		preview:     viewport.New(40, 10),
		spinner:     sp,
		sub:         o.Session.Subscribe(),
	}
	m.loadPane(o.Session.Content())
	m.applyLayout()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.dialogs.listen(),
		m.dialogs.listenNotices(),
		listenSession(m.sub),
		m.scheduleRender(0),
		textarea.Blink,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.layout.ResizeCols(msg.Width) {
			m.log.Debug("narrow viewport, leaving split mode", "cols", msg.Width)
		}
		m.applyLayout()
		if m.modal != nil {
			m.modal.resize(m.width, m.height)
		}
		return m, m.scheduleRender(0)
	case dialogRequestMsg:
		return m.openDialog(msg.req)
	case candidatesMsg:
		if pm, ok := m.modal.(*promptModal); ok && m.pending == msg.reply {
			pm.setCandidates(msg.paths)
		}
		return m, nil
	case noticeMsg:
		m.notice = msg.text
		return m, m.dialogs.listenNotices()
	case sessionChangedMsg:
		cmd := m.syncFromSession()
		return m, tea.Batch(cmd, listenSession(m.sub))
	case opResultMsg:
		m.busy = ""
		m.reportOp(msg)
		cmd := m.syncFromSession()
		return m, cmd
	case improveResultMsg:
		m.busy = ""
		switch {
		case msg.err != nil:
			m.log.Error("improve failed", "err", msg.err)
			m.notice = fmt.Sprintf("AI improve failed: %v", msg.err)
		case msg.result == transform.Skipped:
			m.notice = "Nothing to improve"
		default:
			m.log.Info("improve applied", "dur", msg.dur)
			m.notice = "Improved with AI"
		}
		cmd := m.syncFromSession()
		return m, cmd
	case quitMsg:
		m.busy = ""
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.notice = fmt.Sprintf("Quit failed: %v", msg.err)
			return m, nil
		}
		if !msg.ok {
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case editorPrepMsg:
		return m, execEditor(msg)
	case editorDoneMsg:
		m.busy = ""
		cmd := m.applyExternalEdit(msg)
		return m, cmd
	case renderTickMsg:
		if !m.deferred.Due(msg.ticket) || m.renderer == nil {
			return m, nil
		}
		return m, renderCmd(m.renderer, msg.ticket, m.session.Content(), m.previewWidth())
	case renderedMsg:
		if !m.deferred.Accept(msg.ticket) {
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn("preview render failed", "err", msg.err)
			m.notice = fmt.Sprintf("Preview failed: %v", msg.err)
			return m, nil
		}
		m.rendered = msg.out
		m.preview.SetContent(msg.out)
		return m, nil
	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		if next, cmd, handled := m.handleKey(k); handled {
			return next, cmd
		}
	}
	return m.updatePanes(msg)
}

func (m model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	ctx, g, s := m.ctx, m.gateway, m.session
	switch {
	case key.Matches(k, m.keys.Quit):
		next, cmd := m.start("quit", quitCmd(ctx, s, m.dialogs))
		return next, cmd, true
	case key.Matches(k, m.keys.New):
		next, cmd := m.start("new", newCmd(ctx, s, m.dialogs))
		return next, cmd, true
	case key.Matches(k, m.keys.Open):
		next, cmd := m.start("open", gatewayCmd("open", func() (document.Outcome, error) { return g.Open(ctx) }))
		return next, cmd, true
	case key.Matches(k, m.keys.SaveAs):
		next, cmd := m.start("save as", gatewayCmd("save as", func() (document.Outcome, error) { return g.SaveAs(ctx) }))
		return next, cmd, true
	case key.Matches(k, m.keys.Save):
		next, cmd := m.start("save", gatewayCmd("save", func() (document.Outcome, error) { return g.Save(ctx) }))
		return next, cmd, true
	case key.Matches(k, m.keys.Improve):
		if !transform.Ready(m.transformer) {
			m.notice = "AI improve is not configured"
			return m, nil, true
		}
		next, cmd := m.start("improve", improveCmd(ctx, s, m.transformer, m.instruction))
		return next, cmd, true
	case key.Matches(k, m.keys.External):
		if !m.external {
			m.notice = "External editor is disabled (editor.external)"
			return m, nil, true
		}
		snap := s.Snapshot()
		next, cmd := m.start("editor", externalEditorCmd(snap.DisplayName, snap.Content))
		return next, cmd, true
	case key.Matches(k, m.keys.Edit):
		return m.selectMode(layout.Edit), m.scheduleRender(0), true
	case key.Matches(k, m.keys.Preview):
		return m.selectMode(layout.Preview), m.scheduleRender(0), true
	case key.Matches(k, m.keys.Split):
		return m.selectMode(layout.Split), m.scheduleRender(0), true
	}
	return m, nil, false
}

// start runs an operation unless another one is in flight. Editing stays
// available either way.
func (m model) start(op string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.busy != "" {
		m.notice = fmt.Sprintf("Busy: %s in progress", m.busy)
		return m, nil
	}
	m.busy = op
	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, cmd)
}

func (m model) selectMode(mode layout.Mode) model {
	m.layout.Select(mode)
	m.applyLayout()
	return m
}

func (m model) updatePanes(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.layout.ShowsEditor() {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.sessionText = m.pane.fromPane(after)
		m.session.SetContent(m.sessionText)
		return m, tea.Batch(cmd, m.scheduleRender(m.deferred.Delay))
	}
	return m, cmd
}

// syncFromSession pulls content the editor pane did not author, such as an
// opened file or an AI rewrite.
func (m *model) syncFromSession() tea.Cmd {
	c := m.session.Content()
	if c == m.sessionText {
		return nil
	}
	m.loadPane(c)
	return m.scheduleRender(0)
}

// loadPane puts c into the textarea. The session is never rewritten here;
// content the pane cannot round-trip only changes once the user edits it.
func (m *model) loadPane(c string) {
	v, p := toPane(c)
	m.pane = p
	m.sessionText = c
	m.editor.SetValue(v)
	if p.fromPane(m.editor.Value()) != c {
		m.log.Warn("document does not round-trip through the edit pane", "name", m.session.DisplayName())
		m.notice = "Mixed line endings or control characters will be normalized if you edit " + m.session.DisplayName()
	}
}

// scheduleRender takes a ticket and fires its tick after delay.
func (m model) scheduleRender(delay time.Duration) tea.Cmd {
	ticket := m.deferred.Request()
	if delay <= 0 {
		return func() tea.Msg { return renderTickMsg{ticket: ticket} }
	}
	return renderTickCmd(delay, ticket)
}

func (m *model) reportOp(msg opResultMsg) {
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return
		}
		m.log.Error("operation failed", "op", msg.op, "err", msg.err)
		m.notice = fmt.Sprintf("%s failed: %v", capitalize(msg.op), msg.err)
		return
	}
	name := m.session.DisplayName()
	switch msg.outcome {
	case document.Opened:
		if msg.op == "new" {
			m.notice = "New document"
		} else {
			m.notice = "Opened " + name
		}
	case document.Imported:
		m.notice = "Imported " + name + " (saving will download a copy)"
	case document.Saved:
		m.notice = "Saved " + name
	case document.Downloaded:
		m.notice = "Downloaded " + name
	}
	m.log.Debug("operation finished", "op", msg.op, "outcome", msg.outcome.String(), "dur", msg.dur)
}

func (m *model) applyExternalEdit(msg editorDoneMsg) tea.Cmd {
	if msg.err != nil {
		if msg.path != "" {
			_ = os.Remove(msg.path)
		}
		m.log.Error("external editor failed", "err", msg.err)
		m.notice = fmt.Sprintf("Editor failed: %v", msg.err)
		return nil
	}
	out, changed, err := editor.ReadBack(msg.path, msg.initial)
	if err != nil {
		m.notice = fmt.Sprintf("Editor failed: %v", err)
		return nil
	}
	if !changed {
		m.notice = "No changes from editor"
		return nil
	}
	m.session.SetContent(string(out))
	m.notice = "Applied changes from editor"
	return m.syncFromSession()
}

func (m model) openDialog(req dialogRequest) (tea.Model, tea.Cmd) {
	switch req.kind {
	case dialogOpen:
		m.modal = newOpenModal(req, m.width, m.height)
	case dialogSave:
		value := req.suggested
		if req.startIn != "" {
			value = filepath.Join(req.startIn, value)
		}
		m.modal = newPromptModal(req.prompt, value, nil, m.width, m.height)
	case dialogImport:
		title := req.prompt
		if req.accept.Description != "" {
			title += " (" + req.accept.Description + ")"
		}
		pm := newPromptModal(title, "", nil, m.width, m.height)
		pm.scanning = true
		m.modal = pm
		m.pending = req.reply
		m.editor.Blur()
		return m, tea.Batch(pm.init(), scanCandidatesCmd(m.fs, m.workDir, req.accept, req.reply))
	default:
		m.modal = newConfirmModal(req.prompt, m.width, m.height)
	}
	m.pending = req.reply
	m.editor.Blur()
	return m, m.modal.init()
}

func (m model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	done, reply, cmd := m.modal.update(msg)
	if !done {
		return m, cmd
	}
	if m.pending != nil {
		m.pending <- reply
	}
	m.modal, m.pending = nil, nil
	if m.layout.ShowsEditor() {
		cmd = m.editor.Focus()
	}
	return m, tea.Batch(cmd, m.dialogs.listen())
}

func (m *model) applyLayout() {
	bodyH := max(3, m.height-2)
	ew, pw := m.layout.Panes(m.width)
	if ew > 0 {
		m.editor.SetWidth(max(10, ew-2))
		m.editor.SetHeight(max(1, bodyH-2))
	}
	if pw > 0 {
		m.preview.Width = max(10, pw-2)
		m.preview.Height = max(1, bodyH-2)
	}
	if m.layout.ShowsEditor() && m.modal == nil {
		m.editor.Focus()
	} else {
		m.editor.Blur()
	}
}

// previewWidth is the glamour wrap width for the preview pane.
func (m model) previewWidth() int {
	if m.width <= 0 {
		return 80
	}
	_, pw := m.layout.Panes(m.width)
	if pw == 0 {
		pw = m.width
	}
	return max(10, pw-4)
}

var (
	barStyle      = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252"))
	activeMode    = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("229")).Padding(0, 1)
	inactiveMode  = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	focusedPane   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63"))
	unfocusedPane = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle   = lipgloss.NewStyle().Faint(true)
)

func (m model) toolbar() string {
	var modes []string
	for _, mode := range []layout.Mode{layout.Edit, layout.Preview, layout.Split} {
		label := capitalize(mode.String())
		if mode == m.layout.Mode() {
			modes = append(modes, activeMode.Render(label))
		} else {
			modes = append(modes, inactiveMode.Render(label))
		}
	}
	right := strings.Join(modes, "")
	if m.layout.ShowsPreview() && m.deferred.Pending() {
		right = "rendering… " + right
	}
	if m.busy != "" {
		right = m.spinner.View() + " " + m.busy + "… " + right
	}

	snap := m.session.Snapshot()
	name := snap.DisplayName
	if snap.Dirty {
		name += " ●"
	}
	left := " MarkSmart │ "
	width := m.width
	if width <= 0 {
		width = 80
	}
	avail := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	name = truncate.StringWithTail(name, uint(max(avail, 4)), "…")

	space := max(1, width-lipgloss.Width(left)-lipgloss.Width(name)-lipgloss.Width(right))
	return barStyle.Render(left + name + strings.Repeat(" ", space) + right)
}

func (m model) body() string {
	var panes []string
	if m.layout.ShowsEditor() {
		panes = append(panes, focusedPane.Render(m.editor.View()))
	}
	if m.layout.ShowsPreview() {
		style := unfocusedPane
		if !m.layout.ShowsEditor() {
			style = focusedPane
		}
		panes = append(panes, style.Width(m.preview.Width).Render(m.preview.View()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func (m model) statusLine() string {
	if m.notice != "" {
		return statusStyle.Render(" " + m.notice)
	}
	var parts []string
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	line := " " + strings.Join(parts, " • ")
	if m.width > 0 {
		line = truncate.StringWithTail(line, uint(m.width), "…")
	}
	return statusStyle.Render(line)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	base := lipgloss.JoinVertical(lipgloss.Left, m.toolbar(), m.body(), m.statusLine())
	if m.modal != nil {
		return renderOverlay(base, m.modal.view(), m.width, m.height)
	}
	return base
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
