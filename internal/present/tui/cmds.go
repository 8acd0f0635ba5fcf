package tui

import (
	"context"
	"os/exec"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/marksmart/internal/document"
	"github.com/mithrel/marksmart/internal/editor"
	"github.com/mithrel/marksmart/internal/render"
	"github.com/mithrel/marksmart/internal/transform"
)

// opResultMsg conveys the outcome of a file operation back to Update.
type opResultMsg struct {
	op      string
	outcome document.Outcome
	err     error
	dur     time.Duration
}

// improveResultMsg conveys the outcome of the AI transform.
type improveResultMsg struct {
	result transform.Result
	err    error
	dur    time.Duration
}

// quitMsg reports whether discarding unsaved changes was confirmed.
type quitMsg struct {
	ok  bool
	err error
}

// sessionChangedMsg fires after any session mutation.
type sessionChangedMsg struct{}

// renderTickMsg fires when the debounce for ticket elapses.
type renderTickMsg struct {
	ticket uint64
}

// renderedMsg carries a finished preview render.
type renderedMsg struct {
	ticket uint64
	out    string
	err    error
}

// editorPrepMsg signals that the editor should be launched.
type editorPrepMsg struct {
	path    string
	initial []byte
	cmd     *exec.Cmd
}

// editorDoneMsg signals that the external editor exited.
type editorDoneMsg struct {
	path    string
	initial []byte
	err     error
}

func newCmd(ctx context.Context, s *document.Session, c document.Confirmer) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ok, err := s.NewDocument(ctx, c)
		out := document.Cancelled
		if ok {
			out = document.Opened
		}
		return opResultMsg{op: "new", outcome: out, err: err, dur: time.Since(start)}
	}
}

// gatewayCmd runs one gateway operation off the event loop. The gateway may
// block on dialogs, which are answered through Update.
func gatewayCmd(op string, fn func() (document.Outcome, error)) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		out, err := fn()
		return opResultMsg{op: op, outcome: out, err: err, dur: time.Since(start)}
	}
}

func improveCmd(ctx context.Context, s *document.Session, t transform.Transformer, instruction string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		res, err := transform.Improve(ctx, s, t, instruction)
		return improveResultMsg{result: res, err: err, dur: time.Since(start)}
	}
}

func quitCmd(ctx context.Context, s *document.Session, c document.Confirmer) tea.Cmd {
	return func() tea.Msg {
		if !s.Dirty() {
			return quitMsg{ok: true}
		}
		ok, err := c.Confirm(ctx, "You have unsaved changes. Quit anyway?")
		return quitMsg{ok: ok, err: err}
	}
}

func listenSession(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		<-ch
		return sessionChangedMsg{}
	}
}

func renderTickCmd(delay time.Duration, ticket uint64) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return renderTickMsg{ticket: ticket}
	})
}

func renderCmd(r render.Renderer, ticket uint64, content string, width int) tea.Cmd {
	return func() tea.Msg {
		out, err := r.Render(content, width)
		return renderedMsg{ticket: ticket, out: out, err: err}
	}
}

// externalEditorCmd writes a scratch copy and resolves the editor command.
func externalEditorCmd(name, content string) tea.Cmd {
	return func() tea.Msg {
		path, err := editor.ScratchPath(name)
		if err != nil {
			return editorDoneMsg{err: err}
		}
		initial := []byte(content)
		if err := editor.Prepare(path, initial); err != nil {
			return editorDoneMsg{err: err}
		}
		cmd, err := editor.Command(path)
		if err != nil {
			return editorDoneMsg{path: path, initial: initial, err: err}
		}
		return editorPrepMsg{path: path, initial: initial, cmd: cmd}
	}
}

// execEditor suspends the program while the editor owns the terminal.
func execEditor(msg editorPrepMsg) tea.Cmd {
	return tea.ExecProcess(msg.cmd, func(err error) tea.Msg {
		return editorDoneMsg{path: msg.path, initial: msg.initial, err: err}
	})
}
