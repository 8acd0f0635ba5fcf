package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/marksmart/internal/filesys"
)

type dialogKind int

const (
	dialogOpen dialogKind = iota
	dialogSave
	dialogImport
	dialogConfirm
)

// dialogReply is what the user answered. ok is false on dismissal.
type dialogReply struct {
	value string
	ok    bool
}

// dialogRequest is posted by a blocked gateway goroutine and answered by
// Update once the modal closes.
type dialogRequest struct {
	kind      dialogKind
	prompt    string
	startIn   string
	suggested string
	accept    filesys.Accept
	reply     chan dialogReply
}

// dialogRequestMsg delivers a dialogRequest to Update.
type dialogRequestMsg struct {
	req dialogRequest
}

// noticeMsg carries a user-visible, non-fatal message.
type noticeMsg struct {
	text string
}

// Dialogs bridges blocking gateway calls onto the program's event loop. It
// serves as filesys.Chooser, filesys.PathPrompter, document.Confirmer and
// document.Notifier.
type Dialogs struct {
	requests chan dialogRequest
	notices  chan string
}

func NewDialogs() *Dialogs {
	return &Dialogs{
		requests: make(chan dialogRequest),
		notices:  make(chan string, 16),
	}
}

func (d *Dialogs) ask(ctx context.Context, req dialogRequest) (dialogReply, error) {
	req.reply = make(chan dialogReply, 1)
	select {
	case d.requests <- req:
	case <-ctx.Done():
		return dialogReply{}, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r, nil
	case <-ctx.Done():
		return dialogReply{}, ctx.Err()
	}
}

func (d *Dialogs) ChooseOpen(ctx context.Context, opts filesys.OpenOptions) (string, error) {
	r, err := d.ask(ctx, dialogRequest{kind: dialogOpen, prompt: "Open", startIn: opts.StartIn, accept: firstAccept(opts.Types)})
	if err != nil {
		return "", err
	}
	if !r.ok {
		return "", filesys.ErrUserCancelled
	}
	return r.value, nil
}

func (d *Dialogs) ChooseSave(ctx context.Context, opts filesys.SaveOptions) (string, error) {
	r, err := d.ask(ctx, dialogRequest{
		kind:      dialogSave,
		prompt:    "Save as",
		startIn:   opts.StartIn,
		suggested: opts.SuggestedName,
		accept:    firstAccept(opts.Types),
	})
	if err != nil {
		return "", err
	}
	if !r.ok {
		return "", filesys.ErrUserCancelled
	}
	return r.value, nil
}

func (d *Dialogs) PromptPath(ctx context.Context, accept filesys.Accept) (string, bool, error) {
	r, err := d.ask(ctx, dialogRequest{kind: dialogImport, prompt: "Import", accept: accept})
	if err != nil {
		return "", false, err
	}
	return r.value, r.ok && r.value != "", nil
}

func (d *Dialogs) Confirm(ctx context.Context, prompt string) (bool, error) {
	r, err := d.ask(ctx, dialogRequest{kind: dialogConfirm, prompt: prompt})
	if err != nil {
		return false, err
	}
	return r.ok, nil
}

// Notify queues msg for the status line; it never blocks.
func (d *Dialogs) Notify(msg string) {
	select {
	case d.notices <- msg:
	default:
	}
}

// listen waits for the next dialog request. Update re-arms it after the
// current modal closes so only one dialog is ever on screen.
func (d *Dialogs) listen() tea.Cmd {
	return func() tea.Msg {
		return dialogRequestMsg{req: <-d.requests}
	}
}

func (d *Dialogs) listenNotices() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{text: <-d.notices}
	}
}

func firstAccept(types []filesys.Accept) filesys.Accept {
	if len(types) == 0 {
		return filesys.Accept{}
	}
	return types[0]
}
