package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/mithrel/marksmart/internal/filesys"
)

// Outcome says what a gateway operation ended up doing.
type Outcome int

const (
	Cancelled Outcome = iota
	Opened
	Imported
	Saved
	Downloaded
)

func (o Outcome) String() string {
	switch o {
	case Opened:
		return "opened"
	case Imported:
		return "imported"
	case Saved:
		return "saved"
	case Downloaded:
		return "downloaded"
	default:
		return "cancelled"
	}
}

// Notifier surfaces non-fatal problems to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(msg string)

func (f NotifyFunc) Notify(msg string) { f(msg) }

// Gateway hides the live-handle backend and the fallback pair behind one
// open/save/saveAs contract.
type Gateway struct {
	Session    *Session
	Picker     filesys.Picker
	Selector   filesys.Selector
	Downloader filesys.Downloader
	Confirmer  Confirmer
	Notifier   Notifier
	Log        *slog.Logger
	// StartIn is passed to pickers as the initial directory.
	StartIn string
}

func (g *Gateway) log() *slog.Logger {
	if g.Log != nil {
		return g.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (g *Gateway) notify(msg string) {
	if g.Notifier != nil {
		g.Notifier.Notify(msg)
	}
}

// capability reports whether the live-handle backend should be attempted.
func (g *Gateway) capability() bool {
	return g.Picker != nil && g.Picker.Available()
}

// Open replaces the session with a file chosen by the user. Capability
// failures other than cancellation fall back to the selection control.
func (g *Gateway) Open(ctx context.Context) (Outcome, error) {
	ok, err := g.Session.guard(ctx, g.Confirmer, promptOpen)
	if err != nil || !ok {
		return Cancelled, err
	}

	if g.capability() {
		out, err := g.openWithPicker(ctx)
		switch {
		case err == nil:
			return out, nil
		case errors.Is(err, filesys.ErrUserCancelled):
			return Cancelled, nil
		default:
			g.log().Warn("file picker failed, falling back to selection control", "err", err)
		}
	}
	return g.openWithSelector(ctx)
}

func (g *Gateway) openWithPicker(ctx context.Context) (Outcome, error) {
	handles, err := g.Picker.ShowOpenFilePicker(ctx, filesys.OpenOptions{
		Types:   []filesys.Accept{filesys.Markdown},
		StartIn: g.StartIn,
	})
	if err != nil {
		return Cancelled, err
	}
	if len(handles) == 0 {
		return Cancelled, filesys.ErrUserCancelled
	}
	h := handles[0]
	f, err := h.File(ctx)
	if err != nil {
		return Cancelled, fmt.Errorf("%w: %s: %v", filesys.ErrReadFailed, h.Name(), err)
	}
	g.Session.Replace(Document{Content: f.Text(), DisplayName: f.Name, FileRef: h})
	g.log().Info("opened file", "path", h.Path(), "bytes", len(f.Data))
	return Opened, nil
}

func (g *Gateway) openWithSelector(ctx context.Context) (Outcome, error) {
	if g.Selector == nil {
		return Cancelled, filesys.ErrCapabilityUnavailable
	}
	sel, ok, err := g.Selector.Select(ctx, filesys.Markdown)
	if err != nil {
		return Cancelled, err
	}
	if !ok {
		return Cancelled, nil
	}
	text, err := readSelected(sel)
	if err != nil {
		g.notify(fmt.Sprintf("Could not read %s: %v", sel.Name, err))
		return Cancelled, fmt.Errorf("%w: %s: %v", filesys.ErrReadFailed, sel.Name, err)
	}
	g.Session.Replace(Document{Content: text, DisplayName: sel.Name})
	g.log().Info("imported file", "name", sel.Name, "bytes", len(text))
	return Imported, nil
}

func readSelected(sel filesys.Selected) (string, error) {
	rc, err := sel.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OpenPath binds the session to path directly, skipping pickers and the
// confirmation guard. A missing file becomes an empty document bound to path
// so the first save creates it.
func (g *Gateway) OpenPath(ctx context.Context, fsys afero.Fs, path string) (Outcome, error) {
	h := filesys.NewHandle(fsys, path)
	f, err := h.File(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		g.Session.Replace(Document{DisplayName: h.Name(), FileRef: h})
		return Opened, nil
	}
	if err != nil {
		return Cancelled, fmt.Errorf("%w: %s: %v", filesys.ErrReadFailed, path, err)
	}
	g.Session.Replace(Document{Content: f.Text(), DisplayName: f.Name, FileRef: h})
	return Opened, nil
}

// Save rewrites the bound file in place, or delegates to SaveAs when there
// is no live handle or the in-place write fails.
func (g *Gateway) Save(ctx context.Context) (Outcome, error) {
	snap := g.Session.Snapshot()
	if snap.FileRef != nil {
		err := writeHandle(ctx, snap.FileRef, snap.Content, true)
		if err == nil {
			g.Session.MarkSaved(snap.Content, nil)
			g.log().Info("saved file", "path", snap.FileRef.Path(), "bytes", len(snap.Content))
			return Saved, nil
		}
		g.log().Error("failed to save to handle", "path", snap.FileRef.Path(), "err", err)
		g.notify(fmt.Sprintf("Failed to save %s: %v", snap.FileRef.Name(), err))
	}
	return g.saveAs(ctx, snap)
}

// SaveAs asks for a new target. Without the capability, or when it fails
// for a reason other than cancellation, the content is downloaded instead.
func (g *Gateway) SaveAs(ctx context.Context) (Outcome, error) {
	return g.saveAs(ctx, g.Session.Snapshot())
}

func (g *Gateway) saveAs(ctx context.Context, snap Document) (Outcome, error) {
	if g.capability() {
		h, err := g.Picker.ShowSaveFilePicker(ctx, filesys.SaveOptions{
			SuggestedName: snap.DisplayName,
			Types:         []filesys.Accept{filesys.Markdown},
			StartIn:       g.StartIn,
		})
		if err == nil {
			err = writeHandle(ctx, h, snap.Content, false)
		}
		switch {
		case err == nil:
			if prev := snap.FileRef; prev != nil && !prev.SameEntry(h) {
				g.log().Info("rebinding document", "from", prev.Path(), "to", h.Path())
			}
			g.Session.MarkSaved(snap.Content, h)
			g.log().Info("saved file as", "path", h.Path(), "bytes", len(snap.Content))
			return Saved, nil
		case errors.Is(err, filesys.ErrUserCancelled):
			return Cancelled, nil
		default:
			g.log().Warn("save picker failed, falling back to download", "err", err)
		}
	}
	return g.download(ctx, snap)
}

// SaveTo writes the current content to h and rebinds the session to it.
func (g *Gateway) SaveTo(ctx context.Context, h filesys.Handle) (Outcome, error) {
	snap := g.Session.Snapshot()
	if err := writeHandle(ctx, h, snap.Content, false); err != nil {
		return Cancelled, err
	}
	g.Session.MarkSaved(snap.Content, h)
	g.log().Info("saved file to", "path", h.Path(), "bytes", len(snap.Content))
	return Saved, nil
}

func (g *Gateway) download(ctx context.Context, snap Document) (Outcome, error) {
	if g.Downloader == nil {
		return Cancelled, filesys.ErrCapabilityUnavailable
	}
	where, err := g.Downloader.Download(ctx, filesys.MarkdownBlob(snap.Content), snap.DisplayName)
	if err != nil {
		g.notify(fmt.Sprintf("Download failed: %v", err))
		return Cancelled, fmt.Errorf("%w: %v", filesys.ErrWriteFailed, err)
	}
	g.Session.MarkSaved(snap.Content, nil)
	g.log().Info("downloaded file", "path", where, "bytes", len(snap.Content))
	return Downloaded, nil
}

// writeHandle streams content to h and commits. inPlace keeps the existing
// bytes and truncates to the new length so a shrinking save leaves no tail.
func writeHandle(ctx context.Context, h filesys.Handle, content string, inPlace bool) error {
	w, err := h.CreateWritable(ctx, filesys.WritableOptions{KeepExistingData: inPlace})
	if err != nil {
		return fmt.Errorf("%w: %v", filesys.ErrWriteFailed, err)
	}
	if _, err := io.WriteString(w, content); err != nil {
		_ = w.Abort()
		return fmt.Errorf("%w: %v", filesys.ErrWriteFailed, err)
	}
	if inPlace {
		if err := w.Truncate(int64(len(content))); err != nil {
			_ = w.Abort()
			return fmt.Errorf("%w: %v", filesys.ErrWriteFailed, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %v", filesys.ErrWriteFailed, err)
	}
	return nil
}
