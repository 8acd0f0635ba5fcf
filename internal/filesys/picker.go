package filesys

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

type OpenOptions struct {
	Types   []Accept
	StartIn string
}

type SaveOptions struct {
	SuggestedName string
	Types         []Accept
	StartIn       string
}

// Picker is the live-handle backend: dialogs that hand back rewritable handles.
type Picker interface {
	Available() bool
	ShowOpenFilePicker(ctx context.Context, opts OpenOptions) ([]Handle, error)
	ShowSaveFilePicker(ctx context.Context, opts SaveOptions) (Handle, error)
}

// Chooser is the interactive half of a picker. Implementations return
// ErrUserCancelled when the dialog is dismissed.
type Chooser interface {
	ChooseOpen(ctx context.Context, opts OpenOptions) (string, error)
	ChooseSave(ctx context.Context, opts SaveOptions) (string, error)
}

// FSPicker turns paths from a Chooser into afero-backed handles.
type FSPicker struct {
	Fs      afero.Fs
	Chooser Chooser
	Enabled bool
}

func (p *FSPicker) Available() bool {
	return p != nil && p.Enabled && p.Chooser != nil && p.Fs != nil
}

func (p *FSPicker) ShowOpenFilePicker(ctx context.Context, opts OpenOptions) ([]Handle, error) {
	if !p.Available() {
		return nil, ErrCapabilityUnavailable
	}
	path, err := p.Chooser.ChooseOpen(ctx, opts)
	if err != nil {
		return nil, err
	}
	if !matchesAny(opts.Types, path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotMarkdown)
	}
	st, err := p.Fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return []Handle{NewHandle(p.Fs, path)}, nil
}

func (p *FSPicker) ShowSaveFilePicker(ctx context.Context, opts SaveOptions) (Handle, error) {
	if !p.Available() {
		return nil, ErrCapabilityUnavailable
	}
	path, err := p.Chooser.ChooseSave(ctx, opts)
	if err != nil {
		return nil, err
	}
	if st, err := p.Fs.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, opts.SuggestedName)
	}
	dir := filepath.Dir(path)
	st, err := p.Fs.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return NewHandle(p.Fs, path), nil
}

// Selected is a content-only file chosen through the fallback control.
type Selected struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Selector is the fallback read control. ok is false when the user dismissed
// it without choosing a file.
type Selector interface {
	Select(ctx context.Context, accept Accept) (sel Selected, ok bool, err error)
}

// PathPrompter asks the user for a path. ok is false on dismissal.
type PathPrompter interface {
	PromptPath(ctx context.Context, accept Accept) (path string, ok bool, err error)
}

// FSSelector adapts a PathPrompter into a Selector reading from Fs. Paths
// that accept rejects fail with ErrNotMarkdown.
type FSSelector struct {
	Fs     afero.Fs
	Prompt PathPrompter
}

func (s *FSSelector) Select(ctx context.Context, accept Accept) (Selected, bool, error) {
	path, ok, err := s.Prompt.PromptPath(ctx, accept)
	if err != nil || !ok {
		return Selected{}, false, err
	}
	if !accept.Matches(path) {
		return Selected{}, false, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotMarkdown)
	}
	fsys := s.Fs
	return Selected{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return fsys.Open(path) },
	}, true, nil
}
