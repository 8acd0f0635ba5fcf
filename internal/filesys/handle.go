package filesys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// swapSuffix marks the scratch file a Writable stages bytes in until Close.
const swapSuffix = ".crswap"

// Handle is a live, rewritable reference to one file.
type Handle interface {
	Name() string
	Path() string
	File(ctx context.Context) (File, error)
	CreateWritable(ctx context.Context, opts WritableOptions) (Writable, error)
	SameEntry(other Handle) bool
}

// File is a fully read snapshot of a handle's bytes.
type File struct {
	Name string
	Data []byte
}

// Text returns the file contents as a string.
func (f File) Text() string { return string(f.Data) }

// WritableOptions mirrors createWritable options.
type WritableOptions struct {
	// KeepExistingData seeds the stream with the file's current bytes.
	KeepExistingData bool
}

// Writable is a write stream whose bytes only reach the target on Close.
type Writable interface {
	io.Writer
	Truncate(size int64) error
	// Close commits the staged bytes to the target.
	Close() error
	// Abort discards the staged bytes and leaves the target untouched.
	Abort() error
}

type fsHandle struct {
	fs   afero.Fs
	path string
}

// NewHandle returns a handle for path on fsys.
func NewHandle(fsys afero.Fs, path string) Handle {
	return &fsHandle{fs: fsys, path: filepath.Clean(path)}
}

func (h *fsHandle) Name() string { return filepath.Base(h.path) }
func (h *fsHandle) Path() string { return h.path }

func (h *fsHandle) File(ctx context.Context) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	data, err := afero.ReadFile(h.fs, h.path)
	if err != nil {
		return File{}, err
	}
	return File{Name: h.Name(), Data: data}, nil
}

func (h *fsHandle) SameEntry(other Handle) bool {
	o, ok := other.(*fsHandle)
	if !ok || o == nil {
		return false
	}
	return o.fs == h.fs && o.path == h.path
}

func (h *fsHandle) CreateWritable(ctx context.Context, opts WritableOptions) (Writable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	perm := fs.FileMode(0o644)
	var existing []byte
	if st, err := h.fs.Stat(h.path); err == nil {
		if st.IsDir() {
			return nil, fmt.Errorf("%s is a directory", h.path)
		}
		perm = st.Mode().Perm()
		if opts.KeepExistingData {
			if existing, err = afero.ReadFile(h.fs, h.path); err != nil {
				return nil, err
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	swap := h.path + swapSuffix
	f, err := h.fs.OpenFile(swap, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, err
	}
	w := &swapWritable{fs: h.fs, target: h.path, swap: swap, f: f}
	if len(existing) > 0 {
		if _, err := f.Write(existing); err != nil {
			_ = w.Abort()
			return nil, err
		}
	}
	return w, nil
}

// swapWritable stages writes in target+".crswap" and renames on Close.
type swapWritable struct {
	fs     afero.Fs
	target string
	swap   string
	f      afero.File
	pos    int64
	done   bool
}

var errStreamClosed = errors.New("writable stream closed")

func (w *swapWritable) Write(p []byte) (int, error) {
	if w.done {
		return 0, errStreamClosed
	}
	n, err := w.f.WriteAt(p, w.pos)
	w.pos += int64(n)
	return n, err
}

func (w *swapWritable) Truncate(size int64) error {
	if w.done {
		return errStreamClosed
	}
	if err := w.f.Truncate(size); err != nil {
		return err
	}
	if w.pos > size {
		w.pos = size
	}
	return nil
}

func (w *swapWritable) Close() error {
	if w.done {
		return errStreamClosed
	}
	w.done = true
	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		_ = w.fs.Remove(w.swap)
		return err
	}
	if err := w.f.Close(); err != nil {
		_ = w.fs.Remove(w.swap)
		return err
	}
	if err := w.fs.Rename(w.swap, w.target); err != nil {
		_ = w.fs.Remove(w.swap)
		return err
	}
	return nil
}

func (w *swapWritable) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.f.Close()
	return w.fs.Remove(w.swap)
}
