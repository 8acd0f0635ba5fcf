// Package editor hands the document to the user's $VISUAL/$EDITOR and reads
// the result back.
package editor

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoEditor is returned when neither the environment nor PATH names an editor.
var ErrNoEditor = errors.New("no editor found; set $EDITOR or $VISUAL")

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := strings.TrimSpace(os.Getenv("VISUAL")); v != "" {
		return v, nil
	}
	if e := strings.TrimSpace(os.Getenv("EDITOR")); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", ErrNoEditor
}

// ScratchPath returns a private temp path for editing a document named name.
// The markdown extension is kept so editors pick the right syntax.
func ScratchPath(name string) (string, error) {
	base := sanitizeName(name)
	if ext := strings.ToLower(filepath.Ext(base)); ext != ".md" && ext != ".markdown" {
		base += ".md"
	}
	base = "marksmart-" + base
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "marksmart", base), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "marksmart", "edit", base), nil
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	s := strings.Trim(b.String(), ".")
	if s == "" {
		return "untitled"
	}
	return s
}

func writeFile0600(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// Prepare writes initial to path with private permissions.
func Prepare(path string, initial []byte) error {
	return writeFile0600(path, initial)
}

// Command builds the editor invocation for path without running it. Values
// of VISUAL/EDITOR may carry flags, so they run through a shell wrapper.
func Command(path string) (*exec.Cmd, error) {
	ed := strings.TrimSpace(os.Getenv("VISUAL"))
	if ed == "" {
		ed = strings.TrimSpace(os.Getenv("EDITOR"))
	}
	if ed != "" {
		cmd := exec.Command("sh", "-c", "$EDITORCMD \"$FILEPATH\"")
		cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
		return cmd, nil
	}
	prog, err := PreferredEditor()
	if err != nil {
		return nil, err
	}
	return exec.Command(prog, path), nil
}

// ReadBack reads the edited file and reports whether it differs from initial.
// The scratch file is removed afterwards.
func ReadBack(path string, initial []byte) ([]byte, bool, error) {
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	_ = os.Remove(path)
	return out, !bytes.Equal(out, initial), nil
}
