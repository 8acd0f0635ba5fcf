package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScratchPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	path, err := ScratchPath("My Notes.md")
	if err != nil {
		t.Fatalf("ScratchPath error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, "marksmart") {
		t.Fatalf("ScratchPath dir=%q", filepath.Dir(path))
	}
	if base := filepath.Base(path); base != "marksmart-My-Notes.md" {
		t.Fatalf("ScratchPath base=%q", base)
	}

	path, err = ScratchPath("")
	if err != nil {
		t.Fatalf("ScratchPath error: %v", err)
	}
	if base := filepath.Base(path); base != "marksmart-untitled.md" {
		t.Fatalf("ScratchPath base=%q", base)
	}

	path, _ = ScratchPath("../../etc/passwd")
	if !strings.HasPrefix(path, dir) {
		t.Fatalf("ScratchPath escaped runtime dir: %q", path)
	}
}

func TestPrepareAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "doc.md")
	initial := []byte("# hi\n")
	if err := Prepare(path, initial); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("perm=%v want 0600", st.Mode().Perm())
	}

	out, changed, err := ReadBack(path, initial)
	if err != nil || changed || string(out) != "# hi\n" {
		t.Fatalf("ReadBack unchanged = %q %v %v", out, changed, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("scratch file should be removed, stat err=%v", err)
	}

	_ = Prepare(path, initial)
	_ = os.WriteFile(path, []byte("# edited\n"), 0o600)
	out, changed, err = ReadBack(path, initial)
	if err != nil || !changed || string(out) != "# edited\n" {
		t.Fatalf("ReadBack edited = %q %v %v", out, changed, err)
	}
}

func TestCommandUsesShellWrapperForEnvEditor(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "nano -w")
	cmd, err := Command("/tmp/x.md")
	if err != nil {
		t.Fatalf("Command error: %v", err)
	}
	if filepath.Base(cmd.Path) != "sh" {
		t.Fatalf("cmd.Path=%q want sh", cmd.Path)
	}
	var sawEditor, sawPath bool
	for _, kv := range cmd.Env {
		sawEditor = sawEditor || kv == "EDITORCMD=nano -w"
		sawPath = sawPath || kv == "FILEPATH=/tmp/x.md"
	}
	if !sawEditor || !sawPath {
		t.Fatalf("env missing editor or path: %v", cmd.Env)
	}
}

func TestPreferredEditorPrefersVisual(t *testing.T) {
	t.Setenv("VISUAL", "code -w")
	t.Setenv("EDITOR", "vim")
	got, err := PreferredEditor()
	if err != nil || got != "code -w" {
		t.Fatalf("PreferredEditor=%q err=%v", got, err)
	}
}
