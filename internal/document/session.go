package document

import (
	"context"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/mithrel/marksmart/internal/filesys"
)

// DefaultName is the display name of a document that was never saved.
const DefaultName = "Untitled.md"

// WelcomeContent seeds the session created at startup.
const WelcomeContent = "# Welcome to MarkSmart\n" +
	"\n" +
	"This is a simple, powerful markdown editor.\n" +
	"\n" +
	"## Features\n" +
	"- **Split Pane View**: Edit on the left, preview on the right.\n" +
	"- **Local File Support**: Open and save files directly to your disk.\n" +
	"- **AI Assistance**: Press ctrl+g to fix grammar or improve your writing.\n" +
	"- **Syntax Highlighting**: Code blocks look great.\n" +
	"\n" +
	"## Example Code\n" +
	"\n" +
	"```go\n" +
	"func sayHello(name string) {\n" +
	"    fmt.Printf(\"Hello, %s!\\n\", name)\n" +
	"}\n" +
	"```\n" +
	"\n" +
	"## Formatting Table\n" +
	"\n" +
	"| Syntax | Description |\n" +
	"| ----------- | ----------- |\n" +
	"| Header | Title |\n" +
	"| Paragraph | Text |\n" +
	"\n" +
	"Start typing to edit!\n"

// Document is a point-in-time copy of every session field.
type Document struct {
	Content     string
	DisplayName string
	Dirty       bool
	FileRef     filesys.Handle
}

// Confirmer guards destructive transitions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

const (
	promptNew  = "You have unsaved changes. Create new file anyway?"
	promptOpen = "You have unsaved changes. Open another file?"
)

// Session is the single source of truth for the open document. Dirty state
// is derived by comparing the live content against the digest of the last
// loaded or saved content.
type Session struct {
	mu       sync.RWMutex
	content  string
	name     string
	fileRef  filesys.Handle
	baseline [32]byte
	dirty    bool
	subs     []chan struct{}
}

// NewSession returns a clean session holding content under DefaultName.
func NewSession(content string) *Session {
	s := &Session{}
	s.reset(Document{Content: content, DisplayName: DefaultName})
	return s
}

func digest(s string) [32]byte { return blake3.Sum256([]byte(s)) }

// reset installs d as a freshly loaded document. Caller holds mu or owns s.
func (s *Session) reset(d Document) {
	s.content = d.Content
	s.name = d.DisplayName
	if s.name == "" {
		s.name = DefaultName
	}
	s.fileRef = d.FileRef
	s.baseline = digest(d.Content)
	s.dirty = false
}

// Snapshot copies all fields under one lock.
func (s *Session) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Document{Content: s.content, DisplayName: s.name, Dirty: s.dirty, FileRef: s.fileRef}
}

func (s *Session) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *Session) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Session) FileRef() filesys.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fileRef
}

// SetContent replaces the content. The session is dirty whenever the new
// content differs from what was last loaded or saved.
func (s *Session) SetContent(text string) {
	s.mu.Lock()
	if text == s.content {
		s.mu.Unlock()
		return
	}
	s.content = text
	s.dirty = digest(text) != s.baseline
	s.mu.Unlock()
	s.notify()
}

// Replace swaps in a loaded document wholesale. d.Dirty is ignored: a
// replaced document is clean by definition.
func (s *Session) Replace(d Document) {
	s.mu.Lock()
	s.reset(d)
	s.mu.Unlock()
	s.notify()
}

// MarkSaved records that saved reached disk. When fileRef is non-nil the
// session binds to it and takes its name. The dirty flag is recomputed
// against the live content so edits made while the write was in flight are
// not lost.
func (s *Session) MarkSaved(saved string, fileRef filesys.Handle) {
	s.mu.Lock()
	s.baseline = digest(saved)
	if fileRef != nil {
		s.fileRef = fileRef
		s.name = fileRef.Name()
	}
	s.dirty = s.content != saved
	s.mu.Unlock()
	s.notify()
}

// NewDocument resets to an empty, unnamed, clean document. When the session
// is dirty c must confirm first; a declined confirmation changes nothing.
func (s *Session) NewDocument(ctx context.Context, c Confirmer) (bool, error) {
	ok, err := s.guard(ctx, c, promptNew)
	if err != nil || !ok {
		return false, err
	}
	s.Replace(Document{DisplayName: DefaultName})
	return true, nil
}

func (s *Session) guard(ctx context.Context, c Confirmer, prompt string) (bool, error) {
	if !s.Dirty() {
		return true, nil
	}
	if c == nil {
		return false, nil
	}
	return c.Confirm(ctx, prompt)
}

// Subscribe returns a channel that receives a value after each mutation.
// Notifications coalesce; a slow reader sees at least the latest change.
func (s *Session) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Session) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
