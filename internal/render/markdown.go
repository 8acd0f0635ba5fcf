package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// DefaultStyle matches the pretty note output the CLI has always used.
const DefaultStyle = "dracula"

// Renderer turns markdown into terminal output wrapped to width columns.
type Renderer interface {
	Render(markdown string, width int) (string, error)
}

// Glamour renders with charmbracelet/glamour, caching one TermRenderer per
// wrap width. TermRenderer is not safe for concurrent use, so calls serialize.
type Glamour struct {
	Style string

	mu    sync.Mutex
	cache map[int]*glamour.TermRenderer
}

// NewGlamour returns a renderer for the given standard style name.
func NewGlamour(style string) *Glamour {
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle
	}
	return &Glamour{Style: style, cache: map[int]*glamour.TermRenderer{}}
}

func (g *Glamour) Render(markdown string, width int) (string, error) {
	if width < 10 {
		width = 10
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.cache[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(g.Style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", fmt.Errorf("failed to create renderer: %w", err)
		}
		if g.cache == nil {
			g.cache = map[int]*glamour.TermRenderer{}
		}
		g.cache[width] = r
	}
	out, err := r.Render(Normalize(markdown))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Normalize folds CRLF line endings so Windows files render like any other.
func Normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// WriteMarkdown renders markdown through r and writes it to w.
func WriteMarkdown(w io.Writer, r Renderer, markdown string, width int) error {
	out, err := r.Render(markdown, width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
