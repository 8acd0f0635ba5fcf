package filesys

import (
	"path/filepath"
	"strings"
)

// MarkdownMIME tags markdown blobs and describes the picker filter.
const MarkdownMIME = "text/markdown"

// Accept describes a file-type filter in picker terms.
type Accept struct {
	Description string
	MIME        string
	Extensions  []string
}

// Markdown is the only filter the editor offers.
var Markdown = Accept{
	Description: "Markdown Files",
	MIME:        MarkdownMIME,
	Extensions:  []string{".md", ".markdown"},
}

// Matches reports whether name carries one of the accepted extensions.
// An empty filter accepts everything.
func (a Accept) Matches(name string) bool {
	if len(a.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range a.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// String renders the filter the way an HTML accept attribute would.
func (a Accept) String() string {
	parts := append([]string{}, a.Extensions...)
	if a.MIME != "" {
		parts = append(parts, a.MIME)
	}
	return strings.Join(parts, ",")
}

func matchesAny(types []Accept, name string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t.Matches(name) {
			return true
		}
	}
	return false
}
