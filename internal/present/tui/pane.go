package tui

import "strings"

// tabGlyph stands in for a tab inside the edit pane, which would otherwise
// expand tabs to spaces.
const tabGlyph = "⇥"

// paneText records how session text was adapted for the textarea so edits
// can be written back with the file's own tabs and line endings.
type paneText struct {
	crlf bool
	tabs bool
}

// toPane converts session text into something the textarea holds verbatim.
func toPane(s string) (string, paneText) {
	var p paneText
	if strings.Contains(s, "\r\n") {
		p.crlf = true
		s = strings.ReplaceAll(s, "\r\n", "\n")
	}
	if strings.Contains(s, "\t") {
		p.tabs = true
		s = strings.ReplaceAll(s, "\t", tabGlyph)
	}
	return s, p
}

// fromPane is the inverse of toPane for the same paneText.
func (p paneText) fromPane(v string) string {
	if p.tabs {
		v = strings.ReplaceAll(v, tabGlyph, "\t")
	}
	if p.crlf {
		v = strings.ReplaceAll(v, "\n", "\r\n")
	}
	return v
}
