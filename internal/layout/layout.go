// Package layout holds the view-mode state machine for the dual-pane shell.
package layout

import (
	"fmt"
	"strings"
)

type Mode int

const (
	Split Mode = iota
	Edit
	Preview
)

const (
	// DefaultMinSplitWidth is the narrowest viewport, in logical pixels,
	// at which Split survives a resize.
	DefaultMinSplitWidth = 768
	// DefaultCellWidth converts terminal columns to logical pixels.
	DefaultCellWidth = 8
)

func (m Mode) String() string {
	switch m {
	case Edit:
		return "edit"
	case Preview:
		return "preview"
	default:
		return "split"
	}
}

// ParseMode parses "edit", "preview" or "split".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "edit":
		return Edit, nil
	case "preview":
		return Preview, nil
	case "split", "":
		return Split, nil
	default:
		return Split, fmt.Errorf("unknown view mode %q (want edit, preview or split)", s)
	}
}

// Controller tracks the active Mode. Narrow viewports force Split down to
// Edit; widening never restores Split.
type Controller struct {
	mode          Mode
	minSplitWidth int
	cellWidth     int
}

// New returns a controller in Split. Non-positive arguments take defaults.
func New(minSplitWidth, cellWidth int) *Controller {
	if minSplitWidth <= 0 {
		minSplitWidth = DefaultMinSplitWidth
	}
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	return &Controller{mode: Split, minSplitWidth: minSplitWidth, cellWidth: cellWidth}
}

func (c *Controller) Mode() Mode { return c.mode }

// Select applies an explicit user choice.
func (c *Controller) Select(m Mode) { c.mode = m }

// Resize applies the responsive rule for a viewport widthPx wide and reports
// whether the mode changed.
func (c *Controller) Resize(widthPx int) bool {
	if c.mode == Split && widthPx < c.minSplitWidth {
		c.mode = Edit
		return true
	}
	return false
}

// ResizeCols is Resize for a terminal cols wide.
func (c *Controller) ResizeCols(cols int) bool {
	return c.Resize(cols * c.cellWidth)
}

func (c *Controller) ShowsEditor() bool  { return c.mode != Preview }
func (c *Controller) ShowsPreview() bool { return c.mode != Edit }

// Panes splits total columns between editor and preview. A hidden pane gets 0.
func (c *Controller) Panes(total int) (editor, preview int) {
	if total < 0 {
		total = 0
	}
	switch c.mode {
	case Edit:
		return total, 0
	case Preview:
		return 0, total
	default:
		editor = total / 2
		return editor, total - editor
	}
}
