// Package transform sends document text to a text-generation service and
// applies the result to the session.
package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mithrel/marksmart/internal/document"
)

// DefaultInstruction is the polish request sent by the improve action.
const DefaultInstruction = "Check for grammar mistakes, typos, and formatting consistency. " +
	"Keep the structure largely the same but polish the prose."

var ErrTransformFailed = errors.New("text transform failed")

// Transformer rewrites content according to instruction.
type Transformer interface {
	Transform(ctx context.Context, content, instruction string) (string, error)
}

// Configurable is implemented by transformers that need credentials before
// they can do anything.
type Configurable interface {
	Configured() bool
}

// Ready reports whether t can be asked to transform. Transformers that do
// not implement Configurable are always ready.
func Ready(t Transformer) bool {
	if t == nil {
		return false
	}
	if c, ok := t.(Configurable); ok {
		return c.Configured()
	}
	return true
}

// Result describes what Improve did.
type Result int

const (
	// Skipped means the content was blank and no request was made.
	Skipped Result = iota
	Applied
)

// Improve snapshots the session content, sends it to t, and routes a
// successful result through SetContent. On failure the session is left alone.
func Improve(ctx context.Context, s *document.Session, t Transformer, instruction string) (Result, error) {
	content := s.Content()
	if strings.TrimSpace(content) == "" {
		return Skipped, nil
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}
	out, err := t.Transform(ctx, content, instruction)
	if err != nil {
		return Skipped, fmt.Errorf("%w: %v", ErrTransformFailed, err)
	}
	s.SetContent(out)
	return Applied, nil
}
