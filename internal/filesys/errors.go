package filesys

import "errors"

// Failure taxonomy shared by both file backends. Callers match with errors.Is.
var (
	// ErrUserCancelled is returned when the user dismisses a picker dialog.
	// It is never surfaced as an error and never triggers a fallback.
	ErrUserCancelled = errors.New("user cancelled")
	// ErrCapabilityUnavailable means the live-handle backend cannot be used.
	ErrCapabilityUnavailable = errors.New("file picker capability unavailable")
	ErrWriteFailed           = errors.New("write failed")
	ErrReadFailed            = errors.New("read failed")
	ErrNotMarkdown           = errors.New("not a markdown file")
)
