package render

import (
	"sync"
	"time"
)

// DefaultDebounce is how long input must pause before a render starts.
const DefaultDebounce = 150 * time.Millisecond

// Deferred sequences preview renders so keystrokes never wait on them.
// Every content change takes a ticket; a tick only renders if its ticket is
// still the newest, and a finished render is only shown if no newer render
// has already been shown.
type Deferred struct {
	Delay time.Duration

	mu       sync.Mutex
	latest   uint64
	accepted uint64
}

func NewDeferred(delay time.Duration) *Deferred {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Deferred{Delay: delay}
}

// Request records a content change and returns its ticket.
func (d *Deferred) Request() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latest++
	return d.latest
}

// Due reports whether a debounce tick for ticket should start rendering.
func (d *Deferred) Due(ticket uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ticket == d.latest
}

// Accept reports whether a result for ticket may replace what is on screen.
func (d *Deferred) Accept(ticket uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ticket <= d.accepted {
		return false
	}
	d.accepted = ticket
	return true
}

// Pending reports whether the preview lags the latest content.
func (d *Deferred) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accepted < d.latest
}
