package ui

import (
	"io"
	"time"
)

// Spinner holds spinner animation frames
type Spinner struct {
	Frames   []string
	Interval time.Duration
}

var (
	dotsSpinner = Spinner{
		Frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		Interval: 80 * time.Millisecond,
	}
	lineSpinner = Spinner{
		Frames:   []string{"-", "\\", "|", "/"},
		Interval: 100 * time.Millisecond,
	}
)

// DefaultSpinner returns a braille spinner on Unicode terminals and an
// ASCII one otherwise.
func DefaultSpinner(w io.Writer) Spinner {
	if UnicodeTerminal(w) {
		return dotsSpinner
	}
	return lineSpinner
}

// Frame returns the frame shown after elapsed.
func (s Spinner) Frame(elapsed time.Duration) string {
	if len(s.Frames) == 0 {
		return ""
	}
	if s.Interval <= 0 {
		return s.Frames[0]
	}
	return s.Frames[int(elapsed/s.Interval)%len(s.Frames)]
}
