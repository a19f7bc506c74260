package ui

import (
	"io"
	"os"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/term"
)

// fder is implemented by *os.File.
type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of w, or fallback when w is not a
// terminal.
func Width(w io.Writer, fallback int) int {
	f, ok := w.(fder)
	if !ok {
		return fallback
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return fallback
	}
	return cols
}

// UnicodeTerminal reports whether w can render braille spinners and
// symbols. Piped output, TERM=dumb and legacy Windows consoles cannot.
func UnicodeTerminal(w io.Writer) bool {
	if os.Getenv("TERM") == "dumb" || !IsTerminal(w) {
		return false
	}
	if runtime.GOOS == "windows" {
		// Windows Terminal sets WT_SESSION; conhost does not.
		return os.Getenv("WT_SESSION") != ""
	}
	return true
}

// Icon returns unicode when w supports it, ascii otherwise.
func Icon(w io.Writer, unicode, ascii string) string {
	if UnicodeTerminal(w) {
		return unicode
	}
	return ascii
}

// Sanitize drops symbols a legacy console cannot draw. Latin text is
// kept.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r < 0x80:
			b.WriteByte(s[i])
		case r >= 0xFE00 && r <= 0xFE0F:
			// variation selector
		case r <= 0xFF || unicode.Is(unicode.Latin, r):
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}
