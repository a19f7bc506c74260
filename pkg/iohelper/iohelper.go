// Package iohelper reads HTTP response bodies with size limits.
package iohelper

import (
	"errors"
	"fmt"
	"io"
)

// Body size limits.
const (
	// ErrorMaxBodySize bounds error payloads kept for diagnostics (8KB).
	ErrorMaxBodySize int64 = 8 * 1024

	// DefaultMaxBodySize bounds ordinary API responses (32MB). A full page
	// of 500 issues with flows stays well below it.
	DefaultMaxBodySize int64 = 32 * 1024 * 1024

	// drainLimit bounds what DrainAndClose discards before closing.
	drainLimit int64 = 64 * 1024
)

// ErrTooLarge is returned when a body exceeds its limit.
var ErrTooLarge = errors.New("iohelper: body exceeds size limit")

// ReadBody reads r up to maxSize bytes. A body longer than maxSize yields
// ErrTooLarge instead of a silently truncated slice. A nil r reads as empty.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return data, err
	}
	if int64(len(data)) > maxSize {
		return data[:maxSize], fmt.Errorf("%w (%d bytes)", ErrTooLarge, maxSize)
	}
	return data, nil
}

// ReadSnippet reads at most maxSize bytes and never fails on length. It
// is meant for error bodies quoted in messages.
func ReadSnippet(r io.Reader, maxSize int64) string {
	if r == nil {
		return ""
	}
	data, _ := io.ReadAll(io.LimitReader(r, maxSize))
	return string(data)
}

// DrainAndClose discards a bounded remainder of r and closes it when it is
// an io.ReadCloser, so the connection can be reused. It always returns nil
// to allow use in defer.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r, drainLimit))
	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
