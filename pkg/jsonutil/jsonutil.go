// Package jsonutil wraps github.com/go-json-experiment/json with the options
// the report uses. SonarQube responses are decoded leniently: unknown members
// are skipped and member names match case-insensitively, since field casing
// has drifted between server releases. Report output is deterministic so that
// two runs over the same data produce byte-identical files.
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

var decodeOpts = json.JoinOptions(
	json.RejectUnknownMembers(false),
	json.MatchCaseInsensitiveNames(true),
)

var encodeOpts = json.JoinOptions(
	json.Deterministic(true),
	jsontext.WithIndent("  "),
)

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v, decodeOpts)
}

// UnmarshalRead decodes a single JSON value from r into v.
func UnmarshalRead(r io.Reader, v any) error {
	return json.UnmarshalRead(r, v, decodeOpts)
}

// Marshal encodes v compactly with map keys sorted.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true))
}

// MarshalIndent encodes v with two-space indentation and sorted map keys.
func MarshalIndent(v any) ([]byte, error) {
	return json.Marshal(v, encodeOpts)
}

// WriteIndent writes the indented encoding of v to w, followed by a newline.
func WriteIndent(w io.Writer, v any) error {
	if err := json.MarshalWrite(w, v, encodeOpts); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}
