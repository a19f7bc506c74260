// Package outline records where each severity tier of each report section
// first appears, so the document outline can jump straight to it.
//
// An Indexer lives for exactly one report-generation pass:
//
//	idx := outline.New()
//	// ... sections call idx.Observe while rows are placed ...
//	entries := idx.Finalize()
//
// Observe and Finalize on a finalized Indexer panic. Both indicate that
// the pipeline ran out of order, which no caller can recover from.
package outline

import (
	"fmt"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
)

// Location is a render-time position: 1-based page number and the
// vertical offset of the row top on that page, in document units.
type Location struct {
	Page int     `json:"page"`
	Y    float64 `json:"y"`
}

// Entry is a navigation target for the first row of a severity tier.
type Entry struct {
	Category finding.Category `json:"category"`
	Severity finding.Severity `json:"severity"`
	Location Location         `json:"location"`
}

type key struct {
	c finding.Category
	s finding.Severity
}

type state int

const (
	open state = iota
	finalized
)

// Indexer collects first occurrences. It is not safe for concurrent use.
type Indexer struct {
	state   state
	seen    map[key]struct{}
	entries []Entry
}

// New returns an open Indexer.
func New() *Indexer {
	return &Indexer{seen: make(map[key]struct{})}
}

// Observe records loc for (c, s) if the pair has not been seen yet.
// Later observations of the same pair are ignored.
func (x *Indexer) Observe(c finding.Category, s finding.Severity, loc Location) {
	if x.state == finalized {
		panic(fmt.Sprintf("outline: Observe(%s, %s) after Finalize", c, s))
	}
	k := key{c, s}
	if _, ok := x.seen[k]; ok {
		return
	}
	x.seen[k] = struct{}{}
	x.entries = append(x.entries, Entry{Category: c, Severity: s, Location: loc})
}

// Len returns the number of entries recorded so far.
func (x *Indexer) Len() int {
	return len(x.entries)
}

// Finalized reports whether Finalize has been called.
func (x *Indexer) Finalized() bool {
	return x.state == finalized
}

// Finalize closes the indexer and returns the entries in first-observation
// order. The returned slice is owned by the caller.
func (x *Indexer) Finalize() []Entry {
	if x.state == finalized {
		panic("outline: Finalize called twice")
	}
	x.state = finalized
	out := make([]Entry, len(x.entries))
	copy(out, x.entries)
	return out
}

// Group returns the entries of category c, preserving order.
func Group(entries []Entry, c finding.Category) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}
