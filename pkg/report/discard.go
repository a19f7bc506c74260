package report

import (
	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/outline"
	"github.com/reflectsonar/reflectsonar/pkg/section"
)

// Discard is a Renderer that draws nothing. Every row is placed on page 1
// at its position in the section, so Generate still yields the section
// summaries and an outline in document order.
type Discard struct{}

var _ Renderer = Discard{}

func (Discard) Cover(*Cover) error { return nil }

func (Discard) BeginSection(*section.Section) (section.Sink, error) {
	return &discardSink{}, nil
}

func (Discard) EndSection(*section.Section) error { return nil }
func (Discard) Hotspots([]finding.Hotspot) error { return nil }
func (Discard) Rules([]finding.Rule) error { return nil }
func (Discard) Finish([]outline.Entry) error { return nil }

type discardSink struct{ rows int }

func (s *discardSink) Place(*section.Row) outline.Location {
	return outline.Location{Page: 1, Y: float64(s.rows)}
}

func (s *discardSink) Commit(*section.Row) error {
	s.rows++
	return nil
}
