package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/jsonutil"
	"github.com/reflectsonar/reflectsonar/pkg/outline"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
	"github.com/reflectsonar/reflectsonar/pkg/section"
)

// SectionSummary is the renderer-independent view of one section.
type SectionSummary struct {
	Category finding.Category `json:"category"`
	Title    string           `json:"title"`
	Total    int              `json:"total"`
	Unknown  int              `json:"unknown,omitempty"`
	Counts   []section.Count  `json:"counts"`
	Line     string           `json:"summary"`
}

func summarize(s *section.Section) SectionSummary {
	return SectionSummary{
		Category: s.Category,
		Title:    s.Title,
		Total:    s.Total,
		Unknown:  s.Unknown,
		Counts:   s.Summary,
		Line:     s.SummaryLine(),
	}
}

// Document is the result of Generate.
type Document struct {
	ID          string          `json:"id"`
	Project     finding.Project `json:"project"`
	Mode        scheme.Mode     `json:"mode"`
	Generated   time.Time       `json:"generated"`
	QualityGate string          `json:"qualityGate,omitempty"`

	// Issues counts every fetched issue. An issue shown in two sections
	// is counted once.
	Issues       int `json:"issues"`
	Classified   int `json:"classified"`
	Unclassified int `json:"unclassified"`

	// Incomplete counts issues without a key or component. They are
	// still in Issues and in their sections.
	Incomplete int `json:"incomplete,omitempty"`
	Hotspots     int `json:"hotspots"`
	Rules        int `json:"rules"`

	Sections []SectionSummary `json:"sections"`
	Outline  []outline.Entry  `json:"outline"`

	// Pages is filled in by the caller once the renderer knows it.
	Pages int `json:"pages,omitempty"`
}

// Section returns the summary for category c.
func (d *Document) Section(c finding.Category) (SectionSummary, bool) {
	for _, s := range d.Sections {
		if s.Category == c {
			return s, true
		}
	}
	return SectionSummary{}, false
}

// WriteJSON writes the document as indented, deterministic JSON.
func WriteJSON(w io.Writer, d *Document) error {
	return jsonutil.WriteIndent(w, d)
}

// WriteJSONFile writes the document to path.
func WriteJSONFile(path string, d *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, d); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
