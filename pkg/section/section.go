// Package section turns the issues of one report category into a sorted,
// summarized table ready for rendering.
package section

import (
	"fmt"
	"slices"
	"strings"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/markup"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
)

// PathWidth is the longest path line, in characters, before a path is
// broken at separators.
const PathWidth = 40

// MissingPath stands in for the location of an issue without a component.
const MissingPath = "(unknown file)"

// Count is the number of rows at one severity level.
type Count struct {
	Severity finding.Severity `json:"severity"`
	Label    string           `json:"label"`
	Count    int              `json:"count"`
}

// Row is one rendered table row.
type Row struct {
	Issue *finding.Issue

	// Severity is the category-scoped severity. Values the scheme does not
	// know are replaced by finding.Unknown; Raw keeps the original.
	Severity finding.Severity
	Raw      finding.Severity
	Badge    scheme.Badge

	// PathLines is the file path broken into lines of at most PathWidth
	// characters where separators allow.
	PathLines []string
	Line      int

	// Location is PathLines and Line as markup.
	Location string

	Rule    string
	RuleKey string

	// Markup is the rule name in bold, a line break and the escaped
	// issue message.
	Markup string

	Excerpt *finding.Excerpt
}

// Section is the table of one category.
type Section struct {
	Category finding.Category
	Title    string
	Mode     scheme.Mode

	// Summary has one entry per valid level in ranked order, zero counts
	// included. Extra levels appear in rank position when they occur, and
	// an Unknown entry follows only when Unknown > 0.
	Summary []Count
	Rows    []Row
	Total   int
	Unknown int
}

// Build sorts issues by their severity in category c, most severe first,
// and produces the section. Ties keep input order.
func Build(c finding.Category, issues []*finding.Issue, s scheme.Scheme) *Section {
	sec := &Section{
		Category: c,
		Title:    c.Title(),
		Mode:     s.Mode(),
		Rows:     make([]Row, 0, len(issues)),
		Total:    len(issues),
	}

	for _, issue := range issues {
		sec.Rows = append(sec.Rows, newRow(issue, c, s))
	}
	slices.SortStableFunc(sec.Rows, func(a, b Row) int {
		return s.Rank(a.Severity) - s.Rank(b.Severity)
	})

	counts := make(map[finding.Severity]int, len(s.Ranked())+1)
	for i := range sec.Rows {
		counts[sec.Rows[i].Severity]++
	}
	for _, lvl := range s.Ranked() {
		if n := counts[lvl]; n > 0 || s.Summarized(lvl) {
			sec.Summary = append(sec.Summary, Count{Severity: lvl, Label: s.Label(lvl), Count: n})
		}
	}
	if n := counts[finding.Unknown]; n > 0 {
		sec.Unknown = n
		sec.Summary = append(sec.Summary, Count{Severity: finding.Unknown, Label: s.Label(finding.Unknown), Count: n})
	}
	return sec
}

func newRow(issue *finding.Issue, c finding.Category, s scheme.Scheme) Row {
	raw := s.SeverityFor(issue, c)
	sev := raw
	if !s.Known(sev) {
		sev = finding.Unknown
	}
	path := issue.Path()
	if path == "" {
		path = MissingPath
	}
	lines := FormatPath(path, PathWidth)
	rule := issue.ShortRule()
	return Row{
		Issue:     issue,
		Severity:  sev,
		Raw:       raw,
		Badge:     s.Badge(sev),
		PathLines: lines,
		Line:      issue.Line,
		Location:  locationMarkup(lines, issue.Line),
		Rule:      rule,
		RuleKey:   issue.Rule,
		Markup:    "<b>" + markup.Escape(rule) + "</b><br/>" + markup.Escape(issue.Message),
		Excerpt:   issue.Excerpt,
	}
}

func locationMarkup(lines []string, line int) string {
	escaped := make([]string, len(lines))
	for i, l := range lines {
		escaped[i] = markup.Escape(l)
	}
	out := strings.Join(escaped, "<br/>")
	if line > 0 {
		out += fmt.Sprintf("<br/><b>(Line %d)</b>", line)
	}
	return out
}

// FormatPath breaks a path longer than width at '/' boundaries, packing
// segments greedily so each line stays within width when possible. A
// single segment longer than width is kept whole.
func FormatPath(path string, width int) []string {
	if len(path) <= width || !strings.Contains(path, "/") {
		return []string{path}
	}
	var (
		lines []string
		cur   string
	)
	for i, part := range strings.Split(path, "/") {
		switch {
		case i == 0:
			cur = part
		case len(cur)+1+len(part) <= width:
			cur += "/" + part
		default:
			lines = append(lines, cur)
			cur = part
		}
	}
	return append(lines, cur)
}

// Counts returns the summary as a map keyed by severity.
func (s *Section) Counts() map[finding.Severity]int {
	m := make(map[finding.Severity]int, len(s.Summary))
	for _, c := range s.Summary {
		m[c.Severity] = c.Count
	}
	return m
}

// Empty reports whether the section has no rows.
func (s *Section) Empty() bool {
	return len(s.Rows) == 0
}

// SummaryLine renders "Total: N issues (Critical: 2, Minor: 1)", listing
// only levels that occur.
func (s *Section) SummaryLine() string {
	noun := "issues"
	if s.Total == 1 {
		noun = "issue"
	}
	line := fmt.Sprintf("Total: %d %s", s.Total, noun)
	var parts []string
	for _, c := range s.Summary {
		if c.Count > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", c.Label, c.Count))
		}
	}
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	return line
}
