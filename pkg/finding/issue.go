package finding

import (
	"fmt"
	"strings"
	"time"
)

// Impact is a (software quality, severity) pair carried by an issue on
// servers running the Multi-Quality Rule mode.
type Impact struct {
	Quality  SoftwareQuality `json:"softwareQuality"`
	Severity Severity        `json:"severity"`
}

// Excerpt is a slice of source code attached to an issue or hotspot.
type Excerpt struct {
	// StartLine is the line number of the first line of Text.
	StartLine int `json:"startLine"`

	// Focus is the line the finding points at (0 = none).
	Focus int `json:"focus,omitempty"`

	// Text holds the source lines separated by '\n', without markup.
	Text string `json:"text"`
}

// SourceLine is one numbered line of an excerpt.
type SourceLine struct {
	Number int
	Code   string
	Focus  bool
}

// Lines splits the excerpt into numbered lines.
func (e *Excerpt) Lines() []SourceLine {
	if e == nil || e.Text == "" {
		return nil
	}
	raw := strings.Split(strings.TrimRight(e.Text, "\n"), "\n")
	lines := make([]SourceLine, len(raw))
	for i, code := range raw {
		n := e.StartLine + i
		lines[i] = SourceLine{Number: n, Code: code, Focus: n == e.Focus}
	}
	return lines
}

// Issue is a single analysis issue.
type Issue struct {
	Key       string    `json:"key"`
	Component string    `json:"component"`
	Project   string    `json:"project,omitempty"`
	Line      int       `json:"line,omitempty"`
	Rule      string    `json:"rule"`
	Message   string    `json:"message"`
	Type      IssueType `json:"type,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Status    string    `json:"status,omitempty"`
	Effort    string    `json:"effort,omitempty"`
	Author    string    `json:"author,omitempty"`
	Created   time.Time `json:"creationDate,omitzero"`

	// Severity is the legacy representation. Empty when Impacts is used.
	Severity Severity `json:"severity,omitempty"`

	// Impacts is the Multi-Quality Rule representation. Empty when
	// Severity is used.
	Impacts []Impact `json:"impacts,omitempty"`

	Excerpt *Excerpt `json:"excerpt,omitempty"`
}

// HasImpacts reports whether the issue carries at least one impact pair.
func (i *Issue) HasImpacts() bool {
	return len(i.Impacts) > 0
}

// Normalize returns a copy of the issue with exactly one severity
// representation populated. Servers in MQR mode still send the legacy
// field, and legacy servers may send impacts; mqr selects which one the
// report reads. A legacy issue with no severity gets Unknown so the tagged
// form is never empty.
func (i Issue) Normalize(mqr bool) Issue {
	out := i
	if mqr {
		out.Severity = ""
		out.Impacts = make([]Impact, len(i.Impacts))
		for n, imp := range i.Impacts {
			out.Impacts[n] = Impact{
				Quality:  SoftwareQuality(strings.ToUpper(strings.TrimSpace(string(imp.Quality)))),
				Severity: ParseSeverity(string(imp.Severity)),
			}
		}
		return out
	}
	out.Impacts = nil
	out.Severity = ParseSeverity(string(i.Severity))
	return out
}

// Validate reports records missing the fields a table row identifies an
// issue by. Such records are still classifiable and drawable.
func (i *Issue) Validate() error {
	if i.Key == "" {
		return ErrMissingKey
	}
	if i.Component == "" {
		return fmt.Errorf("issue %s: %w", i.Key, ErrMissingComponent)
	}
	return nil
}

// Path returns the component path without its "projectKey:" prefix.
func (i *Issue) Path() string {
	return ComponentPath(i.Component)
}

// ShortRule returns the rule key without its repository prefix
// ("go:S1192" becomes "S1192").
func (i *Issue) ShortRule() string {
	if n := strings.LastIndexByte(i.Rule, ':'); n >= 0 {
		return i.Rule[n+1:]
	}
	return i.Rule
}

// HasTag reports whether the issue carries tag, ignoring case.
func (i *Issue) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ComponentPath strips the "projectKey:" prefix SonarQube puts in front
// of file component keys.
func ComponentPath(component string) string {
	if _, path, ok := strings.Cut(component, ":"); ok {
		return path
	}
	return component
}
