package finding

import (
	"strconv"
	"strings"
	"time"
)

// Project describes the analysed SonarQube component.
type Project struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Qualifier    string    `json:"qualifier,omitempty"`
	Visibility   string    `json:"visibility,omitempty"`
	AnalysisDate time.Time `json:"analysisDate,omitzero"`
	Revision     string    `json:"revision,omitempty"`
}

// Measure is a single project metric value.
type Measure struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
}

// Float parses the measure value. Missing or malformed values yield def.
func (m Measure) Float(def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(m.Value), 64)
	if err != nil {
		return def
	}
	return v
}

// Measures indexes measures by metric key.
type Measures map[string]Measure

// Float returns the value of metric, or def when it is absent or malformed.
func (ms Measures) Float(metric string, def float64) float64 {
	m, ok := ms[metric]
	if !ok {
		return def
	}
	return m.Float(def)
}

// Value returns the raw value of metric, or "" when absent.
func (ms Measures) Value(metric string) string {
	return ms[metric].Value
}

// Hotspot is a security hotspot awaiting review.
type Hotspot struct {
	Key         string   `json:"key"`
	Component   string   `json:"component"`
	Project     string   `json:"project,omitempty"`
	Rule        string   `json:"ruleKey,omitempty"`
	Status      string   `json:"status,omitempty"`
	Message     string   `json:"message"`
	Line        int      `json:"line,omitempty"`
	Author      string   `json:"author,omitempty"`
	Category    string   `json:"securityCategory,omitempty"`
	Probability Severity `json:"vulnerabilityProbability,omitempty"`
	Excerpt     *Excerpt `json:"excerpt,omitempty"`
}

// Path returns the component path without its project prefix.
func (h *Hotspot) Path() string {
	return ComponentPath(h.Component)
}

// Rule is a rule definition referenced by the report's issues.
type Rule struct {
	Key      string        `json:"key"`
	Name     string        `json:"name"`
	Language string        `json:"langName,omitempty"`
	Type     IssueType     `json:"type,omitempty"`
	Sections []RuleSection `json:"descriptionSections,omitempty"`
}

// RuleSection is one titled part of a rule description. Content is HTML.
type RuleSection struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

// Title returns a human heading for the section key
// ("how_to_fix" becomes "How To Fix").
func (s RuleSection) Title() string {
	if s.Key == "" {
		return "Description"
	}
	words := strings.Fields(strings.ReplaceAll(s.Key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// QualityGate is the project's quality gate verdict.
type QualityGate struct {
	Status     string      `json:"status"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// Passed reports whether the gate status is OK.
func (g *QualityGate) Passed() bool {
	return g != nil && g.Status == "OK"
}

// Condition is one quality gate condition.
type Condition struct {
	Metric    string `json:"metricKey"`
	Status    string `json:"status"`
	Actual    string `json:"actualValue,omitempty"`
	Threshold string `json:"errorThreshold,omitempty"`
}
