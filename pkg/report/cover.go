package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/jsonutil"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
)

// Metric keys requested from api/measures/component.
const (
	MetricSecurityRating        = "software_quality_security_rating"
	MetricReliabilityRating     = "software_quality_reliability_rating"
	MetricMaintainabilityRating = "software_quality_maintainability_rating"
	MetricSecurityIssues        = "software_quality_security_issues"
	MetricReliabilityIssues     = "software_quality_reliability_issues"
	MetricMaintainabilityIssues = "software_quality_maintainability_issues"
	MetricAcceptedIssues        = "accepted_issues"
	MetricCoverage              = "coverage"
	MetricLinesToCover          = "lines_to_cover"
	MetricDuplications          = "duplicated_lines_density"
	MetricLines                 = "lines"
	MetricHotspots              = "security_hotspots"
)

// MetricKeys lists every measure the cover page reads.
func MetricKeys() []string {
	return []string{
		MetricSecurityRating, MetricReliabilityRating, MetricMaintainabilityRating,
		MetricLinesToCover,
		MetricMaintainabilityIssues, MetricSecurityIssues, MetricReliabilityIssues,
		MetricAcceptedIssues, MetricCoverage, MetricDuplications,
		MetricLines, MetricHotspots,
	}
}

// Servers without the software quality model expose the older keys.
var legacyRating = map[string]string{
	MetricSecurityRating:        "security_rating",
	MetricReliabilityRating:     "reliability_rating",
	MetricMaintainabilityRating: "sqale_rating",
}

// Grade maps a 1-5 rating score to its letter: up to 1 is A, up to 2 is B
// and so on, anything above 4 is E.
func Grade(score float64) string {
	switch {
	case score <= 1:
		return "A"
	case score <= 2:
		return "B"
	case score <= 3:
		return "C"
	case score <= 4:
		return "D"
	}
	return "E"
}

var gradeColors = map[string]scheme.RGB{
	"A": {R: 0xD1, G: 0xFA, B: 0xDF},
	"B": {R: 0xE1, G: 0xF4, B: 0xA9},
	"C": {R: 0xFC, G: 0xE8, B: 0xA2},
	"D": {R: 0xFF, G: 0xD6, B: 0xAF},
	"E": {R: 0xFE, G: 0xCC, B: 0xCB},
}

// GradeColor returns the badge fill for a grade letter.
func GradeColor(grade string) scheme.RGB {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return scheme.UnknownColor
}

// Rating is one of the three quality ratings on the cover.
type Rating struct {
	Category finding.Category `json:"category"`
	Label    string           `json:"label"`
	Grade    string           `json:"grade"` // "" when the server sent no rating
	Issues   string           `json:"issues,omitempty"`
}

// Metric is a formatted headline measure.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Cover is the content of the first page.
type Cover struct {
	ReportID  string               `json:"reportId"`
	Project   finding.Project      `json:"project"`
	Mode      scheme.Mode          `json:"mode"`
	Generated time.Time            `json:"generated"`
	Gate      *finding.QualityGate `json:"qualityGate,omitempty"`
	Ratings   []Rating             `json:"ratings"`
	Metrics   []Metric             `json:"metrics"`
	Sections  []SectionSummary     `json:"sections"`
}

// NewCover derives the ratings and the headline metrics from measures.
func NewCover(id string, data *Data, mode scheme.Mode, generated time.Time, sections []SectionSummary) *Cover {
	ms := data.Measures
	c := &Cover{
		ReportID:  id,
		Project:   data.Project,
		Mode:      mode,
		Generated: generated,
		Gate:      data.QualityGate,
		Sections:  sections,
		Ratings: []Rating{
			rating(ms, finding.Security, MetricSecurityRating, MetricSecurityIssues),
			rating(ms, finding.Reliability, MetricReliabilityRating, MetricReliabilityIssues),
			rating(ms, finding.Maintainability, MetricMaintainabilityRating, MetricMaintainabilityIssues),
		},
	}

	add := func(label, value string) {
		if value != "" {
			c.Metrics = append(c.Metrics, Metric{Label: label, Value: value})
		}
	}
	add("Lines of Code", integer(ms.Value(MetricLines)))
	add("Coverage", percent(ms.Value(MetricCoverage)))
	add("Lines to Cover", integer(ms.Value(MetricLinesToCover)))
	add("Duplications", percent(ms.Value(MetricDuplications)))
	add("Security Hotspots", integer(ms.Value(MetricHotspots)))
	add("Accepted Issues", integer(ms.Value(MetricAcceptedIssues)))
	return c
}

func rating(ms finding.Measures, c finding.Category, metric, issues string) Rating {
	r := Rating{Category: c, Label: titleOf(c), Issues: issueCount(ms.Value(issues))}
	m, ok := ms[metric]
	if !ok {
		m, ok = ms[legacyRating[metric]]
	}
	if ok {
		if score := m.Float(-1); score >= 0 {
			r.Grade = Grade(score)
		}
	}
	return r
}

func titleOf(c finding.Category) string {
	switch c {
	case finding.Security:
		return "Security"
	case finding.Reliability:
		return "Reliability"
	case finding.Maintainability:
		return "Maintainability"
	}
	return c.String()
}

// issueCount reads the software quality issue measure, which is either a
// plain number or a JSON object with a "total" member.
func issueCount(v string) string {
	if v == "" {
		return ""
	}
	if _, err := strconv.Atoi(v); err == nil {
		return v
	}
	var obj struct {
		Total int `json:"total"`
	}
	if err := jsonutil.Unmarshal([]byte(v), &obj); err == nil {
		return strconv.Itoa(obj.Total)
	}
	return ""
}

func integer(v string) string {
	if v == "" {
		return ""
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return strconv.FormatInt(int64(f), 10)
}

func percent(v string) string {
	if v == "" {
		return ""
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return fmt.Sprintf("%.1f%%", f)
}
