package report

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/jsonutil"
	"github.com/reflectsonar/reflectsonar/pkg/outline"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
	"github.com/reflectsonar/reflectsonar/pkg/section"
)

type recorder struct {
	calls    []string
	cover    *Cover
	rows     map[finding.Category][]*section.Row
	hotspots []finding.Hotspot
	rules    []finding.Rule
	entries  []outline.Entry
	placed   int

	failCommit bool
	failCover  bool
}

func newRecorder() *recorder {
	return &recorder{rows: make(map[finding.Category][]*section.Row)}
}

type recSink struct {
	r *recorder
	c finding.Category
}

func (s recSink) Place(*section.Row) outline.Location {
	s.r.placed++
	return outline.Location{Page: 2 + s.r.placed/10, Y: float64(s.r.placed % 10)}
}

func (s recSink) Commit(row *section.Row) error {
	if s.r.failCommit {
		return errors.New("disk full")
	}
	s.r.rows[s.c] = append(s.r.rows[s.c], row)
	return nil
}

func (r *recorder) Cover(c *Cover) error {
	r.calls = append(r.calls, "cover")
	r.cover = c
	if r.failCover {
		return errors.New("no logo")
	}
	return nil
}

func (r *recorder) BeginSection(s *section.Section) (section.Sink, error) {
	r.calls = append(r.calls, "begin:"+s.Category.String())
	return recSink{r: r, c: s.Category}, nil
}

func (r *recorder) EndSection(s *section.Section) error {
	r.calls = append(r.calls, "end:"+s.Category.String())
	return nil
}

func (r *recorder) Hotspots(hs []finding.Hotspot) error {
	r.calls = append(r.calls, "hotspots")
	r.hotspots = hs
	return nil
}

func (r *recorder) Rules(rs []finding.Rule) error {
	r.calls = append(r.calls, "rules")
	r.rules = rs
	return nil
}

func (r *recorder) Finish(entries []outline.Entry) error {
	r.calls = append(r.calls, "finish")
	r.entries = entries
	return nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func opts() Options {
	return Options{
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Now:    func() time.Time { return fixedNow },
		ID:     "report-1",
	}
}

func issue(key, sev string, typ finding.IssueType) finding.Issue {
	return finding.Issue{
		Key:       key,
		Component: "demo:src/" + key + ".go",
		Rule:      "go:S" + key,
		Message:   "message " + key,
		Type:      typ,
		Severity:  finding.Severity(sev),
	}
}

func TestGenerateEmptyDefaultsToStandard(t *testing.T) {
	t.Parallel()

	r := newRecorder()
	doc, err := Generate(context.Background(), &Data{Project: finding.Project{Key: "demo"}}, opts(), r)
	require.NoError(t, err)

	assert.Equal(t, scheme.Standard, doc.Mode)
	assert.Empty(t, doc.Outline)
	assert.Empty(t, r.entries)
	require.Len(t, doc.Sections, 3)
	for _, s := range doc.Sections {
		assert.Zero(t, s.Total)
		require.Len(t, s.Counts, 5)
		for _, c := range s.Counts {
			assert.Zero(t, c.Count)
		}
	}
	assert.Equal(t, []string{
		"cover",
		"begin:SECURITY", "end:SECURITY",
		"begin:RELIABILITY", "end:RELIABILITY",
		"begin:MAINTAINABILITY", "end:MAINTAINABILITY",
		"hotspots", "finish",
	}, r.calls)
}

func TestGenerateStandard(t *testing.T) {
	t.Parallel()

	data := &Data{
		Project: finding.Project{Key: "demo", Name: "Demo"},
		Issues: []finding.Issue{
			issue("1", "CRITICAL", finding.TypeBug),
			issue("2", "minor", finding.TypeCodeSmell),
			issue("3", "MAJOR", finding.TypeCodeSmell),
			issue("4", "BLOCKER", finding.TypeVulnerability),
		},
		Signal: scheme.SignalStandard,
	}
	o := opts()
	o.Rules = true
	data.Rules = []finding.Rule{{Key: "go:S2", Name: "b"}, {Key: "go:S1", Name: "a"}}

	r := newRecorder()
	doc, err := Generate(context.Background(), data, o, r)
	require.NoError(t, err)

	assert.Equal(t, "report-1", doc.ID)
	assert.Equal(t, fixedNow, doc.Generated)
	assert.Equal(t, 4, doc.Issues)
	assert.Equal(t, 4, doc.Classified)
	assert.Equal(t, 2, doc.Rules)

	require.Len(t, r.rows[finding.Reliability], 1)
	assert.Equal(t, finding.Critical, r.rows[finding.Reliability][0].Severity)

	maint := r.rows[finding.Maintainability]
	require.Len(t, maint, 2)
	assert.Equal(t, finding.Major, maint[0].Severity, "sorted by rank")
	assert.Equal(t, finding.Minor, maint[1].Severity)

	assert.Equal(t, []string{"go:S1", "go:S2"}, []string{r.rules[0].Key, r.rules[1].Key})
	assert.Equal(t, "finish", r.calls[len(r.calls)-1])
	assert.Equal(t, "rules", r.calls[len(r.calls)-2])

	require.Len(t, doc.Outline, 4)
	assert.Equal(t, outline.Entry{Category: finding.Security, Severity: finding.Blocker, Location: outline.Location{Page: 2, Y: 1}}, doc.Outline[0])
	assert.Equal(t, doc.Outline, r.entries)

	sec, ok := doc.Section(finding.Maintainability)
	require.True(t, ok)
	assert.Equal(t, "Total: 2 issues (Major: 1, Minor: 1)", sec.Line)
}

func TestGenerateMQRMultiImpact(t *testing.T) {
	t.Parallel()

	data := &Data{
		Issues: []finding.Issue{{
			Key:       "x",
			Component: "demo:a.go",
			Severity:  finding.Major,
			Impacts: []finding.Impact{
				{Quality: finding.QualitySecurity, Severity: finding.High},
				{Quality: finding.QualityMaintainability, Severity: finding.Low},
			},
		}},
	}

	r := newRecorder()
	doc, err := Generate(context.Background(), data, opts(), r)
	require.NoError(t, err)

	assert.Equal(t, scheme.MQR, doc.Mode, "impacts imply MQR without a signal")
	require.Len(t, r.rows[finding.Security], 1)
	require.Len(t, r.rows[finding.Maintainability], 1)
	assert.Equal(t, finding.High, r.rows[finding.Security][0].Severity)
	assert.Equal(t, finding.Low, r.rows[finding.Maintainability][0].Severity)
	assert.Empty(t, r.rows[finding.Reliability])

	require.Len(t, doc.Outline, 2)
	assert.Equal(t, finding.Security, doc.Outline[0].Category)
	assert.Equal(t, finding.Maintainability, doc.Outline[1].Category)
	assert.Equal(t, 1, doc.Issues, "a multi-impact issue counts once")
}

func TestGenerateModeOverride(t *testing.T) {
	t.Parallel()

	data := &Data{
		Issues: []finding.Issue{{
			Key: "x", Component: "demo:a.go", Type: finding.TypeBug, Severity: finding.Minor,
			Impacts: []finding.Impact{{Quality: finding.QualityReliability, Severity: finding.Low}},
		}},
		Signal: scheme.SignalMQR,
	}
	o := opts()
	o.Mode = "standard"

	r := newRecorder()
	doc, err := Generate(context.Background(), data, o, r)
	require.NoError(t, err)
	assert.Equal(t, scheme.Standard, doc.Mode)
	require.Len(t, r.rows[finding.Reliability], 1)
	assert.Equal(t, finding.Minor, r.rows[finding.Reliability][0].Severity)
}

func TestGenerateUnknownAndUnclassified(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	o := opts()
	o.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	o.Uncategorized = true

	data := &Data{
		Issues: []finding.Issue{
			issue("1", "SEVERE", finding.TypeBug),
			issue("2", "MINOR", "EXTERNAL"),
			{Key: "", Component: "demo:x.go"},
		},
		Signal: scheme.SignalStandard,
	}

	r := newRecorder()
	doc, err := Generate(context.Background(), data, o, r)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Incomplete)
	assert.Equal(t, 3, doc.Issues)
	assert.Equal(t, 2, doc.Unclassified)
	require.Len(t, doc.Sections, 4)
	assert.Equal(t, finding.Uncategorized, doc.Sections[3].Category)
	assert.Equal(t, 2, doc.Sections[3].Total)

	rel, _ := doc.Section(finding.Reliability)
	assert.Equal(t, 1, rel.Unknown)
	assert.Equal(t, finding.Unknown, rel.Counts[len(rel.Counts)-1].Severity)

	out := logs.String()
	assert.Contains(t, out, "issues with unrecognized severity")
	assert.Contains(t, out, "issues without a category")
	assert.Contains(t, out, "incomplete issue record")
}

func TestGenerateKeepsIncompleteIssues(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	o := opts()
	o.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	data := &Data{
		Issues: []finding.Issue{
			{Key: "a", Component: "", Type: finding.TypeBug, Severity: finding.Critical, Message: "no file"},
			{Key: "", Component: "demo:x.go", Type: finding.TypeBug, Severity: finding.Blocker, Message: "no key"},
		},
		Signal: scheme.SignalStandard,
	}
	r := newRecorder()
	doc, err := Generate(context.Background(), data, o, r)
	require.NoError(t, err)

	assert.Equal(t, 2, doc.Issues)
	assert.Equal(t, 2, doc.Incomplete)
	assert.Equal(t, 2, doc.Classified)
	rel, ok := doc.Section(finding.Reliability)
	require.True(t, ok)
	assert.Equal(t, 2, rel.Total)

	rows := r.rows[finding.Reliability]
	require.Len(t, rows, 2)
	assert.Equal(t, finding.Blocker, rows[0].Severity)
	assert.Equal(t, []string{"x.go"}, rows[0].PathLines)
	assert.Equal(t, finding.Critical, rows[1].Severity)
	assert.Equal(t, []string{section.MissingPath}, rows[1].PathLines)

	e := r.entries
	require.Len(t, e, 2)
	assert.Equal(t, finding.Blocker, e[0].Severity)
	assert.Equal(t, finding.Critical, e[1].Severity)

	assert.Equal(t, 2, strings.Count(logs.String(), "incomplete issue record"))
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	_, err := Generate(context.Background(), nil, opts(), newRecorder())
	assert.ErrorIs(t, err, ErrNoData)

	data := &Data{Issues: []finding.Issue{issue("1", "MAJOR", finding.TypeBug)}}

	r := newRecorder()
	r.failCommit = true
	_, err = Generate(context.Background(), data, opts(), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotContains(t, r.calls, "finish")

	r = newRecorder()
	r.failCover = true
	_, err = Generate(context.Background(), data, opts(), r)
	assert.ErrorContains(t, err, "cover")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Generate(ctx, data, opts(), newRecorder())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSortHotspots(t *testing.T) {
	t.Parallel()

	hs := []finding.Hotspot{
		{Key: "a", Component: "p:z.go", Probability: finding.Low},
		{Key: "b", Component: "p:b.go", Probability: "high", Line: 9},
		{Key: "c", Component: "p:b.go", Probability: finding.High, Line: 3},
		{Key: "d", Component: "p:a.go", Probability: finding.Medium},
		{Key: "e", Component: "p:a.go"},
	}
	got := SortHotspots(hs)
	var keys []string
	for _, h := range got {
		keys = append(keys, h.Key)
	}
	assert.Equal(t, []string{"c", "b", "d", "a", "e"}, keys)
	assert.Equal(t, "a", hs[0].Key, "input untouched")
}

func TestRuleKeys(t *testing.T) {
	t.Parallel()

	d := &Data{Issues: []finding.Issue{{Rule: "go:S1"}, {Rule: ""}, {Rule: "go:S2"}, {Rule: "go:S1"}}}
	assert.Equal(t, []string{"go:S1", "go:S2"}, d.RuleKeys())
}

func TestGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{0, "A"}, {1, "A"}, {1.5, "B"}, {2, "B"}, {3, "C"}, {3.1, "D"}, {4, "D"}, {4.01, "E"}, {5, "E"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score), "score %v", tt.score)
	}
	assert.Equal(t, scheme.UnknownColor, GradeColor(""))
	assert.Equal(t, "#D1FADF", GradeColor("A").Hex())
}

func TestNewCover(t *testing.T) {
	t.Parallel()

	data := &Data{
		Project: finding.Project{Key: "demo"},
		Measures: finding.Measures{
			MetricSecurityRating:    {Metric: MetricSecurityRating, Value: "1.0"},
			"reliability_rating":    {Metric: "reliability_rating", Value: "3.0"},
			MetricSecurityIssues:    {Metric: MetricSecurityIssues, Value: `{"total":4,"HIGH":1}`},
			MetricReliabilityIssues: {Metric: MetricReliabilityIssues, Value: "7"},
			MetricCoverage:          {Metric: MetricCoverage, Value: "85.26"},
			MetricLines:             {Metric: MetricLines, Value: "1200"},
		},
		QualityGate: &finding.QualityGate{Status: "OK"},
	}

	c := NewCover("id", data, scheme.MQR, fixedNow, nil)
	require.Len(t, c.Ratings, 3)
	assert.Equal(t, Rating{Category: finding.Security, Label: "Security", Grade: "A", Issues: "4"}, c.Ratings[0])
	assert.Equal(t, Rating{Category: finding.Reliability, Label: "Reliability", Grade: "C", Issues: "7"}, c.Ratings[1])
	assert.Equal(t, "", c.Ratings[2].Grade)
	assert.Equal(t, []Metric{
		{Label: "Lines of Code", Value: "1200"},
		{Label: "Coverage", Value: "85.3%"},
	}, c.Metrics)
	assert.True(t, c.Gate.Passed())
}

func TestMetricKeys(t *testing.T) {
	t.Parallel()

	keys := MetricKeys()
	assert.Len(t, keys, 12)
	assert.Contains(t, keys, MetricHotspots)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	data := &Data{
		Project: finding.Project{Key: "demo"},
		Issues:  []finding.Issue{issue("1", "MAJOR", finding.TypeBug)},
	}
	doc, err := Generate(context.Background(), data, opts(), newRecorder())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))

	var got map[string]any
	require.NoError(t, jsonutil.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "standard", got["mode"])
	assert.Equal(t, "report-1", got["id"])
	assert.Len(t, got["outline"], 1)
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestRenderSummary(t *testing.T) {
	t.Parallel()

	data := &Data{
		Project:     finding.Project{Key: "demo"},
		Issues:      []finding.Issue{issue("1", "MAJOR", finding.TypeBug), issue("2", "MINOR", "EXTERNAL")},
		QualityGate: &finding.QualityGate{Status: "ERROR"},
	}
	doc, err := Generate(context.Background(), data, opts(), newRecorder())
	require.NoError(t, err)

	tmpl, err := ParseSummary("")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, tmpl, doc))

	out := buf.String()
	assert.Contains(t, out, "demo (Standard Experience mode)")
	assert.Contains(t, out, "Reliability Issues")
	assert.Contains(t, out, "1 issue without a category")
	assert.Contains(t, out, "Quality gate: ERROR")

	tmpl, err = ParseSummary(`{{ range .Sections }}{{ .Category | lower }}={{ count . "major" }};{{ end }}`)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, RenderSummary(&buf, tmpl, doc))
	assert.Equal(t, "security=0;reliability=1;maintainability=0;", buf.String())

	_, err = ParseSummary("{{ .Nope ")
	assert.Error(t, err)

	_, err = LoadSummary("/nonexistent/summary.tmpl")
	assert.Error(t, err)
}

func TestSummaryStringKinds(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Mode: scheme.Standard,
		Sections: []SectionSummary{{
			Category: finding.Reliability,
			Counts:   []section.Count{{Severity: finding.Major, Label: "Major", Count: 2}},
		}},
	}

	tests := []struct {
		name string
		text string
		want string
		err  string
	}{
		{"category through lower", `{{ range .Sections }}{{ .Category | lower }}{{ end }}`, "reliability", ""},
		{"severity through title", `{{ range .Sections }}{{ range .Counts }}{{ .Severity | lower | title }}{{ end }}{{ end }}`, "Major", ""},
		{"two string args", `{{ range .Sections }}{{ replace "_" "-" .Category }}{{ end }}`, "RELIABILITY", ""},
		{"plain string still works", `{{ "ABC" | lower }}`, "abc", ""},
		{"non-string rejected", `{{ 5 | lower }}`, "", "expected string; got int"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tmpl, err := ParseSummary(tt.text)
			require.NoError(t, err)
			var buf bytes.Buffer
			err = RenderSummary(&buf, tmpl, doc)
			if tt.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestGenerateDiscard(t *testing.T) {
	t.Parallel()

	data := &Data{
		Project: finding.Project{Key: "demo"},
		Issues: []finding.Issue{
			issue("1", "MINOR", finding.TypeCodeSmell),
			issue("2", "MAJOR", finding.TypeCodeSmell),
			issue("3", "MAJOR", finding.TypeBug),
		},
	}
	doc, err := Generate(context.Background(), data, opts(), Discard{})
	require.NoError(t, err)

	assert.Equal(t, scheme.Standard, doc.Mode)
	assert.Equal(t, 3, doc.Classified)
	require.Len(t, doc.Outline, 3)
	assert.Equal(t, outline.Location{Page: 1, Y: 0}, doc.Outline[0].Location)
	assert.Equal(t, finding.Maintainability, doc.Outline[2].Category)
	assert.Equal(t, finding.Minor, doc.Outline[2].Severity)
	assert.Equal(t, outline.Location{Page: 1, Y: 1}, doc.Outline[2].Location)
}
