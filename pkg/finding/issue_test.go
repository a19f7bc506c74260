package finding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawIssue() Issue {
	return Issue{
		Key:       "AX-1",
		Component: "shop:src/cart/total.go",
		Rule:      "go:S1192",
		Message:   "Define a constant",
		Type:      TypeCodeSmell,
		Severity:  "major",
		Impacts: []Impact{
			{Quality: "maintainability", Severity: "low"},
			{Quality: QualitySecurity, Severity: High},
		},
	}
}

func TestNormalize_Legacy(t *testing.T) {
	t.Parallel()

	got := rawIssue().Normalize(false)
	assert.Equal(t, Major, got.Severity)
	assert.Empty(t, got.Impacts)
	assert.False(t, got.HasImpacts())
}

func TestNormalize_MQR(t *testing.T) {
	t.Parallel()

	got := rawIssue().Normalize(true)
	assert.Empty(t, got.Severity)
	require.Len(t, got.Impacts, 2)
	assert.Equal(t, Impact{Quality: QualityMaintainability, Severity: Low}, got.Impacts[0])
	assert.Equal(t, Impact{Quality: QualitySecurity, Severity: High}, got.Impacts[1])
}

func TestNormalize_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	in := rawIssue()
	out := in.Normalize(true)
	out.Impacts[0].Severity = Medium
	assert.Equal(t, Severity("low"), in.Impacts[0].Severity)
}

func TestNormalize_LegacyEmptySeverityIsUnknown(t *testing.T) {
	t.Parallel()

	in := rawIssue()
	in.Severity = ""
	assert.Equal(t, Unknown, in.Normalize(false).Severity)
}

func TestIssuePathAndRule(t *testing.T) {
	t.Parallel()

	i := rawIssue()
	assert.Equal(t, "src/cart/total.go", i.Path())
	assert.Equal(t, "S1192", i.ShortRule())

	i.Rule = "S100"
	i.Component = "main.go"
	assert.Equal(t, "S100", i.ShortRule())
	assert.Equal(t, "main.go", i.Path())
}

func TestIssueHasTag(t *testing.T) {
	t.Parallel()

	i := Issue{Tags: []string{"CWE", "owasp-a3"}}
	assert.True(t, i.HasTag("cwe"))
	assert.False(t, i.HasTag("owasp"))
}

func TestIssueValidate(t *testing.T) {
	t.Parallel()

	ok := rawIssue()
	require.NoError(t, ok.Validate())

	noKey := rawIssue()
	noKey.Key = ""
	assert.True(t, errors.Is(noKey.Validate(), ErrMissingKey))

	noComp := rawIssue()
	noComp.Component = ""
	err := noComp.Validate()
	assert.True(t, errors.Is(err, ErrMissingComponent))
	assert.Contains(t, err.Error(), "AX-1")
}

func TestExcerptLines(t *testing.T) {
	t.Parallel()

	e := &Excerpt{StartLine: 10, Focus: 11, Text: "a := 1\nb := a\nreturn b\n"}
	lines := e.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, SourceLine{Number: 10, Code: "a := 1"}, lines[0])
	assert.Equal(t, SourceLine{Number: 11, Code: "b := a", Focus: true}, lines[1])
	assert.Equal(t, 12, lines[2].Number)

	var nilExcerpt *Excerpt
	assert.Nil(t, nilExcerpt.Lines())
}

func TestMeasuresFloat(t *testing.T) {
	t.Parallel()

	ms := Measures{
		"coverage": {Metric: "coverage", Value: "85.3"},
		"broken":   {Metric: "broken", Value: "n/a"},
	}
	assert.InDelta(t, 85.3, ms.Float("coverage", 0), 0.0001)
	assert.Equal(t, 1.0, ms.Float("broken", 1))
	assert.Equal(t, 2.0, ms.Float("missing", 2))
	assert.Equal(t, "85.3", ms.Value("coverage"))
}

func TestRuleSectionTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "How To Fix", RuleSection{Key: "how_to_fix"}.Title())
	assert.Equal(t, "Root Cause", RuleSection{Key: "root_cause"}.Title())
	assert.Equal(t, "Description", RuleSection{}.Title())
}

func TestSoftwareQualityCategory(t *testing.T) {
	t.Parallel()

	c, ok := QualityReliability.Category()
	assert.True(t, ok)
	assert.Equal(t, Reliability, c)

	_, ok = SoftwareQuality("PORTABILITY").Category()
	assert.False(t, ok)
}
