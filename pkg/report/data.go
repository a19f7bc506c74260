package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
)

// Data is everything a report is built from. Slices keep server order.
type Data struct {
	Project     finding.Project      `json:"project"`
	Issues      []finding.Issue      `json:"issues"`
	Measures    finding.Measures     `json:"measures,omitempty"`
	Hotspots    []finding.Hotspot    `json:"hotspots,omitempty"`
	QualityGate *finding.QualityGate `json:"qualityGate,omitempty"`
	Rules       []finding.Rule       `json:"rules,omitempty"`

	// Signal is the server's explicit mode setting, if it exposed one.
	Signal scheme.Signal `json:"-"`

	FetchedAt time.Time `json:"fetchedAt,omitzero"`
}

// RuleKeys returns the distinct rule keys referenced by the issues, in
// first-seen order.
func (d *Data) RuleKeys() []string {
	seen := make(map[string]bool, len(d.Issues))
	var keys []string
	for i := range d.Issues {
		k := d.Issues[i].Rule
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// probabilityRank orders hotspot review priorities.
func probabilityRank(p finding.Severity) int {
	switch p {
	case finding.High:
		return 0
	case finding.Medium:
		return 1
	case finding.Low:
		return 2
	}
	return 3
}

// SortHotspots returns the hotspots ordered by review priority, then path
// and line. The input is not modified.
func SortHotspots(hs []finding.Hotspot) []finding.Hotspot {
	out := slices.Clone(hs)
	slices.SortStableFunc(out, func(a, b finding.Hotspot) int {
		pa := probabilityRank(finding.ParseSeverity(string(a.Probability)))
		pb := probabilityRank(finding.ParseSeverity(string(b.Probability)))
		return cmp.Or(
			cmp.Compare(pa, pb),
			cmp.Compare(a.Path(), b.Path()),
			cmp.Compare(a.Line, b.Line),
		)
	})
	return out
}

// SortRules returns the rules ordered by key. The input is not modified.
func SortRules(rs []finding.Rule) []finding.Rule {
	out := slices.Clone(rs)
	slices.SortFunc(out, func(a, b finding.Rule) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}
