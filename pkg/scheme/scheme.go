package scheme

import "github.com/reflectsonar/reflectsonar/pkg/finding"

// Scheme is the ranking and coloring strategy for one Mode.
type Scheme interface {
	// Mode returns the mode the scheme implements.
	Mode() Mode

	// Levels returns the valid severities, most critical first. Every
	// section summary lists all of them.
	Levels() []finding.Severity

	// Ranked returns every recognized severity, most critical first:
	// Levels plus the extra levels a mode accepts but summarizes only
	// when they occur.
	Ranked() []finding.Severity

	// Summarized reports whether sev is one of Levels.
	Summarized(sev finding.Severity) bool

	// Rank returns the 0-based position of sev in Ranked. Unrecognized
	// values rank len(Ranked()), after every recognized level.
	Rank(sev finding.Severity) int

	// Less orders severities by rank. It is a strict weak order and is
	// safe to use as a sort comparator.
	Less(a, b finding.Severity) bool

	// Known reports whether sev is a member of Ranked.
	Known(sev finding.Severity) bool

	// Color returns the display color of sev, or UnknownColor.
	Color(sev finding.Severity) RGB

	// Label returns the human name of sev ("Unknown" when unrecognized).
	Label(sev finding.Severity) string

	// Badge returns the row marker for sev.
	Badge(sev finding.Severity) Badge

	// SeverityFor returns the severity the issue is displayed with in the
	// table of category c. In MQR mode one issue can have a different
	// severity per category.
	SeverityFor(issue *finding.Issue, c finding.Category) finding.Severity
}

// For returns the scheme of mode m.
func For(m Mode) Scheme {
	if m == MQR {
		return mqrScheme
	}
	return standardScheme
}

var (
	standardScheme Scheme = standard{newRankTable(standardLevels)}
	mqrScheme      Scheme = mqr{newRankTable(mqrLevels)}
)

type standard struct{ rankTable }

func (standard) Mode() Mode { return Standard }

func (standard) SeverityFor(issue *finding.Issue, _ finding.Category) finding.Severity {
	if issue.Severity == "" {
		return finding.Unknown
	}
	return issue.Severity
}

type mqr struct{ rankTable }

func (mqr) Mode() Mode { return MQR }

// SeverityFor picks the most severe impact whose quality maps to c. For the
// uncategorized bucket every impact is considered.
func (s mqr) SeverityFor(issue *finding.Issue, c finding.Category) finding.Severity {
	best := finding.Unknown
	found := false
	for _, imp := range issue.Impacts {
		if c != finding.Uncategorized {
			if ic, ok := imp.Quality.Category(); !ok || ic != c {
				continue
			}
		}
		if !found || s.Less(imp.Severity, best) {
			best = imp.Severity
			found = true
		}
	}
	if !found || best == "" {
		return finding.Unknown
	}
	return best
}
