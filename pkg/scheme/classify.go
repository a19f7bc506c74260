package scheme

import (
	"strings"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
)

// securityMarkers are tags that fold a legacy issue into Security.
var securityMarkers = []string{"security", "cwe", "owasp"}

// securityPrefixes are tag prefixes with the same effect ("cwe-79").
var securityPrefixes = []string{"cwe-", "owasp-"}

func hasSecurityMarker(issue *finding.Issue) bool {
	for _, tag := range issue.Tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		for _, m := range securityMarkers {
			if t == m {
				return true
			}
		}
		for _, p := range securityPrefixes {
			if strings.HasPrefix(t, p) {
				return true
			}
		}
	}
	return false
}

// Classify returns the categories the issue belongs to under mode m.
//
// In Standard mode the result has at most one element, derived from the
// issue type; a security marker tag overrides the type. In MQR mode there
// is one category per recognized quality dimension in the impacts, in
// report order. A nil result means the issue is unclassifiable.
func Classify(issue *finding.Issue, m Mode) []finding.Category {
	if m == MQR {
		var seen [3]bool
		for _, imp := range issue.Impacts {
			switch c, _ := imp.Quality.Category(); c {
			case finding.Security:
				seen[0] = true
			case finding.Reliability:
				seen[1] = true
			case finding.Maintainability:
				seen[2] = true
			}
		}
		var out []finding.Category
		for i, c := range finding.Categories() {
			if seen[i] {
				out = append(out, c)
			}
		}
		return out
	}

	if hasSecurityMarker(issue) {
		return []finding.Category{finding.Security}
	}
	switch finding.IssueType(strings.ToUpper(string(issue.Type))) {
	case finding.TypeVulnerability, finding.TypeSecurityHotspot:
		return []finding.Category{finding.Security}
	case finding.TypeBug:
		return []finding.Category{finding.Reliability}
	case finding.TypeCodeSmell:
		return []finding.Category{finding.Maintainability}
	}
	return nil
}

// PartitionOptions controls Partition.
type PartitionOptions struct {
	// Uncategorized adds an UNCATEGORIZED bucket for issues Classify
	// cannot place instead of only counting them.
	Uncategorized bool
}

// Grouping is the result of partitioning a report's issues by category.
type Grouping struct {
	// Buckets holds the issues of each category in fetch order. Every
	// fixed category has an entry, possibly empty.
	Buckets map[finding.Category][]*finding.Issue

	// Order lists the categories in report order.
	Order []finding.Category

	// Unclassified is the number of issues that fit no fixed category.
	Unclassified int

	// Total is the number of input issues.
	Total int
}

// Partition groups issues by category, keeping input order within each
// bucket. The returned pointers alias issues.
func Partition(issues []finding.Issue, m Mode, opts PartitionOptions) *Grouping {
	p := &Grouping{
		Buckets: make(map[finding.Category][]*finding.Issue, 4),
		Order:   finding.Categories(),
		Total:   len(issues),
	}
	for _, c := range p.Order {
		p.Buckets[c] = nil
	}
	if opts.Uncategorized {
		p.Order = append(p.Order, finding.Uncategorized)
		p.Buckets[finding.Uncategorized] = nil
	}
	for i := range issues {
		cats := Classify(&issues[i], m)
		if len(cats) == 0 {
			p.Unclassified++
			if opts.Uncategorized {
				p.Buckets[finding.Uncategorized] = append(p.Buckets[finding.Uncategorized], &issues[i])
			}
			continue
		}
		for _, c := range cats {
			p.Buckets[c] = append(p.Buckets[c], &issues[i])
		}
	}
	return p
}
