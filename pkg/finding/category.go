package finding

// Category is one of the report's issue buckets.
type Category string

const (
	Security        Category = "SECURITY"
	Reliability     Category = "RELIABILITY"
	Maintainability Category = "MAINTAINABILITY"

	// Uncategorized collects issues no rule could place. It only exists
	// when the report is configured to show them.
	Uncategorized Category = "UNCATEGORIZED"
)

// Categories returns the three fixed categories in report order.
func Categories() []Category {
	return []Category{Security, Reliability, Maintainability}
}

// Title returns the section heading for the category.
func (c Category) Title() string {
	switch c {
	case Security:
		return "Security Issues"
	case Reliability:
		return "Reliability Issues"
	case Maintainability:
		return "Maintainability Issues"
	case Uncategorized:
		return "Uncategorized Issues"
	}
	return string(c)
}

// String returns the category as a string.
func (c Category) String() string {
	return string(c)
}

// SoftwareQuality is the quality dimension of an impact pair.
type SoftwareQuality string

const (
	QualitySecurity        SoftwareQuality = "SECURITY"
	QualityReliability     SoftwareQuality = "RELIABILITY"
	QualityMaintainability SoftwareQuality = "MAINTAINABILITY"
)

// Category maps a quality dimension to its report category. The second
// result is false for dimensions the report does not know.
func (q SoftwareQuality) Category() (Category, bool) {
	switch q {
	case QualitySecurity:
		return Security, true
	case QualityReliability:
		return Reliability, true
	case QualityMaintainability:
		return Maintainability, true
	}
	return "", false
}

// IssueType is the legacy primary classification of an issue.
type IssueType string

const (
	TypeVulnerability   IssueType = "VULNERABILITY"
	TypeBug             IssueType = "BUG"
	TypeCodeSmell       IssueType = "CODE_SMELL"
	TypeSecurityHotspot IssueType = "SECURITY_HOTSPOT"
)
