package finding

import "strings"

// Severity is a severity value as reported by SonarQube. Values are the
// upper-case strings used on the wire by both quality models.
type Severity string

// Legacy (Standard Experience) severities, most to least critical.
const (
	// Blocker represents a bug with a high probability to impact the
	// behaviour of the application in production.
	Blocker Severity = "BLOCKER"

	// Critical represents a bug with a low probability to impact
	// production, or a security flaw.
	Critical Severity = "CRITICAL"

	// Major represents a quality flaw which can highly impact developer
	// productivity.
	Major Severity = "MAJOR"

	// Minor represents a quality flaw which can slightly impact developer
	// productivity.
	Minor Severity = "MINOR"

	// Info represents neither a bug nor a quality flaw, just a finding.
	Info Severity = "INFO"
)

// Impact severities (Multi-Quality Rule mode), most to least critical.
const (
	High   Severity = "HIGH"
	Medium Severity = "MEDIUM"
	Low    Severity = "LOW"
)

// Unknown is the bucket for severities not recognized by the active mode.
const Unknown Severity = "UNKNOWN"

// ParseSeverity normalizes a wire value: surrounding space is trimmed and
// the value is upper-cased. An empty value yields Unknown.
func ParseSeverity(s string) Severity {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Unknown
	}
	return Severity(s)
}

// IsLegacy reports whether s is one of the five legacy levels.
func (s Severity) IsLegacy() bool {
	switch s {
	case Blocker, Critical, Major, Minor, Info:
		return true
	}
	return false
}

// IsImpact reports whether s is one of the three impact levels.
func (s Severity) IsImpact() bool {
	switch s {
	case High, Medium, Low:
		return true
	}
	return false
}

// String returns the severity as a string.
func (s Severity) String() string {
	return string(s)
}
