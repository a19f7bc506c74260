// Package finding provides the SonarQube record types shared by the
// fetch, classification and rendering packages.
//
// An Issue carries one of two severity representations depending on the
// server's quality model: a legacy five-level Severity, or a list of
// software-quality Impacts. Normalize turns a fetched record into that
// tagged form once the report mode is known.
//
// Usage:
//
//	issue := raw.Normalize(mode == scheme.MQR)
//	if issue.HasImpacts() {
//	    // impact-based classification
//	}
package finding
