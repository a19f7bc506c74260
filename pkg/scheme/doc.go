// Package scheme decides which SonarQube severity model a report uses and
// provides the ranking, coloring and classification rules for it.
//
// SonarQube exposes two mutually incompatible models. Standard Experience
// servers give each issue one of five legacy severities and a single type.
// Servers in Multi-Quality Rule (MQR) mode give each issue a set of impact
// pairs, one per affected software quality, rated HIGH, MEDIUM or LOW.
//
// The Mode is resolved once per report with Detect or Resolve, and the
// matching Scheme is obtained with For. Both are passed explicitly to every
// consumer; the package holds no global mode state.
package scheme
