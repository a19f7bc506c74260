package scheme

import (
	"strings"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
)

// Mode is the severity model in effect for a report.
type Mode int

const (
	// Standard is the legacy five-level model.
	Standard Mode = iota
	// MQR is the Multi-Quality Rule impact model.
	MQR
)

// String returns the mode name used in logs and JSON output.
func (m Mode) String() string {
	if m == MQR {
		return "mqr"
	}
	return "standard"
}

// Title returns the mode name shown in the report.
func (m Mode) Title() string {
	if m == MQR {
		return "Multi-Quality Rule"
	}
	return "Standard Experience"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Signal is the server's explicit mode setting, if it reported one.
type Signal int

const (
	SignalAbsent Signal = iota
	SignalStandard
	SignalMQR
)

// SettingKey is the server setting that carries the mode signal.
const SettingKey = "sonar.multi-quality-mode.enabled"

// ParseSignal converts the value of SettingKey into a Signal. present is
// false when the server did not return the setting at all. Values other
// than "true" and "false" are treated as absent.
func ParseSignal(value string, present bool) Signal {
	if !present {
		return SignalAbsent
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return SignalMQR
	case "false":
		return SignalStandard
	}
	return SignalAbsent
}

// String returns a short description of the signal.
func (s Signal) String() string {
	switch s {
	case SignalStandard:
		return "standard"
	case SignalMQR:
		return "mqr"
	}
	return "absent"
}

// Detect decides the report mode. An explicit signal wins. Without one, any
// issue carrying impact pairs means MQR. Everything else, including an
// empty issue set, falls back to Standard.
func Detect(signal Signal, issues []finding.Issue) Mode {
	switch signal {
	case SignalMQR:
		return MQR
	case SignalStandard:
		return Standard
	}
	for i := range issues {
		if issues[i].HasImpacts() {
			return MQR
		}
	}
	return Standard
}

// Resolve applies a configured override before falling back to Detect.
// override is "auto", "standard" or "mqr"; anything else means "auto".
func Resolve(override string, signal Signal, issues []finding.Issue) Mode {
	switch strings.ToLower(strings.TrimSpace(override)) {
	case "standard", "legacy":
		return Standard
	case "mqr":
		return MQR
	}
	return Detect(signal, issues)
}

// ValidOverride reports whether override is an accepted Resolve value.
func ValidOverride(override string) bool {
	switch strings.ToLower(strings.TrimSpace(override)) {
	case "", "auto", "standard", "legacy", "mqr":
		return true
	}
	return false
}
