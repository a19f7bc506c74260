package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/reflectsonar/reflectsonar/pkg/report"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
)

// Color palette
var (
	Primary   = lipgloss.Color("#126ED3") // SonarQube blue
	Secondary = lipgloss.Color("#00D4AA")

	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
	Bright  = lipgloss.Color("#FAFAFA")
)

// Pre-configured styles
var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(Bright).
			Bold(true).
			MarginTop(1)

	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Width(16)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(Bright)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(Bright).
			Bold(true)

	PassStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)
)

// Hex formats an RGB color for lipgloss.
func Hex(c scheme.RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

// BadgeStyle colors a severity like its badge in the PDF.
func BadgeStyle(b scheme.Badge) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(Hex(b.Color))
}

// GradeStyle renders a rating letter on its grade color.
func GradeStyle(grade string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("#000000")).
		Background(Hex(report.GradeColor(grade)))
}

// GateStyle returns the style for a quality gate status.
func GateStyle(status string) lipgloss.Style {
	switch status {
	case "OK":
		return PassStyle
	case "ERROR":
		return FailStyle
	case "":
		return StatLabelStyle
	}
	return WarnStyle
}
