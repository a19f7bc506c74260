package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/reflectsonar/reflectsonar/pkg/report"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
)

// Breakdown renders the non-zero severity counts of a section, each in
// its badge color: "Critical: 2  Minor: 1".
func Breakdown(s report.SectionSummary, sch scheme.Scheme) string {
	var parts []string
	for _, c := range s.Counts {
		if c.Count == 0 {
			continue
		}
		parts = append(parts, BadgeStyle(sch.Badge(c.Severity)).Render(c.Label)+": "+fmt.Sprint(c.Count))
	}
	if len(parts) == 0 {
		return StatLabelStyle.Render("none")
	}
	return strings.Join(parts, "  ")
}

// PrintSections prints one line per report section with its total and
// severity breakdown.
func PrintSections(w io.Writer, doc *report.Document) {
	if IsSilent() {
		return
	}
	sch := scheme.For(doc.Mode)
	label := lipgloss.NewStyle().Width(24)
	total := lipgloss.NewStyle().Width(6).Align(lipgloss.Right).Bold(true)
	for _, s := range doc.Sections {
		line := label.Render(s.Title) + total.Render(fmt.Sprint(s.Total)) + "   " + Breakdown(s, sch)
		if s.Unknown > 0 {
			line += WarnStyle.Render(fmt.Sprintf("  (%d unknown)", s.Unknown))
		}
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w, "  "+label.Render("Security Hotspots")+total.Render(fmt.Sprint(doc.Hotspots)))
	if doc.Unclassified > 0 {
		fmt.Fprintln(w, "  "+WarnStyle.Render(fmt.Sprintf("%d issue(s) without a category", doc.Unclassified)))
	}
}

// PrintSummary prints the end-of-run summary of a written report.
func PrintSummary(w io.Writer, doc *report.Document, path string, took time.Duration) {
	if IsSilent() {
		return
	}
	PrintSection(w, "Report")
	stat := func(name, value string) {
		fmt.Fprintf(w, "  %s %s\n", ConfigLabelStyle.Render(name), StatValueStyle.Render(value))
	}
	name := doc.Project.Name
	if name == "" {
		name = doc.Project.Key
	}
	stat("Project", name)
	stat("Mode", doc.Mode.Title())
	stat("Issues", fmt.Sprint(doc.Issues))
	if doc.QualityGate != "" {
		fmt.Fprintf(w, "  %s %s\n", ConfigLabelStyle.Render("Quality Gate"), GateStyle(doc.QualityGate).Render(doc.QualityGate))
	}
	fmt.Fprintln(w)
	PrintSections(w, doc)
	fmt.Fprintln(w)
	PrintSuccess(w, fmt.Sprintf("%s written (%d pages, %s)", path, doc.Pages, formatDuration(took)))
}
