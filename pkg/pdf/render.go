package pdf

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reflectsonar/reflectsonar/pkg/defaults"
	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/markup"
	"github.com/reflectsonar/reflectsonar/pkg/outline"
	"github.com/reflectsonar/reflectsonar/pkg/report"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
	"github.com/reflectsonar/reflectsonar/pkg/section"
)

// Outline titles of the fixed parts.
const (
	OverviewTitle = "Report Overview"
	HotspotsTitle = "Security Hotspots"
	RulesTitle    = "Rules Reference"
)

var (
	titleStyle    = textStyle{font: font{"Helvetica", "B", 20}, color: textColor, lineH: 10}
	subtitleStyle = textStyle{font: font{"Helvetica", "I", 10}, color: mutedColor, lineH: 6}
	headingStyle  = textStyle{font: font{"Helvetica", "B", 16}, color: textColor, lineH: 9}
	metaStyle     = textStyle{font: font{"Helvetica", "B", 9}, color: mutedColor, lineH: 5}
	noteStyle     = textStyle{font: font{"Helvetica", "I", 10}, color: mutedColor, lineH: 6}
	ruleStyle     = textStyle{font: font{"Helvetica", "B", 11}, color: textColor, lineH: 6}
	sectionStyle  = textStyle{font: font{"Helvetica", "B", 9}, color: titleColor, lineH: 5}
	cellStyle     = textStyle{font: font{"Helvetica", "", 9}, color: textColor, lineH: 7}
)

var titleCase = cases.Title(language.English)

// sectionInfo keeps what the outline needs from an issue section.
type sectionInfo struct {
	category finding.Category
	counts   map[finding.Severity]section.Count
}

func (r *Renderer) heading(title string) {
	r.text(title, headingStyle)
	r.pdf.Ln(2)
}

// Cover implements report.Renderer.
func (r *Renderer) Cover(c *report.Cover) error {
	pdf := r.pdf
	r.reportID = c.ReportID

	name := c.Project.Name
	if name == "" {
		name = c.Project.Key
	}
	pdf.SetTitle(name+" code quality report", true)
	pdf.SetSubject(c.Mode.Title(), true)
	pdf.SetAuthor(defaults.ToolName, true)
	if !c.Generated.IsZero() {
		pdf.SetCreationDate(c.Generated)
	}

	pdf.AddPage()
	r.anchors = append(r.anchors, anchor{title: OverviewTitle, at: outline.Location{Page: pdf.PageNo()}})
	pdf.SetXY(marginLeft, r.coverTop)

	r.setFont(titleStyle.font)
	r.setTextColor(titleStyle.color)
	pdf.CellFormat(0, titleStyle.lineH, "Code Quality Report", "", 1, "R", false, 0, "")
	r.setFont(subtitleStyle.font)
	r.setTextColor(subtitleStyle.color)
	pdf.CellFormat(0, subtitleStyle.lineH, r.tr(name), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	r.coverInfo(c)
	pdf.Ln(5)
	r.coverGate(c.Gate)
	pdf.Ln(6)
	r.coverRatings(c.Ratings)
	r.coverMetrics(c.Metrics)
	pdf.Ln(5)
	r.coverSections(c.Sections)
	return pdf.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04 MST")
}

func (r *Renderer) coverInfo(c *report.Cover) {
	pdf := r.pdf
	rows := [][2]string{
		{"Project", c.Project.Name},
		{"Project Key", c.Project.Key},
		{"Analysis Date", formatTime(c.Project.AnalysisDate)},
		{"Revision", c.Project.Revision},
		{"Quality Mode", c.Mode.Title()},
		{"Generated", formatTime(c.Generated)},
		{"Report ID", c.ReportID},
	}
	pdf.SetDrawColor(headerFill.R, headerFill.G, headerFill.B)
	pdf.SetFillColor(245, 245, 245)
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		r.setFont(font{"Helvetica", "B", 9})
		r.setTextColor(textColor)
		pdf.CellFormat(45, cellStyle.lineH, row[0], "1", 0, "L", true, 0, "")
		r.setFont(cellStyle.font)
		pdf.CellFormat(0, cellStyle.lineH, r.tr(row[1]), "1", 1, "L", false, 0, "")
	}
}

func (r *Renderer) coverGate(g *finding.QualityGate) {
	pdf := r.pdf
	status, fill := "Unavailable", scheme.UnknownColor
	if g != nil {
		status, fill = "Failed", report.GradeColor("E")
		if g.Passed() {
			status, fill = "Passed", report.GradeColor("A")
		}
	}
	pdf.SetFillColor(fill.R, fill.G, fill.B)
	pdf.SetDrawColor(fill.R, fill.G, fill.B)
	r.setFont(font{"Helvetica", "B", 12})
	r.setTextColor(textColor)
	pdf.CellFormat(0, 10, "Quality Gate: "+status, "1", 1, "C", true, 0, "")

	if g == nil {
		return
	}
	for _, cond := range g.Conditions {
		if cond.Status != "ERROR" {
			continue
		}
		line := cond.Metric + ": " + cond.Actual
		if cond.Threshold != "" {
			line += " (threshold " + cond.Threshold + ")"
		}
		r.text("- "+line, textStyle{font: font{"Helvetica", "", 9}, color: focusColor, lineH: 5})
	}
}

func (r *Renderer) coverRatings(ratings []report.Rating) {
	if len(ratings) == 0 {
		return
	}
	pdf := r.pdf
	r.ensure(32)
	y := pdf.GetY()
	colW := r.contentWidth() / float64(len(ratings))
	const radius = 8.0
	for i, rt := range ratings {
		cx := marginLeft + colW*float64(i) + colW/2
		cy := y + radius + 1
		letter, fill := rt.Grade, report.GradeColor(rt.Grade)
		if letter == "" {
			letter = "?"
		}
		pdf.SetFillColor(fill.R, fill.G, fill.B)
		pdf.Circle(cx, cy, radius, "F")

		big := font{"Helvetica", "B", 16}
		r.setFont(big)
		r.setTextColor(textColor)
		pdf.Text(cx-pdf.GetStringWidth(letter)/2, cy+0.35*big.mm(), letter)

		r.centered(rt.Label, font{"Helvetica", "B", 9}, textColor, cx, cy+radius+5)
		if rt.Issues != "" {
			noun := "issues"
			if rt.Issues == "1" {
				noun = "issue"
			}
			r.centered(rt.Issues+" "+noun, font{"Helvetica", "", 8}, mutedColor, cx, cy+radius+9)
		}
	}
	pdf.SetXY(marginLeft, y+2*radius+15)
}

func (r *Renderer) centered(s string, f font, c scheme.RGB, cx, y float64) {
	s = r.tr(s)
	r.setFont(f)
	r.setTextColor(c)
	r.pdf.Text(cx-r.pdf.GetStringWidth(s)/2, y, s)
}

func (r *Renderer) coverMetrics(metrics []report.Metric) {
	if len(metrics) == 0 {
		return
	}
	pdf := r.pdf
	const perRow, cellH = 2, 12.0
	cellW := r.contentWidth() / perRow
	pdf.SetDrawColor(headerFill.R, headerFill.G, headerFill.B)
	for i, m := range metrics {
		col := i % perRow
		if col == 0 {
			r.ensure(cellH)
		}
		x, y := marginLeft+float64(col)*cellW, pdf.GetY()
		pdf.Rect(x, y, cellW, cellH, "D")
		r.setFont(font{"Helvetica", "", 8})
		r.setTextColor(mutedColor)
		pdf.Text(x+cellPad, y+4, r.tr(m.Label))
		r.setFont(font{"Helvetica", "B", 11})
		r.setTextColor(textColor)
		pdf.Text(x+cellPad, y+9.5, r.tr(m.Value))
		if col == perRow-1 || i == len(metrics)-1 {
			pdf.SetXY(marginLeft, y+cellH)
		}
	}
}

func (r *Renderer) coverSections(sections []report.SectionSummary) {
	if len(sections) == 0 {
		return
	}
	pdf := r.pdf
	w := [3]float64{55, 20, r.contentWidth() - 75}
	r.ensure(headerH + float64(len(sections))*cellStyle.lineH)
	pdf.SetFillColor(headerFill.R, headerFill.G, headerFill.B)
	pdf.SetDrawColor(gridColor.R, gridColor.G, gridColor.B)
	r.setFont(headerStyle.font)
	r.setTextColor(headerStyle.color)
	for i, h := range []string{"Category", "Issues", "Breakdown"} {
		pdf.CellFormat(w[i], headerH, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(headerH)

	r.setFont(cellStyle.font)
	for _, s := range sections {
		var parts []string
		for _, c := range s.Counts {
			if c.Count > 0 {
				parts = append(parts, fmt.Sprintf("%s: %d", c.Label, c.Count))
			}
		}
		breakdown := strings.Join(parts, ", ")
		if breakdown == "" {
			breakdown = "-"
		}
		if n := r.fitPrefix(cellStyle.font, breakdown, w[2]-2); n < len(breakdown) {
			breakdown = breakdown[:n]
		}
		pdf.CellFormat(w[0], cellStyle.lineH, r.tr(s.Title), "1", 0, "L", false, 0, "")
		pdf.CellFormat(w[1], cellStyle.lineH, fmt.Sprint(s.Total), "1", 0, "C", false, 0, "")
		pdf.CellFormat(w[2], cellStyle.lineH, r.tr(breakdown), "1", 1, "L", false, 0, "")
	}
}

// BeginSection implements report.Renderer. Every section starts on a new
// page.
func (r *Renderer) BeginSection(s *section.Section) (section.Sink, error) {
	if r.pdf.PageCount() == 0 {
		return nil, errors.New("pdf: section before cover")
	}
	r.newPage()
	info := &sectionInfo{category: s.Category, counts: make(map[finding.Severity]section.Count, len(s.Summary))}
	for _, c := range s.Summary {
		info.counts[c.Severity] = c
	}
	r.anchors = append(r.anchors, anchor{title: s.Title, at: r.here(), sec: info})

	r.heading(s.Title)
	r.text(s.SummaryLine(), metaStyle)
	if s.Unknown > 0 {
		r.text(fmt.Sprintf("%d with a severity outside the %s scale.", s.Unknown, s.Mode.Title()), metaStyle)
	}
	r.pdf.Ln(5)

	if s.Empty() {
		r.pdf.Ln(40)
		r.text("No issues found in this category.", noteStyle)
		return emptySink{r}, r.pdf.Error()
	}
	t := r.beginTable([3]string{"Severity", "File Path", "Rule & Message"})
	return &sectionSink{r: r, t: t}, r.pdf.Error()
}

// EndSection implements report.Renderer.
func (r *Renderer) EndSection(*section.Section) error {
	return r.pdf.Error()
}

var hotspotBadges = map[finding.Severity]scheme.Badge{
	finding.High:   {Color: scheme.RGB{R: 0xD5, G: 0x00, B: 0x00}, Letter: "H", Label: "High"},
	finding.Medium: {Color: scheme.RGB{R: 0xFF, G: 0x98, B: 0x00}, Letter: "M", Label: "Medium"},
	finding.Low:    {Color: scheme.RGB{R: 0xFF, G: 0xC1, B: 0x07}, Letter: "L", Label: "Low"},
}

func hotspotBadge(p finding.Severity) scheme.Badge {
	if b, ok := hotspotBadges[p]; ok {
		return b
	}
	return scheme.Badge{Color: scheme.UnknownColor, Letter: "?", Label: "Unknown"}
}

func hotspotRow(h *finding.Hotspot) tableRow {
	lines := section.FormatPath(h.Path(), section.PathWidth)
	for i := range lines {
		lines[i] = markup.Escape(lines[i])
	}
	loc := strings.Join(lines, "<br/>")
	if h.Line > 0 {
		loc += fmt.Sprintf("<br/><b>(Line %d)</b>", h.Line)
	}

	title := h.Category
	if title == "" {
		title = h.Rule
	}
	body := "<b>" + markup.Escape(title) + "</b><br/>" + markup.Escape(h.Message)
	if h.Status != "" {
		body += "<br/><i>" + markup.Escape(titleCase.String(strings.ReplaceAll(h.Status, "_", " "))) + "</i>"
	}
	return tableRow{badge: hotspotBadge(h.Probability), location: loc, body: body, excerpt: h.Excerpt}
}

// hotspotSummary renders "Total: N security hotspots (High: 1, Low: 2)".
func hotspotSummary(hs []finding.Hotspot) string {
	counts := map[finding.Severity]int{}
	for _, h := range hs {
		counts[h.Probability]++
	}
	noun := "security hotspots"
	if len(hs) == 1 {
		noun = "security hotspot"
	}
	line := fmt.Sprintf("Total: %d %s", len(hs), noun)
	var parts []string
	for _, p := range []finding.Severity{finding.High, finding.Medium, finding.Low} {
		if n := counts[p]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", hotspotBadges[p].Label, n))
		}
	}
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	return line
}

// Hotspots implements report.Renderer. hs is drawn in the given order.
func (r *Renderer) Hotspots(hs []finding.Hotspot) error {
	r.newPage()
	r.anchors = append(r.anchors, anchor{title: HotspotsTitle, at: r.here()})
	r.heading(HotspotsTitle)
	r.text(hotspotSummary(hs), metaStyle)
	r.pdf.Ln(5)

	if len(hs) == 0 {
		r.pdf.Ln(40)
		r.text("No security hotspots found.", noteStyle)
		return r.pdf.Error()
	}
	t := r.beginTable([3]string{"Priority", "File Path", "Category & Message"})
	for i := range hs {
		l := r.layoutRow(&hs[i], hotspotRow(&hs[i]))
		r.place(t, l)
		r.drawRow(l)
	}
	return r.pdf.Error()
}

// Rules implements report.Renderer.
func (r *Renderer) Rules(rs []finding.Rule) error {
	r.newPage()
	r.anchors = append(r.anchors, anchor{title: RulesTitle, at: r.here()})
	r.heading(RulesTitle)

	if len(rs) == 0 {
		r.text("No rule data available.", noteStyle)
		return r.pdf.Error()
	}
	noun := "rules"
	if len(rs) == 1 {
		noun = "rule"
	}
	r.text(fmt.Sprintf("This section contains %d %s found in the analysis.", len(rs), noun), bodyStyle)
	r.pdf.Ln(3)

	for _, rule := range rs {
		r.ensure(ruleStyle.lineH + bodyStyle.lineH + sectionStyle.lineH + 3*bodyStyle.lineH)
		name := rule.Name
		if name == "" {
			name = rule.Key
		}
		r.text(name, ruleStyle)
		meta := "Key: " + rule.Key
		if rule.Language != "" {
			meta += "  |  " + rule.Language
		}
		r.text(meta, textStyle{font: font{"Helvetica", "", 9}, color: mutedColor, lineH: 5})

		if len(rule.Sections) == 0 {
			r.text("No description sections available.", bodyStyle)
		}
		for _, sec := range rule.Sections {
			r.ensure(sectionStyle.lineH + 2*bodyStyle.lineH)
			r.pdf.Ln(1)
			r.text(sec.Title()+":", sectionStyle)
			content := markup.FromHTML(sec.Content)
			if strings.TrimSpace(markup.Plain(markup.Parse(content))) == "" {
				r.text("No content available", noteStyle)
				continue
			}
			r.paragraph(content, bodyStyle)
		}
		r.pdf.Ln(4)
	}
	return r.pdf.Error()
}

// Finish implements report.Renderer. It builds the document outline: one
// level-0 entry per part and, below each issue section, one level-1 entry
// per severity at its first row.
func (r *Renderer) Finish(entries []outline.Entry) error {
	if r.finished {
		return errors.New("pdf: Finish called twice")
	}
	if r.pdf.PageCount() == 0 {
		r.newPage()
	}
	last := r.pdf.PageNo()
	for _, a := range r.anchors {
		r.bookmark(a.title, 0, a.at)
		if a.sec == nil {
			continue
		}
		for _, e := range outline.Group(entries, a.sec.category) {
			title := titleCase.String(string(e.Severity))
			if c, ok := a.sec.counts[e.Severity]; ok {
				title = fmt.Sprintf("%s (%d)", c.Label, c.Count)
			}
			r.bookmark(title, 1, e.Location)
		}
	}
	r.pdf.SetPage(last)
	r.finished = true
	return r.pdf.Error()
}

func (r *Renderer) bookmark(title string, level int, at outline.Location) {
	if at.Page < 1 || at.Page > r.pdf.PageCount() {
		r.log.Warn("outline target out of range", slog.String("title", title), slog.Int("page", at.Page))
		return
	}
	r.pdf.SetPage(at.Page)
	r.pdf.Bookmark(r.tr(title), level, at.Y)
}
