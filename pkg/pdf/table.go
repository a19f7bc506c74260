package pdf

import (
	"fmt"
	"strings"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/outline"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
	"github.com/reflectsonar/reflectsonar/pkg/section"
)

// Table geometry in millimetres.
const (
	badgeColW = 20.0
	pathColW  = 50.0
	cellPad   = 2.0
	headerH   = 8.0
	badgeR    = 4.0
	codeTitle = 5.0
)

var (
	headerFill  = scheme.RGB{R: 211, G: 211, B: 211}
	gridColor   = scheme.RGB{R: 128, G: 128, B: 128}
	excerptFill = scheme.RGB{R: 250, G: 250, B: 255}
	excerptLine = scheme.RGB{R: 179, G: 179, B: 230}
	white       = scheme.RGB{R: 255, G: 255, B: 255}
)

var (
	headerStyle = textStyle{font: font{"Helvetica", "B", 10}, color: textColor, lineH: headerH}
	pathStyle   = textStyle{font: font{"Helvetica", "", 8}, color: mutedColor, lineH: 3.6}
	bodyStyle   = textStyle{font: font{"Helvetica", "", 9}, color: textColor, lineH: 4.2}
	codeStyle   = textStyle{font: font{"Courier", "", 8}, color: textColor, lineH: 3.6}
	labelStyle  = textStyle{font: font{"Helvetica", "", 6}, color: mutedColor, lineH: 3}
)

// tableRow is one finding in renderer terms.
type tableRow struct {
	badge    scheme.Badge
	location string // markup
	body     string // markup
	excerpt  *finding.Excerpt
}

func sectionRow(row *section.Row) tableRow {
	return tableRow{badge: row.Badge, location: row.Location, body: row.Markup, excerpt: row.Excerpt}
}

// laidRow is a measured row ready to draw.
type laidRow struct {
	src   any
	badge scheme.Badge
	loc   []textLine
	body  []textLine
	code  []finding.SourceLine
	mainH float64
	codeH float64
}

func (l *laidRow) height() float64 {
	return l.mainH + l.codeH
}

// tableState is the table being drawn. Its header is repeated at the top
// of every page the table continues on.
type tableState struct {
	headers [3]string
	page    int     // page the header was last drawn on
	top     float64 // y below that header
	pending *laidRow
}

func (r *Renderer) columns() [3]float64 {
	return [3]float64{badgeColW, pathColW, r.contentWidth() - badgeColW - pathColW}
}

func (r *Renderer) beginTable(headers [3]string) *tableState {
	t := &tableState{headers: headers}
	r.ensure(headerH + 15)
	r.drawHeader(t)
	return t
}

func (r *Renderer) drawHeader(t *tableState) {
	pdf := r.pdf
	cols := r.columns()
	pdf.SetFillColor(headerFill.R, headerFill.G, headerFill.B)
	pdf.SetDrawColor(gridColor.R, gridColor.G, gridColor.B)
	pdf.SetLineWidth(0.2)
	r.setFont(headerStyle.font)
	r.setTextColor(headerStyle.color)
	pdf.SetX(marginLeft)
	for i, h := range t.headers {
		pdf.CellFormat(cols[i], headerH, r.tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(headerH)
	t.page = pdf.PageNo()
	t.top = pdf.GetY()
}

// capacity is the tallest row that fits below a table header.
func (r *Renderer) capacity() float64 {
	return r.bottom() - marginTop - headerH
}

func (r *Renderer) layoutRow(src any, row tableRow) *laidRow {
	cols := r.columns()
	l := &laidRow{
		src:   src,
		badge: row.badge,
		loc:   r.layoutMarkup(row.location, cols[1]-2*cellPad, pathStyle),
		body:  r.layoutMarkup(row.body, cols[2]-2*cellPad, bodyStyle),
		code:  row.excerpt.Lines(),
	}
	badgeH := 2*badgeR + labelStyle.lineH
	l.mainH = 2*cellPad + max(badgeH,
		float64(len(l.loc))*pathStyle.lineH,
		float64(len(l.body))*bodyStyle.lineH)

	capH := r.capacity()
	if l.mainH > capH {
		keep := int((capH - 2*cellPad) / bodyStyle.lineH)
		l.body = l.body[:max(1, keep)]
		l.mainH = capH
	}
	if len(l.code) > 0 {
		room := int((capH - l.mainH - 2*cellPad - codeTitle) / codeStyle.lineH)
		if room < len(l.code) {
			l.code = trimExcerpt(l.code, room)
		}
		if len(l.code) > 0 {
			l.codeH = 2*cellPad + codeTitle + float64(len(l.code))*codeStyle.lineH
		}
	}
	return l
}

// trimExcerpt keeps at most n lines, centered on the focus line.
func trimExcerpt(lines []finding.SourceLine, n int) []finding.SourceLine {
	if n <= 0 {
		return nil
	}
	if n >= len(lines) {
		return lines
	}
	focus := 0
	for i, l := range lines {
		if l.Focus {
			focus = i
			break
		}
	}
	start := min(max(0, focus-n/2), len(lines)-n)
	return lines[start : start+n]
}

// place moves to a new page, repeating the header, when row does not fit
// and returns where it will be drawn.
func (r *Renderer) place(t *tableState, l *laidRow) outline.Location {
	fresh := r.pdf.PageNo() == t.page && r.pdf.GetY() <= t.top && t.top <= marginTop+headerH
	if !fresh && r.pdf.GetY()+l.height() > r.bottom() {
		r.newPage()
		r.drawHeader(t)
	}
	t.pending = l
	return r.here()
}

func (r *Renderer) drawRow(l *laidRow) {
	pdf := r.pdf
	cols := r.columns()
	x, y := marginLeft, pdf.GetY()

	pdf.SetDrawColor(gridColor.R, gridColor.G, gridColor.B)
	pdf.SetLineWidth(0.2)
	cx := x
	for _, w := range cols {
		pdf.Rect(cx, y, w, l.mainH, "D")
		cx += w
	}

	r.drawBadge(l.badge, x+cols[0]/2, y+cellPad+badgeR)
	r.drawLines(l.loc, x+cols[0]+cellPad, y+cellPad, pathStyle)
	r.drawLines(l.body, x+cols[0]+cols[1]+cellPad, y+cellPad, bodyStyle)

	if l.codeH > 0 {
		r.drawExcerpt(l.code, x, y+l.mainH, l.codeH)
	}
	pdf.SetXY(marginLeft, y+l.height())
}

func (r *Renderer) drawBadge(b scheme.Badge, cx, cy float64) {
	pdf := r.pdf
	pdf.SetFillColor(b.Color.R, b.Color.G, b.Color.B)
	pdf.Circle(cx, cy, badgeR, "F")

	f := font{"Helvetica", "B", 9}
	r.setFont(f)
	r.setTextColor(white)
	letter := r.tr(b.Letter)
	pdf.Text(cx-pdf.GetStringWidth(letter)/2, cy+0.35*f.mm(), letter)

	if b.Label != "" {
		label := r.tr(b.Label)
		r.setFont(labelStyle.font)
		r.setTextColor(labelStyle.color)
		pdf.Text(cx-pdf.GetStringWidth(label)/2, baseline(cy+badgeR, labelStyle.lineH, labelStyle.font), label)
	}
}

// excerptPrefix numbers a source line, marking the focus line.
func excerptPrefix(l finding.SourceLine) string {
	if l.Focus {
		return fmt.Sprintf(">>> %3d: ", l.Number)
	}
	return fmt.Sprintf("    %3d: ", l.Number)
}

func (r *Renderer) drawExcerpt(lines []finding.SourceLine, x, y, h float64) {
	pdf := r.pdf
	w := r.contentWidth()
	pdf.SetFillColor(excerptFill.R, excerptFill.G, excerptFill.B)
	pdf.SetDrawColor(excerptLine.R, excerptLine.G, excerptLine.B)
	pdf.Rect(x, y, w, h, "FD")

	title := font{"Helvetica", "B", 8}
	r.setFont(title)
	r.setTextColor(titleColor)
	pdf.Text(x+cellPad, baseline(y+cellPad, codeTitle, title), "Problematic Code:")

	plain, bold := codeStyle.font, font{"Courier", "B", 8}
	avail := w - 2*cellPad
	top := y + cellPad + codeTitle
	for i, l := range lines {
		prefix := excerptPrefix(l)
		code := r.tr(strings.ReplaceAll(l.Code, "\t", "    "))
		f, numColor, codeColor := plain, gridColor, textColor
		if l.Focus {
			f, numColor, codeColor = bold, focusColor, focusColor
		}
		by := baseline(top+float64(i)*codeStyle.lineH, codeStyle.lineH, f)
		px := r.width(f, prefix)
		r.setTextColor(numColor)
		pdf.Text(x+cellPad, by, prefix)

		if n := r.fitPrefix(f, code, avail-px); n < len(code) {
			code = code[:n]
		}
		r.setFont(f)
		r.setTextColor(codeColor)
		pdf.Text(x+cellPad+px, by, code)
	}
}

// sectionSink streams the rows of one issue section into the table.
type sectionSink struct {
	r *Renderer
	t *tableState
}

// Place implements section.Sink.
func (s *sectionSink) Place(row *section.Row) outline.Location {
	return s.r.place(s.t, s.r.layoutRow(row, sectionRow(row)))
}

// Commit implements section.Sink.
func (s *sectionSink) Commit(row *section.Row) error {
	l := s.t.pending
	if l == nil || l.src != any(row) {
		s.Place(row)
		l = s.t.pending
	}
	s.t.pending = nil
	s.r.drawRow(l)
	return s.r.pdf.Error()
}

// emptySink is handed out for sections without rows.
type emptySink struct{ r *Renderer }

func (s emptySink) Place(*section.Row) outline.Location { return s.r.here() }
func (s emptySink) Commit(*section.Row) error {
	return fmt.Errorf("pdf: row committed to an empty section")
}
