package pdf

import (
	"strconv"
	"strings"

	"github.com/reflectsonar/reflectsonar/pkg/markup"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
)

var (
	textColor  = scheme.RGB{R: 33, G: 33, B: 33}
	mutedColor = scheme.RGB{R: 100, G: 100, B: 100}
	focusColor = scheme.RGB{R: 0xD5, G: 0, B: 0}
	titleColor = scheme.RGB{R: 0, G: 0, B: 139}
)

var namedColors = map[string]scheme.RGB{
	"black":    {R: 0, G: 0, B: 0},
	"red":      {R: 0xD5, G: 0, B: 0},
	"gray":     {R: 128, G: 128, B: 128},
	"grey":     {R: 128, G: 128, B: 128},
	"blue":     {R: 0, G: 0, B: 255},
	"darkblue": titleColor,
	"green":    {R: 0, G: 128, B: 0},
}

// parseColor reads "#RRGGBB", "#RGB" or a few color names.
func parseColor(s string) (scheme.RGB, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return scheme.RGB{}, false
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return scheme.RGB{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return scheme.RGB{}, false
	}
	return scheme.RGB{R: int(v >> 16 & 0xFF), G: int(v >> 8 & 0xFF), B: int(v & 0xFF)}, true
}

type font struct {
	family string
	style  string
	size   float64 // points
}

// mm is the font size in millimetres.
func (f font) mm() float64 {
	return f.size * 25.4 / 72
}

// textStyle is the base look of a block of markup.
type textStyle struct {
	font  font
	color scheme.RGB
	lineH float64
}

type segment struct {
	text  string // already translated to the font encoding
	font  font
	color scheme.RGB
	x     float64
}

type textLine struct {
	segs  []segment
	width float64
}

func (r *Renderer) setFont(f font) {
	r.pdf.SetFont(f.family, f.style, f.size)
}

func (r *Renderer) setTextColor(c scheme.RGB) {
	r.pdf.SetTextColor(c.R, c.G, c.B)
}

func (r *Renderer) width(f font, s string) float64 {
	r.setFont(f)
	return r.pdf.GetStringWidth(s)
}

// runStyle applies a run's inline style to the base style.
func runStyle(base textStyle, run markup.Run) (font, scheme.RGB) {
	f := base.font
	if run.Code {
		f.family = "Courier"
	}
	style := strings.ReplaceAll(f.style, "B", "")
	style = strings.ReplaceAll(style, "I", "")
	if run.Bold || strings.Contains(base.font.style, "B") {
		style += "B"
	}
	if run.Italic || strings.Contains(base.font.style, "I") {
		style += "I"
	}
	f.style = style
	c := base.color
	if run.Color != "" {
		if rc, ok := parseColor(run.Color); ok {
			c = rc
		}
	}
	return f, c
}

// fitPrefix returns how many leading bytes of s fit in w.
func (r *Renderer) fitPrefix(f font, s string, w float64) int {
	r.setFont(f)
	n := 0
	for n < len(s) && r.pdf.GetStringWidth(s[:n+1]) <= w {
		n++
	}
	return n
}

// layout breaks runs into lines no wider than w. Words longer than a
// line are split. Code runs keep their spacing.
func (r *Renderer) layout(runs []markup.Run, w float64, st textStyle) []textLine {
	var (
		lines   []textLine
		cur     textLine
		pending bool
	)
	flush := func() {
		lines = append(lines, cur)
		cur = textLine{}
	}
	// add appends a word, extending the last segment when the look matches.
	add := func(text string, f font, c scheme.RGB, gap, tw float64) {
		if n := len(cur.segs); n > 0 && cur.segs[n-1].font == f && cur.segs[n-1].color == c {
			if gap > 0 {
				text = " " + text
			}
			cur.segs[n-1].text += text
		} else {
			cur.segs = append(cur.segs, segment{text: text, font: f, color: c, x: cur.width + gap})
		}
		cur.width += gap + tw
	}

	for _, run := range runs {
		if run.Break {
			flush()
			pending = false
			continue
		}
		f, c := runStyle(st, run)
		text := run.Text
		if run.Code {
			text = strings.ReplaceAll(strings.ReplaceAll(text, "\t", "    "), " ", "\u00a0")
		}
		text = r.tr(text)
		space := r.width(f, " ")
		if strings.HasPrefix(text, " ") {
			pending = true
		}

		for i, word := range strings.Fields(text) {
			tw := r.width(f, word)
			gap := 0.0
			if (i > 0 || pending) && len(cur.segs) > 0 {
				gap = space
			}
			if len(cur.segs) > 0 && cur.width+gap+tw > w {
				flush()
				gap = 0
			}
			for cur.width+gap+tw > w {
				n := r.fitPrefix(f, word, w-cur.width-gap)
				if n == 0 {
					if len(cur.segs) > 0 {
						flush()
						gap = 0
						continue
					}
					n = 1
				}
				add(word[:n], f, c, gap, r.width(f, word[:n]))
				flush()
				gap = 0
				word = word[n:]
				tw = r.width(f, word)
			}
			if word != "" {
				add(word, f, c, gap, tw)
			}
		}
		pending = strings.HasSuffix(text, " ")
	}
	if len(cur.segs) > 0 {
		flush()
	}
	return lines
}

// layoutMarkup parses and lays out a markup string.
func (r *Renderer) layoutMarkup(s string, w float64, st textStyle) []textLine {
	return r.layout(markup.Parse(s), w, st)
}

// drawLines draws lines with their top-left corner at x, y.
func (r *Renderer) drawLines(lines []textLine, x, y float64, st textStyle) {
	for i, ln := range lines {
		top := y + float64(i)*st.lineH
		for _, seg := range ln.segs {
			r.setFont(seg.font)
			r.setTextColor(seg.color)
			r.pdf.Text(x+seg.x, baseline(top, st.lineH, seg.font), seg.text)
		}
	}
}

// baseline centers a font vertically in a line box.
func baseline(top, h float64, f font) float64 {
	return top + h/2 + 0.3*f.mm()
}

// paragraph draws markup at the current position, continuing on new
// pages as needed, and leaves the cursor below it.
func (r *Renderer) paragraph(s string, st textStyle) {
	lines := r.layoutMarkup(s, r.contentWidth(), st)
	for _, ln := range lines {
		r.ensure(st.lineH)
		r.drawLines([]textLine{ln}, marginLeft, r.pdf.GetY(), st)
		r.pdf.SetY(r.pdf.GetY() + st.lineH)
	}
}

// text draws a single line of plain text.
func (r *Renderer) text(s string, st textStyle) {
	r.paragraph(markup.Escape(s), st)
}
