package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// FromHTML converts a SonarQube rule description into markup. Block
// elements become line breaks, list items get a bullet, <pre> keeps its
// line structure and is set in code style. Links keep only their text.
func FromHTML(src string) string {
	var (
		b     strings.Builder
		pre   int
		skip  int
		blank = true // at the start of a line
		space bool   // whitespace seen but not yet written
	)
	brk := func() {
		space = false
		if !blank {
			b.WriteString("<br/>")
			blank = true
		}
	}
	flush := func() {
		if space && !blank {
			b.WriteByte(' ')
		}
		space = false
	}
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSuffix(b.String(), "<br/>")
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := string(z.Text())
			if pre > 0 {
				lines := strings.Split(strings.Trim(text, "\n"), "\n")
				for i, l := range lines {
					if i > 0 {
						b.WriteString("<br/>")
					}
					b.WriteString(Escape(l))
				}
				blank = false
				continue
			}
			fields := strings.Fields(text)
			if len(fields) == 0 {
				if text != "" {
					space = true
				}
				continue
			}
			if isSpace(text[0]) {
				space = true
			}
			flush()
			b.WriteString(Escape(strings.Join(fields, " ")))
			blank = false
			space = isSpace(text[len(text)-1])
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if tt == html.StartTagToken {
					skip++
				}
			case "br":
				space = false
				b.WriteString("<br/>")
				blank = true
			case "p", "div", "ul", "ol", "table", "tr":
				brk()
			case "li":
				brk()
				b.WriteString("• ")
				blank = false
			case "h1", "h2", "h3", "h4", "h5", "h6":
				brk()
				b.WriteString("<b>")
			case "pre":
				brk()
				b.WriteString("<code>")
				pre++
			case "code", "tt":
				if pre == 0 {
					flush()
					b.WriteString("<code>")
				}
			case "strong", "b":
				flush()
				b.WriteString("<b>")
			case "em", "i":
				flush()
				b.WriteString("<i>")
			case "td", "th":
				space = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "ul", "ol", "li", "table", "tr":
				brk()
			case "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString("</b>")
				blank = false
				brk()
			case "pre":
				if pre > 0 {
					pre--
					b.WriteString("</code>")
					blank = false
					brk()
				}
			case "code", "tt":
				if pre == 0 {
					b.WriteString("</code>")
				}
			case "strong", "b":
				b.WriteString("</b>")
			case "em", "i":
				b.WriteString("</i>")
			}
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
