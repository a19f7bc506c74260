// Package markup implements the small inline markup language used in
// report table cells, and converts SonarQube HTML into it.
//
// The language is a subset of HTML: <b>, <i>, <code>, <br/> and
// <font color="#RRGGBB">. Anything else is ignored. Text from third-party
// sources must go through Escape before it is embedded, otherwise a message
// such as "use <b> instead" would change the layout of the cell.
package markup

import (
	"strings"

	"golang.org/x/net/html"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape makes s safe to embed as literal text.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Run is a span of text with uniform style. A Break run carries no text
// and ends the current line.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
	Color  string
	Break  bool
}

type style struct {
	bold, italic, code int
	colors             []string
}

func (s *style) run(text string) Run {
	r := Run{Text: text, Bold: s.bold > 0, Italic: s.italic > 0, Code: s.code > 0}
	if n := len(s.colors); n > 0 {
		r.Color = s.colors[n-1]
	}
	return r
}

func dec(n *int) {
	if *n > 0 {
		*n--
	}
}

// Parse splits markup into styled runs. Entities are decoded, newlines in
// text become Break runs and unbalanced closing tags are ignored.
func Parse(markup string) []Run {
	var (
		runs []Run
		st   style
	)
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return runs
		case html.TextToken:
			text := string(z.Text())
			for i, line := range strings.Split(text, "\n") {
				if i > 0 {
					runs = append(runs, Run{Break: true})
				}
				if line != "" {
					runs = append(runs, st.run(line))
				}
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			switch t.Data {
			case "br":
				runs = append(runs, Run{Break: true})
			case "b", "strong":
				if tt == html.StartTagToken {
					st.bold++
				}
			case "i", "em":
				if tt == html.StartTagToken {
					st.italic++
				}
			case "code", "tt":
				if tt == html.StartTagToken {
					st.code++
				}
			case "font":
				if tt == html.StartTagToken {
					st.colors = append(st.colors, attr(t, "color"))
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br":
				runs = append(runs, Run{Break: true})
			case "b", "strong":
				dec(&st.bold)
			case "i", "em":
				dec(&st.italic)
			case "code", "tt":
				dec(&st.code)
			case "font":
				if n := len(st.colors); n > 0 {
					st.colors = st.colors[:n-1]
				}
			}
		}
	}
}

// Plain returns the text of runs with breaks as newlines.
func Plain(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		if r.Break {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(r.Text)
	}
	return b.String()
}

// StripTags returns the text content of an HTML fragment with entities
// decoded. SonarQube's source viewer wraps tokens in <span> elements.
func StripTags(fragment string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

func attr(t html.Token, key string) string {
	for _, a := range t.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
