package scheme

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
)

// RGB is a display color.
type RGB struct {
	R, G, B int
}

// Hex returns the color as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// UnknownColor marks severities the active mode does not recognize.
var UnknownColor = RGB{0x9E, 0x9E, 0x9E}

// level is one row of a mode's rank table. Extra levels rank and color
// like any other but are summarized only when they occur.
type level struct {
	sev   finding.Severity
	color RGB
	extra bool
}

var standardLevels = []level{
	{finding.Blocker, RGB{0xD5, 0x00, 0x00}, false},
	{finding.Critical, RGB{0xFF, 0x57, 0x22}, false},
	{finding.Major, RGB{0xFF, 0x98, 0x00}, false},
	{finding.Minor, RGB{0xFF, 0xC1, 0x07}, false},
	{finding.Info, RGB{0x21, 0x96, 0xF3}, false},
}

// Recent servers also send BLOCKER and INFO impacts.
var mqrLevels = []level{
	{finding.Blocker, RGB{0x6B, 0x01, 0x01}, true},
	{finding.High, RGB{0xEB, 0x0A, 0x0A}, false},
	{finding.Medium, RGB{0xFF, 0x66, 0x00}, false},
	{finding.Low, RGB{0xFF, 0xD0, 0x01}, false},
	{finding.Info, RGB{0x4C, 0xA3, 0xEB}, true},
}

// Badge is the visual marker drawn next to a table row.
type Badge struct {
	Color  RGB
	Letter string
	Label  string
}

var titleCase = cases.Title(language.English)

// label renders a wire value such as "CRITICAL" as "Critical".
func label(sev finding.Severity) string {
	if sev == "" {
		return titleCase.String(string(finding.Unknown))
	}
	return titleCase.String(string(sev))
}

// rankTable is the shared implementation of both schemes. Ranks are the
// position in levels, extra levels included; anything else ranks after
// the last level.
type rankTable struct {
	levels []level
	index  map[finding.Severity]int
}

func newRankTable(levels []level) rankTable {
	t := rankTable{levels: levels, index: make(map[finding.Severity]int, len(levels))}
	for i, l := range levels {
		t.index[l.sev] = i
	}
	return t
}

func (t rankTable) Levels() []finding.Severity {
	out := make([]finding.Severity, 0, len(t.levels))
	for _, l := range t.levels {
		if !l.extra {
			out = append(out, l.sev)
		}
	}
	return out
}

func (t rankTable) Ranked() []finding.Severity {
	out := make([]finding.Severity, len(t.levels))
	for i, l := range t.levels {
		out[i] = l.sev
	}
	return out
}

func (t rankTable) Summarized(sev finding.Severity) bool {
	r, ok := t.index[sev]
	return ok && !t.levels[r].extra
}

func (t rankTable) Rank(sev finding.Severity) int {
	if r, ok := t.index[sev]; ok {
		return r
	}
	return len(t.levels)
}

func (t rankTable) Less(a, b finding.Severity) bool {
	return t.Rank(a) < t.Rank(b)
}

func (t rankTable) Known(sev finding.Severity) bool {
	_, ok := t.index[sev]
	return ok
}

func (t rankTable) Color(sev finding.Severity) RGB {
	if r, ok := t.index[sev]; ok {
		return t.levels[r].color
	}
	return UnknownColor
}

func (t rankTable) Label(sev finding.Severity) string {
	if !t.Known(sev) {
		return label(finding.Unknown)
	}
	return label(sev)
}

func (t rankTable) Badge(sev finding.Severity) Badge {
	l := t.Label(sev)
	return Badge{Color: t.Color(sev), Letter: l[:1], Label: l}
}
