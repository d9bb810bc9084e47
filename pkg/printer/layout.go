package printer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Align is an ESC/POS justification value.
type Align byte

// Text alignment
const (
	AlignLeft   Align = 0
	AlignCenter Align = 1
	AlignRight  Align = 2
)

// Line is one printed row. Text never exceeds the layout width (half the
// width when Double is set).
type Line struct {
	Text   string
	Align  Align
	Bold   bool
	Double bool
}

// Column is a fixed character budget inside a row. A zero Width takes
// whatever is left of the row.
type Column struct {
	Text  string
	Width int
	Right bool
}

// Layout accumulates fixed-width monospace lines. Every string is folded to
// ASCII on the way in so that one byte is one printed column.
type Layout struct {
	width int
	lines []Line
}

// NewLayout creates a layout for the given characters-per-line.
func NewLayout(width int) *Layout {
	if width <= 0 {
		width = Width58mm
	}
	return &Layout{width: width}
}

// Width returns the characters-per-line of the layout.
func (l *Layout) Width() int {
	return l.width
}

// Text appends a left-aligned line, truncated to the width.
func (l *Layout) Text(s string) *Layout {
	l.lines = append(l.lines, Line{Text: Fit(Fold(s), l.width)})
	return l
}

// Center appends a centered line.
func (l *Layout) Center(s string) *Layout {
	l.lines = append(l.lines, Line{Text: Fit(Fold(s), l.width), Align: AlignCenter})
	return l
}

// Heading appends a centered, bold, double-size line. Double-size glyphs
// take two columns each, so the text budget is half the width.
func (l *Layout) Heading(s string) *Layout {
	l.lines = append(l.lines, Line{
		Text:   Fit(Fold(s), l.width/2),
		Align:  AlignCenter,
		Bold:   true,
		Double: true,
	})
	return l
}

// Banner appends a centered bold line.
func (l *Layout) Banner(s string) *Layout {
	l.lines = append(l.lines, Line{Text: Fit(Fold(s), l.width), Align: AlignCenter, Bold: true})
	return l
}

// KeyValue appends a left-aligned key and a right-aligned value on the same
// line. The key is truncated first when both do not fit.
func (l *Layout) KeyValue(key, value string, bold bool) *Layout {
	key, value = Fold(key), Fold(value)
	value = Fit(value, l.width)
	keyBudget := l.width - len(value) - 1
	if keyBudget < 0 {
		keyBudget = 0
	}
	key = Fit(key, keyBudget)
	spaces := l.width - len(key) - len(value)
	l.lines = append(l.lines, Line{Text: key + strings.Repeat(" ", spaces) + value, Bold: bold})
	return l
}

// Columns appends a row made of fixed character budgets.
func (l *Layout) Columns(cols ...Column) *Layout {
	var b strings.Builder
	used := 0
	for _, c := range cols {
		w := c.Width
		if w <= 0 || used+w > l.width {
			w = l.width - used
		}
		text := Fit(Fold(c.Text), w)
		if c.Right {
			b.WriteString(PadLeft(text, w))
		} else {
			b.WriteString(PadRight(text, w))
		}
		used += w
		if used >= l.width {
			break
		}
	}
	l.lines = append(l.lines, Line{Text: strings.TrimRight(b.String(), " ")})
	return l
}

// Wrapped appends s broken on word boundaries at the width. Words longer
// than a line are hard-split.
func (l *Layout) Wrapped(s string) *Layout {
	for _, row := range Wrap(Fold(s), l.width) {
		l.lines = append(l.lines, Line{Text: row})
	}
	return l
}

// Separator appends a full-width rule.
func (l *Layout) Separator(char byte) *Layout {
	l.lines = append(l.lines, Line{Text: strings.Repeat(string(char), l.width)})
	return l
}

// Blank appends an empty line.
func (l *Layout) Blank() *Layout {
	l.lines = append(l.lines, Line{})
	return l
}

// Lines returns a copy of the laid-out lines.
func (l *Layout) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// ESCPOS encodes the layout as an ESC/POS job ending with feedLines line
// feeds and a partial cut.
func (l *Layout) ESCPOS(feedLines int) []byte {
	doc := NewDocument()
	for _, line := range l.lines {
		doc.Line(line)
	}
	doc.FeedLines(feedLines).PartialCut()
	return doc.Bytes()
}

// PlainText renders the layout as monospace text, alignment applied with
// spaces. Emphasis is dropped.
func (l *Layout) PlainText() string {
	var b strings.Builder
	for _, line := range l.lines {
		b.WriteString(l.plain(line))
		b.WriteByte('\n')
	}
	return b.String()
}

// PlainLines is PlainText split per row.
func (l *Layout) PlainLines() []string {
	out := make([]string, 0, len(l.lines))
	for _, line := range l.lines {
		out = append(out, l.plain(line))
	}
	return out
}

func (l *Layout) plain(line Line) string {
	switch line.Align {
	case AlignCenter:
		pad := (l.width - len(line.Text)) / 2
		if pad <= 0 {
			return line.Text
		}
		return strings.Repeat(" ", pad) + line.Text
	case AlignRight:
		return PadLeft(line.Text, l.width)
	default:
		return line.Text
	}
}

// Fold strips diacritics and replaces any remaining non-ASCII rune with '?'
// so the text survives the printer's single-byte code page.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r < utf8.RuneSelf && unicode.IsPrint(r):
			b.WriteRune(r)
		case r < utf8.RuneSelf:
			// control characters would corrupt the command stream
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// Fit truncates s to at most n bytes. Callers pass folded ASCII.
func Fit(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// PadLeft right-aligns s within n columns.
func PadLeft(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat(" ", n-len(s)) + s
}

// PadRight left-aligns s within n columns.
func PadRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// Wrap breaks s into rows of at most width columns.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var rows []string
	var cur string
	for _, word := range strings.Fields(s) {
		for len(word) > width {
			if cur != "" {
				rows = append(rows, cur)
				cur = ""
			}
			rows = append(rows, word[:width])
			word = word[width:]
		}
		switch {
		case word == "":
		case cur == "":
			cur = word
		case len(cur)+1+len(word) <= width:
			cur += " " + word
		default:
			rows = append(rows, cur)
			cur = word
		}
	}
	if cur != "" {
		rows = append(rows, cur)
	}
	return rows
}
