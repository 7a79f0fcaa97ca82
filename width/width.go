// package width measures and aligns text in terminal cells, following
// unicode east asian width. see http://unicode.org/reports/tr11/
//
// Save files hold identifiers in any language and sometimes bytes which
// are not valid utf8, so nothing here panics on invalid input: each
// invalid byte is one cell wide, like the replacement character.
package width

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/width"
)

// default Condition which can calucate east asian width depended on running system environment.
// you can check your system's east asian condition using by:
//
//	isEastAsian = Default.IsEastAsian
var Default = NewCondition(runewidth.EastAsianWidth)

// Condition holds isEastAsian flag and
// can calucate east asian width using that flag.
type Condition struct {
	IsEastAsian bool
}

// return new condition
func NewCondition(isEastAsian bool) *Condition {
	return &Condition{isEastAsian}
}

// StringWidth returns cells needed to show s.
func (c Condition) StringWidth(s string) int {
	w := 0
	for len(s) > 0 {
		_w, size := c.firstWidth(s)
		w += _w
		s = s[size:]
	}
	return w
}

// return unicode east asian width in a rune.
func (c Condition) RuneWidth(r rune) int {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	w, _ := c.firstWidth(string(buf[:n]))
	return w
}

// return width of first character and its used bytes.
func (c Condition) firstWidth(s string) (int, int) {
	if r, size := utf8.DecodeRuneInString(s); r == utf8.RuneError && size <= 1 {
		return 1, 1
	}
	p, size := width.LookupString(s)
	switch p.Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2, size
	case width.EastAsianAmbiguous:
		if c.IsEastAsian {
			return 2, size
		}
		return 1, size
	case width.Neutral:
		if s[0] == 0 {
			return 0, size // Null character \x00
		}
		return 1, size
	default:
		return 1, size
	}
}

// Truncate cuts s to fit in w cells. tail is appended when s is cut,
// and counted in w.
func (c Condition) Truncate(s string, w int, tail string) string {
	if c.StringWidth(s) <= w {
		return s
	}
	limit := w - c.StringWidth(tail)
	if limit < 0 {
		return ""
	}
	used, end := 0, 0
	for end < len(s) {
		_w, size := c.firstWidth(s[end:])
		if used+_w > limit {
			break
		}
		used += _w
		end += size
	}
	return s[:end] + tail
}

// PadRight appends spaces to s until it takes w cells.
func (c Condition) PadRight(s string, w int) string {
	if n := w - c.StringWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// PadLeft prepends spaces to s until it takes w cells.
func (c Condition) PadLeft(s string, w int) string {
	if n := w - c.StringWidth(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

// return unicode east asian width in given string,
// using default condition.
func StringWidth(s string) int {
	return Default.StringWidth(s)
}

// return unicode east asian width in a rune,
// using default condition.
func RuneWidth(r rune) int {
	return Default.RuneWidth(r)
}

// Align is alignment of a Table column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table lays out rows of cells into columns.
type Table struct {
	Cond   *Condition // Default when nil.
	Aligns []Align    // per column, AlignLeft when missing.
	Sep    string     // between columns, two spaces when empty.
	rows   [][]string
}

func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *Table) cond() *Condition {
	if t.Cond == nil {
		return Default
	}
	return t.Cond
}

// WriteTo writes rows with each column padded to its widest cell.
// trailing spaces of a line are trimmed.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	c := t.cond()
	sep := t.Sep
	if sep == "" {
		sep = "  "
	}
	var widths []int
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if cw := c.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var sb strings.Builder
	for _, row := range t.rows {
		line := make([]string, len(row))
		for i, cell := range row {
			if i < len(t.Aligns) && t.Aligns[i] == AlignRight {
				line[i] = c.PadLeft(cell, widths[i])
			} else {
				line[i] = c.PadRight(cell, widths[i])
			}
		}
		sb.WriteString(strings.TrimRight(strings.Join(line, sep), " "))
		sb.WriteByte('\n')
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
