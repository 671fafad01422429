package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// table aligns rows in columns. Widths are measured in terminal cells, so
// account names with wide runes line up.
type table struct {
	header []string
	// right marks the columns that are right-aligned, such as amounts.
	right []bool
	rows  [][]string
}

func newTable(header ...string) *table {
	return &table{header: header, right: make([]bool, len(header))}
}

func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (t *table) line(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if t.right[i] {
			parts[i] = padLeft(cell, widths[i])
		} else {
			parts[i] = padRight(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// render writes the table. style, if set, is applied to whole cells after
// alignment so escape codes do not disturb the widths.
func (t *table) render(w io.Writer, style func(col int, cell string) string) {
	widths := t.widths()

	_, _ = fmt.Fprintln(w, dimStyle.Render(t.line(t.header, widths)))
	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if t.right[i] {
				cells[i] = padLeft(cell, widths[i])
			} else {
				cells[i] = padRight(cell, widths[i])
			}
			if style != nil {
				cells[i] = style(i, cells[i])
			}
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}
