package parser

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"
)

// span is a run of text on a page line, with its horizontal extent.
type span struct {
	x0, x1 float64
	s      string
}

func (s span) center() float64 { return (s.x0 + s.x1) / 2 }

// pdfTables returns one table per page of a PDF document.
//
// PDF has no notion of table: text fragments of a line are merged into cells where
// they are close enough, then cells are aligned on the columns of the widest line of
// the page, which is the table header in statements.
func pdfTables(data []byte) (tables []Table, err error) {
	// the pdf reader panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			tables, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("cannot open pdf: %w", err)
	}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("cannot read page %d: %w", i, err)
		}
		lines := make([][]span, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, mergeTexts(row.Content))
		}
		tables = append(tables, Table{Page: i, Rows: alignRows(lines)})
	}
	return tables, nil
}

// mergeTexts merges the text fragments of a line into spans.
// A gap wider than the font size starts a new span, a narrower one is a word space.
// Row fragments carry no width nor size: every shown string at its own position is a span.
func mergeTexts(texts pdf.TextHorizontal) []span {
	sorted := slices.Clone(texts)
	slices.SortStableFunc(sorted, func(a, b pdf.Text) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})

	var spans []span
	var b strings.Builder
	var cur span
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			cur.s = s
			spans = append(spans, cur)
		}
		b.Reset()
	}
	for i, t := range sorted {
		size := math.Max(t.FontSize, 1)
		if i > 0 {
			gap := t.X - cur.x1
			switch {
			case gap > size:
				flush()
				cur = span{x0: t.X}
			case gap > size*0.2 && !strings.HasSuffix(b.String(), " "):
				b.WriteByte(' ')
			}
		} else {
			cur = span{x0: t.X}
		}
		b.WriteString(t.S)
		cur.x1 = math.Max(cur.x1, t.X+t.W)
	}
	flush()
	return spans
}

// alignRows turns lines of spans into rows of cells aligned on the same columns.
//
// The columns are the spans of the line with the most spans. Every span goes to the
// column whose center is the nearest, so that an empty cell does not shift the next
// ones, and right-aligned amounts stay under their header.
func alignRows(lines [][]span) [][]string {
	var columns []span
	for _, l := range lines {
		if len(l) > len(columns) {
			columns = l
		}
	}
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		row := make([]string, len(columns))
		for _, s := range l {
			i := nearest(columns, s.center())
			if row[i] != "" {
				row[i] += " " + s.s
			} else {
				row[i] = s.s
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// nearest returns the index of the column whose center is the closest to x.
func nearest(columns []span, x float64) int {
	best, dist := 0, math.Inf(1)
	for i, c := range columns {
		if d := math.Abs(c.center() - x); d < dist {
			best, dist = i, d
		}
	}
	return best
}
