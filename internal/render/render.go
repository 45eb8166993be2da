// Package render prints the normalized table and the schema report to a
// terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"golang.org/x/text/width"

	"github.com/mcncl/datamorph/internal/analyzer"
	"github.com/mcncl/datamorph/internal/config"
	"github.com/mcncl/datamorph/internal/display"
	"github.com/mcncl/datamorph/internal/models"
)

const ellipsis = "…"

// SparseMessage is shown when the schema report found empty cells.
const SparseMessage = "Null values detected. In a relational (SQL) model, many NULL columns can be " +
	"inefficient: rigid schemas, more checks and joins, and data full of gaps. In NoSQL, " +
	"sparse data is common: documents with optional fields, and that is normal."

// DenseMessage is shown when every cell holds a value.
const DenseMessage = "No null values detected. The schema is complete for this set of records."

// Explanation compares fixed and flexible schemas.
const Explanation = `Fixed schema (SQL / relational)
  - You define tables with typed columns, e.g. customers(id INT, email VARCHAR, ...).
  - Data must fit that structure; a missing field is usually stored as NULL.
  - Strengths: integrity, constraints, powerful joins, consistent structured analytics.
  - Cost: schema changes may need migrations; many NULLs can signal an unnatural model.

Flexible schema (NoSQL / documents)
  - Documents are not required to share the same fields.
  - Some records having "phone" and others "email" is normal, no columns to fill.
  - Strengths: fast model evolution, semi-structured data, no tables full of gaps.
  - Cost: validation and integrity usually move into the application; complex
    queries look different from SQL.

Key idea
  - If your dataset has highly variable fields, NoSQL usually fits better (sparse data).
  - If you need strong relations, rules and integrity, SQL is usually the better choice.
`

// Renderer writes human-readable output.
type Renderer struct {
	out          io.Writer
	maxCellWidth int
	heading      *color.Color
	warn         *color.Color
	ok           *color.Color
}

// New creates a Renderer writing to out.
func New(out io.Writer, cfg config.DisplayConfig) *Renderer {
	r := &Renderer{
		out:          out,
		maxCellWidth: cfg.MaxCellWidth,
		heading:      color.New(color.Bold),
		warn:         color.New(color.FgYellow),
		ok:           color.New(color.FgGreen),
	}
	if !cfg.Color {
		r.heading.DisableColor()
		r.warn.DisableColor()
		r.ok.DisableColor()
	}
	return r
}

// Table prints t as aligned columns followed by the row/column caption.
func (r *Renderer) Table(t models.DisplayTable) error {
	if len(t.Columns) > 0 {
		cells := make([][]string, len(t.Rows)+1)
		cells[0] = make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[0][i] = r.fit(col)
		}
		for i, row := range t.Rows {
			line := make([]string, len(t.Columns))
			for j := range t.Columns {
				if j < len(row) {
					line[j] = r.fit(display.Text(row[j]))
				}
			}
			cells[i+1] = line
		}

		widths := make([]int, len(t.Columns))
		for _, line := range cells {
			for j, s := range line {
				widths[j] = max(widths[j], StringWidth(s))
			}
		}

		var b strings.Builder
		for i, line := range cells {
			writeLine(&b, line, widths)
			if i == 0 {
				writeRule(&b, widths)
			}
		}
		if _, err := io.WriteString(r.out, b.String()); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(r.out, "Rows: %d | Columns: %d\n", len(t.Rows), len(t.Columns))
	return err
}

// Report prints the detected columns, the null count and the sparse or dense
// verdict.
func (r *Renderer) Report(report models.SchemaReport) error {
	var b strings.Builder

	r.heading.Fprintln(&b, "Detected columns:")
	for _, col := range report.Columns {
		fmt.Fprintf(&b, "  - %s\n", col)
	}
	fmt.Fprintf(&b, "Total null values: %d\n", report.TotalMissing)

	for _, c := range report.PerColumn {
		if c.Absent+c.Null == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s: %d (absent %d, null %d)\n", c.Column, report.PerColumnMissing[c.Column], c.Absent, c.Null)
	}
	if sparse := analyzer.SparseColumns(report); len(sparse) > 0 {
		fmt.Fprintf(&b, "Sparse columns: %s\n", strings.Join(sparse, ", "))
	}

	if report.Sparse {
		r.warn.Fprintln(&b, SparseMessage)
	} else {
		r.ok.Fprintln(&b, DenseMessage)
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

// Warning prints msg highlighted as a warning.
func (r *Renderer) Warning(msg string) error {
	_, err := r.warn.Fprintln(r.out, msg)
	return err
}

// Explain prints the fixed vs flexible schema explanation.
func (r *Renderer) Explain() error {
	if _, err := r.heading.Fprintln(r.out, "Fixed schema (SQL) vs flexible schema (NoSQL)"); err != nil {
		return err
	}
	_, err := io.WriteString(r.out, "\n"+Explanation)
	return err
}

func (r *Renderer) fit(s string) string {
	return Truncate(escapeControl(s), r.maxCellWidth)
}

// escapeControl keeps cell text on one line and stops input data from
// reaching the terminal as escape sequences.
func escapeControl(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteByte(' ')
		case unicode.IsControl(r):
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func writeLine(b *strings.Builder, line []string, widths []int) {
	for j, s := range line {
		if j > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(s)
		if j < len(line)-1 {
			b.WriteString(strings.Repeat(" ", widths[j]-StringWidth(s)))
		}
	}
	b.WriteByte('\n')
}

func writeRule(b *strings.Builder, widths []int) {
	for j, w := range widths {
		if j > 0 {
			b.WriteString("-+-")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteByte('\n')
}

// StringWidth returns the number of terminal cells s occupies. East Asian
// wide and fullwidth runes take two cells.
func StringWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// Truncate shortens s to at most maxWidth cells, marking the cut with an
// ellipsis. A maxWidth of zero disables truncation.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || StringWidth(s) <= maxWidth {
		return s
	}
	limit := maxWidth - 1
	n := 0
	var b strings.Builder
	for _, r := range s {
		w := runeWidth(r)
		if n+w > limit {
			break
		}
		b.WriteRune(r)
		n += w
	}
	b.WriteString(ellipsis)
	return b.String()
}
