package generator

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/datamorph/internal/models"
)

// ColumnDef describes one column of the generated relational table
type ColumnDef struct {
	// Source is the flattened JSON path the column came from.
	Source string
	// Name is the SQL identifier used for the column.
	Name     string
	Nullable bool
}

// Generator produces a fixed (SQL) schema from a schema report.
//
// Every column is declared TEXT: the report only knows about presence, not
// types. A column is NOT NULL when no row left it empty.
type Generator struct{}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// Columns maps the report's columns to SQL column definitions, in report order.
func (g *Generator) Columns(report models.SchemaReport) []ColumnDef {
	names := Identifiers(report.Columns)
	defs := make([]ColumnDef, len(report.Columns))
	for i, col := range report.Columns {
		nullable := false
		for _, c := range report.PerColumn {
			if c.Column == col {
				nullable = c.Absent+c.Null > 0
				break
			}
		}
		defs[i] = ColumnDef{Source: col, Name: names[i], Nullable: nullable}
	}
	return defs
}

// GenerateDDL returns a CREATE TABLE statement for the report.
func (g *Generator) GenerateDDL(report models.SchemaReport, tableName string) (string, error) {
	table := Identifier(tableName)
	if table == "" {
		return "", fmt.Errorf("table name %q has no usable characters", tableName)
	}
	if len(report.Columns) == 0 {
		return "", fmt.Errorf("cannot create table %s without columns", table)
	}

	defs := g.Columns(report)

	width := 0
	for _, d := range defs {
		if n := len(quote(d.Name)); n > width {
			width = n
		}
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", quote(table)))
	for i, d := range defs {
		buf.WriteString(fmt.Sprintf("\t%-*s TEXT", width, quote(d.Name)))
		if !d.Nullable {
			buf.WriteString(" NOT NULL")
		}
		if i < len(defs)-1 {
			buf.WriteString(",")
		}
		if d.Name != d.Source {
			buf.WriteString(fmt.Sprintf(" -- %s", commentText(d.Source)))
		}
		buf.WriteString("\n")
	}
	buf.WriteString(");\n")

	return buf.String(), nil
}

// commentText makes s safe for a "--" line comment, which ends at the first
// newline.
func commentText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// Identifier converts a flattened path such as "contacts.email" into a
// snake_case SQL identifier ("contacts_email"). Only segments with upper
// case letters are re-cased, so "address2" stays "address2".
func Identifier(path string) string {
	var b strings.Builder
	for _, r := range snakeSegments(path) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune('_')
		}
	}
	id := strings.Trim(b.String(), "_")
	if id == "" {
		return ""
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "c_" + id
	}
	return id
}

// Identifiers converts every path and de-duplicates the results by suffixing
// _2, _3, ... in column order. Paths with no usable characters become col_N.
func Identifiers(paths []string) []string {
	out := make([]string, len(paths))
	used := make(map[string]bool)
	for i, p := range paths {
		id := Identifier(p)
		if id == "" {
			id = fmt.Sprintf("col_%d", i+1)
		}
		candidate := id
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", id, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// snakeSegments applies strcase.ToSnake to each alphanumeric run that has an
// upper case letter and keeps the rest unchanged.
func snakeSegments(path string) string {
	var b strings.Builder
	seg := 0
	flush := func(end int) {
		part := path[seg:end]
		if strings.IndexFunc(part, unicode.IsUpper) >= 0 {
			part = strcase.ToSnake(part)
		}
		b.WriteString(part)
	}
	for i, r := range path {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		_, size := utf8.DecodeRuneInString(path[i:])
		flush(i)
		b.WriteString(path[i : i+size])
		seg = i + size
	}
	flush(len(path))
	return b.String()
}

func quote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
