// Package display prepares a Table for rendering by turning compound cells
// into their JSON text.
package display

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mcncl/datamorph/internal/models"
)

// Normalize returns a DisplayTable in which every array or object cell is
// replaced by a string cell holding its canonical JSON encoding. Scalars and
// Missing cells are copied unchanged. The input table is not modified.
func Normalize(t models.Table) models.DisplayTable {
	rows := make([]models.Row, len(t.Rows))
	for i, row := range t.Rows {
		out := make(models.Row, len(row))
		for j, cell := range row {
			out[j] = normalizeCell(cell)
		}
		rows[i] = out
	}
	return models.DisplayTable{
		Columns: append([]string(nil), t.Columns...),
		Rows:    rows,
	}
}

func normalizeCell(c models.Cell) models.Cell {
	if c.Missing {
		return c
	}
	switch c.Value.Kind {
	case models.KindArray, models.KindObject:
		return models.ValueCell(models.String(Encode(c.Value)))
	case models.KindNull, models.KindBool, models.KindNumber, models.KindString:
		return c
	default:
		return c
	}
}

// Encode renders v as compact JSON: object members keep their order, there is
// no insignificant whitespace, and non-ASCII text is written as is.
func Encode(v models.Value) string {
	var b strings.Builder
	encodeValue(&b, v)
	return b.String()
}

func encodeValue(b *strings.Builder, v models.Value) {
	switch v.Kind {
	case models.KindNull:
		b.WriteString("null")
	case models.KindBool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case models.KindNumber:
		b.WriteString(v.Number.String())
	case models.KindString:
		writeString(b, v.Str)
	case models.KindArray:
		b.WriteByte('[')
		for i, item := range v.Array {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeValue(b, item)
		}
		b.WriteByte(']')
	case models.KindObject:
		b.WriteByte('{')
		for i, m := range v.Object {
			if i > 0 {
				b.WriteByte(',')
			}
			writeString(b, m.Key)
			b.WriteByte(':')
			encodeValue(b, m.Value)
		}
		b.WriteByte('}')
	default:
		panic(fmt.Sprintf("display: unknown value kind %d", int(v.Kind)))
	}
}

const hex = "0123456789abcdef"

// writeString quotes s, escaping only what JSON requires.
func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\b':
			b.WriteString(`\b`)
		case r == '\f':
			b.WriteString(`\f`)
		case r < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte(hex[r>>4])
			b.WriteByte(hex[r&0xf])
		case r == utf8.RuneError && size == 1:
			b.WriteString(`\ufffd`)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	b.WriteByte('"')
}

// Text returns the plain text shown for a display cell. Missing cells and JSON
// null render as the empty string.
func Text(c models.Cell) string {
	if c.Missing {
		return ""
	}
	switch c.Value.Kind {
	case models.KindNull:
		return ""
	case models.KindBool:
		if c.Value.Bool {
			return "true"
		}
		return "false"
	case models.KindNumber:
		return c.Value.Number.String()
	case models.KindString:
		return c.Value.Str
	case models.KindArray, models.KindObject:
		return Encode(c.Value)
	default:
		return ""
	}
}
