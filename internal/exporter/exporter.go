// Package exporter serializes a DisplayTable to delimited text or HTML.
//
// Every exporter writes a header of column names followed by one row per
// record. Missing cells and JSON nulls are written as empty fields.
package exporter

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/mcncl/datamorph/internal/display"
	"github.com/mcncl/datamorph/internal/models"
)

// Exporter writes a display table in one output format.
type Exporter interface {
	Export(w io.Writer, t models.DisplayTable) error
	ContentType() string
	Extension() string
}

// Options tune the exporters created by New.
type Options struct {
	// Delimiter separates CSV fields; zero means ','.
	Delimiter rune
}

// New returns the exporter for format ("csv", "tsv" or "html").
func New(format string, opts Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "csv":
		delim := opts.Delimiter
		if delim == 0 {
			delim = ','
		}
		return &CSVExporter{Delimiter: delim}, nil
	case "tsv":
		return &CSVExporter{Delimiter: '\t'}, nil
	case "html":
		return &HTMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// CSVExporter writes RFC 4180 delimited text.
type CSVExporter struct {
	Delimiter rune
}

// ContentType implements Exporter
func (e *CSVExporter) ContentType() string {
	if e.Delimiter == '\t' {
		return "text/tab-separated-values"
	}
	return "text/csv"
}

// Extension implements Exporter
func (e *CSVExporter) Extension() string {
	if e.Delimiter == '\t' {
		return ".tsv"
	}
	return ".csv"
}

// Export implements Exporter
func (e *CSVExporter) Export(w io.Writer, t models.DisplayTable) error {
	cw := csv.NewWriter(w)
	if e.Delimiter != 0 {
		cw.Comma = e.Delimiter
	}

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
		for j, cell := range row {
			record[j] = display.Text(cell)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Bytes renders t with e into memory.
func Bytes(e Exporter, t models.DisplayTable) ([]byte, error) {
	var b strings.Builder
	if err := e.Export(&b, t); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

var htmlTemplate = template.Must(template.New("table").Parse(`<table class="datamorph">
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
`))

// HTMLExporter writes a self-contained <table> element.
type HTMLExporter struct{}

// ContentType implements Exporter
func (e *HTMLExporter) ContentType() string { return "text/html" }

// Extension implements Exporter
func (e *HTMLExporter) Extension() string { return ".html" }

// Export implements Exporter
func (e *HTMLExporter) Export(w io.Writer, t models.DisplayTable) error {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = display.Text(cell)
		}
		rows[i] = cells
	}

	data := struct {
		Columns []string
		Rows    [][]string
	}{Columns: t.Columns, Rows: rows}

	if err := htmlTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render html table: %w", err)
	}
	return nil
}
