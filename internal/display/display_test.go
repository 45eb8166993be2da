package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/datamorph/internal/models"
	"github.com/mcncl/datamorph/internal/parser"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		value    models.Value
		expected string
	}{
		{"string array", models.ArrayOf(models.String("Python"), models.String("SQL")), `["Python","SQL"]`},
		{"empty array", models.ArrayOf(), `[]`},
		{"empty object", models.ObjectOf(), `{}`},
		{
			"array of objects keeps member order",
			models.ArrayOf(
				models.ObjectOf(models.M("name", models.String("ETL")), models.M("status", models.String("done"))),
				models.ObjectOf(models.M("status", models.String("wip")), models.M("name", models.String("Dashboard"))),
			),
			`[{"name":"ETL","status":"done"},{"status":"wip","name":"Dashboard"}]`,
		},
		{"scalars", models.ArrayOf(models.Null(), models.Bool(true), models.Bool(false), models.Number("1.50")), `[null,true,false,1.50]`},
		{"non-ascii preserved", models.ArrayOf(models.String("Zürich"), models.String("東京")), `["Zürich","東京"]`},
		{"html not escaped", models.ArrayOf(models.String("<a&b>")), `["<a&b>"]`},
		{"escapes", models.ArrayOf(models.String("q\"b\\n\nt\tc\x01")), `["q\"b\\n\nt\tc\u0001"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.value))
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	inputs := []string{
		`["Python","SQL"]`,
		`[{"name":"ETL","status":"done"},{"name":"Dashboard","status":"wip"}]`,
		`{"z":1,"a":[true,null,{"k":"v"}],"ü":"ñ"}`,
		`[[],{},[[1]],"line\nbreak"]`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			v, err := parser.ParseString(in)
			require.NoError(t, err)

			text := Encode(v)
			assert.Equal(t, in, text)

			back, err := parser.ParseString(text)
			require.NoError(t, err)
			assert.Equal(t, v, back)
		})
	}
}

func TestNormalize(t *testing.T) {
	skills := models.ArrayOf(models.String("Python"), models.String("SQL"))
	tbl := models.Table{
		Columns: []string{"id", "skills", "note", "extra"},
		Rows: []models.Row{
			{
				models.ValueCell(models.Number("1")),
				models.ValueCell(skills),
				models.ValueCell(models.Null()),
				models.MissingCell(),
			},
			{
				models.ValueCell(models.Number("2")),
				models.MissingCell(),
				models.ValueCell(models.String("plain")),
				models.ValueCell(models.ObjectOf(models.M("k", models.Bool(true)))),
			},
		},
	}

	dt := Normalize(tbl)

	assert.Equal(t, tbl.Columns, dt.Columns)
	require.Len(t, dt.Rows, 2)
	for _, row := range dt.Rows {
		assert.Len(t, row, len(dt.Columns))
	}

	cell, _ := dt.Cell(0, "skills")
	assert.Equal(t, models.String(`["Python","SQL"]`), cell.Value)

	cell, _ = dt.Cell(1, "extra")
	assert.Equal(t, models.String(`{"k":true}`), cell.Value)

	// scalars, nulls and Missing pass through
	assert.Equal(t, tbl.Rows[0][0], dt.Rows[0][0])
	assert.Equal(t, tbl.Rows[0][2], dt.Rows[0][2])
	assert.Equal(t, tbl.Rows[0][3], dt.Rows[0][3])
	assert.Equal(t, tbl.Rows[1][2], dt.Rows[1][2])

	// the source table still holds the array
	assert.Equal(t, skills, tbl.Rows[0][1].Value)
}

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		cell     models.Cell
		expected string
	}{
		{"missing", models.MissingCell(), ""},
		{"null", models.ValueCell(models.Null()), ""},
		{"true", models.ValueCell(models.Bool(true)), "true"},
		{"false", models.ValueCell(models.Bool(false)), "false"},
		{"number", models.ValueCell(models.Number("41")), "41"},
		{"string", models.ValueCell(models.String("Madrid")), "Madrid"},
		{"array", models.ValueCell(models.ArrayOf(models.Number("1"))), "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Text(tt.cell))
		})
	}
}
