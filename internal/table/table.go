// Package table merges flattened records into a single Table.
package table

import (
	"github.com/mcncl/datamorph/internal/models"
)

// Columns returns the union of record paths in first-occurrence order:
// record 0's paths, then paths first introduced by record 1, and so on.
func Columns(records []models.FlatRecord) []string {
	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	return columns
}

// Build aligns every record to the unified column set. Absent paths become
// Missing cells; present values, JSON null included, are kept as is.
// Rows keep input order.
func Build(records []models.FlatRecord) models.Table {
	columns := Columns(records)
	rows := make([]models.Row, len(records))
	for i, rec := range records {
		row := make(models.Row, len(columns))
		for j, col := range columns {
			if v, ok := rec.Get(col); ok {
				row[j] = models.ValueCell(v)
			} else {
				row[j] = models.MissingCell()
			}
		}
		rows[i] = row
	}
	return models.Table{Columns: columns, Rows: rows}
}
