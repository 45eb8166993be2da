package analyzer

import (
	"fmt"

	"github.com/mcncl/datamorph/internal/config"
	"github.com/mcncl/datamorph/internal/models"
)

// Analyzer computes the schema report of a Table: its column inventory and
// how many cells are empty per column.
//
// It must be given the table before display normalization so that the counts
// reflect the source values.
type Analyzer struct {
	// config holds configuration settings for analysis
	config *config.Config
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		config: config.NewConfig(), // Use default config if none provided
	}
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Analyzer{config: cfg}
}

// Analyze builds the SchemaReport for t.
//
// Absent keys (Missing cells) and explicit JSON nulls are always counted
// separately in PerColumn. Under the merged policy both feed
// PerColumnMissing and TotalMissing; under the absent policy only Missing
// cells do.
func (a *Analyzer) Analyze(t models.Table) (models.SchemaReport, error) {
	if err := t.Validate(); err != nil {
		return models.SchemaReport{}, fmt.Errorf("table shape is inconsistent: %w", err)
	}

	policy := a.config.Analysis.NullPolicy
	if policy == "" {
		policy = models.NullPolicyMerged
	}

	perColumn := make([]models.ColumnNulls, len(t.Columns))
	for i, col := range t.Columns {
		perColumn[i].Column = col
	}

	for _, row := range t.Rows {
		for i, cell := range row {
			switch {
			case cell.Missing:
				perColumn[i].Absent++
			case cell.Value.IsNull():
				perColumn[i].Null++
			}
		}
	}

	report := models.SchemaReport{
		Columns:          append([]string(nil), t.Columns...),
		RowCount:         len(t.Rows),
		PerColumnMissing: make(map[string]int, len(t.Columns)),
		PerColumn:        perColumn,
		Policy:           policy,
	}

	for _, c := range perColumn {
		n, err := count(c, policy)
		if err != nil {
			return models.SchemaReport{}, err
		}
		report.PerColumnMissing[c.Column] = n
		report.TotalMissing += n
	}
	report.Sparse = report.TotalMissing > 0

	return report, nil
}

func count(c models.ColumnNulls, policy models.NullPolicy) (int, error) {
	switch policy {
	case models.NullPolicyMerged:
		return c.Absent + c.Null, nil
	case models.NullPolicyAbsent:
		return c.Absent, nil
	default:
		return 0, fmt.Errorf("unknown null policy %q", policy)
	}
}

// SparseColumns returns the columns with at least one counted empty cell, in
// column order.
func SparseColumns(report models.SchemaReport) []string {
	var cols []string
	for _, col := range report.Columns {
		if report.PerColumnMissing[col] > 0 {
			cols = append(cols, col)
		}
	}
	return cols
}
