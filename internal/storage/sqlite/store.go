// Package sqlite loads a normalized table into a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mcncl/datamorph/internal/display"
	"github.com/mcncl/datamorph/internal/generator"
	"github.com/mcncl/datamorph/internal/models"
)

// Store wraps a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dsn and checks the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle, mainly for inspection in tests.
func (s *Store) DB() *sql.DB { return s.db }

// WriteTable replaces tableName with the contents of t. The schema comes from
// report; Missing cells and JSON nulls are stored as NULL. It returns the
// number of inserted rows.
func (s *Store) WriteTable(ctx context.Context, tableName string, t models.DisplayTable, report models.SchemaReport) (int, error) {
	gen := generator.NewGenerator()
	ddl, err := gen.GenerateDDL(report, tableName)
	if err != nil {
		return 0, err
	}
	if len(report.Columns) != len(t.Columns) {
		return 0, fmt.Errorf("report has %d columns, table has %d", len(report.Columns), len(t.Columns))
	}
	defs := gen.Columns(report)
	table := generator.Identifier(tableName)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, sqlIdent(table))); err != nil {
		return 0, fmt.Errorf("drop table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return 0, fmt.Errorf("create table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, defs))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return 0, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
		for j, cell := range row {
			args[j] = sqlValue(cell)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(t.Rows), nil
}

func insertSQL(table string, defs []generator.ColumnDef) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, d := range defs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(d.Name))
	}
	b.WriteString(") VALUES (")
	for i := range defs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
	}
	b.WriteString(")")
	return b.String()
}

func sqlValue(c models.Cell) any {
	if c.Missing {
		return nil
	}
	switch c.Value.Kind {
	case models.KindNull:
		return nil
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
		return display.Encode(c.Value)
	default:
		return nil
	}
}

func sqlIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
