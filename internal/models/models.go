package models

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which variant of the JSON tagged union a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the JSON name of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a JSON value. Only the field matching Kind is meaningful.
// The zero Value is JSON null.
type Value struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	Str    string
	Object Object
	Array  []Value
}

// Member is a single key/value pair of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// Object is a JSON object that keeps its members in source order.
type Object []Member

// Null returns the JSON null value
func Null() Value { return Value{Kind: KindNull} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Number wraps a number, keeping its textual form
func Number(n json.Number) Value { return Value{Kind: KindNumber, Number: n} }

// String wraps a string
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// ObjectOf builds an object value from members in the given order
func ObjectOf(members ...Member) Value { return Value{Kind: KindObject, Object: Object(members)} }

// ArrayOf builds an array value
func ArrayOf(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindArray, Array: items}
}

// M is shorthand for constructing a Member.
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

// IsCompound reports whether the value is an object or an array.
func (v Value) IsCompound() bool {
	return v.Kind == KindObject || v.Kind == KindArray
}

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Keys returns the member keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// FlatRecord maps dotted paths to leaf values, in the order the paths were
// first produced.
type FlatRecord struct {
	keys   []string
	values map[string]Value
}

// NewFlatRecord creates an empty FlatRecord
func NewFlatRecord() FlatRecord {
	return FlatRecord{values: make(map[string]Value)}
}

// Set stores v under path. An existing path keeps its position and takes the new value.
func (r *FlatRecord) Set(path string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, exists := r.values[path]; !exists {
		r.keys = append(r.keys, path)
	}
	r.values[path] = v
}

// Get looks up the value stored under path
func (r FlatRecord) Get(path string) (Value, bool) {
	v, ok := r.values[path]
	return v, ok
}

// Keys returns the paths in insertion order
func (r FlatRecord) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of paths
func (r FlatRecord) Len() int { return len(r.keys) }

// Cell is one table cell: either a value or the Missing marker.
type Cell struct {
	Value   Value
	Missing bool
}

// MissingCell marks a column the record never had.
func MissingCell() Cell { return Cell{Missing: true} }

// ValueCell wraps a present value (which may be JSON null).
func ValueCell(v Value) Cell { return Cell{Value: v} }

// IsEmpty reports whether the cell is Missing or holds JSON null.
func (c Cell) IsEmpty() bool { return c.Missing || c.Value.IsNull() }

// Row is a table row aligned with the table's columns.
type Row []Cell

// Table is the unified, flattened view of a record set.
type Table struct {
	Columns []string
	Rows    []Row
}

// DisplayTable is a Table whose compound cells have been replaced by their
// JSON text. It has the same shape as the Table it came from.
type DisplayTable Table

// ColumnIndex returns the position of a column, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at the given row and column name.
func (t Table) Cell(row int, column string) (Cell, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return Cell{}, false
	}
	return t.Rows[row][idx], true
}

// Validate checks that every row has exactly one cell per column.
func (t Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// ColumnIndex returns the position of a column, or -1.
func (t DisplayTable) ColumnIndex(name string) int { return Table(t).ColumnIndex(name) }

// Cell returns the cell at the given row and column name.
func (t DisplayTable) Cell(row int, column string) (Cell, bool) { return Table(t).Cell(row, column) }

// NullPolicy selects which empty cells count towards the schema report.
type NullPolicy string

const (
	// NullPolicyMerged counts both absent keys and explicit JSON nulls.
	NullPolicyMerged NullPolicy = "merged"
	// NullPolicyAbsent counts absent keys only.
	NullPolicyAbsent NullPolicy = "absent"
)

// ColumnNulls holds the split empty-cell counts for one column.
type ColumnNulls struct {
	Column string
	Absent int
	Null   int
}

// SchemaReport summarises the structure and sparsity of a Table.
type SchemaReport struct {
	Columns          []string
	RowCount         int
	TotalMissing     int
	PerColumnMissing map[string]int
	PerColumn        []ColumnNulls
	Sparse           bool
	Policy           NullPolicy
}
