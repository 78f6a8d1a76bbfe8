// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package table holds the tabular shape exchanged with the database: an ordered
// list of uniquely named columns and ordered rows of untyped text values.
// A Table is created per query or insert and is never cached or shared.
package table

import (
	"fmt"
	"sort"
	"strings"
)

// Value is a single untyped cell. The zero Value is null.
type Value struct {
	Text  string
	Valid bool
}

// Null is the absent value.
var Null = Value{}

// Text returns a non-null value holding s.
func Text(s string) Value { return Value{Text: s, Valid: true} }

// Empty reports whether v is null or the empty string.
func (v Value) Empty() bool { return !v.Valid || v.Text == "" }

// Any returns nil for null and the text otherwise, ready for a driver argument.
func (v Value) Any() any {
	if !v.Valid {
		return nil
	}
	return v.Text
}

func (v Value) String() string {
	if !v.Valid {
		return "NULL"
	}
	return v.Text
}

// Row holds exactly one value per column of its table.
type Row []Value

// Table is an ordered set of columns plus ordered rows.
type Table struct {
	// Name is informational only.
	Name string

	columns []string
	index   map[string]int
	rows    []Row
}

// New creates an empty table with the given columns.
func New(columns ...string) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, err := t.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddColumn appends a column and fills existing rows with null.
func (t *Table) AddColumn(name string) (int, error) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if _, ok := t.index[name]; ok {
		return 0, fmt.Errorf("duplicate column %q", name)
	}
	t.columns = append(t.columns, name)
	i := len(t.columns) - 1
	t.index[name] = i
	for r := range t.rows {
		t.rows[r] = append(t.rows[r], Null)
	}
	return i, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnIndex returns the position of column name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Len returns the number of rows; a nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Append adds a row. The number of values must match the column count.
func (t *Table) Append(values ...Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	row := make(Row, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// AppendRecord adds a row from a column-keyed record. Columns absent from the
// record are null; keys that name no column are rejected.
func (t *Table) AppendRecord(rec map[string]Value) error {
	row := make(Row, len(t.columns))
	var unknown []string
	for k, v := range rec {
		i, ok := t.index[k]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		row[i] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown columns: %s", strings.Join(unknown, ", "))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Row returns row i. The returned slice aliases the table.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Get returns the value at row i in column col.
func (t *Table) Get(i int, col string) (Value, bool) {
	c, ok := t.index[col]
	if !ok || i < 0 || i >= len(t.rows) {
		return Null, false
	}
	return t.rows[i][c], true
}

// Records returns every row as a column-keyed map.
func (t *Table) Records() []map[string]Value {
	out := make([]map[string]Value, 0, t.Len())
	for _, row := range t.rows {
		rec := make(map[string]Value, len(t.columns))
		for i, c := range t.columns {
			rec[c] = row[i]
		}
		out = append(out, rec)
	}
	return out
}
