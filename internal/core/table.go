package core

import (
	"fmt"
	"strconv"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
)

// Cell is a single table value. Valid is false for a missing value.
// Numeric columns use Num; text columns use Text.
type Cell struct {
	Text  string
	Num   float64
	Valid bool
}

// Null is the missing value.
var Null = Cell{}

// TextCell returns a present text value.
func TextCell(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// NumCell returns a present numeric value.
func NumCell(f float64) Cell {
	return Cell{Num: f, Valid: true}
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// IsNumeric reports whether the column holds numbers.
func (c *Column) IsNumeric() bool {
	return c.Kind == KindNumeric
}

// Format renders cell i the way it is written to CSV. Missing values are empty.
func (c *Column) Format(i int) string {
	cell := c.Cells[i]
	if !cell.Valid {
		return ""
	}
	if c.Kind == KindNumeric {
		return strconv.FormatFloat(cell.Num, 'f', -1, 64)
	}
	return cell.Text
}

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, cell := range c.Cells {
		if !cell.Valid {
			n++
		}
	}
	return n
}

// Table is an ordered set of equally long columns with unique names.
type Table struct {
	Columns []*Column
}

// NumRows returns the row count. A table without columns has no rows.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// NumericColumns returns the numeric columns in order.
func (t *Table) NumericColumns() []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.IsNumeric() {
			out = append(out, c)
		}
	}
	return out
}

// Info describes the columns for selection controls.
func (t *Table) Info() []ColumnInfo {
	info := make([]ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		info[i] = ColumnInfo{Name: c.Name, Kind: c.Kind}
	}
	return info
}

// Row returns row i rendered as strings.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Format(i)
	}
	return row
}

// Head returns a preview of the first n rows.
func (t *Table) Head(n int) *Preview {
	rows := t.NumRows()
	if n > rows {
		n = rows
	}
	p := &Preview{
		Columns: t.ColumnNames(),
		Rows:    make([][]string, 0, n),
		Total:   rows,
	}
	for i := 0; i < n; i++ {
		p.Rows = append(p.Rows, t.Row(i))
	}
	return p
}

// Clone returns a deep copy so steps can mutate without touching the input.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		cells := make([]Cell, len(c.Cells))
		copy(cells, c.Cells)
		out.Columns[i] = &Column{Name: c.Name, Kind: c.Kind, Cells: cells}
	}
	return out
}

// Validate checks the structural invariants: unique names and equal lengths.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	rows := t.NumRows()
	for _, c := range t.Columns {
		if seen[c.Name] {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Cells) != rows {
			return fmt.Errorf("column %q has %d rows, want %d", c.Name, len(c.Cells), rows)
		}
	}
	return nil
}

// Equal reports whether two tables have the same columns, kinds and values.
func (t *Table) Equal(o *Table) bool {
	if len(t.Columns) != len(o.Columns) || t.NumRows() != o.NumRows() {
		return false
	}
	for i, c := range t.Columns {
		oc := o.Columns[i]
		if c.Name != oc.Name || c.Kind != oc.Kind {
			return false
		}
		for r := range c.Cells {
			if !cellsEqual(c.Kind, c.Cells[r], oc.Cells[r]) {
				return false
			}
		}
	}
	return true
}

func cellsEqual(kind Kind, a, b Cell) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	if kind == KindNumeric {
		return a.Num == b.Num
	}
	return a.Text == b.Text
}

// NewTable builds a table from column names, kinds and row-major values.
// Empty strings become missing values; numeric values must parse as floats.
// It is mostly useful for building fixtures.
func NewTable(names []string, kinds []Kind, rows [][]string) (*Table, error) {
	if len(names) != len(kinds) {
		return nil, fmt.Errorf("got %d names and %d kinds", len(names), len(kinds))
	}
	t := &Table{Columns: make([]*Column, len(names))}
	for j, name := range names {
		col := &Column{Name: name, Kind: kinds[j], Cells: make([]Cell, len(rows))}
		for i, row := range rows {
			if j >= len(row) {
				return nil, fmt.Errorf("row %d has %d fields, want %d", i+1, len(row), len(names))
			}
			v := row[j]
			switch {
			case v == "":
				col.Cells[i] = Null
			case kinds[j] == KindNumeric:
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("row %d column %q: %w", i+1, name, err)
				}
				col.Cells[i] = NumCell(f)
			default:
				col.Cells[i] = TextCell(v)
			}
		}
		t.Columns[j] = col
	}
	return t, t.Validate()
}
