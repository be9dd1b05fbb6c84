package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

// RemoveDuplicates drops rows equal in every column to an earlier row and
// keeps the first occurrence. Missing values compare equal to each other.
// The input is not modified; applying it twice gives the same table.
func RemoveDuplicates(t *Table) (out *Table, removed int) {
	rows := t.NumRows()
	keep := make([]int, 0, rows)
	seen := make(map[string]struct{}, rows)

	var key strings.Builder
	for i := 0; i < rows; i++ {
		key.Reset()
		for _, c := range t.Columns {
			writeCellKey(&key, c.Kind, c.Cells[i])
		}
		k := key.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}

	out = &Table{Columns: make([]*Column, len(t.Columns))}
	for j, c := range t.Columns {
		cells := make([]Cell, len(keep))
		for n, i := range keep {
			cells[n] = c.Cells[i]
		}
		out.Columns[j] = &Column{Name: c.Name, Kind: c.Kind, Cells: cells}
	}
	return out, rows - len(keep)
}

// writeCellKey appends an unambiguous encoding of a cell: a tag byte, then a
// length-prefixed payload for text.
func writeCellKey(b *strings.Builder, kind Kind, c Cell) {
	switch {
	case !c.Valid:
		b.WriteByte('N')
	case kind == KindNumeric:
		b.WriteByte('F')
		v := c.Num
		if v == 0 {
			v = 0 // -0 and 0 are the same value
		}
		b.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
		b.WriteByte(';')
	default:
		b.WriteByte('S')
		b.WriteString(strconv.Itoa(len(c.Text)))
		b.WriteByte(':')
		b.WriteString(c.Text)
	}
}

// ColumnFill reports what FillMissingNumeric did to one column.
type ColumnFill struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	Filled int     `json:"filled"`
}

// FillMissingNumeric replaces missing values in every numeric column with
// the mean of that column's present values, computed from the table as it is
// now. Present values and text columns are left untouched. The input is not
// modified. A table without numeric columns returns ErrNoNumericColumns.
func FillMissingNumeric(t *Table) (*Table, []ColumnFill, error) {
	if len(t.NumericColumns()) == 0 {
		return t, nil, ErrNoNumericColumns
	}

	out := t.Clone()
	var fills []ColumnFill
	for _, c := range out.Columns {
		if !c.IsNumeric() {
			continue
		}

		present := make(stats.Float64Data, 0, len(c.Cells))
		for _, cell := range c.Cells {
			if cell.Valid {
				present = append(present, cell.Num)
			}
		}
		if len(present) == len(c.Cells) {
			continue
		}

		// An all-missing column has no mean, and +Inf with -Inf averages to
		// NaN. Either way the gaps stay as they are.
		mean, err := columnMean(present)
		if err != nil || math.IsNaN(mean) {
			continue
		}

		filled := 0
		for i, cell := range c.Cells {
			if !cell.Valid {
				c.Cells[i] = NumCell(mean)
				filled++
			}
		}
		fills = append(fills, ColumnFill{Column: c.Name, Mean: mean, Filled: filled})
	}
	return out, fills, nil
}

// columnMean averages data incrementally so large finite values do not
// overflow the sum. With an infinity present the plain sum decides: the
// infinity itself, or NaN when both signs occur.
func columnMean(data stats.Float64Data) (float64, error) {
	if data.Len() == 0 {
		return math.NaN(), stats.ErrEmptyInput
	}
	var mean float64
	for i, x := range data {
		if math.IsInf(x, 0) {
			return stats.Mean(data)
		}
		mean += (x - mean) / float64(i+1)
	}
	return mean, nil
}
