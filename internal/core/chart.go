package core

import (
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
)

// BarSeries is one plotted column. Nil values are missing or not finite and
// are drawn as gaps.
type BarSeries struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
	Mean   float64    `json:"mean"`
	Min    float64    `json:"min"`
	Max    float64    `json:"max"`
}

// BarChart plots two numeric columns against the row index.
type BarChart struct {
	Labels    []string    `json:"labels"`
	Series    []BarSeries `json:"series"`
	TotalRows int         `json:"total_rows"`
	Truncated bool        `json:"truncated"`
}

// BuildBarChart plots the first two numeric columns of t over at most
// maxPoints rows. Tables with fewer than two numeric columns return
// ErrNotEnoughNumeric. The table is only read.
func BuildBarChart(t *Table, maxPoints int) (*BarChart, error) {
	numeric := t.NumericColumns()
	if len(numeric) < 2 {
		return nil, ErrNotEnoughNumeric
	}

	rows := t.NumRows()
	n := rows
	if maxPoints > 0 && n > maxPoints {
		n = maxPoints
	}

	chart := &BarChart{
		Labels:    make([]string, n),
		TotalRows: rows,
		Truncated: n < rows,
	}
	for i := 0; i < n; i++ {
		chart.Labels[i] = strconv.Itoa(i)
	}

	for _, c := range numeric[:2] {
		s := BarSeries{Name: c.Name, Values: make([]*float64, n)}
		var present stats.Float64Data
		for i := 0; i < n; i++ {
			// Non-finite values cannot be drawn or serialized.
			if v := c.Cells[i].Num; c.Cells[i].Valid && !math.IsInf(v, 0) && !math.IsNaN(v) {
				s.Values[i] = &v
				present = append(present, v)
			}
		}
		if len(present) > 0 {
			s.Mean, _ = columnMean(present)
			s.Min, _ = stats.Min(present)
			s.Max, _ = stats.Max(present)
		}
		chart.Series = append(chart.Series, s)
	}

	return chart, nil
}

// Bounds returns the value range the axis must cover, always including zero.
func (c *BarChart) Bounds() (lo, hi float64) {
	for _, s := range c.Series {
		for _, v := range s.Values {
			if v == nil {
				continue
			}
			if *v < lo {
				lo = *v
			}
			if *v > hi {
				hi = *v
			}
		}
	}
	return lo, hi
}
