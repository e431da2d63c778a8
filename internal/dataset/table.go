package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the semantic type inferred for a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// Column holds one named column of a Table.
type Column struct {
	Name string
	Kind Kind
	// Values keeps the raw cell text; null cells are "".
	Values []string
	Null   []bool
	// Floats is set for numeric columns only; null cells are NaN.
	Floats []float64
	// Integer is true when the column is numeric, has no nulls and every value is integral.
	Integer bool
}

// NonNull returns the number of non-null cells.
func (c *Column) NonNull() int {
	n := 0
	for _, null := range c.Null {
		if !null {
			n++
		}
	}
	return n
}

// Numbers returns the non-null numeric values in row order.
func (c *Column) Numbers() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Floats))
	for i, v := range c.Floats {
		if c.Null[i] || math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Dtype returns the storage label shown in schema reports.
func (c *Column) Dtype() string {
	switch {
	case c.Kind == KindNumeric && c.Integer:
		return "int64"
	case c.Kind == KindNumeric:
		return "float64"
	default:
		return "object"
	}
}

// Cell returns the display text of a cell, "NaN" for nulls.
func (c *Column) Cell(row int) string {
	if row < 0 || row >= len(c.Values) || c.Null[row] {
		return "NaN"
	}
	if c.Kind == KindNumeric && c.Integer {
		// parse the raw text again: Floats loses precision above 2^53
		raw := strings.TrimSpace(c.Values[row])
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return raw
	}
	return c.Values[row]
}

// Table is an in-memory rectangular dataset. It is not modified after construction.
type Table struct {
	Name    string
	Columns []*Column
	Rows    int
	// Truncated is the number of rows dropped by Options.MaxRows.
	Truncated int

	index map[string]int
}

func newTable(name string, cols []*Column, rows int) *Table {
	t := &Table{Name: name, Columns: cols, Rows: rows, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		t.index[c.Name] = i
	}
	return t
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Head returns up to n rows of display text.
func Head(t *Table, n int) [][]string {
	if t == nil || n <= 0 {
		return nil
	}
	if n > t.Rows {
		n = t.Rows
	}
	rows := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = c.Cell(r)
		}
		rows[r] = row
	}
	return rows
}
